package crack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"fortunecookie/internal/domain"
	"fortunecookie/internal/observability/logging"
	"fortunecookie/internal/observability/metrics"
	"fortunecookie/internal/protocol/anchor"
)

// User-facing messages, one per failed crack.
const (
	MsgNoWallet        = "Connect a wallet to crack a cookie."
	MsgStatsNotReady   = "Stats account not initialized yet."
	MsgDeclined        = "Signature request declined."
	MsgDrift           = "This client no longer matches the on-chain program. Update and try again."
	MsgFailed          = "Transaction failed. Check wallet and network."
	MsgStatsInitFailed = "Failed to initialize stats account."
)

// Message maps a crack failure to the one line shown to the user.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrNoSigner):
		return MsgNoWallet
	case errors.Is(err, domain.ErrStatsNotReady):
		return MsgStatsNotReady
	case errors.Is(err, domain.ErrSigningDeclined):
		return MsgDeclined
	case errors.Is(err, domain.ErrProtocolDrift):
		return MsgDrift
	}
	return MsgFailed
}

// Chooser picks the archetype for the next crack.
type Chooser func() domain.Archetype

// Fixed always picks a.
func Fixed(a domain.Archetype) Chooser { return func() domain.Archetype { return a } }

// Random picks uniformly among all archetypes.
func Random() Chooser {
	return func() domain.Archetype { return domain.Archetypes[rand.Intn(len(domain.Archetypes))] }
}

// View is the state a front end renders.
type View struct {
	Loading    bool
	LastError  string
	Fortune    *domain.Fortune
	Signature  domain.Signature
	Total      uint64
	TotalKnown bool
}

// Config wires a Dispatcher. Signer may be nil, in which case every crack
// fails with MsgNoWallet.
type Config struct {
	Program   domain.PublicKey
	Signer    domain.Signer
	Counter   domain.CounterResolver
	Submitter domain.CookieSubmitter
	Resolver  domain.RewardResolver
	Stats     domain.AggregateCache
	Choose    Chooser
	Logger    *slog.Logger

	// OnChange, when set, receives a snapshot after every view change. It
	// runs on the cracking goroutine and must not block.
	OnChange func(View)
}

// Dispatcher runs at most one crack at a time. Invocations that arrive
// while one is outstanding are dropped, not queued.
type Dispatcher struct {
	cfg     Config
	log     *slog.Logger
	metrics *metrics.CrackMetrics

	busy atomic.Bool
	wg   sync.WaitGroup

	mu    sync.Mutex
	view  View
	drift error
}

// New returns a Dispatcher. A nil Choose defaults to the first archetype.
func New(cfg Config) *Dispatcher {
	if cfg.Choose == nil {
		cfg.Choose = Fixed(domain.ArchetypeDegen)
	}
	return &Dispatcher{cfg: cfg, log: logging.OrDefault(cfg.Logger), metrics: metrics.Crack()}
}

// View returns the current view.
func (d *Dispatcher) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.view
}

// Crack runs one crack to completion. ok is false when another crack was
// already outstanding and this invocation was ignored.
func (d *Dispatcher) Crack(ctx context.Context) (v View, ok bool) {
	if !d.busy.CompareAndSwap(false, true) {
		d.metrics.RecordIgnored()
		return d.View(), false
	}
	d.wg.Add(1)
	defer d.release()
	return d.execute(ctx), true
}

// Go starts a crack in the background and reports whether it was accepted.
// The manual command and gesture triggers share the same gate.
func (d *Dispatcher) Go(ctx context.Context) bool {
	if !d.busy.CompareAndSwap(false, true) {
		d.metrics.RecordIgnored()
		return false
	}
	d.wg.Add(1)
	go func() {
		defer d.release()
		d.execute(ctx)
	}()
	return true
}

// Wait blocks until no crack is running.
func (d *Dispatcher) Wait() { d.wg.Wait() }

func (d *Dispatcher) release() {
	d.busy.Store(false)
	d.wg.Done()
}

func (d *Dispatcher) execute(ctx context.Context) View {
	start := time.Now()
	d.update(func(v *View) {
		v.Loading = true
		v.LastError = ""
	})

	fortune, err := d.run(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrProtocolDrift) {
			d.mu.Lock()
			d.drift = err
			d.mu.Unlock()
		}
		d.log.Warn("crack failed", "err", err)
		d.metrics.Observe(outcome(err), time.Since(start))
		return d.update(func(v *View) {
			v.Loading = false
			v.LastError = Message(err)
		})
	}

	d.log.Info("cookie cracked",
		"archetype", fortune.Archetype.String(),
		"rarity", fortune.Rarity.String(),
		"fortune_id", fortune.Record.FortuneID,
		"signature", fortune.Receipt.Signature.String(),
	)
	d.metrics.Observe("success", time.Since(start))
	total, known := d.cfg.Stats.Refresh(ctx)
	return d.update(func(v *View) {
		v.Loading = false
		v.Fortune = &fortune
		v.Signature = fortune.Receipt.Signature
		v.Total, v.TotalKnown = total, known
	})
}

func (d *Dispatcher) run(ctx context.Context) (domain.Fortune, error) {
	d.mu.Lock()
	drift := d.drift
	d.mu.Unlock()
	if drift != nil {
		return domain.Fortune{}, drift
	}
	signer := d.cfg.Signer
	if signer == nil {
		return domain.Fortune{}, domain.ErrNoSigner
	}
	ready, err := d.cfg.Stats.Ready(ctx)
	if err != nil {
		return domain.Fortune{}, err
	}
	if !ready {
		return domain.Fortune{}, domain.ErrStatsNotReady
	}

	owner := signer.PublicKey()
	archetype := d.cfg.Choose()
	counter, err := d.cfg.Counter.NextCounter(ctx, owner)
	if err != nil {
		return domain.Fortune{}, err
	}
	addr, err := anchor.CookieAddress(d.cfg.Program, owner, counter)
	if err != nil {
		return domain.Fortune{}, fmt.Errorf("%w: derive cookie %d: %w", domain.ErrProtocolDrift, counter, err)
	}
	d.log.Debug("cracking", "archetype", archetype.String(), "counter", counter, "cookie", addr.Address.String())

	receipt, err := d.cfg.Submitter.OpenCookie(ctx, signer, archetype, counter, addr)
	if err != nil {
		return domain.Fortune{}, err
	}
	return d.cfg.Resolver.ResolveFortune(ctx, owner, receipt)
}

// InitializeStats creates the stats account if needed and refreshes the
// total, reporting failure through the view.
func (d *Dispatcher) InitializeStats(ctx context.Context) error {
	if d.cfg.Signer == nil {
		d.update(func(v *View) { v.LastError = MsgNoWallet })
		return domain.ErrNoSigner
	}
	if err := d.cfg.Stats.Initialize(ctx, d.cfg.Signer); err != nil {
		d.log.Warn("stats initialization failed", "err", err)
		d.update(func(v *View) { v.LastError = MsgStatsInitFailed })
		return err
	}
	total, known := d.cfg.Stats.Refresh(ctx)
	d.update(func(v *View) { v.Total, v.TotalKnown = total, known })
	return nil
}

func (d *Dispatcher) update(fn func(*View)) View {
	d.mu.Lock()
	fn(&d.view)
	snap := d.view
	d.mu.Unlock()
	if d.cfg.OnChange != nil {
		d.cfg.OnChange(snap)
	}
	return snap
}

func outcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoSigner):
		return "no_signer"
	case errors.Is(err, domain.ErrStatsNotReady):
		return "stats_not_ready"
	case errors.Is(err, domain.ErrSigningDeclined):
		return "declined"
	case errors.Is(err, domain.ErrProtocolDrift):
		return "protocol_drift"
	case errors.Is(err, domain.ErrSimulationRejected):
		return "rejected"
	case errors.Is(err, domain.ErrConfirmationTimeout):
		return "timeout"
	case errors.Is(err, domain.ErrTransactionFailed):
		return "failed_on_chain"
	}
	return "error"
}
