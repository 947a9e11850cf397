package cookie

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fortunecookie/internal/domain"
	"fortunecookie/internal/observability/logging"
	"fortunecookie/internal/protocol/anchor"
	"fortunecookie/internal/protocol/txn"
)

// Default confirmation settings.
const (
	DefaultConfirmTimeout = 60 * time.Second
	DefaultPollInterval   = 500 * time.Millisecond
)

// Options tunes how long the submitter waits for confirmation.
type Options struct {
	ConfirmTimeout time.Duration
	PollInterval   time.Duration
	Logger         *slog.Logger

	// Commitment is the level a signature must reach. Empty means confirmed.
	Commitment domain.Commitment
}

func (o Options) withDefaults() Options {
	if o.ConfirmTimeout <= 0 {
		o.ConfirmTimeout = DefaultConfirmTimeout
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.Commitment == "" {
		o.Commitment = domain.CommitmentConfirmed
	}
	o.Logger = logging.OrDefault(o.Logger)
	return o
}

// Submitter builds, signs, sends and confirms fortune_cookie instructions.
type Submitter struct {
	ledger  domain.LedgerClient
	program domain.PublicKey
	opts    Options
}

// NewSubmitter returns a Submitter for program.
func NewSubmitter(ledger domain.LedgerClient, program domain.PublicKey, opts Options) *Submitter {
	return &Submitter{ledger: ledger, program: program, opts: opts.withDefaults()}
}

// OpenCookie opens the cookie at the pre-derived address and blocks until
// the transaction is confirmed or abandoned.
func (s *Submitter) OpenCookie(
	ctx context.Context,
	signer domain.Signer,
	archetype domain.Archetype,
	counter uint64,
	cookie domain.DerivedAddress,
) (domain.OpenReceipt, error) {
	if signer == nil {
		return domain.OpenReceipt{}, domain.ErrNoSigner
	}
	stats, err := anchor.StatsAddress(s.program)
	if err != nil {
		return domain.OpenReceipt{}, fmt.Errorf("%w: stats address: %w", domain.ErrProtocolDrift, err)
	}
	ix := anchor.OpenCookie(s.program, signer.PublicKey(), cookie.Address, stats.Address, archetype, counter)
	sig, err := s.submit(ctx, signer, ix)
	if err != nil {
		return domain.OpenReceipt{}, fmt.Errorf("open cookie %d: %w", counter, err)
	}
	return domain.OpenReceipt{Signature: sig, Cookie: cookie, Counter: counter, Archetype: archetype}, nil
}

// InitializeStats creates the singleton stats account.
func (s *Submitter) InitializeStats(ctx context.Context, signer domain.Signer) (domain.Signature, error) {
	if signer == nil {
		return domain.Signature{}, domain.ErrNoSigner
	}
	stats, err := anchor.StatsAddress(s.program)
	if err != nil {
		return domain.Signature{}, fmt.Errorf("%w: stats address: %w", domain.ErrProtocolDrift, err)
	}
	sig, err := s.submit(ctx, signer, anchor.InitializeStats(s.program, signer.PublicKey(), stats.Address))
	if err != nil {
		return domain.Signature{}, fmt.Errorf("initialize stats: %w", err)
	}
	return sig, nil
}

func (s *Submitter) submit(ctx context.Context, signer domain.Signer, ix txn.Instruction) (domain.Signature, error) {
	bh, err := s.ledger.LatestBlockhash(ctx)
	if err != nil {
		return domain.Signature{}, err
	}
	tx, err := txn.New(signer.PublicKey(), bh.Hash, ix)
	if err != nil {
		return domain.Signature{}, err
	}
	if err := tx.Sign(ctx, signer); err != nil {
		return domain.Signature{}, fmt.Errorf("sign: %w", err)
	}
	raw, err := tx.Serialize()
	if err != nil {
		return domain.Signature{}, err
	}
	sig, err := s.ledger.SendTransaction(ctx, raw)
	if err != nil {
		return domain.Signature{}, err
	}
	if sig != tx.Signature() {
		s.opts.Logger.Warn("ledger returned unexpected signature", "want", tx.Signature().String(), "got", sig.String())
		sig = tx.Signature()
	}
	s.opts.Logger.Debug("transaction sent", "signature", sig.String())
	if err := s.await(ctx, sig); err != nil {
		return domain.Signature{}, err
	}
	return sig, nil
}

// await polls the signature until it reaches the configured commitment,
// fails on chain, or the confirm timeout elapses. Poll errors are retried.
func (s *Submitter) await(ctx context.Context, sig domain.Signature) error {
	waitCtx, cancel := context.WithTimeout(ctx, s.opts.ConfirmTimeout)
	defer cancel()
	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

	var lastErr error
	for {
		st, ok, err := s.ledger.SignatureStatus(waitCtx, sig)
		switch {
		case err != nil:
			lastErr = err
			s.opts.Logger.Debug("signature status poll failed", "signature", sig.String(), "err", err)
		case ok && st.Err != "":
			return fmt.Errorf("%w: %s", domain.ErrTransactionFailed, st.Err)
		case ok && st.ConfirmationStatus.Reached(s.opts.Commitment):
			return nil
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if lastErr != nil && !errors.Is(lastErr, context.DeadlineExceeded) {
				return fmt.Errorf("%w after %s: last poll error: %w", domain.ErrConfirmationTimeout, s.opts.ConfirmTimeout, lastErr)
			}
			return fmt.Errorf("%w after %s", domain.ErrConfirmationTimeout, s.opts.ConfirmTimeout)
		case <-ticker.C:
		}
	}
}

// Compile-time assertion that Submitter implements domain.CookieSubmitter.
var _ domain.CookieSubmitter = (*Submitter)(nil)
