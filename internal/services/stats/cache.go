package stats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"fortunecookie/internal/domain"
	"fortunecookie/internal/observability/logging"
	"fortunecookie/internal/protocol/anchor"
)

// Cache owns the displayed total of cookies opened across all users.
type Cache struct {
	ledger    domain.LedgerClient
	submitter domain.CookieSubmitter
	program   domain.PublicKey
	log       *slog.Logger

	mu    sync.RWMutex
	total uint64
	valid bool
}

// New returns a Cache for program. submitter is used only by Initialize.
func New(ledger domain.LedgerClient, submitter domain.CookieSubmitter, program domain.PublicKey, log *slog.Logger) *Cache {
	return &Cache{ledger: ledger, submitter: submitter, program: program, log: logging.OrDefault(log)}
}

// Initialize creates the stats account unless it already exists. Losing a
// creation race to another client is not an error.
func (c *Cache) Initialize(ctx context.Context, signer domain.Signer) error {
	ready, err := c.Ready(ctx)
	if err != nil {
		return err
	}
	if ready {
		return nil
	}
	sig, err := c.submitter.InitializeStats(ctx, signer)
	if errors.Is(err, domain.ErrAlreadyInitialized) {
		c.log.Info("stats account already initialized")
		return nil
	}
	if err != nil {
		return err
	}
	c.log.Info("stats account initialized", "signature", sig.String())
	return nil
}

// Ready reports whether the stats account exists.
func (c *Cache) Ready(ctx context.Context) (bool, error) {
	addr, err := anchor.StatsAddress(c.program)
	if err != nil {
		return false, fmt.Errorf("%w: stats address: %w", domain.ErrProtocolDrift, err)
	}
	info, ok, err := c.ledger.AccountInfo(ctx, addr.Address)
	if err != nil {
		return false, err
	}
	if ok && info.Owner != c.program {
		return false, fmt.Errorf("%w: stats account owned by %s", domain.ErrProtocolDrift, info.Owner)
	}
	return ok, nil
}

// Refresh re-reads total_opens. On any failure the displayed value is
// cleared and ok is false.
func (c *Cache) Refresh(ctx context.Context) (uint64, bool) {
	total, err := c.read(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.log.Warn("stats refresh failed", "err", err)
		c.total, c.valid = 0, false
		return 0, false
	}
	c.total, c.valid = total, true
	return total, true
}

func (c *Cache) read(ctx context.Context) (uint64, error) {
	addr, err := anchor.StatsAddress(c.program)
	if err != nil {
		return 0, err
	}
	info, ok, err := c.ledger.AccountInfo(ctx, addr.Address)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, domain.ErrStatsNotReady
	}
	rec, err := anchor.DecodeStats(info.Data)
	if err != nil {
		return 0, err
	}
	return rec.TotalOpens, nil
}

// Total returns the last successfully refreshed value.
func (c *Cache) Total() (uint64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.total, c.valid
}

// Compile-time assertion that Cache implements domain.AggregateCache.
var _ domain.AggregateCache = (*Cache)(nil)
