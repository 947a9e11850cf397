package cookie

import (
	"context"
	"fmt"

	"fortunecookie/internal/domain"
	"fortunecookie/internal/protocol/anchor"
)

// Resolver reads back a confirmed cookie and maps it to fortune text.
type Resolver struct {
	ledger  domain.LedgerClient
	program domain.PublicKey
	pool    domain.FortunePool
}

// NewResolver returns a Resolver that draws text from pool.
func NewResolver(ledger domain.LedgerClient, program domain.PublicKey, pool domain.FortunePool) *Resolver {
	return &Resolver{ledger: ledger, program: program, pool: pool}
}

// ResolveFortune re-reads the cookie named by receipt and checks it is the
// account this client derived. Any disagreement is domain.ErrProtocolDrift.
func (r *Resolver) ResolveFortune(
	ctx context.Context,
	owner domain.PublicKey,
	receipt domain.OpenReceipt,
) (domain.Fortune, error) {
	addr := receipt.Cookie.Address
	info, ok, err := r.ledger.AccountInfo(ctx, addr)
	if err != nil {
		return domain.Fortune{}, fmt.Errorf("read cookie %s: %w", addr, err)
	}
	if !ok {
		return domain.Fortune{}, fmt.Errorf("read cookie %s: %w", addr, domain.ErrAccountNotFound)
	}
	if info.Owner != r.program {
		return domain.Fortune{}, fmt.Errorf("%w: cookie %s owned by %s", domain.ErrProtocolDrift, addr, info.Owner)
	}
	rec, err := anchor.DecodeCookie(info.Data)
	if err != nil {
		return domain.Fortune{}, err
	}
	if rec.Owner != owner {
		return domain.Fortune{}, fmt.Errorf("%w: cookie %s belongs to %s", domain.ErrProtocolDrift, addr, rec.Owner)
	}
	if rec.Bump != receipt.Cookie.Bump {
		return domain.Fortune{}, fmt.Errorf("%w: cookie %s bump %d, derived %d",
			domain.ErrProtocolDrift, addr, rec.Bump, receipt.Cookie.Bump)
	}

	archetype := rec.Archetype
	if !archetype.Valid() {
		archetype = receipt.Archetype
	}
	rarity := rec.Rarity.OrLowest()
	text, err := r.pool.Pick(archetype, rarity, rec.FortuneID)
	if err != nil {
		return domain.Fortune{}, err
	}
	return domain.Fortune{
		Archetype: archetype,
		Rarity:    rarity,
		Text:      text,
		Record:    rec,
		Receipt:   receipt,
	}, nil
}

// Compile-time assertion that Resolver implements domain.RewardResolver.
var _ domain.RewardResolver = (*Resolver)(nil)
