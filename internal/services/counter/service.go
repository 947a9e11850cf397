package counter

import (
	"context"
	"fmt"

	"fortunecookie/internal/domain"
	"fortunecookie/internal/protocol/anchor"
)

// Service counts a user's existing cookies to find the next sequence number.
type Service struct {
	ledger  domain.LedgerClient
	program domain.PublicKey
}

// New returns a counter resolver for program.
func New(ledger domain.LedgerClient, program domain.PublicKey) *Service {
	return &Service{ledger: ledger, program: program}
}

// NextCounter returns how many cookies owner already has. That count is the
// counter seed of the next cookie. Two derivations racing against the same
// ledger state return the same value; the loser fails on submission.
func (s *Service) NextCounter(ctx context.Context, owner domain.PublicKey) (uint64, error) {
	keys, err := s.ledger.ProgramAccounts(ctx, s.program, anchor.OwnerFilters(owner)...)
	if err != nil {
		return 0, fmt.Errorf("count cookies for %s: %w", owner, err)
	}
	return uint64(len(keys)), nil
}

// Compile-time assertion that Service implements domain.CounterResolver.
var _ domain.CounterResolver = (*Service)(nil)
