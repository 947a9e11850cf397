package interfaces

import (
	"context"

	domaintypes "fortunecookie/internal/domain/types"
)

// IdentityService creates, retrieves, and inspects your signing keypair.
type IdentityService interface {
	GenerateIdentity(passphrase string) (
		domaintypes.Keypair,
		domaintypes.Fingerprint,
		error,
	)
	LoadIdentity(passphrase string) (domaintypes.Keypair, error)
	FingerprintIdentity(passphrase string) (domaintypes.Fingerprint, error)
}

// CounterResolver computes the next per-user sequence counter.
type CounterResolver interface {
	NextCounter(ctx context.Context, owner domaintypes.PublicKey) (uint64, error)
}

// CookieSubmitter builds, signs, submits and confirms program instructions.
type CookieSubmitter interface {
	OpenCookie(
		ctx context.Context,
		signer Signer,
		archetype domaintypes.Archetype,
		counter uint64,
		cookie domaintypes.DerivedAddress,
	) (domaintypes.OpenReceipt, error)
	InitializeStats(ctx context.Context, signer Signer) (domaintypes.Signature, error)
}

// RewardResolver reads back a confirmed cookie and maps it to a fortune.
type RewardResolver interface {
	ResolveFortune(
		ctx context.Context,
		owner domaintypes.PublicKey,
		receipt domaintypes.OpenReceipt,
	) (domaintypes.Fortune, error)
}

// AggregateCache owns the singleton stats record.
type AggregateCache interface {
	Initialize(ctx context.Context, signer Signer) error
	Refresh(ctx context.Context) (uint64, bool)
	Ready(ctx context.Context) (bool, error)
	Total() (uint64, bool)
}

// FortunePool is the read-only content pool.
type FortunePool interface {
	Pick(
		archetype domaintypes.Archetype,
		rarity domaintypes.Rarity,
		fortuneID uint64,
	) (string, error)
}
