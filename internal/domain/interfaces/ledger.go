package interfaces

import (
	"context"

	domaintypes "fortunecookie/internal/domain/types"
)

// LedgerClient is how we talk to the remote ledger, all with context.
type LedgerClient interface {
	LatestBlockhash(ctx context.Context) (domaintypes.Blockhash, error)
	// SendTransaction submits a signed wire transaction after preflight
	// simulation and returns its first signature.
	SendTransaction(ctx context.Context, raw []byte) (domaintypes.Signature, error)
	// SignatureStatus reports the status of sig; ok is false while the
	// ledger has not seen it.
	SignatureStatus(
		ctx context.Context,
		sig domaintypes.Signature,
	) (status domaintypes.SignatureStatus, ok bool, err error)
	// ProgramAccounts returns the addresses of program-owned accounts that
	// pass every filter. Account data is not transferred.
	ProgramAccounts(
		ctx context.Context,
		program domaintypes.PublicKey,
		filters ...domaintypes.AccountFilter,
	) ([]domaintypes.PublicKey, error)
	// AccountInfo returns the account at addr; ok is false when it does not exist.
	AccountInfo(
		ctx context.Context,
		addr domaintypes.PublicKey,
	) (info domaintypes.AccountInfo, ok bool, err error)
}

// Signer is the user's signing authority. SignMessage may refuse with
// domain.ErrSigningDeclined.
type Signer interface {
	PublicKey() domaintypes.PublicKey
	SignMessage(ctx context.Context, message []byte) (domaintypes.Signature, error)
}
