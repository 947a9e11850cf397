package domain

import "errors"

// Ledger and transaction failures. All are recoverable except ErrProtocolDrift.
var (
	// ErrNoSigner is returned when an action needs a wallet and none is configured.
	ErrNoSigner = errors.New("no signing authority configured")
	// ErrSigningDeclined is returned when the signing authority refuses to sign.
	ErrSigningDeclined = errors.New("signing declined")
	// ErrSimulationRejected is returned when preflight simulation rejects a transaction.
	ErrSimulationRejected = errors.New("transaction rejected by simulation")
	// ErrNetwork wraps transport failures and RPC-side errors.
	ErrNetwork = errors.New("ledger network error")
	// ErrConfirmationTimeout is returned when a submitted transaction was not
	// confirmed before the attempt was abandoned.
	ErrConfirmationTimeout = errors.New("transaction confirmation timed out")
	// ErrTransactionFailed is returned when a transaction was included but failed.
	ErrTransactionFailed = errors.New("transaction failed on chain")
	// ErrAlreadyInitialized is returned when the stats account already exists.
	ErrAlreadyInitialized = errors.New("account already initialized")
	// ErrAccountNotFound is returned when a read finds no account.
	ErrAccountNotFound = errors.New("account not found")
	// ErrStatsNotReady is returned when cracking before the stats account exists.
	ErrStatsNotReady = errors.New("stats account not initialized")
	// ErrProtocolDrift means local address derivation or account layout no
	// longer matches the program. It is fatal and never retried.
	ErrProtocolDrift = errors.New("client and program disagree on account derivation or layout")
)

// Gesture session failures.
var (
	ErrModelLoad         = errors.New("hand tracking model failed to load")
	ErrInitTimeout       = errors.New("hand tracking initialization timed out")
	ErrCameraDenied      = errors.New("camera permission denied")
	ErrCameraUnavailable = errors.New("camera unavailable")
	ErrCameraStalled     = errors.New("camera stream produced no frames")
)
