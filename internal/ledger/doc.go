// Package ledger is the JSON-RPC client for the remote ledger.
//
// It implements domain.LedgerClient over HTTP with the five methods the
// cookie flow needs: getLatestBlockhash, sendTransaction (base64, preflight
// on), getSignatureStatuses, getProgramAccounts (filters, empty data slice)
// and getAccountInfo (base64).
//
// # Errors
//
// Transport failures wrap domain.ErrNetwork. Error members returned by the
// node come back as *RPCError, which unwraps to domain.ErrSimulationRejected
// for preflight failures and domain.ErrNetwork otherwise; an "already in use"
// rejection additionally matches domain.ErrAlreadyInitialized.
//
// Requests carry a uuid id, pass an optional token-bucket limiter and are
// counted in the fortune_rpc_* metrics.
package ledger
