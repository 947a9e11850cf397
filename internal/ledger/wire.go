package ledger

import (
	"encoding/json"
)

// JSON-RPC method names.
const (
	MethodGetLatestBlockhash   = "getLatestBlockhash"
	MethodSendTransaction      = "sendTransaction"
	MethodGetSignatureStatuses = "getSignatureStatuses"
	MethodGetProgramAccounts   = "getProgramAccounts"
	MethodGetAccountInfo       = "getAccountInfo"
)

// Well-known JSON-RPC error codes.
const (
	CodeInvalidRequest     = -32600
	CodeMethodNotFound     = -32601
	CodeInvalidParams      = -32602
	CodeInternal           = -32603
	CodePreflightFailure   = -32002
	CodeSignatureVerifyErr = -32003
)

// Request is a JSON-RPC 2.0 request envelope.
type Request struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      string            `json:"id"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params,omitempty"`
}

// Response is a JSON-RPC 2.0 response envelope.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ErrorObject    `json:"error,omitempty"`
}

// ErrorObject is the error member of a Response.
type ErrorObject struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    *SimulationData `json:"data,omitempty"`
}

// SimulationData is the data attached to a preflight failure.
type SimulationData struct {
	Err  json.RawMessage `json:"err,omitempty"`
	Logs []string        `json:"logs,omitempty"`
}

// Context carries the slot a result was read at.
type Context struct {
	Slot uint64 `json:"slot"`
}

// BlockhashResult is the result of getLatestBlockhash.
type BlockhashResult struct {
	Context Context `json:"context"`
	Value   struct {
		Blockhash            string `json:"blockhash"`
		LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
	} `json:"value"`
}

// StatusValue is one entry of getSignatureStatuses.
type StatusValue struct {
	Slot               uint64          `json:"slot"`
	Confirmations      *uint64         `json:"confirmations"`
	Err                json.RawMessage `json:"err"`
	ConfirmationStatus string          `json:"confirmationStatus"`
}

// StatusesResult is the result of getSignatureStatuses.
type StatusesResult struct {
	Context Context        `json:"context"`
	Value   []*StatusValue `json:"value"`
}

// AccountValue is account state as returned with base64 encoding.
type AccountValue struct {
	Data       [2]string `json:"data"`
	Owner      string    `json:"owner"`
	Lamports   uint64    `json:"lamports"`
	Executable bool      `json:"executable"`
	RentEpoch  uint64    `json:"rentEpoch"`
	Space      uint64    `json:"space"`
}

// AccountInfoResult is the result of getAccountInfo.
type AccountInfoResult struct {
	Context Context       `json:"context"`
	Value   *AccountValue `json:"value"`
}

// KeyedAccount is one entry of getProgramAccounts.
type KeyedAccount struct {
	Pubkey  string       `json:"pubkey"`
	Account AccountValue `json:"account"`
}

// CommitmentConfig is the common options object.
type CommitmentConfig struct {
	Commitment string `json:"commitment,omitempty"`
	Encoding   string `json:"encoding,omitempty"`
}

// SendConfig is the options object of sendTransaction.
type SendConfig struct {
	Encoding            string `json:"encoding"`
	SkipPreflight       bool   `json:"skipPreflight"`
	PreflightCommitment string `json:"preflightCommitment,omitempty"`
}

// StatusesConfig is the options object of getSignatureStatuses.
type StatusesConfig struct {
	SearchTransactionHistory bool `json:"searchTransactionHistory"`
}

// DataSlice limits the returned account data.
type DataSlice struct {
	Offset uint64 `json:"offset"`
	Length uint64 `json:"length"`
}

// MemcmpFilter compares base58 Bytes at Offset.
type MemcmpFilter struct {
	Offset uint64 `json:"offset"`
	Bytes  string `json:"bytes"`
}

// FilterObject is one getProgramAccounts filter.
type FilterObject struct {
	DataSize *uint64       `json:"dataSize,omitempty"`
	Memcmp   *MemcmpFilter `json:"memcmp,omitempty"`
}

// ProgramAccountsConfig is the options object of getProgramAccounts.
type ProgramAccountsConfig struct {
	Commitment string         `json:"commitment,omitempty"`
	Encoding   string         `json:"encoding,omitempty"`
	Filters    []FilterObject `json:"filters,omitempty"`
	DataSlice  *DataSlice     `json:"dataSlice,omitempty"`
}
