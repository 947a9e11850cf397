package types

// Commitment is the confirmation level requested from the RPC.
type Commitment string

const (
	CommitmentProcessed Commitment = "processed"
	CommitmentConfirmed Commitment = "confirmed"
	CommitmentFinalized Commitment = "finalized"
)

// Reached reports whether status c is at least as strong as want.
func (c Commitment) Reached(want Commitment) bool {
	return commitmentRank(c) >= commitmentRank(want) && commitmentRank(c) > 0
}

func commitmentRank(c Commitment) int {
	switch c {
	case CommitmentProcessed:
		return 1
	case CommitmentConfirmed:
		return 2
	case CommitmentFinalized:
		return 3
	}
	return 0
}

// Blockhash is a recent blockhash and the last block height it is valid for.
type Blockhash struct {
	Hash                 Hash   `json:"hash"`
	LastValidBlockHeight uint64 `json:"last_valid_block_height"`
}

// AccountInfo is the subset of account state the client reads.
type AccountInfo struct {
	Owner    PublicKey `json:"owner"`
	Lamports uint64    `json:"lamports"`
	Data     []byte    `json:"data"`
}

// SignatureStatus reports where a submitted transaction is.
type SignatureStatus struct {
	Slot               uint64     `json:"slot"`
	ConfirmationStatus Commitment `json:"confirmation_status"`
	// Err is the raw on-chain error, empty when the transaction succeeded.
	Err string `json:"err,omitempty"`
}

// Memcmp matches Bytes at Offset in account data.
type Memcmp struct {
	Offset uint64
	Bytes  []byte
}

// AccountFilter is one server-side getProgramAccounts filter. Exactly one
// field is set.
type AccountFilter struct {
	DataSize *uint64
	Memcmp   *Memcmp
}
