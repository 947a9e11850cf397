// Package txn compiles, signs and decodes legacy ledger transactions.
//
// # Wire format
//
//	transaction = compact-u16 n ‖ n × 64-byte signature ‖ message
//	message     = header(3) ‖ compact-u16 k ‖ k × 32-byte key ‖ blockhash(32)
//	              ‖ compact-u16 i ‖ i × instruction
//	instruction = program index(1) ‖ compact-u16 a ‖ a × index ‖ compact-u16 d ‖ d × data
//
// NewMessage orders accounts the way the runtime requires (writable
// signers, read-only signers, writable, read-only) and fills the header.
// Decode is used by the ledger emulator to parse what the client submits.
package txn
