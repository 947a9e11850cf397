// Package pda derives program addresses: deterministic account locations
// computed offline from seeds, matching the ledger runtime's own rule.
//
// # Derivation
//
//	address = sha256(seed_1 ‖ … ‖ seed_n ‖ bump ‖ program ‖ "ProgramDerivedAddress")
//
// The bump is searched from 255 downward; the first hash that does not
// decode to an ed25519 point wins. Seeds are raw bytes: public keys as their
// 32 bytes, tags as UTF-8 literals and integers as fixed-width little-endian
// (U64LE).
//
// The functions are pure and total over their input domain. A disagreement
// with the program's derivation is protocol drift and is reported by callers
// as domain.ErrProtocolDrift.
package pda
