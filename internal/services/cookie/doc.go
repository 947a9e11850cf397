// Package cookie submits fortune_cookie instructions and resolves the
// resulting cookies into fortunes.
//
// Submitter turns one intent into one signed legacy transaction: fetch a
// blockhash, compile, sign with the user's authority, send with preflight,
// then poll signature status until the configured commitment is reached, the
// transaction fails on chain, or the confirm timeout elapses. Callers see a
// confirmed receipt or an error, never a half-finished state.
//
// Resolver re-reads the cookie at the derived address, verifies it against
// what the client derived (program owner, discriminator, owner field, bump)
// and picks the fortune text at fortune_id modulo the pool length.
package cookie
