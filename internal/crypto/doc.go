// Package crypto exposes the minimal primitives used by the fortune client.
//
// Contents
//
//   - Ed25519 key generation, import, signing and verification
//     (GenerateKeypair, KeypairFromSecret, Sign, Verify)
//   - Short public-key fingerprints for display/logging (Fingerprint)
//   - Text encodings for keys and transactions (B58, B64)
//
// # Notes
//
// All functions return fixed-size array types defined in internal/domain to
// avoid accidental reallocations. Callers should treat private keys as
// sensitive and wipe copies with util/memzero when practical.
package crypto
