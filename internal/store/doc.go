// Package store provides file-based persistence for the fortune CLI.
//
// The only thing persisted locally is the user's ed25519 signing keypair.
// It is serialised as JSON, sealed with XChaCha20-Poly1305 under a key derived
// from the passphrase with scrypt, and written atomically (temp file, fsync,
// rename) with mode 0600 under the configured home directory. Plaintext
// buffers are wiped after use. The wallet address sits in clear beside the
// ciphertext and is bound to it as associated data. Methods are
// concurrency-safe via internal locking.
//
// Sequence counters, cookie addresses and stats are never cached here; they
// are always re-derived from the ledger.
package store
