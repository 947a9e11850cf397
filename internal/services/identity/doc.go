// Package identity manages creation, import and loading of the local
// signing keypair.
//
// It enforces a passphrase policy, generates ed25519 keypairs, and persists
// them via the domain.KeypairStore.
package identity
