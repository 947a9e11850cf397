// Package wallet is the CLI's signing authority: it resolves the keystore
// passphrase, unlocks the local keypair and optionally asks for approval
// before each signature. Declining surfaces as domain.ErrSigningDeclined.
package wallet
