package types

// Keypair holds the user's long-term ed25519 signing keys.
type Keypair struct {
	Public  PublicKey      `json:"public"`
	Private Ed25519Private `json:"private"`
}

// Fingerprint is the short form of an address presented to users.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }
