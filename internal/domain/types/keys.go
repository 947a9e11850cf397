package types

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// PublicKey is a 32-byte ed25519 public key or program derived address.
type PublicKey [32]byte

// Slice returns the key as a []byte.
func (p PublicKey) Slice() []byte { return p[:] }

// String returns the base58 form used by wallets and the RPC.
func (p PublicKey) String() string { return base58.Encode(p[:]) }

// IsZero reports whether every byte is zero (the system program id).
func (p PublicKey) IsZero() bool { return p == PublicKey{} }

// MarshalText encodes the key as base58.
func (p PublicKey) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText decodes a base58 key.
func (p *PublicKey) UnmarshalText(text []byte) error {
	k, err := ParsePublicKey(string(text))
	if err != nil {
		return err
	}
	*p = k
	return nil
}

// ParsePublicKey decodes a base58 string into a PublicKey.
func ParsePublicKey(s string) (PublicKey, error) {
	var out PublicKey
	b, err := base58.Decode(s)
	if err != nil {
		return out, fmt.Errorf("public key %q: %w", s, err)
	}
	if len(b) != len(out) {
		return out, fmt.Errorf("public key %q: want 32 bytes, got %d", s, len(b))
	}
	copy(out[:], b)
	return out, nil
}

// MustPublicKey is ParsePublicKey for compile-time constants.
func MustPublicKey(s string) PublicKey {
	k, err := ParsePublicKey(s)
	if err != nil {
		panic(err)
	}
	return k
}

// Ed25519Private is a signing private key (ed25519.PrivateKey layout: seed ‖ public).
type Ed25519Private [64]byte

// Slice returns the key as a []byte.
func (k Ed25519Private) Slice() []byte { return k[:] }

// Signature is a 64-byte ed25519 signature; its base58 form is the transaction id.
type Signature [64]byte

// String returns the base58 form.
func (s Signature) String() string { return base58.Encode(s[:]) }

// IsZero reports whether the signature is unset.
func (s Signature) IsZero() bool { return s == Signature{} }

// ParseSignature decodes a base58 transaction signature.
func ParseSignature(s string) (Signature, error) {
	var out Signature
	b, err := base58.Decode(s)
	if err != nil {
		return out, fmt.Errorf("signature %q: %w", s, err)
	}
	if len(b) != len(out) {
		return out, fmt.Errorf("signature %q: want 64 bytes, got %d", s, len(b))
	}
	copy(out[:], b)
	return out, nil
}

// Hash is a 32-byte blockhash.
type Hash [32]byte

// String returns the base58 form.
func (h Hash) String() string { return base58.Encode(h[:]) }

// ParseHash decodes a base58 blockhash.
func ParseHash(s string) (Hash, error) {
	var out Hash
	b, err := base58.Decode(s)
	if err != nil {
		return out, fmt.Errorf("hash %q: %w", s, err)
	}
	if len(b) != len(out) {
		return out, fmt.Errorf("hash %q: want 32 bytes, got %d", s, len(b))
	}
	copy(out[:], b)
	return out, nil
}
