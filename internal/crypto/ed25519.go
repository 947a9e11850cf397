package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"fortunecookie/internal/domain"
)

// GenerateKeypair returns a new Ed25519 signing keypair.
func GenerateKeypair() (domain.Keypair, error) {
	pk, sk, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return domain.Keypair{}, err
	}
	var kp domain.Keypair
	copy(kp.Private[:], sk)
	copy(kp.Public[:], pk)
	return kp, nil
}

// KeypairFromSecret accepts either a 32-byte seed or a 64-byte
// seed‖public secret (the layout of Solana CLI keypair files).
func KeypairFromSecret(secret []byte) (domain.Keypair, error) {
	var sk ed25519.PrivateKey
	switch len(secret) {
	case ed25519.SeedSize:
		sk = ed25519.NewKeyFromSeed(secret)
	case ed25519.PrivateKeySize:
		sk = ed25519.NewKeyFromSeed(secret[:ed25519.SeedSize])
		if string(sk[ed25519.SeedSize:]) != string(secret[ed25519.SeedSize:]) {
			return domain.Keypair{}, fmt.Errorf("secret key: public half does not match seed")
		}
	default:
		return domain.Keypair{}, fmt.Errorf("secret key: want 32 or 64 bytes, got %d", len(secret))
	}
	var kp domain.Keypair
	copy(kp.Private[:], sk)
	copy(kp.Public[:], sk.Public().(ed25519.PublicKey))
	return kp, nil
}

// Sign signs msg with priv and returns the signature.
func Sign(priv domain.Ed25519Private, msg []byte) domain.Signature {
	var sig domain.Signature
	copy(sig[:], ed25519.Sign(ed25519.PrivateKey(priv[:]), msg))
	return sig
}

// Verify verifies sig over msg with pub.
func Verify(pub domain.PublicKey, msg []byte, sig domain.Signature) bool {
	return ed25519.Verify(ed25519.PublicKey(pub[:]), msg, sig[:])
}
