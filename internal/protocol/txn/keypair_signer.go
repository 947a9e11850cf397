package txn

import (
	"context"

	"fortunecookie/internal/crypto"
	"fortunecookie/internal/domain"
)

// KeypairSigner signs with an in-memory keypair and never declines.
type KeypairSigner struct {
	kp domain.Keypair
}

// NewKeypairSigner wraps kp as a domain.Signer.
func NewKeypairSigner(kp domain.Keypair) *KeypairSigner { return &KeypairSigner{kp: kp} }

// PublicKey returns the signer's address.
func (s *KeypairSigner) PublicKey() domain.PublicKey { return s.kp.Public }

// SignMessage signs message unless ctx is already done.
func (s *KeypairSigner) SignMessage(ctx context.Context, message []byte) (domain.Signature, error) {
	if err := ctx.Err(); err != nil {
		return domain.Signature{}, err
	}
	return crypto.Sign(s.kp.Private, message), nil
}

// Compile-time assertion that KeypairSigner implements domain.Signer.
var _ domain.Signer = (*KeypairSigner)(nil)
