package wallet

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"fortunecookie/internal/crypto"
	"fortunecookie/internal/domain"
	"fortunecookie/internal/protocol/txn"
	"fortunecookie/internal/store"
)

// ConfirmFunc asks the user whether to sign; false declines.
type ConfirmFunc func(ctx context.Context, signer domain.PublicKey, message []byte) (bool, error)

// ConfirmingSigner asks for approval before every signature, the way a
// browser wallet pops up a request.
type ConfirmingSigner struct {
	inner   domain.Signer
	confirm ConfirmFunc
}

// NewConfirmingSigner wraps inner so each SignMessage first calls confirm.
func NewConfirmingSigner(inner domain.Signer, confirm ConfirmFunc) *ConfirmingSigner {
	return &ConfirmingSigner{inner: inner, confirm: confirm}
}

// PublicKey returns the wrapped signer's address.
func (s *ConfirmingSigner) PublicKey() domain.PublicKey { return s.inner.PublicKey() }

// SignMessage signs after approval, or fails with domain.ErrSigningDeclined.
func (s *ConfirmingSigner) SignMessage(ctx context.Context, message []byte) (domain.Signature, error) {
	ok, err := s.confirm(ctx, s.inner.PublicKey(), message)
	if err != nil {
		return domain.Signature{}, fmt.Errorf("%w: %w", domain.ErrSigningDeclined, err)
	}
	if !ok {
		return domain.Signature{}, domain.ErrSigningDeclined
	}
	return s.inner.SignMessage(ctx, message)
}

// PromptConfirm returns a ConfirmFunc that asks y/N on out and reads the
// answer from in. Anything other than y or yes declines.
func PromptConfirm(in io.Reader, out io.Writer) ConfirmFunc {
	r := bufio.NewReader(in)
	return func(ctx context.Context, signer domain.PublicKey, message []byte) (bool, error) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		fmt.Fprintf(out, "Approve transaction (%d bytes) for %s? [y/N]: ", len(message), crypto.Fingerprint(signer))
		line, err := r.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	}
}

// Open loads the keystore with the passphrase from src and returns a
// signer for it. A missing keystore yields domain.ErrNoSigner.
func Open(ks *store.KeypairFileStore, src *Source) (domain.Signer, error) {
	if ks == nil {
		return nil, domain.ErrNoSigner
	}
	if _, err := os.Stat(ks.Path()); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %w", domain.ErrNoSigner, store.ErrNoKeypair)
	}
	pass, err := src.Get()
	if err != nil {
		return nil, err
	}
	kp, err := ks.LoadKeypair(pass)
	if errors.Is(err, store.ErrNoKeypair) {
		return nil, fmt.Errorf("%w: %w", domain.ErrNoSigner, err)
	}
	if err != nil {
		return nil, err
	}
	return txn.NewKeypairSigner(kp), nil
}

// Compile-time assertion that ConfirmingSigner implements domain.Signer.
var _ domain.Signer = (*ConfirmingSigner)(nil)
