package identity

import (
	"fmt"
	"strings"

	"fortunecookie/internal/crypto"
	"fortunecookie/internal/domain"
)

const (
	// minPassphraseLength defines the minimum number of characters required for a passphrase.
	minPassphraseLength = 8
)

var (
	// ErrWeakPassphrase is returned when the passphrase fails the length policy.
	ErrWeakPassphrase = fmt.Errorf(
		"passphrase is too weak (must be at least %d non-blank characters)",
		minPassphraseLength,
	)
)

// Service manages the signing keypair using a backing store.
//
// The keypair is a single ed25519 key: its public half is the wallet
// address that owns cookies and pays for transactions.
type Service struct {
	store domain.KeypairStore
}

// New returns an identity service backed by the given store.
func New(s domain.KeypairStore) *Service { return &Service{store: s} }

// GenerateIdentity creates a new keypair, saves it encrypted with the
// passphrase, and returns it plus a short fingerprint of the address.
func (s *Service) GenerateIdentity(passphrase string) (domain.Keypair, domain.Fingerprint, error) {
	kp, err := crypto.GenerateKeypair()
	if err != nil {
		return domain.Keypair{}, "", err
	}
	return s.ImportIdentity(passphrase, kp)
}

// ImportIdentity stores an existing keypair, for example one read from a
// Solana CLI keypair file.
func (s *Service) ImportIdentity(passphrase string, kp domain.Keypair) (domain.Keypair, domain.Fingerprint, error) {
	if !isSecurePassphrase(passphrase) {
		return domain.Keypair{}, "", ErrWeakPassphrase
	}
	if err := s.store.SaveKeypair(passphrase, kp); err != nil {
		return domain.Keypair{}, "", err
	}
	return kp, crypto.Fingerprint(kp.Public), nil
}

// LoadIdentity decrypts and returns the local keypair.
func (s *Service) LoadIdentity(passphrase string) (domain.Keypair, error) {
	return s.store.LoadKeypair(passphrase)
}

// FingerprintIdentity returns a short fingerprint of the local address.
func (s *Service) FingerprintIdentity(passphrase string) (domain.Fingerprint, error) {
	kp, err := s.store.LoadKeypair(passphrase)
	if err != nil {
		return "", err
	}
	return crypto.Fingerprint(kp.Public), nil
}

// isSecurePassphrase enforces a basic length policy.
func isSecurePassphrase(passphrase string) bool {
	return len([]rune(strings.TrimSpace(passphrase))) >= minPassphraseLength
}

// Compile-time assertion that Service implements domain.IdentityService.
var _ domain.IdentityService = (*Service)(nil)
