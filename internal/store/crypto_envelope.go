package store

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"fortunecookie/internal/domain"
	"fortunecookie/internal/util/memzero"
)

// keystoreVersion is the envelope format written by seal.
const keystoreVersion = 2

// ErrWrongPassphrase is returned when the passphrase is incorrect or the
// envelope has been modified or corrupted.
var ErrWrongPassphrase = errors.New("wrong passphrase or corrupted keystore")

// kdfParams records the scrypt cost the envelope key was derived with.
type kdfParams struct {
	Salt []byte `json:"salt"`
	N    int    `json:"n"`
	R    int    `json:"r"`
	P    int    `json:"p"`
}

// envelope is the on-disk keystore. The address is stored in clear so the
// wallet can be identified without the passphrase, and is authenticated as
// associated data so it cannot be swapped.
type envelope struct {
	Version int              `json:"version"`
	Address domain.PublicKey `json:"address"`
	KDF     kdfParams        `json:"kdf"`
	Nonce   []byte           `json:"nonce"`
	Cipher  []byte           `json:"cipher"`
}

func (e *envelope) aad() []byte {
	return append(append([]byte(nil), e.Address[:]...), e.KDF.Salt...)
}

func deriveKey(passphrase string, k kdfParams) ([]byte, error) {
	return scrypt.Key([]byte(passphrase), k.Salt, k.N, k.R, k.P, chacha20poly1305.KeySize)
}

// seal encrypts raw for address under a fresh salt and nonce.
func seal(passphrase string, address domain.PublicKey, raw []byte) ([]byte, error) {
	N, r, p := scryptParamsDefault()
	e := envelope{
		Version: keystoreVersion,
		Address: address,
		KDF:     kdfParams{Salt: make([]byte, 16), N: N, R: r, P: p},
		Nonce:   make([]byte, chacha20poly1305.NonceSizeX),
	}
	if _, err := rand.Read(e.KDF.Salt); err != nil {
		return nil, err
	}
	if _, err := rand.Read(e.Nonce); err != nil {
		return nil, err
	}
	key, err := deriveKey(passphrase, e.KDF)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	e.Cipher = aead.Seal(nil, e.Nonce, raw, e.aad())
	return json.MarshalIndent(e, "", "  ")
}

// open authenticates and decrypts an envelope, returning the plaintext and
// the address it was sealed for.
func open(passphrase string, b []byte) ([]byte, domain.PublicKey, error) {
	var e envelope
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, domain.PublicKey{}, fmt.Errorf("keystore: %w", err)
	}
	if e.Version != keystoreVersion {
		return nil, domain.PublicKey{}, fmt.Errorf("unsupported keystore version %d", e.Version)
	}
	if len(e.Nonce) != chacha20poly1305.NonceSizeX {
		return nil, domain.PublicKey{}, fmt.Errorf("keystore: nonce is %d bytes", len(e.Nonce))
	}

	key, err := deriveKey(passphrase, e.KDF)
	if err != nil {
		return nil, domain.PublicKey{}, fmt.Errorf("keystore kdf: %w", err)
	}
	defer memzero.Zero(key)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, domain.PublicKey{}, err
	}
	pt, err := aead.Open(nil, e.Nonce, e.Cipher, e.aad())
	if err != nil {
		return nil, domain.PublicKey{}, ErrWrongPassphrase
	}
	return pt, e.Address, nil
}

// peekAddress returns the clear-text address of an envelope without
// decrypting it. The address is only trustworthy after open succeeds.
func peekAddress(b []byte) (domain.PublicKey, error) {
	var e struct {
		Address domain.PublicKey `json:"address"`
	}
	if err := json.Unmarshal(b, &e); err != nil {
		return domain.PublicKey{}, fmt.Errorf("keystore: %w", err)
	}
	return e.Address, nil
}

// Tunables for scrypt key derivation. Tests lower them through scryptParams.
var scryptParams = [3]int{1 << 15, 8, 1}

func scryptParamsDefault() (N, r, p int) { return scryptParams[0], scryptParams[1], scryptParams[2] }
