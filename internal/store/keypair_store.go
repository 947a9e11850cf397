package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"fortunecookie/internal/crypto"
	"fortunecookie/internal/domain"
	"fortunecookie/internal/util/memzero"
)

const keypairFilename = "keypair.json.enc"

// ErrNoKeypair is returned by LoadKeypair before a keypair has been saved.
var ErrNoKeypair = errors.New("no keypair found; run `fortune init` first")

// plainKeypair is the JSON that gets encrypted on disk.
type plainKeypair struct {
	Public domain.PublicKey `json:"public"`
	Secret []byte           `json:"secret"`
}

// KeypairFileStore persists the signing keypair to disk, encrypted under a
// passphrase.
type KeypairFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewKeypairFileStore returns a KeypairFileStore rooted at dir.
func NewKeypairFileStore(dir string) *KeypairFileStore {
	return &KeypairFileStore{dir: dir}
}

// Path returns the keystore file location.
func (s *KeypairFileStore) Path() string { return filepath.Join(s.dir, keypairFilename) }

// SaveKeypair encrypts kp and atomically replaces the keystore file.
func (s *KeypairFileStore) SaveKeypair(passphrase string, kp domain.Keypair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	secret := kp.Private.Slice()
	raw, err := json.Marshal(plainKeypair{Public: kp.Public, Secret: secret})
	if err != nil {
		return err
	}
	defer memzero.Zero(raw)

	ct, err := seal(passphrase, kp.Public, raw)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	return writeFile(s.Path(), ct, 0o600)
}

// LoadKeypair reads and decrypts the keypair.
func (s *KeypairFileStore) LoadKeypair(passphrase string) (domain.Keypair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := readFile(s.Path())
	if err != nil {
		return domain.Keypair{}, err
	}
	if b == nil {
		return domain.Keypair{}, ErrNoKeypair
	}
	pt, address, err := open(passphrase, b)
	if err != nil {
		return domain.Keypair{}, err
	}
	defer memzero.Zero(pt)

	var plain plainKeypair
	if err := json.Unmarshal(pt, &plain); err != nil {
		return domain.Keypair{}, err
	}
	defer memzero.Zero(plain.Secret)

	kp, err := crypto.KeypairFromSecret(plain.Secret)
	if err != nil {
		return domain.Keypair{}, err
	}
	if kp.Public != plain.Public || kp.Public != address {
		return domain.Keypair{}, fmt.Errorf("keystore: stored public key does not match secret")
	}
	return kp, nil
}

// Address returns the wallet address recorded in the keystore without asking
// for the passphrase.
func (s *KeypairFileStore) Address() (domain.PublicKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := readFile(s.Path())
	if err != nil {
		return domain.PublicKey{}, err
	}
	if b == nil {
		return domain.PublicKey{}, ErrNoKeypair
	}
	return peekAddress(b)
}

// ImportSolanaKeypair reads a Solana CLI keypair file: a JSON array of the
// 64 secret key bytes.
func ImportSolanaKeypair(path string) (domain.Keypair, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return domain.Keypair{}, err
	}
	var ints []int
	if err := json.Unmarshal(b, &ints); err != nil {
		return domain.Keypair{}, fmt.Errorf("keypair file %s: %w", path, err)
	}
	secret := make([]byte, len(ints))
	defer memzero.Zero(secret)
	for i, v := range ints {
		if v < 0 || v > 255 {
			return domain.Keypair{}, fmt.Errorf("keypair file %s: byte %d out of range", path, i)
		}
		secret[i] = byte(v)
	}
	return crypto.KeypairFromSecret(secret)
}

// Compile-time assertion that KeypairFileStore implements domain.KeypairStore.
var _ domain.KeypairStore = (*KeypairFileStore)(nil)
