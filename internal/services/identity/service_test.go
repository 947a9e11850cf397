package identity_test

import (
	"errors"
	"testing"

	"fortunecookie/internal/domain"
	"fortunecookie/internal/services/identity"
)

type memStore struct {
	pass string
	kp   domain.Keypair
	set  bool
}

func (m *memStore) SaveKeypair(passphrase string, kp domain.Keypair) error {
	m.pass, m.kp, m.set = passphrase, kp, true
	return nil
}

func (m *memStore) LoadKeypair(passphrase string) (domain.Keypair, error) {
	if !m.set || passphrase != m.pass {
		return domain.Keypair{}, errors.New("no keypair")
	}
	return m.kp, nil
}

func TestGenerateIdentity_StoresAndFingerprints(t *testing.T) {
	st := &memStore{}
	svc := identity.New(st)

	kp, fp, err := svc.GenerateIdentity("correct horse")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !st.set || st.kp != kp {
		t.Fatalf("keypair not stored")
	}
	if len(fp) != 10 {
		t.Fatalf("fingerprint %q: want 4+2+4 characters", fp)
	}

	got, err := svc.FingerprintIdentity("correct horse")
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
	if got != fp {
		t.Fatalf("fingerprint changed: %q != %q", got, fp)
	}
}

func TestGenerateIdentity_WeakPassphrase(t *testing.T) {
	svc := identity.New(&memStore{})
	if _, _, err := svc.GenerateIdentity("short"); !errors.Is(err, identity.ErrWeakPassphrase) {
		t.Fatalf("expected ErrWeakPassphrase, got %v", err)
	}
}
