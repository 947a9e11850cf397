package app

import (
	"errors"

	"fortunecookie/internal/domain"
	"fortunecookie/internal/wallet"
)

// App is what a command runs against: the wired services plus the user's
// signing authority, opened on first use.
type App struct {
	*Wire

	passphrase *wallet.Source
	confirm    wallet.ConfirmFunc

	signer    domain.Signer
	signerErr error
	opened    bool
}

// New returns an App. confirm, when set, is asked before every signature.
func New(w *Wire, passphrase *wallet.Source, confirm wallet.ConfirmFunc) *App {
	return &App{Wire: w, passphrase: passphrase, confirm: confirm}
}

// Signer opens the keystore once. A missing keystore yields
// domain.ErrNoSigner.
func (a *App) Signer() (domain.Signer, error) {
	if !a.opened {
		a.opened = true
		s, err := wallet.Open(a.Keystore, a.passphrase)
		if err == nil && a.confirm != nil {
			s = wallet.NewConfirmingSigner(s, a.confirm)
		}
		a.signer, a.signerErr = s, err
	}
	return a.signer, a.signerErr
}

// OptionalSigner is Signer with a missing keystore reported as nil, so the
// dispatcher can show its own no-wallet message.
func (a *App) OptionalSigner() (domain.Signer, error) {
	s, err := a.Signer()
	if errors.Is(err, domain.ErrNoSigner) {
		return nil, nil
	}
	return s, err
}

// Passphrase returns the passphrase for commands that manage the keystore
// directly.
func (a *App) Passphrase() (string, error) { return a.passphrase.Get() }
