package interfaces

import domaintypes "fortunecookie/internal/domain/types"

// KeypairStore persists your signing keypair.
type KeypairStore interface {
	SaveKeypair(passphrase string, kp domaintypes.Keypair) error
	LoadKeypair(passphrase string) (domaintypes.Keypair, error)
}
