package pda

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"

	"filippo.io/edwards25519"

	"fortunecookie/internal/domain"
)

const (
	// MaxSeeds is the most seeds a derivation may use, bump included.
	MaxSeeds = 16
	// MaxSeedLen is the longest single seed in bytes.
	MaxSeedLen = 32

	pdaMarker = "ProgramDerivedAddress"
)

var (
	// ErrOnCurve means the candidate hash is a valid ed25519 point and so
	// cannot be a program address.
	ErrOnCurve = errors.New("derived address lies on the ed25519 curve")
	// ErrNoViableBump means every bump from 255 to 0 produced an on-curve hash.
	ErrNoViableBump = errors.New("no viable bump seed found")
	// ErrMaxSeedLength is returned for a seed longer than MaxSeedLen.
	ErrMaxSeedLength = errors.New("seed exceeds maximum length")
	// ErrTooManySeeds is returned for more than MaxSeeds seeds.
	ErrTooManySeeds = errors.New("too many seeds")
)

// CreateProgramAddress hashes seeds under program into an address. It fails
// with ErrOnCurve when the result is a valid public key.
func CreateProgramAddress(seeds [][]byte, program domain.PublicKey) (domain.PublicKey, error) {
	if len(seeds) > MaxSeeds {
		return domain.PublicKey{}, fmt.Errorf("%w: %d > %d", ErrTooManySeeds, len(seeds), MaxSeeds)
	}
	h := sha256.New()
	for i, s := range seeds {
		if len(s) > MaxSeedLen {
			return domain.PublicKey{}, fmt.Errorf("%w: seed %d is %d bytes", ErrMaxSeedLength, i, len(s))
		}
		h.Write(s)
	}
	h.Write(program[:])
	h.Write([]byte(pdaMarker))

	var out domain.PublicKey
	copy(out[:], h.Sum(nil))
	if IsOnCurve(out[:]) {
		return domain.PublicKey{}, ErrOnCurve
	}
	return out, nil
}

// FindProgramAddress searches bumps from 255 downward and returns the first
// off-curve address together with its bump.
func FindProgramAddress(seeds [][]byte, program domain.PublicKey) (domain.DerivedAddress, error) {
	if len(seeds) > MaxSeeds-1 {
		return domain.DerivedAddress{}, fmt.Errorf("%w: %d seeds leave no room for a bump", ErrTooManySeeds, len(seeds))
	}
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	bump := []byte{0}
	withBump[len(seeds)] = bump

	for b := 255; b >= 0; b-- {
		bump[0] = byte(b)
		addr, err := CreateProgramAddress(withBump, program)
		if errors.Is(err, ErrOnCurve) {
			continue
		}
		if err != nil {
			return domain.DerivedAddress{}, err
		}
		return domain.DerivedAddress{Address: addr, Bump: byte(b)}, nil
	}
	return domain.DerivedAddress{}, ErrNoViableBump
}

// IsOnCurve reports whether b decodes to a point on edwards25519.
func IsOnCurve(b []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}

// U64LE encodes x as the fixed-width little-endian seed the program expects.
func U64LE(x uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, x)
	return b
}
