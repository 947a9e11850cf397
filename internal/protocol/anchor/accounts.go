package anchor

import (
	"encoding/binary"
	"fmt"

	"fortunecookie/internal/domain"
)

// FortuneCookie account layout.
const (
	CookieOwnerOffset     = 8
	CookieArchetypeOffset = 40
	CookieFortuneOffset   = 41
	CookieRarityOffset    = 49
	CookieBumpOffset      = 50
	CookieAccountSize     = 51
)

// Stats account layout.
const (
	StatsTotalOffset = 8
	StatsBumpOffset  = 16
	StatsAccountSize = 17
)

// DecodeCookie parses FortuneCookie account data.
func DecodeCookie(data []byte) (domain.CookieRecord, error) {
	if len(data) < CookieAccountSize {
		return domain.CookieRecord{}, fmt.Errorf("%w: cookie account is %d bytes, want %d",
			domain.ErrProtocolDrift, len(data), CookieAccountSize)
	}
	if Discriminator(data[:8]) != CookieAccountDiscriminator {
		return domain.CookieRecord{}, fmt.Errorf("%w: cookie account discriminator mismatch", domain.ErrProtocolDrift)
	}
	var rec domain.CookieRecord
	copy(rec.Owner[:], data[CookieOwnerOffset:CookieOwnerOffset+32])
	rec.Archetype = domain.Archetype(data[CookieArchetypeOffset])
	rec.FortuneID = binary.LittleEndian.Uint64(data[CookieFortuneOffset:])
	rec.Rarity = domain.Rarity(data[CookieRarityOffset])
	rec.Bump = data[CookieBumpOffset]
	return rec, nil
}

// EncodeCookie serializes rec in the program's account layout.
func EncodeCookie(rec domain.CookieRecord) []byte {
	b := make([]byte, CookieAccountSize)
	copy(b, CookieAccountDiscriminator[:])
	copy(b[CookieOwnerOffset:], rec.Owner[:])
	b[CookieArchetypeOffset] = byte(rec.Archetype)
	binary.LittleEndian.PutUint64(b[CookieFortuneOffset:], rec.FortuneID)
	b[CookieRarityOffset] = byte(rec.Rarity)
	b[CookieBumpOffset] = rec.Bump
	return b
}

// DecodeStats parses Stats account data.
func DecodeStats(data []byte) (domain.StatsRecord, error) {
	if len(data) < StatsAccountSize {
		return domain.StatsRecord{}, fmt.Errorf("%w: stats account is %d bytes, want %d",
			domain.ErrProtocolDrift, len(data), StatsAccountSize)
	}
	if Discriminator(data[:8]) != StatsAccountDiscriminator {
		return domain.StatsRecord{}, fmt.Errorf("%w: stats account discriminator mismatch", domain.ErrProtocolDrift)
	}
	return domain.StatsRecord{
		TotalOpens: binary.LittleEndian.Uint64(data[StatsTotalOffset:]),
		Bump:       data[StatsBumpOffset],
	}, nil
}

// EncodeStats serializes rec in the program's account layout.
func EncodeStats(rec domain.StatsRecord) []byte {
	b := make([]byte, StatsAccountSize)
	copy(b, StatsAccountDiscriminator[:])
	binary.LittleEndian.PutUint64(b[StatsTotalOffset:], rec.TotalOpens)
	b[StatsBumpOffset] = rec.Bump
	return b
}

// OwnerFilters returns the getProgramAccounts filters that select every
// cookie owned by owner.
func OwnerFilters(owner domain.PublicKey) []domain.AccountFilter {
	size := uint64(CookieAccountSize)
	return []domain.AccountFilter{
		{DataSize: &size},
		{Memcmp: &domain.Memcmp{Offset: CookieOwnerOffset, Bytes: owner.Slice()}},
	}
}
