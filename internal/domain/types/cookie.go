package types

import (
	"fmt"
	"strings"
)

// Archetype selects which family of fortunes a cookie draws from. The
// numeric value is the on-chain argument.
type Archetype uint8

const (
	ArchetypeDegen Archetype = iota
	ArchetypeBuilder
	ArchetypeVC
	ArchetypeFounder
)

// Archetypes lists every archetype in wire order.
var Archetypes = []Archetype{ArchetypeDegen, ArchetypeBuilder, ArchetypeVC, ArchetypeFounder}

var archetypeNames = [...]string{"degen", "builder", "vc", "founder"}

// Valid reports whether a is a known archetype.
func (a Archetype) Valid() bool { return int(a) < len(archetypeNames) }

func (a Archetype) String() string {
	if !a.Valid() {
		return fmt.Sprintf("archetype(%d)", uint8(a))
	}
	return archetypeNames[a]
}

// ParseArchetype maps a name such as "vc" to its Archetype.
func ParseArchetype(s string) (Archetype, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range archetypeNames {
		if name == s {
			return Archetype(i), nil
		}
	}
	return 0, fmt.Errorf("unknown archetype %q (want one of %s)", s, strings.Join(archetypeNames[:], ", "))
}

// Rarity is the tier the program assigns to a cookie.
type Rarity uint8

const (
	RarityCommon Rarity = iota
	RarityRare
	RarityEpic
	RarityLegendary
)

var rarityNames = [...]string{"common", "rare", "epic", "legendary"}

// Valid reports whether r is a known tier.
func (r Rarity) Valid() bool { return int(r) < len(rarityNames) }

// OrLowest returns r, or RarityCommon when r is outside the known range.
func (r Rarity) OrLowest() Rarity {
	if !r.Valid() {
		return RarityCommon
	}
	return r
}

func (r Rarity) String() string {
	if !r.Valid() {
		return fmt.Sprintf("rarity(%d)", uint8(r))
	}
	return rarityNames[r]
}

// ParseRarity maps a name such as "epic" to its Rarity.
func ParseRarity(s string) (Rarity, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range rarityNames {
		if name == s {
			return Rarity(i), nil
		}
	}
	return 0, fmt.Errorf("unknown rarity %q", s)
}

// DerivedAddress is a program derived address and the bump that took it off the curve.
type DerivedAddress struct {
	Address PublicKey `json:"address"`
	Bump    uint8     `json:"bump"`
}

// CookieRecord mirrors the program's FortuneCookie account.
type CookieRecord struct {
	Owner     PublicKey `json:"owner"`
	Archetype Archetype `json:"archetype"`
	FortuneID uint64    `json:"fortune_id"`
	Rarity    Rarity    `json:"rarity"`
	Bump      uint8     `json:"bump"`
}

// StatsRecord mirrors the program's singleton Stats account.
type StatsRecord struct {
	TotalOpens uint64 `json:"total_opens"`
	Bump       uint8  `json:"bump"`
}

// OpenReceipt is returned once an open_cookie transaction is confirmed.
type OpenReceipt struct {
	Signature Signature      `json:"signature"`
	Cookie    DerivedAddress `json:"cookie"`
	Counter   uint64         `json:"counter"`
	Archetype Archetype      `json:"archetype"`
}

// Fortune is the presentable result of one crack.
type Fortune struct {
	Archetype Archetype    `json:"archetype"`
	Rarity    Rarity       `json:"rarity"`
	Text      string       `json:"text"`
	Record    CookieRecord `json:"record"`
	Receipt   OpenReceipt  `json:"receipt"`
}
