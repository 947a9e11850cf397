package fortunes

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"fortunecookie/internal/domain"
)

//go:embed fortunes.yaml
var defaultPool []byte

// ErrEmptyPool is returned when no fortunes exist for an archetype and rarity.
var ErrEmptyPool = errors.New("fortune pool is empty")

// file is the on-disk layout, YAML or JSON.
type file struct {
	Archetypes []string                       `yaml:"archetypes"`
	Fortunes   map[string]map[string][]string `yaml:"fortunes"`
}

// Pool maps (archetype, rarity) to an ordered list of fortunes. It is
// read-only after construction.
type Pool struct {
	entries map[domain.Archetype]map[domain.Rarity][]string
}

// Default returns the built-in pool.
func Default() *Pool {
	p, err := Parse(defaultPool)
	if err != nil {
		panic(fmt.Sprintf("embedded fortunes: %v", err))
	}
	return p
}

// Load reads a pool file. An empty path returns Default().
func Load(path string) (*Pool, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("fortunes %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes a pool from YAML or JSON. Unknown archetype or rarity keys
// are rejected.
func Parse(b []byte) (*Pool, error) {
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, err
	}
	p := &Pool{entries: map[domain.Archetype]map[domain.Rarity][]string{}}
	for aName, byRarity := range f.Fortunes {
		a, err := domain.ParseArchetype(aName)
		if err != nil {
			return nil, err
		}
		p.entries[a] = map[domain.Rarity][]string{}
		for rName, list := range byRarity {
			r, err := domain.ParseRarity(rName)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", aName, err)
			}
			p.entries[a][r] = append([]string(nil), list...)
		}
	}
	for _, name := range f.Archetypes {
		if _, err := domain.ParseArchetype(name); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Pick returns the fortune at fortuneID modulo the pool length for
// (archetype, rarity). Out-of-range rarities read the common pool.
func (p *Pool) Pick(archetype domain.Archetype, rarity domain.Rarity, fortuneID uint64) (string, error) {
	rarity = rarity.OrLowest()
	list := p.entries[archetype][rarity]
	if len(list) == 0 {
		return "", fmt.Errorf("%w: %s/%s", ErrEmptyPool, archetype, rarity)
	}
	return list[fortuneID%uint64(len(list))], nil
}

// Len reports how many fortunes exist for (archetype, rarity).
func (p *Pool) Len(archetype domain.Archetype, rarity domain.Rarity) int {
	return len(p.entries[archetype][rarity])
}

// Compile-time assertion that Pool implements domain.FortunePool.
var _ domain.FortunePool = (*Pool)(nil)
