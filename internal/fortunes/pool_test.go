package fortunes_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"fortunecookie/internal/domain"
	"fortunecookie/internal/fortunes"
)

func tenDegenCommon(t *testing.T) *fortunes.Pool {
	t.Helper()
	var b strings.Builder
	b.WriteString("fortunes:\n  degen:\n    common:\n")
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&b, "      - \"f%d\"\n", i)
	}
	p, err := fortunes.Parse([]byte(b.String()))
	require.NoError(t, err)
	return p
}

func TestPick_IndexIsModuloPoolLength(t *testing.T) {
	p := tenDegenCommon(t)
	for id, want := range map[uint64]string{37: "f7", 7: "f7", 0: "f0", ^uint64(0): "f5"} {
		got, err := p.Pick(domain.ArchetypeDegen, domain.RarityCommon, id)
		require.NoError(t, err)
		require.Equal(t, want, got, "id %d", id)
	}
}

func TestPick_UnknownRarityFallsBackToCommon(t *testing.T) {
	p := tenDegenCommon(t)
	got, err := p.Pick(domain.ArchetypeDegen, domain.Rarity(9), 3)
	require.NoError(t, err)
	require.Equal(t, "f3", got)
}

func TestPick_EmptyPoolErrors(t *testing.T) {
	p := tenDegenCommon(t)
	_, err := p.Pick(domain.ArchetypeVC, domain.RarityCommon, 1)
	require.ErrorIs(t, err, fortunes.ErrEmptyPool)
	_, err = p.Pick(domain.ArchetypeDegen, domain.RarityEpic, 1)
	require.ErrorIs(t, err, fortunes.ErrEmptyPool)
}

func TestDefault_CoversEveryArchetypeAndRarity(t *testing.T) {
	p := fortunes.Default()
	for _, a := range domain.Archetypes {
		for r := domain.RarityCommon; r <= domain.RarityLegendary; r++ {
			require.Positive(t, p.Len(a, r), "%s/%s", a, r)
		}
	}
}

func TestLoad_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fortunes.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"archetypes":["vc"],"fortunes":{"vc":{"rare":["a","b"]}}}`), 0o600))
	p, err := fortunes.Load(path)
	require.NoError(t, err)
	got, err := p.Pick(domain.ArchetypeVC, domain.RarityRare, 3)
	require.NoError(t, err)
	require.Equal(t, "b", got)
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	_, err := fortunes.Parse([]byte("fortunes:\n  whale:\n    common: [x]\n"))
	require.Error(t, err)
	_, err = fortunes.Parse([]byte("fortunes:\n  vc:\n    mythic: [x]\n"))
	require.Error(t, err)
}
