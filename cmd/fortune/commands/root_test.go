package commands

import (
	"testing"

	"github.com/stretchr/testify/require"

	"fortunecookie/internal/domain"
)

func TestChooser(t *testing.T) {
	fixed, err := chooser("VC")
	require.NoError(t, err)
	require.Equal(t, domain.ArchetypeVC, fixed())

	random, err := chooser(" Random ")
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		require.True(t, random().Valid())
	}

	_, err = chooser("whale")
	require.Error(t, err)
}
