package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	require.Equal(t, "boris brejcha", NormalizeName("  Boris   Brejcha\n"))
	require.Equal(t, "charlotte de witte", NormalizeName("Charlotte de Witte"))
	require.Equal(t, "", NormalizeName("  \t\n"))
}

func TestSlugify(t *testing.T) {
	require.Equal(t, "vintage-culture", Slugify("Vintage Culture"))
	require.Equal(t, "r-b", Slugify("R&B"))
	require.Equal(t, "a-b-c", Slugify("  A / B / C  "))
}

func TestSyntheticID(t *testing.T) {
	require.Equal(t, "toptracker:dj-heartstring", SyntheticID("toptracker", "DJ Heartstring"))
	// deterministic across calls
	require.Equal(t, SyntheticID("toptracker", "DJ Heartstring"), SyntheticID("toptracker", "dj   heartstring"))
}
