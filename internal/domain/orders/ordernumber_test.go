package orders

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderNumber_Deterministic(t *testing.T) {
	g, err := NewOrderNumberGenerator("test-salt")
	require.NoError(t, err)

	a, err := g.FromID(42)
	require.NoError(t, err)
	b, err := g.FromID(42)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, "TRK-"))
}

func TestOrderNumber_DistinctPerID(t *testing.T) {
	g, err := NewOrderNumberGenerator("test-salt")
	require.NoError(t, err)

	seen := make(map[string]bool)
	for id := int64(1); id <= 500; id++ {
		n, err := g.FromID(id)
		require.NoError(t, err)
		require.False(t, seen[n], "duplicate order number %s for id %d", n, id)
		seen[n] = true
	}
}

func TestOrderNumber_SaltChangesCodes(t *testing.T) {
	g1, err := NewOrderNumberGenerator("salt-one")
	require.NoError(t, err)
	g2, err := NewOrderNumberGenerator("salt-two")
	require.NoError(t, err)

	a, _ := g1.FromID(7)
	b, _ := g2.FromID(7)
	assert.NotEqual(t, a, b)
}

func TestOrderNumber_NoAmbiguousCharacters(t *testing.T) {
	g, err := NewOrderNumberGenerator("test-salt")
	require.NoError(t, err)

	for id := int64(1); id <= 100; id++ {
		n, _ := g.FromID(id)
		code := strings.TrimPrefix(n, "TRK-")
		for _, c := range code {
			assert.Contains(t, numberAlphabet, string(c))
		}
	}
}
