package quality

import (
	"errors"
	"testing"

	"github.com/danielpatrickdp/paretoq/internal/pareto"
	"github.com/danielpatrickdp/paretoq/internal/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, text string) *pareto.Set {
	t.Helper()
	s, err := pareto.Parse(text)
	require.NoError(t, err)
	return s
}

func TestHypervolumeTwoObjectives(t *testing.T) {
	// Staircase (1,3),(2,2),(3,1) over the origin: 3 + 2 + 1.
	hv, err := Hypervolume(mustParse(t, "(1,3),(2,2),(3,1)"), vector.New(0, 0))
	require.NoError(t, err)
	assert.InDelta(t, 6, hv, 1e-12)
}

func TestHypervolumeThreeObjectives(t *testing.T) {
	hv, err := Hypervolume(mustParse(t, "(2,1,1),(1,2,1),(1,1,2)"), vector.New(0, 0, 0))
	require.NoError(t, err)
	// Unit cube plus three unit bumps.
	assert.InDelta(t, 4, hv, 1e-12)

	hv, err = Hypervolume(mustParse(t, "(1,1,1)"), vector.New(0, 0, 0))
	require.NoError(t, err)
	assert.InDelta(t, 1, hv, 1e-12)
}

func TestHypervolumeIgnoresPointsBelowReference(t *testing.T) {
	hv, err := Hypervolume(mustParse(t, "(2,2),(5,-1)"), vector.New(0, 0))
	require.NoError(t, err)
	assert.InDelta(t, 4, hv, 1e-12)
}

func TestHypervolumeDimensionMismatch(t *testing.T) {
	_, err := Hypervolume(mustParse(t, "(1,1)"), vector.New(0, 0, 0))
	assert.True(t, errors.Is(err, vector.ErrDimensionMismatch))
}

func TestSpacing(t *testing.T) {
	assert.InDelta(t, 0, Spacing(mustParse(t, "(0,2),(1,1),(2,0)")), 1e-12, "evenly spaced")
	assert.Greater(t, Spacing(mustParse(t, "(0,4),(1,3),(4,0)")), 0.0)
	assert.Equal(t, 0.0, Spacing(mustParse(t, "(1,1)")))
}

func TestSpread(t *testing.T) {
	assert.InDelta(t, 5, Spread(mustParse(t, "(0,4),(1,2),(3,0)")), 1e-12)
	assert.Equal(t, 0.0, Spread(mustParse(t, "(1,1)")))
}
