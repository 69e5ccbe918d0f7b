package pareto

import (
	"errors"
	"math"
	"testing"

	"github.com/danielpatrickdp/paretoq/internal/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, text string) *Set {
	t.Helper()
	s, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse(%q): %v", text, err)
	}
	return s
}

func TestAddRejectsDuplicatesAndWrongDimension(t *testing.T) {
	s, err := NewSet(2)
	require.NoError(t, err)

	added, err := s.Add(vector.New(1, 2))
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.Add(vector.New(1, 2))
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, 1, s.Len())

	_, err = s.Add(vector.New(1, 2, 3))
	assert.True(t, errors.Is(err, ErrDimensionMismatch))
	assert.Equal(t, 1, s.Len())
}

func TestAddRejectsNonFiniteValues(t *testing.T) {
	s, err := NewSet(2)
	require.NoError(t, err)

	for _, v := range []vector.Vector{vector.New(math.NaN(), 1), vector.New(1, math.Inf(1)), vector.New(math.Inf(-1), 0)} {
		_, err := s.Add(v)
		assert.True(t, errors.Is(err, ErrNonFinite), "%s: %v", v, err)
	}
	assert.Equal(t, 0, s.Len())

	_, err = FromVectors(2, vector.New(1, 1), vector.New(math.NaN(), math.NaN()))
	assert.True(t, errors.Is(err, ErrNonFinite))
}

func TestNewSetRejectsNegativeDimension(t *testing.T) {
	_, err := NewSet(-1)
	assert.True(t, errors.Is(err, ErrInvalidDimension))
}

func TestIsDominatedWeakRule(t *testing.T) {
	s := mustParse(t, "(1,1),(2,0)")

	assert.True(t, s.IsDominated(vector.New(1, 0)), "tie in first objective still dominated")
	assert.True(t, s.IsDominated(vector.New(0.5, 0.5)))
	assert.False(t, s.IsDominated(vector.New(1, 1)), "a member never dominates itself")
	assert.False(t, s.IsDominated(vector.New(0, 2)))
}

func TestPruneScenario(t *testing.T) {
	s := mustParse(t, "(0,3),(3,0),(1,1),(0.5,0.5),(0.5,2.5)")
	s.PruneDominated()

	want := mustParse(t, "(0,3),(3,0),(1,1),(0.5,2.5)")
	assert.True(t, Equivalent(s, want), "got %s", s)
}

func TestPruneIsIdempotentAndLeavesNoDominatedMember(t *testing.T) {
	s := mustParse(t, "(1,5,2),(2,4,2),(1,5,1),(0,0,0),(3,3,3),(3,3,2),(2,4,2.5)")
	s.PruneDominated()
	first := s.String()
	for _, v := range s.Vectors() {
		assert.False(t, s.IsDominated(v), "%s survived but is dominated", v)
	}

	s.PruneDominated()
	assert.Equal(t, first, s.String())
}

func TestPruneKeepsSingleMember(t *testing.T) {
	s := mustParse(t, "(1,1)")
	s.PruneDominated()
	assert.Equal(t, 1, s.Len())
}

func TestUnionDeduplicatesWithoutPruning(t *testing.T) {
	a := mustParse(t, "(1,1),(0,2)")
	b := mustParse(t, "(1,1),(0,0)")

	u, err := a.Union(b)
	require.NoError(t, err)
	assert.True(t, Equivalent(u, mustParse(t, "(1,1),(0,2),(0,0)")))
	assert.Equal(t, 2, a.Len(), "union must not mutate its receiver")

	c := mustParse(t, "(1,1,1)")
	_, err = a.Union(c)
	assert.True(t, errors.Is(err, ErrDimensionMismatch))
}

func TestCopyIsIndependent(t *testing.T) {
	a := mustParse(t, "(1,1),(0,2)")
	b := a.Copy()
	b.Add(vector.New(5, 5))
	b.PruneDominated()

	assert.Equal(t, 2, a.Len())
	assert.Equal(t, 1, b.Len())
}

func TestTextRoundTrip(t *testing.T) {
	for _, text := range []string{
		"(0,3),(3,0),(1,1)",
		"(-4.5,-3.5,-4.5)",
		"(0.1,0.2),(1e-9,7),(123.456,-0)",
	} {
		s := mustParse(t, text)
		back := mustParse(t, s.String())
		assert.Equal(t, s.Dim(), back.Dim())
		assert.True(t, Equivalent(s, back), "%s -> %s", text, back)
	}
}

func TestParseInfersDimension(t *testing.T) {
	s := mustParse(t, "(1,2,3),(4,5,6)")
	assert.Equal(t, 3, s.Dim())
	assert.Equal(t, 2, s.Len())
}

func TestParseRejectsMalformedInput(t *testing.T) {
	for _, text := range []string{
		"",
		"(1,2),(3)",
		"(1,2)(3,4)",
		"(1,2),",
		"1,2",
		"(1,2),(x,4)",
		"(1,2), (3,4)",
		"(NaN,1),(NaN,1)",
		"(Inf,1),(1,-Inf)",
	} {
		_, err := Parse(text)
		assert.True(t, errors.Is(err, ErrFormat), "input %q: %v", text, err)
	}
}

func TestParseDimAcceptsEmpty(t *testing.T) {
	s, err := ParseDim("", 3)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 3, s.Dim())
	assert.Equal(t, "", s.String())

	_, err = ParseDim("(1,2)", 3)
	assert.True(t, errors.Is(err, ErrFormat))
}
