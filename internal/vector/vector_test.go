package vector

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddScaledSubScaledRoundTrip(t *testing.T) {
	cases := []struct {
		a, b  Vector
		gamma float64
	}{
		{New(1, 2, 3), New(-4, 0.5, 9), 0.9},
		{New(-1, 0, 0), New(0, 2, 0), 1},
		{New(0.1, 0.2), New(1e6, -1e-6), 0.3333},
		{New(), New(), 0.5},
	}
	for _, c := range cases {
		sum, err := c.a.AddScaled(c.b, c.gamma)
		require.NoError(t, err)
		back, err := sum.SubScaled(c.b, c.gamma)
		require.NoError(t, err)
		assert.True(t, back.ApproxEqual(c.a, 1e-9), "got %s want %s", back, c.a)
	}
}

func TestBinaryOpsRejectDimensionMismatch(t *testing.T) {
	a := New(1, 2, 3)
	b := New(1, 2)

	_, err := a.Add(b)
	assert.True(t, errors.Is(err, ErrDimensionMismatch))
	_, err = a.SubScaled(b, 0.5)
	assert.True(t, errors.Is(err, ErrDimensionMismatch))
	_, err = a.Dot([]float64{1, 1})
	assert.True(t, errors.Is(err, ErrDimensionMismatch))
}

func TestOperationsDoNotAlias(t *testing.T) {
	raw := []float64{1, 2}
	a := New(raw...)
	raw[0] = 100
	assert.Equal(t, 1.0, a.At(0), "New must copy its input")

	b := New(3, 4)
	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 6}, sum.Values())
	assert.Equal(t, []float64{1, 2}, a.Values())
	assert.Equal(t, []float64{3, 4}, b.Values())

	vals := a.Values()
	vals[1] = -1
	assert.Equal(t, 2.0, a.At(1))
}

func TestScalarReductions(t *testing.T) {
	v := New(3, -4, 1)
	dot, err := v.Dot([]float64{0.5, 0.25, 2})
	require.NoError(t, err)
	assert.InDelta(t, 1.5-1+2, dot, 1e-12)
	assert.Equal(t, 0.0, v.Sum())
	assert.Equal(t, -4.0, v.Min())
	assert.Equal(t, 3.0, v.Max())
	assert.InDelta(t, math.Sqrt(26), v.EuclideanNorm(), 1e-12)
	assert.Equal(t, []float64{6, -8, 2}, v.Scale(2).Values())
}

func TestZeroAndFill(t *testing.T) {
	z, err := Zero(3)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0}, z.Values())

	f, err := Fill(2, -9)
	require.NoError(t, err)
	assert.Equal(t, []float64{-9, -9}, f.Values())

	_, err = Zero(-1)
	assert.True(t, errors.Is(err, ErrInvalidDimension))
}

func TestStringParseRoundTrip(t *testing.T) {
	for _, v := range []Vector{New(0, 3), New(-4.5, -3.5, -4.5), New(0.1, 1e-7, 123456789.25), New()} {
		got, err := Parse(v.String())
		require.NoError(t, err)
		assert.True(t, got.Equal(v), "%s", v)
	}
	assert.Equal(t, "(0.5,-2,3)", New(0.5, -2, 3).String())
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, s := range []string{"", "1,2", "(1,2", "(1,,2)", "(a,b)", "( 1,2)", "(NaN,1)", "(Inf,1)", "(1,+Inf)", "(-inf,0)"} {
		_, err := Parse(s)
		assert.True(t, errors.Is(err, ErrFormat), "input %q", s)
	}
}

func TestFinite(t *testing.T) {
	assert.True(t, New(0, -3.5).Finite())
	assert.True(t, New().Finite())
	assert.False(t, New(math.NaN(), 1).Finite())
	assert.False(t, New(1, math.Inf(-1)).Finite())
}

func TestGreaterOrEqual(t *testing.T) {
	assert.True(t, New(1, 1).GreaterOrEqual(New(1, 0)))
	assert.True(t, New(1, 1).GreaterOrEqual(New(1, 1)))
	assert.False(t, New(1, 0).GreaterOrEqual(New(0, 1)))
	assert.False(t, New(1).GreaterOrEqual(New(1, 1)))
}
