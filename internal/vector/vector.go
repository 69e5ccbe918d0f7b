// Package vector implements the fixed-dimension reward vector algebra shared by
// every learner. Vectors are immutable: each operation allocates its result and
// leaves both operands untouched.
package vector

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// #region errors
var (
	// ErrDimensionMismatch is returned when two operands disagree in length.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrInvalidDimension is returned for negative dimensions.
	ErrInvalidDimension = errors.New("invalid dimension")
	// ErrFormat is returned when a textual vector cannot be parsed.
	ErrFormat = errors.New("malformed vector")
	// ErrNonFinite is returned where NaN or an infinity cannot be stored.
	ErrNonFinite = errors.New("non-finite value")
)

// #endregion errors

// #region vector
// Vector is an immutable reward vector.
type Vector struct {
	values []float64
}

// New copies values into a new vector.
func New(values ...float64) Vector {
	v := make([]float64, len(values))
	copy(v, values)
	return Vector{values: v}
}

// Zero returns the all-zero vector of the given dimension.
func Zero(dim int) (Vector, error) {
	return Fill(dim, 0)
}

// Fill returns a vector with every entry set to x.
func Fill(dim int, x float64) (Vector, error) {
	if dim < 0 {
		return Vector{}, fmt.Errorf("%w: %d", ErrInvalidDimension, dim)
	}
	v := make([]float64, dim)
	if x != 0 {
		for i := range v {
			v[i] = x
		}
	}
	return Vector{values: v}, nil
}

// Dim returns the number of entries.
func (v Vector) Dim() int { return len(v.values) }

// At returns entry i.
func (v Vector) At(i int) float64 { return v.values[i] }

// Values returns a copy of the entries.
func (v Vector) Values() []float64 {
	out := make([]float64, len(v.values))
	copy(out, v.values)
	return out
}

// Finite reports whether every entry is neither NaN nor an infinity.
func (v Vector) Finite() bool {
	for _, x := range v.values {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// #endregion vector

// #region arithmetic
// Add returns v + o.
func (v Vector) Add(o Vector) (Vector, error) {
	return v.AddScaled(o, 1)
}

// AddScaled returns v + discount*o.
func (v Vector) AddScaled(o Vector, discount float64) (Vector, error) {
	if err := checkDim("add", len(v.values), len(o.values)); err != nil {
		return Vector{}, err
	}
	dst := make([]float64, len(v.values))
	floats.AddScaledTo(dst, v.values, discount, o.values)
	return Vector{values: dst}, nil
}

// Sub returns v - o.
func (v Vector) Sub(o Vector) (Vector, error) {
	return v.SubScaled(o, 1)
}

// SubScaled returns v - discount*o.
func (v Vector) SubScaled(o Vector, discount float64) (Vector, error) {
	if err := checkDim("sub", len(v.values), len(o.values)); err != nil {
		return Vector{}, err
	}
	dst := make([]float64, len(v.values))
	floats.AddScaledTo(dst, v.values, -discount, o.values)
	return Vector{values: dst}, nil
}

// Scale returns factor*v.
func (v Vector) Scale(factor float64) Vector {
	dst := make([]float64, len(v.values))
	floats.ScaleTo(dst, factor, v.values)
	return Vector{values: dst}
}

// Dot returns the weighted sum of the entries. It is the linear scalarization
// used by the scalar learners and the hull pruner.
func (v Vector) Dot(weights []float64) (float64, error) {
	if err := checkDim("dot", len(v.values), len(weights)); err != nil {
		return 0, err
	}
	return floats.Dot(v.values, weights), nil
}

// Sum returns the sum of the entries.
func (v Vector) Sum() float64 { return floats.Sum(v.values) }

// Min returns the smallest entry, or +Inf for the empty vector.
func (v Vector) Min() float64 {
	if len(v.values) == 0 {
		return math.Inf(1)
	}
	return floats.Min(v.values)
}

// Max returns the largest entry, or -Inf for the empty vector.
func (v Vector) Max() float64 {
	if len(v.values) == 0 {
		return math.Inf(-1)
	}
	return floats.Max(v.values)
}

// EuclideanNorm returns the L2 norm.
func (v Vector) EuclideanNorm() float64 { return floats.Norm(v.values, 2) }

// #endregion arithmetic

// #region comparison
// Equal reports exact, element-wise equality.
func (v Vector) Equal(o Vector) bool {
	return len(v.values) == len(o.values) && floats.Equal(v.values, o.values)
}

// ApproxEqual reports element-wise equality within tol.
func (v Vector) ApproxEqual(o Vector, tol float64) bool {
	return len(v.values) == len(o.values) && floats.EqualApprox(v.values, o.values, tol)
}

// GreaterOrEqual reports whether v[i] >= o[i] for every i.
func (v Vector) GreaterOrEqual(o Vector) bool {
	if len(v.values) != len(o.values) {
		return false
	}
	for i, x := range v.values {
		if x < o.values[i] {
			return false
		}
	}
	return true
}

// #endregion comparison

// #region text
// String formats the vector as "(v1,v2,...)" using the shortest decimal
// representation that parses back to the same float64.
func (v Vector) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, x := range v.values {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(x, 'f', -1, 64))
	}
	b.WriteByte(')')
	return b.String()
}

// Parse reads the form produced by String. Only finite decimal entries are
// accepted.
func Parse(s string) (Vector, error) {
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return Vector{}, fmt.Errorf("%w: %q", ErrFormat, s)
	}
	body := s[1 : len(s)-1]
	if body == "" {
		return Vector{values: []float64{}}, nil
	}
	parts := strings.Split(body, ",")
	values := make([]float64, len(parts))
	for i, p := range parts {
		x, err := strconv.ParseFloat(p, 64)
		if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
			return Vector{}, fmt.Errorf("%w: entry %d %q", ErrFormat, i, p)
		}
		values[i] = x
	}
	return Vector{values: values}, nil
}

// #endregion text

func checkDim(op string, a, b int) error {
	if a != b {
		return fmt.Errorf("%s: %w: %d != %d", op, ErrDimensionMismatch, a, b)
	}
	return nil
}
