// Package pareto holds the set-valued estimate type: a duplicate-free
// collection of reward vectors forming a (partial) Pareto front, with the
// weak-dominance test and pruning the learners rely on.
package pareto

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danielpatrickdp/paretoq/internal/vector"
)

// #region errors
var (
	// ErrFormat is returned for malformed set text.
	ErrFormat = errors.New("malformed solution set")
	// ErrDimensionMismatch aliases the vector sentinel so callers can test
	// either package.
	ErrDimensionMismatch = vector.ErrDimensionMismatch
	// ErrInvalidDimension aliases the vector sentinel.
	ErrInvalidDimension = vector.ErrInvalidDimension
	// ErrNonFinite aliases the vector sentinel.
	ErrNonFinite = vector.ErrNonFinite
)

// #endregion errors

// #region solution
// Solution is a reward vector tagged as a front member.
type Solution struct {
	Value vector.Vector
}

// Equal compares by value.
func (s Solution) Equal(o Solution) bool { return s.Value.Equal(o.Value) }

// String formats the underlying vector.
func (s Solution) String() string { return s.Value.String() }

// #endregion solution

// #region set
// Set is a duplicate-free collection of solutions sharing one dimension.
// The zero value is not usable; build sets with NewSet or Parse.
type Set struct {
	dim       int
	solutions []Solution
}

// NewSet returns an empty set for dimension dim.
func NewSet(dim int) (*Set, error) {
	if dim < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDimension, dim)
	}
	return &Set{dim: dim}, nil
}

// FromVectors builds a set of dimension dim from vs, dropping duplicates.
func FromVectors(dim int, vs ...vector.Vector) (*Set, error) {
	s, err := NewSet(dim)
	if err != nil {
		return nil, err
	}
	for _, v := range vs {
		if _, err := s.Add(v); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Dim returns the set dimension.
func (s *Set) Dim() int { return s.dim }

// Len returns the number of members.
func (s *Set) Len() int { return len(s.solutions) }

// Add appends v unless an equal-valued member exists. It reports whether the
// set changed. NaN and infinite entries are rejected; NaN never compares
// equal, so such members would defeat deduplication.
func (s *Set) Add(v vector.Vector) (bool, error) {
	if v.Dim() != s.dim {
		return false, fmt.Errorf("add solution: %w: %d != %d", ErrDimensionMismatch, v.Dim(), s.dim)
	}
	if !v.Finite() {
		return false, fmt.Errorf("add solution: %w: %s", ErrNonFinite, v)
	}
	if s.Contains(v) {
		return false, nil
	}
	s.solutions = append(s.solutions, Solution{Value: v})
	return true, nil
}

// Contains reports whether an equal-valued member exists.
func (s *Set) Contains(v vector.Vector) bool {
	for _, m := range s.solutions {
		if m.Value.Equal(v) {
			return true
		}
	}
	return false
}

// Solutions returns the members in insertion order. The slice is a copy;
// vectors are immutable so sharing them is safe.
func (s *Set) Solutions() []Solution {
	out := make([]Solution, len(s.solutions))
	copy(out, s.solutions)
	return out
}

// Vectors returns the member values in insertion order.
func (s *Set) Vectors() []vector.Vector {
	out := make([]vector.Vector, len(s.solutions))
	for i, m := range s.solutions {
		out[i] = m.Value
	}
	return out
}

// Copy returns an independent deep copy.
func (s *Set) Copy() *Set {
	return &Set{dim: s.dim, solutions: s.Solutions()}
}

// Union merges s and o into a new set, deduplicating by value. No pruning is
// performed.
func (s *Set) Union(o *Set) (*Set, error) {
	if o.dim != s.dim {
		return nil, fmt.Errorf("union: %w: %d != %d", ErrDimensionMismatch, o.dim, s.dim)
	}
	out := s.Copy()
	for _, m := range o.solutions {
		if _, err := out.Add(m.Value); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// #endregion set

// #region dominance
// IsDominated reports whether some member other than v itself is at least as
// good as v in every objective. Ties count as domination.
func (s *Set) IsDominated(v vector.Vector) bool {
	for _, m := range s.solutions {
		if m.Value.Equal(v) {
			continue
		}
		if m.Value.GreaterOrEqual(v) {
			return true
		}
	}
	return false
}

// PruneDominated removes every member dominated by another member. Because
// members are distinct and dominance is transitive, testing each member
// against the full set yields the same survivors as testing against the
// survivors, so a single pass suffices and a second call is a no-op.
func (s *Set) PruneDominated() {
	kept := s.solutions[:0:0]
	for _, m := range s.solutions {
		if !s.IsDominated(m.Value) {
			kept = append(kept, m)
		}
	}
	s.solutions = kept
}

// #endregion dominance

// #region text
// String renders "(v1,v2),(v1,v2)". The empty set renders as "".
func (s *Set) String() string {
	parts := make([]string, len(s.solutions))
	for i, m := range s.solutions {
		parts[i] = m.Value.String()
	}
	return strings.Join(parts, ",")
}

// Parse reads the String form, inferring the dimension from the first member.
// Any malformed member fails the whole parse.
func Parse(text string) (*Set, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: empty input has no dimension", ErrFormat)
	}
	return parse(text, -1)
}

// ParseDim is Parse with a known dimension; it also accepts "".
func ParseDim(text string, dim int) (*Set, error) {
	if dim < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDimension, dim)
	}
	if text == "" {
		return &Set{dim: dim}, nil
	}
	return parse(text, dim)
}

func parse(text string, dim int) (*Set, error) {
	members, err := splitMembers(text)
	if err != nil {
		return nil, err
	}
	var out *Set
	for i, raw := range members {
		v, err := vector.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: member %d: %v", ErrFormat, i, err)
		}
		if out == nil {
			if dim < 0 {
				dim = v.Dim()
			}
			out = &Set{dim: dim}
		}
		if v.Dim() != dim {
			return nil, fmt.Errorf("%w: member %d has %d values, want %d", ErrFormat, i, v.Dim(), dim)
		}
		if _, err := out.Add(v); err != nil {
			return nil, fmt.Errorf("%w: member %d: %v", ErrFormat, i, err)
		}
	}
	return out, nil
}

// splitMembers cuts "(a,b),(c,d)" into "(a,b)" and "(c,d)".
func splitMembers(text string) ([]string, error) {
	var out []string
	i := 0
	for i < len(text) {
		if text[i] != '(' {
			return nil, fmt.Errorf("%w: expected '(' at offset %d", ErrFormat, i)
		}
		end := strings.IndexByte(text[i:], ')')
		if end < 0 {
			return nil, fmt.Errorf("%w: unterminated member at offset %d", ErrFormat, i)
		}
		out = append(out, text[i:i+end+1])
		i += end + 1
		if i == len(text) {
			break
		}
		if text[i] != ',' || i+1 == len(text) {
			return nil, fmt.Errorf("%w: expected ',' between members at offset %d", ErrFormat, i)
		}
		i++
	}
	return out, nil
}

// #endregion text

// Equivalent reports whether a and b have the same dimension and members,
// ignoring order.
func Equivalent(a, b *Set) bool {
	if a.dim != b.dim || a.Len() != b.Len() {
		return false
	}
	for _, m := range a.solutions {
		if !b.Contains(m.Value) {
			return false
		}
	}
	return true
}
