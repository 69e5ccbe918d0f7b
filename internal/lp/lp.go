// Package lp defines the small linear-programming surface the convex hull
// pruner needs and the solver backends that implement it.
//
// Problems are always maximisation problems of the form
//
//	maximise   Costs · x
//	subject to Rows[i].Lower <= Rows[i].Coeffs · x <= Rows[i].Upper
//	           ColLower[j] <= x[j] <= ColUpper[j]
//
// Infinite bounds are expressed with math.Inf.
package lp

import (
	"errors"
	"fmt"
	"sort"
)

// #region errors
// ErrSolver wraps every failure that is neither an optimal nor an infeasible
// outcome. Callers treat it as fatal.
var ErrSolver = errors.New("lp solver failure")

// #endregion errors

// #region types
// Row is one two-sided linear constraint.
type Row struct {
	Lower  float64
	Coeffs []float64
	Upper  float64
}

// Problem is a maximisation LP.
type Problem struct {
	Costs    []float64
	ColLower []float64
	ColUpper []float64
	Rows     []Row
}

// NumCols returns the number of variables.
func (p *Problem) NumCols() int { return len(p.Costs) }

// AddRow appends lower <= coeffs·x <= upper.
func (p *Problem) AddRow(lower float64, coeffs []float64, upper float64) {
	c := make([]float64, len(coeffs))
	copy(c, coeffs)
	p.Rows = append(p.Rows, Row{Lower: lower, Coeffs: c, Upper: upper})
}

func (p *Problem) validate() error {
	n := len(p.Costs)
	if len(p.ColLower) != n || len(p.ColUpper) != n {
		return fmt.Errorf("%w: %d costs but %d/%d column bounds", ErrSolver, n, len(p.ColLower), len(p.ColUpper))
	}
	for i, r := range p.Rows {
		if len(r.Coeffs) != n {
			return fmt.Errorf("%w: row %d has %d coefficients, want %d", ErrSolver, i, len(r.Coeffs), n)
		}
		if r.Lower > r.Upper {
			return fmt.Errorf("%w: row %d lower %g > upper %g", ErrSolver, i, r.Lower, r.Upper)
		}
	}
	for j := range p.ColLower {
		if p.ColLower[j] > p.ColUpper[j] {
			return fmt.Errorf("%w: column %d lower %g > upper %g", ErrSolver, j, p.ColLower[j], p.ColUpper[j])
		}
	}
	return nil
}

// Status is the outcome of a solve.
type Status int

const (
	StatusOptimal Status = iota
	StatusInfeasible
	StatusUnbounded
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	default:
		return "unknown"
	}
}

// Result holds the primal solution. X and Objective are only meaningful when
// Status is StatusOptimal.
type Result struct {
	Status    Status
	X         []float64
	Objective float64
}

// Solver solves a Problem. Implementations are not required to be safe for
// concurrent use; each run owns its solver.
type Solver interface {
	Name() string
	Solve(p Problem) (Result, error)
}

// #endregion types

// #region registry
var backends = map[string]func() Solver{
	SimplexName: func() Solver { return NewSimplex(DefaultTolerance) },
}

// Open returns a fresh solver for the named backend.
func Open(name string) (Solver, error) {
	f, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown lp backend %q (available: %v)", name, Backends())
	}
	return f(), nil
}

// Backends lists the backends compiled into this binary.
func Backends() []string {
	out := make([]string, 0, len(backends))
	for name := range backends {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// #endregion registry
