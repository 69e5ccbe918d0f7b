//go:build cgo && (linux || darwin) && (amd64 || arm64)

package lp

import (
	"fmt"

	"github.com/bartolsthoorn/gohighs/highs"
)

// HiGHSName is the config name of the HiGHS backend.
const HiGHSName = "highs"

func init() {
	backends[HiGHSName] = func() Solver { return NewHiGHS() }
}

// HiGHS solves problems with the embedded HiGHS library.
type HiGHS struct{}

// NewHiGHS returns a HiGHS-backed solver.
func NewHiGHS() *HiGHS { return &HiGHS{} }

// Name implements Solver.
func (h *HiGHS) Name() string { return HiGHSName }

// Solve implements Solver.
func (h *HiGHS) Solve(p Problem) (Result, error) {
	if err := p.validate(); err != nil {
		return Result{}, err
	}
	model := highs.Model{
		Maximize: true,
		ColCosts: p.Costs,
		ColLower: p.ColLower,
		ColUpper: p.ColUpper,
	}
	for _, r := range p.Rows {
		model.AddDenseRow(r.Lower, r.Coeffs, r.Upper)
	}

	sol, err := model.Solve(highs.WithOutput(false))
	if err == nil && sol.Status == highs.ModelStatusUnboundedOrInfeasible {
		// Presolve can stop short of telling the two apart.
		sol, err = model.Solve(highs.WithOutput(false), highs.WithPresolve("off"))
	}
	if err != nil {
		return Result{}, fmt.Errorf("%w: highs: %v", ErrSolver, err)
	}
	switch sol.Status {
	case highs.ModelStatusOptimal:
		x := make([]float64, p.NumCols())
		copy(x, sol.ColValues)
		return Result{Status: StatusOptimal, X: x, Objective: sol.Objective}, nil
	case highs.ModelStatusInfeasible:
		return Result{Status: StatusInfeasible}, nil
	case highs.ModelStatusUnbounded:
		return Result{Status: StatusUnbounded}, nil
	default:
		return Result{}, fmt.Errorf("%w: highs model status %s", ErrSolver, sol.Status)
	}
}
