package lp

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	gonumlp "gonum.org/v1/gonum/optimize/convex/lp"
)

// SimplexName is the config name of the pure-Go backend.
const SimplexName = "simplex"

// DefaultTolerance is the reduced-cost tolerance handed to the simplex method.
const DefaultTolerance = 1e-10

// Simplex solves problems with gonum's dense simplex implementation after
// rewriting them into standard form (min cᵀy, Ay = b, y >= 0).
type Simplex struct {
	tol float64
}

// NewSimplex returns a gonum-backed solver.
func NewSimplex(tol float64) *Simplex {
	if tol <= 0 {
		tol = DefaultTolerance
	}
	return &Simplex{tol: tol}
}

// Name implements Solver.
func (s *Simplex) Name() string { return SimplexName }

// term maps one original column onto standard-form columns:
// x = offset + sign*y[idx] (+ y[neg] * -1 for free columns).
type term struct {
	offset float64
	idx    int
	sign   float64
	neg    int // -1 unless the column is free
}

// Solve implements Solver.
func (s *Simplex) Solve(p Problem) (Result, error) {
	if err := p.validate(); err != nil {
		return Result{}, err
	}
	n := p.NumCols()

	// Columns.
	terms := make([]term, n)
	next := 0
	for j := 0; j < n; j++ {
		lo, hi := p.ColLower[j], p.ColUpper[j]
		switch {
		case !math.IsInf(lo, -1):
			terms[j] = term{offset: lo, idx: next, sign: 1, neg: -1}
			next++
		case !math.IsInf(hi, 1):
			terms[j] = term{offset: hi, idx: next, sign: -1, neg: -1}
			next++
		default:
			terms[j] = term{idx: next, sign: 1, neg: next + 1}
			next += 2
		}
	}
	structural := next

	type stdRow struct {
		coeffs map[int]float64
		slack  float64 // +1, -1 or 0 (equality)
		rhs    float64
	}
	var rows []stdRow

	substitute := func(coeffs []float64) (map[int]float64, float64) {
		out := make(map[int]float64)
		var c0 float64
		for j, a := range coeffs {
			if a == 0 {
				continue
			}
			t := terms[j]
			c0 += a * t.offset
			out[t.idx] += a * t.sign
			if t.neg >= 0 {
				out[t.neg] -= a
			}
		}
		return out, c0
	}

	for _, r := range p.Rows {
		coeffs, c0 := substitute(r.Coeffs)
		switch {
		case r.Lower == r.Upper:
			rows = append(rows, stdRow{coeffs: coeffs, rhs: r.Lower - c0})
		default:
			if !math.IsInf(r.Upper, 1) {
				rows = append(rows, stdRow{coeffs: coeffs, slack: 1, rhs: r.Upper - c0})
			}
			if !math.IsInf(r.Lower, -1) {
				rows = append(rows, stdRow{coeffs: coeffs, slack: -1, rhs: r.Lower - c0})
			}
		}
	}
	// Columns bounded on both sides need an explicit upper-bound row.
	for j := 0; j < n; j++ {
		lo, hi := p.ColLower[j], p.ColUpper[j]
		if !math.IsInf(lo, -1) && !math.IsInf(hi, 1) {
			rows = append(rows, stdRow{coeffs: map[int]float64{terms[j].idx: 1}, slack: 1, rhs: hi - lo})
		}
	}
	// gonum rejects all-zero rows and columns, so drop them up front.
	kept := rows[:0]
	for _, r := range rows {
		if nonZero(r.coeffs) || r.slack != 0 {
			kept = append(kept, r)
			continue
		}
		if r.rhs != 0 {
			return Result{Status: StatusInfeasible}, nil
		}
	}
	rows = kept

	// Minimise the negated objective over the standard-form columns.
	cost := make([]float64, structural)
	for j, c := range p.Costs {
		t := terms[j]
		cost[t.idx] -= c * t.sign
		if t.neg >= 0 {
			cost[t.neg] += c
		}
	}
	used := make([]bool, structural)
	for _, r := range rows {
		for col, v := range r.coeffs {
			if v != 0 {
				used[col] = true
			}
		}
	}
	colOf := make([]int, structural)
	cols := 0
	for j := range used {
		colOf[j] = -1
		if used[j] {
			colOf[j] = cols
			cols++
		}
	}
	var slacks int
	for _, r := range rows {
		if r.slack != 0 {
			slacks++
		}
	}

	y := make([]float64, structural)
	if len(rows) > 0 {
		m := len(rows)
		a := mat.NewDense(m, cols+slacks, nil)
		b := make([]float64, m)
		c := make([]float64, cols+slacks)
		for j, u := range used {
			if u {
				c[colOf[j]] = cost[j]
			}
		}
		slackCol := cols
		for i, r := range rows {
			sign := 1.0
			if r.rhs < 0 {
				sign = -1
			}
			for col, v := range r.coeffs {
				if v != 0 {
					a.Set(i, colOf[col], sign*v)
				}
			}
			if r.slack != 0 {
				a.Set(i, slackCol, sign*r.slack)
				slackCol++
			}
			b[i] = sign * r.rhs
		}

		_, sol, err := gonumlp.Simplex(c, a, b, s.tol, nil)
		switch {
		case errors.Is(err, gonumlp.ErrInfeasible):
			return Result{Status: StatusInfeasible}, nil
		case errors.Is(err, gonumlp.ErrUnbounded):
			return Result{Status: StatusUnbounded}, nil
		case err != nil:
			return Result{}, fmt.Errorf("%w: simplex: %v", ErrSolver, err)
		}
		for j, u := range used {
			if u {
				y[j] = sol[colOf[j]]
			}
		}
	}
	// An unconstrained column with an improving cost can grow forever.
	for j, u := range used {
		if !u && cost[j] < 0 {
			return Result{Status: StatusUnbounded}, nil
		}
	}

	x := make([]float64, n)
	var obj float64
	for j := 0; j < n; j++ {
		t := terms[j]
		x[j] = t.offset + t.sign*y[t.idx]
		if t.neg >= 0 {
			x[j] -= y[t.neg]
		}
		obj += p.Costs[j] * x[j]
	}
	return Result{Status: StatusOptimal, X: x, Objective: obj}, nil
}

func nonZero(coeffs map[int]float64) bool {
	for _, v := range coeffs {
		if v != 0 {
			return true
		}
	}
	return false
}
