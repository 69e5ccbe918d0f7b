// Package ccs extracts the convex coverage set of a Pareto front: the members
// that are optimal for at least one non-negative weight vector summing to one.
package ccs

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/danielpatrickdp/paretoq/internal/lp"
	"github.com/danielpatrickdp/paretoq/internal/pareto"
	"github.com/danielpatrickdp/paretoq/internal/vector"
)

// ErrSolver re-exports the LP failure sentinel.
var ErrSolver = lp.ErrSolver

// DefaultEpsilon is the slack a candidate must exceed to count as beating the
// current hull.
const DefaultEpsilon = 1e-9

// #region options
// Observer receives one callback per Prune call.
type Observer interface {
	ObservePrune(in, out, solves int)
}

// Option configures a Pruner.
type Option func(*Pruner)

// WithEpsilon overrides DefaultEpsilon.
func WithEpsilon(eps float64) Option {
	return func(p *Pruner) { p.eps = eps }
}

// WithLogger sets the debug logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pruner) { p.log = l }
}

// WithObserver attaches a metrics observer.
func WithObserver(o Observer) Option {
	return func(p *Pruner) { p.obs = o }
}

// #endregion options

// Pruner computes convex coverage sets. It holds an LP solver and is therefore
// owned by a single run.
type Pruner struct {
	solver lp.Solver
	eps    float64
	log    *slog.Logger
	obs    Observer
}

// New returns a Pruner backed by solver.
func New(solver lp.Solver, opts ...Option) *Pruner {
	p := &Pruner{solver: solver, eps: DefaultEpsilon}
	for _, o := range opts {
		o(p)
	}
	if p.log == nil {
		p.log = slog.Default()
	}
	return p
}

// Solver returns the backing LP solver.
func (p *Pruner) Solver() lp.Solver { return p.solver }

// Prune returns the convex coverage set of in as a new set. The input is left
// untouched. Any LP failure aborts the whole extraction.
func (p *Pruner) Prune(in *pareto.Set) (*pareto.Set, error) {
	front := in.Copy()
	front.PruneDominated()

	dim := front.Dim()
	out, err := pareto.NewSet(dim)
	if err != nil {
		return nil, err
	}
	if dim == 0 || front.Len() == 0 {
		return front, nil
	}

	pool := front.Vectors()

	// Per-objective extremes are always on the hull.
	for i := 0; i < dim; i++ {
		best := -1
		for j, v := range pool {
			if best < 0 || v.At(i) > pool[best].At(i) {
				best = j
			}
		}
		added, err := out.Add(pool[best])
		if err != nil {
			return nil, fmt.Errorf("ccs prune: %w", err)
		}
		if added {
			p.log.Debug("ccs seed", "objective", i, "value", pool[best].String())
		}
	}
	pool = without(pool, out)

	solves := 0
	for len(pool) > 0 {
		candidate := pool[0]
		w, ok, err := p.separatingWeights(candidate, out.Vectors())
		solves++
		if err != nil {
			return nil, fmt.Errorf("ccs prune: %w", err)
		}
		if !ok {
			pool = pool[1:]
			continue
		}

		best, bestScore := 0, math.Inf(-1)
		for j, v := range pool {
			score, err := v.Dot(w)
			if err != nil {
				return nil, fmt.Errorf("ccs prune: %w", err)
			}
			if score > bestScore {
				best, bestScore = j, score
			}
		}
		if _, err := out.Add(pool[best]); err != nil {
			return nil, fmt.Errorf("ccs prune: %w", err)
		}
		pool = append(pool[:best:best], pool[best+1:]...)
	}

	p.log.Debug("ccs done", "in", in.Len(), "front", front.Len(), "out", out.Len(), "lp_solves", solves)
	if p.obs != nil {
		p.obs.ObservePrune(in.Len(), out.Len(), solves)
	}
	return out, nil
}

// separatingWeights solves
//
//	max t  s.t.  w·(candidate-s) - t >= 0  for every s in hull,  Σw = 1,  w >= 0
//
// and reports the weights when the optimum slack exceeds the epsilon.
func (p *Pruner) separatingWeights(candidate vector.Vector, hull []vector.Vector) ([]float64, bool, error) {
	dim := candidate.Dim()
	n := dim + 1
	prob := lp.Problem{
		Costs:    make([]float64, n),
		ColLower: make([]float64, n),
		ColUpper: make([]float64, n),
	}
	prob.Costs[dim] = 1
	prob.ColLower[dim] = math.Inf(-1)
	for j := 0; j < n; j++ {
		prob.ColUpper[j] = math.Inf(1)
	}

	row := make([]float64, n)
	for _, s := range hull {
		diff, err := candidate.Sub(s)
		if err != nil {
			return nil, false, err
		}
		for i := 0; i < dim; i++ {
			row[i] = diff.At(i)
		}
		row[dim] = -1
		prob.AddRow(0, row, math.Inf(1))
	}
	simplex := make([]float64, n)
	for i := 0; i < dim; i++ {
		simplex[i] = 1
	}
	prob.AddRow(1, simplex, 1)

	res, err := p.solver.Solve(prob)
	if err != nil {
		return nil, false, err
	}
	switch res.Status {
	case lp.StatusInfeasible:
		return nil, false, nil
	case lp.StatusOptimal:
	default:
		// The slack is bounded by the weight simplex, so anything else is a
		// solver fault.
		return nil, false, fmt.Errorf("%w: %s separating LP", ErrSolver, res.Status)
	}
	if res.X[dim] <= p.eps {
		return nil, false, nil
	}
	return res.X[:dim], true, nil
}

func without(pool []vector.Vector, drop *pareto.Set) []vector.Vector {
	out := pool[:0:0]
	for _, v := range pool {
		if !drop.Contains(v) {
			out = append(out, v)
		}
	}
	return out
}
