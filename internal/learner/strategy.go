package learner

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/paretoq/internal/mdp"
	"github.com/danielpatrickdp/paretoq/internal/vector"
)

// Strategy scalarises vector estimates and picks the greedy next action.
type Strategy interface {
	Scalarize(v vector.Vector) (float64, error)
	SelectNextAction(q func(mdp.Action) vector.Vector, n int) (mdp.Action, error)
}

// LinearStrategy is a fixed weighted sum.
type LinearStrategy struct {
	Weights []float64
}

// Scalarize implements Strategy.
func (l LinearStrategy) Scalarize(v vector.Vector) (float64, error) {
	return v.Dot(l.Weights)
}

// SelectNextAction implements Strategy.
func (l LinearStrategy) SelectNextAction(q func(mdp.Action) vector.Vector, n int) (mdp.Action, error) {
	return greedy(l, q, n)
}

// RotatingStrategy weights one objective with Dominant and the remaining Dim-1
// with Flatten.
type RotatingStrategy struct {
	Objective int
	Dim       int
	Dominant  float64
	Flatten   float64
}

// Weights returns the expanded weight vector.
func (r RotatingStrategy) Weights() []float64 {
	w := make([]float64, r.Dim)
	for i := range w {
		w[i] = r.Flatten
	}
	w[r.Objective] = r.Dominant
	return w
}

// Scalarize implements Strategy.
func (r RotatingStrategy) Scalarize(v vector.Vector) (float64, error) {
	return v.Dot(r.Weights())
}

// SelectNextAction implements Strategy.
func (r RotatingStrategy) SelectNextAction(q func(mdp.Action) vector.Vector, n int) (mdp.Action, error) {
	return greedy(r, q, n)
}

// greedy scans actions in index order and keeps the first maximum.
func greedy(s Strategy, q func(mdp.Action) vector.Vector, n int) (mdp.Action, error) {
	best, bestScore := mdp.Action(0), math.Inf(-1)
	for a := mdp.Action(0); int(a) < n; a++ {
		score, err := s.Scalarize(q(a))
		if err != nil {
			return 0, fmt.Errorf("select next action: %w", err)
		}
		if score > bestScore {
			best, bestScore = a, score
		}
	}
	return best, nil
}
