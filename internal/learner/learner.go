// Package learner implements the tabular multi-objective learners: a scalar
// Q-learner under fixed weights, a rotating variant that trains one table per
// objective, and a convex-hull learner that backs up whole fronts.
package learner

import (
	"fmt"
	"math/rand/v2"

	"github.com/danielpatrickdp/paretoq/internal/mdp"
	"github.com/danielpatrickdp/paretoq/internal/pareto"
	"github.com/danielpatrickdp/paretoq/internal/update"
	"github.com/danielpatrickdp/paretoq/internal/vector"
)

// New builds the variant named by cfg.Kind. The pruner is only used by the
// hull variant and may be nil for the others.
func New(cfg Config, objectives, actions int, rng *rand.Rand, pruner update.Pruner, opts ...Option) (Learner, error) {
	if objectives < 1 {
		return nil, fmt.Errorf("%w: %d objectives", ErrInvalidParameter, objectives)
	}
	if actions < 1 {
		return nil, fmt.Errorf("%w: %d actions", ErrInvalidParameter, actions)
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: nil rng", ErrInvalidParameter)
	}
	b := base{cfg: cfg, dim: objectives, actions: actions, rng: rng}
	for _, o := range opts {
		o(&b)
	}

	switch cfg.Kind {
	case KindScalar:
		weights := cfg.Weights
		if len(weights) == 0 {
			weights = make([]float64, objectives)
			for i := range weights {
				weights[i] = 1 / float64(objectives)
			}
		}
		if len(weights) != objectives {
			return nil, fmt.Errorf("%w: %d weights for %d objectives", ErrInvalidParameter, len(weights), objectives)
		}
		return newScalarQ(b, LinearStrategy{Weights: weights}), nil
	case KindRotating:
		return newRotatingQ(b), nil
	case KindHull:
		if pruner == nil {
			return nil, fmt.Errorf("%w: hull learner needs a pruner", ErrInvalidParameter)
		}
		return newHullQ(b, pruner), nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidParameter, cfg.Kind)
	}
}

// base carries what every variant shares.
type base struct {
	cfg     Config
	dim     int
	actions int
	rng     *rand.Rand
	hook    BackupHook
}

func (b *base) Objectives() int { return b.dim }

func (b *base) SelectAction(mdp.State) mdp.Action {
	return mdp.Action(b.rng.IntN(b.actions))
}

func (b *base) report(kind Kind, d update.Decision, m update.Metrics) {
	if b.hook != nil {
		b.hook(kind, d, m)
	}
}

func (b *base) initial() vector.Vector {
	v, _ := vector.Fill(b.dim, b.cfg.InitialValue)
	return v
}

// location drops the collected-resource mask; the vector-valued variants key
// their tables on position alone.
func location(s mdp.State) mdp.State {
	return mdp.State{X: s.X, Y: s.Y}
}

// vectorFront returns the Pareto-pruned set of vs.
func vectorFront(dim int, vs []vector.Vector) (*pareto.Set, error) {
	out, err := pareto.FromVectors(dim, vs...)
	if err != nil {
		return nil, err
	}
	out.PruneDominated()
	return out, nil
}
