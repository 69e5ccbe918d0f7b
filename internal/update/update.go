package update

import (
	"fmt"
	"time"

	"github.com/danielpatrickdp/paretoq/internal/pareto"
	"github.com/danielpatrickdp/paretoq/internal/vector"
)

// #region scalar
// Scalar is a pure temporal-difference backup of one vector entry:
//
//	Q ← Q + α(r + γ·bootstrap − Q)
//
// bootstrap is Q(s', a*) for the greedy next action, or the zero vector at the
// end of an episode.
func Scalar(prior, reward, bootstrap vector.Vector, config UpdateConfig) (ScalarResult, error) {
	start := time.Now()

	target, err := reward.AddScaled(bootstrap, config.Discount)
	if err != nil {
		return ScalarResult{}, fmt.Errorf("scalar backup: %w", err)
	}
	tdError, err := target.Sub(prior)
	if err != nil {
		return ScalarResult{}, fmt.Errorf("scalar backup: %w", err)
	}
	next, _ := prior.AddScaled(tdError, config.LearningRate)
	norm := tdError.EuclideanNorm() * config.LearningRate

	decision := Decision{Action: "no_op", Reason: "target equals prior"}
	if norm > 0 {
		decision = Decision{Action: "commit", Reason: fmt.Sprintf("delta norm: %.6f", norm)}
	}
	return ScalarResult{
		Value:    next,
		Decision: decision,
		Metrics: Metrics{
			DeltaNorm:    norm,
			Bootstrapped: 1,
			UpdateTimeMs: time.Since(start).Milliseconds(),
		},
	}, nil
}

// ScalarTerminal is Scalar with a zero future value.
func ScalarTerminal(prior, reward vector.Vector, config UpdateConfig) (ScalarResult, error) {
	zero, err := vector.Zero(reward.Dim())
	if err != nil {
		return ScalarResult{}, err
	}
	return Scalar(prior, reward, zero, config)
}

// #endregion scalar

// #region hull
// Hull is a pure set-valued backup. Each next-state set is reduced to its
// convex coverage set, the results are merged and reduced again, and every
// survivor m becomes reward + γ·m. The previous entry is replaced, not averaged.
func Hull(reward vector.Vector, next []*pareto.Set, config UpdateConfig, pruner Pruner) (HullResult, error) {
	start := time.Now()

	merged, err := pareto.NewSet(reward.Dim())
	if err != nil {
		return HullResult{}, err
	}
	for i, s := range next {
		reduced, err := pruner.Prune(s)
		if err != nil {
			return HullResult{}, fmt.Errorf("hull backup: next action %d: %w", i, err)
		}
		if merged, err = merged.Union(reduced); err != nil {
			return HullResult{}, fmt.Errorf("hull backup: %w", err)
		}
	}
	front, err := pruner.Prune(merged)
	if err != nil {
		return HullResult{}, fmt.Errorf("hull backup: %w", err)
	}

	out, err := pareto.NewSet(reward.Dim())
	if err != nil {
		return HullResult{}, err
	}
	for _, m := range front.Vectors() {
		v, err := reward.AddScaled(m, config.Discount)
		if err != nil {
			return HullResult{}, fmt.Errorf("hull backup: %w", err)
		}
		if _, err := out.Add(v); err != nil {
			return HullResult{}, fmt.Errorf("hull backup: %w", err)
		}
	}
	if out.Len() == 0 {
		// No next-state estimates at all: fall back to the immediate reward.
		if _, err := out.Add(reward); err != nil {
			return HullResult{}, fmt.Errorf("hull backup: %w", err)
		}
	}

	return HullResult{
		Value:    out,
		Decision: Decision{Action: "commit", Reason: fmt.Sprintf("front of %d from %d candidates", out.Len(), merged.Len())},
		Metrics: Metrics{
			FrontSize:    out.Len(),
			Bootstrapped: merged.Len(),
			UpdateTimeMs: time.Since(start).Milliseconds(),
		},
	}, nil
}

// HullTerminal collapses the entry to the terminal reward.
func HullTerminal(reward vector.Vector) (HullResult, error) {
	out, err := pareto.FromVectors(reward.Dim(), reward)
	if err != nil {
		return HullResult{}, err
	}
	return HullResult{
		Value:    out,
		Decision: Decision{Action: "commit", Reason: "terminal"},
		Metrics:  Metrics{FrontSize: 1},
	}, nil
}

// #endregion hull
