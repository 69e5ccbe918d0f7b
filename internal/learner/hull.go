package learner

import (
	"fmt"

	"github.com/danielpatrickdp/paretoq/internal/mdp"
	"github.com/danielpatrickdp/paretoq/internal/pareto"
	"github.com/danielpatrickdp/paretoq/internal/qtable"
	"github.com/danielpatrickdp/paretoq/internal/update"
	"github.com/danielpatrickdp/paretoq/internal/vector"
)

// HullQ stores a convex coverage set per (state, action). States include the
// collected-resource mask. Missing entries resolve to {0}.
type HullQ struct {
	base
	pruner update.Pruner
	table  *qtable.Table[*pareto.Set]
}

func newHullQ(b base, pruner update.Pruner) *HullQ {
	q := &HullQ{base: b, pruner: pruner}
	q.table = qtable.New(func() *pareto.Set {
		zero, _ := vector.Zero(b.dim)
		s, _ := pareto.FromVectors(b.dim, zero)
		return s
	})
	return q
}

// Kind implements Learner.
func (q *HullQ) Kind() Kind { return KindHull }

// BeginEpisode implements Learner. Terminal handling reads the state itself.
func (q *HullQ) BeginEpisode() {}

// Entries implements Learner.
func (q *HullQ) Entries() int { return q.table.Len() }

// Observe implements Learner.
func (q *HullQ) Observe(tr mdp.Transition) error {
	var (
		res update.HullResult
		err error
	)
	if tr.Terminal {
		res, err = update.HullTerminal(tr.Reward)
	} else {
		res, err = update.Hull(tr.Reward, q.successors(tr.State1), q.cfg.Update, q.pruner)
	}
	if err != nil {
		return fmt.Errorf("observe %v/%d: %w", tr.State0, tr.Action, err)
	}
	q.table.Set(tr.State0, tr.Action, res.Value)
	q.report(KindHull, res.Decision, res.Metrics)
	return nil
}

// EndEpisode implements Learner.
func (q *HullQ) EndEpisode(s mdp.State, a mdp.Action, reward vector.Vector) error {
	return q.Observe(mdp.Transition{State0: s, Action: a, Reward: reward, Terminal: true})
}

// Estimate implements Learner: the convex coverage set of the union over
// actions at ref.
func (q *HullQ) Estimate(ref mdp.State) (*pareto.Set, error) {
	merged, err := pareto.NewSet(q.dim)
	if err != nil {
		return nil, err
	}
	for _, s := range q.successors(ref) {
		if merged, err = merged.Union(s); err != nil {
			return nil, err
		}
	}
	return q.pruner.Prune(merged)
}

func (q *HullQ) successors(s mdp.State) []*pareto.Set {
	out := make([]*pareto.Set, q.actions)
	for a := range out {
		out[a] = q.table.Get(s, mdp.Action(a))
	}
	return out
}
