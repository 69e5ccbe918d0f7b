package learner

import (
	"github.com/danielpatrickdp/paretoq/internal/mdp"
	"github.com/danielpatrickdp/paretoq/internal/pareto"
	"github.com/danielpatrickdp/paretoq/internal/qtable"
	"github.com/danielpatrickdp/paretoq/internal/vector"
)

// RotatingQ keeps one vector table per objective. During episode e only table
// e mod D learns, under weights that favour objective e mod D; the rotation
// advances when an episode ends.
type RotatingQ struct {
	base
	episode    int
	strategies []RotatingStrategy
	tables     []*qtable.Table[vector.Vector]
}

func newRotatingQ(b base) *RotatingQ {
	q := &RotatingQ{base: b}
	for k := 0; k < b.dim; k++ {
		q.strategies = append(q.strategies, RotatingStrategy{
			Objective: k,
			Dim:       b.dim,
			Dominant:  b.cfg.Dominant,
			Flatten:   b.cfg.Flatten,
		})
		q.tables = append(q.tables, qtable.New(q.initial))
	}
	return q
}

// Kind implements Learner.
func (q *RotatingQ) Kind() Kind { return KindRotating }

// Active returns the objective trained in the current episode.
func (q *RotatingQ) Active() int { return q.episode % q.dim }

// BeginEpisode implements Learner. The rotation advances in EndEpisode.
func (q *RotatingQ) BeginEpisode() {}

// Entries implements Learner.
func (q *RotatingQ) Entries() int {
	n := 0
	for _, t := range q.tables {
		n += t.Len()
	}
	return n
}

// Observe implements Learner.
func (q *RotatingQ) Observe(tr mdp.Transition) error {
	k := q.Active()
	res, err := backupVector(q.tables[k], q.strategies[k], q.actions, tr, q.cfg.Update)
	if err != nil {
		return err
	}
	q.report(KindRotating, res.Decision, res.Metrics)
	return nil
}

// EndEpisode implements Learner and rotates to the next objective.
func (q *RotatingQ) EndEpisode(s mdp.State, a mdp.Action, reward vector.Vector) error {
	err := q.Observe(mdp.Transition{State0: s, Action: a, Reward: reward, Terminal: true})
	q.episode++
	return err
}

// Estimate implements Learner: each table's greedy entry for ref, pruned.
func (q *RotatingQ) Estimate(ref mdp.State) (*pareto.Set, error) {
	ref = location(ref)
	vs := make([]vector.Vector, 0, q.dim)
	for k, t := range q.tables {
		get := func(a mdp.Action) vector.Vector { return t.Get(ref, a) }
		best, err := q.strategies[k].SelectNextAction(get, q.actions)
		if err != nil {
			return nil, err
		}
		vs = append(vs, get(best))
	}
	return vectorFront(q.dim, vs)
}
