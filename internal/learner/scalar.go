package learner

import (
	"fmt"

	"github.com/danielpatrickdp/paretoq/internal/mdp"
	"github.com/danielpatrickdp/paretoq/internal/pareto"
	"github.com/danielpatrickdp/paretoq/internal/qtable"
	"github.com/danielpatrickdp/paretoq/internal/update"
	"github.com/danielpatrickdp/paretoq/internal/vector"
)

// ScalarQ is Q-learning over vector entries with a fixed linear strategy
// choosing the bootstrap action.
type ScalarQ struct {
	base
	strategy Strategy
	table    *qtable.Table[vector.Vector]
}

func newScalarQ(b base, s Strategy) *ScalarQ {
	q := &ScalarQ{base: b, strategy: s}
	q.table = qtable.New(q.initial)
	return q
}

// Kind implements Learner.
func (q *ScalarQ) Kind() Kind { return KindScalar }

// BeginEpisode implements Learner. The scalar learner keeps no episode state.
func (q *ScalarQ) BeginEpisode() {}

// Entries implements Learner.
func (q *ScalarQ) Entries() int { return q.table.Len() }

// Observe implements Learner.
func (q *ScalarQ) Observe(tr mdp.Transition) error {
	res, err := backupVector(q.table, q.strategy, q.actions, tr, q.cfg.Update)
	if err != nil {
		return err
	}
	q.report(KindScalar, res.Decision, res.Metrics)
	return nil
}

// EndEpisode implements Learner.
func (q *ScalarQ) EndEpisode(s mdp.State, a mdp.Action, reward vector.Vector) error {
	return q.Observe(mdp.Transition{State0: s, Action: a, Reward: reward, Terminal: true})
}

// Estimate implements Learner: the undominated entries of ref over all actions.
func (q *ScalarQ) Estimate(ref mdp.State) (*pareto.Set, error) {
	ref = location(ref)
	vs := make([]vector.Vector, q.actions)
	for a := range vs {
		vs[a] = q.table.Get(ref, mdp.Action(a))
	}
	return vectorFront(q.dim, vs)
}

// backupVector applies one scalar TD backup to table.
func backupVector(table *qtable.Table[vector.Vector], s Strategy, actions int, tr mdp.Transition, cfg update.UpdateConfig) (update.ScalarResult, error) {
	s0, s1 := location(tr.State0), location(tr.State1)
	prior := table.Get(s0, tr.Action)

	var (
		res update.ScalarResult
		err error
	)
	if tr.Terminal {
		res, err = update.ScalarTerminal(prior, tr.Reward, cfg)
	} else {
		next := func(a mdp.Action) vector.Vector { return table.Get(s1, a) }
		var best mdp.Action
		if best, err = s.SelectNextAction(next, actions); err != nil {
			return update.ScalarResult{}, err
		}
		res, err = update.Scalar(prior, tr.Reward, next(best), cfg)
	}
	if err != nil {
		return update.ScalarResult{}, fmt.Errorf("observe %v/%d: %w", s0, tr.Action, err)
	}
	table.Set(s0, tr.Action, res.Value)
	return res, nil
}
