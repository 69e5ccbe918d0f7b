package agent

import (
	"errors"
	"testing"

	"github.com/danielpatrickdp/paretoq/internal/ccs"
	"github.com/danielpatrickdp/paretoq/internal/learner"
	"github.com/danielpatrickdp/paretoq/internal/lp"
	"github.com/danielpatrickdp/paretoq/internal/mdp"
	"github.com/danielpatrickdp/paretoq/internal/pareto"
	"github.com/danielpatrickdp/paretoq/internal/update"
	"github.com/danielpatrickdp/paretoq/internal/vector"
)

const spec3 = "VERSION RL-Glue-3.0 PROBLEMTYPE episodic DISCOUNTFACTOR 0.9 OBSERVATIONS DOUBLES (0 9) (0 9) ACTIONS INTS (0 3) OBJECTIVES 3"

// #region helpers
func scalarConfig() Config {
	lc := learner.DefaultConfig()
	lc.Kind = learner.KindScalar
	lc.Update.LearningRate = 0.5
	lc.InitialValue = -9
	return Config{Learner: lc, Seed: 1}
}

func newAgent(t *testing.T, cfg Config, opts ...Option) *Agent {
	t.Helper()
	a := New(cfg, ccs.New(lp.NewSimplex(0)), opts...)
	ack, err := a.Init(spec3)
	if err != nil || ack != Ack {
		t.Fatalf("Init: %q %v", ack, err)
	}
	return a
}

type counter struct {
	steps, episodes, lastSteps int
	commits, noOps             int
	deltas                     []float64
}

func (c *counter) ObserveStep(string) { c.steps++ }
func (c *counter) ObserveEpisode(_ string, steps int) {
	c.episodes++
	c.lastSteps = steps
}
func (c *counter) ObserveBackup(_ string, d update.Decision, m update.Metrics) {
	switch d.Action {
	case "commit":
		c.commits++
	case "no_op":
		c.noOps++
	}
	c.deltas = append(c.deltas, m.DeltaNorm)
}

// #endregion helpers

func TestOneStepEpisode(t *testing.T) {
	obs := &counter{}
	a := newAgent(t, scalarConfig(), WithObserver(obs))

	act, err := a.Start([]float64{0, 0})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if act < 0 || act > 3 {
		t.Fatalf("action %d out of range", act)
	}
	if _, err := a.Step([]float64{-1, 0, 0}, []float64{1, 0}); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if err := a.End([]float64{0, 2, 0}); err != nil {
		t.Fatalf("End: %v", err)
	}

	text, err := a.Message(QuerySolutionSet)
	if err != nil {
		t.Fatalf("Message: %v", err)
	}
	got, err := pareto.ParseDim(text, 3)
	if err != nil {
		t.Fatalf("solution set %q does not parse: %v", text, err)
	}
	// Reference state is the start; one entry moved from the -9 prior.
	want := vector.New(-9.05, -8.55, -8.55)
	found := false
	for _, v := range got.Vectors() {
		if v.ApproxEqual(want, 1e-9) {
			found = true
		}
	}
	if !found || got.Len() != 2 {
		t.Fatalf("unexpected estimate %s", got)
	}
	if obs.steps != 2 || obs.episodes != 1 || obs.lastSteps != 2 {
		t.Fatalf("unexpected observer counts %+v", obs)
	}
	// Both backups moved their entry away from the -9 prior.
	if obs.commits != 2 || obs.noOps != 0 || len(obs.deltas) != 2 {
		t.Fatalf("unexpected backup reports %+v", obs)
	}
	for _, d := range obs.deltas {
		if d <= 0 {
			t.Fatalf("expected positive delta norms, got %v", obs.deltas)
		}
	}
	if a.Episodes() != 1 {
		t.Fatalf("expected 1 episode, got %d", a.Episodes())
	}
}

func TestConvergenceQuery(t *testing.T) {
	var seen *pareto.Set
	check := func(est *pareto.Set) bool {
		seen = est
		return est.Len() == 1
	}
	a := newAgent(t, scalarConfig(), WithConvergence(check))

	if got, _ := a.Message(QueryConverged); got != "false" {
		t.Fatalf("before any episode: expected false, got %q", got)
	}
	if seen != nil {
		t.Fatal("check must not run without an estimate")
	}

	a.Start([]float64{0, 0})
	if got, _ := a.Message(QueryConverged); got != "true" {
		t.Fatalf("all-default estimate has one member: expected true, got %q", got)
	}
	a.Step([]float64{-1, 0, 0}, []float64{0, 0})
	if got, _ := a.Message(QueryConverged); got != "false" {
		t.Fatalf("expected false after a backup at the reference state, got %q", got)
	}
}

func TestMessagesWithoutLearner(t *testing.T) {
	a := New(scalarConfig(), nil)
	for msg, want := range map[string]string{
		QueryConverged:   "false",
		QuerySolutionSet: "",
		"freeze":         "",
	} {
		if got, _ := a.Message(msg); got != want {
			t.Fatalf("Message(%q) = %q, want %q", msg, got, want)
		}
	}
}

func TestLifecycleOrder(t *testing.T) {
	a := New(scalarConfig(), nil)
	if _, err := a.Start([]float64{0, 0}); !errors.Is(err, ErrLifecycle) {
		t.Fatalf("start before init: %v", err)
	}
	if _, err := a.Init(spec3); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, err := a.Init(spec3); !errors.Is(err, ErrLifecycle) {
		t.Fatalf("double init: %v", err)
	}
	if _, err := a.Step([]float64{-1, 0, 0}, []float64{0, 0}); !errors.Is(err, ErrLifecycle) {
		t.Fatalf("step before start: %v", err)
	}
	if err := a.End([]float64{-1, 0, 0}); !errors.Is(err, ErrLifecycle) {
		t.Fatalf("end before start: %v", err)
	}
	if _, err := a.Start([]float64{0, 0}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := a.Start([]float64{0, 0}); !errors.Is(err, ErrLifecycle) {
		t.Fatalf("double start: %v", err)
	}

	a.Cleanup()
	if got, _ := a.Message(QuerySolutionSet); got != "" {
		t.Fatalf("estimate survived cleanup: %q", got)
	}
	if _, err := a.Init(spec3); err != nil {
		t.Fatalf("Init after cleanup: %v", err)
	}
}

func TestInitRejectsBadSpec(t *testing.T) {
	a := New(scalarConfig(), nil)
	if _, err := a.Init("VERSION RL-Glue-3.0"); err == nil {
		t.Fatal("expected error for truncated spec")
	}
	hull := Config{Learner: learner.DefaultConfig()}
	if _, err := New(hull, nil).Init(spec3); !errors.Is(err, learner.ErrInvalidParameter) {
		t.Fatalf("hull learner without pruner: %v", err)
	}
}

func TestStepRejectsWrongRewardDimension(t *testing.T) {
	a := newAgent(t, scalarConfig())
	a.Start([]float64{0, 0})
	if _, err := a.Step([]float64{-1, 0}, []float64{1, 0}); !errors.Is(err, vector.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestReferenceStateIsFirstStart(t *testing.T) {
	a := newAgent(t, scalarConfig())
	a.Start([]float64{2, 3})
	a.End([]float64{-1, 0, 0})
	a.Start([]float64{0, 0})

	if a.ref != (mdp.State{X: 2, Y: 3}) {
		t.Fatalf("reference moved to %v", a.ref)
	}
}
