// Package agent hosts a learner behind the init/start/step/end lifecycle and
// answers the out-of-band convergence and solution-set queries.
package agent

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/danielpatrickdp/paretoq/internal/gridworld"
	"github.com/danielpatrickdp/paretoq/internal/learner"
	"github.com/danielpatrickdp/paretoq/internal/mdp"
	"github.com/danielpatrickdp/paretoq/internal/pareto"
	"github.com/danielpatrickdp/paretoq/internal/taskspec"
	"github.com/danielpatrickdp/paretoq/internal/update"
	"github.com/danielpatrickdp/paretoq/internal/vector"
)

// ErrLifecycle is returned for calls made out of order.
var ErrLifecycle = errors.New("lifecycle call out of order")

// Message queries.
const (
	QueryConverged   = "isConverged"
	QuerySolutionSet = "getSolutionSet"
)

// Ack is returned by a successful Init.
const Ack = "ok"

type phase int

const (
	phaseIdle phase = iota
	phaseReady
	phaseEpisode
)

var phaseNames = [...]string{"idle", "ready", "episode"}

func (p phase) String() string { return phaseNames[p] }

// #region options
// ConvergenceCheck reports whether estimate matches the known optimum.
type ConvergenceCheck func(estimate *pareto.Set) bool

// Observer receives lifecycle counts and the outcome of every backup.
type Observer interface {
	ObserveStep(kind string)
	ObserveEpisode(kind string, steps int)
	ObserveBackup(kind string, d update.Decision, m update.Metrics)
}

// Option configures an Agent.
type Option func(*Agent)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(a *Agent) { a.log = l } }

// WithConvergence installs the isConverged check.
func WithConvergence(c ConvergenceCheck) Option { return func(a *Agent) { a.converged = c } }

// WithObserver attaches a metrics observer.
func WithObserver(o Observer) Option { return func(a *Agent) { a.obs = o } }

// #endregion options

// Config selects the learner and seeds its action draws.
type Config struct {
	Learner learner.Config `yaml:"learner"`
	Seed    uint64         `yaml:"seed"`
}

// Agent is a single-run, single-goroutine lifecycle host.
type Agent struct {
	cfg       Config
	pruner    update.Pruner
	log       *slog.Logger
	converged ConvergenceCheck
	obs       Observer

	phase   phase
	spec    taskspec.Spec
	learner learner.Learner
	ref     mdp.State
	hasRef  bool

	prevState  mdp.State
	prevAction mdp.Action
	steps      int
	episodes   int
}

// New returns an idle agent. The learner is built on Init, once the task
// spec fixes the objective and action counts.
func New(cfg Config, pruner update.Pruner, opts ...Option) *Agent {
	a := &Agent{cfg: cfg, pruner: pruner}
	for _, o := range opts {
		o(a)
	}
	if a.log == nil {
		a.log = slog.Default()
	}
	return a
}

func (a *Agent) require(op string, want phase) error {
	if a.phase != want {
		return fmt.Errorf("%s: %w: agent is %s, want %s", op, ErrLifecycle, a.phase, want)
	}
	return nil
}

// Init parses the task spec and builds a fresh learner.
func (a *Agent) Init(spec string) (string, error) {
	if err := a.require("init", phaseIdle); err != nil {
		return "", err
	}
	ts, err := taskspec.Parse(spec)
	if err != nil {
		return "", fmt.Errorf("init: %w", err)
	}
	cfg := a.cfg.Learner
	cfg.Update.Discount = ts.Discount
	rng := rand.New(rand.NewPCG(a.cfg.Seed, a.cfg.Seed^0x5851f42d4c957f2d))
	l, err := learner.New(cfg, ts.Objectives, ts.Actions.Count(), rng, a.pruner, learner.WithBackupHook(a.backup))
	if err != nil {
		return "", fmt.Errorf("init: %w", err)
	}

	a.spec, a.learner = ts, l
	a.hasRef, a.episodes = false, 0
	a.phase = phaseReady
	a.log.Info("agent initialised", "learner", l.Kind(), "objectives", ts.Objectives, "actions", ts.Actions.Count(), "discount", ts.Discount)
	return Ack, nil
}

// Start opens an episode and returns the first action. The first start
// observation becomes the reference state for estimates.
func (a *Agent) Start(observation []float64) (mdp.Action, error) {
	if err := a.require("start", phaseReady); err != nil {
		return 0, err
	}
	s, err := gridworld.StateFromObservation(observation)
	if err != nil {
		return 0, fmt.Errorf("start: %w", err)
	}
	if !a.hasRef {
		a.ref, a.hasRef = s, true
	}
	a.learner.BeginEpisode()
	a.prevState, a.prevAction = s, a.learner.SelectAction(s)
	a.steps = 0
	a.phase = phaseEpisode
	return a.prevAction, nil
}

// Step learns from the previous action's reward and returns the next action.
func (a *Agent) Step(reward, observation []float64) (mdp.Action, error) {
	if err := a.require("step", phaseEpisode); err != nil {
		return 0, err
	}
	s, err := gridworld.StateFromObservation(observation)
	if err != nil {
		return 0, fmt.Errorf("step: %w", err)
	}
	tr := mdp.Transition{State0: a.prevState, Action: a.prevAction, Reward: vector.New(reward...), State1: s}
	if err := a.learner.Observe(tr); err != nil {
		return 0, fmt.Errorf("step: %w", err)
	}
	a.prevState, a.prevAction = s, a.learner.SelectAction(s)
	a.steps++
	if a.obs != nil {
		a.obs.ObserveStep(string(a.learner.Kind()))
	}
	return a.prevAction, nil
}

// End applies the terminal backup and closes the episode.
func (a *Agent) End(reward []float64) error {
	if err := a.require("end", phaseEpisode); err != nil {
		return err
	}
	if err := a.learner.EndEpisode(a.prevState, a.prevAction, vector.New(reward...)); err != nil {
		return fmt.Errorf("end: %w", err)
	}
	a.steps++
	a.episodes++
	a.phase = phaseReady
	if a.obs != nil {
		a.obs.ObserveStep(string(a.learner.Kind()))
		a.obs.ObserveEpisode(string(a.learner.Kind()), a.steps)
	}
	a.log.Debug("episode end", "episode", a.episodes, "steps", a.steps, "entries", a.learner.Entries())
	return nil
}

func (a *Agent) backup(kind learner.Kind, d update.Decision, m update.Metrics) {
	if a.obs != nil {
		a.obs.ObserveBackup(string(kind), d, m)
	}
	if d.Action == "no_op" {
		a.log.Debug("backup skipped", "learner", kind, "reason", d.Reason)
	}
}

// Cleanup drops the learner and returns the agent to idle. It is valid in any
// phase.
func (a *Agent) Cleanup() error {
	a.learner = nil
	a.hasRef = false
	a.phase = phaseIdle
	return nil
}

// Message answers isConverged and getSolutionSet; anything else gets "".
func (a *Agent) Message(msg string) (string, error) {
	switch msg {
	case QueryConverged:
		if a.converged == nil {
			return "false", nil
		}
		est, ok := a.Estimate()
		if !ok || !a.converged(est) {
			return "false", nil
		}
		return "true", nil
	case QuerySolutionSet:
		est, ok := a.Estimate()
		if !ok {
			return "", nil
		}
		return est.String(), nil
	default:
		a.log.Debug("unknown message", "message", msg)
		return "", nil
	}
}

// Estimate returns the learner's front for the reference state, or false
// before the first episode has started.
func (a *Agent) Estimate() (*pareto.Set, bool) {
	if a.learner == nil || !a.hasRef {
		return nil, false
	}
	est, err := a.learner.Estimate(a.ref)
	if err != nil {
		a.log.Error("estimate failed", "error", err)
		return nil, false
	}
	return est, true
}

// Episodes returns the number of completed episodes since Init.
func (a *Agent) Episodes() int { return a.episodes }
