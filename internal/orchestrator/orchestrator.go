// Package orchestrator wires a loaded configuration into runnable pieces:
// one environment, solver, pruner and agent per seed, with the run log and
// metrics attached when present.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/danielpatrickdp/paretoq/internal/agent"
	"github.com/danielpatrickdp/paretoq/internal/ccs"
	"github.com/danielpatrickdp/paretoq/internal/config"
	"github.com/danielpatrickdp/paretoq/internal/driver"
	"github.com/danielpatrickdp/paretoq/internal/eval"
	"github.com/danielpatrickdp/paretoq/internal/fronts"
	"github.com/danielpatrickdp/paretoq/internal/gridworld"
	"github.com/danielpatrickdp/paretoq/internal/lp"
	"github.com/danielpatrickdp/paretoq/internal/pareto"
	"github.com/danielpatrickdp/paretoq/internal/runlog"
	"github.com/danielpatrickdp/paretoq/internal/telemetry"
)

// #region orchestrator-struct

// Orchestrator is the top-level coordinator for training runs.
type Orchestrator struct {
	cfg     config.Config
	refs    *fronts.Registry
	harness *eval.EvalHarness
	log     *slog.Logger
	metrics *telemetry.Metrics
	store   *runlog.Store
	hooks   []driver.Hook
}

// #endregion

// #region constructor

// New validates cfg and builds the reference registry.
func New(cfg config.Config, opts ...Option) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	refs, err := cfg.Registry()
	if err != nil {
		return nil, err
	}
	o := &Orchestrator{
		cfg:     cfg,
		refs:    refs,
		harness: eval.NewEvalHarness(cfg.Eval),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = slog.Default()
	}
	return o, nil
}

// Config returns the validated configuration.
func (o *Orchestrator) Config() config.Config { return o.cfg }

// #endregion

// #region builders

// NewEnv builds the configured world with its own random stream.
func (o *Orchestrator) NewEnv(seed uint64) (*gridworld.Env, error) {
	return gridworld.New(o.cfg.Env, seed)
}

// NewPruner opens a fresh LP solver and wraps it in a convex hull pruner.
func (o *Orchestrator) NewPruner() (*ccs.Pruner, error) {
	solver, err := lp.Open(o.cfg.LP)
	if err != nil {
		return nil, err
	}
	opts := []ccs.Option{ccs.WithLogger(o.log)}
	if o.metrics != nil {
		opts = append(opts, ccs.WithObserver(o.metrics))
	}
	return ccs.New(solver, opts...), nil
}

// Convergence checks estimates against the reference front registered for
// the configured world. Without one it never reports convergence.
func (o *Orchestrator) Convergence() agent.ConvergenceCheck {
	return func(est *pareto.Set) bool {
		ref, ok := o.refs.Lookup(o.cfg.Env)
		if !ok {
			return false
		}
		res := o.harness.Run(est, ref)
		o.log.Debug("convergence check", "passed", res.Passed, "reason", res.Reason)
		return res.Passed
	}
}

// NewAgent builds an in-process agent for seed.
func (o *Orchestrator) NewAgent(seed uint64) (*agent.Agent, error) {
	pruner, err := o.NewPruner()
	if err != nil {
		return nil, err
	}
	opts := []agent.Option{
		agent.WithLogger(o.log.With("seed", seed)),
		agent.WithConvergence(o.Convergence()),
	}
	if o.metrics != nil {
		opts = append(opts, agent.WithObserver(o.metrics))
	}
	return agent.New(agent.Config{Learner: o.cfg.Learner, Seed: seed}, pruner, opts...), nil
}

// Seeds lists the configured seeds: Seed, Seed+1, ...
func (o *Orchestrator) Seeds() []uint64 {
	out := make([]uint64, o.cfg.Seeds)
	for i := range out {
		out[i] = o.cfg.Seed + uint64(i)
	}
	return out
}

// #endregion

// #region run

// RunAgent plays the configured episodes of the world seeded with seed
// against a, recording to the run log when one is attached.
func (o *Orchestrator) RunAgent(ctx context.Context, seed uint64, a driver.Agent) (SeedOutcome, error) {
	env, err := o.NewEnv(seed)
	if err != nil {
		return SeedOutcome{}, err
	}
	out := SeedOutcome{Seed: seed}
	hooks := append([]driver.Hook(nil), o.hooks...)
	if o.metrics != nil {
		hooks = append(hooks, o.metrics.Hook())
	}
	if o.store != nil {
		cfgJSON, err := json.Marshal(o.cfg)
		if err != nil {
			return out, fmt.Errorf("encode config: %w", err)
		}
		rec, err := o.store.BeginRun(runlog.RunRecord{
			Learner:    string(o.cfg.Learner.Kind),
			Seed:       seed,
			Objectives: env.Objectives(),
			ConfigJSON: string(cfgJSON),
		})
		if err != nil {
			return out, err
		}
		out.RunID = rec.RunID
		hooks = append(hooks, o.store.Hook(rec.RunID))
	}

	log := o.log.With("seed", seed)
	results, runErr := driver.Run(ctx, env, a, o.cfg.Run, log, hooks...)
	out.Results = results
	out.Summary = driver.Summarize(results)

	if o.store != nil {
		status := runlog.StatusFinished
		if runErr != nil {
			status = runlog.StatusFailed
		}
		if err := o.store.FinishRun(out.RunID, status, out.Summary.Episodes, out.Summary.ConvergedAt); err != nil {
			log.Error("finish run", "run_id", out.RunID, "error", err)
		}
	}
	if runErr != nil {
		return out, runErr
	}
	log.Info("seed finished", "episodes", out.Summary.Episodes, "converged", out.Summary.Converged,
		"converged_at", out.Summary.ConvergedAt, "front", out.Summary.FinalSolutionSet)
	return out, nil
}

// RunSeed builds a fresh agent for seed and plays it.
func (o *Orchestrator) RunSeed(ctx context.Context, seed uint64) (SeedOutcome, error) {
	a, err := o.NewAgent(seed)
	if err != nil {
		return SeedOutcome{}, err
	}
	return o.RunAgent(ctx, seed, a)
}

// Run plays every configured seed in parallel, at most GOMAXPROCS at once,
// and returns the outcomes in seed order.
func (o *Orchestrator) Run(ctx context.Context) ([]SeedOutcome, error) {
	seeds := o.Seeds()
	var (
		mu       sync.Mutex
		outcomes = make(map[uint64]SeedOutcome, len(seeds))
	)
	_, err := driver.RunSeeds(ctx, seeds, runtime.GOMAXPROCS(0), func(ctx context.Context, seed uint64) ([]driver.EpisodeResult, error) {
		out, err := o.RunSeed(ctx, seed)
		if err != nil {
			return nil, err
		}
		mu.Lock()
		outcomes[seed] = out
		mu.Unlock()
		return out.Results, nil
	})
	if err != nil {
		return nil, err
	}
	ordered := make([]SeedOutcome, len(seeds))
	for i, seed := range seeds {
		ordered[i] = outcomes[seed]
	}
	return ordered, nil
}

// #endregion
