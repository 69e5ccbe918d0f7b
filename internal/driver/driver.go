// Package driver sequences episodes between an environment and an agent and
// records what happened.
package driver

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/paretoq/internal/agent"
)

// #region run
// Run initialises a, plays cfg.Episodes episodes against env and cleans the
// agent up. An episode that reaches MaxSteps without terminating is closed
// with End like a terminal one. The context is checked between episodes.
func Run(ctx context.Context, env Env, a Agent, cfg Config, log *slog.Logger, hooks ...Hook) ([]EpisodeResult, error) {
	if log == nil {
		log = slog.Default()
	}
	if _, err := a.Init(env.TaskSpec(cfg.Discount).Format()); err != nil {
		return nil, fmt.Errorf("run: %w", err)
	}
	defer a.Cleanup()

	results := make([]EpisodeResult, 0, cfg.Episodes)
	for ep := 0; ep < cfg.Episodes; ep++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := episode(env, a, cfg.MaxSteps)
		if err != nil {
			return results, fmt.Errorf("run: episode %d: %w", ep, err)
		}
		res.Episode = ep

		last := ep == cfg.Episodes-1
		if last || (cfg.EvalEvery > 0 && (ep+1)%cfg.EvalEvery == 0) {
			if err := query(a, &res); err != nil {
				return results, fmt.Errorf("run: episode %d: %w", ep, err)
			}
			log.Info("evaluated", "episode", ep, "converged", res.Converged, "front", res.SolutionSet)
		}
		for _, h := range hooks {
			if err := h(res); err != nil {
				return results, fmt.Errorf("run: episode %d hook: %w", ep, err)
			}
		}
		results = append(results, res)

		if res.Converged && cfg.StopOnConverged {
			log.Info("stopping on convergence", "episode", ep)
			break
		}
	}
	return results, nil
}

func episode(env Env, a Agent, maxSteps int) (EpisodeResult, error) {
	s := env.Reset()
	act, err := a.Start(env.Observation(s))
	if err != nil {
		return EpisodeResult{}, err
	}
	var res EpisodeResult
	for step := 0; step < maxSteps; step++ {
		out, err := env.Step(act)
		if err != nil {
			return res, err
		}
		res.Steps++
		if res.Return == nil {
			res.Return = make([]float64, len(out.Reward))
		}
		for i, r := range out.Reward {
			res.Return[i] += r
		}
		if out.Terminal || step == maxSteps-1 {
			res.Terminal = out.Terminal
			return res, a.End(out.Reward)
		}
		if act, err = a.Step(out.Reward, env.Observation(out.State)); err != nil {
			return res, err
		}
	}
	return res, nil
}

func query(a Agent, res *EpisodeResult) error {
	set, err := a.Message(agent.QuerySolutionSet)
	if err != nil {
		return err
	}
	conv, err := a.Message(agent.QueryConverged)
	if err != nil {
		return err
	}
	res.Queried = true
	res.SolutionSet = set
	res.Converged = conv == "true"
	return nil
}

// #endregion run

// #region seeds
// SeedRun plays one seed. Every call must build its own environment, agent,
// learner and solver.
type SeedRun func(ctx context.Context, seed uint64) ([]EpisodeResult, error)

// RunSeeds plays every seed concurrently, at most limit at a time (limit <= 0
// means unbounded). The first failure cancels the rest.
func RunSeeds(ctx context.Context, seeds []uint64, limit int, run SeedRun) ([][]EpisodeResult, error) {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	out := make([][]EpisodeResult, len(seeds))
	for i, seed := range seeds {
		g.Go(func() error {
			res, err := run(ctx, seed)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// #endregion seeds

// #region summary
// Summarize computes aggregate stats from episode results.
func Summarize(results []EpisodeResult) Summary {
	s := Summary{Episodes: len(results), ConvergedAt: -1}
	for _, r := range results {
		s.TotalSteps += r.Steps
		if r.Terminal {
			s.Terminated++
		} else {
			s.Truncated++
		}
		if s.MeanReturn == nil && r.Return != nil {
			s.MeanReturn = make([]float64, len(r.Return))
		}
		for i := range r.Return {
			if i < len(s.MeanReturn) {
				s.MeanReturn[i] += r.Return[i]
			}
		}
		if r.Queried {
			s.FinalSolutionSet = r.SolutionSet
			if r.Converged && !s.Converged {
				s.Converged, s.ConvergedAt = true, r.Episode
			}
		}
	}
	for i := range s.MeanReturn {
		s.MeanReturn[i] /= float64(len(results))
	}
	return s
}

// #endregion summary
