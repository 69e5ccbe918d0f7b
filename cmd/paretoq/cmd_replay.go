package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/paretoq/internal/driver"
	"github.com/danielpatrickdp/paretoq/internal/orchestrator"
	"github.com/danielpatrickdp/paretoq/internal/pareto"
)

var (
	replayRender  bool // draw an episode's states
	replayEpisode int  // which episode to draw, negative counts from the end
	replayColour  bool
)

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <fixture.json>",
		Short: "Feed a recorded conversation to a fresh agent and compare solution sets",
		Long: `Replays a fixture written by "paretoq run --record" into a fresh agent built
from the config. The agent's choices are ignored; every observation and reward
comes from the fixture. When the fixture carries an expected solution set the
two are compared.

With --render the configured grid is drawn once per observation of the
chosen episode (the last one by default).

Examples:
  paretoq replay fixture.json
  paretoq replay fixture.json --render --episode 0`,
		Args: cobra.ExactArgs(1),
		RunE: runReplay,
	}
	cmd.Flags().BoolVar(&replayRender, "render", false, "draw the states of one recorded episode")
	cmd.Flags().IntVar(&replayEpisode, "episode", -1, "episode to draw with --render (negative counts from the end)")
	cmd.Flags().BoolVar(&replayColour, "colour", true, "colour the rendered grid")
	return cmd
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	fixture, err := driver.LoadFixture(args[0])
	if err != nil {
		return err
	}
	o, err := orchestrator.New(cfg, orchestrator.WithLogger(log))
	if err != nil {
		return err
	}
	a, err := o.NewAgent(cfg.Seed)
	if err != nil {
		return err
	}

	res, err := driver.Replay(a, fixture)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "fixture:      %s\n", fixture.Description)
	fmt.Fprintf(w, "episodes:     %d (%d steps)\n", res.Episodes, res.Steps)
	fmt.Fprintf(w, "solution set: %s\n", res.SolutionSet)

	if replayRender {
		if err := renderEpisode(w, o, fixture); err != nil {
			return err
		}
	}

	if fixture.ExpectedSolutionSet == "" {
		return nil
	}
	want, err := pareto.Parse(fixture.ExpectedSolutionSet)
	if err != nil {
		return fmt.Errorf("expected solution set: %w", err)
	}
	got, err := pareto.ParseDim(res.SolutionSet, want.Dim())
	if err != nil {
		return fmt.Errorf("replayed solution set: %w", err)
	}
	if !pareto.Equivalent(got, want) {
		return fmt.Errorf("replay diverged: got %s, recorded %s", got, want)
	}
	fmt.Fprintln(w, "matches the recorded solution set")
	return nil
}

// renderEpisode draws the chosen fixture episode on the configured world.
func renderEpisode(w io.Writer, o *orchestrator.Orchestrator, fixture *driver.Fixture) error {
	obs, err := fixture.Observations(replayEpisode)
	if err != nil {
		return err
	}
	env, err := o.NewEnv(o.Config().Seed)
	if err != nil {
		return err
	}
	return env.RenderObservations(w, obs, replayColour)
}
