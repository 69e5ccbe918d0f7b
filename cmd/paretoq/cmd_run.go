package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/paretoq/internal/driver"
	"github.com/danielpatrickdp/paretoq/internal/orchestrator"
	"github.com/danielpatrickdp/paretoq/internal/runlog"
	"github.com/danielpatrickdp/paretoq/internal/telemetry"
)

var (
	runNoDB       bool   // skip the run log
	runRecordPath string // write a fixture of the first seed
	runReportPath string // write an HTML report of the first seed
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Train the configured learner in-process, one run per seed",
		Long: `Trains the configured learner against the configured grid world.

Seeds run in parallel. Each run is recorded in the run log (db_path) unless
--no-db is given, and counters are served on metrics_addr when it is set.

Examples:
  paretoq run                         # defaults, or ./paretoq.yaml
  paretoq run -c hull.yaml --report out/report.html
  PARETOQ_EPISODES=50 paretoq run --no-db --record fixture.json`,
		RunE: runTraining,
	}
	cmd.Flags().BoolVar(&runNoDB, "no-db", false, "do not write the run log")
	cmd.Flags().StringVar(&runRecordPath, "record", "", "record the first seed's conversation to a fixture file")
	cmd.Flags().StringVar(&runReportPath, "report", "", "write an HTML report of the first seed")
	return cmd
}

func runTraining(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	var opts []orchestrator.Option
	opts = append(opts, orchestrator.WithLogger(log))

	if cfg.MetricsAddr != "" {
		metrics := telemetry.New(true)
		opts = append(opts, orchestrator.WithMetrics(metrics))
		shutdown := serveMetrics(cfg.MetricsAddr, metrics, log)
		defer shutdown()
	}

	if !runNoDB && cfg.DBPath != "" {
		store, err := runlog.NewStore(cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()
		opts = append(opts, orchestrator.WithStore(store))
	}

	o, err := orchestrator.New(cfg, opts...)
	if err != nil {
		return err
	}

	var outcomes []orchestrator.SeedOutcome
	if runRecordPath != "" {
		outcomes, err = runRecorded(ctx, o)
	} else {
		outcomes, err = o.Run(ctx)
	}
	if err != nil {
		return err
	}

	for _, out := range outcomes {
		printSummary(out)
	}
	if runReportPath != "" && len(outcomes) > 0 {
		if err := writeReport(runReportPath, o, outcomes[0].Results); err != nil {
			return err
		}
		log.Info("report written", "path", runReportPath)
	}
	return nil
}

// runRecorded plays the first seed through a recorder and saves the fixture.
func runRecorded(ctx context.Context, o *orchestrator.Orchestrator) ([]orchestrator.SeedOutcome, error) {
	seed := o.Seeds()[0]
	a, err := o.NewAgent(seed)
	if err != nil {
		return nil, err
	}
	rec := driver.NewRecorder(a, fmt.Sprintf("%s learner, seed %d", o.Config().Learner.Kind, seed))
	out, err := o.RunAgent(ctx, seed, rec)
	if err != nil {
		return nil, err
	}
	fixture := rec.Fixture()
	fixture.ExpectedSolutionSet = out.Summary.FinalSolutionSet
	if err := fixture.Save(runRecordPath); err != nil {
		return nil, err
	}
	return []orchestrator.SeedOutcome{out}, nil
}

func printSummary(out orchestrator.SeedOutcome) {
	s := out.Summary
	fmt.Printf("seed %d", out.Seed)
	if out.RunID != "" {
		fmt.Printf("  run %s", shortID(out.RunID))
	}
	fmt.Printf("\n  episodes:     %d (%d terminal, %d truncated, %d steps)\n", s.Episodes, s.Terminated, s.Truncated, s.TotalSteps)
	fmt.Printf("  mean return:  %v\n", s.MeanReturn)
	if s.Converged {
		fmt.Printf("  converged:    episode %d\n", s.ConvergedAt)
	} else {
		fmt.Printf("  converged:    no\n")
	}
	fmt.Printf("  solution set: %s\n", s.FinalSolutionSet)
}

// serveMetrics exposes /metrics until the returned func is called.
func serveMetrics(addr string, m *telemetry.Metrics, log *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server", "error", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
