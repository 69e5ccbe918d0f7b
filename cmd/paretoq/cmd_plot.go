package main

import (
	"fmt"

	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/paretoq/internal/config"
	"github.com/danielpatrickdp/paretoq/internal/driver"
	"github.com/danielpatrickdp/paretoq/internal/orchestrator"
	"github.com/danielpatrickdp/paretoq/internal/pareto"
	"github.com/danielpatrickdp/paretoq/internal/report"
	"github.com/danielpatrickdp/paretoq/internal/runlog"
)

var (
	plotRunID string
	plotOut   string
	plotAxes  []int
)

func newPlotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Render a recorded run as an HTML report",
		Long: `Reads a run from the run log and renders the per-episode returns and the
last reported solution set, next to the reference front when the config
registers one for the configured world.

Examples:
  paretoq plot                        # most recent run
  paretoq plot --run 1b4e28ba --out run.html --axes 1,2`,
		RunE: runPlot,
	}
	cmd.Flags().StringVar(&plotRunID, "run", "", "run id (default: most recent)")
	cmd.Flags().StringVarP(&plotOut, "out", "o", "report.html", "output file")
	cmd.Flags().IntSliceVar(&plotAxes, "axes", []int{0, 1}, "objectives on the scatter x and y axes")
	return cmd
}

func runPlot(_ *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if len(plotAxes) != 2 {
		return fmt.Errorf("--axes takes two objective indices, got %v", plotAxes)
	}
	store, err := runlog.NewStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := pickRun(store, cfg.DBPath, plotRunID)
	if err != nil {
		return err
	}
	eps, err := store.ListEpisodes(run.RunID)
	if err != nil {
		return err
	}
	results := make([]driver.EpisodeResult, len(eps))
	for i, e := range eps {
		results[i] = driver.EpisodeResult{Episode: e.Episode, Steps: e.Steps, Return: e.Return, Terminal: e.Terminal}
	}

	charts := []components.Charter{report.ReturnLine("Returns, run "+shortID(run.RunID), results)}
	if est, err := store.LatestEstimate(run.RunID); err == nil && run.Objectives >= 2 {
		scatter, err := frontChart(cfg, est.Front, run.Objectives, plotAxes[0], plotAxes[1])
		if err != nil {
			return err
		}
		charts = append([]components.Charter{scatter}, charts...)
	}

	if err := report.WriteFile(plotOut, charts...); err != nil {
		return err
	}
	log.Info("report written", "path", plotOut, "run_id", run.RunID, "episodes", len(results))
	return nil
}

func pickRun(store *runlog.Store, dbPath, id string) (runlog.RunRecord, error) {
	if id != "" {
		return store.GetRun(id)
	}
	runs, err := store.ListRuns(1)
	if err != nil {
		return runlog.RunRecord{}, err
	}
	if len(runs) == 0 {
		return runlog.RunRecord{}, fmt.Errorf("no runs in %s", dbPath)
	}
	return runs[0], nil
}

// frontChart plots an estimate against the configured reference, if any.
func frontChart(cfg config.Config, front string, dim, x, y int) (components.Charter, error) {
	est, err := pareto.ParseDim(front, dim)
	if err != nil {
		return nil, err
	}
	sets := map[string]*pareto.Set{"estimate": est}
	refs, err := cfg.Registry()
	if err != nil {
		return nil, err
	}
	if ref, ok := refs.Lookup(cfg.Env); ok && ref.Dim() == dim {
		sets["reference"] = ref
	}
	return report.FrontScatter("Solution set", sets, x, y)
}

// writeReport renders a finished in-process run.
func writeReport(path string, o *orchestrator.Orchestrator, results []driver.EpisodeResult) error {
	charts := []components.Charter{report.ReturnLine("Returns", results)}
	sum := driver.Summarize(results)
	if sum.FinalSolutionSet != "" && o.Config().Env.Objectives() >= 2 {
		scatter, err := frontChart(o.Config(), sum.FinalSolutionSet, o.Config().Env.Objectives(), 0, 1)
		if err != nil {
			return err
		}
		charts = append([]components.Charter{scatter}, charts...)
	}
	return report.WriteFile(path, charts...)
}
