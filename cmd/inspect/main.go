package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/danielpatrickdp/paretoq/internal/pareto"
	"github.com/danielpatrickdp/paretoq/internal/quality"
	"github.com/danielpatrickdp/paretoq/internal/runlog"
	"github.com/danielpatrickdp/paretoq/internal/vector"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to paretoq.db")
	last := flag.Int("last", 20, "show N most recent runs")
	runID := flag.String("run", "", "show single run detail")
	tail := flag.Int("tail", 10, "episodes averaged for the detail view's recent return")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/paretoq.db [--last N] [--run id] [--tail N] [--json]")
		os.Exit(2)
	}

	store, err := runlog.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if *runID != "" {
		err = runDetailMode(store, *runID, *tail, *jsonOut)
	} else {
		err = runListMode(store, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	RunID       string `json:"run_id"`
	Learner     string `json:"learner"`
	Seed        uint64 `json:"seed"`
	Status      string `json:"status"`
	Episodes    int    `json:"episodes"`
	ConvergedAt int    `json:"converged_at"`
	StartedAt   string `json:"started_at"`
}

func runListMode(store *runlog.Store, last int, jsonOut bool) error {
	runs, err := store.ListRuns(last)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stderr, "no runs found")
		return nil
	}

	// Store returns newest first; print chronologically.
	rows := make([]listRow, len(runs))
	for i, r := range runs {
		rows[len(runs)-1-i] = listRow{
			RunID:       r.RunID,
			Learner:     r.Learner,
			Seed:        r.Seed,
			Status:      r.Status,
			Episodes:    r.Episodes,
			ConvergedAt: r.ConvergedAt,
			StartedAt:   r.StartedAt.Format("2006-01-02T15:04:05Z"),
		}
	}

	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-10s  %-8s  %6s  %-9s  %8s  %9s  %s\n",
		"Run", "Learner", "Seed", "Status", "Episodes", "Converged", "Started")
	fmt.Printf("%-10s+-%-8s+-%6s+-%-9s+-%8s+-%9s+-%s\n",
		"----------", "--------", "------", "---------", "--------", "---------", "--------------------")
	for _, r := range rows {
		conv := "-"
		if r.ConvergedAt >= 0 {
			conv = fmt.Sprintf("%d", r.ConvergedAt)
		}
		fmt.Printf("%-10s  %-8s  %6d  %-9s  %8d  %9s  %s\n",
			shortID(r.RunID), r.Learner, r.Seed, r.Status, r.Episodes, conv, r.StartedAt)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	RunID        string    `json:"run_id"`
	Learner      string    `json:"learner"`
	Seed         uint64    `json:"seed"`
	Status       string    `json:"status"`
	Episodes     int       `json:"episodes"`
	ConvergedAt  int       `json:"converged_at"`
	StartedAt    string    `json:"started_at"`
	RecentReturn []float64 `json:"recent_return,omitempty"`
	Front        string    `json:"front,omitempty"`
	FrontEpisode int       `json:"front_episode,omitempty"`
	FrontSize    int       `json:"front_size,omitempty"`
	Hypervolume  *float64  `json:"hypervolume,omitempty"`
	Spread       *float64  `json:"spread,omitempty"`
}

func runDetailMode(store *runlog.Store, runID string, tail int, jsonOut bool) error {
	run, err := store.GetRun(runID)
	if err != nil {
		return err
	}
	eps, err := store.ListEpisodes(runID)
	if err != nil {
		return err
	}

	out := detailOutput{
		RunID:        run.RunID,
		Learner:      run.Learner,
		Seed:         run.Seed,
		Status:       run.Status,
		Episodes:     len(eps),
		ConvergedAt:  run.ConvergedAt,
		StartedAt:    run.StartedAt.Format("2006-01-02T15:04:05Z"),
		RecentReturn: recentReturn(eps, tail),
	}

	if est, err := store.LatestEstimate(runID); err == nil {
		out.Front, out.FrontEpisode = est.Front, est.Episode
		if set, err := pareto.ParseDim(est.Front, run.Objectives); err == nil {
			out.FrontSize = set.Len()
			hv, spread := frontStats(set)
			out.Hypervolume, out.Spread = hv, &spread
		}
	}

	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("Run:           %s\n", out.RunID)
	fmt.Printf("Learner:       %s (seed %d)\n", out.Learner, out.Seed)
	fmt.Printf("Status:        %s\n", out.Status)
	fmt.Printf("Started:       %s\n", out.StartedAt)
	fmt.Printf("Episodes:      %d\n", out.Episodes)
	if out.ConvergedAt >= 0 {
		fmt.Printf("Converged:     episode %d\n", out.ConvergedAt)
	} else {
		fmt.Printf("Converged:     no\n")
	}
	if out.RecentReturn != nil {
		fmt.Printf("Recent return: %v (last %d episodes)\n", out.RecentReturn, min(tail, len(eps)))
	}

	if out.Front != "" {
		fmt.Printf("\nSolution set (episode %d, %d points):\n  %s\n", out.FrontEpisode, out.FrontSize, out.Front)
		if out.Hypervolume != nil {
			fmt.Printf("  hypervolume: %.4f\n", *out.Hypervolume)
		}
		if out.Spread != nil {
			fmt.Printf("  spread:      %.4f\n", *out.Spread)
		}
	}
	return nil
}

// #endregion detail-mode

// #region metrics

func recentReturn(eps []runlog.EpisodeRecord, tail int) []float64 {
	if len(eps) == 0 || tail <= 0 {
		return nil
	}
	window := eps[max(0, len(eps)-tail):]
	mean := make([]float64, len(window[0].Return))
	for _, e := range window {
		for i := range mean {
			if i < len(e.Return) {
				mean[i] += e.Return[i]
			}
		}
	}
	for i := range mean {
		mean[i] /= float64(len(window))
	}
	return mean
}

// frontStats measures a front's hypervolume against a point one unit below
// its own minimum in every objective.
func frontStats(set *pareto.Set) (*float64, float64) {
	spread := quality.Spread(set)
	if set.Len() == 0 {
		return nil, spread
	}
	ref := make([]float64, set.Dim())
	for i := range ref {
		ref[i] = math.Inf(1)
	}
	for _, v := range set.Vectors() {
		for i := range ref {
			ref[i] = math.Min(ref[i], v.At(i)-1)
		}
	}
	hv, err := quality.Hypervolume(set, vector.New(ref...))
	if err != nil {
		return nil, spread
	}
	return &hv, spread
}

// #endregion metrics

// #region output

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
