package runlog

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielpatrickdp/paretoq/internal/driver"
)

// #region helpers
func setupStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func beginRun(t *testing.T, s *Store, seed uint64) RunRecord {
	t.Helper()
	rec, err := s.BeginRun(RunRecord{Learner: "hull", Seed: seed, Objectives: 2, ConfigJSON: `{"episodes":3}`})
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	return rec
}

// #endregion helpers

// #region run-tests
func TestBeginAndFinishRun(t *testing.T) {
	s := setupStore(t)
	rec := beginRun(t, s, 7)
	if rec.RunID == "" || rec.Status != StatusRunning || rec.ConvergedAt != -1 {
		t.Fatalf("unexpected run record %+v", rec)
	}

	if err := s.FinishRun(rec.RunID, StatusFinished, 3, 2); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}
	got, err := s.GetRun(rec.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Status != StatusFinished || got.Episodes != 3 || got.ConvergedAt != 2 {
		t.Errorf("run not closed: %+v", got)
	}
	if got.Seed != 7 || got.Learner != "hull" || got.ConfigJSON != `{"episodes":3}` {
		t.Errorf("run fields lost: %+v", got)
	}
	if got.FinishedAt.IsZero() {
		t.Error("finished_at not set")
	}
}

func TestLargeSeedSurvives(t *testing.T) {
	s := setupStore(t)
	rec := beginRun(t, s, ^uint64(0))
	got, err := s.GetRun(rec.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Seed != ^uint64(0) {
		t.Errorf("seed = %d", got.Seed)
	}
}

func TestUnknownRun(t *testing.T) {
	s := setupStore(t)
	if _, err := s.GetRun("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetRun: expected ErrNotFound, got %v", err)
	}
	if err := s.FinishRun("nope", StatusFailed, 0, -1); !errors.Is(err, ErrNotFound) {
		t.Errorf("FinishRun: expected ErrNotFound, got %v", err)
	}
	if _, err := s.LatestEstimate("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LatestEstimate: expected ErrNotFound, got %v", err)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	s := setupStore(t)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if _, err := s.BeginRun(RunRecord{Learner: "scalar", Seed: uint64(i), StartedAt: base.Add(time.Duration(i) * time.Hour)}); err != nil {
			t.Fatalf("BeginRun: %v", err)
		}
	}
	runs, err := s.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].Seed != 2 || runs[1].Seed != 1 {
		t.Fatalf("unexpected order: %+v", runs)
	}
}

// #endregion run-tests

// #region episode-tests
func TestHookRecordsEpisodesAndEstimates(t *testing.T) {
	s := setupStore(t)
	rec := beginRun(t, s, 1)
	hook := s.Hook(rec.RunID)

	results := []driver.EpisodeResult{
		{Episode: 0, Steps: 5, Return: []float64{-5, 1}, Terminal: true},
		{Episode: 1, Steps: 3, Return: []float64{-3, 1}, Terminal: true, Queried: true, SolutionSet: "(-2.71,0.9)"},
		{Episode: 2, Steps: 2, Return: []float64{-2, 1}, Terminal: true, Queried: true, Converged: true, SolutionSet: "(-1.9,1)"},
	}
	for _, r := range results {
		if err := hook(r); err != nil {
			t.Fatalf("hook: %v", err)
		}
	}

	eps, err := s.ListEpisodes(rec.RunID)
	if err != nil {
		t.Fatalf("ListEpisodes: %v", err)
	}
	if len(eps) != 3 {
		t.Fatalf("expected 3 episodes, got %d", len(eps))
	}
	if eps[1].Steps != 3 || eps[1].Return[0] != -3 || !eps[1].Terminal || eps[1].Converged {
		t.Errorf("episode 1 = %+v", eps[1])
	}
	if !eps[2].Converged {
		t.Error("converged flag lost")
	}

	est, err := s.LatestEstimate(rec.RunID)
	if err != nil {
		t.Fatalf("LatestEstimate: %v", err)
	}
	if est.Episode != 2 || est.Front != "(-1.9,1)" {
		t.Errorf("latest estimate = %+v", est)
	}
}

func TestEpisodesNeedAKnownRun(t *testing.T) {
	s := setupStore(t)
	err := s.RecordEpisode("missing", driver.EpisodeResult{Return: []float64{0}})
	if err == nil {
		t.Fatal("expected foreign key failure for an unknown run")
	}
}

// #endregion episode-tests
