package runlog

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a run id is unknown.
var ErrNotFound = errors.New("run not found")

// Run statuses.
const (
	StatusRunning  = "running"
	StatusFinished = "finished"
	StatusFailed   = "failed"
)

// #region run-record
// RunRecord is one training run.
type RunRecord struct {
	RunID       string    `json:"run_id"`
	Learner     string    `json:"learner"`
	Seed        uint64    `json:"seed"`
	Objectives  int       `json:"objectives"`
	ConfigJSON  string    `json:"config,omitempty"`
	Status      string    `json:"status"`
	Episodes    int       `json:"episodes"`
	ConvergedAt int       `json:"converged_at"` // -1 if never
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at,omitzero"`
}

// #endregion run-record

// #region episode-record
// EpisodeRecord is one row of the episodes table.
type EpisodeRecord struct {
	RunID     string    `json:"run_id"`
	Episode   int       `json:"episode"`
	Steps     int       `json:"steps"`
	Return    []float64 `json:"return"`
	Terminal  bool      `json:"terminal"`
	Converged bool      `json:"converged"`
	CreatedAt time.Time `json:"created_at"`
}

// #endregion episode-record

// #region estimate-record
// EstimateRecord is a solution set reported at a query point, in the
// "(a,b),(c,d)" text form.
type EstimateRecord struct {
	RunID     string    `json:"run_id"`
	Episode   int       `json:"episode"`
	Front     string    `json:"front"`
	CreatedAt time.Time `json:"created_at"`
}

// #endregion estimate-record
