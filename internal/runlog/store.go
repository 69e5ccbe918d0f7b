// Package runlog records training runs, their episodes and the solution sets
// reported along the way in SQLite. Nothing in the learning path reads it.
package runlog

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/paretoq/internal/driver"
	"github.com/danielpatrickdp/paretoq/internal/logging"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id        TEXT PRIMARY KEY,
	learner       TEXT NOT NULL,
	seed          INTEGER NOT NULL,
	objectives    INTEGER NOT NULL,
	config_json   TEXT,
	status        TEXT NOT NULL,
	episodes      INTEGER NOT NULL DEFAULT 0,
	converged_at  INTEGER NOT NULL DEFAULT -1,
	started_at    TEXT NOT NULL,
	finished_at   TEXT
);

CREATE TABLE IF NOT EXISTS episodes (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT NOT NULL,
	episode       INTEGER NOT NULL,
	steps         INTEGER NOT NULL,
	return_json   TEXT NOT NULL,
	terminal      INTEGER NOT NULL,
	converged     INTEGER NOT NULL,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE TABLE IF NOT EXISTS estimates (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT NOT NULL,
	episode       INTEGER NOT NULL,
	front         TEXT NOT NULL,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
`

// #endregion schema

// #region store-struct
// Store manages the run log in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Pragmas are per connection; one connection keeps foreign keys on.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// #endregion constructor

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for logging.LogEpisode.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #region begin-run
// BeginRun inserts rec as a running run, filling RunID and StartedAt when
// they are empty.
func (s *Store) BeginRun(rec RunRecord) (RunRecord, error) {
	if rec.RunID == "" {
		rec.RunID = uuid.New().String()
	}
	if rec.StartedAt.IsZero() {
		rec.StartedAt = time.Now().UTC()
	}
	rec.Status = StatusRunning
	rec.ConvergedAt = -1
	rec.Episodes = 0

	_, err := s.db.Exec(
		`INSERT INTO runs (run_id, learner, seed, objectives, config_json, status, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Learner, int64(rec.Seed), rec.Objectives, nullIfEmpty(rec.ConfigJSON),
		rec.Status, rec.StartedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return RunRecord{}, fmt.Errorf("insert run: %w", err)
	}
	return rec, nil
}

// #endregion begin-run

// #region finish-run
// FinishRun closes a run with its final counts.
func (s *Store) FinishRun(runID, status string, episodes, convergedAt int) error {
	res, err := s.db.Exec(
		`UPDATE runs SET status = ?, episodes = ?, converged_at = ?, finished_at = ? WHERE run_id = ?`,
		status, episodes, convergedAt, time.Now().UTC().Format(time.RFC3339Nano), runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish run %s: %w", runID, ErrNotFound)
	}
	return nil
}

// #endregion finish-run

// #region record
// RecordEpisode logs a finished episode and, when the agent was queried, the
// solution set it reported.
func (s *Store) RecordEpisode(runID string, res driver.EpisodeResult) error {
	err := logging.LogEpisode(s.db, logging.EpisodeEntry{
		RunID:     runID,
		Episode:   res.Episode,
		Steps:     res.Steps,
		Return:    res.Return,
		Terminal:  res.Terminal,
		Converged: res.Converged,
	})
	if err != nil {
		return err
	}
	if res.Queried && res.SolutionSet != "" {
		return s.SaveEstimate(EstimateRecord{RunID: runID, Episode: res.Episode, Front: res.SolutionSet})
	}
	return nil
}

// Hook returns a driver hook that records every episode of runID.
func (s *Store) Hook(runID string) driver.Hook {
	return func(res driver.EpisodeResult) error {
		return s.RecordEpisode(runID, res)
	}
}

// SaveEstimate stores a reported solution set.
func (s *Store) SaveEstimate(rec EstimateRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO estimates (run_id, episode, front, created_at) VALUES (?, ?, ?, ?)`,
		rec.RunID, rec.Episode, rec.Front, rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save estimate: %w", err)
	}
	return nil
}

// #endregion record

// #region queries
const runColumns = `run_id, learner, seed, objectives, config_json, status, episodes, converged_at, started_at, finished_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (RunRecord, error) {
	var (
		rec           RunRecord
		seed          int64
		cfg, finished sql.NullString
		startedStr    string
	)
	if err := row.Scan(&rec.RunID, &rec.Learner, &seed, &rec.Objectives, &cfg, &rec.Status,
		&rec.Episodes, &rec.ConvergedAt, &startedStr, &finished); err != nil {
		return RunRecord{}, err
	}
	rec.Seed = uint64(seed)
	if cfg.Valid {
		rec.ConfigJSON = cfg.String
	}
	rec.StartedAt, _ = time.Parse(time.RFC3339Nano, startedStr)
	if finished.Valid {
		rec.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished.String)
	}
	return rec, nil
}

// GetRun retrieves a run by id.
func (s *Store) GetRun(runID string) (RunRecord, error) {
	rec, err := scanRun(s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID))
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("get run %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("get run %s: %w", runID, err)
	}
	return rec, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]RunRecord, error) {
	rows, err := s.db.Query(`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListEpisodes returns every episode of a run in order.
func (s *Store) ListEpisodes(runID string) ([]EpisodeRecord, error) {
	rows, err := s.db.Query(
		`SELECT run_id, episode, steps, return_json, terminal, converged, created_at
		 FROM episodes WHERE run_id = ? ORDER BY episode`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list episodes: %w", err)
	}
	defer rows.Close()

	var out []EpisodeRecord
	for rows.Next() {
		var (
			rec                 EpisodeRecord
			ret, created        string
			terminal, converged int
		)
		if err := rows.Scan(&rec.RunID, &rec.Episode, &rec.Steps, &ret, &terminal, &converged, &created); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if err := json.Unmarshal([]byte(ret), &rec.Return); err != nil {
			return nil, fmt.Errorf("unmarshal return: %w", err)
		}
		rec.Terminal, rec.Converged = terminal != 0, converged != 0
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// LatestEstimate returns the last solution set stored for a run.
func (s *Store) LatestEstimate(runID string) (EstimateRecord, error) {
	var (
		rec     EstimateRecord
		created string
	)
	err := s.db.QueryRow(
		`SELECT run_id, episode, front, created_at FROM estimates
		 WHERE run_id = ? ORDER BY episode DESC, id DESC LIMIT 1`, runID,
	).Scan(&rec.RunID, &rec.Episode, &rec.Front, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return EstimateRecord{}, fmt.Errorf("latest estimate %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return EstimateRecord{}, fmt.Errorf("latest estimate %s: %w", runID, err)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return rec, nil
}

// #endregion queries

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
