package logging

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// #region log-episode
// LogEpisode writes one finished episode to the episodes table.
func LogEpisode(db *sql.DB, entry EpisodeEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	ret, err := json.Marshal(entry.Return)
	if err != nil {
		return fmt.Errorf("marshal return: %w", err)
	}

	_, err = db.Exec(
		`INSERT INTO episodes (run_id, episode, steps, return_json, terminal, converged, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID,
		entry.Episode,
		entry.Steps,
		string(ret),
		boolToInt(entry.Terminal),
		boolToInt(entry.Converged),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log episode: %w", err)
	}
	return nil
}

// #endregion log-episode

// #region helpers
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// #endregion helpers
