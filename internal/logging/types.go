package logging

import "time"

// #region config
// Config selects the process-wide logger.
type Config struct {
	Level   string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format  string `yaml:"format" validate:"omitempty,oneof=text json"`
	Service string `yaml:"service"`
}

// DefaultConfig is info-level text output.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "text", Service: "paretoq"}
}

// #endregion config

// #region episode-entry
// EpisodeEntry is a single row in the episodes table.
type EpisodeEntry struct {
	RunID     string
	Episode   int
	Steps     int
	Return    []float64
	Terminal  bool
	Converged bool
	CreatedAt time.Time
}

// #endregion episode-entry
