package orchestrator

import (
	"log/slog"

	"github.com/danielpatrickdp/paretoq/internal/driver"
	"github.com/danielpatrickdp/paretoq/internal/runlog"
	"github.com/danielpatrickdp/paretoq/internal/telemetry"
)

// #region options

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(o *Orchestrator) { o.log = l } }

// WithMetrics wires Prometheus collectors into every agent and pruner.
func WithMetrics(m *telemetry.Metrics) Option { return func(o *Orchestrator) { o.metrics = m } }

// WithStore records every seed as a run in the run log.
func WithStore(s *runlog.Store) Option { return func(o *Orchestrator) { o.store = s } }

// WithHooks adds driver hooks to every seed.
func WithHooks(h ...driver.Hook) Option {
	return func(o *Orchestrator) { o.hooks = append(o.hooks, h...) }
}

// #endregion

// #region outcome

// SeedOutcome is what one seed produced.
type SeedOutcome struct {
	Seed    uint64
	RunID   string // empty without a store
	Results []driver.EpisodeResult
	Summary driver.Summary
}

// #endregion
