// Package telemetry exports training counters to Prometheus. A Metrics value
// plugs into the agent, the convex-hull pruner and the driver as an observer.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielpatrickdp/paretoq/internal/driver"
	"github.com/danielpatrickdp/paretoq/internal/update"
)

const namespace = "paretoq"

// Metrics owns a registry and every collector registered on it.
type Metrics struct {
	reg *prometheus.Registry

	// episodes counts finished episodes.
	// Labels: learner (scalar, rotating, hull)
	episodes *prometheus.CounterVec

	// steps counts lifecycle steps, the closing End included.
	// Labels: learner
	steps *prometheus.CounterVec

	// episodeLength is the step count distribution per episode.
	// Labels: learner
	episodeLength *prometheus.HistogramVec

	// backups counts table backups.
	// Labels: learner, decision (commit, no_op)
	backups *prometheus.CounterVec

	// backupDelta is the L2 distance a vector entry moved per backup.
	// Labels: learner (scalar, rotating)
	backupDelta *prometheus.HistogramVec

	backupFront prometheus.Histogram

	prunes    prometheus.Counter
	lpSolves  prometheus.Counter
	discarded prometheus.Counter
	hullSize  prometheus.Histogram

	// evaluations counts convergence queries.
	// Labels: result (converged, pending)
	evaluations *prometheus.CounterVec
	frontSize   prometheus.Gauge
}

// New registers the collectors on a fresh registry. withRuntime adds the Go
// and process collectors.
func New(withRuntime bool) *Metrics {
	reg := prometheus.NewRegistry()
	if withRuntime {
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		episodes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "agent",
			Name:      "episodes_total",
			Help:      "Finished episodes",
		}, []string{"learner"}),
		steps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "agent",
			Name:      "steps_total",
			Help:      "Lifecycle steps processed",
		}, []string{"learner"}),
		episodeLength: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "agent",
			Name:      "episode_steps",
			Help:      "Steps per episode",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"learner"}),
		backups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "learner",
			Name:      "backups_total",
			Help:      "Table backups by decision",
		}, []string{"learner", "decision"}),
		backupDelta: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "learner",
			Name:      "backup_delta_norm",
			Help:      "L2 distance moved by a vector entry in one backup",
			Buckets:   prometheus.ExponentialBuckets(1e-4, 4, 10),
		}, []string{"learner"}),
		backupFront: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "learner",
			Name:      "backup_front_size",
			Help:      "Members of a hull entry after a backup",
			Buckets:   []float64{1, 2, 3, 4, 6, 8, 12, 16, 32, 64},
		}),
		prunes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ccs",
			Name:      "prunes_total",
			Help:      "Convex hull prune calls",
		}),
		lpSolves: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ccs",
			Name:      "lp_solves_total",
			Help:      "Linear programs solved while pruning",
		}),
		discarded: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ccs",
			Name:      "discarded_total",
			Help:      "Vectors removed by convex hull pruning",
		}),
		hullSize: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ccs",
			Name:      "hull_size",
			Help:      "Size of the convex coverage set after pruning",
			Buckets:   []float64{0, 1, 2, 3, 4, 6, 8, 12, 16, 32, 64},
		}),
		evaluations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "driver",
			Name:      "evaluations_total",
			Help:      "Convergence queries by outcome",
		}, []string{"result"}),
		frontSize: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "driver",
			Name:      "front_size",
			Help:      "Points in the last reported solution set",
		}),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// ObserveStep implements the agent observer.
func (m *Metrics) ObserveStep(kind string) {
	m.steps.WithLabelValues(kind).Inc()
}

// ObserveEpisode implements the agent observer.
func (m *Metrics) ObserveEpisode(kind string, steps int) {
	m.episodes.WithLabelValues(kind).Inc()
	m.episodeLength.WithLabelValues(kind).Observe(float64(steps))
}

// ObserveBackup implements the agent observer. Hull backups report the size
// of the new front, vector backups the distance the entry moved.
func (m *Metrics) ObserveBackup(kind string, d update.Decision, um update.Metrics) {
	m.backups.WithLabelValues(kind, d.Action).Inc()
	if um.FrontSize > 0 {
		m.backupFront.Observe(float64(um.FrontSize))
		return
	}
	m.backupDelta.WithLabelValues(kind).Observe(um.DeltaNorm)
}

// ObservePrune implements the pruner observer.
func (m *Metrics) ObservePrune(in, out, solves int) {
	m.prunes.Inc()
	m.lpSolves.Add(float64(solves))
	m.discarded.Add(float64(in - out))
	m.hullSize.Observe(float64(out))
}

// Hook returns a driver hook that records convergence queries.
func (m *Metrics) Hook() driver.Hook {
	return func(res driver.EpisodeResult) error {
		if !res.Queried {
			return nil
		}
		result := "pending"
		if res.Converged {
			result = "converged"
		}
		m.evaluations.WithLabelValues(result).Inc()
		m.frontSize.Set(float64(frontPoints(res.SolutionSet)))
		return nil
	}
}

// frontPoints counts the "(..)" groups in a solution set's text form.
func frontPoints(s string) int {
	n := 0
	for _, r := range s {
		if r == '(' {
			n++
		}
	}
	return n
}
