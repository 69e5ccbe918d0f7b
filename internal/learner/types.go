package learner

import (
	"errors"

	"github.com/danielpatrickdp/paretoq/internal/mdp"
	"github.com/danielpatrickdp/paretoq/internal/pareto"
	"github.com/danielpatrickdp/paretoq/internal/update"
	"github.com/danielpatrickdp/paretoq/internal/vector"
)

// ErrInvalidParameter is returned by New for unusable configurations.
var ErrInvalidParameter = errors.New("invalid learner parameter")

// #region kind
// Kind selects a learner variant.
type Kind string

const (
	// KindScalar learns one vector per entry under fixed linear weights.
	KindScalar Kind = "scalar"
	// KindRotating keeps one vector table per objective and trains one of
	// them per episode, round robin.
	KindRotating Kind = "rotating"
	// KindHull stores a convex coverage set per entry.
	KindHull Kind = "hull"
)

// Kinds lists every variant in a stable order.
func Kinds() []Kind { return []Kind{KindScalar, KindRotating, KindHull} }

// #endregion kind

// #region config
// Config selects and parameterises a learner.
type Config struct {
	Kind   Kind                `yaml:"kind" validate:"oneof=scalar rotating hull"`
	Update update.UpdateConfig `yaml:"update"`
	// Weights scalarise entries for the scalar variant. Empty means uniform.
	Weights []float64 `yaml:"weights" validate:"dive,gte=0"`
	// Dominant and Flatten are the rotating variant's weights for the active
	// objective and for every other objective.
	Dominant float64 `yaml:"dominant" validate:"gt=0"`
	Flatten  float64 `yaml:"flatten" validate:"gte=0"`
	// InitialValue fills every missing vector entry.
	InitialValue float64 `yaml:"initial_value"`
}

// DefaultConfig returns a hull learner with the default update parameters.
func DefaultConfig() Config {
	return Config{
		Kind:     KindHull,
		Update:   update.DefaultUpdateConfig(),
		Dominant: 1,
		Flatten:  0.01,
	}
}

// #endregion config

// #region hooks
// BackupHook receives the outcome of every backup a learner applies.
type BackupHook func(kind Kind, d update.Decision, m update.Metrics)

// Option configures a learner.
type Option func(*base)

// WithBackupHook installs h.
func WithBackupHook(h BackupHook) Option {
	return func(b *base) { b.hook = h }
}

// #endregion hooks

// #region learner
// Learner is the capability every variant exposes. Implementations are not
// safe for concurrent use.
type Learner interface {
	Kind() Kind
	Objectives() int
	// BeginEpisode resets episode-scoped bookkeeping. Collected resources
	// travel in the mdp.State snapshot, so no variant keeps any today.
	BeginEpisode()
	// SelectAction draws uniformly over the action range.
	SelectAction(s mdp.State) mdp.Action
	// Observe backs up tr.State0/tr.Action. Terminal transitions bootstrap
	// from zero.
	Observe(tr mdp.Transition) error
	// EndEpisode applies the final zero-future backup for (s, a) and closes
	// the episode.
	EndEpisode(s mdp.State, a mdp.Action, reward vector.Vector) error
	// Estimate returns an independent copy of the current front for ref.
	Estimate(ref mdp.State) (*pareto.Set, error)
	// Entries returns the number of stored table entries.
	Entries() int
}

// #endregion learner
