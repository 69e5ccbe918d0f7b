package update

import (
	"github.com/danielpatrickdp/paretoq/internal/pareto"
	"github.com/danielpatrickdp/paretoq/internal/vector"
)

// #region decision
// Decision records what a backup did to its entry.
type Decision struct {
	Action string // "commit" | "no_op"
	Reason string
}

// #endregion decision

// #region metrics
// Metrics captures telemetry from one backup.
type Metrics struct {
	DeltaNorm    float64 // L2 distance moved by a vector entry
	FrontSize    int     // members in a set entry after the backup
	Bootstrapped int     // next-state candidates considered
	UpdateTimeMs int64
}

// #endregion metrics

// #region update-config
// UpdateConfig holds the learning parameters shared by every backup.
type UpdateConfig struct {
	LearningRate float64 `yaml:"learning_rate" validate:"gt=0,lte=1"` // α, scalar tables only
	Discount     float64 `yaml:"discount" validate:"gte=0,lte=1"`     // γ
}

// DefaultUpdateConfig returns α=0.1, γ=0.9.
func DefaultUpdateConfig() UpdateConfig {
	return UpdateConfig{
		LearningRate: 0.1,
		Discount:     0.9,
	}
}

// #endregion update-config

// #region update-result
// ScalarResult bundles everything returned by Scalar.
type ScalarResult struct {
	Value    vector.Vector
	Decision Decision
	Metrics  Metrics
}

// HullResult bundles everything returned by Hull.
type HullResult struct {
	Value    *pareto.Set
	Decision Decision
	Metrics  Metrics
}

// #endregion update-result

// Pruner reduces a set to its convex coverage set.
type Pruner interface {
	Prune(*pareto.Set) (*pareto.Set, error)
}
