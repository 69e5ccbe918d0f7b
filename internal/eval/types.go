package eval

// #region eval-config
// EvalConfig holds the convergence thresholds.
type EvalConfig struct {
	MinHypervolumeRatio float64 `yaml:"min_hypervolume_ratio" validate:"gt=0,lte=1"` // estimate/reference hypervolume
	Tolerance           float64 `yaml:"tolerance" validate:"gte=0"`                  // max L-inf distance for a reference point to count as matched
	Margin              float64 `yaml:"margin" validate:"gt=0"`                      // how far below the joint minimum the hypervolume reference sits
}

// DefaultEvalConfig returns strict-but-noisy-world defaults.
func DefaultEvalConfig() EvalConfig {
	return EvalConfig{
		MinHypervolumeRatio: 0.99,
		Tolerance:           0.05,
		Margin:              1.0,
	}
}

// #endregion eval-config

// #region eval-metric
// EvalMetric captures a single convergence check result.
type EvalMetric struct {
	Name  string
	Value float64
	Pass  bool
}

// #endregion eval-metric

// #region eval-result
// EvalResult is the outcome of comparing an estimate with a reference front.
type EvalResult struct {
	Passed  bool
	Metrics []EvalMetric
	Reason  string
}

// Metric returns the named metric.
func (r EvalResult) Metric(name string) (EvalMetric, bool) {
	for _, m := range r.Metrics {
		if m.Name == name {
			return m, true
		}
	}
	return EvalMetric{}, false
}

// #endregion eval-result
