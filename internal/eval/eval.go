package eval

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/paretoq/internal/pareto"
	"github.com/danielpatrickdp/paretoq/internal/quality"
	"github.com/danielpatrickdp/paretoq/internal/vector"
)

// #region eval-harness
// EvalHarness decides whether an estimated front has converged on a
// reference front.
type EvalHarness struct {
	config EvalConfig
}

// NewEvalHarness creates an eval harness with the given configuration.
func NewEvalHarness(config EvalConfig) *EvalHarness {
	return &EvalHarness{config: config}
}

// Run compares estimate against reference. A missing or empty reference
// never passes.
func (h *EvalHarness) Run(estimate, reference *pareto.Set) EvalResult {
	if reference == nil || reference.Len() == 0 {
		return EvalResult{Reason: "no reference front"}
	}
	if estimate == nil || estimate.Len() == 0 {
		return EvalResult{Reason: "empty estimate"}
	}
	if estimate.Dim() != reference.Dim() {
		return EvalResult{Reason: fmt.Sprintf("estimate has %d objectives, reference %d", estimate.Dim(), reference.Dim())}
	}

	var metrics []EvalMetric
	passed := true
	var failReasons []string

	// 1. Hypervolume ratio against a shared reference point.
	ref := lowerCorner(h.config.Margin, estimate, reference)
	hvEst, _ := quality.Hypervolume(estimate, ref)
	hvRef, _ := quality.Hypervolume(reference, ref)
	ratio := 0.0
	if hvRef > 0 {
		ratio = hvEst / hvRef
	}
	ratioPass := ratio >= h.config.MinHypervolumeRatio
	metrics = append(metrics, EvalMetric{Name: "hypervolume_ratio", Value: ratio, Pass: ratioPass})
	if !ratioPass {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf("hypervolume ratio %.4f below %.4f", ratio, h.config.MinHypervolumeRatio))
	}

	// 2. Every reference point has an estimate within tolerance.
	matched := 0
	for _, want := range reference.Vectors() {
		if nearest(want, estimate) <= h.config.Tolerance {
			matched++
		}
	}
	matchPass := matched == reference.Len()
	metrics = append(metrics, EvalMetric{
		Name:  "matched_fraction",
		Value: float64(matched) / float64(reference.Len()),
		Pass:  matchPass,
	})
	if !matchPass {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf("%d of %d reference points unmatched", reference.Len()-matched, reference.Len()))
	}

	// 3. No estimate point claims more than the reference allows.
	spurious := 0
	for _, got := range estimate.Vectors() {
		if nearest(got, reference) > h.config.Tolerance && !reference.IsDominated(got) {
			spurious++
		}
	}
	spuriousPass := spurious == 0
	metrics = append(metrics, EvalMetric{Name: "spurious_points", Value: float64(spurious), Pass: spuriousPass})
	if !spuriousPass {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf("%d estimate points beyond the reference front", spurious))
	}

	// 4. Shape indicators: informational only.
	metrics = append(metrics,
		EvalMetric{Name: "spacing", Value: quality.Spacing(estimate), Pass: true},
		EvalMetric{Name: "spread", Value: quality.Spread(estimate), Pass: true},
		EvalMetric{Name: "size", Value: float64(estimate.Len()), Pass: true},
	)

	reason := "all checks passed"
	if !passed {
		reason = fmt.Sprintf("eval failed: %s", failReasons[0])
		if len(failReasons) > 1 {
			reason = fmt.Sprintf("eval failed: %d checks: %s", len(failReasons), failReasons[0])
		}
	}

	return EvalResult{
		Passed:  passed,
		Metrics: metrics,
		Reason:  reason,
	}
}

// #endregion eval-harness

// #region helpers
// lowerCorner is the componentwise minimum over both sets, less margin.
func lowerCorner(margin float64, sets ...*pareto.Set) vector.Vector {
	dim := sets[0].Dim()
	lo := make([]float64, dim)
	for i := range lo {
		lo[i] = math.Inf(1)
	}
	for _, s := range sets {
		for _, v := range s.Vectors() {
			for i := range lo {
				lo[i] = math.Min(lo[i], v.At(i))
			}
		}
	}
	for i := range lo {
		lo[i] -= margin
	}
	return vector.New(lo...)
}

// nearest returns the smallest L-inf distance from v to a member of s.
func nearest(v vector.Vector, s *pareto.Set) float64 {
	best := math.Inf(1)
	for _, m := range s.Vectors() {
		d, _ := v.Sub(m)
		dist := math.Max(d.Max(), -d.Min())
		best = math.Min(best, dist)
	}
	return best
}

// #endregion helpers
