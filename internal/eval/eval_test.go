package eval

import (
	"strings"
	"testing"

	"github.com/danielpatrickdp/paretoq/internal/pareto"
)

func mustSet(t *testing.T, text string) *pareto.Set {
	t.Helper()
	s, err := pareto.Parse(text)
	if err != nil {
		t.Fatalf("Parse(%q): %v", text, err)
	}
	return s
}

func TestEvalPassesOnExactFront(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	ref := mustSet(t, "(-4,2,0),(-6,2,3)")

	result := h.Run(ref.Copy(), ref)

	if !result.Passed {
		t.Fatalf("expected pass on identical fronts, got fail: %s", result.Reason)
	}
	m, ok := result.Metric("hypervolume_ratio")
	if !ok || m.Value < 0.999999 {
		t.Fatalf("expected ratio 1, got %+v", m)
	}
}

func TestEvalPassesWithinTolerance(t *testing.T) {
	config := DefaultEvalConfig()
	config.MinHypervolumeRatio = 0.95
	h := NewEvalHarness(config)

	result := h.Run(mustSet(t, "(-4.01,1.99),(-6,3)"), mustSet(t, "(-4,2),(-6,3)"))
	if !result.Passed {
		t.Fatalf("expected pass within tolerance, got %s", result.Reason)
	}
}

func TestEvalFailsOnMissingPoint(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())

	result := h.Run(mustSet(t, "(-4,2)"), mustSet(t, "(-4,2),(-6,3)"))

	if result.Passed {
		t.Fatal("expected fail when a reference point is unmatched")
	}
	m, _ := result.Metric("matched_fraction")
	if m.Value != 0.5 || m.Pass {
		t.Fatalf("unexpected matched_fraction %+v", m)
	}
	if !strings.HasPrefix(result.Reason, "eval failed: 2 checks") {
		t.Fatalf("unexpected reason %q", result.Reason)
	}
}

func TestEvalFailsWithoutReference(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	empty, _ := pareto.NewSet(2)

	if r := h.Run(mustSet(t, "(1,1)"), nil); r.Passed || r.Reason != "no reference front" {
		t.Fatalf("nil reference: %+v", r)
	}
	if r := h.Run(mustSet(t, "(1,1)"), empty); r.Passed {
		t.Fatalf("empty reference passed: %+v", r)
	}
	if r := h.Run(empty, mustSet(t, "(1,1)")); r.Passed {
		t.Fatalf("empty estimate passed: %+v", r)
	}
	if r := h.Run(mustSet(t, "(1,1,1)"), mustSet(t, "(1,1)")); r.Passed {
		t.Fatalf("dimension mismatch passed: %+v", r)
	}
}

func TestEvalFailsOnOptimisticPoint(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())

	result := h.Run(mustSet(t, "(-1.9,1),(-1,0)"), mustSet(t, "(-1.9,1)"))
	if result.Passed {
		t.Fatal("expected fail when the estimate has a point the reference does not")
	}
	m, _ := result.Metric("spurious_points")
	if m.Value != 1 {
		t.Fatalf("unexpected spurious_points %+v", m)
	}

	// Dominated leftovers are harmless.
	if r := h.Run(mustSet(t, "(-1.9,1),(-3,0.5)"), mustSet(t, "(-1.9,1)")); !r.Passed {
		t.Fatalf("dominated extra point failed: %s", r.Reason)
	}
}
