package report

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danielpatrickdp/paretoq/internal/driver"
	"github.com/danielpatrickdp/paretoq/internal/pareto"
)

func mustParse(t *testing.T, text string) *pareto.Set {
	t.Helper()
	s, err := pareto.Parse(text)
	if err != nil {
		t.Fatalf("Parse(%q): %v", text, err)
	}
	return s
}

func TestRenderFrontAndReturns(t *testing.T) {
	scatter, err := FrontScatter("corridor", map[string]*pareto.Set{
		"estimate":  mustParse(t, "(0,3),(3,0)"),
		"reference": mustParse(t, "(0,3),(3,0),(0.5,2.5)"),
	}, 0, 1)
	if err != nil {
		t.Fatalf("FrontScatter: %v", err)
	}
	line := ReturnLine("returns", []driver.EpisodeResult{
		{Episode: 0, Return: []float64{-4, 1}},
		{Episode: 1, Return: []float64{-2, 1}},
	})

	var buf bytes.Buffer
	if err := Render(&buf, scatter, line); err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := buf.String()
	for _, want := range []string{"<html", "echarts", "estimate", "reference", "objective 1"} {
		if !strings.Contains(html, want) {
			t.Errorf("report is missing %q", want)
		}
	}
}

func TestFrontScatterRejectsMissingAxis(t *testing.T) {
	_, err := FrontScatter("1d", map[string]*pareto.Set{"x": mustParse(t, "(1),(2)")}, 0, 1)
	if !errors.Is(err, pareto.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.html")
	line := ReturnLine("returns", []driver.EpisodeResult{{Episode: 0, Return: []float64{-1}}})
	if err := WriteFile(path, line); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		t.Fatalf("report not written: %v", err)
	}
}
