// Package report renders solution sets and learning curves as standalone
// HTML pages with go-echarts.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/danielpatrickdp/paretoq/internal/driver"
	"github.com/danielpatrickdp/paretoq/internal/pareto"
)

const theme = "shine"

// FrontScatter plots objectives x and y of every named set, one series per
// name in sorted order.
func FrontScatter(title string, sets map[string]*pareto.Set, x, y int) (*charts.Scatter, error) {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(opts.Initialization{Theme: theme}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "objective " + strconv.Itoa(x)}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "objective " + strconv.Itoa(y)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	names := make([]string, 0, len(sets))
	for name := range sets {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		set := sets[name]
		if x < 0 || y < 0 || x >= set.Dim() || y >= set.Dim() {
			return nil, fmt.Errorf("front %q: %w: axes (%d,%d) on %d objectives",
				name, pareto.ErrDimensionMismatch, x, y, set.Dim())
		}
		items := make([]opts.ScatterData, 0, set.Len())
		for _, v := range set.Vectors() {
			items = append(items, opts.ScatterData{
				Value:      []any{v.At(x), v.At(y)},
				Name:       v.String(),
				SymbolSize: 12,
			})
		}
		scatter.AddSeries(name, items)
	}
	return scatter, nil
}

// ReturnLine plots each objective's undiscounted episode return.
func ReturnLine(title string, results []driver.EpisodeResult) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(opts.Initialization{Theme: theme}),
		charts.WithXAxisOpts(opts.XAxis{Name: "episode"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	episodes := make([]string, len(results))
	dim := 0
	for i, r := range results {
		episodes[i] = strconv.Itoa(r.Episode)
		dim = max(dim, len(r.Return))
	}
	line.SetXAxis(episodes)

	for k := 0; k < dim; k++ {
		items := make([]opts.LineData, len(results))
		for i, r := range results {
			if k < len(r.Return) {
				items[i] = opts.LineData{Value: r.Return[k]}
			}
		}
		line.AddSeries("objective "+strconv.Itoa(k), items)
	}
	return line
}

// Render writes every chart to one HTML page.
func Render(w io.Writer, cs ...components.Charter) error {
	page := components.NewPage()
	page.PageTitle = "paretoq"
	page.AddCharts(cs...)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// WriteFile renders the charts to path, creating parent directories.
func WriteFile(path string, cs ...components.Charter) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := Render(f, cs...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
