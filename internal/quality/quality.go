// Package quality computes summary indicators over a finished front.
package quality

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/danielpatrickdp/paretoq/internal/pareto"
	"github.com/danielpatrickdp/paretoq/internal/vector"
)

// Hypervolume returns the volume dominated by set and bounded below by ref.
// Members that do not strictly exceed ref in every objective contribute
// nothing.
func Hypervolume(set *pareto.Set, ref vector.Vector) (float64, error) {
	if ref.Dim() != set.Dim() {
		return 0, fmt.Errorf("hypervolume: %w: reference %d, set %d", vector.ErrDimensionMismatch, ref.Dim(), set.Dim())
	}
	if set.Dim() == 0 {
		return 0, nil
	}
	r := ref.Values()
	var pts [][]float64
	for _, v := range set.Vectors() {
		p := v.Values()
		if above(p, r) {
			pts = append(pts, p)
		}
	}
	return slice(pts, r), nil
}

func above(p, r []float64) bool {
	for i := range p {
		if p[i] <= r[i] {
			return false
		}
	}
	return true
}

// slice sweeps the last objective from the top down, multiplying each slab's
// height by the hypervolume of the points above it in the remaining
// objectives.
func slice(pts [][]float64, ref []float64) float64 {
	d := len(ref)
	if len(pts) == 0 {
		return 0
	}
	if d == 1 {
		best := ref[0]
		for _, p := range pts {
			best = math.Max(best, p[0])
		}
		return best - ref[0]
	}
	sorted := make([][]float64, len(pts))
	copy(sorted, pts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i][d-1] > sorted[j][d-1] })

	var vol float64
	for i, p := range sorted {
		next := ref[d-1]
		if i+1 < len(sorted) {
			next = sorted[i+1][d-1]
		}
		height := p[d-1] - next
		if height <= 0 {
			continue
		}
		proj := make([][]float64, i+1)
		for j := range proj {
			proj[j] = sorted[j][:d-1]
		}
		vol += height * slice(proj, ref[:d-1])
	}
	return vol
}

// Spacing is Schott's metric: the sample standard deviation of each member's
// L1 distance to its nearest neighbour. Zero for fewer than two members.
func Spacing(set *pareto.Set) float64 {
	vs := set.Vectors()
	if len(vs) < 2 {
		return 0
	}
	nearest := make([]float64, len(vs))
	for i, a := range vs {
		nearest[i] = math.Inf(1)
		for j, b := range vs {
			if i == j {
				continue
			}
			nearest[i] = math.Min(nearest[i], floats.Distance(a.Values(), b.Values(), 1))
		}
	}
	return stat.StdDev(nearest, nil)
}

// Spread is the diagonal of the front's bounding box.
func Spread(set *pareto.Set) float64 {
	vs := set.Vectors()
	if len(vs) < 2 {
		return 0
	}
	lo, hi := vs[0].Values(), vs[0].Values()
	for _, v := range vs[1:] {
		for k := range lo {
			lo[k] = math.Min(lo[k], v.At(k))
			hi[k] = math.Max(hi[k], v.At(k))
		}
	}
	return floats.Distance(hi, lo, 2)
}
