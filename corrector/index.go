// Package corrector - Spatial index over detection centers.
package corrector

import (
	"math"
	"sort"

	flatbush "github.com/bmharper/flatbush-go"
	"gonum.org/v1/gonum/stat"
)

// boxSearcher is the slice of the flatbush API the index needs.
type boxSearcher interface {
	SearchFast(minX, minY, maxX, maxY float64, results []int) []int
}

// pointIndex answers radius and nearest-neighbor queries over point centers.
// It is built once per correction call and is read-only afterwards.
type pointIndex struct {
	fb     boxSearcher
	pts    []Point
	extent float64 // diagonal of the point bounding box
	buf    []int
}

// newPointIndex builds a static index over the points.
func newPointIndex(pts []Point) *pointIndex {
	fb := flatbush.NewFlatbush64()
	fb.Reserve(len(pts))
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		fb.Add(p.X, p.Y, p.X, p.Y)
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	fb.Finish()

	extent := math.Hypot(maxX-minX, maxY-minY)
	return &pointIndex{fb: fb, pts: pts, extent: extent}
}

// within returns indices of points within radius of (x, y), excluding the
// given index (pass -1 to exclude nothing).
func (ix *pointIndex) within(x, y, radius float64, exclude int) []int {
	ix.buf = ix.fb.SearchFast(x-radius, y-radius, x+radius, y+radius, ix.buf)

	var out []int
	r2 := radius * radius
	for _, i := range ix.buf {
		if i == exclude {
			continue
		}
		dx := ix.pts[i].X - x
		dy := ix.pts[i].Y - y
		if dx*dx+dy*dy <= r2 {
			out = append(out, i)
		}
	}
	return out
}

// nearest returns the index of the point nearest to (x, y) and its distance,
// excluding the given index. The search window doubles until a hit is found
// or the window covers the whole point extent. Returns -1 when the index
// holds no other point.
func (ix *pointIndex) nearest(x, y float64, exclude int) (int, float64) {
	radius := ix.extent / math.Sqrt(float64(len(ix.pts))+1)
	if radius <= 0 {
		radius = 1
	}

	for {
		best, bestD2 := -1, math.Inf(1)
		ix.buf = ix.fb.SearchFast(x-radius, y-radius, x+radius, y+radius, ix.buf)
		for _, i := range ix.buf {
			if i == exclude {
				continue
			}
			dx := ix.pts[i].X - x
			dy := ix.pts[i].Y - y
			d2 := dx*dx + dy*dy
			if d2 < bestD2 {
				best, bestD2 = i, d2
			}
		}
		// A hit inside the window radius cannot be beaten by anything outside it.
		if best >= 0 && bestD2 <= radius*radius {
			return best, math.Sqrt(bestD2)
		}
		if radius > ix.extent {
			if best >= 0 {
				return best, math.Sqrt(bestD2)
			}
			return -1, 0
		}
		radius *= 2
	}
}

// estimateMedianSpacing computes the median nearest-neighbor distance over
// the points: the characteristic pitch of the grid. Returns 0 when fewer
// than two points are available.
func estimateMedianSpacing(pts []Point) float64 {
	if len(pts) < 2 {
		return 0
	}

	ix := newPointIndex(pts)
	dists := make([]float64, 0, len(pts))
	for i, p := range pts {
		if j, d := ix.nearest(p.X, p.Y, i); j >= 0 {
			dists = append(dists, d)
		}
	}
	if len(dists) == 0 {
		return 0
	}

	sort.Float64s(dists)
	return stat.Quantile(0.5, stat.Empirical, dists, nil)
}
