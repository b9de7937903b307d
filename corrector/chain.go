// Package corrector - Chain search: recovery of collinear, evenly spaced
// runs of detections.
package corrector

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/solargeofix/go-gridfix/detections"
)

// ChainSearchConfig holds parameters for the chain-search pass.
type ChainSearchConfig struct {
	// SearchRadiusFactor scales the median spacing to the neighbor-graph
	// query radius.
	SearchRadiusFactor float64 `json:"search_radius_factor"`

	// DirectionThreshold is the minimum |cos| between an edge and one of the
	// two principal axes for the edge to enter the neighbor graph.
	DirectionThreshold float64 `json:"direction_threshold"`

	// AngleThresholdDegrees is the maximum turn, in degrees, between a new
	// segment and the chain's running direction.
	AngleThresholdDegrees float64 `json:"angle_threshold_degrees"`

	// MinChainLength is the minimum number of detections for a chain to be
	// kept. Shorter chains are treated as noise.
	MinChainLength int `json:"min_chain_length"`

	// MaxGapRatio is the largest gap-to-spacing ratio still bridged by a
	// single interpolated point; larger gaps get proportionally more.
	MaxGapRatio float64 `json:"max_gap_ratio"`
}

// DefaultChainSearchConfig returns the standard chain-search parameters.
func DefaultChainSearchConfig() ChainSearchConfig {
	return ChainSearchConfig{
		SearchRadiusFactor:    2.0,
		DirectionThreshold:    0.5,
		AngleThresholdDegrees: 20.0,
		MinChainLength:        3,
		MaxGapRatio:           2.5,
	}
}

// chainResult is the internal outcome of one chain-search pass.
type chainResult struct {
	kept    []detections.Detection
	added   int
	removed int
	chains  int
	spacing float64
}

// searchChains finds collinear evenly spaced runs of detections, drops
// everything outside a retained run, and interpolates missing interior
// points within each run.
//
// Arguments:
//   - dets: The detections to correct.
//   - config: Chain-search parameters.
//
// Returns:
//   - chainResult: Kept detections (originals plus interpolations) and
//     per-pass diagnostics.
func searchChains(dets []detections.Detection, config ChainSearchConfig) chainResult {
	n := len(dets)
	if n == 0 {
		return chainResult{kept: []detections.Detection{}}
	}

	pts, err := ToPoints(dets)
	if err != nil {
		return chainResult{kept: []detections.Detection{}}
	}

	spacing := estimateMedianSpacing(pts)
	if spacing <= 0 {
		// Too few points to estimate a pitch; nothing can form a chain.
		return chainResult{kept: []detections.Detection{}, removed: n}
	}

	adj := buildNeighborGraph(pts, spacing*config.SearchRadiusFactor, config.DirectionThreshold)

	// The visited set is shared across all walks: the first walk to reach a
	// point claims it for its chain.
	visited := make([]bool, n)
	var chains [][]int
	for i := 0; i < n; i++ {
		if visited[i] {
			continue
		}
		chains = append(chains, growChain(i, pts, adj, visited, config.AngleThresholdDegrees))
	}

	result := chainResult{spacing: spacing}
	for _, chain := range chains {
		if len(chain) < config.MinChainLength {
			result.removed += len(chain)
			continue
		}
		result.chains++

		completed, added := completeChain(chain, dets, pts, config.MaxGapRatio)
		result.kept = append(result.kept, completed...)
		result.added += added
	}
	if result.kept == nil {
		result.kept = []detections.Detection{}
	}
	return result
}

// buildNeighborGraph links every point to the points within radius whose
// connecting segment is predominantly aligned with one of the two principal
// grid axes. The graph is undirected: alignment is symmetric and the radius
// query is run from both endpoints.
func buildNeighborGraph(pts []Point, radius, directionThreshold float64) [][]int {
	ix := newPointIndex(pts)
	adj := make([][]int, len(pts))
	for i, p := range pts {
		for _, j := range ix.within(p.X, p.Y, radius, i) {
			if axisConsistent(p, pts[j], directionThreshold) {
				adj[i] = append(adj[i], j)
			}
		}
	}
	return adj
}

// axisConsistent reports whether the segment from a to b is predominantly
// horizontal or vertical: |cos| to either axis strictly above the threshold.
func axisConsistent(a, b Point, threshold float64) bool {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return false
	}
	return math.Abs(dx)/length > threshold || math.Abs(dy)/length > threshold
}

// growChain claims the seed and walks depth-first along graph edges in both
// directions, producing one maximal chain as an ordered index sequence.
func growChain(seed int, pts []Point, adj [][]int, visited []bool, maxAngle float64) []int {
	visited[seed] = true
	chain := extendChain([]int{seed}, pts, adj, visited, maxAngle)

	// Walk the other way from the seed as well.
	for l, r := 0, len(chain)-1; l < r; l, r = l+1, r-1 {
		chain[l], chain[r] = chain[r], chain[l]
	}
	return extendChain(chain, pts, adj, visited, maxAngle)
}

// extendChain repeatedly appends the nearest unvisited neighbor of the chain
// tail whose segment stays within maxAngle degrees of the running direction
// (the vector from the tail's predecessor to the tail). Stops when no
// neighbor qualifies.
func extendChain(chain []int, pts []Point, adj [][]int, visited []bool, maxAngle float64) []int {
	for {
		tail := chain[len(chain)-1]

		hasDirection := len(chain) >= 2
		var prev Point
		if hasDirection {
			prev = pts[chain[len(chain)-2]]
		}

		best, bestDist := -1, math.Inf(1)
		for _, cand := range adj[tail] {
			if visited[cand] {
				continue
			}
			if hasDirection && turnAngle(prev, pts[tail], pts[cand]) > maxAngle {
				continue
			}
			d := math.Hypot(pts[cand].X-pts[tail].X, pts[cand].Y-pts[tail].Y)
			if d < bestDist {
				best, bestDist = cand, d
			}
		}
		if best < 0 {
			return chain
		}
		visited[best] = true
		chain = append(chain, best)
	}
}

// turnAngle returns the angle, in degrees, between the segment a->b and the
// segment b->c.
func turnAngle(a, b, c Point) float64 {
	ux, uy := b.X-a.X, b.Y-a.Y
	vx, vy := c.X-b.X, c.Y-b.Y
	ul, vl := math.Hypot(ux, uy), math.Hypot(vx, vy)
	if ul == 0 || vl == 0 {
		return 0
	}
	cos := (ux*vx + uy*vy) / (ul * vl)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}

// completeChain walks consecutive pairs along the chain and interpolates
// evenly spaced points into gaps that span an integer multiple of the
// chain's own spacing. Interpolated detections average the size of the two
// endpoints and carry the synthetic confidence and category defaults.
func completeChain(chain []int, dets []detections.Detection, pts []Point, maxGapRatio float64) ([]detections.Detection, int) {
	spacing := chainSpacing(chain, pts)

	out := make([]detections.Detection, 0, len(chain))
	added := 0
	for i, idx := range chain {
		out = append(out, dets[pts[idx].Source])
		if i == len(chain)-1 || spacing <= 0 {
			continue
		}

		a, b := pts[idx], pts[chain[i+1]]
		gap := math.Hypot(b.X-a.X, b.Y-a.Y)
		ratio := gap / spacing

		// A gap close to k*spacing (k >= 2) implies k-1 missed slots. Gaps up
		// to maxGapRatio are bridged by a single point.
		slots := int(math.Round(ratio))
		if slots < 2 {
			continue
		}
		missing := slots - 1
		if ratio <= maxGapRatio {
			missing = 1
		}

		da, db := dets[a.Source], dets[b.Source]
		for m := 1; m <= missing; m++ {
			t := float64(m) / float64(missing+1)
			out = append(out, detections.Detection{
				XCenter:    a.X + (b.X-a.X)*t,
				YCenter:    a.Y + (b.Y-a.Y)*t,
				Width:      (da.Width + db.Width) / 2,
				Height:     (da.Height + db.Height) / 2,
				Confidence: detections.DefaultConfidence,
				CategoryID: da.CategoryID,
			})
			added++
		}
	}
	return out, added
}

// chainSpacing returns the median distance between consecutive chain
// members, the chain's dominant pitch.
func chainSpacing(chain []int, pts []Point) float64 {
	if len(chain) < 2 {
		return 0
	}
	gaps := make([]float64, 0, len(chain)-1)
	for i := 0; i < len(chain)-1; i++ {
		a, b := pts[chain[i]], pts[chain[i+1]]
		gaps = append(gaps, math.Hypot(b.X-a.X, b.Y-a.Y))
	}
	sort.Float64s(gaps)
	return stat.Quantile(0.5, stat.Empirical, gaps, nil)
}
