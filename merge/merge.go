// Package merge - Duplicate suppression for detections from overlapping tiles.
//
// Sliced inference runs the detector over overlapping tiles, so a pile near
// a tile seam is reported more than once. This pass collapses each group of
// overlapping boxes to its highest-confidence member before geometric
// correction sees them.
package merge

import (
	"sort"

	flatbush "github.com/bmharper/flatbush-go"
	"github.com/chewxy/math32"

	"github.com/solargeofix/go-gridfix/detections"
)

// Config holds parameters for duplicate suppression.
type Config struct {
	// MinIoU is the overlap above which two boxes are considered the same
	// object.
	MinIoU float32 `json:"min_iou"`

	// ClassAware restricts suppression to boxes of the same category.
	ClassAware bool `json:"class_aware"`
}

// DefaultConfig returns the standard suppression parameters.
func DefaultConfig() Config {
	return Config{
		MinIoU:     0.5,
		ClassAware: true,
	}
}

// Detections collapses overlapping duplicates, keeping the
// highest-confidence box of each group.
//
// Arguments:
//   - dets: The detections to deduplicate.
//   - config: Suppression parameters.
//
// Returns:
//   - []detections.Detection: Surviving detections in descending confidence
//     order. Nil when dets is empty.
func Detections(dets []detections.Detection, config Config) []detections.Detection {
	n := len(dets)
	if n == 0 {
		return nil
	}

	// Index boxes so overlap candidates are found without an all-pairs scan.
	fb := flatbush.NewFlatbush64()
	fb.Reserve(n)
	for _, d := range dets {
		x, y, w, h := d.BBox()
		fb.Add(x, y, x+w, y+h)
	}
	fb.Finish()

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return dets[order[a]].Confidence > dets[order[b]].Confidence
	})

	consumed := make([]bool, n)
	kept := make([]detections.Detection, 0, n)
	var nearby []int
	for _, i := range order {
		if consumed[i] {
			continue
		}
		consumed[i] = true
		kept = append(kept, dets[i])

		x, y, w, h := dets[i].BBox()
		nearby = fb.SearchFast(x, y, x+w, y+h, nearby)
		for _, j := range nearby {
			if consumed[j] {
				continue
			}
			if config.ClassAware && dets[i].CategoryID != dets[j].CategoryID {
				continue
			}
			if boxIoU(dets[i], dets[j]) > config.MinIoU {
				consumed[j] = true
			}
		}
	}
	return kept
}

// boxIoU computes the Intersection over Union of two detection boxes.
func boxIoU(a, b detections.Detection) float32 {
	ax, ay, aw, ah := a.BBox()
	bx, by, bw, bh := b.BBox()

	ix1 := math32.Max(float32(ax), float32(bx))
	iy1 := math32.Max(float32(ay), float32(by))
	ix2 := math32.Min(float32(ax+aw), float32(bx+bw))
	iy2 := math32.Min(float32(ay+ah), float32(by+bh))

	iw := math32.Max(0, ix2-ix1)
	ih := math32.Max(0, iy2-iy1)
	intersection := iw * ih

	union := float32(aw*ah) + float32(bw*bh) - intersection
	if union <= 0 {
		return 0
	}
	return intersection / union
}
