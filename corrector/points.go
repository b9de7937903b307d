// Package corrector - Geometric correction of gridded pile detections.
package corrector

import (
	"github.com/pkg/errors"

	"github.com/solargeofix/go-gridfix/detections"
)

// ErrEmptyInput is returned by the format adapter when given zero detections.
// Callers treat it as "nothing to correct" and propagate an empty result.
var ErrEmptyInput = errors.New("no detections to convert")

// DefaultSyntheticEdge is the box edge, in pixels, given to a synthetic
// detection when no neighbor is available to borrow a size from.
const DefaultSyntheticEdge = 50.0

// Point is one detection center with a back-reference to its source record,
// so converting back never loses size, confidence, or category.
type Point struct {
	X, Y float64

	// Source is the index into the originating detection slice, or -1 for a
	// synthetic point with no origin.
	Source int
}

// ToPoints converts detections to point records.
//
// Arguments:
//   - dets: The detections to convert.
//
// Returns:
//   - []Point: One point per detection, in input order, each carrying its
//     source index.
//   - error: ErrEmptyInput when dets is empty.
func ToPoints(dets []detections.Detection) ([]Point, error) {
	if len(dets) == 0 {
		return nil, ErrEmptyInput
	}
	pts := make([]Point, len(dets))
	for i, d := range dets {
		pts[i] = Point{X: d.XCenter, Y: d.YCenter, Source: i}
	}
	return pts, nil
}

// FromPoints converts point records back to detections.
//
// Points with a valid source index reuse that original's size, confidence,
// and category with the point's coordinates; sourceless points become
// synthetic detections with default attributes.
//
// Arguments:
//   - pts: The point records to convert.
//   - originals: The detection slice the points were derived from.
//
// Returns:
//   - []detections.Detection: One detection per point, in point order.
func FromPoints(pts []Point, originals []detections.Detection) []detections.Detection {
	out := make([]detections.Detection, 0, len(pts))
	for _, p := range pts {
		if p.Source >= 0 && p.Source < len(originals) {
			d := originals[p.Source]
			d.XCenter = p.X
			d.YCenter = p.Y
			out = append(out, d)
			continue
		}
		out = append(out, detections.Detection{
			XCenter:    p.X,
			YCenter:    p.Y,
			Width:      DefaultSyntheticEdge,
			Height:     DefaultSyntheticEdge,
			Confidence: detections.DefaultConfidence,
			CategoryID: detections.DefaultCategoryID,
		})
	}
	return out
}
