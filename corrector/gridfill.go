// Package corrector - Lattice fill of missing detections over the image extent.
package corrector

import (
	"github.com/solargeofix/go-gridfix/detections"
)

// GridFillConfig holds parameters for the grid-fill pass.
type GridFillConfig struct {
	// Spacing is the lattice pitch in pixels. Zero or negative means estimate
	// it from the median nearest-neighbor distance of the existing detections.
	Spacing float64 `json:"grid_spacing"`

	// DefaultEdge is the box edge given to synthetic detections when no
	// existing detection is available to borrow a size from.
	DefaultEdge float64 `json:"default_edge"`
}

// DefaultGridFillConfig returns the standard grid-fill parameters.
func DefaultGridFillConfig() GridFillConfig {
	return GridFillConfig{
		Spacing:     0,
		DefaultEdge: DefaultSyntheticEdge,
	}
}

// fillGrid enumerates a candidate lattice across the image extent and adds a
// synthetic detection at every candidate with no existing detection within
// half a spacing. Existing detections are never removed or moved.
//
// Arguments:
//   - dets: The existing detections.
//   - shape: The image extent.
//   - config: Lattice parameters.
//
// Returns:
//   - []detections.Detection: Input detections followed by the added ones.
//   - int: The number of detections added.
//   - float64: The spacing actually used.
func fillGrid(dets []detections.Detection, shape ImageShape, config GridFillConfig) ([]detections.Detection, int, float64) {
	pts, err := ToPoints(dets)
	if err != nil {
		pts = nil
	}

	spacing := config.Spacing
	if spacing <= 0 {
		spacing = estimateMedianSpacing(pts)
	}
	if spacing <= 0 {
		// No spacing supplied and none derivable: nothing sensible to fill.
		return dets, 0, 0
	}

	var ix *pointIndex
	if len(pts) > 0 {
		ix = newPointIndex(pts)
	}

	out := append([]detections.Detection(nil), dets...)
	added := 0
	for y := 0.0; y < float64(shape.Height); y += spacing {
		for x := 0.0; x < float64(shape.Width); x += spacing {
			width, height := config.DefaultEdge, config.DefaultEdge
			if ix != nil {
				if len(ix.within(x, y, spacing/2, -1)) > 0 {
					continue
				}
				if j, _ := ix.nearest(x, y, -1); j >= 0 {
					width, height = dets[j].Width, dets[j].Height
				}
			}

			out = append(out, detections.Detection{
				XCenter:    x,
				YCenter:    y,
				Width:      width,
				Height:     height,
				Confidence: detections.DefaultConfidence,
				CategoryID: detections.DefaultCategoryID,
			})
			added++
		}
	}
	return out, added, spacing
}
