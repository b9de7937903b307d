// Package detections - Detection records produced by the tiled pile detector.
package detections

import (
	"fmt"
	"math"
)

const (
	// DefaultConfidence is assigned to synthetic detections created by the
	// correction passes rather than reported by the detector.
	DefaultConfidence = 0.5
	// DefaultCategoryID is assigned to synthetic detections.
	DefaultCategoryID = 0
)

// Detection is a single detected pile in image pixel space.
//
// The detector reports boxes in COCO order (top-left x, top-left y, width,
// height); internally everything works on centers, so the center form is the
// canonical one and the box form is derived.
type Detection struct {
	// XCenter is the center x coordinate in pixels.
	XCenter float64 `json:"x_center"`

	// YCenter is the center y coordinate in pixels.
	YCenter float64 `json:"y_center"`

	// Width is the bounding box width in pixels. Always positive.
	Width float64 `json:"width"`

	// Height is the bounding box height in pixels. Always positive.
	Height float64 `json:"height"`

	// Confidence is the detector score in [0, 1]. Synthetic detections carry
	// DefaultConfidence.
	Confidence float64 `json:"confidence"`

	// CategoryID is the detector class id.
	CategoryID int `json:"category_id"`

	// CategoryName is the optional human-readable class name.
	CategoryName string `json:"category_name,omitempty"`
}

// FromBBox builds a Detection from a COCO-style box.
//
// Arguments:
//   - x, y: Top-left corner of the box.
//   - width, height: Box dimensions.
//   - confidence: Detector score.
//   - categoryID: Detector class id.
//
// Returns:
//   - Detection: The detection with its center computed from the box.
func FromBBox(x, y, width, height, confidence float64, categoryID int) Detection {
	return Detection{
		XCenter:    x + width/2.0,
		YCenter:    y + height/2.0,
		Width:      width,
		Height:     height,
		Confidence: confidence,
		CategoryID: categoryID,
	}
}

// BBox returns the COCO-style box (top-left x, top-left y, width, height).
func (d Detection) BBox() (x, y, width, height float64) {
	return d.XCenter - d.Width/2.0, d.YCenter - d.Height/2.0, d.Width, d.Height
}

// Area returns the bounding box area in square pixels.
func (d Detection) Area() float64 {
	return d.Width * d.Height
}

// InvalidDetectionError reports a detection with malformed geometry. It is
// fatal: a single non-finite coordinate would corrupt the spacing estimate
// for every other detection.
type InvalidDetectionError struct {
	// Index is the position of the offending detection in the input slice.
	Index int
	// Reason describes what is wrong with the record.
	Reason string
}

func (e *InvalidDetectionError) Error() string {
	return fmt.Sprintf("invalid detection at index %d: %s", e.Index, e.Reason)
}

// Validate checks every detection for finite coordinates and positive size.
//
// Arguments:
//   - dets: The detections to check.
//
// Returns:
//   - error: An *InvalidDetectionError naming the first offending index, or
//     nil when all records are well formed.
func Validate(dets []Detection) error {
	for i, d := range dets {
		switch {
		case !isFinite(d.XCenter) || !isFinite(d.YCenter):
			return &InvalidDetectionError{Index: i, Reason: "non-finite center"}
		case !isFinite(d.Width) || !isFinite(d.Height):
			return &InvalidDetectionError{Index: i, Reason: "non-finite size"}
		case d.Width <= 0 || d.Height <= 0:
			return &InvalidDetectionError{Index: i, Reason: "non-positive size"}
		}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
