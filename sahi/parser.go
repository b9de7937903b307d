// Package sahi - Parsing of sliced-inference result JSON into detections.
package sahi

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/solargeofix/go-gridfix/detections"
)

// annotation mirrors one entry of the detector output. Pointer fields
// distinguish "absent" from zero values.
type annotation struct {
	BBox         []float64 `json:"bbox"`
	Score        *float64  `json:"score"`
	CategoryID   *int      `json:"category_id"`
	CategoryName string    `json:"category_name"`
}

// document is the COCO-style wrapper form of the detector output.
type document struct {
	Annotations []json.RawMessage `json:"annotations"`
}

// ParseResults decodes detector output JSON into detections.
//
// Two layouts are accepted: a root array of annotations, or a COCO-style
// object with an "annotations" key. Malformed entries (missing fields, bad
// bbox shape, score outside [0, 1]) are skipped rather than failing the
// whole parse.
//
// Arguments:
//   - data: Raw JSON bytes from the detector.
//
// Returns:
//   - []detections.Detection: The well-formed detections.
//   - int: The number of entries skipped as malformed.
//   - error: An error when the JSON itself is undecodable or the wrapper
//     object has no annotations list.
func ParseResults(data []byte) ([]detections.Detection, int, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		var doc document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, 0, errors.Wrap(err, "invalid result JSON")
		}
		if doc.Annotations == nil {
			return nil, 0, errors.New("result JSON missing 'annotations' field")
		}
		entries = doc.Annotations
	}

	dets := make([]detections.Detection, 0, len(entries))
	skipped := 0
	for _, raw := range entries {
		var ann annotation
		if err := json.Unmarshal(raw, &ann); err != nil {
			skipped++
			continue
		}
		if ann.Score == nil || ann.CategoryID == nil || len(ann.BBox) != 4 {
			skipped++
			continue
		}
		if *ann.Score < 0.0 || *ann.Score > 1.0 {
			skipped++
			continue
		}

		det := detections.FromBBox(
			ann.BBox[0], ann.BBox[1], ann.BBox[2], ann.BBox[3],
			*ann.Score, *ann.CategoryID,
		)
		det.CategoryName = ann.CategoryName
		dets = append(dets, det)
	}
	return dets, skipped, nil
}

// ParseResultsFile reads and decodes a detector result file.
//
// Arguments:
//   - path: Path to the JSON result file.
//
// Returns:
//   - []detections.Detection: The well-formed detections.
//   - int: The number of entries skipped as malformed.
//   - error: An error if the file cannot be read or decoded.
func ParseResultsFile(path string) ([]detections.Detection, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "reading result file %s", path)
	}
	return ParseResults(data)
}
