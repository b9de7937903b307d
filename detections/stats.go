// Package detections - Statistical summaries of detection sets.
package detections

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// ConfidenceStats provides statistical analysis of detection confidence scores.
type ConfidenceStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"std_dev"`
}

// Stats summarizes a detection set by confidence bucket and category.
type Stats struct {
	// Total is the number of detections.
	Total int `json:"total"`

	// HighConfidence counts detections at or above the high threshold.
	HighConfidence int `json:"high_confidence"`

	// MediumConfidence counts detections between the medium and high thresholds.
	MediumConfidence int `json:"medium_confidence"`

	// LowConfidence counts detections below the medium threshold.
	LowConfidence int `json:"low_confidence"`

	// Confidence holds the score distribution.
	Confidence ConfidenceStats `json:"confidence"`

	// Categories maps category id to detection count.
	Categories map[int]int `json:"categories"`
}

// StatsConfig holds the bucket thresholds for ComputeStats.
type StatsConfig struct {
	// HighConfThreshold is the lower bound of the high-confidence bucket.
	HighConfThreshold float64 `json:"high_conf_threshold"`

	// MediumConfThreshold is the lower bound of the medium-confidence bucket.
	MediumConfThreshold float64 `json:"medium_conf_threshold"`
}

// DefaultStatsConfig returns the standard confidence bucket thresholds.
func DefaultStatsConfig() StatsConfig {
	return StatsConfig{
		HighConfThreshold:   0.7,
		MediumConfThreshold: 0.4,
	}
}

// ComputeStats summarizes the detections.
//
// Arguments:
//   - dets: The detections to summarize.
//   - config: Bucket thresholds.
//
// Returns:
//   - Stats: Bucket counts, confidence distribution, and per-category counts.
//     For an empty input all counts are zero and Categories is empty.
func ComputeStats(dets []Detection, config StatsConfig) Stats {
	stats := Stats{
		Total:      len(dets),
		Categories: make(map[int]int),
	}
	if len(dets) == 0 {
		return stats
	}

	confidences := make([]float64, len(dets))
	for i, d := range dets {
		confidences[i] = d.Confidence
		stats.Categories[d.CategoryID]++

		switch {
		case d.Confidence >= config.HighConfThreshold:
			stats.HighConfidence++
		case d.Confidence >= config.MediumConfThreshold:
			stats.MediumConfidence++
		default:
			stats.LowConfidence++
		}
	}

	sort.Float64s(confidences)
	stats.Confidence = ConfidenceStats{
		Mean:   stat.Mean(confidences, nil),
		Median: stat.Quantile(0.5, stat.Empirical, confidences, nil),
		Min:    confidences[0],
		Max:    confidences[len(confidences)-1],
	}
	if len(confidences) > 1 {
		stats.Confidence.StdDev = stat.StdDev(confidences, nil)
	}
	return stats
}
