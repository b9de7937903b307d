// Package corrector - Geometric correction of gridded pile detections.
//
// The detector sees a field of evenly spaced ground-mounted piles from
// above; its raw output carries both false positives (detections belonging
// to no row) and false negatives (missed piles implied by the row pattern).
// This package recovers the grid structure and produces a corrected
// detection set, via one of two strategies behind a single entry point:
//
//   - chain search: discover collinear, evenly spaced runs of detections,
//     drop everything outside a run, and interpolate points missing inside
//     one;
//   - regression + grid fill: drop RANSAC outliers against a robust
//     polynomial fit, then fill uncovered lattice positions across the
//     image extent.
//
// Every call is a pure function of (detections, image shape, config); input
// detections are never mutated.
package corrector

import (
	"github.com/pkg/errors"

	"github.com/solargeofix/go-gridfix/detections"
)

// Mode selects the correction strategy.
type Mode string

const (
	// ModeChainSearch discovers collinear evenly spaced runs, filters noise,
	// and interpolates interior gaps.
	ModeChainSearch Mode = "chain_search"
	// ModeRegressionGrid drops regression outliers and fills the lattice.
	ModeRegressionGrid Mode = "regression_grid"
)

// ImageShape is the pixel extent of the source image.
type ImageShape struct {
	Height int `json:"height"`
	Width  int `json:"width"`
}

// Config holds the full correction configuration.
type Config struct {
	// Mode selects the strategy. Empty defaults to chain search.
	Mode Mode `json:"mode"`

	// UseRegression enables the RANSAC outlier filter in regression-grid mode.
	UseRegression bool `json:"use_regression"`

	// UseGridFill enables the lattice fill in regression-grid mode.
	UseGridFill bool `json:"use_grid_fill"`

	// Regression configures the RANSAC polynomial fit.
	Regression RegressionConfig `json:"regression"`

	// GridFill configures the lattice fill.
	GridFill GridFillConfig `json:"grid_fill"`

	// ChainSearch configures the chain search.
	ChainSearch ChainSearchConfig `json:"chain_search"`
}

// DefaultConfig returns a chain-search configuration with standard
// parameters for every sub-pass.
func DefaultConfig() Config {
	return Config{
		Mode:          ModeChainSearch,
		UseRegression: true,
		UseGridFill:   true,
		Regression:    DefaultRegressionConfig(),
		GridFill:      DefaultGridFillConfig(),
		ChainSearch:   DefaultChainSearchConfig(),
	}
}

// Stats records what one correction call did. It is computed fresh on every
// call and never persisted by this package.
type Stats struct {
	// OriginalCount is the number of input detections.
	OriginalCount int `json:"original_count"`

	// CorrectedCount is the number of output detections.
	CorrectedCount int `json:"corrected_count"`

	// AddedCount is the number of synthetic detections created.
	AddedCount int `json:"added_count"`

	// RemovedCount is the number of input detections dropped as noise.
	RemovedCount int `json:"removed_count"`

	// ChainsFound is the number of retained chains (chain-search mode only).
	ChainsFound int `json:"chains_found,omitempty"`

	// MedianSpacing is the estimated grid pitch in pixels, when one was
	// derived during the call.
	MedianSpacing float64 `json:"median_spacing,omitempty"`

	// InsufficientPoints reports that a sub-step was skipped for lack of
	// data and the affected detections passed through unchanged.
	InsufficientPoints bool `json:"insufficient_points,omitempty"`
}

// Correct runs the selected correction strategy over the detections.
//
// Adverse-but-normal conditions (empty input, too few points, no chains)
// never fail: the call degrades to passing the input through and records
// the condition in the statistics. The only error cases are malformed
// geometry, reported as *detections.InvalidDetectionError naming the
// offending index, and an unknown mode.
//
// Arguments:
//   - dets: The raw detections. Never mutated.
//   - shape: The pixel extent of the source image.
//   - config: Strategy selection and per-pass parameters.
//
// Returns:
//   - []detections.Detection: The corrected detection set.
//   - Stats: Before/after counts and mode diagnostics.
//   - error: Fatal conditions only, as above.
func Correct(dets []detections.Detection, shape ImageShape, config Config) ([]detections.Detection, Stats, error) {
	stats := Stats{OriginalCount: len(dets)}
	if len(dets) == 0 {
		return []detections.Detection{}, stats, nil
	}
	if err := detections.Validate(dets); err != nil {
		return nil, stats, err
	}

	switch config.Mode {
	case ModeChainSearch, "":
		result := searchChains(dets, config.ChainSearch)
		stats.CorrectedCount = len(result.kept)
		stats.AddedCount = result.added
		stats.RemovedCount = result.removed
		stats.ChainsFound = result.chains
		stats.MedianSpacing = result.spacing
		stats.InsufficientPoints = result.spacing <= 0
		return result.kept, stats, nil

	case ModeRegressionGrid:
		out := dets
		if config.UseRegression {
			kept, skipped := filterByRegression(out, config.Regression)
			stats.InsufficientPoints = skipped
			stats.RemovedCount = len(out) - len(kept)
			out = kept
		}
		if config.UseGridFill {
			filled, added, spacing := fillGrid(out, shape, config.GridFill)
			stats.AddedCount = added
			stats.MedianSpacing = spacing
			out = filled
		}
		stats.CorrectedCount = len(out)
		return out, stats, nil

	default:
		return nil, stats, errors.Errorf("unknown correction mode %q", config.Mode)
	}
}
