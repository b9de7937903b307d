// Package corrector - Robust polynomial regression over detection centers.
package corrector

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/solargeofix/go-gridfix/detections"
)

// RegressionConfig holds parameters for the RANSAC polynomial fit.
type RegressionConfig struct {
	// Degree is the polynomial order of the fitted curve.
	Degree int `json:"degree"`

	// ResidualThreshold is the maximum |y - f(x)| deviation, in pixels, for a
	// point to count as an inlier.
	ResidualThreshold float64 `json:"residual_threshold"`

	// MaxIterations caps the number of random-sample trials.
	MaxIterations int `json:"max_iterations"`

	// Seed drives the random subset sampling. A fixed seed makes the fit
	// fully reproducible.
	Seed int64 `json:"seed"`
}

// DefaultRegressionConfig returns the standard RANSAC fit parameters.
func DefaultRegressionConfig() RegressionConfig {
	return RegressionConfig{
		Degree:            2,
		ResidualThreshold: 10.0,
		MaxIterations:     100,
		Seed:              42,
	}
}

// polynomial holds fitted coefficients, constant term first.
type polynomial []float64

// eval evaluates the polynomial at x using Horner's scheme.
func (p polynomial) eval(x float64) float64 {
	y := 0.0
	for i := len(p) - 1; i >= 0; i-- {
		y = y*x + p[i]
	}
	return y
}

// fitPolynomial solves the least-squares Vandermonde system for the points
// via QR factorization.
func fitPolynomial(pts []Point, degree int) (polynomial, error) {
	rows, cols := len(pts), degree+1
	if rows < cols {
		return nil, errors.Errorf("need at least %d points for degree %d, got %d", cols, degree, rows)
	}

	a := mat.NewDense(rows, cols, nil)
	b := mat.NewVecDense(rows, nil)
	for i, p := range pts {
		v := 1.0
		for j := 0; j < cols; j++ {
			a.Set(i, j, v)
			v *= p.X
		}
		b.SetVec(i, p.Y)
	}

	var qr mat.QR
	qr.Factorize(a)
	var c mat.VecDense
	if err := qr.SolveVecTo(&c, false, b); err != nil {
		return nil, errors.Wrap(err, "polynomial solve")
	}

	coeffs := make(polynomial, cols)
	for j := range coeffs {
		coeffs[j] = c.AtVec(j)
	}
	return coeffs, nil
}

// fitRANSAC fits a polynomial by repeated minimal-subset sampling, keeping
// the model with the largest inlier consensus and refitting it on all of its
// inliers.
//
// Arguments:
//   - pts: The points to fit, regressing y on x.
//   - config: Fit parameters, including the random seed.
//
// Returns:
//   - polynomial: The consensus model.
//   - []int: Indices of the inlier points.
//   - error: An error when no trial produced a usable model.
func fitRANSAC(pts []Point, config RegressionConfig) (polynomial, []int, error) {
	sampleSize := config.Degree + 1
	if len(pts) < sampleSize+1 {
		return nil, nil, errors.Errorf("insufficient points for RANSAC: %d", len(pts))
	}

	rng := rand.New(rand.NewSource(config.Seed))
	sample := make([]Point, sampleSize)

	var bestModel polynomial
	var bestInliers []int
	for iter := 0; iter < config.MaxIterations; iter++ {
		for i, idx := range rng.Perm(len(pts))[:sampleSize] {
			sample[i] = pts[idx]
		}

		model, err := fitPolynomial(sample, config.Degree)
		if err != nil {
			// Degenerate sample (e.g. duplicate x), try another.
			continue
		}

		var inliers []int
		for i, p := range pts {
			if math.Abs(model.eval(p.X)-p.Y) <= config.ResidualThreshold {
				inliers = append(inliers, i)
			}
		}
		if len(inliers) > len(bestInliers) {
			bestModel, bestInliers = model, inliers
		}
	}

	if len(bestInliers) < sampleSize {
		return nil, nil, errors.New("RANSAC found no consensus model")
	}

	// Refit on the full inlier set for a tighter final model.
	inlierPts := make([]Point, len(bestInliers))
	for i, idx := range bestInliers {
		inlierPts[i] = pts[idx]
	}
	if refit, err := fitPolynomial(inlierPts, config.Degree); err == nil {
		bestModel = refit
	}
	return bestModel, bestInliers, nil
}

// filterByRegression drops detections whose centers are RANSAC outliers.
//
// Arguments:
//   - dets: The detections to filter.
//   - config: Fit parameters.
//
// Returns:
//   - []detections.Detection: The inlier detections, unchanged.
//   - bool: True when there were too few points to fit and the input was
//     passed through untouched.
func filterByRegression(dets []detections.Detection, config RegressionConfig) ([]detections.Detection, bool) {
	if len(dets) < config.Degree+2 {
		return dets, true
	}

	pts, err := ToPoints(dets)
	if err != nil {
		return dets, true
	}

	_, inliers, err := fitRANSAC(pts, config)
	if err != nil {
		return dets, true
	}

	kept := make([]detections.Detection, 0, len(inliers))
	for _, idx := range inliers {
		kept = append(kept, dets[idx])
	}
	return kept, false
}
