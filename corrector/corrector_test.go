package corrector

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solargeofix/go-gridfix/detections"
)

var testShape = ImageShape{Height: 200, Width: 200}

func TestCorrectEmptyInput(t *testing.T) {
	for _, mode := range []Mode{ModeChainSearch, ModeRegressionGrid} {
		config := DefaultConfig()
		config.Mode = mode

		out, stats, err := Correct(nil, testShape, config)
		require.NoError(t, err)
		assert.Empty(t, out)
		assert.Equal(t, Stats{}, stats)
	}
}

func TestCorrectInvalidDetectionAborts(t *testing.T) {
	dets := []detections.Detection{
		rowDet(0, 0),
		{XCenter: math.NaN(), YCenter: 0, Width: 10, Height: 10},
	}

	_, _, err := Correct(dets, testShape, DefaultConfig())
	require.Error(t, err)

	var invalid *detections.InvalidDetectionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 1, invalid.Index)
}

func TestCorrectUnknownMode(t *testing.T) {
	config := DefaultConfig()
	config.Mode = "spline"

	_, _, err := Correct([]detections.Detection{rowDet(0, 0)}, testShape, config)
	assert.Error(t, err)
}

func TestCorrectChainSearchCountsBalance(t *testing.T) {
	dets := []detections.Detection{
		rowDet(0, 100), rowDet(10, 100), rowDet(20, 100), rowDet(40, 100), rowDet(50, 100),
		rowDet(180, 20), // noise
	}

	out, stats, err := Correct(dets, testShape, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, 6, stats.OriginalCount)
	assert.Equal(t, 1, stats.RemovedCount)
	assert.Equal(t, 1, stats.AddedCount)
	assert.Equal(t, len(out), stats.CorrectedCount)

	// removed + kept originals == original count.
	keptOriginals := stats.CorrectedCount - stats.AddedCount
	assert.Equal(t, stats.OriginalCount, stats.RemovedCount+keptOriginals)
}

func TestCorrectSingleDetectionChainSearch(t *testing.T) {
	out, stats, err := Correct([]detections.Detection{rowDet(5, 5)}, testShape, DefaultConfig())
	require.NoError(t, err)

	assert.Empty(t, out)
	assert.Equal(t, 1, stats.OriginalCount)
	assert.Equal(t, 1, stats.RemovedCount)
	assert.Equal(t, 0, stats.CorrectedCount)
	assert.True(t, stats.InsufficientPoints)
}

func TestCorrectRegressionGridPipeline(t *testing.T) {
	// A straight row with one gross outlier: regression drops it, grid fill
	// back-fills the lattice across the extent.
	dets := []detections.Detection{
		rowDet(0, 100), rowDet(50, 100), rowDet(100, 100), rowDet(150, 100),
		{XCenter: 100, YCenter: 190, Width: 10, Height: 10, Confidence: 0.9},
	}

	config := DefaultConfig()
	config.Mode = ModeRegressionGrid
	config.GridFill.Spacing = 50

	out, stats, err := Correct(dets, testShape, config)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.RemovedCount)
	assert.Greater(t, stats.AddedCount, 0)
	assert.Equal(t, len(out), stats.CorrectedCount)
	assert.Equal(t, 50.0, stats.MedianSpacing)
	assert.False(t, stats.InsufficientPoints)
}

func TestCorrectRegressionGridInsufficientPoints(t *testing.T) {
	dets := []detections.Detection{rowDet(0, 0), rowDet(10, 10)}

	config := DefaultConfig()
	config.Mode = ModeRegressionGrid
	config.UseGridFill = false

	out, stats, err := Correct(dets, testShape, config)
	require.NoError(t, err)

	assert.True(t, stats.InsufficientPoints)
	assert.Equal(t, 0, stats.RemovedCount)
	assert.Equal(t, dets, out)
}

func TestCorrectDeterministicWithFixedSeed(t *testing.T) {
	dets := []detections.Detection{
		rowDet(0, 100), rowDet(25, 100), rowDet(50, 100), rowDet(75, 100),
		rowDet(100, 100), rowDet(60, 180),
	}

	config := DefaultConfig()
	config.Mode = ModeRegressionGrid
	config.GridFill.Spacing = 25

	outA, statsA, err := Correct(dets, testShape, config)
	require.NoError(t, err)
	outB, statsB, err := Correct(dets, testShape, config)
	require.NoError(t, err)

	bytesA, err := json.Marshal(outA)
	require.NoError(t, err)
	bytesB, err := json.Marshal(outB)
	require.NoError(t, err)

	assert.Equal(t, bytesA, bytesB)
	assert.Equal(t, statsA, statsB)
}

func TestCorrectModeDefaultsToChainSearch(t *testing.T) {
	dets := []detections.Detection{
		rowDet(0, 0), rowDet(10, 0), rowDet(20, 0),
	}

	config := DefaultConfig()
	config.Mode = ""

	_, stats, err := Correct(dets, testShape, config)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ChainsFound)
}

func TestCorrectNeverMutatesInput(t *testing.T) {
	dets := []detections.Detection{
		rowDet(0, 100), rowDet(10, 100), rowDet(20, 100), rowDet(40, 100), rowDet(50, 100),
	}
	snapshot := append([]detections.Detection(nil), dets...)

	_, _, err := Correct(dets, testShape, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, snapshot, dets)

	config := DefaultConfig()
	config.Mode = ModeRegressionGrid
	_, _, err = Correct(dets, testShape, config)
	require.NoError(t, err)
	assert.Equal(t, snapshot, dets)
}
