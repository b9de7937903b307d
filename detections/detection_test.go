package detections

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromBBox(t *testing.T) {
	det := FromBBox(10, 20, 50, 50, 0.8, 3)

	assert.Equal(t, 35.0, det.XCenter)
	assert.Equal(t, 45.0, det.YCenter)
	assert.Equal(t, 50.0, det.Width)
	assert.Equal(t, 50.0, det.Height)
	assert.Equal(t, 0.8, det.Confidence)
	assert.Equal(t, 3, det.CategoryID)

	x, y, w, h := det.BBox()
	assert.Equal(t, 10.0, x)
	assert.Equal(t, 20.0, y)
	assert.Equal(t, 50.0, w)
	assert.Equal(t, 50.0, h)
}

func TestValidate(t *testing.T) {
	valid := Detection{XCenter: 10, YCenter: 10, Width: 5, Height: 5, Confidence: 0.9}

	tests := []struct {
		name      string
		dets      []Detection
		wantIndex int
		wantError bool
	}{
		{
			name:      "all valid",
			dets:      []Detection{valid, valid},
			wantError: false,
		},
		{
			name:      "empty input",
			dets:      nil,
			wantError: false,
		},
		{
			name:      "NaN center",
			dets:      []Detection{valid, {XCenter: math.NaN(), YCenter: 1, Width: 5, Height: 5}},
			wantIndex: 1,
			wantError: true,
		},
		{
			name:      "infinite center",
			dets:      []Detection{{XCenter: math.Inf(1), YCenter: 1, Width: 5, Height: 5}},
			wantIndex: 0,
			wantError: true,
		},
		{
			name:      "zero width",
			dets:      []Detection{valid, valid, {XCenter: 1, YCenter: 1, Width: 0, Height: 5}},
			wantIndex: 2,
			wantError: true,
		},
		{
			name:      "negative height",
			dets:      []Detection{{XCenter: 1, YCenter: 1, Width: 5, Height: -2}},
			wantIndex: 0,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.dets)
			if !tt.wantError {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			var invalid *InvalidDetectionError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.wantIndex, invalid.Index)
		})
	}
}
