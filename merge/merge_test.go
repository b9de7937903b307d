package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solargeofix/go-gridfix/detections"
)

func boxDet(x, y, edge, confidence float64, categoryID int) detections.Detection {
	return detections.Detection{
		XCenter:    x,
		YCenter:    y,
		Width:      edge,
		Height:     edge,
		Confidence: confidence,
		CategoryID: categoryID,
	}
}

func TestDetectionsCollapsesDuplicates(t *testing.T) {
	dets := []detections.Detection{
		boxDet(50, 50, 20, 0.7, 0),
		boxDet(52, 50, 20, 0.9, 0), // same pile, seen from the neighboring tile
		boxDet(200, 200, 20, 0.6, 0),
	}

	kept := Detections(dets, DefaultConfig())

	require.Len(t, kept, 2)
	// Highest confidence member of the group survives, output sorted by
	// descending confidence.
	assert.Equal(t, 0.9, kept[0].Confidence)
	assert.Equal(t, 52.0, kept[0].XCenter)
	assert.Equal(t, 0.6, kept[1].Confidence)
}

func TestDetectionsKeepsNonOverlapping(t *testing.T) {
	dets := []detections.Detection{
		boxDet(10, 10, 10, 0.8, 0),
		boxDet(50, 10, 10, 0.8, 0),
		boxDet(90, 10, 10, 0.8, 0),
	}

	kept := Detections(dets, DefaultConfig())
	assert.Len(t, kept, 3)
}

func TestDetectionsClassAware(t *testing.T) {
	dets := []detections.Detection{
		boxDet(50, 50, 20, 0.9, 0),
		boxDet(52, 50, 20, 0.7, 1), // overlapping but different category
	}

	kept := Detections(dets, DefaultConfig())
	assert.Len(t, kept, 2)

	config := DefaultConfig()
	config.ClassAware = false
	kept = Detections(dets, config)
	assert.Len(t, kept, 1)
}

func TestDetectionsEmptyInput(t *testing.T) {
	assert.Nil(t, Detections(nil, DefaultConfig()))
}

func TestBoxIoU(t *testing.T) {
	a := boxDet(50, 50, 20, 0.9, 0)

	assert.InDelta(t, 1.0, boxIoU(a, a), 1e-6)
	assert.Equal(t, float32(0), boxIoU(a, boxDet(200, 200, 20, 0.9, 0)))

	// Half-width offset: intersection 10x20, union 600.
	b := boxDet(60, 50, 20, 0.9, 0)
	assert.InDelta(t, 200.0/600.0, boxIoU(a, b), 1e-6)
}
