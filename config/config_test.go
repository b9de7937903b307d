package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	s := Defaults()

	assert.Equal(t, 0.7, s.HighConfThreshold)
	assert.Equal(t, 0.4, s.MediumConfThreshold)
	assert.Equal(t, 640, s.SliceWidth)
	assert.Equal(t, 640, s.SliceHeight)
	assert.Equal(t, 0.2, s.OverlapRatio)
	assert.Equal(t, "INFO", s.LogLevel)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PV_PILE_HIGH_CONF_THRESHOLD", "0.9")
	t.Setenv("PV_PILE_SLICE_WIDTH", "1024")
	t.Setenv("LOG_LEVEL", "DEBUG")

	s := Load("")

	assert.Equal(t, 0.9, s.HighConfThreshold)
	assert.Equal(t, 1024, s.SliceWidth)
	assert.Equal(t, "DEBUG", s.LogLevel)
	// Untouched settings keep their defaults.
	assert.Equal(t, 0.4, s.MediumConfThreshold)
}

func TestLoadIgnoresUnparsableValues(t *testing.T) {
	t.Setenv("PV_PILE_OVERLAP_RATIO", "lots")
	t.Setenv("PV_PILE_SLICE_HEIGHT", "tall")

	s := Load("")

	assert.Equal(t, 0.2, s.OverlapRatio)
	assert.Equal(t, 640, s.SliceHeight)
}
