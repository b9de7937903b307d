// Package config - Environment-driven settings for the correction tooling.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Settings holds the tunables shared by the CLI and the statistics helpers.
// Every field can be overridden by a PV_PILE_* environment variable.
type Settings struct {
	// HighConfThreshold is the lower bound of the high-confidence bucket.
	HighConfThreshold float64 `json:"high_conf_threshold"`

	// MediumConfThreshold is the lower bound of the medium-confidence bucket.
	MediumConfThreshold float64 `json:"medium_conf_threshold"`

	// SliceWidth is the tile width the detector ran with.
	SliceWidth int `json:"slice_width"`

	// SliceHeight is the tile height the detector ran with.
	SliceHeight int `json:"slice_height"`

	// OverlapRatio is the tile overlap fraction the detector ran with.
	OverlapRatio float64 `json:"overlap_ratio"`

	// LogLevel is the CLI logging verbosity.
	LogLevel string `json:"log_level"`
}

// Defaults returns the standard settings.
func Defaults() Settings {
	return Settings{
		HighConfThreshold:   0.7,
		MediumConfThreshold: 0.4,
		SliceWidth:          640,
		SliceHeight:         640,
		OverlapRatio:        0.2,
		LogLevel:            "INFO",
	}
}

// Load reads an optional env file and overlays PV_PILE_* environment
// variables on the defaults. A missing env file is not an error.
//
// Arguments:
//   - envFile: Path to an env file, or empty to try ".env".
//
// Returns:
//   - Settings: The effective settings.
func Load(envFile string) Settings {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	} else {
		_ = godotenv.Load()
	}

	s := Defaults()
	s.HighConfThreshold = envFloat("PV_PILE_HIGH_CONF_THRESHOLD", s.HighConfThreshold)
	s.MediumConfThreshold = envFloat("PV_PILE_MEDIUM_CONF_THRESHOLD", s.MediumConfThreshold)
	s.SliceWidth = envInt("PV_PILE_SLICE_WIDTH", s.SliceWidth)
	s.SliceHeight = envInt("PV_PILE_SLICE_HEIGHT", s.SliceHeight)
	s.OverlapRatio = envFloat("PV_PILE_OVERLAP_RATIO", s.OverlapRatio)
	s.LogLevel = envString("LOG_LEVEL", s.LogLevel)
	return s
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
