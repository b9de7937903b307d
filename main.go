package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/solargeofix/go-gridfix/config"
	"github.com/solargeofix/go-gridfix/corrector"
	"github.com/solargeofix/go-gridfix/detections"
	"github.com/solargeofix/go-gridfix/merge"
	"github.com/solargeofix/go-gridfix/sahi"
	"github.com/solargeofix/go-gridfix/util"
)

const (
	// DefaultImageWidth is the assumed source image width when none is given.
	DefaultImageWidth = 4000
	// DefaultImageHeight is the assumed source image height when none is given.
	DefaultImageHeight = 3000
)

// output is the JSON document written for each corrected result set.
type output struct {
	Detections     []detections.Detection `json:"detections"`
	Stats          corrector.Stats        `json:"stats"`
	DetectionStats detections.Stats       `json:"detection_stats"`
	Skipped        int                    `json:"skipped_annotations,omitempty"`
}

func main() {
	var (
		resultsPath string
		resultsDir  string
		outputPath  string
		envFile     string
		mode        string
		imageWidth  int
		imageHeight int
		mergeTiles  bool
		minIoU      float64
		gridSpacing float64
		degree      int
		residual    float64
		seed        int64
		minChain    int
	)
	flag.StringVar(&resultsPath, "results", "", "Path to a detector result JSON file")
	flag.StringVar(&resultsDir, "results-dir", "", "Directory of frame-N.json result files to correct in batch")
	flag.StringVar(&outputPath, "output", "", "Output path (single-file mode; defaults to stdout)")
	flag.StringVar(&envFile, "env", "", "Optional env file with PV_PILE_* settings")
	flag.StringVar(&mode, "mode", string(corrector.ModeChainSearch), "Correction mode: chain_search or regression_grid")
	flag.IntVar(&imageWidth, "image-width", DefaultImageWidth, "Source image width in pixels")
	flag.IntVar(&imageHeight, "image-height", DefaultImageHeight, "Source image height in pixels")
	flag.BoolVar(&mergeTiles, "merge-tiles", true, "Suppress duplicate boxes from overlapping tiles before correction")
	flag.Float64Var(&minIoU, "min-iou", 0.5, "IoU above which tile duplicates are merged")
	flag.Float64Var(&gridSpacing, "grid-spacing", 0, "Grid-fill spacing in pixels (0 = estimate from data)")
	flag.IntVar(&degree, "degree", 2, "Polynomial degree for the regression fit")
	flag.Float64Var(&residual, "residual-threshold", 10.0, "Inlier residual threshold in pixels")
	flag.Int64Var(&seed, "seed", 42, "Random seed for the regression fit")
	flag.IntVar(&minChain, "min-chain-length", 3, "Minimum detections per retained chain")
	flag.Parse()

	if (resultsPath == "") == (resultsDir == "") {
		log.Fatal("[gridfix] exactly one of -results or -results-dir is required")
	}

	settings := config.Load(envFile)

	correctionConfig := corrector.DefaultConfig()
	correctionConfig.Mode = corrector.Mode(mode)
	correctionConfig.Regression.Degree = degree
	correctionConfig.Regression.ResidualThreshold = residual
	correctionConfig.Regression.Seed = seed
	correctionConfig.GridFill.Spacing = gridSpacing
	correctionConfig.ChainSearch.MinChainLength = minChain

	mergeConfig := merge.DefaultConfig()
	mergeConfig.MinIoU = float32(minIoU)

	shape := corrector.ImageShape{Height: imageHeight, Width: imageWidth}

	if resultsDir != "" {
		if err := runBatch(resultsDir, shape, settings, correctionConfig, mergeConfig, mergeTiles); err != nil {
			log.Fatalf("[gridfix] batch correction failed: %v", err)
		}
		return
	}

	data, err := os.ReadFile(resultsPath)
	if err != nil {
		log.Fatalf("[gridfix] reading %s: %v", resultsPath, err)
	}
	doc, err := correctResults(data, shape, settings, correctionConfig, mergeConfig, mergeTiles)
	if err != nil {
		log.Fatalf("[gridfix] correcting %s: %v", resultsPath, err)
	}
	if err := writeOutput(doc, outputPath); err != nil {
		log.Fatalf("[gridfix] writing output: %v", err)
	}
	log.Printf("[gridfix] %s: %d -> %d detections (added %d, removed %d)",
		resultsPath, doc.Stats.OriginalCount, doc.Stats.CorrectedCount,
		doc.Stats.AddedCount, doc.Stats.RemovedCount)
}

// correctResults parses one result document, optionally merges tile
// duplicates, and runs the selected geometric correction.
func correctResults(
	data []byte,
	shape corrector.ImageShape,
	settings config.Settings,
	correctionConfig corrector.Config,
	mergeConfig merge.Config,
	mergeTiles bool,
) (*output, error) {
	dets, skipped, err := sahi.ParseResults(data)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		log.Printf("[gridfix] skipped %d malformed annotations", skipped)
	}

	if mergeTiles {
		dets = merge.Detections(dets, mergeConfig)
	}

	corrected, stats, err := corrector.Correct(dets, shape, correctionConfig)
	if err != nil {
		return nil, err
	}

	statsConfig := detections.StatsConfig{
		HighConfThreshold:   settings.HighConfThreshold,
		MediumConfThreshold: settings.MediumConfThreshold,
	}
	return &output{
		Detections:     corrected,
		Stats:          stats,
		DetectionStats: detections.ComputeStats(corrected, statsConfig),
		Skipped:        skipped,
	}, nil
}

// runBatch corrects every frame-N.json file in a directory, writing a
// frame-N.corrected.json next to each.
func runBatch(
	dir string,
	shape corrector.ImageShape,
	settings config.Settings,
	correctionConfig corrector.Config,
	mergeConfig merge.Config,
	mergeTiles bool,
) error {
	files, err := util.LoadDirectoryResultFiles(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no result files in %s", dir)
	}

	for _, file := range files {
		doc, err := correctResults(file.Data, shape, settings, correctionConfig, mergeConfig, mergeTiles)
		if err != nil {
			return fmt.Errorf("frame %d: %w", file.Frame, err)
		}

		base := strings.TrimSuffix(file.Path, filepath.Ext(file.Path))
		if err := writeOutput(doc, base+".corrected.json"); err != nil {
			return fmt.Errorf("frame %d: %w", file.Frame, err)
		}
		log.Printf("[gridfix] frame %d: %d -> %d detections (added %d, removed %d)",
			file.Frame, doc.Stats.OriginalCount, doc.Stats.CorrectedCount,
			doc.Stats.AddedCount, doc.Stats.RemovedCount)
	}
	return nil
}

// writeOutput marshals the document to the given path, or stdout when the
// path is empty.
func writeOutput(doc *output, path string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Println(string(data))
		return nil
	}
	return os.WriteFile(path, data, 0o644)
}
