package util

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ResultFile represents a per-frame detector result file.
type ResultFile struct {
	// Path is the path to the result file.
	Path string
	// Data is the raw bytes of the result file.
	Data []byte
	// Frame is the frame number parsed from the file name.
	Frame int
}

// LoadDirectoryResultFiles reads all frame-N.json result files from a
// directory, ordered by frame number.
//
// Arguments:
// - dir: Directory path containing detector result files.
//
// Returns:
// - []ResultFile: Slice of ResultFile, each containing the raw bytes of a result file.
// - error: Error if loading fails.
func LoadDirectoryResultFiles(dir string) ([]ResultFile, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var results []ResultFile
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		ext := filepath.Ext(file.Name())
		if ext != ".json" {
			continue
		}

		resultPath := filepath.Join(dir, file.Name())
		data, readErr := os.ReadFile(resultPath)
		if readErr != nil {
			return nil, readErr
		}
		// Only frame-N.json names participate; corrected outputs and other
		// JSON files in the directory are left alone.
		frame, err := strconv.Atoi(strings.TrimSuffix(strings.ReplaceAll(file.Name(), "frame-", ""), ext))
		if err != nil {
			continue
		}
		results = append(results, ResultFile{
			Path:  resultPath,
			Data:  data,
			Frame: frame,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Frame < results[j].Frame
	})

	return results, nil
}
