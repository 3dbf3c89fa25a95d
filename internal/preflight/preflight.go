package preflight

import (
	"context"
	"fmt"
	"strings"

	"voxmemo/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Recordings directory", cfg.Paths.RecordingsDir),
		CheckFreeSpace("Recordings free space", cfg.Paths.RecordingsDir, cfg.Capture.MinFreeMB),
	}

	// Export directory (when configured)
	if strings.TrimSpace(cfg.Paths.ExportDir) != "" {
		results = append(results, CheckDirectoryAccess("Export directory", cfg.Paths.ExportDir))
	}

	results = append(results, CheckNotifications(ctx, cfg))
	return results
}

// CheckRecording runs the checks that must pass before capture starts and
// returns the first failure as an error.
func CheckRecording(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}
	return FirstFailure([]Result{
		CheckDirectoryAccess("Recordings directory", cfg.Paths.RecordingsDir),
		CheckFreeSpace("Recordings free space", cfg.Paths.RecordingsDir, cfg.Capture.MinFreeMB),
	})
}

// FirstFailure converts the first failed result into an error.
func FirstFailure(results []Result) error {
	for _, result := range results {
		if !result.Passed {
			return fmt.Errorf("%s: %s", result.Name, result.Detail)
		}
	}
	return nil
}
