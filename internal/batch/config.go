// Package batch drives the per-image pipeline over a directory of report
// images: discovery, a bounded worker pool, output writing, and the final
// run summary. One image is one independent pipeline run; failures are
// recorded per image and never abort the batch.
package batch

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/meditext/labstruct/internal/layout"
	"github.com/meditext/labstruct/internal/ocr"
)

// Config holds all configuration for a batch run.
type Config struct {
	// Inputs are files or directories to process.
	Inputs []string

	// Output directories; each image owns distinct paths under these, so
	// concurrent writes never collide.
	JSONDir     string
	MarkdownDir string
	RawDir      string // optional raw-detection sink, "" disables

	// Worker pool size; 0 means runtime.NumCPU().
	Workers int

	// File discovery settings.
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	// Core tuning.
	MinConfidence   float64 // detection confidence floor, 0 keeps everything
	ToleranceFactor float64 // row clustering tolerance as a fraction of median height

	// OCR backend settings.
	OCR ocr.Config

	Quiet bool
}

// DefaultConfig returns batch defaults.
func DefaultConfig() *Config {
	return &Config{
		JSONDir:         "json_results",
		MarkdownDir:     "markdown_results",
		Workers:         runtime.NumCPU(),
		ToleranceFactor: layout.DefaultToleranceFactor,
		OCR:             ocr.DefaultConfig(),
	}
}

// Failure records one image that produced no output.
type Failure struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Summary aggregates the outcome of a batch run.
type Summary struct {
	RunID     string        `json:"run_id"`
	Total     int           `json:"total"`
	Processed int           `json:"processed"`
	Failed    int           `json:"failed"`
	Workers   int           `json:"workers"`
	Duration  time.Duration `json:"duration_ns"`
	Failures  []Failure     `json:"failures,omitempty"`
}

// Print writes a human-readable summary to stdout.
func (s *Summary) Print(quiet bool) {
	if quiet {
		return
	}
	_, _ = fmt.Fprintf(os.Stdout, "\nProcessing Summary (run %s):\n", s.RunID)
	_, _ = fmt.Fprintf(os.Stdout, "  Total images: %d\n", s.Total)
	_, _ = fmt.Fprintf(os.Stdout, "  Processed: %d\n", s.Processed)
	_, _ = fmt.Fprintf(os.Stdout, "  Failed: %d\n", s.Failed)
	_, _ = fmt.Fprintf(os.Stdout, "  Workers: %d\n", s.Workers)
	_, _ = fmt.Fprintf(os.Stdout, "  Duration: %v\n", s.Duration.Round(time.Millisecond))
	if s.Processed > 0 && s.Duration > 0 {
		throughput := float64(s.Processed) / s.Duration.Seconds()
		_, _ = fmt.Fprintf(os.Stdout, "  Throughput: %.1f images/sec\n", throughput)
	}
	for _, f := range s.Failures {
		_, _ = fmt.Fprintf(os.Stdout, "  Skipped %s: %s\n", f.Path, f.Reason)
	}
}
