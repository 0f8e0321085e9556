package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/meditext/labstruct/internal/detection"
	"github.com/meditext/labstruct/internal/report"
)

// rawEnvelope mirrors the backend's unmodified output for the optional raw
// sink, useful when tuning vocabulary or tolerance against a new lab format.
type rawEnvelope struct {
	ImageName   string                   `json:"image_name"`
	ImagePath   string                   `json:"image_path"`
	ProcessedAt time.Time                `json:"processed_at"`
	RawResult   []detection.RawDetection `json:"raw_result"`
}

// writeOutputs writes the structured JSON and condensed Markdown sinks, and
// the raw sink when enabled. Each image owns its output paths; a write
// failure fails only this image.
func (p *Pipeline) writeOutputs(env *report.Envelope, raw []detection.RawDetection, path string) error {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	data, err := env.EncodeJSON()
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	jsonPath := filepath.Join(p.cfg.JSONDir, stem+".json")
	if err := os.WriteFile(jsonPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", jsonPath, err)
	}

	mdPath := filepath.Join(p.cfg.MarkdownDir, stem+".md")
	if err := os.WriteFile(mdPath, []byte(env.Report.RenderMarkdown()), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", mdPath, err)
	}

	if p.cfg.RawDir != "" {
		return p.writeRaw(raw, path, stem, env.ProcessedAt)
	}
	return nil
}

func (p *Pipeline) writeRaw(raw []detection.RawDetection, path, stem string, processedAt time.Time) error {
	data, err := json.MarshalIndent(rawEnvelope{
		ImageName:   filepath.Base(path),
		ImagePath:   path,
		ProcessedAt: processedAt,
		RawResult:   raw,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode raw detections: %w", err)
	}
	rawPath := filepath.Join(p.cfg.RawDir, stem+"_raw.json")
	if err := os.WriteFile(rawPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", rawPath, err)
	}
	return nil
}

// EnsureOutputDirs creates the configured output directories.
func (c *Config) EnsureOutputDirs() error {
	dirs := []string{c.JSONDir, c.MarkdownDir}
	if c.RawDir != "" {
		dirs = append(dirs, c.RawDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	return nil
}
