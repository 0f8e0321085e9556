// Package config loads and validates application configuration from files,
// environment variables, and command-line flags.
package config

import (
	"fmt"
)

// Config represents the complete configuration for the labstruct
// application. Values load from configuration files, LABSTRUCT_*
// environment variables, and command-line flags, in increasing precedence.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Input/output locations
	InputDir string       `mapstructure:"input_dir" yaml:"input_dir" json:"input_dir"`
	Output   OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// OCR backend settings
	OCR OCRConfig `mapstructure:"ocr" yaml:"ocr" json:"ocr"`

	// Layout reconstruction settings
	Layout LayoutConfig `mapstructure:"layout" yaml:"layout" json:"layout"`

	// Batch processing settings
	Batch BatchConfig `mapstructure:"batch" yaml:"batch" json:"batch"`
}

// OutputConfig contains output sink settings.
type OutputConfig struct {
	JSONDir     string `mapstructure:"json_dir" yaml:"json_dir" json:"json_dir"`
	MarkdownDir string `mapstructure:"markdown_dir" yaml:"markdown_dir" json:"markdown_dir"`
	RawDir      string `mapstructure:"raw_dir" yaml:"raw_dir" json:"raw_dir"`
}

// OCRConfig contains OCR backend settings.
type OCRConfig struct {
	Language       string  `mapstructure:"language" yaml:"language" json:"language"`
	MinConfidence  float64 `mapstructure:"min_confidence" yaml:"min_confidence" json:"min_confidence"`
	RetryThreshold int     `mapstructure:"retry_threshold" yaml:"retry_threshold" json:"retry_threshold"`
}

// LayoutConfig contains layout reconstruction settings.
type LayoutConfig struct {
	// ToleranceFactor scales the median detection height into the row
	// clustering tolerance.
	ToleranceFactor float64 `mapstructure:"tolerance_factor" yaml:"tolerance_factor" json:"tolerance_factor"`

	// VocabPath optionally overrides the built-in vocabulary with a YAML
	// overlay file.
	VocabPath string `mapstructure:"vocab_path" yaml:"vocab_path" json:"vocab_path"`
}

// BatchConfig contains batch processing settings.
type BatchConfig struct {
	Workers   int  `mapstructure:"workers" yaml:"workers" json:"workers"`
	Recursive bool `mapstructure:"recursive" yaml:"recursive" json:"recursive"`
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level: %q", c.LogLevel)
	}
	if c.OCR.MinConfidence < 0 || c.OCR.MinConfidence > 1 {
		return fmt.Errorf("ocr.min_confidence must be in [0,1], got %v", c.OCR.MinConfidence)
	}
	if c.Layout.ToleranceFactor < 0 {
		return fmt.Errorf("layout.tolerance_factor must be non-negative, got %v", c.Layout.ToleranceFactor)
	}
	if c.Batch.Workers < 0 {
		return fmt.Errorf("batch.workers must be non-negative, got %d", c.Batch.Workers)
	}
	return nil
}
