package cmd

import (
	"github.com/spf13/cobra"

	"github.com/meditext/labstruct/internal/batch"
	"github.com/meditext/labstruct/internal/config"
	"github.com/meditext/labstruct/internal/ocr"
	"github.com/meditext/labstruct/internal/vocab"
)

// batchCmd processes every image in an input directory.
var batchCmd = &cobra.Command{
	Use:   "batch [files or directories...]",
	Short: "Process a directory of lab report images",
	Long: `Process lab report images in parallel, writing a structured JSON file and a
condensed Markdown file per image. A failure of one image is recorded in the
final summary and does not abort the batch.

Supported formats: JPEG, PNG, BMP, GIF, TIFF, WebP

Examples:
  labstruct batch images/
  labstruct batch images/ --recursive --workers 8
  labstruct batch scan1.jpg scan2.png --json-dir out/json --markdown-dir out/md
  labstruct batch images/ --raw-dir raw_data`,
	SilenceUsage: true,
	RunE:         runBatchCommand,
}

// configToBatchConfig maps centralized configuration to batch.Config.
// CLI flags override config file values.
func configToBatchConfig(cfg *config.Config, cmd *cobra.Command, args []string) *batch.Config {
	bc := batch.DefaultConfig()

	bc.Inputs = args
	if len(bc.Inputs) == 0 {
		bc.Inputs = []string{cfg.InputDir}
	}

	bc.JSONDir = cfg.Output.JSONDir
	if cmd.Flags().Changed("json-dir") {
		bc.JSONDir, _ = cmd.Flags().GetString("json-dir")
	}

	bc.MarkdownDir = cfg.Output.MarkdownDir
	if cmd.Flags().Changed("markdown-dir") {
		bc.MarkdownDir, _ = cmd.Flags().GetString("markdown-dir")
	}

	bc.RawDir = cfg.Output.RawDir
	if cmd.Flags().Changed("raw-dir") {
		bc.RawDir, _ = cmd.Flags().GetString("raw-dir")
	}

	if cfg.Batch.Workers > 0 {
		bc.Workers = cfg.Batch.Workers
	}
	if cmd.Flags().Changed("workers") {
		bc.Workers, _ = cmd.Flags().GetInt("workers")
	}

	bc.Recursive = cfg.Batch.Recursive
	if cmd.Flags().Changed("recursive") {
		bc.Recursive, _ = cmd.Flags().GetBool("recursive")
	}

	bc.MinConfidence = cfg.OCR.MinConfidence
	if cmd.Flags().Changed("min-confidence") {
		bc.MinConfidence, _ = cmd.Flags().GetFloat64("min-confidence")
	}

	if cfg.Layout.ToleranceFactor > 0 {
		bc.ToleranceFactor = cfg.Layout.ToleranceFactor
	}
	if cmd.Flags().Changed("tolerance") {
		bc.ToleranceFactor, _ = cmd.Flags().GetFloat64("tolerance")
	}

	bc.OCR.Language = cfg.OCR.Language
	if cmd.Flags().Changed("language") {
		bc.OCR.Language, _ = cmd.Flags().GetString("language")
	}
	if cfg.OCR.RetryThreshold > 0 {
		bc.OCR.RetryThreshold = cfg.OCR.RetryThreshold
	}

	bc.Quiet, _ = cmd.Flags().GetBool("quiet")

	return bc
}

// loadVocabulary returns the built-in vocabulary or the configured overlay.
func loadVocabulary(cfg *config.Config, cmd *cobra.Command) (*vocab.Vocabulary, error) {
	path := cfg.Layout.VocabPath
	if cmd.Flags().Changed("vocab") {
		path, _ = cmd.Flags().GetString("vocab")
	}
	if path == "" {
		return vocab.Default(), nil
	}
	return vocab.Load(path)
}

func runBatchCommand(cmd *cobra.Command, args []string) error {
	bc := configToBatchConfig(globalConfig, cmd, args)

	v, err := loadVocabulary(globalConfig, cmd)
	if err != nil {
		return err
	}

	runner := batch.NewRunner(bc, v, func() (ocr.Backend, error) {
		return ocr.New(bc.OCR)
	})

	summary, err := runner.Run(cmd.Context())
	if summary != nil {
		summary.Print(bc.Quiet)
	}
	return err
}

func init() {
	batchCmd.Flags().String("json-dir", "json_results", "directory for structured JSON output")
	batchCmd.Flags().String("markdown-dir", "markdown_results", "directory for condensed Markdown output")
	batchCmd.Flags().String("raw-dir", "", "directory for raw OCR detection dumps (disabled when empty)")
	batchCmd.Flags().Int("workers", 0, "number of parallel workers (0 = number of CPUs)")
	batchCmd.Flags().Bool("recursive", false, "recurse into subdirectories")
	batchCmd.Flags().Float64("min-confidence", 0, "drop detections below this confidence (0 keeps everything)")
	batchCmd.Flags().Float64("tolerance", 0, "row clustering tolerance as a fraction of median detection height")
	batchCmd.Flags().String("language", "eng", "OCR recognition language")
	batchCmd.Flags().String("vocab", "", "YAML vocabulary overlay file")
	batchCmd.Flags().Bool("quiet", false, "suppress the run summary")

	rootCmd.AddCommand(batchCmd)
}
