package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meditext/labstruct/internal/batch"
	"github.com/meditext/labstruct/internal/ocr"
)

// imageCmd processes a single image and prints the condensed rendering.
var imageCmd = &cobra.Command{
	Use:   "image [file]",
	Short: "Process a single lab report image",
	Long: `Process one lab report image, write both output files, and print the
condensed Markdown rendering to stdout.

Examples:
  labstruct image report.jpg
  labstruct image report.jpg --json-dir out/json --markdown-dir out/md`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runImageCommand,
}

func runImageCommand(cmd *cobra.Command, args []string) error {
	bc := configToBatchConfig(globalConfig, cmd, args)
	bc.Workers = 1
	bc.Quiet = true

	v, err := loadVocabulary(globalConfig, cmd)
	if err != nil {
		return err
	}

	backend, err := ocr.New(bc.OCR)
	if err != nil {
		return fmt.Errorf("failed to initialize OCR backend: %w", err)
	}
	defer func() { _ = backend.Close() }()

	if err := bc.EnsureOutputDirs(); err != nil {
		return err
	}

	pipeline := batch.NewPipeline(bc, v)
	env, err := pipeline.ProcessFile(cmd.Context(), backend, args[0])
	if err != nil {
		return err
	}

	_, _ = fmt.Fprint(cmd.OutOrStdout(), env.Report.RenderMarkdown())
	return nil
}

func init() {
	imageCmd.Flags().String("json-dir", "json_results", "directory for structured JSON output")
	imageCmd.Flags().String("markdown-dir", "markdown_results", "directory for condensed Markdown output")
	imageCmd.Flags().String("raw-dir", "", "directory for raw OCR detection dumps (disabled when empty)")
	imageCmd.Flags().Float64("min-confidence", 0, "drop detections below this confidence (0 keeps everything)")
	imageCmd.Flags().Float64("tolerance", 0, "row clustering tolerance as a fraction of median detection height")
	imageCmd.Flags().String("language", "eng", "OCR recognition language")
	imageCmd.Flags().String("vocab", "", "YAML vocabulary overlay file")

	rootCmd.AddCommand(imageCmd)
}
