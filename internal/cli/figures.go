package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/calque-dev/calque"
)

var figuresCmd = &cobra.Command{
	Use:   "figures",
	Short: "Extract a figure-only rendition of a document",
	Long: `Extract a figure-only rendition of a document.

Figure and table areas are isolated and rasterized, one unit per merged
area. Pages without figures render as blank markers so the output keeps
the source page count. With --dir, each unit is also written as a PNG.`,
	RunE: runFigures,
}

var (
	figuresInput  string
	figuresOutput string
	figuresDir    string
)

func init() {
	RootCmd.AddCommand(figuresCmd)

	figuresCmd.Flags().StringVarP(&figuresInput, "input", "i", "", "Path to input document (required)")
	figuresCmd.Flags().StringVarP(&figuresOutput, "output", "o", "", "Output path (default: input with .figures.json)")
	figuresCmd.Flags().StringVar(&figuresDir, "dir", "", "Directory to write individual figure PNGs")

	if err := figuresCmd.MarkFlagRequired("input"); err != nil {
		slog.Error("Unable to mark input as required", "err", err)
		os.Exit(1)
	}
}

func runFigures(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(figuresInput); os.IsNotExist(err) {
		return fmt.Errorf("input document does not exist: %s", figuresInput)
	}

	result, err := calque.Open(figuresInput).Figures(cmd.Context())
	if err != nil {
		return err
	}

	output := figuresOutput
	if output == "" {
		output = figuresInput + ".figures.json"
	}
	if err := os.WriteFile(output, result.Output, 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if figuresDir != "" {
		if err := os.MkdirAll(figuresDir, 0o755); err != nil {
			return fmt.Errorf("creating figure directory: %w", err)
		}
		counts := make(map[int]int)
		for _, unit := range result.Figures {
			counts[unit.PageIndex]++
			name := fmt.Sprintf("page%03d-fig%02d.png", unit.PageIndex, counts[unit.PageIndex])
			path := filepath.Join(figuresDir, name)
			if err := os.WriteFile(path, unit.Image, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", name, err)
			}
		}
	}

	slog.Info("figure extraction finished",
		"run", result.RunID,
		"output", output,
		"pages", len(result.Pages),
		"figures", len(result.Figures))
	return nil
}
