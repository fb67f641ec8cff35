package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/calque-dev/calque"
	"github.com/calque-dev/calque/pipeline"
)

var overlayCmd = &cobra.Command{
	Use:   "overlay",
	Short: "Render a debug overlay of the detected layout",
	Long: `Render a debug overlay of the detected layout.

The columns overlay marks detected column bands and merged blocks; the
areas overlay marks classified text, figure and table regions. Overlays
are the quickest way to see why a document segmented the way it did.`,
	RunE: runOverlay,
}

var (
	overlayInput  string
	overlayOutput string
	overlayKind   string
)

func init() {
	RootCmd.AddCommand(overlayCmd)

	overlayCmd.Flags().StringVarP(&overlayInput, "input", "i", "", "Path to input document (required)")
	overlayCmd.Flags().StringVarP(&overlayOutput, "output", "o", "", "Output path (default: input with .overlay.json)")
	overlayCmd.Flags().StringVar(&overlayKind, "kind", "columns", "Overlay kind: columns or areas")

	if err := overlayCmd.MarkFlagRequired("input"); err != nil {
		slog.Error("Unable to mark input as required", "err", err)
		os.Exit(1)
	}
}

func runOverlay(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(overlayInput); os.IsNotExist(err) {
		return fmt.Errorf("input document does not exist: %s", overlayInput)
	}

	var kind pipeline.OverlayKind
	switch overlayKind {
	case "columns":
		kind = pipeline.OverlayColumns
	case "areas":
		kind = pipeline.OverlayAreas
	default:
		return fmt.Errorf("unknown overlay kind %q", overlayKind)
	}

	result, err := calque.Open(overlayInput).Overlay(cmd.Context(), kind)
	if err != nil {
		return err
	}

	output := overlayOutput
	if output == "" {
		output = overlayInput + ".overlay.json"
	}
	if err := os.WriteFile(output, result.Output, 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	slog.Info("overlay finished",
		"run", result.RunID,
		"output", output,
		"kind", overlayKind,
		"pages", len(result.Pages))
	return nil
}
