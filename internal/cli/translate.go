package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/calque-dev/calque"
	"github.com/calque-dev/calque/pipeline"
	"github.com/calque-dev/calque/translate"
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Translate a document while preserving its layout",
	Long: `Translate a document while preserving its layout.

The document is parsed into text, figure and table areas. Text blocks are
merged, grouped into columns, translated in batches, and the translated
text is laid back into the original block positions. Figures and tables
are stamped through unmodified. Requires OPENAI_API_KEY.`,
	RunE: runTranslate,
}

var (
	translateInput  string
	translateOutput string
	sourceLang      string
	targetLang      string
	openaiModel     string
	batchSize       int
	workers         int
	maxPages        int
	minDiskMB       uint64
)

func init() {
	RootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVarP(&translateInput, "input", "i", "", "Path to input document (required)")
	translateCmd.Flags().StringVarP(&translateOutput, "output", "o", "", "Output path (default: input with .translated.json)")
	translateCmd.Flags().StringVar(&sourceLang, "source", "en", "Source language tag")
	translateCmd.Flags().StringVar(&targetLang, "target", "ja", "Target language tag")
	translateCmd.Flags().StringVar(&openaiModel, "model", "", "Chat model to use (provider default if not specified)")
	translateCmd.Flags().IntVar(&batchSize, "batch-size", 20, "Translation units per request")
	translateCmd.Flags().IntVar(&workers, "workers", 4, "Concurrent page analysis workers")
	translateCmd.Flags().IntVar(&maxPages, "max-pages", 0, "Refuse documents with more pages (0 = no limit)")
	translateCmd.Flags().Uint64Var(&minDiskMB, "min-disk", 200, "Minimum free disk space in MB to start")

	if err := translateCmd.MarkFlagRequired("input"); err != nil {
		slog.Error("Unable to mark input as required", "err", err)
		os.Exit(1)
	}
}

func runTranslate(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(translateInput); os.IsNotExist(err) {
		return fmt.Errorf("input document does not exist: %s", translateInput)
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is not set")
	}

	source, err := language.Parse(sourceLang)
	if err != nil {
		return fmt.Errorf("invalid source language %q: %w", sourceLang, err)
	}
	target, err := language.Parse(targetLang)
	if err != nil {
		return fmt.Errorf("invalid target language %q: %w", targetLang, err)
	}

	config := translate.DefaultOpenAIConfig(apiKey)
	config.Source = source
	config.Target = target
	if openaiModel != "" {
		config.Model = openaiModel
	}

	output := translateOutput
	if output == "" {
		output = translateInput + ".translated.json"
	}

	result, err := calque.Open(translateInput).
		Translator(translate.NewOpenAITranslator(config)).
		Workers(workers).
		BatchSize(batchSize).
		MaxPages(maxPages).
		Precondition(diskPrecondition(filepath.Dir(output), minDiskMB<<20)).
		Progress(pipeline.LogSink{Logger: slog.Default()}).
		Translate(cmd.Context())
	if err != nil {
		return err
	}

	if err := os.WriteFile(output, result.Output, 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	var overflows, fallbacks, passthrough int
	for _, page := range result.Pages {
		overflows += page.Overflows
		fallbacks += page.Fallbacks
		if page.Passthrough {
			passthrough++
		}
	}
	slog.Info("translation finished",
		"run", result.RunID,
		"output", output,
		"pages", len(result.Pages),
		"overflows", overflows,
		"fallbacks", fallbacks,
		"passthrough", passthrough)
	return nil
}
