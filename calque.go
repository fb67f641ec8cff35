// Package calque reconstructs the structure of a document and lays
// translated text back into it.
//
// Basic usage:
//
//	result, err := calque.Open("paper.stext.json").
//	    Translator(translator).
//	    Translate(ctx)
//	if err != nil {
//	    // handle error
//	}
//	os.WriteFile("paper.ja.json", result.Output, 0o644)
//
// Figure-only and debug-overlay runs need no translator:
//
//	figures, err := calque.Open("paper.stext.json").Figures(ctx)
//	overlay, err := calque.Open("paper.stext.json").Overlay(ctx, pipeline.OverlayColumns)
//
// For advanced use cases, the lower-level pipeline, layout, area,
// figure and reflow packages are also available.
package calque

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/calque-dev/calque/codec"
	"github.com/calque-dev/calque/pipeline"
	"github.com/calque-dev/calque/translate"
)

// Runner accumulates configuration fluently and executes one of the
// terminal operations: Translate, Figures or Overlay.
type Runner struct {
	filename string
	data     []byte
	options  runOptions
}

// Open prepares a run over a document file. The file is read when a
// terminal operation executes.
func Open(filename string) *Runner {
	return &Runner{
		filename: filename,
		options:  defaultRunOptions(),
	}
}

// FromBytes prepares a run over in-memory document bytes.
func FromBytes(data []byte) *Runner {
	return &Runner{
		data:    data,
		options: defaultRunOptions(),
	}
}

// Codec selects the document codec by registered name. The default is
// the structured-text JSON codec.
func (r *Runner) Codec(name string) *Runner {
	r.options.codecName = name
	return r
}

// Translator sets the translation collaborator. Required for
// Translate; ignored by Figures and Overlay.
func (r *Runner) Translator(t translate.Translator) *Runner {
	r.options.translator = t
	return r
}

// Workers bounds concurrent page analysis.
func (r *Runner) Workers(n int) *Runner {
	r.options.config.Workers = n
	return r
}

// BatchSize sets the number of units per translation request.
func (r *Runner) BatchSize(n int) *Runner {
	r.options.config.BatchSize = n
	return r
}

// MaxPages fails runs over longer documents. Zero means no limit.
func (r *Runner) MaxPages(n int) *Runner {
	r.options.config.MaxPages = n
	return r
}

// Precondition installs a check that runs before any work; a non-nil
// result aborts the run.
func (r *Runner) Precondition(check func() error) *Runner {
	r.options.config.Precondition = check
	return r
}

// Progress installs a progress sink.
func (r *Runner) Progress(sink pipeline.ProgressSink) *Runner {
	r.options.config.Progress = sink
	return r
}

// Logger sets the structured logger for the run.
func (r *Runner) Logger(logger *slog.Logger) *Runner {
	r.options.config.Logger = logger
	return r
}

// PageText installs a text extractor for scanned pages.
func (r *Runner) PageText(extractor codec.PageExtractor) *Runner {
	r.options.config.PageText = extractor
	return r
}

// Config replaces the whole pipeline configuration for settings the
// fluent methods do not expose.
func (r *Runner) Config(config pipeline.Config) *Runner {
	r.options.config = config
	return r
}

// Translate runs the full translation pipeline.
func (r *Runner) Translate(ctx context.Context) (*pipeline.Result, error) {
	if r.options.translator == nil {
		return nil, errors.New("no translator configured")
	}
	orchestrator, source, err := r.build()
	if err != nil {
		return nil, err
	}
	return orchestrator.TranslateDocument(ctx, source)
}

// Figures runs figure extraction and renders the figure-only
// document.
func (r *Runner) Figures(ctx context.Context) (*pipeline.Result, error) {
	orchestrator, source, err := r.build()
	if err != nil {
		return nil, err
	}
	return orchestrator.ExtractFigures(ctx, source)
}

// Overlay renders a debug overlay document of the given kind.
func (r *Runner) Overlay(ctx context.Context, kind pipeline.OverlayKind) (*pipeline.Result, error) {
	orchestrator, source, err := r.build()
	if err != nil {
		return nil, err
	}
	return orchestrator.BuildOverlay(ctx, source, kind)
}

// build resolves the codec, loads the source bytes and assembles the
// orchestrator.
func (r *Runner) build() (*pipeline.Orchestrator, []byte, error) {
	c, err := codec.NewRegistry().Get(r.options.codecName)
	if err != nil {
		return nil, nil, err
	}

	source := r.data
	if source == nil {
		source, err = os.ReadFile(r.filename)
		if err != nil {
			return nil, nil, fmt.Errorf("reading document: %w", err)
		}
	}

	orchestrator := pipeline.NewOrchestratorWithConfig(c, r.options.translator, r.options.config)
	return orchestrator, source, nil
}

// Must is a helper that wraps a call to a function returning
// (T, error) and panics if the error is non-nil. It is intended for
// scripts and tests where error handling would be cumbersome.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
