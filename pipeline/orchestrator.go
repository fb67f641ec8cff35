package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/calque-dev/calque/area"
	"github.com/calque-dev/calque/codec"
	"github.com/calque-dev/calque/figure"
	"github.com/calque-dev/calque/layout"
	"github.com/calque-dev/calque/model"
	"github.com/calque-dev/calque/reflow"
	"github.com/calque-dev/calque/translate"
)

// Run-level failures. Per-page failures never surface here; those
// pages degrade to passthrough.
var (
	// ErrResourceExhausted means the precondition check refused to
	// start the run.
	ErrResourceExhausted = errors.New("insufficient resources to start the run")

	// ErrDocumentTooLarge means the document exceeds the configured
	// page limit.
	ErrDocumentTooLarge = errors.New("document exceeds the page limit")

	// ErrTranslationFailed means every translation batch failed.
	ErrTranslationFailed = errors.New("all translation batches failed")
)

// Config holds configuration for the orchestrator.
type Config struct {
	// Workers bounds concurrent page analysis (default: 4)
	Workers int

	// BatchSize is the number of units per translation request
	// (default: 20)
	BatchSize int

	// BatchChars bounds the cumulative source length of one batch in
	// runes; a batch closes early rather than exceed it
	// (default: 8000)
	BatchChars int

	// MaxUnits caps translatable units per run; surplus units keep
	// their source text as skipped. Zero means no cap
	MaxUnits int

	// MaxRetries bounds resends of a failed retryable batch
	// (default: 3)
	MaxRetries uint64

	// BatchInterval paces translation requests (default: 500ms)
	BatchInterval time.Duration

	// MaxPages fails the run for longer documents; 0 means no limit
	MaxPages int

	// CacheTTL bounds how long analyzed page models stay cached
	// (default: 10 minutes)
	CacheTTL time.Duration

	// Precondition runs before any work; a non-nil result aborts the
	// run with ErrResourceExhausted
	Precondition func() error

	// Merge, Segment, Classify, Extract and Fit configure the layout
	// stages
	Merge    layout.MergeConfig
	Segment  layout.SegmentConfig
	Classify area.ClassifyConfig
	Extract  figure.ExtractConfig
	Fit      reflow.FitConfig

	// Measurer overrides the reflow width measurer; nil uses the
	// approximate rune measurer
	Measurer reflow.Measurer

	// PageText recovers text runs from scanned pages; nil disables
	// recovery and such pages pass through untranslated
	PageText codec.PageExtractor

	// Progress receives run notifications; nil discards them
	Progress ProgressSink

	// Logger receives structured run logs; nil uses slog.Default
	Logger *slog.Logger
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Workers:       4,
		BatchSize:     20,
		BatchChars:    8000,
		MaxRetries:    3,
		BatchInterval: 500 * time.Millisecond,
		CacheTTL:      10 * time.Minute,
		Merge:         layout.DefaultMergeConfig(),
		Segment:       layout.DefaultSegmentConfig(),
		Classify:      area.DefaultClassifyConfig(),
		Extract:       figure.DefaultExtractConfig(),
		Fit:           reflow.DefaultFitConfig(),
	}
}

// PageReport summarizes one page of a finished run.
type PageReport struct {
	// Index is the zero-based page index
	Index int

	// Passthrough is set when the page degraded to a source copy
	Passthrough bool

	// Blocks, Columns and Figures count the page's analysis results
	Blocks  int
	Columns int
	Figures int

	// Overflows counts blocks whose substitute text outgrew their box
	Overflows int

	// Fallbacks counts blocks that kept their source text
	Fallbacks int
}

// Result is a finished run.
type Result struct {
	// RunID uniquely identifies the run
	RunID string

	// Output is the rendered document
	Output []byte

	// Pages reports per-page outcomes, in page order
	Pages []PageReport

	// Figures holds the extracted units of a figure run
	Figures []model.FigureUnit
}

// Orchestrator drives whole-document runs.
type Orchestrator struct {
	config     Config
	codec      codec.Codec
	translator translate.Translator
	analyzer   *pageAnalyzer
	extractor  *figure.Extractor
	engine     *reflow.Engine
	cache      *gocache.Cache
	limiter    *rate.Limiter
	progress   ProgressSink
	logger     *slog.Logger
}

// NewOrchestrator creates an orchestrator with default configuration.
func NewOrchestrator(c codec.Codec, translator translate.Translator) *Orchestrator {
	return NewOrchestratorWithConfig(c, translator, DefaultConfig())
}

// NewOrchestratorWithConfig creates an orchestrator with custom
// configuration.
func NewOrchestratorWithConfig(c codec.Codec, translator translate.Translator, config Config) *Orchestrator {
	if config.Workers <= 0 {
		config.Workers = 4
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 20
	}
	if config.BatchChars <= 0 {
		config.BatchChars = 8000
	}
	if config.BatchInterval <= 0 {
		config.BatchInterval = 500 * time.Millisecond
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = 10 * time.Minute
	}
	if config.Progress == nil {
		config.Progress = NopSink{}
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Orchestrator{
		config:     config,
		codec:      c,
		translator: translator,
		analyzer: &pageAnalyzer{
			merger:     layout.NewMergerWithConfig(config.Merge),
			segmenter:  layout.NewSegmenterWithConfig(config.Segment),
			classifier: area.NewClassifierWithConfig(config.Classify),
			extractor:  config.PageText,
		},
		extractor: figure.NewExtractorWithConfig(config.Extract),
		engine:    reflow.NewEngineWithConfig(config.Fit, config.Measurer),
		cache:     gocache.New(config.CacheTTL, config.CacheTTL),
		limiter:   rate.NewLimiter(rate.Every(config.BatchInterval), 1),
		progress:  config.Progress,
		logger:    config.Logger,
	}
}

// TranslateDocument runs the full translation pipeline over one
// document and renders the substituted output.
func (o *Orchestrator) TranslateDocument(ctx context.Context, source []byte) (*Result, error) {
	runID, models, err := o.prepare(ctx, source)
	if err != nil {
		return nil, err
	}
	log := o.logger.With("run", runID)
	log.Info("translating document", "pages", len(models))

	pageUnits, err := o.translateAll(ctx, models)
	if err != nil {
		return nil, err
	}

	result := &Result{RunID: runID, Pages: make([]PageReport, 0, len(models))}
	layouts := make([]model.PageLayout, 0, len(models))
	for i, pm := range models {
		page, report := o.translatedPage(pm, pageUnits[i])
		layouts = append(layouts, page)
		result.Pages = append(result.Pages, report)
		o.progress.PageRendered(i, report.Passthrough)
	}

	output, err := o.codec.Render(ctx, source, layouts)
	if err != nil {
		return nil, fmt.Errorf("rendering translated document: %w", err)
	}
	result.Output = output
	return result, nil
}

// ExtractFigures renders a figure-only document: every page keeps its
// position, carrying either its figure stamps or a blank marker.
func (o *Orchestrator) ExtractFigures(ctx context.Context, source []byte) (*Result, error) {
	runID, models, err := o.prepare(ctx, source)
	if err != nil {
		return nil, err
	}
	o.logger.With("run", runID).Info("extracting figures", "pages", len(models))

	result := &Result{RunID: runID, Pages: make([]PageReport, 0, len(models))}
	layouts := make([]model.PageLayout, 0, len(models))
	for i, pm := range models {
		page := model.PageLayout{
			Index:  i,
			Width:  pm.Content.Width,
			Height: pm.Content.Height,
		}
		report := PageReport{Index: i, Blocks: len(pm.Blocks), Columns: len(pm.Columns)}

		if pm.Err != nil {
			page.Passthrough = true
			report.Passthrough = true
			layouts = append(layouts, page)
			result.Pages = append(result.Pages, report)
			o.progress.PageRendered(i, true)
			continue
		}

		units, err := o.extractor.Extract(pm.Content, pm.Regions)
		if err != nil {
			o.logger.Warn("figure extraction failed, page passes through",
				"run", runID, "page", i, "error", err)
			page.Passthrough = true
			report.Passthrough = true
		} else if len(units) == 0 {
			page.Blank = true
		} else {
			for _, unit := range units {
				page.Stamps = append(page.Stamps, model.FigureStamp{BBox: unit.BBox})
			}
			result.Figures = append(result.Figures, units...)
			report.Figures = len(units)
		}

		layouts = append(layouts, page)
		result.Pages = append(result.Pages, report)
		o.progress.PageRendered(i, report.Passthrough)
	}

	output, err := o.codec.Render(ctx, source, layouts)
	if err != nil {
		return nil, fmt.Errorf("rendering figure document: %w", err)
	}
	result.Output = output
	return result, nil
}

// BuildOverlay renders a debug overlay of the chosen kind over every
// page.
func (o *Orchestrator) BuildOverlay(ctx context.Context, source []byte, kind OverlayKind) (*Result, error) {
	runID, models, err := o.prepare(ctx, source)
	if err != nil {
		return nil, err
	}
	o.logger.With("run", runID).Info("building overlay", "kind", kind, "pages", len(models))

	result := &Result{RunID: runID, Pages: make([]PageReport, 0, len(models))}
	layouts := make([]model.PageLayout, 0, len(models))
	for i, pm := range models {
		layouts = append(layouts, model.PageLayout{
			Index:  i,
			Width:  pm.Content.Width,
			Height: pm.Content.Height,
			Marks:  overlayMarks(pm, kind),
		})
		result.Pages = append(result.Pages, PageReport{
			Index:   i,
			Blocks:  len(pm.Blocks),
			Columns: len(pm.Columns),
		})
	}

	output, err := o.codec.Render(ctx, source, layouts)
	if err != nil {
		return nil, fmt.Errorf("rendering overlay document: %w", err)
	}
	result.Output = output
	return result, nil
}

// prepare runs the stages shared by every operation: precondition,
// parse, page limit, and concurrent page analysis.
func (o *Orchestrator) prepare(ctx context.Context, source []byte) (string, []*PageModel, error) {
	if o.config.Precondition != nil {
		if err := o.config.Precondition(); err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrResourceExhausted, err)
		}
	}

	runID := uuid.NewString()

	contents, err := o.codec.Parse(ctx, source)
	if err != nil {
		return "", nil, fmt.Errorf("parsing document: %w", err)
	}
	if o.config.MaxPages > 0 && len(contents) > o.config.MaxPages {
		return "", nil, fmt.Errorf("%w: %d pages, limit %d",
			ErrDocumentTooLarge, len(contents), o.config.MaxPages)
	}

	models, err := o.analyzeAll(ctx, source, contents)
	if err != nil {
		return "", nil, err
	}
	return runID, models, nil
}

// analyzeAll analyzes every page on a bounded worker pool. Results
// land in per-page slots, so completion order never disturbs page
// order.
func (o *Orchestrator) analyzeAll(ctx context.Context, source []byte, contents []model.PageContent) ([]*PageModel, error) {
	digest := docDigest(source)
	models := make([]*PageModel, len(contents))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.config.Workers)
	for i := range contents {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			key := cacheKey(digest, i)
			if cached, found := o.cache.Get(key); found {
				models[i] = cached.(*PageModel)
				return nil
			}

			pm := o.analyzer.analyze(gctx, &contents[i])
			if pm.Err != nil {
				o.logger.Warn("page analysis failed, page passes through",
					"page", i, "error", pm.Err)
			}
			o.cache.Set(key, pm, gocache.DefaultExpiration)
			models[i] = pm
			o.progress.PageAnalyzed(i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return models, nil
}

// translateAll builds the document's translation units and works
// through them in batches. It fails only when every batch fails;
// individual failed batches leave their units on source-text
// fallback.
func (o *Orchestrator) translateAll(ctx context.Context, models []*PageModel) ([][]model.TranslationUnit, error) {
	pageUnits := make([][]model.TranslationUnit, len(models))
	var pending []*model.TranslationUnit

	for i, pm := range models {
		units := make([]model.TranslationUnit, 0, len(pm.TextBlocks))
		for _, blockIndex := range pm.TextBlocks {
			unit := model.TranslationUnit{
				BlockIndex: blockIndex,
				Source:     pm.Blocks[blockIndex].Text,
				Status:     model.TranslationPending,
			}
			if !translate.Translatable(unit.Source) {
				unit.Status = model.TranslationSkipped
			}
			units = append(units, unit)
		}
		pageUnits[i] = units
		for j := range pageUnits[i] {
			if pageUnits[i][j].Status == model.TranslationPending {
				pending = append(pending, &pageUnits[i][j])
			}
		}
	}

	if o.config.MaxUnits > 0 && len(pending) > o.config.MaxUnits {
		o.logger.Warn("unit budget exceeded, surplus units keep source text",
			"units", len(pending), "budget", o.config.MaxUnits)
		for _, unit := range pending[o.config.MaxUnits:] {
			unit.Status = model.TranslationSkipped
		}
		pending = pending[:o.config.MaxUnits]
	}

	if len(pending) == 0 {
		return pageUnits, nil
	}

	batches := o.batchUnits(pending)
	total := len(batches)
	failed := 0
	for b, batch := range batches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		texts := make([]string, len(batch))
		for j, unit := range batch {
			texts[j] = unit.Source
		}

		translated, err := o.translateBatch(ctx, texts)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			o.logger.Warn("translation batch failed", "batch", b, "error", err)
			for _, unit := range batch {
				unit.Status = model.TranslationFailed
			}
			failed++
		} else {
			for j, unit := range batch {
				unit.Translated = translated[j]
				unit.Status = model.TranslationDone
			}
		}
		o.progress.BatchDone(b+1, total)
	}

	if failed == total {
		return nil, ErrTranslationFailed
	}
	return pageUnits, nil
}

// batchUnits splits pending units into batches bounded both by unit
// count and by cumulative source length.
func (o *Orchestrator) batchUnits(pending []*model.TranslationUnit) [][]*model.TranslationUnit {
	var batches [][]*model.TranslationUnit
	var current []*model.TranslationUnit
	chars := 0

	for _, unit := range pending {
		size := len([]rune(unit.Source))
		if len(current) > 0 && (len(current) >= o.config.BatchSize || chars+size > o.config.BatchChars) {
			batches = append(batches, current)
			current = nil
			chars = 0
		}
		current = append(current, unit)
		chars += size
	}
	if len(current) > 0 {
		batches = append(batches, current)
	}
	return batches
}

// translateBatch sends one batch with pacing and retries. Batches
// failing with a non-retryable error do not resend.
func (o *Orchestrator) translateBatch(ctx context.Context, texts []string) ([]string, error) {
	var out []string
	operation := func() error {
		if err := o.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		translated, err := o.translator.Translate(ctx, texts)
		if err != nil {
			var terr *translate.Error
			if errors.As(err, &terr) && !terr.Retryable() {
				return backoff.Permanent(err)
			}
			return err
		}
		out = translated
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), o.config.MaxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return out, nil
}

// translatedPage builds the render layout for one translated page.
func (o *Orchestrator) translatedPage(pm *PageModel, units []model.TranslationUnit) (model.PageLayout, PageReport) {
	page := model.PageLayout{
		Index:  pm.Content.Index,
		Width:  pm.Content.Width,
		Height: pm.Content.Height,
	}
	report := PageReport{
		Index:   pm.Content.Index,
		Blocks:  len(pm.Blocks),
		Columns: len(pm.Columns),
	}

	if pm.Err != nil {
		page.Passthrough = true
		report.Passthrough = true
		return page, report
	}

	for _, unit := range units {
		block := &pm.Blocks[unit.BlockIndex]
		plan := o.engine.Plan(block, unit)

		page.Covers = append(page.Covers, block.BBox)
		page.Texts = append(page.Texts, o.engine.Place(block, plan)...)
		if plan.Overflow {
			report.Overflows++
		}
		if plan.Fallback {
			report.Fallbacks++
		}
	}

	for _, region := range pm.Regions {
		if region.Kind == model.RegionFigure || region.Kind == model.RegionTable {
			page.Stamps = append(page.Stamps, model.FigureStamp{BBox: region.BBox})
			report.Figures++
		}
	}

	return page, report
}
