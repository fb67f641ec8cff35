package reflow

import (
	"strings"

	"github.com/calque-dev/calque/layout"
	"github.com/calque-dev/calque/model"
)

// fitState tracks where a block is in the fitting loop.
type fitState int

const (
	stateFitting fitState = iota
	stateWrapCheck
	stateFits
	stateShrink
	stateOverflow
)

// FitConfig holds configuration for the fitting loop.
type FitConfig struct {
	// LineHeightFactor converts font size to line advance
	// (default: 1.4)
	LineHeightFactor float64

	// ShrinkStep is how many points the font shrinks per failed fit
	// (default: 1.0)
	ShrinkStep float64

	// MinFontSize is the floor below which shrinking stops and the
	// plan is marked as overflowing (default: 8.0)
	MinFontSize float64

	// TargetScale adjusts the starting font size for the target
	// script, e.g. below 1.0 when translating into a denser script
	// (default: 1.0)
	TargetScale float64
}

// DefaultFitConfig returns sensible default configuration.
func DefaultFitConfig() FitConfig {
	return FitConfig{
		LineHeightFactor: 1.4,
		ShrinkStep:       1.0,
		MinFontSize:      8.0,
		TargetScale:      1.0,
	}
}

// Engine plans how translated text flows back into block boxes.
type Engine struct {
	config   FitConfig
	measurer Measurer
}

// NewEngine creates an engine with default configuration and the
// approximate rune measurer.
func NewEngine() *Engine {
	return NewEngineWithConfig(DefaultFitConfig(), nil)
}

// NewEngineWithConfig creates an engine with custom configuration. A
// nil measurer falls back to the approximate rune measurer.
func NewEngineWithConfig(config FitConfig, measurer Measurer) *Engine {
	if measurer == nil {
		measurer = NewRuneMeasurer()
	}
	return &Engine{config: config, measurer: measurer}
}

// Plan fits the unit's effective text into the block's box. A unit
// that failed or was skipped plans its source text instead, flagged as
// a fallback, so the output page never loses content. The same text
// at the same size always produces the same plan.
func (e *Engine) Plan(block *layout.Block, unit model.TranslationUnit) model.LayoutPlan {
	text := unit.EffectiveText()
	fallback := unit.Status != model.TranslationDone

	plan := model.LayoutPlan{
		BlockIndex: block.Index,
		Fallback:   fallback,
	}

	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		plan.FontSize = block.FontSize
		plan.LineHeight = block.FontSize * e.config.LineHeightFactor
		return plan
	}

	size := block.FontSize * e.config.TargetScale
	if size < e.config.MinFontSize {
		size = e.config.MinFontSize
	}

	state := stateFitting
	var lines []string
	var height float64

	for state != stateFits && state != stateOverflow {
		switch state {
		case stateFitting:
			lines = e.wrap(text, block.BBox.Width, size)
			state = stateWrapCheck

		case stateWrapCheck:
			height = float64(len(lines)) * size * e.config.LineHeightFactor
			switch {
			case height <= block.BBox.Height:
				state = stateFits
			case size-e.config.ShrinkStep >= e.config.MinFontSize:
				state = stateShrink
			default:
				state = stateOverflow
			}

		case stateShrink:
			size -= e.config.ShrinkStep
			state = stateFitting
		}
	}

	plan.FontSize = size
	plan.Lines = lines
	plan.LineHeight = size * e.config.LineHeightFactor
	plan.Height = height
	plan.Overflow = state == stateOverflow
	return plan
}

// Place converts a plan into positioned lines inside the block box.
// Lines stack downward from the top edge; an overflowing plan keeps
// emitting lines past the bottom edge.
func (e *Engine) Place(block *layout.Block, plan model.LayoutPlan) []model.PlacedText {
	placed := make([]model.PlacedText, 0, len(plan.Lines))
	y := block.BBox.Top() - plan.FontSize
	for _, line := range plan.Lines {
		placed = append(placed, model.PlacedText{
			Text:     line,
			X:        block.BBox.Left(),
			Y:        y,
			FontSize: plan.FontSize,
		})
		y -= plan.LineHeight
	}
	return placed
}

// wrap breaks text into lines no wider than the limit at the given
// size. Breaking prefers word boundaries; a single word wider than the
// limit breaks mid-word at rune granularity rather than overflowing
// horizontally.
func (e *Engine) wrap(text string, limit float64, size float64) []string {
	words := strings.Fields(text)
	var lines []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
	}

	for _, word := range words {
		if e.measurer.Width(word, size) > limit {
			flush()
			lines = append(lines, e.breakRunes(word, limit, size)...)
			continue
		}

		candidate := word
		if current.Len() > 0 {
			candidate = current.String() + " " + word
		}
		if e.measurer.Width(candidate, size) <= limit {
			current.Reset()
			current.WriteString(candidate)
			continue
		}

		flush()
		current.WriteString(word)
	}
	flush()

	if len(lines) == 0 {
		lines = append(lines, "")
	}
	return lines
}

// breakRunes splits an over-wide word into rune-boundary chunks that
// each fit the limit. At least one rune goes on every chunk so the
// split always terminates.
func (e *Engine) breakRunes(word string, limit float64, size float64) []string {
	var chunks []string
	runes := []rune(word)
	start := 0
	for start < len(runes) {
		end := start + 1
		for end < len(runes) && e.measurer.Width(string(runes[start:end+1]), size) <= limit {
			end++
		}
		chunks = append(chunks, string(runes[start:end]))
		start = end
	}
	return chunks
}
