package model

import "image/color"

// TranslationStatus tracks the lifecycle of one translation unit.
type TranslationStatus int

const (
	// TranslationPending means the unit has not been sent yet or the
	// response has not arrived.
	TranslationPending TranslationStatus = iota

	// TranslationDone means the collaborator returned a translation.
	TranslationDone

	// TranslationFailed means the collaborator reported failure for
	// the unit or its batch. Failed units fall back to source text.
	TranslationFailed

	// TranslationSkipped means the unit was filtered out before the
	// request (empty, too long, or otherwise untranslatable) and the
	// source text is used verbatim.
	TranslationSkipped
)

// String returns a string representation of the status.
func (s TranslationStatus) String() string {
	switch s {
	case TranslationDone:
		return "done"
	case TranslationFailed:
		return "failed"
	case TranslationSkipped:
		return "skipped"
	default:
		return "pending"
	}
}

// TranslationUnit pairs one text block with its substitute text. Units
// are mutated only by the orchestrator and the translation
// collaborator; the reflow engine reads them.
type TranslationUnit struct {
	// BlockIndex is the reading-order index of the source block
	BlockIndex int

	// Source is the block's source text
	Source string

	// Translated is the substitute text, empty until Status is Done
	Translated string

	// Status is the unit's translation lifecycle state
	Status TranslationStatus
}

// EffectiveText returns the text the layout should carry: the
// translation when available, the source text otherwise.
func (u TranslationUnit) EffectiveText() string {
	if u.Status == TranslationDone && u.Translated != "" {
		return u.Translated
	}
	return u.Source
}

// LayoutPlan is the reflow engine's per-block result: the font size
// and wrapped lines chosen for the substitute text, and whether the
// block had to grow past its original footprint.
type LayoutPlan struct {
	// BlockIndex is the reading-order index of the planned block
	BlockIndex int

	// FontSize is the chosen font size in points
	FontSize float64

	// Lines is the wrapped substitute text, top to bottom
	Lines []string

	// LineHeight is the vertical advance between consecutive lines
	LineHeight float64

	// Height is the stacked height of the wrapped lines; it exceeds
	// the original block height only when Overflow is set
	Height float64

	// Overflow is set when the text does not fit the original
	// footprint even at the minimum font size and the block grew
	Overflow bool

	// Fallback is set when the plan was built from the source text
	// because translation failed or was skipped
	Fallback bool
}

// PlacedText is one line of substitute text positioned for rendering.
type PlacedText struct {
	Text     string
	X        float64 // left edge
	Y        float64 // baseline
	FontSize float64
}

// FigureStamp marks a source-page area to be re-stamped unmodified
// into the rendered output.
type FigureStamp struct {
	BBox BBox
}

// OverlayMark is a colored, optionally labeled box for debug overlay
// output.
type OverlayMark struct {
	BBox  BBox
	Color color.RGBA
	Label string
}

// PageLayout is a render-ready page description consumed by the
// document codec. Exactly one of the content groups is typically
// populated per render target: translated output uses Covers, Texts
// and Stamps; figure-only output uses Stamps or Blank; overlay output
// uses Marks.
type PageLayout struct {
	// Index is the zero-based page index; output order always equals
	// source order
	Index int

	// Width and Height are the page dimensions in points
	Width  float64
	Height float64

	// Passthrough requests an unmodified copy of the source page,
	// used when a page's own processing failed
	Passthrough bool

	// Blank requests an intentionally empty page, used to keep page
	// counts aligned in the figure-only output
	Blank bool

	// Covers are boxes painted in the page background color to hide
	// original glyphs before substitute text is drawn
	Covers []BBox

	// Texts are the substitute text lines
	Texts []PlacedText

	// Stamps are source areas re-stamped without modification
	Stamps []FigureStamp

	// Marks are debug overlay boxes
	Marks []OverlayMark
}
