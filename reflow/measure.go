package reflow

import (
	"fmt"
	"unicode"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/math/fixed"
)

// Measurer reports the rendered width of text at a font size, in
// points.
type Measurer interface {
	Width(text string, size float64) float64
}

// RuneMeasurer approximates text width from per-rune advance factors.
// It needs no font file and is deterministic, which makes it the
// default for planning when the output font is not known up front.
type RuneMeasurer struct {
	// NarrowFactor is the advance of a Latin rune as a fraction of
	// the font size (default: 0.5)
	NarrowFactor float64

	// WideFactor is the advance of a CJK or full-width rune as a
	// fraction of the font size (default: 1.0)
	WideFactor float64
}

// NewRuneMeasurer creates a measurer with default advance factors.
func NewRuneMeasurer() *RuneMeasurer {
	return &RuneMeasurer{NarrowFactor: 0.5, WideFactor: 1.0}
}

// Width implements Measurer.
func (m *RuneMeasurer) Width(text string, size float64) float64 {
	var width float64
	for _, r := range text {
		if isWide(r) {
			width += size * m.WideFactor
		} else {
			width += size * m.NarrowFactor
		}
	}
	return width
}

// isWide reports whether a rune occupies a full em, which holds for
// CJK ideographs, kana, hangul and the full-width compatibility
// forms.
func isWide(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) ||
		unicode.Is(unicode.Hangul, r) ||
		(r >= 0xFF00 && r <= 0xFF60) ||
		(r >= 0x3000 && r <= 0x303F)
}

// FaceMeasurer measures text with real glyph advances from a parsed
// TrueType font.
type FaceMeasurer struct {
	font *truetype.Font
}

// NewFaceMeasurer parses TTF data into a measurer.
func NewFaceMeasurer(data []byte) (*FaceMeasurer, error) {
	parsed, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing measurement font: %w", err)
	}
	return &FaceMeasurer{font: parsed}, nil
}

// Width implements Measurer.
func (m *FaceMeasurer) Width(text string, size float64) float64 {
	face := truetype.NewFace(m.font, &truetype.Options{Size: size})
	defer face.Close()

	var total fixed.Int26_6
	prev := rune(-1)
	for _, r := range text {
		if prev >= 0 {
			total += face.Kern(prev, r)
		}
		advance, ok := face.GlyphAdvance(r)
		if !ok {
			// Missing glyph: charge a full em so the plan never
			// underestimates.
			advance = fixed.I(int(size))
		}
		total += advance
		prev = r
	}
	return float64(total) / 64
}
