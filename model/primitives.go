package model

// TextRun is the smallest extracted text unit: a contiguous span of
// characters sharing a font and baseline. Runs are immutable once
// extracted and are owned by the page that produced them.
type TextRun struct {
	// Text is the decoded character content of the run
	Text string

	// BBox is the run's bounding box in page coordinates
	BBox BBox

	// FontName is the resource name of the run's font
	FontName string

	// FontSize is the nominal font size in points
	FontSize float64

	// Baseline is the Y coordinate of the text baseline
	Baseline float64
}

// ImagePrimitive is a placed raster image extracted from a page.
type ImagePrimitive struct {
	// BBox is the placement box in page coordinates
	BBox BBox

	// Data is the encoded image bytes (PNG, JPEG, TIFF, ...)
	Data []byte

	// Format is the encoding of Data, when known
	Format string
}

// RectPrimitive is a filled or stroked rectangle from the page's
// vector content.
type RectPrimitive struct {
	BBox   BBox
	Stroke bool
	Fill   bool
}

// RulePrimitive is a straight ruled line from the page's vector
// content. Horizontal and vertical rules are the raw material for
// table grid detection.
type RulePrimitive struct {
	X0, Y0 float64
	X1, Y1 float64

	// LineWidth is the stroke width in points
	LineWidth float64
}

// IsHorizontal reports whether the rule runs (nearly) horizontally.
func (r RulePrimitive) IsHorizontal() bool {
	return abs(r.Y1-r.Y0) <= abs(r.X1-r.X0)
}

// IsVertical reports whether the rule runs (nearly) vertically.
func (r RulePrimitive) IsVertical() bool {
	return !r.IsHorizontal()
}

// Length returns the rule's extent along its dominant axis.
func (r RulePrimitive) Length() float64 {
	if r.IsHorizontal() {
		return abs(r.X1 - r.X0)
	}
	return abs(r.Y1 - r.Y0)
}

// Box returns the rule's bounding box.
func (r RulePrimitive) Box() BBox {
	return NewBBoxFromCorners(r.X0, r.Y0, r.X1, r.Y1)
}

// PageContent is the canonical in-memory representation of one page's
// extracted primitives, as produced by a document codec or extraction
// backend.
type PageContent struct {
	// Index is the zero-based page index in the source document
	Index int

	// Width and Height are the page dimensions in points
	Width  float64
	Height float64

	// Runs are the page's text runs, in extraction order
	Runs []TextRun

	// Images are the page's placed raster images
	Images []ImagePrimitive

	// Rects are the page's rectangle primitives
	Rects []RectPrimitive

	// Rules are the page's ruled lines
	Rules []RulePrimitive
}

// Bounds returns the page bounding box.
func (p *PageContent) Bounds() BBox {
	return BBox{Width: p.Width, Height: p.Height}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
