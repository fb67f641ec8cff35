package codec

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/calque-dev/calque/model"
)

// thinRectLimit is the dimension below which a filled rectangle is
// treated as a drawn line. PDF producers commonly emit rules as very
// thin fills.
const thinRectLimit = 1.5

// stext document schema. Coordinates are top-left origin with y
// growing downward, matching MuPDF's structured-text output; Parse
// and Render convert to and from the engine's bottom-left convention.

type stextDocument struct {
	Pages []stextPage `json:"pages"`
}

type stextPage struct {
	Width  float64      `json:"width"`
	Height float64      `json:"height"`
	Blocks []stextBlock `json:"blocks"`
	Rects  []stextRect  `json:"rects,omitempty"`
}

type stextBlock struct {
	Type  string      `json:"type"`
	BBox  stextBBox   `json:"bbox"`
	Lines []stextLine `json:"lines,omitempty"`

	// image blocks only
	Data   []byte `json:"data,omitempty"`
	Format string `json:"format,omitempty"`
}

type stextBBox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

type stextLine struct {
	BBox stextBBox `json:"bbox"`
	Font stextFont `json:"font"`
	X    float64   `json:"x"`
	Y    float64   `json:"y"`
	Text string    `json:"text"`
}

type stextFont struct {
	Name   string  `json:"name"`
	Family string  `json:"family,omitempty"`
	Weight string  `json:"weight,omitempty"`
	Style  string  `json:"style,omitempty"`
	Size   float64 `json:"size"`
}

type stextRect struct {
	BBox      stextBBox `json:"bbox"`
	Stroke    bool      `json:"stroke"`
	Fill      bool      `json:"fill"`
	LineWidth float64   `json:"line_width,omitempty"`
}

// render document schema, the codec's output side.

type renderDocument struct {
	Pages []renderPage `json:"pages"`
}

type renderPage struct {
	Index       int          `json:"index"`
	Width       float64      `json:"width"`
	Height      float64      `json:"height"`
	Passthrough bool         `json:"passthrough,omitempty"`
	Blank       bool         `json:"blank,omitempty"`
	Covers      []stextBBox  `json:"covers,omitempty"`
	Texts       []renderText `json:"texts,omitempty"`
	Stamps      []stextBBox  `json:"stamps,omitempty"`
	Marks       []renderMark `json:"marks,omitempty"`
}

type renderText struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Size float64 `json:"size"`
}

type renderMark struct {
	BBox  stextBBox `json:"bbox"`
	Color string    `json:"color"`
	Label string    `json:"label,omitempty"`
}

// StextCodec speaks the structured-text JSON interchange format.
type StextCodec struct{}

// NewStextCodec creates the structured-text JSON codec.
func NewStextCodec() *StextCodec {
	return &StextCodec{}
}

// Name implements Codec.
func (c *StextCodec) Name() string {
	return "stext"
}

// Parse implements Codec.
func (c *StextCodec) Parse(ctx context.Context, data []byte) ([]model.PageContent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var doc stextDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("%w: no pages", ErrMalformedDocument)
	}

	pages := make([]model.PageContent, 0, len(doc.Pages))
	for i, page := range doc.Pages {
		if page.Width <= 0 || page.Height <= 0 {
			return nil, fmt.Errorf("%w: page %d has invalid dimensions", ErrMalformedDocument, i)
		}
		pages = append(pages, parsePage(i, page))
	}
	return pages, nil
}

func parsePage(index int, page stextPage) model.PageContent {
	content := model.PageContent{
		Index:  index,
		Width:  page.Width,
		Height: page.Height,
	}

	for _, block := range page.Blocks {
		switch block.Type {
		case "text":
			for _, line := range block.Lines {
				content.Runs = append(content.Runs, model.TextRun{
					Text:     line.Text,
					BBox:     boxUp(line.BBox, page.Height),
					FontName: line.Font.Name,
					FontSize: line.Font.Size,
					Baseline: page.Height - line.Y,
				})
			}
		case "image":
			content.Images = append(content.Images, model.ImagePrimitive{
				BBox:   boxUp(block.BBox, page.Height),
				Data:   block.Data,
				Format: block.Format,
			})
		}
	}

	for _, rect := range page.Rects {
		box := boxUp(rect.BBox, page.Height)
		if rule, ok := thinRectRule(box, rect); ok {
			content.Rules = append(content.Rules, rule)
			continue
		}
		content.Rects = append(content.Rects, model.RectPrimitive{
			BBox:   box,
			Stroke: rect.Stroke,
			Fill:   rect.Fill,
		})
	}

	return content
}

// thinRectRule converts a filled rectangle thinner than the limit
// into the rule it actually draws.
func thinRectRule(box model.BBox, rect stextRect) (model.RulePrimitive, bool) {
	if !rect.Fill {
		return model.RulePrimitive{}, false
	}
	switch {
	case box.Height < thinRectLimit && box.Width >= thinRectLimit:
		y := box.Bottom() + box.Height/2
		return model.RulePrimitive{
			X0: box.Left(), Y0: y, X1: box.Right(), Y1: y,
			LineWidth: box.Height,
		}, true
	case box.Width < thinRectLimit && box.Height >= thinRectLimit:
		x := box.Left() + box.Width/2
		return model.RulePrimitive{
			X0: x, Y0: box.Bottom(), X1: x, Y1: box.Top(),
			LineWidth: box.Width,
		}, true
	default:
		return model.RulePrimitive{}, false
	}
}

// Render implements Codec. The source bytes are not consulted: the
// rendered document references passthrough pages and stamp areas by
// position, and the downstream stamper owns the source.
func (c *StextCodec) Render(ctx context.Context, source []byte, pages []model.PageLayout) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := renderDocument{Pages: make([]renderPage, 0, len(pages))}
	for _, page := range pages {
		doc.Pages = append(doc.Pages, renderOnePage(page))
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding render document: %w", err)
	}
	return data, nil
}

func renderOnePage(page model.PageLayout) renderPage {
	out := renderPage{
		Index:       page.Index,
		Width:       page.Width,
		Height:      page.Height,
		Passthrough: page.Passthrough,
		Blank:       page.Blank,
	}

	for _, cover := range page.Covers {
		out.Covers = append(out.Covers, boxDown(cover, page.Height))
	}
	for _, text := range page.Texts {
		out.Texts = append(out.Texts, renderText{
			Text: text.Text,
			X:    text.X,
			Y:    page.Height - text.Y,
			Size: text.FontSize,
		})
	}
	for _, stamp := range page.Stamps {
		out.Stamps = append(out.Stamps, boxDown(stamp.BBox, page.Height))
	}
	for _, mark := range page.Marks {
		out.Marks = append(out.Marks, renderMark{
			BBox:  boxDown(mark.BBox, page.Height),
			Color: fmt.Sprintf("#%02x%02x%02x", mark.Color.R, mark.Color.G, mark.Color.B),
			Label: mark.Label,
		})
	}
	return out
}

// boxUp converts a y-down box into the engine's bottom-left origin.
func boxUp(b stextBBox, pageHeight float64) model.BBox {
	return model.NewBBox(b.X, pageHeight-b.Y-b.H, b.W, b.H)
}

// boxDown converts an engine box back into y-down coordinates.
func boxDown(b model.BBox, pageHeight float64) stextBBox {
	return stextBBox{X: b.Left(), Y: pageHeight - b.Top(), W: b.Width, H: b.Height}
}
