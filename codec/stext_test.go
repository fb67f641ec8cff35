package codec

import (
	"context"
	"encoding/json"
	"errors"
	"image/color"
	"testing"

	"github.com/calque-dev/calque/model"
)

const samplePage = `{
  "pages": [
    {
      "width": 612,
      "height": 792,
      "blocks": [
        {
          "type": "text",
          "bbox": {"x": 72, "y": 72, "w": 200, "h": 30},
          "lines": [
            {
              "bbox": {"x": 72, "y": 72, "w": 200, "h": 12},
              "font": {"name": "Times-Roman", "size": 12},
              "x": 72, "y": 82, "text": "First line of text"
            },
            {
              "bbox": {"x": 72, "y": 88, "w": 180, "h": 12},
              "font": {"name": "Times-Roman", "size": 12},
              "x": 72, "y": 98, "text": "Second line of text"
            }
          ]
        },
        {
          "type": "image",
          "bbox": {"x": 300, "y": 400, "w": 200, "h": 150},
          "format": "png"
        }
      ],
      "rects": [
        {"bbox": {"x": 72, "y": 120, "w": 400, "h": 0.8}, "fill": true},
        {"bbox": {"x": 100, "y": 200, "w": 200, "h": 100}, "stroke": true}
      ]
    }
  ]
}`

func TestStextCodec_ParsePage(t *testing.T) {
	parsed, err := NewStextCodec().Parse(context.Background(), []byte(samplePage))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(parsed) != 1 {
		t.Fatalf("Expected 1 page, got %d", len(parsed))
	}

	page := parsed[0]
	if page.Width != 612 || page.Height != 792 {
		t.Errorf("Unexpected page size %gx%g", page.Width, page.Height)
	}
	if len(page.Runs) != 2 {
		t.Fatalf("Expected 2 text runs, got %d", len(page.Runs))
	}

	// y-down 72 with height 12 on a 792-point page puts the box
	// bottom at 708; the baseline at y-down 82 becomes 710.
	first := page.Runs[0]
	if first.BBox.Bottom() != 708 {
		t.Errorf("Expected run bottom 708, got %g", first.BBox.Bottom())
	}
	if first.Baseline != 710 {
		t.Errorf("Expected baseline 710, got %g", first.Baseline)
	}
	if first.FontSize != 12 || first.FontName != "Times-Roman" {
		t.Errorf("Font not carried through: %q %g", first.FontName, first.FontSize)
	}

	if len(page.Images) != 1 {
		t.Fatalf("Expected 1 image, got %d", len(page.Images))
	}
	if got := page.Images[0].BBox; got.Left() != 300 || got.Top() != 392 {
		t.Errorf("Image box not converted: %+v", got)
	}
}

func TestStextCodec_ThinFillBecomesRule(t *testing.T) {
	parsed, err := NewStextCodec().Parse(context.Background(), []byte(samplePage))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	page := parsed[0]
	if len(page.Rules) != 1 {
		t.Fatalf("Expected the thin fill to parse as 1 rule, got %d", len(page.Rules))
	}
	rule := page.Rules[0]
	if !rule.IsHorizontal() {
		t.Error("Thin wide fill should become a horizontal rule")
	}
	if rule.X0 != 72 || rule.X1 != 472 {
		t.Errorf("Rule endpoints wrong: %g to %g", rule.X0, rule.X1)
	}

	if len(page.Rects) != 1 {
		t.Fatalf("Expected the stroked rect to stay a rect, got %d", len(page.Rects))
	}
	if !page.Rects[0].Stroke {
		t.Error("Stroke flag lost on parse")
	}
}

func TestStextCodec_MalformedInput(t *testing.T) {
	codec := NewStextCodec()
	tests := []struct {
		name string
		data string
	}{
		{"not json", "%PDF-1.7 garbage"},
		{"no pages", `{"pages": []}`},
		{"bad dimensions", `{"pages": [{"width": 0, "height": 792}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Parse(context.Background(), []byte(tt.data))
			if !errors.Is(err, ErrMalformedDocument) {
				t.Errorf("Expected ErrMalformedDocument, got %v", err)
			}
		})
	}
}

func TestStextCodec_RenderPage(t *testing.T) {
	codec := NewStextCodec()
	pages := []model.PageLayout{
		{
			Index:  0,
			Width:  612,
			Height: 792,
			Covers: []model.BBox{model.NewBBox(72, 700, 200, 30)},
			Texts: []model.PlacedText{
				{Text: "翻訳された行", X: 72, Y: 710, FontSize: 12},
			},
			Stamps: []model.FigureStamp{
				{BBox: model.NewBBox(300, 242, 200, 150)},
			},
		},
		{Index: 1, Width: 612, Height: 792, Blank: true},
		{Index: 2, Width: 612, Height: 792, Passthrough: true},
	}

	data, err := codec.Render(context.Background(), nil, pages)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	var doc renderDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Render output is not valid JSON: %v", err)
	}
	if len(doc.Pages) != 3 {
		t.Fatalf("Expected 3 rendered pages, got %d", len(doc.Pages))
	}

	first := doc.Pages[0]
	if len(first.Covers) != 1 || len(first.Texts) != 1 || len(first.Stamps) != 1 {
		t.Fatalf("Page content groups missing: %+v", first)
	}
	// Baseline 710 on a 792-point page is y-down 82.
	if first.Texts[0].Y != 82 {
		t.Errorf("Expected y-down baseline 82, got %g", first.Texts[0].Y)
	}
	// Cover top at 730 becomes y-down 62.
	if first.Covers[0].Y != 62 {
		t.Errorf("Expected y-down cover top 62, got %g", first.Covers[0].Y)
	}

	if !doc.Pages[1].Blank {
		t.Error("Blank flag lost on render")
	}
	if !doc.Pages[2].Passthrough {
		t.Error("Passthrough flag lost on render")
	}
}

func TestStextCodec_RenderMarksCarryColor(t *testing.T) {
	codec := NewStextCodec()
	pages := []model.PageLayout{
		{
			Index:  0,
			Width:  612,
			Height: 792,
			Marks: []model.OverlayMark{
				{
					BBox:  model.NewBBox(10, 10, 50, 50),
					Color: color.RGBA{R: 255, G: 0, B: 0, A: 255},
					Label: "column 0",
				},
			},
		},
	}

	data, err := codec.Render(context.Background(), nil, pages)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	var doc renderDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Render output is not valid JSON: %v", err)
	}
	mark := doc.Pages[0].Marks[0]
	if mark.Color != "#ff0000" {
		t.Errorf("Expected #ff0000, got %s", mark.Color)
	}
	if mark.Label != "column 0" {
		t.Errorf("Label lost: %q", mark.Label)
	}
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()

	c, err := registry.Get("stext")
	if err != nil {
		t.Fatalf("Built-in codec missing: %v", err)
	}
	if c.Name() != "stext" {
		t.Errorf("Unexpected codec name %q", c.Name())
	}

	if _, err := registry.Get("docx"); err == nil {
		t.Error("Expected an error for an unregistered codec")
	}

	if got := registry.List(); len(got) != 1 {
		t.Errorf("Expected 1 registered codec, got %v", got)
	}
}
