package area

import (
	"testing"

	"github.com/calque-dev/calque/layout"
	"github.com/calque-dev/calque/model"
)

func textBlock(index int, x, y, width, height float64) layout.Block {
	return layout.Block{
		BBox:     model.NewBBox(x, y, width, height),
		Index:    index,
		Column:   layout.UnassignedColumn,
		FontSize: 10,
	}
}

func countKind(regions []model.Region, kind model.RegionKind) int {
	n := 0
	for _, r := range regions {
		if r.Kind == kind {
			n++
		}
	}
	return n
}

func TestClassifier_ImageOnlyPage(t *testing.T) {
	classifier := NewClassifier()
	// One image primitive at (100,100)-(300,300), no text.
	content := &model.PageContent{
		Width:  612,
		Height: 792,
		Images: []model.ImagePrimitive{
			{BBox: model.NewBBoxFromCorners(100, 100, 300, 300)},
		},
	}

	regions := classifier.Classify(content, nil)

	if got := countKind(regions, model.RegionText); got != 0 {
		t.Errorf("Expected 0 text regions, got %d", got)
	}
	if got := countKind(regions, model.RegionFigure); got != 1 {
		t.Fatalf("Expected 1 figure region, got %d", got)
	}
}

func TestClassifier_TextOnlyPage(t *testing.T) {
	classifier := NewClassifier()
	content := &model.PageContent{Width: 612, Height: 792}
	blocks := []layout.Block{
		textBlock(0, 72, 700, 400, 50),
		textBlock(1, 72, 600, 400, 50),
	}

	regions := classifier.Classify(content, blocks)

	if got := countKind(regions, model.RegionText); got != 2 {
		t.Errorf("Expected 2 text regions, got %d", got)
	}
	if got := len(TextBlocks(regions)); got != 2 {
		t.Errorf("Expected 2 translatable blocks, got %d", got)
	}
}

func TestClassifier_CaptionInsideFigureExcluded(t *testing.T) {
	classifier := NewClassifier()
	content := &model.PageContent{
		Width:  612,
		Height: 792,
		Images: []model.ImagePrimitive{
			{BBox: model.NewBBoxFromCorners(100, 400, 400, 700)},
		},
	}
	blocks := []layout.Block{
		textBlock(0, 150, 450, 200, 20), // label inside the image
		textBlock(1, 72, 100, 400, 50),  // body text well below
	}

	regions := classifier.Classify(content, blocks)

	indices := TextBlocks(regions)
	if len(indices) != 1 || indices[0] != 1 {
		t.Errorf("Expected only block 1 as text, got %v", indices)
	}
}

func TestClassifier_GridBecomesTable(t *testing.T) {
	classifier := NewClassifier()
	content := &model.PageContent{
		Width:  612,
		Height: 792,
		Rules: []model.RulePrimitive{
			{X0: 50, Y0: 100, X1: 250, Y1: 100},
			{X0: 50, Y0: 150, X1: 250, Y1: 150},
			{X0: 50, Y0: 200, X1: 250, Y1: 200},
			{X0: 50, Y0: 100, X1: 50, Y1: 200},
			{X0: 150, Y0: 100, X1: 150, Y1: 200},
			{X0: 250, Y0: 100, X1: 250, Y1: 200},
		},
	}
	blocks := []layout.Block{
		textBlock(0, 60, 110, 80, 30), // cell content, inside the grid
	}

	regions := classifier.Classify(content, blocks)

	if got := countKind(regions, model.RegionTable); got != 1 {
		t.Fatalf("Expected 1 table region, got %d", got)
	}
	if got := countKind(regions, model.RegionText); got != 0 {
		t.Errorf("Cell text should be excluded from text regions, got %d", got)
	}
}

func TestClassifier_TableOutranksFigure(t *testing.T) {
	classifier := NewClassifier()
	// An image placed inside a ruled grid: the table wins.
	content := &model.PageContent{
		Width:  612,
		Height: 792,
		Rules: []model.RulePrimitive{
			{X0: 50, Y0: 100, X1: 450, Y1: 100},
			{X0: 50, Y0: 300, X1: 450, Y1: 300},
			{X0: 50, Y0: 100, X1: 50, Y1: 300},
			{X0: 250, Y0: 100, X1: 250, Y1: 300},
			{X0: 450, Y0: 100, X1: 450, Y1: 300},
		},
		Images: []model.ImagePrimitive{
			{BBox: model.NewBBoxFromCorners(60, 110, 240, 290)},
		},
	}

	regions := classifier.Classify(content, nil)

	if got := countKind(regions, model.RegionTable); got != 1 {
		t.Fatalf("Expected 1 table region, got %d", got)
	}
	if got := countKind(regions, model.RegionFigure); got != 0 {
		t.Errorf("Figure inside a table should be dropped, got %d", got)
	}
}

func TestClassifier_StrokedRectFormsTable(t *testing.T) {
	classifier := NewClassifier()
	// A stroked rectangle with one internal divider line on each axis.
	content := &model.PageContent{
		Width:  612,
		Height: 792,
		Rects: []model.RectPrimitive{
			{BBox: model.NewBBoxFromCorners(100, 100, 300, 200), Stroke: true},
		},
		Rules: []model.RulePrimitive{
			{X0: 100, Y0: 150, X1: 300, Y1: 150},
			{X0: 200, Y0: 100, X1: 200, Y1: 200},
		},
	}

	regions := classifier.Classify(content, nil)

	if got := countKind(regions, model.RegionTable); got != 1 {
		t.Errorf("Expected 1 table region from rect plus dividers, got %d", got)
	}
}
