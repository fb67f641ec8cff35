package layout

import (
	"testing"

	"github.com/calque-dev/calque/model"
)

// makeRun creates a test run whose box sits on its baseline.
func makeRun(text string, x, baseline, width, fontSize float64) model.TextRun {
	return model.TextRun{
		Text:     text,
		BBox:     model.NewBBox(x, baseline, width, fontSize),
		FontSize: fontSize,
		Baseline: baseline,
	}
}

func TestMerger_EmptyInput(t *testing.T) {
	merger := NewMerger()
	blocks := merger.Merge(nil)

	if blocks != nil {
		t.Errorf("Expected no blocks for empty input, got %d", len(blocks))
	}
}

func TestMerger_SameBaselineSmallGap_OneLine(t *testing.T) {
	merger := NewMerger()
	// Two runs at the same baseline, font size 10, horizontal gap 2pt.
	runs := []model.TextRun{
		makeRun("Hello", 100, 700, 30, 10),
		makeRun("world", 132, 700, 30, 10), // gap = 2
	}

	blocks := merger.Merge(runs)
	if len(blocks) != 1 {
		t.Fatalf("Expected 1 block, got %d", len(blocks))
	}
	if blocks[0].LineCount() != 1 {
		t.Errorf("Expected 1 line, got %d", blocks[0].LineCount())
	}
	if blocks[0].Text != "Hello world" {
		t.Errorf("Expected 'Hello world', got %q", blocks[0].Text)
	}
}

func TestMerger_SameBaselineWideGap_SeparateLines(t *testing.T) {
	merger := NewMerger()
	// Gap of 200pt at font size 10 exceeds the adjacency threshold:
	// likely two columns, never one line.
	runs := []model.TextRun{
		makeRun("left", 50, 700, 40, 10),
		makeRun("right", 290, 700, 40, 10),
	}

	blocks := merger.Merge(runs)
	if len(blocks) != 2 {
		t.Fatalf("Expected 2 blocks, got %d", len(blocks))
	}
}

func TestMerger_CloseLines_OneBlock(t *testing.T) {
	merger := NewMerger()
	// Second line 14pt below the first at font size 10: inside the
	// paragraph threshold (1.5 x 10).
	runs := []model.TextRun{
		makeRun("Line one", 100, 700, 80, 10),
		makeRun("Line two", 100, 686, 80, 10),
	}

	blocks := merger.Merge(runs)
	if len(blocks) != 1 {
		t.Fatalf("Expected 1 block, got %d", len(blocks))
	}
	if blocks[0].LineCount() != 2 {
		t.Errorf("Expected 2 lines, got %d", blocks[0].LineCount())
	}
}

func TestMerger_WideVerticalGap_TwoBlocks(t *testing.T) {
	merger := NewMerger()
	// Vertical gap of 40pt at font size 10 exceeds the paragraph
	// threshold; the lines become separate blocks.
	runs := []model.TextRun{
		makeRun("First paragraph", 100, 700, 120, 10),
		makeRun("Second paragraph", 100, 650, 120, 10), // top at 660, gap 40
	}

	blocks := merger.Merge(runs)
	if len(blocks) != 2 {
		t.Fatalf("Expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].Text != "First paragraph" {
		t.Errorf("Reading order wrong, first block is %q", blocks[0].Text)
	}
	if blocks[1].Text != "Second paragraph" {
		t.Errorf("Reading order wrong, second block is %q", blocks[1].Text)
	}
}

func TestMerger_MisalignedLines_SeparateBlocks(t *testing.T) {
	merger := NewMerger()
	// Close vertically but with a 100pt left-margin difference and
	// very different widths: alignment fails, so two blocks.
	runs := []model.TextRun{
		makeRun("body text", 100, 700, 60, 10),
		makeRun("caption", 200, 686, 50, 10),
	}

	blocks := merger.Merge(runs)
	if len(blocks) != 2 {
		t.Fatalf("Expected 2 blocks, got %d", len(blocks))
	}
}

func TestMerger_JustifiedLines_SameBlock(t *testing.T) {
	merger := NewMerger()
	// Slightly different left edges but both spanning nearly the same
	// column width: justified body text merges.
	runs := []model.TextRun{
		makeRun("a justified line of text", 100, 700, 300, 10),
		makeRun("another justified line", 112, 686, 290, 10),
	}

	blocks := merger.Merge(runs)
	if len(blocks) != 1 {
		t.Fatalf("Expected 1 block, got %d", len(blocks))
	}
}

func TestMerger_TwoColumns_NoBlockCrossesGutter(t *testing.T) {
	merger := NewMerger()
	// Two justified 220pt columns at x=72 and x=320. Every line has the
	// same width, so width alone cannot tell the columns apart; the
	// gutter between x=292 and x=320 must still split them.
	runs := []model.TextRun{
		makeRun("left one", 72, 700, 220, 10),
		makeRun("right one", 320, 700, 220, 10),
		makeRun("left two", 72, 686, 220, 10),
		makeRun("right two", 320, 686, 220, 10),
		makeRun("left three", 72, 672, 220, 10),
		makeRun("right three", 320, 672, 220, 10),
	}

	blocks := merger.Merge(runs)
	if len(blocks) != 2 {
		t.Fatalf("Expected 2 blocks, got %d", len(blocks))
	}
	for _, block := range blocks {
		if block.BBox.Left() < 320 && block.BBox.Right() > 292 {
			t.Errorf("Block %q spans the gutter: %+v", block.Text, block.BBox)
		}
		if block.LineCount() != 3 {
			t.Errorf("Block %q has %d lines, expected 3", block.Text, block.LineCount())
		}
	}
	if blocks[0].Text != "left one left two left three" {
		t.Errorf("Left column block is %q", blocks[0].Text)
	}
	if blocks[1].Text != "right one right two right three" {
		t.Errorf("Right column block is %q", blocks[1].Text)
	}
}

func TestMerger_BlockBoxEqualsLineUnion(t *testing.T) {
	merger := NewMerger()
	runs := []model.TextRun{
		makeRun("one", 100, 700, 50, 10),
		makeRun("two", 100, 686, 70, 10),
		makeRun("three", 100, 672, 60, 10),
	}

	blocks := merger.Merge(runs)
	for _, block := range blocks {
		boxes := make([]model.BBox, len(block.Lines))
		for i, line := range block.Lines {
			boxes[i] = line.BBox
		}
		want := model.UnionAll(boxes)
		if block.BBox != want {
			t.Errorf("Block box %+v != union of line boxes %+v", block.BBox, want)
		}
	}
}

func TestMerger_ReadingOrderTopToBottomLeftToRight(t *testing.T) {
	merger := NewMerger()
	// Presented out of order; indices must follow page position.
	runs := []model.TextRun{
		makeRun("bottom", 100, 300, 60, 10),
		makeRun("top right", 300, 700, 60, 10),
		makeRun("top left", 100, 700, 60, 10),
	}

	blocks := merger.Merge(runs)
	if len(blocks) != 3 {
		t.Fatalf("Expected 3 blocks, got %d", len(blocks))
	}

	want := []string{"top left", "top right", "bottom"}
	for i, text := range want {
		if blocks[i].Text != text {
			t.Errorf("Block %d: expected %q, got %q", i, text, blocks[i].Text)
		}
		if blocks[i].Index != i {
			t.Errorf("Block %d has index %d", i, blocks[i].Index)
		}
	}
}

func TestMerger_HyphenatedLineBreakRejoinsWord(t *testing.T) {
	merger := NewMerger()
	runs := []model.TextRun{
		makeRun("transla-", 100, 700, 80, 10),
		makeRun("tion", 100, 686, 40, 10),
	}

	blocks := merger.Merge(runs)
	if len(blocks) != 1 {
		t.Fatalf("Expected 1 block, got %d", len(blocks))
	}
	if blocks[0].Text != "translation" {
		t.Errorf("Expected rejoined word 'translation', got %q", blocks[0].Text)
	}
}

func TestBlock_RecomputeAfterMembershipChange(t *testing.T) {
	line1 := buildLine([]model.TextRun{makeRun("a", 100, 700, 50, 10)})
	line2 := buildLine([]model.TextRun{makeRun("b", 100, 686, 90, 10)})

	block := Block{Lines: []Line{line1}, Column: UnassignedColumn}
	block.Recompute()
	if block.BBox != line1.BBox {
		t.Errorf("Single-line block box should equal line box")
	}

	block.Lines = append(block.Lines, line2)
	block.Recompute()
	want := line1.BBox.Union(line2.BBox)
	if block.BBox != want {
		t.Errorf("Block box %+v != union %+v after membership change", block.BBox, want)
	}
}
