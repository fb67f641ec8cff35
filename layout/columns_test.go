package layout

import (
	"testing"

	"github.com/calque-dev/calque/model"
)

// makeBlock creates an already-merged block for segmentation tests.
func makeBlock(index int, x, y, width, height float64) Block {
	return Block{
		BBox:     model.NewBBox(x, y, width, height),
		Index:    index,
		Column:   UnassignedColumn,
		FontSize: 10,
	}
}

func TestSegmenter_NoBlocks_SingleColumn(t *testing.T) {
	segmenter := NewSegmenter()
	columns := segmenter.Segment(nil, 612, 792)

	if len(columns) != 1 {
		t.Fatalf("Expected 1 column, got %d", len(columns))
	}
	if columns[0].BBox.Width != 612 {
		t.Errorf("Single column should span the page width, got %f", columns[0].BBox.Width)
	}
}

func TestSegmenter_NoGutter_SingleColumn(t *testing.T) {
	segmenter := NewSegmenter()
	blocks := []Block{
		makeBlock(0, 72, 700, 280, 50),
		makeBlock(1, 72, 600, 275, 50),
	}

	columns := segmenter.Segment(blocks, 612, 792)
	if len(columns) != 1 {
		t.Fatalf("Expected 1 column, got %d", len(columns))
	}
	for _, b := range blocks {
		if b.Column != 0 {
			t.Errorf("Block %d not assigned to column 0: %d", b.Index, b.Column)
		}
	}
}

func TestSegmenter_TwoColumns(t *testing.T) {
	segmenter := NewSegmenter()
	// Left band 50..250, right band 330..530, gutter 80pt wide.
	blocks := []Block{
		makeBlock(0, 50, 700, 200, 60),
		makeBlock(1, 330, 700, 200, 60),
		makeBlock(2, 50, 600, 200, 60),
		makeBlock(3, 330, 600, 200, 60),
	}

	columns := segmenter.Segment(blocks, 612, 792)
	if len(columns) != 2 {
		t.Fatalf("Expected 2 columns, got %d", len(columns))
	}

	if blocks[0].Column != 0 || blocks[2].Column != 0 {
		t.Errorf("Left blocks should be in column 0")
	}
	if blocks[1].Column != 1 || blocks[3].Column != 1 {
		t.Errorf("Right blocks should be in column 1")
	}

	// The boundary sits in the gutter between the bands.
	boundary := columns[0].BBox.Right()
	if boundary <= 250 || boundary >= 330 {
		t.Errorf("Boundary %f not inside the gutter", boundary)
	}
}

func TestSegmenter_BandsOrderedAndDisjoint(t *testing.T) {
	segmenter := NewSegmenter()
	blocks := []Block{
		makeBlock(0, 40, 700, 150, 300),
		makeBlock(1, 240, 700, 150, 300),
		makeBlock(2, 440, 700, 150, 300),
	}

	columns := segmenter.Segment(blocks, 640, 792)

	var bands []Column
	for _, c := range columns {
		if !c.FullWidth {
			bands = append(bands, c)
		}
	}

	for i := 1; i < len(bands); i++ {
		if bands[i].BBox.Left() < bands[i-1].BBox.Right() {
			t.Errorf("Bands %d and %d overlap", i-1, i)
		}
		if bands[i].BBox.Left() <= bands[i-1].BBox.Left() {
			t.Errorf("Bands not ordered by increasing x")
		}
	}
}

func TestSegmenter_StraddlingTitleGoesFullWidth(t *testing.T) {
	segmenter := NewSegmenter()
	blocks := []Block{
		makeBlock(0, 100, 760, 412, 20), // title spanning both bands
		makeBlock(1, 50, 700, 200, 300),
		makeBlock(2, 330, 700, 200, 300),
	}

	columns := segmenter.Segment(blocks, 612, 792)

	if blocks[1].Column == blocks[0].Column || blocks[2].Column == blocks[0].Column {
		t.Errorf("Title should not share a column with body blocks")
	}

	var full *Column
	for i := range columns {
		if columns[i].FullWidth {
			full = &columns[i]
		}
	}
	if full == nil {
		t.Fatal("Expected a synthetic full-width column")
	}
	if blocks[0].Column != full.Index {
		t.Errorf("Title assigned to column %d, expected full-width column %d",
			blocks[0].Column, full.Index)
	}
	if len(full.Blocks) != 1 || full.Blocks[0] != 0 {
		t.Errorf("Full-width column should reference only the title block: %v", full.Blocks)
	}
}

func TestSegmenter_ColumnBackReferences(t *testing.T) {
	segmenter := NewSegmenter()
	blocks := []Block{
		makeBlock(0, 50, 700, 200, 60),
		makeBlock(1, 330, 700, 200, 60),
	}

	columns := segmenter.Segment(blocks, 612, 792)

	for _, col := range columns {
		for _, idx := range col.Blocks {
			if blocks[idx].Column != col.Index {
				t.Errorf("Block %d back-reference %d does not match column %d",
					idx, blocks[idx].Column, col.Index)
			}
		}
	}
}
