package layout

import (
	"sort"
	"strings"

	"github.com/calque-dev/calque/model"
)

// Line is an ordered sequence of text runs sharing a baseline band.
// Lines are derived during merging and owned by exactly one Block.
type Line struct {
	// Runs are the member runs, sorted left to right
	Runs []model.TextRun

	// BBox is the union of the member runs' boxes
	BBox model.BBox

	// Baseline is the Y coordinate of the line's baseline
	Baseline float64

	// Text is the assembled text content of the line
	Text string
}

// FontSize returns the smallest font size among the line's runs.
// Merge thresholds scale with the smaller participant so large-type
// headings do not absorb nearby body text.
func (l *Line) FontSize() float64 {
	if len(l.Runs) == 0 {
		return 0
	}
	size := l.Runs[0].FontSize
	for _, r := range l.Runs[1:] {
		if r.FontSize < size {
			size = r.FontSize
		}
	}
	return size
}

// Block is a merged paragraph unit: an ordered sequence of lines with
// a stable reading-order index and, once segmentation has run, a
// column assignment.
type Block struct {
	// Lines are the member lines, top to bottom
	Lines []Line

	// BBox is always the union of the member lines' boxes
	BBox model.BBox

	// Index is the block's reading-order position (0-based)
	Index int

	// Column is the id of the assigned column band, or
	// UnassignedColumn before segmentation
	Column int

	// FontSize is the dominant (average) font size of the block
	FontSize float64

	// Text is the block's source text: line texts concatenated with
	// layout-aware whitespace
	Text string
}

// UnassignedColumn marks a block that has not been through column
// segmentation yet.
const UnassignedColumn = -1

// Recompute rebuilds the block's bounding box, dominant font size and
// text from its current lines. It must be called after any membership
// change; the box invariantly equals the union of the member lines.
func (b *Block) Recompute() {
	if len(b.Lines) == 0 {
		b.BBox = model.BBox{}
		b.FontSize = 0
		b.Text = ""
		return
	}

	boxes := make([]model.BBox, len(b.Lines))
	total := 0.0
	for i, line := range b.Lines {
		boxes[i] = line.BBox
		total += line.FontSize()
	}
	b.BBox = model.UnionAll(boxes)
	b.FontSize = total / float64(len(b.Lines))
	b.Text = joinLineTexts(b.Lines)
}

// LineCount returns the number of lines in the block.
func (b *Block) LineCount() int {
	return len(b.Lines)
}

// MergeConfig holds the size-relative thresholds for merging runs into
// lines and lines into blocks. All ratios are fractions of font size.
type MergeConfig struct {
	// BaselineGapRatio is the maximum baseline distance for two runs
	// to share a line, as a fraction of the smaller run's font size
	BaselineGapRatio float64

	// AdjacencyGapRatio is the maximum horizontal gap between a line
	// and the next run on the same baseline, as a fraction of the
	// smaller font size
	AdjacencyGapRatio float64

	// ParagraphGapRatio is the maximum vertical gap between two lines
	// of the same block, as a fraction of the average font size
	ParagraphGapRatio float64

	// MarginToleranceRatio is the left-margin alignment tolerance for
	// merging lines into a block, as a fraction of font size
	MarginToleranceRatio float64

	// SpanCoverage is the minimum fraction of the wider line's width
	// both lines must reach to count as spanning the same column
	SpanCoverage float64
}

// DefaultMergeConfig returns sensible defaults, validated against
// typical single- and double-column body text.
func DefaultMergeConfig() MergeConfig {
	return MergeConfig{
		BaselineGapRatio:     0.5,
		AdjacencyGapRatio:    1.0,
		ParagraphGapRatio:    1.5,
		MarginToleranceRatio: 1.0,
		SpanCoverage:         0.9,
	}
}

// Merger groups text runs into lines and lines into paragraph blocks.
type Merger struct {
	config MergeConfig
}

// NewMerger creates a merger with default configuration.
func NewMerger() *Merger {
	return &Merger{config: DefaultMergeConfig()}
}

// NewMergerWithConfig creates a merger with custom configuration.
func NewMergerWithConfig(config MergeConfig) *Merger {
	return &Merger{config: config}
}

// Merge turns an unordered set of text runs into an ordered list of
// blocks with reading-order indices assigned. Zero runs yield an
// empty list, not an error.
func (m *Merger) Merge(runs []model.TextRun) []Block {
	if len(runs) == 0 {
		return nil
	}

	lines := m.mergeIntoLines(runs)
	blocks := m.mergeIntoBlocks(lines)
	return m.assignReadingOrder(blocks)
}

// mergeIntoLines sorts runs top-to-bottom then left-to-right and
// merges consecutive runs that share a baseline band and are
// horizontally adjacent.
func (m *Merger) mergeIntoLines(runs []model.TextRun) []Line {
	sorted := make([]model.TextRun, len(runs))
	copy(sorted, runs)

	// Stable sort keeps extraction order for exact ties.
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		band := minFloat(a.FontSize, b.FontSize) * m.config.BaselineGapRatio
		if diff := a.Baseline - b.Baseline; diff > band || diff < -band {
			return a.Baseline > b.Baseline // top of page first
		}
		return a.BBox.X < b.BBox.X
	})

	var lines []Line
	var current []model.TextRun

	for _, run := range sorted {
		if len(current) == 0 {
			current = []model.TextRun{run}
			continue
		}

		last := current[len(current)-1]
		size := minFloat(run.FontSize, last.FontSize)
		sameBand := absFloat(run.Baseline-last.Baseline) <= size*m.config.BaselineGapRatio
		gap := run.BBox.Left() - last.BBox.Right()
		adjacent := gap <= size*m.config.AdjacencyGapRatio

		if sameBand && adjacent {
			current = append(current, run)
		} else {
			lines = append(lines, buildLine(current))
			current = []model.TextRun{run}
		}
	}
	lines = append(lines, buildLine(current))

	return lines
}

// mergeIntoBlocks merges lines into paragraph blocks when the vertical
// gap stays below the paragraph threshold and the lines are
// horizontally aligned. Each line joins the newest block it aligns
// with, so multi-column pages interleave their lines without shattering
// either column's paragraphs.
func (m *Merger) mergeIntoBlocks(lines []Line) []Block {
	if len(lines) == 0 {
		return nil
	}

	var blocks []Block
	for _, line := range lines {
		merged := false
		for i := len(blocks) - 1; i >= 0; i-- {
			last := blocks[i].Lines[len(blocks[i].Lines)-1]
			if m.sameParagraph(last, line) {
				blocks[i].Lines = append(blocks[i].Lines, line)
				merged = true
				break
			}
		}
		if !merged {
			blocks = append(blocks, Block{Lines: []Line{line}, Column: UnassignedColumn})
		}
	}

	for i := range blocks {
		blocks[i].Recompute()
	}
	return blocks
}

// sameParagraph reports whether the line directly below prev belongs
// to the same paragraph block.
func (m *Merger) sameParagraph(prev, line Line) bool {
	avgSize := (prev.FontSize() + line.FontSize()) / 2
	if avgSize <= 0 {
		return false
	}

	// Vertical gap between the bottom of prev and the top of line.
	// Lines arrive top to bottom, so a negative gap means overlap or
	// a same-band line to the side; those never merge vertically.
	gap := prev.BBox.Bottom() - line.BBox.Top()
	if gap < 0 || gap > avgSize*m.config.ParagraphGapRatio {
		return false
	}

	// Lines in neighboring columns can match on width alone, so both
	// alignment rules require the x intervals to overlap first.
	if prev.BBox.Right() <= line.BBox.Left() || line.BBox.Right() <= prev.BBox.Left() {
		return false
	}

	tolerance := avgSize * m.config.MarginToleranceRatio
	sharedMargin := absFloat(prev.BBox.Left()-line.BBox.Left()) <= tolerance

	widest := maxFloat(prev.BBox.Width, line.BBox.Width)
	bothSpan := widest > 0 &&
		prev.BBox.Width >= widest*m.config.SpanCoverage &&
		line.BBox.Width >= widest*m.config.SpanCoverage

	return sharedMargin || bothSpan
}

// assignReadingOrder sorts blocks top-to-bottom then left-to-right and
// assigns indices. Ties keep merge order for determinism.
func (m *Merger) assignReadingOrder(blocks []Block) []Block {
	sort.SliceStable(blocks, func(i, j int) bool {
		a, b := blocks[i], blocks[j]
		tolerance := minFloat(a.FontSize, b.FontSize) * m.config.BaselineGapRatio
		if diff := a.BBox.Top() - b.BBox.Top(); diff > tolerance || diff < -tolerance {
			return diff > 0 // top of page first
		}
		return a.BBox.Left() < b.BBox.Left()
	})

	for i := range blocks {
		blocks[i].Index = i
	}
	return blocks
}

// buildLine assembles a Line from runs already sorted left to right.
func buildLine(runs []model.TextRun) Line {
	boxes := make([]model.BBox, len(runs))
	baseline := runs[0].Baseline
	for i, r := range runs {
		boxes[i] = r.BBox
		if r.Baseline < baseline {
			baseline = r.Baseline
		}
	}

	return Line{
		Runs:     runs,
		BBox:     model.UnionAll(boxes),
		Baseline: baseline,
		Text:     assembleRunText(runs),
	}
}

// assembleRunText joins run texts, inserting a space where the
// horizontal gap between runs indicates word separation.
func assembleRunText(runs []model.TextRun) string {
	var sb strings.Builder
	for i, run := range runs {
		if i > 0 {
			prev := runs[i-1]
			gap := run.BBox.Left() - prev.BBox.Right()
			if gap > run.BBox.Height*0.1 {
				sb.WriteString(" ")
			}
		}
		sb.WriteString(run.Text)
	}
	return sb.String()
}

// joinLineTexts concatenates line texts with layout-aware whitespace:
// a hyphenated line break rejoins the split word, every other break
// becomes a single space.
func joinLineTexts(lines []Line) string {
	var sb strings.Builder
	for i, line := range lines {
		text := line.Text
		if i < len(lines)-1 && strings.HasSuffix(text, "-") {
			sb.WriteString(strings.TrimSuffix(text, "-"))
			continue
		}
		sb.WriteString(text)
		if i < len(lines)-1 {
			sb.WriteString(" ")
		}
	}
	return sb.String()
}

func absFloat(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
