package layout

import (
	"github.com/calque-dev/calque/model"
)

// Column is a page-scoped vertical band holding one reading flow. A
// column references its member blocks by reading-order index; blocks
// carry the non-owning back-reference in their Column field.
type Column struct {
	// Index is the column id (0-based, left to right; a synthetic
	// full-width column sorts last)
	Index int

	// BBox is the column band: an x-interval spanning the page height
	BBox model.BBox

	// Blocks are the reading-order indices of the member blocks
	Blocks []int

	// FullWidth marks the synthetic column that collects blocks
	// straddling a detected boundary (titles, captions, headers)
	FullWidth bool
}

// SegmentConfig holds configuration for column segmentation.
type SegmentConfig struct {
	// MinGutterWidth is the minimum width of a near-empty x-interval
	// to count as a column gutter (default: 20 points)
	MinGutterWidth float64

	// OccupancyRatio is the fraction of total block height below
	// which a histogram bin counts as near-zero (default: 0.02)
	OccupancyRatio float64

	// BinWidth is the histogram bin width in points (default: 1)
	BinWidth float64

	// WideBlockRatio excludes blocks wider than this fraction of the
	// page width from the occupancy histogram, so full-width titles
	// and headers cannot mask a gutter (default: 0.5)
	WideBlockRatio float64
}

// DefaultSegmentConfig returns sensible default configuration.
func DefaultSegmentConfig() SegmentConfig {
	return SegmentConfig{
		MinGutterWidth: 20.0,
		OccupancyRatio: 0.02,
		BinWidth:       1.0,
		WideBlockRatio: 0.5,
	}
}

// Segmenter clusters blocks into column bands using a horizontal
// occupancy histogram.
type Segmenter struct {
	config SegmentConfig
}

// NewSegmenter creates a segmenter with default configuration.
func NewSegmenter() *Segmenter {
	return &Segmenter{config: DefaultSegmentConfig()}
}

// NewSegmenterWithConfig creates a segmenter with custom configuration.
func NewSegmenterWithConfig(config SegmentConfig) *Segmenter {
	return &Segmenter{config: config}
}

// Segment derives column bands for a page and assigns every block's
// Column field. Bands are non-overlapping and ordered left to right;
// blocks spanning more than one band go to a synthetic full-width
// column rather than being forced into a band. A page with no
// qualifying gutter yields exactly one column spanning the full width.
func (s *Segmenter) Segment(blocks []Block, pageWidth, pageHeight float64) []Column {
	fullPage := model.NewBBox(0, 0, pageWidth, pageHeight)

	if len(blocks) == 0 {
		return []Column{{Index: 0, BBox: fullPage}}
	}

	boundaries := s.findBoundaries(blocks, pageWidth)
	if len(boundaries) == 0 {
		single := Column{Index: 0, BBox: fullPage}
		for i := range blocks {
			blocks[i].Column = 0
			single.Blocks = append(single.Blocks, blocks[i].Index)
		}
		return []Column{single}
	}

	// Boundaries partition the page width into bands.
	edges := append(append([]float64{0}, boundaries...), pageWidth)
	columns := make([]Column, 0, len(edges)-1)
	for i := 0; i < len(edges)-1; i++ {
		columns = append(columns, Column{
			Index: i,
			BBox:  model.NewBBox(edges[i], 0, edges[i+1]-edges[i], pageHeight),
		})
	}

	// Straddle slack: a block only counts as occupying a band when it
	// reaches past the boundary by more than half a gutter width.
	slack := s.config.MinGutterWidth / 2

	var fullWidth *Column
	for i := range blocks {
		band := s.bandFor(blocks[i].BBox, boundaries, slack)
		if band < 0 {
			if fullWidth == nil {
				fullWidth = &Column{
					Index:     len(columns),
					BBox:      fullPage,
					FullWidth: true,
				}
			}
			blocks[i].Column = fullWidth.Index
			fullWidth.Blocks = append(fullWidth.Blocks, blocks[i].Index)
			continue
		}
		blocks[i].Column = band
		columns[band].Blocks = append(columns[band].Blocks, blocks[i].Index)
	}

	if fullWidth != nil {
		columns = append(columns, *fullWidth)
	}
	return columns
}

// findBoundaries builds the x-occupancy histogram and returns the
// midpoints of qualifying gutters, in increasing x order.
func (s *Segmenter) findBoundaries(blocks []Block, pageWidth float64) []float64 {
	binWidth := s.config.BinWidth
	if binWidth <= 0 {
		binWidth = 1.0
	}
	binCount := int(pageWidth/binWidth) + 1
	if binCount <= 0 {
		return nil
	}

	occupancy := make([]float64, binCount)
	totalHeight := 0.0
	minX, maxX := pageWidth, 0.0

	for _, b := range blocks {
		if s.config.WideBlockRatio > 0 && b.BBox.Width > pageWidth*s.config.WideBlockRatio {
			continue
		}

		totalHeight += b.BBox.Height
		if b.BBox.Left() < minX {
			minX = b.BBox.Left()
		}
		if b.BBox.Right() > maxX {
			maxX = b.BBox.Right()
		}

		lo := clampBin(int(b.BBox.Left()/binWidth), binCount)
		hi := clampBin(int(b.BBox.Right()/binWidth), binCount)
		for bin := lo; bin <= hi; bin++ {
			occupancy[bin] += b.BBox.Height
		}
	}

	threshold := totalHeight * s.config.OccupancyRatio

	// Only gaps inside the content extent qualify; page margins are
	// not gutters.
	loBin := clampBin(int(minX/binWidth), binCount)
	hiBin := clampBin(int(maxX/binWidth), binCount)

	var boundaries []float64
	gapStart := -1
	for bin := loBin; bin <= hiBin; bin++ {
		empty := occupancy[bin] <= threshold
		if empty && gapStart < 0 {
			gapStart = bin
		}
		if (!empty || bin == hiBin) && gapStart >= 0 {
			gapEnd := bin
			if empty {
				gapEnd = bin + 1
			}
			width := float64(gapEnd-gapStart) * binWidth
			if width >= s.config.MinGutterWidth {
				mid := (float64(gapStart) + float64(gapEnd)) / 2 * binWidth
				boundaries = append(boundaries, mid)
			}
			gapStart = -1
		}
	}

	return boundaries
}

// bandFor returns the band index containing the block, or -1 when the
// block materially straddles a boundary.
func (s *Segmenter) bandFor(box model.BBox, boundaries []float64, slack float64) int {
	for _, boundary := range boundaries {
		if box.Left() < boundary-slack && box.Right() > boundary+slack {
			return -1
		}
	}

	center := box.Center().X
	for i, boundary := range boundaries {
		if center < boundary {
			return i
		}
	}
	return len(boundaries)
}

func clampBin(bin, count int) int {
	if bin < 0 {
		return 0
	}
	if bin >= count {
		return count - 1
	}
	return bin
}
