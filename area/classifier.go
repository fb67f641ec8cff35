package area

import (
	"github.com/calque-dev/calque/layout"
	"github.com/calque-dev/calque/model"
)

// ClassifyConfig holds configuration for region classification.
type ClassifyConfig struct {
	// OverlapTolerance is the fraction of a block's own area that may
	// intersect a figure or table region before the block is excluded
	// from translatable text (default: 0.2)
	OverlapTolerance float64

	// Grid is the table grid detection configuration
	Grid GridConfig
}

// DefaultClassifyConfig returns sensible default configuration.
func DefaultClassifyConfig() ClassifyConfig {
	return ClassifyConfig{
		OverlapTolerance: 0.2,
		Grid:             DefaultGridConfig(),
	}
}

// Classifier partitions page area into classified regions.
type Classifier struct {
	config ClassifyConfig
	grid   *GridDetector
}

// NewClassifier creates a classifier with default configuration.
func NewClassifier() *Classifier {
	return NewClassifierWithConfig(DefaultClassifyConfig())
}

// NewClassifierWithConfig creates a classifier with custom
// configuration.
func NewClassifierWithConfig(config ClassifyConfig) *Classifier {
	return &Classifier{
		config: config,
		grid:   NewGridDetectorWithConfig(config.Grid),
	}
}

// Classify produces the page's regions from its raw primitives and
// merged blocks. Table regions come from ruled-line grids, figure
// regions from image primitives, text regions from blocks that do not
// sit inside a figure or table. Figure regions swallowed by a table
// are dropped, and blocks overlapping a figure or table beyond the
// tolerance are excluded from text (kept only in the raster capture).
func (c *Classifier) Classify(content *model.PageContent, blocks []layout.Block) []model.Region {
	var regions []model.Region

	// Tables first: highest priority. Stroked rectangles contribute
	// their edges, since table borders are often drawn as rects.
	rules := append([]model.RulePrimitive{}, content.Rules...)
	rules = append(rules, rectEdges(content.Rects)...)

	tables := c.grid.Detect(rules)
	for _, box := range tables {
		regions = append(regions, model.Region{
			Kind:       model.RegionTable,
			BBox:       box,
			BlockIndex: -1,
		})
	}

	// Every image primitive becomes a figure region unless a table
	// region already claims its area.
	for _, img := range content.Images {
		if c.coveredBy(img.BBox, regions, model.RegionTable) {
			continue
		}
		regions = append(regions, model.Region{
			Kind:       model.RegionFigure,
			BBox:       img.BBox,
			BlockIndex: -1,
		})
	}

	// Blocks not captured by a figure or table become text regions.
	for _, block := range blocks {
		if c.excludedBlock(block, regions) {
			continue
		}
		regions = append(regions, model.Region{
			Kind:       model.RegionText,
			BBox:       block.BBox,
			BlockIndex: block.Index,
		})
	}

	return regions
}

// TextBlocks returns the reading-order indices of blocks that
// survived classification as translatable text.
func TextBlocks(regions []model.Region) []int {
	var indices []int
	for _, r := range regions {
		if r.Kind == model.RegionText {
			indices = append(indices, r.BlockIndex)
		}
	}
	return indices
}

// coveredBy reports whether the box overlaps a region of the given
// kind beyond the tolerance fraction of the box's own area.
func (c *Classifier) coveredBy(box model.BBox, regions []model.Region, kind model.RegionKind) bool {
	area := box.Area()
	if area <= 0 {
		return false
	}
	for _, r := range regions {
		if r.Kind != kind {
			continue
		}
		if box.Intersection(r.BBox).Area() > area*c.config.OverlapTolerance {
			return true
		}
	}
	return false
}

// excludedBlock reports whether the block sits inside a figure or
// table region beyond the tolerance fraction of its own area.
func (c *Classifier) excludedBlock(block layout.Block, regions []model.Region) bool {
	area := block.BBox.Area()
	if area <= 0 {
		return true
	}
	for _, r := range regions {
		if r.Kind != model.RegionFigure && r.Kind != model.RegionTable {
			continue
		}
		if block.BBox.Intersection(r.BBox).Area() > area*c.config.OverlapTolerance {
			return true
		}
	}
	return false
}

// rectEdges decomposes stroked rectangles into their four edge rules.
func rectEdges(rects []model.RectPrimitive) []model.RulePrimitive {
	var rules []model.RulePrimitive
	for _, rect := range rects {
		if !rect.Stroke {
			continue
		}
		b := rect.BBox
		rules = append(rules,
			model.RulePrimitive{X0: b.Left(), Y0: b.Bottom(), X1: b.Right(), Y1: b.Bottom()},
			model.RulePrimitive{X0: b.Left(), Y0: b.Top(), X1: b.Right(), Y1: b.Top()},
			model.RulePrimitive{X0: b.Left(), Y0: b.Bottom(), X1: b.Left(), Y1: b.Top()},
			model.RulePrimitive{X0: b.Right(), Y0: b.Bottom(), X1: b.Right(), Y1: b.Top()},
		)
	}
	return rules
}
