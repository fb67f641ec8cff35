package area

import (
	"github.com/calque-dev/calque/model"
)

// GridConfig holds configuration for table grid detection.
type GridConfig struct {
	// AlignmentTolerance is the distance within which rule positions
	// count as the same grid line (default: 3 points)
	AlignmentTolerance float64

	// MinRuleLength filters out decorative strokes (default: 10 points)
	MinRuleLength float64

	// MinAlignedRules is the minimum number of distinct positions per
	// axis for a rule cluster to count as a grid (default: 2)
	MinAlignedRules int
}

// DefaultGridConfig returns sensible default configuration.
func DefaultGridConfig() GridConfig {
	return GridConfig{
		AlignmentTolerance: 3.0,
		MinRuleLength:      10.0,
		MinAlignedRules:    2,
	}
}

// GridDetector finds table grids in a page's ruled lines.
type GridDetector struct {
	config GridConfig
}

// NewGridDetector creates a grid detector with default configuration.
func NewGridDetector() *GridDetector {
	return &GridDetector{config: DefaultGridConfig()}
}

// NewGridDetectorWithConfig creates a grid detector with custom
// configuration.
func NewGridDetectorWithConfig(config GridConfig) *GridDetector {
	return &GridDetector{config: config}
}

// Detect clusters intersecting ruled lines and returns the bounding
// box of every cluster that forms a grid: at least MinAlignedRules
// distinct horizontal positions crossed by at least MinAlignedRules
// distinct vertical positions.
func (d *GridDetector) Detect(rules []model.RulePrimitive) []model.BBox {
	kept := make([]model.RulePrimitive, 0, len(rules))
	for _, r := range rules {
		if r.Length() >= d.config.MinRuleLength {
			kept = append(kept, r)
		}
	}
	if len(kept) < d.config.MinAlignedRules*2 {
		return nil
	}

	components := d.connectedComponents(kept)

	var grids []model.BBox
	for _, component := range components {
		if d.isGrid(component) {
			boxes := make([]model.BBox, len(component))
			for i, r := range component {
				boxes[i] = r.Box()
			}
			grids = append(grids, model.UnionAll(boxes))
		}
	}
	return grids
}

// connectedComponents groups rules whose boxes touch within the
// alignment tolerance.
func (d *GridDetector) connectedComponents(rules []model.RulePrimitive) [][]model.RulePrimitive {
	parent := make([]int, len(rules))
	for i := range parent {
		parent[i] = i
	}

	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	for i := 0; i < len(rules); i++ {
		boxI := rules[i].Box().Expand(d.config.AlignmentTolerance)
		for j := i + 1; j < len(rules); j++ {
			if boxI.Intersects(rules[j].Box().Expand(d.config.AlignmentTolerance)) {
				union(i, j)
			}
		}
	}

	groups := make(map[int][]model.RulePrimitive)
	for i, r := range rules {
		root := find(i)
		groups[root] = append(groups[root], r)
	}

	components := make([][]model.RulePrimitive, 0, len(groups))
	for _, g := range groups {
		components = append(components, g)
	}
	return components
}

// isGrid reports whether a rule cluster has enough distinct positions
// on both axes to be a table grid.
func (d *GridDetector) isGrid(rules []model.RulePrimitive) bool {
	var hPositions, vPositions []float64

	for _, r := range rules {
		if r.IsHorizontal() {
			hPositions = appendPosition(hPositions, (r.Y0+r.Y1)/2, d.config.AlignmentTolerance)
		} else {
			vPositions = appendPosition(vPositions, (r.X0+r.X1)/2, d.config.AlignmentTolerance)
		}
	}

	return len(hPositions) >= d.config.MinAlignedRules &&
		len(vPositions) >= d.config.MinAlignedRules
}

// appendPosition adds a position to the list unless an existing entry
// lies within the tolerance.
func appendPosition(positions []float64, pos, tolerance float64) []float64 {
	for _, p := range positions {
		diff := p - pos
		if diff < 0 {
			diff = -diff
		}
		if diff <= tolerance {
			return positions
		}
	}
	return append(positions, pos)
}
