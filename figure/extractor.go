package figure

import (
	"fmt"

	"github.com/calque-dev/calque/model"
)

// ExtractConfig holds configuration for figure extraction.
type ExtractConfig struct {
	// ProximityGap is the maximum distance between two figure or
	// table regions to be unioned into one unit (default: 10 points)
	ProximityGap float64

	// Padding is added around each unit's box before clipping to the
	// page boundary (default: 2 points)
	Padding float64

	// Scale is the rasterization scale in pixels per point
	// (default: 2.0, roughly 144 DPI)
	Scale float64

	// FontData optionally provides a TTF font so caption runs inside
	// the crop are drawn as glyphs; without it, text inside figures
	// is omitted from the raster
	FontData []byte
}

// DefaultExtractConfig returns sensible default configuration.
func DefaultExtractConfig() ExtractConfig {
	return ExtractConfig{
		ProximityGap: 10.0,
		Padding:      2.0,
		Scale:        2.0,
	}
}

// Extractor builds rasterized figure units from classified regions.
type Extractor struct {
	config ExtractConfig
}

// NewExtractor creates an extractor with default configuration.
func NewExtractor() *Extractor {
	return &Extractor{config: DefaultExtractConfig()}
}

// NewExtractorWithConfig creates an extractor with custom
// configuration.
func NewExtractorWithConfig(config ExtractConfig) *Extractor {
	return &Extractor{config: config}
}

// Extract returns one rasterized unit per merged figure/table region
// on the page. A page with no such regions returns zero units; the
// caller is responsible for emitting its blank-page marker.
func (e *Extractor) Extract(content *model.PageContent, regions []model.Region) ([]model.FigureUnit, error) {
	var graphic []model.Region
	for _, r := range regions {
		if r.Kind == model.RegionFigure || r.Kind == model.RegionTable {
			graphic = append(graphic, r)
		}
	}
	if len(graphic) == 0 {
		return nil, nil
	}

	merged := e.mergeByProximity(graphic)
	page := content.Bounds()

	units := make([]model.FigureUnit, 0, len(merged))
	for _, region := range merged {
		crop := region.BBox.Expand(e.config.Padding).Clip(page)
		if !crop.IsValid() {
			continue
		}

		img, err := rasterize(content, crop, e.config.Scale, e.config.FontData)
		if err != nil {
			return nil, fmt.Errorf("rasterizing figure at %+v: %w", crop, err)
		}

		units = append(units, model.FigureUnit{
			BBox:      crop,
			Image:     img,
			Region:    region,
			PageIndex: content.Index,
		})
	}

	return units, nil
}

// mergeByProximity unions regions whose boxes lie within the
// proximity gap. The merged region keeps the highest-priority kind of
// its members, so a table absorbed into a figure group still renders
// with table priority.
func (e *Extractor) mergeByProximity(regions []model.Region) []model.Region {
	half := e.config.ProximityGap / 2

	parent := make([]int, len(regions))
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

	for i := 0; i < len(regions); i++ {
		boxI := regions[i].BBox.Expand(half)
		for j := i + 1; j < len(regions); j++ {
			if boxI.Intersects(regions[j].BBox.Expand(half)) {
				parent[find(i)] = find(j)
			}
		}
	}

	groups := make(map[int][]model.Region)
	var order []int
	for i := range regions {
		root := find(i)
		if _, seen := groups[root]; !seen {
			order = append(order, root)
		}
		groups[root] = append(groups[root], regions[i])
	}

	merged := make([]model.Region, 0, len(order))
	for _, root := range order {
		group := groups[root]
		result := group[0]
		for _, r := range group[1:] {
			result.BBox = result.BBox.Union(r.BBox)
			if r.Kind.Priority() > result.Kind.Priority() {
				result.Kind = r.Kind
			}
		}
		result.BlockIndex = -1
		merged = append(merged, result)
	}
	return merged
}
