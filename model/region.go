package model

// RegionKind classifies a page area.
type RegionKind int

const (
	RegionWhitespace RegionKind = iota
	RegionText
	RegionFigure
	RegionTable
)

// String returns a string representation of the region kind.
func (k RegionKind) String() string {
	switch k {
	case RegionText:
		return "text"
	case RegionFigure:
		return "figure"
	case RegionTable:
		return "table"
	default:
		return "whitespace"
	}
}

// Priority returns the overlap-resolution priority of the kind.
// Higher values win when regions overlap: Table > Figure > Text.
func (k RegionKind) Priority() int {
	switch k {
	case RegionTable:
		return 3
	case RegionFigure:
		return 2
	case RegionText:
		return 1
	default:
		return 0
	}
}

// Region is a classified page area. Non-whitespace regions on a page
// do not overlap after classification; every page point maps to at
// most one of them.
type Region struct {
	Kind RegionKind
	BBox BBox

	// BlockIndex is the reading-order index of the originating text
	// block for text regions, -1 otherwise.
	BlockIndex int
}

// FigureUnit is one rasterized figure or table crop, created once per
// detected figure on a page.
type FigureUnit struct {
	// BBox is the crop box in page coordinates, clipped to the page
	BBox BBox

	// Image is the rasterized crop, PNG encoded
	Image []byte

	// Region is the classified region the unit was built from
	Region Region

	// PageIndex is the zero-based index of the originating page
	PageIndex int
}
