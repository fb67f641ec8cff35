package pipeline

import (
	"fmt"
	"image/color"

	"github.com/calque-dev/calque/model"
)

// OverlayKind selects what a debug overlay shows.
type OverlayKind int

const (
	// OverlayColumns marks the detected column bands and their member
	// blocks.
	OverlayColumns OverlayKind = iota

	// OverlayAreas marks the classified regions by kind.
	OverlayAreas
)

// String returns a string representation of the kind.
func (k OverlayKind) String() string {
	switch k {
	case OverlayAreas:
		return "areas"
	default:
		return "columns"
	}
}

// Overlay palette.
var (
	columnColor    = color.RGBA{R: 0, G: 90, B: 200, A: 255}
	fullWidthColor = color.RGBA{R: 130, G: 130, B: 130, A: 255}
	blockColor     = color.RGBA{R: 0, G: 160, B: 220, A: 255}
	textColor      = color.RGBA{R: 0, G: 150, B: 60, A: 255}
	figureColor    = color.RGBA{R: 230, G: 130, B: 0, A: 255}
	tableColor     = color.RGBA{R: 200, G: 30, B: 30, A: 255}
)

// overlayMarks builds the marks for one page.
func overlayMarks(pm *PageModel, kind OverlayKind) []model.OverlayMark {
	if kind == OverlayAreas {
		return areaMarks(pm)
	}
	return columnMarks(pm)
}

// columnMarks draws each column band with its id and a thin box
// around every member block.
func columnMarks(pm *PageModel) []model.OverlayMark {
	var marks []model.OverlayMark
	for _, column := range pm.Columns {
		mark := model.OverlayMark{
			BBox:  column.BBox,
			Color: columnColor,
			Label: fmt.Sprintf("column %d", column.Index),
		}
		if column.FullWidth {
			mark.Color = fullWidthColor
			mark.Label = "full width"
		}
		marks = append(marks, mark)
	}
	for _, block := range pm.Blocks {
		marks = append(marks, model.OverlayMark{
			BBox:  block.BBox,
			Color: blockColor,
			Label: fmt.Sprintf("block %d", block.Index),
		})
	}
	return marks
}

// areaMarks draws every classified region colored by kind.
func areaMarks(pm *PageModel) []model.OverlayMark {
	var marks []model.OverlayMark
	for _, region := range pm.Regions {
		mark := model.OverlayMark{BBox: region.BBox}
		switch region.Kind {
		case model.RegionFigure:
			mark.Color = figureColor
			mark.Label = "figure"
		case model.RegionTable:
			mark.Color = tableColor
			mark.Label = "table"
		default:
			mark.Color = textColor
			mark.Label = fmt.Sprintf("text %d", region.BlockIndex)
		}
		marks = append(marks, mark)
	}
	return marks
}
