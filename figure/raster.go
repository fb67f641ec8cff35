package figure

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/calque-dev/calque/model"
)

// rasterize renders the primitives intersecting the crop box into a
// PNG. Page coordinates are bottom-left origin; raster coordinates are
// top-left, so the y axis flips during the transform.
func rasterize(content *model.PageContent, crop model.BBox, scale float64, fontData []byte) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	width := int(math.Ceil(crop.Width * scale))
	height := int(math.Ceil(crop.Height * scale))
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	// toRaster maps a page-space point into raster space.
	toRaster := func(x, y float64) (float64, float64) {
		return (x - crop.X) * scale, (crop.Top() - y) * scale
	}

	// Filled rectangles go under everything else.
	for _, rect := range content.Rects {
		if !rect.Fill || !rect.BBox.Intersects(crop) {
			continue
		}
		rx, ry := toRaster(rect.BBox.Left(), rect.BBox.Top())
		dc.SetRGB(0.9, 0.9, 0.9)
		dc.DrawRectangle(rx, ry, rect.BBox.Width*scale, rect.BBox.Height*scale)
		dc.Fill()
	}

	for _, img := range content.Images {
		if !img.BBox.Intersects(crop) {
			continue
		}
		if err := drawImage(dc, img, crop, scale); err != nil {
			return nil, err
		}
	}

	dc.SetRGB(0, 0, 0)
	for _, rect := range content.Rects {
		if !rect.Stroke || !rect.BBox.Intersects(crop) {
			continue
		}
		rx, ry := toRaster(rect.BBox.Left(), rect.BBox.Top())
		dc.SetLineWidth(scale)
		dc.DrawRectangle(rx, ry, rect.BBox.Width*scale, rect.BBox.Height*scale)
		dc.Stroke()
	}

	for _, rule := range content.Rules {
		if !rule.Box().Intersects(crop) {
			continue
		}
		x0, y0 := toRaster(rule.X0, rule.Y0)
		x1, y1 := toRaster(rule.X1, rule.Y1)
		lw := rule.LineWidth * scale
		if lw < 1 {
			lw = 1
		}
		dc.SetLineWidth(lw)
		dc.DrawLine(x0, y0, x1, y1)
		dc.Stroke()
	}

	if len(fontData) > 0 {
		if err := drawRuns(dc, content, crop, scale, fontData); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encoding figure raster: %w", err)
	}
	return buf.Bytes(), nil
}

// drawImage decodes an embedded image and scales it into its
// page-space box. Images that fail to decode render as a hatched
// placeholder so the unit still marks where the figure was.
func drawImage(dc *gg.Context, img model.ImagePrimitive, crop model.BBox, scale float64) error {
	x := (img.BBox.Left() - crop.X) * scale
	y := (crop.Top() - img.BBox.Top()) * scale
	w := int(math.Ceil(img.BBox.Width * scale))
	h := int(math.Ceil(img.BBox.Height * scale))
	if w < 1 || h < 1 {
		return nil
	}

	decoded, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		dc.SetRGB(0.8, 0.8, 0.8)
		dc.DrawRectangle(x, y, float64(w), float64(h))
		dc.Fill()
		return nil
	}

	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), decoded, decoded.Bounds(), xdraw.Over, nil)
	dc.DrawImage(scaled, int(x), int(y))
	return nil
}

// drawRuns paints the text runs overlapping the crop, so captions and
// labels embedded in a figure survive into the raster.
func drawRuns(dc *gg.Context, content *model.PageContent, crop model.BBox, scale float64, fontData []byte) error {
	parsed, err := truetype.Parse(fontData)
	if err != nil {
		return fmt.Errorf("parsing figure caption font: %w", err)
	}

	dc.SetRGB(0, 0, 0)
	for _, run := range content.Runs {
		if !run.BBox.Intersects(crop) {
			continue
		}
		face := truetype.NewFace(parsed, &truetype.Options{Size: run.FontSize * scale})
		dc.SetFontFace(face)
		x := (run.BBox.Left() - crop.X) * scale
		y := (crop.Top() - run.Baseline) * scale
		dc.DrawString(run.Text, x, y)
	}
	return nil
}
