//go:build ocr

package codec

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/otiai10/gosseract/v2"

	"github.com/calque-dev/calque/model"
)

// minOCRConfidence drops recognized lines below this Tesseract
// confidence. Low-confidence lines are usually texture misread as
// text.
const minOCRConfidence = 30.0

// OCRExtractor recovers text runs from scanned pages with Tesseract.
// Requires the "ocr" build tag and an installed Tesseract.
type OCRExtractor struct {
	client *gosseract.Client
}

// NewOCRExtractor creates an extractor recognizing the given
// languages, "+"-separated as Tesseract expects (e.g. "eng+jpn").
func NewOCRExtractor(languages string) (*OCRExtractor, error) {
	client := gosseract.NewClient()
	if languages != "" {
		if err := client.SetLanguage(languages); err != nil {
			client.Close()
			return nil, fmt.Errorf("setting OCR languages: %w", err)
		}
	}
	return &OCRExtractor{client: client}, nil
}

// Close releases Tesseract resources.
func (e *OCRExtractor) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// ExtractRuns implements PageExtractor. Every image on the page is
// recognized line by line; pixel boxes map back into page coordinates
// through the image's placement box.
func (e *OCRExtractor) ExtractRuns(ctx context.Context, content *model.PageContent) ([]model.TextRun, error) {
	var runs []model.TextRun
	for _, img := range content.Images {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		imageRuns, err := e.recognize(img)
		if err != nil {
			return nil, err
		}
		runs = append(runs, imageRuns...)
	}
	return runs, nil
}

func (e *OCRExtractor) recognize(img model.ImagePrimitive) ([]model.TextRun, error) {
	config, _, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return nil, fmt.Errorf("decoding scanned image: %w", err)
	}
	if config.Width <= 0 || config.Height <= 0 {
		return nil, nil
	}

	if err := e.client.SetImageFromBytes(img.Data); err != nil {
		return nil, fmt.Errorf("loading image into OCR: %w", err)
	}
	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("recognizing text lines: %w", err)
	}

	scaleX := img.BBox.Width / float64(config.Width)
	scaleY := img.BBox.Height / float64(config.Height)

	var runs []model.TextRun
	for _, box := range boxes {
		if box.Confidence < minOCRConfidence || box.Word == "" {
			continue
		}
		width := float64(box.Box.Dx()) * scaleX
		height := float64(box.Box.Dy()) * scaleY
		left := img.BBox.Left() + float64(box.Box.Min.X)*scaleX
		bottom := img.BBox.Top() - float64(box.Box.Max.Y)*scaleY

		runs = append(runs, model.TextRun{
			Text:     box.Word,
			BBox:     model.NewBBox(left, bottom, width, height),
			FontName: "ocr",
			FontSize: height * 0.8,
			Baseline: bottom + height*0.2,
		})
	}
	return runs, nil
}
