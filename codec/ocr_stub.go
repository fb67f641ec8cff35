//go:build !ocr

package codec

import (
	"context"
	"errors"

	"github.com/calque-dev/calque/model"
)

// ErrOCRNotEnabled is returned when OCR extraction is requested but
// OCR support was not compiled in. Rebuild with -tags ocr to enable
// it; Tesseract must be installed on the system.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// OCRExtractor is the stub used without the "ocr" build tag.
type OCRExtractor struct{}

// NewOCRExtractor returns ErrOCRNotEnabled.
func NewOCRExtractor(languages string) (*OCRExtractor, error) {
	return nil, ErrOCRNotEnabled
}

// Close is a no-op for the stub extractor.
func (e *OCRExtractor) Close() error {
	return nil
}

// ExtractRuns returns ErrOCRNotEnabled.
func (e *OCRExtractor) ExtractRuns(ctx context.Context, content *model.PageContent) ([]model.TextRun, error) {
	return nil, ErrOCRNotEnabled
}
