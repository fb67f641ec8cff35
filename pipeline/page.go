package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/calque-dev/calque/area"
	"github.com/calque-dev/calque/codec"
	"github.com/calque-dev/calque/layout"
	"github.com/calque-dev/calque/model"
)

// PageModel is the cached result of one page's layout analysis.
type PageModel struct {
	// Content is the page's parsed primitive content
	Content *model.PageContent

	// Blocks are the merged blocks in reading order
	Blocks []layout.Block

	// Columns are the detected column bands
	Columns []layout.Column

	// Regions is the page's area classification
	Regions []model.Region

	// TextBlocks are the reading-order indices of translatable blocks
	TextBlocks []int

	// Err records a per-page analysis failure; the page degrades to
	// passthrough instead of failing the run
	Err error
}

// pageAnalyzer runs the layout stages for one page.
type pageAnalyzer struct {
	merger     *layout.Merger
	segmenter  *layout.Segmenter
	classifier *area.Classifier
	extractor  codec.PageExtractor
}

// analyze builds a page model from parsed content. A page whose text
// lives only inside raster images goes through the text extractor
// first, when one is configured.
func (a *pageAnalyzer) analyze(ctx context.Context, content *model.PageContent) *PageModel {
	pm := &PageModel{Content: content}

	runs := content.Runs
	if len(runs) == 0 && len(content.Images) > 0 && a.extractor != nil {
		recovered, err := a.extractor.ExtractRuns(ctx, content)
		if err != nil {
			pm.Err = fmt.Errorf("recovering text from page %d: %w", content.Index, err)
			return pm
		}
		runs = recovered
	}

	pm.Blocks = a.merger.Merge(runs)
	pm.Columns = a.segmenter.Segment(pm.Blocks, content.Width, content.Height)
	pm.Regions = a.classifier.Classify(content, pm.Blocks)
	pm.TextBlocks = area.TextBlocks(pm.Regions)
	return pm
}

// docDigest keys the page-model cache by document content, so a
// second operation over the same bytes reuses the analysis.
func docDigest(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:8])
}

// cacheKey is the page-model cache key for one page of a document.
func cacheKey(digest string, page int) string {
	return fmt.Sprintf("%s:%d", digest, page)
}
