package codec

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/calque-dev/calque/model"
)

// ErrMalformedDocument is returned when input bytes cannot be parsed
// as the codec's format. The run fails immediately on this error; it
// is not a per-page condition.
var ErrMalformedDocument = errors.New("malformed document")

// Codec parses a source document into page primitives and renders
// page layouts back into document bytes.
type Codec interface {
	// Name identifies the codec for registry lookup
	Name() string

	// Parse decodes a whole document into per-page primitive content.
	// Page order in the result equals document order.
	Parse(ctx context.Context, data []byte) ([]model.PageContent, error)

	// Render produces output bytes from page layouts. The source
	// document is available for passthrough pages and figure stamps.
	Render(ctx context.Context, source []byte, pages []model.PageLayout) ([]byte, error)
}

// PageExtractor recovers text runs from a page whose text exists only
// inside raster images, typically a scanned page.
type PageExtractor interface {
	ExtractRuns(ctx context.Context, content *model.PageContent) ([]model.TextRun, error)
}

// Registry manages the available codecs by name.
type Registry struct {
	codecs map[string]Codec
}

// NewRegistry creates a registry with the built-in codecs already
// registered.
func NewRegistry() *Registry {
	r := &Registry{codecs: make(map[string]Codec)}
	r.Register(NewStextCodec())
	return r
}

// Register adds a codec to the registry.
func (r *Registry) Register(c Codec) {
	r.codecs[strings.ToLower(c.Name())] = c
}

// Get retrieves a codec by name.
func (r *Registry) Get(name string) (Codec, error) {
	c, exists := r.codecs[strings.ToLower(name)]
	if !exists {
		return nil, fmt.Errorf("codec %s not found", name)
	}
	return c, nil
}

// List returns all registered codec names.
func (r *Registry) List() []string {
	var names []string
	for name := range r.codecs {
		names = append(names, name)
	}
	return names
}
