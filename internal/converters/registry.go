package converters

import (
	"context"
	"fmt"
	"sort"

	"github.com/karmanotes/pipeline/internal/core/domain"
	"github.com/karmanotes/pipeline/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ConverterRegistry = (*Registry)(nil)

// Registry dispatches raw documents to converters by MIME type.
// When several converters claim a type, the highest priority wins.
type Registry struct {
	converters []driven.Converter
}

// NewRegistry creates an empty converter registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a converter to the registry.
func (r *Registry) Register(converter driven.Converter) {
	r.converters = append(r.converters, converter)
	sort.SliceStable(r.converters, func(i, j int) bool {
		return r.converters[i].Priority() > r.converters[j].Priority()
	})
}

// Convert dispatches by MIME type. An unknown MIME type fails immediately
// with domain.ErrUnsupportedFormat: no note, no retry.
func (r *Registry) Convert(ctx context.Context, doc *domain.RawDocument, payload []byte) (*driven.ConversionResult, error) {
	if doc == nil || doc.MIMEType == "" {
		return nil, domain.ErrValidation
	}

	converter := r.match(doc.MIMEType)
	if converter == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, doc.MIMEType)
	}

	return converter.Convert(ctx, doc, payload)
}

// SupportedMIMETypes returns all MIME types that can be converted.
func (r *Registry) SupportedMIMETypes() []string {
	seen := make(map[string]bool)
	var types []string
	for _, c := range r.converters {
		for _, mt := range c.SupportedMIMETypes() {
			if !seen[mt] {
				seen[mt] = true
				types = append(types, mt)
			}
		}
	}
	sort.Strings(types)
	return types
}

// match returns the highest priority converter claiming the MIME type.
func (r *Registry) match(mimeType string) driven.Converter {
	for _, c := range r.converters {
		for _, mt := range c.SupportedMIMETypes() {
			if mt == mimeType {
				return c
			}
		}
	}
	return nil
}
