package driven

import (
	"context"

	"github.com/karmanotes/pipeline/internal/core/domain"
)

// Converter extracts text and/or HTML from a raw document's payload.
// Each converter handles specific MIME types; rich formats delegate to an
// external conversion service.
type Converter interface {
	// SupportedMIMETypes returns the MIME types this converter handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred) when
	// multiple converters claim the same MIME type.
	Priority() int

	// Convert extracts content from the payload. Transient service
	// failures are reported as *domain.ServiceError; everything else is
	// terminal.
	Convert(ctx context.Context, doc *domain.RawDocument, payload []byte) (*ConversionResult, error)
}

// ConversionResult contains the extracted content. At least one of Text
// and HTML must be non-empty for the conversion to count as successful.
type ConversionResult struct {
	// Text is the extracted plain text.
	Text string

	// HTML is the rendered HTML, when available.
	HTML string
}

// ConverterRegistry dispatches a raw document to the best converter for
// its MIME type.
type ConverterRegistry interface {
	// Convert dispatches by MIME type. Returns
	// domain.ErrUnsupportedFormat when no converter claims the type.
	Convert(ctx context.Context, doc *domain.RawDocument, payload []byte) (*ConversionResult, error)

	// Register adds a converter to the registry.
	Register(converter Converter)

	// SupportedMIMETypes returns all MIME types that can be converted.
	SupportedMIMETypes() []string
}
