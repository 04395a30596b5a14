package plaintext

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/karmanotes/pipeline/internal/core/domain"
	"github.com/karmanotes/pipeline/internal/core/ports/driven"
)

// Ensure Converter implements the interface.
var _ driven.Converter = (*Converter)(nil)

// Converter handles plain text uploads by decoding them as UTF-8.
type Converter struct{}

// New creates a new plain text converter.
func New() *Converter {
	return &Converter{}
}

// SupportedMIMETypes returns the MIME types this converter handles.
func (c *Converter) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/csv",
		"text/markdown",
	}
}

// Priority returns the selection priority.
func (c *Converter) Priority() int {
	return 50
}

// Convert decodes the payload as UTF-8 text. A payload that is not valid
// UTF-8 or decodes to nothing is a terminal extraction failure.
func (c *Converter) Convert(_ context.Context, doc *domain.RawDocument, payload []byte) (*driven.ConversionResult, error) {
	if doc == nil {
		return nil, domain.ErrValidation
	}

	if !utf8.Valid(payload) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", domain.ErrContentUnextractable, doc.SourceURL)
	}

	// Whitespace-only payloads carry no content, but anything else is
	// stored byte for byte.
	text := string(payload)
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %s is empty", domain.ErrContentUnextractable, doc.SourceURL)
	}

	return &driven.ConversionResult{Text: text}, nil
}
