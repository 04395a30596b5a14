package html

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/karmanotes/pipeline/internal/core/domain"
	"github.com/karmanotes/pipeline/internal/core/ports/driven"
)

// Ensure Converter implements the interface.
var _ driven.Converter = (*Converter)(nil)

// Converter handles HTML uploads. The original markup is kept for display
// and a stripped plain-text rendition is produced for search.
type Converter struct{}

// New creates a new HTML converter.
func New() *Converter {
	return &Converter{}
}

// SupportedMIMETypes returns the MIME types this converter handles.
func (c *Converter) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Priority returns the selection priority.
func (c *Converter) Priority() int {
	return 60 // Above plaintext, below the conversion service
}

// Convert keeps the markup as HTML and strips tags for the text field.
func (c *Converter) Convert(_ context.Context, doc *domain.RawDocument, payload []byte) (*driven.ConversionResult, error) {
	if doc == nil {
		return nil, domain.ErrValidation
	}

	if !utf8.Valid(payload) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", domain.ErrContentUnextractable, doc.SourceURL)
	}

	markup := strings.TrimSpace(string(payload))
	if markup == "" {
		return nil, fmt.Errorf("%w: %s is empty", domain.ErrContentUnextractable, doc.SourceURL)
	}

	return &driven.ConversionResult{
		Text: stripHTML(markup),
		HTML: markup,
	}, nil
}

// Pre-compiled regular expressions for HTML stripping.
var (
	scriptTag     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag      = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	headTag       = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	htmlComments  = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockClose    = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr|blockquote|pre|table)>`)
	brTags        = regexp.MustCompile(`(?i)<(br|hr)\s*/?>`)
	allTags       = regexp.MustCompile(`<[^>]+>`)
	multiSpaces   = regexp.MustCompile(`[ \t]+`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// stripHTML converts markup to readable plain text.
func stripHTML(markup string) string {
	text := scriptTag.ReplaceAllString(markup, "")
	text = styleTag.ReplaceAllString(text, "")
	text = headTag.ReplaceAllString(text, "")
	text = htmlComments.ReplaceAllString(text, "")
	text = blockClose.ReplaceAllString(text, "\n")
	text = brTags.ReplaceAllString(text, "\n")
	text = allTags.ReplaceAllString(text, " ")
	text = html.UnescapeString(text)
	text = multiSpaces.ReplaceAllString(text, " ")

	// Tidy line endings
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	text = strings.Join(lines, "\n")
	text = multiNewlines.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}
