package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Note is a converted, searchable course document. Exactly one Note is
// created per successfully converted RawDocument; the raw document is
// retired on success.
type Note struct {
	// ID is the unique identifier for the note.
	ID string

	// CourseID references the owning course.
	CourseID string

	// Name is the human-readable title.
	Name string

	// Slug is unique per course, derived from Name with a numeric
	// disambiguator when needed.
	Slug string

	// SourceURL is the stored-file URL the note was converted from.
	SourceURL string

	// UpstreamLink is the original external URL for imported notes.
	UpstreamLink string

	// MIMEType is the source document's content type.
	MIMEType string

	// Text is the extracted plain text.
	Text string

	// HTML is the rendered HTML, when the conversion service provides it.
	HTML string

	// Tags are free-form labels.
	Tags []string

	// LicenseID references the license attached at creation. Immutable.
	LicenseID string

	// Thanks counts user appreciation votes.
	Thanks int

	// Flags counts abuse reports.
	Flags int

	// CreatedAt is when the note was created.
	CreatedAt time.Time

	// UpdatedAt is when the note was last modified.
	UpdatedAt time.Time
}

// Complete reports whether the note has extracted content. A note with
// neither text nor HTML is a leftover from a failed conversion and must be
// deleted, not left dangling.
func (n *Note) Complete() bool {
	return strings.TrimSpace(n.Text) != "" || strings.TrimSpace(n.HTML) != ""
}

// Slugify derives a URL-safe slug from a display name. Non-alphanumeric
// runs collapse to a single hyphen.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true // swallow leading separators
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// DisambiguateSlug appends a counter to a base slug. Counter zero returns
// the base unchanged.
func DisambiguateSlug(base string, n int) string {
	if n == 0 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, n)
}
