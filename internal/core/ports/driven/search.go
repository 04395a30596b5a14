package driven

import (
	"context"

	"github.com/karmanotes/pipeline/internal/core/domain"
)

// SearchEngine maintains the external full-text index over notes.
// Updates are best-effort and eventually consistent with the note store;
// they are not transactional.
type SearchEngine interface {
	// Index upserts a note into the index, keyed by note ID. Idempotent.
	Index(ctx context.Context, note *domain.Note) error

	// Delete removes a note from the index. Idempotent.
	Delete(ctx context.Context, noteID string) error

	// Search matches free text against note names and text, optionally
	// filtered to a course, and returns scored hits with snippets.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]SearchHit, error)

	// Close releases resources.
	Close() error
}

// SearchHit represents a search result from the engine.
type SearchHit struct {
	// NoteID is the matched note.
	NoteID string

	// Score is the relevance score.
	Score float64

	// Snippet is an extract around the matched terms.
	Snippet string
}
