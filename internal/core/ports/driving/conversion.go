package driving

import (
	"context"

	"github.com/karmanotes/pipeline/internal/core/domain"
)

// ConversionOrchestrator drives a raw document through the conversion
// state machine. It is the queue's job handler: workers call Process, and
// terminal failures land in the failure path which logs and discards.
type ConversionOrchestrator interface {
	// Process converts one raw document end to end: fetch payload,
	// extract content, create the Note, retire the RawDocument, index the
	// Note. Safe to call again for an already-converted document
	// (at-least-once delivery).
	Process(ctx context.Context, rawDocumentID string) error

	// ConvertNow runs Process with bounded in-line retries on transient
	// errors. Used by the bulk importer, which needs synchronous results.
	ConvertNow(ctx context.Context, rawDocumentID string) error

	// Discard handles a terminal failure: logs the source reference,
	// deletes any partially created note, and flags the document so it is
	// never reprocessed automatically.
	Discard(ctx context.Context, rawDocumentID string, cause error)
}

// SearchService answers queries over converted notes.
type SearchService interface {
	// Search returns notes matching the query, hydrated from the note
	// store and paginated.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)

	// Remove deletes a note and removes it from the index.
	Remove(ctx context.Context, noteID string) error
}
