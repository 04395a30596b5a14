package driven

import (
	"context"

	"github.com/karmanotes/pipeline/internal/core/domain"
)

// RawDocumentStore persists uploaded documents awaiting conversion.
// Backed by SQLite. The (course_id, source_url) pair is unique: duplicate
// uploads fail with domain.ErrAlreadyExists at insert time rather than
// through a check-then-act query.
type RawDocumentStore interface {
	// Save inserts a new raw document.
	Save(ctx context.Context, doc *domain.RawDocument) error

	// Get retrieves a raw document by ID.
	Get(ctx context.Context, id string) (*domain.RawDocument, error)

	// GetByUpstreamLink retrieves a raw document by its original external
	// URL. Used by the bulk importer for idempotent re-runs.
	GetByUpstreamLink(ctx context.Context, link string) (*domain.RawDocument, error)

	// List returns raw documents for a course, most recent first.
	List(ctx context.Context, courseID string) ([]domain.RawDocument, error)

	// ListPending returns documents whose conversion has neither completed
	// nor failed terminally. Used to re-enqueue work after a restart.
	ListPending(ctx context.Context) ([]domain.RawDocument, error)

	// SetState records a state transition with optional failure detail,
	// incrementing the attempt counter when entering StateConverting.
	SetState(ctx context.Context, id string, state domain.DocumentState, detail string) error

	// MarkProcessed records successful conversion.
	MarkProcessed(ctx context.Context, id string) error

	// Delete removes a raw document record.
	Delete(ctx context.Context, id string) error
}

// NoteStore persists converted notes.
type NoteStore interface {
	// Save inserts or updates a note.
	Save(ctx context.Context, note *domain.Note) error

	// Get retrieves a note by ID.
	Get(ctx context.Context, id string) (*domain.Note, error)

	// GetByUpstreamLink retrieves a note by its original external URL.
	GetByUpstreamLink(ctx context.Context, link string) (*domain.Note, error)

	// List returns notes for a course.
	List(ctx context.Context, courseID string) ([]domain.Note, error)

	// SlugExists reports whether a slug is taken within a course.
	SlugExists(ctx context.Context, courseID, slug string) (bool, error)

	// Delete removes a note.
	Delete(ctx context.Context, id string) error
}
