// Package memory provides in-memory store implementations, used by tests
// and as lightweight defaults where persistence is not required.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/karmanotes/pipeline/internal/core/domain"
	"github.com/karmanotes/pipeline/internal/core/ports/driven"
)

// Ensure RawDocumentStore implements the interface.
var _ driven.RawDocumentStore = (*RawDocumentStore)(nil)

// RawDocumentStore is an in-memory implementation of driven.RawDocumentStore.
type RawDocumentStore struct {
	mu   sync.RWMutex
	docs map[string]domain.RawDocument
}

// NewRawDocumentStore creates a new in-memory raw document store.
func NewRawDocumentStore() *RawDocumentStore {
	return &RawDocumentStore{
		docs: make(map[string]domain.RawDocument),
	}
}

// Save inserts a new raw document. The (course, source URL) pair must be
// unique, matching the SQLite constraint.
func (s *RawDocumentStore) Save(_ context.Context, doc *domain.RawDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.docs {
		if existing.CourseID == doc.CourseID && existing.SourceURL == doc.SourceURL {
			return domain.ErrAlreadyExists
		}
	}

	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now().UTC()
	}
	if doc.State == "" {
		doc.State = domain.StateUploaded
	}
	s.docs[doc.ID] = *doc
	return nil
}

// Get retrieves a raw document by ID.
func (s *RawDocumentStore) Get(_ context.Context, id string) (*domain.RawDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// GetByUpstreamLink retrieves a raw document by its original external URL.
func (s *RawDocumentStore) GetByUpstreamLink(_ context.Context, link string) (*domain.RawDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, doc := range s.docs {
		if doc.UpstreamLink == link {
			d := doc
			return &d, nil
		}
	}
	return nil, domain.ErrNotFound
}

// List returns raw documents for a course, most recent first.
func (s *RawDocumentStore) List(_ context.Context, courseID string) ([]domain.RawDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var docs []domain.RawDocument
	for _, doc := range s.docs {
		if doc.CourseID == courseID {
			docs = append(docs, doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].UploadedAt.After(docs[j].UploadedAt)
	})
	return docs, nil
}

// ListPending returns documents whose conversion is not finished.
func (s *RawDocumentStore) ListPending(_ context.Context) ([]domain.RawDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var docs []domain.RawDocument
	for _, doc := range s.docs {
		if doc.State.Final() {
			continue
		}
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].UploadedAt.Before(docs[j].UploadedAt)
	})
	return docs, nil
}

// SetState records a state transition with optional failure detail.
func (s *RawDocumentStore) SetState(_ context.Context, id string, state domain.DocumentState, detail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return domain.ErrNotFound
	}
	if state == domain.StateConverting {
		doc.Attempts++
	}
	doc.State = state
	doc.LastError = detail
	s.docs[id] = doc
	return nil
}

// MarkProcessed records successful conversion.
func (s *RawDocumentStore) MarkProcessed(ctx context.Context, id string) error {
	return s.SetState(ctx, id, domain.StateConverted, "")
}

// Delete removes a raw document record.
func (s *RawDocumentStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	return nil
}
