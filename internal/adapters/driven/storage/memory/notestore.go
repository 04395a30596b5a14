package memory

import (
	"context"
	"sync"
	"time"

	"github.com/karmanotes/pipeline/internal/core/domain"
	"github.com/karmanotes/pipeline/internal/core/ports/driven"
)

// Ensure NoteStore implements the interface.
var _ driven.NoteStore = (*NoteStore)(nil)

// NoteStore is an in-memory implementation of driven.NoteStore.
type NoteStore struct {
	mu    sync.RWMutex
	notes map[string]domain.Note
}

// NewNoteStore creates a new in-memory note store.
func NewNoteStore() *NoteStore {
	return &NoteStore{
		notes: make(map[string]domain.Note),
	}
}

// Save inserts or updates a note. The (course, slug) pair must be unique
// across distinct notes, matching the SQLite constraint.
func (s *NoteStore) Save(_ context.Context, note *domain.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.notes {
		if id != note.ID && existing.CourseID == note.CourseID && existing.Slug == note.Slug {
			return domain.ErrAlreadyExists
		}
	}

	now := time.Now().UTC()
	if note.CreatedAt.IsZero() {
		note.CreatedAt = now
	}
	note.UpdatedAt = now
	s.notes[note.ID] = *note
	return nil
}

// Get retrieves a note by ID.
func (s *NoteStore) Get(_ context.Context, id string) (*domain.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	note, ok := s.notes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &note, nil
}

// GetByUpstreamLink retrieves a note by its original external URL.
func (s *NoteStore) GetByUpstreamLink(_ context.Context, link string) (*domain.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, note := range s.notes {
		if note.UpstreamLink == link {
			n := note
			return &n, nil
		}
	}
	return nil, domain.ErrNotFound
}

// List returns notes for a course.
func (s *NoteStore) List(_ context.Context, courseID string) ([]domain.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var notes []domain.Note
	for _, note := range s.notes {
		if note.CourseID == courseID {
			notes = append(notes, note)
		}
	}
	return notes, nil
}

// SlugExists reports whether a slug is taken within a course.
func (s *NoteStore) SlugExists(_ context.Context, courseID, slug string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, note := range s.notes {
		if note.CourseID == courseID && note.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

// Delete removes a note.
func (s *NoteStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.notes, id)
	return nil
}
