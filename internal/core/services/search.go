package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/karmanotes/pipeline/internal/core/domain"
	"github.com/karmanotes/pipeline/internal/core/ports/driven"
	"github.com/karmanotes/pipeline/internal/core/ports/driving"
	"github.com/karmanotes/pipeline/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService answers queries over converted notes, hydrating engine
// hits from the note store. The index is eventually consistent with the
// store, so hits without a backing note are dropped and cleaned up.
type SearchService struct {
	engine driven.SearchEngine
	notes  driven.NoteStore
}

// NewSearchService creates a new search service.
func NewSearchService(engine driven.SearchEngine, notes driven.NoteStore) *SearchService {
	return &SearchService{
		engine: engine,
		notes:  notes,
	}
}

// Search returns notes matching the query, best match first.
func (s *SearchService) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	hits, err := s.engine.Search(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("querying search engine: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(hits))
	for _, hit := range hits {
		note, err := s.notes.Get(ctx, hit.NoteID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Stale index entry; drop it from the index too.
				if delErr := s.engine.Delete(ctx, hit.NoteID); delErr != nil {
					logger.Warn("Failed to remove stale index entry %s: %v", hit.NoteID, delErr)
				}
				continue
			}
			return nil, fmt.Errorf("loading note %s: %w", hit.NoteID, err)
		}

		results = append(results, domain.SearchResult{
			Note:    *note,
			Score:   hit.Score,
			Snippet: hit.Snippet,
		})
	}
	return results, nil
}

// Remove deletes a note and removes it from the index.
func (s *SearchService) Remove(ctx context.Context, noteID string) error {
	if err := s.notes.Delete(ctx, noteID); err != nil {
		return fmt.Errorf("deleting note: %w", err)
	}
	if err := s.engine.Delete(ctx, noteID); err != nil {
		logger.Warn("Failed to deindex note %s: %v", noteID, err)
	}
	return nil
}
