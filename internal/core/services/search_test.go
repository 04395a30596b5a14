package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karmanotes/pipeline/internal/adapters/driven/storage/memory"
	"github.com/karmanotes/pipeline/internal/core/domain"
	"github.com/karmanotes/pipeline/internal/core/ports/driven"
)

func TestSearch_HydratesHits(t *testing.T) {
	notes := memory.NewNoteStore()
	engine := newMockSearchEngine()
	svc := NewSearchService(engine, notes)
	ctx := context.Background()

	require.NoError(t, notes.Save(ctx, &domain.Note{
		ID: "note-1", CourseID: "course-1", Name: "Thermodynamics", Slug: "thermodynamics", Text: "entropy",
	}))
	engine.hits = []driven.SearchHit{
		{NoteID: "note-1", Score: 2.5, Snippet: "…<b>entropy</b>…"},
	}

	results, err := svc.Search(ctx, "entropy", domain.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Thermodynamics", results[0].Note.Name)
	assert.Equal(t, 2.5, results[0].Score)
	assert.Equal(t, "…<b>entropy</b>…", results[0].Snippet)
}

func TestSearch_DropsStaleHits(t *testing.T) {
	notes := memory.NewNoteStore()
	engine := newMockSearchEngine()
	svc := NewSearchService(engine, notes)
	ctx := context.Background()

	require.NoError(t, notes.Save(ctx, &domain.Note{
		ID: "note-1", CourseID: "course-1", Name: "Kept", Slug: "kept",
	}))
	require.NoError(t, engine.Index(ctx, &domain.Note{ID: "gone", CourseID: "course-1"}))
	engine.hits = []driven.SearchHit{
		{NoteID: "gone", Score: 3},
		{NoteID: "note-1", Score: 1},
	}

	results, err := svc.Search(ctx, "anything", domain.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "note-1", results[0].Note.ID)

	// The stale entry was cleaned out of the index
	assert.NotContains(t, engine.indexed, "gone")
}

func TestSearch_Remove(t *testing.T) {
	notes := memory.NewNoteStore()
	engine := newMockSearchEngine()
	svc := NewSearchService(engine, notes)
	ctx := context.Background()

	note := &domain.Note{ID: "note-1", CourseID: "course-1", Name: "Doomed", Slug: "doomed"}
	require.NoError(t, notes.Save(ctx, note))
	require.NoError(t, engine.Index(ctx, note))

	require.NoError(t, svc.Remove(ctx, "note-1"))

	_, err := notes.Get(ctx, "note-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotContains(t, engine.indexed, "note-1")
}
