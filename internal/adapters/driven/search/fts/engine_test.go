package fts

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/karmanotes/pipeline/internal/core/domain"
)

func setupEngine(t *testing.T) *Engine {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	engine, err := NewEngine(db)
	require.NoError(t, err)
	return engine
}

func indexNote(t *testing.T, engine *Engine, id, courseID, name, text string) {
	t.Helper()
	err := engine.Index(context.Background(), &domain.Note{
		ID:       id,
		CourseID: courseID,
		Name:     name,
		Text:     text,
	})
	require.NoError(t, err)
}

func TestEngine_IndexAndSearch(t *testing.T) {
	engine := setupEngine(t)
	ctx := context.Background()

	indexNote(t, engine, "note-1", "course-1", "Thermodynamics Lecture", "entropy and heat transfer")
	indexNote(t, engine, "note-2", "course-1", "Linear Algebra", "matrices and eigenvalues")

	hits, err := engine.Search(ctx, "entropy", domain.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "note-1", hits[0].NoteID)
	assert.Contains(t, hits[0].Snippet, "<b>entropy</b>")
	assert.Greater(t, hits[0].Score, 0.0)
}

func TestEngine_SearchMatchesName(t *testing.T) {
	engine := setupEngine(t)
	ctx := context.Background()

	indexNote(t, engine, "note-1", "course-1", "Thermodynamics Lecture", "heat transfer")

	hits, err := engine.Search(ctx, "thermodynamics", domain.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "note-1", hits[0].NoteID)
}

func TestEngine_CourseFilter(t *testing.T) {
	engine := setupEngine(t)
	ctx := context.Background()

	indexNote(t, engine, "note-1", "course-1", "Lecture", "shared term entropy")
	indexNote(t, engine, "note-2", "course-2", "Lecture", "shared term entropy")

	hits, err := engine.Search(ctx, "entropy", domain.SearchOptions{CourseID: "course-2"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "note-2", hits[0].NoteID)
}

func TestEngine_Index_Idempotent(t *testing.T) {
	engine := setupEngine(t)
	ctx := context.Background()

	indexNote(t, engine, "note-1", "course-1", "Lecture", "original text")
	indexNote(t, engine, "note-1", "course-1", "Lecture", "revised entropy text")

	// Old content is gone
	hits, err := engine.Search(ctx, "original", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, hits)

	// Only one entry remains for the note
	hits, err = engine.Search(ctx, "entropy", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestEngine_Delete(t *testing.T) {
	engine := setupEngine(t)
	ctx := context.Background()

	indexNote(t, engine, "note-1", "course-1", "Lecture", "entropy")
	require.NoError(t, engine.Delete(ctx, "note-1"))

	hits, err := engine.Search(ctx, "entropy", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, hits)

	// Deleting again is not an error
	assert.NoError(t, engine.Delete(ctx, "note-1"))
}

func TestEngine_HTMLFallback(t *testing.T) {
	engine := setupEngine(t)
	ctx := context.Background()

	err := engine.Index(ctx, &domain.Note{
		ID:       "note-1",
		CourseID: "course-1",
		Name:     "Lecture",
		HTML:     "<p>entropy in markup</p>",
	})
	require.NoError(t, err)

	hits, err := engine.Search(ctx, "entropy", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestEngine_EmptyQuery(t *testing.T) {
	engine := setupEngine(t)

	hits, err := engine.Search(context.Background(), "   ", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestEngine_QuoteEscaping(t *testing.T) {
	engine := setupEngine(t)
	ctx := context.Background()

	indexNote(t, engine, "note-1", "course-1", "Lecture", "plain entropy text")

	// Query syntax characters are treated as literal text, not operators:
	// none of these terms appear in the note, so nothing matches.
	hits, err := engine.Search(ctx, `name:" AND content:"`, domain.SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, hits)

	// A quoted term still matches on its literal text.
	hits, err = engine.Search(ctx, `entropy" OR name:"`, domain.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "note-1", hits[0].NoteID)
}

func TestEngine_MultiWordQueryMatchesNonAdjacentTerms(t *testing.T) {
	engine := setupEngine(t)
	ctx := context.Background()

	indexNote(t, engine, "note-1", "course-1", "Graph Theory",
		"breadth first traversal covered in the second lecture")
	indexNote(t, engine, "note-2", "course-1", "Biology", "cell membranes")

	// Terms need not be adjacent, or even in the same field.
	hits, err := engine.Search(ctx, "graph lecture", domain.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "note-1", hits[0].NoteID)
}

func TestEngine_Pagination(t *testing.T) {
	engine := setupEngine(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c", "d"} {
		indexNote(t, engine, id, "course-1", "Lecture "+id, "entropy content "+id)
	}

	page1, err := engine.Search(ctx, "entropy", domain.SearchOptions{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page1, 2)

	page2, err := engine.Search(ctx, "entropy", domain.SearchOptions{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, page2, 2)
	assert.NotEqual(t, page1[0].NoteID, page2[0].NoteID)
}
