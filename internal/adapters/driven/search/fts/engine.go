// Package fts implements the search engine on SQLite's FTS5 extension,
// sharing the database file with the metadata store.
package fts

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/karmanotes/pipeline/internal/core/domain"
	"github.com/karmanotes/pipeline/internal/core/ports/driven"
)

// Ensure Engine implements the interface.
var _ driven.SearchEngine = (*Engine)(nil)

// Engine is a SQLite FTS5-backed search engine over notes. The index is
// maintained best-effort alongside the note store; a failed index update
// never fails the conversion that triggered it.
type Engine struct {
	db *sql.DB
}

// NewEngine creates the FTS index table if needed and returns an engine
// over the given database handle. The handle is shared with the metadata
// store; Close is a no-op so the owner keeps control of the connection.
func NewEngine(db *sql.DB) (*Engine, error) {
	_, err := db.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS notes_fts USING fts5(
			note_id UNINDEXED,
			course_id UNINDEXED,
			name,
			content,
			tags
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("creating fts table: %w", err)
	}
	return &Engine{db: db}, nil
}

// Index upserts a note into the index. Implemented as delete-then-insert,
// which makes re-indexing after an update idempotent.
func (e *Engine) Index(ctx context.Context, note *domain.Note) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning index transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM notes_fts WHERE note_id = ?", note.ID); err != nil {
		return fmt.Errorf("removing stale index entry: %w", err)
	}

	// Prefer extracted text; fall back to HTML when that is all we have.
	content := note.Text
	if strings.TrimSpace(content) == "" {
		content = note.HTML
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO notes_fts (note_id, course_id, name, content, tags)
		VALUES (?, ?, ?, ?, ?)
	`, note.ID, note.CourseID, note.Name, content, strings.Join(note.Tags, " "))
	if err != nil {
		return fmt.Errorf("indexing note: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing index transaction: %w", err)
	}
	return nil
}

// Delete removes a note from the index. Removing an unindexed note is not
// an error.
func (e *Engine) Delete(ctx context.Context, noteID string) error {
	_, err := e.db.ExecContext(ctx,
		"DELETE FROM notes_fts WHERE note_id = ?", noteID)
	if err != nil {
		return fmt.Errorf("deleting index entry: %w", err)
	}
	return nil
}

// Search matches the query against note names and content, best match
// first. A course filter restricts hits to one course.
func (e *Engine) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]driven.SearchHit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}

	match := matchExpression(query)
	args := []any{match}
	where := "notes_fts MATCH ?"
	if opts.CourseID != "" {
		where += " AND course_id = ?"
		args = append(args, opts.CourseID)
	}
	args = append(args, limit, opts.Offset)

	rows, err := e.db.QueryContext(ctx, `
		SELECT note_id,
		       bm25(notes_fts),
		       snippet(notes_fts, 3, '<b>', '</b>', '…', 12)
		FROM notes_fts
		WHERE `+where+`
		ORDER BY bm25(notes_fts)
		LIMIT ? OFFSET ?
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	var hits []driven.SearchHit
	for rows.Next() {
		var hit driven.SearchHit
		var rank float64
		if err := rows.Scan(&hit.NoteID, &rank, &hit.Snippet); err != nil {
			return nil, fmt.Errorf("scanning hit: %w", err)
		}
		// bm25 ranks ascending with negative values for good matches;
		// expose a positive higher-is-better score.
		hit.Score = -rank
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating hits: %w", err)
	}
	return hits, nil
}

// Close is a no-op; the database handle belongs to the metadata store.
func (e *Engine) Close() error {
	return nil
}

// matchExpression builds an FTS5 MATCH expression ORing the query terms
// across names, content and tags. Each term is quoted so user input
// cannot inject query syntax.
func matchExpression(query string) string {
	terms := strings.Fields(query)
	parts := make([]string, 0, len(terms))
	for _, term := range terms {
		quoted := `"` + strings.ReplaceAll(term, `"`, `""`) + `"`
		parts = append(parts, fmt.Sprintf("(name:%s OR content:%s OR tags:%s)", quoted, quoted, quoted))
	}
	return strings.Join(parts, " OR ")
}
