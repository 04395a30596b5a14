// Package sqlite provides the SQLite-backed persistence for raw documents,
// notes and the course reference entities, with embedded migrations.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/karmanotes/pipeline/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/karmanotes/pipeline/internal/core/domain"
	"github.com/karmanotes/pipeline/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to the
// document, note, course and license store interfaces through wrapper
// types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.karmanotes/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".karmanotes", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "pipeline.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// DB exposes the underlying handle for adapters sharing the database
// file, such as the FTS search engine.
func (s *Store) DB() *sql.DB {
	return s.db
}

// RawDocumentStore returns a RawDocumentStore interface backed by this store.
func (s *Store) RawDocumentStore() driven.RawDocumentStore {
	return &rawDocumentStore{store: s}
}

// NoteStore returns a NoteStore interface backed by this store.
func (s *Store) NoteStore() driven.NoteStore {
	return &noteStore{store: s}
}

// CourseStore returns a CourseStore interface backed by this store.
func (s *Store) CourseStore() driven.CourseStore {
	return &courseStore{store: s}
}

// LicenseStore returns a LicenseStore interface backed by this store.
func (s *Store) LicenseStore() driven.LicenseStore {
	return &licenseStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}
		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Raw Document Store ====================

// rawDocumentStore implements driven.RawDocumentStore.
type rawDocumentStore struct {
	store *Store
}

var _ driven.RawDocumentStore = (*rawDocumentStore)(nil)

// Save inserts a new raw document.
func (s *rawDocumentStore) Save(ctx context.Context, doc *domain.RawDocument) error {
	tagsJSON, err := json.Marshal(doc.Tags)
	if err != nil {
		return fmt.Errorf("marshalling tags: %w", err)
	}

	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now().UTC()
	}
	if doc.State == "" {
		doc.State = domain.StateUploaded
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO raw_documents
			(id, course_id, name, slug, source_url, upstream_link, mime_type,
			 license_id, tags, uploader_ip, uploaded_at, state, attempts, last_error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.CourseID, doc.Name, doc.Slug, doc.SourceURL,
		nullString(doc.UpstreamLink), doc.MIMEType, nullString(doc.LicenseID),
		string(tagsJSON), doc.UploaderIP, doc.UploadedAt, string(doc.State),
		doc.Attempts, doc.LastError)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("saving raw document: %w", err)
	}
	return nil
}

// Get retrieves a raw document by ID.
func (s *rawDocumentStore) Get(ctx context.Context, id string) (*domain.RawDocument, error) {
	row := s.store.db.QueryRowContext(ctx, rawDocumentSelect+" WHERE id = ?", id)
	return scanRawDocument(row)
}

// GetByUpstreamLink retrieves a raw document by its original external URL.
func (s *rawDocumentStore) GetByUpstreamLink(ctx context.Context, link string) (*domain.RawDocument, error) {
	row := s.store.db.QueryRowContext(ctx, rawDocumentSelect+" WHERE upstream_link = ?", link)
	return scanRawDocument(row)
}

// List returns raw documents for a course, most recent first.
func (s *rawDocumentStore) List(ctx context.Context, courseID string) ([]domain.RawDocument, error) {
	rows, err := s.store.db.QueryContext(ctx,
		rawDocumentSelect+" WHERE course_id = ? ORDER BY uploaded_at DESC", courseID)
	if err != nil {
		return nil, fmt.Errorf("querying raw documents: %w", err)
	}
	defer rows.Close()

	return collectRawDocuments(rows)
}

// ListPending returns documents whose conversion is not finished.
func (s *rawDocumentStore) ListPending(ctx context.Context) ([]domain.RawDocument, error) {
	rows, err := s.store.db.QueryContext(ctx,
		rawDocumentSelect+" WHERE state IN (?, ?, ?) ORDER BY uploaded_at",
		string(domain.StateUploaded), string(domain.StateConverting),
		string(domain.StateFailedRetryable))
	if err != nil {
		return nil, fmt.Errorf("querying pending documents: %w", err)
	}
	defer rows.Close()

	return collectRawDocuments(rows)
}

// SetState records a state transition with optional failure detail.
func (s *rawDocumentStore) SetState(ctx context.Context, id string, state domain.DocumentState, detail string) error {
	attemptBump := 0
	if state == domain.StateConverting {
		attemptBump = 1
	}

	res, err := s.store.db.ExecContext(ctx, `
		UPDATE raw_documents
		SET state = ?, last_error = ?, attempts = attempts + ?
		WHERE id = ?
	`, string(state), detail, attemptBump, id)
	if err != nil {
		return fmt.Errorf("updating document state: %w", err)
	}
	return requireRow(res)
}

// MarkProcessed records successful conversion.
func (s *rawDocumentStore) MarkProcessed(ctx context.Context, id string) error {
	return s.SetState(ctx, id, domain.StateConverted, "")
}

// Delete removes a raw document record.
func (s *rawDocumentStore) Delete(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM raw_documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting raw document: %w", err)
	}
	return nil
}

const rawDocumentSelect = `
	SELECT id, course_id, name, slug, source_url, upstream_link, mime_type,
	       license_id, tags, uploader_ip, uploaded_at, state, attempts, last_error
	FROM raw_documents`

// ==================== Note Store ====================

// noteStore implements driven.NoteStore.
type noteStore struct {
	store *Store
}

var _ driven.NoteStore = (*noteStore)(nil)

// Save inserts or updates a note.
func (s *noteStore) Save(ctx context.Context, note *domain.Note) error {
	tagsJSON, err := json.Marshal(note.Tags)
	if err != nil {
		return fmt.Errorf("marshalling tags: %w", err)
	}

	now := time.Now().UTC()
	if note.CreatedAt.IsZero() {
		note.CreatedAt = now
	}
	note.UpdatedAt = now

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO notes
			(id, course_id, name, slug, source_url, upstream_link, mime_type,
			 text, html, tags, license_id, thanks, flags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			slug = excluded.slug,
			text = excluded.text,
			html = excluded.html,
			tags = excluded.tags,
			thanks = excluded.thanks,
			flags = excluded.flags,
			updated_at = excluded.updated_at
	`, note.ID, note.CourseID, note.Name, note.Slug, note.SourceURL,
		nullString(note.UpstreamLink), note.MIMEType, note.Text, note.HTML,
		string(tagsJSON), nullString(note.LicenseID), note.Thanks, note.Flags,
		note.CreatedAt, note.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("saving note: %w", err)
	}
	return nil
}

// Get retrieves a note by ID.
func (s *noteStore) Get(ctx context.Context, id string) (*domain.Note, error) {
	row := s.store.db.QueryRowContext(ctx, noteSelect+" WHERE id = ?", id)
	return scanNote(row)
}

// GetByUpstreamLink retrieves a note by its original external URL.
func (s *noteStore) GetByUpstreamLink(ctx context.Context, link string) (*domain.Note, error) {
	row := s.store.db.QueryRowContext(ctx, noteSelect+" WHERE upstream_link = ?", link)
	return scanNote(row)
}

// List returns notes for a course.
func (s *noteStore) List(ctx context.Context, courseID string) ([]domain.Note, error) {
	rows, err := s.store.db.QueryContext(ctx, noteSelect+" WHERE course_id = ?", courseID)
	if err != nil {
		return nil, fmt.Errorf("querying notes: %w", err)
	}
	defer rows.Close()

	var notes []domain.Note //nolint:prealloc // size unknown from query
	for rows.Next() {
		note, err := scanNoteRows(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, *note)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating notes: %w", err)
	}
	return notes, nil
}

// SlugExists reports whether a slug is taken within a course.
func (s *noteStore) SlugExists(ctx context.Context, courseID, slug string) (bool, error) {
	var count int
	err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notes WHERE course_id = ? AND slug = ?",
		courseID, slug).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking slug: %w", err)
	}
	return count > 0, nil
}

// Delete removes a note.
func (s *noteStore) Delete(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting note: %w", err)
	}
	return nil
}

const noteSelect = `
	SELECT id, course_id, name, slug, source_url, upstream_link, mime_type,
	       text, html, tags, license_id, thanks, flags, created_at, updated_at
	FROM notes`

// ==================== Course Store ====================

// courseStore implements driven.CourseStore.
type courseStore struct {
	store *Store
}

var _ driven.CourseStore = (*courseStore)(nil)

// GetCourse retrieves a course by ID.
func (s *courseStore) GetCourse(ctx context.Context, id string) (*domain.Course, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, department_id, school_id, name, slug, instructor_name, created_at
		FROM courses WHERE id = ?
	`, id)

	var course domain.Course
	var departmentID, schoolID, slug, instructor sql.NullString
	var createdAt sql.NullTime
	if err := row.Scan(&course.ID, &departmentID, &schoolID, &course.Name,
		&slug, &instructor, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning course: %w", err)
	}

	course.DepartmentID = departmentID.String
	course.SchoolID = schoolID.String
	course.Slug = slug.String
	course.InstructorName = instructor.String
	if createdAt.Valid {
		course.CreatedAt = createdAt.Time
	}
	return &course, nil
}

// EnsureSchool finds a school by name or creates it.
func (s *courseStore) EnsureSchool(ctx context.Context, school domain.School) (*domain.School, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT id, name, usde_id, slug FROM schools WHERE name = ?", school.Name)

	var existing domain.School
	var usdeID sql.NullInt64
	var slug sql.NullString
	err := row.Scan(&existing.ID, &existing.Name, &usdeID, &slug)
	if err == nil {
		existing.USDEID = int(usdeID.Int64)
		existing.Slug = slug.String
		return &existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("scanning school: %w", err)
	}

	if school.ID == "" {
		school.ID = uuid.New().String()
	}
	if school.Slug == "" {
		school.Slug = domain.Slugify(school.Name)
	}
	_, err = s.store.db.ExecContext(ctx,
		"INSERT INTO schools (id, name, usde_id, slug) VALUES (?, ?, ?, ?)",
		school.ID, school.Name, school.USDEID, school.Slug)
	if err != nil {
		return nil, fmt.Errorf("inserting school: %w", err)
	}
	return &school, nil
}

// EnsureDepartment finds a department by (school, name) or creates it.
func (s *courseStore) EnsureDepartment(ctx context.Context, dept domain.Department) (*domain.Department, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT id, school_id, name, url FROM departments WHERE school_id = ? AND name = ?",
		dept.SchoolID, dept.Name)

	var existing domain.Department
	var url sql.NullString
	err := row.Scan(&existing.ID, &existing.SchoolID, &existing.Name, &url)
	if err == nil {
		existing.URL = url.String
		return &existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("scanning department: %w", err)
	}

	if dept.ID == "" {
		dept.ID = uuid.New().String()
	}
	_, err = s.store.db.ExecContext(ctx,
		"INSERT INTO departments (id, school_id, name, url) VALUES (?, ?, ?, ?)",
		dept.ID, dept.SchoolID, dept.Name, dept.URL)
	if err != nil {
		return nil, fmt.Errorf("inserting department: %w", err)
	}
	return &dept, nil
}

// EnsureCourse finds a course by (department, name) or creates it.
func (s *courseStore) EnsureCourse(ctx context.Context, course domain.Course) (*domain.Course, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, department_id, school_id, name, slug, instructor_name, created_at
		FROM courses WHERE department_id = ? AND name = ?
	`, course.DepartmentID, course.Name)

	var existing domain.Course
	var departmentID, schoolID, slug, instructor sql.NullString
	var createdAt sql.NullTime
	err := row.Scan(&existing.ID, &departmentID, &schoolID, &existing.Name,
		&slug, &instructor, &createdAt)
	if err == nil {
		existing.DepartmentID = departmentID.String
		existing.SchoolID = schoolID.String
		existing.Slug = slug.String
		existing.InstructorName = instructor.String
		if createdAt.Valid {
			existing.CreatedAt = createdAt.Time
		}
		return &existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("scanning course: %w", err)
	}

	if course.ID == "" {
		course.ID = uuid.New().String()
	}
	if course.Slug == "" {
		course.Slug = domain.Slugify(course.Name)
	}
	course.CreatedAt = time.Now().UTC()
	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO courses (id, department_id, school_id, name, slug, instructor_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, course.ID, nullString(course.DepartmentID), nullString(course.SchoolID),
		course.Name, course.Slug, course.InstructorName, course.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting course: %w", err)
	}
	return &course, nil
}

// EnsureProfessor finds a professor by name or creates it.
func (s *courseStore) EnsureProfessor(ctx context.Context, prof domain.Professor) (*domain.Professor, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT id, name FROM professors WHERE name = ?", prof.Name)

	var existing domain.Professor
	err := row.Scan(&existing.ID, &existing.Name)
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("scanning professor: %w", err)
	}

	if prof.ID == "" {
		prof.ID = uuid.New().String()
	}
	_, err = s.store.db.ExecContext(ctx,
		"INSERT INTO professors (id, name) VALUES (?, ?)", prof.ID, prof.Name)
	if err != nil {
		return nil, fmt.Errorf("inserting professor: %w", err)
	}
	return &prof, nil
}

// ==================== License Store ====================

// licenseStore implements driven.LicenseStore.
type licenseStore struct {
	store *Store
}

var _ driven.LicenseStore = (*licenseStore)(nil)

// Ensure finds a license by name or creates it.
func (s *licenseStore) Ensure(ctx context.Context, license domain.License) (*domain.License, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT id, name, html FROM licenses WHERE name = ?", license.Name)

	var existing domain.License
	var html sql.NullString
	err := row.Scan(&existing.ID, &existing.Name, &html)
	if err == nil {
		existing.HTML = html.String
		return &existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("scanning license: %w", err)
	}

	if license.ID == "" {
		license.ID = uuid.New().String()
	}
	_, err = s.store.db.ExecContext(ctx,
		"INSERT INTO licenses (id, name, html) VALUES (?, ?, ?)",
		license.ID, license.Name, license.HTML)
	if err != nil {
		return nil, fmt.Errorf("inserting license: %w", err)
	}
	return &license, nil
}

// Get retrieves a license by ID.
func (s *licenseStore) Get(ctx context.Context, id string) (*domain.License, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT id, name, html FROM licenses WHERE id = ?", id)

	var license domain.License
	var html sql.NullString
	if err := row.Scan(&license.ID, &license.Name, &html); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning license: %w", err)
	}
	license.HTML = html.String
	return &license, nil
}

// ==================== Helper Functions ====================

// rowScanner abstracts *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRawDocument scans a single raw document row.
func scanRawDocument(row *sql.Row) (*domain.RawDocument, error) {
	doc, err := scanRawDocumentFrom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

func scanRawDocumentFrom(row rowScanner) (*domain.RawDocument, error) {
	var doc domain.RawDocument
	var slug, upstreamLink, licenseID, tagsJSON, uploaderIP, lastError sql.NullString
	var uploadedAt sql.NullTime
	var state string

	err := row.Scan(&doc.ID, &doc.CourseID, &doc.Name, &slug, &doc.SourceURL,
		&upstreamLink, &doc.MIMEType, &licenseID, &tagsJSON, &uploaderIP,
		&uploadedAt, &state, &doc.Attempts, &lastError)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning raw document: %w", err)
	}

	doc.Slug = slug.String
	doc.UpstreamLink = upstreamLink.String
	doc.LicenseID = licenseID.String
	doc.UploaderIP = uploaderIP.String
	doc.LastError = lastError.String
	doc.State = domain.DocumentState(state)
	if uploadedAt.Valid {
		doc.UploadedAt = uploadedAt.Time
	}
	if tagsJSON.Valid && tagsJSON.String != "" && tagsJSON.String != "null" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &doc.Tags); err != nil {
			return nil, fmt.Errorf("unmarshalling tags: %w", err)
		}
	}
	return &doc, nil
}

func collectRawDocuments(rows *sql.Rows) ([]domain.RawDocument, error) {
	var docs []domain.RawDocument //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanRawDocumentFrom(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating raw documents: %w", err)
	}
	return docs, nil
}

// scanNote scans a single note row.
func scanNote(row *sql.Row) (*domain.Note, error) {
	note, err := scanNoteFrom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return note, nil
}

func scanNoteRows(rows *sql.Rows) (*domain.Note, error) {
	return scanNoteFrom(rows)
}

func scanNoteFrom(row rowScanner) (*domain.Note, error) {
	var note domain.Note
	var sourceURL, upstreamLink, mimeType, text, html, tagsJSON, licenseID sql.NullString
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(&note.ID, &note.CourseID, &note.Name, &note.Slug,
		&sourceURL, &upstreamLink, &mimeType, &text, &html, &tagsJSON,
		&licenseID, &note.Thanks, &note.Flags, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning note: %w", err)
	}

	note.SourceURL = sourceURL.String
	note.UpstreamLink = upstreamLink.String
	note.MIMEType = mimeType.String
	note.Text = text.String
	note.HTML = html.String
	note.LicenseID = licenseID.String
	if createdAt.Valid {
		note.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		note.UpdatedAt = updatedAt.Time
	}
	if tagsJSON.Valid && tagsJSON.String != "" && tagsJSON.String != "null" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &note.Tags); err != nil {
			return nil, fmt.Errorf("unmarshalling tags: %w", err)
		}
	}
	return &note, nil
}

// nullString converts an empty string to a SQL NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// isUniqueViolation reports whether the driver error is a UNIQUE
// constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// requireRow converts a zero-row update into ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
