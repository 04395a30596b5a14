package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karmanotes/pipeline/internal/adapters/driven/storage/memory"
	"github.com/karmanotes/pipeline/internal/core/domain"
	"github.com/karmanotes/pipeline/internal/core/ports/driven"
)

const descriptionJSON = `{
	"subject": "Physics",
	"departmentLink": "https://ocw.example.edu/physics",
	"courses": [
		{
			"courseTitle": "8.01 Classical Mechanics",
			"professor": "Walter Lewin",
			"noteLinks": [
				{"link": "https://ocw.example.edu/lec1.pdf", "fileName": "Lecture 1"},
				{"link": "https://ocw.example.edu/lec2.pdf", "fileName": "Lecture 2"}
			]
		},
		{
			"courseTitle": "8.02 Electromagnetism",
			"professor": "Walter Lewin",
			"noteLinks": []
		}
	]
}`

type importerFixture struct {
	svc       *ImportService
	courses   *memory.CourseStore
	licenses  *memory.LicenseStore
	docs      *memory.RawDocumentStore
	notes     *memory.NoteStore
	blobs     *mockBlobStore
	converter *mockOrchestrator
	search    *mockSearchEngine
	dir       string
}

func newImporterFixture(t *testing.T) *importerFixture {
	t.Helper()

	f := &importerFixture{
		courses:  memory.NewCourseStore(),
		licenses: memory.NewLicenseStore(),
		docs:     memory.NewRawDocumentStore(),
		notes:    memory.NewNoteStore(),
		blobs: &mockBlobStore{
			storeURL:  "https://files.example.com/stored",
			storeMIME: "application/pdf",
		},
		converter: newMockOrchestrator(),
		search:    newMockSearchEngine(),
		dir:       t.TempDir(),
	}
	f.svc = NewImportService(f.courses, f.licenses, f.docs, f.notes, f.blobs, f.converter, f.search)
	return f
}

func (f *importerFixture) writeDescription(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(f.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestImporter_ImportFile(t *testing.T) {
	f := newImporterFixture(t)
	path := f.writeDescription(t, "physics.json", descriptionJSON)

	stats, err := f.svc.ImportFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Files)
	assert.Equal(t, 2, stats.Courses)
	assert.Equal(t, 2, stats.Imported)
	assert.Zero(t, stats.Skipped)
	assert.Zero(t, stats.Failed)

	// Both links went through storage and conversion
	assert.Len(t, f.blobs.stored, 2)
	assert.Len(t, f.converter.converted, 2)

	// The staged documents carry the import metadata
	doc, err := f.docs.GetByUpstreamLink(context.Background(), "https://ocw.example.edu/lec1.pdf")
	require.NoError(t, err)
	assert.Equal(t, "Lecture 1", doc.Name)
	assert.Equal(t, "https://files.example.com/stored", doc.SourceURL)
	assert.Equal(t, "application/pdf", doc.MIMEType)
	assert.Equal(t, []string{"mit-ocw", "karma"}, doc.Tags)
	assert.NotEmpty(t, doc.LicenseID)
}

func TestImporter_SkipsCompleteNotes(t *testing.T) {
	f := newImporterFixture(t)
	ctx := context.Background()

	require.NoError(t, f.notes.Save(ctx, &domain.Note{
		ID:           "done",
		CourseID:     "course-x",
		Name:         "Lecture 1",
		Slug:         "lecture-1",
		UpstreamLink: "https://ocw.example.edu/lec1.pdf",
		Text:         "already converted",
	}))

	path := f.writeDescription(t, "physics.json", descriptionJSON)
	stats, err := f.svc.ImportFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 1, stats.Imported)

	// The complete note was not touched
	_, err = f.notes.Get(ctx, "done")
	assert.NoError(t, err)
	assert.Len(t, f.blobs.stored, 1)
}

func TestImporter_RetriesPartialNotes(t *testing.T) {
	f := newImporterFixture(t)
	ctx := context.Background()

	// A note with no content is a leftover from a failed conversion
	require.NoError(t, f.notes.Save(ctx, &domain.Note{
		ID:           "partial",
		CourseID:     "course-x",
		Name:         "Lecture 1",
		Slug:         "lecture-1",
		UpstreamLink: "https://ocw.example.edu/lec1.pdf",
	}))
	require.NoError(t, f.search.Index(ctx, &domain.Note{ID: "partial", CourseID: "course-x"}))

	path := f.writeDescription(t, "physics.json", descriptionJSON)
	stats, err := f.svc.ImportFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Imported)
	assert.Zero(t, stats.Skipped)

	// The partial note is gone from store and index
	_, err = f.notes.Get(ctx, "partial")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotContains(t, f.search.indexed, "partial")
}

func TestImporter_TerminallyFailedLinkIsCountedFailed(t *testing.T) {
	f := newImporterFixture(t)
	ctx := context.Background()

	// Wire the real orchestrator over the fixture stores, so the re-run
	// sees the terminally failed document instead of a scripted result.
	registry := &mockRegistry{
		supported: []string{"application/pdf"},
		result:    &driven.ConversionResult{Text: "forces and momentum"},
	}
	f.blobs.payloads = map[string][]byte{
		"https://files.example.com/stored": []byte("%PDF-1.4"),
	}
	conv := NewConversionService(f.docs, f.notes, f.blobs, registry, f.search)
	conv.inlineWait = time.Millisecond
	f.svc = NewImportService(f.courses, f.licenses, f.docs, f.notes, f.blobs, conv, f.search)

	// lec1 was staged on an earlier run and its conversion failed for good
	require.NoError(t, f.docs.Save(ctx, &domain.RawDocument{
		ID:           "doc-lec1",
		CourseID:     "course-x",
		Name:         "Lecture 1",
		SourceURL:    "https://files.example.com/broken",
		UpstreamLink: "https://ocw.example.edu/lec1.pdf",
		MIMEType:     "application/pdf",
	}))
	require.NoError(t, f.docs.SetState(ctx, "doc-lec1", domain.StateFailedTerminal, "content could not be extracted"))

	path := f.writeDescription(t, "physics.json", descriptionJSON)
	stats, err := f.svc.ImportFile(ctx, path)
	require.NoError(t, err)

	// lec2 converts; the dead lec1 link is a failure, not an import
	assert.Equal(t, 1, stats.Imported)
	assert.Equal(t, 1, stats.Failed)
	assert.Zero(t, stats.Skipped)

	_, err = f.notes.GetByUpstreamLink(ctx, "https://ocw.example.edu/lec1.pdf")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestImporter_ReusesStagedDocuments(t *testing.T) {
	f := newImporterFixture(t)
	ctx := context.Background()
	path := f.writeDescription(t, "physics.json", descriptionJSON)

	// A previous run staged lec1 but never finished converting it
	course, err := f.courses.EnsureCourse(ctx, domain.Course{Name: "8.01 Classical Mechanics"})
	require.NoError(t, err)
	require.NoError(t, f.docs.Save(ctx, &domain.RawDocument{
		ID:           "staged",
		CourseID:     course.ID,
		Name:         "Lecture 1",
		SourceURL:    "https://files.example.com/earlier",
		UpstreamLink: "https://ocw.example.edu/lec1.pdf",
		MIMEType:     "application/pdf",
	}))

	stats, err := f.svc.ImportFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Imported)

	// lec1 was not uploaded to storage again
	assert.Equal(t, []string{"https://ocw.example.edu/lec2.pdf"}, f.blobs.stored)
	assert.Contains(t, f.converter.converted, "staged")
}

func TestImporter_StorageFailureCountsAsFailed(t *testing.T) {
	f := newImporterFixture(t)
	f.blobs.storeErr = &domain.ServiceError{StatusCode: 502, Message: "bad gateway"}

	path := f.writeDescription(t, "physics.json", descriptionJSON)
	stats, err := f.svc.ImportFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Failed)
	assert.Zero(t, stats.Imported)
	assert.Empty(t, f.converter.converted)
}

func TestImporter_ConversionFailureCountsAsFailed(t *testing.T) {
	f := newImporterFixture(t)
	f.converter.err = domain.ErrContentUnextractable

	path := f.writeDescription(t, "physics.json", descriptionJSON)
	stats, err := f.svc.ImportFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Failed)
	assert.Zero(t, stats.Imported)
}

func TestImporter_InvalidFile(t *testing.T) {
	f := newImporterFixture(t)

	path := f.writeDescription(t, "broken.json", "{not json")
	_, err := f.svc.ImportFile(context.Background(), path)
	assert.ErrorContains(t, err, "parsing description file")

	path = f.writeDescription(t, "empty.json", "{}")
	_, err = f.svc.ImportFile(context.Background(), path)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestImporter_ImportDirectory(t *testing.T) {
	f := newImporterFixture(t)
	f.writeDescription(t, "physics.json", descriptionJSON)
	f.writeDescription(t, "readme.txt", "not a description")
	require.NoError(t, os.Mkdir(filepath.Join(f.dir, "nested.json"), 0700))

	stats, err := f.svc.ImportDirectory(context.Background(), f.dir)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Files)
	assert.Equal(t, 2, stats.Imported)
}

func TestImporter_ImportDirectory_MissingDir(t *testing.T) {
	f := newImporterFixture(t)

	_, err := f.svc.ImportDirectory(context.Background(), filepath.Join(f.dir, "nope"))
	assert.Error(t, err)
}
