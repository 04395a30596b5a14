package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/karmanotes/pipeline/internal/core/domain"
	"github.com/karmanotes/pipeline/internal/core/ports/driven"
	"github.com/karmanotes/pipeline/internal/core/ports/driving"
	"github.com/karmanotes/pipeline/internal/logger"
)

// Ensure ImportService implements the interface.
var _ driving.Importer = (*ImportService)(nil)

// Course description files follow the mit-ocw-scraper format, so the
// school and license are fixed for now.
const (
	importSchoolName = "Massachusetts Institute of Technology"
	importSchoolUSDE = 121415

	importLicenseName = "cc-by-nc-3.0"
	importLicenseHTML = `<a rel="license" href="http://creativecommons.org/licenses/by-nc/4.0/"><img alt="Creative Commons License" style="border-width:0" src="http://i.creativecommons.org/l/by-nc/4.0/88x31.png" /></a>`
)

// importTags label every imported note.
var importTags = []string{"mit-ocw", "karma"}

// descriptionFile is one scraped department description.
type descriptionFile struct {
	Subject        string        `json:"subject"`
	DepartmentLink string        `json:"departmentLink"`
	Courses        []courseEntry `json:"courses"`
}

type courseEntry struct {
	CourseTitle string     `json:"courseTitle"`
	Professor   string     `json:"professor"`
	NoteLinks   []noteLink `json:"noteLinks"`
}

type noteLink struct {
	Link     string `json:"link"`
	FileName string `json:"fileName"`
}

// ImportService bulk-loads directories of course description files,
// pushing every referenced link through storage and conversion. Re-runs
// are idempotent: already converted notes are skipped, partial notes are
// removed and converted again.
type ImportService struct {
	courses   driven.CourseStore
	licenses  driven.LicenseStore
	docs      driven.RawDocumentStore
	notes     driven.NoteStore
	blobs     driven.BlobStore
	converter driving.ConversionOrchestrator
	search    driven.SearchEngine
}

// NewImportService creates a new import service.
func NewImportService(
	courses driven.CourseStore,
	licenses driven.LicenseStore,
	docs driven.RawDocumentStore,
	notes driven.NoteStore,
	blobs driven.BlobStore,
	converter driving.ConversionOrchestrator,
	search driven.SearchEngine,
) *ImportService {
	return &ImportService{
		courses:   courses,
		licenses:  licenses,
		docs:      docs,
		notes:     notes,
		blobs:     blobs,
		converter: converter,
		search:    search,
	}
}

// ImportDirectory processes every description file in dir.
func (s *ImportService) ImportDirectory(ctx context.Context, dir string) (*driving.ImportStats, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading import directory: %w", err)
	}

	stats := &driving.ImportStats{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}

		fileStats, err := s.ImportFile(ctx, filepath.Join(dir, entry.Name()))
		if err != nil {
			return stats, fmt.Errorf("importing %s: %w", entry.Name(), err)
		}
		stats.Files += fileStats.Files
		stats.Courses += fileStats.Courses
		stats.Imported += fileStats.Imported
		stats.Skipped += fileStats.Skipped
		stats.Failed += fileStats.Failed
	}
	return stats, nil
}

// ImportFile processes a single description file.
func (s *ImportService) ImportFile(ctx context.Context, path string) (*driving.ImportStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading description file: %w", err)
	}

	var desc descriptionFile
	if err := json.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("parsing description file: %w", err)
	}
	if desc.Subject == "" {
		return nil, fmt.Errorf("%w: description file has no subject", domain.ErrValidation)
	}

	school, err := s.courses.EnsureSchool(ctx, domain.School{
		Name:   importSchoolName,
		USDEID: importSchoolUSDE,
	})
	if err != nil {
		return nil, fmt.Errorf("ensuring school: %w", err)
	}

	license, err := s.licenses.Ensure(ctx, domain.License{
		Name: importLicenseName,
		HTML: importLicenseHTML,
	})
	if err != nil {
		return nil, fmt.Errorf("ensuring license: %w", err)
	}

	dept, err := s.courses.EnsureDepartment(ctx, domain.Department{
		SchoolID: school.ID,
		Name:     desc.Subject,
		URL:      desc.DepartmentLink,
	})
	if err != nil {
		return nil, fmt.Errorf("ensuring department: %w", err)
	}

	stats := &driving.ImportStats{Files: 1}
	for _, entry := range desc.Courses {
		course, err := s.ensureCourse(ctx, school, dept, entry)
		if err != nil {
			return stats, err
		}
		stats.Courses++

		logger.Info("Importing %d notes for course %s", len(entry.NoteLinks), course.Name)
		for _, link := range entry.NoteLinks {
			s.importNote(ctx, course, license, link, stats)
		}
	}
	return stats, nil
}

func (s *ImportService) ensureCourse(ctx context.Context, school *domain.School, dept *domain.Department, entry courseEntry) (*domain.Course, error) {
	if entry.Professor != "" {
		if _, err := s.courses.EnsureProfessor(ctx, domain.Professor{Name: entry.Professor}); err != nil {
			return nil, fmt.Errorf("ensuring professor: %w", err)
		}
	}

	course, err := s.courses.EnsureCourse(ctx, domain.Course{
		DepartmentID:   dept.ID,
		SchoolID:       school.ID,
		Name:           entry.CourseTitle,
		InstructorName: entry.Professor,
	})
	if err != nil {
		return nil, fmt.Errorf("ensuring course: %w", err)
	}
	return course, nil
}

// importNote pushes one external link through storage and conversion.
// Failures never abort the run; they are logged and counted so one bad
// link cannot stall an import of thousands.
func (s *ImportService) importNote(ctx context.Context, course *domain.Course, license *domain.License, link noteLink, stats *driving.ImportStats) {
	existing, err := s.notes.GetByUpstreamLink(ctx, link.Link)
	if err == nil {
		if existing.Complete() {
			stats.Skipped++
			return
		}
		// Partial note from an earlier failed run: remove and retry.
		logger.Info("Removing incomplete note %s for %s", existing.ID, link.Link)
		if err := s.notes.Delete(ctx, existing.ID); err != nil {
			logger.Error("Failed to remove incomplete note %s: %v", existing.ID, err)
			stats.Failed++
			return
		}
		if err := s.search.Delete(ctx, existing.ID); err != nil {
			logger.Warn("Failed to deindex note %s: %v", existing.ID, err)
		}
	} else if !errors.Is(err, domain.ErrNotFound) {
		logger.Error("Failed to look up note for %s: %v", link.Link, err)
		stats.Failed++
		return
	}

	doc, err := s.ensureRawDocument(ctx, course, license, link)
	if err != nil {
		logger.Error("Failed to stage %s: %v", link.Link, err)
		stats.Failed++
		return
	}

	if err := s.converter.ConvertNow(ctx, doc.ID); err != nil {
		if errors.Is(err, domain.ErrFailedTerminal) {
			logger.Warn("Skipping %s: conversion failed terminally on an earlier run", link.Link)
		}
		// ConvertNow has already logged and flagged new failures.
		stats.Failed++
		return
	}
	stats.Imported++
}

// ensureRawDocument stores the external link in the storage service and
// records the raw document, unless a previous run already did.
func (s *ImportService) ensureRawDocument(ctx context.Context, course *domain.Course, license *domain.License, link noteLink) (*domain.RawDocument, error) {
	doc, err := s.docs.GetByUpstreamLink(ctx, link.Link)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("looking up raw document: %w", err)
	}

	storedURL, mimeType, err := s.blobs.Store(ctx, link.Link)
	if err != nil {
		return nil, fmt.Errorf("storing external file: %w", err)
	}

	doc = &domain.RawDocument{
		ID:           uuid.New().String(),
		CourseID:     course.ID,
		Name:         link.FileName,
		Slug:         domain.Slugify(link.FileName),
		SourceURL:    storedURL,
		UpstreamLink: link.Link,
		MIMEType:     mimeType,
		LicenseID:    license.ID,
		Tags:         importTags,
		State:        domain.StateUploaded,
	}
	if err := s.docs.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("persisting raw document: %w", err)
	}
	return doc, nil
}
