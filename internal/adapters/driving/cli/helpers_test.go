package cli

import (
	"context"
	"errors"

	"github.com/karmanotes/pipeline/internal/core/domain"
	"github.com/karmanotes/pipeline/internal/core/ports/driving"
)

// setupTestServices installs fake services into the package-level vars
// and returns a cleanup restoring the originals. initApp skips wiring
// when services are already present, so commands run against the fakes.
func setupTestServices() func() {
	oldIntake := intakeService
	oldSearch := searchService
	oldImport := importService
	oldConvert := convertService

	intakeService = &fakeIntakeService{}
	searchService = &fakeSearchService{
		results: []domain.SearchResult{
			{
				Note:    domain.Note{ID: "note-1", Name: "Lecture 1"},
				Score:   1.5,
				Snippet: "a <b>snippet</b>",
			},
		},
	}
	importService = &fakeImporter{stats: &driving.ImportStats{Files: 1, Courses: 2, Imported: 3}}
	convertService = &fakeOrchestrator{}

	return func() {
		intakeService = oldIntake
		searchService = oldSearch
		importService = oldImport
		convertService = oldConvert
	}
}

type fakeIntakeService struct {
	reconverted []string
}

var _ driving.IntakeService = (*fakeIntakeService)(nil)

func (f *fakeIntakeService) Upload(_ context.Context, req driving.UploadRequest) (*domain.RawDocument, error) {
	return &domain.RawDocument{ID: "doc-1", Name: req.Name, State: domain.StateUploaded}, nil
}

func (f *fakeIntakeService) Reconvert(_ context.Context, id string) error {
	f.reconverted = append(f.reconverted, id)
	return nil
}

func (f *fakeIntakeService) Recover(context.Context) (int, error) {
	return 0, nil
}

type fakeSearchService struct {
	results []domain.SearchResult
	err     error

	query string
	opts  domain.SearchOptions
}

var _ driving.SearchService = (*fakeSearchService)(nil)

func (f *fakeSearchService) Search(_ context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	f.query = query
	f.opts = opts
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func (f *fakeSearchService) Remove(context.Context, string) error {
	return nil
}

type fakeImporter struct {
	stats *driving.ImportStats
	err   error
	dir   string
}

var _ driving.Importer = (*fakeImporter)(nil)

func (f *fakeImporter) ImportDirectory(_ context.Context, dir string) (*driving.ImportStats, error) {
	f.dir = dir
	if f.err != nil {
		return nil, f.err
	}
	return f.stats, nil
}

func (f *fakeImporter) ImportFile(context.Context, string) (*driving.ImportStats, error) {
	return f.stats, f.err
}

type fakeOrchestrator struct {
	converted []string
	err       error
}

var _ driving.ConversionOrchestrator = (*fakeOrchestrator)(nil)

func (f *fakeOrchestrator) Process(_ context.Context, id string) error {
	return f.ConvertNow(context.Background(), id)
}

func (f *fakeOrchestrator) ConvertNow(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.converted = append(f.converted, id)
	return nil
}

func (f *fakeOrchestrator) Discard(context.Context, string, error) {}

var errFakeService = errors.New("fake service failure")
