package driving

import "context"

// ImportStats summarises a bulk import run.
type ImportStats struct {
	// Files is the number of description files parsed.
	Files int

	// Courses is the number of courses seen.
	Courses int

	// Imported is the number of notes converted on this run.
	Imported int

	// Skipped counts notes already fully converted (idempotent re-run).
	Skipped int

	// Failed counts notes whose conversion failed terminally and was
	// logged and skipped.
	Failed int
}

// Importer loads directories of structured school description files,
// uploading and converting every referenced note link. Re-running over the
// same directory is a no-op for notes already converted.
type Importer interface {
	// ImportDirectory processes every description file in dir.
	ImportDirectory(ctx context.Context, dir string) (*ImportStats, error)

	// ImportFile processes a single description file.
	ImportFile(ctx context.Context, path string) (*ImportStats, error)
}
