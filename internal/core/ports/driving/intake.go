package driving

import (
	"context"

	"github.com/karmanotes/pipeline/internal/core/domain"
)

// UploadRequest carries the fields of an upload intake call.
type UploadRequest struct {
	// CourseID is the destination course. Must reference an existing
	// course.
	CourseID string

	// Name is the display name for the eventual note.
	Name string

	// SourceURL is the stored-file URL returned by the storage service.
	SourceURL string

	// MIMEType is the declared content type. Required.
	MIMEType string

	// Tags are optional free-form labels.
	Tags []string

	// LicenseID optionally references a license.
	LicenseID string

	// UploaderIP is the client address, recorded for abuse follow-up.
	UploaderIP string

	// UpstreamLink is the original external URL for imported documents.
	UpstreamLink string
}

// IntakeService accepts uploads into the pipeline. Upload returns as soon
// as the record is written and the conversion job is queued; the caller
// never waits on conversion.
type IntakeService interface {
	// Upload validates the request, persists a RawDocument and enqueues
	// its conversion. Fails with domain.ErrValidation on bad input and
	// domain.ErrAlreadyExists on duplicate source URL within the course.
	Upload(ctx context.Context, req UploadRequest) (*domain.RawDocument, error)

	// Reconvert re-enqueues conversion for an unprocessed document.
	// Fails with domain.ErrAlreadyProcessed for converted documents.
	Reconvert(ctx context.Context, rawDocumentID string) error

	// Recover re-enqueues every document left pending by a previous
	// process, so no unprocessed document is silently abandoned.
	Recover(ctx context.Context) (int, error)
}
