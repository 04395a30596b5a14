package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/karmanotes/pipeline/internal/core/domain"
	"github.com/karmanotes/pipeline/internal/core/ports/driven"
	"github.com/karmanotes/pipeline/internal/core/ports/driving"
	"github.com/karmanotes/pipeline/internal/logger"
)

// Ensure IntakeService implements the interface.
var _ driving.IntakeService = (*IntakeService)(nil)

// IntakeService accepts uploads: it validates, persists the raw document
// and enqueues conversion. The enqueue happens strictly after the record
// is stored, so a crash between the two leaves a pending document that
// Recover picks up, never a job without a record.
type IntakeService struct {
	docs     driven.RawDocumentStore
	courses  driven.CourseStore
	licenses driven.LicenseStore
	registry driven.ConverterRegistry
	queue    driven.JobQueue
}

// NewIntakeService creates a new intake service.
func NewIntakeService(
	docs driven.RawDocumentStore,
	courses driven.CourseStore,
	licenses driven.LicenseStore,
	registry driven.ConverterRegistry,
	queue driven.JobQueue,
) *IntakeService {
	return &IntakeService{
		docs:     docs,
		courses:  courses,
		licenses: licenses,
		registry: registry,
		queue:    queue,
	}
}

// Upload validates the request, persists a RawDocument and enqueues its
// conversion.
func (s *IntakeService) Upload(ctx context.Context, req driving.UploadRequest) (*domain.RawDocument, error) {
	if err := s.validate(ctx, req); err != nil {
		return nil, err
	}

	doc := &domain.RawDocument{
		ID:           uuid.New().String(),
		CourseID:     req.CourseID,
		Name:         req.Name,
		Slug:         domain.Slugify(req.Name),
		SourceURL:    req.SourceURL,
		UpstreamLink: req.UpstreamLink,
		MIMEType:     req.MIMEType,
		LicenseID:    req.LicenseID,
		Tags:         req.Tags,
		UploaderIP:   req.UploaderIP,
		State:        domain.StateUploaded,
	}

	if err := s.docs.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("persisting raw document: %w", err)
	}

	// Enqueue only after the record is durably stored. A failed enqueue
	// is not fatal: the document stays pending and Recover re-queues it.
	if err := s.queue.Enqueue(ctx, doc.ID); err != nil {
		logger.Warn("Failed to enqueue conversion for document %s: %v", doc.ID, err)
	}
	return doc, nil
}

// Reconvert re-enqueues conversion for an unprocessed document.
func (s *IntakeService) Reconvert(ctx context.Context, rawDocumentID string) error {
	doc, err := s.docs.Get(ctx, rawDocumentID)
	if err != nil {
		return fmt.Errorf("loading document: %w", err)
	}
	if doc.Processed() {
		return domain.ErrAlreadyProcessed
	}
	if doc.State == domain.StateFailedTerminal {
		return domain.ErrFailedTerminal
	}

	if err := s.queue.Enqueue(ctx, doc.ID); err != nil {
		return fmt.Errorf("enqueueing conversion: %w", err)
	}
	return nil
}

// Recover re-enqueues every document left pending by a previous process.
// Called at startup so documents caught mid-conversion by a crash are
// retried rather than abandoned.
func (s *IntakeService) Recover(ctx context.Context) (int, error) {
	pending, err := s.docs.ListPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing pending documents: %w", err)
	}

	recovered := 0
	for i := range pending {
		if err := s.queue.Enqueue(ctx, pending[i].ID); err != nil {
			return recovered, fmt.Errorf("enqueueing document %s: %w", pending[i].ID, err)
		}
		recovered++
	}
	if recovered > 0 {
		logger.Info("Re-enqueued %d pending documents", recovered)
	}
	return recovered, nil
}

func (s *IntakeService) validate(ctx context.Context, req driving.UploadRequest) error {
	switch {
	case strings.TrimSpace(req.Name) == "":
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	case strings.TrimSpace(req.SourceURL) == "":
		return fmt.Errorf("%w: source url is required", domain.ErrValidation)
	case strings.TrimSpace(req.MIMEType) == "":
		return fmt.Errorf("%w: mime type is required", domain.ErrValidation)
	case strings.TrimSpace(req.CourseID) == "":
		return fmt.Errorf("%w: course id is required", domain.ErrValidation)
	}

	// Unconvertible types are rejected up front rather than failing the
	// job later.
	if !s.supported(req.MIMEType) {
		return fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, req.MIMEType)
	}

	if _, err := s.courses.GetCourse(ctx, req.CourseID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: unknown course %q", domain.ErrValidation, req.CourseID)
		}
		return fmt.Errorf("checking course: %w", err)
	}

	if req.LicenseID != "" {
		if _, err := s.licenses.Get(ctx, req.LicenseID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: unknown license %q", domain.ErrValidation, req.LicenseID)
			}
			return fmt.Errorf("checking license: %w", err)
		}
	}
	return nil
}

func (s *IntakeService) supported(mimeType string) bool {
	for _, m := range s.registry.SupportedMIMETypes() {
		if m == mimeType {
			return true
		}
	}
	return false
}
