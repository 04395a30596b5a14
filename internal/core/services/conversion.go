package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/karmanotes/pipeline/internal/core/domain"
	"github.com/karmanotes/pipeline/internal/core/ports/driven"
	"github.com/karmanotes/pipeline/internal/core/ports/driving"
	"github.com/karmanotes/pipeline/internal/logger"
)

// Ensure ConversionService implements both the orchestrator and the
// queue's handler interface.
var (
	_ driving.ConversionOrchestrator = (*ConversionService)(nil)
	_ driven.JobHandler              = (*ConversionService)(nil)
)

const (
	// slugAttempts bounds slug disambiguation.
	slugAttempts = 100

	// inlineRetries bounds ConvertNow's synchronous retry loop.
	inlineRetries = 5

	// inlineBackoff is the wait between inline retries.
	inlineBackoff = 2 * time.Second
)

// ConversionService drives raw documents through conversion: fetch the
// payload, extract content, create the Note, retire the RawDocument and
// index the Note. Content extraction itself is a pure function of the
// payload, delegated to the converter registry; everything stateful
// happens here.
type ConversionService struct {
	docs     driven.RawDocumentStore
	notes    driven.NoteStore
	blobs    driven.BlobStore
	registry driven.ConverterRegistry
	search   driven.SearchEngine

	// inlineWait is the pause between ConvertNow retries.
	inlineWait time.Duration
}

// NewConversionService creates a new conversion service.
func NewConversionService(
	docs driven.RawDocumentStore,
	notes driven.NoteStore,
	blobs driven.BlobStore,
	registry driven.ConverterRegistry,
	search driven.SearchEngine,
) *ConversionService {
	return &ConversionService{
		docs:       docs,
		notes:      notes,
		blobs:      blobs,
		registry:   registry,
		search:     search,
		inlineWait: inlineBackoff,
	}
}

// Process converts one raw document end to end. Redelivery of an already
// converted document is a no-op, which makes at-least-once delivery safe.
func (s *ConversionService) Process(ctx context.Context, rawDocumentID string) error {
	doc, err := s.docs.Get(ctx, rawDocumentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Retired after a successful conversion; nothing to do.
			return nil
		}
		return fmt.Errorf("loading document: %w", err)
	}

	if doc.Processed() {
		return nil
	}
	// A terminal failure is not a success: callers reporting on the
	// outcome must not mistake the flagged document for a converted one.
	if doc.State == domain.StateFailedTerminal {
		return fmt.Errorf("document %s: %w", doc.ID, domain.ErrFailedTerminal)
	}

	if err := s.docs.SetState(ctx, doc.ID, domain.StateConverting, ""); err != nil {
		return fmt.Errorf("marking document converting: %w", err)
	}

	note, err := s.convert(ctx, doc)
	if err != nil {
		if domain.IsTransient(err) {
			if stateErr := s.docs.SetState(ctx, doc.ID, domain.StateFailedRetryable, err.Error()); stateErr != nil {
				logger.Error("Failed to record retryable failure for document %s: %v", doc.ID, stateErr)
			}
		}
		return err
	}

	if err := s.docs.MarkProcessed(ctx, doc.ID); err != nil {
		return fmt.Errorf("marking document processed: %w", err)
	}
	if err := s.docs.Delete(ctx, doc.ID); err != nil {
		logger.Warn("Failed to retire converted document %s: %v", doc.ID, err)
	}

	// Indexing is best-effort: the note exists either way and the index
	// catches up on the next update.
	if err := s.search.Index(ctx, note); err != nil {
		logger.Warn("Failed to index note %s: %v", note.ID, err)
	}

	logger.Info("Converted document %s into note %s", doc.ID, note.ID)
	return nil
}

// ConvertNow runs Process with bounded inline retries on transient
// errors, for callers that need a synchronous result.
func (s *ConversionService) ConvertNow(ctx context.Context, rawDocumentID string) error {
	var err error
	for attempt := 1; attempt <= inlineRetries; attempt++ {
		err = s.Process(ctx, rawDocumentID)
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrFailedTerminal) {
			// Already discarded on a previous run; nothing to clean up.
			return err
		}
		if !domain.IsTransient(err) {
			s.Discard(ctx, rawDocumentID, err)
			return err
		}

		logger.Warn("Conversion attempt %d for document %s failed, retrying: %v",
			attempt, rawDocumentID, err)
		select {
		case <-time.After(s.inlineWait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.Discard(ctx, rawDocumentID, err)
	return err
}

// Discard handles a terminal failure: it logs the source reference,
// removes any partial note and flags the document so it is never
// reprocessed automatically.
func (s *ConversionService) Discard(ctx context.Context, rawDocumentID string, cause error) {
	doc, err := s.docs.Get(ctx, rawDocumentID)
	if err != nil {
		logger.Error("Conversion failed terminally for document %s: %v", rawDocumentID, cause)
		return
	}

	// Already flagged on an earlier attempt; discarding again would only
	// repeat the log line.
	if doc.State == domain.StateFailedTerminal {
		return
	}

	source := doc.SourceURL
	if doc.UpstreamLink != "" {
		source = doc.UpstreamLink
	}
	logger.Error("Conversion failed terminally for document %s (source %s): %v",
		doc.ID, source, cause)

	s.removePartialNote(ctx, doc)

	if err := s.docs.SetState(ctx, doc.ID, domain.StateFailedTerminal, cause.Error()); err != nil {
		logger.Error("Failed to flag document %s as terminally failed: %v", doc.ID, err)
	}
}

// Handle lets the service act as the queue's job handler.
func (s *ConversionService) Handle(ctx context.Context, job driven.ConversionJob) error {
	return s.Process(ctx, job.RawDocumentID)
}

// HandleFailure is called by the queue when a job fails terminally.
func (s *ConversionService) HandleFailure(ctx context.Context, job driven.ConversionJob, err error) {
	s.Discard(ctx, job.RawDocumentID, err)
}

// convert fetches the payload, extracts its content and persists the
// resulting note.
func (s *ConversionService) convert(ctx context.Context, doc *domain.RawDocument) (*domain.Note, error) {
	payload, err := s.blobs.Fetch(ctx, doc.SourceURL)
	if err != nil {
		return nil, fmt.Errorf("fetching payload: %w", err)
	}

	result, err := s.registry.Convert(ctx, doc, payload)
	if err != nil {
		return nil, err
	}

	note := &domain.Note{
		ID:           uuid.New().String(),
		CourseID:     doc.CourseID,
		Name:         doc.Name,
		SourceURL:    doc.SourceURL,
		UpstreamLink: doc.UpstreamLink,
		MIMEType:     doc.MIMEType,
		Text:         result.Text,
		HTML:         result.HTML,
		Tags:         doc.Tags,
		LicenseID:    doc.LicenseID,
	}
	if !note.Complete() {
		return nil, fmt.Errorf("%w: converter produced no content", domain.ErrContentUnextractable)
	}

	if err := s.saveWithSlug(ctx, note, doc.Slug); err != nil {
		return nil, err
	}
	return note, nil
}

// saveWithSlug persists the note under the first free slug within its
// course. A concurrent insert of the same slug surfaces as
// ErrAlreadyExists from the store, in which case the next candidate is
// tried; the uniqueness constraint is the arbiter, not a prior lookup.
func (s *ConversionService) saveWithSlug(ctx context.Context, note *domain.Note, base string) error {
	if base == "" {
		base = domain.Slugify(note.Name)
	}

	for n := 0; n < slugAttempts; n++ {
		note.Slug = domain.DisambiguateSlug(base, n)
		err := s.notes.Save(ctx, note)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrAlreadyExists) {
			return fmt.Errorf("saving note: %w", err)
		}
	}
	return fmt.Errorf("saving note: no free slug for %q", base)
}

// removePartialNote deletes an incomplete note left over from a failed
// conversion, so the course listing never shows an empty note.
func (s *ConversionService) removePartialNote(ctx context.Context, doc *domain.RawDocument) {
	if doc.UpstreamLink == "" {
		return
	}

	note, err := s.notes.GetByUpstreamLink(ctx, doc.UpstreamLink)
	if err != nil || note.Complete() {
		return
	}

	logger.Info("Removing incomplete note %s for %s", note.ID, doc.UpstreamLink)
	if err := s.notes.Delete(ctx, note.ID); err != nil {
		logger.Warn("Failed to remove incomplete note %s: %v", note.ID, err)
		return
	}
	if err := s.search.Delete(ctx, note.ID); err != nil {
		logger.Warn("Failed to deindex note %s: %v", note.ID, err)
	}
}
