package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	// In particular: a raw document with the same source URL was already
	// uploaded to the same course.
	ErrAlreadyExists = errors.New("already exists")

	// ErrValidation indicates malformed or invalid input, rejected
	// synchronously before anything is persisted.
	ErrValidation = errors.New("validation failed")

	// ErrUnsupportedFormat indicates no converter handles the document's
	// MIME type. Terminal: no Note is created and the document is never
	// retried.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrContentUnextractable indicates the payload could not be parsed by
	// the converter that claims its MIME type (corrupt PDF, invalid UTF-8,
	// empty extraction). Terminal.
	ErrContentUnextractable = errors.New("content could not be extracted")

	// ErrAlreadyProcessed indicates a conversion was requested for a
	// document that has already produced a Note.
	ErrAlreadyProcessed = errors.New("document already processed")

	// ErrFailedTerminal indicates a conversion was requested for a
	// document whose conversion already failed terminally. The document
	// stays flagged; it is never converted again automatically.
	ErrFailedTerminal = errors.New("document failed terminally")

	// ErrQueueClosed indicates a job was enqueued after queue shutdown.
	ErrQueueClosed = errors.New("queue closed")
)

// ServiceError is an error response from an external service (the
// conversion service or the blob storage service). The status code decides
// whether the failure is transient.
type ServiceError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int

	// Message is the service's error message, if any.
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("service error %d: %s", e.StatusCode, e.Message)
}

// Transient reports whether the error is worth retrying. Forbidden and
// rate-limit responses are transient (the conversion service returns 403
// while throttling), as are server-side errors.
func (e *ServiceError) Transient() bool {
	switch {
	case e.StatusCode == 403, e.StatusCode == 429:
		return true
	case e.StatusCode >= 500:
		return true
	}
	return false
}

// IsTransient classifies a conversion error as retryable or terminal.
// An error is terminal unless it is recognisably transient: unknown errors
// must never loop, so the default is false.
func IsTransient(err error) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Transient()
	}
	return false
}

// IsTerminal reports whether a conversion error should discard the
// document rather than requeue it.
func IsTerminal(err error) bool {
	return err != nil && !IsTransient(err)
}
