package driven

import "context"

// ConversionJob is a unit of work for the conversion worker pool.
type ConversionJob struct {
	// RawDocumentID identifies the document to convert.
	RawDocumentID string

	// Attempt is the 1-based delivery count for this job.
	Attempt int
}

// JobHandler executes conversion jobs delivered by the queue.
type JobHandler interface {
	// Handle converts one document. A returned error classified transient
	// (domain.IsTransient) causes redelivery with backoff; any other error
	// ends the job via HandleFailure.
	Handle(ctx context.Context, job ConversionJob) error

	// HandleFailure runs when a job fails terminally, either from a
	// terminal error or after the retry ceiling. It must leave a log
	// record; the job is never redelivered afterwards.
	HandleFailure(ctx context.Context, job ConversionJob, err error)
}

// JobQueue decouples upload acknowledgement from conversion latency.
// Enqueue returns immediately; delivery to a worker is at-least-once with
// a configurable concurrency bound. At most one job per document is in
// flight at a time.
type JobQueue interface {
	// Enqueue schedules conversion of a raw document.
	Enqueue(ctx context.Context, rawDocumentID string) error

	// Start launches the worker pool. Blocks until ctx is cancelled or
	// Stop is called.
	Start(ctx context.Context) error

	// Stop drains in-flight jobs and shuts the pool down.
	Stop()
}
