// Package queue provides the in-process conversion job queue: a bounded
// worker pool with at-least-once delivery and exponential retry backoff.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/karmanotes/pipeline/internal/core/domain"
	"github.com/karmanotes/pipeline/internal/core/ports/driven"
	"github.com/karmanotes/pipeline/internal/logger"
)

// Ensure InProcess implements the interface.
var _ driven.JobQueue = (*InProcess)(nil)

const (
	defaultWorkers     = 4
	defaultMaxAttempts = 5
	defaultBackoffBase = 2 * time.Second
	defaultBufferSize  = 256
	maxBackoff         = 5 * time.Minute
)

// Options configures the queue.
type Options struct {
	// Workers bounds conversion concurrency.
	Workers int

	// MaxAttempts is the delivery ceiling per document. A job that fails
	// transiently on its final attempt is handed to HandleFailure.
	MaxAttempts int

	// BackoffBase is the delay before the first redelivery; it doubles on
	// each subsequent attempt.
	BackoffBase time.Duration

	// BufferSize is the enqueue channel capacity.
	BufferSize int
}

func (o *Options) withDefaults() {
	if o.Workers <= 0 {
		o.Workers = defaultWorkers
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = defaultMaxAttempts
	}
	if o.BackoffBase <= 0 {
		o.BackoffBase = defaultBackoffBase
	}
	if o.BufferSize <= 0 {
		o.BufferSize = defaultBufferSize
	}
}

// InProcess is an in-memory job queue. Jobs survive only as long as the
// process; documents left mid-conversion at a crash are re-enqueued from
// the store at startup.
type InProcess struct {
	handler driven.JobHandler
	opts    Options
	jobs    chan driven.ConversionJob
	quit    chan struct{}

	mu       sync.Mutex
	inflight map[string]bool
	closed   bool

	stopOnce sync.Once
	retryWG  sync.WaitGroup
}

// New creates a queue delivering jobs to the given handler. The queue
// accepts Enqueue calls immediately; delivery begins when Start runs.
func New(handler driven.JobHandler, opts Options) *InProcess {
	opts.withDefaults()
	return &InProcess{
		handler:  handler,
		opts:     opts,
		jobs:     make(chan driven.ConversionJob, opts.BufferSize),
		quit:     make(chan struct{}),
		inflight: make(map[string]bool),
	}
}

// Enqueue schedules conversion of a raw document. A document already in
// flight is not enqueued twice; the call is a no-op then.
func (q *InProcess) Enqueue(_ context.Context, rawDocumentID string) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return domain.ErrQueueClosed
	}
	if q.inflight[rawDocumentID] {
		q.mu.Unlock()
		return nil
	}
	q.inflight[rawDocumentID] = true
	q.mu.Unlock()

	select {
	case q.jobs <- driven.ConversionJob{RawDocumentID: rawDocumentID, Attempt: 1}:
		return nil
	case <-q.quit:
		q.release(rawDocumentID)
		return domain.ErrQueueClosed
	}
}

// Start launches the worker pool and blocks until the context is
// cancelled or Stop is called. In-flight handlers finish before it
// returns; redeliveries still waiting out a backoff are abandoned.
func (q *InProcess) Start(ctx context.Context) error {
	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-ctx.Done():
			q.Stop()
		case <-q.quit:
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < q.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.worker(workerCtx)
		}()
	}

	wg.Wait()
	q.retryWG.Wait()
	return ctx.Err()
}

// Stop shuts the pool down. Workers finish the job they hold; queued and
// backoff-delayed jobs are dropped and picked up again at next startup
// from the pending documents in the store.
func (q *InProcess) Stop() {
	q.stopOnce.Do(func() {
		q.mu.Lock()
		q.closed = true
		q.mu.Unlock()
		close(q.quit)
	})
}

func (q *InProcess) worker(ctx context.Context) {
	for {
		select {
		case <-q.quit:
			return
		case job := <-q.jobs:
			q.process(ctx, job)
		}
	}
}

func (q *InProcess) process(ctx context.Context, job driven.ConversionJob) {
	err := q.handler.Handle(ctx, job)
	if err == nil {
		q.release(job.RawDocumentID)
		return
	}

	if domain.IsTransient(err) && job.Attempt < q.opts.MaxAttempts {
		logger.Warn("Conversion attempt %d for document %s failed, retrying: %v",
			job.Attempt, job.RawDocumentID, err)
		q.scheduleRetry(driven.ConversionJob{
			RawDocumentID: job.RawDocumentID,
			Attempt:       job.Attempt + 1,
		})
		return
	}

	q.handler.HandleFailure(ctx, job, err)
	q.release(job.RawDocumentID)
}

// scheduleRetry redelivers a job after an exponential backoff. The
// document stays marked in flight for the whole wait, so a concurrent
// Enqueue for it is still deduplicated.
func (q *InProcess) scheduleRetry(job driven.ConversionJob) {
	q.retryWG.Add(1)
	go func() {
		defer q.retryWG.Done()

		timer := time.NewTimer(q.backoff(job.Attempt))
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-q.quit:
			q.release(job.RawDocumentID)
			return
		}

		select {
		case q.jobs <- job:
		case <-q.quit:
			q.release(job.RawDocumentID)
		}
	}()
}

// backoff returns the delay before the given 1-based delivery attempt,
// doubling per attempt and capped.
func (q *InProcess) backoff(attempt int) time.Duration {
	d := q.opts.BackoffBase
	for i := 2; i < attempt; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}

func (q *InProcess) release(rawDocumentID string) {
	q.mu.Lock()
	delete(q.inflight, rawDocumentID)
	q.mu.Unlock()
}
