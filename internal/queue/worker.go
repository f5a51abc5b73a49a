package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/BerylCAtieno/eia-document-api/internal/metrics"
	"github.com/BerylCAtieno/eia-document-api/internal/utils"
	"github.com/cenkalti/backoff/v5"
	"golang.org/x/sync/errgroup"
)

// Handler processes one job. Errors wrapped with Permanent are not retried.
type Handler func(ctx context.Context, job Job) error

type WorkerOptions struct {
	Concurrency int
	MaxAttempts int
	RetryDelay  time.Duration
}

type Worker struct {
	queue   Queue
	handler Handler
	opts    WorkerOptions
	logger  *utils.Logger
	metrics *metrics.Metrics

	retries sync.WaitGroup
}

func NewWorker(q Queue, handler Handler, opts WorkerOptions, logger *utils.Logger, m *metrics.Metrics) *Worker {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	return &Worker{
		queue:   q,
		handler: handler,
		opts:    opts,
		logger:  logger.With("component", "JobWorker"),
		metrics: m,
	}
}

// Run starts the pool and blocks until ctx is cancelled or the queue closes.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("Starting job worker pool", "concurrency", w.opts.Concurrency)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < w.opts.Concurrency; i++ {
		workerID := i + 1
		g.Go(func() error {
			return w.loop(gctx, workerID)
		})
	}

	err := g.Wait()
	w.retries.Wait()
	return err
}

func (w *Worker) loop(ctx context.Context, workerID int) error {
	for {
		job, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, ErrClosed) {
				w.logger.Info("Worker loop stopped", "worker_id", workerID)
				return nil
			}
			w.logger.Warn("Dequeue failed", "worker_id", workerID, "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		w.process(ctx, workerID, job)
	}
}

func (w *Worker) process(ctx context.Context, workerID int, job Job) {
	job.Attempt++
	log := w.logger.With("worker_id", workerID, "job_id", job.ID, "job_type", job.Type,
		"document_id", job.DocumentID, "attempt", job.Attempt)

	err := w.handle(ctx, job)
	switch {
	case err == nil:
		w.metrics.RecordJob("succeeded")
		log.Info("Job completed")
	case IsPermanent(err):
		w.metrics.RecordJob("failed")
		log.Error("Job failed permanently", "error", err)
	case job.Attempt >= w.opts.MaxAttempts:
		w.metrics.RecordJob("exhausted")
		log.Error("Job failed after max attempts", "error", err)
	default:
		delay := RetryDelay(w.opts.RetryDelay, job.Attempt)
		w.metrics.RecordJob("retried")
		log.Warn("Job failed, scheduling retry", "error", err, "delay", delay)
		w.scheduleRetry(ctx, job, delay)
	}
}

func (w *Worker) handle(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = Permanent(fmt.Errorf("job handler panic: %v", r))
		}
	}()
	return w.handler(ctx, job)
}

func (w *Worker) scheduleRetry(ctx context.Context, job Job, delay time.Duration) {
	w.retries.Add(1)
	go func() {
		defer w.retries.Done()

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			w.logger.Warn("Dropping job retry on shutdown", "job_id", job.ID)
			return
		case <-timer.C:
		}

		if err := w.queue.Enqueue(ctx, job); err != nil {
			w.metrics.RecordJob("dropped")
			w.logger.Error("Failed to re-enqueue job", "job_id", job.ID, "error", err)
		}
	}()
}

// RetryDelay returns the exponential delay before retry number attempt,
// starting at base and doubling each time.
func RetryDelay(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = base
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = 5 * time.Minute
	b.Reset()

	delay := base
	for i := 0; i < attempt; i++ {
		delay = b.NextBackOff()
	}
	return delay
}
