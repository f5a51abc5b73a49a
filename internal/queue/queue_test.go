package queue

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/BerylCAtieno/eia-document-api/internal/metrics"
	"github.com/BerylCAtieno/eia-document-api/internal/utils"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *utils.Logger {
	return utils.NewLoggerWithWriter("error", io.Discard)
}

func TestMemoryQueue(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(1)

	job := NewAnalysisJob("doc-1")
	assert.Equal(t, JobTypeAnalyzeDocument, job.Type)
	assert.NotEmpty(t, job.ID)

	require.NoError(t, q.Enqueue(ctx, job))
	assert.ErrorIs(t, q.Enqueue(ctx, NewAnalysisJob("doc-2")), ErrFull)
	assert.Equal(t, 1, q.Len())

	got, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "doc-1", got.DocumentID)

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = q.Dequeue(cctx)
	assert.ErrorIs(t, err, context.Canceled)

	require.NoError(t, q.Close())
	require.NoError(t, q.Close())
	assert.ErrorIs(t, q.Enqueue(ctx, job), ErrClosed)
	_, err = q.Dequeue(ctx)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestRedisQueueConnectErrors(t *testing.T) {
	_, err := NewRedisQueue(context.Background(), "not a url", "")
	assert.ErrorContains(t, err, "parse redis url")

	_, err = NewRedisQueue(context.Background(), "redis://127.0.0.1:1/0", "")
	assert.ErrorContains(t, err, "ping redis")
}

func TestPermanent(t *testing.T) {
	base := errors.New("document not found")
	err := Permanent(base)

	assert.True(t, IsPermanent(err))
	assert.ErrorIs(t, err, base)
	assert.False(t, IsPermanent(base))
}

func TestRetryDelay(t *testing.T) {
	assert.Equal(t, 2*time.Second, RetryDelay(2*time.Second, 1))
	assert.Equal(t, 4*time.Second, RetryDelay(2*time.Second, 2))
	assert.Equal(t, 8*time.Second, RetryDelay(2*time.Second, 3))
	assert.Equal(t, time.Duration(0), RetryDelay(0, 3))
}

type recorder struct {
	mu       sync.Mutex
	attempts []int
}

func (r *recorder) add(attempt int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, attempt)
	return len(r.attempts)
}

func runWorker(t *testing.T, q Queue, handler Handler, opts WorkerOptions, m *metrics.Metrics) (stop func()) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	w := NewWorker(q, handler, opts, testLogger(), m)

	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	return func() {
		cancel()
		select {
		case err := <-errCh:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("worker did not stop")
		}
	}
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for job")
	}
}

func TestWorkerRetriesUntilSuccess(t *testing.T) {
	q := NewMemoryQueue(10)
	m := metrics.NewMetrics()
	rec := &recorder{}
	done := make(chan struct{})

	handler := func(ctx context.Context, job Job) error {
		if rec.add(job.Attempt) < 3 {
			return errors.New("database is locked")
		}
		close(done)
		return nil
	}

	stop := runWorker(t, q, handler, WorkerOptions{Concurrency: 2, MaxAttempts: 3, RetryDelay: time.Millisecond}, m)
	require.NoError(t, q.Enqueue(context.Background(), NewAnalysisJob("doc-1")))
	waitFor(t, done)
	stop()

	assert.Equal(t, []int{1, 2, 3}, rec.attempts)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.JobsTotal.WithLabelValues("retried")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobsTotal.WithLabelValues("succeeded")))
}

func TestWorkerDoesNotRetryPermanentErrors(t *testing.T) {
	q := NewMemoryQueue(10)
	m := metrics.NewMetrics()
	rec := &recorder{}
	done := make(chan struct{})

	handler := func(ctx context.Context, job Job) error {
		rec.add(job.Attempt)
		close(done)
		return Permanent(errors.New("document not found"))
	}

	stop := runWorker(t, q, handler, WorkerOptions{Concurrency: 1, MaxAttempts: 5, RetryDelay: time.Millisecond}, m)
	require.NoError(t, q.Enqueue(context.Background(), NewAnalysisJob("gone")))
	waitFor(t, done)
	stop()

	assert.Equal(t, []int{1}, rec.attempts)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobsTotal.WithLabelValues("failed")))
}

func TestWorkerGivesUpAfterMaxAttempts(t *testing.T) {
	q := NewMemoryQueue(10)
	m := metrics.NewMetrics()
	rec := &recorder{}
	done := make(chan struct{})

	handler := func(ctx context.Context, job Job) error {
		if rec.add(job.Attempt) == 2 {
			close(done)
		}
		return errors.New("still broken")
	}

	stop := runWorker(t, q, handler, WorkerOptions{Concurrency: 1, MaxAttempts: 2, RetryDelay: time.Millisecond}, m)
	require.NoError(t, q.Enqueue(context.Background(), NewAnalysisJob("doc-1")))
	waitFor(t, done)
	stop()

	assert.Equal(t, []int{1, 2}, rec.attempts)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobsTotal.WithLabelValues("exhausted")))
}

func TestWorkerRecoversFromPanics(t *testing.T) {
	q := NewMemoryQueue(10)
	m := metrics.NewMetrics()
	done := make(chan struct{})
	var once sync.Once

	handler := func(ctx context.Context, job Job) error {
		defer once.Do(func() { close(done) })
		panic("nil map")
	}

	stop := runWorker(t, q, handler, WorkerOptions{Concurrency: 1, MaxAttempts: 3, RetryDelay: time.Millisecond}, m)
	require.NoError(t, q.Enqueue(context.Background(), NewAnalysisJob("doc-1")))
	waitFor(t, done)
	stop()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobsTotal.WithLabelValues("failed")))
}

func TestWorkerStopsWhenQueueCloses(t *testing.T) {
	q := NewMemoryQueue(1)
	w := NewWorker(q, func(context.Context, Job) error { return nil }, WorkerOptions{}, testLogger(), nil)

	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(context.Background()) }()

	require.NoError(t, q.Close())
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
}
