// Package queue delivers background analysis jobs to a worker pool.
package queue

import (
	"context"
	"errors"
	"time"

	"github.com/BerylCAtieno/eia-document-api/internal/utils"
	"github.com/cenkalti/backoff/v5"
)

const JobTypeAnalyzeDocument = "analyze_document"

var (
	ErrFull   = errors.New("queue is full")
	ErrClosed = errors.New("queue is closed")
)

type Job struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	DocumentID string    `json:"document_id"`
	Attempt    int       `json:"attempt"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

func NewAnalysisJob(documentID string) Job {
	return Job{
		ID:         utils.GenerateID(),
		Type:       JobTypeAnalyzeDocument,
		DocumentID: documentID,
		EnqueuedAt: time.Now().UTC(),
	}
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	// Dequeue blocks until a job is available, ctx is done or the queue is
	// closed.
	Dequeue(ctx context.Context) (Job, error)
	Close() error
}

// Permanent marks a handler error as not worth retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

func IsPermanent(err error) bool {
	var perm *backoff.PermanentError
	return errors.As(err, &perm)
}
