package job

import (
	"context"
	"time"
)

// Repository persists jobs. State changes go through CompareAndSwapState and
// ClaimNext only, so concurrent dispatchers and cancellers never overwrite each other.
type Repository interface {
	Create(ctx context.Context, j *Job) error

	// GetByID returns ErrJobNotFound for an unknown id.
	GetByID(ctx context.Context, jobID string) (*Job, error)

	// ListByOwnerKey returns jobs ordered by creation time.
	ListByOwnerKey(ctx context.Context, ownerKey string) ([]*Job, error)

	// ClaimNext promotes the oldest CREATED job to RUNNING and returns it,
	// or returns nil when the queue is empty.
	ClaimNext(ctx context.Context, now time.Time) (*Job, error)

	// CompareAndSwapState moves a job from one state to another and records result.
	// It reports false when the job was not in state from.
	CompareAndSwapState(ctx context.Context, jobID string, from, to State, result string) (bool, error)

	// PurgeFinishedBefore deletes terminal jobs last updated before cutoff.
	PurgeFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Handler executes a claimed job and returns its result summary.
type Handler func(ctx context.Context, j *Job) (string, error)
