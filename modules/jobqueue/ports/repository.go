package ports

import (
	"context"
	"time"

	"github.com/andreypavlenko/talentpipe/modules/jobqueue/model"
)

// EnqueueInput describes a new job before it is assigned an id and timestamps.
type EnqueueInput struct {
	Kind          string
	Payload       []byte
	Metadata      map[string]string
	Priority      int
	CorrelationID string
	MaxRetries    int
	ScheduledFor  *time.Time
}

// JobQueueRepository is the durable store a Job Queue service is built on.
// Claim must be implemented with row-level locking (SELECT ... FOR UPDATE
// SKIP LOCKED or an equivalent) so concurrent callers never observe the same
// PENDING row.
type JobQueueRepository interface {
	Enqueue(ctx context.Context, in EnqueueInput) (*model.Job, error)
	Claim(ctx context.Context, kind string, batchSize int, workerID string) ([]*model.Job, error)
	Heartbeat(ctx context.Context, jobID string) error
	Complete(ctx context.Context, jobID string, result map[string]string) error
	Fail(ctx context.Context, jobID string, errMsg string, retryable bool, maxBackoff, baseBackoff time.Duration) error
	Cancel(ctx context.Context, jobID string) (bool, error)
	ResetStale(ctx context.Context, thresholdMinutes int) (int, error)

	Get(ctx context.Context, jobID string) (*model.Job, error)
	ByCorrelation(ctx context.Context, correlationID string) ([]*model.Job, error)
	ByStatus(ctx context.Context, status model.Status, limit, offset int) ([]*model.Job, int, error)
	QueueDepth(ctx context.Context, kind string) (int, error)
	CountByStatus(ctx context.Context, status model.Status) (int, error)
	StatsByKind(ctx context.Context, kind string) (*model.KindStats, error)
	DeleteCompletedOlderThan(ctx context.Context, days int) (int, error)
	FindForRetry(ctx context.Context, kind string, limit int) ([]*model.Job, error)
}
