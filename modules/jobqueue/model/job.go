package model

import "time"

// Status is the lifecycle state of a JobQueue row.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
	StatusCancelled  Status = "CANCELLED"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// Job is a single unit of durable work. Kind is a free-form string so the
// queue stays generic across job families (résumé ingest, zip fan-out, ...).
type Job struct {
	ID            string
	Kind          string
	Status        Status
	Priority      int
	Payload       []byte
	Metadata      map[string]string
	CorrelationID string
	RetryCount    int
	MaxRetries    int
	ScheduledFor  *time.Time
	StartedAt     *time.Time
	CompletedAt   *time.Time
	HeartbeatAt   *time.Time
	ClaimedBy     string
	ErrorMessage  string
	Result        map[string]string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// KindStats summarises queue health for a single job kind.
type KindStats struct {
	Kind                     string
	Pending                  int
	Processing               int
	Completed                int
	Failed                   int
	Cancelled                int
	AverageProcessingSeconds float64
}
