package model

import "time"

// Status is the overall stage a résumé upload has reached. Transitions are
// monotonic along the sequence below; FAILED is reachable from any
// non-terminal status.
type Status string

const (
	StatusInitiated       Status = "INITIATED"
	StatusResumeAnalyzed  Status = "RESUME_ANALYZED"
	StatusEmbedGenerated  Status = "EMBED_GENERATED"
	StatusVectorDBUpdated Status = "VECTOR_DB_UPDATED"
	StatusCompleted       Status = "COMPLETED"
	StatusFailed          Status = "FAILED"
)

// Terminal reports whether no further transitions are expected.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Tracker is created at upload time and updated by the pipeline at each
// stage boundary, one row per uploaded file.
type Tracker struct {
	ID               string
	Status           Status
	Total            int
	Processed        int
	Failed           int
	Message          string
	UploadedFilename string
	CorrelationID    string
	JobID            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
