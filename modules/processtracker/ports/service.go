package ports

import (
	"context"
	"time"

	"github.com/andreypavlenko/talentpipe/modules/processtracker/model"
)

// TrackerService is the pipeline's stage-tracking collaborator: one row per
// uploaded file, advanced monotonically from INITIATED through COMPLETED
// (or FAILED from any non-terminal state).
type TrackerService interface {
	Create(ctx context.Context, uploadedFilename string, total int) (*model.Tracker, error)
	GetByID(ctx context.Context, id string) (*model.Tracker, error)
	LinkJob(ctx context.Context, trackerID, jobID, correlationID string) error
	Advance(ctx context.Context, trackerID string, status model.Status, message string) error
	Fail(ctx context.Context, trackerID string, message string) error
	SetTotal(ctx context.Context, trackerID string, total int) error
	IncrementProcessed(ctx context.Context, trackerID string) error
	IncrementFailed(ctx context.Context, trackerID string) error
	RecentSince(ctx context.Context, since time.Duration) ([]*model.Tracker, error)
}
