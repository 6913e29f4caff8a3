package ports

import (
	"context"
	"time"

	"github.com/andreypavlenko/talentpipe/modules/processtracker/model"
)

// TrackerRepository persists ProcessTracker rows. Status transitions are
// enforced by the pipeline caller, not by the repository.
type TrackerRepository interface {
	Create(ctx context.Context, tracker *model.Tracker) (*model.Tracker, error)
	GetByID(ctx context.Context, id string) (*model.Tracker, error)
	Update(ctx context.Context, tracker *model.Tracker) error
	RecentSince(ctx context.Context, since time.Time) ([]*model.Tracker, error)

	// SetTotal overwrites the expected file count, used once by zip
	// fan-out to record how many child jobs it enqueued.
	SetTotal(ctx context.Context, id string, total int) error
	// IncrementProcessed and IncrementFailed are single atomic UPDATE
	// statements rather than read-modify-write, so concurrent zip-entry
	// workers completing against the same tracker row never lose a count.
	IncrementProcessed(ctx context.Context, id string) error
	IncrementFailed(ctx context.Context, id string) error
}
