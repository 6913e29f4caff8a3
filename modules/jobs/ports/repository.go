package ports

import (
	"context"

	"github.com/andreypavlenko/talentpipe/modules/jobs/model"
)

// JobRequirementRepository is a read-only view onto job requisitions; the
// core never creates, updates, or deletes them.
type JobRequirementRepository interface {
	GetByID(ctx context.Context, id string) (*model.JobRequirement, error)
	ListActive(ctx context.Context) ([]*model.JobRequirement, error)
}
