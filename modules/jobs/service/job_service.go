package service

import (
	"context"

	"github.com/andreypavlenko/talentpipe/modules/jobs/model"
	"github.com/andreypavlenko/talentpipe/modules/jobs/ports"
)

// JobRequirementService is a thin read-only pass-through over the
// requisition store; the matching engine reads the repository directly and
// does not go through it.
type JobRequirementService struct {
	repo ports.JobRequirementRepository
}

func NewJobRequirementService(repo ports.JobRequirementRepository) *JobRequirementService {
	return &JobRequirementService{repo: repo}
}

func (s *JobRequirementService) GetByID(ctx context.Context, id string) (*model.JobRequirement, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *JobRequirementService) ListActive(ctx context.Context) ([]*model.JobRequirement, error) {
	return s.repo.ListActive(ctx)
}
