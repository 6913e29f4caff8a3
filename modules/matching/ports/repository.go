package ports

import (
	"context"

	"github.com/andreypavlenko/talentpipe/modules/matching/model"
)

// CandidateMatchRepository persists CandidateMatch rows, upserted keyed on
// (candidate, job).
type CandidateMatchRepository interface {
	Upsert(ctx context.Context, match *model.CandidateMatch) (*model.CandidateMatch, error)
	GetByID(ctx context.Context, id string) (*model.CandidateMatch, error)
	GetByPair(ctx context.Context, candidateID, jobID string) (*model.CandidateMatch, error)
	ListByJob(ctx context.Context, jobID string) ([]*model.CandidateMatch, error)
	ListByCandidate(ctx context.Context, candidateID string) ([]*model.CandidateMatch, error)
	Update(ctx context.Context, match *model.CandidateMatch) error
}

// MatchAuditRepository persists MatchAudit rows created synchronously at
// IN_PROGRESS and completed or failed asynchronously.
type MatchAuditRepository interface {
	Create(ctx context.Context, audit *model.MatchAudit) (*model.MatchAudit, error)
	Update(ctx context.Context, audit *model.MatchAudit) error
	GetByID(ctx context.Context, id string) (*model.MatchAudit, error)
	List(ctx context.Context, limit, offset int) ([]*model.MatchAudit, int, error)
	ActiveRuns(ctx context.Context) ([]*model.MatchAudit, error)
}
