package ports

import (
	"context"

	"github.com/andreypavlenko/talentpipe/modules/matching/model"
)

// MatchingService runs the six-step agentic loop for one (candidate, job)
// pair and the batch/audit operations built on top of it.
type MatchingService interface {
	CreateMatch(ctx context.Context, candidateID, jobID string) (*model.CandidateMatch, error)
	MatchAllForJob(ctx context.Context, jobID, callerIdentity string) (*model.MatchAudit, error)
	MatchAllForCandidate(ctx context.Context, candidateID string) ([]*model.CandidateMatch, error)
	UpdateMatch(ctx context.Context, matchID string, shortlisted, selected *bool, note *string) (*model.CandidateMatch, error)
	GetAudit(ctx context.Context, auditID string) (*model.MatchAudit, error)
	ListAudits(ctx context.Context, limit, offset int) ([]*model.MatchAudit, int, error)
	ActiveMatchRuns(ctx context.Context) ([]*model.MatchAudit, error)
}
