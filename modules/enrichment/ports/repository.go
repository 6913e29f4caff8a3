package ports

import (
	"context"

	"github.com/andreypavlenko/talentpipe/modules/enrichment/model"
)

// ExternalProfileRepository persists CandidateExternalProfile rows, unique
// on (candidate, source).
type ExternalProfileRepository interface {
	// Upsert inserts a new row or updates the existing (candidate, source)
	// row in place, returning the persisted row.
	Upsert(ctx context.Context, profile *model.ExternalProfile) (*model.ExternalProfile, error)
	GetByID(ctx context.Context, id string) (*model.ExternalProfile, error)
	GetByCandidateAndSource(ctx context.Context, candidateID string, source model.Source) (*model.ExternalProfile, error)
	ListByCandidate(ctx context.Context, candidateID string) ([]*model.ExternalProfile, error)
}
