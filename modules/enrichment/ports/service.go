package ports

import (
	"context"

	candidatemodel "github.com/andreypavlenko/talentpipe/modules/candidates/model"
	"github.com/andreypavlenko/talentpipe/modules/enrichment/model"
	jobmodel "github.com/andreypavlenko/talentpipe/modules/jobs/model"
)

// EnrichmentService routes enrichment requests, computes staleness, and
// builds job-aware context strings for the matching engine.
type EnrichmentService interface {
	Enrich(ctx context.Context, candidateID string, source model.Source) (*model.ExternalProfile, error)
	EnrichFromURL(ctx context.Context, candidateID, url string) (*model.ExternalProfile, error)
	Refresh(ctx context.Context, profileID string) (*model.ExternalProfile, error)
	GetProfiles(ctx context.Context, candidateID string) ([]*model.ExternalProfile, error)
	BuildContext(ctx context.Context, candidateID string) (string, error)
	BuildContextForJob(ctx context.Context, candidateID string, job *jobmodel.JobRequirement) (string, error)
	RefreshStaleProfiles(ctx context.Context, candidate *candidatemodel.Candidate)
	EnsureInternetSearchFresh(ctx context.Context, candidate *candidatemodel.Candidate)
	AutoEnrich(ctx context.Context, candidate *candidatemodel.Candidate, sources []model.Source)
}
