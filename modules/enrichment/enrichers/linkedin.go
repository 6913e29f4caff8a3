package enrichers

import (
	"context"
	"net/url"
	"strings"
	"time"

	candidatemodel "github.com/andreypavlenko/talentpipe/modules/candidates/model"
	"github.com/andreypavlenko/talentpipe/modules/enrichment/model"
	"github.com/andreypavlenko/talentpipe/modules/enrichment/ports"
)

// ProfessionalNetworkEnricher stands in for a LinkedIn integration. LinkedIn
// has no public, unauthenticated profile-lookup API, so this always
// resolves to NOT_AVAILABLE with a fixed rationale rather than attempting a
// scrape.
type ProfessionalNetworkEnricher struct {
	repo ports.ExternalProfileRepository
}

func NewProfessionalNetworkEnricher(repo ports.ExternalProfileRepository) *ProfessionalNetworkEnricher {
	return &ProfessionalNetworkEnricher{repo: repo}
}

func (e *ProfessionalNetworkEnricher) Source() model.Source { return model.SourceLinkedIn }

func (e *ProfessionalNetworkEnricher) SupportsURL(u string) bool {
	return strings.Contains(strings.ToLower(u), "linkedin.com")
}

func (e *ProfessionalNetworkEnricher) Enrich(ctx context.Context, existing *model.ExternalProfile, candidate *candidatemodel.Candidate) (*model.ExternalProfile, error) {
	profile := cloneOrNew(existing, candidate.ID, model.SourceLinkedIn)
	now := time.Now()
	profile.LastFetchedAt = &now
	profile.Status = model.StatusNotAvailable
	profile.ErrorMessage = "linkedin has no public profile lookup api; automated enrichment is not available for this source"

	if profile.ProfileURL == "" {
		profile.ProfileURL = "https://www.linkedin.com/search/results/people/?keywords=" + url.QueryEscape(candidate.Name)
	}

	return e.repo.Upsert(ctx, profile)
}

var _ ports.Enricher = (*ProfessionalNetworkEnricher)(nil)
