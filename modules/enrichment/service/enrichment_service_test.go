package service

import (
	"context"
	"testing"
	"time"

	"github.com/andreypavlenko/talentpipe/internal/config"
	"github.com/andreypavlenko/talentpipe/internal/platform/logger"
	candidatemodel "github.com/andreypavlenko/talentpipe/modules/candidates/model"
	candidateports "github.com/andreypavlenko/talentpipe/modules/candidates/ports"
	"github.com/andreypavlenko/talentpipe/modules/enrichment/model"
	"github.com/andreypavlenko/talentpipe/modules/enrichment/ports"
	jobmodel "github.com/andreypavlenko/talentpipe/modules/jobs/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProfileRepo struct {
	byCandidate map[string][]*model.ExternalProfile
	upserted    []*model.ExternalProfile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{byCandidate: make(map[string][]*model.ExternalProfile)}
}

func (f *fakeProfileRepo) Upsert(ctx context.Context, profile *model.ExternalProfile) (*model.ExternalProfile, error) {
	if profile.ID == "" {
		profile.ID = "profile-" + string(profile.Source)
	}
	existing := f.byCandidate[profile.CandidateID]
	for i, p := range existing {
		if p.Source == profile.Source {
			existing[i] = profile
			f.byCandidate[profile.CandidateID] = existing
			f.upserted = append(f.upserted, profile)
			return profile, nil
		}
	}
	f.byCandidate[profile.CandidateID] = append(existing, profile)
	f.upserted = append(f.upserted, profile)
	return profile, nil
}

func (f *fakeProfileRepo) GetByID(ctx context.Context, id string) (*model.ExternalProfile, error) {
	for _, profiles := range f.byCandidate {
		for _, p := range profiles {
			if p.ID == id {
				return p, nil
			}
		}
	}
	return nil, model.ErrProfileNotFound
}

func (f *fakeProfileRepo) GetByCandidateAndSource(ctx context.Context, candidateID string, source model.Source) (*model.ExternalProfile, error) {
	for _, p := range f.byCandidate[candidateID] {
		if p.Source == source {
			return p, nil
		}
	}
	return nil, model.ErrProfileNotFound
}

func (f *fakeProfileRepo) ListByCandidate(ctx context.Context, candidateID string) ([]*model.ExternalProfile, error) {
	return f.byCandidate[candidateID], nil
}

type fakeCandidateService struct {
	candidateports.CandidateService
	candidate *candidatemodel.Candidate
}

func (f *fakeCandidateService) GetByID(ctx context.Context, id string) (*candidatemodel.Candidate, error) {
	return f.candidate, nil
}

type fakeEnricher struct {
	source       model.Source
	urlSubstring string
	result       *model.ExternalProfile
	calls        int
}

func (f *fakeEnricher) Source() model.Source { return f.source }

func (f *fakeEnricher) SupportsURL(url string) bool {
	return f.urlSubstring != "" && containsSubstring(url, f.urlSubstring)
}

func containsSubstring(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

func (f *fakeEnricher) Enrich(ctx context.Context, existing *model.ExternalProfile, candidate *candidatemodel.Candidate) (*model.ExternalProfile, error) {
	f.calls++
	f.result.CandidateID = candidate.ID
	return f.result, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error", "console")
	require.NoError(t, err)
	return log
}

func TestEnrichmentService_Enrich_UpsertsPendingThenDelegates(t *testing.T) {
	profiles := newFakeProfileRepo()
	candidate := &candidatemodel.Candidate{ID: "cand-1", Name: "Jane Doe"}
	candidates := &fakeCandidateService{candidate: candidate}
	github := &fakeEnricher{source: model.SourceGitHub, result: &model.ExternalProfile{Source: model.SourceGitHub, Status: model.StatusSuccess}}

	svc := NewEnrichmentService(profiles, candidates, []ports.Enricher{github}, config.EnrichmentConfig{StalenessTTLDays: 30}, testLogger(t), nil)

	result, err := svc.Enrich(context.Background(), "cand-1", model.SourceGitHub)

	require.NoError(t, err)
	assert.Equal(t, model.StatusSuccess, result.Status)
	assert.Equal(t, 1, github.calls)
	assert.Len(t, profiles.upserted, 1)
}

func TestEnrichmentService_EnrichFromURL_NoMatchReturnsNil(t *testing.T) {
	profiles := newFakeProfileRepo()
	candidate := &candidatemodel.Candidate{ID: "cand-1"}
	candidates := &fakeCandidateService{candidate: candidate}
	github := &fakeEnricher{source: model.SourceGitHub, urlSubstring: "github.com"}

	svc := NewEnrichmentService(profiles, candidates, []ports.Enricher{github}, config.EnrichmentConfig{}, testLogger(t), nil)

	result, err := svc.EnrichFromURL(context.Background(), "cand-1", "https://example.com/someone")

	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, 0, github.calls)
}

func TestEnrichmentService_EnrichFromURL_DispatchesToMatchingEnricher(t *testing.T) {
	profiles := newFakeProfileRepo()
	candidate := &candidatemodel.Candidate{ID: "cand-1"}
	candidates := &fakeCandidateService{candidate: candidate}
	github := &fakeEnricher{
		source:       model.SourceGitHub,
		urlSubstring: "github.com",
		result:       &model.ExternalProfile{Source: model.SourceGitHub, Status: model.StatusSuccess},
	}

	svc := NewEnrichmentService(profiles, candidates, []ports.Enricher{github}, config.EnrichmentConfig{}, testLogger(t), nil)

	result, err := svc.EnrichFromURL(context.Background(), "cand-1", "https://github.com/janedoe")

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 1, github.calls)
}

func TestEnrichmentService_BuildContext_SkipsNonSuccessProfiles(t *testing.T) {
	profiles := newFakeProfileRepo()
	profiles.byCandidate["cand-1"] = []*model.ExternalProfile{
		{Source: model.SourceGitHub, Status: model.StatusSuccess, EnrichedSummary: "github: @janedoe - 10 repos"},
		{Source: model.SourceLinkedIn, Status: model.StatusNotAvailable},
	}
	svc := NewEnrichmentService(profiles, &fakeCandidateService{}, nil, config.EnrichmentConfig{}, testLogger(t), nil)

	out, err := svc.BuildContext(context.Background(), "cand-1")

	require.NoError(t, err)
	assert.Contains(t, out, "[Source: GITHUB]")
	assert.NotContains(t, out, "[Source: LINKEDIN]")
}

func TestEnrichmentService_BuildContextForJob_RanksGithubAboveLinkedInForEngineeringRole(t *testing.T) {
	profiles := newFakeProfileRepo()
	profiles.byCandidate["cand-1"] = []*model.ExternalProfile{
		{Source: model.SourceLinkedIn, Status: model.StatusSuccess, Bio: "networker"},
		{Source: model.SourceGitHub, Status: model.StatusSuccess, Bio: "backend engineer"},
	}
	svc := NewEnrichmentService(profiles, &fakeCandidateService{}, nil, config.EnrichmentConfig{}, testLogger(t), nil)
	job := &jobmodel.JobRequirement{Title: "Backend Software Engineer", RequiredSkills: "golang"}

	out, err := svc.BuildContextForJob(context.Background(), "cand-1", job)

	require.NoError(t, err)
	githubIdx := indexOf(out, "[Source: GITHUB]")
	linkedinIdx := indexOf(out, "[Source: LINKEDIN]")
	require.NotEqual(t, -1, githubIdx)
	require.NotEqual(t, -1, linkedinIdx)
	assert.Less(t, githubIdx, linkedinIdx)
}

func TestEnrichmentService_RefreshStaleProfiles_ReEnrichesOnlyStaleSuccess(t *testing.T) {
	profiles := newFakeProfileRepo()
	old := time.Now().Add(-60 * 24 * time.Hour)
	profiles.byCandidate["cand-1"] = []*model.ExternalProfile{
		{Source: model.SourceGitHub, Status: model.StatusSuccess, LastFetchedAt: &old},
	}
	github := &fakeEnricher{source: model.SourceGitHub, result: &model.ExternalProfile{Source: model.SourceGitHub, Status: model.StatusSuccess}}
	svc := NewEnrichmentService(profiles, &fakeCandidateService{}, []ports.Enricher{github}, config.EnrichmentConfig{StalenessTTLDays: 30}, testLogger(t), nil)

	svc.RefreshStaleProfiles(context.Background(), &candidatemodel.Candidate{ID: "cand-1"})

	assert.Equal(t, 1, github.calls)
}

func TestEnrichmentService_AutoEnrich_SkipsFreshSuccessProfiles(t *testing.T) {
	profiles := newFakeProfileRepo()
	fresh := time.Now()
	profiles.byCandidate["cand-1"] = []*model.ExternalProfile{
		{Source: model.SourceGitHub, Status: model.StatusSuccess, LastFetchedAt: &fresh},
	}
	github := &fakeEnricher{source: model.SourceGitHub, result: &model.ExternalProfile{Source: model.SourceGitHub, Status: model.StatusSuccess}}
	svc := NewEnrichmentService(profiles, &fakeCandidateService{}, []ports.Enricher{github}, config.EnrichmentConfig{StalenessTTLDays: 30}, testLogger(t), nil)

	svc.AutoEnrich(context.Background(), &candidatemodel.Candidate{ID: "cand-1"}, []model.Source{model.SourceGitHub})

	assert.Equal(t, 0, github.calls)
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
