package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andreypavlenko/talentpipe/internal/platform/llmclient"
	"github.com/andreypavlenko/talentpipe/internal/platform/logger"
	candidatemodel "github.com/andreypavlenko/talentpipe/modules/candidates/model"
	candidateports "github.com/andreypavlenko/talentpipe/modules/candidates/ports"
	enrichmentmodel "github.com/andreypavlenko/talentpipe/modules/enrichment/model"
	enrichmentports "github.com/andreypavlenko/talentpipe/modules/enrichment/ports"
	jobmodel "github.com/andreypavlenko/talentpipe/modules/jobs/model"
	"github.com/andreypavlenko/talentpipe/modules/matching/model"
	"github.com/andreypavlenko/talentpipe/modules/matching/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error", "console")
	require.NoError(t, err)
	return log
}

func newTestPrompts(t *testing.T) *llmclient.PromptLibrary {
	t.Helper()
	lib, err := llmclient.LoadPromptLibrary("../../../config/prompts.yaml")
	require.NoError(t, err)
	return lib
}

// --- fakes ---

type fakeMatchRepo struct {
	ports.CandidateMatchRepository
	stored map[string]*model.CandidateMatch
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{stored: map[string]*model.CandidateMatch{}}
}

func pairKey(candidateID, jobID string) string { return candidateID + "|" + jobID }

func (f *fakeMatchRepo) Upsert(ctx context.Context, m *model.CandidateMatch) (*model.CandidateMatch, error) {
	if m.ID == "" {
		m.ID = pairKey(m.CandidateID, m.JobID)
	}
	f.stored[pairKey(m.CandidateID, m.JobID)] = m
	return m, nil
}

func (f *fakeMatchRepo) GetByPair(ctx context.Context, candidateID, jobID string) (*model.CandidateMatch, error) {
	m, ok := f.stored[pairKey(candidateID, jobID)]
	if !ok {
		return nil, model.ErrMatchNotFound
	}
	return m, nil
}

func (f *fakeMatchRepo) GetByID(ctx context.Context, id string) (*model.CandidateMatch, error) {
	for _, m := range f.stored {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, model.ErrMatchNotFound
}

func (f *fakeMatchRepo) Update(ctx context.Context, m *model.CandidateMatch) error {
	f.stored[pairKey(m.CandidateID, m.JobID)] = m
	return nil
}

type fakeAuditRepo struct {
	ports.MatchAuditRepository
	stored map[string]*model.MatchAudit
	nextID int
}

func newFakeAuditRepo() *fakeAuditRepo {
	return &fakeAuditRepo{stored: map[string]*model.MatchAudit{}}
}

func (f *fakeAuditRepo) Create(ctx context.Context, a *model.MatchAudit) (*model.MatchAudit, error) {
	f.nextID++
	a.ID = "audit-" + string(rune('0'+f.nextID))
	f.stored[a.ID] = a
	return a, nil
}

func (f *fakeAuditRepo) Update(ctx context.Context, a *model.MatchAudit) error {
	f.stored[a.ID] = a
	return nil
}

func (f *fakeAuditRepo) GetByID(ctx context.Context, id string) (*model.MatchAudit, error) {
	a, ok := f.stored[id]
	if !ok {
		return nil, model.ErrAuditNotFound
	}
	return a, nil
}

type fakeCandidateService struct {
	candidateports.CandidateService
	byID map[string]*candidatemodel.Candidate
	all  []*candidatemodel.Candidate
}

func (f *fakeCandidateService) GetByID(ctx context.Context, id string) (*candidatemodel.Candidate, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, candidatemodel.ErrCandidateNotFound
	}
	return c, nil
}

func (f *fakeCandidateService) List(ctx context.Context, limit, offset int) ([]*candidatemodel.Candidate, error) {
	return f.all, nil
}

type fakeJobRepo struct {
	byID   map[string]*jobmodel.JobRequirement
	active []*jobmodel.JobRequirement
}

func (f *fakeJobRepo) GetByID(ctx context.Context, id string) (*jobmodel.JobRequirement, error) {
	j, ok := f.byID[id]
	if !ok {
		return nil, jobmodel.ErrJobNotFound
	}
	return j, nil
}

func (f *fakeJobRepo) ListActive(ctx context.Context) ([]*jobmodel.JobRequirement, error) {
	return f.active, nil
}

type fakeEnrichmentService struct {
	enrichmentports.EnrichmentService
	contexts []string
	calls    int
	context  string
}

func (f *fakeEnrichmentService) RefreshStaleProfiles(ctx context.Context, candidate *candidatemodel.Candidate) {}
func (f *fakeEnrichmentService) EnsureInternetSearchFresh(ctx context.Context, candidate *candidatemodel.Candidate) {
}
func (f *fakeEnrichmentService) AutoEnrich(ctx context.Context, candidate *candidatemodel.Candidate, sources []enrichmentmodel.Source) {
}
func (f *fakeEnrichmentService) BuildContextForJob(ctx context.Context, candidateID string, job *jobmodel.JobRequirement) (string, error) {
	if len(f.contexts) > 0 {
		idx := f.calls
		if idx >= len(f.contexts) {
			idx = len(f.contexts) - 1
		}
		f.calls++
		return f.contexts[idx], nil
	}
	return f.context, nil
}

type fakeChatClient struct {
	responses []string
	calls     int
	err       error
}

func (f *fakeChatClient) Chat(ctx context.Context, systemPrompt, userPrompt string, temperature float64, maxTokens int) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	idx := f.calls
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	f.calls++
	return f.responses[idx], nil
}

func candidateFixture(id string) *candidatemodel.Candidate {
	return &candidatemodel.Candidate{ID: id, Name: "Jane Doe", Skills: "Go, SQL", YearsOfExperience: 5}
}

func jobFixture(id string) *jobmodel.JobRequirement {
	return &jobmodel.JobRequirement{ID: id, Title: "Backend Engineer", RequiredSkills: "Go"}
}

func newService(t *testing.T, matches *fakeMatchRepo, audits *fakeAuditRepo, candidates *fakeCandidateService, jobs *fakeJobRepo, enrichment *fakeEnrichmentService, chat *fakeChatClient, cfg EngineConfig) *MatchingService {
	return NewMatchingService(matches, audits, candidates, jobs, enrichment, chat, newTestPrompts(t), cfg, newTestLogger(t))
}

func TestCreateMatch_HappyPath_AutoShortlists(t *testing.T) {
	matches := newFakeMatchRepo()
	audits := newFakeAuditRepo()
	candidate := candidateFixture("cand-1")
	candidates := &fakeCandidateService{byID: map[string]*candidatemodel.Candidate{"cand-1": candidate}}
	job := jobFixture("job-1")
	jobs := &fakeJobRepo{byID: map[string]*jobmodel.JobRequirement{"job-1": job}}
	enrichment := &fakeEnrichmentService{context: "--- External Profile Information ---\n[Source: GITHUB]\n"}
	chat := &fakeChatClient{responses: []string{`{"matchScore":85,"skillsScore":90,"experienceScore":80,"educationScore":70,"domainScore":75,"explanation":"strong fit","strengths":["Go"],"gaps":[],"recommendation":"advance"}`}}

	svc := newService(t, matches, audits, candidates, jobs, enrichment, chat, EngineConfig{SourceSelectionEnabled: false, MultiPassEnabled: true, BorderlineMin: 50, BorderlineMax: 80})

	match, err := svc.CreateMatch(context.Background(), "cand-1", "job-1")
	require.NoError(t, err)
	assert.Equal(t, 85, match.MatchScore)
	assert.True(t, match.IsShortlisted)
}

func TestCreateMatch_LLMFailure_ReturnsZeroScoreUnavailable(t *testing.T) {
	matches := newFakeMatchRepo()
	audits := newFakeAuditRepo()
	candidate := candidateFixture("cand-2")
	candidates := &fakeCandidateService{byID: map[string]*candidatemodel.Candidate{"cand-2": candidate}}
	job := jobFixture("job-2")
	jobs := &fakeJobRepo{byID: map[string]*jobmodel.JobRequirement{"job-2": job}}
	enrichment := &fakeEnrichmentService{context: "some context"}
	chat := &fakeChatClient{err: errors.New("connection reset")}

	svc := newService(t, matches, audits, candidates, jobs, enrichment, chat, EngineConfig{SourceSelectionEnabled: false, MultiPassEnabled: true, BorderlineMin: 50, BorderlineMax: 80})

	match, err := svc.CreateMatch(context.Background(), "cand-2", "job-2")
	require.NoError(t, err)
	assert.Equal(t, 0, match.MatchScore)
	assert.Equal(t, "AI matching temporarily unavailable", match.Explanation)
	assert.False(t, match.IsShortlisted)
}

func TestCreateMatch_BorderlineWithNullContext_TriggersMultiPass(t *testing.T) {
	matches := newFakeMatchRepo()
	audits := newFakeAuditRepo()
	candidate := candidateFixture("cand-3")
	candidates := &fakeCandidateService{byID: map[string]*candidatemodel.Candidate{"cand-3": candidate}}
	job := jobFixture("job-3")
	jobs := &fakeJobRepo{byID: map[string]*jobmodel.JobRequirement{"job-3": job}}
	enrichment := &fakeEnrichmentService{contexts: []string{"", "--- External Profile Information ---\n[Source: GITHUB]\n"}}
	chat := &fakeChatClient{responses: []string{
		`{"matchScore":60,"skillsScore":60,"experienceScore":60,"educationScore":60,"domainScore":60,"explanation":"borderline first pass","strengths":[],"gaps":["context"],"recommendation":"unclear"}`,
		`{"matchScore":72,"skillsScore":75,"experienceScore":70,"educationScore":70,"domainScore":70,"explanation":"second pass","strengths":["Go"],"gaps":[],"recommendation":"advance"}`,
	}}

	svc := newService(t, matches, audits, candidates, jobs, enrichment, chat, EngineConfig{SourceSelectionEnabled: false, MultiPassEnabled: true, BorderlineMin: 50, BorderlineMax: 80})

	match, err := svc.CreateMatch(context.Background(), "cand-3", "job-3")
	require.NoError(t, err)
	assert.Equal(t, 2, chat.calls)
	assert.Equal(t, 72, match.MatchScore) // first pass borderline with null context triggers a re-score on fresh context
}

func TestCreateMatch_PreservesIsSelectedAndSkipsAutoShortlist(t *testing.T) {
	matches := newFakeMatchRepo()
	matches.stored[pairKey("cand-4", "job-4")] = &model.CandidateMatch{ID: "existing", CandidateID: "cand-4", JobID: "job-4", IsSelected: true}
	audits := newFakeAuditRepo()
	candidate := candidateFixture("cand-4")
	candidates := &fakeCandidateService{byID: map[string]*candidatemodel.Candidate{"cand-4": candidate}}
	job := jobFixture("job-4")
	jobs := &fakeJobRepo{byID: map[string]*jobmodel.JobRequirement{"job-4": job}}
	enrichment := &fakeEnrichmentService{context: "context"}
	chat := &fakeChatClient{responses: []string{`{"matchScore":90,"skillsScore":90,"experienceScore":90,"educationScore":90,"domainScore":90,"explanation":"great","strengths":[],"gaps":[],"recommendation":"hire"}`}}

	svc := newService(t, matches, audits, candidates, jobs, enrichment, chat, EngineConfig{SourceSelectionEnabled: false, MultiPassEnabled: false})

	match, err := svc.CreateMatch(context.Background(), "cand-4", "job-4")
	require.NoError(t, err)
	assert.True(t, match.IsSelected)
	assert.False(t, match.IsShortlisted) // already selected, so auto-shortlist rule is a no-op
}

func TestMatchAllForJob_CreatesInProgressAuditImmediately(t *testing.T) {
	matches := newFakeMatchRepo()
	audits := newFakeAuditRepo()
	candidates := &fakeCandidateService{all: []*candidatemodel.Candidate{candidateFixture("cand-5")}}
	job := jobFixture("job-5")
	jobs := &fakeJobRepo{byID: map[string]*jobmodel.JobRequirement{"job-5": job}}
	enrichment := &fakeEnrichmentService{context: "context"}
	chat := &fakeChatClient{responses: []string{`{"matchScore":40,"skillsScore":40,"experienceScore":40,"educationScore":40,"domainScore":40,"explanation":"weak","strengths":[],"gaps":["Go"],"recommendation":"pass"}`}}

	svc := newService(t, matches, audits, candidates, jobs, enrichment, chat, EngineConfig{SourceSelectionEnabled: false, MultiPassEnabled: false})

	audit, err := svc.MatchAllForJob(context.Background(), "job-5", "")
	require.NoError(t, err)
	assert.Equal(t, model.AuditInProgress, audit.Status)
	assert.Equal(t, "system", audit.InitiatedBy)

	// the batch completes asynchronously; give the goroutine a moment.
	require.Eventually(t, func() bool {
		stored, err := audits.GetByID(context.Background(), audit.ID)
		return err == nil && stored.Status == model.AuditCompleted
	}, time.Second, 10*time.Millisecond)

	completed, err := audits.GetByID(context.Background(), audit.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, completed.CandidatesMatched)
	assert.Equal(t, int64(1500), completed.EstimatedTokens)
}

func TestMatchAllForCandidate_ScoresEveryActiveJob(t *testing.T) {
	matches := newFakeMatchRepo()
	audits := newFakeAuditRepo()
	candidate := candidateFixture("cand-6")
	candidates := &fakeCandidateService{byID: map[string]*candidatemodel.Candidate{"cand-6": candidate}}
	jobs := &fakeJobRepo{active: []*jobmodel.JobRequirement{jobFixture("job-6a"), jobFixture("job-6b")}}
	enrichment := &fakeEnrichmentService{context: "context"}
	chat := &fakeChatClient{responses: []string{`{"matchScore":55,"skillsScore":55,"experienceScore":55,"educationScore":55,"domainScore":55,"explanation":"ok","strengths":[],"gaps":[],"recommendation":"maybe"}`}}

	svc := newService(t, matches, audits, candidates, jobs, enrichment, chat, EngineConfig{SourceSelectionEnabled: false, MultiPassEnabled: false})

	results, err := svc.MatchAllForCandidate(context.Background(), "cand-6")
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestUpdateMatch_AppliesPartialFields(t *testing.T) {
	matches := newFakeMatchRepo()
	matches.stored[pairKey("cand-7", "job-7")] = &model.CandidateMatch{ID: "match-7", CandidateID: "cand-7", JobID: "job-7"}
	audits := newFakeAuditRepo()
	svc := newService(t, matches, audits, &fakeCandidateService{}, &fakeJobRepo{}, &fakeEnrichmentService{}, &fakeChatClient{}, EngineConfig{})

	selected := true
	note := "strong candidate"
	updated, err := svc.UpdateMatch(context.Background(), "match-7", nil, &selected, &note)
	require.NoError(t, err)
	assert.True(t, updated.IsSelected)
	assert.Equal(t, "strong candidate", updated.RecruiterNote)
}
