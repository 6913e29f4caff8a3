// Package service implements the agentic matching engine: a six-step loop
// per (candidate, job) pair, wrapped in an asynchronously-completed audit
// for batch runs.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/andreypavlenko/talentpipe/internal/platform/llmclient"
	"github.com/andreypavlenko/talentpipe/internal/platform/logger"
	candidatemodel "github.com/andreypavlenko/talentpipe/modules/candidates/model"
	candidateports "github.com/andreypavlenko/talentpipe/modules/candidates/ports"
	enrichmentmodel "github.com/andreypavlenko/talentpipe/modules/enrichment/model"
	enrichmentports "github.com/andreypavlenko/talentpipe/modules/enrichment/ports"
	jobmodel "github.com/andreypavlenko/talentpipe/modules/jobs/model"
	jobports "github.com/andreypavlenko/talentpipe/modules/jobs/ports"
	"github.com/andreypavlenko/talentpipe/modules/matching/model"
	"github.com/andreypavlenko/talentpipe/modules/matching/ports"
	"go.uber.org/zap"
)

// batchMatchCandidateLimit caps how many candidates a single matchAllForJob
// run considers; the candidate table has no paging cursor exposed to this
// engine yet, so a generous fixed limit stands in for "all candidates".
const batchMatchCandidateLimit = 5000

// matchResponse is the literal JSON shape the candidate-matching prompt
// asks the LLM to return.
type matchResponse struct {
	MatchScore      int      `json:"matchScore"`
	SkillsScore     int      `json:"skillsScore"`
	ExperienceScore int      `json:"experienceScore"`
	EducationScore  int      `json:"educationScore"`
	DomainScore     int      `json:"domainScore"`
	Explanation     string   `json:"explanation"`
	Strengths       []string `json:"strengths"`
	Gaps            []string `json:"gaps"`
	Recommendation  string   `json:"recommendation"`
}

type sourceSelectionResponse struct {
	Sources   []string `json:"sources"`
	Reasoning string   `json:"reasoning"`
}

// EngineConfig holds the agentic loop's tunable thresholds, mirroring
// config.EnrichmentConfig without binding the service to the config package.
type EngineConfig struct {
	SourceSelectionEnabled bool
	MultiPassEnabled       bool
	BorderlineMin          float64
	BorderlineMax          float64
}

type MatchingService struct {
	matches    ports.CandidateMatchRepository
	audits     ports.MatchAuditRepository
	candidates candidateports.CandidateService
	jobs       jobports.JobRequirementRepository
	enrichment enrichmentports.EnrichmentService
	chat       llmclient.ChatClient
	prompts    *llmclient.PromptLibrary
	cfg        EngineConfig
	logger     *logger.Logger
}

func NewMatchingService(
	matches ports.CandidateMatchRepository,
	audits ports.MatchAuditRepository,
	candidates candidateports.CandidateService,
	jobs jobports.JobRequirementRepository,
	enrichment enrichmentports.EnrichmentService,
	chat llmclient.ChatClient,
	prompts *llmclient.PromptLibrary,
	cfg EngineConfig,
	log *logger.Logger,
) *MatchingService {
	return &MatchingService{
		matches:    matches,
		audits:     audits,
		candidates: candidates,
		jobs:       jobs,
		enrichment: enrichment,
		chat:       chat,
		prompts:    prompts,
		cfg:        cfg,
		logger:     log,
	}
}

// CreateMatch runs the single-pair loop for one (candidate, job) pair.
func (s *MatchingService) CreateMatch(ctx context.Context, candidateID, jobID string) (*model.CandidateMatch, error) {
	candidate, err := s.candidates.GetByID(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate: %w", err)
	}
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to load job requirement: %w", err)
	}
	return s.runSinglePair(ctx, candidate, job)
}

// runSinglePair is the six-step loop spec'd for a single (candidate, job)
// scoring pass: refresh stale profiles, ensure a web-search baseline,
// optionally let the LLM pick which sources to fetch, build context, score,
// and conditionally re-score when the first pass landed in the borderline
// band with no external context.
func (s *MatchingService) runSinglePair(ctx context.Context, candidate *candidatemodel.Candidate, job *jobmodel.JobRequirement) (*model.CandidateMatch, error) {
	// Steps 1-2: best-effort profile freshness.
	s.enrichment.RefreshStaleProfiles(ctx, candidate)
	s.enrichment.EnsureInternetSearchFresh(ctx, candidate)

	// Step 3: optional LLM-driven source selection.
	if s.cfg.SourceSelectionEnabled {
		tags := s.selectSources(ctx, candidate, job)
		sources := make([]enrichmentmodel.Source, 0, len(tags))
		for _, tag := range tags {
			sources = append(sources, enrichmentmodel.Source(tag))
		}
		s.enrichment.AutoEnrich(ctx, candidate, sources)
	}

	// Step 4: build job-aware context.
	context1, err := s.enrichment.BuildContextForJob(ctx, candidate.ID, job)
	if err != nil {
		s.logger.Warn("failed to build job-aware context", zap.String("candidateId", candidate.ID), zap.Error(err))
		context1 = ""
	}
	firstPassContextWasNull := strings.TrimSpace(context1) == ""

	// Step 5: first pass.
	response := s.score(ctx, candidate, job, context1)

	// Step 6: conditional multi-pass re-score.
	if s.cfg.MultiPassEnabled && firstPassContextWasNull && float64(response.MatchScore) >= s.cfg.BorderlineMin && float64(response.MatchScore) <= s.cfg.BorderlineMax {
		context2, err := s.enrichment.BuildContextForJob(ctx, candidate.ID, job)
		if err != nil {
			s.logger.Warn("failed to rebuild context for multi-pass", zap.String("candidateId", candidate.ID), zap.Error(err))
		} else if strings.TrimSpace(context2) != "" {
			response = s.score(ctx, candidate, job, context2)
		}
	}

	match := &model.CandidateMatch{
		CandidateID:     candidate.ID,
		JobID:           job.ID,
		MatchScore:      response.MatchScore,
		SkillsScore:     response.SkillsScore,
		ExperienceScore: response.ExperienceScore,
		EducationScore:  response.EducationScore,
		DomainScore:     response.DomainScore,
		Explanation:     response.Explanation,
		Strengths:       response.Strengths,
		Gaps:            response.Gaps,
		Recommendation:  response.Recommendation,
	}

	// isSelected is preserved by the upsert's ON CONFLICT clause, but the
	// auto-shortlist rule needs to know it before the row is written.
	if existing, err := s.matches.GetByPair(ctx, candidate.ID, job.ID); err == nil {
		match.IsSelected = existing.IsSelected
	}
	match.ApplyAutoShortlist()

	return s.matches.Upsert(ctx, match)
}

func (s *MatchingService) selectSources(ctx context.Context, candidate *candidatemodel.Candidate, job *jobmodel.JobRequirement) []string {
	fallback := []string{string(enrichmentmodel.SourceInternetSearch)}

	system, user, err := s.prompts.Render(llmclient.TemplateSourceSelection, map[string]string{
		"candidateSummary": candidateSummary(candidate),
		"jobSummary":       job.MatchText(),
	})
	if err != nil {
		s.logger.Warn("failed to render source-selection prompt", zap.Error(err))
		return fallback
	}

	raw, err := s.chat.Chat(ctx, system, user, 0.1, 300)
	if err != nil {
		s.logger.Warn("source-selection LLM call failed, falling back to internet search", zap.Error(err))
		return fallback
	}

	var parsed sourceSelectionResponse
	if err := json.Unmarshal([]byte(llmclient.ExtractJSON(raw)), &parsed); err != nil || len(parsed.Sources) == 0 {
		s.logger.Warn("failed to parse source-selection response, falling back to internet search", zap.Error(err))
		return fallback
	}

	valid := map[string]struct{}{
		string(enrichmentmodel.SourceGitHub):         {},
		string(enrichmentmodel.SourceLinkedIn):       {},
		string(enrichmentmodel.SourceTwitter):        {},
		string(enrichmentmodel.SourceInternetSearch): {},
	}
	for _, tag := range parsed.Sources {
		if _, ok := valid[tag]; !ok {
			s.logger.Warn("source-selection returned an invalid source tag, falling back to internet search", zap.String("tag", tag))
			return fallback
		}
	}
	return parsed.Sources
}

func (s *MatchingService) score(ctx context.Context, candidate *candidatemodel.Candidate, job *jobmodel.JobRequirement, externalContext string) matchResponse {
	system, user, err := s.prompts.Render(llmclient.TemplateCandidateMatch, map[string]string{
		"jobContext":       job.MatchText(),
		"candidateContext": candidateSummary(candidate),
		"externalContext":  externalContext,
	})
	if err != nil {
		s.logger.Error("failed to render candidate-matching prompt", zap.Error(err))
		return unavailableResponse()
	}

	raw, err := s.chat.Chat(ctx, system, user, 0.2, 2000)
	if err != nil {
		s.logger.Warn("candidate-matching LLM call failed", zap.String("candidateId", candidate.ID), zap.String("jobId", job.ID), zap.Error(err))
		return unavailableResponse()
	}

	var parsed matchResponse
	if err := json.Unmarshal([]byte(llmclient.ExtractJSON(raw)), &parsed); err != nil {
		s.logger.Warn("failed to parse candidate-matching response", zap.Error(err))
		return unavailableResponse()
	}
	return parsed
}

func unavailableResponse() matchResponse {
	return matchResponse{Explanation: "AI matching temporarily unavailable"}
}

func candidateSummary(c *candidatemodel.Candidate) string {
	return fmt.Sprintf(
		"Name: %s\nSkills: %s\nDomain Knowledge: %s\nAcademic Background: %s\nYears of Experience: %.1f",
		c.Name, c.Skills, c.DomainKnowledge, c.AcademicBackground, c.YearsOfExperience,
	)
}

// MatchAllForJob runs the single-pair loop for every candidate, wrapping the
// batch in a synchronously-created IN_PROGRESS audit that is completed or
// failed asynchronously so the caller sees the audit row immediately.
func (s *MatchingService) MatchAllForJob(ctx context.Context, jobID, callerIdentity string) (*model.MatchAudit, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to load job requirement: %w", err)
	}
	if callerIdentity == "" {
		callerIdentity = "system"
	}

	audit := &model.MatchAudit{
		JobID:            jobID,
		JobTitleSnapshot: job.Title,
		Status:           model.AuditInProgress,
		InitiatedBy:      callerIdentity,
		InitiatedAt:      time.Now(),
	}
	audit, err = s.audits.Create(ctx, audit)
	if err != nil {
		return nil, fmt.Errorf("failed to create match audit: %w", err)
	}

	go s.runBatch(context.WithoutCancel(ctx), audit.ID, job)

	return audit, nil
}

func (s *MatchingService) runBatch(ctx context.Context, auditID string, job *jobmodel.JobRequirement) {
	start := time.Now()

	candidates, err := s.candidates.List(ctx, batchMatchCandidateLimit, 0)
	if err != nil {
		s.failAudit(ctx, auditID, fmt.Sprintf("failed to list candidates: %v", err), start)
		return
	}

	var summaries []model.CandidateSummary
	var scores []int
	shortlisted := 0

	for _, candidate := range candidates {
		match, err := s.runSinglePair(ctx, candidate, job)
		if err != nil {
			s.logger.Warn("skipping candidate in batch match run due to error", zap.String("candidateId", candidate.ID), zap.Error(err))
			continue
		}
		summaries = append(summaries, model.CandidateSummary{
			CandidateID:   candidate.ID,
			CandidateName: candidate.Name,
			MatchScore:    match.MatchScore,
			SkillsScore:   match.SkillsScore,
			IsShortlisted: match.IsShortlisted,
		})
		scores = append(scores, match.MatchScore)
		if match.IsShortlisted {
			shortlisted++
		}
	}

	s.completeAudit(ctx, auditID, summaries, scores, shortlisted, start)
}

func (s *MatchingService) completeAudit(ctx context.Context, auditID string, summaries []model.CandidateSummary, scores []int, shortlisted int, start time.Time) {
	audit, err := s.audits.GetByID(ctx, auditID)
	if err != nil {
		s.logger.Error("failed to load match audit for completion", zap.String("auditId", auditID), zap.Error(err))
		return
	}

	audit.Status = model.AuditCompleted
	audit.CandidatesMatched = len(summaries)
	audit.Shortlisted = shortlisted
	audit.AverageScore, audit.TopScore = scoreStats(scores)
	audit.DurationMs = time.Since(start).Milliseconds()
	audit.EstimatedTokens = int64(len(summaries)) * 1500
	audit.CandidateSummaries = summaries
	now := time.Now()
	audit.CompletedAt = &now

	if err := s.audits.Update(ctx, audit); err != nil {
		s.logger.Error("failed to persist completed match audit", zap.String("auditId", auditID), zap.Error(err))
	}
}

func (s *MatchingService) failAudit(ctx context.Context, auditID, message string, start time.Time) {
	audit, err := s.audits.GetByID(ctx, auditID)
	if err != nil {
		s.logger.Error("failed to load match audit for failure", zap.String("auditId", auditID), zap.Error(err))
		return
	}
	audit.Status = model.AuditFailed
	audit.ErrorMessage = message
	audit.DurationMs = time.Since(start).Milliseconds()
	now := time.Now()
	audit.CompletedAt = &now

	if err := s.audits.Update(ctx, audit); err != nil {
		s.logger.Error("failed to persist failed match audit", zap.String("auditId", auditID), zap.Error(err))
	}
}

func scoreStats(scores []int) (average float64, top int) {
	if len(scores) == 0 {
		return 0, 0
	}
	sum := 0
	for _, v := range scores {
		sum += v
		if v > top {
			top = v
		}
	}
	return float64(sum) / float64(len(scores)), top
}

// MatchAllForCandidate iterates every active job requirement, logging and
// skipping per-job errors, and returns the successful matches.
func (s *MatchingService) MatchAllForCandidate(ctx context.Context, candidateID string) ([]*model.CandidateMatch, error) {
	candidate, err := s.candidates.GetByID(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate: %w", err)
	}

	activeJobs, err := s.jobs.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active job requirements: %w", err)
	}

	var matches []*model.CandidateMatch
	for _, job := range activeJobs {
		match, err := s.runSinglePair(ctx, candidate, job)
		if err != nil {
			s.logger.Warn("skipping job in single-candidate match run due to error", zap.String("jobId", job.ID), zap.Error(err))
			continue
		}
		matches = append(matches, match)
	}
	return matches, nil
}

func (s *MatchingService) UpdateMatch(ctx context.Context, matchID string, shortlisted, selected *bool, note *string) (*model.CandidateMatch, error) {
	match, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if shortlisted != nil {
		match.IsShortlisted = *shortlisted
	}
	if selected != nil {
		match.IsSelected = *selected
	}
	if note != nil {
		match.RecruiterNote = *note
	}
	if err := s.matches.Update(ctx, match); err != nil {
		return nil, err
	}
	return match, nil
}

func (s *MatchingService) GetAudit(ctx context.Context, auditID string) (*model.MatchAudit, error) {
	return s.audits.GetByID(ctx, auditID)
}

func (s *MatchingService) ListAudits(ctx context.Context, limit, offset int) ([]*model.MatchAudit, int, error) {
	return s.audits.List(ctx, limit, offset)
}

func (s *MatchingService) ActiveMatchRuns(ctx context.Context) ([]*model.MatchAudit, error) {
	return s.audits.ActiveRuns(ctx)
}

var _ ports.MatchingService = (*MatchingService)(nil)
