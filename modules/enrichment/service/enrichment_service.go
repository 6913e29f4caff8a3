// Package service implements the profile enrichment orchestration layer:
// routing by source, staleness-driven refresh, URL-based auto-dispatch, and
// job-aware context assembly for the matching engine.
package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/andreypavlenko/talentpipe/internal/config"
	"github.com/andreypavlenko/talentpipe/internal/platform/cache"
	"github.com/andreypavlenko/talentpipe/internal/platform/logger"
	candidatemodel "github.com/andreypavlenko/talentpipe/modules/candidates/model"
	candidateports "github.com/andreypavlenko/talentpipe/modules/candidates/ports"
	"github.com/andreypavlenko/talentpipe/modules/enrichment/model"
	"github.com/andreypavlenko/talentpipe/modules/enrichment/ports"
	jobmodel "github.com/andreypavlenko/talentpipe/modules/jobs/model"
	"go.uber.org/zap"
)

type EnrichmentService struct {
	profiles   ports.ExternalProfileRepository
	candidates candidateports.CandidateService
	enrichers  []ports.Enricher
	bySource   map[model.Source]ports.Enricher
	cfg        config.EnrichmentConfig
	logger     *logger.Logger
	guard      *cache.RecentCallGuard
}

// NewEnrichmentService wires the service. guard may be nil — it is an
// optional anti-thundering-herd measure, not a correctness requirement.
func NewEnrichmentService(
	profiles ports.ExternalProfileRepository,
	candidates candidateports.CandidateService,
	enrichers []ports.Enricher,
	cfg config.EnrichmentConfig,
	log *logger.Logger,
	guard *cache.RecentCallGuard,
) *EnrichmentService {
	bySource := make(map[model.Source]ports.Enricher, len(enrichers))
	for _, e := range enrichers {
		bySource[e.Source()] = e
	}
	return &EnrichmentService{
		profiles:   profiles,
		candidates: candidates,
		enrichers:  enrichers,
		bySource:   bySource,
		cfg:        cfg,
		logger:     log,
		guard:      guard,
	}
}

func (s *EnrichmentService) shouldSkipRecentCall(ctx context.Context, candidateID string, source model.Source) bool {
	if s.guard == nil {
		return false
	}
	absent, err := s.guard.MarkIfAbsent(ctx, candidateID, string(source))
	if err != nil {
		s.logger.Warn("recent call guard check failed, proceeding without it", zap.String("candidateId", candidateID), zap.Error(err))
		return false
	}
	return !absent
}

func (s *EnrichmentService) Enrich(ctx context.Context, candidateID string, source model.Source) (*model.ExternalProfile, error) {
	candidate, err := s.candidates.GetByID(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	enricher, ok := s.bySource[source]
	if !ok {
		return nil, model.ErrUnknownSource
	}

	existing, err := s.profiles.GetByCandidateAndSource(ctx, candidateID, source)
	if err != nil && err != model.ErrProfileNotFound {
		return nil, err
	}
	if existing == nil {
		existing, err = s.profiles.Upsert(ctx, &model.ExternalProfile{
			CandidateID: candidateID,
			Source:      source,
			Status:      model.StatusPending,
		})
		if err != nil {
			return nil, err
		}
	}

	return enricher.Enrich(ctx, existing, candidate)
}

func (s *EnrichmentService) EnrichFromURL(ctx context.Context, candidateID, url string) (*model.ExternalProfile, error) {
	candidate, err := s.candidates.GetByID(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	for _, enricher := range s.enrichers {
		if !enricher.SupportsURL(url) {
			continue
		}
		existing, err := s.profiles.GetByCandidateAndSource(ctx, candidateID, enricher.Source())
		if err != nil && err != model.ErrProfileNotFound {
			return nil, err
		}
		if existing == nil {
			existing = &model.ExternalProfile{CandidateID: candidateID, Source: enricher.Source(), Status: model.StatusPending}
		}
		existing.ProfileURL = url
		return enricher.Enrich(ctx, existing, candidate)
	}
	return nil, nil
}

func (s *EnrichmentService) Refresh(ctx context.Context, profileID string) (*model.ExternalProfile, error) {
	profile, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	candidate, err := s.candidates.GetByID(ctx, profile.CandidateID)
	if err != nil {
		return nil, err
	}
	enricher, ok := s.bySource[profile.Source]
	if !ok {
		return nil, model.ErrUnknownSource
	}
	return enricher.Enrich(ctx, profile, candidate)
}

func (s *EnrichmentService) GetProfiles(ctx context.Context, candidateID string) ([]*model.ExternalProfile, error) {
	return s.profiles.ListByCandidate(ctx, candidateID)
}

func (s *EnrichmentService) BuildContext(ctx context.Context, candidateID string) (string, error) {
	profiles, err := s.profiles.ListByCandidate(ctx, candidateID)
	if err != nil {
		return "", err
	}
	success := filterSuccess(profiles)
	if len(success) == 0 {
		return "", nil
	}
	return formatContext(success, "--- External Profile Information ---"), nil
}

func (s *EnrichmentService) BuildContextForJob(ctx context.Context, candidateID string, job *jobmodel.JobRequirement) (string, error) {
	profiles, err := s.profiles.ListByCandidate(ctx, candidateID)
	if err != nil {
		return "", err
	}
	success := filterSuccess(profiles)
	if len(success) == 0 {
		return "", nil
	}

	jobText := strings.ToLower(job.MatchText())
	sort.SliceStable(success, func(i, j int) bool {
		return relevanceScore(success[i].Source, jobText) > relevanceScore(success[j].Source, jobText)
	})

	return formatContext(success, "--- External Profile Information --- (ranked by job relevance)"), nil
}

var githubKeywords = []string{"developer", "engineer", "software", "coding", "code", "github", "open source", "backend", "frontend", "fullstack", "java", "python", "javascript", "typescript", "golang", "rust"}
var twitterKeywords = []string{"social", "community", "advocate", "evangelist", "content", "marketing", "brand", "speaker", "influencer", "developer relations"}

func relevanceScore(source model.Source, jobText string) int {
	switch source {
	case model.SourceGitHub:
		if containsAny(jobText, githubKeywords) {
			return 3
		}
		return 1
	case model.SourceTwitter:
		if containsAny(jobText, twitterKeywords) {
			return 3
		}
		return 0
	case model.SourceLinkedIn:
		return 2
	case model.SourceInternetSearch:
		return 1
	default:
		return 0
	}
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func (s *EnrichmentService) RefreshStaleProfiles(ctx context.Context, candidate *candidatemodel.Candidate) {
	profiles, err := s.profiles.ListByCandidate(ctx, candidate.ID)
	if err != nil {
		s.logger.Warn("failed to list profiles for staleness check", zap.String("candidateId", candidate.ID), zap.Error(err))
		return
	}

	ttl := time.Duration(s.cfg.StalenessTTLDays) * 24 * time.Hour
	now := time.Now()
	for _, p := range profiles {
		if p.Status != model.StatusSuccess || !p.IsStale(ttl, now) {
			continue
		}
		enricher, ok := s.bySource[p.Source]
		if !ok {
			continue
		}
		if _, err := enricher.Enrich(ctx, p, candidate); err != nil {
			s.logger.Warn("failed to refresh stale profile", zap.String("candidateId", candidate.ID), zap.String("source", string(p.Source)), zap.Error(err))
		}
	}
}

func (s *EnrichmentService) EnsureInternetSearchFresh(ctx context.Context, candidate *candidatemodel.Candidate) {
	enricher, ok := s.bySource[model.SourceInternetSearch]
	if !ok {
		return
	}

	existing, err := s.profiles.GetByCandidateAndSource(ctx, candidate.ID, model.SourceInternetSearch)
	if err != nil && err != model.ErrProfileNotFound {
		s.logger.Warn("failed to load internet search profile", zap.String("candidateId", candidate.ID), zap.Error(err))
		return
	}

	ttl := time.Duration(s.cfg.StalenessTTLDays) * 24 * time.Hour
	needsRefresh := existing == nil || existing.Status != model.StatusSuccess || existing.IsStale(ttl, time.Now())
	if !needsRefresh {
		return
	}
	if s.shouldSkipRecentCall(ctx, candidate.ID, model.SourceInternetSearch) {
		return
	}
	if existing == nil {
		existing = &model.ExternalProfile{CandidateID: candidate.ID, Source: model.SourceInternetSearch, Status: model.StatusPending}
	}
	if _, err := enricher.Enrich(ctx, existing, candidate); err != nil {
		s.logger.Warn("failed to ensure fresh internet search profile", zap.String("candidateId", candidate.ID), zap.Error(err))
	}
}

func (s *EnrichmentService) AutoEnrich(ctx context.Context, candidate *candidatemodel.Candidate, sources []model.Source) {
	ttl := time.Duration(s.cfg.StalenessTTLDays) * 24 * time.Hour
	now := time.Now()
	for _, source := range sources {
		enricher, ok := s.bySource[source]
		if !ok {
			continue
		}
		existing, err := s.profiles.GetByCandidateAndSource(ctx, candidate.ID, source)
		if err != nil && err != model.ErrProfileNotFound {
			s.logger.Warn("failed to load profile during auto enrich", zap.String("candidateId", candidate.ID), zap.String("source", string(source)), zap.Error(err))
			continue
		}
		if existing != nil && existing.Status == model.StatusSuccess && !existing.IsStale(ttl, now) {
			continue
		}
		if s.shouldSkipRecentCall(ctx, candidate.ID, source) {
			continue
		}
		if existing == nil {
			existing = &model.ExternalProfile{CandidateID: candidate.ID, Source: source, Status: model.StatusPending}
		}
		if _, err := enricher.Enrich(ctx, existing, candidate); err != nil {
			s.logger.Warn("failed to auto enrich profile", zap.String("candidateId", candidate.ID), zap.String("source", string(source)), zap.Error(err))
		}
	}
}

func filterSuccess(profiles []*model.ExternalProfile) []*model.ExternalProfile {
	var out []*model.ExternalProfile
	for _, p := range profiles {
		if p.Status == model.StatusSuccess {
			out = append(out, p)
		}
	}
	return out
}

func formatContext(profiles []*model.ExternalProfile, header string) string {
	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString("\n\n")
	for i, p := range profiles {
		sb.WriteString(fmt.Sprintf("[Source: %s]\n", p.Source))
		writeField(&sb, "Profile URL", p.ProfileURL)
		writeField(&sb, "Bio", p.Bio)
		writeField(&sb, "Company", p.Company)
		writeField(&sb, "Location", p.Location)
		if p.PublicRepos > 0 {
			writeField(&sb, "Public Repos", fmt.Sprintf("%d", p.PublicRepos))
		}
		if p.Followers > 0 {
			writeField(&sb, "Followers", fmt.Sprintf("%d", p.Followers))
		}
		writeField(&sb, "Summary", p.EnrichedSummary)
		writeField(&sb, "Top Projects", p.RepositoriesSummary)
		if i < len(profiles)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func writeField(sb *strings.Builder, label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	sb.WriteString(label)
	sb.WriteString(": ")
	sb.WriteString(value)
	sb.WriteString("\n")
}

var _ ports.EnrichmentService = (*EnrichmentService)(nil)
