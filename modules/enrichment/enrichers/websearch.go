package enrichers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	candidatemodel "github.com/andreypavlenko/talentpipe/modules/candidates/model"
	"github.com/andreypavlenko/talentpipe/modules/enrichment/model"
	"github.com/andreypavlenko/talentpipe/modules/enrichment/ports"
)

// WebSearchEnricher resolves INTERNET_SEARCH profiles via a Tavily-style
// search endpoint. It never matches a URL and always resolves to SUCCESS —
// on any failure it falls back to a summary synthesised from the
// candidate's own fields rather than leaving the profile unset.
type WebSearchEnricher struct {
	repo    ports.ExternalProfileRepository
	http    *http.Client
	baseURL string
	apiKey  string
}

func NewWebSearchEnricher(repo ports.ExternalProfileRepository, baseURL, apiKey string) *WebSearchEnricher {
	if baseURL == "" {
		baseURL = "https://api.tavily.com"
	}
	return &WebSearchEnricher{
		repo:    repo,
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

func (e *WebSearchEnricher) Source() model.Source { return model.SourceInternetSearch }

func (e *WebSearchEnricher) SupportsURL(url string) bool { return false }

type tavilySearchRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	MaxResults    int    `json:"max_results"`
	IncludeAnswer bool   `json:"include_answer"`
}

type tavilySearchResponse struct {
	Answer  string `json:"answer"`
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

func (e *WebSearchEnricher) Enrich(ctx context.Context, existing *model.ExternalProfile, candidate *candidatemodel.Candidate) (*model.ExternalProfile, error) {
	profile := cloneOrNew(existing, candidate.ID, model.SourceInternetSearch)
	now := time.Now()
	profile.LastFetchedAt = &now
	profile.Status = model.StatusSuccess // always resolves SUCCESS per contract

	summary, err := e.fetchSummary(ctx, candidate)
	if err != nil || len(strings.TrimSpace(summary)) < 100 {
		profile.EnrichedSummary = fallbackSummary(candidate)
		profile.ErrorMessage = ""
		if err != nil {
			profile.ErrorMessage = err.Error()
		}
		return e.repo.Upsert(ctx, profile)
	}

	profile.EnrichedSummary = summary
	profile.ErrorMessage = ""
	return e.repo.Upsert(ctx, profile)
}

func (e *WebSearchEnricher) fetchSummary(ctx context.Context, candidate *candidatemodel.Candidate) (string, error) {
	if e.apiKey == "" {
		return "", fmt.Errorf("no web search api key configured")
	}

	primarySkill := firstNonEmpty(strings.Split(candidate.Skills, ",")[0], "software")
	query := fmt.Sprintf("%s %s software developer professional profile", candidate.Name, strings.TrimSpace(primarySkill))

	payload, err := json.Marshal(tavilySearchRequest{
		APIKey:        e.apiKey,
		Query:         query,
		MaxResults:    5,
		IncludeAnswer: true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal web search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build web search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("web search request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("web search returned status %d", resp.StatusCode)
	}

	var parsed tavilySearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode web search response: %w", err)
	}

	var sb strings.Builder
	if parsed.Answer != "" {
		sb.WriteString(parsed.Answer)
		sb.WriteString("\n\n")
	}
	for i, r := range parsed.Results {
		if i >= 3 {
			break
		}
		snippet := r.Content
		if len(snippet) > 300 {
			snippet = snippet[:300]
		}
		sb.WriteString(fmt.Sprintf("- %s (%s): %s\n", r.Title, r.URL, snippet))
	}
	return sb.String(), nil
}

func fallbackSummary(candidate *candidatemodel.Candidate) string {
	return fmt.Sprintf(
		"internet search unavailable; summarising known fields for %s — skills: %s, years of experience: %.1f, domain knowledge: %s",
		candidate.Name, candidate.Skills, candidate.YearsOfExperience, candidate.DomainKnowledge,
	)
}

var _ ports.Enricher = (*WebSearchEnricher)(nil)
