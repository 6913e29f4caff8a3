// Package enrichers holds the built-in Enricher implementations: one per
// external source the profile enrichment service can dispatch to.
package enrichers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	candidatemodel "github.com/andreypavlenko/talentpipe/modules/candidates/model"
	"github.com/andreypavlenko/talentpipe/modules/enrichment/model"
	"github.com/andreypavlenko/talentpipe/modules/enrichment/ports"
)

// CodeHostingEnricher resolves a GitHub login and summarizes the
// candidate's public activity there.
type CodeHostingEnricher struct {
	repo  ports.ExternalProfileRepository
	http  *http.Client
	token string
}

func NewCodeHostingEnricher(repo ports.ExternalProfileRepository, token string) *CodeHostingEnricher {
	return &CodeHostingEnricher{
		repo:  repo,
		http:  &http.Client{Timeout: 30 * time.Second},
		token: token,
	}
}

func (e *CodeHostingEnricher) Source() model.Source { return model.SourceGitHub }

func (e *CodeHostingEnricher) SupportsURL(url string) bool {
	return strings.Contains(strings.ToLower(url), "github.com")
}

type githubUser struct {
	Login       string `json:"login"`
	Name        string `json:"name"`
	Bio         string `json:"bio"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Blog        string `json:"blog"`
	PublicRepos int    `json:"public_repos"`
	Followers   int    `json:"followers"`
}

type githubRepo struct {
	Name            string `json:"name"`
	StargazersCount int    `json:"stargazers_count"`
}

func (e *CodeHostingEnricher) Enrich(ctx context.Context, existing *model.ExternalProfile, candidate *candidatemodel.Candidate) (*model.ExternalProfile, error) {
	profile := cloneOrNew(existing, candidate.ID, model.SourceGitHub)
	now := time.Now()
	profile.LastFetchedAt = &now

	login := loginFromURL(profile.ProfileURL)
	if login == "" {
		resolved, err := e.searchLogin(ctx, candidate.Name)
		if err != nil {
			return e.fail(ctx, profile, err)
		}
		login = resolved
	}
	if login == "" {
		profile.Status = model.StatusNotFound
		profile.ErrorMessage = "no github login could be resolved for this candidate"
		return e.persist(ctx, profile)
	}

	user, err := e.fetchUser(ctx, login)
	if err != nil {
		return e.fail(ctx, profile, err)
	}

	repos, err := e.fetchTopRepos(ctx, login)
	if err != nil {
		return e.fail(ctx, profile, err)
	}

	profile.Status = model.StatusSuccess
	profile.ProfileURL = "https://github.com/" + login
	profile.DisplayName = firstNonEmpty(user.Name, user.Login)
	profile.Bio = user.Bio
	profile.Company = user.Company
	profile.Location = user.Location
	profile.PublicRepos = user.PublicRepos
	profile.Followers = user.Followers
	profile.RepositoriesSummary = strings.Join(repos, ", ")
	profile.EnrichedSummary = fmt.Sprintf(
		"github: @%s — %d repos, %d followers. Blog: %s. Top projects: %s",
		login, user.PublicRepos, user.Followers, firstNonEmpty(user.Blog, "none"), strings.Join(repos, ", "),
	)
	profile.ErrorMessage = ""
	return e.persist(ctx, profile)
}

func (e *CodeHostingEnricher) searchLogin(ctx context.Context, name string) (string, error) {
	tokens := strings.Fields(name)
	if len(tokens) == 0 {
		return "", nil
	}
	query := tokens[0]
	if len(tokens) > 1 {
		query = tokens[0] + " " + tokens[len(tokens)-1]
	}

	req, err := e.newRequest(ctx, "https://api.github.com/search/users?q="+strings.ReplaceAll(query, " ", "+"))
	if err != nil {
		return "", err
	}

	resp, err := e.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if err := e.checkStatus(resp); err != nil {
		return "", err
	}

	var result struct {
		Items []struct {
			Login string `json:"login"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode github search response: %w", err)
	}
	if len(result.Items) == 0 {
		return "", nil
	}
	return result.Items[0].Login, nil
}

func (e *CodeHostingEnricher) fetchUser(ctx context.Context, login string) (*githubUser, error) {
	req, err := e.newRequest(ctx, "https://api.github.com/users/"+login)
	if err != nil {
		return nil, err
	}
	resp, err := e.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := e.checkStatus(resp); err != nil {
		return nil, err
	}
	var user githubUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode github user response: %w", err)
	}
	return &user, nil
}

func (e *CodeHostingEnricher) fetchTopRepos(ctx context.Context, login string) ([]string, error) {
	req, err := e.newRequest(ctx, "https://api.github.com/users/"+login+"/repos?per_page=100")
	if err != nil {
		return nil, err
	}
	resp, err := e.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := e.checkStatus(resp); err != nil {
		return nil, err
	}
	var repos []githubRepo
	if err := json.NewDecoder(resp.Body).Decode(&repos); err != nil {
		return nil, fmt.Errorf("failed to decode github repos response: %w", err)
	}

	sort.Slice(repos, func(i, j int) bool { return repos[i].StargazersCount > repos[j].StargazersCount })
	if len(repos) > 5 {
		repos = repos[:5]
	}
	names := make([]string, len(repos))
	for i, r := range repos {
		names[i] = r.Name
	}
	return names, nil
}

func (e *CodeHostingEnricher) newRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	return req, nil
}

func (e *CodeHostingEnricher) checkStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("github rate limit exceeded")
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github returned status %d", resp.StatusCode)
	}
	return nil
}

func (e *CodeHostingEnricher) fail(ctx context.Context, profile *model.ExternalProfile, err error) (*model.ExternalProfile, error) {
	profile.Status = model.StatusFailed
	profile.ErrorMessage = err.Error()
	return e.persist(ctx, profile)
}

func (e *CodeHostingEnricher) persist(ctx context.Context, profile *model.ExternalProfile) (*model.ExternalProfile, error) {
	return e.repo.Upsert(ctx, profile)
}

func loginFromURL(url string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(url), "/")
	idx := strings.Index(strings.ToLower(trimmed), "github.com/")
	if idx == -1 {
		return ""
	}
	rest := trimmed[idx+len("github.com/"):]
	segments := strings.Split(rest, "/")
	if len(segments) == 0 {
		return ""
	}
	return segments[0]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func cloneOrNew(existing *model.ExternalProfile, candidateID string, source model.Source) *model.ExternalProfile {
	if existing != nil {
		clone := *existing
		return &clone
	}
	return &model.ExternalProfile{
		CandidateID: candidateID,
		Source:      source,
		Status:      model.StatusPending,
	}
}

var _ ports.Enricher = (*CodeHostingEnricher)(nil)
