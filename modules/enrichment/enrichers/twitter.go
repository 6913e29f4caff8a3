package enrichers

import (
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

// MicroblogEnricher fetches a public X/Twitter profile by username. Without
// bearer credentials it never attempts a call.
type MicroblogEnricher struct {
	repo        ports.ExternalProfileRepository
	http        *http.Client
	bearerToken string
}

func NewMicroblogEnricher(repo ports.ExternalProfileRepository, bearerToken string) *MicroblogEnricher {
	return &MicroblogEnricher{
		repo:        repo,
		http:        &http.Client{Timeout: 30 * time.Second},
		bearerToken: bearerToken,
	}
}

func (e *MicroblogEnricher) Source() model.Source { return model.SourceTwitter }

func (e *MicroblogEnricher) SupportsURL(u string) bool {
	lower := strings.ToLower(u)
	return strings.Contains(lower, "twitter.com") || strings.Contains(lower, "x.com")
}

type twitterUser struct {
	Data struct {
		Name            string `json:"name"`
		Username        string `json:"username"`
		Description     string `json:"description"`
		Location        string `json:"location"`
		PublicMetrics struct {
			FollowersCount int `json:"followers_count"`
		} `json:"public_metrics"`
	} `json:"data"`
}

func (e *MicroblogEnricher) Enrich(ctx context.Context, existing *model.ExternalProfile, candidate *candidatemodel.Candidate) (*model.ExternalProfile, error) {
	profile := cloneOrNew(existing, candidate.ID, model.SourceTwitter)
	now := time.Now()
	profile.LastFetchedAt = &now

	if e.bearerToken == "" {
		profile.Status = model.StatusNotAvailable
		profile.ErrorMessage = "no microblog api credentials configured"
		return e.repo.Upsert(ctx, profile)
	}

	username := usernameFromURL(profile.ProfileURL)
	if username == "" {
		profile.Status = model.StatusNotFound
		profile.ErrorMessage = "no microblog profile url on file and no public search endpoint is available"
		return e.repo.Upsert(ctx, profile)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://api.twitter.com/2/users/by/username/"+username+"?user.fields=description,location,public_metrics", nil)
	if err != nil {
		profile.Status = model.StatusFailed
		profile.ErrorMessage = err.Error()
		return e.repo.Upsert(ctx, profile)
	}
	req.Header.Set("Authorization", "Bearer "+e.bearerToken)

	resp, err := e.http.Do(req)
	if err != nil {
		profile.Status = model.StatusFailed
		profile.ErrorMessage = err.Error()
		return e.repo.Upsert(ctx, profile)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		profile.Status = model.StatusFailed
		profile.ErrorMessage = "microblog api rate limit exceeded"
		return e.repo.Upsert(ctx, profile)
	}
	if resp.StatusCode != http.StatusOK {
		profile.Status = model.StatusFailed
		profile.ErrorMessage = fmt.Sprintf("microblog api returned status %d", resp.StatusCode)
		return e.repo.Upsert(ctx, profile)
	}

	var user twitterUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		profile.Status = model.StatusFailed
		profile.ErrorMessage = err.Error()
		return e.repo.Upsert(ctx, profile)
	}

	profile.Status = model.StatusSuccess
	profile.DisplayName = firstNonEmpty(user.Data.Name, user.Data.Username)
	profile.Bio = user.Data.Description
	profile.Location = user.Data.Location
	profile.Followers = user.Data.PublicMetrics.FollowersCount
	profile.ErrorMessage = ""
	return e.repo.Upsert(ctx, profile)
}

func usernameFromURL(u string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(u), "/")
	for _, host := range []string{"twitter.com/", "x.com/"} {
		idx := strings.Index(strings.ToLower(trimmed), host)
		if idx == -1 {
			continue
		}
		rest := trimmed[idx+len(host):]
		segments := strings.Split(rest, "/")
		if len(segments) == 0 {
			return ""
		}
		return strings.TrimPrefix(segments[0], "@")
	}
	return ""
}

var _ ports.Enricher = (*MicroblogEnricher)(nil)
