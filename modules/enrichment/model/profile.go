package model

import "time"

// Source identifies which external platform a profile row was fetched from.
type Source string

const (
	SourceGitHub         Source = "GITHUB"
	SourceLinkedIn       Source = "LINKEDIN"
	SourceTwitter        Source = "TWITTER"
	SourceInternetSearch Source = "INTERNET_SEARCH"
)

// Status is the outcome of the most recent enrichment attempt for a profile.
type Status string

const (
	StatusPending      Status = "PENDING"
	StatusSuccess      Status = "SUCCESS"
	StatusNotFound     Status = "NOT_FOUND"
	StatusNotAvailable Status = "NOT_AVAILABLE"
	StatusFailed       Status = "FAILED"
)

// ExternalProfile is one (candidate, source) row. Mutated only by
// enrichers; staleness is computed from LastFetchedAt.
type ExternalProfile struct {
	ID                  string
	CandidateID         string
	Source              Source
	Status              Status
	ProfileURL          string
	DisplayName         string
	Bio                 string
	Company             string
	Location            string
	PublicRepos         int
	Followers           int
	RepositoriesSummary string
	EnrichedSummary     string
	LastFetchedAt       *time.Time
	ErrorMessage        string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsStale reports whether this SUCCESS profile is older than ttl.
func (p *ExternalProfile) IsStale(ttl time.Duration, now time.Time) bool {
	if p.LastFetchedAt == nil {
		return true
	}
	return now.Sub(*p.LastFetchedAt) > ttl
}
