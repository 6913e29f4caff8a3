package ports

import (
	"context"

	"github.com/andreypavlenko/talentpipe/modules/candidates/model"
	enrichmentmodel "github.com/andreypavlenko/talentpipe/modules/enrichment/model"
)

// Enricher is a strategy responsible for fetching external information from
// a single source and mapping it into a profile row. Every implementation
// must set Status and LastFetchedAt, catch all of its own errors, and
// persist the result before returning — callers never see a raw transport
// error out of Enrich.
type Enricher interface {
	Source() enrichmentmodel.Source
	// SupportsURL reports whether this enricher recognises url's host
	// pattern. INTERNET_SEARCH always returns false.
	SupportsURL(url string) bool
	Enrich(ctx context.Context, existing *enrichmentmodel.ExternalProfile, candidate *model.Candidate) (*enrichmentmodel.ExternalProfile, error)
}
