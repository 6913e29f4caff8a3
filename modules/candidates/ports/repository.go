package ports

import (
	"context"

	"github.com/andreypavlenko/talentpipe/modules/candidates/model"
)

// BlobStore persists raw résumé bytes outside the candidate row. The
// Postgres-inline path never needs one; it is wired in only when
// object storage is configured, so the pipeline stays agnostic to which
// backend a given deployment uses.
type BlobStore interface {
	Put(ctx context.Context, key string, content []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// CandidateRepository persists candidates and their résumé embeddings.
type CandidateRepository interface {
	Create(ctx context.Context, candidate *model.Candidate) error
	GetByID(ctx context.Context, id string) (*model.Candidate, error)
	List(ctx context.Context, limit, offset int) ([]*model.Candidate, error)

	// ReplaceEmbeddings deletes any prior embeddings for candidateID and
	// inserts the given set in one short transaction, matching the
	// whole-set-replace policy for re-ingest.
	ReplaceEmbeddings(ctx context.Context, candidateID string, embeddings []*model.ResumeEmbedding) error
	EmbeddingsByCandidate(ctx context.Context, candidateID string) ([]*model.ResumeEmbedding, error)

	// NearestByVector returns up to limit candidate IDs ordered by cosine
	// distance to query, for semantic-search style lookups.
	NearestByVector(ctx context.Context, query []float32, limit int) ([]string, error)
}
