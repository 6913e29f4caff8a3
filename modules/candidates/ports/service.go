package ports

import (
	"context"

	"github.com/andreypavlenko/talentpipe/modules/candidates/model"
)

// CandidateService is the orchestration surface used by the résumé
// processing pipeline and the matching engine.
type CandidateService interface {
	Create(ctx context.Context, candidate *model.Candidate) error
	GetByID(ctx context.Context, id string) (*model.Candidate, error)
	List(ctx context.Context, limit, offset int) ([]*model.Candidate, error)
	ReplaceEmbeddings(ctx context.Context, candidateID string, embeddings []*model.ResumeEmbedding) error
	EmbeddingsByCandidate(ctx context.Context, candidateID string) ([]*model.ResumeEmbedding, error)
	NearestByVector(ctx context.Context, query []float32, limit int) ([]string, error)
}
