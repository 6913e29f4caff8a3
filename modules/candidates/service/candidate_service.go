package service

import (
	"context"
	"strings"

	"github.com/andreypavlenko/talentpipe/internal/platform/logger"
	"github.com/andreypavlenko/talentpipe/modules/candidates/model"
	"github.com/andreypavlenko/talentpipe/modules/candidates/ports"
	"go.uber.org/zap"
)

type CandidateService struct {
	repo      ports.CandidateRepository
	blobStore ports.BlobStore
	logger    *logger.Logger
}

// NewCandidateService wires a Postgres-inline-only candidate service.
func NewCandidateService(repo ports.CandidateRepository, log *logger.Logger) *CandidateService {
	return &CandidateService{repo: repo, logger: log}
}

// NewCandidateServiceWithBlobStore additionally routes résumé bytes through
// blobStore instead of storing them inline, mirroring the external/s3
// storage duality: the row keeps only a storage key, and bytes are fetched
// back from blobStore on read.
func NewCandidateServiceWithBlobStore(repo ports.CandidateRepository, blobStore ports.BlobStore, log *logger.Logger) *CandidateService {
	return &CandidateService{repo: repo, blobStore: blobStore, logger: log}
}

func (s *CandidateService) Create(ctx context.Context, candidate *model.Candidate) error {
	if candidate.Name == "" {
		candidate.Name = "Unknown"
	}

	if s.blobStore != nil && len(candidate.ResumeBytes) > 0 {
		key := "resumes/" + candidate.ID
		if err := s.blobStore.Put(ctx, key, candidate.ResumeBytes, contentTypeFor(candidate.ResumeFilename)); err != nil {
			s.logger.Error("failed to upload résumé bytes to object storage, falling back to inline storage",
				zap.String("candidateId", candidate.ID), zap.Error(err))
		} else {
			candidate.StorageType = model.StorageS3
			candidate.StorageKey = key
			candidate.ResumeBytes = nil
		}
	}
	if candidate.StorageType == "" {
		candidate.StorageType = model.StorageInline
	}

	if err := s.repo.Create(ctx, candidate); err != nil {
		return err
	}
	s.logger.Info("candidate created",
		zap.String("candidateId", candidate.ID),
		zap.String("filename", candidate.ResumeFilename),
		zap.String("storageType", string(candidate.StorageType)),
	)
	return nil
}

func (s *CandidateService) GetByID(ctx context.Context, id string) (*model.Candidate, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.hydrateBytes(ctx, c)
	return c, nil
}

func (s *CandidateService) List(ctx context.Context, limit, offset int) ([]*model.Candidate, error) {
	list, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	for _, c := range list {
		s.hydrateBytes(ctx, c)
	}
	return list, nil
}

// hydrateBytes fills in ResumeBytes from blobStore for rows stored
// externally; inline rows already carry their bytes from the query.
func (s *CandidateService) hydrateBytes(ctx context.Context, c *model.Candidate) {
	if c.StorageType != model.StorageS3 || s.blobStore == nil {
		return
	}
	content, err := s.blobStore.Get(ctx, c.StorageKey)
	if err != nil {
		s.logger.Error("failed to fetch résumé bytes from object storage", zap.String("candidateId", c.ID), zap.Error(err))
		return
	}
	c.ResumeBytes = content
}

func contentTypeFor(filename string) string {
	switch {
	case strings.HasSuffix(strings.ToLower(filename), ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(strings.ToLower(filename), ".docx"):
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case strings.HasSuffix(strings.ToLower(filename), ".doc"):
		return "application/msword"
	case strings.HasSuffix(strings.ToLower(filename), ".zip"):
		return "application/zip"
	default:
		return "application/octet-stream"
	}
}

func (s *CandidateService) ReplaceEmbeddings(ctx context.Context, candidateID string, embeddings []*model.ResumeEmbedding) error {
	if err := s.repo.ReplaceEmbeddings(ctx, candidateID, embeddings); err != nil {
		return err
	}
	s.logger.Info("candidate embeddings replaced", zap.String("candidateId", candidateID), zap.Int("chunkCount", len(embeddings)))
	return nil
}

func (s *CandidateService) EmbeddingsByCandidate(ctx context.Context, candidateID string) ([]*model.ResumeEmbedding, error) {
	return s.repo.EmbeddingsByCandidate(ctx, candidateID)
}

func (s *CandidateService) NearestByVector(ctx context.Context, query []float32, limit int) ([]string, error) {
	return s.repo.NearestByVector(ctx, query, limit)
}

var _ ports.CandidateService = (*CandidateService)(nil)
