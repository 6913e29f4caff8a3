package service

import (
	"context"
	"testing"

	"github.com/andreypavlenko/talentpipe/internal/platform/logger"
	"github.com/andreypavlenko/talentpipe/modules/candidates/model"
	"github.com/andreypavlenko/talentpipe/modules/candidates/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	ports.CandidateRepository
	created    *model.Candidate
	embeddings []*model.ResumeEmbedding
}

func (f *fakeRepo) Create(ctx context.Context, c *model.Candidate) error {
	f.created = c
	return nil
}

func (f *fakeRepo) ReplaceEmbeddings(ctx context.Context, candidateID string, embeddings []*model.ResumeEmbedding) error {
	f.embeddings = embeddings
	return nil
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error", "console")
	require.NoError(t, err)
	return log
}

func TestCandidateService_Create_DefaultsUnknownName(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewCandidateService(repo, newTestLogger(t))

	err := svc.Create(context.Background(), &model.Candidate{ID: "c1"})

	require.NoError(t, err)
	assert.Equal(t, "Unknown", repo.created.Name)
}

func TestCandidateService_Create_PreservesProvidedName(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewCandidateService(repo, newTestLogger(t))

	err := svc.Create(context.Background(), &model.Candidate{ID: "c1", Name: "Jane Doe"})

	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", repo.created.Name)
}

type fakeBlobStore struct {
	put map[string][]byte
}

func (f *fakeBlobStore) Put(ctx context.Context, key string, content []byte, contentType string) error {
	if f.put == nil {
		f.put = map[string][]byte{}
	}
	f.put[key] = content
	return nil
}

func (f *fakeBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	return f.put[key], nil
}

func TestCandidateService_Create_RoutesBytesThroughBlobStore(t *testing.T) {
	repo := &fakeRepo{}
	blobs := &fakeBlobStore{}
	svc := NewCandidateServiceWithBlobStore(repo, blobs, newTestLogger(t))

	err := svc.Create(context.Background(), &model.Candidate{ID: "c1", ResumeFilename: "resume.pdf", ResumeBytes: []byte("%PDF-1.4")})

	require.NoError(t, err)
	assert.Equal(t, model.StorageS3, repo.created.StorageType)
	assert.Equal(t, "resumes/c1", repo.created.StorageKey)
	assert.Nil(t, repo.created.ResumeBytes)
	assert.Equal(t, []byte("%PDF-1.4"), blobs.put["resumes/c1"])
}

func TestCandidateService_Create_InlineWhenNoBlobStore(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewCandidateService(repo, newTestLogger(t))

	err := svc.Create(context.Background(), &model.Candidate{ID: "c1", ResumeBytes: []byte("data")})

	require.NoError(t, err)
	assert.Equal(t, model.StorageInline, repo.created.StorageType)
	assert.Equal(t, []byte("data"), repo.created.ResumeBytes)
}

func TestCandidateService_ReplaceEmbeddings_PassesThroughToRepo(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewCandidateService(repo, newTestLogger(t))

	embeddings := []*model.ResumeEmbedding{{ID: "e1", Chunk: "text", Vector: []float32{0.1, 0.2}}}
	err := svc.ReplaceEmbeddings(context.Background(), "c1", embeddings)

	require.NoError(t, err)
	assert.Equal(t, embeddings, repo.embeddings)
}
