package service

import (
	"context"

	"github.com/andreypavlenko/talentpipe/internal/platform/storage"
)

// S3BlobStore adapts the platform S3 client to ports.BlobStore.
type S3BlobStore struct {
	client *storage.S3Client
}

func NewS3BlobStore(client *storage.S3Client) *S3BlobStore {
	return &S3BlobStore{client: client}
}

func (s *S3BlobStore) Put(ctx context.Context, key string, content []byte, contentType string) error {
	return s.client.PutObject(ctx, key, content, contentType)
}

func (s *S3BlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.client.GetObject(ctx, key)
}
