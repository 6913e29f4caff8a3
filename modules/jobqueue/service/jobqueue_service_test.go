package service

import (
	"context"
	"testing"
	"time"

	"github.com/andreypavlenko/talentpipe/internal/config"
	"github.com/andreypavlenko/talentpipe/internal/platform/logger"
	"github.com/andreypavlenko/talentpipe/modules/jobqueue/model"
	"github.com/andreypavlenko/talentpipe/modules/jobqueue/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	ports.JobQueueRepository
	enqueueIn   ports.EnqueueInput
	failArgs    []any
	claimResult []*model.Job
}

func (f *fakeRepo) Enqueue(ctx context.Context, in ports.EnqueueInput) (*model.Job, error) {
	f.enqueueIn = in
	return &model.Job{ID: "job-1", Kind: in.Kind, Status: model.StatusPending, MaxRetries: in.MaxRetries}, nil
}

func (f *fakeRepo) Fail(ctx context.Context, jobID string, errMsg string, retryable bool, maxBackoff, baseBackoff time.Duration) error {
	f.failArgs = []any{jobID, errMsg, retryable, maxBackoff, baseBackoff}
	return nil
}

func (f *fakeRepo) Claim(ctx context.Context, kind string, batchSize int, workerID string) ([]*model.Job, error) {
	return f.claimResult, nil
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error", "console")
	require.NoError(t, err)
	return log
}

func TestJobQueueService_Enqueue_DefaultsMaxRetries(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewJobQueueService(repo, config.RetryConfig{MaxAttempts: 3, BaseBackoff: 30 * time.Second, MaxBackoff: 15 * time.Minute}, newTestLogger(t))

	job, err := svc.Enqueue(context.Background(), ports.EnqueueInput{Kind: "resume.ingest"})

	require.NoError(t, err)
	assert.Equal(t, 3, repo.enqueueIn.MaxRetries)
	assert.Equal(t, "job-1", job.ID)
}

func TestJobQueueService_Enqueue_PreservesExplicitMaxRetries(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewJobQueueService(repo, config.RetryConfig{MaxAttempts: 3}, newTestLogger(t))

	_, err := svc.Enqueue(context.Background(), ports.EnqueueInput{Kind: "resume.ingest", MaxRetries: 7})

	require.NoError(t, err)
	assert.Equal(t, 7, repo.enqueueIn.MaxRetries)
}

func TestJobQueueService_Fail_PassesBackoffPolicy(t *testing.T) {
	repo := &fakeRepo{}
	retry := config.RetryConfig{BaseBackoff: 30 * time.Second, MaxBackoff: 15 * time.Minute, MaxAttempts: 3}
	svc := NewJobQueueService(repo, retry, newTestLogger(t))

	err := svc.Fail(context.Background(), "job-1", "connection reset", true)

	require.NoError(t, err)
	require.Len(t, repo.failArgs, 5)
	assert.Equal(t, "job-1", repo.failArgs[0])
	assert.Equal(t, true, repo.failArgs[2])
	assert.Equal(t, retry.MaxBackoff, repo.failArgs[3])
	assert.Equal(t, retry.BaseBackoff, repo.failArgs[4])
}

func TestJobQueueService_Claim_NoJobsIsNotAnError(t *testing.T) {
	repo := &fakeRepo{claimResult: nil}
	svc := NewJobQueueService(repo, config.RetryConfig{}, newTestLogger(t))

	jobs, err := svc.Claim(context.Background(), "resume.ingest", 5, "worker-1")

	require.NoError(t, err)
	assert.Empty(t, jobs)
}
