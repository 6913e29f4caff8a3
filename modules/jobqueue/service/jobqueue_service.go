package service

import (
	"context"
	"time"

	"github.com/andreypavlenko/talentpipe/internal/config"
	"github.com/andreypavlenko/talentpipe/internal/platform/logger"
	"github.com/andreypavlenko/talentpipe/modules/jobqueue/model"
	"github.com/andreypavlenko/talentpipe/modules/jobqueue/ports"
	"go.uber.org/zap"
)

// JobQueueService wraps the repository with the retry-backoff policy and
// logging the rest of the system depends on.
type JobQueueService struct {
	repo   ports.JobQueueRepository
	retry  config.RetryConfig
	logger *logger.Logger
}

func NewJobQueueService(repo ports.JobQueueRepository, retry config.RetryConfig, log *logger.Logger) *JobQueueService {
	return &JobQueueService{repo: repo, retry: retry, logger: log}
}

func (s *JobQueueService) Enqueue(ctx context.Context, in ports.EnqueueInput) (*model.Job, error) {
	if in.MaxRetries <= 0 {
		in.MaxRetries = s.retry.MaxAttempts
	}
	job, err := s.repo.Enqueue(ctx, in)
	if err != nil {
		s.logger.Error("failed to enqueue job", zap.String("kind", in.Kind), zap.Error(err))
		return nil, err
	}
	s.logger.Info("job enqueued", zap.String("jobId", job.ID), zap.String("kind", job.Kind), zap.Int("priority", job.Priority))
	return job, nil
}

func (s *JobQueueService) EnqueueScheduled(ctx context.Context, in ports.EnqueueInput, scheduledFor time.Time) (*model.Job, error) {
	in.ScheduledFor = &scheduledFor
	return s.Enqueue(ctx, in)
}

func (s *JobQueueService) Claim(ctx context.Context, kind string, batchSize int, workerID string) ([]*model.Job, error) {
	jobs, err := s.repo.Claim(ctx, kind, batchSize, workerID)
	if err != nil {
		return nil, err
	}
	if len(jobs) > 0 {
		s.logger.Info("claimed jobs", zap.String("kind", kind), zap.String("workerId", workerID), zap.Int("count", len(jobs)))
	}
	return jobs, nil
}

func (s *JobQueueService) Heartbeat(ctx context.Context, jobID string) error {
	return s.repo.Heartbeat(ctx, jobID)
}

func (s *JobQueueService) Complete(ctx context.Context, jobID string, result map[string]string) error {
	if err := s.repo.Complete(ctx, jobID, result); err != nil {
		return err
	}
	s.logger.Info("job completed", zap.String("jobId", jobID))
	return nil
}

// Fail applies the configured backoff policy: base * 2^retryCount, capped at
// MaxBackoff. The caller (pipeline/matching code) decides retryable vs not;
// this service only enforces the numeric policy.
func (s *JobQueueService) Fail(ctx context.Context, jobID string, errMsg string, retryable bool) error {
	if err := s.repo.Fail(ctx, jobID, errMsg, retryable, s.retry.MaxBackoff, s.retry.BaseBackoff); err != nil {
		return err
	}
	s.logger.Warn("job failed", zap.String("jobId", jobID), zap.Bool("retryable", retryable), zap.String("error", errMsg))
	return nil
}

func (s *JobQueueService) Cancel(ctx context.Context, jobID string) (bool, error) {
	return s.repo.Cancel(ctx, jobID)
}

func (s *JobQueueService) ResetStale(ctx context.Context, thresholdMinutes int) (int, error) {
	count, err := s.repo.ResetStale(ctx, thresholdMinutes)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.logger.Warn("reclaimed stale jobs", zap.Int("count", count), zap.Int("thresholdMinutes", thresholdMinutes))
	}
	return count, nil
}

func (s *JobQueueService) Get(ctx context.Context, jobID string) (*model.Job, error) {
	return s.repo.Get(ctx, jobID)
}

func (s *JobQueueService) ByCorrelation(ctx context.Context, correlationID string) ([]*model.Job, error) {
	return s.repo.ByCorrelation(ctx, correlationID)
}

func (s *JobQueueService) ByStatus(ctx context.Context, status model.Status, limit, offset int) ([]*model.Job, int, error) {
	return s.repo.ByStatus(ctx, status, limit, offset)
}

func (s *JobQueueService) QueueDepth(ctx context.Context, kind string) (int, error) {
	return s.repo.QueueDepth(ctx, kind)
}

func (s *JobQueueService) CountByStatus(ctx context.Context, status model.Status) (int, error) {
	return s.repo.CountByStatus(ctx, status)
}

func (s *JobQueueService) StatsByKind(ctx context.Context, kind string) (*model.KindStats, error) {
	return s.repo.StatsByKind(ctx, kind)
}

func (s *JobQueueService) DeleteCompletedOlderThan(ctx context.Context, days int) (int, error) {
	return s.repo.DeleteCompletedOlderThan(ctx, days)
}

func (s *JobQueueService) FindForRetry(ctx context.Context, kind string, limit int) ([]*model.Job, error) {
	return s.repo.FindForRetry(ctx, kind, limit)
}

var _ ports.JobQueueService = (*JobQueueService)(nil)
