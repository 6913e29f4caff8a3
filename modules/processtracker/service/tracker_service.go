// Package service implements processtracker.ports.TrackerService, the
// pipeline's per-upload stage tracker.
package service

import (
	"context"
	"time"

	"github.com/andreypavlenko/talentpipe/internal/platform/logger"
	"github.com/andreypavlenko/talentpipe/modules/processtracker/model"
	"github.com/andreypavlenko/talentpipe/modules/processtracker/ports"
	"go.uber.org/zap"
)

type TrackerService struct {
	repo   ports.TrackerRepository
	logger *logger.Logger
}

func NewTrackerService(repo ports.TrackerRepository, log *logger.Logger) *TrackerService {
	return &TrackerService{repo: repo, logger: log}
}

func (s *TrackerService) Create(ctx context.Context, uploadedFilename string, total int) (*model.Tracker, error) {
	tracker := &model.Tracker{
		Status:           model.StatusInitiated,
		Total:            total,
		UploadedFilename: uploadedFilename,
	}
	return s.repo.Create(ctx, tracker)
}

func (s *TrackerService) GetByID(ctx context.Context, id string) (*model.Tracker, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *TrackerService) LinkJob(ctx context.Context, trackerID, jobID, correlationID string) error {
	tracker, err := s.repo.GetByID(ctx, trackerID)
	if err != nil {
		return err
	}
	tracker.JobID = jobID
	tracker.CorrelationID = correlationID
	return s.repo.Update(ctx, tracker)
}

// Advance moves the tracker to status, which must be later in the
// INITIATED → RESUME_ANALYZED → EMBED_GENERATED → VECTOR_DB_UPDATED →
// COMPLETED sequence than its current status; the pipeline is the only
// caller and always advances forward.
func (s *TrackerService) Advance(ctx context.Context, trackerID string, status model.Status, message string) error {
	tracker, err := s.repo.GetByID(ctx, trackerID)
	if err != nil {
		return err
	}
	tracker.Status = status
	tracker.Message = message
	return s.repo.Update(ctx, tracker)
}

func (s *TrackerService) Fail(ctx context.Context, trackerID string, message string) error {
	tracker, err := s.repo.GetByID(ctx, trackerID)
	if err != nil {
		return err
	}
	tracker.Status = model.StatusFailed
	tracker.Message = message
	if err := s.repo.Update(ctx, tracker); err != nil {
		return err
	}
	if err := s.repo.IncrementFailed(ctx, trackerID); err != nil {
		return err
	}
	s.logger.Warn("process tracker failed", zap.String("trackerId", trackerID), zap.String("message", message))
	return nil
}

// SetTotal overwrites the expected file count; zip fan-out calls this once
// with the number of child jobs it enqueued, before any of them can
// complete and call IncrementProcessed/IncrementFailed.
func (s *TrackerService) SetTotal(ctx context.Context, trackerID string, total int) error {
	return s.repo.SetTotal(ctx, trackerID, total)
}

func (s *TrackerService) IncrementProcessed(ctx context.Context, trackerID string) error {
	return s.repo.IncrementProcessed(ctx, trackerID)
}

func (s *TrackerService) IncrementFailed(ctx context.Context, trackerID string) error {
	return s.repo.IncrementFailed(ctx, trackerID)
}

func (s *TrackerService) RecentSince(ctx context.Context, since time.Duration) ([]*model.Tracker, error) {
	return s.repo.RecentSince(ctx, time.Now().Add(-since))
}

var _ ports.TrackerService = (*TrackerService)(nil)
