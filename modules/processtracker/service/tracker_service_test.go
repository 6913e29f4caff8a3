package service

import (
	"context"
	"testing"
	"time"

	"github.com/andreypavlenko/talentpipe/internal/platform/logger"
	"github.com/andreypavlenko/talentpipe/modules/processtracker/model"
	"github.com/andreypavlenko/talentpipe/modules/processtracker/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTrackerRepo struct {
	ports.TrackerRepository
	byID    map[string]*model.Tracker
	updated *model.Tracker
}

func newFakeTrackerRepo() *fakeTrackerRepo {
	return &fakeTrackerRepo{byID: make(map[string]*model.Tracker)}
}

func (f *fakeTrackerRepo) Create(ctx context.Context, tracker *model.Tracker) (*model.Tracker, error) {
	tracker.ID = "tracker-1"
	f.byID[tracker.ID] = tracker
	return tracker, nil
}

func (f *fakeTrackerRepo) GetByID(ctx context.Context, id string) (*model.Tracker, error) {
	tracker, ok := f.byID[id]
	if !ok {
		return nil, model.ErrTrackerNotFound
	}
	return tracker, nil
}

func (f *fakeTrackerRepo) Update(ctx context.Context, tracker *model.Tracker) error {
	f.updated = tracker
	f.byID[tracker.ID] = tracker
	return nil
}

func (f *fakeTrackerRepo) RecentSince(ctx context.Context, since time.Time) ([]*model.Tracker, error) {
	return nil, nil
}

func (f *fakeTrackerRepo) SetTotal(ctx context.Context, id string, total int) error {
	tracker, ok := f.byID[id]
	if !ok {
		return model.ErrTrackerNotFound
	}
	tracker.Total = total
	return nil
}

func (f *fakeTrackerRepo) IncrementProcessed(ctx context.Context, id string) error {
	tracker, ok := f.byID[id]
	if !ok {
		return model.ErrTrackerNotFound
	}
	tracker.Processed++
	return nil
}

func (f *fakeTrackerRepo) IncrementFailed(ctx context.Context, id string) error {
	tracker, ok := f.byID[id]
	if !ok {
		return model.ErrTrackerNotFound
	}
	tracker.Failed++
	return nil
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error", "console")
	require.NoError(t, err)
	return log
}

func TestTrackerService_Create_StartsAtInitiated(t *testing.T) {
	repo := newFakeTrackerRepo()
	svc := NewTrackerService(repo, newTestLogger(t))

	tracker, err := svc.Create(context.Background(), "resume.pdf", 1)

	require.NoError(t, err)
	assert.Equal(t, model.StatusInitiated, tracker.Status)
	assert.Equal(t, "resume.pdf", tracker.UploadedFilename)
}

func TestTrackerService_Advance_UpdatesStatusAndMessage(t *testing.T) {
	repo := newFakeTrackerRepo()
	svc := NewTrackerService(repo, newTestLogger(t))
	tracker, _ := svc.Create(context.Background(), "resume.pdf", 1)

	err := svc.Advance(context.Background(), tracker.ID, model.StatusResumeAnalyzed, "extracted")

	require.NoError(t, err)
	assert.Equal(t, model.StatusResumeAnalyzed, repo.updated.Status)
	assert.Equal(t, "extracted", repo.updated.Message)
}

func TestTrackerService_Fail_IncrementsFailedCount(t *testing.T) {
	repo := newFakeTrackerRepo()
	svc := NewTrackerService(repo, newTestLogger(t))
	tracker, _ := svc.Create(context.Background(), "resume.pdf", 1)

	err := svc.Fail(context.Background(), tracker.ID, "unsupported extension")

	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, repo.updated.Status)
	assert.Equal(t, 1, repo.updated.Failed)
}

func TestTrackerService_SetTotal_OverwritesExpectedCount(t *testing.T) {
	repo := newFakeTrackerRepo()
	svc := NewTrackerService(repo, newTestLogger(t))
	tracker, _ := svc.Create(context.Background(), "entries.zip", 1)

	err := svc.SetTotal(context.Background(), tracker.ID, 2)

	require.NoError(t, err)
	assert.Equal(t, 2, repo.byID[tracker.ID].Total)
}

func TestTrackerService_IncrementProcessed_IsCumulativeAcrossCalls(t *testing.T) {
	repo := newFakeTrackerRepo()
	svc := NewTrackerService(repo, newTestLogger(t))
	tracker, _ := svc.Create(context.Background(), "entries.zip", 2)
	require.NoError(t, svc.SetTotal(context.Background(), tracker.ID, 2))

	require.NoError(t, svc.IncrementProcessed(context.Background(), tracker.ID))
	require.NoError(t, svc.IncrementProcessed(context.Background(), tracker.ID))

	assert.Equal(t, 2, repo.byID[tracker.ID].Processed)
	assert.LessOrEqual(t, repo.byID[tracker.ID].Processed+repo.byID[tracker.ID].Failed, repo.byID[tracker.ID].Total)
}

func TestTrackerService_LinkJob_SetsJobAndCorrelation(t *testing.T) {
	repo := newFakeTrackerRepo()
	svc := NewTrackerService(repo, newTestLogger(t))
	tracker, _ := svc.Create(context.Background(), "resume.pdf", 1)

	err := svc.LinkJob(context.Background(), tracker.ID, "job-1", "corr-1")

	require.NoError(t, err)
	assert.Equal(t, "job-1", repo.updated.JobID)
	assert.Equal(t, "corr-1", repo.updated.CorrelationID)
}

func TestTrackerService_RecentSince_PassesThroughToRepo(t *testing.T) {
	repo := newFakeTrackerRepo()
	svc := NewTrackerService(repo, newTestLogger(t))

	_, err := svc.RecentSince(context.Background(), 24*time.Hour)

	require.NoError(t, err)
}
