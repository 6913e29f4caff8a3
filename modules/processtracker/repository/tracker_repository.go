// Package repository implements processtracker.ports.TrackerRepository
// against Postgres.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/andreypavlenko/talentpipe/modules/processtracker/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TrackerRepository struct {
	pool *pgxpool.Pool
}

func NewTrackerRepository(pool *pgxpool.Pool) *TrackerRepository {
	return &TrackerRepository{pool: pool}
}

const trackerColumns = `id, status, total, processed, failed, message, uploaded_filename,
	correlation_id, job_id, created_at, updated_at`

func (r *TrackerRepository) Create(ctx context.Context, tracker *model.Tracker) (*model.Tracker, error) {
	if tracker.ID == "" {
		tracker.ID = uuid.NewString()
	}
	query := `
		INSERT INTO process_tracker (
			id, status, total, processed, failed, message, uploaded_filename,
			correlation_id, job_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		RETURNING ` + trackerColumns

	row := r.pool.QueryRow(ctx, query,
		tracker.ID, tracker.Status, tracker.Total, tracker.Processed, tracker.Failed,
		tracker.Message, tracker.UploadedFilename, tracker.CorrelationID, nullableString(tracker.JobID),
	)
	return scanTracker(row)
}

func (r *TrackerRepository) GetByID(ctx context.Context, id string) (*model.Tracker, error) {
	query := `SELECT ` + trackerColumns + ` FROM process_tracker WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanTracker(row)
}

func (r *TrackerRepository) Update(ctx context.Context, tracker *model.Tracker) error {
	query := `
		UPDATE process_tracker SET
			status = $2, total = $3, processed = $4, failed = $5, message = $6,
			job_id = $7, correlation_id = $8, updated_at = now()
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		tracker.ID, tracker.Status, tracker.Total, tracker.Processed, tracker.Failed,
		tracker.Message, nullableString(tracker.JobID), tracker.CorrelationID,
	)
	if err != nil {
		return fmt.Errorf("failed to update process tracker: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrTrackerNotFound
	}
	return nil
}

func (r *TrackerRepository) SetTotal(ctx context.Context, id string, total int) error {
	tag, err := r.pool.Exec(ctx, `UPDATE process_tracker SET total = $2, updated_at = now() WHERE id = $1`, id, total)
	if err != nil {
		return fmt.Errorf("failed to set process tracker total: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrTrackerNotFound
	}
	return nil
}

func (r *TrackerRepository) IncrementProcessed(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE process_tracker SET processed = processed + 1, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to increment processed counter: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrTrackerNotFound
	}
	return nil
}

func (r *TrackerRepository) IncrementFailed(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE process_tracker SET failed = failed + 1, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to increment failed counter: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrTrackerNotFound
	}
	return nil
}

func (r *TrackerRepository) RecentSince(ctx context.Context, since time.Time) ([]*model.Tracker, error) {
	query := `SELECT ` + trackerColumns + ` FROM process_tracker WHERE created_at >= $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent process trackers: %w", err)
	}
	defer rows.Close()

	var trackers []*model.Tracker
	for rows.Next() {
		tracker, err := scanTracker(rows)
		if err != nil {
			return nil, err
		}
		trackers = append(trackers, tracker)
	}
	return trackers, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTracker(row rowScanner) (*model.Tracker, error) {
	var t model.Tracker
	var jobID *string
	if err := row.Scan(
		&t.ID, &t.Status, &t.Total, &t.Processed, &t.Failed, &t.Message, &t.UploadedFilename,
		&t.CorrelationID, &jobID, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, model.ErrTrackerNotFound
		}
		return nil, fmt.Errorf("failed to scan process tracker: %w", err)
	}
	if jobID != nil {
		t.JobID = *jobID
	}
	return &t, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
