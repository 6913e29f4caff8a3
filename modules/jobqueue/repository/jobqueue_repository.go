package repository

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/andreypavlenko/talentpipe/modules/jobqueue/model"
	"github.com/andreypavlenko/talentpipe/modules/jobqueue/ports"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// JobQueueRepository persists job queue rows in Postgres. Claim relies on
// UPDATE ... WHERE id IN (SELECT ... FOR UPDATE SKIP LOCKED) so concurrent
// workers never observe the same PENDING row.
type JobQueueRepository struct {
	pool *pgxpool.Pool
}

func NewJobQueueRepository(pool *pgxpool.Pool) *JobQueueRepository {
	return &JobQueueRepository{pool: pool}
}

func (r *JobQueueRepository) Enqueue(ctx context.Context, in ports.EnqueueInput) (*model.Job, error) {
	if in.Kind == "" {
		return nil, model.ErrKindRequired
	}
	metadataJSON, err := json.Marshal(in.Metadata)
	if err != nil {
		return nil, err
	}
	maxRetries := in.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	now := time.Now().UTC()
	job := &model.Job{
		ID:            uuid.New().String(),
		Kind:          in.Kind,
		Status:        model.StatusPending,
		Priority:      in.Priority,
		Payload:       in.Payload,
		Metadata:      in.Metadata,
		CorrelationID: in.CorrelationID,
		MaxRetries:    maxRetries,
		ScheduledFor:  in.ScheduledFor,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	query := `
		INSERT INTO job_queue (id, kind, status, priority, payload, metadata, correlation_id, retry_count, max_retries, scheduled_for, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8, $9, $10, $11)
	`
	_, err = r.pool.Exec(ctx, query,
		job.ID, job.Kind, job.Status, job.Priority, job.Payload, metadataJSON, job.CorrelationID,
		job.MaxRetries, job.ScheduledFor, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (r *JobQueueRepository) Claim(ctx context.Context, kind string, batchSize int, workerID string) ([]*model.Job, error) {
	if batchSize <= 0 {
		return nil, nil
	}
	query := `
		UPDATE job_queue
		SET status = $1, claimed_by = $2, started_at = now(), heartbeat_at = now(), updated_at = now()
		WHERE id IN (
			SELECT id FROM job_queue
			WHERE kind = $3 AND status = $4
			  AND (scheduled_for IS NULL OR scheduled_for <= now())
			ORDER BY priority DESC, created_at ASC, id ASC
			LIMIT $5
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, kind, status, priority, payload, metadata, correlation_id, retry_count, max_retries,
			scheduled_for, started_at, completed_at, heartbeat_at, claimed_by, error_message, result, created_at, updated_at
	`
	rows, err := r.pool.Query(ctx, query, model.StatusProcessing, workerID, kind, model.StatusPending, batchSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*model.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (r *JobQueueRepository) Heartbeat(ctx context.Context, jobID string) error {
	query := `UPDATE job_queue SET heartbeat_at = now(), updated_at = now() WHERE id = $1 AND status = $2`
	_, err := r.pool.Exec(ctx, query, jobID, model.StatusProcessing)
	return err
}

func (r *JobQueueRepository) Complete(ctx context.Context, jobID string, result map[string]string) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return err
	}
	query := `
		UPDATE job_queue SET status = $1, result = $2, completed_at = now(), updated_at = now()
		WHERE id = $3 AND status = $4
	`
	tag, err := r.pool.Exec(ctx, query, model.StatusCompleted, resultJSON, jobID, model.StatusProcessing)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Row is already terminal (e.g. cancelled mid-flight); honour the
		// existing terminal state rather than erroring.
		return nil
	}
	return nil
}

func (r *JobQueueRepository) Fail(ctx context.Context, jobID string, errMsg string, retryable bool, maxBackoff, baseBackoff time.Duration) error {
	job, err := r.Get(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status.Terminal() {
		return nil
	}

	if retryable && job.RetryCount < job.MaxRetries {
		backoff := time.Duration(float64(baseBackoff) * math.Pow(2, float64(job.RetryCount)))
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
		scheduledFor := time.Now().UTC().Add(backoff)
		query := `
			UPDATE job_queue
			SET status = $1, retry_count = retry_count + 1, claimed_by = NULL, started_at = NULL,
				heartbeat_at = NULL, scheduled_for = $2, error_message = $3, updated_at = now()
			WHERE id = $4
		`
		_, err := r.pool.Exec(ctx, query, model.StatusPending, scheduledFor, errMsg, jobID)
		return err
	}

	query := `
		UPDATE job_queue SET status = $1, error_message = $2, completed_at = now(), updated_at = now()
		WHERE id = $3
	`
	_, err = r.pool.Exec(ctx, query, model.StatusFailed, errMsg, jobID)
	return err
}

func (r *JobQueueRepository) Cancel(ctx context.Context, jobID string) (bool, error) {
	query := `
		UPDATE job_queue SET status = $1, completed_at = now(), updated_at = now()
		WHERE id = $2 AND status IN ($3, $4)
	`
	tag, err := r.pool.Exec(ctx, query, model.StatusCancelled, jobID, model.StatusPending, model.StatusProcessing)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *JobQueueRepository) ResetStale(ctx context.Context, thresholdMinutes int) (int, error) {
	// Jobs past retry budget fail terminally; the rest go back to PENDING
	// for another attempt. Both branches run under one row lock per job so
	// the decision and the write are atomic.
	query := `
		WITH stale AS (
			SELECT id FROM job_queue
			WHERE status = $1 AND heartbeat_at < now() - ($2 || ' minutes')::interval
			FOR UPDATE SKIP LOCKED
		),
		failed AS (
			UPDATE job_queue SET status = $3, error_message = 'stale: heartbeat lapsed beyond threshold', completed_at = now(), updated_at = now()
			WHERE id IN (SELECT id FROM stale) AND retry_count >= max_retries
			RETURNING id
		),
		requeued AS (
			UPDATE job_queue SET status = $4, retry_count = retry_count + 1, claimed_by = NULL,
				started_at = NULL, heartbeat_at = NULL, error_message = 'stale: reclaimed after missed heartbeat', updated_at = now()
			WHERE id IN (SELECT id FROM stale) AND retry_count < max_retries
			RETURNING id
		)
		SELECT (SELECT count(*) FROM failed) + (SELECT count(*) FROM requeued)
	`
	var count int
	err := r.pool.QueryRow(ctx, query, model.StatusProcessing, thresholdMinutes, model.StatusFailed, model.StatusPending).Scan(&count)
	return count, err
}

func (r *JobQueueRepository) Get(ctx context.Context, jobID string) (*model.Job, error) {
	query := `
		SELECT id, kind, status, priority, payload, metadata, correlation_id, retry_count, max_retries,
			scheduled_for, started_at, completed_at, heartbeat_at, claimed_by, error_message, result, created_at, updated_at
		FROM job_queue WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, jobID)
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrJobNotFound
		}
		return nil, err
	}
	return job, nil
}

func (r *JobQueueRepository) ByCorrelation(ctx context.Context, correlationID string) ([]*model.Job, error) {
	query := `
		SELECT id, kind, status, priority, payload, metadata, correlation_id, retry_count, max_retries,
			scheduled_for, started_at, completed_at, heartbeat_at, claimed_by, error_message, result, created_at, updated_at
		FROM job_queue WHERE correlation_id = $1 ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, correlationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

func (r *JobQueueRepository) ByStatus(ctx context.Context, status model.Status, limit, offset int) ([]*model.Job, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM job_queue WHERE status = $1`, status).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `
		SELECT id, kind, status, priority, payload, metadata, correlation_id, retry_count, max_retries,
			scheduled_for, started_at, completed_at, heartbeat_at, claimed_by, error_message, result, created_at, updated_at
		FROM job_queue WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	jobs, err := scanJobs(rows)
	return jobs, total, err
}

func (r *JobQueueRepository) QueueDepth(ctx context.Context, kind string) (int, error) {
	var depth int
	query := `SELECT count(*) FROM job_queue WHERE kind = $1 AND status = $2`
	err := r.pool.QueryRow(ctx, query, kind, model.StatusPending).Scan(&depth)
	return depth, err
}

func (r *JobQueueRepository) CountByStatus(ctx context.Context, status model.Status) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM job_queue WHERE status = $1`, status).Scan(&count)
	return count, err
}

func (r *JobQueueRepository) StatsByKind(ctx context.Context, kind string) (*model.KindStats, error) {
	stats := &model.KindStats{Kind: kind}
	query := `
		SELECT
			count(*) FILTER (WHERE status = 'PENDING'),
			count(*) FILTER (WHERE status = 'PROCESSING'),
			count(*) FILTER (WHERE status = 'COMPLETED'),
			count(*) FILTER (WHERE status = 'FAILED'),
			count(*) FILTER (WHERE status = 'CANCELLED'),
			COALESCE(AVG(EXTRACT(EPOCH FROM (completed_at - started_at))) FILTER (WHERE status = 'COMPLETED'), 0)
		FROM job_queue WHERE kind = $1
	`
	err := r.pool.QueryRow(ctx, query, kind).Scan(
		&stats.Pending, &stats.Processing, &stats.Completed, &stats.Failed, &stats.Cancelled, &stats.AverageProcessingSeconds,
	)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *JobQueueRepository) DeleteCompletedOlderThan(ctx context.Context, days int) (int, error) {
	query := `
		DELETE FROM job_queue
		WHERE status IN ($1, $2, $3) AND completed_at < now() - ($4 || ' days')::interval
	`
	tag, err := r.pool.Exec(ctx, query, model.StatusCompleted, model.StatusFailed, model.StatusCancelled, days)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *JobQueueRepository) FindForRetry(ctx context.Context, kind string, limit int) ([]*model.Job, error) {
	query := `
		SELECT id, kind, status, priority, payload, metadata, correlation_id, retry_count, max_retries,
			scheduled_for, started_at, completed_at, heartbeat_at, claimed_by, error_message, result, created_at, updated_at
		FROM job_queue
		WHERE kind = $1 AND status = $2 AND retry_count < max_retries
		ORDER BY priority DESC, created_at ASC, id ASC
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, kind, model.StatusPending, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*model.Job, error) {
	job := &model.Job{}
	var metadataJSON, resultJSON []byte
	err := row.Scan(
		&job.ID, &job.Kind, &job.Status, &job.Priority, &job.Payload, &metadataJSON, &job.CorrelationID,
		&job.RetryCount, &job.MaxRetries, &job.ScheduledFor, &job.StartedAt, &job.CompletedAt, &job.HeartbeatAt,
		&job.ClaimedBy, &job.ErrorMessage, &resultJSON, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &job.Metadata); err != nil {
			return nil, err
		}
	}
	if len(resultJSON) > 0 {
		if err := json.Unmarshal(resultJSON, &job.Result); err != nil {
			return nil, err
		}
	}
	return job, nil
}

func scanJobs(rows pgx.Rows) ([]*model.Job, error) {
	var jobs []*model.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}
