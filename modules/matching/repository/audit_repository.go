package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/andreypavlenko/talentpipe/modules/matching/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MatchAuditRepository struct {
	pool *pgxpool.Pool
}

func NewMatchAuditRepository(pool *pgxpool.Pool) *MatchAuditRepository {
	return &MatchAuditRepository{pool: pool}
}

const auditColumns = `
	id, job_id, job_title_snapshot, status, candidates_matched, shortlisted, average_score,
	top_score, duration_ms, estimated_tokens, initiated_by, initiated_at, completed_at,
	error_message, candidate_summaries, created_at, updated_at`

func (r *MatchAuditRepository) Create(ctx context.Context, a *model.MatchAudit) (*model.MatchAudit, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	summaries, err := json.Marshal(a.CandidateSummaries)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal candidate summaries: %w", err)
	}

	query := `
		INSERT INTO match_audit (
			id, job_id, job_title_snapshot, status, candidates_matched, shortlisted, average_score,
			top_score, duration_ms, estimated_tokens, initiated_by, initiated_at, completed_at,
			error_message, candidate_summaries, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, now(), now())
		RETURNING ` + auditColumns

	row := r.pool.QueryRow(ctx, query,
		a.ID, a.JobID, a.JobTitleSnapshot, a.Status, a.CandidatesMatched, a.Shortlisted, a.AverageScore,
		a.TopScore, a.DurationMs, a.EstimatedTokens, a.InitiatedBy, a.InitiatedAt, a.CompletedAt,
		a.ErrorMessage, summaries,
	)
	return scanAudit(row)
}

func (r *MatchAuditRepository) Update(ctx context.Context, a *model.MatchAudit) error {
	summaries, err := json.Marshal(a.CandidateSummaries)
	if err != nil {
		return fmt.Errorf("failed to marshal candidate summaries: %w", err)
	}

	query := `
		UPDATE match_audit SET
			status = $2, candidates_matched = $3, shortlisted = $4, average_score = $5,
			top_score = $6, duration_ms = $7, estimated_tokens = $8, completed_at = $9,
			error_message = $10, candidate_summaries = $11, updated_at = now()
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		a.ID, a.Status, a.CandidatesMatched, a.Shortlisted, a.AverageScore, a.TopScore,
		a.DurationMs, a.EstimatedTokens, a.CompletedAt, a.ErrorMessage, summaries,
	)
	if err != nil {
		return fmt.Errorf("failed to update match audit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrAuditNotFound
	}
	return nil
}

func (r *MatchAuditRepository) GetByID(ctx context.Context, id string) (*model.MatchAudit, error) {
	query := `SELECT ` + auditColumns + ` FROM match_audit WHERE id = $1`
	return scanAudit(r.pool.QueryRow(ctx, query, id))
}

func (r *MatchAuditRepository) List(ctx context.Context, limit, offset int) ([]*model.MatchAudit, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM match_audit`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count match audits: %w", err)
	}

	query := `SELECT ` + auditColumns + ` FROM match_audit ORDER BY initiated_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list match audits: %w", err)
	}
	defer rows.Close()

	var out []*model.MatchAudit
	for rows.Next() {
		a, err := scanAudit(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

func (r *MatchAuditRepository) ActiveRuns(ctx context.Context) ([]*model.MatchAudit, error) {
	query := `SELECT ` + auditColumns + ` FROM match_audit WHERE status = $1 ORDER BY initiated_at DESC`
	rows, err := r.pool.Query(ctx, query, model.AuditInProgress)
	if err != nil {
		return nil, fmt.Errorf("failed to list active match runs: %w", err)
	}
	defer rows.Close()

	var out []*model.MatchAudit
	for rows.Next() {
		a, err := scanAudit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAudit(row rowScanner) (*model.MatchAudit, error) {
	var a model.MatchAudit
	var summaries []byte
	err := row.Scan(
		&a.ID, &a.JobID, &a.JobTitleSnapshot, &a.Status, &a.CandidatesMatched, &a.Shortlisted, &a.AverageScore,
		&a.TopScore, &a.DurationMs, &a.EstimatedTokens, &a.InitiatedBy, &a.InitiatedAt, &a.CompletedAt,
		&a.ErrorMessage, &summaries, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrAuditNotFound
		}
		return nil, fmt.Errorf("failed to scan match audit: %w", err)
	}
	if len(summaries) > 0 {
		if err := json.Unmarshal(summaries, &a.CandidateSummaries); err != nil {
			return nil, fmt.Errorf("failed to unmarshal candidate summaries: %w", err)
		}
	}
	return &a, nil
}
