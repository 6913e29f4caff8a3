// Package repository implements matching.ports against Postgres. Arrays and
// the audit's per-candidate summary blob are stored as JSON text columns and
// marshalled at the repository boundary so the service layer works with
// plain Go slices and structs.
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

type CandidateMatchRepository struct {
	pool *pgxpool.Pool
}

func NewCandidateMatchRepository(pool *pgxpool.Pool) *CandidateMatchRepository {
	return &CandidateMatchRepository{pool: pool}
}

const matchColumns = `
	id, candidate_id, job_id, match_score, skills_score, experience_score, education_score,
	domain_score, explanation, strengths, gaps, recommendation, is_shortlisted, is_selected,
	recruiter_note, created_at, updated_at`

func (r *CandidateMatchRepository) Upsert(ctx context.Context, m *model.CandidateMatch) (*model.CandidateMatch, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	strengths, err := json.Marshal(m.Strengths)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal strengths: %w", err)
	}
	gaps, err := json.Marshal(m.Gaps)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal gaps: %w", err)
	}

	query := `
		INSERT INTO candidate_match (
			id, candidate_id, job_id, match_score, skills_score, experience_score, education_score,
			domain_score, explanation, strengths, gaps, recommendation, is_shortlisted, is_selected,
			recruiter_note, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, now(), now())
		ON CONFLICT (candidate_id, job_id) DO UPDATE SET
			match_score = EXCLUDED.match_score,
			skills_score = EXCLUDED.skills_score,
			experience_score = EXCLUDED.experience_score,
			education_score = EXCLUDED.education_score,
			domain_score = EXCLUDED.domain_score,
			explanation = EXCLUDED.explanation,
			strengths = EXCLUDED.strengths,
			gaps = EXCLUDED.gaps,
			recommendation = EXCLUDED.recommendation,
			is_shortlisted = EXCLUDED.is_shortlisted,
			is_selected = candidate_match.is_selected,
			updated_at = now()
		RETURNING ` + matchColumns

	row := r.pool.QueryRow(ctx, query,
		m.ID, m.CandidateID, m.JobID, m.MatchScore, m.SkillsScore, m.ExperienceScore, m.EducationScore,
		m.DomainScore, m.Explanation, strengths, gaps, m.Recommendation, m.IsShortlisted, m.IsSelected,
		m.RecruiterNote,
	)
	return scanMatch(row)
}

func (r *CandidateMatchRepository) GetByID(ctx context.Context, id string) (*model.CandidateMatch, error) {
	query := `SELECT ` + matchColumns + ` FROM candidate_match WHERE id = $1`
	return scanMatch(r.pool.QueryRow(ctx, query, id))
}

func (r *CandidateMatchRepository) GetByPair(ctx context.Context, candidateID, jobID string) (*model.CandidateMatch, error) {
	query := `SELECT ` + matchColumns + ` FROM candidate_match WHERE candidate_id = $1 AND job_id = $2`
	return scanMatch(r.pool.QueryRow(ctx, query, candidateID, jobID))
}

func (r *CandidateMatchRepository) ListByJob(ctx context.Context, jobID string) ([]*model.CandidateMatch, error) {
	query := `SELECT ` + matchColumns + ` FROM candidate_match WHERE job_id = $1 ORDER BY match_score DESC`
	return queryMatches(ctx, r.pool, query, jobID)
}

func (r *CandidateMatchRepository) ListByCandidate(ctx context.Context, candidateID string) ([]*model.CandidateMatch, error) {
	query := `SELECT ` + matchColumns + ` FROM candidate_match WHERE candidate_id = $1 ORDER BY match_score DESC`
	return queryMatches(ctx, r.pool, query, candidateID)
}

func (r *CandidateMatchRepository) Update(ctx context.Context, m *model.CandidateMatch) error {
	query := `
		UPDATE candidate_match SET
			is_shortlisted = $2, is_selected = $3, recruiter_note = $4, updated_at = now()
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, m.ID, m.IsShortlisted, m.IsSelected, m.RecruiterNote)
	if err != nil {
		return fmt.Errorf("failed to update candidate match: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrMatchNotFound
	}
	return nil
}

func queryMatches(ctx context.Context, pool *pgxpool.Pool, query string, arg string) ([]*model.CandidateMatch, error) {
	rows, err := pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidate matches: %w", err)
	}
	defer rows.Close()

	var out []*model.CandidateMatch
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatch(row rowScanner) (*model.CandidateMatch, error) {
	var m model.CandidateMatch
	var strengths, gaps []byte
	err := row.Scan(
		&m.ID, &m.CandidateID, &m.JobID, &m.MatchScore, &m.SkillsScore, &m.ExperienceScore, &m.EducationScore,
		&m.DomainScore, &m.Explanation, &strengths, &gaps, &m.Recommendation, &m.IsShortlisted, &m.IsSelected,
		&m.RecruiterNote, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan candidate match: %w", err)
	}
	if err := json.Unmarshal(strengths, &m.Strengths); err != nil {
		return nil, fmt.Errorf("failed to unmarshal strengths: %w", err)
	}
	if err := json.Unmarshal(gaps, &m.Gaps); err != nil {
		return nil, fmt.Errorf("failed to unmarshal gaps: %w", err)
	}
	return &m, nil
}
