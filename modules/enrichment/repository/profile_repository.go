// Package repository persists CandidateExternalProfile rows to Postgres.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/andreypavlenko/talentpipe/modules/enrichment/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ExternalProfileRepository struct {
	pool *pgxpool.Pool
}

func NewExternalProfileRepository(pool *pgxpool.Pool) *ExternalProfileRepository {
	return &ExternalProfileRepository{pool: pool}
}

const profileColumns = `
	id, candidate_id, source, status, profile_url, display_name, bio, company, location,
	public_repos, followers, repositories_summary, enriched_summary, last_fetched_at,
	error_message, created_at, updated_at`

// Upsert is keyed on (candidate_id, source), matching the store-enforced
// uniqueness invariant; concurrent enrich calls for the same pair are
// serialised by this upsert.
func (r *ExternalProfileRepository) Upsert(ctx context.Context, p *model.ExternalProfile) (*model.ExternalProfile, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	query := `
		INSERT INTO candidate_external_profile (
			id, candidate_id, source, status, profile_url, display_name, bio, company, location,
			public_repos, followers, repositories_summary, enriched_summary, last_fetched_at,
			error_message, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, now(), now())
		ON CONFLICT (candidate_id, source) DO UPDATE SET
			status = EXCLUDED.status,
			profile_url = EXCLUDED.profile_url,
			display_name = EXCLUDED.display_name,
			bio = EXCLUDED.bio,
			company = EXCLUDED.company,
			location = EXCLUDED.location,
			public_repos = EXCLUDED.public_repos,
			followers = EXCLUDED.followers,
			repositories_summary = EXCLUDED.repositories_summary,
			enriched_summary = EXCLUDED.enriched_summary,
			last_fetched_at = EXCLUDED.last_fetched_at,
			error_message = EXCLUDED.error_message,
			updated_at = now()
		RETURNING ` + profileColumns

	row := r.pool.QueryRow(ctx, query,
		p.ID, p.CandidateID, string(p.Source), string(p.Status), p.ProfileURL, p.DisplayName, p.Bio,
		p.Company, p.Location, p.PublicRepos, p.Followers, p.RepositoriesSummary, p.EnrichedSummary,
		p.LastFetchedAt, p.ErrorMessage,
	)
	return scanProfile(row)
}

func (r *ExternalProfileRepository) GetByID(ctx context.Context, id string) (*model.ExternalProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM candidate_external_profile WHERE id = $1`
	return scanProfile(r.pool.QueryRow(ctx, query, id))
}

func (r *ExternalProfileRepository) GetByCandidateAndSource(ctx context.Context, candidateID string, source model.Source) (*model.ExternalProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM candidate_external_profile WHERE candidate_id = $1 AND source = $2`
	return scanProfile(r.pool.QueryRow(ctx, query, candidateID, string(source)))
}

func (r *ExternalProfileRepository) ListByCandidate(ctx context.Context, candidateID string) ([]*model.ExternalProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM candidate_external_profile WHERE candidate_id = $1`
	rows, err := r.pool.Query(ctx, query, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list external profiles: %w", err)
	}
	defer rows.Close()

	var out []*model.ExternalProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*model.ExternalProfile, error) {
	var p model.ExternalProfile
	var source, status string
	err := row.Scan(
		&p.ID, &p.CandidateID, &source, &status, &p.ProfileURL, &p.DisplayName, &p.Bio, &p.Company,
		&p.Location, &p.PublicRepos, &p.Followers, &p.RepositoriesSummary, &p.EnrichedSummary,
		&p.LastFetchedAt, &p.ErrorMessage, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to scan external profile: %w", err)
	}
	p.Source = model.Source(source)
	p.Status = model.Status(status)
	return &p, nil
}
