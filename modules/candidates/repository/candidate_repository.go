// Package repository implements candidates.ports.CandidateRepository
// against Postgres, storing résumé embeddings as pgvector columns.
package repository

import (
	"context"
	"fmt"

	"github.com/andreypavlenko/talentpipe/modules/candidates/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

type CandidateRepository struct {
	pool *pgxpool.Pool
}

func NewCandidateRepository(pool *pgxpool.Pool) *CandidateRepository {
	return &CandidateRepository{pool: pool}
}

func (r *CandidateRepository) Create(ctx context.Context, c *model.Candidate) error {
	query := `
		INSERT INTO candidate (
			id, name, email, phone, skills, domain_knowledge, academic_background,
			years_of_experience, resume_bytes, storage_type, storage_key, resume_filename, resume_text, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now(), now())`

	_, err := r.pool.Exec(ctx, query,
		c.ID, c.Name, c.Email, c.Phone, c.Skills, c.DomainKnowledge, c.AcademicBackground,
		c.YearsOfExperience, c.ResumeBytes, string(c.StorageType), c.StorageKey, c.ResumeFilename, c.ResumeText,
	)
	if err != nil {
		return fmt.Errorf("failed to insert candidate: %w", err)
	}
	return nil
}

func (r *CandidateRepository) GetByID(ctx context.Context, id string) (*model.Candidate, error) {
	query := `
		SELECT id, name, email, phone, skills, domain_knowledge, academic_background,
			years_of_experience, resume_bytes, storage_type, storage_key, resume_filename, resume_text, created_at, updated_at
		FROM candidate WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	return scanCandidate(row)
}

func (r *CandidateRepository) List(ctx context.Context, limit, offset int) ([]*model.Candidate, error) {
	query := `
		SELECT id, name, email, phone, skills, domain_knowledge, academic_background,
			years_of_experience, resume_bytes, storage_type, storage_key, resume_filename, resume_text, created_at, updated_at
		FROM candidate ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	var out []*model.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ReplaceEmbeddings deletes any prior embeddings for candidateID and inserts
// the new set inside one short transaction — the pipeline never holds this
// transaction open across an LLM call.
func (r *CandidateRepository) ReplaceEmbeddings(ctx context.Context, candidateID string, embeddings []*model.ResumeEmbedding) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM resume_embedding WHERE candidate_id = $1`, candidateID); err != nil {
		return fmt.Errorf("failed to clear prior embeddings: %w", err)
	}

	for _, e := range embeddings {
		_, err := tx.Exec(ctx, `
			INSERT INTO resume_embedding (id, candidate_id, chunk, vector, section, created_at)
			VALUES ($1, $2, $3, $4, $5, now())`,
			e.ID, candidateID, e.Chunk, pgvector.NewVector(e.Vector), string(e.Section),
		)
		if err != nil {
			return fmt.Errorf("failed to insert embedding: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *CandidateRepository) EmbeddingsByCandidate(ctx context.Context, candidateID string) ([]*model.ResumeEmbedding, error) {
	query := `
		SELECT id, candidate_id, chunk, vector, section, created_at
		FROM resume_embedding WHERE candidate_id = $1 ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load embeddings: %w", err)
	}
	defer rows.Close()

	var out []*model.ResumeEmbedding
	for rows.Next() {
		var e model.ResumeEmbedding
		var vec pgvector.Vector
		var section string
		if err := rows.Scan(&e.ID, &e.CandidateID, &e.Chunk, &vec, &section, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan embedding: %w", err)
		}
		e.Vector = vec.Slice()
		e.Section = model.SectionTag(section)
		out = append(out, &e)
	}
	return out, rows.Err()
}

// NearestByVector ranks candidates by cosine distance between query and
// each embedding row, using the ivfflat index over resume_embedding.vector.
func (r *CandidateRepository) NearestByVector(ctx context.Context, query []float32, limit int) ([]string, error) {
	sql := `
		SELECT candidate_id
		FROM (
			SELECT DISTINCT ON (candidate_id) candidate_id, vector <=> $1 AS dist
			FROM resume_embedding
			ORDER BY candidate_id, dist
		) AS nearest
		ORDER BY dist
		LIMIT $2`

	rows, err := r.pool.Query(ctx, sql, pgvector.NewVector(query), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to run nearest-neighbor search: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan candidate id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(row rowScanner) (*model.Candidate, error) {
	var c model.Candidate
	var storageType string
	err := row.Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.Skills, &c.DomainKnowledge, &c.AcademicBackground,
		&c.YearsOfExperience, &c.ResumeBytes, &storageType, &c.StorageKey, &c.ResumeFilename, &c.ResumeText, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, model.ErrCandidateNotFound
		}
		return nil, fmt.Errorf("failed to scan candidate: %w", err)
	}
	c.StorageType = model.StorageType(storageType)
	return &c, nil
}
