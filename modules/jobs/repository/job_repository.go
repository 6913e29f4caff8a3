// Package repository reads job_requirement rows. The core never writes this
// table — upstream CRUD owns it.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/andreypavlenko/talentpipe/modules/jobs/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type JobRequirementRepository struct {
	pool *pgxpool.Pool
}

func NewJobRequirementRepository(pool *pgxpool.Pool) *JobRequirementRepository {
	return &JobRequirementRepository{pool: pool}
}

const jobRequirementColumns = `
	id, title, description, required_skills, required_education, domain_requirements,
	min_years, max_years, active, created_at, updated_at`

func (r *JobRequirementRepository) GetByID(ctx context.Context, id string) (*model.JobRequirement, error) {
	query := `SELECT ` + jobRequirementColumns + ` FROM job_requirement WHERE id = $1`

	job := &model.JobRequirement{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&job.ID, &job.Title, &job.Description, &job.RequiredSkills, &job.RequiredEducation,
		&job.DomainRequirements, &job.MinYears, &job.MaxYears, &job.Active, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to load job requirement: %w", err)
	}
	return job, nil
}

func (r *JobRequirementRepository) ListActive(ctx context.Context) ([]*model.JobRequirement, error) {
	query := `SELECT ` + jobRequirementColumns + ` FROM job_requirement WHERE active = true ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active job requirements: %w", err)
	}
	defer rows.Close()

	var out []*model.JobRequirement
	for rows.Next() {
		job := &model.JobRequirement{}
		if err := rows.Scan(
			&job.ID, &job.Title, &job.Description, &job.RequiredSkills, &job.RequiredEducation,
			&job.DomainRequirements, &job.MinYears, &job.MaxYears, &job.Active, &job.CreatedAt, &job.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan job requirement: %w", err)
		}
		out = append(out, job)
	}
	return out, rows.Err()
}
