package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrSavedJobNotFound is returned when a saved job id matches no record.
var ErrSavedJobNotFound = errors.New("saved job not found")

const savedJobColumns = `id, run_id, url, platform, company, position, salary, email, score,
	page_url, content_hash, created_at, updated_at`

func scanSavedJob(row pgx.Row) (*SavedJob, error) {
	var j SavedJob
	err := row.Scan(&j.ID, &j.RunID, &j.URL, &j.Platform, &j.Company, &j.Position, &j.Salary,
		&j.Email, &j.Score, &j.PageURL, &j.ContentHash, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// SaveJob records a saved job, replacing the row for the same URL
func (db *DB) SaveJob(ctx context.Context, input *SavedJobInput) (*SavedJob, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	job, err := scanSavedJob(db.pool.QueryRow(ctx,
		`INSERT INTO saved_jobs (run_id, url, platform, company, position, salary, email, score,
		                         page_url, content_hash)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (url) DO UPDATE SET
		     run_id = COALESCE($1, saved_jobs.run_id),
		     platform = $3,
		     company = $4,
		     position = $5,
		     salary = $6,
		     email = $7,
		     score = $8,
		     page_url = $9,
		     content_hash = $10,
		     updated_at = NOW()
		 RETURNING `+savedJobColumns,
		input.RunID, input.URL, input.Platform, input.Company, input.Position, input.Salary,
		input.Email, input.Score, input.PageURL, HashJobContent(input.Description),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to save job: %w", err)
	}
	return job, nil
}

// GetSavedJobByURL retrieves a saved job by its URL. It returns nil, nil when none exists.
func (db *DB) GetSavedJobByURL(ctx context.Context, url string) (*SavedJob, error) {
	job, err := scanSavedJob(db.pool.QueryRow(ctx,
		`SELECT `+savedJobColumns+` FROM saved_jobs WHERE url = $1`, url))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get saved job: %w", err)
	}
	return job, nil
}

// ListSavedJobs retrieves saved jobs with optional filters, newest first
func (db *DB) ListSavedJobs(ctx context.Context, filters SavedJobFilters) ([]SavedJob, error) {
	query, args := buildListSavedJobsQuery(filters)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved jobs: %w", err)
	}
	defer rows.Close()

	var jobs []SavedJob
	for rows.Next() {
		job, err := scanSavedJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan saved job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// DeleteSavedJob deletes a saved job record
func (db *DB) DeleteSavedJob(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM saved_jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete saved job: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrSavedJobNotFound, id)
	}
	return nil
}

func buildListSavedJobsQuery(filters SavedJobFilters) (string, []any) {
	if filters.Limit <= 0 {
		filters.Limit = DefaultListLimit
	}

	query := `SELECT ` + savedJobColumns + ` FROM saved_jobs WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.Company != "" {
		query += fmt.Sprintf(" AND company ILIKE $%d", argNum)
		args = append(args, "%"+filters.Company+"%")
		argNum++
	}
	if filters.Platform != "" {
		query += fmt.Sprintf(" AND platform = $%d", argNum)
		args = append(args, filters.Platform)
		argNum++
	}
	if filters.MinScore > 0 {
		query += fmt.Sprintf(" AND score >= $%d", argNum)
		args = append(args, filters.MinScore)
		argNum++
	}
	if filters.RunID != uuid.Nil {
		query += fmt.Sprintf(" AND run_id = $%d", argNum)
		args = append(args, filters.RunID)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argNum)
	args = append(args, filters.Limit)
	return query, args
}
