package regen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tripdesk/backend/internal/models"
)

type CreateBatchParams struct {
	ProjectID     uuid.UUID
	Scope         models.BatchScope
	GeneratorType string
	TotalJobs     int
}

// Store persists regeneration batches. Counter updates are atomic at the
// storage layer; status transitions are guarded forward-only in SQL.
type Store interface {
	CreateBatch(ctx context.Context, p CreateBatchParams) (*models.RegenerationBatch, error)
	GetBatch(ctx context.Context, id uuid.UUID) (*models.RegenerationBatch, error)
	MarkProcessing(ctx context.Context, id uuid.UUID) error
	MarkCompleted(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID) error
	IncrementCompleted(ctx context.Context, id uuid.UUID) error
	IncrementFailed(ctx context.Context, id uuid.UUID) error
	ActiveBatches(ctx context.Context, projectID uuid.UUID) ([]models.RegenerationBatch, error)
	RecentlyCompleted(ctx context.Context, projectID uuid.UUID, window time.Duration) ([]models.RegenerationBatch, error)
}

const batchCols = `id, project_id, scope, generator_type, total_jobs, completed_jobs,
	failed_jobs, status, started_at, completed_at, created_at`

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateBatch(ctx context.Context, p CreateBatchParams) (*models.RegenerationBatch, error) {
	var b models.RegenerationBatch
	err := s.db.QueryRow(ctx,
		`INSERT INTO llm_regeneration_batches (project_id, scope, generator_type, total_jobs, status)
		 VALUES ($1, $2, $3, $4, 'pending')
		 RETURNING `+batchCols,
		p.ProjectID, p.Scope, p.GeneratorType, p.TotalJobs,
	).Scan(&b.ID, &b.ProjectID, &b.Scope, &b.GeneratorType, &b.TotalJobs, &b.CompletedJobs,
		&b.FailedJobs, &b.Status, &b.StartedAt, &b.CompletedAt, &b.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert batch: %w", err)
	}
	return &b, nil
}

func (s *PostgresStore) GetBatch(ctx context.Context, id uuid.UUID) (*models.RegenerationBatch, error) {
	var b models.RegenerationBatch
	err := s.db.QueryRow(ctx,
		"SELECT "+batchCols+" FROM llm_regeneration_batches WHERE id = $1", id,
	).Scan(&b.ID, &b.ProjectID, &b.Scope, &b.GeneratorType, &b.TotalJobs, &b.CompletedJobs,
		&b.FailedJobs, &b.Status, &b.StartedAt, &b.CompletedAt, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: batch %s", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return &b, nil
}

func (s *PostgresStore) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		`UPDATE llm_regeneration_batches
		 SET status = 'processing', started_at = now()
		 WHERE id = $1 AND status = 'pending'`,
		id,
	)
	if err != nil {
		return fmt.Errorf("mark batch processing: %w", err)
	}
	return nil
}

func (s *PostgresStore) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		`UPDATE llm_regeneration_batches
		 SET status = 'completed', completed_at = now()
		 WHERE id = $1 AND status IN ('pending', 'processing')`,
		id,
	)
	if err != nil {
		return fmt.Errorf("mark batch completed: %w", err)
	}
	return nil
}

func (s *PostgresStore) MarkFailed(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		`UPDATE llm_regeneration_batches
		 SET status = 'failed', completed_at = now()
		 WHERE id = $1 AND status IN ('pending', 'processing')`,
		id,
	)
	if err != nil {
		return fmt.Errorf("mark batch failed: %w", err)
	}
	return nil
}

func (s *PostgresStore) IncrementCompleted(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		"UPDATE llm_regeneration_batches SET completed_jobs = completed_jobs + 1 WHERE id = $1", id,
	)
	if err != nil {
		return fmt.Errorf("increment completed: %w", err)
	}
	return nil
}

func (s *PostgresStore) IncrementFailed(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		"UPDATE llm_regeneration_batches SET failed_jobs = failed_jobs + 1 WHERE id = $1", id,
	)
	if err != nil {
		return fmt.Errorf("increment failed: %w", err)
	}
	return nil
}

func (s *PostgresStore) ActiveBatches(ctx context.Context, projectID uuid.UUID) ([]models.RegenerationBatch, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+batchCols+` FROM llm_regeneration_batches
		 WHERE project_id = $1 AND status IN ('pending', 'processing')
		 ORDER BY created_at DESC`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list active batches: %w", err)
	}
	defer rows.Close()
	return scanBatches(rows)
}

func (s *PostgresStore) RecentlyCompleted(ctx context.Context, projectID uuid.UUID, window time.Duration) ([]models.RegenerationBatch, error) {
	cutoff := time.Now().Add(-window)
	rows, err := s.db.Query(ctx,
		`SELECT `+batchCols+` FROM llm_regeneration_batches
		 WHERE project_id = $1 AND status IN ('completed', 'failed') AND completed_at > $2
		 ORDER BY completed_at DESC`,
		projectID, cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("list recent batches: %w", err)
	}
	defer rows.Close()
	return scanBatches(rows)
}

func scanBatches(rows pgx.Rows) ([]models.RegenerationBatch, error) {
	var batches []models.RegenerationBatch
	for rows.Next() {
		var b models.RegenerationBatch
		if err := rows.Scan(&b.ID, &b.ProjectID, &b.Scope, &b.GeneratorType, &b.TotalJobs, &b.CompletedJobs,
			&b.FailedJobs, &b.Status, &b.StartedAt, &b.CompletedAt, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		batches = append(batches, b)
	}
	return batches, nil
}
