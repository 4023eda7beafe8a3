package prompt

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tripdesk/backend/internal/models"
)

const promptCols = "id, name, slug, description, kind, system_prompt_id, day_id, parent_prompt_id, active_version_id, created_at"
const versionCols = "id, prompt_id, version, content, change_notes, created_at"

// Store is the persistence boundary of the prompt service. The service layer
// owns the versioning rules; the Postgres implementation keeps multi-row
// writes transactional. Faked in tests.
type Store interface {
	CreatePrompt(ctx context.Context, req CreateRequest, slug string) (*models.Prompt, error)
	GetPrompt(ctx context.Context, id uuid.UUID) (*models.Prompt, error)
	GetPromptBySlug(ctx context.Context, slug string) (*models.Prompt, error)
	ListPrompts(ctx context.Context, limit, offset int) ([]models.Prompt, error)
	ListVersions(ctx context.Context, promptID uuid.UUID) ([]models.PromptVersion, error)
	GetVersion(ctx context.Context, versionID uuid.UUID) (*models.PromptVersion, error)
	ActiveVersion(ctx context.Context, promptID uuid.UUID) (*models.PromptVersion, error)
	NextVersionNumber(ctx context.Context, promptID uuid.UUID) (int, error)
	InsertVersion(ctx context.Context, promptID uuid.UUID, version int, content, changeNotes string) (*models.PromptVersion, error)
	SetActiveVersion(ctx context.Context, promptID, versionID uuid.UUID) error
	VersionBelongsTo(ctx context.Context, versionID, promptID uuid.UUID) (bool, error)
	FindSupplementary(ctx context.Context, parentPromptID, dayID uuid.UUID) (*models.Prompt, error)
}

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// CreatePrompt inserts the prompt row together with version 1 and the active
// pointer in one transaction. A duplicate slug surfaces as ErrValidation.
func (s *PostgresStore) CreatePrompt(ctx context.Context, req CreateRequest, slug string) (*models.Prompt, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var p models.Prompt
	err = tx.QueryRow(ctx,
		`INSERT INTO prompts (name, slug, description, kind, system_prompt_id, day_id, parent_prompt_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+promptCols,
		req.Name, slug, req.Description, req.Kind, req.SystemPromptID, req.DayID, req.ParentPromptID,
	).Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.Kind, &p.SystemPromptID, &p.DayID, &p.ParentPromptID, &p.ActiveVersionID, &p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: slug %q already exists", models.ErrValidation, slug)
		}
		return nil, fmt.Errorf("insert prompt: %w", err)
	}

	var versionID uuid.UUID
	err = tx.QueryRow(ctx,
		`INSERT INTO prompt_versions (prompt_id, version, content, change_notes)
		 VALUES ($1, 1, $2, $3)
		 RETURNING id`,
		p.ID, req.InitialContent, req.ChangeNotes,
	).Scan(&versionID)
	if err != nil {
		return nil, fmt.Errorf("insert prompt version: %w", err)
	}

	if _, err := tx.Exec(ctx, "UPDATE prompts SET active_version_id = $1 WHERE id = $2", versionID, p.ID); err != nil {
		return nil, fmt.Errorf("set active version: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	p.ActiveVersionID = &versionID
	return &p, nil
}

func (s *PostgresStore) GetPrompt(ctx context.Context, id uuid.UUID) (*models.Prompt, error) {
	var p models.Prompt
	err := s.db.QueryRow(ctx, "SELECT "+promptCols+" FROM prompts WHERE id = $1", id).
		Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.Kind, &p.SystemPromptID, &p.DayID, &p.ParentPromptID, &p.ActiveVersionID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: prompt %s", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get prompt: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) GetPromptBySlug(ctx context.Context, slug string) (*models.Prompt, error) {
	var p models.Prompt
	err := s.db.QueryRow(ctx, "SELECT "+promptCols+" FROM prompts WHERE slug = $1", slug).
		Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.Kind, &p.SystemPromptID, &p.DayID, &p.ParentPromptID, &p.ActiveVersionID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: prompt %q", models.ErrNotFound, slug)
		}
		return nil, fmt.Errorf("get prompt by slug: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) ListPrompts(ctx context.Context, limit, offset int) ([]models.Prompt, error) {
	rows, err := s.db.Query(ctx,
		"SELECT "+promptCols+" FROM prompts ORDER BY created_at DESC LIMIT $1 OFFSET $2",
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	defer rows.Close()

	var prompts []models.Prompt
	for rows.Next() {
		var p models.Prompt
		if err := rows.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.Kind, &p.SystemPromptID, &p.DayID, &p.ParentPromptID, &p.ActiveVersionID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan prompt: %w", err)
		}
		prompts = append(prompts, p)
	}
	return prompts, nil
}

func (s *PostgresStore) ListVersions(ctx context.Context, promptID uuid.UUID) ([]models.PromptVersion, error) {
	rows, err := s.db.Query(ctx,
		"SELECT "+versionCols+" FROM prompt_versions WHERE prompt_id = $1 ORDER BY version DESC",
		promptID,
	)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var versions []models.PromptVersion
	for rows.Next() {
		var v models.PromptVersion
		if err := rows.Scan(&v.ID, &v.PromptID, &v.Version, &v.Content, &v.ChangeNotes, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		versions = append(versions, v)
	}
	return versions, nil
}

func (s *PostgresStore) GetVersion(ctx context.Context, versionID uuid.UUID) (*models.PromptVersion, error) {
	var v models.PromptVersion
	err := s.db.QueryRow(ctx, "SELECT "+versionCols+" FROM prompt_versions WHERE id = $1", versionID).
		Scan(&v.ID, &v.PromptID, &v.Version, &v.Content, &v.ChangeNotes, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: version %s", models.ErrNotFound, versionID)
		}
		return nil, fmt.Errorf("get version: %w", err)
	}
	return &v, nil
}

func (s *PostgresStore) ActiveVersion(ctx context.Context, promptID uuid.UUID) (*models.PromptVersion, error) {
	var v models.PromptVersion
	err := s.db.QueryRow(ctx,
		`SELECT v.id, v.prompt_id, v.version, v.content, v.change_notes, v.created_at
		 FROM prompts p JOIN prompt_versions v ON v.id = p.active_version_id
		 WHERE p.id = $1`,
		promptID,
	).Scan(&v.ID, &v.PromptID, &v.Version, &v.Content, &v.ChangeNotes, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no active version for prompt %s", models.ErrNotFound, promptID)
		}
		return nil, fmt.Errorf("get active version: %w", err)
	}
	return &v, nil
}

func (s *PostgresStore) NextVersionNumber(ctx context.Context, promptID uuid.UUID) (int, error) {
	var next int
	err := s.db.QueryRow(ctx,
		"SELECT COALESCE(MAX(version), 0) + 1 FROM prompt_versions WHERE prompt_id = $1",
		promptID,
	).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next version number: %w", err)
	}
	return next, nil
}

func (s *PostgresStore) InsertVersion(ctx context.Context, promptID uuid.UUID, version int, content, changeNotes string) (*models.PromptVersion, error) {
	var v models.PromptVersion
	err := s.db.QueryRow(ctx,
		`INSERT INTO prompt_versions (prompt_id, version, content, change_notes)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+versionCols,
		promptID, version, content, changeNotes,
	).Scan(&v.ID, &v.PromptID, &v.Version, &v.Content, &v.ChangeNotes, &v.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert version: %w", err)
	}
	return &v, nil
}

func (s *PostgresStore) SetActiveVersion(ctx context.Context, promptID, versionID uuid.UUID) error {
	tag, err := s.db.Exec(ctx, "UPDATE prompts SET active_version_id = $1 WHERE id = $2", versionID, promptID)
	if err != nil {
		return fmt.Errorf("set active version: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: prompt %s", models.ErrNotFound, promptID)
	}
	return nil
}

func (s *PostgresStore) VersionBelongsTo(ctx context.Context, versionID, promptID uuid.UUID) (bool, error) {
	var belongs bool
	err := s.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM prompt_versions WHERE id = $1 AND prompt_id = $2)",
		versionID, promptID,
	).Scan(&belongs)
	if err != nil {
		return false, fmt.Errorf("check version ownership: %w", err)
	}
	return belongs, nil
}

// FindSupplementary returns the day-scoped override of a task prompt, or nil
// when none exists.
func (s *PostgresStore) FindSupplementary(ctx context.Context, parentPromptID, dayID uuid.UUID) (*models.Prompt, error) {
	var p models.Prompt
	err := s.db.QueryRow(ctx,
		"SELECT "+promptCols+" FROM prompts WHERE parent_prompt_id = $1 AND day_id = $2",
		parentPromptID, dayID,
	).Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.Kind, &p.SystemPromptID, &p.DayID, &p.ParentPromptID, &p.ActiveVersionID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find supplementary: %w", err)
	}
	return &p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
