package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tripdesk/backend/internal/models"
)

// Service holds the versioning rules for prompts. Persistence sits behind
// Store so the rules are testable without a database.
type Service struct {
	store Store
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{store: NewPostgresStore(db)}
}

type CreateRequest struct {
	Name           string            `json:"name"`
	Slug           string            `json:"slug"`
	Description    string            `json:"description"`
	Kind           models.PromptKind `json:"kind"`
	SystemPromptID *uuid.UUID        `json:"system_prompt_id,omitempty"`
	DayID          *uuid.UUID        `json:"day_id,omitempty"`
	ParentPromptID *uuid.UUID        `json:"parent_prompt_id,omitempty"`
	InitialContent string            `json:"initial_content"`
	ChangeNotes    string            `json:"change_notes,omitempty"`
}

// Create inserts a prompt together with version 1 and points the active
// version at it. A duplicate slug surfaces as ErrValidation.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Prompt, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name required", models.ErrValidation)
	}
	if !req.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown prompt kind %q", models.ErrValidation, req.Kind)
	}
	if strings.TrimSpace(req.InitialContent) == "" {
		return nil, fmt.Errorf("%w: initial content required", models.ErrValidation)
	}
	slug := req.Slug
	if slug == "" {
		slug = Slugify(req.Name)
	}
	return s.store.CreatePrompt(ctx, req, slug)
}

// AddVersion appends a new immutable version and makes it active. The version
// number is max(existing)+1 so it keeps increasing across reverts. Content
// identical to the current active version is a no-op: the active version is
// returned unchanged and nothing is written.
func (s *Service) AddVersion(ctx context.Context, promptID uuid.UUID, content, changeNotes string) (*models.PromptVersion, error) {
	p, err := s.store.GetPrompt(ctx, promptID)
	if err != nil {
		return nil, err
	}

	if p.ActiveVersionID != nil {
		active, err := s.store.GetVersion(ctx, *p.ActiveVersionID)
		if err != nil {
			return nil, fmt.Errorf("load active version: %w", err)
		}
		if active.Content == content {
			return active, nil
		}
	}

	next, err := s.store.NextVersionNumber(ctx, promptID)
	if err != nil {
		return nil, err
	}
	v, err := s.store.InsertVersion(ctx, promptID, next, content, changeNotes)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetActiveVersion(ctx, promptID, v.ID); err != nil {
		return nil, err
	}
	return v, nil
}

// Revert repoints the active version at targetVersionID. The target must
// belong to this prompt. Version history is untouched.
func (s *Service) Revert(ctx context.Context, promptID, targetVersionID uuid.UUID) (*models.Prompt, error) {
	belongs, err := s.store.VersionBelongsTo(ctx, targetVersionID, promptID)
	if err != nil {
		return nil, err
	}
	if !belongs {
		return nil, fmt.Errorf("%w: version %s does not belong to prompt %s", models.ErrNotFound, targetVersionID, promptID)
	}

	if err := s.store.SetActiveVersion(ctx, promptID, targetVersionID); err != nil {
		return nil, err
	}
	return s.store.GetPrompt(ctx, promptID)
}

// FindOrCreateSupplementary records a per-day override of a task prompt.
// Blank content records nothing. An existing override with identical active
// content is left alone; different content appends a version.
func (s *Service) FindOrCreateSupplementary(ctx context.Context, parentPromptID, dayID uuid.UUID, content string) (*models.Prompt, error) {
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}

	existing, err := s.store.FindSupplementary(ctx, parentPromptID, dayID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if _, err := s.AddVersion(ctx, existing.ID, content, ""); err != nil {
			return nil, err
		}
		return s.store.GetPrompt(ctx, existing.ID)
	}

	parent, err := s.store.GetPrompt(ctx, parentPromptID)
	if err != nil {
		return nil, err
	}

	return s.Create(ctx, CreateRequest{
		Name:           SupplementaryName(parent.Name, dayID),
		Slug:           SupplementarySlug(parent.Slug, dayID),
		Kind:           models.PromptKindSupplementary,
		DayID:          &dayID,
		ParentPromptID: &parentPromptID,
		InitialContent: content,
	})
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Prompt, error) {
	return s.store.GetPrompt(ctx, id)
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*models.Prompt, error) {
	return s.store.GetPromptBySlug(ctx, slug)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]models.Prompt, error) {
	return s.store.ListPrompts(ctx, limit, offset)
}

func (s *Service) Versions(ctx context.Context, promptID uuid.UUID) ([]models.PromptVersion, error) {
	return s.store.ListVersions(ctx, promptID)
}

// ActiveVersion returns the version the prompt currently points at, or
// ErrNotFound when no version has been created yet.
func (s *Service) ActiveVersion(ctx context.Context, promptID uuid.UUID) (*models.PromptVersion, error) {
	return s.store.ActiveVersion(ctx, promptID)
}

// Resolved bundles the active templates of a task prompt, its system parent
// and the day-scoped supplementary override, ready for rendering.
type Resolved struct {
	SystemVersionID        *uuid.UUID
	SystemTemplate         string
	TaskPromptID           uuid.UUID
	TaskVersionID          uuid.UUID
	TaskTemplate           string
	SupplementaryVersionID *uuid.UUID
	SupplementaryTemplate  string
}

// ResolveForGeneration fetches everything a generation job needs for one task
// prompt slug: the active task template, the linked system prompt's active
// template (if any), and the supplementary override scoped to dayID (if any).
func (s *Service) ResolveForGeneration(ctx context.Context, taskSlug string, dayID uuid.UUID) (*Resolved, error) {
	task, err := s.store.GetPromptBySlug(ctx, taskSlug)
	if err != nil {
		return nil, err
	}
	taskVersion, err := s.store.ActiveVersion(ctx, task.ID)
	if err != nil {
		return nil, err
	}

	r := &Resolved{
		TaskPromptID:  task.ID,
		TaskVersionID: taskVersion.ID,
		TaskTemplate:  taskVersion.Content,
	}

	if task.SystemPromptID != nil {
		sysVersion, err := s.store.ActiveVersion(ctx, *task.SystemPromptID)
		if err != nil {
			return nil, err
		}
		r.SystemVersionID = &sysVersion.ID
		r.SystemTemplate = sysVersion.Content
	}

	supp, err := s.store.FindSupplementary(ctx, task.ID, dayID)
	if err != nil {
		return nil, err
	}
	if supp == nil {
		return r, nil
	}

	suppVersion, err := s.store.ActiveVersion(ctx, supp.ID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return r, nil
		}
		return nil, err
	}
	r.SupplementaryVersionID = &suppVersion.ID
	r.SupplementaryTemplate = suppVersion.Content

	return r, nil
}
