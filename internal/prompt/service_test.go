package prompt

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/tripdesk/backend/internal/models"
)

// fakePromptStore keeps prompts and versions in maps. Pointer-copy on read so
// tests cannot mutate stored rows by accident.
type fakePromptStore struct {
	prompts  map[uuid.UUID]*models.Prompt
	versions map[uuid.UUID]*models.PromptVersion
}

func newFakePromptStore() *fakePromptStore {
	return &fakePromptStore{
		prompts:  make(map[uuid.UUID]*models.Prompt),
		versions: make(map[uuid.UUID]*models.PromptVersion),
	}
}

func (f *fakePromptStore) CreatePrompt(_ context.Context, req CreateRequest, slug string) (*models.Prompt, error) {
	for _, p := range f.prompts {
		if p.Slug == slug {
			return nil, fmt.Errorf("%w: slug %q already exists", models.ErrValidation, slug)
		}
	}
	p := &models.Prompt{
		ID:             uuid.New(),
		Name:           req.Name,
		Slug:           slug,
		Description:    req.Description,
		Kind:           req.Kind,
		SystemPromptID: req.SystemPromptID,
		DayID:          req.DayID,
		ParentPromptID: req.ParentPromptID,
		CreatedAt:      time.Now(),
	}
	v := &models.PromptVersion{
		ID:          uuid.New(),
		PromptID:    p.ID,
		Version:     1,
		Content:     req.InitialContent,
		ChangeNotes: req.ChangeNotes,
		CreatedAt:   time.Now(),
	}
	p.ActiveVersionID = &v.ID
	f.prompts[p.ID] = p
	f.versions[v.ID] = v
	cp := *p
	return &cp, nil
}

func (f *fakePromptStore) GetPrompt(_ context.Context, id uuid.UUID) (*models.Prompt, error) {
	p, ok := f.prompts[id]
	if !ok {
		return nil, fmt.Errorf("%w: prompt %s", models.ErrNotFound, id)
	}
	cp := *p
	return &cp, nil
}

func (f *fakePromptStore) GetPromptBySlug(_ context.Context, slug string) (*models.Prompt, error) {
	for _, p := range f.prompts {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: prompt %q", models.ErrNotFound, slug)
}

func (f *fakePromptStore) ListPrompts(_ context.Context, limit, offset int) ([]models.Prompt, error) {
	var out []models.Prompt
	for _, p := range f.prompts {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakePromptStore) ListVersions(_ context.Context, promptID uuid.UUID) ([]models.PromptVersion, error) {
	var out []models.PromptVersion
	for _, v := range f.versions {
		if v.PromptID == promptID {
			out = append(out, *v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version > out[j].Version })
	return out, nil
}

func (f *fakePromptStore) GetVersion(_ context.Context, versionID uuid.UUID) (*models.PromptVersion, error) {
	v, ok := f.versions[versionID]
	if !ok {
		return nil, fmt.Errorf("%w: version %s", models.ErrNotFound, versionID)
	}
	cp := *v
	return &cp, nil
}

func (f *fakePromptStore) ActiveVersion(_ context.Context, promptID uuid.UUID) (*models.PromptVersion, error) {
	p, ok := f.prompts[promptID]
	if !ok || p.ActiveVersionID == nil {
		return nil, fmt.Errorf("%w: no active version for prompt %s", models.ErrNotFound, promptID)
	}
	cp := *f.versions[*p.ActiveVersionID]
	return &cp, nil
}

func (f *fakePromptStore) NextVersionNumber(_ context.Context, promptID uuid.UUID) (int, error) {
	max := 0
	for _, v := range f.versions {
		if v.PromptID == promptID && v.Version > max {
			max = v.Version
		}
	}
	return max + 1, nil
}

func (f *fakePromptStore) InsertVersion(_ context.Context, promptID uuid.UUID, version int, content, changeNotes string) (*models.PromptVersion, error) {
	v := &models.PromptVersion{
		ID:          uuid.New(),
		PromptID:    promptID,
		Version:     version,
		Content:     content,
		ChangeNotes: changeNotes,
		CreatedAt:   time.Now(),
	}
	f.versions[v.ID] = v
	cp := *v
	return &cp, nil
}

func (f *fakePromptStore) SetActiveVersion(_ context.Context, promptID, versionID uuid.UUID) error {
	p, ok := f.prompts[promptID]
	if !ok {
		return fmt.Errorf("%w: prompt %s", models.ErrNotFound, promptID)
	}
	id := versionID
	p.ActiveVersionID = &id
	return nil
}

func (f *fakePromptStore) VersionBelongsTo(_ context.Context, versionID, promptID uuid.UUID) (bool, error) {
	v, ok := f.versions[versionID]
	return ok && v.PromptID == promptID, nil
}

func (f *fakePromptStore) FindSupplementary(_ context.Context, parentPromptID, dayID uuid.UUID) (*models.Prompt, error) {
	for _, p := range f.prompts {
		if p.ParentPromptID != nil && *p.ParentPromptID == parentPromptID &&
			p.DayID != nil && *p.DayID == dayID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func newTestService() (*Service, *fakePromptStore) {
	store := newFakePromptStore()
	return &Service{store: store}, store
}

func mustCreate(t *testing.T, svc *Service, name, content string) *models.Prompt {
	t.Helper()
	p, err := svc.Create(context.Background(), CreateRequest{
		Name:           name,
		Kind:           models.PromptKindTask,
		InitialContent: content,
	})
	if err != nil {
		t.Fatalf("create %q: %v", name, err)
	}
	return p
}

func versionCount(t *testing.T, svc *Service, promptID uuid.UUID) int {
	t.Helper()
	versions, err := svc.Versions(context.Background(), promptID)
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	return len(versions)
}

func activeContent(t *testing.T, svc *Service, promptID uuid.UUID) string {
	t.Helper()
	v, err := svc.ActiveVersion(context.Background(), promptID)
	if err != nil {
		t.Fatalf("active version: %v", err)
	}
	return v.Content
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("starts at version 1 active", func(t *testing.T) {
		svc, _ := newTestService()
		p := mustCreate(t, svc, "Sightseeing Task", "visit {{city}}")
		if p.Slug != "sightseeing-task" {
			t.Errorf("slug = %q, want %q", p.Slug, "sightseeing-task")
		}
		if p.ActiveVersionID == nil {
			t.Fatal("active version not set")
		}
		v, err := svc.ActiveVersion(ctx, p.ID)
		if err != nil {
			t.Fatalf("active version: %v", err)
		}
		if v.Version != 1 || v.Content != "visit {{city}}" {
			t.Errorf("active = v%d %q, want v1 with initial content", v.Version, v.Content)
		}
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		svc, _ := newTestService()
		cases := []CreateRequest{
			{Name: "", Kind: models.PromptKindTask, InitialContent: "x"},
			{Name: "n", Kind: models.PromptKind("bogus"), InitialContent: "x"},
			{Name: "n", Kind: models.PromptKindTask, InitialContent: "  "},
		}
		for _, req := range cases {
			if _, err := svc.Create(ctx, req); !errors.Is(err, models.ErrValidation) {
				t.Errorf("Create(%+v) err = %v, want ErrValidation", req, err)
			}
		}
	})

	t.Run("rejects duplicate slug", func(t *testing.T) {
		svc, _ := newTestService()
		mustCreate(t, svc, "Eating Task", "eat")
		_, err := svc.Create(ctx, CreateRequest{
			Name:           "Eating Task",
			Kind:           models.PromptKindTask,
			InitialContent: "eat elsewhere",
		})
		if !errors.Is(err, models.ErrValidation) {
			t.Errorf("err = %v, want ErrValidation", err)
		}
	})
}

func TestAddVersion(t *testing.T) {
	ctx := context.Background()

	t.Run("identical content is a no-op", func(t *testing.T) {
		svc, _ := newTestService()
		p := mustCreate(t, svc, "Travel Task", "A")

		v, err := svc.AddVersion(ctx, p.ID, "A", "resubmit")
		if err != nil {
			t.Fatalf("add version: %v", err)
		}
		if v.Version != 1 {
			t.Errorf("returned version = %d, want the existing 1", v.Version)
		}
		if got := versionCount(t, svc, p.ID); got != 1 {
			t.Errorf("version count = %d, want 1", got)
		}
	})

	t.Run("new content appends and activates", func(t *testing.T) {
		svc, _ := newTestService()
		p := mustCreate(t, svc, "Travel Task", "A")

		v, err := svc.AddVersion(ctx, p.ID, "B", "")
		if err != nil {
			t.Fatalf("add version: %v", err)
		}
		if v.Version != 2 {
			t.Errorf("version = %d, want 2", v.Version)
		}
		if got := activeContent(t, svc, p.ID); got != "B" {
			t.Errorf("active content = %q, want %q", got, "B")
		}
		if got := versionCount(t, svc, p.ID); got != 2 {
			t.Errorf("version count = %d, want 2", got)
		}
	})

	t.Run("unknown prompt", func(t *testing.T) {
		svc, _ := newTestService()
		if _, err := svc.AddVersion(ctx, uuid.New(), "A", ""); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestRevert(t *testing.T) {
	ctx := context.Background()

	t.Run("restores old content, numbering keeps increasing", func(t *testing.T) {
		svc, _ := newTestService()
		p := mustCreate(t, svc, "Travel Task", "A")
		if _, err := svc.AddVersion(ctx, p.ID, "B", ""); err != nil {
			t.Fatalf("add version: %v", err)
		}

		versions, err := svc.Versions(ctx, p.ID)
		if err != nil {
			t.Fatalf("list versions: %v", err)
		}
		var v1 models.PromptVersion
		for _, v := range versions {
			if v.Version == 1 {
				v1 = v
			}
		}

		if _, err := svc.Revert(ctx, p.ID, v1.ID); err != nil {
			t.Fatalf("revert: %v", err)
		}
		if got := activeContent(t, svc, p.ID); got != "A" {
			t.Errorf("active content after revert = %q, want %q", got, "A")
		}
		if got := versionCount(t, svc, p.ID); got != 2 {
			t.Errorf("version count after revert = %d, want 2 (history untouched)", got)
		}

		v, err := svc.AddVersion(ctx, p.ID, "C", "")
		if err != nil {
			t.Fatalf("add version after revert: %v", err)
		}
		if v.Version != 3 {
			t.Errorf("version after revert = %d, want 3", v.Version)
		}
	})

	t.Run("version from another prompt", func(t *testing.T) {
		svc, _ := newTestService()
		p := mustCreate(t, svc, "Travel Task", "A")
		other := mustCreate(t, svc, "Eating Task", "B")

		otherV, err := svc.ActiveVersion(ctx, other.ID)
		if err != nil {
			t.Fatalf("active version: %v", err)
		}
		if _, err := svc.Revert(ctx, p.ID, otherV.ID); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestFindOrCreateSupplementary(t *testing.T) {
	ctx := context.Background()
	dayID := uuid.New()

	t.Run("blank content records nothing", func(t *testing.T) {
		svc, store := newTestService()
		parent := mustCreate(t, svc, "Sightseeing Task", "base")

		got, err := svc.FindOrCreateSupplementary(ctx, parent.ID, dayID, "   ")
		if err != nil {
			t.Fatalf("supplementary: %v", err)
		}
		if got != nil {
			t.Errorf("got %+v, want nil", got)
		}
		if len(store.prompts) != 1 {
			t.Errorf("prompt count = %d, want the parent only", len(store.prompts))
		}
	})

	t.Run("creates a day-scoped override", func(t *testing.T) {
		svc, _ := newTestService()
		parent := mustCreate(t, svc, "Sightseeing Task", "base")

		got, err := svc.FindOrCreateSupplementary(ctx, parent.ID, dayID, "focus on museums")
		if err != nil {
			t.Fatalf("supplementary: %v", err)
		}
		if got.Kind != models.PromptKindSupplementary {
			t.Errorf("kind = %q, want supplementary", got.Kind)
		}
		if got.DayID == nil || *got.DayID != dayID {
			t.Errorf("day id = %v, want %s", got.DayID, dayID)
		}
		if got.ParentPromptID == nil || *got.ParentPromptID != parent.ID {
			t.Errorf("parent id = %v, want %s", got.ParentPromptID, parent.ID)
		}
		if content := activeContent(t, svc, got.ID); content != "focus on museums" {
			t.Errorf("active content = %q, want the override text", content)
		}
	})

	t.Run("identical content leaves the override alone", func(t *testing.T) {
		svc, _ := newTestService()
		parent := mustCreate(t, svc, "Sightseeing Task", "base")

		first, err := svc.FindOrCreateSupplementary(ctx, parent.ID, dayID, "focus on museums")
		if err != nil {
			t.Fatalf("supplementary: %v", err)
		}
		again, err := svc.FindOrCreateSupplementary(ctx, parent.ID, dayID, "focus on museums")
		if err != nil {
			t.Fatalf("supplementary again: %v", err)
		}
		if again.ID != first.ID {
			t.Errorf("got a different prompt %s, want %s", again.ID, first.ID)
		}
		if got := versionCount(t, svc, first.ID); got != 1 {
			t.Errorf("version count = %d, want 1", got)
		}
	})

	t.Run("changed content appends a version", func(t *testing.T) {
		svc, _ := newTestService()
		parent := mustCreate(t, svc, "Sightseeing Task", "base")

		first, err := svc.FindOrCreateSupplementary(ctx, parent.ID, dayID, "focus on museums")
		if err != nil {
			t.Fatalf("supplementary: %v", err)
		}
		updated, err := svc.FindOrCreateSupplementary(ctx, parent.ID, dayID, "focus on parks")
		if err != nil {
			t.Fatalf("supplementary update: %v", err)
		}
		if updated.ID != first.ID {
			t.Errorf("got a different prompt %s, want %s", updated.ID, first.ID)
		}
		if got := versionCount(t, svc, first.ID); got != 2 {
			t.Errorf("version count = %d, want 2", got)
		}
		if content := activeContent(t, svc, first.ID); content != "focus on parks" {
			t.Errorf("active content = %q, want the new text", content)
		}
	})
}
