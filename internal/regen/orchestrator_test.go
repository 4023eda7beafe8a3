package regen

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/tripdesk/backend/internal/generator"
	"github.com/tripdesk/backend/internal/models"
)

func TestRegenerateSingle(t *testing.T) {
	ctx := context.Background()
	projectID := uuid.New()
	day := dayOn(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), 1)
	country := uuid.New()
	travel := travelOn(day, country, country)
	activity := activityOn(day, models.ActivityEating)

	itin := &fakeItinerary{
		days:       []models.Day{day},
		travels:    []models.TravelDetail{travel},
		activities: []models.ActivityDetail{activity},
	}

	t.Run("travel entity", func(t *testing.T) {
		store := newFakeStore()
		exec := &fakeExecutor{}
		orch := NewOrchestrator(store, exec, itin)

		batch, err := orch.RegenerateSingle(ctx, projectID, EntityTravel, travel.Travel.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if batch.TotalJobs != 1 {
			t.Errorf("total_jobs = %d, want 1", batch.TotalJobs)
		}
		if batch.Scope != models.ScopeSingle {
			t.Errorf("scope = %s, want single", batch.Scope)
		}
		if batch.GeneratorType != generator.LabelTravel {
			t.Errorf("generator_type = %q, want %q", batch.GeneratorType, generator.LabelTravel)
		}
		if batch.Status != models.BatchProcessing {
			t.Errorf("status = %s, want processing", batch.Status)
		}
		if len(exec.submitted) != 1 || len(exec.submitted[0]) != 1 {
			t.Fatalf("expected one submission of one job, got %v", exec.submitted)
		}
		job := exec.submitted[0][0]
		if job.BatchID != batch.ID {
			t.Error("job should carry the batch id")
		}
		if job.Generator != generator.SlugTravelDomestic {
			t.Errorf("generator = %q, want %q", job.Generator, generator.SlugTravelDomestic)
		}
	})

	t.Run("activity entity", func(t *testing.T) {
		store := newFakeStore()
		exec := &fakeExecutor{}
		orch := NewOrchestrator(store, exec, itin)

		batch, err := orch.RegenerateSingle(ctx, projectID, EntityActivity, activity.Activity.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if batch.GeneratorType != "eating" {
			t.Errorf("generator_type = %q, want eating", batch.GeneratorType)
		}
		if exec.submitted[0][0].Generator != generator.SlugEating {
			t.Errorf("generator = %q", exec.submitted[0][0].Generator)
		}
	})

	t.Run("unknown entity type", func(t *testing.T) {
		orch := NewOrchestrator(newFakeStore(), &fakeExecutor{}, itin)
		_, err := orch.RegenerateSingle(ctx, projectID, "venue", uuid.New())
		if !errors.Is(err, models.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("missing entity", func(t *testing.T) {
		orch := NewOrchestrator(newFakeStore(), &fakeExecutor{}, itin)
		_, err := orch.RegenerateSingle(ctx, projectID, EntityTravel, uuid.New())
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestRegenerateDay(t *testing.T) {
	ctx := context.Background()
	projectID := uuid.New()
	day := dayOn(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), 1)
	country := uuid.New()

	t.Run("travel plus activities", func(t *testing.T) {
		itin := &fakeItinerary{
			days:    []models.Day{day},
			travels: []models.TravelDetail{travelOn(day, country, country)},
			activities: []models.ActivityDetail{
				activityOn(day, models.ActivitySightseeing),
				activityOn(day, models.ActivityEating),
			},
		}
		store := newFakeStore()
		exec := &fakeExecutor{}
		orch := NewOrchestrator(store, exec, itin)

		batch, err := orch.RegenerateDay(ctx, projectID, day.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if batch.TotalJobs != 3 {
			t.Errorf("total_jobs = %d, want 3", batch.TotalJobs)
		}
		if batch.Scope != models.ScopeDay {
			t.Errorf("scope = %s, want day", batch.Scope)
		}
	})

	t.Run("empty day completes immediately", func(t *testing.T) {
		itin := &fakeItinerary{days: []models.Day{day}}
		store := newFakeStore()
		exec := &fakeExecutor{}
		orch := NewOrchestrator(store, exec, itin)

		batch, err := orch.RegenerateDay(ctx, projectID, day.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if batch.Status != models.BatchCompleted {
			t.Errorf("status = %s, want completed", batch.Status)
		}
		if batch.TotalJobs != 0 {
			t.Errorf("total_jobs = %d, want 0", batch.TotalJobs)
		}
		if batch.StartedAt != nil {
			t.Error("an empty batch never enters processing, started_at must be nil")
		}
		if batch.CompletedAt == nil {
			t.Error("completed_at should be set")
		}
		if len(exec.submitted) != 0 {
			t.Error("nothing should be submitted for an empty day")
		}
	})

	t.Run("unknown day", func(t *testing.T) {
		itin := &fakeItinerary{}
		orch := NewOrchestrator(newFakeStore(), &fakeExecutor{}, itin)
		_, err := orch.RegenerateDay(ctx, projectID, uuid.New())
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestRegenerateColumn(t *testing.T) {
	ctx := context.Background()
	projectID := uuid.New()
	day1 := dayOn(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), 1)
	day2 := dayOn(time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC), 2)
	country := uuid.New()

	itin := &fakeItinerary{
		days: []models.Day{day1, day2},
		travels: []models.TravelDetail{
			travelOn(day1, country, country),
			travelOn(day2, country, uuid.New()),
		},
		activities: []models.ActivityDetail{
			activityOn(day1, models.ActivityEating),
			activityOn(day1, models.ActivitySightseeing),
			activityOn(day2, models.ActivityEating),
			activityOn(day2, models.ActivityWrestling),
		},
	}

	t.Run("travel column", func(t *testing.T) {
		store := newFakeStore()
		exec := &fakeExecutor{}
		orch := NewOrchestrator(store, exec, itin)

		batch, err := orch.RegenerateColumn(ctx, projectID, generator.LabelTravel)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if batch.TotalJobs != 2 {
			t.Errorf("total_jobs = %d, want 2", batch.TotalJobs)
		}
		// Mixed domestic and international selection within one column.
		jobs := exec.submitted[0]
		if jobs[0].Generator != generator.SlugTravelDomestic {
			t.Errorf("job 0 generator = %q", jobs[0].Generator)
		}
		if jobs[1].Generator != generator.SlugTravelInternational {
			t.Errorf("job 1 generator = %q", jobs[1].Generator)
		}
	})

	t.Run("activity column filters by type", func(t *testing.T) {
		store := newFakeStore()
		exec := &fakeExecutor{}
		orch := NewOrchestrator(store, exec, itin)

		batch, err := orch.RegenerateColumn(ctx, projectID, "eating")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if batch.TotalJobs != 2 {
			t.Errorf("total_jobs = %d, want 2 (only eating activities)", batch.TotalJobs)
		}
		if batch.GeneratorType != "eating" {
			t.Errorf("generator_type = %q", batch.GeneratorType)
		}
		for _, job := range exec.submitted[0] {
			if job.Generator != generator.SlugEating {
				t.Errorf("job generator = %q, want %q", job.Generator, generator.SlugEating)
			}
		}
	})

	t.Run("unknown column type", func(t *testing.T) {
		orch := NewOrchestrator(newFakeStore(), &fakeExecutor{}, itin)
		_, err := orch.RegenerateColumn(ctx, projectID, "skydiving")
		if !errors.Is(err, models.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})
}

func TestRegenerateProject(t *testing.T) {
	ctx := context.Background()
	projectID := uuid.New()
	day1 := dayOn(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), 1)
	day2 := dayOn(time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC), 2)
	country := uuid.New()

	itin := &fakeItinerary{
		days:    []models.Day{day1, day2},
		travels: []models.TravelDetail{travelOn(day1, country, country)},
		activities: []models.ActivityDetail{
			activityOn(day1, models.ActivityEating),
			activityOn(day2, models.ActivitySightseeing),
			activityOn(day2, models.ActivityWrestling),
		},
	}

	store := newFakeStore()
	exec := &fakeExecutor{}
	orch := NewOrchestrator(store, exec, itin)

	batch, err := orch.RegenerateProject(ctx, projectID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if batch.TotalJobs != 4 {
		t.Errorf("total_jobs = %d, want 4 (1 travel + 3 activities)", batch.TotalJobs)
	}
	if batch.Scope != models.ScopeProject {
		t.Errorf("scope = %s, want project", batch.Scope)
	}
	if batch.Status != models.BatchProcessing {
		t.Errorf("status = %s, want processing", batch.Status)
	}
}

func TestDispatchSubmitFailure(t *testing.T) {
	ctx := context.Background()
	projectID := uuid.New()
	day := dayOn(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), 1)
	country := uuid.New()

	itin := &fakeItinerary{
		days:    []models.Day{day},
		travels: []models.TravelDetail{travelOn(day, country, country)},
	}

	store := newFakeStore()
	exec := &fakeExecutor{err: errors.New("queue down")}
	orch := NewOrchestrator(store, exec, itin)

	_, err := orch.RegenerateDay(ctx, projectID, day.ID)
	if err == nil {
		t.Fatal("expected submit error")
	}

	// The created batch must be marked failed, not left dangling in pending.
	active, _ := store.ActiveBatches(ctx, projectID)
	if len(active) != 0 {
		t.Errorf("expected no active batches after submit failure, got %d", len(active))
	}
}
