package regen

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/tripdesk/backend/internal/generator"
	"github.com/tripdesk/backend/internal/models"
)

// Orchestrator fans regeneration requests out into tracked batches of
// generation jobs. The batch row and its total_jobs are fixed before anything
// is submitted, so a client polling right after the synchronous call sees the
// correct denominator.
type Orchestrator struct {
	store Store
	exec  Executor
	itin  ItineraryReader
}

func NewOrchestrator(store Store, exec Executor, itin ItineraryReader) *Orchestrator {
	return &Orchestrator{store: store, exec: exec, itin: itin}
}

// RegenerateSingle rebuilds the content of one travel segment or activity.
func (o *Orchestrator) RegenerateSingle(ctx context.Context, projectID uuid.UUID, entityType string, entityID uuid.UUID) (*models.RegenerationBatch, error) {
	var job Job
	var label string

	switch entityType {
	case EntityTravel:
		td, err := o.itin.Travel(ctx, entityID)
		if err != nil {
			return nil, err
		}
		gen := generator.ForTravel(*td)
		job = Job{EntityType: EntityTravel, EntityID: entityID, DayID: td.Travel.DayID, Generator: gen.Slug()}
		label = gen.Label()
	case EntityActivity:
		ad, err := o.itin.Activity(ctx, entityID)
		if err != nil {
			return nil, err
		}
		gen := generator.ForActivity(*ad)
		if gen == nil {
			return nil, fmt.Errorf("%w: unknown activity type %q", models.ErrValidation, ad.Activity.Type)
		}
		job = Job{EntityType: EntityActivity, EntityID: entityID, DayID: ad.Activity.DayID, Generator: gen.Slug()}
		label = gen.Label()
	default:
		return nil, fmt.Errorf("%w: unknown entity type %q", models.ErrValidation, entityType)
	}

	return o.dispatch(ctx, projectID, models.ScopeSingle, label, []Job{job})
}

// RegenerateDay rebuilds the day's travel segment (if any) and every activity.
func (o *Orchestrator) RegenerateDay(ctx context.Context, projectID, dayID uuid.UUID) (*models.RegenerationBatch, error) {
	if _, err := o.itin.Day(ctx, dayID); err != nil {
		return nil, err
	}

	jobs, err := o.jobsForDay(ctx, dayID)
	if err != nil {
		return nil, err
	}

	return o.dispatch(ctx, projectID, models.ScopeDay, "", jobs)
}

// RegenerateColumn rebuilds one column across the project's current version:
// every travel segment, or every activity of one type.
func (o *Orchestrator) RegenerateColumn(ctx context.Context, projectID uuid.UUID, columnType string) (*models.RegenerationBatch, error) {
	var jobs []Job

	switch {
	case columnType == generator.LabelTravel:
		travels, err := o.itin.TravelsForProject(ctx, projectID)
		if err != nil {
			return nil, err
		}
		for _, td := range travels {
			gen := generator.ForTravel(td)
			jobs = append(jobs, Job{EntityType: EntityTravel, EntityID: td.Travel.ID, DayID: td.Travel.DayID, Generator: gen.Slug()})
		}
	case models.ActivityType(columnType).Valid():
		activities, err := o.itin.ActivitiesByType(ctx, projectID, models.ActivityType(columnType))
		if err != nil {
			return nil, err
		}
		for _, ad := range activities {
			gen := generator.ForActivity(ad)
			if gen == nil {
				continue
			}
			jobs = append(jobs, Job{EntityType: EntityActivity, EntityID: ad.Activity.ID, DayID: ad.Activity.DayID, Generator: gen.Slug()})
		}
	default:
		return nil, fmt.Errorf("%w: unknown column type %q", models.ErrValidation, columnType)
	}

	return o.dispatch(ctx, projectID, models.ScopeColumn, columnType, jobs)
}

// RegenerateProject rebuilds every travel segment and activity across every
// day of the project's current version.
func (o *Orchestrator) RegenerateProject(ctx context.Context, projectID uuid.UUID) (*models.RegenerationBatch, error) {
	days, err := o.itin.DaysForProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	var jobs []Job
	for _, day := range days {
		dayJobs, err := o.jobsForDay(ctx, day.ID)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, dayJobs...)
	}

	return o.dispatch(ctx, projectID, models.ScopeProject, "", jobs)
}

func (o *Orchestrator) jobsForDay(ctx context.Context, dayID uuid.UUID) ([]Job, error) {
	var jobs []Job

	td, err := o.itin.TravelForDay(ctx, dayID)
	if err != nil {
		return nil, err
	}
	if td != nil {
		gen := generator.ForTravel(*td)
		jobs = append(jobs, Job{EntityType: EntityTravel, EntityID: td.Travel.ID, DayID: dayID, Generator: gen.Slug()})
	}

	activities, err := o.itin.ActivitiesForDay(ctx, dayID)
	if err != nil {
		return nil, err
	}
	for _, ad := range activities {
		gen := generator.ForActivity(ad)
		if gen == nil {
			slog.Warn("skipping activity with unknown type", "activity_id", ad.Activity.ID, "type", ad.Activity.Type)
			continue
		}
		jobs = append(jobs, Job{EntityType: EntityActivity, EntityID: ad.Activity.ID, DayID: dayID, Generator: gen.Slug()})
	}

	return jobs, nil
}

// dispatch creates the batch, submits the jobs and returns a fresh snapshot of
// the batch row. An empty job list completes the batch immediately without
// ever entering processing.
func (o *Orchestrator) dispatch(ctx context.Context, projectID uuid.UUID, scope models.BatchScope, generatorType string, jobs []Job) (*models.RegenerationBatch, error) {
	batch, err := o.store.CreateBatch(ctx, CreateBatchParams{
		ProjectID:     projectID,
		Scope:         scope,
		GeneratorType: generatorType,
		TotalJobs:     len(jobs),
	})
	if err != nil {
		return nil, err
	}

	if len(jobs) == 0 {
		if err := o.store.MarkCompleted(ctx, batch.ID); err != nil {
			return nil, err
		}
		slog.Info("batch resolved to no jobs, completed immediately", "batch_id", batch.ID, "scope", scope)
		return o.store.GetBatch(ctx, batch.ID)
	}

	for i := range jobs {
		jobs[i].BatchID = batch.ID
	}

	if err := o.exec.Submit(ctx, batch.ID, jobs); err != nil {
		if markErr := o.store.MarkFailed(ctx, batch.ID); markErr != nil {
			slog.Error("failed to mark batch failed after submit error", "batch_id", batch.ID, "error", markErr)
		}
		return nil, fmt.Errorf("submit batch %s: %w", batch.ID, err)
	}

	if err := o.store.MarkProcessing(ctx, batch.ID); err != nil {
		return nil, err
	}

	slog.Info("batch submitted", "batch_id", batch.ID, "scope", scope, "total_jobs", len(jobs))

	// Refresh so the caller sees at least the processing transition.
	return o.store.GetBatch(ctx, batch.ID)
}
