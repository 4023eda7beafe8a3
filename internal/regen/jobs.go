package regen

import (
	"context"

	"github.com/google/uuid"
	"github.com/tripdesk/backend/internal/models"
)

// Entity types a generation job can target.
const (
	EntityTravel   = "travel"
	EntityActivity = "activity"
)

// Job is one unit of generation work: which entity to narrate and which
// generator was selected for it. Jobs are resolved in full before the batch is
// submitted so total_jobs is fixed up front.
type Job struct {
	BatchID    uuid.UUID `json:"batch_id"`
	EntityType string    `json:"entity_type"`
	EntityID   uuid.UUID `json:"entity_id"`
	DayID      uuid.UUID `json:"day_id"`
	Generator  string    `json:"generator"` // selected task prompt slug
}

// ItineraryReader is the slice of itinerary reads scope resolution needs.
// Implemented by itinerary.Service; faked in tests.
type ItineraryReader interface {
	Day(ctx context.Context, dayID uuid.UUID) (*models.Day, error)
	DaysForProject(ctx context.Context, projectID uuid.UUID) ([]models.Day, error)
	TravelForDay(ctx context.Context, dayID uuid.UUID) (*models.TravelDetail, error)
	ActivitiesForDay(ctx context.Context, dayID uuid.UUID) ([]models.ActivityDetail, error)
	TravelsForProject(ctx context.Context, projectID uuid.UUID) ([]models.TravelDetail, error)
	ActivitiesByType(ctx context.Context, projectID uuid.UUID, activityType models.ActivityType) ([]models.ActivityDetail, error)
	Travel(ctx context.Context, travelID uuid.UUID) (*models.TravelDetail, error)
	Activity(ctx context.Context, activityID uuid.UUID) (*models.ActivityDetail, error)
}

// Executor is the boundary to the asynchronous execution facility. Submit is
// fire-and-forget: it returns once all jobs are handed off.
type Executor interface {
	Submit(ctx context.Context, batchID uuid.UUID, jobs []Job) error
}
