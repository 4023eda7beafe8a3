package regen

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tripdesk/backend/internal/models"
)

// fakeStore is an in-memory Store mirroring the forward-only guards the SQL
// store enforces.
type fakeStore struct {
	mu      sync.Mutex
	batches map[uuid.UUID]*models.RegenerationBatch
}

func newFakeStore() *fakeStore {
	return &fakeStore{batches: make(map[uuid.UUID]*models.RegenerationBatch)}
}

func (s *fakeStore) CreateBatch(_ context.Context, p CreateBatchParams) (*models.RegenerationBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := &models.RegenerationBatch{
		ID:            uuid.New(),
		ProjectID:     p.ProjectID,
		Scope:         p.Scope,
		GeneratorType: p.GeneratorType,
		TotalJobs:     p.TotalJobs,
		Status:        models.BatchPending,
		CreatedAt:     time.Now(),
	}
	s.batches[b.ID] = b
	return copyBatch(b), nil
}

func (s *fakeStore) GetBatch(_ context.Context, id uuid.UUID) (*models.RegenerationBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.batches[id]
	if !ok {
		return nil, fmt.Errorf("%w: batch %s", models.ErrNotFound, id)
	}
	return copyBatch(b), nil
}

func (s *fakeStore) MarkProcessing(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.batches[id]
	if ok && b.Status == models.BatchPending {
		now := time.Now()
		b.Status = models.BatchProcessing
		b.StartedAt = &now
	}
	return nil
}

func (s *fakeStore) MarkCompleted(_ context.Context, id uuid.UUID) error {
	return s.finish(id, models.BatchCompleted)
}

func (s *fakeStore) MarkFailed(_ context.Context, id uuid.UUID) error {
	return s.finish(id, models.BatchFailed)
}

func (s *fakeStore) finish(id uuid.UUID, status models.BatchStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.batches[id]
	if ok && b.Status.CanTransitionTo(status) {
		now := time.Now()
		b.Status = status
		b.CompletedAt = &now
	}
	return nil
}

func (s *fakeStore) IncrementCompleted(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.batches[id]; ok {
		b.CompletedJobs++
	}
	return nil
}

func (s *fakeStore) IncrementFailed(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.batches[id]; ok {
		b.FailedJobs++
	}
	return nil
}

func (s *fakeStore) ActiveBatches(_ context.Context, projectID uuid.UUID) ([]models.RegenerationBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.RegenerationBatch
	for _, b := range s.batches {
		if b.ProjectID == projectID && b.IsActive() {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *fakeStore) RecentlyCompleted(_ context.Context, projectID uuid.UUID, window time.Duration) ([]models.RegenerationBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.RegenerationBatch
	for _, b := range s.batches {
		if b.ProjectID == projectID && b.Status.Terminal() &&
			b.CompletedAt != nil && time.Since(*b.CompletedAt) < window {
			out = append(out, *b)
		}
	}
	return out, nil
}

func copyBatch(b *models.RegenerationBatch) *models.RegenerationBatch {
	c := *b
	return &c
}

// fakeItinerary serves a fixed project layout.
type fakeItinerary struct {
	days       []models.Day
	travels    []models.TravelDetail
	activities []models.ActivityDetail
}

func (f *fakeItinerary) Day(_ context.Context, dayID uuid.UUID) (*models.Day, error) {
	for i := range f.days {
		if f.days[i].ID == dayID {
			return &f.days[i], nil
		}
	}
	return nil, fmt.Errorf("%w: day %s", models.ErrNotFound, dayID)
}

func (f *fakeItinerary) DaysForProject(_ context.Context, _ uuid.UUID) ([]models.Day, error) {
	return f.days, nil
}

func (f *fakeItinerary) TravelForDay(_ context.Context, dayID uuid.UUID) (*models.TravelDetail, error) {
	for i := range f.travels {
		if f.travels[i].Travel.DayID == dayID {
			return &f.travels[i], nil
		}
	}
	return nil, nil
}

func (f *fakeItinerary) ActivitiesForDay(_ context.Context, dayID uuid.UUID) ([]models.ActivityDetail, error) {
	var out []models.ActivityDetail
	for _, a := range f.activities {
		if a.Activity.DayID == dayID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeItinerary) TravelsForProject(_ context.Context, _ uuid.UUID) ([]models.TravelDetail, error) {
	return f.travels, nil
}

func (f *fakeItinerary) ActivitiesByType(_ context.Context, _ uuid.UUID, typ models.ActivityType) ([]models.ActivityDetail, error) {
	var out []models.ActivityDetail
	for _, a := range f.activities {
		if a.Activity.Type == typ {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeItinerary) Travel(_ context.Context, travelID uuid.UUID) (*models.TravelDetail, error) {
	for i := range f.travels {
		if f.travels[i].Travel.ID == travelID {
			return &f.travels[i], nil
		}
	}
	return nil, fmt.Errorf("%w: travel %s", models.ErrNotFound, travelID)
}

func (f *fakeItinerary) Activity(_ context.Context, activityID uuid.UUID) (*models.ActivityDetail, error) {
	for i := range f.activities {
		if f.activities[i].Activity.ID == activityID {
			return &f.activities[i], nil
		}
	}
	return nil, fmt.Errorf("%w: activity %s", models.ErrNotFound, activityID)
}

// fakeExecutor records submissions.
type fakeExecutor struct {
	submitted [][]Job
	err       error
}

func (f *fakeExecutor) Submit(_ context.Context, batchID uuid.UUID, jobs []Job) error {
	if f.err != nil {
		return f.err
	}
	f.submitted = append(f.submitted, jobs)
	return nil
}

// fakeCoordinator is an in-memory counter/flag store.
type fakeCoordinator struct {
	mu     sync.Mutex
	values map[string]int64
}

func newFakeCoordinator() *fakeCoordinator {
	return &fakeCoordinator{values: make(map[string]int64)}
}

func (c *fakeCoordinator) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch v := value.(type) {
	case int:
		c.values[key] = int64(v)
	case int64:
		c.values[key] = v
	default:
		c.values[key] = 1
	}
	return nil
}

func (c *fakeCoordinator) SetNX(_ context.Context, key string, _ interface{}, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.values[key]; ok {
		return false, nil
	}
	c.values[key] = 1
	return true, nil
}

func (c *fakeCoordinator) Decrement(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key]--
	return c.values[key], nil
}

func (c *fakeCoordinator) Exists(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.values[key]
	return ok, nil
}

func (c *fakeCoordinator) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.values, k)
	}
	return nil
}

// Layout helpers shared across tests.

func dayOn(date time.Time, position int) models.Day {
	return models.Day{ID: uuid.New(), ProjectVersionID: uuid.New(), Date: date, Position: position}
}

func travelOn(day models.Day, startCountry, endCountry uuid.UUID) models.TravelDetail {
	return models.TravelDetail{
		Travel: models.DayTravel{ID: uuid.New(), DayID: day.ID, StartCityID: uuid.New(), EndCityID: uuid.New()},
		Day:    day,
		StartCity: models.CityDetail{
			ID: uuid.New(), Name: "Start", StateName: "State", CountryID: startCountry, CountryName: "A",
		},
		EndCity: models.CityDetail{
			ID: uuid.New(), Name: "End", StateName: "State", CountryID: endCountry, CountryName: "B",
		},
	}
}

func activityOn(day models.Day, typ models.ActivityType) models.ActivityDetail {
	cityID := uuid.New()
	return models.ActivityDetail{
		Activity: models.DayActivity{ID: uuid.New(), DayID: day.ID, Type: typ, CityID: &cityID},
		Day:      day,
		City: &models.CityDetail{
			ID: cityID, Name: "City", StateName: "State", CountryID: uuid.New(), CountryName: "A",
		},
	}
}
