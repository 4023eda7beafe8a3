package models

import (
	"time"

	"github.com/google/uuid"
)

type ActivityType string

const (
	ActivitySightseeing ActivityType = "sightseeing"
	ActivityEating      ActivityType = "eating"
	ActivityWrestling   ActivityType = "wrestling"
)

func (t ActivityType) Valid() bool {
	switch t {
	case ActivitySightseeing, ActivityEating, ActivityWrestling:
		return true
	}
	return false
}

type Project struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	Name             string     `json:"name" db:"name"`
	CurrentVersionID *uuid.UUID `json:"current_version_id,omitempty" db:"current_version_id"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
}

type ProjectVersion struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProjectID uuid.UUID `json:"project_id" db:"project_id"`
	Version   int       `json:"version" db:"version"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Day struct {
	ID               uuid.UUID `json:"id" db:"id"`
	ProjectVersionID uuid.UUID `json:"project_version_id" db:"project_version_id"`
	Date             time.Time `json:"date" db:"date"`
	Position         int       `json:"position" db:"position"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// DayTravel is the at-most-one travel segment of a day.
type DayTravel struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	DayID       uuid.UUID  `json:"day_id" db:"day_id"`
	StartCityID uuid.UUID  `json:"start_city_id" db:"start_city_id"`
	EndCityID   uuid.UUID  `json:"end_city_id" db:"end_city_id"`
	Overnight   bool       `json:"overnight" db:"overnight"`
	LlmCallID   *uuid.UUID `json:"llm_call_id,omitempty" db:"llm_call_id"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

type DayActivity struct {
	ID        uuid.UUID    `json:"id" db:"id"`
	DayID     uuid.UUID    `json:"day_id" db:"day_id"`
	Type      ActivityType `json:"type" db:"type"`
	VenueID   *uuid.UUID   `json:"venue_id,omitempty" db:"venue_id"`
	CityID    *uuid.UUID   `json:"city_id,omitempty" db:"city_id"`
	LlmCallID *uuid.UUID   `json:"llm_call_id,omitempty" db:"llm_call_id"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
}

// TravelDetail joins a travel segment with the resolved start/end city chains
// and its owning day, so selection and prompt args need no further lookups.
type TravelDetail struct {
	Travel    DayTravel  `json:"travel"`
	Day       Day        `json:"day"`
	StartCity CityDetail `json:"start_city"`
	EndCity   CityDetail `json:"end_city"`
}

// ActivityDetail joins an activity with its optional city/venue and owning day.
type ActivityDetail struct {
	Activity DayActivity `json:"activity"`
	Day      Day         `json:"day"`
	City     *CityDetail `json:"city,omitempty"`
	Venue    *Venue      `json:"venue,omitempty"`
}
