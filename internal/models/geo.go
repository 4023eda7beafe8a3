package models

import (
	"time"

	"github.com/google/uuid"
)

type Country struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Code      string    `json:"code" db:"code"` // ISO 3166-1 alpha-2
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type State struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CountryID uuid.UUID `json:"country_id" db:"country_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type City struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	StateID   uuid.UUID  `json:"state_id" db:"state_id"`
	Name      string     `json:"name" db:"name"`
	LlmCallID *uuid.UUID `json:"llm_call_id,omitempty" db:"llm_call_id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

type Venue struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CityID    uuid.UUID  `json:"city_id" db:"city_id"`
	Name      string     `json:"name" db:"name"`
	LlmCallID *uuid.UUID `json:"llm_call_id,omitempty" db:"llm_call_id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

type Address struct {
	ID         uuid.UUID `json:"id" db:"id"`
	CityID     uuid.UUID `json:"city_id" db:"city_id"`
	Line1      string    `json:"line1" db:"line1"`
	PostalCode string    `json:"postal_code,omitempty" db:"postal_code"`
	PlaceRef   string    `json:"place_ref,omitempty" db:"place_ref"` // external places API identifier
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// CityDetail is a city joined with its state/country chain, as needed by
// generator template arguments and domestic/international selection.
type CityDetail struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	StateName   string    `json:"state_name"`
	CountryID   uuid.UUID `json:"country_id"`
	CountryName string    `json:"country_name"`
}
