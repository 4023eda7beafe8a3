// Package geo manages the country/state/city/venue/address reference data.
// Everything is get-or-create keyed on natural uniqueness; rows are fed from
// the external places API and never deleted by this service.
package geo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tripdesk/backend/internal/models"
)

type Service struct {
	db     *pgxpool.Pool
	places PlacesClient
}

func NewService(db *pgxpool.Pool, places PlacesClient) *Service {
	return &Service{db: db, places: places}
}

func (s *Service) GetOrCreateCountry(ctx context.Context, name, code string) (*models.Country, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: country name required", models.ErrValidation)
	}
	code = strings.ToUpper(strings.TrimSpace(code))

	var c models.Country
	err := s.db.QueryRow(ctx,
		`INSERT INTO countries (name, code) VALUES ($1, $2)
		 ON CONFLICT (code) DO UPDATE SET name = countries.name
		 RETURNING id, name, code, created_at`,
		name, code,
	).Scan(&c.ID, &c.Name, &c.Code, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get or create country: %w", err)
	}
	return &c, nil
}

func (s *Service) GetOrCreateState(ctx context.Context, countryID uuid.UUID, name string) (*models.State, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: state name required", models.ErrValidation)
	}

	var st models.State
	err := s.db.QueryRow(ctx,
		`INSERT INTO states (country_id, name) VALUES ($1, $2)
		 ON CONFLICT (country_id, name) DO UPDATE SET name = states.name
		 RETURNING id, country_id, name, created_at`,
		countryID, name,
	).Scan(&st.ID, &st.CountryID, &st.Name, &st.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get or create state: %w", err)
	}
	return &st, nil
}

func (s *Service) GetOrCreateCity(ctx context.Context, stateID uuid.UUID, name string) (*models.City, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: city name required", models.ErrValidation)
	}

	var c models.City
	err := s.db.QueryRow(ctx,
		`INSERT INTO cities (state_id, name) VALUES ($1, $2)
		 ON CONFLICT (state_id, name) DO UPDATE SET name = cities.name
		 RETURNING id, state_id, name, llm_call_id, created_at`,
		stateID, name,
	).Scan(&c.ID, &c.StateID, &c.Name, &c.LlmCallID, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get or create city: %w", err)
	}
	return &c, nil
}

func (s *Service) GetOrCreateVenue(ctx context.Context, cityID uuid.UUID, name string) (*models.Venue, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: venue name required", models.ErrValidation)
	}

	var v models.Venue
	err := s.db.QueryRow(ctx,
		`INSERT INTO venues (city_id, name) VALUES ($1, $2)
		 ON CONFLICT (city_id, name) DO UPDATE SET name = venues.name
		 RETURNING id, city_id, name, llm_call_id, created_at`,
		cityID, name,
	).Scan(&v.ID, &v.CityID, &v.Name, &v.LlmCallID, &v.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get or create venue: %w", err)
	}
	return &v, nil
}

// ImportPlace resolves one places-API result into the country/state/city
// chain and records the address. The whole chain is get-or-create.
func (s *Service) ImportPlace(ctx context.Context, place PlaceResult) (*models.Address, error) {
	country, err := s.GetOrCreateCountry(ctx, place.CountryName, place.CountryCode)
	if err != nil {
		return nil, err
	}
	state, err := s.GetOrCreateState(ctx, country.ID, place.StateName)
	if err != nil {
		return nil, err
	}
	city, err := s.GetOrCreateCity(ctx, state.ID, place.CityName)
	if err != nil {
		return nil, err
	}

	var a models.Address
	err = s.db.QueryRow(ctx,
		`INSERT INTO addresses (city_id, line1, postal_code, place_ref) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (place_ref) DO UPDATE SET line1 = EXCLUDED.line1, postal_code = EXCLUDED.postal_code
		 RETURNING id, city_id, line1, postal_code, place_ref, created_at`,
		city.ID, place.Line1, place.PostalCode, place.PlaceRef,
	).Scan(&a.ID, &a.CityID, &a.Line1, &a.PostalCode, &a.PlaceRef, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get or create address: %w", err)
	}
	return &a, nil
}

// Autocomplete proxies the external places search.
func (s *Service) Autocomplete(ctx context.Context, query string) ([]PlaceResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query required", models.ErrValidation)
	}
	return s.places.Search(ctx, query)
}

func (s *Service) CityByID(ctx context.Context, id uuid.UUID) (*models.City, error) {
	var c models.City
	err := s.db.QueryRow(ctx,
		"SELECT id, state_id, name, llm_call_id, created_at FROM cities WHERE id = $1", id,
	).Scan(&c.ID, &c.StateID, &c.Name, &c.LlmCallID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: city %s", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get city: %w", err)
	}
	return &c, nil
}
