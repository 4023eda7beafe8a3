// Package itinerary is the read side of project/day/travel/activity data used
// by regeneration scope resolution, plus the LLM-call association writes.
package itinerary

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tripdesk/backend/internal/generator"
	"github.com/tripdesk/backend/internal/models"
)

type Service struct {
	db *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

const dayCols = "id, project_version_id, date, position, created_at"
const travelCols = "id, day_id, start_city_id, end_city_id, overnight, llm_call_id, created_at"
const activityCols = "id, day_id, type, venue_id, city_id, llm_call_id, created_at"

func (s *Service) Day(ctx context.Context, dayID uuid.UUID) (*models.Day, error) {
	var d models.Day
	err := s.db.QueryRow(ctx, "SELECT "+dayCols+" FROM days WHERE id = $1", dayID).
		Scan(&d.ID, &d.ProjectVersionID, &d.Date, &d.Position, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: day %s", models.ErrNotFound, dayID)
		}
		return nil, fmt.Errorf("get day: %w", err)
	}
	return &d, nil
}

// DaysForProject returns the days of the project's current version in order.
func (s *Service) DaysForProject(ctx context.Context, projectID uuid.UUID) ([]models.Day, error) {
	rows, err := s.db.Query(ctx,
		`SELECT d.id, d.project_version_id, d.date, d.position, d.created_at
		 FROM days d
		 JOIN projects p ON p.current_version_id = d.project_version_id
		 WHERE p.id = $1
		 ORDER BY d.position`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list days: %w", err)
	}
	defer rows.Close()
	return scanDays(rows)
}

// TravelForDay returns the day's travel segment with resolved city chains, or
// nil when the day has none.
func (s *Service) TravelForDay(ctx context.Context, dayID uuid.UUID) (*models.TravelDetail, error) {
	var t models.DayTravel
	err := s.db.QueryRow(ctx, "SELECT "+travelCols+" FROM day_travels WHERE day_id = $1", dayID).
		Scan(&t.ID, &t.DayID, &t.StartCityID, &t.EndCityID, &t.Overnight, &t.LlmCallID, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get day travel: %w", err)
	}
	return s.travelDetail(ctx, t)
}

func (s *Service) Travel(ctx context.Context, travelID uuid.UUID) (*models.TravelDetail, error) {
	var t models.DayTravel
	err := s.db.QueryRow(ctx, "SELECT "+travelCols+" FROM day_travels WHERE id = $1", travelID).
		Scan(&t.ID, &t.DayID, &t.StartCityID, &t.EndCityID, &t.Overnight, &t.LlmCallID, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: travel %s", models.ErrNotFound, travelID)
		}
		return nil, fmt.Errorf("get travel: %w", err)
	}
	return s.travelDetail(ctx, t)
}

func (s *Service) ActivitiesForDay(ctx context.Context, dayID uuid.UUID) ([]models.ActivityDetail, error) {
	rows, err := s.db.Query(ctx,
		"SELECT "+activityCols+" FROM day_activities WHERE day_id = $1 ORDER BY created_at",
		dayID,
	)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()
	return s.activityDetails(ctx, rows)
}

func (s *Service) Activity(ctx context.Context, activityID uuid.UUID) (*models.ActivityDetail, error) {
	var a models.DayActivity
	err := s.db.QueryRow(ctx, "SELECT "+activityCols+" FROM day_activities WHERE id = $1", activityID).
		Scan(&a.ID, &a.DayID, &a.Type, &a.VenueID, &a.CityID, &a.LlmCallID, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: activity %s", models.ErrNotFound, activityID)
		}
		return nil, fmt.Errorf("get activity: %w", err)
	}
	return s.activityDetail(ctx, a)
}

// TravelsForProject returns every travel segment across the project's current
// version, with resolved city chains.
func (s *Service) TravelsForProject(ctx context.Context, projectID uuid.UUID) ([]models.TravelDetail, error) {
	rows, err := s.db.Query(ctx,
		`SELECT t.id, t.day_id, t.start_city_id, t.end_city_id, t.overnight, t.llm_call_id, t.created_at
		 FROM day_travels t
		 JOIN days d ON d.id = t.day_id
		 JOIN projects p ON p.current_version_id = d.project_version_id
		 WHERE p.id = $1
		 ORDER BY d.position`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list travels: %w", err)
	}
	defer rows.Close()

	var travels []models.DayTravel
	for rows.Next() {
		var t models.DayTravel
		if err := rows.Scan(&t.ID, &t.DayID, &t.StartCityID, &t.EndCityID, &t.Overnight, &t.LlmCallID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan travel: %w", err)
		}
		travels = append(travels, t)
	}

	details := make([]models.TravelDetail, 0, len(travels))
	for _, t := range travels {
		d, err := s.travelDetail(ctx, t)
		if err != nil {
			return nil, err
		}
		details = append(details, *d)
	}
	return details, nil
}

// ActivitiesByType returns every activity of one type across the project's
// current version.
func (s *Service) ActivitiesByType(ctx context.Context, projectID uuid.UUID, activityType models.ActivityType) ([]models.ActivityDetail, error) {
	rows, err := s.db.Query(ctx,
		`SELECT a.id, a.day_id, a.type, a.venue_id, a.city_id, a.llm_call_id, a.created_at
		 FROM day_activities a
		 JOIN days d ON d.id = a.day_id
		 JOIN projects p ON p.current_version_id = d.project_version_id
		 WHERE p.id = $1 AND a.type = $2
		 ORDER BY d.position, a.created_at`,
		projectID, activityType,
	)
	if err != nil {
		return nil, fmt.Errorf("list activities by type: %w", err)
	}
	defer rows.Close()
	return s.activityDetails(ctx, rows)
}

// AttachCall writes the llm_call_id back-reference onto each sync target, in
// the order the generator listed them.
func (s *Service) AttachCall(ctx context.Context, targets []generator.SyncTarget, callID uuid.UUID) error {
	for _, t := range targets {
		var table string
		switch t.Kind {
		case "travel":
			table = "day_travels"
		case "activity":
			table = "day_activities"
		case "city":
			table = "cities"
		case "venue":
			table = "venues"
		default:
			return fmt.Errorf("%w: unknown sync target kind %q", models.ErrValidation, t.Kind)
		}
		if _, err := s.db.Exec(ctx, "UPDATE "+table+" SET llm_call_id = $1 WHERE id = $2", callID, t.ID); err != nil {
			return fmt.Errorf("attach call to %s %s: %w", t.Kind, t.ID, err)
		}
	}
	return nil
}

func (s *Service) cityDetail(ctx context.Context, cityID uuid.UUID) (*models.CityDetail, error) {
	var c models.CityDetail
	err := s.db.QueryRow(ctx,
		`SELECT c.id, c.name, st.name, co.id, co.name
		 FROM cities c
		 JOIN states st ON st.id = c.state_id
		 JOIN countries co ON co.id = st.country_id
		 WHERE c.id = $1`,
		cityID,
	).Scan(&c.ID, &c.Name, &c.StateName, &c.CountryID, &c.CountryName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: city %s", models.ErrNotFound, cityID)
		}
		return nil, fmt.Errorf("get city detail: %w", err)
	}
	return &c, nil
}

func (s *Service) venue(ctx context.Context, venueID uuid.UUID) (*models.Venue, error) {
	var v models.Venue
	err := s.db.QueryRow(ctx,
		"SELECT id, city_id, name, llm_call_id, created_at FROM venues WHERE id = $1",
		venueID,
	).Scan(&v.ID, &v.CityID, &v.Name, &v.LlmCallID, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: venue %s", models.ErrNotFound, venueID)
		}
		return nil, fmt.Errorf("get venue: %w", err)
	}
	return &v, nil
}

func (s *Service) travelDetail(ctx context.Context, t models.DayTravel) (*models.TravelDetail, error) {
	day, err := s.Day(ctx, t.DayID)
	if err != nil {
		return nil, err
	}
	start, err := s.cityDetail(ctx, t.StartCityID)
	if err != nil {
		return nil, err
	}
	end, err := s.cityDetail(ctx, t.EndCityID)
	if err != nil {
		return nil, err
	}
	return &models.TravelDetail{Travel: t, Day: *day, StartCity: *start, EndCity: *end}, nil
}

func (s *Service) activityDetail(ctx context.Context, a models.DayActivity) (*models.ActivityDetail, error) {
	day, err := s.Day(ctx, a.DayID)
	if err != nil {
		return nil, err
	}
	detail := &models.ActivityDetail{Activity: a, Day: *day}
	if a.CityID != nil {
		city, err := s.cityDetail(ctx, *a.CityID)
		if err != nil {
			return nil, err
		}
		detail.City = city
	}
	if a.VenueID != nil {
		venue, err := s.venue(ctx, *a.VenueID)
		if err != nil {
			return nil, err
		}
		detail.Venue = venue
	}
	return detail, nil
}

func (s *Service) activityDetails(ctx context.Context, rows pgx.Rows) ([]models.ActivityDetail, error) {
	var activities []models.DayActivity
	for rows.Next() {
		var a models.DayActivity
		if err := rows.Scan(&a.ID, &a.DayID, &a.Type, &a.VenueID, &a.CityID, &a.LlmCallID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, a)
	}

	details := make([]models.ActivityDetail, 0, len(activities))
	for _, a := range activities {
		d, err := s.activityDetail(ctx, a)
		if err != nil {
			return nil, err
		}
		details = append(details, *d)
	}
	return details, nil
}

func scanDays(rows pgx.Rows) ([]models.Day, error) {
	var days []models.Day
	for rows.Next() {
		var d models.Day
		if err := rows.Scan(&d.ID, &d.ProjectVersionID, &d.Date, &d.Position, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan day: %w", err)
		}
		days = append(days, d)
	}
	return days, nil
}
