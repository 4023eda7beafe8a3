// Package generator maps travel segments and activities onto the prompt
// template that should narrate them. Selection is pure: no I/O, no side
// effects, a closed set of variants.
package generator

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/tripdesk/backend/internal/models"
)

// Task prompt slugs, one per variant.
const (
	SlugTravelDomestic      = "travel-domestic"
	SlugTravelInternational = "travel-international"
	SlugSightseeing         = "sightseeing"
	SlugEating              = "eating"
	SlugWrestling           = "wrestling"
)

// LabelTravel is the generator_type label used for travel batches; activity
// batches use the activity type itself.
const LabelTravel = "travel"

// SyncTarget names an entity that should receive the association to the
// resulting LLM call, in order.
type SyncTarget struct {
	Kind string // "travel", "activity", "city", "venue"
	ID   uuid.UUID
}

// Generator knows which task prompt applies to its subject, the template
// variables to render it with, and which entities get the call back-reference.
type Generator interface {
	Slug() string
	Label() string
	Args() map[string]string
	SyncTargets() []SyncTarget
}

type travelGenerator struct {
	slug   string
	detail models.TravelDetail
}

// ForTravel picks the domestic variant when both endpoints share a country,
// international otherwise.
func ForTravel(d models.TravelDetail) Generator {
	slug := SlugTravelInternational
	if d.StartCity.CountryID == d.EndCity.CountryID {
		slug = SlugTravelDomestic
	}
	return &travelGenerator{slug: slug, detail: d}
}

func (g *travelGenerator) Slug() string  { return g.slug }
func (g *travelGenerator) Label() string { return LabelTravel }

func (g *travelGenerator) Args() map[string]string {
	d := g.detail
	return map[string]string{
		"date":          d.Day.Date.Format("2006-01-02"),
		"start_city":    d.StartCity.Name,
		"start_state":   d.StartCity.StateName,
		"start_country": d.StartCity.CountryName,
		"end_city":      d.EndCity.Name,
		"end_state":     d.EndCity.StateName,
		"end_country":   d.EndCity.CountryName,
		"overnight":     strconv.FormatBool(d.Travel.Overnight),
	}
}

func (g *travelGenerator) SyncTargets() []SyncTarget {
	return []SyncTarget{
		{Kind: "travel", ID: g.detail.Travel.ID},
	}
}

type activityGenerator struct {
	slug   string
	detail models.ActivityDetail
}

// ForActivity dispatches on the activity type. Unknown types return nil.
func ForActivity(d models.ActivityDetail) Generator {
	var slug string
	switch d.Activity.Type {
	case models.ActivitySightseeing:
		slug = SlugSightseeing
	case models.ActivityEating:
		slug = SlugEating
	case models.ActivityWrestling:
		slug = SlugWrestling
	default:
		return nil
	}
	return &activityGenerator{slug: slug, detail: d}
}

func (g *activityGenerator) Slug() string  { return g.slug }
func (g *activityGenerator) Label() string { return string(g.detail.Activity.Type) }

func (g *activityGenerator) Args() map[string]string {
	d := g.detail
	args := map[string]string{
		"date":          d.Day.Date.Format("2006-01-02"),
		"activity_type": string(d.Activity.Type),
	}
	if d.City != nil {
		args["city"] = d.City.Name
		args["state"] = d.City.StateName
		args["country"] = d.City.CountryName
	}
	if d.Venue != nil {
		args["venue"] = d.Venue.Name
	}
	return args
}

// SyncTargets lists the activity first, then the city it takes place in, then
// the venue. Order matters: downstream association writes follow it.
func (g *activityGenerator) SyncTargets() []SyncTarget {
	targets := []SyncTarget{
		{Kind: "activity", ID: g.detail.Activity.ID},
	}
	if g.detail.City != nil {
		targets = append(targets, SyncTarget{Kind: "city", ID: g.detail.City.ID})
	}
	if g.detail.Venue != nil {
		targets = append(targets, SyncTarget{Kind: "venue", ID: g.detail.Venue.ID})
	}
	return targets
}
