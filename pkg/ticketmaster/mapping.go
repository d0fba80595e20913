package ticketmaster

import (
	"math"
	"strconv"

	"github.com/NomadCrew/neoevents/types"
)

const (
	DefaultDescription = "Event"
	DefaultCategory    = "General"
)

// SearchResponse is the subset of the Discovery API events payload we read.
type SearchResponse struct {
	Embedded *struct {
		Events []RawEvent `json:"events"`
	} `json:"_embedded"`
}

type RawEvent struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Dates           Dates            `json:"dates"`
	Classifications []Classification `json:"classifications"`
	Embedded        *struct {
		Venues []Venue `json:"venues"`
	} `json:"_embedded"`
}

type Dates struct {
	Start struct {
		LocalDate string `json:"localDate"`
	} `json:"start"`
}

type Classification struct {
	Segment *NamedRef `json:"segment"`
	Genre   *NamedRef `json:"genre"`
}

type NamedRef struct {
	Name string `json:"name"`
}

type Venue struct {
	Location *struct {
		Latitude  string `json:"latitude"`
		Longitude string `json:"longitude"`
	} `json:"location"`
}

// MapEvents converts raw API events, preserving order.
func MapEvents(raw []RawEvent) []types.Event {
	events := make([]types.Event, 0, len(raw))
	for _, r := range raw {
		events = append(events, MapEvent(r))
	}
	return events
}

// MapEvent applies the field mapping: the first classification supplies the
// description (segment) and category (genre); the first venue supplies the
// position. Missing or unparseable values fall back to defaults.
func MapEvent(r RawEvent) types.Event {
	e := types.Event{
		ID:          r.ID,
		Title:       r.Name,
		Description: DefaultDescription,
		Date:        r.Dates.Start.LocalDate,
		Category:    DefaultCategory,
	}

	if len(r.Classifications) > 0 {
		cl := r.Classifications[0]
		if cl.Segment != nil && cl.Segment.Name != "" {
			e.Description = cl.Segment.Name
		}
		if cl.Genre != nil && cl.Genre.Name != "" {
			e.Category = cl.Genre.Name
		}
	}

	if r.Embedded != nil && len(r.Embedded.Venues) > 0 && r.Embedded.Venues[0].Location != nil {
		loc := r.Embedded.Venues[0].Location
		e.Lat = parseCoordinate(loc.Latitude)
		e.Lng = parseCoordinate(loc.Longitude)
	}

	return e
}

func parseCoordinate(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
