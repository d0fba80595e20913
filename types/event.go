package types

// Event is a ticketed occurrence returned by the ticketing API. Events are
// immutable once fetched and identified by ID.
type Event struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	// Date is the local calendar date of the event start, formatted YYYY-MM-DD.
	Date     string `json:"date"`
	Category string `json:"category"`
}

// Coordinates returns the venue position of the event.
func (e Event) Coordinates() Coordinates {
	return Coordinates{Lat: e.Lat, Lng: e.Lng}
}

// FindEvent returns the event with the given id.
func FindEvent(events []Event, id string) (Event, bool) {
	for _, e := range events {
		if e.ID == id {
			return e, true
		}
	}
	return Event{}, false
}

// EventView is the representation of an event handed to the map frontend.
type EventView struct {
	Event
	Favorite   bool     `json:"favorite"`
	Color      string   `json:"color"`
	DistanceKm *float64 `json:"distanceKm,omitempty"`
}

const defaultCategoryColor = "#06b6d4"

var categoryColors = map[string]string{
	"Rock":  "#ef4444",
	"Pop":   "#ec4899",
	"Metal": "#4b5563",
	"Jazz":  "#8b5cf6",
}

// CategoryColor returns the marker color for a genre.
func CategoryColor(category string) string {
	if c, ok := categoryColors[category]; ok {
		return c
	}
	return defaultCategoryColor
}
