package types

import "time"

// Snapshot is a consistent view of the discovery state as consumed by the
// map: the user marker, the visible markers and the focused event.
type Snapshot struct {
	User      *Coordinates `json:"user,omitempty"`
	Filter    FilterMode   `json:"filter"`
	Events    []EventView  `json:"events"`
	Selected  *Event       `json:"selected,omitempty"`
	Favorites []string     `json:"favorites"`
	Total     int          `json:"total"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// StreamMessageType tags messages pushed over the map stream.
type StreamMessageType string

const (
	StreamMessageSnapshot StreamMessageType = "snapshot"
	StreamMessageAlert    StreamMessageType = "alert"
)

// StreamMessage is one frame of the map WebSocket stream.
type StreamMessage struct {
	Type     StreamMessageType `json:"type"`
	Snapshot *Snapshot         `json:"snapshot,omitempty"`
	Alert    string            `json:"alert,omitempty"`
}

// DirectionsResponse carries an external navigation URL.
type DirectionsResponse struct {
	URL string `json:"url"`
}

// NotificationPermissionRequest grants or revokes the favorite-saved
// notification permission.
type NotificationPermissionRequest struct {
	Granted *bool `json:"granted" binding:"required"`
}

// SearchResponse reports the outcome of a place search. A miss leaves the
// snapshot unchanged.
type SearchResponse struct {
	Found    bool         `json:"found"`
	Location *Coordinates `json:"location,omitempty"`
	Snapshot Snapshot     `json:"snapshot"`
}

// EventsResponse lists the events visible under Filter.
type EventsResponse struct {
	Filter FilterMode  `json:"filter"`
	Events []EventView `json:"events"`
}

// FavoritesResponse lists the favorited event ids.
type FavoritesResponse struct {
	Favorites []string `json:"favorites"`
}

// ToggleFavoriteResponse is returned after a favorite was flipped.
type ToggleFavoriteResponse struct {
	ID        string   `json:"id"`
	Favorite  bool     `json:"favorite"`
	Favorites []string `json:"favorites"`
}

// NotificationPermissionResponse reports the notification channel state.
type NotificationPermissionResponse struct {
	Available bool `json:"available"`
	Granted   bool `json:"granted"`
}
