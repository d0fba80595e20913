package notification

// EventType represents the type of notification event
type EventType string

const (
	EventTypeFavoriteSaved EventType = "FAVORITE_SAVED"
	EventTypeSystemAlert   EventType = "SYSTEM_ALERT"
)

// Priority represents the notification priority level
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// Favorite-saved presentation, matching the installed web app's assets.
const (
	FavoriteSavedTitle = "⭐ Saved to NeoEvents"
	FavoriteSavedIcon  = "assets/icons/icon-192x192.png"
	FavoriteSavedBadge = "assets/icons/icon-72x72.png"
)

// Request represents a notification request to the facade API
type Request struct {
	UserID         string                 `json:"userId"`
	EventType      EventType              `json:"eventType"`
	Priority       Priority               `json:"priority,omitempty"`
	NotificationID string                 `json:"notificationId,omitempty"`
	Data           map[string]interface{} `json:"data"`
}

// Response represents the response from the notification facade API
type Response struct {
	NotificationID string   `json:"notificationId"`
	MessageID      string   `json:"messageId"`
	Status         string   `json:"status"`
	ChannelsUsed   []string `json:"channelsUsed"`
	Error          string   `json:"error,omitempty"`
}

// FavoriteSavedData is the payload of a "favorite saved" notification.
type FavoriteSavedData struct {
	EventID string `json:"eventId"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	Icon    string `json:"icon"`
	Badge   string `json:"badge"`
	Date    string `json:"date,omitempty"`
}

// NewFavoriteSavedData builds the payload for an event title.
func NewFavoriteSavedData(eventID, eventTitle, date string) FavoriteSavedData {
	return FavoriteSavedData{
		EventID: eventID,
		Title:   FavoriteSavedTitle,
		Body:    "Don't miss: " + eventTitle,
		Icon:    FavoriteSavedIcon,
		Badge:   FavoriteSavedBadge,
		Date:    date,
	}
}
