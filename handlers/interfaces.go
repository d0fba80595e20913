package handlers

import (
	"context"

	"github.com/NomadCrew/neoevents/types"
)

// DiscoveryServiceInterface is the part of the coordinator the discovery
// routes drive.
type DiscoveryServiceInterface interface {
	Snapshot() types.Snapshot
	Filter() types.FilterMode
	VisibleEventsFor(mode types.FilterMode) []types.EventView
	SetLocation(coords types.Coordinates) error
	ResetToDeviceLocation(ctx context.Context) (types.Coordinates, error)
	Search(ctx context.Context, place string) (types.Coordinates, bool)
	SetFilter(mode types.FilterMode)
	Refresh(ctx context.Context) error
	SelectEvent(id string) (types.Event, error)
	NavigateTo(id string) (url string, ok bool, err error)
	AwaitFetches(ctx context.Context) error
}

// FavoritesServiceInterface exposes the favorites set.
type FavoritesServiceInterface interface {
	Favorites() []string
	FavoriteEvents() []types.Event
	ToggleFavorite(ctx context.Context, id string) (added bool, err error)
}

// NotificationPermissionInterface exposes the notification permission flow.
type NotificationPermissionInterface interface {
	Available() bool
	Permitted() bool
	SetPermission(granted bool)
}

// HealthServiceInterface produces the health report.
type HealthServiceInterface interface {
	CheckHealth(ctx context.Context) types.HealthCheck
}
