package state

import (
	"context"
	"errors"

	"github.com/NomadCrew/neoevents/types"
)

// ErrNoPositioner is returned when device location is requested but no
// provider is configured.
var ErrNoPositioner = errors.New("device geolocation is not available")

// DevicePositioner produces a single position fix.
type DevicePositioner interface {
	Locate(ctx context.Context) (types.Coordinates, error)
}

// Geocoder resolves a free-text place name. found is false on no match.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (coords types.Coordinates, found bool, err error)
}

// Alerter surfaces a user-visible alert.
type Alerter interface {
	Alert(ctx context.Context, message string)
}

// StaticPositioner always reports the same fix.
type StaticPositioner struct {
	Coords types.Coordinates
}

func (p StaticPositioner) Locate(context.Context) (types.Coordinates, error) {
	return p.Coords, nil
}

// UnavailablePositioner always fails, standing in for a platform without a
// geolocation capability.
type UnavailablePositioner struct{}

func (UnavailablePositioner) Locate(context.Context) (types.Coordinates, error) {
	return types.Coordinates{}, ErrNoPositioner
}
