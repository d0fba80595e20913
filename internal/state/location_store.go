// Package state holds the discovery state containers: the user location and
// the fetched events with selection and favorites.
package state

import (
	"context"
	"strings"

	apperrors "github.com/NomadCrew/neoevents/errors"
	"github.com/NomadCrew/neoevents/internal/observable"
	"github.com/NomadCrew/neoevents/logger"
	"github.com/NomadCrew/neoevents/types"
	"go.uber.org/zap"
)

const geolocationAlert = "We could not get your location. Check the location permission or search for a city."

// LocationStore holds the optional user coordinates.
type LocationStore struct {
	coords   *observable.Value[*types.Coordinates]
	device   DevicePositioner
	geocoder Geocoder
	alerter  Alerter
	log      *zap.SugaredLogger
}

func NewLocationStore(device DevicePositioner, geocoder Geocoder, alerter Alerter) *LocationStore {
	if device == nil {
		device = UnavailablePositioner{}
	}
	return &LocationStore{
		coords:   observable.New[*types.Coordinates](nil),
		device:   device,
		geocoder: geocoder,
		alerter:  alerter,
		log:      logger.GetLogger().Named("location-store"),
	}
}

// AcquireDeviceLocation asks the device positioner for a fix and stores it.
// On failure the user is alerted, the coordinates are left unchanged and a
// GEOLOCATION_ERROR is returned.
func (s *LocationStore) AcquireDeviceLocation(ctx context.Context) (types.Coordinates, error) {
	c, err := s.device.Locate(ctx)
	if err != nil {
		s.log.Warnw("Device geolocation failed", "error", err)
		if s.alerter != nil {
			s.alerter.Alert(ctx, geolocationAlert)
		}
		return types.Coordinates{}, apperrors.LocationUnavailable(err)
	}
	s.Set(c)
	return c, nil
}

// SearchByName geocodes query. It never mutates state; misses and lookup
// failures both report found=false.
func (s *LocationStore) SearchByName(ctx context.Context, query string) (types.Coordinates, bool) {
	query = strings.TrimSpace(query)
	if query == "" || s.geocoder == nil {
		return types.Coordinates{}, false
	}

	c, found, err := s.geocoder.Geocode(ctx, query)
	if err != nil {
		s.log.Warnw("Place search failed", "query", query, "error", err)
		return types.Coordinates{}, false
	}
	if !found {
		s.log.Debugw("Place not found", "query", query)
		return types.Coordinates{}, false
	}
	return c, true
}

// Set stores c and notifies subscribers, even when c equals the current value.
func (s *LocationStore) Set(c types.Coordinates) {
	s.coords.Set(&c)
}

// Current returns the coordinates, ok=false until first acquired.
func (s *LocationStore) Current() (types.Coordinates, bool) {
	c := s.coords.Get()
	if c == nil {
		return types.Coordinates{}, false
	}
	return *c, true
}

// Subscribe calls fn after every Set.
func (s *LocationStore) Subscribe(fn func(types.Coordinates)) (unsubscribe func()) {
	return s.coords.Subscribe(func(c *types.Coordinates) {
		if c != nil {
			fn(*c)
		}
	})
}
