// Package valueobjects holds small immutable domain values.
package valueobjects

import (
	"fmt"
	"math"

	"github.com/NomadCrew/neoevents/errors"
	"github.com/NomadCrew/neoevents/types"
)

const earthRadiusKm = 6371.0

// GeoPoint represents a geographic point with latitude and longitude
type GeoPoint struct {
	latitude  float64
	longitude float64
}

// NewGeoPoint creates a new GeoPoint with validation
func NewGeoPoint(lat, lng float64) (*GeoPoint, error) {
	if err := validateCoordinates(lat, lng); err != nil {
		return nil, err
	}

	return &GeoPoint{
		latitude:  lat,
		longitude: lng,
	}, nil
}

// FromCoordinates converts coordinates without range validation. Event venues
// with a missing location map to (0, 0) and still need a distance.
func FromCoordinates(c types.Coordinates) GeoPoint {
	return GeoPoint{latitude: c.Lat, longitude: c.Lng}
}

func (g GeoPoint) Latitude() float64 {
	return g.latitude
}

func (g GeoPoint) Longitude() float64 {
	return g.longitude
}

// DistanceKm calculates the great-circle distance to another point in
// kilometres using the Haversine formula.
func (g GeoPoint) DistanceKm(other GeoPoint) float64 {
	lat1 := degreesToRadians(g.latitude)
	lat2 := degreesToRadians(other.latitude)
	dlat := lat2 - lat1
	dlng := degreesToRadians(other.longitude - g.longitude)

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dlng/2)*math.Sin(dlng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// IsWithinRadius checks if another point is within radiusKm.
func (g GeoPoint) IsWithinRadius(other GeoPoint, radiusKm float64) bool {
	if radiusKm < 0 {
		return false
	}
	return g.DistanceKm(other) <= radiusKm
}

func (g GeoPoint) String() string {
	return g.ToCoordinates().String()
}

func (g GeoPoint) ToCoordinates() types.Coordinates {
	return types.Coordinates{
		Lat: g.latitude,
		Lng: g.longitude,
	}
}

// ValidateFinite accepts any pair of finite numbers. Client position fixes
// are taken as given, without range checks.
func ValidateFinite(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return errors.ValidationFailed("invalid coordinates", "coordinates must be finite numbers")
	}
	return nil
}

func validateCoordinates(lat, lng float64) error {
	if err := ValidateFinite(lat, lng); err != nil {
		return err
	}

	if lat < -90 || lat > 90 {
		return errors.ValidationFailed(
			"invalid latitude",
			fmt.Sprintf("latitude %f is outside valid range [-90, 90]", lat),
		)
	}

	if lng < -180 || lng > 180 {
		return errors.ValidationFailed(
			"invalid longitude",
			fmt.Sprintf("longitude %f is outside valid range [-180, 180]", lng),
		)
	}

	return nil
}

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
