package valueobjects

import (
	"math"
	"testing"

	"github.com/NomadCrew/neoevents/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeoPoint(t *testing.T) {
	tests := []struct {
		name        string
		latitude    float64
		longitude   float64
		shouldError bool
	}{
		{name: "valid coordinates", latitude: 43.263, longitude: -2.935},
		{name: "invalid latitude - too high", latitude: 91.0, shouldError: true},
		{name: "invalid latitude - too low", latitude: -91.0, shouldError: true},
		{name: "invalid longitude - too high", longitude: 181.0, shouldError: true},
		{name: "invalid longitude - too low", longitude: -181.0, shouldError: true},
		{name: "not a number", latitude: math.NaN(), shouldError: true},
		{name: "infinite", longitude: math.Inf(1), shouldError: true},
		{name: "edge case - max valid values", latitude: 90.0, longitude: 180.0},
		{name: "edge case - min valid values", latitude: -90.0, longitude: -180.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			point, err := NewGeoPoint(tt.latitude, tt.longitude)
			if tt.shouldError {
				assert.Error(t, err)
				assert.Nil(t, point)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.latitude, point.Latitude())
			assert.Equal(t, tt.longitude, point.Longitude())
		})
	}
}

func TestValidateFinite(t *testing.T) {
	assert.NoError(t, ValidateFinite(95, 200), "out of range is still numeric")
	assert.NoError(t, ValidateFinite(-43.263, -2.935))
	assert.Error(t, ValidateFinite(math.NaN(), 0))
	assert.Error(t, ValidateFinite(0, math.Inf(-1)))
}

func TestGeoPointDistanceKm(t *testing.T) {
	tests := []struct {
		name       string
		point1     GeoPoint
		point2     GeoPoint
		expectKm   float64
		expectDiff float64
	}{
		{
			name:       "Bilbao to Madrid",
			point1:     GeoPoint{43.263, -2.935},
			point2:     GeoPoint{40.4168, -3.7038},
			expectKm:   323.0,
			expectDiff: 3.0,
		},
		{
			name:       "Same point",
			point1:     GeoPoint{0.0, 0.0},
			point2:     GeoPoint{0.0, 0.0},
			expectKm:   0.0,
			expectDiff: 0.0001,
		},
		{
			name:       "Antipodes",
			point1:     GeoPoint{0.0, 0.0},
			point2:     GeoPoint{0.0, 180.0},
			expectKm:   20015.0,
			expectDiff: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			distance := tt.point1.DistanceKm(tt.point2)
			assert.InDelta(t, tt.expectKm, distance, tt.expectDiff)
			assert.InDelta(t, distance, tt.point2.DistanceKm(tt.point1), 0.0001)
		})
	}
}

func TestGeoPointIsWithinRadius(t *testing.T) {
	bilbao := GeoPoint{43.263, -2.935}
	getxo := GeoPoint{43.356, -3.011}

	assert.True(t, bilbao.IsWithinRadius(getxo, 50))
	assert.False(t, bilbao.IsWithinRadius(getxo, 5))
	assert.True(t, bilbao.IsWithinRadius(bilbao, 0))
	assert.False(t, bilbao.IsWithinRadius(getxo, -1))
}

func TestGeoPointString(t *testing.T) {
	assert.Equal(t, "43.263,-2.935", GeoPoint{43.263, -2.935}.String())
	assert.Equal(t, "0,0", GeoPoint{}.String())
}

func TestFromCoordinates(t *testing.T) {
	c := types.Coordinates{Lat: 1.5, Lng: -2.25}
	assert.Equal(t, c, FromCoordinates(c).ToCoordinates())
}
