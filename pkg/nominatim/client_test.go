package nominatim

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NomadCrew/neoevents/logger"
	"github.com/NomadCrew/neoevents/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.IsTest = true
}

func TestGeocode_Found(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "San Sebastián", r.URL.Query().Get("q"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "neoevents-test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`[{"lat":"43.3224219","lon":"-1.9838889","display_name":"Donostia"}]`))
	}))
	defer server.Close()

	c := NewClient(WithBaseURL(server.URL), WithUserAgent("neoevents-test"))
	coords, found, err := c.Geocode(context.Background(), "San Sebastián")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, types.Coordinates{Lat: 43.3224219, Lng: -1.9838889}, coords)
}

func TestGeocode_NoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	_, found, err := NewClient(WithBaseURL(server.URL)).Geocode(context.Background(), "zzzz")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGeocode_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: ``},
		{name: "bad json", status: http.StatusOK, body: `{"lat":`},
		{name: "bad latitude", status: http.StatusOK, body: `[{"lat":"x","lon":"1"}]`},
		{name: "bad longitude", status: http.StatusOK, body: `[{"lat":"1","lon":""}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, found, err := NewClient(WithBaseURL(server.URL)).Geocode(context.Background(), "q")
			assert.Error(t, err)
			assert.False(t, found)
		})
	}
}
