// Package ticketmaster queries the Ticketmaster Discovery API v2 for events
// near a coordinate pair.
package ticketmaster

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/NomadCrew/neoevents/logger"
	"github.com/NomadCrew/neoevents/types"
)

const (
	DefaultBaseURL  = "https://app.ticketmaster.com/discovery/v2"
	DefaultRadiusKm = 50
)

// ClientInterface defines the event search operation used by the event store.
type ClientInterface interface {
	SearchEvents(ctx context.Context, lat, lng float64) ([]types.Event, error)
}

type Client struct {
	apiKey     string
	baseURL    string
	radiusKm   int
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithBaseURL points the client at another Discovery API root.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithRadiusKm overrides the search radius.
func WithRadiusKm(km int) ClientOption {
	return func(c *Client) {
		if km > 0 {
			c.radiusKm = km
		}
	}
}

func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:   apiKey,
		baseURL:  DefaultBaseURL,
		radiusKm: DefaultRadiusKm,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchURL builds the events.json request for the given position.
func (c *Client) SearchURL(lat, lng float64) string {
	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("latlong", fmt.Sprintf("%.4f,%.4f", lat, lng))
	params.Set("radius", strconv.Itoa(c.radiusKm))
	params.Set("unit", "km")
	params.Set("sort", "date,asc")
	return fmt.Sprintf("%s/events.json?%s", c.baseURL, params.Encode())
}

// SearchEvents returns the events within the configured radius of (lat, lng)
// sorted by date ascending. A response without an embedded events list is an
// empty result, not an error.
func (c *Client) SearchEvents(ctx context.Context, lat, lng float64) ([]types.Event, error) {
	log := logger.GetLogger()
	log.Debugw("Starting Ticketmaster event search", "lat", lat, "lng", lng, "radiusKm", c.radiusKm)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.SearchURL(lat, lng), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	log.Debugw("Ticketmaster HTTP response received", "statusCode", resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ticketmaster API returned status: %d", resp.StatusCode)
	}

	var searchResp SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	var raw []RawEvent
	if searchResp.Embedded != nil {
		raw = searchResp.Embedded.Events
	}
	events := MapEvents(raw)
	log.Debugw("Ticketmaster response decoded", "eventsReturned", len(events))
	return events, nil
}
