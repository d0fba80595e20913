// Package ipgeo estimates the host position from its public IP address using
// an ip-api.com compatible JSON endpoint.
package ipgeo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/NomadCrew/neoevents/logger"
	"github.com/NomadCrew/neoevents/types"
)

const DefaultURL = "http://ip-api.com/json"

// ErrLookupFailed is returned when the service answers but cannot place the IP.
var ErrLookupFailed = errors.New("ip geolocation lookup failed")

type Client struct {
	url        string
	httpClient *http.Client
}

type ClientOption func(*Client)

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(url string, opts ...ClientOption) *Client {
	if url == "" {
		url = DefaultURL
	}
	c := &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type lookupResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	City    string  `json:"city"`
}

// Locate returns the approximate position of the caller's public IP.
func (c *Client) Locate(ctx context.Context) (types.Coordinates, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return types.Coordinates{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return types.Coordinates{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.Coordinates{}, fmt.Errorf("ip geolocation returned status: %d", resp.StatusCode)
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return types.Coordinates{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if body.Status != "" && body.Status != "success" {
		return types.Coordinates{}, fmt.Errorf("%w: %s", ErrLookupFailed, body.Message)
	}

	logger.GetLogger().Debugw("IP geolocation resolved", "city", body.City)
	return types.Coordinates{Lat: body.Lat, Lng: body.Lon}, nil
}
