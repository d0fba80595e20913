// Package nominatim resolves free-text place names to coordinates through the
// OpenStreetMap Nominatim search API.
package nominatim

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
	DefaultBaseURL   = "https://nominatim.openstreetmap.org"
	DefaultUserAgent = "NeoEvents/1.0"
)

type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

type ClientOption func(*Client)

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithUserAgent sets the identifying User-Agent required by Nominatim's usage policy.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type place struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode returns the coordinates of the best match for query. found is false
// when Nominatim has no match; err is set only for transport or decoding
// failures.
func (c *Client) Geocode(ctx context.Context, query string) (coords types.Coordinates, found bool, err error) {
	params := url.Values{}
	params.Add("format", "json")
	params.Add("q", query)
	params.Add("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode()), nil)
	if err != nil {
		return types.Coordinates{}, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return types.Coordinates{}, false, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.Coordinates{}, false, fmt.Errorf("nominatim api error: %s", resp.Status)
	}

	var places []place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return types.Coordinates{}, false, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(places) == 0 {
		logger.GetLogger().Debugw("No place found", "query", query)
		return types.Coordinates{}, false, nil
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return types.Coordinates{}, false, fmt.Errorf("invalid latitude: %s", places[0].Lat)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return types.Coordinates{}, false, fmt.Errorf("invalid longitude: %s", places[0].Lon)
	}

	return types.Coordinates{Lat: lat, Lng: lon}, true, nil
}
