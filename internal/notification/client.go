package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client represents a client for the notification facade API
type Client struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// NewClient creates a new notification client
func NewClient(apiURL, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiURL: apiURL,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Send sends a notification request to the facade API
func (c *Client) Send(ctx context.Context, req *Request) (*Response, error) {
	if err := c.validateRequest(req); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.apiURL
	if !strings.HasSuffix(url, "/notify") {
		url = strings.TrimRight(url, "/") + "/notify"
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var notifResp Response
	if err := json.NewDecoder(resp.Body).Decode(&notifResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if notifResp.Error != "" {
			return &notifResp, fmt.Errorf("notification failed with status %d: %s", resp.StatusCode, notifResp.Error)
		}
		return &notifResp, fmt.Errorf("notification failed with status %d", resp.StatusCode)
	}

	return &notifResp, nil
}

// SendFavoriteSaved sends a "favorite saved" notification.
func (c *Client) SendFavoriteSaved(ctx context.Context, userID, notificationID string, data FavoriteSavedData) (*Response, error) {
	req := &Request{
		UserID:         userID,
		EventType:      EventTypeFavoriteSaved,
		Priority:       PriorityLow,
		NotificationID: notificationID,
		Data: map[string]interface{}{
			"eventId": data.EventID,
			"title":   data.Title,
			"body":    data.Body,
			"icon":    data.Icon,
			"badge":   data.Badge,
			"date":    data.Date,
		},
	}

	return c.Send(ctx, req)
}

// validateRequest validates the notification request
func (c *Client) validateRequest(req *Request) error {
	if req.UserID == "" {
		return fmt.Errorf("userId is required")
	}

	if req.EventType == "" {
		return fmt.Errorf("eventType is required")
	}

	switch req.EventType {
	case EventTypeFavoriteSaved, EventTypeSystemAlert:
	default:
		return fmt.Errorf("invalid eventType: %s", req.EventType)
	}

	switch req.Priority {
	case "", PriorityHigh, PriorityMedium, PriorityLow:
	default:
		return fmt.Errorf("invalid priority: %s", req.Priority)
	}

	if req.Data == nil {
		req.Data = make(map[string]interface{})
	}

	return nil
}
