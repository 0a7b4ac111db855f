// Package subs provides a client for the subscription platform API.
package subs

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"partnerops/internal/errors"
)

// Metrics is the subscription snapshot the admin dashboard shows.
type Metrics struct {
	ActiveSubscribers int             `json:"active_subscribers"`
	MRREstimate       decimal.Decimal `json:"mrr_estimate"`
}

// API is the subscription platform contract the back-office depends on.
type API interface {
	GetMetrics(ctx context.Context) (*Metrics, error)
}

// Client is an HTTP client for the subscription platform.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates a subscription platform client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetMetrics fetches current subscriber counts and revenue estimate.
func (c *Client) GetMetrics(ctx context.Context) (*Metrics, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/metrics/overview", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, errors.Client("subscription metrics fetch failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf(errors.TypeClient, "subscription metrics: unexpected status %d", resp.StatusCode)
	}

	var metrics Metrics
	if err := json.NewDecoder(resp.Body).Decode(&metrics); err != nil {
		return nil, errors.Client("subscription metrics decode failed", err)
	}
	return &metrics, nil
}
