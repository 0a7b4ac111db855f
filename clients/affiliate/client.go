// Package affiliate provides a client for the affiliate platform API.
// The back-office uses it to reconcile partner records against the platform's
// partner list and to remove partners.
package affiliate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"partnerops/internal/errors"
)

// Partner is a partner record as the affiliate platform reports it.
type Partner struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Status string `json:"status"`
}

// API is the affiliate platform contract the back-office depends on.
type API interface {
	ListPartners(ctx context.Context) ([]Partner, error)
	DeletePartner(ctx context.Context, id string) error
}

// Client is an HTTP client for the affiliate platform.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates an affiliate platform client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type listPartnersResponse struct {
	Data []Partner `json:"data"`
}

// ListPartners fetches every partner registered on the platform.
func (c *Client) ListPartners(ctx context.Context) ([]Partner, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/partners", nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, errors.Client("affiliate partner list failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf(errors.TypeClient, "affiliate partner list: unexpected status %d", resp.StatusCode)
	}

	var body listPartnersResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Client("affiliate partner list decode failed", err)
	}
	return body.Data, nil
}

// DeletePartner removes a partner from the platform.
func (c *Client) DeletePartner(ctx context.Context, id string) error {
	url := fmt.Sprintf("%s/partners/%s", c.BaseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	c.authorize(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return errors.Client("affiliate partner delete failed", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return errors.NotFound("affiliate partner", id)
	default:
		return errors.Newf(errors.TypeClient, "affiliate partner delete: unexpected status %d", resp.StatusCode)
	}
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Accept", "application/json")
}
