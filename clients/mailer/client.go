// Package mailer provides a client for the transactional email API.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"partnerops/internal/errors"
)

// Message is one outbound email.
type Message struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HTMLBody string `json:"html"`
}

// SendResult reports a queued send.
type SendResult struct {
	ID string `json:"id"`
}

// API is the mail contract the back-office depends on.
type API interface {
	Send(ctx context.Context, msg Message) (*SendResult, error)
}

// Client is an HTTP client for the transactional email platform.
type Client struct {
	BaseURL    string
	APIKey     string
	From       string
	HTTPClient *http.Client
}

// NewClient creates a mail client. from is the default sender address.
func NewClient(baseURL, apiKey, from string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		From:    from,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Send queues one email.
func (c *Client) Send(ctx context.Context, msg Message) (*SendResult, error) {
	if msg.From == "" {
		msg.From = c.From
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, errors.Client("email send failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, errors.Newf(errors.TypeClient, "email send: unexpected status %d", resp.StatusCode)
	}

	var result SendResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.Client("email send decode failed", err)
	}
	return &result, nil
}
