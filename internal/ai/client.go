package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrNotConfigured is returned when no service base URL is set
var ErrNotConfigured = errors.New("ai description service is not configured")

// Client calls the external description-drafting text service. The service
// is a black box to this application: one synchronous POST, no retries.
type Client struct {
	http    *resty.Client
	baseURL string
}

// NewClient creates a client for the description service
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	http := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0)
	if apiKey != "" {
		http.SetAuthToken(apiKey)
	}

	return &Client{
		http:    http,
		baseURL: baseURL,
	}
}

// DescriptionRequest is the prompt payload for a listing description draft
type DescriptionRequest struct {
	Category    string            `json:"category"`
	Title       string            `json:"title"`
	Location    string            `json:"location"`
	PriceInfo   string            `json:"price_info"`
	Transaction string            `json:"transaction"`
	Extras      map[string]string `json:"extras,omitempty"`
}

// DescriptionResponse is the drafted text
type DescriptionResponse struct {
	Description string `json:"description"`
}

// GenerateDescription requests a drafted listing description
func (c *Client) GenerateDescription(ctx context.Context, req DescriptionRequest) (*DescriptionResponse, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}

	var out DescriptionResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post(c.baseURL + "/generate-description")
	if err != nil {
		return nil, fmt.Errorf("description service request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("description service returned %s", resp.Status())
	}

	return &out, nil
}
