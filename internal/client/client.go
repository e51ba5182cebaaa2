// Package client is the Go API client for the notification gateway. Requests
// are checked against the shared schema before anything is sent.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"notify-gateway/internal/domain"
	"notify-gateway/internal/notification/schema"
	"notify-gateway/pkg/platform/httputil"
)

// DefaultTimeout bounds each API call.
const DefaultTimeout = 15 * time.Second

// APIError is a non-success response from the gateway. Message is the
// server's {"error": ...} text when it sent one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client calls the gateway's HTTP API.
type Client struct {
	http *resty.Client
}

// Option configures the Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(d)
	}
}

// New creates a client for the gateway at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(DefaultTimeout).
			SetHeader("Accept", "application/json"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Supervisors fetches the canonical directory. The gateway may report an
// upstream failure as a 200 with an error body, which is returned as an
// *APIError.
func (c *Client) Supervisors(ctx context.Context) ([]domain.Supervisor, error) {
	resp, err := c.http.R().SetContext(ctx).Get("/api/supervisors")
	if err != nil {
		return nil, fmt.Errorf("fetch supervisors: %w", err)
	}
	body := resp.Body()
	if resp.IsError() || !isArray(body) {
		return nil, apiError(resp.StatusCode(), body)
	}

	var supervisors []domain.Supervisor
	if err := json.Unmarshal(body, &supervisors); err != nil {
		return nil, fmt.Errorf("decode supervisors: %w", err)
	}
	return supervisors, nil
}

// Submit validates req locally and, when it passes, posts it. A local
// failure is a *schema.ValidationError and no request is sent.
func (c *Client) Submit(ctx context.Context, req domain.NotificationRequest) (domain.Acknowledgment, error) {
	if err := schema.Validate(req); err != nil {
		return domain.Acknowledgment{}, err
	}

	var ack domain.Acknowledgment
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&ack).
		Post("/api/submit")
	if err != nil {
		return domain.Acknowledgment{}, fmt.Errorf("submit notification request: %w", err)
	}
	if resp.IsError() {
		return domain.Acknowledgment{}, apiError(resp.StatusCode(), resp.Body())
	}
	return ack, nil
}

func isArray(body []byte) bool {
	trimmed := strings.TrimSpace(string(body))
	return strings.HasPrefix(trimmed, "[")
}

func apiError(status int, body []byte) *APIError {
	var envelope httputil.ErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != "" {
		return &APIError{Status: status, Message: envelope.Error}
	}
	return &APIError{Status: status, Message: fmt.Sprintf("request failed with status code %d", status)}
}
