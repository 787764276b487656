// Package client is the Go SDK for the ModSentry moderation service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrNotFound is returned when the requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Event is a platform message event delivered to the service.
type Event struct {
	Type      string `json:"type"`
	UserID    string `json:"user_id,omitempty"`
	UserName  string `json:"user_name,omitempty"`
	ChannelID string `json:"channel_id,omitempty"`
	MessageID string `json:"message_id,omitempty"`
	Content   string `json:"content"`
}

// ReportEntry is one completed report as returned by the admin surface.
type ReportEntry struct {
	ID              string    `json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	Reporter        string    `json:"reporter"`
	Reportee        string    `json:"reportee"`
	Category        string    `json:"category"`
	FakeAccountType string    `json:"fake_account_type,omitempty"`
	Behaviors       []string  `json:"behaviors,omitempty"`
	BlockRequested  bool      `json:"block_requested"`
	Resolution      string    `json:"resolution"`
}

// Client is the ModSentry SDK entry point.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	bearerToken string
}

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBearerToken attaches a pre-obtained moderator token to every request.
func WithBearerToken(token string) Option {
	return func(c *Client) { c.bearerToken = token }
}

// New creates a Client connected to baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Token exchanges the shared admin secret for a moderator bearer token and
// attaches it to subsequent requests.
func (c *Client) Token(ctx context.Context, secret, moderator string) (string, error) {
	body, err := c.post(ctx, "/api/v1/auth/token", map[string]string{
		"secret":    secret,
		"moderator": moderator,
	})
	if err != nil {
		return "", err
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	c.bearerToken = resp.Token
	return resp.Token, nil
}

// SubmitEvent delivers a platform event to the service. For "dm" events the
// returned slice holds the reply lines to relay back to the user; other event
// types return nil.
func (c *Client) SubmitEvent(ctx context.Context, ev Event) ([]string, error) {
	body, err := c.post(ctx, "/api/v1/events", ev)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Replies []string `json:"replies"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode event response: %w", err)
	}
	return resp.Replies, nil
}

// ListReports fetches completed reports from the admin surface, newest first.
func (c *Client) ListReports(ctx context.Context, limit, offset int) ([]ReportEntry, error) {
	path := fmt.Sprintf("/api/v1/admin/reports?limit=%d&offset=%d", limit, offset)
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Reports []ReportEntry `json:"reports"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode reports response: %w", err)
	}
	return resp.Reports, nil
}

// ListFlagged returns the IDs of all flagged accounts.
func (c *Client) ListFlagged(ctx context.Context) ([]string, error) {
	body, err := c.get(ctx, "/api/v1/admin/flagged")
	if err != nil {
		return nil, err
	}

	var resp struct {
		Flagged []string `json:"flagged"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode flagged response: %w", err)
	}
	return resp.Flagged, nil
}

// Flag marks an account as flagged.
func (c *Client) Flag(ctx context.Context, accountID string) error {
	req, err := c.newRequest(ctx, http.MethodPut, "/api/v1/admin/flagged/"+accountID, nil)
	if err != nil {
		return err
	}
	_, err = c.do(req)
	return err
}

// Unflag removes an account's flag. Returns ErrNotFound when the account is
// not flagged.
func (c *Client) Unflag(ctx context.Context, accountID string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/api/v1/admin/flagged/"+accountID, nil)
	if err != nil {
		return err
	}
	_, err = c.do(req)
	return err
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do executes an HTTP request, attaching the bearer token if present.
func (c *Client) do(req *http.Request) ([]byte, error) {
	if c.bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, req.URL.Path)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("unauthorized: %s", string(body))
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("server error %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
