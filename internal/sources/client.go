package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oaklinehq/insights-backend/internal/timerange"
)

const defaultTimeout = 15 * time.Second

// Client fetches collaborator payloads over HTTP. Fetch never returns an
// error: every outcome is folded into a Result.
type Client struct {
	httpClient *http.Client
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds the collaborator client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return client
}

// Fetch calls one collaborator for the given window and resolves the
// outcome into a Result.
func (c *Client) Fetch(ctx context.Context, baseURL string, r timerange.TimeRange) Result {
	if strings.TrimSpace(baseURL) == "" {
		return Failed(0, "source not configured")
	}

	endpoint, err := rangeURL(baseURL, r)
	if err != nil {
		return Failed(0, fmt.Sprintf("building url: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Failed(0, fmt.Sprintf("building request: %v", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Failed(0, fmt.Sprintf("transport: %v", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Failed(resp.StatusCode, fmt.Sprintf("reading body: %v", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Failed(resp.StatusCode, fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}

	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		return Failed(resp.StatusCode, fmt.Sprintf("decoding payload: %v", err))
	}

	if !payload.OK {
		msg := payload.Error
		if msg == "" {
			msg = "source reported not-ok"
		}
		return Result{OK: false, Status: resp.StatusCode, Err: msg, Payload: payload}
	}

	return Result{OK: true, Status: resp.StatusCode, Payload: payload}
}

// Trigger fires a side request and only reports transport-level failure.
// Sync triggers are best-effort; the report never depends on their outcome.
func (c *Client) Trigger(ctx context.Context, endpoint string) error {
	if strings.TrimSpace(endpoint) == "" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return nil
}

func rangeURL(baseURL string, r timerange.TimeRange) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("start", r.Start.UTC().Format(time.RFC3339))
	q.Set("end", r.End.UTC().Format(time.RFC3339))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
