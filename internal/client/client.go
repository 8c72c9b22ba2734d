// Package client talks to the murph server's REST API. It is the remote
// collaborator for the session state machine (submission) and the metrics
// views (history, leaderboard).
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/murph/internal/metrics"
	"github.com/claude/murph/internal/models"
)

const submitAttempts = 3

// Client sends and fetches sessions over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a Client targeting the given base URL.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SubmitMurph POSTs a finished session. Retries with exponential backoff;
// the record's UUID keeps a retry that raced a slow success from creating
// a duplicate on the server.
func (c *Client) SubmitMurph(ctx context.Context, row models.MurphRow) error {
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}

	var lastErr error
	for attempt := range submitAttempts {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(1<<uint(attempt-1)) * time.Second):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+"/api/v1/murphs", bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-Key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			return nil
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			// Client errors won't succeed on retry.
			return fmt.Errorf("submit rejected (status %d): %s", resp.StatusCode, body)
		default:
			lastErr = fmt.Errorf("submit failed (status %d): %s", resp.StatusCode, body)
		}
	}

	return fmt.Errorf("after %d attempts: %w", submitAttempts, lastErr)
}

// History fetches the user's session history, newest first.
func (c *Client) History(ctx context.Context) ([]models.MurphRow, error) {
	var rows []models.MurphRow
	if err := c.getJSON(ctx, "/api/v1/murphs", nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Feed fetches recent sessions across all users.
func (c *Client) Feed(ctx context.Context) ([]models.MurphRow, error) {
	var rows []models.MurphRow
	if err := c.getJSON(ctx, "/api/v1/murphs/feed", nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Metrics fetches the server-computed aggregate report.
func (c *Client) Metrics(ctx context.Context) (*metrics.Report, error) {
	var report metrics.Report
	if err := c.getJSON(ctx, "/api/v1/metrics", nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Leaderboard fetches this month's fastest FULL murphs.
func (c *Client) Leaderboard(ctx context.Context) ([]models.MurphRow, error) {
	var rows []models.MurphRow
	if err := c.getJSON(ctx, "/api/v1/leaderboard", nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s returned %d: %s", path, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
