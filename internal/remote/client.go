// Package remote syncs results to a wpmhero server.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/wpmhero/internal/model"
)

const (
	resultsPath     = "/api/typing/results"
	leaderboardPath = "/api/typing/leaderboard"
	maxErrorBody    = 4 << 10
)

// Client talks to the results API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient returns a client for baseURL authenticating with token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Body)
}

// Publish posts a completed result.
func (c *Client) Publish(ctx context.Context, res model.SessionResult) error {
	body, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+resultsPath, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to publish result: %w", err)
	}
	defer closeBody(resp)
	return checkStatus(resp)
}

// Leaderboard fetches the ranking for duration.
func (c *Client) Leaderboard(ctx context.Context, duration int) ([]model.LeaderboardEntry, error) {
	q := url.Values{}
	q.Set("duration", strconv.Itoa(duration))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+leaderboardPath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}
	defer closeBody(resp)
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	var payload struct {
		Duration    int                      `json:"duration"`
		Leaderboard []model.LeaderboardEntry `json:"leaderboard"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode leaderboard: %w", err)
	}
	return payload.Leaderboard, nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
}

func closeBody(resp *http.Response) {
	if cerr := resp.Body.Close(); cerr != nil {
		// Best-effort body close.
		_ = cerr
	}
}
