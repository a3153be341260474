// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package radarr provides a minimal Radarr v3 API client covering what the
// scan pipeline needs: the movie list and a connectivity probe.
package radarr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go"

	"github.com/autobrr/linkarr/pkg/httphelpers"
	"github.com/autobrr/linkarr/pkg/redact"
)

const (
	defaultTimeout       = 30 * time.Second
	defaultRetryAttempts = 3
	defaultRetryDelay    = 500 * time.Millisecond
)

// Config holds the options for constructing a Client.
type Config struct {
	Host       string
	APIKey     string
	Timeout    int
	HTTPClient *http.Client
	UserAgent  string
	Version    string
}

// Client is a Radarr v3 API client.
type Client struct {
	host       string
	apiKey     string
	httpClient *http.Client
	userAgent  string
}

// NewClient constructs a new Client using the provided configuration.
func NewClient(cfg Config) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	ua := strings.TrimSpace(cfg.UserAgent)
	if ua == "" {
		ua = "linkarr"
	}
	if version := strings.TrimSpace(cfg.Version); version != "" && !strings.Contains(ua, version) {
		ua = fmt.Sprintf("%s/%s", ua, version)
	}

	return &Client{
		host:       strings.TrimRight(cfg.Host, "/"),
		apiKey:     cfg.APIKey,
		httpClient: client,
		userAgent:  ua,
	}
}

// MovieFile is the downloaded file attached to a movie.
type MovieFile struct {
	ID           int64  `json:"id"`
	RelativePath string `json:"relativePath"`
	Path         string `json:"path"`
	Size         int64  `json:"size"`
}

// Movie represents one tracked movie.
type Movie struct {
	ID         int64      `json:"id"`
	Title      string     `json:"title"`
	Path       string     `json:"path"`
	Monitored  bool       `json:"monitored"`
	HasFile    bool       `json:"hasFile"`
	SizeOnDisk int64      `json:"sizeOnDisk"`
	MovieFile  *MovieFile `json:"movieFile,omitempty"`
}

// SystemStatus is the health probe payload.
type SystemStatus struct {
	AppName string `json:"appName"`
	Version string `json:"version"`
}

// GetMovies retrieves every movie known to the instance.
func (c *Client) GetMovies(ctx context.Context) ([]Movie, error) {
	var movies []Movie
	if err := c.getJSON(ctx, &movies, "movie"); err != nil {
		return nil, err
	}
	return movies, nil
}

// Test probes connectivity and authentication.
func (c *Client) Test(ctx context.Context) (*SystemStatus, error) {
	var status SystemStatus
	if err := c.getJSON(ctx, &status, "system", "status"); err != nil {
		return nil, err
	}
	return &status, nil
}

// APIError is a non-success response from Radarr.
type APIError struct {
	StatusCode int
}

func (e *APIError) Error() string {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Sprintf("radarr returned %d (check api key)", e.StatusCode)
	case http.StatusNotFound:
		return "radarr endpoint not found (404)"
	default:
		return fmt.Sprintf("radarr unexpected status %d", e.StatusCode)
	}
}

// retryable reports whether the failure is worth another attempt. Client
// errors like a bad API key never are.
func retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusInternalServerError
	}
	return true
}

// getJSON performs a GET with transient-failure retries. Retry policy lives
// here in the client layer; callers see only the final outcome.
func (c *Client) getJSON(ctx context.Context, out any, segments ...string) error {
	return retry.Do(
		func() error {
			return c.doGetJSON(ctx, out, segments...)
		},
		retry.Attempts(defaultRetryAttempts),
		retry.Delay(defaultRetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			if ctx.Err() != nil {
				return false
			}
			return retryable(err)
		}),
	)
}

func (c *Client) doGetJSON(ctx context.Context, out any, segments ...string) error {
	if c.host == "" {
		return fmt.Errorf("radarr host is not configured")
	}

	endpoint, err := url.JoinPath(c.host, append([]string{"api", "v3"}, segments...)...)
	if err != nil {
		return fmt.Errorf("failed to build radarr endpoint: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build radarr request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The transport error embeds the request URL; strip query-string
		// credentials before it can reach a log line.
		return fmt.Errorf("radarr request failed: %w", redact.URLError(err))
	}
	defer httphelpers.DrainAndClose(resp)

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode radarr response: %w", err)
	}
	return nil
}
