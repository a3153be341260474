// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package sonarr provides a minimal Sonarr v3 API client covering what the
// scan pipeline needs: the series list, per-series episode files, and a
// connectivity probe.
package sonarr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
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

// Client is a Sonarr v3 API client.
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

// SeriesStatistics carries the per-series file counters.
type SeriesStatistics struct {
	EpisodeFileCount int   `json:"episodeFileCount"`
	SizeOnDisk       int64 `json:"sizeOnDisk"`
}

// Series represents one tracked series. Series track at folder level; the
// actual files come from GetEpisodeFiles.
type Series struct {
	ID         int64            `json:"id"`
	Title      string           `json:"title"`
	Path       string           `json:"path"`
	Monitored  bool             `json:"monitored"`
	Statistics SeriesStatistics `json:"statistics"`
}

// EpisodeFile is one downloaded episode of a series.
type EpisodeFile struct {
	ID           int64  `json:"id"`
	SeriesID     int64  `json:"seriesId"`
	RelativePath string `json:"relativePath"`
	Path         string `json:"path"`
	Size         int64  `json:"size"`
}

// SystemStatus is the health probe payload.
type SystemStatus struct {
	AppName string `json:"appName"`
	Version string `json:"version"`
}

// GetSeries retrieves every series known to the instance.
func (c *Client) GetSeries(ctx context.Context) ([]Series, error) {
	var series []Series
	if err := c.getJSON(ctx, nil, &series, "series"); err != nil {
		return nil, err
	}
	return series, nil
}

// GetEpisodeFiles retrieves the downloaded episode files for one series.
func (c *Client) GetEpisodeFiles(ctx context.Context, seriesID int64) ([]EpisodeFile, error) {
	query := url.Values{}
	query.Set("seriesId", strconv.FormatInt(seriesID, 10))

	var files []EpisodeFile
	if err := c.getJSON(ctx, query, &files, "episodefile"); err != nil {
		return nil, err
	}
	return files, nil
}

// Test probes connectivity and authentication.
func (c *Client) Test(ctx context.Context) (*SystemStatus, error) {
	var status SystemStatus
	if err := c.getJSON(ctx, nil, &status, "system", "status"); err != nil {
		return nil, err
	}
	return &status, nil
}

// APIError is a non-success response from Sonarr.
type APIError struct {
	StatusCode int
}

func (e *APIError) Error() string {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Sprintf("sonarr returned %d (check api key)", e.StatusCode)
	case http.StatusNotFound:
		return "sonarr endpoint not found (404)"
	default:
		return fmt.Sprintf("sonarr unexpected status %d", e.StatusCode)
	}
}

func retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusInternalServerError
	}
	return true
}

// getJSON performs a GET with transient-failure retries. Retry policy lives
// here in the client layer; callers see only the final outcome.
func (c *Client) getJSON(ctx context.Context, query url.Values, out any, segments ...string) error {
	return retry.Do(
		func() error {
			return c.doGetJSON(ctx, query, out, segments...)
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

func (c *Client) doGetJSON(ctx context.Context, query url.Values, out any, segments ...string) error {
	if c.host == "" {
		return fmt.Errorf("sonarr host is not configured")
	}

	endpoint, err := url.JoinPath(c.host, append([]string{"api", "v3"}, segments...)...)
	if err != nil {
		return fmt.Errorf("failed to build sonarr endpoint: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build sonarr request: %w", err)
	}
	if query != nil {
		req.URL.RawQuery = query.Encode()
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The transport error embeds the request URL; strip query-string
		// credentials before it can reach a log line.
		return fmt.Errorf("sonarr request failed: %w", redact.URLError(err))
	}
	defer httphelpers.DrainAndClose(resp)

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode sonarr response: %w", err)
	}
	return nil
}
