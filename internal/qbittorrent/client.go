// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package qbittorrent adapts the qBittorrent Web API into the scan pipeline's
// torrent source. One instance, lazily connected, re-authenticated when the
// session expires.
package qbittorrent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	qbt "github.com/autobrr/go-qbittorrent"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/linkarr/internal/services/scan"
)

// minWebAPIVersion is the oldest Web API this tool works against; the
// per-torrent files and trackers endpoints changed shape before 2.8.0.
var minWebAPIVersion = semver.MustParse("2.8.0")

// inlineTrackersVersion is the Web API version that can return tracker data
// inline on the torrent list, saving one request per torrent.
var inlineTrackersVersion = semver.MustParse("2.11.4")

// Config holds the connection settings for one qBittorrent instance.
type Config struct {
	Host     string
	Username string
	Password string
	// Timeout is the per-request timeout in seconds; zero means 30.
	Timeout int
}

type Client struct {
	*qbt.Client

	mu              sync.RWMutex
	webAPIVersion   string
	inlineTrackers  bool
	lastHealthCheck time.Time
}

// NewClient connects, authenticates, and gates on the Web API version.
// Failures here mean the instance is unreachable or too old; both surface as
// connection errors since neither is a property of the library being empty.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("qbittorrent host not configured")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30
	}

	qbtClient := qbt.NewClient(qbt.Config{
		Host:     cfg.Host,
		Username: cfg.Username,
		Password: cfg.Password,
		Timeout:  timeout,
	})

	if err := qbtClient.LoginCtx(ctx); err != nil {
		return nil, &scan.ConnectionError{Service: "qbittorrent", Err: err}
	}

	webAPIVersion, err := qbtClient.GetWebAPIVersionCtx(ctx)
	if err != nil {
		return nil, &scan.ConnectionError{Service: "qbittorrent", Err: err}
	}

	inlineTrackers := false
	if v, err := semver.NewVersion(webAPIVersion); err == nil {
		if v.LessThan(minWebAPIVersion) {
			return nil, fmt.Errorf("qbittorrent web api %s is too old, need at least %s", webAPIVersion, minWebAPIVersion)
		}
		inlineTrackers = !v.LessThan(inlineTrackersVersion)
	}

	client := &Client{
		Client:          qbtClient,
		webAPIVersion:   webAPIVersion,
		inlineTrackers:  inlineTrackers,
		lastHealthCheck: time.Now(),
	}

	log.Debug().
		Str("host", cfg.Host).
		Str("webAPIVersion", webAPIVersion).
		Bool("inlineTrackers", inlineTrackers).
		Msg("qbittorrent client connected")

	return client, nil
}

// HealthCheck probes the session and re-authenticates when it expired.
func (c *Client) HealthCheck(ctx context.Context) error {
	if _, err := c.GetWebAPIVersionCtx(ctx); err != nil {
		if loginErr := c.LoginCtx(ctx); loginErr != nil {
			return fmt.Errorf("health check failed: login error: %w", loginErr)
		}
		if _, err = c.GetWebAPIVersionCtx(ctx); err != nil {
			return fmt.Errorf("health check failed: api error: %w", err)
		}
	}

	c.mu.Lock()
	c.lastHealthCheck = time.Now()
	c.mu.Unlock()
	return nil
}

// WebAPIVersion returns the version reported at connect time.
func (c *Client) WebAPIVersion() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.webAPIVersion
}

func (c *Client) supportsInlineTrackers() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inlineTrackers
}

// healthCheckInterval bounds how often a pooled client re-probes the session
// before being handed out.
const healthCheckInterval = 60 * time.Second

// Pool owns the single configured instance and dials it on first use, so
// serve mode can start while qBittorrent is down. It satisfies the scan
// pipeline's torrent source.
type Pool struct {
	cfg      Config
	remapper *scan.Remapper

	mu     sync.Mutex
	client *Client
}

func NewPool(cfg Config, remapper *scan.Remapper) *Pool {
	if remapper == nil {
		remapper = scan.NewRemapper("", "")
	}
	return &Pool{cfg: cfg, remapper: remapper}
}

// Get returns a healthy client, connecting or re-authenticating as needed.
func (p *Pool) Get(ctx context.Context) (*Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		p.client.mu.RLock()
		fresh := time.Since(p.client.lastHealthCheck) < healthCheckInterval
		p.client.mu.RUnlock()
		if fresh {
			return p.client, nil
		}
		if err := p.client.HealthCheck(ctx); err == nil {
			return p.client, nil
		}
		log.Debug().Str("host", p.cfg.Host).Msg("qbittorrent session lost, reconnecting")
		p.client = nil
	}

	client, err := NewClient(ctx, p.cfg)
	if err != nil {
		return nil, err
	}
	p.client = client
	return client, nil
}

// Test probes connectivity for health endpoints and the info command.
func (p *Pool) Test(ctx context.Context) error {
	_, err := p.Get(ctx)
	return err
}
