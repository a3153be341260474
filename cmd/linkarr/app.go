// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/autobrr/linkarr/internal/api/handlers"
	"github.com/autobrr/linkarr/internal/arr"
	"github.com/autobrr/linkarr/internal/buildinfo"
	"github.com/autobrr/linkarr/internal/config"
	"github.com/autobrr/linkarr/internal/domain"
	"github.com/autobrr/linkarr/internal/logger"
	"github.com/autobrr/linkarr/internal/models"
	"github.com/autobrr/linkarr/internal/qbittorrent"
	"github.com/autobrr/linkarr/internal/services/scan"
	"github.com/autobrr/linkarr/pkg/radarr"
	"github.com/autobrr/linkarr/pkg/sonarr"
)

// loadConfig reads the config file, applies environment overrides, and
// configures the global logger. Every command goes through here first.
func loadConfig() (*config.AppConfig, error) {
	cfg, err := config.New(configPath)
	if err != nil {
		return nil, err
	}
	cfg.Config.Version = buildinfo.Version

	logger.Setup(cfg.Config, cfg.GetLogPath())

	return cfg, nil
}

// commandContext returns a context canceled on SIGINT or SIGTERM, so a
// running scan aborts cleanly on Ctrl-C.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// scanStack bundles the scan service with the collaborator handles that the
// surrounding surfaces probe for connectivity.
type scanStack struct {
	scanner *scan.Service
	pool    *qbittorrent.Pool
	radarr  *arr.RadarrProvider
	sonarr  *arr.SonarrProvider
}

// newScanStack wires the scan pipeline from config: walk roots, the
// qBittorrent pool, and one provider per enabled library service.
func newScanStack(cfg *domain.Config) (*scanStack, error) {
	remapper := scan.NewRemapper(cfg.Paths.RemotePathBase, cfg.Paths.LocalPathBase)

	stack := &scanStack{
		pool: qbittorrent.NewPool(qbittorrent.Config{
			Host:     cfg.Qbittorrent.Host,
			Username: cfg.Qbittorrent.Username,
			Password: cfg.Qbittorrent.Password,
			Timeout:  cfg.Qbittorrent.Timeout,
		}, remapper),
	}

	var media []scan.MediaProvider
	if cfg.Radarr.Enabled() {
		client := radarr.NewClient(radarr.Config{
			Host:      cfg.Radarr.Host,
			APIKey:    cfg.Radarr.APIKey,
			Timeout:   cfg.Radarr.Timeout,
			UserAgent: buildinfo.UserAgent,
		})
		stack.radarr = arr.NewRadarrProvider(client, remapper)
		media = append(media, stack.radarr)
	}
	if cfg.Sonarr.Enabled() {
		client := sonarr.NewClient(sonarr.Config{
			Host:      cfg.Sonarr.Host,
			APIKey:    cfg.Sonarr.APIKey,
			Timeout:   cfg.Sonarr.Timeout,
			UserAgent: buildinfo.UserAgent,
		})
		stack.sonarr = arr.NewSonarrProvider(client, remapper)
		media = append(media, stack.sonarr)
	}

	scanner, err := scan.New(scanConfigFromDomain(cfg), stack.pool, media...)
	if err != nil {
		return nil, err
	}
	stack.scanner = scanner

	return stack, nil
}

// probes lists one connectivity check per configured collaborator.
func (s *scanStack) probes() []handlers.Probe {
	probes := []handlers.Probe{{Name: "qbittorrent", Check: s.pool.Test}}
	if s.radarr != nil {
		probes = append(probes, handlers.Probe{Name: "radarr", Check: s.radarr.Test})
	}
	if s.sonarr != nil {
		probes = append(probes, handlers.Probe{Name: "sonarr", Check: s.sonarr.Test})
	}
	return probes
}

// scanConfigFromDomain translates app config into scan config. Floors are
// configured in MiB; unset floors keep the built-in defaults.
func scanConfigFromDomain(cfg *domain.Config) scan.Config {
	var roots []scan.Root
	addRoot := func(path string, location models.FileLocation) {
		if strings.TrimSpace(path) != "" {
			roots = append(roots, scan.Root{Path: path, Location: location})
		}
	}
	addRoot(cfg.Paths.TorrentMovies, models.LocationTorrent)
	addRoot(cfg.Paths.TorrentTv, models.LocationTorrent)
	addRoot(cfg.Paths.LibraryMovies, models.LocationLibrary)
	addRoot(cfg.Paths.LibraryTv, models.LocationLibrary)

	policy := scan.DefaultPolicy()
	if cfg.Scan.LibraryMediaFloorMB > 0 {
		policy.LibraryMediaFloor = int64(cfg.Scan.LibraryMediaFloorMB) << 20
	}
	if cfg.Scan.TorrentMediaFloorMB > 0 {
		policy.TorrentMediaFloor = int64(cfg.Scan.TorrentMediaFloorMB) << 20
	}

	return scan.Config{
		Roots:          roots,
		RemotePathBase: cfg.Paths.RemotePathBase,
		LocalPathBase:  cfg.Paths.LocalPathBase,
		Policy:         policy,
	}
}
