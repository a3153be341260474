// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/autobrr/linkarr/internal/config"
)

// ConfigHandler exposes the active configuration with secrets redacted.
type ConfigHandler struct {
	cfg     *config.AppConfig
	version string
}

// CollaboratorInfo describes one external service connection without its
// credentials.
type CollaboratorInfo struct {
	Host       string `json:"host"`
	Configured bool   `json:"configured"`
}

// PathsInfo mirrors the [paths] config section.
type PathsInfo struct {
	TorrentMovies  string `json:"torrent_movies"`
	TorrentTv      string `json:"torrent_tv"`
	LibraryMovies  string `json:"library_movies"`
	LibraryTv      string `json:"library_tv"`
	RemotePathBase string `json:"remote_path_base"`
	LocalPathBase  string `json:"local_path_base"`
}

// ScanInfo mirrors the [scan] config section. Zero means the built-in
// default applies.
type ScanInfo struct {
	LibraryMediaFloorMB int `json:"library_media_floor_mb"`
	TorrentMediaFloorMB int `json:"torrent_media_floor_mb"`
}

// ConfigResponse represents the configuration payload returned to clients.
type ConfigResponse struct {
	Host            string           `json:"host"`
	Port            int              `json:"port"`
	BaseURL         string           `json:"base_url"`
	LogLevel        string           `json:"log_level"`
	LogPath         string           `json:"log_path"`
	CheckForUpdates bool             `json:"check_for_updates"`
	MetricsEnabled  bool             `json:"metrics_enabled"`
	Version         string           `json:"version"`
	Qbittorrent     CollaboratorInfo `json:"qbittorrent"`
	Radarr          CollaboratorInfo `json:"radarr"`
	Sonarr          CollaboratorInfo `json:"sonarr"`
	Paths           PathsInfo        `json:"paths"`
	Scan            ScanInfo         `json:"scan"`
}

// NewConfigHandler creates a ConfigHandler instance.
func NewConfigHandler(cfg *config.AppConfig, version string) *ConfigHandler {
	return &ConfigHandler{cfg: cfg, version: version}
}

// RegisterRoutes wires handler routes under /config.
func (h *ConfigHandler) RegisterRoutes(r chi.Router) {
	r.Get("/config", h.getConfig)
}

func (h *ConfigHandler) getConfig(w http.ResponseWriter, r *http.Request) {
	cfg := h.cfg.Config

	RespondJSON(w, http.StatusOK, ConfigResponse{
		Host:            cfg.Host,
		Port:            cfg.Port,
		BaseURL:         cfg.BaseURL,
		LogLevel:        cfg.LogLevel,
		LogPath:         cfg.LogPath,
		CheckForUpdates: cfg.CheckForUpdates,
		MetricsEnabled:  cfg.MetricsEnabled,
		Version:         h.version,
		Qbittorrent: CollaboratorInfo{
			Host:       cfg.Qbittorrent.Host,
			Configured: cfg.Qbittorrent.Host != "",
		},
		Radarr: CollaboratorInfo{
			Host:       cfg.Radarr.Host,
			Configured: cfg.Radarr.Enabled(),
		},
		Sonarr: CollaboratorInfo{
			Host:       cfg.Sonarr.Host,
			Configured: cfg.Sonarr.Enabled(),
		},
		Paths: PathsInfo{
			TorrentMovies:  cfg.Paths.TorrentMovies,
			TorrentTv:      cfg.Paths.TorrentTv,
			LibraryMovies:  cfg.Paths.LibraryMovies,
			LibraryTv:      cfg.Paths.LibraryTv,
			RemotePathBase: cfg.Paths.RemotePathBase,
			LocalPathBase:  cfg.Paths.LocalPathBase,
		},
		Scan: ScanInfo{
			LibraryMediaFloorMB: cfg.Scan.LibraryMediaFloorMB,
			TorrentMediaFloorMB: cfg.Scan.TorrentMediaFloorMB,
		},
	})
}
