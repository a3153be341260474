// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/linkarr/internal/config"
	"github.com/autobrr/linkarr/internal/domain"
)

func TestConfigHandlerGet(t *testing.T) {
	t.Parallel()

	cfg := &config.AppConfig{Config: &domain.Config{
		Host:            "127.0.0.1",
		Port:            7575,
		BaseURL:         "/linkarr/",
		LogLevel:        "DEBUG",
		CheckForUpdates: true,
		MetricsEnabled:  true,
		Qbittorrent: domain.QbittorrentConfig{
			Host:     "http://qbit:8080",
			Username: "admin",
			Password: "hunter2",
		},
		Radarr: domain.ArrConfig{Host: "http://radarr:7878", APIKey: "radarr-secret"},
		Sonarr: domain.ArrConfig{},
		Paths: domain.PathsConfig{
			TorrentMovies:  "/downloads/movies",
			LibraryMovies:  "/movies",
			RemotePathBase: "/data",
			LocalPathBase:  "/mnt/storage",
		},
		Scan: domain.ScanConfig{LibraryMediaFloorMB: 200, TorrentMediaFloorMB: 20},
	}}

	r := chi.NewRouter()
	NewConfigHandler(cfg, "1.2.3").RegisterRoutes(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/config", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	var resp ConfigResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))

	assert.Equal(t, "127.0.0.1", resp.Host)
	assert.Equal(t, 7575, resp.Port)
	assert.Equal(t, "/linkarr/", resp.BaseURL)
	assert.Equal(t, "1.2.3", resp.Version)
	assert.True(t, resp.CheckForUpdates)
	assert.True(t, resp.MetricsEnabled)

	assert.Equal(t, "http://qbit:8080", resp.Qbittorrent.Host)
	assert.True(t, resp.Qbittorrent.Configured)
	assert.True(t, resp.Radarr.Configured)
	assert.False(t, resp.Sonarr.Configured)

	assert.Equal(t, "/downloads/movies", resp.Paths.TorrentMovies)
	assert.Equal(t, "/mnt/storage", resp.Paths.LocalPathBase)
	assert.Equal(t, 200, resp.Scan.LibraryMediaFloorMB)
	assert.Equal(t, 20, resp.Scan.TorrentMediaFloorMB)

	// Credentials never leave the process through this endpoint.
	assert.NotContains(t, body, "hunter2")
	assert.NotContains(t, body, "radarr-secret")
	assert.NotContains(t, body, "admin")
}

func TestConfigHandlerUnconfiguredCollaborators(t *testing.T) {
	t.Parallel()

	cfg := &config.AppConfig{Config: &domain.Config{Host: "127.0.0.1", Port: 7575}}

	r := chi.NewRouter()
	NewConfigHandler(cfg, "dev").RegisterRoutes(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/config", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp ConfigResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.False(t, resp.Qbittorrent.Configured)
	assert.False(t, resp.Radarr.Configured)
	assert.False(t, resp.Sonarr.Configured)
}
