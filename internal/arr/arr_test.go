// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package arr

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/linkarr/internal/models"
	"github.com/autobrr/linkarr/internal/services/scan"
	"github.com/autobrr/linkarr/pkg/radarr"
	"github.com/autobrr/linkarr/pkg/sonarr"
)

func radarrServer(t *testing.T, handler http.HandlerFunc) *radarr.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return radarr.NewClient(radarr.Config{Host: srv.URL, APIKey: "key"})
}

func sonarrServer(t *testing.T, handler http.HandlerFunc) *sonarr.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return sonarr.NewClient(sonarr.Config{Host: srv.URL, APIKey: "key"})
}

func TestRadarrProviderItems(t *testing.T) {
	client := radarrServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v3/movie", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"id": 1, "title": "Heat", "path": "/data/movies/Heat (1995)", "monitored": true, "hasFile": true,
			 "movieFile": {"id": 5, "path": "/data/movies/Heat (1995)/Heat.1995.mkv", "size": 4096}},
			{"id": 2, "title": "Ronin", "path": "/data/movies/Ronin (1998)", "monitored": true, "hasFile": false}
		]`))
	})

	provider := NewRadarrProvider(client, scan.NewRemapper("/data", "/mnt/storage"))
	assert.Equal(t, models.ServiceRadarr, provider.Service())

	items, err := provider.Items(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, int64(1), items[0].ID)
	assert.Equal(t, "Heat", items[0].Title)
	assert.Equal(t, models.ServiceRadarr, items[0].Service)
	assert.Equal(t, "/mnt/storage/movies/Heat (1995)", items[0].FolderPath)
	assert.Equal(t, "/mnt/storage/movies/Heat (1995)/Heat.1995.mkv", items[0].FilePath)
	assert.True(t, items[0].HasFile)

	assert.Empty(t, items[1].FilePath)
	assert.False(t, items[1].HasFile)
}

func TestRadarrProviderItemsUnreachable(t *testing.T) {
	client := radarrServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	provider := NewRadarrProvider(client, nil)

	_, err := provider.Items(context.Background())
	require.Error(t, err)

	var connErr *scan.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "radarr", connErr.Service)
}

func TestRadarrProviderItemFiles(t *testing.T) {
	// ItemFiles never touches the API for movies.
	client := radarr.NewClient(radarr.Config{Host: "http://127.0.0.1:1", APIKey: "key"})
	provider := NewRadarrProvider(client, nil)

	paths, err := provider.ItemFiles(context.Background(), &models.MediaRecord{FilePath: "/mnt/storage/movies/Heat.mkv"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/mnt/storage/movies/Heat.mkv"}, paths)

	paths, err = provider.ItemFiles(context.Background(), &models.MediaRecord{})
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestRadarrProviderNilRemapperKeepsPaths(t *testing.T) {
	client := radarrServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id": 1, "title": "Heat", "path": "/data/movies/Heat (1995)", "monitored": true, "hasFile": true,
			 "movieFile": {"id": 5, "path": "/data/movies/Heat (1995)/Heat.1995.mkv", "size": 4096}}
		]`))
	})

	provider := NewRadarrProvider(client, nil)

	items, err := provider.Items(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "/data/movies/Heat (1995)/Heat.1995.mkv", items[0].FilePath)
}

func TestSonarrProviderItems(t *testing.T) {
	client := sonarrServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v3/series", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"id": 7, "title": "Severance", "path": "/data/tv/Severance", "monitored": true,
			 "statistics": {"episodeFileCount": 18, "sizeOnDisk": 9000}},
			{"id": 8, "title": "The Pitt", "path": "/data/tv/The Pitt", "monitored": true,
			 "statistics": {"episodeFileCount": 0, "sizeOnDisk": 0}}
		]`))
	})

	provider := NewSonarrProvider(client, scan.NewRemapper("/data", "/mnt/storage"))
	assert.Equal(t, models.ServiceSonarr, provider.Service())

	items, err := provider.Items(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "/mnt/storage/tv/Severance", items[0].FolderPath)
	assert.Empty(t, items[0].FilePath)
	assert.True(t, items[0].HasFile)
	assert.False(t, items[1].HasFile)
}

func TestSonarrProviderItemsUnreachable(t *testing.T) {
	client := sonarrServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	provider := NewSonarrProvider(client, nil)

	_, err := provider.Items(context.Background())
	require.Error(t, err)

	var connErr *scan.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "sonarr", connErr.Service)
}

func TestSonarrProviderItemFiles(t *testing.T) {
	client := sonarrServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v3/episodefile", r.URL.Path)
		require.Equal(t, "7", r.URL.Query().Get("seriesId"))
		_, _ = w.Write([]byte(`[
			{"id": 100, "seriesId": 7, "path": "/data/tv/Severance/Season 01/e01.mkv", "size": 2048},
			{"id": 101, "seriesId": 7, "path": "/data/tv/Severance/Season 01/e02.mkv", "size": 2049},
			{"id": 102, "seriesId": 7, "path": "/data/tv/Severance/Season 01/e01.mkv", "size": 2048},
			{"id": 103, "seriesId": 7, "path": "", "size": 0}
		]`))
	})

	provider := NewSonarrProvider(client, scan.NewRemapper("/data", "/mnt/storage"))

	item := &models.MediaRecord{ID: 7, Title: "Severance"}
	paths, err := provider.ItemFiles(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/mnt/storage/tv/Severance/Season 01/e01.mkv",
		"/mnt/storage/tv/Severance/Season 01/e02.mkv",
	}, paths)
}

func TestSonarrProviderItemFilesFailure(t *testing.T) {
	client := sonarrServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	provider := NewSonarrProvider(client, nil)

	_, err := provider.ItemFiles(context.Background(), &models.MediaRecord{ID: 7, Title: "Severance"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"Severance"`)

	var apiErr *sonarr.APIError
	assert.ErrorAs(t, err, &apiErr)
}

func TestProviderProbes(t *testing.T) {
	radarrClient := radarrServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v3/system/status", r.URL.Path)
		_, _ = w.Write([]byte(`{"appName": "Radarr", "version": "5.14.0"}`))
	})
	sonarrClient := sonarrServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	require.NoError(t, NewRadarrProvider(radarrClient, nil).Test(context.Background()))
	require.Error(t, NewSonarrProvider(sonarrClient, nil).Test(context.Background()))
}
