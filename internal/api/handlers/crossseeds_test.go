// Copyright (c) 2025-2026, s0up and the autobrr contributors.
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

	"github.com/autobrr/linkarr/internal/models"
)

func crossSeedsRouter(f *handlerStack) *chi.Mux {
	r := chi.NewRouter()
	NewCrossSeedsHandler(f.runs).RegisterRoutes(r)
	return r
}

func TestCrossSeedsHandlerList(t *testing.T) {
	f := newHandlerStack(t, nil)
	seedCompletedRun(t, f.store, sampleScanResult())
	r := crossSeedsRouter(f)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cross-seeds", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp CrossSeedsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Groups, 1)

	group := resp.Groups[0]
	assert.Equal(t, "Alpha", group.Title)
	require.Len(t, group.Torrents, 2)
	assert.Equal(t, "aaa", group.Torrents[0].Hash)
	assert.Equal(t, []string{"tracker.example.org"}, group.Trackers)
}

func TestCrossSeedsHandlerSearch(t *testing.T) {
	f := newHandlerStack(t, nil)

	result := sampleScanResult()
	result.CrossSeedGroups = append(result.CrossSeedGroups, models.CrossSeedGroup{
		Title: "Shōgun",
		Files: []string{"/data/torrents/tv/Shogun.S01/e01.mkv"},
		Torrents: []models.CrossSeedTorrent{
			{Hash: "ccc", Name: "Shogun.S01.2160p.GroupC", Tracker: "tracker-c"},
			{Hash: "ddd", Name: "Shogun.S01.2160p.GroupD", Tracker: "tracker-d"},
		},
		Trackers:  []string{"tracker-c", "tracker-d"},
		TotalSize: 40 << 30,
	})
	seedCompletedRun(t, f.store, result)
	r := crossSeedsRouter(f)

	// The query and the stored title are normalized the same way, so the
	// plain-ascii query matches the accented title.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cross-seeds?search=shogun", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp CrossSeedsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "Shōgun", resp.Groups[0].Title)

	// Torrent names match too, not just the parsed title.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cross-seeds?search=groupc", nil))
	require.Equal(t, http.StatusOK, w.Code)

	resp = CrossSeedsResponse{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "Shōgun", resp.Groups[0].Title)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cross-seeds?search=zzzzzz", nil))
	require.Equal(t, http.StatusOK, w.Code)

	resp = CrossSeedsResponse{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Zero(t, resp.Count)
	assert.NotNil(t, resp.Groups)
}

func TestCrossSeedsHandlerListNoScan(t *testing.T) {
	f := newHandlerStack(t, nil)
	r := crossSeedsRouter(f)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cross-seeds", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
