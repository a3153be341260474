// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/linkarr/internal/api/sse"
	"github.com/autobrr/linkarr/internal/database"
	"github.com/autobrr/linkarr/internal/models"
	"github.com/autobrr/linkarr/internal/services/runner"
	"github.com/autobrr/linkarr/internal/services/scan"
	"github.com/autobrr/linkarr/internal/testdb"
)

// handlerStack is the real service stack the handlers are wired against in
// production: a scanner over a temp root, a sqlite-backed run store, and the
// runner in front of both.
type handlerStack struct {
	runs    *runner.Service
	store   *models.ScanRunStore
	deleter *scan.Deleter
	root    string
}

type releasableTorrents struct {
	release chan struct{}
}

func (g *releasableTorrents) Torrents(ctx context.Context) ([]models.TorrentRecord, error) {
	select {
	case <-g.release:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func newHandlerStack(t *testing.T, torrents scan.TorrentProvider) *handlerStack {
	t.Helper()

	db, err := database.New(testdb.Path(t, "linkarr.db"))
	require.NoError(t, err)

	root := t.TempDir()
	roots := []scan.Root{{Path: root, Location: models.LocationTorrent}}

	policy := scan.DefaultPolicy()
	policy.TorrentMediaFloor = 16

	scanner, err := scan.New(scan.Config{Roots: roots, Policy: policy}, torrents)
	require.NoError(t, err)

	store := models.NewScanRunStore(db)
	events := sse.NewManager()
	runs := runner.New(scanner, store, events)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = runs.Shutdown(ctx)
		_ = events.Shutdown(ctx)
		_ = db.Close()
	})

	return &handlerStack{runs: runs, store: store, deleter: scan.NewDeleter(roots), root: root}
}

// seedCompletedRun plants a finished run in the store, the way a previous
// process would have left it.
func seedCompletedRun(t *testing.T, store *models.ScanRunStore, result *models.ScanResult) *models.ScanRun {
	t.Helper()

	ctx := context.Background()
	run, err := store.CreateRunIfNoActive(ctx, "api")
	require.NoError(t, err)
	require.NoError(t, store.SetRunning(ctx, run.ID))
	require.NoError(t, store.SetCompleted(ctx, run.ID, result))
	return run
}

func sampleScanResult() *models.ScanResult {
	now := time.Now().UTC().Truncate(time.Second)
	return &models.ScanResult{
		Statistics: models.ScanStatistics{TotalFiles: 4, OrphanedFiles: 2, OrphanedSize: 160},
		Orphans: []models.OrphanedFile{
			{Path: "/downloads/Alpha.2020.mkv", Size: 100, Location: models.LocationTorrent, Reason: scan.ReasonNotInTorrents},
			{Path: "/downloads/Beta.2021.mkv", Size: 60, Location: models.LocationTorrent, Reason: scan.ReasonNotInTorrents},
		},
		HardlinkGroups: []models.HardlinkGroup{
			{Identity: "2049:101", Files: []string{"/downloads/a.mkv", "/movies/a.mkv", "/backup/a.mkv"}, FileSize: 100, LinkCount: 3},
			{Identity: "2049:102", Files: []string{"/downloads/b.mkv", "/movies/b.mkv"}, FileSize: 50, LinkCount: 2},
		},
		CrossSeedGroups: []models.CrossSeedGroup{
			{
				Title:     "Alpha",
				Files:     []string{"/downloads/Alpha.2020.mkv"},
				Torrents:  []models.CrossSeedTorrent{{Hash: "aaa", Name: "Alpha.2020"}, {Hash: "bbb", Name: "Alpha.2020"}},
				Trackers:  []string{"tracker.example.org"},
				TotalSize: 100,
			},
		},
		StartedAt:  now.Add(-time.Minute),
		FinishedAt: now,
	}
}

func waitForRunStatus(t *testing.T, store *models.ScanRunStore, id int64, status string) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for {
		run, err := store.GetRun(context.Background(), id)
		require.NoError(t, err)
		if run.Status == status {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("run %d stuck in %s, want %s", id, run.Status, status)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func scanRouter(f *handlerStack) *chi.Mux {
	r := chi.NewRouter()
	NewScanHandler(f.runs).RegisterRoutes(r)
	return r
}

func TestScanHandlerTrigger(t *testing.T) {
	f := newHandlerStack(t, nil)
	r := scanRouter(f)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/scan", nil))
	require.Equal(t, http.StatusAccepted, w.Code)

	var run models.ScanRun
	require.NoError(t, json.NewDecoder(w.Body).Decode(&run))
	assert.Positive(t, run.ID)
	assert.Equal(t, "api", run.TriggerSource)
	assert.Equal(t, models.ScanStatusPending, run.Status)

	waitForRunStatus(t, f.store, run.ID, models.ScanStatusCompleted)
}

func TestScanHandlerTriggerConflict(t *testing.T) {
	gate := &releasableTorrents{release: make(chan struct{})}
	f := newHandlerStack(t, gate)
	r := scanRouter(f)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/scan", nil))
	require.Equal(t, http.StatusAccepted, w.Code)

	var run models.ScanRun
	require.NoError(t, json.NewDecoder(w.Body).Decode(&run))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/scan", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "already running")

	close(gate.release)
	waitForRunStatus(t, f.store, run.ID, models.ScanStatusCompleted)
}

func TestScanHandlerLatest(t *testing.T) {
	f := newHandlerStack(t, nil)
	seedCompletedRun(t, f.store, sampleScanResult())
	r := scanRouter(f)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/scan", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var run models.ScanRun
	require.NoError(t, json.NewDecoder(w.Body).Decode(&run))
	assert.Equal(t, models.ScanStatusCompleted, run.Status)
	assert.Equal(t, 4, run.Statistics.TotalFiles)
	require.NotNil(t, run.Result)
	assert.Len(t, run.Result.Orphans, 2)
}

func TestScanHandlerLatestNoRuns(t *testing.T) {
	f := newHandlerStack(t, nil)
	r := scanRouter(f)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/scan", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "No completed scan yet")
}

func TestScanHandlerListRuns(t *testing.T) {
	f := newHandlerStack(t, nil)
	seedCompletedRun(t, f.store, sampleScanResult())
	seedCompletedRun(t, f.store, sampleScanResult())
	r := scanRouter(f)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/scans", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var runs []models.ScanRun
	require.NoError(t, json.NewDecoder(w.Body).Decode(&runs))
	assert.Len(t, runs, 2)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/scans?limit=1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&runs))
	assert.Len(t, runs, 1)
}

func TestScanHandlerListRunsEmpty(t *testing.T) {
	f := newHandlerStack(t, nil)
	r := scanRouter(f)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/scans", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestScanHandlerGetRun(t *testing.T) {
	f := newHandlerStack(t, nil)
	run := seedCompletedRun(t, f.store, sampleScanResult())
	r := scanRouter(f)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/scans/"+strconv.FormatInt(run.ID, 10), nil))
	require.Equal(t, http.StatusOK, w.Code)

	var got models.ScanRun
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, run.ID, got.ID)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/scans/999999", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/scans/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
