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
)

func hardlinksRouter(f *handlerStack) *chi.Mux {
	r := chi.NewRouter()
	NewHardlinksHandler(f.runs).RegisterRoutes(r)
	return r
}

func TestHardlinksHandlerList(t *testing.T) {
	f := newHandlerStack(t, nil)
	seedCompletedRun(t, f.store, sampleScanResult())
	r := hardlinksRouter(f)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/hardlinks", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp HardlinksResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 2, resp.Count)
	require.Len(t, resp.Groups, 2)

	// Three links of a 100 byte file dedupe 200 bytes; two links of a 50
	// byte file dedupe 50 more.
	assert.Equal(t, int64(250), resp.SavedBytes)
	assert.Equal(t, "2049:101", resp.Groups[0].Identity)
	assert.Equal(t, 3, resp.Groups[0].LinkCount)
}

func TestHardlinksHandlerListNoScan(t *testing.T) {
	f := newHandlerStack(t, nil)
	r := hardlinksRouter(f)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/hardlinks", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "No completed scan yet")
}
