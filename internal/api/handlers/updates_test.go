// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/autobrr/autobrr/pkg/version"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUpdateService struct {
	latest  *version.Release
	checked int
}

func (s *stubUpdateService) CheckUpdates(_ context.Context) {
	s.checked++
}

func (s *stubUpdateService) GetLatestRelease(_ context.Context) *version.Release {
	return s.latest
}

func updatesRequest(t *testing.T, svc updateService, path string) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	NewUpdatesHandler(svc).RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUpdatesLatestNoneKnown(t *testing.T) {
	t.Parallel()

	w := updatesRequest(t, &stubUpdateService{}, "/updates/latest")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())
}

func TestUpdatesLatestKnownRelease(t *testing.T) {
	t.Parallel()

	svc := &stubUpdateService{latest: &version.Release{TagName: "v1.2.0"}}

	w := updatesRequest(t, svc, "/updates/latest")

	assert.Equal(t, http.StatusOK, w.Code)

	var release version.Release
	require.NoError(t, json.NewDecoder(w.Body).Decode(&release))
	assert.Equal(t, "v1.2.0", release.TagName)
}

func TestUpdatesCheckTriggersService(t *testing.T) {
	t.Parallel()

	svc := &stubUpdateService{}

	w := updatesRequest(t, svc, "/updates/check")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 1, svc.checked)
}
