// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"context"
	"net/http"

	"github.com/autobrr/autobrr/pkg/version"
	"github.com/go-chi/chi/v5"
)

type updateService interface {
	CheckUpdates(ctx context.Context)
	GetLatestRelease(ctx context.Context) *version.Release
}

// UpdatesHandler exposes the release checker: the newest known release and
// an on-demand re-check.
type UpdatesHandler struct {
	service updateService
}

func NewUpdatesHandler(service updateService) *UpdatesHandler {
	return &UpdatesHandler{service: service}
}

// RegisterRoutes wires handler routes under /updates.
func (h *UpdatesHandler) RegisterRoutes(r chi.Router) {
	r.Route("/updates", func(r chi.Router) {
		r.Get("/latest", h.getLatest)
		r.Get("/check", h.checkUpdates)
	})
}

func (h *UpdatesHandler) getLatest(w http.ResponseWriter, r *http.Request) {
	latest := h.service.GetLatestRelease(r.Context())
	if latest == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	RespondJSON(w, http.StatusOK, latest)
}

func (h *UpdatesHandler) checkUpdates(w http.ResponseWriter, r *http.Request) {
	h.service.CheckUpdates(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
