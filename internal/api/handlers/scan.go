// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/linkarr/internal/models"
	"github.com/autobrr/linkarr/internal/services/runner"
)

// ScanHandler triggers scans and serves run history.
type ScanHandler struct {
	runs *runner.Service
}

func NewScanHandler(runs *runner.Service) *ScanHandler {
	return &ScanHandler{runs: runs}
}

func (h *ScanHandler) RegisterRoutes(r chi.Router) {
	r.Post("/scan", h.triggerScan)
	r.Get("/scan", h.getLatestScan)
	r.Route("/scans", func(r chi.Router) {
		r.Get("/", h.listRuns)
		r.Get("/{runID}", h.getRun)
	})
}

func (h *ScanHandler) triggerScan(w http.ResponseWriter, r *http.Request) {
	run, err := h.runs.Trigger(r.Context(), "api")
	if err != nil {
		if errors.Is(err, models.ErrScanRunActive) {
			RespondError(w, http.StatusConflict, "A scan is already running")
			return
		}
		log.Error().Err(err).Msg("Failed to trigger scan")
		RespondError(w, http.StatusInternalServerError, "Failed to trigger scan")
		return
	}

	RespondJSON(w, http.StatusAccepted, run)
}

func (h *ScanHandler) getLatestScan(w http.ResponseWriter, r *http.Request) {
	run, err := h.runs.Latest(r.Context())
	if err != nil {
		if errors.Is(err, models.ErrScanRunNotFound) {
			RespondError(w, http.StatusNotFound, "No completed scan yet")
			return
		}
		log.Error().Err(err).Msg("Failed to load latest scan")
		RespondError(w, http.StatusInternalServerError, "Failed to load latest scan")
		return
	}

	RespondJSON(w, http.StatusOK, run)
}

func (h *ScanHandler) listRuns(w http.ResponseWriter, r *http.Request) {
	limit := ParseLimit(r, 20, 100)

	runs, err := h.runs.ListRuns(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list scan runs")
		RespondError(w, http.StatusInternalServerError, "Failed to list scan runs")
		return
	}

	if runs == nil {
		runs = []*models.ScanRun{}
	}
	RespondJSON(w, http.StatusOK, runs)
}

func (h *ScanHandler) getRun(w http.ResponseWriter, r *http.Request) {
	runID, ok := ParseInt64Param(w, r, "runID", "run ID")
	if !ok {
		return
	}

	run, err := h.runs.GetRun(r.Context(), runID)
	if err != nil {
		if errors.Is(err, models.ErrScanRunNotFound) {
			RespondError(w, http.StatusNotFound, "Scan run not found")
			return
		}
		log.Error().Err(err).Int64("runID", runID).Msg("Failed to load scan run")
		RespondError(w, http.StatusInternalServerError, "Failed to load scan run")
		return
	}

	RespondJSON(w, http.StatusOK, run)
}
