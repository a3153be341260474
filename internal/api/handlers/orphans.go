// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/linkarr/internal/models"
	"github.com/autobrr/linkarr/internal/services/runner"
	"github.com/autobrr/linkarr/internal/services/scan"
)

// OrphansHandler serves the orphan projection of the latest scan and deletes
// orphaned files on request.
type OrphansHandler struct {
	runs    *runner.Service
	deleter *scan.Deleter
}

func NewOrphansHandler(runs *runner.Service, deleter *scan.Deleter) *OrphansHandler {
	return &OrphansHandler{runs: runs, deleter: deleter}
}

func (h *OrphansHandler) RegisterRoutes(r chi.Router) {
	r.Route("/orphans", func(r chi.Router) {
		r.Get("/", h.listOrphans)
		r.Delete("/", h.deleteOrphans)
	})
}

// OrphansResponse is the orphan projection plus aggregate size.
type OrphansResponse struct {
	Orphans   []models.OrphanedFile `json:"orphans"`
	Count     int                   `json:"count"`
	TotalSize int64                 `json:"totalSize"`
}

func (h *OrphansHandler) listOrphans(w http.ResponseWriter, r *http.Request) {
	result, err := latestResult(r.Context(), h.runs)
	if err != nil {
		respondNoScan(w, err)
		return
	}

	orphans := result.Orphans
	if search := strings.TrimSpace(r.URL.Query().Get("search")); search != "" {
		filtered := make([]models.OrphanedFile, 0, len(orphans))
		for _, orphan := range orphans {
			if fuzzy.MatchNormalizedFold(search, orphan.Path) {
				filtered = append(filtered, orphan)
			}
		}
		orphans = filtered
	}

	if orphans == nil {
		orphans = []models.OrphanedFile{}
	}

	var totalSize int64
	for _, orphan := range orphans {
		totalSize += orphan.Size
	}

	RespondJSON(w, http.StatusOK, OrphansResponse{
		Orphans:   orphans,
		Count:     len(orphans),
		TotalSize: totalSize,
	})
}

// DeleteOrphansRequest lists the paths to remove.
type DeleteOrphansRequest struct {
	Paths []string `json:"paths"`
}

func (h *OrphansHandler) deleteOrphans(w http.ResponseWriter, r *http.Request) {
	var req DeleteOrphansRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if len(req.Paths) == 0 {
		RespondError(w, http.StatusBadRequest, "No paths provided")
		return
	}

	// Deletion needs the in-use set from a scan run by this process. A
	// snapshot restored from history cannot prove a path is unclaimed now.
	snapshot, ok := h.runs.Snapshot()
	if !ok {
		RespondError(w, http.StatusConflict, "No scan has completed in this session; run a scan first")
		return
	}

	result := h.deleter.Delete(r.Context(), req.Paths, snapshot)

	log.Info().
		Int("requested", len(req.Paths)).
		Int("deleted", len(result.Deleted)).
		Int("skippedInUse", len(result.SkippedInUse)).
		Int("skippedMissing", len(result.SkippedMissing)).
		Int("failed", len(result.Failed)).
		Msg("orphan deletion finished")

	RespondJSON(w, http.StatusOK, result)
}

// latestResult prefers the in-memory snapshot and falls back to the history
// store, so projections survive a restart.
func latestResult(ctx context.Context, runs *runner.Service) (*models.ScanResult, error) {
	if snapshot, ok := runs.Snapshot(); ok {
		return snapshot.Result, nil
	}

	run, err := runs.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if run.Result == nil {
		return nil, models.ErrScanRunNotFound
	}
	return run.Result, nil
}

func respondNoScan(w http.ResponseWriter, err error) {
	if errors.Is(err, models.ErrScanRunNotFound) {
		RespondError(w, http.StatusNotFound, "No completed scan yet")
		return
	}
	log.Error().Err(err).Msg("Failed to load scan result")
	RespondError(w, http.StatusInternalServerError, "Failed to load scan result")
}
