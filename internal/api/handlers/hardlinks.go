// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/autobrr/linkarr/internal/models"
	"github.com/autobrr/linkarr/internal/services/runner"
)

// HardlinksHandler serves the hardlink-group projection of the latest scan.
type HardlinksHandler struct {
	runs *runner.Service
}

func NewHardlinksHandler(runs *runner.Service) *HardlinksHandler {
	return &HardlinksHandler{runs: runs}
}

func (h *HardlinksHandler) RegisterRoutes(r chi.Router) {
	r.Get("/hardlinks", h.listHardlinks)
}

// HardlinksResponse lists hardlink groups with the space they deduplicate.
type HardlinksResponse struct {
	Groups     []models.HardlinkGroup `json:"groups"`
	Count      int                    `json:"count"`
	SavedBytes int64                  `json:"savedBytes"`
}

func (h *HardlinksHandler) listHardlinks(w http.ResponseWriter, r *http.Request) {
	result, err := latestResult(r.Context(), h.runs)
	if err != nil {
		respondNoScan(w, err)
		return
	}

	groups := result.HardlinkGroups
	if groups == nil {
		groups = []models.HardlinkGroup{}
	}

	// Each extra link of a group stores zero additional bytes.
	var saved int64
	for _, group := range groups {
		saved += group.FileSize * int64(len(group.Files)-1)
	}

	RespondJSON(w, http.StatusOK, HardlinksResponse{
		Groups:     groups,
		Count:      len(groups),
		SavedBytes: saved,
	})
}
