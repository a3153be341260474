// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/autobrr/linkarr/internal/models"
	"github.com/autobrr/linkarr/internal/services/runner"
	"github.com/autobrr/linkarr/pkg/stringutils"
)

// CrossSeedsHandler serves the cross-seed projection of the latest scan.
type CrossSeedsHandler struct {
	runs *runner.Service
}

func NewCrossSeedsHandler(runs *runner.Service) *CrossSeedsHandler {
	return &CrossSeedsHandler{runs: runs}
}

func (h *CrossSeedsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/cross-seeds", h.listCrossSeeds)
}

// CrossSeedsResponse lists groups of torrents that share payload files.
type CrossSeedsResponse struct {
	Groups []models.CrossSeedGroup `json:"groups"`
	Count  int                     `json:"count"`
}

func (h *CrossSeedsHandler) listCrossSeeds(w http.ResponseWriter, r *http.Request) {
	result, err := latestResult(r.Context(), h.runs)
	if err != nil {
		respondNoScan(w, err)
		return
	}

	groups := result.CrossSeedGroups
	if search := strings.TrimSpace(r.URL.Query().Get("search")); search != "" {
		groups = filterCrossSeeds(groups, search)
	}
	if groups == nil {
		groups = []models.CrossSeedGroup{}
	}

	RespondJSON(w, http.StatusOK, CrossSeedsResponse{
		Groups: groups,
		Count:  len(groups),
	})
}

// filterCrossSeeds matches the query against group titles and torrent names.
// Both sides go through NormalizeForMatching, so "shogun" finds a Shōgun
// release group.
func filterCrossSeeds(groups []models.CrossSeedGroup, search string) []models.CrossSeedGroup {
	needle := stringutils.NormalizeForMatching(search)
	if needle == "" {
		return groups
	}

	matched := make([]models.CrossSeedGroup, 0, len(groups))
	for _, group := range groups {
		if crossSeedMatches(group, needle) {
			matched = append(matched, group)
		}
	}
	return matched
}

func crossSeedMatches(group models.CrossSeedGroup, needle string) bool {
	if strings.Contains(stringutils.NormalizeForMatching(group.Title), needle) {
		return true
	}
	for _, t := range group.Torrents {
		if strings.Contains(stringutils.NormalizeForMatching(t.Name), needle) {
			return true
		}
	}
	return false
}
