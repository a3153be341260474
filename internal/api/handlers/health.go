// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

const probeTimeout = 10 * time.Second

// Probe checks reachability of one collaborator service.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthHandler reports process liveness plus collaborator reachability.
// An unreachable collaborator degrades the status but the endpoint itself
// always answers 200 while the process is alive.
type HealthHandler struct {
	probes []Probe
}

func NewHealthHandler(probes ...Probe) *HealthHandler {
	return &HealthHandler{probes: probes}
}

func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.handleHealth)
}

// ServiceHealth is the probe outcome for one collaborator.
type ServiceHealth struct {
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// HealthResponse is the aggregate health payload.
type HealthResponse struct {
	Status   string                   `json:"status"`
	Services map[string]ServiceHealth `json:"services"`
}

func (h *HealthHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		services = make(map[string]ServiceHealth, len(h.probes))
	)

	for _, probe := range h.probes {
		wg.Add(1)
		go func() {
			defer wg.Done()

			err := probe.Check(ctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				services[probe.Name] = ServiceHealth{Error: err.Error()}
				return
			}
			services[probe.Name] = ServiceHealth{Healthy: true}
		}()
	}
	wg.Wait()

	status := "ok"
	for _, svc := range services {
		if !svc.Healthy {
			status = "degraded"
			break
		}
	}

	RespondJSON(w, http.StatusOK, HealthResponse{
		Status:   status,
		Services: services,
	})
}
