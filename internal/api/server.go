// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/linkarr/internal/api/handlers"
	"github.com/autobrr/linkarr/internal/api/middleware"
	"github.com/autobrr/linkarr/internal/api/sse"
	"github.com/autobrr/linkarr/internal/config"
	"github.com/autobrr/linkarr/internal/services/runner"
	"github.com/autobrr/linkarr/internal/services/scan"
	"github.com/autobrr/linkarr/internal/update"
)

const (
	compressionMinSize = 1024
	compressionLevel   = 5
)

// Dependencies carries everything the HTTP layer serves.
type Dependencies struct {
	Config  *config.AppConfig
	Version string

	Runner     *runner.Service
	Deleter    *scan.Deleter
	SSEManager *sse.Manager
	Updates    *update.Service
	Probes     []handlers.Probe
}

// Server is the HTTP front end for scans, projections and events.
type Server struct {
	config *config.AppConfig
	deps   *Dependencies

	httpServer *http.Server
}

// NewServer creates the API server from its dependencies.
func NewServer(deps *Dependencies) *Server {
	return &Server{
		config: deps.Config,
		deps:   deps,
	}
}

// Handler builds the router. Routes live under {baseUrl}/api.
func (s *Server) Handler() (http.Handler, error) {
	baseURL, err := normalizeBaseURL(s.config.Config.BaseURL)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log.Logger))

	c := cors.New(cors.Options{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	scanHandler := handlers.NewScanHandler(s.deps.Runner)
	orphansHandler := handlers.NewOrphansHandler(s.deps.Runner, s.deps.Deleter)
	hardlinksHandler := handlers.NewHardlinksHandler(s.deps.Runner)
	crossSeedsHandler := handlers.NewCrossSeedsHandler(s.deps.Runner)
	configHandler := handlers.NewConfigHandler(s.config, s.deps.Version)
	healthHandler := handlers.NewHealthHandler(s.deps.Probes...)
	updatesHandler := handlers.NewUpdatesHandler(s.deps.Updates)

	r.Route(routePath(baseURL, "/api"), func(api chi.Router) {
		api.Group(func(api chi.Router) {
			api.Use(middleware.Compress(compressionMinSize, compressionLevel))

			scanHandler.RegisterRoutes(api)
			orphansHandler.RegisterRoutes(api)
			hardlinksHandler.RegisterRoutes(api)
			crossSeedsHandler.RegisterRoutes(api)
			configHandler.RegisterRoutes(api)
			healthHandler.RegisterRoutes(api)
			updatesHandler.RegisterRoutes(api)
		})

		// The event stream stays outside the compression group. Encoders
		// buffer output and would hold events back.
		api.Get("/events", s.deps.SSEManager.Serve)
	})

	if s.config.Config.PprofEnabled {
		r.Mount(routePath(baseURL, "/debug"), chimiddleware.Profiler())
	}

	return r, nil
}

// ListenAndServe blocks serving the API until Shutdown or listener failure.
func (s *Server) ListenAndServe() error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(s.config.Config.Host, strconv.Itoa(s.config.Config.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	// No global read/write timeouts: the event stream holds its request
	// open indefinitely and a read deadline would tear it down.
	s.httpServer = &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Info().Str("addr", listener.Addr().String()).Msg("API server listening")

	if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// normalizeBaseURL ensures a leading and trailing slash.
func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "/" {
		return "/", nil
	}

	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	if strings.Contains(raw, "//") {
		return "", fmt.Errorf("invalid baseUrl: %q", raw)
	}

	return raw, nil
}

func routePath(baseURL, sub string) string {
	if baseURL == "/" {
		return sub
	}
	return strings.TrimSuffix(baseURL, "/") + sub
}
