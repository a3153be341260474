// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/autobrr/linkarr/internal/api"
	"github.com/autobrr/linkarr/internal/api/sse"
	"github.com/autobrr/linkarr/internal/buildinfo"
	"github.com/autobrr/linkarr/internal/database"
	"github.com/autobrr/linkarr/internal/domain"
	"github.com/autobrr/linkarr/internal/logger"
	"github.com/autobrr/linkarr/internal/metrics"
	"github.com/autobrr/linkarr/internal/models"
	"github.com/autobrr/linkarr/internal/services/runner"
	"github.com/autobrr/linkarr/internal/services/scan"
	"github.com/autobrr/linkarr/internal/update"
)

const shutdownTimeout = 15 * time.Second

func RunServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Config.Validate(); err != nil {
				return err
			}
			if !cfg.Config.HasScanRoots() {
				log.Warn().Msg("no scan roots configured, scans will find nothing")
			}

			log.Info().
				Str("version", buildinfo.Version).
				Str("config", cfg.ConfigPath()).
				Msg("starting linkarr")
			log.Debug().Interface("config", cfg.Config.Redacted()).Msg("effective configuration")

			db, err := database.New(cfg.GetDatabasePath())
			if err != nil {
				return err
			}
			defer db.Close()

			store := models.NewScanRunStore(db)

			ctx, cancel := commandContext()
			defer cancel()

			// Runs left active by a previous process can never finish.
			if failed, err := store.FailActiveRuns(ctx, "interrupted by restart"); err != nil {
				log.Warn().Err(err).Msg("failed to settle stale scan runs")
			} else if failed > 0 {
				log.Info().Int64("count", failed).Msg("marked stale scan runs as failed")
			}

			stack, err := newScanStack(cfg.Config)
			if err != nil {
				return err
			}

			sseManager := sse.NewManager()
			runs := runner.New(stack.scanner, store, sseManager)
			deleter := scan.NewDeleter(stack.scanner.Config().Roots)

			updates := update.NewService(log.Logger, cfg.Config.CheckForUpdates, buildinfo.Version, buildinfo.UserAgent)
			updates.Start(ctx)

			cfg.DynamicReload(func(c *domain.Config) {
				logger.SetLogLevel(c.LogLevel)
				updates.SetEnabled(c.CheckForUpdates)
			})

			var metricsServer *metrics.MetricsServer
			if cfg.Config.MetricsEnabled {
				manager := metrics.NewMetricsManager(runs)
				metricsServer = metrics.NewMetricsServer(manager, cfg.Config.MetricsHost, cfg.Config.MetricsPort, cfg.Config.MetricsBasicAuthUsers)
				go func() {
					if err := metricsServer.ListenAndServe(); err != nil {
						log.Error().Err(err).Msg("metrics server failed")
					}
				}()
			}

			srv := api.NewServer(&api.Dependencies{
				Config:     cfg,
				Version:    buildinfo.Version,
				Runner:     runs,
				Deleter:    deleter,
				SSEManager: sseManager,
				Updates:    updates,
				Probes:     stack.probes(),
			})

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			log.Info().Msg("shutting down")

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer shutdownCancel()

			// Cancel any active run first, then close the event streams so the
			// HTTP server's drain is not held open by subscribers.
			if err := runs.Shutdown(shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("scan runner did not settle in time")
			}
			if err := sseManager.Shutdown(shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("event stream shutdown failed")
			}
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("API server shutdown failed")
			}
			if metricsServer != nil {
				if err := metricsServer.Shutdown(shutdownCtx); err != nil {
					log.Warn().Err(err).Msg("metrics server shutdown failed")
				}
			}

			return nil
		},
	}

	return cmd
}
