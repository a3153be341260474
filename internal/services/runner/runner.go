// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package runner drives scan runs for the HTTP API: it records run rows,
// executes the scan in the background, and publishes lifecycle events. The
// scan core itself stays stateless; everything stateful lives out here.
package runner

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/linkarr/internal/api/sse"
	"github.com/autobrr/linkarr/internal/models"
	"github.com/autobrr/linkarr/internal/services/scan"
)

// finalizeTimeout bounds the store writes that settle a run after the run
// context is gone (completion, failure, shutdown cancel).
const finalizeTimeout = 10 * time.Second

type Service struct {
	scanner *scan.Service
	store   *models.ScanRunStore
	events  *sse.Manager

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	activeRun int64
	runCancel context.CancelFunc
	wg        sync.WaitGroup
}

func New(scanner *scan.Service, store *models.ScanRunStore, events *sse.Manager) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		scanner: scanner,
		store:   store,
		events:  events,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Trigger creates a run and starts it in the background. Returns
// models.ErrScanRunActive while another run is active.
func (s *Service) Trigger(ctx context.Context, trigger string) (*models.ScanRun, error) {
	run, err := s.store.CreateRunIfNoActive(ctx, trigger)
	if err != nil {
		return nil, err
	}

	runCtx, runCancel := context.WithCancel(s.ctx)

	s.mu.Lock()
	s.activeRun = run.ID
	s.runCancel = runCancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.execute(runCtx, runCancel, run)

	return run, nil
}

func (s *Service) execute(ctx context.Context, runCancel context.CancelFunc, run *models.ScanRun) {
	defer s.wg.Done()
	defer runCancel()
	defer func() {
		s.mu.Lock()
		if s.activeRun == run.ID {
			s.activeRun = 0
			s.runCancel = nil
		}
		s.mu.Unlock()
	}()

	if err := s.store.SetRunning(ctx, run.ID); err != nil {
		log.Error().Err(err).Int64("runID", run.ID).Msg("failed to mark scan run running")
		s.finalize(run.ID, func(ctx context.Context) error {
			return s.store.SetFailed(ctx, run.ID, err.Error())
		})
		return
	}
	s.events.PublishScanStarted(run.ID, run.TriggerSource)

	snapshot, err := s.scanner.Run(ctx)

	switch {
	case err == nil:
		s.finalize(run.ID, func(ctx context.Context) error {
			return s.store.SetCompleted(ctx, run.ID, snapshot.Result)
		})
		s.events.PublishScanComplete(run.ID, snapshot.Result.Statistics)
		log.Info().Int64("runID", run.ID).Msg("scan run completed")

	case errors.Is(err, scan.ErrAborted) || errors.Is(err, context.Canceled):
		s.finalize(run.ID, func(ctx context.Context) error {
			return s.store.SetCanceled(ctx, run.ID)
		})
		log.Info().Int64("runID", run.ID).Msg("scan run canceled")

	default:
		s.finalize(run.ID, func(ctx context.Context) error {
			return s.store.SetFailed(ctx, run.ID, err.Error())
		})
		s.events.PublishScanFailed(run.ID, err.Error())
		log.Error().Err(err).Int64("runID", run.ID).Msg("scan run failed")
	}
}

// finalize settles the run row on a fresh context; the run context may
// already be canceled by the time a run ends.
func (s *Service) finalize(runID int64, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), finalizeTimeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		log.Error().Err(err).Int64("runID", runID).Msg("failed to finalize scan run")
	}
}

// Running reports whether a triggered run is still active.
func (s *Service) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeRun != 0
}

// ActiveRunID returns the id of the run in flight, or 0.
func (s *Service) ActiveRunID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeRun
}

// Snapshot returns the in-memory snapshot of the last scan finished in this
// process, if any. Deletion safety checks require it; history from previous
// processes is not enough to prove a path is unclaimed now.
func (s *Service) Snapshot() (*scan.Snapshot, bool) {
	return s.scanner.Latest()
}

// Latest returns the newest completed run with its result snapshot,
// surviving restarts via the history store.
func (s *Service) Latest(ctx context.Context) (*models.ScanRun, error) {
	return s.store.LatestCompleted(ctx)
}

func (s *Service) GetRun(ctx context.Context, id int64) (*models.ScanRun, error) {
	return s.store.GetRun(ctx, id)
}

func (s *Service) ListRuns(ctx context.Context, limit int) ([]*models.ScanRun, error) {
	return s.store.ListRuns(ctx, limit)
}

func (s *Service) RunCounts(ctx context.Context) (map[string]int, error) {
	return s.store.CountRunsByStatus(ctx)
}

// LatestStatistics prefers the in-memory snapshot and falls back to the
// newest completed run row, skipping the heavy result column.
func (s *Service) LatestStatistics(ctx context.Context) (models.ScanStatistics, time.Time, bool) {
	if snapshot, ok := s.scanner.Latest(); ok {
		return snapshot.Result.Statistics, snapshot.Result.FinishedAt, true
	}

	run, err := s.store.LatestCompletedSummary(ctx)
	if err != nil {
		if !errors.Is(err, models.ErrScanRunNotFound) {
			log.Warn().Err(err).Msg("failed to load latest completed scan run")
		}
		return models.ScanStatistics{}, time.Time{}, false
	}

	finished := time.Time{}
	if run.FinishedAt != nil {
		finished = *run.FinishedAt
	}
	return run.Statistics, finished, true
}

// Shutdown cancels any active run and waits for it to settle.
func (s *Service) Shutdown(ctx context.Context) error {
	s.cancel()

	s.mu.Lock()
	if s.runCancel != nil {
		s.runCancel()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
