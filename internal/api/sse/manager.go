// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package sse streams scan lifecycle events to API subscribers.
package sse

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmaxmax/go-sse"

	"github.com/autobrr/linkarr/internal/models"
)

const (
	EventScanStarted  = "scan_started"
	EventScanComplete = "scan_complete"
	EventScanFailed   = "scan_failed"
	eventHeartbeat    = "heartbeat"

	heartbeatInterval = 30 * time.Second
)

// Event is the message envelope sent to subscribers.
type Event struct {
	Type       string                 `json:"type"`
	Timestamp  time.Time              `json:"timestamp"`
	RunID      int64                  `json:"runId,omitempty"`
	Trigger    string                 `json:"trigger,omitempty"`
	Statistics *models.ScanStatistics `json:"statistics,omitempty"`
	Err        string                 `json:"error,omitempty"`
}

// Manager owns the SSE server. Every subscriber sees every event; there is a
// single stream, so no per-subscriber topics are needed.
type Manager struct {
	server *sse.Server

	closing atomic.Bool
	cancel  context.CancelFunc
}

func NewManager() *Manager {
	replayer, err := sse.NewFiniteReplayer(8, true)
	if err != nil {
		// A nil replayer still streams; reconnecting clients just cannot
		// catch up on missed events.
		log.Warn().Err(err).Msg("Failed to create SSE replayer; reconnecting clients may miss events")
		replayer = nil
	}

	ctx, cancel := context.WithCancel(context.Background())

	m := &Manager{
		server: &sse.Server{
			Provider: &sse.Joe{Replayer: replayer},
		},
		cancel: cancel,
	}

	go m.heartbeatLoop(ctx)

	return m
}

// Serve blocks until the client disconnects.
func (m *Manager) Serve(w http.ResponseWriter, r *http.Request) {
	if m.closing.Load() {
		http.Error(w, "stream shutting down", http.StatusServiceUnavailable)
		return
	}

	// SSE connections are long-lived; disable the write deadline inherited
	// from the main HTTP server so streams aren't terminated by WriteTimeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	m.server.ServeHTTP(w, r)
}

func (m *Manager) PublishScanStarted(runID int64, trigger string) {
	m.publish(&Event{
		Type:      EventScanStarted,
		Timestamp: time.Now(),
		RunID:     runID,
		Trigger:   trigger,
	})
}

func (m *Manager) PublishScanComplete(runID int64, stats models.ScanStatistics) {
	m.publish(&Event{
		Type:       EventScanComplete,
		Timestamp:  time.Now(),
		RunID:      runID,
		Statistics: &stats,
	})
}

func (m *Manager) PublishScanFailed(runID int64, cause string) {
	m.publish(&Event{
		Type:      EventScanFailed,
		Timestamp: time.Now(),
		RunID:     runID,
		Err:       cause,
	})
}

func (m *Manager) publish(event *Event) {
	if m.closing.Load() {
		return
	}

	encoded, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("type", event.Type).Msg("Failed to marshal SSE payload")
		return
	}

	message := &sse.Message{
		Type: sse.Type(event.Type),
	}
	message.AppendData(string(encoded))

	if err := m.server.Publish(message); err != nil && !errors.Is(err, sse.ErrProviderClosed) {
		log.Error().Err(err).Str("type", event.Type).Msg("Failed to publish SSE message")
	}
}

func (m *Manager) heartbeatLoop(ctx context.Context) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.publish(&Event{
				Type:      eventHeartbeat,
				Timestamp: time.Now(),
			})
		}
	}
}

func (m *Manager) Shutdown(ctx context.Context) error {
	if m == nil {
		return nil
	}

	if !m.closing.CompareAndSwap(false, true) {
		return nil
	}

	m.cancel()

	if ctx == nil {
		ctx = context.Background()
	}

	if err := m.server.Shutdown(ctx); err != nil &&
		!errors.Is(err, sse.ErrProviderClosed) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return nil
}
