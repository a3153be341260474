// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package update

import (
	"context"
	"sync"
	"time"

	"github.com/autobrr/autobrr/pkg/version"
	"github.com/rs/zerolog"
)

const checkInterval = 2 * time.Hour

// Service periodically checks for newer releases and remembers the latest
// one it saw. It never installs anything; the updater does that on request.
type Service struct {
	log            zerolog.Logger
	currentVersion string

	m              sync.RWMutex
	isEnabled      bool
	releaseChecker *version.Checker
	latestRelease  *version.Release
}

func NewService(log zerolog.Logger, enabled bool, currentVersion, userAgent string) *Service {
	return &Service{
		log:            log.With().Str("module", "update").Logger(),
		currentVersion: currentVersion,
		isEnabled:      enabled,
		releaseChecker: &version.Checker{
			Owner: "autobrr",
			Repo:  "linkarr",
		},
	}
}

// SetEnabled toggles the periodic check at runtime.
func (s *Service) SetEnabled(enabled bool) {
	s.m.Lock()
	s.isEnabled = enabled
	s.m.Unlock()

	s.log.Debug().Bool("enabled", enabled).Msg("update checks toggled")
}

// GetLatestRelease returns the newest release seen so far, or nil.
func (s *Service) GetLatestRelease(_ context.Context) *version.Release {
	s.m.RLock()
	defer s.m.RUnlock()
	return s.latestRelease
}

// CanSelfUpdate reports whether this environment supports replacing the
// running binary.
func (s *Service) CanSelfUpdate() bool {
	return isSelfUpdateSupportedPlatform() && !isRunningInContainer()
}

// Start launches the periodic check loop. It returns immediately; the loop
// stops when ctx is canceled.
func (s *Service) Start(ctx context.Context) {
	go func() {
		s.CheckUpdates(ctx)

		ticker := time.NewTicker(checkInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.CheckUpdates(ctx)
			}
		}
	}()
}

// CheckUpdates queries the release feed once. Failures are logged and
// swallowed; the next tick tries again.
func (s *Service) CheckUpdates(ctx context.Context) {
	s.m.RLock()
	enabled := s.isEnabled
	s.m.RUnlock()

	if !enabled {
		return
	}

	newAvailable, newRelease, err := s.releaseChecker.CheckNewVersion(ctx, s.currentVersion)
	if err != nil {
		s.log.Debug().Err(err).Msg("could not check for new release")
		return
	}

	if !newAvailable || newRelease == nil {
		return
	}

	s.m.Lock()
	s.latestRelease = newRelease
	s.m.Unlock()

	s.log.Info().
		Str("current", s.currentVersion).
		Str("latest", newRelease.TagName).
		Msg("new release available")
}
