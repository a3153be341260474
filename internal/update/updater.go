// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package update

import (
	"context"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/creativeprojects/go-selfupdate"
)

// Config identifies the release source and the version currently running.
type Config struct {
	Repository string
	Version    string
}

// Updater replaces the running binary with the newest published release.
type Updater struct {
	config Config
}

func NewUpdater(config Config) *Updater {
	return &Updater{
		config: config,
	}
}

// Run downloads and installs an updated binary when a newer release is
// available. It returns true when an update was applied.
func (u *Updater) Run(ctx context.Context) (bool, error) {
	_, err := semver.NewVersion(u.config.Version)
	if err != nil {
		return false, fmt.Errorf("could not parse version: %w", err)
	}

	if !isSelfUpdateSupportedPlatform() {
		return false, ErrSelfUpdateUnsupported
	}
	if isRunningInContainer() {
		return false, fmt.Errorf("%w: update the container image instead", ErrSelfUpdateUnsupported)
	}

	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(u.config.Repository))
	if err != nil {
		return false, fmt.Errorf("detecting latest release: %w", err)
	}
	if !found {
		return false, fmt.Errorf("no release found for %s", u.config.Repository)
	}

	if latest.LessOrEqual(u.config.Version) {
		fmt.Printf("linkarr %s is already the latest version\n", u.config.Version)
		return false, nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return false, fmt.Errorf("locating running binary: %w", err)
	}

	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		return false, fmt.Errorf("installing %s: %w", latest.Version(), err)
	}

	fmt.Printf("Updated to version %s\n", latest.Version())
	return true, nil
}
