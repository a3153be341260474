// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package update

import (
	"errors"
	"os"
	"runtime"
	"strings"
)

// ErrSelfUpdateUnsupported means the running binary cannot replace itself
// in this environment, so the update must happen through the deployment
// mechanism instead.
var ErrSelfUpdateUnsupported = errors.New("self-update is not supported in this environment")

// Container images pin a binary at build time. An in-place swap would be
// lost on the next restart, so the updater refuses to run when any of the
// usual container markers are present.
var containerMarkers = []string{
	"/.dockerenv",
	"/run/.containerenv",
}

func isRunningInContainer() bool {
	for _, marker := range containerMarkers {
		if _, err := os.Stat(marker); err == nil {
			return true
		}
	}

	// Fall back to PID 1 cgroup inspection for runtimes that do not drop
	// a marker file.
	cgroup, err := os.ReadFile("/proc/1/cgroup")
	if err != nil {
		return false
	}
	for _, keyword := range []string{"docker", "kubepods", "containerd", "libpod"} {
		if strings.Contains(string(cgroup), keyword) {
			return true
		}
	}

	return false
}

// isSelfUpdateSupportedPlatform reports whether the OS lets a running
// binary overwrite itself. Windows locks executing files.
func isSelfUpdateSupportedPlatform() bool {
	return runtime.GOOS != "windows"
}
