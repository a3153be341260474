// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package update

import (
	"runtime"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestCanSelfUpdatePlatformGuard(t *testing.T) {
	svc := NewService(zerolog.Nop(), true, "v1.0.0", "linkarr/test")

	if runtime.GOOS == "windows" {
		assert.False(t, svc.CanSelfUpdate(), "windows binaries cannot replace themselves while running")
		return
	}

	// Elsewhere the answer depends only on container detection, and both
	// helpers must agree with the service-level verdict.
	want := isSelfUpdateSupportedPlatform() && !isRunningInContainer()
	assert.Equal(t, want, svc.CanSelfUpdate())
}

func TestContainerMarkersAreAbsolutePaths(t *testing.T) {
	// Marker probing runs on every update attempt. Relative paths would
	// make the check depend on the working directory.
	for _, marker := range containerMarkers {
		assert.True(t, marker[0] == '/', "marker %q is not absolute", marker)
	}
}
