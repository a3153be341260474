//go:build !windows

// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package update

import "testing"

func TestPlatformAllowsSelfUpdate(t *testing.T) {
	if !isSelfUpdateSupportedPlatform() {
		t.Fatal("expected self-update support on this platform")
	}
}
