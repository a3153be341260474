// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package buildinfo holds version metadata stamped in at build time.
package buildinfo

import (
	"encoding/json"
	"fmt"
	"runtime"
)

// Set via ldflags at release build time.
var (
	Version = "dev"
	Commit  = ""
	Date    = ""

	// UserAgent identifies this build to external services.
	UserAgent string
)

func init() {
	UserAgent = fmt.Sprintf("linkarr/%s (%s %s)", Version, runtime.GOOS, runtime.GOARCH)
}

// String renders the build info as printable lines.
func String() string {
	return fmt.Sprintf("Version: %s\nCommit: %s\nBuild date: %s\n", Version, Commit, Date)
}

// JSON renders the build info as a JSON document.
func JSON() ([]byte, error) {
	return json.Marshal(struct {
		Version string `json:"version"`
		Commit  string `json:"commit"`
		Date    string `json:"date"`
	}{
		Version: Version,
		Commit:  Commit,
		Date:    Date,
	})
}
