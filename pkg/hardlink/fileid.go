// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package hardlink resolves the filesystem identity of files so hardlinked
// paths can be grouped by the physical data they share.
package hardlink

import "os"

// FromPath stats path and returns its FileID and hardlink count.
// Symlinks are followed: the identity of the target is what matters.
func FromPath(path string) (FileID, uint64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return FileID{}, 0, err
	}
	return GetFileID(fi, path)
}
