// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

//go:build !windows

package hardlink

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

// FileID uniquely identifies a physical file on disk.
// On Unix this is the (device, inode) pair. The inode number alone is not
// enough: two unrelated files on different devices may share an inode.
// The type is comparable and usable as a map key without allocations.
type FileID struct {
	Dev uint64
	Ino uint64
}

// IsZero returns true if the FileID is the zero value (uninitialized).
func (f FileID) IsZero() bool {
	return f.Dev == 0 && f.Ino == 0
}

// String renders the identity as "dev:ino" for logs and JSON output.
func (f FileID) String() string {
	return fmt.Sprintf("%d:%d", f.Dev, f.Ino)
}

// Less orders FileIDs by device, then inode.
func (f FileID) Less(other FileID) bool {
	if f.Dev != other.Dev {
		return f.Dev < other.Dev
	}
	return f.Ino < other.Ino
}

// SameDevice reports whether two identities live on the same filesystem.
func SameDevice(a, b FileID) bool {
	return a.Dev == b.Dev
}

// GetFileID returns the FileID and hardlink count for a stat'ed file.
func GetFileID(fi os.FileInfo, _ string) (FileID, uint64, error) {
	sys, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return FileID{}, 0, errors.New("failed to get syscall.Stat_t")
	}
	return FileID{Dev: uint64(sys.Dev), Ino: sys.Ino}, uint64(sys.Nlink), nil //nolint:gosec // sys.Dev is always non-negative
}
