// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

//go:build !windows

package scan

import (
	"reflect"
	"testing"

	"github.com/autobrr/linkarr/internal/models"
	"github.com/autobrr/linkarr/pkg/hardlink"
)

// Two files sharing an inode number on different devices are unrelated.
// Grouping them would merge files across mounted volumes.
func TestGroupsKeyOnDeviceAndInode(t *testing.T) {
	ix := NewHardlinkIndex()
	ix.Add(models.FileRecord{
		Path:     "/mnt/disk1/movie.mkv",
		Size:     100,
		Identity: hardlink.FileID{Dev: 1, Ino: 42},
	})
	ix.Add(models.FileRecord{
		Path:     "/mnt/disk2/other.mkv",
		Size:     100,
		Identity: hardlink.FileID{Dev: 2, Ino: 42},
	})

	if groups := ix.Groups(); len(groups) != 0 {
		t.Fatalf("equal inodes on different devices formed %d groups, want 0", len(groups))
	}

	ix.Add(models.FileRecord{
		Path:     "/mnt/disk1/link.mkv",
		Size:     100,
		Identity: hardlink.FileID{Dev: 1, Ino: 42},
	})

	groups := ix.Groups()
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	want := []string{"/mnt/disk1/link.mkv", "/mnt/disk1/movie.mkv"}
	if !reflect.DeepEqual(groups[0].Files, want) {
		t.Errorf("group files = %v, want %v", groups[0].Files, want)
	}
}
