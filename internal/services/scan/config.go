// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package scan

import (
	"fmt"
	"path/filepath"

	"github.com/autobrr/linkarr/internal/models"
)

// Size floors separating main content from extras. The torrent-side floor is
// deliberately more lenient: legitimate small video files occur inside
// torrents, while anything that small under a library root is an extra.
const (
	DefaultLibraryMediaFloor = 100 << 20 // 100 MiB
	DefaultTorrentMediaFloor = 10 << 20  // 10 MiB
)

// Root is one configured scan root and the category it belongs to.
type Root struct {
	Path     string
	Location models.FileLocation
}

// Config holds everything one scan run needs. Roots may be empty or point at
// directories that do not exist; both contribute zero files.
type Config struct {
	Roots []Root

	// RemotePathBase/LocalPathBase translate collaborator-reported paths
	// into host path space. Empty bases disable remapping.
	RemotePathBase string
	LocalPathBase  string

	Policy Policy
}

// NormalizeRoots cleans root paths and rejects relative ones. Roots are the
// safety boundary for deletion, so they must be unambiguous.
func NormalizeRoots(roots []Root) ([]Root, error) {
	out := make([]Root, 0, len(roots))
	for _, r := range roots {
		if r.Path == "" {
			continue
		}
		cleaned := filepath.Clean(r.Path)
		if !filepath.IsAbs(cleaned) {
			return nil, fmt.Errorf("scan root must be absolute: %s", r.Path)
		}
		out = append(out, Root{Path: cleaned, Location: r.Location})
	}
	return out, nil
}
