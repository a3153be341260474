// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package scan

import (
	"sort"
	"sync"

	"github.com/autobrr/linkarr/internal/models"
	"github.com/autobrr/linkarr/pkg/hardlink"
)

// HardlinkIndex groups scanned files by filesystem identity. Files whose
// identity could not be resolved never enter the index. The index is the one
// structure fed from concurrent walks, so all access is mutex guarded.
type HardlinkIndex struct {
	mu     sync.RWMutex
	byID   map[hardlink.FileID][]string
	sizes  map[hardlink.FileID]int64
	links  map[hardlink.FileID]uint64
	byPath map[string]hardlink.FileID
}

func NewHardlinkIndex() *HardlinkIndex {
	return &HardlinkIndex{
		byID:   make(map[hardlink.FileID][]string),
		sizes:  make(map[hardlink.FileID]int64),
		links:  make(map[hardlink.FileID]uint64),
		byPath: make(map[string]hardlink.FileID),
	}
}

// Add registers one file record. Records without identity are ignored, and a
// path already present keeps its first registration since overlapping roots
// can surface the same file twice.
func (ix *HardlinkIndex) Add(rec models.FileRecord) {
	if rec.Identity.IsZero() {
		return
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if _, seen := ix.byPath[rec.Path]; seen {
		return
	}

	ix.byPath[rec.Path] = rec.Identity
	ix.byID[rec.Identity] = append(ix.byID[rec.Identity], rec.Path)
	ix.sizes[rec.Identity] = rec.Size
	if rec.LinkCount > ix.links[rec.Identity] {
		ix.links[rec.Identity] = rec.LinkCount
	}
}

// AddAll registers a batch of records.
func (ix *HardlinkIndex) AddAll(records []models.FileRecord) {
	for _, rec := range records {
		ix.Add(rec)
	}
}

// Len returns the number of indexed paths.
func (ix *HardlinkIndex) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.byPath)
}

// IdentityFor returns the identity recorded for a scanned path.
func (ix *HardlinkIndex) IdentityFor(path string) (hardlink.FileID, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	id, ok := ix.byPath[path]
	return id, ok
}

// PathsFor returns a sorted copy of all scanned paths sharing an identity.
func (ix *HardlinkIndex) PathsFor(id hardlink.FileID) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return sortedCopy(ix.byID[id])
}

// HardlinksFor returns every scanned path sharing the given path's identity,
// the path itself included. Paths the walk never saw fall back to a direct
// stat so callers can ask about arbitrary files; if even that fails the path
// is its own group of one.
func (ix *HardlinkIndex) HardlinksFor(path string) []string {
	ix.mu.RLock()
	id, ok := ix.byPath[path]
	ix.mu.RUnlock()

	if !ok {
		statID, _, err := hardlink.FromPath(path)
		if err != nil {
			return []string{path}
		}
		id = statID
	}

	ix.mu.RLock()
	members := sortedCopy(ix.byID[id])
	ix.mu.RUnlock()

	if len(members) == 0 {
		return []string{path}
	}
	return members
}

// Groups returns every identity with at least two scanned paths, largest
// file first. Ties break on identity so output is stable across runs.
func (ix *HardlinkIndex) Groups() []models.HardlinkGroup {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	groups := make([]models.HardlinkGroup, 0)
	for id, paths := range ix.byID {
		if len(paths) < 2 {
			continue
		}
		groups = append(groups, models.HardlinkGroup{
			Identity:  id.String(),
			Files:     sortedCopy(paths),
			FileSize:  ix.sizes[id],
			LinkCount: int(ix.links[id]),
		})
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].FileSize != groups[j].FileSize {
			return groups[i].FileSize > groups[j].FileSize
		}
		return groups[i].Identity < groups[j].Identity
	})

	return groups
}

func sortedCopy(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}
