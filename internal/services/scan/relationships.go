// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package scan

import (
	"sort"

	"github.com/autobrr/linkarr/internal/models"
)

// RelationshipBuilder folds the filesystem view and the tracking view into
// one entry per canonical path. The path universe is the union of scanned
// main files and every path a torrent or library service claims, so a
// tracked path missing from disk still shows up, just without identity or
// hardlink data.
type RelationshipBuilder struct {
	index    *HardlinkIndex
	tracking *TrackingAggregate
}

func NewRelationshipBuilder(index *HardlinkIndex, tracking *TrackingAggregate) *RelationshipBuilder {
	return &RelationshipBuilder{index: index, tracking: tracking}
}

// Build produces the full relationship table. The result is a fresh slice
// sorted by path; inputs are not mutated and the content does not depend on
// the order sources were merged in.
func (b *RelationshipBuilder) Build(files []models.FileRecord) []models.FileRelationship {
	byPath := make(map[string]*models.FileRelationship)

	for i := range files {
		rec := &files[i]
		if rec.Class != models.ClassMain {
			continue
		}
		key := normalizePath(rec.Path)
		if _, seen := byPath[key]; seen {
			continue
		}

		entry := &models.FileRelationship{
			FilePath: rec.Path,
			Size:     rec.Size,
		}
		if !rec.Identity.IsZero() {
			entry.Identity = rec.Identity.String()
			entry.LinkCount = int(rec.LinkCount)
			entry.HardlinkedFiles = otherMembers(b.index.PathsFor(rec.Identity), rec.Path)
		}
		byPath[key] = entry
	}

	for _, path := range b.tracking.Paths() {
		if _, seen := byPath[path]; seen {
			continue
		}
		byPath[path] = &models.FileRelationship{
			FilePath: path,
			Size:     b.tracking.Size(path),
		}
	}

	relationships := make([]models.FileRelationship, 0, len(byPath))
	for key, entry := range byPath {
		entry.Torrents = b.tracking.Torrents(key)
		entry.Services = b.tracking.Services(key)
		relationships = append(relationships, *entry)
	}

	sort.Slice(relationships, func(i, j int) bool {
		return relationships[i].FilePath < relationships[j].FilePath
	})

	return relationships
}

// otherMembers drops self from a group member list.
func otherMembers(members []string, self string) []string {
	if len(members) == 0 {
		return nil
	}
	out := members[:0]
	for _, m := range members {
		if m != self {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
