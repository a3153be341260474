// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package scan

import (
	"sort"

	"github.com/autobrr/linkarr/internal/models"
)

// Orphan reasons are part of the API surface; clients match on them.
const (
	ReasonNotInTorrents = "Not tracked by any torrent"
	ReasonNotInServices = "Not tracked by library services"
)

// OrphanDetector computes the set difference between scanned main files and
// the tracking aggregate. Which sources count depends on where a file lives:
// files under torrent roots must be claimed by a torrent, files under
// library roots must be claimed by a library service. Classification already
// happened during the walk, so anything that is not a main file never
// reaches this stage.
type OrphanDetector struct {
	tracking *TrackingAggregate
}

func NewOrphanDetector(tracking *TrackingAggregate) *OrphanDetector {
	return &OrphanDetector{tracking: tracking}
}

// Detect returns every unclaimed main file, largest first.
func (d *OrphanDetector) Detect(files []models.FileRecord) []models.OrphanedFile {
	var orphans []models.OrphanedFile
	seen := make(map[string]struct{})

	for i := range files {
		rec := &files[i]
		if rec.Class != models.ClassMain {
			continue
		}

		key := normalizePath(rec.Path)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		var reason string
		switch rec.Location {
		case models.LocationTorrent:
			if d.tracking.TrackedByTorrent(rec.Path) {
				continue
			}
			reason = ReasonNotInTorrents
		case models.LocationLibrary:
			if d.tracking.TrackedByService(rec.Path) {
				continue
			}
			reason = ReasonNotInServices
		default:
			continue
		}

		orphans = append(orphans, models.OrphanedFile{
			Path:       rec.Path,
			Size:       rec.Size,
			Location:   rec.Location,
			Reason:     reason,
			ModifiedAt: rec.ModifiedAt,
		})
	}

	sort.Slice(orphans, func(i, j int) bool {
		if orphans[i].Size != orphans[j].Size {
			return orphans[i].Size > orphans[j].Size
		}
		return orphans[i].Path < orphans[j].Path
	})

	return orphans
}
