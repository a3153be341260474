// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package scan

import (
	"sort"
	"strings"

	"github.com/moistari/rls"

	"github.com/autobrr/linkarr/internal/models"
)

// CrossSeedDetector finds torrents that reference exactly the same set of
// file paths. Partial overlap is not cross-seeding: one shared file between
// otherwise different torrents must not group them, so the grouping key is
// the full sorted path set.
type CrossSeedDetector struct{}

func NewCrossSeedDetector() *CrossSeedDetector {
	return &CrossSeedDetector{}
}

// Detect groups torrents by identical path sets and returns every group
// with at least two members, largest payload first. Torrents with no files
// never group.
func (d *CrossSeedDetector) Detect(torrents []models.TorrentRecord) []models.CrossSeedGroup {
	byKey := make(map[string][]*models.TorrentRecord)

	for i := range torrents {
		t := &torrents[i]
		if len(t.Files) == 0 {
			continue
		}
		key := pathSetKey(t.Files)
		byKey[key] = append(byKey[key], t)
	}

	var groups []models.CrossSeedGroup
	for _, members := range byKey {
		if len(members) < 2 {
			continue
		}
		groups = append(groups, buildGroup(members))
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].TotalSize != groups[j].TotalSize {
			return groups[i].TotalSize > groups[j].TotalSize
		}
		return groups[i].Files[0] < groups[j].Files[0]
	})

	return groups
}

// pathSetKey builds the grouping key from a torrent's file paths. Sizes are
// deliberately not part of the key; identical paths is the contract.
func pathSetKey(files []models.TorrentFile) string {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = normalizePath(f.Path)
	}
	sort.Strings(paths)
	return strings.Join(paths, "\x00")
}

func buildGroup(members []*models.TorrentRecord) models.CrossSeedGroup {
	sort.Slice(members, func(i, j int) bool {
		return members[i].Hash < members[j].Hash
	})

	// All members reference the same paths, so one representative is enough
	// for the file list and the payload size.
	rep := members[0]

	files := make([]string, len(rep.Files))
	var totalSize int64
	for i, f := range rep.Files {
		files[i] = f.Path
		totalSize += f.Size
	}
	sort.Strings(files)

	group := models.CrossSeedGroup{
		Files:     files,
		TotalSize: totalSize,
		Torrents:  make([]models.CrossSeedTorrent, 0, len(members)),
	}

	if release := rls.ParseString(rep.Name); release.Title != "" {
		group.Title = release.Title
	}

	trackers := make(map[string]struct{})
	for _, m := range members {
		group.Torrents = append(group.Torrents, models.CrossSeedTorrent{
			Hash:     m.Hash,
			Name:     m.Name,
			Category: m.Category,
			Tracker:  m.Tracker,
		})
		if m.Tracker != "" {
			trackers[m.Tracker] = struct{}{}
		}
	}

	group.Trackers = make([]string, 0, len(trackers))
	for tr := range trackers {
		group.Trackers = append(group.Trackers, tr)
	}
	sort.Strings(group.Trackers)

	return group
}
