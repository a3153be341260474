// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import "time"

// ScanStatistics are aggregate counters derived from one finished scan.
// Degraded-path skips surface here as lower counts, never as errors.
type ScanStatistics struct {
	TotalFiles      int     `json:"totalFiles"`
	TotalSize       int64   `json:"totalSize"`
	TorrentFiles    int     `json:"torrentFiles"`
	LibraryFiles    int     `json:"libraryFiles"`
	SampleFiles     int     `json:"sampleFiles"`
	ExtraFiles      int     `json:"extraFiles"`
	SkippedFiles    int     `json:"skippedFiles"`
	HardlinkGroups  int     `json:"hardlinkGroups"`
	OrphanedFiles   int     `json:"orphanedFiles"`
	OrphanedSize    int64   `json:"orphanedSize"`
	CrossSeedGroups int     `json:"crossSeedGroups"`
	Torrents        int     `json:"torrents"`
	RadarrItems     int     `json:"radarrItems"`
	SonarrItems     int     `json:"sonarrItems"`
	Duration        float64 `json:"duration"`
}

// ScanResult is the immutable snapshot a completed scan produces.
type ScanResult struct {
	Statistics      ScanStatistics     `json:"statistics"`
	Relationships   []FileRelationship `json:"relationships"`
	Orphans         []OrphanedFile     `json:"orphans"`
	HardlinkGroups  []HardlinkGroup    `json:"hardlinkGroups"`
	CrossSeedGroups []CrossSeedGroup   `json:"crossSeedGroups"`
	StartedAt       time.Time          `json:"startedAt"`
	FinishedAt      time.Time          `json:"finishedAt"`
}
