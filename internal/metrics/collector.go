// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/linkarr/internal/services/runner"
)

// ScanCollector exports the latest finished scan's statistics as gauges and
// the run history as counters. Values are read at scrape time; nothing is
// pushed.
type ScanCollector struct {
	runs *runner.Service

	scanRunningDesc     *prometheus.Desc
	runsTotalDesc       *prometheus.Desc
	lastScanDesc        *prometheus.Desc
	scanDurationDesc    *prometheus.Desc
	filesTotalDesc      *prometheus.Desc
	bytesTotalDesc      *prometheus.Desc
	mainFilesDesc       *prometheus.Desc
	classedFilesDesc    *prometheus.Desc
	orphanedFilesDesc   *prometheus.Desc
	orphanedBytesDesc   *prometheus.Desc
	hardlinkGroupsDesc  *prometheus.Desc
	crossSeedGroupsDesc *prometheus.Desc
	torrentsDesc        *prometheus.Desc
	mediaItemsDesc      *prometheus.Desc
}

func NewScanCollector(runs *runner.Service) *ScanCollector {
	return &ScanCollector{
		runs: runs,

		scanRunningDesc: prometheus.NewDesc(
			"linkarr_scan_running",
			"Whether a scan is currently running (1=running, 0=idle)",
			nil,
			nil,
		),
		runsTotalDesc: prometheus.NewDesc(
			"linkarr_scan_runs_total",
			"Total number of recorded scan runs by final status",
			[]string{"status"},
			nil,
		),
		lastScanDesc: prometheus.NewDesc(
			"linkarr_last_scan_timestamp_seconds",
			"Unix time the latest completed scan finished",
			nil,
			nil,
		),
		scanDurationDesc: prometheus.NewDesc(
			"linkarr_scan_duration_seconds",
			"Wall-clock duration of the latest completed scan",
			nil,
			nil,
		),
		filesTotalDesc: prometheus.NewDesc(
			"linkarr_files",
			"Files seen by the latest completed scan",
			nil,
			nil,
		),
		bytesTotalDesc: prometheus.NewDesc(
			"linkarr_files_size_bytes",
			"Total size of files seen by the latest completed scan",
			nil,
			nil,
		),
		mainFilesDesc: prometheus.NewDesc(
			"linkarr_main_files",
			"Main content files by scan root location",
			[]string{"location"},
			nil,
		),
		classedFilesDesc: prometheus.NewDesc(
			"linkarr_classified_files",
			"Non-main files by class",
			[]string{"class"},
			nil,
		),
		orphanedFilesDesc: prometheus.NewDesc(
			"linkarr_orphaned_files",
			"Orphaned files found by the latest completed scan",
			nil,
			nil,
		),
		orphanedBytesDesc: prometheus.NewDesc(
			"linkarr_orphaned_size_bytes",
			"Total size of orphaned files found by the latest completed scan",
			nil,
			nil,
		),
		hardlinkGroupsDesc: prometheus.NewDesc(
			"linkarr_hardlink_groups",
			"Hardlink groups found by the latest completed scan",
			nil,
			nil,
		),
		crossSeedGroupsDesc: prometheus.NewDesc(
			"linkarr_cross_seed_groups",
			"Cross-seed groups found by the latest completed scan",
			nil,
			nil,
		),
		torrentsDesc: prometheus.NewDesc(
			"linkarr_torrents",
			"Torrents reported by qBittorrent in the latest completed scan",
			nil,
			nil,
		),
		mediaItemsDesc: prometheus.NewDesc(
			"linkarr_media_items",
			"Media items reported per service in the latest completed scan",
			[]string{"service"},
			nil,
		),
	}
}

func (c *ScanCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.scanRunningDesc
	ch <- c.runsTotalDesc
	ch <- c.lastScanDesc
	ch <- c.scanDurationDesc
	ch <- c.filesTotalDesc
	ch <- c.bytesTotalDesc
	ch <- c.mainFilesDesc
	ch <- c.classedFilesDesc
	ch <- c.orphanedFilesDesc
	ch <- c.orphanedBytesDesc
	ch <- c.hardlinkGroupsDesc
	ch <- c.crossSeedGroupsDesc
	ch <- c.torrentsDesc
	ch <- c.mediaItemsDesc
}

func (c *ScanCollector) Collect(ch chan<- prometheus.Metric) {
	if c.runs == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	running := 0.0
	if c.runs.Running() {
		running = 1.0
	}
	ch <- prometheus.MustNewConstMetric(c.scanRunningDesc, prometheus.GaugeValue, running)

	if counts, err := c.runs.RunCounts(ctx); err != nil {
		log.Debug().Err(err).Msg("failed to collect scan run counts")
	} else {
		for status, count := range counts {
			ch <- prometheus.MustNewConstMetric(c.runsTotalDesc, prometheus.CounterValue, float64(count), status)
		}
	}

	stats, finished, ok := c.runs.LatestStatistics(ctx)
	if !ok {
		return
	}

	if !finished.IsZero() {
		ch <- prometheus.MustNewConstMetric(c.lastScanDesc, prometheus.GaugeValue, float64(finished.Unix()))
	}
	ch <- prometheus.MustNewConstMetric(c.scanDurationDesc, prometheus.GaugeValue, stats.Duration)
	ch <- prometheus.MustNewConstMetric(c.filesTotalDesc, prometheus.GaugeValue, float64(stats.TotalFiles))
	ch <- prometheus.MustNewConstMetric(c.bytesTotalDesc, prometheus.GaugeValue, float64(stats.TotalSize))
	ch <- prometheus.MustNewConstMetric(c.mainFilesDesc, prometheus.GaugeValue, float64(stats.TorrentFiles), "torrent")
	ch <- prometheus.MustNewConstMetric(c.mainFilesDesc, prometheus.GaugeValue, float64(stats.LibraryFiles), "library")
	ch <- prometheus.MustNewConstMetric(c.classedFilesDesc, prometheus.GaugeValue, float64(stats.SampleFiles), "sample")
	ch <- prometheus.MustNewConstMetric(c.classedFilesDesc, prometheus.GaugeValue, float64(stats.ExtraFiles), "extra")
	ch <- prometheus.MustNewConstMetric(c.classedFilesDesc, prometheus.GaugeValue, float64(stats.SkippedFiles), "skipped")
	ch <- prometheus.MustNewConstMetric(c.orphanedFilesDesc, prometheus.GaugeValue, float64(stats.OrphanedFiles))
	ch <- prometheus.MustNewConstMetric(c.orphanedBytesDesc, prometheus.GaugeValue, float64(stats.OrphanedSize))
	ch <- prometheus.MustNewConstMetric(c.hardlinkGroupsDesc, prometheus.GaugeValue, float64(stats.HardlinkGroups))
	ch <- prometheus.MustNewConstMetric(c.crossSeedGroupsDesc, prometheus.GaugeValue, float64(stats.CrossSeedGroups))
	ch <- prometheus.MustNewConstMetric(c.torrentsDesc, prometheus.GaugeValue, float64(stats.Torrents))
	ch <- prometheus.MustNewConstMetric(c.mediaItemsDesc, prometheus.GaugeValue, float64(stats.RadarrItems), "radarr")
	ch <- prometheus.MustNewConstMetric(c.mediaItemsDesc, prometheus.GaugeValue, float64(stats.SonarrItems), "sonarr")
}
