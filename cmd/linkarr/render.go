// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/autobrr/linkarr/internal/models"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range headers {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// renderSection prints a titled table, or the empty message when there are no
// rows.
func renderSection(cmd *cobra.Command, title string, headers []string, rows [][]string, aligns []columnAlignment, empty string) {
	cmd.Println()
	cmd.Println(title)
	if len(rows) == 0 {
		cmd.Println(empty)
		return
	}
	cmd.Println(renderTable(headers, rows, aligns))
}

// printJSON writes one indented JSON document to stdout.
func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(data))
	return nil
}

func buildStatisticsRows(stats models.ScanStatistics) [][]string {
	return [][]string{
		{"Files scanned", strconv.Itoa(stats.TotalFiles)},
		{"Total size", humanize.IBytes(uint64(stats.TotalSize))},
		{"Torrent media files", strconv.Itoa(stats.TorrentFiles)},
		{"Library media files", strconv.Itoa(stats.LibraryFiles)},
		{"Samples", strconv.Itoa(stats.SampleFiles)},
		{"Extras", strconv.Itoa(stats.ExtraFiles)},
		{"Skipped", strconv.Itoa(stats.SkippedFiles)},
		{"Torrents", strconv.Itoa(stats.Torrents)},
		{"Radarr items", strconv.Itoa(stats.RadarrItems)},
		{"Sonarr items", strconv.Itoa(stats.SonarrItems)},
		{"Hardlink groups", strconv.Itoa(stats.HardlinkGroups)},
		{"Cross-seed groups", strconv.Itoa(stats.CrossSeedGroups)},
		{"Orphaned files", fmt.Sprintf("%d (%s)", stats.OrphanedFiles, humanize.IBytes(uint64(stats.OrphanedSize)))},
		{"Duration", fmt.Sprintf("%.1fs", stats.Duration)},
	}
}

func buildOrphanRows(orphans []models.OrphanedFile) [][]string {
	rows := make([][]string, 0, len(orphans))
	for _, o := range orphans {
		rows = append(rows, []string{
			o.Path,
			string(o.Location),
			humanize.IBytes(uint64(o.Size)),
			o.Reason,
			o.ModifiedAt.Format("2006-01-02"),
		})
	}
	return rows
}

func buildHardlinkRows(groups []models.HardlinkGroup) [][]string {
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, []string{
			strings.Join(g.Files, "\n"),
			strconv.Itoa(g.LinkCount),
			humanize.IBytes(uint64(g.FileSize)),
		})
	}
	return rows
}

func buildCrossSeedRows(groups []models.CrossSeedGroup) [][]string {
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		torrents := make([]string, 0, len(g.Torrents))
		for _, t := range g.Torrents {
			label := t.Name
			if t.Tracker != "" {
				label += " (" + t.Tracker + ")"
			}
			torrents = append(torrents, label)
		}

		title := g.Title
		if title == "" && len(g.Torrents) > 0 {
			title = g.Torrents[0].Name
		}

		rows = append(rows, []string{
			title,
			strings.Join(torrents, "\n"),
			strconv.Itoa(len(g.Files)),
			humanize.IBytes(uint64(g.TotalSize)),
		})
	}
	return rows
}

func buildRelationshipRows(relationships []models.FileRelationship) [][]string {
	rows := make([][]string, 0, len(relationships))
	for _, rel := range relationships {
		rows = append(rows, []string{
			rel.FilePath,
			humanize.IBytes(uint64(rel.Size)),
			strconv.Itoa(rel.LinkCount),
			strings.Join(rel.Torrents, "\n"),
			strings.Join(rel.Services, ", "),
		})
	}
	return rows
}
