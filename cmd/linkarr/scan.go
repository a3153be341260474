// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/autobrr/linkarr/internal/models"
)

const (
	detailSummary = "summary"
	detailNormal  = "normal"
	detailFull    = "full"
)

func RunScanCommand() *cobra.Command {
	var (
		asJSON bool
		detail string
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run a full scan and print the results",
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch detail {
			case detailSummary, detailNormal, detailFull:
			default:
				return fmt.Errorf("invalid --detail %q, want summary, normal, or full", detail)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Config.Validate(); err != nil {
				return err
			}

			stack, err := newScanStack(cfg.Config)
			if err != nil {
				return err
			}

			ctx, cancel := commandContext()
			defer cancel()

			snapshot, err := stack.scanner.Run(ctx)
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd, snapshot.Result)
			}

			renderResult(cmd, snapshot.Result, detail)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	cmd.Flags().StringVar(&detail, "detail", detailNormal, "output detail: summary, normal, or full")

	return cmd
}

func renderResult(cmd *cobra.Command, result *models.ScanResult, detail string) {
	cmd.Println(renderTable(
		[]string{"Statistic", "Value"},
		buildStatisticsRows(result.Statistics),
		[]columnAlignment{alignLeft, alignRight},
	))

	if detail == detailSummary {
		return
	}

	renderSection(cmd, "Hardlink groups",
		[]string{"Files", "Links", "Size"},
		buildHardlinkRows(result.HardlinkGroups),
		[]columnAlignment{alignLeft, alignRight, alignRight},
		"No hardlink groups found.")

	renderSection(cmd, "Cross-seed groups",
		[]string{"Title", "Torrents", "Files", "Size"},
		buildCrossSeedRows(result.CrossSeedGroups),
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
		"No cross-seeded torrents found.")

	renderSection(cmd, "Orphaned files",
		[]string{"Path", "Location", "Size", "Reason", "Modified"},
		buildOrphanRows(result.Orphans),
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
		"No orphaned files found.")

	if detail == detailFull {
		renderSection(cmd, "File relationships",
			[]string{"Path", "Size", "Links", "Torrents", "Services"},
			buildRelationshipRows(result.Relationships),
			[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft, alignLeft},
			"No files scanned.")
	}
}
