// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/autobrr/linkarr/internal/services/scan"
)

// The projection commands each run one full scan and print a single slice of
// the result. They exist for scripting; the scan command shows everything.

func RunOrphansCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "orphans",
		Short: "List files no torrent or library service tracks",
		RunE: runProjection(func(ctx context.Context, cmd *cobra.Command, svc *scan.Service) error {
			orphans, err := svc.Orphans(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd, orphans)
			}
			renderSection(cmd, "Orphaned files",
				[]string{"Path", "Location", "Size", "Reason", "Modified"},
				buildOrphanRows(orphans),
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
				"No orphaned files found.")
			return nil
		}),
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func RunHardlinksCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "hardlinks",
		Short: "List groups of paths sharing one file on disk",
		RunE: runProjection(func(ctx context.Context, cmd *cobra.Command, svc *scan.Service) error {
			groups, err := svc.Hardlinks(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd, groups)
			}
			renderSection(cmd, "Hardlink groups",
				[]string{"Files", "Links", "Size"},
				buildHardlinkRows(groups),
				[]columnAlignment{alignLeft, alignRight, alignRight},
				"No hardlink groups found.")
			return nil
		}),
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func RunCrossSeedsCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "cross-seeds",
		Short: "List torrents seeding the same files on different trackers",
		RunE: runProjection(func(ctx context.Context, cmd *cobra.Command, svc *scan.Service) error {
			groups, err := svc.CrossSeeds(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd, groups)
			}
			renderSection(cmd, "Cross-seed groups",
				[]string{"Title", "Torrents", "Files", "Size"},
				buildCrossSeedRows(groups),
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
				"No cross-seeded torrents found.")
			return nil
		}),
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

// runProjection wraps the shared projection plumbing: load config, build the
// scan stack, and hand the service to the body under a signal context.
func runProjection(body func(ctx context.Context, cmd *cobra.Command, svc *scan.Service) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
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

		return body(ctx, cmd, stack.scanner)
	}
}
