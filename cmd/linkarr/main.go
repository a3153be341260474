// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"os"

	"github.com/spf13/cobra"
)

// configPath is the --config flag shared by every command. Empty means the
// default location under the user config directory.
var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "linkarr",
		Short: "Audit file relationships across qBittorrent, Radarr, Sonarr, and disk",
		Long: `linkarr correlates the download client, the library managers, and the
files on disk into one picture: which paths are hardlinked together,
which torrents cross-seed the same content, and which files nothing
tracks anymore.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file or directory (default: OS config dir)")

	rootCmd.AddCommand(RunServeCommand())
	rootCmd.AddCommand(RunScanCommand())
	rootCmd.AddCommand(RunOrphansCommand())
	rootCmd.AddCommand(RunHardlinksCommand())
	rootCmd.AddCommand(RunCrossSeedsCommand())
	rootCmd.AddCommand(RunInfoCommand())
	rootCmd.AddCommand(RunVersionCommand())
	rootCmd.AddCommand(RunUpdateCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
