// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/autobrr/linkarr/internal/buildinfo"
	"github.com/autobrr/linkarr/internal/update"
)

func RunVersionCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if asJSON {
				out, err := buildinfo.JSON()
				if err != nil {
					return err
				}
				cmd.Println(string(out))
				return nil
			}
			cmd.Print(buildinfo.String())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print version information as JSON")
	return cmd
}

func RunUpdateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Update linkarr to the latest release",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if buildinfo.Version == "dev" {
				return errors.New("development builds cannot self-update, install a release build")
			}

			ctx, cancel := commandContext()
			defer cancel()

			updater := update.NewUpdater(update.Config{
				Repository: "autobrr/linkarr",
				Version:    buildinfo.Version,
			})

			updated, err := updater.Run(ctx)
			if err != nil {
				return fmt.Errorf("update failed: %w", err)
			}
			if updated {
				cmd.Println("Restart linkarr to use the new version.")
			}
			return nil
		},
	}
}
