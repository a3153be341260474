// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/autobrr/linkarr/internal/buildinfo"
	"github.com/autobrr/linkarr/internal/config"
	"github.com/autobrr/linkarr/internal/domain"
	"github.com/autobrr/linkarr/internal/models"
	"github.com/autobrr/linkarr/internal/services/scan"
	"github.com/autobrr/linkarr/pkg/radarr"
	"github.com/autobrr/linkarr/pkg/sonarr"
)

const infoProbeTimeout = 10 * time.Second

// probeReport is one collaborator's connectivity result.
type probeReport struct {
	Configured bool   `json:"configured"`
	Reachable  bool   `json:"reachable"`
	Detail     string `json:"detail,omitempty"`
	Error      string `json:"error,omitempty"`
}

// rootReport is one scan root with its on-disk state.
type rootReport struct {
	Path     string `json:"path"`
	Location string `json:"location"`
	Exists   bool   `json:"exists"`
}

// linkCheckReport pairs a torrent root with a library root and reports
// whether hardlinking between them can work at all.
type linkCheckReport struct {
	TorrentRoot    string `json:"torrentRoot"`
	LibraryRoot    string `json:"libraryRoot"`
	SameFilesystem bool   `json:"sameFilesystem"`
	Error          string `json:"error,omitempty"`
}

type infoReport struct {
	Version     string            `json:"version"`
	ConfigPath  string            `json:"configPath"`
	Qbittorrent probeReport       `json:"qbittorrent"`
	Radarr      probeReport       `json:"radarr"`
	Sonarr      probeReport       `json:"sonarr"`
	Roots       []rootReport      `json:"roots"`
	LinkChecks  []linkCheckReport `json:"linkChecks"`
}

// RunInfoCommand builds the diagnosis command. It intentionally skips config
// validation; a broken setup is exactly what it should describe.
func RunInfoCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show configuration and probe collaborator connectivity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			stack, err := newScanStack(cfg.Config)
			if err != nil {
				return err
			}

			ctx, cancel := commandContext()
			defer cancel()

			report := buildInfoReport(ctx, cfg, stack)

			if asJSON {
				return printJSON(cmd, report)
			}
			renderInfo(cmd, report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func buildInfoReport(ctx context.Context, cfg *config.AppConfig, stack *scanStack) *infoReport {
	roots := stack.scanner.Config().Roots

	return &infoReport{
		Version:     buildinfo.Version,
		ConfigPath:  cfg.ConfigPath(),
		Qbittorrent: probeQbittorrent(ctx, cfg.Config, stack),
		Radarr:      probeRadarr(ctx, cfg.Config.Radarr),
		Sonarr:      probeSonarr(ctx, cfg.Config.Sonarr),
		Roots:       collectRoots(roots),
		LinkChecks:  collectLinkChecks(roots),
	}
}

func probeQbittorrent(ctx context.Context, cfg *domain.Config, stack *scanStack) probeReport {
	report := probeReport{Configured: strings.TrimSpace(cfg.Qbittorrent.Host) != ""}
	if !report.Configured {
		return report
	}

	probeCtx, cancel := context.WithTimeout(ctx, infoProbeTimeout)
	defer cancel()

	client, err := stack.pool.Get(probeCtx)
	if err != nil {
		report.Error = err.Error()
		return report
	}

	report.Reachable = true
	report.Detail = "Web API " + client.WebAPIVersion()
	return report
}

func probeRadarr(ctx context.Context, cfg domain.ArrConfig) probeReport {
	report := probeReport{Configured: cfg.Enabled()}
	if !report.Configured {
		return report
	}

	client := radarr.NewClient(radarr.Config{
		Host:      cfg.Host,
		APIKey:    cfg.APIKey,
		Timeout:   cfg.Timeout,
		UserAgent: buildinfo.UserAgent,
	})

	probeCtx, cancel := context.WithTimeout(ctx, infoProbeTimeout)
	defer cancel()

	status, err := client.Test(probeCtx)
	if err != nil {
		report.Error = err.Error()
		return report
	}

	report.Reachable = true
	report.Detail = fmt.Sprintf("%s %s", status.AppName, status.Version)
	return report
}

func probeSonarr(ctx context.Context, cfg domain.ArrConfig) probeReport {
	report := probeReport{Configured: cfg.Enabled()}
	if !report.Configured {
		return report
	}

	client := sonarr.NewClient(sonarr.Config{
		Host:      cfg.Host,
		APIKey:    cfg.APIKey,
		Timeout:   cfg.Timeout,
		UserAgent: buildinfo.UserAgent,
	})

	probeCtx, cancel := context.WithTimeout(ctx, infoProbeTimeout)
	defer cancel()

	status, err := client.Test(probeCtx)
	if err != nil {
		report.Error = err.Error()
		return report
	}

	report.Reachable = true
	report.Detail = fmt.Sprintf("%s %s", status.AppName, status.Version)
	return report
}

func collectRoots(roots []scan.Root) []rootReport {
	reports := make([]rootReport, 0, len(roots))
	for _, r := range roots {
		fi, err := os.Stat(r.Path)
		reports = append(reports, rootReport{
			Path:     r.Path,
			Location: string(r.Location),
			Exists:   err == nil && fi.IsDir(),
		})
	}
	return reports
}

// collectLinkChecks pairs every torrent root with every library root. A pair
// on different devices cannot hardlink, which usually means the setup copies
// instead of linking.
func collectLinkChecks(roots []scan.Root) []linkCheckReport {
	var torrent, library []string
	for _, r := range roots {
		switch r.Location {
		case models.LocationTorrent:
			torrent = append(torrent, r.Path)
		case models.LocationLibrary:
			library = append(library, r.Path)
		}
	}

	var checks []linkCheckReport
	for _, t := range torrent {
		for _, l := range library {
			check := linkCheckReport{TorrentRoot: t, LibraryRoot: l}
			same, err := scan.SameFilesystem(t, l)
			if err != nil {
				check.Error = err.Error()
			} else {
				check.SameFilesystem = same
			}
			checks = append(checks, check)
		}
	}
	return checks
}

func renderInfo(cmd *cobra.Command, report *infoReport) {
	cmd.Printf("linkarr %s\n", report.Version)
	cmd.Printf("config: %s\n", report.ConfigPath)

	renderSection(cmd, "Collaborators",
		[]string{"Service", "Status", "Detail"},
		[][]string{
			probeRow("qbittorrent", report.Qbittorrent),
			probeRow("radarr", report.Radarr),
			probeRow("sonarr", report.Sonarr),
		},
		[]columnAlignment{alignLeft, alignLeft, alignLeft},
		"")

	rootRows := make([][]string, 0, len(report.Roots))
	for _, r := range report.Roots {
		state := "ok"
		if !r.Exists {
			state = "missing"
		}
		rootRows = append(rootRows, []string{r.Path, r.Location, state})
	}
	renderSection(cmd, "Scan roots",
		[]string{"Path", "Location", "State"},
		rootRows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft},
		"No scan roots configured.")

	linkRows := make([][]string, 0, len(report.LinkChecks))
	for _, check := range report.LinkChecks {
		state := "possible"
		switch {
		case check.Error != "":
			state = check.Error
		case !check.SameFilesystem:
			state = "cross-device"
		}
		linkRows = append(linkRows, []string{check.TorrentRoot, check.LibraryRoot, state})
	}
	renderSection(cmd, "Hardlink feasibility",
		[]string{"Torrent root", "Library root", "Hardlinks"},
		linkRows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft},
		"No torrent/library root pairs to check.")

	for _, check := range report.LinkChecks {
		if check.Error == "" && !check.SameFilesystem {
			cmd.Printf("warning: %s and %s are on different filesystems, hardlinks between them are impossible\n",
				check.TorrentRoot, check.LibraryRoot)
		}
	}
}

func probeRow(name string, p probeReport) []string {
	switch {
	case !p.Configured:
		return []string{name, "not configured", ""}
	case p.Error != "":
		return []string{name, "unreachable", p.Error}
	default:
		return []string{name, "ok", p.Detail}
	}
}
