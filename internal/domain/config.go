// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

import (
	"errors"
	"fmt"
	"strings"
)

// QbittorrentConfig is the connection to the download client. The client is
// the torrent side's source of truth, so a scan cannot run without it.
type QbittorrentConfig struct {
	Host     string `toml:"host" mapstructure:"host"`
	Username string `toml:"username" mapstructure:"username"`
	Password string `toml:"password" mapstructure:"password"`
	Timeout  int    `toml:"timeout" mapstructure:"timeout"`
}

// ArrConfig is the connection to one library service. An empty host means
// the service is not used; its side of the correlation stays empty.
type ArrConfig struct {
	Host    string `toml:"host" mapstructure:"host"`
	APIKey  string `toml:"apiKey" mapstructure:"apiKey"`
	Timeout int    `toml:"timeout" mapstructure:"timeout"`
}

func (c ArrConfig) Enabled() bool {
	return strings.TrimSpace(c.Host) != ""
}

// PathsConfig holds the scan roots and the path translation between what
// collaborators report and what this host sees.
type PathsConfig struct {
	TorrentMovies  string `toml:"torrentMovies" mapstructure:"torrentMovies"`
	TorrentTv      string `toml:"torrentTv" mapstructure:"torrentTv"`
	LibraryMovies  string `toml:"libraryMovies" mapstructure:"libraryMovies"`
	LibraryTv      string `toml:"libraryTv" mapstructure:"libraryTv"`
	RemotePathBase string `toml:"remotePathBase" mapstructure:"remotePathBase"`
	LocalPathBase  string `toml:"localPathBase" mapstructure:"localPathBase"`
}

// ScanConfig overrides classification thresholds. Zero means the built-in
// default for that context.
type ScanConfig struct {
	LibraryMediaFloorMB int `toml:"libraryMediaFloorMB" mapstructure:"libraryMediaFloorMB"`
	TorrentMediaFloorMB int `toml:"torrentMediaFloorMB" mapstructure:"torrentMediaFloorMB"`
}

// Config represents the application configuration.
type Config struct {
	Version string

	Host            string `toml:"host" mapstructure:"host"`
	Port            int    `toml:"port" mapstructure:"port"`
	BaseURL         string `toml:"baseUrl" mapstructure:"baseUrl"`
	LogLevel        string `toml:"logLevel" mapstructure:"logLevel"`
	LogPath         string `toml:"logPath" mapstructure:"logPath"`
	LogMaxSize      int    `toml:"logMaxSize" mapstructure:"logMaxSize"`
	LogMaxBackups   int    `toml:"logMaxBackups" mapstructure:"logMaxBackups"`
	DataDir         string `toml:"dataDir" mapstructure:"dataDir"`
	CheckForUpdates bool   `toml:"checkForUpdates" mapstructure:"checkForUpdates"`
	PprofEnabled    bool   `toml:"pprofEnabled" mapstructure:"pprofEnabled"`
	MetricsEnabled  bool   `toml:"metricsEnabled" mapstructure:"metricsEnabled"`
	MetricsHost     string `toml:"metricsHost" mapstructure:"metricsHost"`
	MetricsPort     int    `toml:"metricsPort" mapstructure:"metricsPort"`

	// MetricsBasicAuthUsers is a comma-separated list of user:password
	// pairs guarding /metrics; empty disables auth.
	MetricsBasicAuthUsers string `toml:"metricsBasicAuthUsers" mapstructure:"metricsBasicAuthUsers"`

	Qbittorrent QbittorrentConfig `toml:"qbittorrent" mapstructure:"qbittorrent"`
	Radarr      ArrConfig         `toml:"radarr" mapstructure:"radarr"`
	Sonarr      ArrConfig         `toml:"sonarr" mapstructure:"sonarr"`
	Paths       PathsConfig       `toml:"paths" mapstructure:"paths"`
	Scan        ScanConfig        `toml:"scan" mapstructure:"scan"`
}

// Validate checks the parts every command needs. Individual surfaces do
// their own checks on top (serve needs a port, scans need roots).
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Qbittorrent.Host) == "" {
		return errors.New("qbittorrent.host is required")
	}
	if c.Radarr.Enabled() && strings.TrimSpace(c.Radarr.APIKey) == "" {
		return errors.New("radarr.apiKey is required when radarr.host is set")
	}
	if c.Sonarr.Enabled() && strings.TrimSpace(c.Sonarr.APIKey) == "" {
		return errors.New("sonarr.apiKey is required when sonarr.host is set")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	return nil
}

// HasScanRoots reports whether at least one scan root is configured.
func (c *Config) HasScanRoots() bool {
	p := c.Paths
	return p.TorrentMovies != "" || p.TorrentTv != "" || p.LibraryMovies != "" || p.LibraryTv != ""
}
