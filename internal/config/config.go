// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package config loads the application configuration from config.toml,
// applies LINKARR__ environment overrides, and hot-reloads the dynamic
// settings when the file changes.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/autobrr/linkarr/internal/domain"
	"github.com/autobrr/linkarr/pkg/debounce"
)

const envPrefix = "LINKARR__"

var configTemplate = `# config.toml - Auto-generated on first run

# Hostname / IP for the HTTP API
# Default: "localhost"
host = "localhost"

# Port for the HTTP API
# Default: 7575
port = 7575

# Base url when running behind a reverse proxy under a subpath
# Optional
#baseUrl = "/linkarr/"

# Log level
# Default: "INFO"
# Options: "ERROR", "WARN", "INFO", "DEBUG", "TRACE"
logLevel = "INFO"

# Log file path
# If not defined, logs to stdout
# Optional
#logPath = "log/linkarr.log"

# Maximum log file size in megabytes before rotation
# Default: 50
#logMaxSize = 50

# Number of rotated log files to retain (0 keeps all)
# Default: 3
#logMaxBackups = 3

# Data directory for the scan history database
# Default: next to this config file
#dataDir = "/var/lib/linkarr"

# Check for updates
# Default: true
checkForUpdates = true

# Enable pprof endpoints under /debug/pprof
# Default: false
#pprofEnabled = false

# Prometheus metrics on a dedicated listener
# Default: false
#metricsEnabled = false
#metricsHost = "127.0.0.1"
#metricsPort = 9074

# Optional basic auth for the metrics endpoint
# Comma-separated user:password pairs
#metricsBasicAuthUsers = ""

[qbittorrent]
# qBittorrent WebUI URL
host = "http://localhost:8080"
username = "admin"
password = ""
# Request timeout in seconds
# Default: 30
#timeout = 30

[radarr]
# Radarr URL; leave empty to skip movie tracking
#host = "http://localhost:7878"
#apiKey = ""
#timeout = 30

[sonarr]
# Sonarr URL; leave empty to skip series tracking
#host = "http://localhost:8989"
#apiKey = ""
#timeout = 30

[paths]
# Scan roots. Empty roots are skipped.
#torrentMovies = "/data/torrents/movies"
#torrentTv = "/data/torrents/tv"
#libraryMovies = "/data/media/movies"
#libraryTv = "/data/media/tv"

# Path translation for collaborators running elsewhere (e.g. in a container):
# a reported path starting with remotePathBase is rewritten to localPathBase.
#remotePathBase = "/downloads"
#localPathBase = "/data/torrents"

[scan]
# Minimum size in MiB for a file to count as main content.
# Files below the floor are classified as extras.
# Default: 100 under library roots, 10 under torrent roots
#libraryMediaFloorMB = 100
#torrentMediaFloorMB = 10
`

// AppConfig owns the parsed configuration and the viper instance backing it.
type AppConfig struct {
	Config *domain.Config

	viper      *viper.Viper
	configPath string
	m          sync.Mutex
}

// New loads the configuration. An empty configPath uses the default config
// directory, creating a commented config.toml there on first run.
func New(configPath string) (*AppConfig, error) {
	c := &AppConfig{
		viper: viper.New(),
	}
	c.defaults()

	if err := c.load(configPath); err != nil {
		return nil, err
	}
	c.loadFromEnv()

	return c, nil
}

func (c *AppConfig) defaults() {
	c.Config = &domain.Config{
		Host:          "localhost",
		Port:          7575,
		LogLevel:      "INFO",
		LogMaxSize:    50,
		LogMaxBackups: 3,
		MetricsHost:   "127.0.0.1",
		MetricsPort:   9074,
		Qbittorrent: domain.QbittorrentConfig{
			Timeout: 30,
		},
		Radarr:          domain.ArrConfig{Timeout: 30},
		Sonarr:          domain.ArrConfig{Timeout: 30},
		CheckForUpdates: true,
	}
}

func (c *AppConfig) load(configPath string) error {
	c.viper.SetConfigType("toml")

	if configPath != "" {
		if fi, err := os.Stat(configPath); err == nil && fi.IsDir() {
			configPath = filepath.Join(configPath, "config.toml")
		}
		if err := c.writeConfigIfMissing(configPath); err != nil {
			return err
		}
		c.viper.SetConfigFile(configPath)
		c.configPath = configPath
	} else {
		dir := getDefaultConfigDir()
		path := filepath.Join(dir, "config.toml")
		if err := c.writeConfigIfMissing(path); err != nil {
			return err
		}
		c.viper.SetConfigFile(path)
		c.configPath = path
	}

	if err := c.viper.ReadInConfig(); err != nil {
		return fmt.Errorf("config read error: %w", err)
	}

	if err := c.viper.Unmarshal(c.Config); err != nil {
		return fmt.Errorf("config unmarshal error: %w", err)
	}

	return nil
}

// writeConfigIfMissing creates the config file with commented defaults on
// first run. An existing file is never touched.
func (c *AppConfig) writeConfigIfMissing(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	if err := os.WriteFile(path, []byte(configTemplate), 0o644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}

	log.Info().Str("path", path).Msg("created default config file")
	return nil
}

// getDefaultConfigDir resolves the config directory. A Docker-style
// XDG_CONFIG_HOME=/config is used directly; otherwise the standard
// per-user config dir applies.
func getDefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		if xdg == "/config" {
			return xdg
		}
		return filepath.Join(xdg, "linkarr")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "linkarr")
}

func (c *AppConfig) loadFromEnv() {
	cfg := c.Config

	setString := func(key string, dst *string) {
		if v := os.Getenv(envPrefix + key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(envPrefix + key); v != "" {
			if i, err := strconv.Atoi(v); err == nil {
				*dst = i
			}
		}
	}
	setBool := func(key string, dst *bool) {
		if v := os.Getenv(envPrefix + key); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	setString("HOST", &cfg.Host)
	setInt("PORT", &cfg.Port)
	setString("BASE_URL", &cfg.BaseURL)
	setString("LOG_LEVEL", &cfg.LogLevel)
	setString("LOG_PATH", &cfg.LogPath)
	setInt("LOG_MAX_SIZE", &cfg.LogMaxSize)
	setInt("LOG_MAX_BACKUPS", &cfg.LogMaxBackups)
	setString("DATA_DIR", &cfg.DataDir)
	setBool("CHECK_FOR_UPDATES", &cfg.CheckForUpdates)
	setBool("PPROF_ENABLED", &cfg.PprofEnabled)
	setBool("METRICS_ENABLED", &cfg.MetricsEnabled)
	setString("METRICS_HOST", &cfg.MetricsHost)
	setInt("METRICS_PORT", &cfg.MetricsPort)
	setString("METRICS_BASIC_AUTH_USERS", &cfg.MetricsBasicAuthUsers)

	setString("QBITTORRENT_HOST", &cfg.Qbittorrent.Host)
	setString("QBITTORRENT_USERNAME", &cfg.Qbittorrent.Username)
	setString("QBITTORRENT_PASSWORD", &cfg.Qbittorrent.Password)
	setInt("QBITTORRENT_TIMEOUT", &cfg.Qbittorrent.Timeout)

	setString("RADARR_HOST", &cfg.Radarr.Host)
	setString("RADARR_API_KEY", &cfg.Radarr.APIKey)
	setInt("RADARR_TIMEOUT", &cfg.Radarr.Timeout)

	setString("SONARR_HOST", &cfg.Sonarr.Host)
	setString("SONARR_API_KEY", &cfg.Sonarr.APIKey)
	setInt("SONARR_TIMEOUT", &cfg.Sonarr.Timeout)

	setString("PATHS_TORRENT_MOVIES", &cfg.Paths.TorrentMovies)
	setString("PATHS_TORRENT_TV", &cfg.Paths.TorrentTv)
	setString("PATHS_LIBRARY_MOVIES", &cfg.Paths.LibraryMovies)
	setString("PATHS_LIBRARY_TV", &cfg.Paths.LibraryTv)
	setString("PATHS_REMOTE_PATH_BASE", &cfg.Paths.RemotePathBase)
	setString("PATHS_LOCAL_PATH_BASE", &cfg.Paths.LocalPathBase)

	setInt("SCAN_LIBRARY_MEDIA_FLOOR_MB", &cfg.Scan.LibraryMediaFloorMB)
	setInt("SCAN_TORRENT_MEDIA_FLOOR_MB", &cfg.Scan.TorrentMediaFloorMB)
}

// ConfigPath returns the resolved config file location.
func (c *AppConfig) ConfigPath() string {
	return c.configPath
}

// GetDatabasePath returns where the scan history database lives: the
// configured data directory, or next to the config file.
func (c *AppConfig) GetDatabasePath() string {
	if c.Config.DataDir != "" {
		return filepath.Join(c.Config.DataDir, "linkarr.db")
	}
	return filepath.Join(filepath.Dir(c.configPath), "linkarr.db")
}

// GetLogPath resolves the log file location. Relative paths are anchored at
// the config directory. Empty means stdout only.
func (c *AppConfig) GetLogPath() string {
	if c.Config.LogPath == "" {
		return ""
	}
	if filepath.IsAbs(c.Config.LogPath) {
		return c.Config.LogPath
	}
	return filepath.Join(filepath.Dir(c.configPath), c.Config.LogPath)
}

// DynamicReload watches the config file and re-applies the settings that are
// safe to change at runtime. Editors fire several events per save, so the
// reload is debounced.
func (c *AppConfig) DynamicReload(onReload func(*domain.Config)) {
	debouncer := debounce.New(500 * time.Millisecond)

	c.viper.OnConfigChange(func(_ fsnotify.Event) {
		debouncer.Do(func() {
			c.m.Lock()

			logLevel := c.viper.GetString("logLevel")
			if logLevel != "" {
				c.Config.LogLevel = logLevel
			}
			c.Config.CheckForUpdates = c.viper.GetBool("checkForUpdates")

			cfg := c.Config
			c.m.Unlock()

			log.Info().Str("logLevel", cfg.LogLevel).Msg("config reloaded")
			if onReload != nil {
				onReload(cfg)
			}
		})
	})
	c.viper.WatchConfig()
}
