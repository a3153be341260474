// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewCreatesDefaultConfig(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := New(tmpDir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	path := filepath.Join(tmpDir, "config.toml")
	assert.Equal(t, path, cfg.ConfigPath())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "[qbittorrent]")
	assert.Contains(t, string(content), "[paths]")

	// Defaults merged from the template and the built-ins.
	assert.Equal(t, "localhost", cfg.Config.Host)
	assert.Equal(t, 7575, cfg.Config.Port)
	assert.Equal(t, "INFO", cfg.Config.LogLevel)
	assert.True(t, cfg.Config.CheckForUpdates)
	assert.Equal(t, 30, cfg.Config.Qbittorrent.Timeout)
	assert.False(t, cfg.Config.Radarr.Enabled())
	assert.False(t, cfg.Config.Sonarr.Enabled())
}

func TestNewKeepsExistingConfig(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeConfig(t, tmpDir, `
host = "0.0.0.0"
port = 9999
`)

	cfg, err := New(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Config.Host)
	assert.Equal(t, 9999, cfg.Config.Port)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(content), "Auto-generated"),
		"existing config must never be overwritten")
}

func TestDatabasePathConfiguration(t *testing.T) {
	tests := []struct {
		name     string
		config   string
		env      map[string]string
		expected func(configDir string) string
	}{
		{
			name:   "next_to_config_by_default",
			config: "host = \"localhost\"\n",
			expected: func(configDir string) string {
				return filepath.Join(configDir, "linkarr.db")
			},
		},
		{
			name:   "data_dir_from_config",
			config: "dataDir = \"/var/lib/linkarr\"\n",
			expected: func(string) string {
				return filepath.Join("/var/lib/linkarr", "linkarr.db")
			},
		},
		{
			name:   "data_dir_env_overrides_config",
			config: "dataDir = \"/var/lib/linkarr\"\n",
			env:    map[string]string{"LINKARR__DATA_DIR": "/data"},
			expected: func(string) string {
				return filepath.Join("/data", "linkarr.db")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			path := writeConfig(t, tmpDir, tt.config)

			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := New(path)
			require.NoError(t, err)

			assert.Equal(t, tt.expected(tmpDir), cfg.GetDatabasePath())
		})
	}
}

func TestEnvOverridesConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeConfig(t, tmpDir, `
[qbittorrent]
host = "http://file:8080"
`)

	t.Setenv("LINKARR__QBITTORRENT_HOST", "http://env:8080")
	t.Setenv("LINKARR__PORT", "8888")
	t.Setenv("LINKARR__PATHS_TORRENT_MOVIES", "/data/torrents/movies")

	cfg, err := New(path)
	require.NoError(t, err)

	assert.Equal(t, "http://env:8080", cfg.Config.Qbittorrent.Host)
	assert.Equal(t, 8888, cfg.Config.Port)
	assert.Equal(t, "/data/torrents/movies", cfg.Config.Paths.TorrentMovies)
}

func TestGetLogPath(t *testing.T) {
	tests := []struct {
		name     string
		logPath  string
		relative bool
		expected string
	}{
		{name: "empty_means_stdout", logPath: "", expected: ""},
		{name: "absolute_path_kept", logPath: "/var/log/linkarr.log", expected: "/var/log/linkarr.log"},
		{name: "relative_anchored_at_config_dir", logPath: "log/linkarr.log", relative: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			content := "host = \"localhost\"\n"
			if tt.logPath != "" {
				content += fmt.Sprintf("logPath = %q\n", tt.logPath)
			}
			path := writeConfig(t, tmpDir, content)

			cfg, err := New(path)
			require.NoError(t, err)

			expected := tt.expected
			if tt.relative {
				expected = filepath.Join(tmpDir, tt.logPath)
			}
			assert.Equal(t, expected, cfg.GetLogPath())
		})
	}
}

func TestDockerEnvironmentCompatibility(t *testing.T) {
	// Docker images mount the config volume at /config and set
	// XDG_CONFIG_HOME accordingly; that directory is used as-is.
	t.Setenv("XDG_CONFIG_HOME", "/config")
	assert.Equal(t, "/config", getDefaultConfigDir())
}

func TestDefaultConfigDirUsesXDG(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	assert.Equal(t, filepath.Join(tmpDir, "linkarr"), getDefaultConfigDir())
}
