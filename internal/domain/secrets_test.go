// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "non-empty string returns redacted",
			input: "secret-password",
			want:  RedactedStr,
		},
		{
			name:  "empty string returns empty",
			input: "",
			want:  "",
		},
		{
			name:  "single character",
			input: "a",
			want:  RedactedStr,
		},
		{
			name:  "already redacted string",
			input: RedactedStr,
			want:  RedactedStr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := RedactString(tt.input)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigRedacted(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		Host:     "127.0.0.1",
		Port:     7575,
		LogLevel: "debug",
		Qbittorrent: QbittorrentConfig{
			Host:     "http://localhost:8080",
			Username: "admin",
			Password: "hunter2",
		},
		Radarr: ArrConfig{
			Host:   "http://localhost:7878",
			APIKey: "radarr-key",
		},
		Sonarr: ArrConfig{
			Host: "http://localhost:8989",
		},
	}

	got := cfg.Redacted()

	assert.Equal(t, RedactedStr, got.Qbittorrent.Password)
	assert.Equal(t, RedactedStr, got.Radarr.APIKey)
	assert.Empty(t, got.Sonarr.APIKey)

	// Everything that is not a secret survives untouched, and the original
	// keeps its secrets.
	assert.Equal(t, "127.0.0.1", got.Host)
	assert.Equal(t, "admin", got.Qbittorrent.Username)
	assert.Equal(t, "http://localhost:7878", got.Radarr.Host)
	assert.Equal(t, "hunter2", cfg.Qbittorrent.Password)
}

func TestRedactedStrConstant(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "<redacted>", RedactedStr)
}
