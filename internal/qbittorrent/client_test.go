// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package qbittorrent

import (
	"context"
	"testing"
	"time"

	qbt "github.com/autobrr/go-qbittorrent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/linkarr/internal/services/scan"
)

func TestNewClientRequiresHost(t *testing.T) {
	_, err := NewClient(context.Background(), Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "host not configured")
}

func TestNewClientUnreachableHostIsConnectionError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := NewClient(ctx, Config{Host: "http://127.0.0.1:1", Timeout: 1})
	require.Error(t, err)

	var connErr *scan.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "qbittorrent", connErr.Service)
}

func TestPoolGetConnectsLazily(t *testing.T) {
	// Construction never dials; the misconfiguration only surfaces on Get.
	pool := NewPool(Config{}, nil)

	_, err := pool.Get(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "host not configured")
}

func TestPrimaryTracker(t *testing.T) {
	tests := []struct {
		name     string
		trackers []qbt.TorrentTracker
		want     string
	}{
		{
			name: "skips dht pseudo entries",
			trackers: []qbt.TorrentTracker{
				{Url: "** [DHT] **"},
				{Url: "** [PeX] **"},
				{Url: "https://tracker.example.org/announce"},
			},
			want: "https://tracker.example.org/announce",
		},
		{
			name: "first real tracker wins",
			trackers: []qbt.TorrentTracker{
				{Url: "https://a.example.org/announce"},
				{Url: "https://b.example.org/announce"},
			},
			want: "https://a.example.org/announce",
		},
		{
			name:     "no real trackers",
			trackers: []qbt.TorrentTracker{{Url: "** [LSD] **"}, {Url: "  "}},
			want:     "",
		},
		{
			name: "nil list",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, primaryTracker(tt.trackers))
		})
	}
}
