// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package scan

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/autobrr/linkarr/internal/models"
)

func TestTrackingAddTorrent(t *testing.T) {
	moviePath := filepath.FromSlash("/data/torrents/movies/Movie.2020/movie.mkv")

	a := NewTrackingAggregate()
	a.AddTorrent(&models.TorrentRecord{
		Hash: "abc",
		Name: "Movie.2020.1080p-GRP",
		Files: []models.TorrentFile{
			{Path: moviePath, Size: 100},
		},
	})

	if !a.Has(moviePath) {
		t.Fatal("torrent file path not claimed")
	}
	if !a.TrackedByTorrent(moviePath) {
		t.Fatal("path not tracked by torrent")
	}
	if a.TrackedByService(moviePath) {
		t.Fatal("path must not be tracked by a service")
	}
	if got := a.Torrents(moviePath); !reflect.DeepEqual(got, []string{"Movie.2020.1080p-GRP"}) {
		t.Fatalf("Torrents = %v", got)
	}
	if got := a.Size(moviePath); got != 100 {
		t.Fatalf("Size = %d, want 100", got)
	}
}

func TestTrackingSameTorrentTwiceIsNoop(t *testing.T) {
	moviePath := filepath.FromSlash("/data/torrents/movies/movie.mkv")
	torrent := &models.TorrentRecord{
		Hash:  "abc",
		Name:  "Movie.2020.1080p-GRP",
		Files: []models.TorrentFile{{Path: moviePath, Size: 100}},
	}

	a := NewTrackingAggregate()
	a.AddTorrent(torrent)
	a.AddTorrent(torrent)

	if got := a.Torrents(moviePath); len(got) != 1 {
		t.Fatalf("Torrents = %v, want single entry", got)
	}
	if a.Len() != 1 {
		t.Fatalf("Len = %d, want 1", a.Len())
	}
}

func TestTrackingCrossSeedsAccumulate(t *testing.T) {
	moviePath := filepath.FromSlash("/data/torrents/movies/movie.mkv")

	a := NewTrackingAggregate()
	a.AddTorrent(&models.TorrentRecord{
		Hash:  "abc",
		Name:  "Movie.2020.1080p-GRP1",
		Files: []models.TorrentFile{{Path: moviePath, Size: 100}},
	})
	a.AddTorrent(&models.TorrentRecord{
		Hash:  "def",
		Name:  "Movie.2020.1080p-GRP2",
		Files: []models.TorrentFile{{Path: moviePath, Size: 100}},
	})

	want := []string{"Movie.2020.1080p-GRP1", "Movie.2020.1080p-GRP2"}
	if got := a.Torrents(moviePath); !reflect.DeepEqual(got, want) {
		t.Fatalf("Torrents = %v, want %v", got, want)
	}
}

func TestTrackingServices(t *testing.T) {
	moviePath := filepath.FromSlash("/media/movies/Movie (2020)/movie.mkv")

	a := NewTrackingAggregate()
	a.AddServiceFile(models.ServiceSonarr, moviePath)
	a.AddServiceFile(models.ServiceRadarr, moviePath)
	a.AddServiceFile(models.ServiceRadarr, moviePath)
	a.AddServiceFile(models.ServiceRadarr, "")

	if !a.TrackedByService(moviePath) {
		t.Fatal("path not tracked by service")
	}
	if a.TrackedByTorrent(moviePath) {
		t.Fatal("path must not be tracked by torrent")
	}
	if got := a.Services(moviePath); !reflect.DeepEqual(got, []string{"radarr", "sonarr"}) {
		t.Fatalf("Services = %v, want sorted [radarr sonarr]", got)
	}
	if a.Len() != 1 {
		t.Fatalf("Len = %d, want 1 (empty path ignored)", a.Len())
	}
}

func TestTrackingNormalizesPaths(t *testing.T) {
	a := NewTrackingAggregate()
	a.AddServiceFile(models.ServiceRadarr, filepath.FromSlash("/media/movies//Movie (2020)/./movie.mkv"))

	clean := filepath.FromSlash("/media/movies/Movie (2020)/movie.mkv")
	if !a.Has(clean) {
		t.Fatal("clean path lookup failed")
	}
	if !a.Has(filepath.FromSlash("/media/movies/Movie (2020)//movie.mkv")) {
		t.Fatal("unclean path lookup failed")
	}
	if got := a.Paths(); !reflect.DeepEqual(got, []string{clean}) {
		t.Fatalf("Paths = %v, want [%s]", got, clean)
	}
}

func TestTrackingSizeKeepsLargest(t *testing.T) {
	moviePath := filepath.FromSlash("/data/torrents/movie.mkv")

	a := NewTrackingAggregate()
	a.AddTorrent(&models.TorrentRecord{
		Hash:  "abc",
		Name:  "small",
		Files: []models.TorrentFile{{Path: moviePath, Size: 50}},
	})
	a.AddTorrent(&models.TorrentRecord{
		Hash:  "def",
		Name:  "big",
		Files: []models.TorrentFile{{Path: moviePath, Size: 200}},
	})

	if got := a.Size(moviePath); got != 200 {
		t.Fatalf("Size = %d, want largest reported (200)", got)
	}
}

func TestTrackingUnknownPath(t *testing.T) {
	a := NewTrackingAggregate()

	path := filepath.FromSlash("/nowhere/movie.mkv")
	if a.Has(path) || a.TrackedByTorrent(path) || a.TrackedByService(path) {
		t.Fatal("unknown path reported as claimed")
	}
	if a.Torrents(path) != nil || a.Services(path) != nil {
		t.Fatal("unknown path returned claim lists")
	}
	if a.Size(path) != 0 {
		t.Fatal("unknown path returned a size")
	}
}
