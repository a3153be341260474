// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package scan

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/autobrr/linkarr/internal/models"
)

func crossSeedFixture() []models.TorrentRecord {
	moviePath := filepath.FromSlash("/data/torrents/movies/The.Matrix.1999.1080p.BluRay.x264-GRP/movie.mkv")
	showA := filepath.FromSlash("/data/torrents/tv/Show.S01/e01.mkv")
	showB := filepath.FromSlash("/data/torrents/tv/Show.S01/e02.mkv")

	return []models.TorrentRecord{
		{
			Hash:    "bbb",
			Name:    "The.Matrix.1999.1080p.BluRay.x264-OTHER",
			Tracker: "cd.example.org",
			Files:   []models.TorrentFile{{Path: moviePath, Size: 700}},
		},
		{
			Hash:     "aaa",
			Name:     "The.Matrix.1999.1080p.BluRay.x264-GRP",
			Category: "movies",
			Tracker:  "ab.example.org",
			Files:    []models.TorrentFile{{Path: moviePath, Size: 700}},
		},
		{
			// Shares one file with the pack below but not the full set.
			Hash:  "ccc",
			Name:  "Show.S01E01.1080p-GRP",
			Files: []models.TorrentFile{{Path: showA, Size: 50}},
		},
		{
			Hash: "ddd",
			Name: "Show.S01.1080p-GRP",
			Files: []models.TorrentFile{
				{Path: showA, Size: 50},
				{Path: showB, Size: 50},
			},
		},
		{
			Hash: "eee",
			Name: "Filelist.Empty-GRP",
		},
	}
}

func TestDetectCrossSeeds(t *testing.T) {
	groups := NewCrossSeedDetector().Detect(crossSeedFixture())

	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1 (partial overlap and empty torrents never group)", len(groups))
	}

	g := groups[0]
	if len(g.Torrents) != 2 {
		t.Fatalf("group has %d torrents, want 2", len(g.Torrents))
	}
	// Members sort by hash.
	if g.Torrents[0].Hash != "aaa" || g.Torrents[1].Hash != "bbb" {
		t.Errorf("member order = %s, %s", g.Torrents[0].Hash, g.Torrents[1].Hash)
	}
	if g.Torrents[0].Category != "movies" || g.Torrents[0].Tracker != "ab.example.org" {
		t.Errorf("member fields lost: %+v", g.Torrents[0])
	}
	if g.TotalSize != 700 {
		t.Errorf("TotalSize = %d, want 700", g.TotalSize)
	}
	if len(g.Files) != 1 {
		t.Fatalf("group files = %v", g.Files)
	}
	if !reflect.DeepEqual(g.Trackers, []string{"ab.example.org", "cd.example.org"}) {
		t.Errorf("Trackers = %v, want sorted distinct", g.Trackers)
	}
	if !strings.Contains(g.Title, "Matrix") {
		t.Errorf("Title = %q, want parsed release title", g.Title)
	}
}

func TestDetectCrossSeedsOrdersBySize(t *testing.T) {
	big := filepath.FromSlash("/data/torrents/big.mkv")
	small := filepath.FromSlash("/data/torrents/small.mkv")

	torrents := []models.TorrentRecord{
		{Hash: "s1", Name: "Small-A", Files: []models.TorrentFile{{Path: small, Size: 10}}},
		{Hash: "s2", Name: "Small-B", Files: []models.TorrentFile{{Path: small, Size: 10}}},
		{Hash: "b1", Name: "Big-A", Files: []models.TorrentFile{{Path: big, Size: 900}}},
		{Hash: "b2", Name: "Big-B", Files: []models.TorrentFile{{Path: big, Size: 900}}},
	}

	groups := NewCrossSeedDetector().Detect(torrents)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups[0].TotalSize != 900 || groups[1].TotalSize != 10 {
		t.Errorf("group order = %d, %d; want largest first", groups[0].TotalSize, groups[1].TotalSize)
	}
}

func TestDetectCrossSeedsNone(t *testing.T) {
	torrents := []models.TorrentRecord{
		{Hash: "a", Name: "One", Files: []models.TorrentFile{{Path: "/data/one.mkv", Size: 1}}},
		{Hash: "b", Name: "Two", Files: []models.TorrentFile{{Path: "/data/two.mkv", Size: 1}}},
	}

	if groups := NewCrossSeedDetector().Detect(torrents); len(groups) != 0 {
		t.Fatalf("got %d groups, want 0", len(groups))
	}
}

func TestPathSetKeyOrderIndependent(t *testing.T) {
	a := []models.TorrentFile{
		{Path: filepath.FromSlash("/data/e01.mkv")},
		{Path: filepath.FromSlash("/data/e02.mkv")},
	}
	b := []models.TorrentFile{
		{Path: filepath.FromSlash("/data/e02.mkv")},
		{Path: filepath.FromSlash("/data/e01.mkv")},
	}

	if pathSetKey(a) != pathSetKey(b) {
		t.Error("file order must not change the grouping key")
	}

	c := []models.TorrentFile{{Path: filepath.FromSlash("/data/e01.mkv")}}
	if pathSetKey(a) == pathSetKey(c) {
		t.Error("different path sets must not share a key")
	}
}

// Sizes are deliberately not part of the grouping key: the same payload
// announced with a different piece layout still cross-seeds.
func TestDetectIgnoresSizesInKey(t *testing.T) {
	path := filepath.FromSlash("/data/torrents/movie.mkv")
	torrents := []models.TorrentRecord{
		{Hash: "a", Name: "A", Files: []models.TorrentFile{{Path: path, Size: 100}}},
		{Hash: "b", Name: "B", Files: []models.TorrentFile{{Path: path, Size: 101}}},
	}

	if groups := NewCrossSeedDetector().Detect(torrents); len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
}
