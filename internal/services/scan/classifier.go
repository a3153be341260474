// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package scan

import (
	"path/filepath"
	"strings"

	"github.com/autobrr/linkarr/internal/models"
)

// Policy is the single source of classification rules. It is passed into the
// classifier explicitly so thresholds live in one place instead of drifting
// across call sites.
type Policy struct {
	// LibraryMediaFloor and TorrentMediaFloor are the minimum sizes for a
	// file to count as main content in each context.
	LibraryMediaFloor int64
	TorrentMediaFloor int64

	skipExtensions  map[string]struct{}
	skipMarkers     []string
	skipDirSegments map[string]struct{}
}

// DefaultPolicy returns the stock classification rules.
func DefaultPolicy() Policy {
	return Policy{
		LibraryMediaFloor: DefaultLibraryMediaFloor,
		TorrentMediaFloor: DefaultTorrentMediaFloor,
		skipExtensions: map[string]struct{}{
			// subtitles
			".srt": {},
			".sub": {},
			".idx": {},
			// metadata
			".nfo": {},
			".txt": {},
			".srr": {},
			".sfv": {},
			// images
			".png":  {},
			".jpg":  {},
			".jpeg": {},
			".gif":  {},
		},
		skipMarkers: []string{"trailer", "proof"},
		skipDirSegments: map[string]struct{}{
			"extras":          {},
			"featurettes":     {},
			"behindthescenes": {},
			"deletedscenes":   {},
			"trailers":        {},
		},
	}
}

func (p Policy) mediaFloor(location models.FileLocation) int64 {
	if location == models.LocationTorrent {
		return p.TorrentMediaFloor
	}
	return p.LibraryMediaFloor
}

// Classifier partitions scanned files into exactly one of main, sample,
// extra, or skipped. Rules apply in precedence order: sample patterns win
// over skip patterns, which win over the size floor. The same absolute path
// can classify differently under a torrent root than under a library root
// because the floors differ.
type Classifier struct {
	policy Policy
}

func NewClassifier(policy Policy) *Classifier {
	return &Classifier{policy: policy}
}

// Classify assigns the class for a file at path with the given size,
// discovered under the given root category.
func (c *Classifier) Classify(path string, size int64, location models.FileLocation) models.FileClass {
	base := strings.ToLower(filepath.Base(path))

	if strings.Contains(base, "sample") || hasSegment(path, "sample") {
		return models.ClassSample
	}

	if _, ok := c.policy.skipExtensions[filepath.Ext(base)]; ok {
		return models.ClassSkipped
	}
	for _, marker := range c.policy.skipMarkers {
		if strings.Contains(base, marker) {
			return models.ClassSkipped
		}
	}
	if c.hasSkipSegment(path) {
		return models.ClassSkipped
	}

	if size < c.policy.mediaFloor(location) {
		return models.ClassExtra
	}

	return models.ClassMain
}

// hasSegment reports whether any directory segment of path equals want,
// case-insensitively. The file name itself is not a segment.
func hasSegment(path, want string) bool {
	dir := filepath.Dir(path)
	for _, seg := range strings.Split(dir, string(filepath.Separator)) {
		if strings.EqualFold(seg, want) {
			return true
		}
	}
	return false
}

func (c *Classifier) hasSkipSegment(path string) bool {
	dir := filepath.Dir(path)
	for _, seg := range strings.Split(dir, string(filepath.Separator)) {
		if _, ok := c.policy.skipDirSegments[foldSegment(seg)]; ok {
			return true
		}
	}
	return false
}

// foldSegment lowercases a directory segment and strips separators so
// "Behind The Scenes" and "behind-the-scenes" compare equal.
func foldSegment(seg string) string {
	var b strings.Builder
	b.Grow(len(seg))
	for _, r := range strings.ToLower(seg) {
		switch r {
		case ' ', '-', '_', '.':
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
