// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package scan

import (
	"sort"

	"github.com/autobrr/linkarr/internal/models"
)

// pathClaims collects every tracking source that references one canonical
// path. Torrent claims dedupe on hash so re-adding the same torrent is a
// no-op; service claims dedupe on service name.
type pathClaims struct {
	torrentNames  map[string]struct{}
	torrentHashes map[string]struct{}
	services      map[models.ServiceType]struct{}
	size          int64
}

// TrackingAggregate is the merged view of which paths the torrent client and
// the library services claim. It is built single threaded after all sources
// have been fetched, then read from everywhere.
type TrackingAggregate struct {
	byPath map[string]*pathClaims
}

func NewTrackingAggregate() *TrackingAggregate {
	return &TrackingAggregate{byPath: make(map[string]*pathClaims)}
}

func (a *TrackingAggregate) claims(path string) *pathClaims {
	key := normalizePath(path)
	c, ok := a.byPath[key]
	if !ok {
		c = &pathClaims{
			torrentNames:  make(map[string]struct{}),
			torrentHashes: make(map[string]struct{}),
			services:      make(map[models.ServiceType]struct{}),
		}
		a.byPath[key] = c
	}
	return c
}

// AddTorrent claims every file path of a torrent. Adding the same torrent
// twice changes nothing.
func (a *TrackingAggregate) AddTorrent(torrent *models.TorrentRecord) {
	for _, f := range torrent.Files {
		c := a.claims(f.Path)
		if _, dup := c.torrentHashes[torrent.Hash]; dup {
			continue
		}
		c.torrentHashes[torrent.Hash] = struct{}{}
		c.torrentNames[torrent.Name] = struct{}{}
		if f.Size > c.size {
			c.size = f.Size
		}
	}
}

// AddServiceFile claims a path on behalf of a library service.
func (a *TrackingAggregate) AddServiceFile(service models.ServiceType, path string) {
	if path == "" {
		return
	}
	c := a.claims(path)
	c.services[service] = struct{}{}
}

// Has reports whether any source claims the path.
func (a *TrackingAggregate) Has(path string) bool {
	_, ok := a.byPath[normalizePath(path)]
	return ok
}

// TrackedByTorrent reports whether at least one torrent claims the path.
func (a *TrackingAggregate) TrackedByTorrent(path string) bool {
	c, ok := a.byPath[normalizePath(path)]
	return ok && len(c.torrentHashes) > 0
}

// TrackedByService reports whether at least one library service claims the path.
func (a *TrackingAggregate) TrackedByService(path string) bool {
	c, ok := a.byPath[normalizePath(path)]
	return ok && len(c.services) > 0
}

// Torrents returns the sorted distinct names of torrents claiming the path.
func (a *TrackingAggregate) Torrents(path string) []string {
	c, ok := a.byPath[normalizePath(path)]
	if !ok || len(c.torrentNames) == 0 {
		return nil
	}
	names := make([]string, 0, len(c.torrentNames))
	for name := range c.torrentNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Services returns the sorted distinct service names claiming the path.
func (a *TrackingAggregate) Services(path string) []string {
	c, ok := a.byPath[normalizePath(path)]
	if !ok || len(c.services) == 0 {
		return nil
	}
	services := make([]string, 0, len(c.services))
	for s := range c.services {
		services = append(services, string(s))
	}
	sort.Strings(services)
	return services
}

// Size returns the largest size any tracking source reported for the path,
// used for entries that only exist on the tracking side.
func (a *TrackingAggregate) Size(path string) int64 {
	c, ok := a.byPath[normalizePath(path)]
	if !ok {
		return 0
	}
	return c.size
}

// Paths returns every claimed canonical path, sorted.
func (a *TrackingAggregate) Paths() []string {
	paths := make([]string, 0, len(a.byPath))
	for p := range a.byPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Len returns the number of claimed paths.
func (a *TrackingAggregate) Len() int {
	return len(a.byPath)
}
