// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"time"

	"github.com/autobrr/linkarr/pkg/hardlink"
)

// FileLocation is the root category a file was discovered under.
// Classification thresholds and orphan reasons differ per location.
type FileLocation string

const (
	LocationTorrent FileLocation = "torrent"
	LocationLibrary FileLocation = "library"
)

// FileClass partitions scanned files. Every file lands in exactly one class;
// only main files participate in orphan detection.
type FileClass string

const (
	ClassMain    FileClass = "main"
	ClassSample  FileClass = "sample"
	ClassExtra   FileClass = "extra"
	ClassSkipped FileClass = "skipped"
)

// ServiceType identifies a library manager.
type ServiceType string

const (
	ServiceRadarr ServiceType = "radarr"
	ServiceSonarr ServiceType = "sonarr"
)

// FileRecord is one regular file discovered during a filesystem walk.
// Records are built once per scan and never mutated afterwards.
type FileRecord struct {
	Path       string          `json:"path"`
	Size       int64           `json:"size"`
	Identity   hardlink.FileID `json:"-"`
	LinkCount  uint64          `json:"linkCount"`
	ModifiedAt time.Time       `json:"modifiedAt"`
	Location   FileLocation    `json:"location"`
	Class      FileClass       `json:"class"`
}

// HardlinkGroup is a set of paths sharing one filesystem identity.
// Groups always have at least two members; singletons are not reported.
type HardlinkGroup struct {
	Identity  string   `json:"identity"`
	Files     []string `json:"files"`
	FileSize  int64    `json:"fileSize"`
	LinkCount int      `json:"linkCount"`
}

// TorrentFile is a single entry in a torrent's file list, with its path
// already joined to the save path and remapped into host path space.
type TorrentFile struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// TorrentRecord is a torrent as reported by the download client.
type TorrentRecord struct {
	Hash     string        `json:"hash"`
	Name     string        `json:"name"`
	Category string        `json:"category,omitempty"`
	SavePath string        `json:"savePath"`
	State    string        `json:"state"`
	AddedAt  time.Time     `json:"addedAt"`
	Tracker  string        `json:"tracker,omitempty"`
	Files    []TorrentFile `json:"files"`
}

// MediaRecord is one tracked item from a library manager. A movie carries a
// FilePath when downloaded; a series tracks at folder level only and its
// files are resolved through per-item enumeration.
type MediaRecord struct {
	ID         int64       `json:"id"`
	Title      string      `json:"title"`
	Service    ServiceType `json:"service"`
	FilePath   string      `json:"filePath,omitempty"`
	FolderPath string      `json:"folderPath,omitempty"`
	Monitored  bool        `json:"monitored"`
	HasFile    bool        `json:"hasFile"`
}

// FileRelationship joins everything known about one canonical path: its
// hardlink siblings and which torrents and services claim it. A path tracked
// by a source but absent from disk still gets an entry, with Identity empty
// and no hardlink data.
type FileRelationship struct {
	FilePath        string   `json:"filePath"`
	Size            int64    `json:"size"`
	Identity        string   `json:"identity,omitempty"`
	LinkCount       int      `json:"linkCount,omitempty"`
	HardlinkedFiles []string `json:"hardlinkedFiles,omitempty"`
	Torrents        []string `json:"torrents,omitempty"`
	Services        []string `json:"services,omitempty"`
}

// Tracked reports whether any torrent or service claims the path.
func (r *FileRelationship) Tracked() bool {
	return len(r.Torrents) > 0 || len(r.Services) > 0
}

// OrphanedFile is a main-classified file no tracking source claims.
type OrphanedFile struct {
	Path       string       `json:"path"`
	Size       int64        `json:"size"`
	Location   FileLocation `json:"location"`
	Reason     string       `json:"reason"`
	ModifiedAt time.Time    `json:"modifiedAt"`
}

// CrossSeedTorrent is the slim per-torrent view inside a cross-seed group.
type CrossSeedTorrent struct {
	Hash     string `json:"hash"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Tracker  string `json:"tracker,omitempty"`
}

// CrossSeedGroup is a set of torrents referencing the exact same file paths.
type CrossSeedGroup struct {
	Title     string             `json:"title,omitempty"`
	Files     []string           `json:"files"`
	Torrents  []CrossSeedTorrent `json:"torrents"`
	Trackers  []string           `json:"trackers"`
	TotalSize int64              `json:"totalSize"`
}
