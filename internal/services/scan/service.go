// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package scan correlates the download client, the library services, and the
// raw filesystem into one snapshot of hardlink groups, per-file tracking
// relationships, orphaned files, and cross-seed groups. Every run is a full
// rescan; nothing from a previous run feeds into the next.
package scan

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/autobrr/linkarr/internal/models"
)

// TorrentProvider supplies the download client's view: every torrent with
// its full file list and primary tracker, paths already remapped into host
// path space. An unreachable client returns a ConnectionError; an empty
// instance returns an empty slice and no error.
type TorrentProvider interface {
	Torrents(ctx context.Context) ([]models.TorrentRecord, error)
}

// MediaProvider supplies one library service's tracked items. Items failing
// as a whole is fatal to the scan; ItemFiles failing affects only that item.
type MediaProvider interface {
	Service() models.ServiceType
	Items(ctx context.Context) ([]models.MediaRecord, error)
	ItemFiles(ctx context.Context, item *models.MediaRecord) ([]string, error)
}

// Snapshot pairs a finished scan result with the tracking view it was built
// from. The tracking view backs the in-use re-check during orphan deletion.
type Snapshot struct {
	Result   *models.ScanResult
	tracking *TrackingAggregate
}

// Tracked reports whether any source claimed the path during this scan.
func (s *Snapshot) Tracked(path string) bool {
	return s.tracking != nil && s.tracking.Has(path)
}

// Service runs the scan pipeline. One scan at a time; concurrent triggers
// get ErrScanActive instead of queueing. The pipeline itself is stateless,
// the service only retains the latest finished snapshot for projections.
type Service struct {
	cfg    Config
	walker *Walker

	torrents TorrentProvider
	media    []MediaProvider

	runMu   sync.Mutex
	running bool

	lastMu sync.RWMutex
	last   *Snapshot
}

// New validates the configuration and builds a scan service. Providers may
// be nil or absent; an unconfigured source simply contributes nothing.
func New(cfg Config, torrents TorrentProvider, media ...MediaProvider) (*Service, error) {
	roots, err := NormalizeRoots(cfg.Roots)
	if err != nil {
		return nil, err
	}
	cfg.Roots = roots

	if cfg.Policy.LibraryMediaFloor == 0 && cfg.Policy.TorrentMediaFloor == 0 {
		cfg.Policy = DefaultPolicy()
	}

	providers := make([]MediaProvider, 0, len(media))
	for _, p := range media {
		if p != nil {
			providers = append(providers, p)
		}
	}

	return &Service{
		cfg:      cfg,
		walker:   NewWalker(NewClassifier(cfg.Policy)),
		torrents: torrents,
		media:    providers,
	}, nil
}

// Config returns the normalized scan configuration.
func (s *Service) Config() Config {
	return s.cfg
}

// Latest returns the most recent finished snapshot, if any.
func (s *Service) Latest() (*Snapshot, bool) {
	s.lastMu.RLock()
	defer s.lastMu.RUnlock()
	return s.last, s.last != nil
}

// Running reports whether a scan is currently in flight.
func (s *Service) Running() bool {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.running
}

// Run executes the full pipeline and retains the snapshot on success.
// Collaborator connection failures and unreadable roots abort the scan with
// no result; a canceled context aborts between stages with ErrAborted.
func (s *Service) Run(ctx context.Context) (*Snapshot, error) {
	s.runMu.Lock()
	if s.running {
		s.runMu.Unlock()
		return nil, ErrScanActive
	}
	s.running = true
	s.runMu.Unlock()

	defer func() {
		s.runMu.Lock()
		s.running = false
		s.runMu.Unlock()
	}()

	snapshot, err := s.runPipeline(ctx)
	if err != nil {
		return nil, err
	}

	s.lastMu.Lock()
	s.last = snapshot
	s.lastMu.Unlock()

	return snapshot, nil
}

// Orphans runs a full scan and projects the orphan slice.
func (s *Service) Orphans(ctx context.Context) ([]models.OrphanedFile, error) {
	snapshot, err := s.Run(ctx)
	if err != nil {
		return nil, err
	}
	return snapshot.Result.Orphans, nil
}

// Hardlinks runs a full scan and projects the hardlink groups.
func (s *Service) Hardlinks(ctx context.Context) ([]models.HardlinkGroup, error) {
	snapshot, err := s.Run(ctx)
	if err != nil {
		return nil, err
	}
	return snapshot.Result.HardlinkGroups, nil
}

// CrossSeeds runs a full scan and projects the cross-seed groups.
func (s *Service) CrossSeeds(ctx context.Context) ([]models.CrossSeedGroup, error) {
	snapshot, err := s.Run(ctx)
	if err != nil {
		return nil, err
	}
	return snapshot.Result.CrossSeedGroups, nil
}

func (s *Service) runPipeline(ctx context.Context) (*Snapshot, error) {
	startedAt := time.Now()
	log.Info().Msg("scan: starting")

	sources, err := s.fetchSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch tracking sources: %w", err)
	}
	if err := stageGate(ctx); err != nil {
		return nil, err
	}

	index := NewHardlinkIndex()
	torrentFiles, libraryFiles, err := s.walkRoots(ctx, index)
	if err != nil {
		return nil, fmt.Errorf("scan roots: %w", err)
	}
	if err := stageGate(ctx); err != nil {
		return nil, err
	}

	files := make([]models.FileRecord, 0, len(torrentFiles)+len(libraryFiles))
	files = append(files, torrentFiles...)
	files = append(files, libraryFiles...)

	tracking := NewTrackingAggregate()
	for i := range sources.torrents {
		tracking.AddTorrent(&sources.torrents[i])
	}
	for _, src := range sources.media {
		for _, path := range src.claims {
			tracking.AddServiceFile(src.service, path)
		}
	}
	if err := stageGate(ctx); err != nil {
		return nil, err
	}

	relationships := NewRelationshipBuilder(index, tracking).Build(files)
	if err := stageGate(ctx); err != nil {
		return nil, err
	}

	orphans := NewOrphanDetector(tracking).Detect(files)
	if err := stageGate(ctx); err != nil {
		return nil, err
	}

	crossSeeds := NewCrossSeedDetector().Detect(sources.torrents)
	groups := index.Groups()

	finishedAt := time.Now()
	result := &models.ScanResult{
		Statistics:      computeStatistics(files, sources, groups, orphans, crossSeeds, finishedAt.Sub(startedAt)),
		Relationships:   relationships,
		Orphans:         orphans,
		HardlinkGroups:  groups,
		CrossSeedGroups: crossSeeds,
		StartedAt:       startedAt,
		FinishedAt:      finishedAt,
	}

	log.Info().
		Int("files", result.Statistics.TotalFiles).
		Int("torrents", result.Statistics.Torrents).
		Int("hardlinkGroups", result.Statistics.HardlinkGroups).
		Int("orphans", result.Statistics.OrphanedFiles).
		Int("crossSeedGroups", result.Statistics.CrossSeedGroups).
		Dur("elapsed", finishedAt.Sub(startedAt)).
		Msg("scan: complete")

	return &Snapshot{Result: result, tracking: tracking}, nil
}

// sourceData is everything the tracking side contributed, fetched up front
// so the rest of the pipeline runs against immutable inputs.
type sourceData struct {
	torrents []models.TorrentRecord
	media    []mediaSource
}

type mediaSource struct {
	service models.ServiceType
	items   int
	claims  []string
}

// fetchSources pulls all collaborator data concurrently. Any source failing
// outright cancels the others and fails the scan; per-item enumeration
// failures inside a source only cost that item.
func (s *Service) fetchSources(ctx context.Context) (*sourceData, error) {
	data := &sourceData{media: make([]mediaSource, len(s.media))}

	g, gctx := errgroup.WithContext(ctx)

	if s.torrents != nil {
		g.Go(func() error {
			torrents, err := s.torrents.Torrents(gctx)
			if err != nil {
				return err
			}
			data.torrents = torrents
			return nil
		})
	}

	for i, provider := range s.media {
		g.Go(func() error {
			src, err := fetchMediaSource(gctx, provider)
			if err != nil {
				return err
			}
			data.media[i] = src
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}

// fetchMediaSource resolves one library service into claimed file paths.
// Items with a direct file path claim it; folder-level items go through
// per-item enumeration, and an item whose enumeration fails contributes
// nothing beyond a warning.
func fetchMediaSource(ctx context.Context, provider MediaProvider) (mediaSource, error) {
	service := provider.Service()

	items, err := provider.Items(ctx)
	if err != nil {
		return mediaSource{}, err
	}

	src := mediaSource{service: service, items: len(items)}
	for i := range items {
		item := &items[i]

		if item.FilePath != "" {
			src.claims = append(src.claims, item.FilePath)
			continue
		}
		if item.FolderPath == "" || !item.HasFile {
			continue
		}

		paths, err := provider.ItemFiles(ctx, item)
		if err != nil {
			if ctx.Err() != nil {
				return mediaSource{}, ctx.Err()
			}
			log.Warn().Err(err).
				Str("service", string(service)).
				Str("title", item.Title).
				Msg("scan: failed to enumerate item files, skipping item")
			continue
		}
		src.claims = append(src.claims, paths...)
	}

	return src, nil
}

// walkRoots traverses the torrent and library root sets concurrently,
// feeding the shared hardlink index as records are produced.
func (s *Service) walkRoots(ctx context.Context, index *HardlinkIndex) (torrentFiles, libraryFiles []models.FileRecord, err error) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		files, err := s.walker.WalkAll(gctx, s.rootsFor(models.LocationTorrent))
		if err != nil {
			return err
		}
		index.AddAll(files)
		torrentFiles = files
		return nil
	})

	g.Go(func() error {
		files, err := s.walker.WalkAll(gctx, s.rootsFor(models.LocationLibrary))
		if err != nil {
			return err
		}
		index.AddAll(files)
		libraryFiles = files
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return torrentFiles, libraryFiles, nil
}

func (s *Service) rootsFor(location models.FileLocation) []Root {
	var roots []Root
	for _, r := range s.cfg.Roots {
		if r.Location == location {
			roots = append(roots, r)
		}
	}
	return roots
}

// stageGate enforces cooperative cancellation between pipeline stages.
func stageGate(ctx context.Context) error {
	if ctx.Err() != nil {
		return ErrAborted
	}
	return nil
}

func computeStatistics(files []models.FileRecord, sources *sourceData, groups []models.HardlinkGroup, orphans []models.OrphanedFile, crossSeeds []models.CrossSeedGroup, elapsed time.Duration) models.ScanStatistics {
	stats := models.ScanStatistics{
		HardlinkGroups:  len(groups),
		OrphanedFiles:   len(orphans),
		CrossSeedGroups: len(crossSeeds),
		Torrents:        len(sources.torrents),
		Duration:        elapsed.Seconds(),
	}

	for i := range files {
		rec := &files[i]
		stats.TotalFiles++
		stats.TotalSize += rec.Size

		switch rec.Class {
		case models.ClassMain:
			if rec.Location == models.LocationTorrent {
				stats.TorrentFiles++
			} else {
				stats.LibraryFiles++
			}
		case models.ClassSample:
			stats.SampleFiles++
		case models.ClassExtra:
			stats.ExtraFiles++
		case models.ClassSkipped:
			stats.SkippedFiles++
		}
	}

	for _, orphan := range orphans {
		stats.OrphanedSize += orphan.Size
	}

	for _, src := range sources.media {
		switch src.service {
		case models.ServiceRadarr:
			stats.RadarrItems = src.items
		case models.ServiceSonarr:
			stats.SonarrItems = src.items
		}
	}

	return stats
}
