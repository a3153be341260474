// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package qbittorrent

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	qbt "github.com/autobrr/go-qbittorrent"
	"golang.org/x/sync/errgroup"

	"github.com/autobrr/linkarr/internal/models"
	"github.com/autobrr/linkarr/internal/services/scan"
	"github.com/autobrr/linkarr/pkg/hashutil"
	"github.com/autobrr/linkarr/pkg/stringutils"
)

// detailFetchConcurrency bounds the per-torrent files/trackers requests so a
// large instance does not get hammered with thousands of parallel calls.
const detailFetchConcurrency = 8

// Torrents returns every torrent with its full file list and primary
// tracker, paths remapped into host path space. A failed detail fetch fails
// the whole call: a partial file map would make tracked files look orphaned,
// which is worse than no result.
func (p *Pool) Torrents(ctx context.Context) ([]models.TorrentRecord, error) {
	client, err := p.Get(ctx)
	if err != nil {
		return nil, err
	}

	opts := qbt.TorrentFilterOptions{}
	if client.supportsInlineTrackers() {
		opts.IncludeTrackers = true
	}

	torrents, err := client.GetTorrentsCtx(ctx, opts)
	if err != nil {
		return nil, &scan.ConnectionError{Service: "qbittorrent", Err: err}
	}

	records := make([]models.TorrentRecord, len(torrents))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(detailFetchConcurrency)
	for i := range torrents {
		g.Go(func() error {
			rec, err := p.buildRecord(gctx, client, &torrents[i])
			if err != nil {
				return err
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return records, nil
}

func (p *Pool) buildRecord(ctx context.Context, client *Client, t *qbt.Torrent) (models.TorrentRecord, error) {
	savePath := filepath.Clean(t.SavePath)

	rec := models.TorrentRecord{
		// qBittorrent is not consistent about hash case across endpoints.
		Hash:     hashutil.Normalize(t.Hash),
		Name:     t.Name,
		Category: stringutils.Intern(t.Category),
		SavePath: p.remapper.Remap(savePath),
		State:    stringutils.Intern(string(t.State)),
		AddedAt:  time.Unix(t.AddedOn, 0),
	}

	trackers := t.Trackers
	if !client.supportsInlineTrackers() {
		list, err := client.GetTorrentTrackersCtx(ctx, t.Hash)
		if err != nil {
			return rec, fmt.Errorf("fetch trackers for %s: %w", t.Hash, err)
		}
		trackers = list
	}
	rec.Tracker = primaryTracker(trackers)

	files, err := client.GetFilesInformationCtx(ctx, t.Hash)
	if err != nil {
		return rec, fmt.Errorf("fetch files for %s: %w", t.Hash, err)
	}
	if files != nil {
		rec.Files = make([]models.TorrentFile, 0, len(*files))
		for _, f := range *files {
			rec.Files = append(rec.Files, models.TorrentFile{
				Path: p.remapper.Remap(filepath.Join(savePath, f.Name)),
				Size: f.Size,
			})
		}
	}

	return rec, nil
}

// primaryTracker picks the first real announce URL. qBittorrent reports
// DHT/PEX/LSD as "** [DHT] **" pseudo-entries, which are not trackers.
func primaryTracker(trackers []qbt.TorrentTracker) string {
	for _, tr := range trackers {
		u := strings.TrimSpace(tr.Url)
		if u == "" || strings.HasPrefix(u, "**") {
			continue
		}
		return stringutils.Intern(u)
	}
	return ""
}
