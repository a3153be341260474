// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package arr

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/linkarr/internal/models"
	"github.com/autobrr/linkarr/internal/services/scan"
	"github.com/autobrr/linkarr/pkg/sonarr"
)

// SonarrProvider serves series. Series track at folder level only; their
// files are resolved per series through the episode-file endpoint.
type SonarrProvider struct {
	client   *sonarr.Client
	remapper *scan.Remapper
}

func NewSonarrProvider(client *sonarr.Client, remapper *scan.Remapper) *SonarrProvider {
	if remapper == nil {
		remapper = scan.NewRemapper("", "")
	}
	return &SonarrProvider{client: client, remapper: remapper}
}

func (p *SonarrProvider) Service() models.ServiceType {
	return models.ServiceSonarr
}

func (p *SonarrProvider) Items(ctx context.Context) ([]models.MediaRecord, error) {
	series, err := p.client.GetSeries(ctx)
	if err != nil {
		return nil, &scan.ConnectionError{Service: "sonarr", Err: err}
	}

	records := make([]models.MediaRecord, 0, len(series))
	for _, s := range series {
		records = append(records, models.MediaRecord{
			ID:         s.ID,
			Title:      s.Title,
			Service:    models.ServiceSonarr,
			FolderPath: p.remapper.Remap(s.Path),
			Monitored:  s.Monitored,
			HasFile:    s.Statistics.EpisodeFileCount > 0,
		})
	}

	log.Debug().Int("series", len(records)).Msg("sonarr: fetched series")
	return records, nil
}

// ItemFiles enumerates the episode files for one series. Failures here are
// the degradable kind; the caller skips the series and keeps scanning.
func (p *SonarrProvider) ItemFiles(ctx context.Context, item *models.MediaRecord) ([]string, error) {
	files, err := p.client.GetEpisodeFiles(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("episode files for %q: %w", item.Title, err)
	}

	seen := make(map[string]struct{}, len(files))
	paths := make([]string, 0, len(files))
	for _, f := range files {
		if f.Path == "" {
			continue
		}
		path := p.remapper.Remap(f.Path)
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}
		paths = append(paths, path)
	}
	return paths, nil
}

// Test probes connectivity for health endpoints and the info command.
func (p *SonarrProvider) Test(ctx context.Context) error {
	_, err := p.client.Test(ctx)
	return err
}
