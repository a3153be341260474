// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package arr adapts the Radarr and Sonarr API clients into the scan
// pipeline's media sources. Every path is remapped into host path space
// before it leaves this package.
package arr

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/linkarr/internal/models"
	"github.com/autobrr/linkarr/internal/services/scan"
	"github.com/autobrr/linkarr/pkg/radarr"
)

// RadarrProvider serves movies. Movies claim their file path directly, so
// ItemFiles never touches the API.
type RadarrProvider struct {
	client   *radarr.Client
	remapper *scan.Remapper
}

func NewRadarrProvider(client *radarr.Client, remapper *scan.Remapper) *RadarrProvider {
	if remapper == nil {
		remapper = scan.NewRemapper("", "")
	}
	return &RadarrProvider{client: client, remapper: remapper}
}

func (p *RadarrProvider) Service() models.ServiceType {
	return models.ServiceRadarr
}

func (p *RadarrProvider) Items(ctx context.Context) ([]models.MediaRecord, error) {
	movies, err := p.client.GetMovies(ctx)
	if err != nil {
		return nil, &scan.ConnectionError{Service: "radarr", Err: err}
	}

	records := make([]models.MediaRecord, 0, len(movies))
	for _, m := range movies {
		rec := models.MediaRecord{
			ID:         m.ID,
			Title:      m.Title,
			Service:    models.ServiceRadarr,
			FolderPath: p.remapper.Remap(m.Path),
			Monitored:  m.Monitored,
			HasFile:    m.HasFile,
		}
		if m.HasFile && m.MovieFile != nil && m.MovieFile.Path != "" {
			rec.FilePath = p.remapper.Remap(m.MovieFile.Path)
		}
		records = append(records, rec)
	}

	log.Debug().Int("movies", len(records)).Msg("radarr: fetched movies")
	return records, nil
}

func (p *RadarrProvider) ItemFiles(_ context.Context, item *models.MediaRecord) ([]string, error) {
	if item.FilePath == "" {
		return nil, nil
	}
	return []string{item.FilePath}, nil
}

// Test probes connectivity for health endpoints and the info command.
func (p *RadarrProvider) Test(ctx context.Context) error {
	_, err := p.client.Test(ctx)
	return err
}
