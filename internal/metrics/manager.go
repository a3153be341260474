// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package metrics exposes scan statistics on a dedicated Prometheus
// registry, kept separate from any default registry the process carries.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/linkarr/internal/services/runner"
)

type Manager struct {
	registry      *prometheus.Registry
	scanCollector *ScanCollector
}

func NewMetricsManager(runs *runner.Service) *Manager {
	registry := prometheus.NewRegistry()

	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	scanCollector := NewScanCollector(runs)
	registry.MustRegister(scanCollector)

	log.Info().Msg("Metrics manager initialized with scan collector")

	return &Manager{
		registry:      registry,
		scanCollector: scanCollector,
	}
}

func (m *Manager) GetRegistry() *prometheus.Registry {
	return m.registry
}
