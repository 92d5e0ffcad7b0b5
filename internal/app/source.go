// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/relabs-tech/climate_node/internal/climate"
	"github.com/relabs-tech/climate_node/internal/config"
	"github.com/relabs-tech/climate_node/internal/history"
	"github.com/relabs-tech/climate_node/internal/history/memory"
	"github.com/relabs-tech/climate_node/internal/history/sqlite"
	"github.com/relabs-tech/climate_node/internal/sensors"
)

// openClimateSource picks the mock or the real sensor. The returned close
// function releases the pin.
func openClimateSource(cfg *config.Config, logger zerolog.Logger) (climate.Source, string, func() error, error) {
	if cfg.DHTMock {
		logger.Info().Msg("using mock climate source")
		return climate.NewMockSource(), "mock", func() error { return nil }, nil
	}
	dev, err := sensors.OpenDHT(cfg)
	if err != nil {
		return nil, "", nil, err
	}
	name := sensors.SourceName(cfg.DHTModel, cfg.DHTPin)
	logger.Info().Str("source", name).Msg("using DHT sensor")
	return sensors.NewDHTSource(dev, cfg.DHTPin), name, dev.Close, nil
}

// openHistory returns the SQLite repository when HISTORY_DB_PATH is set and
// an in-memory one otherwise.
func openHistory(cfg *config.Config, logger zerolog.Logger) (history.Repository, func() error, error) {
	if cfg.HistoryDBPath == "" {
		logger.Info().Msg("initialized in-memory history")
		return memory.NewRepository(), func() error { return nil }, nil
	}
	repo, err := sqlite.NewRepository(cfg.HistoryDBPath)
	if err != nil {
		return nil, nil, err
	}
	logger.Info().Str("db_path", cfg.HistoryDBPath).Msg("initialized SQLite history")
	return repo, repo.Close, nil
}

// sweepHistory drops samples older than the retention window.
func sweepHistory(ctx context.Context, repo history.Repository, retention time.Duration, now time.Time, logger zerolog.Logger) {
	n, err := repo.DeleteOlderThan(ctx, now.Add(-retention))
	if err != nil {
		logger.Error().Err(err).Msg("failed to delete old samples")
		return
	}
	if n > 0 {
		logger.Info().Int64("deleted", n).Dur("retention", retention).Msg("deleted old samples")
	}
}
