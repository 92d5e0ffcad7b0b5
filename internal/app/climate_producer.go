// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/relabs-tech/climate_node/internal/climate"
	"github.com/relabs-tech/climate_node/internal/config"
	"github.com/relabs-tech/climate_node/internal/history"
)

const retentionSweepInterval = time.Hour

// climateProducer reads the source on every tick and fans the result out to
// MQTT and the history.
type climateProducer struct {
	src          climate.Source
	name         string
	pub          publisher
	repo         history.Repository
	topicClimate string
	topicStatus  string
	retention    time.Duration
	logger       zerolog.Logger
}

func RunClimateProducer(ctx context.Context) error {
	cfg := config.Get()
	logger := log.With().Str("component", "producer").Logger()

	src, name, closeSrc, err := openClimateSource(cfg, logger)
	if err != nil {
		return err
	}
	defer closeSrc()

	repo, closeRepo, err := openHistory(cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDProducer, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	p := &climateProducer{
		src:          src,
		name:         name,
		pub:          client,
		repo:         repo,
		topicClimate: cfg.TopicClimate,
		topicStatus:  cfg.TopicStatus,
		retention:    time.Duration(cfg.HistoryRetentionHours) * time.Hour,
		logger:       logger,
	}
	return p.run(ctx, time.Duration(cfg.DHTSampleInterval)*time.Millisecond)
}

func (p *climateProducer) run(ctx context.Context, interval time.Duration) error {
	p.logger.Info().Dur("interval", interval).Msg("starting publish loop")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sweep := time.NewTicker(retentionSweepInterval)
	defer sweep.Stop()

	sweepHistory(ctx, p.repo, p.retention, time.Now(), p.logger)
	p.tick(ctx, time.Now())

	for {
		select {
		case t := <-ticker.C:
			p.tick(ctx, t)
		case t := <-sweep.C:
			sweepHistory(ctx, p.repo, p.retention, t, p.logger)
		case <-ctx.Done():
			p.logger.Info().Msg("stopping publish loop")
			return nil
		}
	}
}

// tick performs one acquisition. Failures are published on the status
// topic and never stop the loop.
func (p *climateProducer) tick(ctx context.Context, t time.Time) {
	s, err := p.src.Next()
	if err != nil {
		ev := climate.NewStatusEvent(p.name, err, t)
		p.logger.Warn().Err(err).Uint8("code", ev.Code).Msg("read failed")
		if err := publishJSON(p.pub, p.topicStatus, false, ev); err != nil {
			p.logger.Error().Err(err).Msg("status publish failed")
		}
		return
	}

	if err := publishJSON(p.pub, p.topicClimate, true, s); err != nil {
		p.logger.Error().Err(err).Msg("sample publish failed")
	}
	if err := p.repo.Save(ctx, s); err != nil {
		p.logger.Error().Err(err).Msg("failed to save sample")
	}

	p.logger.Debug().
		Float64("temp_c", s.TempC).
		Float64("humidity", s.Humidity).
		Time("captured_at", s.CapturedAt).
		Msg("published sample")
}
