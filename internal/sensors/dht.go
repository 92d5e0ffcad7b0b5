// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/climate_node/internal/climate"
	"github.com/relabs-tech/climate_node/internal/config"
	"github.com/relabs-tech/climate_node/internal/dht"
)

var (
	hostOnce    sync.Once
	hostInitErr error
	warmupOnce  sync.Once
)

// initHost initializes periph drivers once per process.
func initHost() error {
	hostOnce.Do(func() {
		if _, err := host.Init(); err != nil {
			hostInitErr = fmt.Errorf("periph host init: %w", err)
		}
	})
	return hostInitErr
}

// OpenPin returns the GPIO pin called name, e.g. "GPIO4".
func OpenPin(name string) (gpio.PinIO, error) {
	if err := initHost(); err != nil {
		return nil, err
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("pin %q not found", name)
	}
	return pin, nil
}

// OpenDHT opens the sensor described by cfg. The first call waits out the
// sensor's power-up settle time (DHT_WARMUP) before returning.
func OpenDHT(cfg *config.Config) (*dht.Dev, error) {
	pin, err := OpenPin(cfg.DHTPin)
	if err != nil {
		return nil, fmt.Errorf("DHT: %w", err)
	}

	dev, err := dht.New(pin, &dht.Opts{
		Model:       cfg.DHTModel,
		MinInterval: time.Duration(cfg.DHTMinInterval) * time.Millisecond,
		Strict:      cfg.DHTStrictRate,
	})
	if err != nil {
		return nil, fmt.Errorf("DHT init: %w", err)
	}

	warmupOnce.Do(func() {
		warmup := time.Duration(cfg.DHTWarmup) * time.Millisecond
		if warmup > 0 {
			log.Debug().Str("component", "sensors").Dur("warmup", warmup).Msg("waiting for DHT power-up")
			time.Sleep(warmup)
		}
	})

	log.Info().
		Str("component", "sensors").
		Str("model", cfg.DHTModel.String()).
		Str("pin", pin.Name()).
		Msg("DHT sensor initialized")
	return dev, nil
}

// dhtSource adapts a driver to climate.Source.
type dhtSource struct {
	dev  *dht.Dev
	name string
	last time.Time // CapturedAt of the last sample returned
}

// SourceName identifies a sensor in published samples, e.g. "dht22@GPIO4".
func SourceName(m dht.Model, pinName string) string {
	return strings.ToLower(m.String()) + "@" + pinName
}

// NewDHTSource returns a Source performing one acquisition per Next.
func NewDHTSource(dev *dht.Dev, pinName string) climate.Source {
	return &dhtSource{
		dev:  dev,
		name: SourceName(dev.Model(), pinName),
	}
}

// Next reads the sensor. Failed attempts return the status' sentinel
// error, see dht.StatusOf. A read throttled by the driver's minimum interval
// returns dht.ErrTooFastReads rather than the previous sample.
func (s *dhtSource) Next() (climate.Sample, error) {
	if st := s.dev.ReadData(); st != dht.Success {
		return climate.Sample{}, fmt.Errorf("%s: %w", s.name, st.Err())
	}
	r, ok := s.dev.Reading()
	if !ok || r.CapturedAt.Equal(s.last) {
		return climate.Sample{}, fmt.Errorf("%s: %w", s.name, dht.ErrTooFastReads)
	}
	s.last = r.CapturedAt
	return climate.FromReading(s.name, r), nil
}
