// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/relabs-tech/climate_node/internal/climate"
	"github.com/relabs-tech/climate_node/internal/config"
	"github.com/relabs-tech/climate_node/internal/dht"
)

// RunConsole reads the sensor directly, without MQTT, and prints every
// reading in all three scales. The sensor's power-up settle time is waited
// out by the sensor opener.
func RunConsole(ctx context.Context) error {
	cfg := config.Get()
	logger := log.With().Str("component", "console").Logger()

	src, _, closeSrc, err := openClimateSource(cfg, logger)
	if err != nil {
		return err
	}
	defer closeSrc()

	period := time.Duration(cfg.DHTSampleInterval) * time.Millisecond
	return runConsoleLoop(ctx, src, os.Stdout, period)
}

func runConsoleLoop(ctx context.Context, src climate.Source, w io.Writer, period time.Duration) error {
	for {
		s, err := src.Next()
		if err != nil {
			printReadError(w, err)
		} else {
			printReading(w, s)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(period):
		}
	}
}

func printReading(w io.Writer, s climate.Sample) {
	fmt.Fprintf(w, "\nTemperature in Kelvin: %4.2fK, Celsius: %4.2f°C, Fahrenheit %4.2f°F\n", s.TempK, s.TempC, s.TempF)
	fmt.Fprintf(w, "Humidity is %4.2f, Dewpoint: %s, Dewpoint fast: %s\n", s.Humidity, formatDewPoint(s.DewPointC), formatDewPoint(s.DewPointFastC))
}

func printReadError(w io.Writer, err error) {
	st, ok := dht.StatusOf(err)
	if !ok {
		fmt.Fprintf(w, "Error! read failed: %v\n", err)
		return
	}
	fmt.Fprintf(w, "Error! ReadData() returned: [%d] -> %s\n", uint8(st), st)
}
