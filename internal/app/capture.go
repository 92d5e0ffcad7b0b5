// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/gpio"

	"github.com/relabs-tech/climate_node/internal/dht"
	"github.com/relabs-tech/climate_node/internal/sensors"
)

const (
	captureBuffer = 256
	// a full answer lasts about 5ms
	captureWindow = 20 * time.Millisecond
)

// RunCapture sends one start signal on pinName and dumps the line
// transitions reported by the kernel. It is meant for wiring checks on a
// pin no other process is using.
func RunCapture(pinName string, model dht.Model) error {
	logger := log.With().Str("component", "capture").Logger()

	pin, err := sensors.OpenPin(pinName)
	if err != nil {
		return err
	}
	defer pin.Halt()

	edges, dropped, err := captureAnswer(pin, model, captureWindow)
	if err != nil {
		return err
	}
	if dropped > 0 {
		logger.Warn().Uint64("dropped", dropped).Msg("edge buffer overflowed")
	}
	logger.Info().Int("edges", len(edges)).Msg("capture done")

	printCapture(os.Stdout, edges)
	return nil
}

// captureAnswer holds the line low for the model's start signal, then
// releases it through the edge tap and records for window.
func captureAnswer(pin gpio.PinIO, model dht.Model, window time.Duration) ([]dht.Edge, uint64, error) {
	if err := pin.Out(gpio.Low); err != nil {
		return nil, 0, fmt.Errorf("capture: %s: pin out low: %w", pin, err)
	}
	time.Sleep(model.StartHold())

	tap := dht.NewEdgeTap(pin, captureBuffer, time.Millisecond)
	if err := tap.Start(); err != nil {
		return nil, 0, err
	}
	time.Sleep(window)
	tap.Stop()

	var edges []dht.Edge
	for len(tap.Edges()) > 0 {
		edges = append(edges, <-tap.Edges())
	}
	return edges, tap.Dropped(), nil
}

func printCapture(w io.Writer, edges []dht.Edge) {
	pulses := dht.Pulses(edges)
	for i, d := range pulses {
		fmt.Fprintf(w, "%3d %-4s %6dus\n", i, edges[i].Level, d.Microseconds())
	}

	frame, bits := decodeCapture(edges)
	fmt.Fprintf(w, "bits: %d/40 frame: % X checksum ok: %v\n", bits, frame[:], bits == 40 && frame.Valid())
}

// decodeCapture rebuilds a frame from captured edges: the first high pulse
// is the sensor's ready pulse, every following one is a data bit. Kernel edge
// timestamps are coarse, so the result is only a hint.
func decodeCapture(edges []dht.Edge) (dht.RawFrame, int) {
	var (
		f     dht.RawFrame
		bits  int
		ready bool
	)
	pulses := dht.Pulses(edges)
	for i, d := range pulses {
		if edges[i].Level != gpio.High {
			continue
		}
		if !ready {
			ready = true
			continue
		}
		if bits == 40 {
			break
		}
		f[bits/8] <<= 1
		if d > dht.BitSampleUs*time.Microsecond {
			f[bits/8] |= 1
		}
		bits++
	}
	return f, bits
}
