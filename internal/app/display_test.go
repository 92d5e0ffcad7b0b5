// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"strings"
	"testing"
	"time"

	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/relabs-tech/climate_node/internal/climate"
	"github.com/relabs-tech/climate_node/internal/dht"
)

func TestClimateLinesWaiting(t *testing.T) {
	lines := climateLines(&DisplayData{}, dht.Celsius)
	if !strings.Contains(strings.Join(lines, "\n"), "Waiting...") {
		t.Errorf("lines = %q", lines)
	}

	data := &DisplayData{haveStatus: true, status: climate.StatusEvent{Status: "sensor not detected"}}
	lines = climateLines(data, dht.Celsius)
	if lines[len(lines)-1] != "sensor not detected" {
		t.Errorf("lines = %q", lines)
	}
}

func TestClimateLinesSample(t *testing.T) {
	now := time.Now()
	data := &DisplayData{sample: sampleAt(25, 60, now), haveSample: true}

	lines := climateLines(data, dht.Fahrenheit)
	if lines[0] != "T:    77.0 F" {
		t.Errorf("temperature line = %q", lines[0])
	}
	if lines[1] != "RH:   60.0 %" {
		t.Errorf("humidity line = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "DP:   62.") {
		t.Errorf("dew point line = %q", lines[2])
	}

	// a failure after the sample is shown instead of the time
	data.haveStatus = true
	data.status = climate.StatusEvent{Status: "bad checksum", Time: now.Add(time.Second)}
	lines = climateLines(data, dht.Celsius)
	if lines[3] != "! bad checksum" {
		t.Errorf("status line = %q", lines[3])
	}
}

func TestRenderLines(t *testing.T) {
	blank := renderLines(nil)
	for _, b := range blank.Pix {
		if b != 0 {
			t.Fatal("empty screen has lit pixels")
		}
	}

	img := renderLines([]string{"T: 21.0 C"})
	lit := 0
	for y := 0; y < 64; y++ {
		for x := 0; x < 128; x++ {
			if img.BitAt(x, y) == image1bit.On {
				lit++
				if y >= 16 {
					t.Fatalf("pixel lit below the first line at (%d,%d)", x, y)
				}
			}
		}
	}
	if lit == 0 {
		t.Error("text was not drawn")
	}
}
