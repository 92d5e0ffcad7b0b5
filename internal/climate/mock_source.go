// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package climate

import (
	"math"
	"time"

	"github.com/relabs-tech/climate_node/internal/dht"
)

type mockSource struct {
	start time.Time
	now   func() time.Time
}

// NewMockSource creates a mock climate source that generates smooth
// changing values around a comfortable room climate.
func NewMockSource() Source {
	return &mockSource{start: time.Now(), now: time.Now}
}

func (m *mockSource) Next() (Sample, error) {
	now := m.now()
	elapsed := now.Sub(m.start).Seconds()

	// rounded to the DHT22 resolution
	r := dht.Reading{
		TemperatureC: math.Round((22+3*math.Sin(elapsed/60))*10) / 10,
		Humidity:     math.Round((50+10*math.Cos(elapsed/90))*10) / 10,
		CapturedAt:   now,
		Status:       dht.Success,
	}
	return FromReading("mock", r), nil
}
