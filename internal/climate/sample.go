// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package climate

import (
	"math"
	"time"

	"github.com/relabs-tech/climate_node/internal/dht"
)

// Sample is one temperature/humidity measurement as published on MQTT.
type Sample struct {
	Source string `json:"source"` // "dht22@GPIO4", "mock", ...

	TempC    float64 `json:"temp_c"`   // °C
	TempF    float64 `json:"temp_f"`   // °F
	TempK    float64 `json:"temp_k"`   // K
	Humidity float64 `json:"humidity"` // %RH

	// Dew points are omitted when humidity is 0 and no dew point exists.
	DewPointC     *float64 `json:"dew_point_c,omitempty"`
	DewPointFastC *float64 `json:"dew_point_fast_c,omitempty"`

	Status     string    `json:"status"`
	CapturedAt time.Time `json:"captured_at"`
}

// FromReading builds a Sample from a driver reading.
func FromReading(source string, r dht.Reading) Sample {
	return Sample{
		Source:        source,
		TempC:         r.TemperatureC,
		TempF:         dht.CelsiusToFahrenheit(r.TemperatureC),
		TempK:         dht.CelsiusToKelvin(r.TemperatureC),
		Humidity:      r.Humidity,
		DewPointC:     finite(dht.DewPoint(r.TemperatureC, r.Humidity)),
		DewPointFastC: finite(dht.DewPointFast(r.TemperatureC, r.Humidity)),
		Status:        r.Status.String(),
		CapturedAt:    r.CapturedAt,
	}
}

// Temperature returns the sample's temperature in scale s.
func (s Sample) Temperature(scale dht.Scale) float64 {
	switch scale {
	case dht.Fahrenheit:
		return s.TempF
	case dht.Kelvin:
		return s.TempK
	}
	return s.TempC
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
