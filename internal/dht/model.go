// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package dht

import (
	"fmt"
	"strings"
	"time"
)

// Model selects the sensor variant. It is fixed for the lifetime of a Dev.
type Model uint8

const (
	// DHT11 is the low resolution variant: 1°C / 1%RH, 0–50°C.
	DHT11 Model = iota + 1
	// DHT22 is the high resolution variant: 0.1°C / 0.1%RH, -40–80°C.
	DHT22
	// AM2302 is a DHT22 in a wired package.
	AM2302 = DHT22
)

func (m Model) String() string {
	switch m {
	case DHT11:
		return "DHT11"
	case DHT22:
		return "DHT22"
	}
	return fmt.Sprintf("Model(%d)", uint8(m))
}

// ParseModel accepts "dht11", "dht22" or "am2302", case insensitive.
func ParseModel(s string) (Model, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dht11":
		return DHT11, nil
	case "dht22", "am2302":
		return DHT22, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedModel, s)
}

func (m Model) valid() bool {
	return m == DHT11 || m == DHT22
}

// StartHold is how long the host keeps the line low to wake the sensor.
// The DHT22 datasheet asks for 1ms; it is doubled for margin.
func (m Model) StartHold() time.Duration {
	if m == DHT11 {
		return 18 * time.Millisecond
	}
	return 2 * time.Millisecond
}

// Decode converts the first four bytes of a frame into °C and %RH.
// It does not look at the checksum.
func (m Model) Decode(f RawFrame) (celsius, humidity float64) {
	if m == DHT11 {
		humidity = float64(f[0]) + float64(f[1])/10
		celsius = float64(f[2]) + float64(f[3]&0x7F)/10
		if f[3]&0x80 != 0 {
			celsius = -celsius
		}
		return celsius, humidity
	}
	humidity = float64(uint16(f[0])<<8|uint16(f[1])) / 10
	celsius = float64(uint16(f[2]&0x7F)<<8|uint16(f[3])) / 10
	if f[2]&0x80 != 0 {
		celsius = -celsius
	}
	return celsius, humidity
}

// plausible reports whether a decoded value can come from a working sensor.
func (m Model) plausible(celsius, humidity float64) bool {
	if humidity < 0 || humidity > 100 {
		return false
	}
	if m == DHT11 {
		return celsius >= 0 && celsius <= 50
	}
	return celsius >= -40 && celsius <= 80
}
