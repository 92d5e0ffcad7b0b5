// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package dht

import "math"

// Arden Buck (1996) saturation vapour pressure over water:
//
//	es(T) = 6.1121 * exp((b - T/d) * (T / (c + T)))   [hPa, T in °C]
const (
	buckB = 18.678
	buckC = 257.14 // °C
	buckD = 234.5  // °C
)

// Magnus-Tetens constants for the fast estimate.
const (
	magnusA = 17.27
	magnusB = 237.7 // °C
)

// DewPoint returns the dew point in °C by solving the Arden Buck vapour
// pressure equation for the temperature at which the current vapour
// pressure saturates. Valid for -40°C..+50°C and 1..100 %RH, where Buck's
// curve is within 0.05% of the reference tables.
//
// Humidity above 100 is clamped to 100. Zero, negative or non finite input
// returns NaN.
func DewPoint(celsius, humidity float64) float64 {
	rh, ok := dewInput(celsius, humidity)
	if !ok {
		return math.NaN()
	}
	g := math.Log(rh/100) + (buckB-celsius/buckD)*(celsius/(buckC+celsius))
	// Td²/d + (g-b)Td + gc = 0, smaller root
	disc := (buckB-g)*(buckB-g) - 4*g*buckC/buckD
	if disc < 0 {
		return math.NaN()
	}
	return buckD / 2 * ((buckB - g) - math.Sqrt(disc))
}

// DewPointFast is the two constant Magnus approximation: a single
// logarithm and no square root. It stays within 0.4°C of DewPoint for
// 0°C..60°C and 1..100 %RH. Input handling matches DewPoint.
func DewPointFast(celsius, humidity float64) float64 {
	rh, ok := dewInput(celsius, humidity)
	if !ok {
		return math.NaN()
	}
	gamma := magnusA*celsius/(magnusB+celsius) + math.Log(rh/100)
	return magnusB * gamma / (magnusA - gamma)
}

func dewInput(celsius, humidity float64) (float64, bool) {
	if math.IsNaN(celsius) || math.IsInf(celsius, 0) || math.IsNaN(humidity) || math.IsInf(humidity, 0) {
		return 0, false
	}
	if humidity <= 0 {
		return 0, false
	}
	// both forms have a pole at -c
	if celsius <= -magnusB {
		return 0, false
	}
	return math.Min(humidity, 100), true
}
