// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package dht

import (
	"fmt"
	"strings"
)

// Scale is a temperature scale.
type Scale uint8

const (
	Celsius Scale = iota
	Fahrenheit
	Kelvin
)

func (s Scale) String() string {
	switch s {
	case Celsius:
		return "C"
	case Fahrenheit:
		return "F"
	case Kelvin:
		return "K"
	}
	return fmt.Sprintf("Scale(%d)", uint8(s))
}

// ParseScale accepts C, F, K or the full scale names.
func ParseScale(s string) (Scale, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "c", "celsius":
		return Celsius, nil
	case "f", "fahrenheit":
		return Fahrenheit, nil
	case "k", "kelvin":
		return Kelvin, nil
	}
	return 0, fmt.Errorf("unknown temperature scale %q", s)
}

func CelsiusToFahrenheit(c float64) float64 { return c*9/5 + 32 }

func FahrenheitToCelsius(f float64) float64 { return (f - 32) * 5 / 9 }

func CelsiusToKelvin(c float64) float64 { return c + 273.15 }

func KelvinToCelsius(k float64) float64 { return k - 273.15 }

// Convert expresses a Celsius value in scale s. Unknown scales return c.
func Convert(c float64, s Scale) float64 {
	switch s {
	case Fahrenheit:
		return CelsiusToFahrenheit(c)
	case Kelvin:
		return CelsiusToKelvin(c)
	}
	return c
}
