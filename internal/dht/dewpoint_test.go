// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package dht

import (
	"math"
	"testing"
)

func TestDewPointKnownValues(t *testing.T) {
	// reference values from psychrometric tables
	tests := []struct {
		c, rh float64
		want  float64
	}{
		{25, 60, 16.7},
		{20, 50, 9.3},
		{30, 80, 26.2},
		{0, 90, -1.4},
		{10, 100, 10},
	}
	for _, tt := range tests {
		if got := DewPoint(tt.c, tt.rh); math.Abs(got-tt.want) > 0.15 {
			t.Errorf("DewPoint(%v, %v) = %.2f, want %.1f", tt.c, tt.rh, got, tt.want)
		}
		if got := DewPointFast(tt.c, tt.rh); math.Abs(got-tt.want) > 0.4 {
			t.Errorf("DewPointFast(%v, %v) = %.2f, want %.1f", tt.c, tt.rh, got, tt.want)
		}
	}
}

func TestDewPointSaturated(t *testing.T) {
	for c := -30.0; c <= 50; c += 2.5 {
		if got := DewPoint(c, 100); math.Abs(got-c) > 1e-6 {
			t.Errorf("DewPoint(%v, 100) = %v", c, got)
		}
		if got := DewPointFast(c, 100); math.Abs(got-c) > 1e-6 {
			t.Errorf("DewPointFast(%v, 100) = %v", c, got)
		}
	}
}

func TestDewPointFastTracksPrecise(t *testing.T) {
	for c := 0.0; c <= 50; c++ {
		for rh := 20.0; rh <= 90; rh++ {
			p, f := DewPoint(c, rh), DewPointFast(c, rh)
			if math.Abs(p-f) > 0.4 {
				t.Fatalf("at %v°C %v%%: precise %.3f fast %.3f", c, rh, p, f)
			}
			if p > c+1e-9 {
				t.Fatalf("dew point %.3f above air temperature %v", p, c)
			}
		}
	}
}

func TestDewPointEdgeInputs(t *testing.T) {
	tests := []struct {
		name  string
		c, rh float64
	}{
		{"zero humidity", 20, 0},
		{"negative humidity", 20, -5},
		{"nan temperature", math.NaN(), 50},
		{"inf humidity", 20, math.Inf(1)},
		{"below pole", -300, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DewPoint(tt.c, tt.rh); !math.IsNaN(got) {
				t.Errorf("DewPoint = %v, want NaN", got)
			}
			if got := DewPointFast(tt.c, tt.rh); !math.IsNaN(got) {
				t.Errorf("DewPointFast = %v, want NaN", got)
			}
		})
	}

	// above saturation is clamped
	if got, want := DewPoint(20, 120), DewPoint(20, 100); got != want {
		t.Errorf("DewPoint(20, 120) = %v, want %v", got, want)
	}
}
