// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package dht_test

import (
	"testing"
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/relabs-tech/climate_node/internal/dht"
	"github.com/relabs-tech/climate_node/internal/dht/dhtsim"
)

// startSensor sends a start signal and hands the line to the sensor.
func startSensor(t *testing.T, s *dhtsim.Sensor, clk *dhtsim.Clock) {
	t.Helper()
	if err := s.Out(gpio.Low); err != nil {
		t.Fatal(err)
	}
	clk.Sleep(2 * time.Millisecond)
	if err := s.Out(gpio.High); err != nil {
		t.Fatal(err)
	}
	if err := s.In(gpio.PullUp, gpio.NoEdge); err != nil {
		t.Fatal(err)
	}
}

func TestWaitForLevelFollowsWaveform(t *testing.T) {
	clk := dhtsim.NewClock()
	s := dhtsim.NewSensor(clk, "GPIO4", dhtsim.Frame(1, 2, 3, 4))
	startSensor(t, s, clk)

	steps := []struct {
		level gpio.Level
		want  uint32
	}{
		{gpio.Low, dhtsim.ResponseDelay},
		{gpio.High, dhtsim.ReadyLow},
		{gpio.Low, dhtsim.ReadyHigh},
	}
	for i, st := range steps {
		got, ok := dht.WaitForLevel(s, clk, st.level, 100)
		if !ok {
			t.Fatalf("step %d: timed out waiting for %s", i, st.level)
		}
		if got != st.want {
			t.Errorf("step %d: waited %dus, want %dus", i, got, st.want)
		}
	}
}

func TestWaitForLevelImmediate(t *testing.T) {
	clk := dhtsim.NewClock()
	s := dhtsim.NewSensor(clk, "GPIO4", dhtsim.Frame(0, 0, 0, 0))
	got, ok := dht.WaitForLevel(s, clk, gpio.High, 0)
	if !ok || got != 0 {
		t.Errorf("WaitForLevel() = %d, %v, want 0, true", got, ok)
	}
}

func TestWaitForLevelTimeout(t *testing.T) {
	clk := dhtsim.NewClock()
	s := dhtsim.NewSensor(clk, "GPIO4", dhtsim.Frame(0, 0, 0, 0))
	s.Absent = true
	startSensor(t, s, clk)

	start := clk.Micros()
	got, ok := dht.WaitForLevel(s, clk, gpio.Low, 40)
	if ok {
		t.Fatal("expected a timeout on a silent line")
	}
	if got <= 40 {
		t.Errorf("gave up after %dus, budget was 40us", got)
	}
	if spent := clk.Micros() - start; spent > 45 {
		t.Errorf("overran the budget: %dus", spent)
	}
}

func TestWaitForLevelWraparound(t *testing.T) {
	clk := dhtsim.NewClockAt(1<<32 - 2010)
	s := dhtsim.NewSensor(clk, "GPIO4", dhtsim.Frame(0, 0, 0, 0))
	s.Absent = true
	startSensor(t, s, clk)

	if got, ok := dht.WaitForLevel(s, clk, gpio.Low, 40); ok || got > 45 {
		t.Errorf("WaitForLevel() across the wrap = %d, %v", got, ok)
	}
}
