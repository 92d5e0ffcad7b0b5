// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package dht

import (
	"testing"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func TestEdgeTapRecords(t *testing.T) {
	pin := &gpiotest.Pin{N: "GPIO4", L: gpio.High, EdgesChan: make(chan gpio.Level, 8)}
	tap := NewEdgeTap(pin, 16, time.Millisecond)
	if err := tap.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	for _, l := range []gpio.Level{gpio.Low, gpio.High, gpio.Low, gpio.High} {
		pin.EdgesChan <- l
	}

	var got []Edge
	timeout := time.After(2 * time.Second)
	for len(got) < 4 {
		select {
		case e := <-tap.Edges():
			got = append(got, e)
		case <-timeout:
			t.Fatalf("received %d edges, want 4", len(got))
		}
	}
	tap.Stop()

	for i := 1; i < len(got); i++ {
		if got[i].At < got[i-1].At {
			t.Errorf("edge %d at %v before edge %d at %v", i, got[i].At, i-1, got[i-1].At)
		}
	}
	if tap.Dropped() != 0 {
		t.Errorf("Dropped() = %d", tap.Dropped())
	}
}

func TestEdgeTapDropsWhenFull(t *testing.T) {
	pin := &gpiotest.Pin{N: "GPIO4", L: gpio.High, EdgesChan: make(chan gpio.Level, 8)}
	tap := NewEdgeTap(pin, 1, time.Millisecond)
	if err := tap.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		pin.EdgesChan <- gpio.Low
	}
	deadline := time.Now().Add(2 * time.Second)
	for tap.Dropped() < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	tap.Stop()
	if got := tap.Dropped(); got != 2 {
		t.Errorf("Dropped() = %d, want 2", got)
	}
	if got := len(tap.Edges()); got != 1 {
		t.Errorf("buffered %d edges, want 1", got)
	}
}

func TestEdgeTapStopIdempotent(t *testing.T) {
	tap := NewEdgeTap(&gpiotest.Pin{N: "GPIO4"}, 1, 0)
	tap.Stop()
}

func TestPulses(t *testing.T) {
	us := time.Microsecond
	edges := []Edge{
		{Level: gpio.Low, At: 0},
		{Level: gpio.High, At: 80 * us},
		{Level: gpio.Low, At: 160 * us},
		{Level: gpio.High, At: 210 * us},
		{Level: gpio.Low, At: 236 * us},
	}
	want := []time.Duration{80 * us, 80 * us, 50 * us, 26 * us}
	got := Pulses(edges)
	if len(got) != len(want) {
		t.Fatalf("Pulses() returned %d pulses, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pulse %d = %v, want %v", i, got[i], want[i])
		}
	}
	if Pulses(edges[:1]) != nil {
		t.Error("a single edge has no pulses")
	}
}
