// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package dht

import (
	"fmt"
	"sync/atomic"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// Edge is one transition seen by an EdgeTap.
type Edge struct {
	Level gpio.Level
	At    time.Duration // since Start
}

// EdgeTap records line transitions from the kernel's edge notifications.
//
// Per edge the watcher only takes a timestamp and does a non blocking send;
// when the buffer is full the edge is counted in Dropped and lost. Edge
// delivery latency on Linux is far above the DHT pulse widths, so the tap is
// a diagnostic aid and the protocol engine does not depend on it.
type EdgeTap struct {
	pin     gpio.PinIn
	poll    time.Duration
	edges   chan Edge
	dropped atomic.Uint64
	stop    chan struct{}
	done    chan struct{}
}

// NewEdgeTap buffers up to size edges. poll bounds how long Stop may take.
func NewEdgeTap(pin gpio.PinIn, size int, poll time.Duration) *EdgeTap {
	if poll <= 0 {
		poll = 10 * time.Millisecond
	}
	return &EdgeTap{
		pin:   pin,
		poll:  poll,
		edges: make(chan Edge, size),
	}
}

// Start switches the pin to input with pull-up and both edges armed, which
// also releases the line, then begins recording.
func (t *EdgeTap) Start() error {
	if err := t.pin.In(gpio.PullUp, gpio.BothEdges); err != nil {
		return fmt.Errorf("edge tap: %s: pin in: %w", t.pin, err)
	}
	t.stop = make(chan struct{})
	t.done = make(chan struct{})
	go t.watch(time.Now())
	return nil
}

func (t *EdgeTap) watch(origin time.Time) {
	defer close(t.done)
	for {
		select {
		case <-t.stop:
			return
		default:
		}
		if !t.pin.WaitForEdge(t.poll) {
			continue
		}
		e := Edge{Level: t.pin.Read(), At: time.Since(origin)}
		select {
		case t.edges <- e:
		default:
			t.dropped.Add(1)
		}
	}
}

// Edges delivers recorded transitions in order.
func (t *EdgeTap) Edges() <-chan Edge {
	return t.edges
}

func (t *EdgeTap) Dropped() uint64 {
	return t.dropped.Load()
}

// Stop ends recording. Buffered edges stay readable.
func (t *EdgeTap) Stop() {
	if t.stop == nil {
		return
	}
	close(t.stop)
	<-t.done
	t.stop = nil
}

// Pulses turns a run of edges into the duration each level was held.
// The level of pulse i is edges[i].Level.
func Pulses(edges []Edge) []time.Duration {
	if len(edges) < 2 {
		return nil
	}
	out := make([]time.Duration, 0, len(edges)-1)
	for i := 1; i < len(edges); i++ {
		out = append(out, edges[i].At-edges[i-1].At)
	}
	return out
}
