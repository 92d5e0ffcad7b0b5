// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package dht

import "time"

// Clock is the time source of the protocol engine.
//
// Micros and Millis are free running counters that wrap; callers compare
// them by subtraction only.
type Clock interface {
	Micros() uint32
	Millis() uint32
	// DelayMicros spins for us microseconds without yielding.
	DelayMicros(us uint32)
	// Sleep may yield to the scheduler. It is only used outside the
	// timing critical section.
	Sleep(d time.Duration)
	Now() time.Time
}

type hostClock struct {
	origin time.Time
}

// HostClock returns a Clock backed by the monotonic system clock.
func HostClock() Clock {
	return &hostClock{origin: time.Now()}
}

func (c *hostClock) Micros() uint32 {
	return uint32(time.Since(c.origin) / time.Microsecond)
}

func (c *hostClock) Millis() uint32 {
	return uint32(time.Since(c.origin) / time.Millisecond)
}

func (c *hostClock) DelayMicros(us uint32) {
	deadline := time.Now().Add(time.Duration(us) * time.Microsecond)
	for time.Now().Before(deadline) {
	}
}

func (c *hostClock) Sleep(d time.Duration) {
	time.Sleep(d)
}

func (c *hostClock) Now() time.Time {
	return time.Now()
}
