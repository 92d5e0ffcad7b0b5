// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package dhtsim simulates a DHT sensor on a GPIO line in virtual time so
// the protocol engine can be exercised without hardware.
package dhtsim

import (
	"sync"
	"time"
)

// Clock is a virtual microsecond clock. Time only moves when DelayMicros,
// Sleep or Advance are called.
type Clock struct {
	mu   sync.Mutex
	us   uint64
	base time.Time
}

// NewClock starts at zero.
func NewClock() *Clock {
	return NewClockAt(0)
}

// NewClockAt starts at us microseconds, handy to test counter wraparound.
func NewClockAt(us uint64) *Clock {
	return &Clock{us: us, base: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *Clock) Micros() uint32 {
	return uint32(c.Elapsed())
}

func (c *Clock) Millis() uint32 {
	return uint32(c.Elapsed() / 1000)
}

func (c *Clock) DelayMicros(us uint32) {
	c.mu.Lock()
	c.us += uint64(us)
	c.mu.Unlock()
}

func (c *Clock) Sleep(d time.Duration) {
	c.Advance(d)
}

// Advance moves time forward by d, rounded down to the microsecond.
func (c *Clock) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	c.us += uint64(d / time.Microsecond)
	c.mu.Unlock()
}

func (c *Clock) Now() time.Time {
	return c.base.Add(time.Duration(c.Elapsed()) * time.Microsecond)
}

// Elapsed is the unwrapped microsecond count.
func (c *Clock) Elapsed() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.us
}
