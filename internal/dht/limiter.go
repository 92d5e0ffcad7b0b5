// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package dht

import "time"

// MinInterval is the sensor's physical sampling limit.
const MinInterval = 2 * time.Second

// rateLimiter spaces bus transactions on a wrapping millisecond counter.
type rateLimiter struct {
	intervalMs uint32
	lastMs     uint32
}

// newRateLimiter is seeded one interval in the past so the first request
// goes through.
func newRateLimiter(interval time.Duration, nowMs uint32) rateLimiter {
	if interval < MinInterval {
		interval = MinInterval
	}
	ms := uint32(interval / time.Millisecond)
	return rateLimiter{intervalMs: ms, lastMs: nowMs - ms}
}

// allow stamps nowMs as the last attempt when it lets the request through.
func (l *rateLimiter) allow(nowMs uint32) bool {
	if nowMs-l.lastMs < l.intervalMs {
		return false
	}
	l.lastMs = nowMs
	return true
}
