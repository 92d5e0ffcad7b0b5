// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package dht

import "periph.io/x/conn/v3/gpio"

// WaitForLevel polls pin every microsecond until it reads level.
//
// It returns the microseconds spent waiting and true on success, or false
// once more than budgetUs microseconds went by. It does not allocate and
// never hands the thread back to the scheduler.
func WaitForLevel(pin gpio.PinIn, clk Clock, level gpio.Level, budgetUs uint32) (uint32, bool) {
	start := clk.Micros()
	for {
		elapsed := clk.Micros() - start
		if pin.Read() == level {
			return elapsed, true
		}
		if elapsed > budgetUs {
			return elapsed, false
		}
		clk.DelayMicros(1)
	}
}
