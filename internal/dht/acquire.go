// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package dht

import (
	"runtime"
	"runtime/debug"

	"periph.io/x/conn/v3/gpio"
)

// Budgets in microseconds. The sensor pulses are nominally 80µs (ready),
// 50µs (bit start), 26–28µs (zero) and 70µs (one).
const (
	releaseHighUs   = 30
	ackBudgetUs     = 40
	syncBudgetUs    = 100
	bitLowBudgetUs  = 75
	bitHighBudgetUs = 50

	// BitSampleUs is the delay between the rising edge of a data pulse and
	// the sample that decides its value. A pulse still high at that point
	// is a one; a pulse of exactly BitSampleUs has already fallen and is a
	// zero.
	BitSampleUs = 40
)

// acquire runs one transaction and fills f on Success. The pin is left
// driven high whatever the outcome.
func acquire(pin gpio.PinIO, clk Clock, m Model, f *RawFrame) Status {
	if pin.Read() != gpio.High {
		return BusBusy
	}
	defer pin.Out(gpio.High)

	// keep the collector and the scheduler out of the transaction
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	gcPercent := debug.SetGCPercent(-1)
	defer debug.SetGCPercent(gcPercent)

	if err := pin.Out(gpio.Low); err != nil {
		return BusBusy
	}
	clk.Sleep(m.StartHold())

	if err := pin.Out(gpio.High); err != nil {
		return BusBusy
	}
	clk.DelayMicros(releaseHighUs)
	if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return BusBusy
	}
	return capture(pin, clk, f)
}

// capture follows the sensor's answer: ack, two ready pulses, 40 bits.
func capture(pin gpio.PinIn, clk Clock, f *RawFrame) Status {
	if _, ok := WaitForLevel(pin, clk, gpio.Low, ackBudgetUs); !ok {
		return NotDetected
	}
	if _, ok := WaitForLevel(pin, clk, gpio.High, syncBudgetUs); !ok {
		return BadStart
	}
	if _, ok := WaitForLevel(pin, clk, gpio.Low, syncBudgetUs); !ok {
		return SyncTimeout
	}

	for i := 0; i < frameBits; i++ {
		if _, ok := WaitForLevel(pin, clk, gpio.High, bitLowBudgetUs); !ok {
			return DataTimeout
		}
		clk.DelayMicros(BitSampleUs)

		b := &f[i/8]
		*b <<= 1
		if pin.Read() == gpio.High {
			*b |= 1
			if _, ok := WaitForLevel(pin, clk, gpio.Low, bitHighBudgetUs); !ok {
				return DataTimeout
			}
		}
	}
	return Success
}
