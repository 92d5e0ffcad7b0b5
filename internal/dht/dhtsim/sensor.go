// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package dhtsim

import (
	"sort"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

// Phase names a point of the sensor's answer where it can stall.
type Phase int

const (
	NoStall Phase = iota
	// StallAck: the sensor never pulls the line low.
	StallAck
	// StallSyncLow: the ready low pulse never ends.
	StallSyncLow
	// StallSyncHigh: the ready high pulse never ends.
	StallSyncHigh
	// StallBitLow: the start of bit StallBit never ends.
	StallBitLow
	// StallBitHigh: the data pulse of bit StallBit never ends.
	StallBitHigh
)

// Nominal waveform in microseconds.
const (
	ResponseDelay = 35
	ReadyLow      = 80
	ReadyHigh     = 80
	BitLow        = 50
	ZeroHigh      = 26
	OneHigh       = 70
)

type transition struct {
	at    uint64
	level gpio.Level
}

// Sensor is a gpio.PinIO with a DHT sensor on the other end.
//
// The sensor answers when the host releases the line after holding it low
// for at least MinHold. Its answer is replayed against the shared Clock.
type Sensor struct {
	gpiotest.Pin

	clock *Clock

	// Frame is transmitted as is; set a wrong fifth byte to test checksums.
	Frame [5]byte
	// MinHold is the shortest start signal the sensor reacts to.
	MinHold time.Duration
	// Absent makes the line float high forever.
	Absent bool
	// HeldLow simulates another driver keeping the line low.
	HeldLow bool
	Stall   Phase
	// StallBit selects the bit for StallBitLow and StallBitHigh.
	StallBit int
	// HighWidths overrides the data pulse width of individual bits.
	HighWidths map[int]uint32

	// Requests counts start signals seen on the line.
	Requests int

	input    bool
	lowSince uint64
	edges    []transition
}

// NewSensor returns a sensor on a pin named name sending frame.
func NewSensor(clock *Clock, name string, frame [5]byte) *Sensor {
	s := &Sensor{
		clock:   clock,
		Frame:   frame,
		MinHold: time.Millisecond,
	}
	s.N = name
	s.L = gpio.High
	return s
}

// Frame builds a frame with a correct checksum.
func Frame(b0, b1, b2, b3 byte) [5]byte {
	return [5]byte{b0, b1, b2, b3, b0 + b1 + b2 + b3}
}

// Out implements gpio.PinOut. A low to high transition lasting at least
// MinHold is a start signal.
func (s *Sensor) Out(l gpio.Level) error {
	now := s.clock.Elapsed()
	wasLow := !s.input && s.L == gpio.Low
	s.input = false
	s.edges = nil
	if l == gpio.Low {
		if !wasLow {
			s.lowSince = now
		}
		s.L = gpio.Low
		return nil
	}
	s.L = gpio.High
	if wasLow {
		s.Requests++
		if time.Duration(now-s.lowSince)*time.Microsecond >= s.MinHold && !s.Absent {
			s.edges = s.answer(now)
		}
	}
	return nil
}

// In implements gpio.PinIn. The line is handed over to the sensor.
func (s *Sensor) In(pull gpio.Pull, edge gpio.Edge) error {
	s.P = pull
	s.input = true
	return nil
}

// Read implements gpio.PinIn.
func (s *Sensor) Read() gpio.Level {
	if s.HeldLow {
		return gpio.Low
	}
	if !s.input {
		return s.L
	}
	return s.levelAt(s.clock.Elapsed())
}

func (s *Sensor) levelAt(t uint64) gpio.Level {
	i := sort.Search(len(s.edges), func(i int) bool { return s.edges[i].at > t })
	if i == 0 {
		return gpio.High
	}
	return s.edges[i-1].level
}

// answer lays out the waveform starting at the host's release.
func (s *Sensor) answer(release uint64) []transition {
	var out []transition
	t := release + ResponseDelay
	add := func(l gpio.Level, width uint64) {
		out = append(out, transition{at: t, level: l})
		t += width
	}

	if s.Stall == StallAck {
		return nil
	}
	add(gpio.Low, ReadyLow)
	if s.Stall == StallSyncLow {
		return out
	}
	add(gpio.High, ReadyHigh)
	if s.Stall == StallSyncHigh {
		return out
	}
	for i := 0; i < 40; i++ {
		add(gpio.Low, BitLow)
		if s.Stall == StallBitLow && s.StallBit == i {
			return out
		}
		width := uint64(ZeroHigh)
		if s.Frame[i/8]&(0x80>>(i%8)) != 0 {
			width = OneHigh
		}
		if w, ok := s.HighWidths[i]; ok {
			width = uint64(w)
		}
		add(gpio.High, width)
		if s.Stall == StallBitHigh && s.StallBit == i {
			return out
		}
	}
	add(gpio.Low, BitLow)
	add(gpio.High, 0)
	return out
}
