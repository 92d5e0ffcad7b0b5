// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package dht

// RawFrame is one 40 bit transmission:
// humidity high, humidity low, temperature high, temperature low, checksum.
type RawFrame [5]byte

const frameBits = len(RawFrame{}) * 8

// Checksum is the low byte of the sum of the four data bytes.
func (f RawFrame) Checksum() byte {
	return f[0] + f[1] + f[2] + f[3]
}

// Valid reports whether the fifth byte matches the checksum.
func (f RawFrame) Valid() bool {
	return f[4] == f.Checksum()
}
