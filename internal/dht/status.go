// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package dht

import "errors"

// Status is the outcome of the most recent read attempt.
type Status uint8

const (
	Success Status = iota
	// BusBusy: the line was not idle, the pin refused a mode change, or
	// another acquisition (continuous sensing) owns the bus.
	BusBusy
	// NotDetected: no acknowledge pulse after the start signal.
	NotDetected
	// BadStart: the sensor's ~80µs low ready pulse did not end in time.
	BadStart
	// SyncTimeout: the sensor's ~80µs high ready pulse did not end in time.
	SyncTimeout
	// DataTimeout: a bit pulse overran its budget; the frame was dropped.
	DataTimeout
	// BadChecksum: the frame arrived but failed integrity or range checks.
	BadChecksum
	// TooFastReads: strict mode only, the read came before the sampling
	// interval elapsed.
	TooFastReads
)

var statusNames = [...]string{
	Success:      "success",
	BusBusy:      "bus busy",
	NotDetected:  "sensor not detected",
	BadStart:     "bad start pulse",
	SyncTimeout:  "sync timeout",
	DataTimeout:  "data timeout",
	BadChecksum:  "bad checksum",
	TooFastReads: "reads too fast",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown status"
}

var (
	ErrBusBusy      = errors.New("dht: bus busy")
	ErrNotDetected  = errors.New("dht: sensor not detected")
	ErrBadStart     = errors.New("dht: bad start pulse")
	ErrSyncTimeout  = errors.New("dht: sync timeout")
	ErrDataTimeout  = errors.New("dht: data timeout")
	ErrBadChecksum  = errors.New("dht: bad checksum")
	ErrTooFastReads = errors.New("dht: reads too fast")
	ErrUnknown      = errors.New("dht: unknown status")
)

// Err returns the sentinel error for a failed status, or nil for Success.
func (s Status) Err() error {
	switch s {
	case Success:
		return nil
	case BusBusy:
		return ErrBusBusy
	case NotDetected:
		return ErrNotDetected
	case BadStart:
		return ErrBadStart
	case SyncTimeout:
		return ErrSyncTimeout
	case DataTimeout:
		return ErrDataTimeout
	case BadChecksum:
		return ErrBadChecksum
	case TooFastReads:
		return ErrTooFastReads
	}
	return ErrUnknown
}

// StatusOf maps an error returned by Err, possibly wrapped, back to its
// Status. nil maps to Success and foreign errors to ok == false.
func StatusOf(err error) (s Status, ok bool) {
	if err == nil {
		return Success, true
	}
	for st := BusBusy; st <= TooFastReads; st++ {
		if errors.Is(err, st.Err()) {
			return st, true
		}
	}
	return 0, false
}
