// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package history stores published climate samples so recent values can be
// served after a restart and charted over time.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/relabs-tech/climate_node/internal/climate"
)

// ErrReadingNotFound indicates the repository holds no matching sample.
var ErrReadingNotFound = errors.New("reading not found")

// Repository defines operations for storing and retrieving samples.
type Repository interface {
	// Save persists a sample, keyed by its CapturedAt time.
	Save(ctx context.Context, s climate.Sample) error

	// Latest returns the most recent sample or ErrReadingNotFound.
	Latest(ctx context.Context) (climate.Sample, error)

	// Range returns samples captured in [start, end), oldest first.
	Range(ctx context.Context, start, end time.Time) ([]climate.Sample, error)

	// DeleteOlderThan removes samples captured before cutoff and reports
	// how many were removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
