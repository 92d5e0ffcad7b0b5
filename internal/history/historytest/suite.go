// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package historytest holds the behaviour every history.Repository must
// show, shared by the implementation tests.
package historytest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/relabs-tech/climate_node/internal/climate"
	"github.com/relabs-tech/climate_node/internal/dht"
	"github.com/relabs-tech/climate_node/internal/history"
)

// Sample builds a successful sample captured at ts.
func Sample(celsius, humidity float64, ts time.Time) climate.Sample {
	return climate.FromReading("test", dht.Reading{
		TemperatureC: celsius,
		Humidity:     humidity,
		CapturedAt:   ts,
		Status:       dht.Success,
	})
}

// Run exercises a fresh repository returned by newRepo for each subtest.
func Run(t *testing.T, newRepo func(t *testing.T) history.Repository) {
	now := time.Now().UTC().Truncate(time.Second)

	t.Run("LatestEmpty", func(t *testing.T) {
		_, err := newRepo(t).Latest(context.Background())
		if !errors.Is(err, history.ErrReadingNotFound) {
			t.Errorf("expected ErrReadingNotFound, got %v", err)
		}
	})

	t.Run("SaveAndLatest", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		// saved out of order on purpose
		for _, s := range []climate.Sample{
			Sample(20, 40, now.Add(-time.Minute)),
			Sample(22, 45, now),
			Sample(21, 42, now.Add(-30*time.Second)),
		} {
			if err := repo.Save(ctx, s); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
		}

		got, err := repo.Latest(ctx)
		if err != nil {
			t.Fatalf("Latest failed: %v", err)
		}
		if got.TempC != 22 || got.Humidity != 45 || !got.CapturedAt.Equal(now) {
			t.Errorf("Latest() = %+v", got)
		}
		if got.Source != "test" || got.Status != "success" {
			t.Errorf("metadata lost: %+v", got)
		}
		if got.DewPointC == nil {
			t.Error("expected dew point on loaded sample")
		}
	})

	t.Run("Range", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		before := Sample(18, 40, now.Add(-2*time.Hour))
		start := Sample(19, 41, now.Add(-90*time.Minute))
		within := Sample(20, 42, now.Add(-time.Hour))
		end := Sample(21, 43, now)
		for _, s := range []climate.Sample{end, within, before, start} {
			if err := repo.Save(ctx, s); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
		}

		// [now-90m, now): start inclusive, end exclusive
		got, err := repo.Range(ctx, now.Add(-90*time.Minute), now)
		if err != nil {
			t.Fatalf("Range failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("Range() returned %d samples, want 2", len(got))
		}
		if got[0].TempC != 19 || got[1].TempC != 20 {
			t.Errorf("Range() = %v, %v; want oldest first", got[0].TempC, got[1].TempC)
		}

		got, err = repo.Range(ctx, now.Add(time.Hour), now.Add(2*time.Hour))
		if err != nil {
			t.Fatalf("Range failed: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("expected an empty range, got %d samples", len(got))
		}
	})

	t.Run("DeleteOlderThan", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for i := 0; i < 5; i++ {
			if err := repo.Save(ctx, Sample(20, 50, now.Add(-time.Duration(i)*time.Hour))); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
		}

		n, err := repo.DeleteOlderThan(ctx, now.Add(-150*time.Minute))
		if err != nil {
			t.Fatalf("DeleteOlderThan failed: %v", err)
		}
		if n != 2 {
			t.Errorf("deleted %d samples, want 2", n)
		}
		left, err := repo.Range(ctx, now.Add(-24*time.Hour), now.Add(time.Second))
		if err != nil {
			t.Fatalf("Range failed: %v", err)
		}
		if len(left) != 3 {
			t.Errorf("%d samples left, want 3", len(left))
		}
	})
}
