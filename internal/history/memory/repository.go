// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/relabs-tech/climate_node/internal/climate"
	"github.com/relabs-tech/climate_node/internal/history"
)

// Repository implements history.Repository in memory. History is lost on
// restart.
type Repository struct {
	mu      sync.RWMutex
	samples []climate.Sample // sorted by CapturedAt
}

var _ history.Repository = (*Repository)(nil)

func NewRepository() *Repository {
	return &Repository{}
}

// Save stores a sample in memory.
func (r *Repository) Save(ctx context.Context, s climate.Sample) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// keep samples ordered by capture time
	i := sort.Search(len(r.samples), func(i int) bool {
		return r.samples[i].CapturedAt.After(s.CapturedAt)
	})
	r.samples = append(r.samples, climate.Sample{})
	copy(r.samples[i+1:], r.samples[i:])
	r.samples[i] = s
	return nil
}

func (r *Repository) Latest(ctx context.Context) (climate.Sample, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.samples) == 0 {
		return climate.Sample{}, history.ErrReadingNotFound
	}
	return r.samples[len(r.samples)-1], nil
}

func (r *Repository) Range(ctx context.Context, start, end time.Time) ([]climate.Sample, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lo := sort.Search(len(r.samples), func(i int) bool {
		return !r.samples[i].CapturedAt.Before(start)
	})
	hi := sort.Search(len(r.samples), func(i int) bool {
		return !r.samples[i].CapturedAt.Before(end)
	})
	if lo >= hi {
		return nil, nil
	}
	out := make([]climate.Sample, hi-lo)
	copy(out, r.samples[lo:hi])
	return out, nil
}

func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := sort.Search(len(r.samples), func(i int) bool {
		return !r.samples[i].CapturedAt.Before(cutoff)
	})
	r.samples = append(r.samples[:0], r.samples[n:]...)
	return int64(n), nil
}
