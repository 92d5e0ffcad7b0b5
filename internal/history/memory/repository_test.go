// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package memory

import (
	"context"
	"testing"
	"time"

	"github.com/relabs-tech/climate_node/internal/history"
	"github.com/relabs-tech/climate_node/internal/history/historytest"
)

func TestRepository(t *testing.T) {
	historytest.Run(t, func(t *testing.T) history.Repository {
		return NewRepository()
	})
}

func TestRangeReturnsCopy(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	now := time.Now()
	_ = repo.Save(ctx, historytest.Sample(20, 50, now))

	got, _ := repo.Range(ctx, now.Add(-time.Second), now.Add(time.Second))
	got[0].TempC = 99

	latest, _ := repo.Latest(ctx)
	if latest.TempC != 20 {
		t.Errorf("stored sample modified through Range result: %v", latest.TempC)
	}
}
