// SPDX-FileCopyrightText: Copyright (c) Northern Arizona University High Performance Computing. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package domain

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"github.com/nauhpc/doppler/app/instr"
	"github.com/nauhpc/doppler/app/types"
)

var (
	snapshotLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapshot_loads_total",
			Help: "Total number of snapshot load attempts",
		},
		[]string{"result"},
	)
	snapshotRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "snapshot_records",
			Help: "Number of job records in the active snapshot",
		},
	)
)

// Snapshot is the full in-memory copy of the accounting records as of one
// refresh. It is published read-only; queries share it without locking.
type Snapshot struct {
	Records  []types.JobRecord
	LoadedAt time.Time
}

// SnapshotCache owns the current data view. Load replaces the snapshot in a
// single pointer swap, so concurrent readers always observe either the old or
// the new record set in full, never a mix. A failed load leaves the previous
// snapshot serving.
type SnapshotCache struct {
	store  types.RecordStore
	clock  types.TimeProvider
	active atomic.Pointer[Snapshot]

	// loadMu serializes loads so overlapping refresh triggers cannot
	// publish out of order. Readers never take it.
	loadMu sync.Mutex
}

// NewSnapshotCache creates an empty cache. Current returns ErrNotReady until
// the first successful Load.
func NewSnapshotCache(store types.RecordStore, clock types.TimeProvider) *SnapshotCache {
	return &SnapshotCache{
		store: store,
		clock: clock,
	}
}

// Load fetches the complete record set and atomically replaces the active
// snapshot. On any fetch or parse error the active snapshot is untouched and
// the error is returned to the caller.
func (c *SnapshotCache) Load(ctx context.Context) error {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	var records []types.JobRecord
	err := instr.RunSpan(ctx, "snapshot_load", func(ctx context.Context, _ *instr.Span) error {
		var err error
		records, err = c.store.FetchAllRecords(ctx)
		return err
	})
	if err != nil {
		snapshotLoads.WithLabelValues("failure").Inc()
		return err
	}

	snap := &Snapshot{
		Records:  records,
		LoadedAt: c.clock.GetCurrentTime(),
	}
	c.active.Store(snap)

	snapshotLoads.WithLabelValues("success").Inc()
	snapshotRecords.Set(float64(len(records)))
	return nil
}

// Current returns the active snapshot, or ErrNotReady when no load has ever
// succeeded.
func (c *SnapshotCache) Current() (*Snapshot, error) {
	snap := c.active.Load()
	if snap == nil {
		return nil, types.ErrNotReady
	}
	return snap, nil
}

// RefreshPeriodically reloads the snapshot on a fixed interval until the
// context is canceled. Failures are logged and counted; the previous snapshot
// keeps serving.
func (c *SnapshotCache) RefreshPeriodically(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Load(ctx); err != nil {
				log.Ctx(ctx).Err(err).Msg("snapshot refresh failed, keeping previous snapshot")
			}
		case <-ctx.Done():
			return
		}
	}
}
