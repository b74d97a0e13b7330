// SPDX-FileCopyrightText: Copyright (c) Northern Arizona University High Performance Computing. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package domain

import (
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nauhpc/doppler/app/types"
)

var aggregations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "aggregations_total",
		Help: "Total number of aggregation folds, by grouping mode",
	},
	[]string{"grouping"},
)

// DateBucket pairs one calendar day with its aggregate.
type DateBucket struct {
	Date   time.Time
	Bucket types.AggregateBucket
}

// Aggregate folds every record matching the filter into a single bucket. The
// fold is plain field-wise addition, so the result is independent of record
// order. Returns ErrNoActivity when nothing matched: callers must distinguish
// "no data" from "zero usage".
func Aggregate(snap *Snapshot, filter types.StatsFilter, clock types.TimeProvider) (types.AggregateBucket, error) {
	since, today := bounds(filter, clock)
	aggregations.WithLabelValues(types.GroupNone.String()).Inc()

	var bucket types.AggregateBucket
	for i := range snap.Records {
		if filter.Matches(&snap.Records[i], since, today) {
			bucket.Fold(snap.Records[i])
		}
	}
	if bucket.Records == 0 {
		return types.AggregateBucket{}, types.ErrNoActivity
	}
	return bucket, nil
}

// AggregateByDate folds matching records into one bucket per distinct day,
// returned in ascending date order. Days with no matching records are omitted
// rather than zero-filled; chart zero-filling belongs to the presentation
// layer. An empty result is not an error here.
func AggregateByDate(snap *Snapshot, filter types.StatsFilter, clock types.TimeProvider) ([]DateBucket, error) {
	since, today := bounds(filter, clock)
	aggregations.WithLabelValues(types.GroupByDate.String()).Inc()

	byDay := make(map[time.Time]*types.AggregateBucket)
	for i := range snap.Records {
		r := &snap.Records[i]
		if !filter.Matches(r, since, today) {
			continue
		}
		day := types.Day(r.Date)
		bucket, ok := byDay[day]
		if !ok {
			bucket = &types.AggregateBucket{}
			byDay[day] = bucket
		}
		bucket.Fold(*r)
	}

	out := make([]DateBucket, 0, len(byDay))
	for day, bucket := range byDay {
		out = append(out, DateBucket{Date: day, Bucket: *bucket})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// bounds resolves the filter's date range: [since, today), with since
// defaulting to yesterday.
func bounds(filter types.StatsFilter, clock types.TimeProvider) (since, today time.Time) {
	today = types.Day(clock.GetCurrentTime())
	since = types.Day(filter.Since)
	if filter.Since.IsZero() {
		since = today.AddDate(0, 0, -1)
	}
	return since, today
}
