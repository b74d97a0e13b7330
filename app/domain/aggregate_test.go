// SPDX-FileCopyrightText: Copyright (c) Northern Arizona University High Performance Computing. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package domain_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nauhpc/doppler/app/domain"
	"github.com/nauhpc/doppler/app/types"
)

type stubClock struct {
	now time.Time
}

func (c *stubClock) GetCurrentTime() time.Time {
	return c.now
}

var testToday = time.Date(2025, 3, 15, 9, 30, 0, 0, time.UTC)

func day(offset int) time.Time {
	return types.Day(testToday).AddDate(0, 0, offset)
}

func record(user, account string, date time.Time, mutate func(*types.JobRecord)) types.JobRecord {
	r := types.JobRecord{
		Username: user,
		Account:  account,
		Date:     date,
		JobCount: 1,
	}
	if mutate != nil {
		mutate(&r)
	}
	return r
}

func snapshotOf(records ...types.JobRecord) *domain.Snapshot {
	return &domain.Snapshot{Records: records, LoadedAt: testToday}
}

func TestAggregate_CommutativeFold(t *testing.T) {
	records := []types.JobRecord{
		record("ann", "physics", day(-1), func(r *types.JobRecord) {
			r.CPUTimeUsed = types.Float64(30)
			r.CPUTimeIdeal = types.Float64(40)
			r.MemoryUsed = types.Float64(512)
			r.MemoryRequested = types.Float64(1024)
		}),
		record("ann", "physics", day(-2), func(r *types.JobRecord) {
			r.CPUTimeUsed = types.Float64(70)
			r.CPUTimeIdeal = types.Float64(60)
		}),
		record("bob", "physics", day(-3), func(r *types.JobRecord) {
			r.TimeLimitUsed = types.Float64(100)
			r.TimeLimitRequested = types.Float64(400)
		}),
	}
	clock := &stubClock{now: testToday}
	filter := types.StatsFilter{Since: day(-30)}

	want, err := domain.Aggregate(snapshotOf(records...), filter, clock)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		shuffled := append([]types.JobRecord(nil), records...)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		got, err := domain.Aggregate(snapshotOf(shuffled...), filter, clock)
		require.NoError(t, err)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("bucket differs under permutation (-want +got):\n%s", diff)
		}
	}
}

func TestAggregate_Additivity(t *testing.T) {
	setA := []types.JobRecord{
		record("ann", "physics", day(-1), func(r *types.JobRecord) {
			r.CPUTimeUsed = types.Float64(30)
			r.CPUTimeIdeal = types.Float64(40)
		}),
	}
	setB := []types.JobRecord{
		record("bob", "physics", day(-2), func(r *types.JobRecord) {
			r.CPUTimeUsed = types.Float64(70)
			r.CPUTimeIdeal = types.Float64(60)
			r.GPUHoursUsed = types.Float64(2)
			r.GPUHoursRequested = types.Float64(8)
		}),
	}
	clock := &stubClock{now: testToday}
	filter := types.StatsFilter{Since: day(-30)}

	bucketA, err := domain.Aggregate(snapshotOf(setA...), filter, clock)
	require.NoError(t, err)
	bucketB, err := domain.Aggregate(snapshotOf(setB...), filter, clock)
	require.NoError(t, err)

	combined, err := domain.Aggregate(snapshotOf(append(setA, setB...)...), filter, clock)
	require.NoError(t, err)

	bucketA.Merge(bucketB)
	if diff := cmp.Diff(combined, bucketA); diff != "" {
		t.Fatalf("union aggregate differs from merged parts (-want +got):\n%s", diff)
	}
}

func TestAggregate_Filtering(t *testing.T) {
	snap := snapshotOf(
		record("ann", "physics", day(-1), nil),
		record("ann", "chemistry", day(-1), nil),
		record("bob", "physics", day(-1), nil),
		record("ann", "physics", day(-10), nil),
		// Dated today: outside the implicit [since, today) range.
		record("ann", "physics", day(0), nil),
	)
	clock := &stubClock{now: testToday}

	tests := []struct {
		name        string
		filter      types.StatsFilter
		wantRecords int
	}{
		{"user only", types.StatsFilter{Username: "ann", Since: day(-30)}, 3},
		{"account only", types.StatsFilter{Account: "physics", Since: day(-30)}, 3},
		{"user within account", types.StatsFilter{Username: "ann", Account: "physics", Since: day(-30)}, 2},
		{"since bound is inclusive", types.StatsFilter{Username: "ann", Account: "physics", Since: day(-10)}, 2},
		{"since excludes older", types.StatsFilter{Username: "ann", Account: "physics", Since: day(-9)}, 1},
		{"default since is yesterday", types.StatsFilter{Username: "ann", Account: "physics"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, err := domain.Aggregate(snap, tt.filter, clock)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRecords, bucket.Records)
		})
	}
}

func TestAggregate_NoMatchesIsNoActivity(t *testing.T) {
	snap := snapshotOf(record("ann", "physics", day(-5), nil))
	clock := &stubClock{now: testToday}

	// A lower bound in the future can never match anything.
	_, err := domain.Aggregate(snap, types.StatsFilter{Since: day(1)}, clock)
	assert.ErrorIs(t, err, types.ErrNoActivity)

	_, err = domain.Aggregate(snap, types.StatsFilter{Username: "nobody", Since: day(-30)}, clock)
	assert.ErrorIs(t, err, types.ErrNoActivity)
}

func TestAggregateByDate(t *testing.T) {
	snap := snapshotOf(
		record("ann", "physics", day(-1), func(r *types.JobRecord) {
			r.CPUTimeUsed = types.Float64(10)
		}),
		record("bob", "physics", day(-1), func(r *types.JobRecord) {
			r.CPUTimeUsed = types.Float64(20)
		}),
		record("ann", "physics", day(-3), func(r *types.JobRecord) {
			r.CPUTimeUsed = types.Float64(5)
		}),
	)
	clock := &stubClock{now: testToday}

	buckets, err := domain.AggregateByDate(snap, types.StatsFilter{Since: day(-30)}, clock)
	require.NoError(t, err)

	// Two distinct days, ascending, with the empty day in between omitted.
	require.Len(t, buckets, 2)
	assert.Equal(t, day(-3), buckets[0].Date)
	assert.Equal(t, day(-1), buckets[1].Date)
	assert.Equal(t, 5.0, buckets[0].Bucket.CPUTimeUsed.Value)
	assert.Equal(t, 30.0, buckets[1].Bucket.CPUTimeUsed.Value)
}

func TestAggregateByDate_EmptyIsNotAnError(t *testing.T) {
	snap := snapshotOf(record("ann", "physics", day(-5), nil))
	clock := &stubClock{now: testToday}

	buckets, err := domain.AggregateByDate(snap, types.StatsFilter{Since: day(1)}, clock)
	require.NoError(t, err)
	assert.Empty(t, buckets)
}
