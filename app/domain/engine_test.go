// SPDX-FileCopyrightText: Copyright (c) Northern Arizona University High Performance Computing. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package domain_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nauhpc/doppler/app/domain"
	"github.com/nauhpc/doppler/app/types"
)

// newTestEngine loads one snapshot of the given records and returns an engine
// over it, with the clock pinned to testToday.
func newTestEngine(t *testing.T, records ...types.JobRecord) *domain.Engine {
	t.Helper()
	clock := &stubClock{now: testToday}
	store := &fakeStore{results: []fetchResult{{records: records}}}
	cache := domain.NewSnapshotCache(store, clock)
	require.NoError(t, cache.Load(context.Background()))
	return domain.NewEngine(cache, clock, 100)
}

func efficientJob(user, account string, date time.Time, pct float64) types.JobRecord {
	return record(user, account, date, func(r *types.JobRecord) {
		r.CPUTimeUsed = types.Float64(pct)
		r.CPUTimeIdeal = types.Float64(100)
	})
}

func TestEngine_Score(t *testing.T) {
	engine := newTestEngine(t,
		efficientJob("ann", "physics", day(-1), 80),
		efficientJob("ann", "physics", day(-2), 60),
	)

	set, err := engine.Score(types.StatsFilter{Username: "ann", Since: day(-30)})
	require.NoError(t, err)
	require.NotNil(t, set.CPU)
	assert.Equal(t, 70.0, *set.CPU)
	assert.Equal(t, int64(2), set.JobCount)
}

func TestEngine_ScoreNotReady(t *testing.T) {
	clock := &stubClock{now: testToday}
	cache := domain.NewSnapshotCache(&fakeStore{}, clock)
	engine := domain.NewEngine(cache, clock, 100)

	_, err := engine.Score(types.StatsFilter{})
	assert.ErrorIs(t, err, types.ErrNotReady)
}

func TestEngine_TopUsers(t *testing.T) {
	engine := newTestEngine(t,
		efficientJob("ann", "physics", day(-1), 90),
		efficientJob("bob", "physics", day(-1), 70),
		efficientJob("carol", "chemistry", day(-1), 95),
		// Outside the week window: must not appear at all.
		efficientJob("dave", "physics", day(-20), 99),
	)

	ranked, err := engine.TopUsers(types.TimeframeWeek, 2)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "carol", ranked[0].Name)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, "ann", ranked[1].Name)
}

func TestEngine_TopAccounts(t *testing.T) {
	engine := newTestEngine(t,
		efficientJob("ann", "physics", day(-1), 90),
		efficientJob("bob", "chemistry", day(-1), 70),
	)

	ranked, err := engine.TopAccounts(types.TimeframeWeek, 10)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "physics", ranked[0].Name)
	assert.Equal(t, "chemistry", ranked[1].Name)
}

func TestEngine_AccountBreakdown(t *testing.T) {
	engine := newTestEngine(t,
		efficientJob("ann", "physics", day(-1), 80),
		efficientJob("bob", "physics", day(-1), 60),
	)

	total, members, err := engine.AccountBreakdown("physics", types.TimeframeWeek)
	require.NoError(t, err)
	require.NotNil(t, total.CPU)
	assert.Equal(t, 70.0, *total.CPU)

	require.Len(t, members, 2)
	assert.Equal(t, "ann", members[0].Name)
	assert.Equal(t, 80.0, *members[0].Scores.CPU)
	assert.Equal(t, "bob", members[1].Name)
	assert.Equal(t, 60.0, *members[1].Scores.CPU)
}

func TestEngine_AccountBreakdownUnknown(t *testing.T) {
	engine := newTestEngine(t, efficientJob("ann", "physics", day(-1), 80))

	_, _, err := engine.AccountBreakdown("astronomy", types.TimeframeWeek)
	assert.ErrorIs(t, err, types.ErrUnknownEntity)
}

func TestEngine_AccountBreakdownIdle(t *testing.T) {
	// The account exists historically but had no jobs in the window.
	engine := newTestEngine(t, efficientJob("ann", "physics", day(-60), 80))

	_, _, err := engine.AccountBreakdown("physics", types.TimeframeWeek)
	assert.ErrorIs(t, err, types.ErrNoActivity)
}

func TestEngine_UserBreakdown(t *testing.T) {
	engine := newTestEngine(t,
		efficientJob("ann", "physics", day(-1), 80),
		efficientJob("ann", "chemistry", day(-1), 40),
		efficientJob("bob", "physics", day(-1), 99),
	)

	total, members, err := engine.UserBreakdown("ann", types.TimeframeWeek)
	require.NoError(t, err)
	assert.Equal(t, 60.0, *total.CPU)

	require.Len(t, members, 2)
	assert.Equal(t, "chemistry", members[0].Name)
	assert.Equal(t, 40.0, *members[0].Scores.CPU)
	assert.Equal(t, "physics", members[1].Name)
	assert.Equal(t, 80.0, *members[1].Scores.CPU)
}

func TestEngine_UserTimeseries(t *testing.T) {
	engine := newTestEngine(t,
		efficientJob("ann", "physics", day(-1), 80),
		efficientJob("ann", "physics", day(-3), 50),
	)

	series, err := engine.UserTimeseries("ann", "", types.TimeframeWeek)
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, day(-3), series[0].Date)
	assert.Equal(t, 50.0, *series[0].Scores.CPU)
	assert.Equal(t, day(-1), series[1].Date)
	assert.Equal(t, 80.0, *series[1].Scores.CPU)
}

func TestEngine_Cluster(t *testing.T) {
	engine := newTestEngine(t,
		efficientJob("ann", "physics", day(-1), 80),
		efficientJob("bob", "chemistry", day(-60), 50),
	)

	summary, err := engine.Cluster(types.TimeframeWeek)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ActiveUsers)
	assert.Equal(t, 2, summary.TotalUsers)
	assert.Equal(t, 1, summary.ActiveAccounts)
	assert.Equal(t, 2, summary.TotalAccounts)
	assert.Equal(t, int64(1), summary.Jobs)
	require.NotNil(t, summary.Scores.CPU)
	assert.Equal(t, 80.0, *summary.Scores.CPU)
}

func TestEngine_ClusterIdleWindow(t *testing.T) {
	engine := newTestEngine(t, efficientJob("ann", "physics", day(-60), 80))

	summary, err := engine.Cluster(types.TimeframeWeek)
	require.NoError(t, err)
	assert.Zero(t, summary.ActiveUsers)
	assert.Equal(t, 1, summary.TotalUsers)
	assert.Nil(t, summary.Scores.Total)
}

func TestEngine_Search(t *testing.T) {
	engine := newTestEngine(t,
		efficientJob("annika", "physics", day(-1), 80),
		efficientJob("bob", "chemistry", day(-1), 50),
	)

	result, err := engine.Search("anika")
	require.NoError(t, err)
	assert.Equal(t, domain.SearchResult{Kind: "user", Name: "annika"}, result)

	result, err = engine.Search("chem")
	require.NoError(t, err)
	assert.Equal(t, domain.SearchResult{Kind: "account", Name: "chemistry"}, result)
}
