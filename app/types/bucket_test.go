// SPDX-FileCopyrightText: Copyright (c) Northern Arizona University High Performance Computing. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package types_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nauhpc/doppler/app/types"
)

func TestSumAdd(t *testing.T) {
	var s types.Sum
	assert.False(t, s.Valid)

	s.Add(nil)
	assert.False(t, s.Valid, "nil contributes nothing")

	s.Add(types.Float64(0))
	assert.True(t, s.Valid, "an explicit zero is data")
	assert.Equal(t, 0.0, s.Value)

	s.Add(types.Float64(2.5))
	s.Add(types.Float64(1.5))
	assert.Equal(t, 4.0, s.Value)
}

func TestSumCombine(t *testing.T) {
	a := types.Sum{Value: 3, Valid: true}
	a.Combine(types.Sum{})
	assert.Equal(t, types.Sum{Value: 3, Valid: true}, a, "invalid sums are ignored")

	a.Combine(types.Sum{Value: 7, Valid: true})
	assert.Equal(t, types.Sum{Value: 10, Valid: true}, a)

	var empty types.Sum
	empty.Combine(types.Sum{Value: 0, Valid: true})
	assert.True(t, empty.Valid)
}

func TestBucketFold(t *testing.T) {
	var b types.AggregateBucket
	b.Fold(types.JobRecord{
		Username:     "ann",
		Account:      "physics",
		Date:         time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		CPUTimeUsed:  types.Float64(30),
		CPUTimeIdeal: types.Float64(40),
		JobCount:     2,
	})
	b.Fold(types.JobRecord{
		Username:     "ann",
		Account:      "physics",
		Date:         time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
		CPUTimeUsed:  types.Float64(70),
		CPUTimeIdeal: types.Float64(60),
		MemoryUsed:   types.Float64(1024),
		JobCount:     1,
	})

	assert.Equal(t, types.Sum{Value: 100, Valid: true}, b.CPUTimeUsed)
	assert.Equal(t, types.Sum{Value: 100, Valid: true}, b.CPUTimeIdeal)
	assert.Equal(t, types.Sum{Value: 1024, Valid: true}, b.MemoryUsed)
	assert.False(t, b.MemoryRequested.Valid)
	assert.Equal(t, int64(3), b.JobCount)
	assert.Equal(t, 2, b.Records)
}

func TestBucketMergeEquivalentToFold(t *testing.T) {
	records := []types.JobRecord{
		{Username: "ann", CPUTimeUsed: types.Float64(1), JobCount: 1},
		{Username: "bob", CPUTimeUsed: types.Float64(2), GPUHoursUsed: types.Float64(4), JobCount: 1},
		{Username: "carol", TimeLimitUsed: types.Float64(8), JobCount: 3},
	}

	var folded types.AggregateBucket
	for _, r := range records {
		folded.Fold(r)
	}

	var left, right types.AggregateBucket
	left.Fold(records[0])
	right.Fold(records[1])
	right.Fold(records[2])
	left.Merge(right)

	assert.Equal(t, folded, left)
}
