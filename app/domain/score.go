// SPDX-FileCopyrightText: Copyright (c) Northern Arizona University High Performance Computing. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package domain

import (
	"math"

	"github.com/nauhpc/doppler/app/types"
)

const secondsPerHour = 3600

// Scorer converts aggregate buckets into normalized efficiency percentages.
// The ideal score is an injected tunable: a site that considers 85% the
// target can configure it so a bucket scoring 85 reports a total of 100.
type Scorer struct {
	idealScore float64
}

// NewScorer creates a scorer. A non-positive idealScore falls back to 100
// (no rescaling).
func NewScorer(idealScore float64) *Scorer {
	if idealScore <= 0 {
		idealScore = 100
	}
	return &Scorer{idealScore: idealScore}
}

// Score derives the per-dimension percentages and the combined total for one
// bucket. Dimensions whose denominator is missing, zero, or negative are
// absent, and the total averages only the dimensions that are defined. A
// dimension that computes to exactly zero is a real score, not absent.
func (s *Scorer) Score(bucket types.AggregateBucket) types.ScoreSet {
	set := types.ScoreSet{
		JobCount: bucket.JobCount,
	}

	set.CPU = ratio(bucket.CPUTimeUsed, bucket.CPUTimeIdeal)
	set.Memory = ratio(bucket.MemoryUsed, bucket.MemoryRequested)
	set.TimeLimit = ratio(bucket.TimeLimitUsed, bucket.TimeLimitRequested)
	set.GPU = ratio(bucket.GPUHoursUsed, bucket.GPUHoursRequested)

	var sum float64
	var n int
	for _, dim := range []*float64{set.CPU, set.Memory, set.TimeLimit, set.GPU} {
		if dim != nil {
			sum += *dim
			n++
		}
	}
	if n > 0 {
		total := round2((sum / float64(n)) / s.idealScore * 100)
		set.Total = &total
	}

	set.CPU = round2p(set.CPU)
	set.Memory = round2p(set.Memory)
	set.TimeLimit = round2p(set.TimeLimit)
	set.GPU = round2p(set.GPU)

	if bucket.CPUTimeUsed.Valid {
		coreHours := round2(bucket.CPUTimeUsed.Value / secondsPerHour)
		set.CoreHours = &coreHours
	}

	return set
}

// ratio returns 100*used/requested, or nil when the ratio is undefined.
// Negative denominators are treated as undefined rather than producing a
// negative percentage.
func ratio(used, requested types.Sum) *float64 {
	if !used.Valid || !requested.Valid || requested.Value <= 0 {
		return nil
	}
	v := used.Value / requested.Value * 100
	return &v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round2p(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := round2(*v)
	return &r
}
