// SPDX-FileCopyrightText: Copyright (c) Northern Arizona University High Performance Computing. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package types

// ScoreSet holds the derived efficiency percentages for one aggregate bucket.
// A nil dimension means the underlying ratio was undefined (missing or zero
// denominator) and must not be confused with a score of zero; a dimension
// that legitimately computes to 0.00 stays non-nil.
type ScoreSet struct {
	CPU       *float64 `json:"cpu_score,omitempty"`
	Memory    *float64 `json:"memory_score,omitempty"`
	TimeLimit *float64 `json:"time_score,omitempty"`
	GPU       *float64 `json:"gpu_score,omitempty"`

	// Total is the mean of the defined dimensions, rescaled against the
	// configured ideal score. Nil when no dimension is defined.
	Total *float64 `json:"total_score,omitempty"`

	JobCount int64 `json:"job_count"`

	// CoreHours is the summed CPU time expressed in hours, for display
	// alongside the scores. Nil when no CPU time was recorded.
	CoreHours *float64 `json:"core_hours,omitempty"`
}

// RankingTotal is the total score used for ordering entities. Absent totals
// rank below every defined total, including a legitimate 0.00; the sentinel is
// never used arithmetically.
func (s ScoreSet) RankingTotal() float64 {
	if s.Total == nil {
		return -1
	}
	return *s.Total
}
