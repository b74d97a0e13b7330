// SPDX-FileCopyrightText: Copyright (c) Northern Arizona University High Performance Computing. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"fmt"
	"time"
)

// JobRecord is a single job-accounting entry: one row of summarized usage for
// a user/account pair on one calendar day. Numeric fields are pointers
// because the accounting source distinguishes "not applicable" (nil) from an
// actual zero; nil fields are skipped when ratios are computed and contribute
// nothing when records are summed.
type JobRecord struct {
	Username string    `json:"username"`
	Account  string    `json:"account"`
	Date     time.Time `json:"date"`

	MemoryRequested    *float64 `json:"memory_requested,omitempty"` // bytes
	MemoryUsed         *float64 `json:"memory_used,omitempty"`      // bytes
	CPUTimeUsed        *float64 `json:"cpu_time_used,omitempty"`    // seconds
	CPUTimeIdeal       *float64 `json:"cpu_time_ideal,omitempty"`   // seconds, the fair-share target
	TimeLimitRequested *float64 `json:"time_limit_requested,omitempty"` // seconds
	TimeLimitUsed      *float64 `json:"time_limit_used,omitempty"`      // seconds
	GPUHoursRequested  *float64 `json:"gpu_hours_requested,omitempty"`
	GPUHoursUsed       *float64 `json:"gpu_hours_used,omitempty"`

	JobCount int64 `json:"job_count"`
}

// Validate checks the structural invariants of a record. Every numeric field
// must be either nil or non-negative; a violation means the source row could
// not be trusted and the whole load should be aborted.
func (r *JobRecord) Validate() error {
	if r.Username == "" {
		return fmt.Errorf("record has no username")
	}
	if r.Date.IsZero() {
		return fmt.Errorf("record for user %q has no date", r.Username)
	}
	if r.JobCount < 0 {
		return fmt.Errorf("record for user %q has negative job count %d", r.Username, r.JobCount)
	}
	fields := map[string]*float64{
		"memory_requested":     r.MemoryRequested,
		"memory_used":          r.MemoryUsed,
		"cpu_time_used":        r.CPUTimeUsed,
		"cpu_time_ideal":       r.CPUTimeIdeal,
		"time_limit_requested": r.TimeLimitRequested,
		"time_limit_used":      r.TimeLimitUsed,
		"gpu_hours_requested":  r.GPUHoursRequested,
		"gpu_hours_used":       r.GPUHoursUsed,
	}
	for name, v := range fields {
		if v != nil && *v < 0 {
			return fmt.Errorf("record for user %q has negative %s %v", r.Username, name, *v)
		}
	}
	return nil
}

// Day truncates a time to its calendar day at midnight UTC. All record dates
// and filter bounds are normalized through this so day-granularity comparison
// is exact.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Float64 returns a pointer to v. Convenience for building records.
func Float64(v float64) *float64 {
	return &v
}
