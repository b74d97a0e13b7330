// SPDX-FileCopyrightText: Copyright (c) Northern Arizona University High Performance Computing. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package types

// Sum accumulates a nullable quantity across records. Valid flips to true the
// first time a non-nil value is folded in, so a bucket can tell "no record
// carried this field" apart from "records carried it and it summed to zero".
type Sum struct {
	Value float64 `json:"value"`
	Valid bool    `json:"valid"`
}

// Add folds one nullable field value into the sum. Nil contributes nothing.
func (s *Sum) Add(v *float64) {
	if v == nil {
		return
	}
	s.Value += *v
	s.Valid = true
}

// Combine merges another sum into this one.
func (s *Sum) Combine(o Sum) {
	if !o.Valid {
		return
	}
	s.Value += o.Value
	s.Valid = true
}

// AggregateBucket is the element-wise sum of all job records assigned to one
// grouping key. Because it only ever holds raw numerator/denominator sums,
// folding is commutative and associative: any iteration order over the same
// records produces an identical bucket. Ratios are computed later, by the
// scorer, never here.
type AggregateBucket struct {
	MemoryRequested    Sum   `json:"memory_requested"`
	MemoryUsed         Sum   `json:"memory_used"`
	CPUTimeUsed        Sum   `json:"cpu_time_used"`
	CPUTimeIdeal       Sum   `json:"cpu_time_ideal"`
	TimeLimitRequested Sum   `json:"time_limit_requested"`
	TimeLimitUsed      Sum   `json:"time_limit_used"`
	GPUHoursRequested  Sum   `json:"gpu_hours_requested"`
	GPUHoursUsed       Sum   `json:"gpu_hours_used"`
	JobCount           int64 `json:"job_count"`
	Records            int   `json:"records"`
}

// Fold adds one record's fields into the bucket.
func (b *AggregateBucket) Fold(r JobRecord) {
	b.MemoryRequested.Add(r.MemoryRequested)
	b.MemoryUsed.Add(r.MemoryUsed)
	b.CPUTimeUsed.Add(r.CPUTimeUsed)
	b.CPUTimeIdeal.Add(r.CPUTimeIdeal)
	b.TimeLimitRequested.Add(r.TimeLimitRequested)
	b.TimeLimitUsed.Add(r.TimeLimitUsed)
	b.GPUHoursRequested.Add(r.GPUHoursRequested)
	b.GPUHoursUsed.Add(r.GPUHoursUsed)
	b.JobCount += r.JobCount
	b.Records++
}

// Merge combines another bucket into this one. Folding records one at a time
// and merging buckets of disjoint record sets are equivalent.
func (b *AggregateBucket) Merge(o AggregateBucket) {
	b.MemoryRequested.Combine(o.MemoryRequested)
	b.MemoryUsed.Combine(o.MemoryUsed)
	b.CPUTimeUsed.Combine(o.CPUTimeUsed)
	b.CPUTimeIdeal.Combine(o.CPUTimeIdeal)
	b.TimeLimitRequested.Combine(o.TimeLimitRequested)
	b.TimeLimitUsed.Combine(o.TimeLimitUsed)
	b.GPUHoursRequested.Combine(o.GPUHoursRequested)
	b.GPUHoursUsed.Combine(o.GPUHoursUsed)
	b.JobCount += o.JobCount
	b.Records += o.Records
}
