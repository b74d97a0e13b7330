// SPDX-FileCopyrightText: Copyright (c) Northern Arizona University High Performance Computing. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"fmt"
	"strings"
	"time"
)

// Grouping selects how the aggregator partitions matching records.
type Grouping int

const (
	// GroupNone folds every matching record into a single bucket.
	GroupNone Grouping = iota
	// GroupByDate produces one bucket per distinct calendar day.
	GroupByDate
)

func (g Grouping) String() string {
	switch g {
	case GroupNone:
		return "none"
	case GroupByDate:
		return "byDate"
	default:
		return fmt.Sprintf("Grouping(%d)", int(g))
	}
}

// StatsFilter narrows a query to a user, an account, or a user-within-account
// combination, bounded below by Since. Empty strings mean "any"; a zero Since
// defaults to yesterday at aggregation time.
type StatsFilter struct {
	Username string
	Account  string
	Since    time.Time
}

// Matches reports whether a record passes the username/account predicates and
// falls inside [since, today). Both bounds are compared at day granularity.
func (f StatsFilter) Matches(r *JobRecord, since, today time.Time) bool {
	if f.Username != "" && r.Username != f.Username {
		return false
	}
	if f.Account != "" && r.Account != f.Account {
		return false
	}
	day := Day(r.Date)
	return !day.Before(since) && day.Before(today)
}

// Timeframe is one of the coarse user-facing date ranges. The day counts are
// fixed by convention, not calendar-accurate month or quarter boundaries.
type Timeframe int

const (
	TimeframeWeek    Timeframe = 7
	TimeframeMonth   Timeframe = 31
	TimeframeQuarter Timeframe = 100
)

// ParseTimeframe accepts the long names used by the API plus the single-letter
// selectors the original front end used (W, M, Q). Empty input defaults to a
// week.
func ParseTimeframe(s string) (Timeframe, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "w", "week":
		return TimeframeWeek, nil
	case "m", "month":
		return TimeframeMonth, nil
	case "q", "quarter":
		return TimeframeQuarter, nil
	default:
		return 0, fmt.Errorf("unknown timeframe %q", s)
	}
}

// Days returns the length of the timeframe in days.
func (t Timeframe) Days() int {
	return int(t)
}

// Since returns the inclusive lower bound of the timeframe relative to now.
func (t Timeframe) Since(now time.Time) time.Time {
	return Day(now).AddDate(0, 0, -t.Days())
}

func (t Timeframe) String() string {
	switch t {
	case TimeframeWeek:
		return "week"
	case TimeframeMonth:
		return "month"
	case TimeframeQuarter:
		return "quarter"
	default:
		return fmt.Sprintf("Timeframe(%d)", int(t))
	}
}
