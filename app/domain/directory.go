// SPDX-FileCopyrightText: Copyright (c) Northern Arizona University High Performance Computing. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package domain

import (
	"sort"
	"time"

	"github.com/nauhpc/doppler/app/types"
)

// Directory answers the "who exists" questions over a snapshot: distinct
// users and accounts, optionally restricted to activity since a date, plus
// job counts. It never computes scores.

// Users returns the distinct usernames in the snapshot, sorted. A non-empty
// account restricts the list to that account's members; a non-zero since
// keeps only users with activity on or after that day.
func Users(snap *Snapshot, account string, since time.Time) []string {
	return distinct(snap, since, func(r *types.JobRecord) (string, bool) {
		return r.Username, account == "" || r.Account == account
	})
}

// Accounts returns the distinct account names in the snapshot, sorted. A
// non-empty username restricts the list to accounts that user belongs to.
func Accounts(snap *Snapshot, username string, since time.Time) []string {
	return distinct(snap, since, func(r *types.JobRecord) (string, bool) {
		return r.Account, username == "" || r.Username == username
	})
}

// JobSum totals the jobs matching the filter. Unlike Aggregate, a zero-match
// query is not an error: the answer is simply zero jobs.
func JobSum(snap *Snapshot, filter types.StatsFilter, clock types.TimeProvider) int64 {
	since, today := bounds(filter, clock)
	var total int64
	for i := range snap.Records {
		if filter.Matches(&snap.Records[i], since, today) {
			total += snap.Records[i].JobCount
		}
	}
	return total
}

// DateCount is one day's job total.
type DateCount struct {
	Date time.Time `json:"date"`
	Jobs int64     `json:"jobs"`
}

// JobSumByDate totals jobs per day across the filter's range, in ascending
// date order. Days without jobs are omitted.
func JobSumByDate(snap *Snapshot, filter types.StatsFilter, clock types.TimeProvider) []DateCount {
	since, today := bounds(filter, clock)
	byDay := make(map[time.Time]int64)
	for i := range snap.Records {
		r := &snap.Records[i]
		if filter.Matches(r, since, today) {
			byDay[types.Day(r.Date)] += r.JobCount
		}
	}

	out := make([]DateCount, 0, len(byDay))
	for day, jobs := range byDay {
		out = append(out, DateCount{Date: day, Jobs: jobs})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func distinct(snap *Snapshot, since time.Time, key func(*types.JobRecord) (string, bool)) []string {
	seen := make(map[string]struct{})
	for i := range snap.Records {
		r := &snap.Records[i]
		name, ok := key(r)
		if !ok || name == "" {
			continue
		}
		if !since.IsZero() && types.Day(r.Date).Before(types.Day(since)) {
			continue
		}
		seen[name] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
