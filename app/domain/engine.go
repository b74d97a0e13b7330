// SPDX-FileCopyrightText: Copyright (c) Northern Arizona University High Performance Computing. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package domain implements the aggregation-and-scoring engine: snapshot
// cache, aggregator, scorer and ranker over raw job-accounting records.
package domain

import (
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nauhpc/doppler/app/types"
)

const defaultScoreWorkers = 8

// Engine ties the snapshot cache, aggregator, scorer and ranker together
// behind the query surface the presentation layer consumes. All methods are
// pure reads over the current snapshot and safe for concurrent use.
type Engine struct {
	cache  *SnapshotCache
	scorer *Scorer
	clock  types.TimeProvider
}

// NewEngine wires the engine. The ideal score tunable is injected here; the
// engine itself never reads configuration.
func NewEngine(cache *SnapshotCache, clock types.TimeProvider, idealScore float64) *Engine {
	return &Engine{
		cache:  cache,
		scorer: NewScorer(idealScore),
		clock:  clock,
	}
}

// Cache exposes the snapshot cache for lifecycle management (initial load,
// periodic refresh).
func (e *Engine) Cache() *SnapshotCache {
	return e.cache
}

// Score aggregates all records matching the filter into one ScoreSet.
// Returns ErrNoActivity when nothing matched; callers must not render that as
// a zero score.
func (e *Engine) Score(filter types.StatsFilter) (types.ScoreSet, error) {
	snap, err := e.cache.Current()
	if err != nil {
		return types.ScoreSet{}, err
	}
	bucket, err := Aggregate(snap, filter, e.clock)
	if err != nil {
		return types.ScoreSet{}, err
	}
	return e.scorer.Score(bucket), nil
}

// DateScore is one day's ScoreSet, for time-series views.
type DateScore struct {
	Date   time.Time      `json:"date"`
	Scores types.ScoreSet `json:"scores"`
}

// ScoreByDate aggregates per day and scores each day's bucket. Days with no
// matching records are omitted, not zero-filled.
func (e *Engine) ScoreByDate(filter types.StatsFilter) ([]DateScore, error) {
	snap, err := e.cache.Current()
	if err != nil {
		return nil, err
	}
	buckets, err := AggregateByDate(snap, filter, e.clock)
	if err != nil {
		return nil, err
	}
	out := make([]DateScore, len(buckets))
	for i, db := range buckets {
		out[i] = DateScore{Date: db.Date, Scores: e.scorer.Score(db.Bucket)}
	}
	return out, nil
}

// TopUsers ranks the users active in the timeframe by total score.
func (e *Engine) TopUsers(frame types.Timeframe, n int) ([]RankedEntity, error) {
	return e.top(frame, n, func(snap *Snapshot, since time.Time) []string {
		return Users(snap, "", since)
	}, func(name string, since time.Time) types.StatsFilter {
		return types.StatsFilter{Username: name, Since: since}
	})
}

// TopAccounts ranks the accounts active in the timeframe by total score.
func (e *Engine) TopAccounts(frame types.Timeframe, n int) ([]RankedEntity, error) {
	return e.top(frame, n, func(snap *Snapshot, since time.Time) []string {
		return Accounts(snap, "", since)
	}, func(name string, since time.Time) types.StatsFilter {
		return types.StatsFilter{Account: name, Since: since}
	})
}

func (e *Engine) top(
	frame types.Timeframe,
	n int,
	list func(*Snapshot, time.Time) []string,
	filterFor func(string, time.Time) types.StatsFilter,
) ([]RankedEntity, error) {
	snap, err := e.cache.Current()
	if err != nil {
		return nil, err
	}
	since := frame.Since(e.clock.GetCurrentTime())
	names := list(snap, since)

	// Each entity's score is an independent pure fold over the shared
	// snapshot, so fan out across a bounded worker group.
	var (
		mu     sync.Mutex
		scores = make(map[string]types.ScoreSet, len(names))
	)
	g := new(errgroup.Group)
	g.SetLimit(defaultScoreWorkers)
	for _, name := range names {
		g.Go(func() error {
			set, err := e.Score(filterFor(name, since))
			if errors.Is(err, types.ErrNoActivity) {
				return nil
			}
			if err != nil {
				return err
			}
			mu.Lock()
			scores[name] = set
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return Rank(scores, n, true), nil
}

// EntityScore is one named entity's ScoreSet within a breakdown.
type EntityScore struct {
	Name   string         `json:"name"`
	Scores types.ScoreSet `json:"scores"`
}

// AccountBreakdown returns the account's overall score plus the score of each
// member user within that account, users sorted by name. Returns
// ErrUnknownEntity when the account has no records at all, and ErrNoActivity
// when it exists but was idle in the timeframe.
func (e *Engine) AccountBreakdown(account string, frame types.Timeframe) (types.ScoreSet, []EntityScore, error) {
	return e.breakdown(account, frame,
		func(snap *Snapshot) []string { return Users(snap, account, time.Time{}) },
		func(since time.Time) types.StatsFilter {
			return types.StatsFilter{Account: account, Since: since}
		},
		func(member string, since time.Time) types.StatsFilter {
			return types.StatsFilter{Account: account, Username: member, Since: since}
		})
}

// UserBreakdown returns the user's overall score plus their score within each
// account they belong to, accounts sorted by name.
func (e *Engine) UserBreakdown(username string, frame types.Timeframe) (types.ScoreSet, []EntityScore, error) {
	return e.breakdown(username, frame,
		func(snap *Snapshot) []string { return Accounts(snap, username, time.Time{}) },
		func(since time.Time) types.StatsFilter {
			return types.StatsFilter{Username: username, Since: since}
		},
		func(member string, since time.Time) types.StatsFilter {
			return types.StatsFilter{Username: username, Account: member, Since: since}
		})
}

func (e *Engine) breakdown(
	name string,
	frame types.Timeframe,
	members func(*Snapshot) []string,
	totalFilter func(time.Time) types.StatsFilter,
	memberFilter func(string, time.Time) types.StatsFilter,
) (types.ScoreSet, []EntityScore, error) {
	snap, err := e.cache.Current()
	if err != nil {
		return types.ScoreSet{}, nil, err
	}

	names := members(snap)
	if len(names) == 0 {
		return types.ScoreSet{}, nil, types.ErrUnknownEntity
	}

	since := frame.Since(e.clock.GetCurrentTime())
	total, err := e.Score(totalFilter(since))
	if err != nil {
		return types.ScoreSet{}, nil, err
	}

	out := make([]EntityScore, 0, len(names))
	for _, member := range names {
		set, err := e.Score(memberFilter(member, since))
		if errors.Is(err, types.ErrNoActivity) {
			set = types.ScoreSet{}
		} else if err != nil {
			return types.ScoreSet{}, nil, err
		}
		out = append(out, EntityScore{Name: member, Scores: set})
	}
	return total, out, nil
}

// UserTimeseries returns the user's per-day scores over the timeframe. A
// non-empty account narrows the series to that membership.
func (e *Engine) UserTimeseries(username, account string, frame types.Timeframe) ([]DateScore, error) {
	return e.ScoreByDate(types.StatsFilter{
		Username: username,
		Account:  account,
		Since:    frame.Since(e.clock.GetCurrentTime()),
	})
}

// AccountTimeseries returns the account's per-day scores over the timeframe.
func (e *Engine) AccountTimeseries(account string, frame types.Timeframe) ([]DateScore, error) {
	return e.ScoreByDate(types.StatsFilter{
		Account: account,
		Since:   frame.Since(e.clock.GetCurrentTime()),
	})
}

// ClusterSummary describes cluster-wide efficiency and population for one
// timeframe.
type ClusterSummary struct {
	Scores         types.ScoreSet `json:"scores"`
	ActiveUsers    int            `json:"active_users"`
	TotalUsers     int            `json:"total_users"`
	ActiveAccounts int            `json:"active_accounts"`
	TotalAccounts  int            `json:"total_accounts"`
	Jobs           int64          `json:"jobs"`
}

// Cluster computes the cluster-wide summary for the timeframe. A cluster with
// no activity in the window still reports its population counts; the scores
// are all-absent in that case.
func (e *Engine) Cluster(frame types.Timeframe) (ClusterSummary, error) {
	snap, err := e.cache.Current()
	if err != nil {
		return ClusterSummary{}, err
	}
	since := frame.Since(e.clock.GetCurrentTime())

	summary := ClusterSummary{
		ActiveUsers:    len(Users(snap, "", since)),
		TotalUsers:     len(Users(snap, "", time.Time{})),
		ActiveAccounts: len(Accounts(snap, "", since)),
		TotalAccounts:  len(Accounts(snap, "", time.Time{})),
		Jobs:           JobSum(snap, types.StatsFilter{Since: since}, e.clock),
	}

	scores, err := e.Score(types.StatsFilter{Since: since})
	if err != nil && !errors.Is(err, types.ErrNoActivity) {
		return ClusterSummary{}, err
	}
	summary.Scores = scores
	return summary, nil
}

// ClusterTimeseries returns per-day cluster scores and job counts for the
// timeframe.
func (e *Engine) ClusterTimeseries(frame types.Timeframe) ([]DateScore, []DateCount, error) {
	snap, err := e.cache.Current()
	if err != nil {
		return nil, nil, err
	}
	since := frame.Since(e.clock.GetCurrentTime())
	filter := types.StatsFilter{Since: since}

	scores, err := e.ScoreByDate(filter)
	if err != nil {
		return nil, nil, err
	}
	return scores, JobSumByDate(snap, filter, e.clock), nil
}

// SearchResult identifies the closest-matching entity for a search query.
type SearchResult struct {
	Kind string `json:"kind"` // "user" or "account"
	Name string `json:"name"`
}

// Search finds the known user or account most similar to the query,
// preferring the user on an exact tie. Returns ErrUnknownEntity when the
// snapshot holds no entities at all.
func (e *Engine) Search(query string) (SearchResult, error) {
	snap, err := e.cache.Current()
	if err != nil {
		return SearchResult{}, err
	}

	user, userOK := ClosestMatch(Users(snap, "", time.Time{}), query)
	account, accountOK := ClosestMatch(Accounts(snap, "", time.Time{}), query)

	switch {
	case !userOK && !accountOK:
		return SearchResult{}, types.ErrUnknownEntity
	case !accountOK:
		return SearchResult{Kind: "user", Name: user}, nil
	case !userOK:
		return SearchResult{Kind: "account", Name: account}, nil
	}

	if similarity(query, account) > similarity(query, user) {
		return SearchResult{Kind: "account", Name: account}, nil
	}
	return SearchResult{Kind: "user", Name: user}, nil
}
