// SPDX-FileCopyrightText: Copyright (c) Northern Arizona University High Performance Computing. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package domain

import (
	"sort"

	"github.com/nauhpc/doppler/app/types"
)

// RankedEntity is one entry of a top-N list.
type RankedEntity struct {
	Name   string         `json:"name"`
	Rank   int            `json:"rank"`
	Scores types.ScoreSet `json:"scores"`
}

// Rank orders entities descending by total score and returns the first n.
// Entities with no defined total sort last, ties break by ascending name, so
// the output is fully deterministic for identical inputs. When requireJobs is
// set, entities whose bucket summarized zero jobs are excluded entirely: they
// have nothing to rank, which is different from ranking at zero.
func Rank(scores map[string]types.ScoreSet, n int, requireJobs bool) []RankedEntity {
	ranked := make([]RankedEntity, 0, len(scores))
	for name, set := range scores {
		if requireJobs && set.JobCount == 0 {
			continue
		}
		ranked = append(ranked, RankedEntity{Name: name, Scores: set})
	}

	sort.Slice(ranked, func(i, j int) bool {
		si, sj := ranked[i].Scores.RankingTotal(), ranked[j].Scores.RankingTotal()
		if si != sj {
			return si > sj
		}
		return ranked[i].Name < ranked[j].Name
	})

	if n >= 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
