// SPDX-FileCopyrightText: Copyright (c) Northern Arizona University High Performance Computing. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package domain

// ClosestMatch returns the candidate most similar to the query, for the
// search box behavior of redirecting to the nearest known user or account.
// Similarity is the classic 2*LCS/(len(a)+len(b)) ratio; among equally
// similar candidates the lexically smallest wins, keeping results
// deterministic. Returns false when there are no candidates.
func ClosestMatch(candidates []string, query string) (string, bool) {
	best := ""
	bestRatio := -1.0
	for _, candidate := range candidates {
		r := similarity(query, candidate)
		if r > bestRatio || (r == bestRatio && candidate < best) {
			best = candidate
			bestRatio = r
		}
	}
	return best, bestRatio >= 0
}

func similarity(a, b string) float64 {
	if len(a)+len(b) == 0 {
		return 1
	}
	return 2 * float64(lcs(a, b)) / float64(len(a)+len(b))
}

// lcs computes the longest-common-subsequence length with a rolling row.
func lcs(a, b string) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else if prev[j] >= cur[j-1] {
				cur[j] = prev[j]
			} else {
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
