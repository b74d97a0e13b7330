// SPDX-FileCopyrightText: Copyright (c) Northern Arizona University High Performance Computing. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nauhpc/doppler/app/domain"
)

func TestClosestMatch(t *testing.T) {
	candidates := []string{"physics", "chemistry", "biology"}

	tests := []struct {
		query string
		want  string
	}{
		{"physics", "physics"},
		{"physic", "physics"},
		{"chem", "chemistry"},
		{"bio", "biology"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, ok := domain.ClosestMatch(candidates, tt.query)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClosestMatch_Empty(t *testing.T) {
	_, ok := domain.ClosestMatch(nil, "anything")
	assert.False(t, ok)
}

func TestClosestMatch_TieIsLexical(t *testing.T) {
	// Both candidates are equally similar to the query; the lexically
	// smaller one must win every time.
	got, ok := domain.ClosestMatch([]string{"userb", "usera"}, "userc")
	assert.True(t, ok)
	assert.Equal(t, "usera", got)
}
