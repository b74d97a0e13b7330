// SPDX-FileCopyrightText: Copyright (c) Northern Arizona University High Performance Computing. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package instr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSpan(t *testing.T) {
	err := RunSpan(context.Background(), "test_op", func(ctx context.Context, span *Span) error {
		require.NotNil(t, span)
		assert.NotEmpty(t, span.id)
		assert.Empty(t, span.parentID, "root span has no parent")
		return nil
	})
	assert.NoError(t, err)
}

func TestRunSpan_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	err := RunSpan(context.Background(), "test_op", func(ctx context.Context, span *Span) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestRunSpan_Nesting(t *testing.T) {
	err := RunSpan(context.Background(), "outer", func(ctx context.Context, outer *Span) error {
		return RunSpan(ctx, "inner", func(_ context.Context, inner *Span) error {
			assert.Equal(t, outer.id, inner.parentID)
			return nil
		})
	})
	assert.NoError(t, err)
}

func TestSpan_EndIsIdempotent(t *testing.T) {
	span := StartSpan(context.Background(), "test_op")
	span.End()
	span.End()
	assert.True(t, span.ended)
}
