// SPDX-FileCopyrightText: Copyright (c) Northern Arizona University High Performance Computing. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package instr

import "context"

type spanCtxKey string

const spanIDKey spanCtxKey = "currentSpanID"

func getParentID(ctx context.Context) string {
	if ps, ok := ctx.Value(spanIDKey).(string); ok {
		return ps
	}
	return ""
}
