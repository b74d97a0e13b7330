// SPDX-FileCopyrightText: Copyright (c) Northern Arizona University High Performance Computing. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"errors"
)

var (
	// ErrNoActivity is returned when an ungrouped aggregation matched zero
	// records. Callers must treat this as "no data", never as zero usage.
	ErrNoActivity = errors.New("no job activity for query")

	// ErrStoreUnavailable is returned when the accounting record store
	// cannot be reached. The last good snapshot keeps serving.
	ErrStoreUnavailable = errors.New("record store unavailable")

	// ErrMalformedRecord is returned when a row cannot be parsed into the
	// JobRecord shape. The whole load aborts; a partial snapshot is worse
	// than a stale one.
	ErrMalformedRecord = errors.New("malformed accounting record")

	// ErrNotReady is returned when the snapshot cache has never completed
	// a successful load.
	ErrNotReady = errors.New("snapshot not loaded")

	// ErrUnknownEntity is returned when a directory lookup matches no user
	// or account at all.
	ErrUnknownEntity = errors.New("unknown user or account")
)
