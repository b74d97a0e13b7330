// SPDX-FileCopyrightText: Copyright (c) Northern Arizona University High Performance Computing. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package types

import "time"

// TimeProvider abstracts "now" so the yesterday/today defaults in date
// filtering stay testable.
type TimeProvider interface {
	// GetCurrentTime returns the current time.
	GetCurrentTime() time.Time
}

// Clock is the production TimeProvider.
type Clock struct{}

func (c *Clock) GetCurrentTime() time.Time {
	return time.Now().UTC()
}
