// SPDX-FileCopyrightText: Copyright (c) Northern Arizona University High Performance Computing. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package core provides the shared GORM driver configuration for the
// accounting store adapters.
package core

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// NewDriver creates a standard *gorm.DB for the database dialect passed in.
func NewDriver(dialector gorm.Dialector) (*gorm.DB, error) {
	return gorm.Open(dialector, &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
		NowFunc:        DatabaseNow, // For timestamps, use UTC, truncated to milliseconds
		Logger:         &ZeroLogAdapter{},
		TranslateError: true,
	})
}

// DatabaseNow returns time.Now() in UTC, truncated to Milliseconds.
func DatabaseNow() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
