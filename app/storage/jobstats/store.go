// SPDX-FileCopyrightText: Copyright (c) Northern Arizona University High Performance Computing. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package jobstats implements the RecordStore boundary over the jobs table
// maintained by the accounting ingest cron. MySQL backs production sites;
// SQLite serves tests and small installations.
package jobstats

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nauhpc/doppler/app/storage/core"
	"github.com/nauhpc/doppler/app/types"
)

// InMemoryDSN opens a private in-memory SQLite database, for tests.
const InMemoryDSN = "file::memory:?cache=shared"

// JobRow mirrors one row of the jobs table. Column names match the schema
// the ingest side has written since the original deployment, so this adapter
// can point at an existing database unchanged.
type JobRow struct {
	ID       uint      `gorm:"column:id;primaryKey"`
	Username string    `gorm:"column:username;type:VARCHAR(64);not null;index"`
	Account  string    `gorm:"column:account;type:VARCHAR(64);not null;index"`
	Date     time.Time `gorm:"column:date;not null;index"`

	MemoryRequested    *float64 `gorm:"column:memoryreq"`
	MemoryUsed         *float64 `gorm:"column:memoryuse"`
	CPUTimeUsed        *float64 `gorm:"column:cputime"`
	CPUTimeIdeal       *float64 `gorm:"column:idealcpu"`
	TimeLimitRequested *float64 `gorm:"column:tlimitreq"`
	TimeLimitUsed      *float64 `gorm:"column:tlimituse"`
	GPUHoursRequested  *float64 `gorm:"column:gpureq"`
	GPUHoursUsed       *float64 `gorm:"column:gpuuse"`

	JobCount int64 `gorm:"column:jobsum;not null"`
}

func (JobRow) TableName() string {
	return "jobs"
}

// Store reads job-accounting rows through GORM.
type Store struct {
	db *gorm.DB
}

var _ types.RecordStore = (*Store)(nil)

// NewMySQL opens the accounting database over MySQL.
func NewMySQL(dsn string) (*Store, error) {
	db, err := core.NewDriver(mysql.Open(dsn))
	if err != nil {
		return nil, errors.Wrap(err, "opening mysql accounting database")
	}
	return &Store{db: db}, nil
}

// NewSQLite opens the accounting database over SQLite.
func NewSQLite(dsn string) (*Store, error) {
	db, err := core.NewDriver(sqlite.Open(dsn))
	if err != nil {
		return nil, errors.Wrap(err, "opening sqlite accounting database")
	}
	return &Store{db: db}, nil
}

// New wraps an existing GORM handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the jobs table. The production schema is owned by the
// ingest side; this exists for tests and fresh SQLite installations.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&JobRow{})
}

// Insert writes records into the jobs table, for seeding.
func (s *Store) Insert(ctx context.Context, records ...types.JobRecord) error {
	rows := make([]JobRow, len(records))
	for i, r := range records {
		rows[i] = JobRow{
			Username:           r.Username,
			Account:            r.Account,
			Date:               types.Day(r.Date),
			MemoryRequested:    r.MemoryRequested,
			MemoryUsed:         r.MemoryUsed,
			CPUTimeUsed:        r.CPUTimeUsed,
			CPUTimeIdeal:       r.CPUTimeIdeal,
			TimeLimitRequested: r.TimeLimitRequested,
			TimeLimitUsed:      r.TimeLimitUsed,
			GPUHoursRequested:  r.GPUHoursRequested,
			GPUHoursUsed:       r.GPUHoursUsed,
			JobCount:           r.JobCount,
		}
	}
	return s.db.WithContext(ctx).Create(&rows).Error
}

// FetchAllRecords loads the entire jobs table ordered by date ascending. One
// malformed row aborts the whole fetch: the snapshot cache must never swap in
// a partially-valid record set.
func (s *Store) FetchAllRecords(ctx context.Context) ([]types.JobRecord, error) {
	var rows []JobRow
	if err := s.db.WithContext(ctx).Order("date asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrStoreUnavailable, err)
	}

	records := make([]types.JobRecord, len(rows))
	for i := range rows {
		records[i] = rows[i].toRecord()
		if err := records[i].Validate(); err != nil {
			return nil, fmt.Errorf("%w: row %d: %s", types.ErrMalformedRecord, rows[i].ID, err)
		}
	}
	return records, nil
}

func (r *JobRow) toRecord() types.JobRecord {
	return types.JobRecord{
		Username:           r.Username,
		Account:            r.Account,
		Date:               types.Day(r.Date),
		MemoryRequested:    r.MemoryRequested,
		MemoryUsed:         r.MemoryUsed,
		CPUTimeUsed:        r.CPUTimeUsed,
		CPUTimeIdeal:       r.CPUTimeIdeal,
		TimeLimitRequested: r.TimeLimitRequested,
		TimeLimitUsed:      r.TimeLimitUsed,
		GPUHoursRequested:  r.GPUHoursRequested,
		GPUHoursUsed:       r.GPUHoursUsed,
		JobCount:           r.JobCount,
	}
}
