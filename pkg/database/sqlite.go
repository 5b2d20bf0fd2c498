/*
 * Copyright (c) 2023, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/dburkart/emmylog/pkg/event"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// eventRow is the sqlite table layout.
type eventRow struct {
	ID       string    `gorm:"primaryKey;size:36"`
	SourceIP string    `gorm:"not null"`
	Created  time.Time `gorm:"column:created_utc;not null"`
	Time     time.Time `gorm:"column:ts_utc;not null;index"`
	Event    string    `gorm:"column:event;not null"`
}

func (eventRow) TableName() string {
	return "events"
}

func rowFromRecord(r Record) eventRow {
	return eventRow{
		ID:       r.ID,
		SourceIP: r.SourceIP,
		Created:  r.Created.UTC(),
		Time:     r.Time.UTC(),
		Event:    string(r.Kind),
	}
}

func (e eventRow) record() Record {
	return Record{
		ID:       e.ID,
		SourceIP: e.SourceIP,
		Created:  e.Created.UTC(),
		Time:     e.Time.UTC(),
		Kind:     event.Kind(e.Event),
	}
}

type SQLiteStore struct {
	db  *gorm.DB
	log zerolog.Logger
}

// NewSQLiteStore opens (and migrates) the sqlite database at path.
func NewSQLiteStore(path string, log zerolog.Logger) (*SQLiteStore, error) {
	log = log.With().Str("store", "sqlite").Str("path", path).Logger()

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.New(gormWriter{log}, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}

	// sqlite only tolerates a single writer
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get sql db")
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&eventRow{}); err != nil {
		return nil, errors.Wrap(err, "auto migrate")
	}

	return &SQLiteStore{db: db, log: log}, nil
}

func (s *SQLiteStore) Append(ctx context.Context, r Record) error {
	row := rowFromRecord(r)
	return errors.Wrap(s.db.WithContext(ctx).Create(&row).Error, "insert event")
}

func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Record, error) {
	var rows []eventRow
	q := s.db.WithContext(ctx).Order("ts_utc DESC").Order("created_utc DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list events")
	}

	records := make([]Record, len(rows))
	for i, row := range rows {
		records[i] = row.record()
	}
	reverse(records)
	return records, nil
}

func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&eventRow{}).Count(&count).Error; err != nil {
		return Stats{}, errors.Wrap(err, "count events")
	}

	stats := Stats{Backend: "sqlite", Events: int(count)}
	if count > 0 {
		var last eventRow
		if err := s.db.WithContext(ctx).Order("ts_utc DESC").First(&last).Error; err != nil {
			return Stats{}, errors.Wrap(err, "last event")
		}
		stats.LastEvent = last.Time.UTC()
	}
	return stats, nil
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// gormWriter routes gorm's printf style logging into zerolog.
type gormWriter struct {
	log zerolog.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.Warn().Msgf(format, args...)
}
