/*
 * Copyright (c) 2023, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/dburkart/emmylog/pkg/event"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS events (
	id          uuid PRIMARY KEY,
	source_ip   varchar NOT NULL,
	created_utc timestamptz NOT NULL,
	ts_utc      timestamptz NOT NULL,
	event       varchar NOT NULL
);
CREATE INDEX IF NOT EXISTS events_ts_utc_idx ON events (ts_utc);
`

type PostgresStore struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewPostgresStore connects through the pgx stdlib driver and makes sure the
// events table exists.
func NewPostgresStore(dsn string, log zerolog.Logger) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "create events table")
	}

	return &PostgresStore{db: db, log: log.With().Str("store", "postgres").Logger()}, nil
}

func (s *PostgresStore) Append(ctx context.Context, r Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, source_ip, created_utc, ts_utc, event)
		VALUES ($1, $2, $3, $4, $5)
	`, r.ID, r.SourceIP, r.Created.UTC(), r.Time.UTC(), string(r.Kind))
	return errors.Wrap(err, "insert event")
}

func (s *PostgresStore) List(ctx context.Context, limit int) ([]Record, error) {
	query := `
		SELECT id, source_ip, created_utc, ts_utc, event
		FROM events
		ORDER BY ts_utc DESC, created_utc DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list events")
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var r Record
		var kind string
		if err := rows.Scan(&r.ID, &r.SourceIP, &r.Created, &r.Time, &kind); err != nil {
			return nil, errors.Wrap(err, "scan event")
		}
		r.Kind = event.Kind(kind)
		r.Created = r.Created.UTC()
		r.Time = r.Time.UTC()
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list events")
	}

	reverse(records)
	return records, nil
}

func (s *PostgresStore) Stats(ctx context.Context) (Stats, error) {
	var count int
	var last sql.NullTime
	err := s.db.QueryRowContext(ctx, `SELECT count(*), max(ts_utc) FROM events`).Scan(&count, &last)
	if err != nil {
		return Stats{}, errors.Wrap(err, "event stats")
	}

	stats := Stats{Backend: "postgres", Events: count}
	if last.Valid {
		stats.LastEvent = last.Time.UTC()
	}
	return stats, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
