/*
 * Copyright (c) 2022-2023, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package database

import (
	"context"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/dburkart/emmylog/pkg/event"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// DefaultListLimit is how many of the newest records a list request returns.
const DefaultListLimit = 30

var ErrUnknownBackend = errors.New("unknown store backend")

// A Record is an event as the store keeps it.
type Record struct {
	ID       string
	SourceIP string
	Created  time.Time
	Time     time.Time
	Kind     event.Kind
}

// NewRecord stamps a fresh record with an id and a creation time.
func NewRecord(kind event.Kind, ts time.Time, sourceIP string) Record {
	return Record{
		ID:       uuid.NewString(),
		SourceIP: sourceIP,
		Created:  time.Now().UTC(),
		Time:     ts.UTC(),
		Kind:     kind,
	}
}

// Event strips the bookkeeping fields.
func (r Record) Event() event.Event {
	return event.Event{Kind: r.Kind, Time: r.Time}
}

// Store is an append-only, time ordered event log. Implementations must be
// safe for concurrent use.
type Store interface {
	// Append adds a record. Records may arrive out of time order.
	Append(ctx context.Context, r Record) error
	// List returns the newest limit records in ascending time order. A limit
	// of zero or less returns everything.
	List(ctx context.Context, limit int) ([]Record, error)
	Stats(ctx context.Context) (Stats, error)
	Close() error
}

// Open picks a backend from the scheme of dsn:
//
//	./path, file://path   write-ahead log on disk
//	sqlite://path         sqlite through gorm
//	postgres://...        postgres through pgx
//	redis://...           redis sorted set
func Open(dsn string, log zerolog.Logger) (Store, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse store dsn")
	}

	switch u.Scheme {
	case "":
		return NewFileStore(dsn, log)
	case "file":
		return NewFileStore(strings.TrimPrefix(dsn, "file://"), log)
	case "sqlite":
		return NewSQLiteStore(strings.TrimPrefix(dsn, "sqlite://"), log)
	case "postgres", "postgresql":
		return NewPostgresStore(dsn, log)
	case "redis", "rediss":
		return NewRedisStore(dsn, log)
	}

	return nil, errors.Wrapf(ErrUnknownBackend, "scheme %q", u.Scheme)
}

// newest trims an ascending slice down to its last limit entries.
func newest(records []Record, limit int) []Record {
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}
	return records
}

// reverse flips a slice in place, used by backends that read newest first.
func reverse(records []Record) {
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
}

// insertSorted places r after every record with an equal or earlier time, so
// records with the same timestamp keep their submission order.
func insertSorted(records []Record, r Record) []Record {
	idx := sort.Search(len(records), func(i int) bool {
		return records[i].Time.After(r.Time)
	})
	records = append(records, Record{})
	copy(records[idx+1:], records[idx:])
	records[idx] = r
	return records
}
