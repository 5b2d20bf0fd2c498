/*
 * Copyright (c) 2022-2023, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package emmylog

import (
	"context"
	"time"

	"github.com/dburkart/emmylog/pkg/event"
	"github.com/dburkart/emmylog/pkg/proto"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ErrStatus is returned when a remote store answers with anything but 200.
var ErrStatus = errors.New("unexpected response status")

type Client interface {
	Open(proto.ConnectionString) error
	Close() error
	// Send a raw request envelope and return the store's response envelope.
	Send(context.Context, proto.Request) (proto.Response, error)
	// List the event history in ascending time order.
	List(context.Context) ([]event.Event, error)
	// Add an event. ts is the local time the user typed, empty means now.
	Add(ctx context.Context, kind event.Kind, ts string) error
}

type Options struct {
	Log zerolog.Logger
	// Timeout bounds each remote request
	Timeout time.Duration
	// Location is the zone a local store interprets submitted timestamps in
	Location *time.Location
	// ListLimit is how many events a local store lists
	ListLimit int
}

// NewClient creates a Client for connstr. Connection strings naming a store
// (a path, sqlite://, postgres://, redis://) open that store in-process,
// http(s):// and emmylog:// strings talk to a remote store server.
func NewClient(connstr string, opts Options) (Client, error) {
	var client Client

	target, err := proto.ParseConnectionString(connstr)
	if err != nil {
		return nil, err
	}

	if target.Local {
		client = &LocalClient{opts: opts}
	} else {
		client = &RemoteClient{opts: opts}
	}

	err = client.Open(target)
	if err != nil {
		return nil, err
	}

	return client, nil
}

type sender interface {
	Send(context.Context, proto.Request) (proto.Response, error)
}

func listEvents(ctx context.Context, c sender, log zerolog.Logger) ([]event.Event, error) {
	resp, err := c.Send(ctx, proto.Request{Action: proto.ActionList})
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return decodeEvents(resp.Data, log), nil
}

func addEvent(ctx context.Context, c sender, kind event.Kind, ts string) error {
	if !kind.Valid() {
		return errors.Wrapf(event.ErrUnknownKind, "%q", string(kind))
	}
	resp, err := c.Send(ctx, proto.Request{
		Action:    proto.ActionAdd,
		Event:     string(kind),
		Timestamp: ts,
	})
	if err != nil {
		return err
	}
	return resp.Err()
}

// decodeEvents converts wire records, skipping any the client cannot
// interpret so one bad record does not hide the rest of the history.
func decodeEvents(records []proto.EventRecord, log zerolog.Logger) []event.Event {
	events := make([]event.Event, 0, len(records))
	for _, r := range records {
		kind, err := event.ParseKind(r.Event)
		if err != nil {
			log.Warn().Err(err).Str("ts_utc", r.TsUTC).Msg("skipping event")
			continue
		}
		ts, err := event.ParseTime(r.TsUTC)
		if err != nil {
			log.Warn().Err(err).Str("event", r.Event).Msg("skipping event with bad timestamp")
			continue
		}
		events = append(events, event.Event{Kind: kind, Time: ts})
	}
	return events
}
