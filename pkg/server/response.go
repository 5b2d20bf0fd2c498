/*
 * Copyright (c) 2022, Gideon Williams <gideon@gideonw.com>
 * Copyright (c) 2023, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package server

import (
	"context"
	"time"

	"github.com/dburkart/emmylog/pkg/database"
	"github.com/dburkart/emmylog/pkg/event"
	"github.com/dburkart/emmylog/pkg/proto"
)

// Options tune how actions are answered.
type Options struct {
	// ListLimit is how many of the newest events a list returns
	ListLimit int
	// Location is the zone user supplied timestamps are interpreted in
	Location *time.Location
	// Now defaults to time.Now
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.ListLimit == 0 {
		o.ListLimit = database.DefaultListLimit
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// NewActionMux wires the list and add actions to store.
func NewActionMux(store database.Store, opts Options) ActionMux {
	opts = opts.withDefaults()

	mux := NewMapMux()
	mux.Handle(proto.ActionList, func(ctx context.Context, _ proto.Request, _ RequestMeta) proto.Response {
		return ListResponse(ctx, store, opts.ListLimit)
	})
	mux.Handle(proto.ActionAdd, func(ctx context.Context, req proto.Request, meta RequestMeta) proto.Response {
		return AddResponse(ctx, req, meta, store, opts.Location, opts.Now())
	})
	return mux
}

// ListResponse returns the newest limit events in ascending time order.
func ListResponse(ctx context.Context, store database.Store, limit int) proto.Response {
	records, err := store.List(ctx, limit)
	if err != nil {
		return proto.NewErrResponse(proto.CodeStoreError, err.Error())
	}

	resp := proto.MessageOk
	resp.Data = make([]proto.EventRecord, len(records))
	for i, r := range records {
		resp.Data[i] = proto.EventRecord{
			Event: string(r.Kind),
			TsUTC: event.FormatTime(r.Time),
		}
	}
	return resp
}

// AddResponse validates an add request and appends it to the store. An empty
// timestamp means now, anything else is local time in loc.
func AddResponse(ctx context.Context, req proto.Request, meta RequestMeta, store database.Store, loc *time.Location, now time.Time) proto.Response {
	if req.Event == "" {
		return proto.NewErrResponse(proto.CodeMissingData, "No 'event' property present or not a string value")
	}
	kind, err := event.ParseKind(req.Event)
	if err != nil {
		return proto.NewErrResponse(proto.CodeUnknownEvent, err.Error())
	}

	ts, err := event.ParseSubmitted(req.Timestamp, now, loc)
	if err != nil {
		return proto.NewErrResponse(proto.CodeInvalidTimestamp, "Cannot parse timestamp")
	}

	err = store.Append(ctx, database.NewRecord(kind, ts, meta.SourceIP))
	if err != nil {
		return proto.NewErrResponse(proto.CodeStoreError, err.Error())
	}

	return proto.MessageDataAdded
}
