/*
 * Copyright (c) 2023, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package emmylog

import (
	"context"

	"github.com/dburkart/emmylog/pkg/database"
	"github.com/dburkart/emmylog/pkg/event"
	"github.com/dburkart/emmylog/pkg/proto"
	"github.com/dburkart/emmylog/pkg/server"
)

// A LocalClient answers requests in-process, with the same action handlers
// the store server uses.
type LocalClient struct {
	target proto.ConnectionString
	store  database.Store
	mux    server.ActionMux
	opts   Options
}

func (client *LocalClient) Open(target proto.ConnectionString) error {
	var err error

	client.target = target
	client.store, err = database.Open(target.Store, client.opts.Log)
	if err != nil {
		return err
	}
	client.mux = server.NewActionMux(client.store, server.Options{
		ListLimit: client.opts.ListLimit,
		Location:  client.opts.Location,
	})

	return nil
}

func (client *LocalClient) Close() error {
	return client.store.Close()
}

func (client *LocalClient) Send(ctx context.Context, rq proto.Request) (proto.Response, error) {
	return client.mux.Dispatch(ctx, rq, server.RequestMeta{SourceIP: "local"}), nil
}

func (client *LocalClient) List(ctx context.Context) ([]event.Event, error) {
	return listEvents(ctx, client, client.opts.Log)
}

func (client *LocalClient) Add(ctx context.Context, kind event.Kind, ts string) error {
	return addEvent(ctx, client, kind, ts)
}
