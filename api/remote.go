/*
 * Copyright (c) 2023, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package emmylog

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/dburkart/emmylog/pkg/event"
	"github.com/dburkart/emmylog/pkg/proto"
	"github.com/pkg/errors"
)

// maxResponseBytes bounds how much of a response body is read
const maxResponseBytes = 4 << 20

// A RemoteClient posts request envelopes to a store server.
type RemoteClient struct {
	target proto.ConnectionString
	http   *http.Client
	opts   Options
}

func (client *RemoteClient) Open(target proto.ConnectionString) error {
	client.target = target

	timeout := client.opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	client.http = &http.Client{Timeout: timeout}

	return nil
}

func (client *RemoteClient) Close() error {
	client.http.CloseIdleConnections()
	return nil
}

// Send a request envelope to the store server. Only 200 responses are
// decoded, any other status is reported as ErrStatus.
func (client *RemoteClient) Send(ctx context.Context, rq proto.Request) (proto.Response, error) {
	data, err := rq.Marshal()
	if err != nil {
		return proto.Response{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, client.target.Address, bytes.NewReader(data))
	if err != nil {
		return proto.Response{}, errors.Wrap(err, "unable to build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.http.Do(req)
	if err != nil {
		return proto.Response{}, errors.Wrapf(err, "%s request failed", rq.Action)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return proto.Response{}, errors.Wrapf(ErrStatus, "%s request: %s", rq.Action, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return proto.Response{}, errors.Wrap(err, "unable to read response")
	}

	out := proto.Response{}
	err = out.Unmarshal(body)
	if err != nil {
		return proto.Response{}, errors.Wrap(err, "unable to unmarshal response")
	}

	return out, nil
}

// List the event history.
func (client *RemoteClient) List(ctx context.Context) ([]event.Event, error) {
	return listEvents(ctx, client, client.opts.Log)
}

// Add a single event.
func (client *RemoteClient) Add(ctx context.Context, kind event.Kind, ts string) error {
	return addEvent(ctx, client, kind, ts)
}
