/*
 * Copyright (c) 2022, Gideon Williams gideon@gideonw.com
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package server

import (
	"context"
	"fmt"

	"github.com/dburkart/emmylog/pkg/proto"
)

// RequestMeta carries what the transport knows about the caller.
type RequestMeta struct {
	SourceIP string
}

type ActionMux interface {
	Dispatch(ctx context.Context, req proto.Request, meta RequestMeta) proto.Response
	Handle(a proto.Action, f HandleAction)
}

type HandleAction func(context.Context, proto.Request, RequestMeta) proto.Response

type MapMux struct {
	handlers map[proto.Action]HandleAction
}

func NewMapMux() ActionMux {
	return &MapMux{
		handlers: make(map[proto.Action]HandleAction),
	}
}

func (mm *MapMux) Dispatch(ctx context.Context, req proto.Request, meta RequestMeta) proto.Response {
	if req.Action == "" {
		return proto.NewErrResponse(proto.CodeNoAction, "No action given")
	}
	f, ok := mm.handlers[req.Action]
	if !ok {
		return proto.NewErrResponse(proto.CodeUnsupportedAction, fmt.Sprintf("Unsupported action requested: %s", req.Action))
	}
	return f(ctx, req, meta)
}

func (mm *MapMux) Handle(a proto.Action, f HandleAction) {
	mm.handlers[a] = f
}
