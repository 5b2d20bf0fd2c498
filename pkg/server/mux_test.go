package server_test

import (
	"context"
	"testing"

	"github.com/dburkart/emmylog/pkg/proto"
	"github.com/dburkart/emmylog/pkg/server"
)

func stub2(_ context.Context, _ proto.Request, _ server.RequestMeta) proto.Response {
	return proto.MessageOk
}

func TestMapMuxDispatch(t *testing.T) {
	mux := server.NewMapMux()
	mux.Handle(proto.ActionList, stub2)

	tt := []struct {
		test string
		req  proto.Request
		code string
	}{
		{"registered action", proto.Request{Action: proto.ActionList}, proto.CodeSuccess},
		{"missing action", proto.Request{}, proto.CodeNoAction},
		{"unregistered action", proto.Request{Action: "delete"}, proto.CodeUnsupportedAction},
	}

	for _, tc := range tt {
		t.Run(tc.test, func(t *testing.T) {
			resp := mux.Dispatch(context.Background(), tc.req, server.RequestMeta{})
			if resp.Code != tc.code {
				t.Errorf("errcode mismatch: %s != %s", resp.Code, tc.code)
			}
		})
	}
}

func BenchmarkMapActionDispatch(b *testing.B) {
	mux := server.NewMapMux()

	mux.Handle("a", stub2)
	mux.Handle("b", stub2)
	mux.Handle("c", stub2)

	tests := []proto.Request{{
		Action: "a",
	}, {
		Action: "b",
	}, {
		Action: "c",
	},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		testReq := tests[i%len(tests)]
		mux.Dispatch(context.Background(), testReq, server.RequestMeta{})
	}
}
