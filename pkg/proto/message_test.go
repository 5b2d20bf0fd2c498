/*
 * Copyright (c) 2022, Gideon Williams gideon@gideonw.com
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package proto

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestWireFormat(t *testing.T) {
	tt := []struct {
		test string
		req  Request
		want string
	}{
		{
			"Test list request",
			Request{Action: ActionList},
			`{"action":"list"}`,
		},
		{
			"Test add request",
			Request{Action: ActionAdd, Event: "sleep", Timestamp: ""},
			`{"action":"add","event":"sleep"}`,
		},
		{
			"Test add request with timestamp",
			Request{Action: ActionAdd, Event: "awake", Timestamp: "2023-03-04 07:00:00"},
			`{"action":"add","event":"awake","ts":"2023-03-04 07:00:00"}`,
		},
	}

	for _, tc := range tt {
		t.Run(tc.test, func(t *testing.T) {
			b, err := tc.req.Marshal()
			if err != nil {
				t.Fatal(err)
			}
			if string(b) != tc.want {
				t.Errorf("wire mismatch: %s != %s", b, tc.want)
			}
		})
	}
}

func TestRequestUnmarshalFieldTypes(t *testing.T) {
	tt := []struct {
		test string
		body string
		want Request
	}{
		{"strings", `{"action":"add","event":"sleep","ts":"2023-03-04 07:00:00"}`,
			Request{Action: ActionAdd, Event: "sleep", Timestamp: "2023-03-04 07:00:00"}},
		{"null timestamp", `{"action":"add","event":"sleep","ts":null}`,
			Request{Action: ActionAdd, Event: "sleep"}},
		{"numeric event", `{"action":"add","event":5}`,
			Request{Action: ActionAdd}},
		{"object event", `{"action":"add","event":{"kind":"sleep"}}`,
			Request{Action: ActionAdd}},
		{"numeric timestamp", `{"action":"add","event":"sleep","ts":5}`,
			Request{Action: ActionAdd, Event: "sleep", Timestamp: "5"}},
		{"numeric action", `{"action":1}`,
			Request{Action: "1"}},
	}

	for _, tc := range tt {
		t.Run(tc.test, func(t *testing.T) {
			var rq Request
			if err := rq.Unmarshal([]byte(tc.body)); err != nil {
				t.Fatal(err)
			}
			if rq != tc.want {
				t.Errorf("request mismatch: %+v != %+v", rq, tc.want)
			}
		})
	}

	var rq Request
	if err := rq.Unmarshal([]byte(`{"action":`)); err == nil {
		t.Error("truncated body should not decode")
	}
}

func TestResponseUnmarshal(t *testing.T) {
	rs := Response{}
	err := rs.Unmarshal([]byte(`{"success": true, "errcode": "success", "errtext": "Success",
		"data": [{"ts_utc": "2023-03-04T07:00:00Z", "event": "sleep"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if !rs.Success || len(rs.Data) != 1 || rs.Data[0].Event != "sleep" {
		t.Errorf("unexpected response %+v", rs)
	}
	if rs.Err() != nil {
		t.Errorf("successful response should not be an error")
	}

	rs = Response{}
	err = rs.Unmarshal([]byte(`{"success": false, "errcode": "missingdata", "errtext": "No event"}`))
	if err != nil {
		t.Fatal(err)
	}
	var errResp *ErrResponse
	if !errors.As(rs.Err(), &errResp) {
		t.Fatalf("expected an ErrResponse, got %v", rs.Err())
	}
	if errResp.Code != CodeMissingData {
		t.Errorf("code mismatch: %s", errResp.Code)
	}
}

func TestResponseWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := NewResponseWriter(rec)

	_, err := rw.WriteMessage(NewErrResponse(CodeNoAction, "No action given"))
	if err != nil {
		t.Fatal(err)
	}
	if rec.Code != 200 {
		t.Errorf("protocol errors should still be 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("unexpected content type %s", ct)
	}
	if !strings.Contains(rec.Body.String(), `"errcode":"noaction"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}
