/*
 * Copyright (c) 2022, Gideon Williams gideon@gideonw.com
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package proto

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
)

var (
	MessageOk        = Response{Success: true, Code: CodeSuccess, Text: "Success"}
	MessageDataAdded = Response{Success: true, Code: CodeDataAdded, Text: "Success"}
)

type (
	// Request is the envelope a client posts to the store. Event and
	// Timestamp are only meaningful for ActionAdd.
	Request struct {
		Action    Action `json:"action,omitempty"`
		Event     string `json:"event,omitempty"`
		Timestamp string `json:"ts,omitempty"`
	}

	// Response is the envelope the store answers with. Data is only
	// meaningful when Success is true.
	Response struct {
		Success bool          `json:"success"`
		Code    string        `json:"errcode"`
		Text    string        `json:"errtext"`
		Data    []EventRecord `json:"data,omitempty"`
	}

	// EventRecord is a single event as it crosses the wire.
	EventRecord struct {
		Event string `json:"event"`
		TsUTC string `json:"ts_utc"`
	}

	// ErrResponse is the error form of a response with success set to false.
	ErrResponse struct {
		Code string
		Text string
	}
)

// NewErrResponse builds a failed response envelope
func NewErrResponse(code, text string) Response {
	return Response{Success: false, Code: code, Text: text}
}

// Request
// --------------------------

// Marshal ...
func (rq Request) Marshal() ([]byte, error) {
	return json.Marshal(rq)
}

// Unmarshal ...
func (rq *Request) Unmarshal(b []byte) error {
	return json.Unmarshal(b, rq)
}

// UnmarshalJSON accepts fields of any JSON type so that a well formed body
// with a wrongly typed field is answered with the matching errcode instead of
// invalid_json. A non-string event decodes as empty (missingdata), a
// non-string action or ts keeps its JSON text and fails validation later.
func (rq *Request) UnmarshalJSON(b []byte) error {
	var raw struct {
		Action    json.RawMessage `json:"action"`
		Event     json.RawMessage `json:"event"`
		Timestamp json.RawMessage `json:"ts"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	action, _ := rawString(raw.Action)
	rq.Action = Action(action)
	if event, ok := rawString(raw.Event); ok {
		rq.Event = event
	} else {
		rq.Event = ""
	}
	rq.Timestamp, _ = rawString(raw.Timestamp)
	return nil
}

// rawString returns the value of a JSON string, "" for an absent or null
// value, and the JSON text itself with ok false for anything else.
func rawString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return string(raw), false
	}
	return s, true
}

func (rq Request) MarshalZerologObject(e *zerolog.Event) {
	e.Str("action", string(rq.Action))
	if rq.Event != "" {
		e.Str("event", rq.Event)
	}
	if rq.Timestamp != "" {
		e.Str("ts", rq.Timestamp)
	}
}

// Response
// --------------------------

// Marshal ...
func (rs Response) Marshal() ([]byte, error) {
	return json.Marshal(rs)
}

// Unmarshal ...
func (rs *Response) Unmarshal(b []byte) error {
	return json.Unmarshal(b, rs)
}

// Err returns nil for a successful response, and an *ErrResponse otherwise
func (rs Response) Err() error {
	if rs.Success {
		return nil
	}
	return &ErrResponse{Code: rs.Code, Text: rs.Text}
}

func (rs Response) MarshalZerologObject(e *zerolog.Event) {
	e.Bool("success", rs.Success).Str("errcode", rs.Code).Int("records", len(rs.Data))
}

// ErrResponse
// --------------------------

func (e *ErrResponse) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("request rejected: %s", e.Code)
	}
	return fmt.Sprintf("request rejected: %s (%s)", e.Text, e.Code)
}
