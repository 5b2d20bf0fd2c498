/*
 * Copyright (c) 2022, Gideon Williams gideon@gideonw.com
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package proto

// Action names the operation a request asks the store to perform.
type Action string

var (
	// ActionList retrieves the event history
	ActionList Action = "list"
	// ActionAdd appends a single event
	ActionAdd Action = "add"
)

// Error codes carried in the errcode field of a response
const (
	CodeSuccess           = "success"
	CodeDataAdded         = "data_added"
	CodeInvalidJSON       = "invalid_json"
	CodeNoAction          = "noaction"
	CodeUnsupportedAction = "unsupported_action"
	CodeMissingData       = "missingdata"
	CodeUnknownEvent      = "unknown_event"
	CodeInvalidTimestamp  = "invalid_timestamp"
	CodeStoreError        = "store_error"
)
