/*
 * Copyright (c) 2022, Gideon Williams gideon@gideonw.com
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package proto

import (
	"net/http"
)

type Marshaler interface {
	Marshal() ([]byte, error)
}

type ResponseWriter struct {
	w http.ResponseWriter
}

// NewResponseWriter wraps an http.ResponseWriter so envelopes can be written
// with the right content type.
func NewResponseWriter(w http.ResponseWriter) ResponseWriter {
	return ResponseWriter{
		w: w,
	}
}

func (rw ResponseWriter) Write(b []byte) (int, error) {
	return rw.w.Write(b)
}

// WriteMessage marshals t and writes it with a 200 status. Protocol level
// failures travel inside the envelope, not in the status code.
func (rw ResponseWriter) WriteMessage(t Marshaler) (int, error) {
	b, err := t.Marshal()
	if err != nil {
		http.Error(rw.w, err.Error(), http.StatusInternalServerError)
		return 0, err
	}

	rw.w.Header().Set("Content-Type", "application/json")
	rw.w.WriteHeader(http.StatusOK)
	return rw.w.Write(append(b, '\n'))
}
