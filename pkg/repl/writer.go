/*
 * Copyright (c) 2023, Gideon Williams gideon@gideonw.com
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package repl

import (
	"encoding/csv"
	"encoding/json"
	"io"

	"github.com/dburkart/emmylog/pkg/history"
	"github.com/olekukonko/tablewriter"
)

// Printable is anything that can be laid out as a table.
type Printable interface {
	Headers() []string
	Values() [][]string
}

// HistoryTable prints rendered history rows.
type HistoryTable []history.Row

func (h HistoryTable) Headers() []string {
	return []string{"When", "Ago", "Event"}
}

func (h HistoryTable) Values() [][]string {
	values := make([][]string, 0, len(h))
	for _, r := range h {
		when := r.When
		if r.Recent {
			when = "* " + when
		}
		values = append(values, []string{when, r.Ago, r.Label})
	}
	return values
}

type OutputWriter interface {
	Write(v Printable) error
}

type CSVWriter struct {
	w io.Writer
}

type TextWriter struct {
	w io.Writer
}

type JSONWriter struct {
	w io.Writer
}

// Formats lists the accepted output format names.
var Formats = []string{"text", "csv", "json"}

func NewOutputWriter(w io.Writer, t string) OutputWriter {
	switch t {
	case "csv":
		return CSVWriter{
			w,
		}
	case "json":
		return JSONWriter{
			w,
		}
	}
	return TextWriter{
		w,
	}
}

func (w CSVWriter) Write(v Printable) error {
	wtr := csv.NewWriter(w.w)
	if err := wtr.Write(v.Headers()); err != nil {
		return err
	}
	return wtr.WriteAll(v.Values())
}

func (w TextWriter) Write(v Printable) error {
	headers := v.Headers()
	header := make([]any, len(headers))
	for i := range headers {
		header[i] = headers[i]
	}

	table := tablewriter.NewWriter(w.w)
	table.Header(header...)
	if err := table.Bulk(v.Values()); err != nil {
		return err
	}
	return table.Render()
}

func (w JSONWriter) Write(v Printable) error {
	enc := json.NewEncoder(w.w)
	return enc.Encode(v)
}
