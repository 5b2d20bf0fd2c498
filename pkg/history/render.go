/*
 * Copyright (c) 2023, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package history

import (
	"fmt"
	"time"

	"github.com/dburkart/emmylog/pkg/event"
)

// RecentWindow is how far back a row counts as recent.
const RecentWindow = 24 * time.Hour

var weekdays = [7]string{"So", "Mo", "Di", "Mi", "Do", "Fr", "Sa"}

// Row is one rendered history entry.
type Row struct {
	Kind       event.Kind `json:"event"`
	When       string     `json:"when"`
	Ago        string     `json:"ago"`
	Label      string     `json:"label"`
	Annotation string     `json:"annotation,omitempty"`
	Recent     bool       `json:"recent"`
}

// Render walks events in chronological order and returns display rows, newest
// first. Each sleep row is annotated with how long the child was awake since
// the previous wake event, and each awake row with how long it slept since the
// previous sleep event.
func Render(events []event.Event, now time.Time, loc *time.Location) ([]Row, error) {
	if loc == nil {
		loc = time.UTC
	}

	var lastAwake, lastSleep *time.Time
	rows := make([]Row, 0, len(events))

	for i := range events {
		e := events[i]

		label, err := e.Kind.Label()
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}

		age := now.Sub(e.Time)
		row := Row{
			Kind:   e.Kind,
			When:   formatWhen(e.Time.In(loc)),
			Ago:    "vor " + FormatDuration(age),
			Label:  label,
			Recent: age < RecentWindow,
		}

		switch {
		case e.Kind == event.Awake && lastSleep != nil:
			row.Annotation = FormatDuration(e.Time.Sub(*lastSleep)) + " geschlafen"
		case e.Kind == event.Sleep && lastAwake != nil:
			row.Annotation = FormatDuration(e.Time.Sub(*lastAwake)) + " wach"
		}
		if row.Annotation != "" {
			row.Label += " (" + row.Annotation + ")"
		}

		rows = append(rows, row)

		switch e.Kind {
		case event.Awake:
			lastAwake = &e.Time
		case event.Sleep:
			lastSleep = &e.Time
		}
	}

	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}

	return rows, nil
}

// formatWhen prints "<weekday>, <day>.<month> <hour>:<minute>". The month is
// zero based, January prints as 0.
func formatWhen(t time.Time) string {
	return fmt.Sprintf("%s, %d.%d %d:%02d",
		weekdays[t.Weekday()], t.Day(), int(t.Month())-1, t.Hour(), t.Minute())
}
