/*
 * Copyright (c) 2023, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package event

import (
	"fmt"
	"strings"
	"time"
)

// TimeFormat is the UTC timestamp format stored and sent over the wire.
const TimeFormat = "2006-01-02T15:04:05Z"

// InputFormat is the local time format users type when back-dating an event.
const InputFormat = "2006-01-02 15:04:05"

type Event struct {
	Kind Kind
	Time time.Time
}

// ParseTime parses a wire timestamp. Anything RFC 3339 compatible is
// accepted, the result is always in UTC.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// FormatTime renders t in the wire format.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// ParseSubmitted turns the timestamp a user typed into an absolute time. An
// empty input means "now". Otherwise the input must be InputFormat and is
// interpreted in loc.
func ParseSubmitted(input string, now time.Time, loc *time.Location) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return now.UTC().Truncate(time.Second), nil
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(InputFormat, input, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("cannot parse timestamp %q, expected YYYY-MM-DD HH:MM:SS", input)
	}
	return t.UTC(), nil
}
