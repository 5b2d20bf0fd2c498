/*
 * Copyright (c) 2022, Gideon Williams gideon@gideonw.com
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package repl

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/andreyvit/diff"
	"github.com/dburkart/emmylog/pkg/event"
	"github.com/dburkart/emmylog/pkg/history"
)

func TestParseREPLCommand(t *testing.T) {
	tt := []struct {
		test  string
		input string
		want  Command
	}{
		{"list", "list", Command{Type: CommandList}},
		{"list padded", "  LIST  ", Command{Type: CommandList}},
		{"help", "help", Command{Type: CommandHelp}},
		{"exit", "exit", Command{Type: CommandExit}},
		{"quit", "quit", Command{Type: CommandExit}},
		{"add now", "add sleep", Command{Type: CommandAdd, Kind: event.Sleep}},
		{"add with time", "add nurse_bottle 2023-03-05 09:15:00",
			Command{Type: CommandAdd, Kind: event.NurseBottle, Timestamp: "2023-03-05 09:15:00"}},
		{"trigger id", "btn_wake", Command{Type: CommandAdd, Kind: event.Awake}},
		{"trigger id with time", "btn_nurse_right 2023-03-05 06:00:00",
			Command{Type: CommandAdd, Kind: event.NurseRight, Timestamp: "2023-03-05 06:00:00"}},
	}

	for _, tc := range tt {
		t.Run(tc.test, func(t *testing.T) {
			got, err := ParseREPLCommand(tc.input)
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if got != tc.want {
				t.Errorf("wanted %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestParseREPLCommandErrors(t *testing.T) {
	tt := []struct {
		test  string
		input string
		err   error
	}{
		{"empty", "   ", ErrEmptyCommand},
		{"add no kind", "add", ErrMissingKind},
		{"add unknown kind", "add diaper", event.ErrUnknownKind},
		{"unknown command", "append foo", ErrUnknownCommand},
		{"unknown trigger", "btn_diaper", ErrUnknownCommand},
	}

	for _, tc := range tt {
		t.Run(tc.test, func(t *testing.T) {
			_, err := ParseREPLCommand(tc.input)
			if !errors.Is(err, tc.err) {
				t.Errorf("wanted %v, got %v", tc.err, err)
			}
		})
	}
}

func TestSuggest(t *testing.T) {
	_, err := ParseREPLCommand("add slep")
	if err == nil || !strings.Contains(err.Error(), `did you mean "sleep"?`) {
		t.Errorf("wanted a suggestion for sleep, got %v", err)
	}

	if s := Suggest("xyz"); s != "" {
		t.Errorf("wanted no suggestion, got %q", s)
	}
}

var rows = HistoryTable{
	{Kind: event.Awake, When: "So, 5.2 10:00", Ago: "vor 2:00 Std:Min", Label: "⏰ Wach (1:00 Std:Min geschlafen)",
		Annotation: "1:00 Std:Min geschlafen", Recent: true},
	{Kind: event.Sleep, When: "Mi, 1.2 9:00", Ago: "vor 4 Tag und 3:00 Std:Min", Label: "😴 Schlafen"},
}

func TestCSVWriter(t *testing.T) {
	var b bytes.Buffer
	if err := NewOutputWriter(&b, "csv").Write(rows); err != nil {
		t.Fatal(err)
	}

	want := `When,Ago,Event
"* So, 5.2 10:00",vor 2:00 Std:Min,⏰ Wach (1:00 Std:Min geschlafen)
"Mi, 1.2 9:00",vor 4 Tag und 3:00 Std:Min,😴 Schlafen
`
	if a, e := b.String(), want; a != e {
		t.Errorf("unexpected csv output:\n%v", diff.LineDiff(e, a))
	}
}

func TestJSONWriter(t *testing.T) {
	var b bytes.Buffer
	if err := NewOutputWriter(&b, "json").Write(HistoryTable{rows[1]}); err != nil {
		t.Fatal(err)
	}

	want := `[{"event":"sleep","when":"Mi, 1.2 9:00","ago":"vor 4 Tag und 3:00 Std:Min","label":"😴 Schlafen","recent":false}]
`
	if a, e := b.String(), want; a != e {
		t.Errorf("unexpected json output:\n%v", diff.LineDiff(e, a))
	}
}

func TestTextWriter(t *testing.T) {
	var b bytes.Buffer
	if err := NewOutputWriter(&b, "text").Write(rows); err != nil {
		t.Fatal(err)
	}

	out := b.String()
	for _, want := range []string{"* So, 5.2 10:00", "vor 4 Tag und 3:00 Std:Min", "😴 Schlafen"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output is missing %q:\n%s", want, out)
		}
	}
}

func TestHistoryTableFromRender(t *testing.T) {
	events := []event.Event{{Kind: event.Test}}
	rendered, err := history.Render(events, events[0].Time, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := HistoryTable(rendered).Values()[0][2]; got != "🧪  Test" {
		t.Errorf("wanted the test label, got %q", got)
	}
}
