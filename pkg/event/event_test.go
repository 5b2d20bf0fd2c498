/*
 * Copyright (c) 2023, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package event

import (
	"errors"
	"testing"
	"time"
)

func TestLabels(t *testing.T) {
	tt := []struct {
		kind  Kind
		label string
	}{
		{NurseLeft, "🤱 Stillen links"},
		{NurseRight, "🤱 Stillen rechts"},
		{NurseBottle, "🍼 Flasche"},
		{Sleep, "😴 Schlafen"},
		{Awake, "⏰ Wach"},
		{Test, "🧪  Test"},
	}

	for _, tc := range tt {
		t.Run(string(tc.kind), func(t *testing.T) {
			l, err := tc.kind.Label()
			if err != nil {
				t.Fatal(err)
			}
			if l != tc.label {
				t.Errorf("label mismatch: %q != %q", l, tc.label)
			}
		})
	}

	if len(tt) != len(Kinds) {
		t.Errorf("expected %d kinds, found %d", len(tt), len(Kinds))
	}
}

func TestUnknownKind(t *testing.T) {
	l, err := Kind("diaper").Label()
	if !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
	if l != "" {
		t.Errorf("expected no label, got %q", l)
	}

	_, err = ParseKind("")
	if !errors.Is(err, ErrUnknownKind) {
		t.Errorf("empty kind should not parse")
	}

	k, err := ParseKind("sleep")
	if err != nil || k != Sleep {
		t.Errorf("sleep should parse, got %v %v", k, err)
	}
}

func TestTriggers(t *testing.T) {
	tt := []struct {
		id   string
		kind Kind
	}{
		{"btn_wake", Awake},
		{"btn_sleep", Sleep},
		{"btn_nurse_left", NurseLeft},
		{"btn_nurse_right", NurseRight},
		{"btn_nurse_bottle", NurseBottle},
		{"btn_test", Test},
	}

	for _, tc := range tt {
		t.Run(tc.id, func(t *testing.T) {
			trig, err := ParseTrigger(tc.id)
			if err != nil {
				t.Fatal(err)
			}
			if trig.Kind() != tc.kind {
				t.Errorf("kind mismatch: %s != %s", trig.Kind(), tc.kind)
			}
			if trig.ID() != tc.id {
				t.Errorf("id mismatch: %s != %s", trig.ID(), tc.id)
			}
			byKey, ok := TriggerForKey(trig.Key())
			if !ok || byKey != trig {
				t.Errorf("key %q does not map back to %s", trig.Key(), tc.id)
			}
			byKind, ok := TriggerForKind(tc.kind)
			if !ok || byKind != trig {
				t.Errorf("kind %s does not map back to %s", tc.kind, tc.id)
			}
		})
	}

	_, err := ParseTrigger("btn_dance")
	if !errors.Is(err, ErrUnknownTrigger) {
		t.Errorf("expected ErrUnknownTrigger, got %v", err)
	}
	if Trigger(42).Kind() != "" {
		t.Error("out of range trigger should have no kind")
	}
}

func TestParseSubmitted(t *testing.T) {
	now := time.Date(2023, 3, 4, 12, 30, 15, 500, time.UTC)
	berlin := time.FixedZone("CET", 3600)

	got, err := ParseSubmitted("", now, berlin)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(now.Truncate(time.Second)) {
		t.Errorf("empty input should mean now, got %s", got)
	}

	got, err = ParseSubmitted("2023-03-04 08:00:00", now, berlin)
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2023, 3, 4, 7, 0, 0, 0, time.UTC)
	if !got.Equal(want) || got.Location() != time.UTC {
		t.Errorf("expected %s, got %s", want, got)
	}

	_, err = ParseSubmitted("yesterday", now, berlin)
	if err == nil {
		t.Error("garbage should not parse")
	}
}

func TestWireTime(t *testing.T) {
	ts := time.Date(2023, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 7200))
	s := FormatTime(ts)
	if s != "2023-01-02T01:04:05Z" {
		t.Errorf("unexpected wire format %s", s)
	}
	back, err := ParseTime(s)
	if err != nil {
		t.Fatal(err)
	}
	if !back.Equal(ts) {
		t.Errorf("round trip mismatch: %s != %s", back, ts)
	}
}
