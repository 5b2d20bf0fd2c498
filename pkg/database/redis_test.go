/*
 * Copyright (c) 2023, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package database

import (
	"encoding/json"
	"sort"
	"testing"
	"time"

	"github.com/dburkart/emmylog/pkg/event"
)

// Redis orders members of equal score byte by byte, sorting the encoded
// members reproduces what ZRANGE returns for events in the same second.
func TestRedisMembersKeepSubmissionOrder(t *testing.T) {
	at := startTime()
	created := time.Date(2023, 3, 5, 8, 0, 0, 0, time.UTC)

	var members []string
	var want []string
	for i, kind := range []event.Kind{event.Sleep, event.Awake, event.NurseLeft, event.Test} {
		r := NewRecord(kind, at, "127.0.0.1")
		r.Created = created.Add(time.Duration(i) * time.Millisecond)
		m, err := encodeMember(r)
		if err != nil {
			t.Fatal(err)
		}
		members = append(members, m)
		want = append(want, r.ID)
	}

	members[0], members[3] = members[3], members[0]
	members[1], members[2] = members[2], members[1]
	sort.Strings(members)

	for i, m := range members {
		r, err := decodeMember(m)
		if err != nil {
			t.Fatal(err)
		}
		if r.ID != want[i] {
			t.Errorf("member %d: expected %s, got %s", i, want[i], r.ID)
		}
	}
}

func TestRedisDecodeLegacyMember(t *testing.T) {
	r := NewRecord(event.Sleep, startTime(), "127.0.0.1")
	body, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}

	got, err := decodeMember(string(body))
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != r.ID || !got.Time.Equal(r.Time) {
		t.Errorf("expected %+v, got %+v", r, got)
	}

	if _, err := decodeMember("00000000000000000001|{"); err == nil {
		t.Error("expected an error for a truncated member")
	}
}
