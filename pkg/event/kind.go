/*
 * Copyright (c) 2023, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package event

import (
	"errors"
	"fmt"
)

// ErrUnknownKind is returned for any kind outside of the fixed enumeration.
var ErrUnknownKind = errors.New("unknown event kind")

// Kind identifies what happened. The string value is what crosses the wire
// and what the stores persist.
type Kind string

const (
	NurseLeft   Kind = "nurse_left"
	NurseRight  Kind = "nurse_right"
	NurseBottle Kind = "nurse_bottle"
	Sleep       Kind = "sleep"
	Awake       Kind = "awake"
	Test        Kind = "test"
)

// Kinds lists every kind in display order.
var Kinds = []Kind{NurseLeft, NurseRight, NurseBottle, Sleep, Awake, Test}

var labels = map[Kind]string{
	NurseLeft:   "🤱 Stillen links",
	NurseRight:  "🤱 Stillen rechts",
	NurseBottle: "🍼 Flasche",
	Sleep:       "😴 Schlafen",
	Awake:       "⏰ Wach",
	Test:        "🧪  Test",
}

// ParseKind converts a wire string into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

func (k Kind) Valid() bool {
	_, ok := labels[k]
	return ok
}

// Label returns the display text for the kind. Kinds outside the enumeration
// never produce a blank label, they produce ErrUnknownKind.
func (k Kind) Label() (string, error) {
	l, ok := labels[k]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, string(k))
	}
	return l, nil
}

func (k Kind) String() string {
	return string(k)
}
