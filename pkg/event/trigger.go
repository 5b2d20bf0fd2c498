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

var ErrUnknownTrigger = errors.New("unknown trigger")

// A Trigger is one of the fixed user actions that records an event.
type Trigger int

const (
	TriggerWake Trigger = iota
	TriggerSleep
	TriggerNurseLeft
	TriggerNurseRight
	TriggerNurseBottle
	TriggerTest
)

// Triggers lists every trigger in the order the front ends present them.
var Triggers = []Trigger{
	TriggerWake,
	TriggerSleep,
	TriggerNurseLeft,
	TriggerNurseRight,
	TriggerNurseBottle,
	TriggerTest,
}

type triggerInfo struct {
	id   string
	kind Kind
	key  string
}

var triggerTable = [...]triggerInfo{
	TriggerWake:        {"btn_wake", Awake, "w"},
	TriggerSleep:       {"btn_sleep", Sleep, "s"},
	TriggerNurseLeft:   {"btn_nurse_left", NurseLeft, "l"},
	TriggerNurseRight:  {"btn_nurse_right", NurseRight, "r"},
	TriggerNurseBottle: {"btn_nurse_bottle", NurseBottle, "b"},
	TriggerTest:        {"btn_test", Test, "t"},
}

// ParseTrigger looks a trigger up by its stable id, e.g. "btn_sleep".
func ParseTrigger(id string) (Trigger, error) {
	for _, t := range Triggers {
		if triggerTable[t].id == id {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTrigger, id)
}

// TriggerForKey returns the trigger bound to a dashboard key.
func TriggerForKey(key string) (Trigger, bool) {
	for _, t := range Triggers {
		if triggerTable[t].key == key {
			return t, true
		}
	}
	return 0, false
}

// TriggerForKind returns the trigger that records kind.
func TriggerForKind(kind Kind) (Trigger, bool) {
	for _, t := range Triggers {
		if triggerTable[t].kind == kind {
			return t, true
		}
	}
	return 0, false
}

func (t Trigger) valid() bool {
	return t >= 0 && int(t) < len(triggerTable)
}

// ID is the stable symbolic id of the trigger.
func (t Trigger) ID() string {
	if !t.valid() {
		return ""
	}
	return triggerTable[t].id
}

// Kind is the event kind recorded by the trigger.
func (t Trigger) Kind() Kind {
	if !t.valid() {
		return ""
	}
	return triggerTable[t].kind
}

// Key is the dashboard key bound to the trigger.
func (t Trigger) Key() string {
	if !t.valid() {
		return ""
	}
	return triggerTable[t].key
}

func (t Trigger) String() string {
	return t.ID()
}
