/*
 * Copyright (c) 2023, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package app

import (
	"context"
	"sync"
	"time"

	"github.com/dburkart/emmylog/pkg/event"
	"github.com/dburkart/emmylog/pkg/history"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Gateway is the part of a client the application state needs.
type Gateway interface {
	List(context.Context) ([]event.Event, error)
	Add(ctx context.Context, kind event.Kind, ts string) error
}

// RefreshError is returned by Record when the event was stored but the
// refresh that followed failed.
type RefreshError struct {
	Err error
}

func (e *RefreshError) Error() string {
	return "event recorded, refresh failed: " + e.Err.Error()
}

func (e *RefreshError) Unwrap() error {
	return e.Err
}

// State owns the last known event history. Refreshes are numbered as they
// are issued, and a result is only applied when no later refresh has been
// applied already, so a slow response can never overwrite a newer one.
type State struct {
	gw  Gateway
	log zerolog.Logger

	mu      sync.Mutex
	events  []event.Event
	updated time.Time
	issued  uint64
	applied uint64
	lastErr error
}

func New(gw Gateway, log zerolog.Logger) *State {
	return &State{gw: gw, log: log}
}

// Refresh lists the history and replaces the known events with the result.
// On failure the known events are left untouched and the error is returned.
func (s *State) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.issued++
	seq := s.issued
	s.mu.Unlock()

	events, err := s.gw.List(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq <= s.applied {
		// a later refresh already landed, its outcome stands
		s.log.Debug().Err(err).Uint64("seq", seq).Uint64("applied", s.applied).Msg("dropping stale refresh")
		return err
	}

	if err != nil {
		s.lastErr = err
		s.log.Error().Err(err).Uint64("seq", seq).Msg("refresh failed")
		return err
	}

	s.events = events
	s.applied = seq
	s.updated = time.Now()
	s.lastErr = nil
	s.log.Debug().Uint64("seq", seq).Int("events", len(events)).Msg("refresh applied")

	return nil
}

// Record adds the event bound to trigger and, once the store accepted it,
// refreshes the history exactly once. A failed refresh is reported as a
// *RefreshError, the event is stored regardless.
func (s *State) Record(ctx context.Context, trigger event.Trigger, ts string) error {
	kind := trigger.Kind()
	if kind == "" {
		return errors.Wrapf(event.ErrUnknownTrigger, "%d", int(trigger))
	}

	if err := s.gw.Add(ctx, kind, ts); err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		s.log.Error().Err(err).Str("trigger", trigger.ID()).Msg("unable to record event")
		return err
	}
	s.log.Info().Str("event", string(kind)).Str("ts", ts).Msg("event recorded")

	if err := s.Refresh(ctx); err != nil {
		return &RefreshError{Err: err}
	}
	return nil
}

// Events returns a copy of the known history in ascending order.
func (s *State) Events() []event.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]event.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Updated is when a refresh was last applied, zero if none was.
func (s *State) Updated() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updated
}

// Err is the error of the most recent failed operation, cleared by the
// next applied refresh.
func (s *State) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Rows renders the known history newest first.
func (s *State) Rows(now time.Time, loc *time.Location) ([]history.Row, error) {
	return history.Render(s.Events(), now, loc)
}
