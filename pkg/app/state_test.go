package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dburkart/emmylog/pkg/event"
	"github.com/dburkart/emmylog/pkg/proto"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	mu     sync.Mutex
	lists  int
	added  []event.Kind
	addErr error
	listFn func(call int) ([]event.Event, error)
}

func (f *fakeGateway) List(_ context.Context) ([]event.Event, error) {
	f.mu.Lock()
	f.lists++
	call := f.lists
	f.mu.Unlock()
	return f.listFn(call)
}

func (f *fakeGateway) Add(_ context.Context, kind event.Kind, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return f.addErr
	}
	f.added = append(f.added, kind)
	return nil
}

var (
	base  = time.Date(2023, 3, 5, 8, 0, 0, 0, time.UTC)
	older = []event.Event{{Kind: event.Sleep, Time: base}}
	newer = []event.Event{{Kind: event.Sleep, Time: base}, {Kind: event.Awake, Time: base.Add(time.Hour)}}
)

func TestRefresh(t *testing.T) {
	gw := &fakeGateway{listFn: func(int) ([]event.Event, error) { return newer, nil }}
	s := New(gw, zerolog.Nop())

	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, newer, s.Events())
	assert.False(t, s.Updated().IsZero())

	rows, err := s.Rows(base.Add(2*time.Hour), time.UTC)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "⏰ Wach (1:00 Std:Min geschlafen)", rows[0].Label)
}

func TestRefreshFailureKeepsEvents(t *testing.T) {
	gw := &fakeGateway{listFn: func(call int) ([]event.Event, error) {
		if call == 1 {
			return older, nil
		}
		return nil, &proto.ErrResponse{Code: proto.CodeStoreError, Text: "disk full"}
	}}
	s := New(gw, zerolog.Nop())

	require.NoError(t, s.Refresh(context.Background()))
	err := s.Refresh(context.Background())
	require.Error(t, err)
	assert.Equal(t, err, s.Err())
	assert.Equal(t, older, s.Events())
}

func TestStaleRefreshDropped(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	gw := &fakeGateway{listFn: func(call int) ([]event.Event, error) {
		if call == 1 {
			close(started)
			<-release
			return older, nil
		}
		return newer, nil
	}}
	s := New(gw, zerolog.Nop())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, s.Refresh(context.Background()))
	}()

	<-started
	require.NoError(t, s.Refresh(context.Background()))
	close(release)
	wg.Wait()

	assert.Equal(t, newer, s.Events())
}

func TestRecord(t *testing.T) {
	gw := &fakeGateway{listFn: func(int) ([]event.Event, error) { return newer, nil }}
	s := New(gw, zerolog.Nop())

	require.NoError(t, s.Record(context.Background(), event.TriggerNurseLeft, ""))
	assert.Equal(t, []event.Kind{event.NurseLeft}, gw.added)
	assert.Equal(t, 1, gw.lists)
	assert.Equal(t, newer, s.Events())
}

func TestRecordFailureSkipsRefresh(t *testing.T) {
	gw := &fakeGateway{
		addErr: &proto.ErrResponse{Code: proto.CodeInvalidTimestamp},
		listFn: func(int) ([]event.Event, error) { return newer, nil },
	}
	s := New(gw, zerolog.Nop())

	assert.Error(t, s.Record(context.Background(), event.TriggerSleep, "gestern"))
	assert.Equal(t, 0, gw.lists)
	assert.Empty(t, s.Events())

	assert.ErrorIs(t, s.Record(context.Background(), event.Trigger(99), ""), event.ErrUnknownTrigger)
}

func TestStaleRefreshFailureIgnored(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	gw := &fakeGateway{listFn: func(call int) ([]event.Event, error) {
		if call == 1 {
			close(started)
			<-release
			return nil, &proto.ErrResponse{Code: proto.CodeStoreError}
		}
		return newer, nil
	}}
	s := New(gw, zerolog.Nop())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.Error(t, s.Refresh(context.Background()))
	}()

	<-started
	require.NoError(t, s.Refresh(context.Background()))
	close(release)
	wg.Wait()

	assert.NoError(t, s.Err())
	assert.Equal(t, newer, s.Events())
}

func TestRecordThenRefreshFailure(t *testing.T) {
	gw := &fakeGateway{listFn: func(int) ([]event.Event, error) {
		return nil, &proto.ErrResponse{Code: proto.CodeStoreError}
	}}
	s := New(gw, zerolog.Nop())

	err := s.Record(context.Background(), event.TriggerWake, "")
	var refreshErr *RefreshError
	require.True(t, errors.As(err, &refreshErr))
	assert.Equal(t, []event.Kind{event.Awake}, gw.added)

	var rejected *proto.ErrResponse
	assert.True(t, errors.As(err, &rejected))
}
