package server_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dburkart/emmylog/pkg/database"
	"github.com/dburkart/emmylog/pkg/event"
	"github.com/dburkart/emmylog/pkg/proto"
	"github.com/dburkart/emmylog/pkg/server"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2023, 3, 5, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, limit int) (*httptest.Server, database.Store) {
	t.Helper()

	store, err := database.NewFileStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)

	srv := server.New(zerolog.Nop(), store, server.Config{
		Options: server.Options{
			ListLimit: limit,
			Location:  time.FixedZone("CET", 3600),
			Now:       func() time.Time { return fixedNow },
		},
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, store
}

func post(t *testing.T, url, body string) proto.Response {
	t.Helper()

	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out proto.Response
	require.NoError(t, out.Unmarshal(raw))
	return out
}

func TestQueryErrors(t *testing.T) {
	ts, _ := newTestServer(t, 0)

	tt := []struct {
		test string
		body string
		code string
	}{
		{"malformed json", `{"action":`, proto.CodeInvalidJSON},
		{"no action", `{}`, proto.CodeNoAction},
		{"unsupported action", `{"action":"delete"}`, proto.CodeUnsupportedAction},
		{"add without event", `{"action":"add"}`, proto.CodeMissingData},
		{"add unknown event", `{"action":"add","event":"diaper"}`, proto.CodeUnknownEvent},
		{"add bad timestamp", `{"action":"add","event":"sleep","ts":"yesterday"}`, proto.CodeInvalidTimestamp},
		{"add numeric event", `{"action":"add","event":5}`, proto.CodeMissingData},
		{"add numeric timestamp", `{"action":"add","event":"sleep","ts":1678003200}`, proto.CodeInvalidTimestamp},
		{"numeric action", `{"action":1}`, proto.CodeUnsupportedAction},
		{"not an object", `["list"]`, proto.CodeInvalidJSON},
	}

	for _, tc := range tt {
		t.Run(tc.test, func(t *testing.T) {
			resp := post(t, ts.URL+"/query", tc.body)
			assert.False(t, resp.Success)
			assert.Equal(t, tc.code, resp.Code)
			assert.Empty(t, resp.Data)
		})
	}
}

func TestAddThenList(t *testing.T) {
	ts, store := newTestServer(t, 2)

	resp := post(t, ts.URL+"/query", `{"action":"add","event":"sleep","ts":"2023-03-05 09:00:00"}`)
	require.True(t, resp.Success)
	assert.Equal(t, proto.CodeDataAdded, resp.Code)

	resp = post(t, ts.URL+"/query.py", `{"action":"add","event":"awake","ts":""}`)
	require.True(t, resp.Success)

	resp = post(t, ts.URL+"/query", `{"action":"add","event":"nurse_left","ts":"2023-03-05 07:00:00"}`)
	require.True(t, resp.Success)

	resp = post(t, ts.URL+"/query", `{"action":"list"}`)
	require.True(t, resp.Success)
	assert.Equal(t, proto.CodeSuccess, resp.Code)
	assert.Equal(t, []proto.EventRecord{
		{Event: "sleep", TsUTC: "2023-03-05T08:00:00Z"},
		{Event: "awake", TsUTC: "2023-03-05T12:00:00Z"},
	}, resp.Data)

	records, err := store.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, event.NurseLeft, records[0].Kind)
	assert.Equal(t, "127.0.0.1", records[0].SourceIP)
	assert.NotEmpty(t, records[0].ID)
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t, 0)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
