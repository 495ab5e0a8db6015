package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platy/transit-radar/datasync"
	"github.com/platy/transit-radar/model"
	"github.com/platy/transit-radar/parse"
	"github.com/platy/transit-radar/schedule"
	"github.com/platy/transit-radar/testutil"
)

func testServer(t *testing.T) (*Server, *schedule.Data) {
	t.Helper()

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	fsys := testutil.BuildFeedZip(t, testutil.SampleFeedFiles())
	data, err := parse.LoadZip(fsys, parse.Options{Logger: quiet})
	require.NoError(t, err)

	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	s := New(data, berlin, nil, 30, quiet)
	// a Sunday morning in the timetable period
	s.timeNow = func() time.Time {
		return time.Date(2020, 3, 22, 10, 0, 0, 0, berlin)
	}
	return s, data
}

func TestStationSearch(t *testing.T) {
	s, _ := testServer(t)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/searchStation/alex")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var results []stationLookup
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&results))
	require.Len(t, results, 1)
	assert.Equal(t, model.StopID(900100001), results[0].StopID)
	assert.Equal(t, "U Alexanderplatz", results[0].Name)
}

func TestRadarTree(t *testing.T) {
	s, _ := testServer(t)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/from/U%20Alexanderplatz?ubahn=true&start=10:00:00&minutes=30")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tree Tree
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tree))

	require.Len(t, tree.Stops, 2)
	assert.Equal(t, "U Alexanderplatz", tree.Stops[0].Name)
	assert.Equal(t, 0, tree.Stops[0].Seconds)
	assert.Equal(t, "U Klosterstrasse", tree.Stops[1].Name)
	assert.Equal(t, 120, tree.Stops[1].Seconds)

	require.Len(t, tree.Trips, 1)
	assert.Equal(t, "U2", tree.Trips[0].RouteName)
	require.Len(t, tree.Trips[0].Segments, 1)
	assert.Equal(t, 0, tree.Trips[0].Segments[0].FromSeconds)
	assert.Equal(t, 120, tree.Trips[0].Segments[0].ToSeconds)

	assert.Equal(t, "sun", tree.DepartureDay)
	assert.Equal(t, "10:00:00", tree.DepartureTime)
	assert.Equal(t, 30, tree.DurationMinutes)
	assert.Equal(t, "20200322", tree.TimetableDate)
}

func TestRadarModeFilter(t *testing.T) {
	s, _ := testServer(t)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	// bus filter excludes the only (ubahn) trip
	resp, err := http.Get(srv.URL + "/from/U%20Alexanderplatz?bus=true&start=10:00:00")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tree Tree
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tree))
	assert.Len(t, tree.Stops, 1)
	assert.Empty(t, tree.Trips)
}

func TestSyncWebsocket(t *testing.T) {
	s, _ := testServer(t)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/sync/U%20Alexanderplatz", nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	require.NoError(t, wsjson.Write(ctx, conn, syncRequest{UBahn: true, Start: "10:00:00", Minutes: 30}))
	var first datasync.SyncData
	require.NoError(t, wsjson.Read(ctx, conn, &first))
	require.NotNil(t, first.Initial)
	assert.Equal(t, uint64(1), first.UpdateNumber)
	assert.NotEmpty(t, first.Initial.Stops)
	assert.NotEmpty(t, first.Initial.Trips)

	// identical query again: an empty increment
	require.NoError(t, wsjson.Write(ctx, conn, syncRequest{UBahn: true, Start: "10:00:00", Minutes: 30}))
	var second datasync.SyncData
	require.NoError(t, wsjson.Read(ctx, conn, &second))
	require.NotNil(t, second.Increment)
	assert.Equal(t, uint64(2), second.UpdateNumber)
	assert.Empty(t, second.Increment.Stops)
	assert.Empty(t, second.Increment.Trips)
}

func TestRadarUnknownStation(t *testing.T) {
	s, _ := testServer(t)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/from/Nirgendwo?ubahn=true")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRadarBadMinutes(t *testing.T) {
	s, _ := testServer(t)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/from/U%20Alexanderplatz?ubahn=true&minutes=nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
