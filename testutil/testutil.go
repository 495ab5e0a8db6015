// Package testutil holds fixture helpers shared by tests across the
// module.
package testutil

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// BuildFeedZip packs CSV file contents (one string per line) into a
// GTFS zip archive.
func BuildFeedZip(t testing.TB, files map[string][]string) []byte {
	t.Helper()

	buf := &bytes.Buffer{}
	w := zip.NewWriter(buf)
	for filename, lines := range files {
		f, err := w.Create(filename)
		require.NoError(t, err)
		_, err = f.Write([]byte(strings.Join(lines, "\n") + "\n"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// SampleFeedFiles is a small feed: two stations a trip apart plus a
// weekday-only trip, enough to exercise loading, searching and serving.
func SampleFeedFiles() map[string][]string {
	return map[string][]string{
		"calendar.txt": {
			"service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date",
			"1,0,0,0,0,0,0,1,20200322,20201213",
			"2,1,1,1,1,1,0,0,20200322,20201213",
		},
		"stops.txt": {
			"stop_id,stop_name,stop_lat,stop_lon,location_type,parent_station",
			"900100001,U Alexanderplatz,52.5219,13.4132,1,",
			"900100002,U Alexanderplatz,52.5219,13.4132,0,900100001",
			"900100011,U Klosterstrasse,52.5171,13.4107,1,",
			"900100012,U Klosterstrasse,52.5171,13.4107,0,900100011",
		},
		"transfers.txt": {
			"from_stop_id,to_stop_id,transfer_type,min_transfer_time",
			"900100001,900100011,2,180",
		},
		"routes.txt": {
			"route_id,route_short_name,route_type,route_color",
			"17514_400,U2,400,8C6DAB",
		},
		"trips.txt": {
			"route_id,service_id,trip_id,trip_headsign",
			"17514_400,1,3100,Pankow",
			"17514_400,2,3101,Pankow",
		},
		"stop_times.txt": {
			"trip_id,arrival_time,departure_time,stop_id,stop_sequence",
			"3100,10:00:00,10:00:00,900100002,0",
			"3100,10:02:00,10:02:00,900100012,1",
			"3101,9:00:00,9:00:00,900100002,0",
			"3101,9:02:00,9:02:00,900100012,1",
		},
	}
}
