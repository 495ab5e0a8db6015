package parse_test

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platy/transit-radar/gtfstime"
	"github.com/platy/transit-radar/model"
	"github.com/platy/transit-radar/parse"
)

func feedFS(files map[string][]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, lines := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(strings.Join(lines, "\n") + "\n")}
	}
	return fsys
}

func quietOpts() parse.Options {
	return parse.Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func testFeed() fstest.MapFS {
	return feedFS(map[string][]string{
		"calendar.txt": {
			"service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date",
			"1,0,0,0,0,0,0,1,20200322,20201213",
			"2,1,1,1,1,1,0,0,20200322,20201213",
		},
		"stops.txt": {
			"stop_id,stop_name,stop_lat,stop_lon,location_type,parent_station",
			"900100001,U Alexanderplatz,52.521,13.411,1,",
			"900100002,U Alexanderplatz,52.521,13.411,0,900100001",
			"900100003,U Alexanderplatz entrance,52.521,13.411,2,900100001",
			"900100011,U Klosterstrasse,52.517,13.411,1,",
			"900100012,U Klosterstrasse,52.517,13.411,0,900100011",
			"D_900100099,Oddball,52.5,13.4,0,900100001",
		},
		"transfers.txt": {
			"from_stop_id,to_stop_id,transfer_type,min_transfer_time",
			"900100001,900100011,2,180",
			"900100011,900100001,2,",
		},
		"routes.txt": {
			"route_id,route_short_name,route_type,route_color",
			"19105_700,147,700,B1C1D1",
			"17514_400,U2,400,8C6DAB",
			"99999_999,Odd,999,",
		},
		"trips.txt": {
			"route_id,service_id,trip_id,trip_headsign",
			"17514_400,1,3100,Pankow",
			"17514_400,2,3101,Pankow",
			"99999_999,1,3200,Nowhere",
		},
		"stop_times.txt": {
			"trip_id,arrival_time,departure_time,stop_id,stop_sequence",
			"3100,10:00:00,10:00:30,900100002,0",
			"3100,10:02:00,10:02:00,900100012,1",
			"3101,9:00:00,9:00:00,900100002,0",
			"3101,9:02:00,9:02:00,900100012,1",
			"3200,10:00:00,10:00:00,900100002,0",
		},
	})
}

func TestLoad(t *testing.T) {
	data, err := parse.Load(testFeed(), quietOpts())
	require.NoError(t, err)

	assert.Equal(t, "20200322", data.TimetableStartDate())
	assert.Contains(t, data.ServicesOfDay(model.Sunday), model.ServiceID(1))
	assert.Contains(t, data.ServicesOfDay(model.Monday), model.ServiceID(2))

	alex := data.Stop(900100001)
	require.NotNil(t, alex)
	assert.True(t, alex.IsStation())
	assert.ElementsMatch(t, []model.StopID{900100002, 900100003, 900100099}, alex.Children)

	// tolerant stop id parse: the D_ prefix is stripped
	oddball := data.Stop(900100099)
	require.NotNil(t, oddball)
	assert.Equal(t, "Oddball", oddball.Name)

	// transfers, with and without min time
	require.Len(t, alex.Transfers, 1)
	assert.Equal(t, model.StopID(900100011), alex.Transfers[0].To)
	assert.Equal(t, 3*time.Minute, alex.Transfers[0].MinTime)
	kloster := data.Stop(900100011)
	require.NotNil(t, kloster)
	require.Len(t, kloster.Transfers, 1)
	assert.Equal(t, time.Duration(0), kloster.Transfers[0].MinTime)

	// route id keeps the head of the underscore form
	trip := data.Trip(3100)
	require.NotNil(t, trip)
	assert.Equal(t, model.RouteID(17514), trip.Route.ID)
	assert.Equal(t, model.RouteTypeUrbanRailway, trip.Route.Type)
	assert.Equal(t, "U2", trip.Route.ShortName)
	require.Len(t, trip.StopTimes, 2)
	assert.Equal(t, gtfstime.FromHMS(10, 0, 30), trip.StopTimes[0].Departure)

	// the route with the unknown type and its trip are skipped
	assert.Nil(t, data.Trip(3200))
}

func TestLoadDayFilter(t *testing.T) {
	day := model.Sunday
	opts := quietOpts()
	opts.Day = &day
	data, err := parse.Load(testFeed(), opts)
	require.NoError(t, err)

	assert.NotNil(t, data.Trip(3100))
	assert.Nil(t, data.Trip(3101), "weekday trip filtered out")
}

func TestLoadSkipsMalformedRecords(t *testing.T) {
	fsys := testFeed()
	fsys["stops.txt"].Data = append(fsys["stops.txt"].Data,
		[]byte("no-digits-at-all,Broken,52.5,13.4,0,\n")...)
	fsys["stop_times.txt"].Data = append(fsys["stop_times.txt"].Data,
		[]byte("3100,25:99:00,26:00:00,900100012,2\n")...)

	data, err := parse.Load(fsys, quietOpts())
	require.NoError(t, err)

	// the loadable records all made it
	assert.NotNil(t, data.Stop(900100001))
	require.NotNil(t, data.Trip(3100))
	assert.Len(t, data.Trip(3100).StopTimes, 2)
}

func TestLoadMissingFile(t *testing.T) {
	fsys := testFeed()
	delete(fsys, "stop_times.txt")

	_, err := parse.Load(fsys, quietOpts())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stop_times.txt")
}
