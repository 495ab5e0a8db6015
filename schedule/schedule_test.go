package schedule_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platy/transit-radar/gtfstime"
	"github.com/platy/transit-radar/model"
	"github.com/platy/transit-radar/schedule"
)

func sunServices(ids ...model.ServiceID) map[model.Day]map[model.ServiceID]struct{} {
	set := map[model.ServiceID]struct{}{}
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return map[model.Day]map[model.ServiceID]struct{}{model.Sunday: set}
}

// Two stations with one platform each and a single trip between them.
func buildSmall(t *testing.T) *schedule.Data {
	t.Helper()

	b := schedule.NewBuilder(sunServices(1), "20200322")
	b.AddStation(100, "Alpha", 52.5, 13.4)
	b.AddStation(200, "Beta", 52.6, 13.5)
	b.AddStopOrPlatform(101, "Alpha platform", 52.5, 13.4, 100)
	b.AddStopOrPlatform(201, "Beta platform", 52.6, 13.5, 200)
	b.AddEntranceOrExit(102, "Alpha entrance", 52.5, 13.4, 100)
	b.AddTransfer(100, 200, 2*time.Minute)
	b.AddRoute(7, "U7", model.RouteTypeUrbanRailway, "FF0000")
	b.AddTrip(1, 7, 1)
	b.AddTripStop(1, gtfstime.FromHMS(10, 0, 0), gtfstime.FromHMS(10, 0, 0), 101)
	b.AddTripStop(1, gtfstime.FromHMS(10, 5, 0), gtfstime.FromHMS(10, 5, 30), 201)
	return b.Build()
}

func TestBuilderLinksChildren(t *testing.T) {
	data := buildSmall(t)

	alpha := data.Stop(100)
	require.NotNil(t, alpha)
	assert.ElementsMatch(t, []model.StopID{101, 102}, alpha.Children)

	for _, childID := range alpha.Children {
		child := data.Stop(childID)
		require.NotNil(t, child)
		parent, ok := child.ParentStation()
		require.True(t, ok)
		assert.Equal(t, model.StopID(100), parent)
	}
}

func TestBuilderIndexesDepartures(t *testing.T) {
	data := buildSmall(t)

	trip := data.Trip(1)
	require.NotNil(t, trip)
	require.Len(t, trip.StopTimes, 2)

	// every departure slot entry points back at a matching stop time
	for _, stop := range data.Stops() {
		for _, slot := range stop.Departures {
			for _, ref := range slot.Refs {
				st := data.Trip(ref.TripID).StopTimes[ref.Index]
				assert.Equal(t, stop.ID, st.StopID)
				assert.Equal(t, slot.Time, st.Departure)
			}
		}
	}

	// stop times within the trip are ordered
	for i := 0; i+1 < len(trip.StopTimes); i++ {
		assert.LessOrEqual(t, trip.StopTimes[i].Arrival, trip.StopTimes[i].Departure)
		assert.LessOrEqual(t, trip.StopTimes[i].Departure, trip.StopTimes[i+1].Arrival)
	}
}

func TestBuilderPanics(t *testing.T) {
	assert.Panics(t, func() {
		b := schedule.NewBuilder(nil, "")
		b.AddTransfer(1, 2, 0)
	}, "transfer from unknown stop")

	assert.Panics(t, func() {
		b := schedule.NewBuilder(nil, "")
		b.AddTrip(1, 99, 1)
	}, "trip of unknown route")

	assert.Panics(t, func() {
		b := schedule.NewBuilder(nil, "")
		b.AddStation(100, "Alpha", 0, 0)
		b.AddRoute(7, "U7", model.RouteTypeUrbanRailway, "")
		b.AddTrip(1, 7, 1)
		b.AddTripStop(1, gtfstime.FromHMS(10, 0, 0), gtfstime.FromHMS(10, 0, 0), 100)
	}, "trip stopping at a station")

	assert.Panics(t, func() {
		b := schedule.NewBuilder(nil, "")
		b.AddStopOrPlatform(101, "A", 0, 0, 0)
		b.AddStopOrPlatform(102, "B", 0, 0, 101)
		b.Build()
	}, "parent which is not a station")
}

func TestTripsFrom(t *testing.T) {
	data := buildSmall(t)
	platform := data.Stop(101)
	require.NotNil(t, platform)

	period := gtfstime.Between(gtfstime.FromHMS(10, 0, 0), gtfstime.FromHMS(10, 30, 0))

	departures := data.TripsFrom(platform, data.ServicesOfDay(model.Sunday), period)
	require.Len(t, departures, 1)
	assert.Equal(t, model.TripID(1), departures[0].Trip.ID)
	// stop times from the boarding stop to the end of the trip
	require.Len(t, departures[0].StopTimes, 2)
	assert.Equal(t, model.StopID(101), departures[0].StopTimes[0].StopID)
	assert.Equal(t, model.StopID(201), departures[0].StopTimes[1].StopID)

	// service not running -> nothing
	assert.Empty(t, data.TripsFrom(platform, map[model.ServiceID]struct{}{}, period))

	// period starting after the departure -> nothing
	late := gtfstime.Between(gtfstime.FromHMS(10, 0, 1), gtfstime.FromHMS(10, 30, 0))
	assert.Empty(t, data.TripsFrom(platform, data.ServicesOfDay(model.Sunday), late))
}

func TestStationByName(t *testing.T) {
	data := buildSmall(t)

	alpha, err := data.StationByName("Alpha")
	require.NoError(t, err)
	assert.Equal(t, model.StopID(100), alpha.ID)

	_, err = data.StationByName("Gamma")
	var notFound schedule.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "Gamma", notFound.Name)
}

func TestImportance(t *testing.T) {
	data := buildSmall(t)

	// Alpha: 1 transfer on the station + 1 departure slot on its platform
	assert.Equal(t, 2, data.Importance(data.Stop(100)))
	// Beta: 1 departure slot on its platform
	assert.Equal(t, 1, data.Importance(data.Stop(200)))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	data := buildSmall(t)

	var buf bytes.Buffer
	require.NoError(t, data.Encode(&buf))

	decoded, err := schedule.Decode(&buf)
	require.NoError(t, err)

	assert.Equal(t, data.TimetableStartDate(), decoded.TimetableStartDate())
	assert.Equal(t, data.Trips(), decoded.Trips())
	assert.Equal(t, data.Stops(), decoded.Stops())
	assert.Equal(t, data.ServicesOfDay(model.Sunday), decoded.ServicesOfDay(model.Sunday))
}

func TestBuildFrom(t *testing.T) {
	data := buildSmall(t)

	rb := data.BuildFrom()
	rb.KeepStop(101)
	rb.KeepStop(100)
	rb.KeepTrip(1)
	required := rb.Build()

	assert.Equal(t, map[model.TripID]struct{}{1: {}}, required.Trips)
	assert.Equal(t, map[model.StopID]struct{}{100: {}, 101: {}}, required.Stops)
	assert.Equal(t, "20200322", required.TimetableStartDate)
	assert.Contains(t, required.ServicesByDay, model.Sunday)
}
