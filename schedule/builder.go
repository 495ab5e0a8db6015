package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/platy/transit-radar/gtfstime"
	"github.com/platy/transit-radar/model"
)

// Builder assembles a Data from feed records. Records must arrive in
// dependency order: stops, then transfers, then routes, then trips, then
// trip stops. Violations are programming errors in the ingestion layer
// and panic.
//
// A platform can reference its parent station before the station record
// has been added; children are reconciled into stations in Build.
type Builder struct {
	data         *Data
	stopChildren map[model.StopID][]model.StopID
	departures   map[model.StopID]map[gtfstime.Time][]model.TripStopRef
	routes       map[model.RouteID]*model.Route

	departureCount int
}

// NewBuilder starts a build with the calendar digest already computed by
// the ingestion layer.
func NewBuilder(servicesByDay map[model.Day]map[model.ServiceID]struct{}, timetableStartDate string) *Builder {
	if servicesByDay == nil {
		servicesByDay = map[model.Day]map[model.ServiceID]struct{}{}
	}
	return &Builder{
		data: &Data{
			trips:              map[model.TripID]*model.Trip{},
			stops:              map[model.StopID]*model.Stop{},
			servicesByDay:      servicesByDay,
			timetableStartDate: timetableStartDate,
		},
		stopChildren: map[model.StopID][]model.StopID{},
		departures:   map[model.StopID]map[gtfstime.Time][]model.TripStopRef{},
		routes:       map[model.RouteID]*model.Route{},
	}
}

// AddStation adds a top level station stop.
func (b *Builder) AddStation(id model.StopID, name string, lat, lon float64) {
	b.data.stops[id] = &model.Stop{
		ID:   id,
		Name: name,
		Lat:  lat,
		Lon:  lon,
		Kind: model.Station,
	}
}

// AddStopOrPlatform adds a boarding location, optionally a child of a
// station (parent == 0 means none).
func (b *Builder) AddStopOrPlatform(id model.StopID, name string, lat, lon float64, parent model.StopID) {
	b.data.stops[id] = &model.Stop{
		ID:     id,
		Name:   name,
		Lat:    lat,
		Lon:    lon,
		Kind:   model.StopOrPlatform,
		Parent: parent,
	}
	if parent != 0 {
		b.stopChildren[parent] = append(b.stopChildren[parent], id)
	}
}

// AddEntranceOrExit adds a pedestrian access point of a station.
func (b *Builder) AddEntranceOrExit(id model.StopID, name string, lat, lon float64, station model.StopID) {
	b.data.stops[id] = &model.Stop{
		ID:     id,
		Name:   name,
		Lat:    lat,
		Lon:    lon,
		Kind:   model.EntranceExit,
		Parent: station,
	}
	b.stopChildren[station] = append(b.stopChildren[station], id)
}

// AddTransfer appends an outgoing pedestrian transfer to a known stop.
// The target stop does not need to be known; partial datasets keep their
// dangling transfers and lookups skip them. A zero minTime means the
// transfer is immediate.
func (b *Builder) AddTransfer(from, to model.StopID, minTime time.Duration) {
	stop := b.data.stops[from]
	if stop == nil {
		panic(fmt.Sprintf("schedule: transfer from unknown stop %d", from))
	}
	stop.Transfers = append(stop.Transfers, model.Transfer{To: to, MinTime: minTime})
}

// AddRoute registers a route for later trips to embed.
func (b *Builder) AddRoute(id model.RouteID, shortName string, routeType model.RouteType, color string) {
	b.routes[id] = &model.Route{
		ID:        id,
		ShortName: shortName,
		Type:      routeType,
		Color:     color,
	}
}

// AddTrip adds a trip of a previously added route. The route is copied
// into the trip by value.
func (b *Builder) AddTrip(tripID model.TripID, routeID model.RouteID, serviceID model.ServiceID) {
	route := b.routes[routeID]
	if route == nil {
		panic(fmt.Sprintf("schedule: trip %d references unknown route %d", tripID, routeID))
	}
	b.data.trips[tripID] = &model.Trip{
		ID:        tripID,
		Route:     *route,
		ServiceID: serviceID,
	}
}

// AddTripStop appends the next stop time of a trip and records the
// departure on the stop's index. The stop must be a stop or platform;
// vehicles do not stop at stations or entrances.
func (b *Builder) AddTripStop(tripID model.TripID, arrival, departure gtfstime.Time, stopID model.StopID) {
	trip := b.data.trips[tripID]
	if trip == nil {
		panic(fmt.Sprintf("schedule: stop time for unknown trip %d", tripID))
	}
	stop := b.data.stops[stopID]
	if stop == nil {
		panic(fmt.Sprintf("schedule: trip %d stops at unknown stop %d", tripID, stopID))
	}
	switch stop.Kind {
	case model.Station:
		panic(fmt.Sprintf("schedule: trip %d stops at station %d", tripID, stopID))
	case model.EntranceExit:
		panic(fmt.Sprintf("schedule: trip %d stops at station entrance %d", tripID, stopID))
	}

	ref := model.TripStopRef{TripID: tripID, Index: uint8(len(trip.StopTimes))}
	trip.StopTimes = append(trip.StopTimes, model.StopTime{
		Arrival:   arrival,
		Departure: departure,
		StopID:    stopID,
	})

	slots := b.departures[stopID]
	if slots == nil {
		slots = map[gtfstime.Time][]model.TripStopRef{}
		b.departures[stopID] = slots
	}
	slots[departure] = append(slots[departure], ref)
	b.departureCount++
}

// DepartureCount is the number of trip stops recorded so far.
func (b *Builder) DepartureCount() int {
	return b.departureCount
}

// Build reconciles children into their stations, materializes the
// per-stop departure indexes and freezes the data. Panics if a stop
// referenced as a parent station is not a station.
func (b *Builder) Build() *Data {
	for stationID, children := range b.stopChildren {
		station := b.data.stops[stationID]
		if station == nil {
			panic(fmt.Sprintf("schedule: parent station %d was never added", stationID))
		}
		if station.Kind != model.Station {
			panic(fmt.Sprintf("schedule: %v is a parent station of %v but not a station", station, children))
		}
		station.Children = children
	}

	for stopID, slots := range b.departures {
		stop := b.data.stops[stopID]
		index := make([]model.DepartureSlot, 0, len(slots))
		for t, refs := range slots {
			index = append(index, model.DepartureSlot{Time: t, Refs: refs})
		}
		sort.Slice(index, func(i, j int) bool {
			return index[i].Time < index[j].Time
		})
		stop.Departures = index
	}

	return b.data
}
