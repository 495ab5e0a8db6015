// Package schedule holds the parsed and indexed schedule data.
//
// The index is built once by a Builder and read-only afterwards, so any
// number of searches can share it without locks. It can be serialized
// for caching and for transfer to clients, and projected down to the
// subset needed to reproduce a search (Required).
package schedule

import (
	"fmt"

	"github.com/platy/transit-radar/gtfstime"
	"github.com/platy/transit-radar/model"
)

// Data is the queryable schedule: all trips keyed by id, all stops keyed
// by id with their departure indexes, and the calendar digest of which
// services run on which weekday.
type Data struct {
	trips map[model.TripID]*model.Trip
	stops map[model.StopID]*model.Stop

	servicesByDay      map[model.Day]map[model.ServiceID]struct{}
	timetableStartDate string
}

// Stop looks up a stop by id, nil if unknown.
func (d *Data) Stop(id model.StopID) *model.Stop {
	return d.stops[id]
}

// Trip looks up a trip by id, nil if unknown.
func (d *Data) Trip(id model.TripID) *model.Trip {
	return d.trips[id]
}

// RouteForTrip returns the route the trip runs on. Panics if the trip is
// not in the data; callers hold trip ids obtained from this Data.
func (d *Data) RouteForTrip(id model.TripID) *model.Route {
	trip := d.trips[id]
	if trip == nil {
		panic(fmt.Sprintf("schedule: no trip %d", id))
	}
	return &trip.Route
}

// ServicesOfDay returns the ids of the services that run on the day.
// The returned set is shared and must not be modified.
func (d *Data) ServicesOfDay(day model.Day) map[model.ServiceID]struct{} {
	return d.servicesByDay[day]
}

// TimetableStartDate is the start date of the timetable based on the
// feed's calendar records, in the feed's YYYYMMDD form.
func (d *Data) TimetableStartDate() string {
	return d.timetableStartDate
}

// Stops is the stop table, keyed by id. Treat as read-only.
func (d *Data) Stops() map[model.StopID]*model.Stop {
	return d.stops
}

// Trips is the trip table, keyed by id. Treat as read-only.
func (d *Data) Trips() map[model.TripID]*model.Trip {
	return d.trips
}

// TripDeparture is one trip leaving a stop, along with that trip's stop
// times from the departing stop to the end of the trip. StopTimes is a
// view into the trip's own stop time array.
type TripDeparture struct {
	Trip      *model.Trip
	StopTimes []model.StopTime
}

// TripsFrom finds all trips leaving a stop within the period whose
// service is in the given set. Order among departures at the same time
// is unspecified but stable for a given build.
func (d *Data) TripsFrom(stop *model.Stop, services map[model.ServiceID]struct{}, period gtfstime.Period) []TripDeparture {
	var departures []TripDeparture
	for _, ref := range stop.DeparturesIn(period) {
		trip := d.trips[ref.TripID]
		if trip == nil {
			continue
		}
		if _, ok := services[trip.ServiceID]; !ok {
			continue
		}
		departures = append(departures, TripDeparture{
			Trip:      trip,
			StopTimes: trip.StopTimes[ref.Index:],
		})
	}
	return departures
}

// Importance scores a stop for ranking search results: the number of
// transfers plus departure slots, summed over a station's children.
func (d *Data) Importance(stop *model.Stop) int {
	score := len(stop.Transfers)
	switch stop.Kind {
	case model.StopOrPlatform:
		score += len(stop.Departures)
	case model.Station:
		for _, childID := range stop.Children {
			if child := d.stops[childID]; child != nil {
				score += d.Importance(child)
			}
		}
	}
	return score
}

// NotFoundError reports a station lookup that matched nothing.
type NotFoundError struct {
	Name string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("no station named %q", e.Name)
}

// StationByName finds a station by its exact name. Returns a
// NotFoundError when nothing matches; panics on an ambiguous name as
// the feeds in use keep station names unique.
func (d *Data) StationByName(name string) (*model.Stop, error) {
	var found *model.Stop
	for _, stop := range d.stops {
		if stop.IsStation() && stop.Name == name {
			if found != nil {
				panic(fmt.Sprintf("schedule: ambiguous station name %q", name))
			}
			found = stop
		}
	}
	if found == nil {
		return nil, NotFoundError{Name: name}
	}
	return found, nil
}
