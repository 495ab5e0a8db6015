// Package model holds the schedule entities the radar search runs over:
// stops with their station hierarchy, routes, trips and their stop
// times, and the per-stop departure index.
package model

import (
	"fmt"
	"sort"
	"time"

	"github.com/platy/transit-radar/gtfstime"
)

// RouteType is the type of transportation used on a route, using the
// extended GTFS route type codes as they appear in the VBB feed.
type RouteType uint16

const (
	RouteTypeRail                  RouteType = 2
	RouteTypeBus                   RouteType = 3
	RouteTypeRailwayService        RouteType = 100
	RouteTypeSuburbanRailway       RouteType = 109
	RouteTypeUrbanRailway          RouteType = 400
	RouteTypeBusService            RouteType = 700
	RouteTypeTramService           RouteType = 900
	RouteTypeWaterTransportService RouteType = 1000
)

// ParseRouteType validates a numeric route type code from a feed.
func ParseRouteType(code uint16) (RouteType, error) {
	switch rt := RouteType(code); rt {
	case RouteTypeRail, RouteTypeBus, RouteTypeRailwayService,
		RouteTypeSuburbanRailway, RouteTypeUrbanRailway,
		RouteTypeBusService, RouteTypeTramService,
		RouteTypeWaterTransportService:
		return rt, nil
	}
	return 0, fmt.Errorf("unknown route type %d", code)
}

func (rt RouteType) String() string {
	switch rt {
	case RouteTypeRail:
		return "Rail"
	case RouteTypeBus:
		return "Bus"
	case RouteTypeRailwayService:
		return "RailwayService"
	case RouteTypeSuburbanRailway:
		return "SuburbanRailway"
	case RouteTypeUrbanRailway:
		return "UrbanRailway"
	case RouteTypeBusService:
		return "BusService"
	case RouteTypeTramService:
		return "TramService"
	case RouteTypeWaterTransportService:
		return "WaterTransportService"
	default:
		return fmt.Sprintf("RouteType(%d)", uint16(rt))
	}
}

// Day is a day of the week on which services run.
type Day int8

const (
	Monday Day = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// FromWeekday converts from the stdlib weekday numbering.
func FromWeekday(wd time.Weekday) Day {
	if wd == time.Sunday {
		return Sunday
	}
	return Day(wd - time.Monday)
}

func (d Day) String() string {
	switch d {
	case Monday:
		return "mon"
	case Tuesday:
		return "tue"
	case Wednesday:
		return "wed"
	case Thursday:
		return "thu"
	case Friday:
		return "fri"
	case Saturday:
		return "sat"
	case Sunday:
		return "sun"
	default:
		return fmt.Sprintf("Day(%d)", int8(d))
	}
}

// StopKind distinguishes the three stop stereotypes present in the
// feed's stops file.
type StopKind uint8

const (
	// StopOrPlatform is a location where passengers board or leave a
	// vehicle. Called a platform when it has a parent station.
	StopOrPlatform StopKind = iota
	// Station is a physical structure grouping one or more platforms.
	Station
	// EntranceExit is a pedestrian access point tied to a station.
	// Never referenced by trip stop times.
	EntranceExit
)

// TripStopRef refers to a specific stop of a specific trip, ie. one
// arrival/departure. Index is the 0-based position within the trip's
// stop time list.
type TripStopRef struct {
	TripID TripID
	Index  uint8
}

// DepartureSlot lists every trip stop departing a stop at one time.
type DepartureSlot struct {
	Time gtfstime.Time
	Refs []TripStopRef
}

// Transfer is a declared walkable connection to another stop. A zero
// MinTime means the transfer is immediate.
type Transfer struct {
	To      StopID
	MinTime time.Duration
}

// Stop is any location from the feed: a stop or platform, a station, or
// a station entrance. Exactly one stereotype applies, selected by Kind.
//
// Parent is the parent station where one exists: optional for
// StopOrPlatform, required for EntranceExit, never set for Station.
// Children (stations only) and Departures (stops/platforms only) are
// populated by the schedule builder.
type Stop struct {
	ID         StopID
	Name       string
	Lat        float64
	Lon        float64
	Kind       StopKind
	Parent     StopID
	Children   []StopID
	Departures []DepartureSlot
	Transfers  []Transfer
}

// StationID is the id of the parent station, or the stop's own id if it
// is (or acts as) a station.
func (s *Stop) StationID() StopID {
	if s.Kind == Station || s.Parent == 0 {
		return s.ID
	}
	return s.Parent
}

// ParentStation returns the parent station id, or false if this stop is
// a station in its own right.
func (s *Stop) ParentStation() (StopID, bool) {
	if s.Kind == Station || s.Parent == 0 {
		return 0, false
	}
	return s.Parent, true
}

// IsStation reports whether this is a top level stop: a station, or a
// stop with no parent station.
func (s *Stop) IsStation() bool {
	switch s.Kind {
	case Station:
		return true
	case StopOrPlatform:
		return s.Parent == 0
	default:
		return false
	}
}

// DeparturesIn collects the trip stop refs departing this stop within
// the period. The departure slots are kept sorted by time, so the range
// is found by binary search. Only stops and platforms have departures.
func (s *Stop) DeparturesIn(period gtfstime.Period) []TripStopRef {
	lo := sort.Search(len(s.Departures), func(i int) bool {
		return s.Departures[i].Time >= period.Start()
	})
	hi := sort.Search(len(s.Departures), func(i int) bool {
		return s.Departures[i].Time >= period.End()
	})
	var refs []TripStopRef
	for _, slot := range s.Departures[lo:hi] {
		refs = append(refs, slot.Refs...)
	}
	return refs
}

func (s *Stop) String() string {
	marker := ""
	if s.IsStation() {
		marker = "*"
	}
	return fmt.Sprintf("%s [%d%s]", s.Name, s.ID, marker)
}

// Route describes a transit line.
type Route struct {
	ID        RouteID
	ShortName string
	Type      RouteType
	Color     string
}

// StopTime is one scheduled stop of a trip. Within a trip, the arrival
// is never after the departure, and the departure never after the next
// stop's arrival.
type StopTime struct {
	Arrival   gtfstime.Time
	Departure gtfstime.Time
	StopID    StopID
}

// Trip is one vehicle journey: an ordered list of stop times along a
// route, running on the days of its service.
type Trip struct {
	ID        TripID
	Route     Route
	ServiceID ServiceID
	StopTimes []StopTime
}
