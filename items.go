package radar

import (
	"github.com/platy/transit-radar/gtfstime"
	"github.com/platy/transit-radar/model"
)

// Item is one element of the journey tree produced by a Plotter. Items
// are yielded in order of arrival time, except that a deferred slow trip
// is flushed as one contiguous block.
type Item interface {
	isItem()
}

// Station marks the first (earliest) arrival at a station. Emitted at
// most once per station, before any other item arriving there.
type Station struct {
	Stop            *model.Stop
	EarliestArrival gtfstime.Time

	// NameTrunkLength is the length of the common word-boundary prefix
	// of this station's name and the name of the stop the reaching trip
	// segment came from, for the renderer to abbreviate labels. Zero
	// when the station was not reached by a trip segment or the shared
	// prefix does not end on a word boundary.
	NameTrunkLength int
}

// Transfer is a pedestrian connection between two distinct stations
// which unlocked new trips.
type Transfer struct {
	FromStop      *model.Stop
	ToStop        *model.Stop
	DepartureTime gtfstime.Time
	ArrivalTime   gtfstime.Time
}

// ConnectionToTrip is the boarding of a trip: waiting at ToStop from the
// arrival there until the vehicle departs.
type ConnectionToTrip struct {
	FromStop      *model.Stop
	ToStop        *model.Stop
	DepartureTime gtfstime.Time
	ArrivalTime   gtfstime.Time

	TripID     model.TripID
	RouteName  string
	RouteType  model.RouteType
	RouteColor string
}

// SegmentOfTrip is one in-vehicle hop between two consecutive stops of a
// boarded trip.
type SegmentOfTrip struct {
	FromStop      *model.Stop
	ToStop        *model.Stop
	DepartureTime gtfstime.Time
	ArrivalTime   gtfstime.Time

	TripID     model.TripID
	RouteName  string
	RouteType  model.RouteType
	RouteColor string
}

func (Station) isItem()          {}
func (Transfer) isItem()         {}
func (ConnectionToTrip) isItem() {}
func (SegmentOfTrip) isItem()    {}
