package server

import (
	"strings"

	radar "github.com/platy/transit-radar"
	"github.com/platy/transit-radar/geometry"
	"github.com/platy/transit-radar/gtfstime"
	"github.com/platy/transit-radar/model"
	"github.com/platy/transit-radar/schedule"
)

// Modes are the mode filter flags of a radar query.
type Modes struct {
	UBahn bool
	SBahn bool
	Bus   bool
	Tram  bool
	Regio bool
}

// routeTypes expands the flags to the allowed GTFS route types.
func (m Modes) routeTypes() []model.RouteType {
	var types []model.RouteType
	if m.UBahn {
		types = append(types, model.RouteTypeUrbanRailway)
	}
	if m.SBahn {
		types = append(types, model.RouteTypeSuburbanRailway)
	}
	if m.Bus {
		types = append(types, model.RouteTypeBusService, model.RouteTypeBus)
	}
	if m.Tram {
		types = append(types, model.RouteTypeTramService)
	}
	if m.Regio {
		types = append(types, model.RouteTypeRailwayService)
	}
	return types
}

// Tree is the radar tree as rendered to the frontend: stations in polar
// coordinates around the origin, and the connections and trip segments
// linking them, with times as seconds from the period start.
type Tree struct {
	Stops           []TreeStop       `json:"stops"`
	Connections     []TreeConnection `json:"connections"`
	Trips           []TreeRoute      `json:"trips"`
	TimetableDate   string           `json:"timetable_date"`
	DepartureDay    string           `json:"departure_day"`
	DepartureTime   string           `json:"departure_time"`
	DurationMinutes int              `json:"duration_minutes"`
}

type TreeStop struct {
	Bearing    float64 `json:"bearing"`
	Name       string  `json:"name"`
	Seconds    int     `json:"seconds"`
	DistanceKm float64 `json:"distance_km"`
}

type TreeRoute struct {
	RouteName string        `json:"route_name"`
	Kind      string        `json:"kind"`
	Segments  []TreeSegment `json:"segments"`
}

type TreeSegment struct {
	FromSeconds int `json:"from_seconds"`
	ToSeconds   int `json:"to_seconds"`
	From        int `json:"from"`
	To          int `json:"to"`
}

type TreeConnection struct {
	FromSeconds int     `json:"from_seconds"`
	ToSeconds   int     `json:"to_seconds"`
	From        int     `json:"from"`
	To          int     `json:"to"`
	RouteName   *string `json:"route_name"`
	Kind        *string `json:"kind"`
}

// BuildTree runs the search and folds the item stream into the
// frontend form.
func BuildTree(data *schedule.Data, origin *model.Stop, day model.Day, period gtfstime.Period, modes Modes) Tree {
	plotter := radar.NewPlotter(day, period, data)
	plotter.AddOriginStation(origin)
	for _, rt := range modes.routeTypes() {
		plotter.AddRouteType(rt)
	}

	tree := Tree{
		Stops:           []TreeStop{},
		Connections:     []TreeConnection{},
		TimetableDate:   data.TimetableStartDate(),
		DepartureDay:    day.String(),
		DepartureTime:   period.Start().String(),
		DurationMinutes: int(period.Duration().Minutes()),
	}

	stopIdx := map[model.StopID]int{}
	tripIdx := map[model.TripID]int{}
	seconds := func(t gtfstime.Time) int {
		return int(t.Sub(period.Start()).Seconds())
	}
	// a segment from a station we never announced is pinned to its
	// destination, which happens for intra-station hops
	indexOf := func(stop *model.Stop, fallback int) int {
		if idx, ok := stopIdx[stop.StationID()]; ok {
			return idx
		}
		return fallback
	}

	for {
		item, ok := plotter.Next()
		if !ok {
			break
		}
		switch it := item.(type) {
		case radar.Station:
			stopIdx[it.Stop.StationID()] = len(tree.Stops)
			tree.Stops = append(tree.Stops, TreeStop{
				Bearing:    geometry.Bearing(origin.Lat, origin.Lon, it.Stop.Lat, it.Stop.Lon),
				DistanceKm: geometry.DistanceKm(origin.Lat, origin.Lon, it.Stop.Lat, it.Stop.Lon),
				Name:       strings.Replace(it.Stop.Name, " (Berlin)", "", 1),
				Seconds:    seconds(it.EarliestArrival),
			})

		case radar.Transfer:
			to := stopIdx[it.ToStop.StationID()]
			tree.Connections = append(tree.Connections, TreeConnection{
				From:        indexOf(it.FromStop, to),
				To:          to,
				FromSeconds: seconds(it.DepartureTime),
				ToSeconds:   seconds(it.ArrivalTime),
			})

		case radar.ConnectionToTrip:
			to := stopIdx[it.ToStop.StationID()]
			name := it.RouteName
			kind := it.RouteType.String()
			tree.Connections = append(tree.Connections, TreeConnection{
				From:        indexOf(it.FromStop, to),
				To:          to,
				FromSeconds: seconds(it.DepartureTime),
				ToSeconds:   seconds(it.ArrivalTime),
				RouteName:   &name,
				Kind:        &kind,
			})

		case radar.SegmentOfTrip:
			idx, ok := tripIdx[it.TripID]
			if !ok {
				idx = len(tree.Trips)
				tripIdx[it.TripID] = idx
				tree.Trips = append(tree.Trips, TreeRoute{
					RouteName: it.RouteName,
					Kind:      it.RouteType.String(),
				})
			}
			to := stopIdx[it.ToStop.StationID()]
			tree.Trips[idx].Segments = append(tree.Trips[idx].Segments, TreeSegment{
				From:        indexOf(it.FromStop, to),
				To:          to,
				FromSeconds: seconds(it.DepartureTime),
				ToSeconds:   seconds(it.ArrivalTime),
			})
		}
	}
	return tree
}
