package schedule

import "github.com/platy/transit-radar/model"

// Required is the projection of a Data down to the trips and stops
// referenced by one search: enough for a client to reproduce the result.
// The calendar digest and timetable start date are always carried whole.
type Required struct {
	Trips map[model.TripID]struct{}
	Stops map[model.StopID]struct{}

	ServicesByDay      map[model.Day]map[model.ServiceID]struct{}
	TimetableStartDate string
}

// RequiredBuilder collects the ids referenced by a search. One-shot:
// build, feed, take Required.
type RequiredBuilder struct {
	required Required
}

// BuildFrom starts a projection of this data. The services-by-day digest
// is copied in full.
func (d *Data) BuildFrom() *RequiredBuilder {
	services := make(map[model.Day]map[model.ServiceID]struct{}, len(d.servicesByDay))
	for day, ids := range d.servicesByDay {
		set := make(map[model.ServiceID]struct{}, len(ids))
		for id := range ids {
			set[id] = struct{}{}
		}
		services[day] = set
	}
	return &RequiredBuilder{
		required: Required{
			Trips:              map[model.TripID]struct{}{},
			Stops:              map[model.StopID]struct{}{},
			ServicesByDay:      services,
			TimetableStartDate: d.timetableStartDate,
		},
	}
}

// KeepStop marks a stop as required.
func (b *RequiredBuilder) KeepStop(id model.StopID) {
	b.required.Stops[id] = struct{}{}
}

// KeepTrip marks a trip as required.
func (b *RequiredBuilder) KeepTrip(id model.TripID) {
	b.required.Trips[id] = struct{}{}
}

// Build returns the collected projection.
func (b *RequiredBuilder) Build() Required {
	return b.required
}
