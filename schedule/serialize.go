package schedule

import (
	"encoding/gob"
	"fmt"
	"io"

	"github.com/platy/transit-radar/model"
)

// Wire form of Data. Service sets travel as slices; ids are preserved
// bit-for-bit.
type dataWire struct {
	Trips              map[model.TripID]*model.Trip
	Stops              map[model.StopID]*model.Stop
	ServicesByDay      map[model.Day][]model.ServiceID
	TimetableStartDate string
}

// Encode writes the schedule to w in its binary cache format.
func (d *Data) Encode(w io.Writer) error {
	wire := dataWire{
		Trips:              d.trips,
		Stops:              d.stops,
		ServicesByDay:      make(map[model.Day][]model.ServiceID, len(d.servicesByDay)),
		TimetableStartDate: d.timetableStartDate,
	}
	for day, ids := range d.servicesByDay {
		services := make([]model.ServiceID, 0, len(ids))
		for id := range ids {
			services = append(services, id)
		}
		wire.ServicesByDay[day] = services
	}
	if err := gob.NewEncoder(w).Encode(wire); err != nil {
		return fmt.Errorf("encoding schedule: %w", err)
	}
	return nil
}

// Decode reads a schedule previously written by Encode.
func Decode(r io.Reader) (*Data, error) {
	var wire dataWire
	if err := gob.NewDecoder(r).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decoding schedule: %w", err)
	}
	data := &Data{
		trips:              wire.Trips,
		stops:              wire.Stops,
		servicesByDay:      make(map[model.Day]map[model.ServiceID]struct{}, len(wire.ServicesByDay)),
		timetableStartDate: wire.TimetableStartDate,
	}
	if data.trips == nil {
		data.trips = map[model.TripID]*model.Trip{}
	}
	if data.stops == nil {
		data.stops = map[model.StopID]*model.Stop{}
	}
	for day, services := range wire.ServicesByDay {
		set := make(map[model.ServiceID]struct{}, len(services))
		for _, id := range services {
			set[id] = struct{}{}
		}
		data.servicesByDay[day] = set
	}
	return data, nil
}
