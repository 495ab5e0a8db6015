package parse

import (
	"github.com/platy/transit-radar/gtfstime"
	"github.com/platy/transit-radar/model"
)

// CSV row shapes for the feed files we load. Columns not needed by the
// radar are left out; gocsv ignores them.

type CalendarCSV struct {
	ServiceID model.ServiceID `csv:"service_id"`
	Monday    uint8           `csv:"monday"`
	Tuesday   uint8           `csv:"tuesday"`
	Wednesday uint8           `csv:"wednesday"`
	Thursday  uint8           `csv:"thursday"`
	Friday    uint8           `csv:"friday"`
	Saturday  uint8           `csv:"saturday"`
	Sunday    uint8           `csv:"sunday"`
	StartDate string          `csv:"start_date"`
	EndDate   string          `csv:"end_date"`
}

// Days lists the weekdays this service runs on.
func (c *CalendarCSV) Days() []model.Day {
	flags := []uint8{c.Monday, c.Tuesday, c.Wednesday, c.Thursday, c.Friday, c.Saturday, c.Sunday}
	var days []model.Day
	for i, val := range flags {
		if val > 0 {
			days = append(days, model.Day(i))
		}
	}
	return days
}

type StopCSV struct {
	ID            model.StopID `csv:"stop_id"`
	Name          string       `csv:"stop_name"`
	Lat           float64      `csv:"stop_lat"`
	Lon           float64      `csv:"stop_lon"`
	LocationType  int8         `csv:"location_type"`
	ParentStation string       `csv:"parent_station"`
}

type TransferCSV struct {
	FromStopID      model.StopID `csv:"from_stop_id"`
	ToStopID        model.StopID `csv:"to_stop_id"`
	TransferType    uint8        `csv:"transfer_type"`
	MinTransferTime string       `csv:"min_transfer_time"`
}

type RouteCSV struct {
	ID        model.RouteID `csv:"route_id"`
	ShortName string        `csv:"route_short_name"`
	Type      uint16        `csv:"route_type"`
	Color     string        `csv:"route_color"`
}

type TripCSV struct {
	RouteID   model.RouteID   `csv:"route_id"`
	ServiceID model.ServiceID `csv:"service_id"`
	ID        model.TripID    `csv:"trip_id"`
}

type StopTimeCSV struct {
	TripID    model.TripID  `csv:"trip_id"`
	Arrival   gtfstime.Time `csv:"arrival_time"`
	Departure gtfstime.Time `csv:"departure_time"`
	StopID    model.StopID  `csv:"stop_id"`
	Sequence  uint32        `csv:"stop_sequence"`
}
