// Package parse loads a static GTFS feed into the schedule index.
//
// Only the files the radar needs are read. Malformed stop, transfer and
// stop time records are logged and skipped, as are routes of unknown
// types and the trips and stop times hanging off skipped records; the
// VBB exports always contain a few of these.
package parse

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"reflect"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/spkg/bom"

	"github.com/platy/transit-radar/model"
	"github.com/platy/transit-radar/schedule"
)

// Options control feed loading.
type Options struct {
	// Day restricts the loaded trips to services running on one
	// weekday, which shrinks the index considerably.
	Day *model.Day

	// Logger receives per-record skip warnings. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// LoadDir loads a feed from a directory of GTFS .txt files.
func LoadDir(dir string, opts Options) (*schedule.Data, error) {
	return Load(os.DirFS(dir), opts)
}

// LoadZip loads a feed from a GTFS zip archive.
func LoadZip(buf []byte, opts Options) (*schedule.Data, error) {
	r, err := zip.NewReader(bytes.NewReader(buf), int64(len(buf)))
	if err != nil {
		return nil, fmt.Errorf("unzipping: %w", err)
	}
	return Load(r, opts)
}

// Load reads the feed files from fsys and builds the schedule index.
func Load(fsys fs.FS, opts Options) (*schedule.Data, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	servicesByDay, startDate, err := loadCalendar(fsys)
	if err != nil {
		return nil, err
	}

	builder := schedule.NewBuilder(servicesByDay, startDate)

	stops, err := loadStops(fsys, builder, log)
	if err != nil {
		return nil, err
	}
	if err := loadTransfers(fsys, builder, log); err != nil {
		return nil, err
	}
	routeTypes, err := loadRoutes(fsys, builder, log)
	if err != nil {
		return nil, err
	}

	var services map[model.ServiceID]struct{}
	if opts.Day != nil {
		services = servicesByDay[*opts.Day]
	}
	addedTrips, err := loadTrips(fsys, builder, routeTypes, services, log)
	if err != nil {
		return nil, err
	}
	if err := loadStopTimes(fsys, builder, addedTrips, stops, log); err != nil {
		return nil, err
	}

	data := builder.Build()
	log.Info("loaded feed",
		"departures", builder.DepartureCount(),
		"trips", len(data.Trips()),
		"stops", len(data.Stops()))
	return data, nil
}

// unmarshalFile reads one CSV file into out, skipping records the
// handler forgives. The BOM reader strips unicode BOMs and the lazy
// reader survives sloppy use of quotes.
func unmarshalFile(fsys fs.FS, name string, out interface{}, errHandler gocsv.ErrorHandler) error {
	f, err := fsys.Open(name)
	if err != nil {
		return fmt.Errorf("opening %s: %w", name, err)
	}
	defer f.Close()

	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		return gocsv.LazyCSVReader(bom.NewReader(in))
	})

	if errHandler != nil {
		// gocsv keeps a record whose field failed to convert, so the
		// forgiven records are dropped here; record i is reported as line i+2
		forgiven := map[int]bool{}
		err = gocsv.UnmarshalWithErrorHandler(f, func(e *csv.ParseError) bool {
			forgiven[e.Line] = errHandler(e)
			return forgiven[e.Line]
		}, out)
		rows := reflect.ValueOf(out).Elem()
		kept := reflect.MakeSlice(rows.Type(), 0, rows.Len())
		for i := 0; i < rows.Len(); i++ {
			if !forgiven[i+2] {
				kept = reflect.Append(kept, rows.Index(i))
			}
		}
		rows.Set(kept)
	} else {
		err = gocsv.Unmarshal(f, out)
	}
	if err != nil {
		return fmt.Errorf("unmarshaling %s: %w", name, err)
	}
	return nil
}

func skipRecord(log *slog.Logger, file string) gocsv.ErrorHandler {
	return func(err *csv.ParseError) bool {
		log.Warn("skipping record", "file", file, "line", err.Line, "err", err.Err)
		return true
	}
}

func loadCalendar(fsys fs.FS) (map[model.Day]map[model.ServiceID]struct{}, string, error) {
	var calendars []*CalendarCSV
	if err := unmarshalFile(fsys, "calendar.txt", &calendars, nil); err != nil {
		return nil, "", err
	}

	servicesByDay := map[model.Day]map[model.ServiceID]struct{}{}
	startDate := ""
	for _, cal := range calendars {
		for _, day := range cal.Days() {
			set := servicesByDay[day]
			if set == nil {
				set = map[model.ServiceID]struct{}{}
				servicesByDay[day] = set
			}
			set[cal.ServiceID] = struct{}{}
		}
		startDate = cal.StartDate
	}
	return servicesByDay, startDate, nil
}

func loadStops(fsys fs.FS, builder *schedule.Builder, log *slog.Logger) (map[model.StopID]struct{}, error) {
	var stops []*StopCSV
	if err := unmarshalFile(fsys, "stops.txt", &stops, skipRecord(log, "stops.txt")); err != nil {
		return nil, err
	}

	added := map[model.StopID]struct{}{}
	for _, stop := range stops {
		var parent model.StopID
		if stop.ParentStation != "" {
			id, err := model.ParseStopID(stop.ParentStation)
			if err != nil {
				log.Warn("skipping stop with bad parent station", "stop", stop.ID, "err", err)
				continue
			}
			parent = id
		}
		switch {
		case stop.LocationType == 1 && parent == 0:
			builder.AddStation(stop.ID, stop.Name, stop.Lat, stop.Lon)
		case stop.LocationType == 0:
			builder.AddStopOrPlatform(stop.ID, stop.Name, stop.Lat, stop.Lon, parent)
		case stop.LocationType == 2 && parent != 0:
			builder.AddEntranceOrExit(stop.ID, stop.Name, stop.Lat, stop.Lon, parent)
		default:
			log.Warn("skipping stop of unusable location type",
				"stop", stop.ID, "location_type", stop.LocationType, "parent", parent)
			continue
		}
		added[stop.ID] = struct{}{}
	}
	return added, nil
}

func loadTransfers(fsys fs.FS, builder *schedule.Builder, log *slog.Logger) error {
	var transfers []*TransferCSV
	err := unmarshalFile(fsys, "transfers.txt", &transfers, skipRecord(log, "transfers.txt"))
	if err != nil {
		return err
	}

	for _, transfer := range transfers {
		var minTime time.Duration
		if transfer.MinTransferTime != "" {
			secs, err := strconv.Atoi(transfer.MinTransferTime)
			if err != nil {
				log.Warn("skipping transfer with bad min_transfer_time",
					"from", transfer.FromStopID, "to", transfer.ToStopID, "err", err)
				continue
			}
			minTime = time.Duration(secs) * time.Second
		}
		builder.AddTransfer(transfer.FromStopID, transfer.ToStopID, minTime)
	}
	return nil
}

func loadRoutes(fsys fs.FS, builder *schedule.Builder, log *slog.Logger) (map[model.RouteID]struct{}, error) {
	var routes []*RouteCSV
	if err := unmarshalFile(fsys, "routes.txt", &routes, nil); err != nil {
		return nil, err
	}

	added := map[model.RouteID]struct{}{}
	for _, route := range routes {
		routeType, err := model.ParseRouteType(route.Type)
		if err != nil {
			log.Warn("skipping route", "route", route.ID, "err", err)
			continue
		}
		builder.AddRoute(route.ID, route.ShortName, routeType, route.Color)
		added[route.ID] = struct{}{}
	}
	return added, nil
}

func loadTrips(
	fsys fs.FS,
	builder *schedule.Builder,
	routes map[model.RouteID]struct{},
	services map[model.ServiceID]struct{},
	log *slog.Logger,
) (map[model.TripID]struct{}, error) {
	var trips []*TripCSV
	if err := unmarshalFile(fsys, "trips.txt", &trips, nil); err != nil {
		return nil, err
	}

	added := map[model.TripID]struct{}{}
	for _, trip := range trips {
		if _, ok := routes[trip.RouteID]; !ok {
			log.Warn("skipping trip of skipped route", "trip", trip.ID, "route", trip.RouteID)
			continue
		}
		if services != nil {
			if _, ok := services[trip.ServiceID]; !ok {
				continue
			}
		}
		builder.AddTrip(trip.ID, trip.RouteID, trip.ServiceID)
		added[trip.ID] = struct{}{}
	}
	return added, nil
}

func loadStopTimes(
	fsys fs.FS,
	builder *schedule.Builder,
	trips map[model.TripID]struct{},
	stops map[model.StopID]struct{},
	log *slog.Logger,
) error {
	var stopTimes []*StopTimeCSV
	err := unmarshalFile(fsys, "stop_times.txt", &stopTimes, skipRecord(log, "stop_times.txt"))
	if err != nil {
		return err
	}

	for _, st := range stopTimes {
		if _, ok := trips[st.TripID]; !ok {
			continue
		}
		if _, ok := stops[st.StopID]; !ok {
			log.Warn("skipping stop time at skipped stop", "trip", st.TripID, "stop", st.StopID)
			continue
		}
		builder.AddTripStop(st.TripID, st.Arrival, st.Departure, st.StopID)
	}
	return nil
}
