package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	radar "github.com/platy/transit-radar"
	"github.com/platy/transit-radar/gtfstime"
	"github.com/platy/transit-radar/model"
)

var searchCmd = &cobra.Command{
	Use:   "search <station name>",
	Short: "Prints the tree of fastest journeys from a station",
	Args:  cobra.ExactArgs(1),
	RunE:  search,
}

var (
	searchDay     string
	searchStart   string
	searchMinutes int
	modeUBahn     bool
	modeSBahn     bool
	modeBus       bool
	modeTram      bool
	modeRegio     bool
)

func init() {
	searchCmd.Flags().StringVarP(&searchDay, "day", "d", "", "Day of the week, mon..sun (default today)")
	searchCmd.Flags().StringVarP(&searchStart, "start", "s", "", "Start of the search period, HH:MM:SS (default now)")
	searchCmd.Flags().IntVarP(&searchMinutes, "minutes", "m", 30, "Length of the search period")
	searchCmd.Flags().BoolVarP(&modeUBahn, "ubahn", "", true, "Search urban railway")
	searchCmd.Flags().BoolVarP(&modeSBahn, "sbahn", "", true, "Search suburban railway")
	searchCmd.Flags().BoolVarP(&modeBus, "bus", "", false, "Search buses")
	searchCmd.Flags().BoolVarP(&modeTram, "tram", "", false, "Search trams")
	searchCmd.Flags().BoolVarP(&modeRegio, "regio", "", false, "Search regional rail")
}

func search(cmd *cobra.Command, args []string) error {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	now := time.Now()
	day := model.FromWeekday(now.Weekday())
	if searchDay != "" {
		parsed, err := parseDay(searchDay)
		if err != nil {
			return err
		}
		day = parsed
	}
	start := gtfstime.FromHMS(uint32(now.Hour()), uint32(now.Minute()), uint32(now.Second()))
	if searchStart != "" {
		parsed, err := gtfstime.Parse(searchStart)
		if err != nil {
			return err
		}
		start = parsed
	}
	period := gtfstime.Between(start, start.Add(time.Duration(searchMinutes)*time.Minute))

	data, err := loadSchedule(cmd.Context(), &day, log)
	if err != nil {
		return err
	}

	origin, err := data.StationByName(args[0])
	if err != nil {
		return err
	}

	plotter := radar.NewPlotter(day, period, data)
	plotter.AddOriginStation(origin)
	for _, mode := range []struct {
		enabled bool
		types   []model.RouteType
	}{
		{modeUBahn, []model.RouteType{model.RouteTypeUrbanRailway}},
		{modeSBahn, []model.RouteType{model.RouteTypeSuburbanRailway}},
		{modeBus, []model.RouteType{model.RouteTypeBusService, model.RouteTypeBus}},
		{modeTram, []model.RouteType{model.RouteTypeTramService}},
		{modeRegio, []model.RouteType{model.RouteTypeRailwayService}},
	} {
		if !mode.enabled {
			continue
		}
		for _, t := range mode.types {
			plotter.AddRouteType(t)
		}
	}

	for {
		item, ok := plotter.Next()
		if !ok {
			return nil
		}
		switch it := item.(type) {
		case radar.Station:
			fmt.Printf("%v %s\n", it.EarliestArrival, it.Stop.Name)
		case radar.Transfer:
			fmt.Printf("%v-%v   walk %s -> %s\n", it.DepartureTime, it.ArrivalTime, it.FromStop.Name, it.ToStop.Name)
		case radar.ConnectionToTrip:
			fmt.Printf("%v-%v   board %s at %s\n", it.DepartureTime, it.ArrivalTime, it.RouteName, it.ToStop.Name)
		case radar.SegmentOfTrip:
			fmt.Printf("%v-%v   %s %s -> %s\n", it.DepartureTime, it.ArrivalTime, it.RouteName, it.FromStop.Name, it.ToStop.Name)
		}
	}
}
