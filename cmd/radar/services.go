package main

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/platy/transit-radar/model"
)

var servicesCmd = &cobra.Command{
	Use:   "services",
	Short: "Lists the services running on a day and their trip counts",
	Args:  cobra.NoArgs,
	RunE:  services,
}

var servicesDay string

func init() {
	servicesCmd.Flags().StringVarP(&servicesDay, "day", "d", "", "Day of the week, mon..sun (default today)")
}

func services(cmd *cobra.Command, args []string) error {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	day := model.FromWeekday(time.Now().Weekday())
	if servicesDay != "" {
		parsed, err := parseDay(servicesDay)
		if err != nil {
			return err
		}
		day = parsed
	}

	data, err := loadSchedule(cmd.Context(), nil, log)
	if err != nil {
		return err
	}

	tripCounts := map[model.ServiceID]int{}
	for _, trip := range data.Trips() {
		tripCounts[trip.ServiceID]++
	}

	running := data.ServicesOfDay(day)
	ids := make([]model.ServiceID, 0, len(running))
	for id := range running {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	fmt.Printf("%d services running on %v (timetable from %s)\n", len(ids), day, data.TimetableStartDate())
	for _, id := range ids {
		fmt.Printf("%6d  %5d trips\n", id, tripCounts[id])
	}
	return nil
}
