package radar

import (
	"github.com/platy/transit-radar/model"
	"github.com/platy/transit-radar/schedule"
	"github.com/platy/transit-radar/suggest"
)

// BuildStationIndex builds a word search over station names for the
// station lookup boundary.
func BuildStationIndex(data *schedule.Data) *suggest.Suggester[model.StopID] {
	suggester := suggest.New[model.StopID]()
	for _, stop := range data.Stops() {
		if stop.IsStation() {
			suggester.Insert(stop.Name, stop.ID)
		}
	}
	return suggester
}
