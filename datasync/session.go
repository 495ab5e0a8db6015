// Package datasync tracks, per connected client, which slice of the
// schedule the client already holds, so that repeated searches from the
// same origin only ship the novel trips and stops.
package datasync

import (
	"github.com/google/uuid"

	"github.com/platy/transit-radar/model"
	"github.com/platy/transit-radar/schedule"
)

// Payload is the data shipped to a client: trips and stops keyed by id,
// referencable by later increments.
type Payload struct {
	Stops map[model.StopID]*model.Stop `json:"stops"`
	Trips map[model.TripID]*model.Trip `json:"trips"`
}

// Initial is the first update of a session; it carries the calendar
// digest which later increments never repeat.
type Initial struct {
	Payload
	ServicesByDay      map[model.Day][]model.ServiceID `json:"servicesByDay"`
	TimetableStartDate string                          `json:"timetableStartDate"`
}

// SyncData is one update to a client: exactly one of Initial and
// Increment is set.
type SyncData struct {
	SessionID    uuid.UUID `json:"sessionId"`
	UpdateNumber uint64    `json:"updateNumber"`

	Initial   *Initial `json:"initial,omitempty"`
	Increment *Payload `json:"increment,omitempty"`
}

// Session accumulates what one client holds. Not safe for concurrent
// use; a session belongs to a single connection.
type Session struct {
	id           uuid.UUID
	trips        map[model.TripID]struct{}
	stops        map[model.StopID]struct{}
	updateNumber uint64
}

func NewSession() *Session {
	return &Session{
		id:    uuid.New(),
		trips: map[model.TripID]struct{}{},
		stops: map[model.StopID]struct{}{},
	}
}

func (s *Session) ID() uuid.UUID { return s.id }

// UpdateNumber is the number of updates produced so far.
func (s *Session) UpdateNumber() uint64 { return s.updateNumber }

// AddData folds a search's projection into the session, returning the
// update to send: everything on the first call, afterwards only what
// the client has not seen.
func (s *Session) AddData(required schedule.Required, data *schedule.Data) SyncData {
	payload := Payload{
		Stops: map[model.StopID]*model.Stop{},
		Trips: map[model.TripID]*model.Trip{},
	}
	for id := range required.Stops {
		if _, sent := s.stops[id]; sent {
			continue
		}
		if stop := data.Stop(id); stop != nil {
			payload.Stops[id] = stop
			s.stops[id] = struct{}{}
		}
	}
	for id := range required.Trips {
		if _, sent := s.trips[id]; sent {
			continue
		}
		if trip := data.Trip(id); trip != nil {
			payload.Trips[id] = trip
			s.trips[id] = struct{}{}
		}
	}

	s.updateNumber++
	update := SyncData{
		SessionID:    s.id,
		UpdateNumber: s.updateNumber,
	}
	if s.updateNumber == 1 {
		services := make(map[model.Day][]model.ServiceID, len(required.ServicesByDay))
		for day, ids := range required.ServicesByDay {
			list := make([]model.ServiceID, 0, len(ids))
			for id := range ids {
				list = append(list, id)
			}
			services[day] = list
		}
		update.Initial = &Initial{
			Payload:            payload,
			ServicesByDay:      services,
			TimetableStartDate: required.TimetableStartDate,
		}
	} else {
		update.Increment = &payload
	}
	return update
}
