// Package radar builds trees of fastest journeys over an indexed
// transit schedule. Starting from an origin station and a time period,
// a Plotter expands outwards along trips and pedestrian transfers,
// yielding each reachable station at its earliest arrival together with
// the trip segments and transfers that got there first. The union of
// the yielded paths is the radar tree a renderer draws as a polar
// diagram.
package radar

import (
	"container/heap"
	"fmt"

	"github.com/platy/transit-radar/gtfstime"
	"github.com/platy/transit-radar/model"
	"github.com/platy/transit-radar/schedule"
)

// Plotter runs the search, producing Items in order of arrival time.
// A Plotter is owned by one caller for the duration of a query and
// borrows the schedule data read-only; any number of plotters can run
// against the same data concurrently.
type Plotter struct {
	period     gtfstime.Period
	routeTypes map[model.RouteType]struct{}
	data       *schedule.Data
	services   map[model.ServiceID]struct{}

	queue   queueHeap
	catchUp []Item

	enqueuedTrips map[model.TripID]struct{}

	// trips which so far have only gotten us late to stops; they may
	// still lead somewhere new, so their items are parked here until a
	// later stop of the trip improves an arrival
	slowTrips map[model.TripID][]queueItem

	// earliest time each stop has been arrived at
	stops map[model.StopID]gtfstime.Time

	emittedStations map[model.StopID]struct{}

	done bool
}

// NewPlotter prepares a search across the period on the services of the
// given day. Add at least one origin station and one route type before
// iterating.
func NewPlotter(day model.Day, period gtfstime.Period, data *schedule.Data) *Plotter {
	return &Plotter{
		period:          period,
		routeTypes:      map[model.RouteType]struct{}{},
		data:            data,
		services:        data.ServicesOfDay(day),
		enqueuedTrips:   map[model.TripID]struct{}{},
		slowTrips:       map[model.TripID][]queueItem{},
		stops:           map[model.StopID]gtfstime.Time{},
		emittedStations: map[model.StopID]struct{}{},
	}
}

// AddOriginStation seeds the search at a station at the period start.
func (p *Plotter) AddOriginStation(origin *model.Stop) {
	heap.Push(&p.queue, queueItem{
		arrival: p.period.Start(),
		to:      origin,
		kind:    qOrigin,
	})
}

// AddRouteType allows a mode of transport to be used by the search.
func (p *Plotter) AddRouteType(rt model.RouteType) {
	p.routeTypes[rt] = struct{}{}
}

// Next yields the next item of the journey tree, or false when the
// search is exhausted or has run out of the time period.
func (p *Plotter) Next() (Item, bool) {
	if len(p.catchUp) > 0 {
		item := p.catchUp[0]
		p.catchUp = p.catchUp[1:]
		return item, true
	}
	block := p.nextBlock()
	if len(block) == 0 {
		return nil, false
	}
	p.catchUp = append(p.catchUp, block[1:]...)
	return block[0], true
}

// All runs the search to completion and collects every item.
func (p *Plotter) All() []Item {
	var items []Item
	for {
		item, ok := p.Next()
		if !ok {
			return items
		}
		items = append(items, item)
	}
}

// RequiredData performs the whole search without converting items,
// collecting the subset of the schedule needed to reproduce it.
func (p *Plotter) RequiredData() schedule.Required {
	builder := p.data.BuildFrom()
	for {
		items := p.nextBlockRaw()
		if len(items) == 0 {
			break
		}
		for _, item := range items {
			builder.KeepStop(item.to.ID)
			if parent, ok := item.to.ParentStation(); ok {
				builder.KeepStop(parent)
			}
			if item.kind == qConnection || item.kind == qStopOnTrip {
				builder.KeepTrip(item.tripID)
			}
		}
	}
	return builder.Build()
}

// nextBlock converts the next raw block into output items, prefixing a
// Station item the first time any station is arrived at.
func (p *Plotter) nextBlock() []Item {
	var out []Item
	for _, item := range p.nextBlockRaw() {
		stationID := item.to.StationID()
		if _, seen := p.emittedStations[stationID]; !seen {
			p.emittedStations[stationID] = struct{}{}
			trunk := 0
			if item.kind == qStopOnTrip {
				trunk = nameTrunkLength(item.from.Name, item.to.Name)
			}
			out = append(out, Station{
				Stop:            item.to,
				EarliestArrival: item.arrival,
				NameTrunkLength: trunk,
			})
		}
		if converted := p.convertItem(item); converted != nil {
			out = append(out, converted)
		}
	}
	return out
}

// nextBlockRaw pops and processes queue items until a block is decided,
// or returns nothing once the queue is empty or the next arrival falls
// outside the period. Leaving the period halts the search for good.
func (p *Plotter) nextBlockRaw() []queueItem {
	if p.done {
		return nil
	}
	for p.queue.Len() > 0 {
		item := heap.Pop(&p.queue).(queueItem)
		if !p.period.Contains(item.arrival) {
			p.done = true
			return nil
		}
		if processed := p.processQueueItem(item); len(processed) > 0 {
			return processed
		}
	}
	return nil
}

// convertItem produces the output form of a queue item. The origin
// yields only its Station item, handled by nextBlock.
func (p *Plotter) convertItem(item queueItem) Item {
	switch item.kind {
	case qOrigin:
		return nil
	case qTransfer:
		return Transfer{
			FromStop:      item.from,
			ToStop:        item.to,
			DepartureTime: item.departure,
			ArrivalTime:   item.arrival,
		}
	case qConnection:
		return ConnectionToTrip{
			FromStop:      item.from,
			ToStop:        item.to,
			DepartureTime: item.departure,
			ArrivalTime:   item.arrival,
			TripID:        item.tripID,
			RouteName:     item.route.ShortName,
			RouteType:     item.route.Type,
			RouteColor:    item.route.Color,
		}
	case qStopOnTrip:
		// only one time is shown at each stop along a trip: if this
		// segment bounds the earliest arrival at its endpoint we show
		// the vehicle's own time there, otherwise the time the stop was
		// actually reached
		departure := item.departure
		arrival := item.arrival
		if earliest, ok := p.stops[item.from.ID]; ok && earliest == item.prevArrival {
			departure = item.prevArrival
		}
		if earliest, ok := p.stops[item.to.ID]; !ok || arrival > earliest {
			arrival = item.nextDeparture
		}
		return SegmentOfTrip{
			FromStop:      item.from,
			ToStop:        item.to,
			DepartureTime: departure,
			ArrivalTime:   arrival,
			TripID:        item.tripID,
			RouteName:     item.route.ShortName,
			RouteType:     item.route.Type,
			RouteColor:    item.route.Color,
		}
	default:
		panic(fmt.Sprintf("radar: unknown queue item kind %d", item.kind))
	}
}

// processQueueItem expands the item, enqueuing any following segments,
// and returns the block of items to emit, if any.
func (p *Plotter) processQueueItem(item queueItem) []queueItem {
	if !p.setArrivalTime(item.to.ID, item.arrival) {
		// late arrival: a trip may still take us somewhere new
		// eventually, so park it; late transfers are dropped
		if item.kind == qStopOnTrip || item.kind == qConnection {
			p.slowTrips[item.tripID] = append(p.slowTrips[item.tripID], item)
		}
		return nil
	}

	switch item.kind {
	case qStopOnTrip:
		if !item.to.IsStation() {
			p.enqueueTransfersFromStop(item.to, item.arrival)
		}
		if station := p.data.Stop(item.to.StationID()); station != nil {
			p.enqueueTransfersFromStation(station, item.arrival)
		}
		if _, emitted := p.emittedStations[item.to.StationID()]; emitted {
			// nothing new to draw here, but the rest of the trip may
			// still be worth it
			p.slowTrips[item.tripID] = append(p.slowTrips[item.tripID], item)
			return nil
		}
		// reaching a new station makes the trip's parked items relevant
		if slow, ok := p.slowTrips[item.tripID]; ok {
			delete(p.slowTrips, item.tripID)
			return append(p.relocateBoarding(slow), item)
		}
		return []queueItem{item}

	case qConnection:
		// connections are enqueued together with their segments and
		// never improve an arrival on their own
		panic("radar: connection improved an arrival")

	case qTransfer:
		extended := p.enqueueConnectionsAndTrips(item)
		// transfers are only drawn when they reach a new station which
		// accesses other trips
		if !extended || item.from.StationID() == item.to.StationID() {
			return nil
		}
		return []queueItem{item}

	case qOrigin:
		p.enqueueImmediateTransfersToChildrenOf(item.to, item.arrival)
		p.enqueueTransfersFromStation(item.to, item.arrival)
		return []queueItem{item}

	default:
		panic(fmt.Sprintf("radar: unknown queue item kind %d", item.kind))
	}
}

// setArrivalTime records an arrival, reporting whether it is strictly
// earlier than anything known for the stop.
func (p *Plotter) setArrivalTime(stopID model.StopID, arrival gtfstime.Time) bool {
	previous, known := p.stops[stopID]
	if known && arrival >= previous {
		return false
	}
	p.stops[stopID] = arrival
	return true
}

// enqueueTransfersFromStop enqueues the declared transfers out of a stop
// whose targets have not been arrived at yet.
func (p *Plotter) enqueueTransfersFromStop(stop *model.Stop, departure gtfstime.Time) {
	for _, transfer := range stop.Transfers {
		if _, arrived := p.stops[transfer.To]; arrived {
			continue
		}
		to := p.data.Stop(transfer.To)
		if to == nil {
			continue
		}
		heap.Push(&p.queue, queueItem{
			arrival:   departure.Add(transfer.MinTime),
			to:        to,
			kind:      qTransfer,
			from:      stop,
			departure: departure,
		})
	}
}

// enqueueTransfersFromStation enqueues a station's declared transfers.
// Station transfers point at other stations, so the targets' children
// are enqueued too. Missing stops are skipped in case this is a partial
// dataset.
func (p *Plotter) enqueueTransfersFromStation(station *model.Stop, departure gtfstime.Time) {
	for _, transfer := range station.Transfers {
		if _, arrived := p.stops[transfer.To]; arrived {
			continue
		}
		target := p.data.Stop(transfer.To)
		if target == nil {
			continue
		}
		targets := append([]model.StopID{target.ID}, target.Children...)
		for _, toID := range targets {
			to := p.data.Stop(toID)
			if to == nil {
				continue
			}
			heap.Push(&p.queue, queueItem{
				arrival:   departure.Add(transfer.MinTime),
				to:        to,
				kind:      qTransfer,
				from:      station,
				departure: departure,
			})
		}
	}
}

// enqueueImmediateTransfersToChildrenOf puts the origin station and all
// of its platforms in reach at the start of the search.
func (p *Plotter) enqueueImmediateTransfersToChildrenOf(stop *model.Stop, arrival gtfstime.Time) {
	targets := append([]model.StopID{stop.ID}, stop.Children...)
	for _, toID := range targets {
		to := p.data.Stop(toID)
		if to == nil {
			continue
		}
		heap.Push(&p.queue, queueItem{
			arrival:   arrival,
			to:        to,
			kind:      qTransfer,
			from:      stop,
			departure: arrival,
		})
	}
}

// enqueueConnectionsAndTrips expands every allowed trip departing the
// item's stop after its arrival, enqueueing a boarding connection (the
// wait at the stop from arriving there until the vehicle leaves) and
// the per-segment hops. Each trip is expanded at most once; reports
// whether any trip was newly expanded.
func (p *Plotter) enqueueConnectionsAndTrips(item queueItem) bool {
	extended := false
	for _, dep := range p.data.TripsFrom(item.to, p.services, p.period.WithStart(item.arrival)) {
		trip := dep.Trip
		if _, allowed := p.routeTypes[trip.Route.Type]; !allowed {
			continue
		}
		if _, seen := p.enqueuedTrips[trip.ID]; seen {
			continue
		}
		p.enqueuedTrips[trip.ID] = struct{}{}
		extended = true

		route := &trip.Route
		stops := dep.StopTimes
		heap.Push(&p.queue, queueItem{
			arrival:   stops[0].Departure,
			to:        item.to,
			kind:      qConnection,
			from:      item.to,
			departure: item.arrival,
			tripID:    trip.ID,
			route:     route,
		})
		for i := 0; i+1 < len(stops); i++ {
			from, to := stops[i], stops[i+1]
			if !p.period.Contains(to.Arrival) {
				continue
			}
			fromStop := p.data.Stop(from.StopID)
			toStop := p.data.Stop(to.StopID)
			if fromStop == nil || toStop == nil {
				// these stops won't be there if this stop time is
				// filtered out of the dataset
				continue
			}
			heap.Push(&p.queue, queueItem{
				arrival:       to.Arrival,
				to:            toStop,
				kind:          qStopOnTrip,
				from:          fromStop,
				departure:     from.Departure,
				tripID:        trip.ID,
				route:         route,
				prevArrival:   from.Arrival,
				nextDeparture: to.Departure,
			})
		}
	}
	return extended
}

// relocateBoarding fixes up a parked slow trip that just became useful:
// we should board at the stop of the trip we can get to the earliest,
// not at the stop where we first encountered it. If that moves the
// boarding later along the trip, a connection is synthesized there and
// the earlier items dropped.
func (p *Plotter) relocateBoarding(slowTrip []queueItem) []queueItem {
	boardingIdx := -1
	var firstArrival gtfstime.Time
	for i, item := range slowTrip {
		if item.from == nil {
			panic("radar: slow trip contains an item without a from stop")
		}
		earliest, arrived := p.stops[item.from.ID]
		if !arrived {
			continue
		}
		if boardingIdx == -1 || earliest < firstArrival {
			boardingIdx = i
			firstArrival = earliest
		}
	}
	if boardingIdx <= 0 {
		return slowTrip
	}
	item := slowTrip[boardingIdx]
	if item.kind != qStopOnTrip {
		panic(fmt.Sprintf("radar: expected a stop on trip %d to board at", item.tripID))
	}
	connection := queueItem{
		arrival:   item.departure,
		to:        item.from,
		kind:      qConnection,
		from:      item.from,
		departure: firstArrival,
		tripID:    item.tripID,
		route:     item.route,
	}
	return append([]queueItem{connection}, slowTrip[boardingIdx:]...)
}

// nameTrunkLength is the length of the common prefix of the two names
// when it ends on a word boundary, otherwise zero. Renderers use it to
// drop the repeated part of a neighbouring station's name.
func nameTrunkLength(from, to string) int {
	n := 0
	for n < len(from) && n < len(to) && from[n] == to[n] {
		n++
	}
	if n == 0 || from[n-1] == ' ' {
		return 0
	}
	if (n == len(from) || from[n] == ' ') && (n == len(to) || to[n] == ' ') {
		return n
	}
	return 0
}
