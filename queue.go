package radar

import (
	"github.com/platy/transit-radar/gtfstime"
	"github.com/platy/transit-radar/model"
)

// queueKind tags the variant of a queue item. The numeric order matters:
// at equal arrival times the origin is processed first, then transfers,
// then connections, then stops on trips.
type queueKind uint8

const (
	qStopOnTrip queueKind = iota
	qConnection
	qTransfer
	qOrigin
)

// queueItem is a pending event of the search: an arrival at a stop by
// one of the variants. The extra times on qStopOnTrip exist to keep a
// trip's segments adjacent in the queue and to refine displayed times;
// they never affect which paths are found.
type queueItem struct {
	arrival gtfstime.Time
	to      *model.Stop
	kind    queueKind

	// all but qOrigin
	from      *model.Stop
	departure gtfstime.Time

	// qConnection and qStopOnTrip
	tripID model.TripID
	route  *model.Route

	// qStopOnTrip only
	prevArrival   gtfstime.Time // arrival at the from stop
	nextDeparture gtfstime.Time // departure from the to stop
}

// queueHeap orders pending events so that the earliest arrival is popped
// first. Ties are broken by the stop-on-trip time triple (so segments of
// one trip pop in order even when an occasional bus line has sub-minute
// stops), then by the variant tag and stop id to pin a total order.
type queueHeap []queueItem

func (h queueHeap) Len() int { return len(h) }

func (h queueHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.arrival != b.arrival {
		return a.arrival < b.arrival
	}
	if a.kind == qStopOnTrip && b.kind == qStopOnTrip {
		if a.prevArrival != b.prevArrival {
			return a.prevArrival < b.prevArrival
		}
		if a.departure != b.departure {
			return a.departure < b.departure
		}
		if a.nextDeparture != b.nextDeparture {
			return a.nextDeparture < b.nextDeparture
		}
	}
	if a.kind != b.kind {
		return a.kind > b.kind
	}
	if a.to.ID != b.to.ID {
		return a.to.ID > b.to.ID
	}
	if a.departure != b.departure {
		return a.departure < b.departure
	}
	return a.tripID < b.tripID
}

func (h queueHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *queueHeap) Push(x any) {
	*h = append(*h, x.(queueItem))
}

func (h *queueHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
