package radar

// Whitebox test of queue internals. The comparator decides emission
// order across equal-arrival events, so its behavior is pinned here.

import (
	"container/heap"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/platy/transit-radar/gtfstime"
	"github.com/platy/transit-radar/model"
)

func TestQueueOrdering(t *testing.T) {
	stopA := &model.Stop{ID: 1}
	stopB := &model.Stop{ID: 2}

	ten := gtfstime.FromHMS(10, 0, 0)
	tenOhFive := gtfstime.FromHMS(10, 5, 0)

	var q queueHeap

	// arrival time dominates
	heap.Push(&q, queueItem{arrival: tenOhFive, to: stopA, kind: qStopOnTrip})
	heap.Push(&q, queueItem{arrival: ten, to: stopA, kind: qStopOnTrip})
	assert.Equal(t, ten, heap.Pop(&q).(queueItem).arrival)
	assert.Equal(t, tenOhFive, heap.Pop(&q).(queueItem).arrival)

	// at equal arrival, origin is processed first, then transfers,
	// then connections, then stops on trips
	heap.Push(&q, queueItem{arrival: ten, to: stopA, kind: qStopOnTrip})
	heap.Push(&q, queueItem{arrival: ten, to: stopA, kind: qTransfer})
	heap.Push(&q, queueItem{arrival: ten, to: stopA, kind: qOrigin})
	heap.Push(&q, queueItem{arrival: ten, to: stopA, kind: qConnection})
	kinds := []queueKind{}
	for q.Len() > 0 {
		kinds = append(kinds, heap.Pop(&q).(queueItem).kind)
	}
	assert.Equal(t, []queueKind{qOrigin, qTransfer, qConnection, qStopOnTrip}, kinds)

	// equal-arrival stops on one trip pop in stop order, keyed by the
	// previous arrival / departure / next departure triple
	first := queueItem{
		arrival: tenOhFive, to: stopB, kind: qStopOnTrip,
		prevArrival:   gtfstime.FromHMS(10, 1, 0),
		departure:     gtfstime.FromHMS(10, 1, 0),
		nextDeparture: tenOhFive,
	}
	second := queueItem{
		arrival: tenOhFive, to: stopA, kind: qStopOnTrip,
		prevArrival:   gtfstime.FromHMS(10, 3, 0),
		departure:     gtfstime.FromHMS(10, 3, 0),
		nextDeparture: tenOhFive,
	}
	heap.Push(&q, second)
	heap.Push(&q, first)
	assert.Equal(t, stopB, heap.Pop(&q).(queueItem).to)
	assert.Equal(t, stopA, heap.Pop(&q).(queueItem).to)

	// same kind and times: the greater stop id pops first
	heap.Push(&q, queueItem{arrival: ten, to: stopA, kind: qTransfer})
	heap.Push(&q, queueItem{arrival: ten, to: stopB, kind: qTransfer})
	assert.Equal(t, stopB, heap.Pop(&q).(queueItem).to)
	assert.Equal(t, stopA, heap.Pop(&q).(queueItem).to)
}

func TestNameTrunkLength(t *testing.T) {
	// ends at a word boundary of the longer name
	assert.Equal(t, 16, nameTrunkLength("U Alexanderplatz", "U Alexanderplatz (S)"))
	// prefix ends mid-word
	assert.Equal(t, 0, nameTrunkLength("U Alex", "U Alexanderplatz"))
	// no shared prefix
	assert.Equal(t, 0, nameTrunkLength("Hauptbahnhof", "Alexanderplatz"))
	// identical names
	assert.Equal(t, 7, nameTrunkLength("Spandau", "Spandau"))
	// shared prefix ending in whitespace does not count
	assert.Equal(t, 0, nameTrunkLength("S Foo", "S Bar"))
	// whole shorter name at a word boundary of the longer
	assert.Equal(t, 2, nameTrunkLength("SU", "SU Nord"))
}
