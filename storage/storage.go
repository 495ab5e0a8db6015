// Package storage archives built schedule indexes so that serving does
// not have to re-parse a feed on every start.
//
// A snapshot is one built schedule.Data together with where it came
// from. Backends: in-memory (tests), sqlite (single host) and postgres
// (shared).
package storage

import (
	"time"

	"github.com/pkg/errors"

	"github.com/platy/transit-radar/schedule"
)

// ErrNotFound is returned when no snapshot matches.
var ErrNotFound = errors.New("snapshot not found")

// SnapshotMetadata records the provenance of an archived schedule.
type SnapshotMetadata struct {
	// URL the feed archive was downloaded from.
	URL string
	// Hash of the raw feed archive, hex encoded. Identifies the
	// snapshot.
	Hash string
	// DayFilter is the weekday the schedule was restricted to while
	// parsing, or blank for the whole week.
	DayFilter string

	RetrievedAt        time.Time
	TimetableStartDate string
}

// ListFilter narrows ListSnapshots. Blank fields match everything.
type ListFilter struct {
	URL  string
	Hash string
}

// Storage is a snapshot archive. Writing a snapshot with the hash and
// day filter of an existing one replaces it.
type Storage interface {
	ListSnapshots(filter ListFilter) ([]*SnapshotMetadata, error)
	WriteSnapshot(meta *SnapshotMetadata, data *schedule.Data) error

	// ReadSnapshot loads the archived schedule for hash and day
	// filter. Returns ErrNotFound if it was never written.
	ReadSnapshot(hash, dayFilter string) (*schedule.Data, *SnapshotMetadata, error)

	DeleteSnapshot(hash, dayFilter string) error
}
