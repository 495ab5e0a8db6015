package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Identifiers for the GTFS entities the radar works with. They are
// numeric in the source feeds, but a couple of them arrive in decorated
// string forms which the parsers below tolerate.
type (
	StopID    uint64
	TripID    uint32
	RouteID   uint32
	ServiceID uint16
)

// ParseStopID reads a stop id, skipping any leading non-digit bytes.
// One of VBB's stop ids has 'D_' in front of it, reason unknown; the
// rest of the id matches the stop's parent. Everything after the first
// digit must be a digit.
func ParseStopID(s string) (StopID, error) {
	start := 0
	for start < len(s) && !isDigit(s[start]) {
		start++
	}
	if start == len(s) {
		return 0, fmt.Errorf("no digits in stop id %q", s)
	}
	id, err := strconv.ParseUint(s[start:], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing stop id %q: %w", s, err)
	}
	return StopID(id), nil
}

// UnmarshalCSV lets gocsv read the tolerant form directly.
func (id *StopID) UnmarshalCSV(s string) error {
	parsed, err := ParseStopID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseRouteID reads a route id. The VBB format is eg. `19105_700`; the
// first part is unique on its own and the second just duplicates the
// route type, so it is discarded.
func ParseRouteID(s string) (RouteID, error) {
	head, _, _ := strings.Cut(s, "_")
	id, err := strconv.ParseUint(head, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parsing route id %q: %w", s, err)
	}
	return RouteID(id), nil
}

func (id *RouteID) UnmarshalCSV(s string) error {
	parsed, err := ParseRouteID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func isDigit(b byte) bool { return '0' <= b && b <= '9' }
