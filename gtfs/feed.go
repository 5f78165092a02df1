package gtfs

import (
	"fmt"
	"sort"
	"time"
)

// Feed holds every record read from a GTFS static feed
type Feed struct {
	Agencies       []*Agency
	Stops          map[string]*Stop
	Routes         map[string]*Route
	Trips          map[string]*Trip
	StopTimes      map[string][]*StopTime // by trip id, sorted by stop_sequence
	Calendars      map[string]*Calendar
	CalendarDates  []*CalendarDate
	Transfers      []*Transfer
	Frequencies    map[string][]*Frequency // by trip id
	Shapes         map[string][]*ShapePoint
	FareAttributes map[string]*FareAttribute
	FareRules      []*FareRule
}

func newFeed() *Feed {
	return &Feed{
		Stops:          make(map[string]*Stop),
		Routes:         make(map[string]*Route),
		Trips:          make(map[string]*Trip),
		StopTimes:      make(map[string][]*StopTime),
		Calendars:      make(map[string]*Calendar),
		Frequencies:    make(map[string][]*Frequency),
		Shapes:         make(map[string][]*ShapePoint),
		FareAttributes: make(map[string]*FareAttribute),
	}
}

// DefaultAgency returns the first agency of the feed, or nil
func (f *Feed) DefaultAgency() *Agency {
	if len(f.Agencies) == 0 {
		return nil
	}
	return f.Agencies[0]
}

// DefaultAgencyID returns the id used to qualify stop labels
func (f *Feed) DefaultAgencyID() string {
	if a := f.DefaultAgency(); a != nil {
		return a.ID
	}
	return ""
}

// Agency looks up an agency by id; an empty id resolves to the default agency
func (f *Feed) Agency(id string) *Agency {
	if id == "" {
		return f.DefaultAgency()
	}
	for _, a := range f.Agencies {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// Timezone resolves the default agency's time zone
func (f *Feed) Timezone() (*time.Location, error) {
	a := f.DefaultAgency()
	if a == nil || a.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return nil, fmt.Errorf("agency %s timezone: %w", a.ID, err)
	}
	return loc, nil
}

// TripIDs returns every trip id in lexical order
func (f *Feed) TripIDs() []string {
	ids := make([]string, 0, len(f.Trips))
	for id := range f.Trips {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// StopIDs returns every stop id in lexical order
func (f *Feed) StopIDs() []string {
	ids := make([]string, 0, len(f.Stops))
	for id := range f.Stops {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
