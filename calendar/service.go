package calendar

import (
	"sort"
	"time"

	"github.com/theoremus-urban-solutions/transit-router/gtfs"
)

type date struct {
	y int
	m time.Month
	d int
}

func dateOf(t time.Time) date {
	y, m, d := t.Date()
	return date{y, m, d}
}

func (a date) before(b date) bool {
	if a.y != b.y {
		return a.y < b.y
	}
	if a.m != b.m {
		return a.m < b.m
	}
	return a.d < b.d
}

type weekly struct {
	days       [7]bool
	start, end date
}

// Service is an immutable service calendar, safe for concurrent use
type Service struct {
	weekly  map[string]weekly
	added   map[date]map[string]bool
	removed map[date]map[string]bool
}

// New returns an empty calendar on which no service runs
func New() *Service {
	return &Service{
		weekly:  make(map[string]weekly),
		added:   make(map[date]map[string]bool),
		removed: make(map[date]map[string]bool),
	}
}

// NewFromFeed builds the calendar of a loaded GTFS feed
func NewFromFeed(feed *gtfs.Feed) *Service {
	s := New()
	for id, c := range feed.Calendars {
		s.AddWeekly(id, c.Days, c.Start, c.End)
	}
	for _, cd := range feed.CalendarDates {
		switch cd.ExceptionType {
		case gtfs.ServiceAdded:
			s.AddDate(cd.ServiceID, cd.Date)
		case gtfs.ServiceRemoved:
			s.RemoveDate(cd.ServiceID, cd.Date)
		}
	}
	return s
}

// AddWeekly registers a weekly pattern valid from start to end inclusive.
// days is indexed by time.Weekday.
func (s *Service) AddWeekly(serviceID string, days [7]bool, start, end time.Time) {
	s.weekly[serviceID] = weekly{days: days, start: dateOf(start), end: dateOf(end)}
}

// AddDate makes the service run on the given date
func (s *Service) AddDate(serviceID string, day time.Time) {
	d := dateOf(day)
	if s.added[d] == nil {
		s.added[d] = make(map[string]bool)
	}
	s.added[d][serviceID] = true
}

// RemoveDate stops the service from running on the given date
func (s *Service) RemoveDate(serviceID string, day time.Time) {
	d := dateOf(day)
	if s.removed[d] == nil {
		s.removed[d] = make(map[string]bool)
	}
	s.removed[d][serviceID] = true
}

// ServiceOn reports whether the service runs on the civil date of serviceDate
func (s *Service) ServiceOn(serviceID string, serviceDate time.Time) bool {
	d := dateOf(serviceDate)
	if s.removed[d][serviceID] {
		return false
	}
	if s.added[d][serviceID] {
		return true
	}
	w, ok := s.weekly[serviceID]
	if !ok || d.before(w.start) || w.end.before(d) {
		return false
	}
	return w.days[serviceDate.Weekday()]
}

// ActiveServiceIDs returns the sorted ids of every service running on day
func (s *Service) ActiveServiceIDs(day time.Time) []string {
	seen := make(map[string]bool)
	for id := range s.weekly {
		seen[id] = true
	}
	for id := range s.added[dateOf(day)] {
		seen[id] = true
	}
	var out []string
	for id := range seen {
		if s.ServiceOn(id, day) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
