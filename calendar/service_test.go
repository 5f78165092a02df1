package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestServiceOn(t *testing.T) {
	s := New()
	weekdays := [7]bool{false, true, true, true, true, true, false}
	s.AddWeekly("WD", weekdays, day(2009, 1, 1), day(2009, 12, 31))
	s.AddWeekly("WE", [7]bool{true, false, false, false, false, false, true}, day(2009, 1, 1), day(2009, 12, 31))
	s.RemoveDate("WD", day(2009, 9, 7))
	s.AddDate("WE", day(2009, 9, 7))
	s.AddDate("SPECIAL", day(2009, 7, 4))

	la, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		service string
		at      time.Time
		want    bool
	}{
		{"weekday service on a wednesday", "WD", day(2009, 9, 9), true},
		{"weekday service on a saturday", "WD", day(2009, 9, 12), false},
		{"weekend service on a saturday", "WE", day(2009, 9, 12), true},
		{"removed holiday", "WD", day(2009, 9, 7), false},
		{"added holiday", "WE", day(2009, 9, 7), true},
		{"outside the date range", "WD", day(2010, 1, 6), false},
		{"added-only service", "SPECIAL", day(2009, 7, 4), true},
		{"added-only service on another day", "SPECIAL", day(2009, 7, 5), false},
		{"unknown service", "NOPE", day(2009, 9, 9), false},
		{"civil date of the given location", "WD", time.Date(2009, 9, 9, 23, 30, 0, 0, la), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.ServiceOn(tt.service, tt.at))
		})
	}
}

func TestActiveServiceIDs(t *testing.T) {
	s := New()
	all := [7]bool{true, true, true, true, true, true, true}
	s.AddWeekly("B", all, day(2009, 1, 1), day(2009, 12, 31))
	s.AddWeekly("A", all, day(2009, 1, 1), day(2009, 12, 31))
	s.AddDate("C", day(2009, 3, 3))
	s.RemoveDate("B", day(2009, 3, 3))

	assert.Equal(t, []string{"A", "C"}, s.ActiveServiceIDs(day(2009, 3, 3)))
	assert.Equal(t, []string{"A", "B"}, s.ActiveServiceIDs(day(2009, 3, 4)))
	assert.Empty(t, s.ActiveServiceIDs(day(2011, 1, 1)))
}
