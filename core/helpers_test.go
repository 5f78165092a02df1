package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const allFlags = StopPickup | StopDropOff | StopWheelchair

// day0 is midnight of the test service day, in UTC
var day0 = time.Date(2009, 9, 9, 0, 0, 0, 0, time.UTC).UnixMilli()

func at(h, m, s int) int64 {
	return day0 + int64(h*3600+m*60+s)*1000
}

func hms(h, m int) int { return h*3600 + m*60 }

func testRoute(id string) *Route {
	return &Route{ID: id, AgencyID: "agency", ShortName: id, Mode: ModeBus, Type: 3}
}

// threeStopPattern has trips leaving A at 08:00 and 08:10, 10 minutes per
// hop and a one minute dwell at B
func threeStopPattern(t *testing.T, route *Route) *TripPattern {
	t.Helper()
	stops := []PatternStop{{ID: "A", Zone: "1", Flags: allFlags}, {ID: "B", Zone: "1", Flags: allFlags}, {ID: "C", Zone: "2", Flags: allFlags}}
	p := NewTripPattern(&Trip{ID: route.ID + "_T1", ServiceID: "S", Route: route, Wheelchair: true}, stops)
	for i, dep := range []int{hms(8, 0), hms(8, 10)} {
		trip := &Trip{ID: route.ID + "_T" + string(rune('1'+i)), ServiceID: "S", Route: route, Wheelchair: true}
		arr := []int{dep, dep + 600, dep + 1260}
		deps := []int{dep, dep + 660, dep + 1260}
		require.NoError(t, p.AddTrip(trip, arr, deps))
	}
	return p
}

func testOptions() *TraverseOptions {
	o := DefaultTraverseOptions()
	o.TransferPenalty = 0
	return o
}

type calendarFunc func(serviceID string, day time.Time) bool

func (f calendarFunc) ServiceOn(serviceID string, day time.Time) bool { return f(serviceID, day) }
