package core

import (
	"fmt"
	"sort"
)

// Per-stop flags of a pattern
const (
	StopPickup uint8 = 1 << iota
	StopDropOff
	StopWheelchair
)

// PatternStop describes one stop of a pattern's stop sequence
type PatternStop struct {
	ID    string
	Zone  string
	Flags uint8
}

// TripPattern is the shared schedule of trips with the same stop sequence,
// pickup/drop-off rules and service. Times are seconds since service-day
// midnight. Hop i runs from stop i to stop i+1.
//
// Trips are kept in departure order and never overtake each other; AddHop
// refuses a trip that would.
type TripPattern struct {
	Exemplar  *Trip
	Route     *Route
	ServiceID string
	Mode      TraverseMode

	stops []PatternStop
	trips []*Trip

	departureTimes [][]int // [hop][trip]
	runningTimes   [][]int
	arrivalTimes   [][]int // arrival at stop hop+1
	dwellTimes     [][]int // dwell at stop hop, zero for hop 0

	broken bool
}

// NewTripPattern returns an empty pattern for the exemplar trip's route and
// service
func NewTripPattern(exemplar *Trip, stops []PatternStop) *TripPattern {
	hops := len(stops) - 1
	if hops < 0 {
		hops = 0
	}
	p := &TripPattern{
		Exemplar:       exemplar,
		Route:          exemplar.Route,
		ServiceID:      exemplar.ServiceID,
		stops:          append([]PatternStop(nil), stops...),
		departureTimes: make([][]int, hops),
		runningTimes:   make([][]int, hops),
		arrivalTimes:   make([][]int, hops),
		dwellTimes:     make([][]int, hops),
	}
	if exemplar.Route != nil {
		p.Mode = exemplar.Route.Mode
	}
	return p
}

func (p *TripPattern) String() string {
	return fmt.Sprintf("pattern(%s, %d stops, %d trips)", p.Exemplar.ID, len(p.stops), len(p.trips))
}

// NumStops returns the number of stops
func (p *TripPattern) NumStops() int { return len(p.stops) }

// NumHops returns the number of hops
func (p *TripPattern) NumHops() int { return len(p.departureTimes) }

// NumTrips returns the number of trips
func (p *TripPattern) NumTrips() int { return len(p.trips) }

// Trip returns the trip at index t
func (p *TripPattern) Trip(t int) *Trip { return p.trips[t] }

// Stop returns the stop at index i
func (p *TripPattern) Stop(i int) PatternStop { return p.stops[i] }

// Zone returns the fare zone of stop i
func (p *TripPattern) Zone(i int) string { return p.stops[i].Zone }

// CanBoard reports whether pickup is allowed at stop i
func (p *TripPattern) CanBoard(i int) bool { return p.stops[i].Flags&StopPickup != 0 }

// CanAlight reports whether drop-off is allowed at stop i
func (p *TripPattern) CanAlight(i int) bool { return p.stops[i].Flags&StopDropOff != 0 }

// StopWheelchair reports whether stop i is wheelchair accessible
func (p *TripPattern) StopWheelchair(i int) bool { return p.stops[i].Flags&StopWheelchair != 0 }

// Broken reports whether the pattern holds times that run backwards. Broken
// patterns answer every trip query with no candidate.
func (p *TripPattern) Broken() bool { return p.broken }

// DepartureTime is the departure of trip t from stop hop
func (p *TripPattern) DepartureTime(hop, t int) int { return p.departureTimes[hop][t] }

// ArrivalTime is the arrival of trip t at stop hop+1
func (p *TripPattern) ArrivalTime(hop, t int) int { return p.arrivalTimes[hop][t] }

// RunningTime is the duration of hop for trip t
func (p *TripPattern) RunningTime(hop, t int) int { return p.runningTimes[hop][t] }

// DwellTime is the time trip t spends at stop
func (p *TripPattern) DwellTime(stop, t int) int { return p.dwellTimes[stop][t] }

// DepartureTimeInsertionPoint returns where a trip departing the first stop
// at dep belongs. A negative value means a trip already departs at dep.
func (p *TripPattern) DepartureTimeInsertionPoint(dep int) int {
	if len(p.departureTimes) == 0 {
		return 0
	}
	deps := p.departureTimes[0]
	i := sort.SearchInts(deps, dep)
	if i < len(deps) && deps[i] == dep {
		return -(i + 1)
	}
	return i
}

// AddHop inserts the times of trip for one hop at insertion point ip. The
// trip itself is recorded with hop 0. ErrTripOvertaking is returned, and the
// pattern left unchanged, when the trip would pass or be passed by a
// neighbor on this hop.
func (p *TripPattern) AddHop(hop, ip, dep, run, arr, dwell int, trip *Trip) error {
	deps := p.departureTimes[hop]
	arrs := p.arrivalTimes[hop]
	if ip < 0 || ip > len(deps) {
		return fmt.Errorf("insertion point %d out of range", ip)
	}
	if ip > 0 && (deps[ip-1] > dep || arrs[ip-1] > arr) {
		return fmt.Errorf("%w: trip %s hop %d", ErrTripOvertaking, trip.ID, hop)
	}
	if ip < len(deps) && (deps[ip] < dep || arrs[ip] < arr) {
		return fmt.Errorf("%w: trip %s hop %d", ErrTripOvertaking, trip.ID, hop)
	}
	if run < 0 || dwell < 0 || arr < dep {
		p.broken = true
	}
	p.departureTimes[hop] = insertAt(deps, ip, dep)
	p.runningTimes[hop] = insertAt(p.runningTimes[hop], ip, run)
	p.arrivalTimes[hop] = insertAt(arrs, ip, arr)
	p.dwellTimes[hop] = insertAt(p.dwellTimes[hop], ip, dwell)
	if hop == 0 {
		p.trips = append(p.trips, nil)
		copy(p.trips[ip+1:], p.trips[ip:])
		p.trips[ip] = trip
	}
	return nil
}

// AddTrip inserts a trip from its arrival and departure time at every stop.
// The pattern is left unchanged when an error is returned.
func (p *TripPattern) AddTrip(trip *Trip, arrivals, departures []int) error {
	if len(arrivals) != len(p.stops) || len(departures) != len(p.stops) {
		return fmt.Errorf("trip %s has %d/%d times for %d stops", trip.ID, len(arrivals), len(departures), len(p.stops))
	}
	if len(p.departureTimes) == 0 {
		return fmt.Errorf("trip %s: pattern has no hops", trip.ID)
	}
	ip := p.DepartureTimeInsertionPoint(departures[0])
	if ip < 0 {
		return fmt.Errorf("%w: trip %s at %d", ErrDuplicateTrip, trip.ID, departures[0])
	}
	for h := range p.departureTimes {
		dep, arr := departures[h], arrivals[h+1]
		dwell := 0
		if h > 0 {
			dwell = departures[h] - arrivals[h]
		}
		if err := p.AddHop(h, ip, dep, arr-dep, arr, dwell, trip); err != nil {
			for k := h - 1; k >= 0; k-- {
				p.RemoveHop(k, ip)
			}
			return err
		}
	}
	return nil
}

// RemoveHop undoes AddHop for one hop
func (p *TripPattern) RemoveHop(hop, ip int) {
	p.departureTimes[hop] = removeAt(p.departureTimes[hop], ip)
	p.runningTimes[hop] = removeAt(p.runningTimes[hop], ip)
	p.arrivalTimes[hop] = removeAt(p.arrivalTimes[hop], ip)
	p.dwellTimes[hop] = removeAt(p.dwellTimes[hop], ip)
	if hop == 0 {
		p.trips = append(p.trips[:ip], p.trips[ip+1:]...)
	}
}

func insertAt(s []int, i, v int) []int {
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

func removeAt(s []int, i int) []int {
	return append(s[:i], s[i+1:]...)
}

// TripIndex returns the index of trip, matching on the first departure to
// tell apart frequency-expanded runs, or -1
func (p *TripPattern) TripIndex(trip *Trip, firstDeparture int) int {
	for i, t := range p.trips {
		if t == trip && (len(p.departureTimes) == 0 || p.departureTimes[0][i] == firstDeparture) {
			return i
		}
	}
	return -1
}

// NextTrip returns the first trip departing stop hop at or after afterTime
// that satisfies the wheelchair requirement and usable, or -1
func (p *TripPattern) NextTrip(hop, afterTime int, wheelchair bool, usable func(*Trip) bool) int {
	if p.broken || hop >= len(p.departureTimes) {
		return -1
	}
	deps := p.departureTimes[hop]
	for i := sort.SearchInts(deps, afterTime); i < len(deps); i++ {
		t := p.trips[i]
		if wheelchair && !t.Wheelchair {
			continue
		}
		if usable != nil && !usable(t) {
			continue
		}
		return i
	}
	return -1
}

// PreviousTrip returns the last trip arriving at stop hop+1 at or before
// beforeTime that satisfies the wheelchair requirement and usable, or -1
func (p *TripPattern) PreviousTrip(hop, beforeTime int, wheelchair bool, usable func(*Trip) bool) int {
	if p.broken || hop >= len(p.arrivalTimes) {
		return -1
	}
	arrs := p.arrivalTimes[hop]
	for i := sort.SearchInts(arrs, beforeTime+1) - 1; i >= 0; i-- {
		t := p.trips[i]
		if wheelchair && !t.Wheelchair {
			continue
		}
		if usable != nil && !usable(t) {
			continue
		}
		return i
	}
	return -1
}

// onBoard reports whether s rides a trip of this pattern
func (p *TripPattern) onBoard(s *State) bool {
	return s.PatternIndex >= 0 && s.PatternIndex < len(p.trips) && p.trips[s.PatternIndex].ID == s.TripID
}
