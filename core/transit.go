package core

import (
	"github.com/paulmach/orb"
)

// PatternBoard boards a trip of Pattern at stop Hop
type PatternBoard struct {
	Pattern *TripPattern
	Hop     int
}

// PatternAlight leaves a trip of Pattern at stop Hop+1
type PatternAlight struct {
	Pattern *TripPattern
	Hop     int
}

// PatternHop rides a trip of Pattern from stop Hop to stop Hop+1
type PatternHop struct {
	Pattern  *TripPattern
	Hop      int
	Length   float64
	Geometry orb.LineString
}

// PatternDwell stays on board at intermediate stop Stop
type PatternDwell struct {
	Pattern *TripPattern
	Stop    int
}

func (p *PatternBoard) usable(o *TraverseOptions) bool {
	pat := p.Pattern
	if !o.Modes.Has(pat.Mode) || !pat.CanBoard(p.Hop) || o.BannedRoutes.Matches(pat.Route) {
		return false
	}
	return !o.Wheelchair || pat.StopWheelchair(p.Hop)
}

func (p *PatternBoard) traverse(s *State, o *TraverseOptions) *TraverseResult {
	if s.OnBoard() || !p.usable(o) {
		return nil
	}
	pat := p.Pattern
	bestTrip, bestWait := -1, int64(0)
	for _, sd := range o.serviceDays(s.Time) {
		if !o.serviceOn(pat.ServiceID, sd.date) {
			continue
		}
		since := s.Time - sd.midnight
		t := pat.NextTrip(p.Hop, int(ceilDiv(since, 1000)), o.Wheelchair, o.tripUsable)
		if t < 0 {
			continue
		}
		wait := int64(pat.DepartureTime(p.Hop, t))*1000 - since
		if bestTrip < 0 || wait < bestWait {
			bestTrip, bestWait = t, wait
		}
	}
	if bestTrip < 0 {
		return nil
	}
	trip := pat.Trip(bestTrip)
	n := s.Clone()
	n.Time += bestWait
	n.TripID = trip.ID
	n.PatternIndex = bestTrip
	n.RouteID = pat.Route.ID
	n.NumBoardings++
	n.JustTransferred = false
	w := float64(bestWait)/1000 + o.BoardCost
	if s.NumBoardings > 0 {
		w += o.TransferPenalty
	}
	return &TraverseResult{Weight: w, State: n}
}

// traverseBack steps off the vehicle onto the platform at the departure
// instant. Waiting before the departure is charged by the preceding edges.
func (p *PatternBoard) traverseBack(s *State, o *TraverseOptions) *TraverseResult {
	if !p.Pattern.onBoard(s) || !p.usable(o) {
		return nil
	}
	if o.Wheelchair && !p.Pattern.Trip(s.PatternIndex).Wheelchair {
		return nil
	}
	n := s.Clone()
	n.leaveVehicle()
	n.NumBoardings--
	return &TraverseResult{Weight: 0, State: n}
}

func (p *PatternAlight) usable(o *TraverseOptions) bool {
	pat := p.Pattern
	if !o.Modes.Has(pat.Mode) || !pat.CanAlight(p.Hop+1) || o.BannedRoutes.Matches(pat.Route) {
		return false
	}
	return !o.Wheelchair || pat.StopWheelchair(p.Hop+1)
}

func (p *PatternAlight) traverse(s *State, o *TraverseOptions) *TraverseResult {
	if !p.Pattern.onBoard(s) || !p.usable(o) {
		return nil
	}
	n := s.Clone()
	n.leaveVehicle()
	return &TraverseResult{Weight: 0, State: n}
}

// traverseBack finds the latest trip arriving at or before the state time,
// which is the boarding seen from an arrive-by search
func (p *PatternAlight) traverseBack(s *State, o *TraverseOptions) *TraverseResult {
	if s.OnBoard() || !p.usable(o) {
		return nil
	}
	pat := p.Pattern
	bestTrip, bestWait := -1, int64(0)
	for _, sd := range o.serviceDays(s.Time) {
		if !o.serviceOn(pat.ServiceID, sd.date) {
			continue
		}
		since := s.Time - sd.midnight
		t := pat.PreviousTrip(p.Hop, int(floorDiv(since, 1000)), o.Wheelchair, o.tripUsable)
		if t < 0 {
			continue
		}
		wait := since - int64(pat.ArrivalTime(p.Hop, t))*1000
		if bestTrip < 0 || wait < bestWait {
			bestTrip, bestWait = t, wait
		}
	}
	if bestTrip < 0 {
		return nil
	}
	trip := pat.Trip(bestTrip)
	n := s.Clone()
	n.Time -= bestWait
	n.TripID = trip.ID
	n.PatternIndex = bestTrip
	n.RouteID = pat.Route.ID
	n.JustTransferred = false
	w := float64(bestWait)/1000 + o.BoardCost
	if s.NumBoardings < 0 {
		w += o.TransferPenalty
	}
	return &TraverseResult{Weight: w, State: n}
}

func (p *PatternHop) traverse(s *State, back bool) *TraverseResult {
	pat := p.Pattern
	if pat.broken || !pat.onBoard(s) {
		return nil
	}
	run := pat.RunningTime(p.Hop, s.PatternIndex)
	return shiftOnBoard(s, run, back)
}

func (p *PatternDwell) traverse(s *State, back bool) *TraverseResult {
	pat := p.Pattern
	if pat.broken || !pat.onBoard(s) {
		return nil
	}
	dwell := pat.DwellTime(p.Stop, s.PatternIndex)
	return shiftOnBoard(s, dwell, back)
}

func shiftOnBoard(s *State, secs int, back bool) *TraverseResult {
	n := s.Clone()
	if back {
		n.Time -= int64(secs) * 1000
	} else {
		n.Time += int64(secs) * 1000
	}
	return &TraverseResult{Weight: float64(secs), State: n}
}

// InterlineDwellData is one trip-to-trip continuation of an interline dwell
type InterlineDwellData struct {
	DwellTime    int // seconds
	PatternIndex int // index of Trip in its pattern
	Trip         *Trip
}

// PatternInterlineDwell lets a rider stay on a vehicle that continues from
// the last stop of From as a trip of To. Forward lookups are keyed by the
// arriving trip, backward lookups by the continuing trip.
type PatternInterlineDwell struct {
	From     *TripPattern
	To       *TripPattern
	forward  map[string]InterlineDwellData
	backward map[string]InterlineDwellData
}

// NewPatternInterlineDwell returns an interline dwell without trips
func NewPatternInterlineDwell(from, to *TripPattern) *PatternInterlineDwell {
	return &PatternInterlineDwell{
		From:     from,
		To:       to,
		forward:  make(map[string]InterlineDwellData),
		backward: make(map[string]InterlineDwellData),
	}
}

// AddTrip links trip prev (index prevIndex of From) to trip next (index
// nextIndex of To), with dwell seconds between arrival and departure
func (p *PatternInterlineDwell) AddTrip(prev *Trip, prevIndex int, next *Trip, nextIndex int, dwell int) {
	p.forward[prev.ID] = InterlineDwellData{DwellTime: dwell, PatternIndex: nextIndex, Trip: next}
	p.backward[next.ID] = InterlineDwellData{DwellTime: dwell, PatternIndex: prevIndex, Trip: prev}
}

// NumTrips returns the number of linked trip pairs
func (p *PatternInterlineDwell) NumTrips() int { return len(p.forward) }

// Lookup returns the continuation of the arriving trip
func (p *PatternInterlineDwell) Lookup(tripID string) (InterlineDwellData, bool) {
	d, ok := p.forward[tripID]
	return d, ok
}

func (p *PatternInterlineDwell) traverse(s *State, o *TraverseOptions, back bool) *TraverseResult {
	source, target := p.From, p.To
	table := p.forward
	if back {
		source, target = p.To, p.From
		table = p.backward
	}
	if !source.onBoard(s) || target.broken {
		return nil
	}
	d, ok := table[s.TripID]
	if !ok {
		return nil
	}
	if !o.Modes.Has(target.Mode) || !o.tripUsable(d.Trip) || (o.Wheelchair && !d.Trip.Wheelchair) {
		return nil
	}
	n := shiftOnBoard(s, d.DwellTime, back)
	n.State.TripID = d.Trip.ID
	n.State.PatternIndex = d.PatternIndex
	n.State.RouteID = target.Route.ID
	return n
}
