package core

import (
	"fmt"
	"math"
	"time"
)

// State is a traveler's position in time and trip context. States are never
// mutated after creation; traversal works on a Clone.
//
// WalkDistance and NumBoardings are signed: forward traversal adds to them and
// backward traversal subtracts, so replaying an edge in the opposite
// direction restores the original values.
type State struct {
	Time            int64 // milliseconds since epoch
	TripID          string
	PatternIndex    int // -1 when not on board
	JustTransferred bool
	WalkDistance    float64
	NumBoardings    int
	RouteID         string // route of the current ride
}

// NewState returns a state at ms, not on board
func NewState(ms int64) *State {
	return &State{Time: ms, PatternIndex: -1}
}

// StateAt returns a state at t
func StateAt(t time.Time) *State {
	return NewState(t.UnixMilli())
}

// Clone returns a copy that may be modified
func (s *State) Clone() *State {
	c := *s
	return &c
}

// OnBoard reports whether the traveler is on a transit vehicle
func (s *State) OnBoard() bool { return s.PatternIndex >= 0 }

// In returns the state time in loc
func (s *State) In(loc *time.Location) time.Time {
	return time.UnixMilli(s.Time).In(loc)
}

// Equal compares two states, walk distance within a millimeter
func (s *State) Equal(o *State) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.Time == o.Time &&
		s.TripID == o.TripID &&
		s.PatternIndex == o.PatternIndex &&
		s.JustTransferred == o.JustTransferred &&
		s.NumBoardings == o.NumBoardings &&
		s.RouteID == o.RouteID &&
		math.Abs(s.WalkDistance-o.WalkDistance) < 1e-3
}

func (s *State) String() string {
	return fmt.Sprintf("state{t=%d trip=%q idx=%d walk=%.1f boardings=%d transferred=%t}",
		s.Time, s.TripID, s.PatternIndex, s.WalkDistance, s.NumBoardings, s.JustTransferred)
}

func (s *State) leaveVehicle() {
	s.TripID = ""
	s.PatternIndex = -1
	s.RouteID = ""
	s.JustTransferred = false
}

func secondsToMillis(sec float64) int64 {
	return int64(math.Round(sec * 1000))
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func ceilDiv(a, b int64) int64 {
	return -floorDiv(-a, b)
}
