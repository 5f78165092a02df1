package core

import (
	"math"

	"github.com/paulmach/orb"
)

// StreetPermission says who may use a street segment
type StreetPermission uint8

const (
	PermitNone       StreetPermission = 0
	PermitPedestrian StreetPermission = 1 << 0
	PermitBicycle    StreetPermission = 1 << 1
	PermitAll        StreetPermission = PermitPedestrian | PermitBicycle
)

// Street is a street segment
type Street struct {
	Name       string
	Length     float64 // meters
	Permission StreetPermission
	Wheelchair bool
	Geometry   orb.LineString
}

// NewStreet returns an accessible segment open to pedestrians and cyclists
func NewStreet(name string, length float64) *Street {
	return &Street{Name: name, Length: length, Permission: PermitAll, Wheelchair: true}
}

// speed picks the fastest permitted enabled mode and its weight multiplier
func (p *Street) speed(o *TraverseOptions) (speed, reluctance float64, ok bool) {
	if o.Modes.Has(ModeBicycle) && p.Permission&PermitBicycle != 0 {
		return o.BikeSpeed, 1, true
	}
	if o.Modes.Has(ModeWalk) && p.Permission&PermitPedestrian != 0 {
		return o.WalkSpeed, o.WalkReluctance, true
	}
	return 0, 0, false
}

func (p *Street) traverse(s *State, o *TraverseOptions, back bool) *TraverseResult {
	if o.Wheelchair && !p.Wheelchair {
		return nil
	}
	speed, reluctance, ok := p.speed(o)
	if !ok {
		return nil
	}
	n := s.Clone()
	secs := p.Length / speed
	ms := secondsToMillis(secs)
	if back {
		n.Time -= ms
		n.WalkDistance -= p.Length
	} else {
		n.Time += ms
		n.WalkDistance += p.Length
	}
	if math.Abs(n.WalkDistance) > o.MaxWalkDistance {
		return nil
	}
	return &TraverseResult{Weight: secs * reluctance, State: n}
}

// Turn is the delay of turning between two street approaches
type Turn struct {
	Seconds float64
	Angle   int // degrees, informational
}

func (p *Turn) traverse(s *State, o *TraverseOptions, back bool) *TraverseResult {
	if !o.Modes.Has(ModeWalk) && !o.Modes.Has(ModeBicycle) {
		return nil
	}
	n := s.Clone()
	ms := secondsToMillis(p.Seconds)
	if back {
		n.Time -= ms
	} else {
		n.Time += ms
	}
	return &TraverseResult{Weight: p.Seconds, State: n}
}

// Free is a zero-cost connector, used between a stop and its arrive and
// depart vertices
type Free struct{}

func (p *Free) traverse(s *State) *TraverseResult {
	n := s.Clone()
	n.JustTransferred = false
	return &TraverseResult{Weight: 0, State: n}
}

// StreetTransitLinkWeight is the weight of entering or leaving a stop
const StreetTransitLinkWeight = 1.0

// StreetTransitLink connects the street network with a transit stop
type StreetTransitLink struct {
	Wheelchair bool
}

func (p *StreetTransitLink) traverse(s *State, o *TraverseOptions) *TraverseResult {
	if o.Wheelchair && !p.Wheelchair {
		return nil
	}
	if s.OnBoard() {
		return nil
	}
	n := s.Clone()
	n.JustTransferred = false
	return &TraverseResult{Weight: StreetTransitLinkWeight, State: n}
}
