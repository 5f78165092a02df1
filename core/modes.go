package core

import (
	"fmt"
	"strings"
)

// TraverseMode is a way of moving along an edge
type TraverseMode uint8

const (
	ModeWalk TraverseMode = iota
	ModeBicycle
	ModeTram
	ModeSubway
	ModeRail
	ModeBus
	ModeFerry
	ModeCableCar
	ModeGondola
	ModeFunicular
	ModeTransfer
	numModes
)

var modeNames = [numModes]string{
	"WALK", "BICYCLE", "TRAM", "SUBWAY", "RAIL", "BUS", "FERRY", "CABLE_CAR", "GONDOLA", "FUNICULAR", "TRANSFER",
}

func (m TraverseMode) String() string {
	if m < numModes {
		return modeNames[m]
	}
	return fmt.Sprintf("MODE(%d)", m)
}

// IsTransit reports whether m is a scheduled transit mode
func (m TraverseMode) IsTransit() bool {
	return m >= ModeTram && m <= ModeFunicular
}

// ParseMode converts a mode name, case-insensitively
func ParseMode(s string) (TraverseMode, error) {
	up := strings.ToUpper(strings.TrimSpace(s))
	for i, n := range modeNames {
		if n == up {
			return TraverseMode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

// ModeFromRouteType maps a GTFS route_type, including the extended ranges,
// to a transit mode
func ModeFromRouteType(t int) (TraverseMode, error) {
	switch {
	case t == 0:
		return ModeTram, nil
	case t == 1:
		return ModeSubway, nil
	case t == 2:
		return ModeRail, nil
	case t == 3:
		return ModeBus, nil
	case t == 4:
		return ModeFerry, nil
	case t == 5:
		return ModeCableCar, nil
	case t == 6:
		return ModeGondola, nil
	case t == 7:
		return ModeFunicular, nil
	case t == 11:
		return ModeBus, nil
	case t == 12:
		return ModeRail, nil
	case t >= 100 && t < 200:
		return ModeRail, nil
	case t >= 200 && t < 300, t >= 700 && t < 900:
		return ModeBus, nil
	case t >= 400 && t < 500:
		return ModeSubway, nil
	case t >= 900 && t < 1000:
		return ModeTram, nil
	case t >= 1000 && t < 1300:
		return ModeFerry, nil
	case t >= 1300 && t < 1400:
		return ModeGondola, nil
	case t >= 1400 && t < 1500:
		return ModeFunicular, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnknownRouteType, t)
}

// TraverseModeSet is a set of modes
type TraverseModeSet uint16

// AllTransit contains every scheduled transit mode
const AllTransit = TraverseModeSet(1<<ModeTram | 1<<ModeSubway | 1<<ModeRail | 1<<ModeBus | 1<<ModeFerry |
	1<<ModeCableCar | 1<<ModeGondola | 1<<ModeFunicular)

// NewModeSet builds a set from the given modes
func NewModeSet(modes ...TraverseMode) TraverseModeSet {
	var s TraverseModeSet
	for _, m := range modes {
		s = s.With(m)
	}
	return s
}

// Has reports whether m is in the set
func (s TraverseModeSet) Has(m TraverseMode) bool { return s&(1<<m) != 0 }

// With returns the set plus m
func (s TraverseModeSet) With(m TraverseMode) TraverseModeSet { return s | 1<<m }

// Without returns the set minus m
func (s TraverseModeSet) Without(m TraverseMode) TraverseModeSet { return s &^ (1 << m) }

// HasTransit reports whether any transit mode is enabled
func (s TraverseModeSet) HasTransit() bool { return s&AllTransit != 0 }

func (s TraverseModeSet) String() string {
	var names []string
	for m := TraverseMode(0); m < numModes; m++ {
		if s.Has(m) {
			names = append(names, m.String())
		}
	}
	return strings.Join(names, ",")
}
