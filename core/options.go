package core

import (
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
)

// NoWorstTime disables the worst-time cutoff
const NoWorstTime int64 = math.MinInt64

// MaxTransitSpeed bounds the speed of any vehicle, in m/s. It keeps the A*
// heuristic admissible when transit is enabled.
const MaxTransitSpeed = 100.0

// CalendarService answers whether a service runs on a service date
type CalendarService interface {
	ServiceOn(serviceID string, serviceDate time.Time) bool
}

// TraverseOptions configures one search. It is read, never written, while the
// search runs.
type TraverseOptions struct {
	WalkSpeed       float64 `validate:"gt=0"` // m/s
	BikeSpeed       float64 `validate:"gt=0"`
	Modes           TraverseModeSet
	Wheelchair      bool
	ArriveBy        bool
	BannedRoutes    RouteSet
	CancelledTrips  map[string]bool
	TransferPenalty float64 `validate:"gte=0"` // seconds of weight per transfer
	WalkReluctance  float64 `validate:"gte=1"`
	BoardCost       float64 `validate:"gte=0"`
	WorstTime       int64
	MaxWalkDistance float64 `validate:"gt=0"` // meters
	Calendar        CalendarService
	Location        *time.Location
}

// DefaultTraverseOptions walks and rides every transit mode
func DefaultTraverseOptions() *TraverseOptions {
	return &TraverseOptions{
		WalkSpeed:       1.33,
		BikeSpeed:       4.5,
		Modes:           AllTransit.With(ModeWalk),
		BannedRoutes:    RouteSet{},
		CancelledTrips:  map[string]bool{},
		TransferPenalty: 120,
		WalkReluctance:  2,
		WorstTime:       NoWorstTime,
		MaxWalkDistance: math.MaxFloat64,
		Location:        time.UTC,
	}
}

var validate = validator.New()

// Validate checks the numeric fields and the mode set
func (o *TraverseOptions) Validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("traverse options: %w", err)
	}
	if !o.Modes.Has(ModeWalk) && !o.Modes.Has(ModeBicycle) && !o.Modes.HasTransit() {
		return fmt.Errorf("traverse options: no mode enabled")
	}
	return nil
}

// Clone returns a deep copy
func (o *TraverseOptions) Clone() *TraverseOptions {
	c := *o
	c.BannedRoutes = make(RouteSet, len(o.BannedRoutes))
	for k := range o.BannedRoutes {
		c.BannedRoutes[k] = struct{}{}
	}
	c.CancelledTrips = make(map[string]bool, len(o.CancelledTrips))
	for k, v := range o.CancelledTrips {
		c.CancelledTrips[k] = v
	}
	return &c
}

// BanRoute adds a route to the banned set
func (o *TraverseOptions) BanRoute(agency, name string) {
	if o.BannedRoutes == nil {
		o.BannedRoutes = RouteSet{}
	}
	o.BannedRoutes.Add(RouteSpec{Agency: agency, Name: name})
}

// CancelTrip makes boarding skip the trip
func (o *TraverseOptions) CancelTrip(tripID string) {
	if o.CancelledTrips == nil {
		o.CancelledTrips = map[string]bool{}
	}
	o.CancelledTrips[tripID] = true
}

// SetWorstTime bounds the search at t
func (o *TraverseOptions) SetWorstTime(t time.Time) { o.WorstTime = t.UnixMilli() }

// WalkBounded reports whether a maximum walk distance is in force
func (o *TraverseOptions) WalkBounded() bool { return o.MaxWalkDistance < math.MaxFloat64 }

// ExceedsWorstTime reports whether a state at ms lies past the cutoff in the
// search direction
func (o *TraverseOptions) ExceedsWorstTime(ms int64) bool {
	if o.WorstTime == NoWorstTime {
		return false
	}
	if o.ArriveBy {
		return ms < o.WorstTime
	}
	return ms > o.WorstTime
}

// MaxSpeed is the fastest speed any enabled mode can reach
func (o *TraverseOptions) MaxSpeed() float64 {
	speed := 0.0
	if o.Modes.Has(ModeWalk) {
		speed = o.WalkSpeed
	}
	if o.Modes.Has(ModeBicycle) && o.BikeSpeed > speed {
		speed = o.BikeSpeed
	}
	if o.Modes.HasTransit() && MaxTransitSpeed > speed {
		speed = MaxTransitSpeed
	}
	return speed
}

func (o *TraverseOptions) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

func (o *TraverseOptions) serviceOn(serviceID string, day time.Time) bool {
	if o.Calendar == nil {
		return true
	}
	return o.Calendar.ServiceOn(serviceID, day)
}

func (o *TraverseOptions) tripUsable(t *Trip) bool {
	if o.CancelledTrips[t.ID] {
		return false
	}
	return !o.BannedRoutes.Matches(t.Route)
}

type serviceDay struct {
	midnight int64 // ms
	date     time.Time
}

// serviceDays returns the service days of today and yesterday for ms
func (o *TraverseOptions) serviceDays(ms int64) [2]serviceDay {
	loc := o.location()
	t := time.UnixMilli(ms).In(loc)
	y, m, d := t.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, loc)
	yesterday := time.Date(y, m, d-1, 0, 0, 0, 0, loc)
	return [2]serviceDay{
		{midnight: today.UnixMilli(), date: today},
		{midnight: yesterday.UnixMilli(), date: yesterday},
	}
}
