package planner

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/paulmach/orb"

	"github.com/theoremus-urban-solutions/transit-router/core"
)

// ErrInvalidRequest wraps every validation failure of a Request
var ErrInvalidRequest = errors.New("invalid plan request")

// Place is a request endpoint: either a vertex label or a coordinate
type Place struct {
	Label string   `json:"label,omitempty" validate:"required_without=Lat"`
	Lat   *float64 `json:"lat,omitempty" validate:"required_without=Label,omitempty,latitude"`
	Lon   *float64 `json:"lon,omitempty" validate:"required_with=Lat,omitempty,longitude"`
}

// LabelPlace names a vertex of the graph
func LabelPlace(label string) Place { return Place{Label: label} }

// PointPlace is a coordinate to be located on the street network
func PointPlace(lat, lon float64) Place { return Place{Lat: &lat, Lon: &lon} }

// Point returns the coordinate of the place in lon/lat order
func (p Place) Point() (orb.Point, bool) {
	if p.Lat == nil || p.Lon == nil {
		return orb.Point{}, false
	}
	return orb.Point{*p.Lon, *p.Lat}, true
}

func (p Place) String() string {
	if pt, ok := p.Point(); ok {
		return fmt.Sprintf("%.6f,%.6f", pt.Lat(), pt.Lon())
	}
	return p.Label
}

// Request is a trip plan query. Zero numeric fields fall back to the
// planner's routing defaults.
type Request struct {
	ID              string
	From            Place
	To              Place
	Time            time.Time
	ArriveBy        bool
	WalkSpeed       float64  `validate:"gte=0"` // m/s
	Modes           []string `validate:"dive,required"`
	Wheelchair      bool
	BannedRoutes    []core.RouteSpec
	MaxWalkDistance float64   `validate:"gte=0"` // meters
	TransferPenalty *float64  `validate:"omitempty,gte=0"`
	WorstTime       time.Time // zero means the planner's search window
	NumItineraries  int       `validate:"gte=0,lte=10"`
}

var validate = validator.New()

// Validate checks the request fields
func (r *Request) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if r.Time.IsZero() {
		return fmt.Errorf("%w: %w: missing time", ErrInvalidRequest, core.ErrInvalidTime)
	}
	if !r.WorstTime.IsZero() {
		if (!r.ArriveBy && r.WorstTime.Before(r.Time)) || (r.ArriveBy && r.WorstTime.After(r.Time)) {
			return fmt.Errorf("%w: %w: worst time %s is on the wrong side of %s",
				ErrInvalidRequest, core.ErrInvalidTime, r.WorstTime.Format(time.RFC3339), r.Time.Format(time.RFC3339))
		}
	}
	if _, err := r.modes(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}

// modes parses the requested modes. An empty list returns 0.
func (r *Request) modes() (core.TraverseModeSet, error) {
	var set core.TraverseModeSet
	for _, name := range r.Modes {
		if name == "TRANSIT" || name == "transit" {
			set |= core.AllTransit
			continue
		}
		m, err := core.ParseMode(name)
		if err != nil {
			return 0, err
		}
		set = set.With(m)
	}
	return set, nil
}
