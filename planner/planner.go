package planner

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/inconshreveable/log15"
	"github.com/paulmach/orb"

	"github.com/theoremus-urban-solutions/transit-router/algorithm"
	"github.com/theoremus-urban-solutions/transit-router/builder"
	"github.com/theoremus-urban-solutions/transit-router/config"
	"github.com/theoremus-urban-solutions/transit-router/core"
	"github.com/theoremus-urban-solutions/transit-router/fare"
	"github.com/theoremus-urban-solutions/transit-router/internal"
	"github.com/theoremus-urban-solutions/transit-router/linker"
	"github.com/theoremus-urban-solutions/transit-router/realtime"
	"github.com/theoremus-urban-solutions/transit-router/spt"
)

// Itinerary is one answer to a request
type Itinerary struct {
	ID           string
	Path         *spt.GraphPath
	Fare         *fare.Fare // nil without fare tables or transit rides
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
	WalkDistance float64 // meters
	Transfers    int
	Routes       []string
}

// Geometry is the line followed by the itinerary
func (it *Itinerary) Geometry() orb.LineString { return it.Path.Geometry() }

// Plan holds the itineraries found for a request, best first
type Plan struct {
	RequestID   string
	From, To    *core.Vertex
	Itineraries []*Itinerary
}

// NoPath reports whether the destination could not be reached
func (p *Plan) NoPath() bool { return len(p.Itineraries) == 0 }

// Option configures a Planner
type Option func(*Planner)

// WithLinker enables coordinate endpoints
func WithLinker(l *linker.Linker) Option {
	return func(p *Planner) { p.linker = l }
}

// WithFares prices itineraries with s
func WithFares(s *fare.Service) Option {
	return func(p *Planner) { p.fares = s }
}

// WithCalendar sets the service calendar and the time zone of service days
func WithCalendar(cal core.CalendarService, loc *time.Location) Option {
	return func(p *Planner) {
		p.calendar = cal
		if loc != nil {
			p.loc = loc
		}
	}
}

// WithDefaults replaces the routing defaults
func WithDefaults(r config.RoutingConfig) Option {
	return func(p *Planner) { p.defaults = r }
}

// WithRealtime applies a GTFS-RT overlay to every request
func WithRealtime(ov *realtime.Overlay) Option {
	return func(p *Planner) { p.overlay = ov }
}

// WithLogger replaces the planner logger
func WithLogger(l log15.Logger) Option {
	return func(p *Planner) { p.log = l }
}

// Planner plans trips on a built graph. It is safe for concurrent use as long
// as the graph is not being built.
type Planner struct {
	g        *core.Graph
	linker   *linker.Linker
	fares    *fare.Service
	calendar core.CalendarService
	loc      *time.Location
	defaults config.RoutingConfig
	overlay  *realtime.Overlay
	log      log15.Logger
}

// New returns a planner over g
func New(g *core.Graph, opts ...Option) *Planner {
	p := &Planner{
		g:        g,
		loc:      time.UTC,
		defaults: config.Default().Routing,
		log:      internal.Logger("planner"),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// FromBuild returns a planner using the calendar, time zone and fares of a
// builder result
func FromBuild(g *core.Graph, res *builder.Result, opts ...Option) *Planner {
	base := []Option{WithCalendar(res.Calendar, res.Location)}
	if res.Fares != nil {
		base = append(base, WithFares(res.Fares))
	}
	return New(g, append(base, opts...)...)
}

// Plan answers req. A plan without itineraries and a nil error means the
// destination is unreachable under the request constraints.
func (p *Planner) Plan(ctx context.Context, req *Request) (*Plan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	lg := p.log.New("request", id)

	from, err := p.resolve(req.From, "origin:"+id)
	if err != nil {
		return nil, fmt.Errorf("origin %s: %w", req.From, err)
	}
	to, err := p.resolve(req.To, "destination:"+id)
	if err != nil {
		return nil, fmt.Errorf("destination %s: %w", req.To, err)
	}
	o, err := p.options(req)
	if err != nil {
		return nil, err
	}
	extra := append(append([]*core.Edge{}, from.Edges...), to.Edges...)

	n := req.NumItineraries
	if n == 0 {
		n = p.defaults.NumItineraries
	}
	if n == 0 {
		n = 1
	}

	plan := &Plan{RequestID: id, From: from.Vertex, To: to.Vertex}
	for len(plan.Itineraries) < n {
		path, err := p.search(ctx, from.Vertex, to.Vertex, core.StateAt(req.Time), o, extra)
		if err != nil {
			return nil, err
		}
		if path == nil {
			break
		}
		it := p.itinerary(path)
		plan.Itineraries = append(plan.Itineraries, it)
		lg.Debug("Itinerary found", "itinerary", it.ID, "start", it.StartTime, "end", it.EndTime,
			"routes", it.Routes, "walk", math.Round(it.WalkDistance))

		routes := boardedRoutes(path)
		if len(routes) == 0 {
			// a street-only answer has no alternative to ban
			break
		}
		o = o.Clone()
		for _, r := range routes {
			o.BanRoute(r.AgencyID, r.ID)
		}
	}
	lg.Info("Plan computed", "from", req.From, "to", req.To, "arriveBy", req.ArriveBy,
		"itineraries", len(plan.Itineraries))
	return plan, nil
}

func (p *Planner) search(ctx context.Context, from, to *core.Vertex, s0 *core.State, o *core.TraverseOptions, extra []*core.Edge) (*spt.GraphPath, error) {
	if o.ArriveBy {
		tree, err := algorithm.AStarBack(ctx, p.g, from, to, s0, o, extra...)
		if err != nil {
			return nil, err
		}
		path := tree.Path(from, false)
		if path != nil {
			path.Reverse()
		}
		return path, nil
	}
	tree, err := algorithm.AStar(ctx, p.g, from, to, s0, o, extra...)
	if err != nil {
		return nil, err
	}
	return tree.Path(to, true), nil
}

// resolve turns a place into a vertex, locating coordinates on the street
// network without touching the graph
func (p *Planner) resolve(pl Place, label string) (*linker.StreetLocation, error) {
	if pt, ok := pl.Point(); ok {
		if p.linker == nil {
			return nil, fmt.Errorf("%w: coordinates need a street network", ErrInvalidRequest)
		}
		return p.linker.Locate(pt, label)
	}
	p.g.RLock()
	defer p.g.RUnlock()
	v, err := p.g.Lookup(pl.Label)
	if err != nil {
		return nil, err
	}
	return &linker.StreetLocation{Vertex: v}, nil
}

// options merges the routing defaults, the request and the realtime overlay
func (p *Planner) options(req *Request) (*core.TraverseOptions, error) {
	d := p.defaults
	o := core.DefaultTraverseOptions()
	o.ArriveBy = req.ArriveBy
	o.Calendar = p.calendar
	o.Location = p.loc
	if d.WalkSpeed > 0 {
		o.WalkSpeed = d.WalkSpeed
	}
	if d.BikeSpeed > 0 {
		o.BikeSpeed = d.BikeSpeed
	}
	if d.WalkReluctance >= 1 {
		o.WalkReluctance = d.WalkReluctance
	}
	o.TransferPenalty = d.TransferPenalty
	o.BoardCost = d.BoardCost
	if d.MaxWalkDistance > 0 {
		o.MaxWalkDistance = d.MaxWalkDistance
	}
	o.Wheelchair = d.Wheelchair || req.Wheelchair

	if req.WalkSpeed > 0 {
		o.WalkSpeed = req.WalkSpeed
	}
	if req.MaxWalkDistance > 0 {
		o.MaxWalkDistance = req.MaxWalkDistance
	}
	if req.TransferPenalty != nil {
		o.TransferPenalty = *req.TransferPenalty
	}
	if modes, _ := req.modes(); modes != 0 {
		o.Modes = modes
	}
	for _, r := range req.BannedRoutes {
		o.BanRoute(r.Agency, r.Name)
	}

	switch {
	case !req.WorstTime.IsZero():
		o.SetWorstTime(req.WorstTime)
	case d.SearchWindowMinutes > 0:
		window := time.Duration(d.SearchWindowMinutes) * time.Minute
		if req.ArriveBy {
			window = -window
		}
		o.SetWorstTime(req.Time.Add(window))
	}

	p.overlay.Apply(o, req.Time)
	if err := o.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return o, nil
}

func (p *Planner) itinerary(path *spt.GraphPath) *Itinerary {
	it := &Itinerary{
		ID:           uuid.NewString(),
		Path:         path,
		StartTime:    time.UnixMilli(path.StartTime()).In(p.loc),
		EndTime:      time.UnixMilli(path.EndTime()).In(p.loc),
		Duration:     path.Duration(),
		WalkDistance: path.WalkDistance(),
		Transfers:    path.Transfers(),
		Routes:       path.Routes(),
	}
	if p.fares != nil {
		it.Fare = p.fares.Cost(path)
	}
	return it
}

// boardedRoutes returns the distinct routes ridden along path
func boardedRoutes(path *spt.GraphPath) []*core.Route {
	var out []*core.Route
	seen := make(map[*core.Route]bool)
	for _, e := range path.Edges {
		var r *core.Route
		switch pl := e.Payload.Payload.(type) {
		case *core.PatternBoard:
			r = pl.Pattern.Route
		case *core.PatternInterlineDwell:
			r = pl.To.Route
		}
		if r != nil && !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	return out
}
