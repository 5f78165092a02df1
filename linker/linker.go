package linker

import (
	"errors"
	"fmt"

	"github.com/inconshreveable/log15"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/theoremus-urban-solutions/transit-router/core"
	"github.com/theoremus-urban-solutions/transit-router/internal"
	"github.com/theoremus-urban-solutions/transit-router/internal/geom"
)

var (
	// ErrNoStreets is returned when the graph has no street edges to link to
	ErrNoStreets = errors.New("graph has no streets")
	// ErrNoStreetNearby is returned when no street lies within the search radius
	ErrNoStreetNearby = errors.New("no street within search radius")
	// ErrStaleLocation is returned when reifying a location whose street was
	// split since it was located
	ErrStaleLocation = errors.New("street location is stale")
)

// Option configures a Linker
type Option func(*Linker)

// WithSearchRadius sets how far, in meters, to look for a street
func WithSearchRadius(m float64) Option {
	return func(l *Linker) { l.radius = m }
}

// WithSnapDistance sets the distance, in meters, under which a point is
// attached to an existing street vertex instead of splitting the street
func WithSnapDistance(m float64) Option {
	return func(l *Linker) { l.snap = m }
}

// WithLogger replaces the linker logger
func WithLogger(lg log15.Logger) Option {
	return func(l *Linker) { l.log = lg }
}

// Linker connects stops and coordinates to the street network of a graph
type Linker struct {
	g      *core.Graph
	index  *Index
	radius float64
	snap   float64
	log    log15.Logger
}

// New indexes the streets of g
func New(g *core.Graph, opts ...Option) *Linker {
	l := &Linker{g: g, radius: 500, snap: 2, log: internal.Logger("linker")}
	for _, o := range opts {
		o(l)
	}
	g.RLock()
	idx, err := NewIndex(g)
	g.RUnlock()
	if err != nil {
		l.log.Debug("Streets left out of the index", "err", err)
	}
	l.index = idx
	return l
}

// Index returns the street index
func (l *Linker) Index() *Index { return l.index }

// LinkStops connects every transit stop to its nearest street with a pair of
// street-transit links. Stops without a street nearby stay unlinked and are
// logged.
func (l *Linker) LinkStops() (int, error) {
	if l.index.Len() == 0 {
		return 0, ErrNoStreets
	}
	l.g.Lock()
	defer l.g.Unlock()

	var stops []*core.Vertex
	for _, v := range l.g.Vertices() {
		if v.Kind == core.VertexTransitStop {
			stops = append(stops, v)
		}
	}
	linked := 0
	for _, stop := range stops {
		cands := l.index.Nearest(stop.Coord, l.radius)
		if len(cands) == 0 {
			l.log.Warn("Stop not linked to the street network", "stop", stop.Label, "radius", l.radius)
			continue
		}
		v := l.snapped(cands[0])
		if v == nil {
			v = l.g.AddVertex(core.NewVertex(core.VertexIntersection, stop.Label+"_link", stop.Name, cands[0].Projection.Point))
			l.splitAll(cands[0], v)
		}
		l.g.AddEdge(v, stop, &core.StreetTransitLink{Wheelchair: stop.Wheelchair})
		l.g.AddEdge(stop, v, &core.StreetTransitLink{Wheelchair: stop.Wheelchair})
		linked++
	}
	l.log.Info("Stops linked", "linked", linked, "stops", len(stops))
	return linked, nil
}

// snapped returns the endpoint of the candidate's edge lying within the
// snap distance of the projected point, or nil
func (l *Linker) snapped(c Candidate) *core.Vertex {
	e := c.Edge
	da := geo.Distance(c.Projection.Point, e.From.Coord)
	db := geo.Distance(c.Projection.Point, e.To.Coord)
	switch {
	case da <= l.snap && da <= db:
		return e.From
	case db <= l.snap:
		return e.To
	}
	return nil
}

// twin returns the edge running the other way along the same street
func (l *Linker) twin(e *core.Edge) *core.Edge {
	st := e.Payload.(*core.Street)
	for _, o := range l.g.Outgoing(e.To) {
		if o.To != e.From {
			continue
		}
		if ost, ok := o.Payload.(*core.Street); ok && ost.Name == st.Name {
			return o
		}
	}
	return nil
}

// splitAll splits the candidate edge and its twin at v. The write lock is
// held.
func (l *Linker) splitAll(c Candidate, v *core.Vertex) {
	twin := l.twin(c.Edge)
	l.split(c.Edge, v, c.Projection)
	if twin != nil {
		pr, ok := geom.Project(twin.Geometry(), v.Coord)
		if ok {
			l.split(twin, v, pr)
		}
	}
}

func (l *Linker) split(e *core.Edge, v *core.Vertex, at geom.Projection) {
	head, tail := splitStreet(e, at)
	l.g.RemoveEdge(e)
	for _, half := range []*core.Edge{l.g.AddEdge(e.From, v, head), l.g.AddEdge(v, e.To, tail)} {
		if err := l.index.Add(half); err != nil {
			l.log.Debug("Split street not indexed", "err", err)
		}
	}
}

// splitStreet cuts a street payload in two at a projection. Lengths are
// shared in proportion to geometry so the halves add up to the original.
func splitStreet(e *core.Edge, at geom.Projection) (*core.Street, *core.Street) {
	st := e.Payload.(*core.Street)
	full := e.Geometry()
	hl, tl := geom.Split(full, at)
	ratio := 0.0
	if total := geo.Length(full); total > 0 {
		ratio = geo.Length(hl) / total
	}
	head, tail := *st, *st
	head.Geometry, tail.Geometry = hl, tl
	head.Length = st.Length * ratio
	tail.Length = st.Length - head.Length
	return &head, &tail
}

// StreetLocation is a point on the street network. Unless Reify is called
// the vertex stays outside the graph and Edges must be passed to the search.
type StreetLocation struct {
	Vertex *core.Vertex
	Edges  []*core.Edge

	splits []Candidate
}

// Temporary reports whether the location lives outside the graph
func (loc *StreetLocation) Temporary() bool { return loc.Vertex.ID == core.NoVertex }

// Locate places p on the nearest street. Points close to a street vertex
// resolve to that vertex; others get a temporary vertex labelled label.
func (l *Linker) Locate(p orb.Point, label string) (*StreetLocation, error) {
	l.g.RLock()
	defer l.g.RUnlock()

	cands := l.index.Nearest(p, l.radius)
	if len(cands) == 0 {
		return nil, fmt.Errorf("%w: %v within %.0fm", ErrNoStreetNearby, p, l.radius)
	}
	best := cands[0]
	if v := l.snapped(best); v != nil {
		return &StreetLocation{Vertex: v}, nil
	}
	name := best.Edge.Payload.(*core.Street).Name
	v := core.NewVertex(core.VertexStreetLocation, label, name, best.Projection.Point)
	loc := &StreetLocation{Vertex: v, splits: []Candidate{best}}
	if twin := l.twin(best.Edge); twin != nil {
		if pr, ok := geom.Project(twin.Geometry(), best.Projection.Point); ok {
			loc.splits = append(loc.splits, Candidate{Edge: twin, Projection: pr})
		}
	}
	for _, c := range loc.splits {
		head, tail := splitStreet(c.Edge, c.Projection)
		loc.Edges = append(loc.Edges,
			core.NewEdge(c.Edge.From, v, head),
			core.NewEdge(v, c.Edge.To, tail))
	}
	return loc, nil
}

// Reify adds a temporary location to the graph, splitting the streets it
// lies on. It is a no-op for locations already in the graph.
func (l *Linker) Reify(loc *StreetLocation) error {
	if !loc.Temporary() {
		return nil
	}
	l.g.Lock()
	defer l.g.Unlock()

	for _, c := range loc.splits {
		if c.Edge.ID == core.NoEdge {
			return fmt.Errorf("%w: %s", ErrStaleLocation, loc.Vertex.Label)
		}
	}
	v := l.g.AddVertex(loc.Vertex)
	if v != loc.Vertex {
		return fmt.Errorf("%w: label %q is taken", ErrStaleLocation, loc.Vertex.Label)
	}
	for _, c := range loc.splits {
		l.split(c.Edge, v, c.Projection)
	}
	loc.Edges = nil
	loc.splits = nil
	return nil
}
