package linker

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/quadtree"

	"github.com/theoremus-urban-solutions/transit-router/core"
	"github.com/theoremus-urban-solutions/transit-router/internal/geom"
)

// sampleSpacing is the distance in meters between indexed points of a
// street geometry. Queries pad their radius by it so long edges are found
// from anywhere along them.
const sampleSpacing = 25.0

type edgePoint struct {
	p orb.Point
	e *core.Edge
}

func (ep *edgePoint) Point() orb.Point { return ep.p }

// Candidate is a street edge near a query point
type Candidate struct {
	Edge       *core.Edge
	Projection geom.Projection
}

// Index is a spatial index of street edges
type Index struct {
	qt   *quadtree.Quadtree
	size int
}

// NewIndex indexes every street edge of g. The caller holds a graph lock.
// Edges that could not be indexed are reported in the returned error; the
// index holds the rest.
func NewIndex(g *core.Graph) (*Index, error) {
	var bound orb.Bound
	first := true
	for _, e := range g.Edges() {
		if !isStreet(e) {
			continue
		}
		b := e.Geometry().Bound()
		if first {
			bound, first = b, false
		} else {
			bound = bound.Union(b)
		}
	}
	if first {
		return &Index{}, nil
	}
	idx := &Index{qt: quadtree.New(bound.Pad(0.01))}
	var errs []error
	for _, e := range g.Edges() {
		if !isStreet(e) {
			continue
		}
		if err := idx.Add(e); err != nil {
			errs = append(errs, err)
		}
	}
	return idx, errors.Join(errs...)
}

func isStreet(e *core.Edge) bool {
	if e == nil {
		return false
	}
	_, ok := e.Payload.(*core.Street)
	return ok
}

// Len returns the number of indexed edges
func (idx *Index) Len() int { return idx.size }

// Add indexes e by points sampled along its geometry. It fails when the index
// is empty or when e reaches outside the bound the index was built with.
func (idx *Index) Add(e *core.Edge) error {
	if idx.qt == nil {
		return fmt.Errorf("index %s: %w", e, ErrNoStreets)
	}
	pts := sample(e.Geometry())
	for _, p := range pts {
		if !idx.qt.Bound().Contains(p) {
			return fmt.Errorf("index %s: point %v outside %v", e, p, idx.qt.Bound())
		}
	}
	for _, p := range pts {
		if err := idx.qt.Add(&edgePoint{p: p, e: e}); err != nil {
			return fmt.Errorf("index %s: %w", e, err)
		}
	}
	idx.size++
	return nil
}

func sample(ls orb.LineString) []orb.Point {
	out := []orb.Point{ls[0]}
	for i := 1; i < len(ls); i++ {
		a, b := ls[i-1], ls[i]
		n := int(math.Ceil(geo.Distance(a, b) / sampleSpacing))
		for k := 1; k <= n; k++ {
			f := float64(k) / float64(n)
			out = append(out, orb.Point{a[0] + f*(b[0]-a[0]), a[1] + f*(b[1]-a[1])})
		}
	}
	return out
}

// Nearest returns the street edges within radius meters of p, closest
// first. Edges removed from the graph since indexing are skipped.
func (idx *Index) Nearest(p orb.Point, radius float64) []Candidate {
	if idx.qt == nil {
		return nil
	}
	pts := idx.qt.InBound(nil, geo.NewBoundAroundPoint(p, radius+sampleSpacing))
	seen := make(map[*core.Edge]bool)
	var out []Candidate
	for _, ptr := range pts {
		e := ptr.(*edgePoint).e
		if seen[e] || e.ID == core.NoEdge {
			continue
		}
		seen[e] = true
		pr, ok := geom.Project(e.Geometry(), p)
		if !ok || pr.Distance > radius {
			continue
		}
		out = append(out, Candidate{Edge: e, Projection: pr})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Projection.Distance != out[j].Projection.Distance {
			return out[i].Projection.Distance < out[j].Projection.Distance
		}
		return out[i].Edge.ID < out[j].Edge.ID
	})
	return out
}
