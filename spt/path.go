package spt

import (
	"math"
	"time"

	"github.com/paulmach/orb"

	"github.com/theoremus-urban-solutions/transit-router/core"
)

// GraphPath is an ordered sequence of tree vertices and the edges between
// them. Edges[i] leads from Vertices[i] to Vertices[i+1]. Paths own copies of
// the tree entries, so Reverse and Optimize leave the tree intact.
type GraphPath struct {
	Vertices []*Vertex
	Edges    []*Edge
}

func extract(end *Vertex, o *core.TraverseOptions, optimize bool) *GraphPath {
	if end == nil {
		return nil
	}
	var chain []*Vertex
	for v := end; v != nil; {
		chain = append(chain, v)
		if v.Incoming == nil {
			break
		}
		v = v.Incoming.From
	}
	n := len(chain)
	p := &GraphPath{Vertices: make([]*Vertex, n), Edges: make([]*Edge, 0, n-1)}
	for i, v := range chain {
		p.Vertices[n-1-i] = &Vertex{Mirror: v.Mirror, State: v.State, Weight: v.Weight}
	}
	for i := 1; i < n; i++ {
		e := &Edge{From: p.Vertices[i-1], To: p.Vertices[i], Payload: chain[n-1-i].Incoming.Payload}
		p.Vertices[i].Incoming = e
		p.Edges = append(p.Edges, e)
	}
	if optimize {
		p.Optimize(o)
	}
	return p
}

// Reverse flips the path so that a path found by an arrive-by search reads
// from origin to destination. Each edge keeps its graph payload and gets its
// endpoints swapped.
func (p *GraphPath) Reverse() {
	n := len(p.Vertices)
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		p.Vertices[i], p.Vertices[j] = p.Vertices[j], p.Vertices[i]
	}
	for i, j := 0, len(p.Edges)-1; i < j; i, j = i+1, j-1 {
		p.Edges[i], p.Edges[j] = p.Edges[j], p.Edges[i]
	}
	for _, v := range p.Vertices {
		v.Incoming = nil
	}
	for _, e := range p.Edges {
		e.From, e.To = e.To, e.From
		e.To.Incoming = e
	}
}

// Optimize re-times the path from its first boarding: the states before it
// are recomputed by traversing the edges backwards from the boarding, which
// moves walking before the first ride as late as that ride allows. States
// from the boarding on are kept, so trips and their timings never change.
// Paths without a boarding are re-timed from their end. It reports whether
// the path changed; paths it cannot improve are left as they are.
func (p *GraphPath) Optimize(o *core.TraverseOptions) bool {
	n := len(p.Vertices)
	if n < 2 {
		return false
	}
	anchor := n - 1
	for i, e := range p.Edges {
		if _, ok := e.Payload.Payload.(*core.PatternBoard); ok {
			anchor = i + 1
			break
		}
	}
	first := p.Vertices[0].State
	ro := o.Clone()
	ro.ArriveBy = true
	ro.WorstTime = core.NoWorstTime
	ro.MaxWalkDistance = math.MaxFloat64

	times := make([]int64, anchor)
	cur := p.Vertices[anchor].State.Clone()
	cur.WalkDistance = 0
	cur.NumBoardings = 0
	cur.JustTransferred = false
	for i := anchor - 1; i >= 0; i-- {
		r := p.Edges[i].Payload.TraverseBack(cur, ro)
		if r == nil || r.State.OnBoard() {
			return false
		}
		cur = r.State
		times[i] = cur.Time
	}
	if times[0] <= first.Time {
		return false
	}
	for i := 0; i < anchor; i++ {
		s := p.Vertices[i].State.Clone()
		s.Time = times[i]
		p.Vertices[i].State = s
	}
	return true
}

// StartTime is the time of the first state
func (p *GraphPath) StartTime() int64 { return p.Vertices[0].State.Time }

// EndTime is the time of the last state
func (p *GraphPath) EndTime() int64 { return p.Vertices[len(p.Vertices)-1].State.Time }

// Duration is the elapsed time between the first and last states
func (p *GraphPath) Duration() time.Duration {
	d := p.EndTime() - p.StartTime()
	if d < 0 {
		d = -d
	}
	return time.Duration(d) * time.Millisecond
}

// Weight is the cumulative weight of the search entry the path ends at
func (p *GraphPath) Weight() float64 {
	return math.Max(p.Vertices[0].Weight, p.Vertices[len(p.Vertices)-1].Weight)
}

// WalkDistance sums the street edges of the path, in meters
func (p *GraphPath) WalkDistance() float64 {
	d := 0.0
	for _, e := range p.Edges {
		if _, ok := e.Payload.Payload.(*core.Street); ok {
			d += e.Payload.Distance()
		}
	}
	return d
}

// Boardings returns the board edges in path order
func (p *GraphPath) Boardings() []*Edge {
	var out []*Edge
	for _, e := range p.Edges {
		if _, ok := e.Payload.Payload.(*core.PatternBoard); ok {
			out = append(out, e)
		}
	}
	return out
}

// Transfers is the number of vehicle changes
func (p *GraphPath) Transfers() int {
	if b := len(p.Boardings()); b > 1 {
		return b - 1
	}
	return 0
}

// Routes returns the ids of the routes boarded, in order
func (p *GraphPath) Routes() []string {
	var out []string
	for _, e := range p.Boardings() {
		out = append(out, e.Payload.Payload.(*core.PatternBoard).Pattern.Route.ID)
	}
	return out
}

// Geometry concatenates the geometry of the edges
func (p *GraphPath) Geometry() orb.LineString {
	var ls orb.LineString
	for _, e := range p.Edges {
		g := e.Payload.Geometry()
		if e.From.Mirror != e.Payload.From {
			g = reversed(g)
		}
		for _, pt := range g {
			if len(ls) > 0 && ls[len(ls)-1] == pt {
				continue
			}
			ls = append(ls, pt)
		}
	}
	return ls
}

func reversed(ls orb.LineString) orb.LineString {
	out := make(orb.LineString, len(ls))
	for i, pt := range ls {
		out[len(ls)-1-i] = pt
	}
	return out
}
