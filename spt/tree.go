package spt

import (
	"github.com/theoremus-urban-solutions/transit-router/core"
)

// Vertex is a tree entry: a graph vertex reached with a state and weight
type Vertex struct {
	Mirror   *core.Vertex
	State    *core.State
	Weight   float64
	Incoming *Edge
	dead     bool
}

// Dominated reports whether the entry was evicted from its tree after being
// offered. Queued copies of dominated entries are skipped by the search.
func (v *Vertex) Dominated() bool { return v.dead }

// SetParent records the tree edge through which v was reached
func (v *Vertex) SetParent(from *Vertex, e *core.Edge) *Edge {
	v.Incoming = &Edge{From: from, To: v, Payload: e}
	return v.Incoming
}

// Edge is a tree edge mirroring a graph edge
type Edge struct {
	From    *Vertex
	To      *Vertex
	Payload *core.Edge
}

// ShortestPathTree is implemented by BasicTree and MultiTree
type ShortestPathTree interface {
	// Add offers a state at v. It returns the new entry, or nil when an
	// existing entry is at least as good.
	Add(v *core.Vertex, s *core.State, weight float64) *Vertex
	// States returns the live entries at v
	States(v *core.Vertex) []*Vertex
	// Path extracts the path to dest, nil when dest was not reached
	Path(dest *core.Vertex, optimize bool) *GraphPath
	// Size returns the number of live entries
	Size() int
	// Options returns the options the tree was built for
	Options() *core.TraverseOptions
}

// New picks the tree variant for a search. Transit and walk bounds make
// weight and time non-comonotonic, which needs the multi-state tree.
func New(o *core.TraverseOptions) ShortestPathTree {
	if o.Modes.HasTransit() || o.WalkBounded() {
		return NewMultiTree(o)
	}
	return NewBasicTree(o)
}

// BasicTree keeps the single best entry per vertex
type BasicTree struct {
	opts     *core.TraverseOptions
	vertices map[*core.Vertex]*Vertex
}

// NewBasicTree returns an empty single-state tree
func NewBasicTree(o *core.TraverseOptions) *BasicTree {
	return &BasicTree{opts: o, vertices: make(map[*core.Vertex]*Vertex)}
}

// Add replaces the incumbent only when weight is strictly lower
func (t *BasicTree) Add(v *core.Vertex, s *core.State, weight float64) *Vertex {
	old := t.vertices[v]
	if old != nil {
		if weight >= old.Weight {
			return nil
		}
		old.dead = true
	}
	nv := &Vertex{Mirror: v, State: s, Weight: weight}
	t.vertices[v] = nv
	return nv
}

// States returns the entry at v
func (t *BasicTree) States(v *core.Vertex) []*Vertex {
	if sv := t.vertices[v]; sv != nil {
		return []*Vertex{sv}
	}
	return nil
}

// Path extracts the path to dest
func (t *BasicTree) Path(dest *core.Vertex, optimize bool) *GraphPath {
	return extract(t.vertices[dest], t.opts, optimize)
}

// Size returns the number of reached vertices
func (t *BasicTree) Size() int { return len(t.vertices) }

// Options returns the search options
func (t *BasicTree) Options() *core.TraverseOptions { return t.opts }

// MultiTree keeps, per vertex, a skyline of entries no other entry dominates
// in both weight and time
type MultiTree struct {
	opts     *core.TraverseOptions
	arriveBy bool
	sets     map[*core.Vertex][]*Vertex
	size     int
}

// NewMultiTree returns an empty multi-state tree
func NewMultiTree(o *core.TraverseOptions) *MultiTree {
	return &MultiTree{opts: o, arriveBy: o.ArriveBy, sets: make(map[*core.Vertex][]*Vertex)}
}

// dominates reports whether an entry of weight w at time t is at least as
// good as one of weight w2 at t2. Earlier is better going forward, later is
// better going backward.
func (t *MultiTree) dominates(w float64, tm int64, w2 float64, tm2 int64) bool {
	if w > w2 {
		return false
	}
	if t.arriveBy {
		return tm >= tm2
	}
	return tm <= tm2
}

// Add inserts a non-dominated candidate and evicts the entries it dominates
func (t *MultiTree) Add(v *core.Vertex, s *core.State, weight float64) *Vertex {
	list := t.sets[v]
	for _, old := range list {
		if t.dominates(old.Weight, old.State.Time, weight, s.Time) {
			return nil
		}
	}
	kept := make([]*Vertex, 0, len(list)+1)
	for _, old := range list {
		if t.dominates(weight, s.Time, old.Weight, old.State.Time) {
			old.dead = true
			t.size--
			continue
		}
		kept = append(kept, old)
	}
	nv := &Vertex{Mirror: v, State: s, Weight: weight}
	t.sets[v] = append(kept, nv)
	t.size++
	return nv
}

// States returns the skyline at v
func (t *MultiTree) States(v *core.Vertex) []*Vertex { return t.sets[v] }

// Path extracts the path from the minimum-weight entry at dest
func (t *MultiTree) Path(dest *core.Vertex, optimize bool) *GraphPath {
	var best *Vertex
	for _, sv := range t.sets[dest] {
		if best == nil || sv.Weight < best.Weight {
			best = sv
		}
	}
	return extract(best, t.opts, optimize)
}

// Size returns the number of live entries
func (t *MultiTree) Size() int { return t.size }

// Options returns the search options
func (t *MultiTree) Options() *core.TraverseOptions { return t.opts }
