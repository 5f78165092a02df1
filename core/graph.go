package core

import (
	"fmt"
	"sync"
)

// Graph owns vertices, edges and adjacency. It has no traversal logic.
type Graph struct {
	mu       sync.RWMutex
	vertices []*Vertex
	edges    []*Edge
	out      [][]*Edge
	in       [][]*Edge
	labels   map[string]*Vertex
	patterns []*TripPattern
}

// NewGraph returns an empty graph
func NewGraph() *Graph {
	return &Graph{labels: make(map[string]*Vertex)}
}

// AddVertex inserts v and assigns its id. A vertex with the same label is
// returned instead when one exists.
func (g *Graph) AddVertex(v *Vertex) *Vertex {
	if old, ok := g.labels[v.Label]; ok {
		return old
	}
	v.ID = VertexID(len(g.vertices))
	g.vertices = append(g.vertices, v)
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	g.labels[v.Label] = v
	return v
}

// Vertex returns the vertex with the given label, or nil
func (g *Graph) Vertex(label string) *Vertex {
	return g.labels[label]
}

// Lookup is Vertex with an error for unknown labels
func (g *Graph) Lookup(label string) (*Vertex, error) {
	if v, ok := g.labels[label]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrVertexNotFound, label)
}

// VertexByID returns the vertex at id, or nil
func (g *Graph) VertexByID(id VertexID) *Vertex {
	if id < 0 || int(id) >= len(g.vertices) {
		return nil
	}
	return g.vertices[id]
}

// Vertices returns the vertex arena
func (g *Graph) Vertices() []*Vertex { return g.vertices }

// Edges returns the edge arena
func (g *Graph) Edges() []*Edge { return g.edges }

// NumVertices returns the number of vertices
func (g *Graph) NumVertices() int { return len(g.vertices) }

// NumEdges returns the number of edges
func (g *Graph) NumEdges() int { return len(g.edges) }

// AddEdge creates an edge between two graph vertices
func (g *Graph) AddEdge(from, to *Vertex, p Payload) *Edge {
	if !g.owns(from) || !g.owns(to) {
		panic(fmt.Sprintf("core: edge %s -> %s references a vertex outside the graph", from, to))
	}
	e := NewEdge(from, to, p)
	e.ID = EdgeID(len(g.edges))
	g.edges = append(g.edges, e)
	g.out[from.ID] = append(g.out[from.ID], e)
	g.in[to.ID] = append(g.in[to.ID], e)
	return e
}

// RemoveEdge detaches e from the adjacency lists. The arena slot is kept so
// edge ids stay stable.
func (g *Graph) RemoveEdge(e *Edge) {
	if e.ID < 0 || int(e.ID) >= len(g.edges) || g.edges[e.ID] != e {
		return
	}
	g.out[e.From.ID] = without(g.out[e.From.ID], e)
	g.in[e.To.ID] = without(g.in[e.To.ID], e)
	g.edges[e.ID] = nil
	e.ID = NoEdge
}

func without(list []*Edge, e *Edge) []*Edge {
	out := list[:0]
	for _, x := range list {
		if x != e {
			out = append(out, x)
		}
	}
	return out
}

func (g *Graph) owns(v *Vertex) bool {
	return v != nil && v.ID >= 0 && int(v.ID) < len(g.vertices) && g.vertices[v.ID] == v
}

// Outgoing returns the edges leaving v
func (g *Graph) Outgoing(v *Vertex) []*Edge {
	if !g.owns(v) {
		return nil
	}
	return g.out[v.ID]
}

// Incoming returns the edges entering v
func (g *Graph) Incoming(v *Vertex) []*Edge {
	if !g.owns(v) {
		return nil
	}
	return g.in[v.ID]
}

// AddPattern registers a trip pattern
func (g *Graph) AddPattern(p *TripPattern) { g.patterns = append(g.patterns, p) }

// Patterns returns the registered trip patterns
func (g *Graph) Patterns() []*TripPattern { return g.patterns }

// Lock takes the exclusive topology lock
func (g *Graph) Lock() { g.mu.Lock() }

// Unlock releases the exclusive topology lock
func (g *Graph) Unlock() { g.mu.Unlock() }

// RLock takes the shared lock held by searches
func (g *Graph) RLock() { g.mu.RLock() }

// RUnlock releases the shared lock
func (g *Graph) RUnlock() { g.mu.RUnlock() }
