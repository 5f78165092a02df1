package core

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// EdgeID is the arena index of an edge
type EdgeID int32

// NoEdge is the id of an edge outside the graph arena
const NoEdge EdgeID = -1

// Payload is the closed set of edge variants. Only this package implements it.
type Payload interface {
	payload()
}

func (*Street) payload()                {}
func (*Turn) payload()                  {}
func (*Free) payload()                  {}
func (*StreetTransitLink) payload()     {}
func (*PatternBoard) payload()          {}
func (*PatternAlight) payload()         {}
func (*PatternHop) payload()            {}
func (*PatternDwell) payload()          {}
func (*PatternInterlineDwell) payload() {}
func (*Transfer) payload()              {}

// Edge is a directed connection between two vertices
type Edge struct {
	ID      EdgeID
	From    *Vertex
	To      *Vertex
	Payload Payload
}

// NewEdge returns an edge that is not registered in a graph. Temporary edges
// of street locations are built this way.
func NewEdge(from, to *Vertex, p Payload) *Edge {
	return &Edge{ID: NoEdge, From: from, To: to, Payload: p}
}

// TraverseResult is the outcome of a successful traversal
type TraverseResult struct {
	Weight float64
	State  *State
}

// Traverse moves s forward in time across the edge. It returns nil when the
// edge cannot be used.
func (e *Edge) Traverse(s *State, o *TraverseOptions) *TraverseResult {
	return e.traverse(s, o, false)
}

// TraverseBack moves s backward in time across the edge, from To to From.
func (e *Edge) TraverseBack(s *State, o *TraverseOptions) *TraverseResult {
	return e.traverse(s, o, true)
}

func (e *Edge) traverse(s *State, o *TraverseOptions, back bool) *TraverseResult {
	switch p := e.Payload.(type) {
	case *Street:
		return p.traverse(s, o, back)
	case *Turn:
		return p.traverse(s, o, back)
	case *Free:
		return p.traverse(s)
	case *StreetTransitLink:
		return p.traverse(s, o)
	case *PatternBoard:
		if back {
			return p.traverseBack(s, o)
		}
		return p.traverse(s, o)
	case *PatternAlight:
		if back {
			return p.traverseBack(s, o)
		}
		return p.traverse(s, o)
	case *PatternHop:
		return p.traverse(s, back)
	case *PatternDwell:
		return p.traverse(s, back)
	case *PatternInterlineDwell:
		return p.traverse(s, o, back)
	case *Transfer:
		return p.traverse(s, o, back)
	}
	panic(fmt.Sprintf("core: unknown edge payload %T", e.Payload))
}

// Kind names the payload variant
func (e *Edge) Kind() string {
	switch e.Payload.(type) {
	case *Street:
		return "street"
	case *Turn:
		return "turn"
	case *Free:
		return "free"
	case *StreetTransitLink:
		return "street_transit_link"
	case *PatternBoard:
		return "board"
	case *PatternAlight:
		return "alight"
	case *PatternHop:
		return "hop"
	case *PatternDwell:
		return "dwell"
	case *PatternInterlineDwell:
		return "interline_dwell"
	case *Transfer:
		return "transfer"
	}
	return "unknown"
}

// Name is the display name: street name, route name or a fixed label
func (e *Edge) Name() string {
	switch p := e.Payload.(type) {
	case *Street:
		return p.Name
	case *PatternBoard:
		return p.Pattern.Route.Name()
	case *PatternAlight:
		return p.Pattern.Route.Name()
	case *PatternHop:
		return p.Pattern.Route.Name()
	case *PatternDwell:
		return p.Pattern.Route.Name()
	case *PatternInterlineDwell:
		return p.To.Route.Name()
	case *StreetTransitLink:
		if e.To.Kind == VertexTransitStop {
			return e.To.Name
		}
		return e.From.Name
	}
	return e.Kind()
}

// Mode is the traverse mode a rider uses on the edge
func (e *Edge) Mode() TraverseMode {
	switch p := e.Payload.(type) {
	case *PatternBoard:
		return p.Pattern.Mode
	case *PatternAlight:
		return p.Pattern.Mode
	case *PatternHop:
		return p.Pattern.Mode
	case *PatternDwell:
		return p.Pattern.Mode
	case *PatternInterlineDwell:
		return p.To.Mode
	case *Transfer:
		return ModeTransfer
	}
	return ModeWalk
}

// IsTransit reports whether the edge belongs to a scheduled trip
func (e *Edge) IsTransit() bool {
	switch e.Payload.(type) {
	case *PatternBoard, *PatternAlight, *PatternHop, *PatternDwell, *PatternInterlineDwell:
		return true
	}
	return false
}

// Geometry returns the edge shape, a straight line when none is stored
func (e *Edge) Geometry() orb.LineString {
	switch p := e.Payload.(type) {
	case *Street:
		if len(p.Geometry) > 1 {
			return p.Geometry
		}
	case *PatternHop:
		if len(p.Geometry) > 1 {
			return p.Geometry
		}
	}
	return orb.LineString{e.From.Coord, e.To.Coord}
}

// Distance is the length of the edge in meters
func (e *Edge) Distance() float64 {
	switch p := e.Payload.(type) {
	case *Street:
		return p.Length
	case *PatternHop:
		if p.Length > 0 {
			return p.Length
		}
		return geo.Length(e.Geometry())
	case *Transfer:
		return p.Distance
	}
	return 0
}

func (e *Edge) String() string {
	return fmt.Sprintf("%s(%s -> %s)", e.Kind(), e.From.Label, e.To.Label)
}
