package core

import (
	"fmt"

	"github.com/paulmach/orb"
)

// VertexID is the arena index of a vertex. Temporary vertices that are not
// part of a graph carry NoVertex.
type VertexID int32

// NoVertex is the id of a vertex outside the graph arena
const NoVertex VertexID = -1

// VertexKind distinguishes the vertex variants
type VertexKind uint8

const (
	VertexIntersection VertexKind = iota
	VertexDeadEnd
	VertexTransitStop
	VertexStopArrive
	VertexStopDepart
	VertexJourney
	VertexStreetLocation
)

func (k VertexKind) String() string {
	switch k {
	case VertexIntersection:
		return "intersection"
	case VertexDeadEnd:
		return "dead_end"
	case VertexTransitStop:
		return "transit_stop"
	case VertexStopArrive:
		return "stop_arrive"
	case VertexStopDepart:
		return "stop_depart"
	case VertexJourney:
		return "journey"
	case VertexStreetLocation:
		return "street_location"
	}
	return fmt.Sprintf("kind(%d)", k)
}

// IsStreet reports whether the vertex belongs to the street network
func (k VertexKind) IsStreet() bool {
	return k == VertexIntersection || k == VertexDeadEnd || k == VertexStreetLocation
}

// Vertex is a node of the graph. Adjacency lives in the Graph.
type Vertex struct {
	ID         VertexID
	Label      string
	Name       string
	Kind       VertexKind
	Coord      orb.Point
	StopID     string
	Wheelchair bool
}

// NewVertex returns a vertex that is not yet part of a graph
func NewVertex(kind VertexKind, label, name string, coord orb.Point) *Vertex {
	return &Vertex{ID: NoVertex, Label: label, Name: name, Kind: kind, Coord: coord, Wheelchair: true}
}

// NewIntersection returns a street intersection at lon/lat
func NewIntersection(label string, lon, lat float64) *Vertex {
	return NewVertex(VertexIntersection, label, label, orb.Point{lon, lat})
}

func (v *Vertex) String() string {
	return fmt.Sprintf("<%s %s>", v.Kind, v.Label)
}
