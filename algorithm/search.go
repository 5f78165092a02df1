package algorithm

import (
	"context"
	"errors"
	"fmt"

	"github.com/inconshreveable/log15"
	"github.com/paulmach/orb/geo"

	"github.com/theoremus-urban-solutions/transit-router/core"
	"github.com/theoremus-urban-solutions/transit-router/internal"
	"github.com/theoremus-urban-solutions/transit-router/spt"
)

// ErrSearchAborted is returned when the context is cancelled mid-search. The
// partial tree is returned with it.
var ErrSearchAborted = errors.New("search aborted")

var log = internal.Logger("algorithm")

// SetLogger replaces the package logger
func SetLogger(l log15.Logger) { log = l }

// AStar searches forward in time from from towards to. Extra edges attach
// temporary vertices, such as street locations, without touching the graph.
func AStar(ctx context.Context, g *core.Graph, from, to *core.Vertex, s0 *core.State, o *core.TraverseOptions, extra ...*core.Edge) (spt.ShortestPathTree, error) {
	opts := o.Clone()
	opts.ArriveBy = false
	return run(ctx, g, from, to, s0, opts, extra)
}

// AStarBack searches backward in time from to towards from, for arrive-by
// queries. s0 is the state at to. Paths extracted from the tree run from to
// back to from; use GraphPath.Reverse to present them forward.
func AStarBack(ctx context.Context, g *core.Graph, from, to *core.Vertex, s0 *core.State, o *core.TraverseOptions, extra ...*core.Edge) (spt.ShortestPathTree, error) {
	opts := o.Clone()
	opts.ArriveBy = true
	return run(ctx, g, to, from, s0, opts, extra)
}

// Dijkstra builds the full tree reachable from origin, forward or backward
// in time according to o.ArriveBy
func Dijkstra(ctx context.Context, g *core.Graph, origin *core.Vertex, s0 *core.State, o *core.TraverseOptions, extra ...*core.Edge) (spt.ShortestPathTree, error) {
	return run(ctx, g, origin, nil, s0, o.Clone(), extra)
}

type searcher struct {
	g      *core.Graph
	opts   *core.TraverseOptions
	target *core.Vertex
	speed  float64
	out    map[*core.Vertex][]*core.Edge
	in     map[*core.Vertex][]*core.Edge
}

func run(ctx context.Context, g *core.Graph, origin, target *core.Vertex, s0 *core.State, o *core.TraverseOptions, extra []*core.Edge) (spt.ShortestPathTree, error) {
	if origin == nil {
		return nil, fmt.Errorf("%w: nil origin", core.ErrVertexNotFound)
	}
	if s0 == nil {
		return nil, fmt.Errorf("%w: nil initial state", core.ErrInvalidTime)
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	g.RLock()
	defer g.RUnlock()

	s := &searcher{g: g, opts: o, target: target, speed: o.MaxSpeed()}
	if len(extra) > 0 {
		s.out = make(map[*core.Vertex][]*core.Edge)
		s.in = make(map[*core.Vertex][]*core.Edge)
		for _, e := range extra {
			s.out[e.From] = append(s.out[e.From], e)
			s.in[e.To] = append(s.in[e.To], e)
		}
	}

	tree := spt.New(o)
	root := tree.Add(origin, s0, 0)
	q := &queue{}
	q.push(root, s.heuristic(origin))

	popped := 0
	for q.len() > 0 {
		if err := ctx.Err(); err != nil {
			return tree, fmt.Errorf("%w: %w", ErrSearchAborted, err)
		}
		u := q.pop()
		if u.Dominated() {
			continue
		}
		popped++
		if u.Mirror == target {
			break
		}
		for _, e := range s.edges(u.Mirror) {
			if err := s.relax(tree, q, u, e); err != nil {
				return tree, err
			}
		}
	}
	log.Debug("search finished", "origin", origin.Label, "target", labelOf(target),
		"arriveBy", o.ArriveBy, "popped", popped, "tree", tree.Size())
	return tree, nil
}

func (s *searcher) relax(tree spt.ShortestPathTree, q *queue, u *spt.Vertex, e *core.Edge) error {
	var r *core.TraverseResult
	var next *core.Vertex
	if s.opts.ArriveBy {
		r = e.TraverseBack(u.State, s.opts)
		next = e.From
	} else {
		r = e.Traverse(u.State, s.opts)
		next = e.To
	}
	if r == nil {
		return nil
	}
	elapsed := r.State.Time - u.State.Time
	if s.opts.ArriveBy {
		elapsed = -elapsed
	}
	if r.Weight < 0 || elapsed < 0 {
		return &core.NegativeWeightError{Edge: e, Weight: r.Weight, Elapsed: elapsed}
	}
	if s.opts.ExceedsWorstTime(r.State.Time) {
		return nil
	}
	w := u.Weight + r.Weight
	v := tree.Add(next, r.State, w)
	if v == nil {
		return nil
	}
	v.SetParent(u, e)
	q.push(v, w+s.heuristic(next))
	return nil
}

func (s *searcher) edges(v *core.Vertex) []*core.Edge {
	var base, more []*core.Edge
	if s.opts.ArriveBy {
		base = s.g.Incoming(v)
		more = s.in[v]
	} else {
		base = s.g.Outgoing(v)
		more = s.out[v]
	}
	if len(more) == 0 {
		return base
	}
	all := make([]*core.Edge, 0, len(base)+len(more))
	all = append(all, base...)
	return append(all, more...)
}

// heuristic never overestimates: every edge weighs at least its travel time
// and nothing moves faster than the options' max speed
func (s *searcher) heuristic(v *core.Vertex) float64 {
	if s.target == nil || s.speed <= 0 {
		return 0
	}
	return geo.Distance(v.Coord, s.target.Coord) / s.speed
}

func labelOf(v *core.Vertex) string {
	if v == nil {
		return ""
	}
	return v.Label
}
