package planner

import (
	"math"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/theoremus-urban-solutions/transit-router/core"
	"github.com/theoremus-urban-solutions/transit-router/spt"
)

type leg struct {
	mode     core.TraverseMode
	route    *core.Route
	trip     string
	start    int64
	end      int64
	distance float64
	line     orb.LineString
}

func (l *leg) same(mode core.TraverseMode, route *core.Route, trip string) bool {
	return l.mode == mode && l.route == route && l.trip == trip
}

func (l *leg) extend(ls orb.LineString) {
	for _, pt := range ls {
		if n := len(l.line); n > 0 && l.line[n-1] == pt {
			continue
		}
		l.line = append(l.line, pt)
	}
}

// PathGeometry exports a path as a GeoJSON feature collection with one line
// feature per leg. Consecutive edges share a leg while the mode, the route
// and the trip stay the same. Legs without extent are left out.
func PathGeometry(path *spt.GraphPath, loc *time.Location) *geojson.FeatureCollection {
	if loc == nil {
		loc = time.UTC
	}
	fc := geojson.NewFeatureCollection()
	if path == nil {
		return fc
	}
	var legs []*leg
	for _, e := range path.Edges {
		mode, route, trip := e.Payload.Mode(), routeOf(e.Payload), ""
		if e.Payload.IsTransit() {
			trip = e.To.State.TripID
			if trip == "" {
				trip = e.From.State.TripID
			}
		}
		var cur *leg
		if n := len(legs); n > 0 && legs[n-1].same(mode, route, trip) {
			cur = legs[n-1]
		} else {
			cur = &leg{mode: mode, route: route, trip: trip, start: e.From.State.Time}
			legs = append(legs, cur)
		}
		g := e.Payload.Geometry()
		if e.From.Mirror != e.Payload.From {
			g = reverseLine(g)
		}
		cur.extend(g)
		cur.end = e.To.State.Time
		cur.distance += e.Payload.Distance()
	}

	for _, l := range legs {
		if len(l.line) < 2 {
			continue
		}
		f := geojson.NewFeature(l.line)
		f.Properties["mode"] = l.mode.String()
		f.Properties["start"] = time.UnixMilli(l.start).In(loc).Format(time.RFC3339)
		f.Properties["end"] = time.UnixMilli(l.end).In(loc).Format(time.RFC3339)
		f.Properties["distance"] = math.Round(l.distance*10) / 10
		if l.route != nil {
			f.Properties["route"] = l.route.Name()
			f.Properties["route_id"] = l.route.ID
			f.Properties["agency_id"] = l.route.AgencyID
			f.Properties["trip_id"] = l.trip
		}
		fc.Append(f)
	}
	return fc
}

// GeoJSON exports the itinerary path
func (it *Itinerary) GeoJSON() *geojson.FeatureCollection {
	return PathGeometry(it.Path, it.StartTime.Location())
}

func routeOf(e *core.Edge) *core.Route {
	switch p := e.Payload.(type) {
	case *core.PatternBoard:
		return p.Pattern.Route
	case *core.PatternAlight:
		return p.Pattern.Route
	case *core.PatternHop:
		return p.Pattern.Route
	case *core.PatternDwell:
		return p.Pattern.Route
	case *core.PatternInterlineDwell:
		return p.To.Route
	}
	return nil
}

func reverseLine(ls orb.LineString) orb.LineString {
	out := make(orb.LineString, len(ls))
	for i, pt := range ls {
		out[len(ls)-1-i] = pt
	}
	return out
}
