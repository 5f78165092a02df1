package builder

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/theoremus-urban-solutions/transit-router/gtfs"
	"github.com/theoremus-urban-solutions/transit-router/internal/geom"
)

// shapeCache keeps shape lines and stop projections for one build
type shapeCache struct {
	feed        *gtfs.Feed
	lines       map[string]orb.LineString
	cumulative  map[string][]float64
	projections map[[2]string]geom.Projection
}

func newShapeCache(feed *gtfs.Feed) *shapeCache {
	return &shapeCache{
		feed:        feed,
		lines:       make(map[string]orb.LineString),
		cumulative:  make(map[string][]float64),
		projections: make(map[[2]string]geom.Projection),
	}
}

func (c *shapeCache) line(shapeID string) orb.LineString {
	if ls, ok := c.lines[shapeID]; ok {
		return ls
	}
	ls := c.feed.ShapeLine(shapeID)
	c.lines[shapeID] = ls
	c.cumulative[shapeID] = geom.Cumulative(ls)
	return ls
}

func (c *shapeCache) project(shapeID, stopID string) (geom.Projection, bool) {
	key := [2]string{shapeID, stopID}
	if pr, ok := c.projections[key]; ok {
		return pr, true
	}
	pt, ok := c.feed.StopPoint(stopID)
	if !ok {
		return geom.Projection{}, false
	}
	pr, ok := geom.Project(c.line(shapeID), pt)
	if !ok {
		return pr, false
	}
	c.projections[key] = pr
	return pr, true
}

// hopGeometry returns the shape between two stops of a trip, or the straight
// line between them when the trip has no usable shape
func (c *shapeCache) hopGeometry(shapeID, fromStop, toStop string) orb.LineString {
	a, _ := c.feed.StopPoint(fromStop)
	b, _ := c.feed.StopPoint(toStop)
	straight := orb.LineString{a, b}
	if shapeID == "" {
		return straight
	}
	from, ok1 := c.project(shapeID, fromStop)
	to, ok2 := c.project(shapeID, toStop)
	if !ok1 || !ok2 {
		return straight
	}
	return geom.Slice(c.line(shapeID), from, to)
}

// stopDistances returns the distance of each stop from the first one,
// measured along the trip's shape when it has one
func (c *shapeCache) stopDistances(shapeID string, stops []string) []float64 {
	out := make([]float64, len(stops))
	if shapeID != "" && len(c.line(shapeID)) > 1 {
		ls, cum := c.line(shapeID), c.cumulative[shapeID]
		base := -1.0
		ok := true
		for i, s := range stops {
			pr, found := c.project(shapeID, s)
			if !found {
				ok = false
				break
			}
			d := geom.Along(ls, cum, pr)
			if base < 0 {
				base = d
			}
			out[i] = d - base
			if i > 0 && out[i] < out[i-1] {
				ok = false
				break
			}
		}
		if ok {
			return out
		}
	}
	for i := 1; i < len(stops); i++ {
		a, _ := c.feed.StopPoint(stops[i-1])
		b, _ := c.feed.StopPoint(stops[i])
		out[i] = out[i-1] + geo.Distance(a, b)
	}
	return out
}
