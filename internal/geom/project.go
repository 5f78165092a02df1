// Package geom holds the line projection helpers shared by the builder and
// the linker. Coordinates are lon/lat; projections are planar with the
// longitude scaled to the latitude, which is accurate at street scale.
package geom

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Projection locates the point of a line closest to some query point
type Projection struct {
	Segment  int     // index of the segment's first vertex
	Fraction float64 // position along the segment, 0 to 1
	Point    orb.Point
	Distance float64 // meters between the query point and Point
}

// Project finds the segment of ls nearest to p and the clamped projection of
// p onto it. It reports false for lines with fewer than two points.
func Project(ls orb.LineString, p orb.Point) (Projection, bool) {
	best := Projection{Segment: -1}
	if len(ls) < 2 {
		return best, false
	}
	scale := math.Cos(p.Lat() * math.Pi / 180)
	bestDist2 := math.MaxFloat64
	cx, cy := p.Lon()*scale, p.Lat()
	for i := 0; i+1 < len(ls); i++ {
		ax, ay := ls[i].Lon()*scale, ls[i].Lat()
		bx, by := ls[i+1].Lon()*scale, ls[i+1].Lat()
		vx, vy := bx-ax, by-ay
		wx, wy := cx-ax, cy-ay
		denom := vx*vx + vy*vy
		t := 0.0
		if denom > 0 {
			t = (wx*vx + wy*vy) / denom
		}
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
		dx, dy := cx-(ax+t*vx), cy-(ay+t*vy)
		if d2 := dx*dx + dy*dy; d2 < bestDist2 {
			bestDist2 = d2
			best.Segment = i
			best.Fraction = t
		}
	}
	a, b := ls[best.Segment], ls[best.Segment+1]
	best.Point = orb.Point{a[0] + best.Fraction*(b[0]-a[0]), a[1] + best.Fraction*(b[1]-a[1])}
	best.Distance = geo.Distance(p, best.Point)
	return best, true
}

// Cumulative returns the distance in meters from the first point of ls to
// each of its points
func Cumulative(ls orb.LineString) []float64 {
	cum := make([]float64, len(ls))
	for i := 1; i < len(ls); i++ {
		cum[i] = cum[i-1] + geo.Distance(ls[i-1], ls[i])
	}
	return cum
}

// Along is the distance in meters from the start of ls to the projection.
// cum must come from Cumulative(ls).
func Along(ls orb.LineString, cum []float64, pr Projection) float64 {
	if pr.Segment < 0 || pr.Segment >= len(cum) {
		return 0
	}
	return cum[pr.Segment] + geo.Distance(ls[pr.Segment], pr.Point)
}

// Slice returns the part of ls between two projections. A backwards pair
// yields the straight line between the projected points.
func Slice(ls orb.LineString, from, to Projection) orb.LineString {
	if from.Segment < 0 || to.Segment < 0 ||
		from.Segment > to.Segment || (from.Segment == to.Segment && from.Fraction > to.Fraction) {
		return orb.LineString{from.Point, to.Point}
	}
	out := orb.LineString{from.Point}
	for i := from.Segment + 1; i <= to.Segment; i++ {
		if ls[i] != out[len(out)-1] {
			out = append(out, ls[i])
		}
	}
	if to.Point != out[len(out)-1] || len(out) == 1 {
		out = append(out, to.Point)
	}
	return out
}

// Split cuts ls at a projection. Both halves contain the projected point.
func Split(ls orb.LineString, at Projection) (orb.LineString, orb.LineString) {
	head := make(orb.LineString, 0, at.Segment+2)
	head = append(head, ls[:at.Segment+1]...)
	if head[len(head)-1] != at.Point {
		head = append(head, at.Point)
	}
	tail := orb.LineString{at.Point}
	for _, p := range ls[at.Segment+1:] {
		if p != tail[len(tail)-1] {
			tail = append(tail, p)
		}
	}
	if len(tail) == 1 {
		tail = append(tail, at.Point)
	}
	if len(head) == 1 {
		head = append(head, at.Point)
	}
	return head, tail
}
