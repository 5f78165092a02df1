package gtfs

import (
	"github.com/paulmach/orb"
)

// StopPoint returns the stop location as a lon/lat point
func (f *Feed) StopPoint(stopID string) (orb.Point, bool) {
	s, ok := f.Stops[stopID]
	if !ok {
		return orb.Point{}, false
	}
	return orb.Point{s.Lon, s.Lat}, true
}

// ShapeLine returns the ordered points of a shape
func (f *Feed) ShapeLine(shapeID string) orb.LineString {
	pts := f.Shapes[shapeID]
	if len(pts) == 0 {
		return nil
	}
	ls := make(orb.LineString, len(pts))
	for i, p := range pts {
		ls[i] = orb.Point{p.Lon, p.Lat}
	}
	return ls
}
