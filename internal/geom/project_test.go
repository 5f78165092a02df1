package geom

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var line = orb.LineString{{-122.0, 37.0}, {-122.0, 37.01}, {-121.99, 37.01}}

func TestProject(t *testing.T) {
	tests := []struct {
		name     string
		p        orb.Point
		segment  int
		fraction float64
	}{
		{"on first segment", orb.Point{-122.0001, 37.005}, 0, 0.5},
		{"before start", orb.Point{-122.0, 36.9}, 0, 0},
		{"second segment", orb.Point{-121.995, 37.0101}, 1, 0.5},
		{"past end", orb.Point{-121.9, 37.01}, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pr, ok := Project(line, tt.p)
			require.True(t, ok)
			assert.Equal(t, tt.segment, pr.Segment)
			assert.InDelta(t, tt.fraction, pr.Fraction, 1e-3)
			assert.InDelta(t, geo.Distance(tt.p, pr.Point), pr.Distance, 1e-9)
		})
	}

	_, ok := Project(orb.LineString{{0, 0}}, orb.Point{0, 0})
	assert.False(t, ok)
}

func TestAlongAndSlice(t *testing.T) {
	cum := Cumulative(line)
	require.Len(t, cum, 3)
	assert.InDelta(t, geo.Distance(line[0], line[1]), cum[1], 1e-9)

	a, _ := Project(line, orb.Point{-122.0, 37.005})
	b, _ := Project(line, orb.Point{-121.995, 37.01})
	assert.InDelta(t, cum[1]/2, Along(line, cum, a), 1)
	assert.Less(t, Along(line, cum, a), Along(line, cum, b))

	s := Slice(line, a, b)
	assert.Equal(t, orb.LineString{a.Point, line[1], b.Point}, s)

	back := Slice(line, b, a)
	assert.Equal(t, orb.LineString{b.Point, a.Point}, back)
}

func TestSplit(t *testing.T) {
	at, _ := Project(line, orb.Point{-122.0, 37.005})
	head, tail := Split(line, at)
	assert.Equal(t, orb.LineString{line[0], at.Point}, head)
	assert.Equal(t, orb.LineString{at.Point, line[1], line[2]}, tail)

	end, _ := Project(line, orb.Point{-121.9, 37.01})
	head, tail = Split(line, end)
	assert.Equal(t, line, head)
	assert.Len(t, tail, 2)
}
