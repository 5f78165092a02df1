package builder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/transit-router/builder"
	"github.com/theoremus-urban-solutions/transit-router/core"
	"github.com/theoremus-urban-solutions/transit-router/internal/testutil"
)

func patternOf(t *testing.T, g *core.Graph, tripID string) (*core.TripPattern, int) {
	t.Helper()
	for _, p := range g.Patterns() {
		for i := 0; i < p.NumTrips(); i++ {
			if p.Trip(i).ID == tripID {
				return p, i
			}
		}
	}
	t.Fatalf("trip %s is in no pattern", tripID)
	return nil, -1
}

func TestCaltrainBuild(t *testing.T) {
	fx := testutil.Build(t, "caltrain")
	st := fx.Result.Stats

	assert.Equal(t, 7, st.Stops)
	assert.Equal(t, 4, st.Patterns)
	assert.Equal(t, 6, st.Trips)
	assert.Equal(t, 22, st.Hops)
	assert.Zero(t, st.SkippedTrips)
	assert.Zero(t, st.Transfers)
	assert.Zero(t, st.InterlineDwells)
	assert.Equal(t, "Caltrain", fx.Result.AgencyID)
	assert.Equal(t, "America/Los_Angeles", fx.Result.Location.String())
	require.NotNil(t, fx.Result.Fares)
	require.NotNil(t, fx.Result.Calendar)

	for _, label := range []string{
		"Caltrain_Millbrae Caltrain",
		"Caltrain_Millbrae Caltrain_arrive",
		"Caltrain_Millbrae Caltrain_depart",
	} {
		assert.NotNil(t, fx.Graph.Vertex(label), label)
	}

	local, _ := patternOf(t, fx.Graph, "12201")
	assert.Equal(t, 3, local.NumTrips())
	assert.Equal(t, core.ModeRail, local.Mode)
	assert.Equal(t, "WKDY", local.ServiceID)
	assert.Equal(t, "2", local.Zone(2))
}

func TestCaltrainStopFlags(t *testing.T) {
	fx := testutil.Build(t, "caltrain")

	assert.True(t, fx.Stop(t, "San Francisco Caltrain").Wheelchair)
	assert.False(t, fx.Stop(t, "22nd St Caltrain").Wheelchair)

	bullet, _ := patternOf(t, fx.Graph, "12451")
	assert.True(t, bullet.CanBoard(1))
	assert.False(t, bullet.CanAlight(1))
	assert.False(t, bullet.CanBoard(4))
	assert.True(t, bullet.CanAlight(4))

	// no alight edge leaves the bullet at Millbrae, only the dwell
	v := fx.Graph.Vertex("Caltrain_Millbrae Caltrain_12451_1_A")
	require.NotNil(t, v)
	out := fx.Graph.Outgoing(v)
	require.Len(t, out, 1)
	assert.IsType(t, &core.PatternDwell{}, out[0].Payload)

	p, i := patternOf(t, fx.Graph, "13201")
	assert.False(t, p.Trip(i).Wheelchair)
}

func TestInterpolatedStopTimes(t *testing.T) {
	fx := testutil.Build(t, "caltrain")
	p, i := patternOf(t, fx.Graph, "13201")

	// Hillsdale is stop 3, between Millbrae 13:39 and Palo Alto 14:12
	dep := p.DepartureTime(3, i)
	assert.Greater(t, dep, 13*3600+39*60)
	assert.Less(t, dep, 14*3600+12*60)
	assert.Equal(t, dep, p.ArrivalTime(2, i))
	assert.Equal(t, 0, p.DwellTime(3, i))
}

func TestHopGeometryFollowsShape(t *testing.T) {
	fx := testutil.Build(t, "caltrain")
	v := fx.Graph.Vertex("Caltrain_22nd St Caltrain_11201_1_D")
	require.NotNil(t, v)

	var hop *core.Edge
	for _, e := range fx.Graph.Outgoing(v) {
		if _, ok := e.Payload.(*core.PatternHop); ok {
			hop = e
		}
	}
	require.NotNil(t, hop)
	ls := hop.Geometry()
	// the shape bends through a point between 22nd St and Millbrae
	assert.Greater(t, len(ls), 2)
	assert.Greater(t, hop.Distance(), 17000.0)
}

func TestFrequencyExpansion(t *testing.T) {
	fx := testutil.Build(t, "portland")
	st := fx.Result.Stats

	assert.Equal(t, 12, st.FrequencyRuns)
	assert.Equal(t, 4, st.Trips)
	assert.Equal(t, 3, st.Patterns)

	red, _ := patternOf(t, fx.Graph, "90W1")
	require.Equal(t, 12, red.NumTrips())
	assert.Equal(t, 7*3600, red.DepartureTime(0, 0))
	assert.Equal(t, 8*3600, red.DepartureTime(0, 4))
	assert.Equal(t, 8*3600+30*60, red.ArrivalTime(3, 4))
	assert.Equal(t, 4, red.TripIndex(red.Trip(4), 8*3600))
	assert.Equal(t, core.ModeTram, red.Mode)

	require.NotNil(t, fx.Result.Fares)
	assert.Len(t, fx.Result.Fares.Types(), 1)
}

func TestFakeFeed(t *testing.T) {
	fx := testutil.Build(t, "fake")
	st := fx.Result.Stats

	assert.Equal(t, 1, st.SkippedRoutes)
	assert.Equal(t, 1, st.SkippedTrips)
	assert.Equal(t, 4, st.Trips)
	assert.Equal(t, 4, st.Patterns)
	assert.Equal(t, 1, st.SingletonPatterns)
	assert.Equal(t, 1, st.Transfers)
	assert.Equal(t, 1, st.InterlineDwells)
	assert.Nil(t, fx.Result.Fares)
	assert.Equal(t, "agency", fx.Result.AgencyID)
}

func TestOvertakingTripGetsOwnPattern(t *testing.T) {
	fx := testutil.Build(t, "fake")
	p1, _ := patternOf(t, fx.Graph, "T1")
	p4, _ := patternOf(t, fx.Graph, "T4")

	assert.NotSame(t, p1, p4)
	assert.Equal(t, 1, p1.NumTrips())
	assert.Equal(t, 1, p4.NumTrips())
	assert.Equal(t, p1.Route, p4.Route)
}

func TestInterlineDwell(t *testing.T) {
	fx := testutil.Build(t, "fake")
	v := fx.Graph.Vertex("agency_C_T1_2_A")
	require.NotNil(t, v)

	var il *core.PatternInterlineDwell
	for _, e := range fx.Graph.Outgoing(v) {
		if p, ok := e.Payload.(*core.PatternInterlineDwell); ok {
			il = p
			assert.Equal(t, "agency_C_T2_0_D", e.To.Label)
		}
	}
	require.NotNil(t, il)
	d, ok := il.Lookup("T1")
	require.True(t, ok)
	assert.Equal(t, "T2", d.Trip.ID)
	assert.Equal(t, 300, d.DwellTime)
	assert.Equal(t, 0, d.PatternIndex)
}

func TestTransferUsesMinimumTime(t *testing.T) {
	fx := testutil.Build(t, "fake")
	c := fx.Stop(t, "C")

	var tr *core.Transfer
	for _, e := range fx.Graph.Outgoing(c) {
		if p, ok := e.Payload.(*core.Transfer); ok {
			tr = p
			assert.Equal(t, "agency_F", e.To.Label)
		}
	}
	require.NotNil(t, tr)
	assert.Equal(t, 120, tr.Seconds)
	assert.InDelta(t, 85, tr.Distance, 5)
	assert.False(t, tr.Wheelchair, "stops without wheelchair_boarding")
}

func TestAgencyOverride(t *testing.T) {
	fx := testutil.Build(t, "fake", builder.WithAgencyID("x"), builder.WithFares(false))
	assert.Equal(t, "x", fx.Result.AgencyID)
	assert.NotNil(t, fx.Graph.Vertex("x_A"))
	assert.Equal(t, "x_A", fx.Factory.StopLabel("A"))
}
