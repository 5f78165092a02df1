package planner_test

import (
	"context"
	"errors"
	"testing"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"github.com/theoremus-urban-solutions/transit-router/algorithm"
	"github.com/theoremus-urban-solutions/transit-router/core"
	"github.com/theoremus-urban-solutions/transit-router/fare"
	"github.com/theoremus-urban-solutions/transit-router/internal"
	"github.com/theoremus-urban-solutions/transit-router/internal/testutil"
	"github.com/theoremus-urban-solutions/transit-router/linker"
	"github.com/theoremus-urban-solutions/transit-router/planner"
	"github.com/theoremus-urban-solutions/transit-router/realtime"
)

const (
	millbrae     = "Caltrain_Millbrae Caltrain"
	mountainView = "Caltrain_Mountain View Caltrain"
	gateway      = "TriMet_10293"
	airport      = "TriMet_10579"
	pioneer      = "TriMet_8346"
)

func newPlanner(t *testing.T, feed string, opts ...planner.Option) (*planner.Planner, *testutil.Fixture) {
	t.Helper()
	fx := testutil.Build(t, feed)
	opts = append([]planner.Option{planner.WithLogger(internal.Discard())}, opts...)
	return planner.FromBuild(fx.Graph, fx.Result, opts...), fx
}

func plan(t *testing.T, p *planner.Planner, req *planner.Request) *planner.Plan {
	t.Helper()
	res, err := p.Plan(context.Background(), req)
	require.NoError(t, err)
	return res
}

func regular(t *testing.T, it *planner.Itinerary) int64 {
	t.Helper()
	require.NotNil(t, it.Fare)
	m, ok := it.Fare.Get(fare.Regular)
	require.True(t, ok)
	return m.Cents()
}

func assertTime(t *testing.T, want, got time.Time) {
	t.Helper()
	assert.True(t, want.Equal(got), "want %s, got %s", want, got)
}

func secondsOfDay(ts time.Time) int {
	return ts.Hour()*3600 + ts.Minute()*60 + ts.Second()
}

func TestCaltrainDepartAt(t *testing.T) {
	p, fx := newPlanner(t, "caltrain")
	res := plan(t, p, &planner.Request{
		From: planner.LabelPlace(millbrae),
		To:   planner.LabelPlace(mountainView),
		Time: fx.At(2009, time.November, 17, 12, 0, 0),
	})
	require.False(t, res.NoPath())
	require.Len(t, res.Itineraries, 1)
	assert.NotEmpty(t, res.RequestID)

	it := res.Itineraries[0]
	assertTime(t, fx.At(2009, time.November, 17, 13, 29, 0), it.EndTime)
	assert.Equal(t, 48540, secondsOfDay(it.EndTime))
	assertTime(t, fx.At(2009, time.November, 17, 12, 39, 0), it.StartTime)
	assert.Equal(t, 50*time.Minute, it.Duration)
	assert.Equal(t, []string{"ct_local"}, it.Routes)
	assert.Zero(t, it.Transfers)
	assert.Equal(t, int64(425), regular(t, it))
	assert.Empty(t, it.Fare.Unpriced)
}

func TestCaltrainArriveBy(t *testing.T) {
	p, fx := newPlanner(t, "caltrain")
	res := plan(t, p, &planner.Request{
		From:     planner.LabelPlace(millbrae),
		To:       planner.LabelPlace(mountainView),
		Time:     fx.At(2009, time.November, 17, 13, 29, 0),
		ArriveBy: true,
	})
	require.Len(t, res.Itineraries, 1)

	it := res.Itineraries[0]
	assertTime(t, fx.At(2009, time.November, 17, 12, 39, 0), it.StartTime)
	assertTime(t, fx.At(2009, time.November, 17, 13, 29, 0), it.EndTime)
	assert.Equal(t, millbrae, it.Path.Vertices[0].Mirror.Label)
	assert.Equal(t, mountainView, it.Path.Vertices[len(it.Path.Vertices)-1].Mirror.Label)
	assert.Equal(t, int64(425), regular(t, it))
}

func TestCaltrainAlternatives(t *testing.T) {
	p, fx := newPlanner(t, "caltrain")
	res := plan(t, p, &planner.Request{
		From:           planner.LabelPlace(millbrae),
		To:             planner.LabelPlace(mountainView),
		Time:           fx.At(2009, time.November, 17, 12, 0, 0),
		NumItineraries: 3,
	})
	require.Len(t, res.Itineraries, 2, "only two routes serve the pair")
	assert.Equal(t, []string{"ct_local"}, res.Itineraries[0].Routes)
	assert.Equal(t, []string{"ct_bullet"}, res.Itineraries[1].Routes)
	assertTime(t, fx.At(2009, time.November, 17, 13, 32, 0), res.Itineraries[1].EndTime)
	assert.NotEqual(t, res.Itineraries[0].ID, res.Itineraries[1].ID)
}

func TestCaltrainHoliday(t *testing.T) {
	p, fx := newPlanner(t, "caltrain")
	res := plan(t, p, &planner.Request{
		From: planner.LabelPlace(millbrae),
		To:   planner.LabelPlace(mountainView),
		Time: fx.At(2009, time.December, 25, 12, 0, 0),
	})
	require.Len(t, res.Itineraries, 1)
	it := res.Itineraries[0]
	// weekend service runs on the holiday
	assertTime(t, fx.At(2009, time.December, 25, 13, 59, 0), it.EndTime)
	assert.Equal(t, "12501", it.Path.Boardings()[0].To.State.TripID)
}

func TestWorstTime(t *testing.T) {
	p, fx := newPlanner(t, "caltrain")
	req := &planner.Request{
		From: planner.LabelPlace(millbrae),
		To:   planner.LabelPlace(mountainView),
		Time: fx.At(2009, time.November, 17, 12, 0, 0),
	}

	req.WorstTime = fx.At(2009, time.November, 17, 13, 0, 0)
	assert.True(t, plan(t, p, req).NoPath())

	req.WorstTime = fx.At(2009, time.November, 17, 13, 30, 0)
	res := plan(t, p, req)
	require.Len(t, res.Itineraries, 1)
	assertTime(t, fx.At(2009, time.November, 17, 13, 29, 0), res.Itineraries[0].EndTime)
}

func TestWheelchair(t *testing.T) {
	p, fx := newPlanner(t, "caltrain")
	req := &planner.Request{
		From: planner.LabelPlace(millbrae),
		To:   planner.LabelPlace(mountainView),
		Time: fx.At(2009, time.November, 17, 13, 0, 0),
	}
	res := plan(t, p, req)
	require.Len(t, res.Itineraries, 1)
	assertTime(t, fx.At(2009, time.November, 17, 14, 29, 0), res.Itineraries[0].EndTime)

	req.Wheelchair = true
	req.WorstTime = fx.At(2009, time.November, 17, 18, 0, 0)
	assert.True(t, plan(t, p, req).NoPath(), "the last train is not accessible")
}

func rtFeed(t *testing.T, entities ...*gtfsrtpb.FeedEntity) []byte {
	t.Helper()
	b, err := proto.Marshal(&gtfsrtpb.FeedMessage{
		Header: &gtfsrtpb.FeedHeader{GtfsRealtimeVersion: proto.String("2.0")},
		Entity: entities,
	})
	require.NoError(t, err)
	return b
}

func TestRealtimeOverlay(t *testing.T) {
	cancelled := &gtfsrtpb.FeedEntity{
		Id: proto.String("c1"),
		TripUpdate: &gtfsrtpb.TripUpdate{Trip: &gtfsrtpb.TripDescriptor{
			TripId:               proto.String("12201"),
			ScheduleRelationship: gtfsrtpb.TripDescriptor_CANCELED.Enum(),
		}},
	}
	noBullet := &gtfsrtpb.FeedEntity{
		Id: proto.String("a1"),
		Alert: &gtfsrtpb.Alert{
			Effect: gtfsrtpb.Alert_NO_SERVICE.Enum(),
			InformedEntity: []*gtfsrtpb.EntitySelector{
				{AgencyId: proto.String("Caltrain"), RouteId: proto.String("ct_bullet")},
			},
		},
	}

	tests := []struct {
		name   string
		alerts []*gtfsrtpb.FeedEntity
		end    time.Duration
		route  string
	}{
		{name: "cancelled trip", end: 13*time.Hour + 32*time.Minute, route: "ct_bullet"},
		{name: "cancelled trip and suspended route", alerts: []*gtfsrtpb.FeedEntity{noBullet},
			end: 14*time.Hour + 29*time.Minute, route: "ct_local"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sa []byte
			if len(tt.alerts) > 0 {
				sa = rtFeed(t, tt.alerts...)
			}
			ov, err := realtime.Parse(rtFeed(t, cancelled), sa)
			require.NoError(t, err)

			p, fx := newPlanner(t, "caltrain", planner.WithRealtime(ov))
			day := fx.At(2009, time.November, 17, 0, 0, 0)
			res := plan(t, p, &planner.Request{
				From: planner.LabelPlace(millbrae),
				To:   planner.LabelPlace(mountainView),
				Time: day.Add(12 * time.Hour),
			})
			require.Len(t, res.Itineraries, 1)
			assertTime(t, day.Add(tt.end), res.Itineraries[0].EndTime)
			assert.Equal(t, []string{tt.route}, res.Itineraries[0].Routes)
		})
	}
}

func TestPortlandZoneFare(t *testing.T) {
	p, fx := newPlanner(t, "portland")
	res := plan(t, p, &planner.Request{
		From: planner.LabelPlace(airport),
		To:   planner.LabelPlace(pioneer),
		Time: fx.At(2009, time.November, 17, 8, 0, 0),
	})
	require.Len(t, res.Itineraries, 1)
	it := res.Itineraries[0]
	assert.Equal(t, []string{"90"}, it.Routes)
	assertTime(t, fx.At(2009, time.November, 17, 8, 30, 0), it.EndTime)
	assert.Equal(t, int64(200), regular(t, it))
}

func TestPortlandBannedRoutes(t *testing.T) {
	p, fx := newPlanner(t, "portland")
	at := fx.At(2009, time.November, 17, 8, 0, 0)

	tests := []struct {
		name   string
		banned []core.RouteSpec
		route  string
		end    time.Time
	}{
		{name: "none", route: "100", end: fx.At(2009, time.November, 17, 8, 25, 0)},
		{name: "blue by name", banned: []core.RouteSpec{{Agency: "TriMet", Name: "MAX Blue Line"}},
			route: "90", end: fx.At(2009, time.November, 17, 8, 30, 0)},
		{name: "blue and red by id", banned: []core.RouteSpec{{Name: "100"}, {Agency: "TriMet", Name: "90"}},
			route: "200", end: fx.At(2009, time.November, 17, 8, 32, 0)},
		{name: "all", banned: []core.RouteSpec{{Name: "100"}, {Name: "90"}, {Name: "200"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := plan(t, p, &planner.Request{
				From:         planner.LabelPlace(gateway),
				To:           planner.LabelPlace(pioneer),
				Time:         at,
				BannedRoutes: tt.banned,
			})
			if tt.route == "" {
				assert.True(t, res.NoPath())
				return
			}
			require.Len(t, res.Itineraries, 1)
			assert.Equal(t, []string{tt.route}, res.Itineraries[0].Routes)
			assertTime(t, tt.end, res.Itineraries[0].EndTime)
		})
	}
}

func TestPortlandAlternatives(t *testing.T) {
	p, fx := newPlanner(t, "portland")
	res := plan(t, p, &planner.Request{
		From:           planner.LabelPlace(gateway),
		To:             planner.LabelPlace(pioneer),
		Time:           fx.At(2009, time.November, 17, 8, 0, 0),
		NumItineraries: 5,
	})
	require.Len(t, res.Itineraries, 3)
	var routes []string
	for _, it := range res.Itineraries {
		require.Len(t, it.Routes, 1)
		routes = append(routes, it.Routes[0])
	}
	assert.Equal(t, []string{"100", "90", "200"}, routes)
}

func TestFakeInterline(t *testing.T) {
	p, fx := newPlanner(t, "fake")
	res := plan(t, p, &planner.Request{
		From: planner.LabelPlace("agency_A"),
		To:   planner.LabelPlace("agency_D"),
		Time: fx.At(2009, time.August, 18, 0, 15, 0),
	})
	require.Len(t, res.Itineraries, 1)
	it := res.Itineraries[0]
	assertTime(t, fx.At(2009, time.August, 18, 0, 55, 0), it.EndTime)
	assert.Len(t, it.Path.Boardings(), 1, "stays on board through the block")
	assert.Zero(t, it.Transfers)
	assert.Nil(t, it.Fare, "the feed has no fares")
}

func TestFakeTransfer(t *testing.T) {
	p, fx := newPlanner(t, "fake")
	res := plan(t, p, &planner.Request{
		From: planner.LabelPlace("agency_A"),
		To:   planner.LabelPlace("agency_E"),
		Time: fx.At(2009, time.August, 18, 0, 15, 0),
	})
	require.Len(t, res.Itineraries, 1)
	it := res.Itineraries[0]
	assertTime(t, fx.At(2009, time.August, 18, 1, 0, 0), it.EndTime)
	assert.Equal(t, []string{"1", "5"}, it.Routes)
	assert.Equal(t, 1, it.Transfers)
}

func TestFakeOptimizedStart(t *testing.T) {
	p, fx := newPlanner(t, "fake")
	res := plan(t, p, &planner.Request{
		From: planner.LabelPlace("agency_A"),
		To:   planner.LabelPlace("agency_C"),
		Time: fx.At(2009, time.August, 18, 0, 15, 0),
	})
	require.Len(t, res.Itineraries, 1)
	it := res.Itineraries[0]
	assertTime(t, fx.At(2009, time.August, 18, 0, 20, 0), it.StartTime)
	assertTime(t, fx.At(2009, time.August, 18, 0, 40, 0), it.EndTime)
	assert.Equal(t, 20*time.Minute, it.Duration)
}

// withStreets adds a two-way street next to stop A and another next to stop
// D of the fake feed, then links the stops
func withStreets(t *testing.T, fx *testutil.Fixture) *linker.Linker {
	t.Helper()
	g := fx.Graph
	twoWay := func(name string, from, to orb.Point) {
		x := g.AddVertex(core.NewIntersection(name+"_1", from[0], from[1]))
		y := g.AddVertex(core.NewIntersection(name+"_2", to[0], to[1]))
		fwd := core.NewStreet(name, geo.Distance(from, to))
		fwd.Geometry = orb.LineString{from, to}
		back := core.NewStreet(name, geo.Distance(from, to))
		back.Geometry = orb.LineString{to, from}
		g.AddEdge(x, y, fwd)
		g.AddEdge(y, x, back)
	}
	twoWay("Elm St", orb.Point{-75.0005, 39.999}, orb.Point{-75.0005, 40.001})
	twoWay("Oak St", orb.Point{-75.0005, 40.029}, orb.Point{-75.0005, 40.031})

	l := linker.New(g, linker.WithLogger(internal.Discard()))
	n, err := l.LinkStops()
	require.NoError(t, err)
	require.Equal(t, 2, n, "only A and D have a street nearby")
	return l
}

func TestCoordinateEndpoints(t *testing.T) {
	fx := testutil.Build(t, "fake")
	l := withStreets(t, fx)
	p := planner.FromBuild(fx.Graph, fx.Result, planner.WithLinker(l), planner.WithLogger(internal.Discard()))
	edges := fx.Graph.NumEdges()

	req := &planner.Request{
		From: planner.PointPlace(39.9995, -75.0004),
		To:   planner.PointPlace(40.0305, -75.0004),
		Time: fx.At(2009, time.August, 18, 0, 15, 0),
	}
	res := plan(t, p, req)
	require.Len(t, res.Itineraries, 1)
	it := res.Itineraries[0]
	assert.Equal(t, []string{"1"}, it.Routes)
	assert.InDelta(t, 111, it.WalkDistance, 5)
	assert.True(t, it.EndTime.After(fx.At(2009, time.August, 18, 0, 55, 0)))
	assert.True(t, it.EndTime.Before(fx.At(2009, time.August, 18, 0, 56, 0)))
	assert.Equal(t, core.NoVertex, res.From.ID, "origin stays out of the graph")
	assert.Equal(t, edges, fx.Graph.NumEdges())

	t.Run("max walk distance", func(t *testing.T) {
		bounded := *req
		bounded.MaxWalkDistance = 50
		assert.True(t, plan(t, p, &bounded).NoPath())
	})
	t.Run("no street nearby", func(t *testing.T) {
		far := *req
		far.To = planner.PointPlace(40.5, -75.5)
		_, err := p.Plan(context.Background(), &far)
		assert.ErrorIs(t, err, linker.ErrNoStreetNearby)
	})
}

func TestGeoJSON(t *testing.T) {
	p, fx := newPlanner(t, "caltrain")
	res := plan(t, p, &planner.Request{
		From: planner.LabelPlace(millbrae),
		To:   planner.LabelPlace(mountainView),
		Time: fx.At(2009, time.November, 17, 12, 0, 0),
	})
	require.Len(t, res.Itineraries, 1)

	fc := res.Itineraries[0].GeoJSON()
	require.Len(t, fc.Features, 1, "stop connectors have no extent")
	f := fc.Features[0]
	assert.Equal(t, "RAIL", f.Properties["mode"])
	assert.Equal(t, "ct_local", f.Properties["route_id"])
	assert.Equal(t, "12201", f.Properties["trip_id"])
	assert.Equal(t, "2009-11-17T12:39:00-08:00", f.Properties["start"])
	assert.Equal(t, "2009-11-17T13:29:00-08:00", f.Properties["end"])

	ls, ok := f.Geometry.(orb.LineString)
	require.True(t, ok)
	assert.Greater(t, len(ls), 2)

	b, err := fc.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(b), `"FeatureCollection"`)

	assert.Empty(t, planner.PathGeometry(nil, nil).Features)
}

func TestRequestErrors(t *testing.T) {
	p, fx := newPlanner(t, "caltrain")
	at := fx.At(2009, time.November, 17, 12, 0, 0)
	lat := 37.6
	valid := func() planner.Request {
		return planner.Request{From: planner.LabelPlace(millbrae), To: planner.LabelPlace(mountainView), Time: at}
	}

	tests := []struct {
		name   string
		mutate func(r *planner.Request)
		want   error
	}{
		{name: "missing origin", mutate: func(r *planner.Request) { r.From = planner.Place{} }, want: planner.ErrInvalidRequest},
		{name: "latitude without longitude", mutate: func(r *planner.Request) { r.To = planner.Place{Lat: &lat} }, want: planner.ErrInvalidRequest},
		{name: "latitude out of range", mutate: func(r *planner.Request) { r.To = planner.PointPlace(95, 0) }, want: planner.ErrInvalidRequest},
		{name: "missing time", mutate: func(r *planner.Request) { r.Time = time.Time{} }, want: core.ErrInvalidTime},
		{name: "worst time before departure", mutate: func(r *planner.Request) { r.WorstTime = at.Add(-time.Hour) }, want: core.ErrInvalidTime},
		{name: "too many itineraries", mutate: func(r *planner.Request) { r.NumItineraries = 11 }, want: planner.ErrInvalidRequest},
		{name: "unknown mode", mutate: func(r *planner.Request) { r.Modes = []string{"ROCKET"} }, want: planner.ErrInvalidRequest},
		{name: "negative walk speed", mutate: func(r *planner.Request) { r.WalkSpeed = -1 }, want: planner.ErrInvalidRequest},
		{name: "coordinates without streets", mutate: func(r *planner.Request) { r.To = planner.PointPlace(37.39, -122.07) }, want: planner.ErrInvalidRequest},
		{name: "unknown label", mutate: func(r *planner.Request) { r.To = planner.LabelPlace("Caltrain_Nowhere") }, want: core.ErrVertexNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(&req)
			res, err := p.Plan(context.Background(), &req)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestModesRestrictSearch(t *testing.T) {
	p, fx := newPlanner(t, "caltrain")
	req := &planner.Request{
		From:  planner.LabelPlace(millbrae),
		To:    planner.LabelPlace(mountainView),
		Time:  fx.At(2009, time.November, 17, 12, 0, 0),
		Modes: []string{"WALK", "BUS"},
	}
	assert.True(t, plan(t, p, req).NoPath())

	req.Modes = []string{"walk", "TRANSIT"}
	assert.False(t, plan(t, p, req).NoPath())
}

func TestContextCancelled(t *testing.T) {
	p, fx := newPlanner(t, "caltrain")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Plan(ctx, &planner.Request{
		From: planner.LabelPlace(millbrae),
		To:   planner.LabelPlace(mountainView),
		Time: fx.At(2009, time.November, 17, 12, 0, 0),
	})
	assert.ErrorIs(t, err, algorithm.ErrSearchAborted)
	assert.ErrorIs(t, err, context.Canceled)
}
