package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"github.com/theoremus-urban-solutions/transit-router/core"
)

func feed(t *testing.T, entities ...*gtfsrtpb.FeedEntity) []byte {
	t.Helper()
	fm := &gtfsrtpb.FeedMessage{
		Header: &gtfsrtpb.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Timestamp:           proto.Uint64(1_250_000_000),
		},
		Entity: entities,
	}
	b, err := proto.Marshal(fm)
	require.NoError(t, err)
	return b
}

func tripUpdate(id, tripID string, rel gtfsrtpb.TripDescriptor_ScheduleRelationship) *gtfsrtpb.FeedEntity {
	return &gtfsrtpb.FeedEntity{
		Id: proto.String(id),
		TripUpdate: &gtfsrtpb.TripUpdate{
			Trip: &gtfsrtpb.TripDescriptor{TripId: proto.String(tripID), ScheduleRelationship: rel.Enum()},
		},
	}
}

func alert(id string, effect gtfsrtpb.Alert_Effect, periods [][2]uint64, informed ...*gtfsrtpb.EntitySelector) *gtfsrtpb.FeedEntity {
	a := &gtfsrtpb.Alert{
		Effect:         effect.Enum(),
		InformedEntity: informed,
		HeaderText: &gtfsrtpb.TranslatedString{Translation: []*gtfsrtpb.TranslatedString_Translation{
			{Text: proto.String("Fermeture"), Language: proto.String("fr")},
			{Text: proto.String("Closure")},
		}},
	}
	for _, p := range periods {
		tr := &gtfsrtpb.TimeRange{}
		if p[0] != 0 {
			tr.Start = proto.Uint64(p[0])
		}
		if p[1] != 0 {
			tr.End = proto.Uint64(p[1])
		}
		a.ActivePeriod = append(a.ActivePeriod, tr)
	}
	return &gtfsrtpb.FeedEntity{Id: proto.String(id), Alert: a}
}

func route(agency, id string) *gtfsrtpb.EntitySelector {
	return &gtfsrtpb.EntitySelector{AgencyId: proto.String(agency), RouteId: proto.String(id)}
}

func fixtureOverlay(t *testing.T) *Overlay {
	t.Helper()
	tu := feed(t,
		tripUpdate("1", "12201", gtfsrtpb.TripDescriptor_CANCELED),
		tripUpdate("2", "11201", gtfsrtpb.TripDescriptor_SCHEDULED),
	)
	sa := feed(t,
		alert("bridge", gtfsrtpb.Alert_NO_SERVICE, [][2]uint64{{1000, 2000}}, route("Caltrain", "ct_bullet")),
		alert("detour", gtfsrtpb.Alert_DETOUR, nil, route("Caltrain", "ct_local")),
		alert("trip", gtfsrtpb.Alert_NO_SERVICE, nil, &gtfsrtpb.EntitySelector{
			Trip: &gtfsrtpb.TripDescriptor{TripId: proto.String("13201")},
		}),
	)
	ov, err := Parse(tu, sa)
	require.NoError(t, err)
	return ov
}

func TestParse(t *testing.T) {
	ov := fixtureOverlay(t)

	assert.Equal(t, []string{"12201"}, ov.CancelledTrips())
	require.Len(t, ov.Alerts(), 3)
	a := ov.Alerts()[0]
	assert.Equal(t, "bridge", a.ID)
	assert.Equal(t, "Closure", a.Header)
	assert.True(t, a.NoService)
	assert.Equal(t, []core.RouteSpec{{Agency: "Caltrain", Name: "ct_bullet"}}, a.Routes)
	assert.Equal(t, []string{"13201"}, ov.Alerts()[2].TripIDs)
	assert.Equal(t, int64(1_250_000_000), ov.Timestamp().Unix())
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse([]byte{0xff, 0xff, 0xff}, nil)
	assert.Error(t, err)

	ov, err := Parse(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, ov.CancelledTrips())
}

func TestAlertActive(t *testing.T) {
	tests := []struct {
		name    string
		periods []Period
		at      int64
		want    bool
	}{
		{"no periods", nil, 5, true},
		{"inside", []Period{{Start: 10, End: 20}}, 15, true},
		{"end is exclusive", []Period{{Start: 10, End: 20}}, 20, false},
		{"before", []Period{{Start: 10, End: 20}}, 9, false},
		{"open end", []Period{{Start: 10}}, 1_000_000, true},
		{"second window", []Period{{Start: 10, End: 20}, {Start: 30, End: 40}}, 35, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Alert{Periods: tt.periods}
			assert.Equal(t, tt.want, a.Active(time.Unix(tt.at, 0)))
		})
	}
}

func TestApply(t *testing.T) {
	ov := fixtureOverlay(t)

	during := core.DefaultTraverseOptions()
	ov.Apply(during, time.Unix(1500, 0))
	assert.True(t, during.CancelledTrips["12201"])
	assert.True(t, during.CancelledTrips["13201"])
	assert.False(t, during.CancelledTrips["11201"])
	assert.True(t, during.BannedRoutes.Matches(&core.Route{ID: "ct_bullet", AgencyID: "Caltrain"}))
	assert.False(t, during.BannedRoutes.Matches(&core.Route{ID: "ct_local", AgencyID: "Caltrain"}), "detours do not ban")

	after := core.DefaultTraverseOptions()
	ov.Apply(after, time.Unix(2500, 0))
	assert.False(t, after.BannedRoutes.Matches(&core.Route{ID: "ct_bullet", AgencyID: "Caltrain"}))
	assert.True(t, after.CancelledTrips["12201"])

	var none *Overlay
	o := core.DefaultTraverseOptions()
	none.Apply(o, time.Now())
	assert.Empty(t, o.CancelledTrips)
}

func TestClientFetch(t *testing.T) {
	payload := feed(t, tripUpdate("1", "T1", gtfsrtpb.TripDescriptor_CANCELED))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tu.pb" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	file := filepath.Join(t.TempDir(), "tu.pb")
	require.NoError(t, os.WriteFile(file, payload, 0o600))

	c := NewClient(5 * time.Second)
	ctx := context.Background()

	for _, src := range []string{srv.URL + "/tu.pb", file} {
		ov, err := c.Load(ctx, src, "")
		require.NoError(t, err, src)
		assert.Equal(t, []string{"T1"}, ov.CancelledTrips())
	}

	b, err := c.Fetch(ctx, "")
	assert.NoError(t, err)
	assert.Nil(t, b)

	_, err = c.Fetch(ctx, srv.URL+"/missing")
	assert.ErrorContains(t, err, "HTTP 404")
}
