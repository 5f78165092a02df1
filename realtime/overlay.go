package realtime

import (
	"fmt"
	"sort"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"github.com/theoremus-urban-solutions/transit-router/core"
	"github.com/theoremus-urban-solutions/transit-router/internal"
)

var log = internal.Logger("realtime")

// Period is an alert's active window in Unix seconds. A zero bound is open.
type Period struct {
	Start int64
	End   int64
}

// Contains reports whether the instant falls inside the window
func (p Period) Contains(t time.Time) bool {
	s := t.Unix()
	return (p.Start == 0 || s >= p.Start) && (p.End == 0 || s < p.End)
}

// Alert is a GTFS-RT alert reduced to what routing needs
type Alert struct {
	ID        string
	Header    string
	Effect    string
	Periods   []Period
	Routes    []core.RouteSpec
	TripIDs   []string
	StopIDs   []string
	NoService bool
}

// Active reports whether the alert applies at t. Alerts without periods are
// always active.
func (a *Alert) Active(t time.Time) bool {
	if len(a.Periods) == 0 {
		return true
	}
	for _, p := range a.Periods {
		if p.Contains(t) {
			return true
		}
	}
	return false
}

// Overlay holds the realtime state relevant to routing
type Overlay struct {
	cancelled       map[string]struct{}
	alerts          []Alert
	headerTimestamp int64
}

// Parse decodes a trip updates feed and an alerts feed. Either may be nil.
func Parse(tripUpdates, alerts []byte) (*Overlay, error) {
	ov := &Overlay{cancelled: map[string]struct{}{}}
	if len(tripUpdates) > 0 {
		fm, err := decode(tripUpdates)
		if err != nil {
			return nil, fmt.Errorf("trip updates: %w", err)
		}
		ov.header(fm)
		for _, e := range fm.Entity {
			tu := e.GetTripUpdate()
			if tu == nil || tu.GetTrip().GetTripId() == "" {
				continue
			}
			if tu.GetTrip().GetScheduleRelationship() == gtfsrtpb.TripDescriptor_CANCELED {
				ov.cancelled[tu.GetTrip().GetTripId()] = struct{}{}
			}
		}
	}
	if len(alerts) > 0 {
		fm, err := decode(alerts)
		if err != nil {
			return nil, fmt.Errorf("service alerts: %w", err)
		}
		ov.header(fm)
		for _, e := range fm.Entity {
			if e.GetAlert() == nil {
				continue
			}
			ov.alerts = append(ov.alerts, toAlert(e.GetId(), e.GetAlert()))
		}
	}
	log.Debug("Realtime overlay parsed", "cancelled", len(ov.cancelled), "alerts", len(ov.alerts))
	return ov, nil
}

func decode(b []byte) (*gtfsrtpb.FeedMessage, error) {
	var fm gtfsrtpb.FeedMessage
	if err := proto.Unmarshal(b, &fm); err != nil {
		return nil, err
	}
	return &fm, nil
}

func (ov *Overlay) header(fm *gtfsrtpb.FeedMessage) {
	if ts := int64(fm.GetHeader().GetTimestamp()); ts > ov.headerTimestamp {
		ov.headerTimestamp = ts
	}
}

func toAlert(id string, a *gtfsrtpb.Alert) Alert {
	ra := Alert{
		ID:        id,
		Header:    translatedText(a.GetHeaderText()),
		Effect:    a.GetEffect().String(),
		NoService: a.GetEffect() == gtfsrtpb.Alert_NO_SERVICE,
	}
	for _, ap := range a.GetActivePeriod() {
		ra.Periods = append(ra.Periods, Period{Start: int64(ap.GetStart()), End: int64(ap.GetEnd())})
	}
	for _, ie := range a.GetInformedEntity() {
		if rid := ie.GetRouteId(); rid != "" {
			ra.Routes = append(ra.Routes, core.RouteSpec{Agency: ie.GetAgencyId(), Name: rid})
		}
		if tid := ie.GetTrip().GetTripId(); tid != "" {
			ra.TripIDs = append(ra.TripIDs, tid)
		}
		if sid := ie.GetStopId(); sid != "" {
			ra.StopIDs = append(ra.StopIDs, sid)
		}
	}
	return ra
}

// translatedText prefers the translation without a language tag
func translatedText(ts *gtfsrtpb.TranslatedString) string {
	var first string
	for _, tr := range ts.GetTranslation() {
		if tr.GetLanguage() == "" {
			return tr.GetText()
		}
		if first == "" {
			first = tr.GetText()
		}
	}
	return first
}

// Timestamp returns the newest feed header timestamp
func (ov *Overlay) Timestamp() time.Time { return time.Unix(ov.headerTimestamp, 0) }

// CancelledTrips returns the cancelled trip ids in lexical order
func (ov *Overlay) CancelledTrips() []string {
	ids := make([]string, 0, len(ov.cancelled))
	for id := range ov.cancelled {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Alerts returns every parsed alert
func (ov *Overlay) Alerts() []Alert { return ov.alerts }

// ActiveAlerts returns the alerts in effect at t
func (ov *Overlay) ActiveAlerts(t time.Time) []Alert {
	var out []Alert
	for _, a := range ov.alerts {
		if a.Active(t) {
			out = append(out, a)
		}
	}
	return out
}

// Apply marks cancelled trips on o and bans the routes and trips of the
// NO_SERVICE alerts active at t
func (ov *Overlay) Apply(o *core.TraverseOptions, t time.Time) {
	if ov == nil {
		return
	}
	for id := range ov.cancelled {
		o.CancelTrip(id)
	}
	for _, a := range ov.ActiveAlerts(t) {
		if !a.NoService {
			continue
		}
		for _, r := range a.Routes {
			o.BanRoute(r.Agency, r.Name)
		}
		for _, id := range a.TripIDs {
			o.CancelTrip(id)
		}
	}
}
