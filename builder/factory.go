package builder

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/paulmach/orb/geo"

	"github.com/theoremus-urban-solutions/transit-router/calendar"
	"github.com/theoremus-urban-solutions/transit-router/core"
	"github.com/theoremus-urban-solutions/transit-router/fare"
	"github.com/theoremus-urban-solutions/transit-router/gtfs"
	"github.com/theoremus-urban-solutions/transit-router/internal"
)

// ErrUnknownReference is returned for trips naming a route or stop the feed
// does not define
var ErrUnknownReference = errors.New("unknown reference")

// Stats summarizes a build
type Stats struct {
	Stops             int
	Patterns          int
	SingletonPatterns int
	Trips             int
	FrequencyRuns     int
	Hops              int
	InterlineDwells   int
	Transfers         int
	SkippedTrips      int
	SkippedRoutes     int
}

// Result is what a build produces besides the graph content
type Result struct {
	Stats    Stats
	Calendar *calendar.Service
	Fares    *fare.Service // nil when fares are disabled or the feed has none
	Location *time.Location
	AgencyID string
}

// Option configures a PatternHopFactory
type Option func(*PatternHopFactory)

// WithLogger replaces the factory logger
func WithLogger(l log15.Logger) Option {
	return func(f *PatternHopFactory) { f.log = l }
}

// WithAgencyID sets the prefix of stop labels instead of the feed's first
// agency id
func WithAgencyID(id string) Option {
	return func(f *PatternHopFactory) { f.agencyID = id }
}

// WithFares toggles building the fare service
func WithFares(enabled bool) Option {
	return func(f *PatternHopFactory) { f.fares = enabled }
}

// WithWalkSpeed sets the speed used to time transfers without a minimum
// transfer time
func WithWalkSpeed(mps float64) Option {
	return func(f *PatternHopFactory) { f.walkSpeed = mps }
}

type stopVertices struct {
	stop   *core.Vertex
	arrive *core.Vertex
	depart *core.Vertex
}

type builtPattern struct {
	pattern *core.TripPattern
	departs []*core.Vertex // D(i), nil at the last stop
	arrives []*core.Vertex // A(i), nil at the first stop
}

// placement records one run of a trip in a pattern
type placement struct {
	trip           *core.Trip
	bp             *builtPattern
	firstStop      string
	lastStop       string
	firstDeparture int
	lastArrival    int
	frequency      bool
}

// PatternHopFactory builds patterns, stops, transfers and interline dwells
// from a GTFS feed
type PatternHopFactory struct {
	feed      *gtfs.Feed
	agencyID  string
	fares     bool
	walkSpeed float64
	log       log15.Logger

	g          *core.Graph
	shapes     *shapeCache
	routes     map[string]*core.Route
	stops      map[string]*stopVertices
	patterns   map[string]*builtPattern
	placements []placement
	interlines map[[2]*builtPattern]*core.PatternInterlineDwell
	stats      Stats
}

// NewPatternHopFactory returns a factory for feed
func NewPatternHopFactory(feed *gtfs.Feed, opts ...Option) *PatternHopFactory {
	f := &PatternHopFactory{
		feed:      feed,
		agencyID:  feed.DefaultAgencyID(),
		fares:     true,
		walkSpeed: 1.33,
		log:       internal.Logger("builder"),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// StopLabel is the label of the transit stop vertex of a GTFS stop
func (f *PatternHopFactory) StopLabel(stopID string) string {
	return f.agencyID + "_" + stopID
}

// Run adds the feed to g. Trips that cannot be built are skipped with a
// warning; only feed-level problems fail the build.
func (f *PatternHopFactory) Run(g *core.Graph) (*Result, error) {
	loc, err := f.feed.Timezone()
	if err != nil {
		return nil, err
	}
	g.Lock()
	defer g.Unlock()

	f.g = g
	f.shapes = newShapeCache(f.feed)
	f.routes = make(map[string]*core.Route)
	f.stops = make(map[string]*stopVertices)
	f.patterns = make(map[string]*builtPattern)
	f.placements = nil
	f.interlines = make(map[[2]*builtPattern]*core.PatternInterlineDwell)
	f.stats = Stats{}

	f.loadRoutes()
	f.loadStops()
	for _, id := range f.feed.TripIDs() {
		if err := f.addTrip(id); err != nil {
			f.stats.SkippedTrips++
			f.log.Warn("Skipping trip", "trip", id, "err", err)
		}
	}
	f.interline()
	f.addTransfers()

	res := &Result{
		Calendar: calendar.NewFromFeed(f.feed),
		Location: loc,
		AgencyID: f.agencyID,
	}
	if f.fares {
		res.Fares = f.fareService()
	}
	res.Stats = f.stats
	f.log.Info("Graph built", "agency", f.agencyID, "stops", f.stats.Stops, "patterns", f.stats.Patterns,
		"trips", f.stats.Trips, "hops", f.stats.Hops, "interlines", f.stats.InterlineDwells,
		"transfers", f.stats.Transfers, "skipped", f.stats.SkippedTrips)
	return res, nil
}

func (f *PatternHopFactory) loadRoutes() {
	ids := make([]string, 0, len(f.feed.Routes))
	for id := range f.feed.Routes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		r := f.feed.Routes[id]
		mode, err := core.ModeFromRouteType(r.Type)
		if err != nil {
			f.stats.SkippedRoutes++
			f.log.Warn("Skipping route", "route", id, "err", err)
			continue
		}
		agency := r.AgencyID
		if agency == "" {
			agency = f.feed.DefaultAgencyID()
		}
		f.routes[id] = &core.Route{
			ID:        r.ID,
			AgencyID:  agency,
			ShortName: r.ShortName,
			LongName:  r.LongName,
			Type:      r.Type,
			Mode:      mode,
		}
	}
}

func (f *PatternHopFactory) loadStops() {
	for _, id := range f.feed.StopIDs() {
		s := f.feed.Stops[id]
		if s.LocationType == gtfs.LocationStation {
			continue
		}
		label := f.StopLabel(id)
		coord, _ := f.feed.StopPoint(id)
		stop := core.NewVertex(core.VertexTransitStop, label, s.Name, coord)
		stop.StopID = id
		stop.Wheelchair = s.WheelchairBoarding == 1
		sv := &stopVertices{
			stop:   f.g.AddVertex(stop),
			arrive: f.g.AddVertex(core.NewVertex(core.VertexStopArrive, label+"_arrive", s.Name, coord)),
			depart: f.g.AddVertex(core.NewVertex(core.VertexStopDepart, label+"_depart", s.Name, coord)),
		}
		sv.arrive.StopID, sv.depart.StopID = id, id
		f.g.AddEdge(sv.arrive, sv.stop, &core.Free{})
		f.g.AddEdge(sv.stop, sv.depart, &core.Free{})
		f.stops[id] = sv
		f.stats.Stops++
	}
}

func (f *PatternHopFactory) addTrip(id string) error {
	gt := f.feed.Trips[id]
	route := f.routes[gt.RouteID]
	if route == nil {
		return fmt.Errorf("%w: route %q", ErrUnknownReference, gt.RouteID)
	}
	sts := f.feed.StopTimes[id]
	if len(sts) < 2 {
		return fmt.Errorf("trip has %d stop times", len(sts))
	}
	stops := make([]core.PatternStop, len(sts))
	for i, st := range sts {
		s, ok := f.feed.Stops[st.StopID]
		if !ok || f.stops[st.StopID] == nil {
			return fmt.Errorf("%w: stop %q", ErrUnknownReference, st.StopID)
		}
		var flags uint8
		if st.PickupType != gtfs.PickupNone {
			flags |= core.StopPickup
		}
		if st.DropOffType != gtfs.PickupNone {
			flags |= core.StopDropOff
		}
		if s.WheelchairBoarding == 1 {
			flags |= core.StopWheelchair
		}
		stops[i] = core.PatternStop{ID: st.StopID, Zone: s.ZoneID, Flags: flags}
	}
	arr, dep, err := f.interpolate(gt, sts)
	if err != nil {
		return err
	}
	trip := &core.Trip{
		ID:         gt.ID,
		ServiceID:  gt.ServiceID,
		Headsign:   gt.Headsign,
		BlockID:    gt.BlockID,
		ShapeID:    gt.ShapeID,
		Route:      route,
		Wheelchair: gt.WheelchairAccessible == 1,
	}
	key := patternKey(route.ID, gt.ServiceID, stops)

	freqs := f.feed.Frequencies[id]
	if len(freqs) == 0 {
		if err := f.place(key, trip, stops, arr, dep, false); err != nil {
			return err
		}
		f.stats.Trips++
		return nil
	}
	for _, fr := range freqs {
		for start := fr.StartTime; start < fr.EndTime; start += fr.HeadwaySecs {
			shift := start - dep[0]
			a2, d2 := shifted(arr, shift), shifted(dep, shift)
			if err := f.place(key, trip, stops, a2, d2, true); err != nil {
				return err
			}
			f.stats.FrequencyRuns++
		}
	}
	f.stats.Trips++
	return nil
}

func shifted(times []int, by int) []int {
	out := make([]int, len(times))
	for i, t := range times {
		out[i] = t + by
	}
	return out
}

func patternKey(routeID, serviceID string, stops []core.PatternStop) string {
	key := routeID + "|" + serviceID
	for _, s := range stops {
		key += fmt.Sprintf("|%s:%d", s.ID, s.Flags)
	}
	return key
}

// place adds one run of trip to its pattern, falling back to a pattern of
// its own when the run would overtake or duplicate another
func (f *PatternHopFactory) place(key string, trip *core.Trip, stops []core.PatternStop, arr, dep []int, frequency bool) error {
	bp := f.patterns[key]
	if bp == nil {
		bp = f.newPattern(key, trip.ID, trip, stops)
	}
	err := bp.pattern.AddTrip(trip, arr, dep)
	if errors.Is(err, core.ErrTripOvertaking) || errors.Is(err, core.ErrDuplicateTrip) {
		f.log.Debug("Trip gets its own pattern", "trip", trip.ID, "err", err)
		token := trip.ID + "@" + gtfs.FormatTime(dep[0])
		bp = f.newPattern(key+"|"+token, token, trip, stops)
		f.stats.SingletonPatterns++
		err = bp.pattern.AddTrip(trip, arr, dep)
	}
	if err != nil {
		return err
	}
	n := len(stops)
	f.placements = append(f.placements, placement{
		trip:           trip,
		bp:             bp,
		firstStop:      stops[0].ID,
		lastStop:       stops[n-1].ID,
		firstDeparture: dep[0],
		lastArrival:    arr[n-1],
		frequency:      frequency,
	})
	return nil
}

func (f *PatternHopFactory) newPattern(key, token string, exemplar *core.Trip, stops []core.PatternStop) *builtPattern {
	p := core.NewTripPattern(exemplar, stops)
	f.g.AddPattern(p)
	n := len(stops)
	bp := &builtPattern{pattern: p, departs: make([]*core.Vertex, n), arrives: make([]*core.Vertex, n)}
	for i, ps := range stops {
		sv := f.stops[ps.ID]
		base := fmt.Sprintf("%s_%s_%d", sv.stop.Label, token, i)
		if i < n-1 {
			v := core.NewVertex(core.VertexJourney, base+"_D", sv.stop.Name, sv.stop.Coord)
			v.StopID = ps.ID
			bp.departs[i] = f.g.AddVertex(v)
		}
		if i > 0 {
			v := core.NewVertex(core.VertexJourney, base+"_A", sv.stop.Name, sv.stop.Coord)
			v.StopID = ps.ID
			bp.arrives[i] = f.g.AddVertex(v)
		}
	}
	for i := 0; i < n-1; i++ {
		from, to := f.stops[stops[i].ID], f.stops[stops[i+1].ID]
		if p.CanBoard(i) {
			f.g.AddEdge(from.depart, bp.departs[i], &core.PatternBoard{Pattern: p, Hop: i})
		}
		shape := f.shapes.hopGeometry(exemplar.ShapeID, stops[i].ID, stops[i+1].ID)
		f.g.AddEdge(bp.departs[i], bp.arrives[i+1], &core.PatternHop{Pattern: p, Hop: i, Geometry: shape, Length: geo.Length(shape)})
		if p.CanAlight(i + 1) {
			f.g.AddEdge(bp.arrives[i+1], to.arrive, &core.PatternAlight{Pattern: p, Hop: i})
		}
		if i > 0 {
			f.g.AddEdge(bp.arrives[i], bp.departs[i], &core.PatternDwell{Pattern: p, Stop: i})
		}
	}
	f.patterns[key] = bp
	f.stats.Patterns++
	f.stats.Hops += n - 1
	return bp
}

// interpolate fills missing stop times, spreading the gap between two timed
// stops in proportion to distance travelled
func (f *PatternHopFactory) interpolate(gt *gtfs.Trip, sts []*gtfs.StopTime) (arr, dep []int, err error) {
	n := len(sts)
	arr, dep = make([]int, n), make([]int, n)
	useShapeDist := true
	ids := make([]string, n)
	for i, st := range sts {
		a, d := st.Arrival, st.Departure
		if a == gtfs.MissingTime {
			a = d
		}
		if d == gtfs.MissingTime {
			d = a
		}
		arr[i], dep[i] = a, d
		ids[i] = st.StopID
		if st.ShapeDistTraveled < 0 {
			useShapeDist = false
		}
	}
	if arr[0] == gtfs.MissingTime || arr[n-1] == gtfs.MissingTime {
		return nil, nil, fmt.Errorf("first and last stop of trip %s must be timed", gt.ID)
	}
	var dist []float64
	for i := 1; i < n-1; i++ {
		if arr[i] != gtfs.MissingTime {
			continue
		}
		if dist == nil {
			dist = make([]float64, n)
			if useShapeDist {
				for k, st := range sts {
					dist[k] = st.ShapeDistTraveled
				}
			} else {
				dist = f.shapes.stopDistances(gt.ShapeID, ids)
			}
		}
		j := i
		for arr[j] == gtfs.MissingTime {
			j++
		}
		t0, t1 := dep[i-1], arr[j]
		d0, span := dist[i-1], dist[j]-dist[i-1]
		for k := i; k < j; k++ {
			frac := float64(k-i+1) / float64(j-i+1)
			if span > 0 {
				frac = (dist[k] - d0) / span
			}
			t := t0 + int(math.Round(frac*float64(t1-t0)))
			arr[k], dep[k] = t, t
		}
		i = j
	}
	return arr, dep, nil
}

// interline links consecutive trips of a block whose vehicle stays at the
// shared terminal. It runs after every trip is placed, when trip indexes
// within patterns are final.
func (f *PatternHopFactory) interline() {
	blocks := make(map[string][]placement)
	for _, pl := range f.placements {
		if pl.trip.BlockID == "" || pl.frequency {
			continue
		}
		k := pl.trip.ServiceID + "|" + pl.trip.BlockID
		blocks[k] = append(blocks[k], pl)
	}
	keys := make([]string, 0, len(blocks))
	for k := range blocks {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		runs := blocks[k]
		sort.SliceStable(runs, func(i, j int) bool { return runs[i].firstDeparture < runs[j].firstDeparture })
		for i := 1; i < len(runs); i++ {
			prev, next := runs[i-1], runs[i]
			if prev.lastStop != next.firstStop {
				continue
			}
			dwell := next.firstDeparture - prev.lastArrival
			if dwell < 0 {
				f.log.Warn("Block runs overlap", "block", prev.trip.BlockID, "from", prev.trip.ID, "to", next.trip.ID)
				continue
			}
			prevIdx := prev.bp.pattern.TripIndex(prev.trip, prev.firstDeparture)
			nextIdx := next.bp.pattern.TripIndex(next.trip, next.firstDeparture)
			if prevIdx < 0 || nextIdx < 0 {
				continue
			}
			pair := [2]*builtPattern{prev.bp, next.bp}
			il := f.interlines[pair]
			if il == nil {
				il = core.NewPatternInterlineDwell(prev.bp.pattern, next.bp.pattern)
				last := prev.bp.pattern.NumStops() - 1
				f.g.AddEdge(prev.bp.arrives[last], next.bp.departs[0], il)
				f.interlines[pair] = il
				f.stats.InterlineDwells++
			}
			il.AddTrip(prev.trip, prevIdx, next.trip, nextIdx, dwell)
		}
	}
}

func (f *PatternHopFactory) addTransfers() {
	for _, tr := range f.feed.Transfers {
		if tr.Type >= 3 || tr.FromStopID == tr.ToStopID {
			continue
		}
		from, to := f.stops[tr.FromStopID], f.stops[tr.ToStopID]
		if from == nil || to == nil {
			f.log.Warn("Transfer names an unknown stop", "from", tr.FromStopID, "to", tr.ToStopID)
			continue
		}
		dist := geo.Distance(from.stop.Coord, to.stop.Coord)
		secs := int(math.Ceil(dist / f.walkSpeed))
		if tr.Type == 2 && tr.MinTransferTime > 0 {
			secs = tr.MinTransferTime
		}
		f.g.AddEdge(from.stop, to.stop, &core.Transfer{
			Seconds:    secs,
			Distance:   dist,
			Wheelchair: from.stop.Wheelchair && to.stop.Wheelchair,
		})
		f.stats.Transfers++
	}
}
