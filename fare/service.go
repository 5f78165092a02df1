package fare

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/inconshreveable/log15"

	"github.com/theoremus-urban-solutions/transit-router/core"
	"github.com/theoremus-urban-solutions/transit-router/internal"
	"github.com/theoremus-urban-solutions/transit-router/spt"
)

// Ride is one stretch on board a single route
type Ride struct {
	RouteID   string
	AgencyID  string
	StartZone string
	EndZone   string
	Zones     map[string]struct{}
	StartTime int64 // ms
	EndTime   int64 // ms
}

func (r Ride) String() string {
	return fmt.Sprintf("%s %s->%s", r.RouteID, r.StartZone, r.EndZone)
}

// Fare is the cheapest price of a path per rider type
type Fare struct {
	Details  map[Type]Money
	Unpriced []Ride
}

// Get returns the price for a rider type
func (f *Fare) Get(t Type) (Money, bool) {
	m, ok := f.Details[t]
	return m, ok
}

func (f *Fare) String() string {
	types := make([]string, 0, len(f.Details))
	for t := range f.Details {
		types = append(types, string(t))
	}
	sort.Strings(types)
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t + "=" + f.Details[Type(t)].String()
	}
	return "Fare(" + strings.Join(parts, " ") + ")"
}

// Service prices paths against a fixed set of fare attributes and rules
type Service struct {
	attributes map[string]*Attribute
	rules      []*RuleSet
	types      []Type
	warnings   *WarningAggregator
	log        log15.Logger
}

// Option configures a Service
type Option func(*Service)

// WithLogger replaces the service logger
func WithLogger(l log15.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithWarnings shares a warning aggregator with the caller
func WithWarnings(w *WarningAggregator) Option {
	return func(s *Service) { s.warnings = w }
}

// NewService indexes attributes by id. Rules naming an unknown fare are
// dropped with a warning.
func NewService(attrs []*Attribute, rules []*RuleSet, opts ...Option) *Service {
	s := &Service{
		attributes: make(map[string]*Attribute, len(attrs)),
		warnings:   NewWarningAggregator(),
		log:        internal.Logger("fare"),
	}
	for _, o := range opts {
		o(s)
	}
	seen := make(map[Type]bool)
	for _, a := range attrs {
		s.attributes[a.ID] = a
		for t := range a.Prices {
			if !seen[t] {
				seen[t] = true
				s.types = append(s.types, t)
			}
		}
	}
	sort.Slice(s.types, func(i, j int) bool { return s.types[i] < s.types[j] })
	for _, rs := range rules {
		if _, ok := s.attributes[rs.FareID]; !ok {
			s.warnings.Add(WarningRuleWithoutFare, rs.FareID)
			continue
		}
		s.rules = append(s.rules, rs)
	}
	sortRuleSets(s.rules)
	return s
}

// Warnings returns the aggregator the service reports fare-table gaps to
func (s *Service) Warnings() *WarningAggregator { return s.warnings }

// Types returns the rider types some attribute is priced for
func (s *Service) Types() []Type { return s.types }

// Cost prices a path that reads from origin to destination. It returns nil
// for paths without transit rides.
func (s *Service) Cost(path *spt.GraphPath) *Fare {
	rides := Rides(path)
	if len(rides) == 0 {
		return nil
	}
	f := &Fare{Details: make(map[Type]Money, len(s.types))}
	unpriced := make(map[int]bool)
	for _, t := range s.types {
		m, gaps, ok := s.cover(rides, t)
		if !ok {
			continue
		}
		f.Details[t] = m
		for _, i := range gaps {
			unpriced[i] = true
		}
	}
	if len(f.Details) == 0 {
		// no rider type at all: every ride is a gap
		for i := range rides {
			unpriced[i] = true
		}
	}
	for i, r := range rides {
		if !unpriced[i] {
			continue
		}
		f.Unpriced = append(f.Unpriced, r)
		s.warnings.Add(WarningNoFareRule, r.String())
		s.log.Warn("No fare rule matches ride", "route", r.RouteID, "from_zone", r.StartZone, "to_zone", r.EndZone)
	}
	return f
}

// cover runs the cheapest-cover DP for one rider type. best[i] is the
// cheapest price of rides[:i]; a fare may cover any run of consecutive rides
// its transfer limits allow. Rides no fare covers alone cost nothing and are
// returned as gaps.
func (s *Service) cover(rides []Ride, t Type) (Money, []int, bool) {
	n := len(rides)
	best := make([]int64, n+1)
	from := make([]int, n+1)
	var cur Money
	haveCur := false
	for i := 1; i <= n; i++ {
		best[i] = math.MaxInt64
	}
	for i := 0; i < n; i++ {
		if best[i] == math.MaxInt64 {
			continue
		}
		for j := i; j < n; j++ {
			m, ok := s.cheapest(rides[i:j+1], t)
			if !ok {
				continue
			}
			if !haveCur {
				cur, haveCur = m, true
			} else if m.Currency != cur.Currency {
				s.warnings.Add(WarningMixedCurrencies, rides[i].RouteID)
			}
			if c := best[i] + m.Amount; c < best[j+1] {
				best[j+1], from[j+1] = c, i
			}
		}
		if best[i+1] == math.MaxInt64 {
			best[i+1], from[i+1] = best[i], -1-i
		}
	}
	if !haveCur {
		return Money{}, nil, false
	}
	var gaps []int
	for k := n; k > 0; {
		if f := from[k]; f < 0 {
			gaps = append(gaps, -1-f)
			k = -1 - f
		} else {
			k = f
		}
	}
	return Money{Currency: cur.Currency, Amount: best[n]}, gaps, true
}

// cheapest returns the lowest price of a single fare covering all rides
func (s *Service) cheapest(rides []Ride, t Type) (Money, bool) {
	first, last := rides[0], rides[len(rides)-1]
	zones := make(map[string]struct{})
	routes := make([]string, 0, len(rides))
	for _, r := range rides {
		for z := range r.Zones {
			zones[z] = struct{}{}
		}
		routes = append(routes, r.RouteID)
	}
	var best Money
	found := false
	for _, rs := range s.rules {
		a := s.attributes[rs.FareID]
		if a.Transfers >= 0 && len(rides)-1 > a.Transfers {
			continue
		}
		if a.TransferDuration > 0 && len(rides) > 1 &&
			last.StartTime-first.StartTime > int64(a.TransferDuration)*1000 {
			continue
		}
		if a.AgencyID != "" && !sameAgency(rides, a.AgencyID) {
			continue
		}
		if !rs.Matches(first.StartZone, last.EndZone, zones, routes) {
			continue
		}
		price, ok := a.Prices[t]
		if !ok {
			s.warnings.Add(WarningNoPriceForType, a.ID+"/"+string(t))
			continue
		}
		if !found || price.Amount < best.Amount {
			best, found = price, true
		}
	}
	return best, found
}

func sameAgency(rides []Ride, agency string) bool {
	for _, r := range rides {
		if r.AgencyID != "" && r.AgencyID != agency {
			return false
		}
	}
	return true
}

// Rides cuts a forward-reading path into rides
func Rides(path *spt.GraphPath) []Ride {
	if path == nil {
		return nil
	}
	var rides []Ride
	var cur *Ride
	start := func(pat *core.TripPattern, stop int, at int64) *Ride {
		r := &Ride{
			RouteID:   pat.Route.ID,
			AgencyID:  pat.Route.AgencyID,
			StartZone: pat.Zone(stop),
			EndZone:   pat.Zone(stop),
			Zones:     make(map[string]struct{}),
			StartTime: at,
			EndTime:   at,
		}
		if r.StartZone != "" {
			r.Zones[r.StartZone] = struct{}{}
		}
		return r
	}
	for _, e := range path.Edges {
		at := e.To.State.Time
		switch p := e.Payload.Payload.(type) {
		case *core.PatternBoard:
			cur = start(p.Pattern, p.Hop, at)
		case *core.PatternHop:
			if cur == nil {
				continue
			}
			z := p.Pattern.Zone(p.Hop + 1)
			if z != "" {
				cur.Zones[z] = struct{}{}
			}
			cur.EndZone = z
			cur.EndTime = at
		case *core.PatternInterlineDwell:
			if cur == nil || p.To.Route.ID == cur.RouteID {
				continue
			}
			rides = append(rides, *cur)
			cur = start(p.To, 0, at)
		case *core.PatternAlight:
			if cur != nil {
				rides = append(rides, *cur)
				cur = nil
			}
		}
	}
	if cur != nil {
		rides = append(rides, *cur)
	}
	return rides
}
