package fare

import "sort"

// Attribute is a fare product: its prices per rider type and how many
// transfers, within how long, it covers
type Attribute struct {
	ID               string
	AgencyID         string
	Prices           map[Type]Money
	Transfers        int // -1 unlimited
	TransferDuration int // seconds, 0 unbounded
}

type od struct{ origin, destination string }

// RuleSet holds the conditions under which a fare applies. Empty condition
// groups match anything.
type RuleSet struct {
	FareID             string
	originDestinations map[od]struct{}
	contains           map[string]struct{}
	routes             map[string]struct{}
}

// NewRuleSet returns a rule set without conditions
func NewRuleSet(fareID string) *RuleSet {
	return &RuleSet{
		FareID:             fareID,
		originDestinations: make(map[od]struct{}),
		contains:           make(map[string]struct{}),
		routes:             make(map[string]struct{}),
	}
}

// AddOriginDestination allows the pair; either side may be empty to match
// any zone
func (rs *RuleSet) AddOriginDestination(origin, destination string) {
	rs.originDestinations[od{origin, destination}] = struct{}{}
}

// AddContains adds a zone to the exact set of zones a ride must visit
func (rs *RuleSet) AddContains(zone string) { rs.contains[zone] = struct{}{} }

// AddRoute restricts the fare to a route
func (rs *RuleSet) AddRoute(routeID string) { rs.routes[routeID] = struct{}{} }

// Matches tests a journey starting in zone start and ending in zone end that
// visits zones and rides routes
func (rs *RuleSet) Matches(start, end string, zones map[string]struct{}, routes []string) bool {
	if len(rs.originDestinations) > 0 {
		_, exact := rs.originDestinations[od{start, end}]
		_, fromAny := rs.originDestinations[od{start, ""}]
		_, toAny := rs.originDestinations[od{"", end}]
		if !exact && !fromAny && !toAny {
			return false
		}
	}
	if len(rs.contains) > 0 {
		if len(rs.contains) != len(zones) {
			return false
		}
		for z := range zones {
			if _, ok := rs.contains[z]; !ok {
				return false
			}
		}
	}
	if len(rs.routes) > 0 {
		for _, r := range routes {
			if _, ok := rs.routes[r]; !ok {
				return false
			}
		}
	}
	return true
}

func sortRuleSets(rules []*RuleSet) {
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].FareID < rules[j].FareID })
}
