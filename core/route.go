package core

// Route is a transit route as seen by the router
type Route struct {
	ID        string
	AgencyID  string
	ShortName string
	LongName  string
	Type      int
	Mode      TraverseMode
}

// Name returns the short name, or the long name when there is none
func (r *Route) Name() string {
	if r.ShortName != "" {
		return r.ShortName
	}
	if r.LongName != "" {
		return r.LongName
	}
	return r.ID
}

// Trip is a scheduled vehicle journey
type Trip struct {
	ID         string
	ServiceID  string
	Headsign   string
	BlockID    string
	ShapeID    string
	Route      *Route
	Wheelchair bool
}

// RouteSpec names a route for banning. An empty Agency matches any agency;
// Name matches the route's short name, long name or id.
type RouteSpec struct {
	Agency string
	Name   string
}

// RouteSet is a set of route specs
type RouteSet map[RouteSpec]struct{}

// Add inserts spec
func (rs RouteSet) Add(spec RouteSpec) { rs[spec] = struct{}{} }

// Matches reports whether r is named by any spec in the set
func (rs RouteSet) Matches(r *Route) bool {
	if len(rs) == 0 || r == nil {
		return false
	}
	for _, n := range [...]string{r.ShortName, r.LongName, r.ID} {
		if n == "" {
			continue
		}
		if _, ok := rs[RouteSpec{Agency: r.AgencyID, Name: n}]; ok {
			return true
		}
		if _, ok := rs[RouteSpec{Name: n}]; ok {
			return true
		}
	}
	return false
}
