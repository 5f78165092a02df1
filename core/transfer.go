package core

// Transfer moves between two stops without using the street network
type Transfer struct {
	Seconds    int
	Distance   float64 // meters, informational
	Wheelchair bool    // both stops are accessible
}

// traverse refuses to follow another transfer. Board, alight and free edges
// clear the flag.
func (p *Transfer) traverse(s *State, o *TraverseOptions, back bool) *TraverseResult {
	if s.JustTransferred || s.OnBoard() || (o.Wheelchair && !p.Wheelchair) {
		return nil
	}
	n := s.Clone()
	ms := int64(p.Seconds) * 1000
	if back {
		n.Time -= ms
	} else {
		n.Time += ms
	}
	n.JustTransferred = true
	return &TraverseResult{Weight: float64(p.Seconds), State: n}
}
