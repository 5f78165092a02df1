/*
Package core holds the routing graph and the traveler state machine.

A Graph is an arena of vertices and directed edges addressed by index. Each
Edge carries a Payload, a closed set of variants (street segments, turn costs,
free connectors, street/transit links, schedule-aware pattern edges, interline
dwells and transfers). Traversing an edge turns one immutable State into a new
State plus a non-negative weight, or returns nil when the edge cannot be used
under the current state and options:

	res := edge.Traverse(state, opts)
	if res == nil {
	    // not traversable: banned route, no departure, wheelchair, ...
	}

TraverseBack is the inverse operation used by arrive-by searches. Replaying
Traverse then TraverseBack restores the original state.

# Time

State times are signed milliseconds since the Unix epoch. Schedules are kept in
TripPattern as seconds since service-day midnight in the options' location;
boarding considers both today's and yesterday's service day so trips running
past midnight are found.

# Concurrency

The graph is built once and read by many searches. Construction methods
(AddVertex, AddEdge) are not synchronized. Topology changes after construction,
such as street-location reification, must hold Lock; searches hold RLock.
*/
package core
