/*
Package builder turns a GTFS feed into routing graph content.

PatternHopFactory groups trips that share route, service, stop sequence and
pickup/drop-off rules into trip patterns, and wires every pattern into the
graph:

	stop_depart --board--> D(i) --hop--> A(i+1) --alight--> stop_arrive
	                         ^                |
	                         +-----dwell------+

Each stop has a transit stop vertex with arrive and depart vertices joined to
it by free edges. Trips that would overtake another trip of their pattern, or
duplicate its departure, get a pattern of their own. Trips sharing a block are
linked by interline dwell edges, transfers.txt becomes transfer edges between
stop vertices, and frequency-based trips are expanded into one run per
headway. The factory also builds the service calendar and, when the feed
carries fare tables, the fare service.
*/
package builder
