/*
Package fare prices a finished path.

A path is cut into rides (boarding to alighting on one route, continuing
through interline dwells that keep the route). Rule sets select fare
attributes by origin/destination zone pair, by the exact set of zones a ride
passes through, and by route. Consecutive rides are combined under one fare
when its transfer count and transfer duration allow it; a dynamic program
picks the cheapest cover, separately for every fare type.

A ride that no rule matches adds nothing to the total. It is listed in
Fare.Unpriced and reported at warn level, and the service's warning
aggregator keeps a count with examples for a consolidated summary.
*/
package fare
