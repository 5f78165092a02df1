// Package planner answers trip plan requests. It resolves the endpoints of a
// request to graph vertices or temporary street locations, runs the search
// in the requested direction, prices each itinerary with the fare engine and
// produces alternatives by banning the routes already proposed.
package planner
