// Package linker ties transit stops and arbitrary coordinates to the street
// network.
//
// Stops are linked once, after the graph is built, by splitting the nearest
// street edge and adding street-transit links in both directions. Origins
// and destinations of a query become temporary street locations: a vertex
// outside the graph with temporary edges onto the split street, handed to
// the search as extra edges. Reify makes a location permanent under the
// graph's write lock.
package linker
