// Package spt records the result of a search: shortest path trees and the
// paths extracted from them.
//
// A tree decorates graph vertices with search-local Vertex entries (state,
// cumulative weight, incoming tree edge). BasicTree keeps one entry per graph
// vertex; MultiTree keeps the Pareto set of (weight, time) entries, which is
// required once a walk bound or transfers make weight and time disagree.
// Trees belong to a single search and are discarded with it.
package spt
