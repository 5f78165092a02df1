// Package algorithm runs label-setting searches over a core.Graph.
//
// AStar and AStarBack search towards a single target, guided by a
// straight-line heuristic scaled by the fastest enabled speed. Dijkstra
// explores the whole reachable graph. All of them return the shortest path
// tree; paths are extracted from it with spt.ShortestPathTree.Path.
//
// A search holds the graph's read lock, owns its queue and tree, and never
// mutates the graph, so any number of searches may run concurrently over the
// same graph. Cancelling the context aborts a search at the next queue pop.
package algorithm
