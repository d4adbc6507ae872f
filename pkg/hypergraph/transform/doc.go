// Package transform provides the graph analyses and rewrites that prepare a
// hypergraph for scheduling.
//
// # Overview
//
// The scheduler only operates on acyclic graphs whose nodes carry a
// longest-path level. This package provides the pieces of that preparation:
//
//   - [DFS]: iterative three-colour depth-first search with discovery and
//     finishing timestamps, DFS-tree parents, roots and back edges
//   - [TopologicalSort]: a source-before-sink ordering, tolerating an
//     explicit set of ignored back edges
//   - [Levelize]: longest-path-from-a-source levels (sources at level 1)
//   - [StronglyConnectedComponents]: two-pass (Kosaraju) SCC detection
//   - [CollapseCycles]: folds every non-trivial SCC into one cluster node so
//     the result is a DAG
//
// # Back Edges
//
// A back edge is an edge into a node that is still on the DFS stack (a grey
// to grey transition). [TopologicalSort] and [Levelize] accept a set of edges
// to ignore; finding a back edge outside that set means the caller's
// acyclicity assumption is wrong and is reported as a CYCLE_DETECTED error.
//
// # Usage
//
// Cycles must be collapsed before levelizing:
//
//	if _, err := transform.CollapseCycles(g); err != nil {
//	    return err
//	}
//	levels, err := transform.Levelize(g, nil)
//
// # Depth
//
// All traversals use an explicit stack, so arbitrarily deep pipelines do not
// grow the goroutine stack.
package transform
