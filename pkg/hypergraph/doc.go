// Package hypergraph provides the weighted dataflow hypergraph that the
// hyperpipe scheduler partitions.
//
// # Overview
//
// A [Graph] owns a set of [Node] values connected by [Edge] values. Nodes
// carry an application-defined compute weight; edges carry a bandwidth
// weight and connect exactly one source to an ordered, non-empty list of
// sinks. Fan-out is expressed by a single edge with several sinks, not by
// several edges.
//
// # Identity
//
// Every collection in this package is keyed by pointer identity. Two nodes
// with the same name and weight are still distinct vertices and are never
// deduplicated or merged by value. Node and edge IDs are assigned from a
// per-graph counter and exist only for stable, readable diagnostics.
//
// # Basic Usage
//
// The graph value is the construction session: every node is created by, and
// belongs to, exactly one graph.
//
//	g := hypergraph.New()
//	a := g.NewNode("a", 1)
//	b := g.NewNode("b", 1)
//	c := g.NewNode("c", 2)
//	_, _ = g.Connect(a, []*hypergraph.Node{b, c}, 0.5)
//
// # Clusters
//
// [Graph.Merge] replaces two nodes by a cluster node. A cluster is itself a
// [Node], so schedulers treat primitive and composite nodes uniformly, and
// [Node.Members] exposes the original nodes it subsumes. Merging sums the
// weights, redirects boundary edges to the cluster and discards edges whose
// source and sinks were all absorbed. Edge weights are never summed.
//
// # Concurrency
//
// Graph instances are not safe for concurrent use. Independent graphs can be
// built and scheduled in parallel goroutines; a single graph must be
// confined to one goroutine or protected by the caller.
package hypergraph
