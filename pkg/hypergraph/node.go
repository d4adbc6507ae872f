package hypergraph

import (
	"fmt"
	"slices"
)

// Node is a vertex of a [Graph]: a compute kernel, or a cluster of kernels
// produced by [Graph.Merge].
//
// Nodes are compared by pointer identity only. The zero value is not
// usable; create nodes with [Graph.NewNode].
type Node struct {
	Name   string  // Display label, not required to be unique
	Weight float64 // Compute load; additive under merge
	Level  int     // Scheduling level, maintained by the schedule

	// Attraction is a transient clustering priority, recomputed on every
	// clustering pass.
	Attraction float64

	// InCluster points at the cluster that absorbed this node, or nil while
	// the node is still part of its graph.
	InCluster *Node

	id      int
	graph   *Graph
	inputs  []*Edge
	outputs []*Edge
	members []*Node
}

// ID returns the graph-unique sequence number assigned at creation.
func (n *Node) ID() int { return n.id }

// Inputs returns the edges for which n is a sink, in connection order.
// The returned slice must not be modified.
func (n *Node) Inputs() []*Edge { return n.inputs }

// Outputs returns the edges driven by n, in connection order.
// The returned slice must not be modified.
func (n *Node) Outputs() []*Edge { return n.outputs }

// IsCluster reports whether n was produced by merging other nodes.
func (n *Node) IsCluster() bool { return n.members != nil }

// Members returns the original (primitive) nodes that n subsumes. For a
// primitive node this is n itself.
func (n *Node) Members() []*Node {
	if n.members == nil {
		return []*Node{n}
	}
	return slices.Clone(n.members)
}

// Predecessors returns the distinct source nodes of n's input edges, in
// first-seen order.
func (n *Node) Predecessors() []*Node {
	var preds []*Node
	seen := make(map[*Node]struct{}, len(n.inputs))
	for _, e := range n.inputs {
		if _, ok := seen[e.source]; ok {
			continue
		}
		seen[e.source] = struct{}{}
		preds = append(preds, e.source)
	}
	return preds
}

// Bandwidth returns the summed weight of the distinct edges touching n.
// An edge that is both an input and an output of n counts once.
func (n *Node) Bandwidth() float64 {
	return EdgeWeight(n.inputs, n.outputs)
}

// String returns the node name with its ID, e.g. "fft#3".
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s#%d", n.Name, n.id)
}

// Edge connects one source node to an ordered list of sinks.
//
// Edges are compared by pointer identity only. The zero value is not usable;
// create edges with [Graph.Connect].
type Edge struct {
	Weight float64 // Bandwidth; not additive under merge

	id     int
	source *Node
	sinks  []*Node
}

// ID returns the graph-unique sequence number assigned at creation.
func (e *Edge) ID() int { return e.id }

// Source returns the node driving e.
func (e *Edge) Source() *Node { return e.source }

// Sinks returns the nodes reading e. The returned slice must not be modified.
func (e *Edge) Sinks() []*Node { return e.sinks }

// Fanout returns the number of sinks.
func (e *Edge) Fanout() int { return len(e.sinks) }

// HasSink reports whether n is one of e's sinks.
func (e *Edge) HasSink(n *Node) bool { return slices.Contains(e.sinks, n) }

// String returns a readable form such as "a#1->[b#2 c#3]".
func (e *Edge) String() string {
	return fmt.Sprintf("%v->%v", e.source, e.sinks)
}

// EdgeSet is an identity set of edges. A nil EdgeSet is empty and safe to
// query.
type EdgeSet map[*Edge]struct{}

// NewEdgeSet returns a set holding edges.
func NewEdgeSet(edges ...*Edge) EdgeSet {
	s := make(EdgeSet, len(edges))
	for _, e := range edges {
		s[e] = struct{}{}
	}
	return s
}

// Add inserts e.
func (s EdgeSet) Add(e *Edge) { s[e] = struct{}{} }

// Contains reports whether e is in the set.
func (s EdgeSet) Contains(e *Edge) bool {
	_, ok := s[e]
	return ok
}

// EdgeWeight sums the weights of the distinct edges across all lists.
func EdgeWeight(lists ...[]*Edge) float64 {
	seen := make(map[*Edge]struct{})
	var total float64
	for _, list := range lists {
		for _, e := range list {
			if _, ok := seen[e]; ok {
				continue
			}
			seen[e] = struct{}{}
			total += e.Weight
		}
	}
	return total
}
