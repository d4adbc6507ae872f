package hypergraph

import (
	"slices"

	errs "github.com/matzehuels/hyperpipe/pkg/errors"
)

// Merge replaces a and b by a single cluster node and returns it.
//
// The cluster's weight is a.Weight + b.Weight, its members are the union of
// both nodes' members, and its level is the lower of the two levels. Edges
// are rewired as follows:
//   - an input of a or b driven by a node outside the pair becomes an input
//     of the cluster (the cluster appears once among the edge's sinks)
//   - an output of a or b that still has sinks outside the pair is re-sourced
//     to the cluster
//   - an edge whose source and sinks all lie inside the pair is discarded
//
// a and b are removed from g and their InCluster fields point at the new
// cluster. Returns a structural error if either node is not in g or if a
// and b are the same node.
func (g *Graph) Merge(a, b *Node) (*Node, error) {
	if err := g.checkMember(a, "merge"); err != nil {
		return nil, err
	}
	if err := g.checkMember(b, "merge"); err != nil {
		return nil, err
	}
	if a == b {
		return nil, errs.New(errs.ErrCodeStructural, "cannot merge node %v with itself", a)
	}

	g.nextNodeID++
	c := &Node{
		Name:    a.Name + "+" + b.Name,
		Weight:  a.Weight + b.Weight,
		Level:   min(a.Level, b.Level),
		id:      g.nextNodeID,
		graph:   g,
		members: append(a.Members(), b.Members()...),
	}
	inPair := func(n *Node) bool { return n == a || n == b }

	for _, e := range dedupEdges(a.inputs, b.inputs) {
		if inPair(e.source) {
			continue // handled with the outputs below
		}
		var sinks []*Node
		for _, s := range e.sinks {
			if !inPair(s) {
				sinks = append(sinks, s)
			} else if !slices.Contains(sinks, c) {
				sinks = append(sinks, c)
			}
		}
		e.sinks = sinks
		c.inputs = append(c.inputs, e)
	}

	for _, e := range dedupEdges(a.outputs, b.outputs) {
		e.sinks = slices.DeleteFunc(e.sinks, inPair)
		if len(e.sinks) == 0 {
			e.source = nil
			continue
		}
		e.source = c
		c.outputs = append(c.outputs, e)
	}

	a.InCluster, b.InCluster = c, c
	a.inputs, a.outputs = nil, nil
	b.inputs, b.outputs = nil, nil
	g.nodes.Delete(a)
	g.nodes.Delete(b)
	g.nodes.Set(c, struct{}{})
	return c, nil
}

// MergeAll folds nodes pairwise from left to right into one cluster. A single
// node is returned unchanged.
func (g *Graph) MergeAll(nodes []*Node) (*Node, error) {
	if len(nodes) == 0 {
		return nil, errs.New(errs.ErrCodeStructural, "cannot merge an empty node list")
	}
	acc := nodes[0]
	for _, n := range nodes[1:] {
		merged, err := g.Merge(acc, n)
		if err != nil {
			return nil, err
		}
		acc = merged
	}
	return acc, nil
}

func dedupEdges(lists ...[]*Edge) []*Edge {
	var out []*Edge
	seen := make(EdgeSet)
	for _, list := range lists {
		for _, e := range list {
			if !seen.Contains(e) {
				seen.Add(e)
				out = append(out, e)
			}
		}
	}
	return out
}
