package transform

import (
	"slices"

	"github.com/matzehuels/hyperpipe/pkg/hypergraph"
)

// StronglyConnectedComponents partitions the nodes of g into maximal
// strongly connected groups.
//
// The first pass is a forward DFS over the whole graph. The second pass is a
// reverse DFS (following input edges) that tries roots in decreasing order of
// first-pass finishing time; each tree it grows is exactly one component,
// and components come out in topological order of the condensation.
//
// Every node appears in exactly one group. A node without a self-loop that
// lies on no cycle forms a group of one.
func StronglyConnectedComponents(g *hypergraph.Graph) [][]*hypergraph.Node {
	first := DFS(g, Options{})
	order := slices.Clone(first.FinishOrder)
	slices.Reverse(order)

	second := DFS(g, Options{Reverse: true, Order: order})
	return second.Trees
}
