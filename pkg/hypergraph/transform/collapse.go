package transform

import (
	"slices"

	"github.com/matzehuels/hyperpipe/pkg/hypergraph"
)

// CollapseCycles merges every strongly connected component of g with more
// than one member into a single cluster node, and prunes self-loops on the
// remaining nodes. It returns the clusters it created.
//
// After CollapseCycles returns without error, g is acyclic. It must run
// before [Levelize] or any scheduling on a graph that may contain cycles.
func CollapseCycles(g *hypergraph.Graph) ([]*hypergraph.Node, error) {
	var clusters []*hypergraph.Node
	for _, group := range StronglyConnectedComponents(g) {
		if len(group) == 1 {
			pruneSelfLoops(g, group[0])
			continue
		}
		c, err := g.MergeAll(group)
		if err != nil {
			return nil, err
		}
		clusters = append(clusters, c)
	}
	return clusters, nil
}

func pruneSelfLoops(g *hypergraph.Graph, n *hypergraph.Node) {
	for _, e := range slices.Clone(n.Outputs()) {
		if !e.HasSink(n) {
			continue
		}
		g.RemoveSink(e, n)
		if e.Fanout() == 0 {
			g.Detach(e)
		}
	}
}
