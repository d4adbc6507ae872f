package transform

import "github.com/matzehuels/hyperpipe/pkg/hypergraph"

// Levelize assigns every node of g its longest-path level: 1 for nodes
// without (non-ignored) inputs, otherwise one more than the highest level
// among the sources of its non-ignored input edges.
//
// Longest-path numbering guarantees that a node never shares or precedes the
// level of any of its dependencies. Levels are computed over a topological
// order, so every source is final before its sinks are visited. Levelize
// returns the error of [TopologicalSort] when g has undeclared cycles.
//
// Levelize does not modify the nodes; callers store the result where needed.
func Levelize(g *hypergraph.Graph, backEdges hypergraph.EdgeSet) (map[*hypergraph.Node]int, error) {
	order, err := TopologicalSort(g, backEdges)
	if err != nil {
		return nil, err
	}

	levels := make(map[*hypergraph.Node]int, len(order))
	for _, n := range order {
		level := 1
		for _, e := range n.Inputs() {
			if backEdges.Contains(e) {
				continue
			}
			if l, ok := levels[e.Source()]; ok && l+1 > level {
				level = l + 1
			}
		}
		levels[n] = level
	}
	return levels, nil
}
