package transform

import (
	"slices"

	errs "github.com/matzehuels/hyperpipe/pkg/errors"
	"github.com/matzehuels/hyperpipe/pkg/hypergraph"
)

// TopologicalSort orders the nodes of g so that, for every edge not in
// backEdges, the source precedes all of its sinks.
//
// backEdges may be nil. A back edge that is not in backEdges means the
// graph is cyclic even after ignoring the declared edges; TopologicalSort
// then returns a CYCLE_DETECTED error naming the offending edge.
func TopologicalSort(g *hypergraph.Graph, backEdges hypergraph.EdgeSet) ([]*hypergraph.Node, error) {
	s := DFS(g, Options{Ignore: backEdges})
	if len(s.BackEdges) > 0 {
		e := s.BackEdges[0]
		return nil, errs.New(errs.ErrCodeCycle,
			"undeclared back edge %v (%d found); collapse cycles before sorting", e, len(s.BackEdges))
	}
	order := slices.Clone(s.FinishOrder)
	slices.Reverse(order)
	return order, nil
}
