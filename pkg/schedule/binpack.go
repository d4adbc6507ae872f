package schedule

import (
	"cmp"
	"slices"

	errs "github.com/matzehuels/hyperpipe/pkg/errors"
	"github.com/matzehuels/hyperpipe/pkg/hypergraph"
)

// BinPack groups nodes into as few clusters ("bins") as the caps allow and
// returns the bins in creation order.
//
// Nodes are stably sorted by decreasing weight; each node is merged into the
// first bin where the combined weight stays within maxWeight and the summed
// weight of the distinct edges touching the bin or the node stays within
// maxBandwidth. A node that fits nowhere opens a new bin, even when it
// exceeds a cap on its own.
//
// The nodes must belong to g and must not be connected to each other (nodes
// of one schedule level satisfy this). Merged nodes are replaced in g by
// their bins.
func BinPack(g *hypergraph.Graph, nodes []*hypergraph.Node, maxWeight, maxBandwidth float64) ([]*hypergraph.Node, error) {
	for _, n := range nodes {
		if !g.Contains(n) {
			return nil, errs.New(errs.ErrCodeStructural, "cannot pack node %v: not in the graph", n)
		}
	}

	sorted := slices.Clone(nodes)
	slices.SortStableFunc(sorted, func(a, b *hypergraph.Node) int {
		return cmp.Compare(b.Weight, a.Weight)
	})

	var bins []*hypergraph.Node
	for _, n := range sorted {
		placed := false
		for i, bin := range bins {
			if bin.Weight+n.Weight > maxWeight {
				continue
			}
			bw := hypergraph.EdgeWeight(bin.Inputs(), bin.Outputs(), n.Inputs(), n.Outputs())
			if bw > maxBandwidth {
				continue
			}
			merged, err := g.Merge(bin, n)
			if err != nil {
				return nil, err
			}
			bins[i] = merged
			placed = true
			break
		}
		if !placed {
			bins = append(bins, n)
		}
	}
	return bins, nil
}
