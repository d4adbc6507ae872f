package transform

import "github.com/matzehuels/hyperpipe/pkg/hypergraph"

const (
	white = iota
	gray
	black
)

// Options configures a depth-first search.
type Options struct {
	// Reverse follows input edges (sink to source) instead of output edges.
	Reverse bool
	// Order lists the nodes to try as roots first, in order. Nodes of the
	// graph missing from Order are tried afterwards in graph order.
	Order []*hypergraph.Node
	// Ignore holds edges the search must not traverse.
	Ignore hypergraph.EdgeSet
}

// Search holds the result of [DFS].
//
// Discovery and finishing times share one clock starting at 1, so every
// visited node n satisfies Discovery[n] < Finish[n] and the intervals of
// two nodes are either nested or disjoint.
type Search struct {
	Discovery map[*hypergraph.Node]int
	Finish    map[*hypergraph.Node]int
	Parent    map[*hypergraph.Node]*hypergraph.Node // nil for roots

	// BackEdges lists the distinct edges that reached a gray node, in the
	// order they were found.
	BackEdges []*hypergraph.Edge
	// Roots lists the DFS-tree roots in visiting order.
	Roots []*hypergraph.Node
	// Trees holds, for each root, the nodes of its tree in discovery order.
	Trees [][]*hypergraph.Node
	// FinishOrder lists nodes by increasing finishing time.
	FinishOrder []*hypergraph.Node
}

type frame struct {
	node  *hypergraph.Node
	edges []*hypergraph.Edge
	ei    int // next edge
	ti    int // next target within edges[ei]
}

// DFS runs a depth-first search over g and returns timestamps, parents,
// roots and back edges for every visited node.
//
// The search uses an explicit stack; its memory grows with the longest
// path, not the goroutine stack.
func DFS(g *hypergraph.Graph, opts Options) *Search {
	n := g.Len()
	s := &Search{
		Discovery: make(map[*hypergraph.Node]int, n),
		Finish:    make(map[*hypergraph.Node]int, n),
		Parent:    make(map[*hypergraph.Node]*hypergraph.Node, n),
	}
	color := make(map[*hypergraph.Node]int, n)
	seenBack := make(hypergraph.EdgeSet)
	clock := 0

	edgesOf := func(v *hypergraph.Node) []*hypergraph.Edge {
		if opts.Reverse {
			return v.Inputs()
		}
		return v.Outputs()
	}
	targetsOf := func(e *hypergraph.Edge) []*hypergraph.Node {
		if opts.Reverse {
			return []*hypergraph.Node{e.Source()}
		}
		return e.Sinks()
	}

	var stack []frame
	var tree []*hypergraph.Node
	discover := func(v, parent *hypergraph.Node) {
		color[v] = gray
		clock++
		s.Discovery[v] = clock
		s.Parent[v] = parent
		tree = append(tree, v)
		stack = append(stack, frame{node: v, edges: edgesOf(v)})
	}

	visit := func(root *hypergraph.Node) {
		tree = nil
		s.Roots = append(s.Roots, root)
		discover(root, nil)

		for len(stack) > 0 {
			f := &stack[len(stack)-1]
			if f.ei >= len(f.edges) {
				color[f.node] = black
				clock++
				s.Finish[f.node] = clock
				s.FinishOrder = append(s.FinishOrder, f.node)
				stack = stack[:len(stack)-1]
				continue
			}

			e := f.edges[f.ei]
			targets := targetsOf(e)
			if opts.Ignore.Contains(e) || f.ti >= len(targets) {
				f.ei++
				f.ti = 0
				continue
			}
			t := targets[f.ti]
			f.ti++
			if !g.Contains(t) {
				continue
			}

			switch color[t] {
			case white:
				discover(t, f.node)
			case gray:
				if !seenBack.Contains(e) {
					seenBack.Add(e)
					s.BackEdges = append(s.BackEdges, e)
				}
			}
		}
		s.Trees = append(s.Trees, tree)
	}

	for _, v := range opts.Order {
		if g.Contains(v) && color[v] == white {
			visit(v)
		}
	}
	for _, v := range g.Nodes() {
		if color[v] == white {
			visit(v)
		}
	}
	return s
}

// Acyclic reports whether a full forward search of g finds no back edges.
func Acyclic(g *hypergraph.Graph) bool {
	return len(DFS(g, Options{}).BackEdges) == 0
}
