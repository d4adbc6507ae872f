package hypergraph

import (
	"fmt"
	"math"
	"slices"

	"github.com/elliotchance/orderedmap/v2"

	errs "github.com/matzehuels/hyperpipe/pkg/errors"
)

// Graph is a directed multigraph of weighted nodes and weighted multi-sink
// edges. Node iteration follows insertion order, which keeps every algorithm
// built on top of it deterministic.
//
// The zero value is not usable - use [New].
type Graph struct {
	nodes      *orderedmap.OrderedMap[*Node, struct{}]
	nextNodeID int
	nextEdgeID int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{nodes: orderedmap.NewOrderedMap[*Node, struct{}]()}
}

// NewNode creates a primitive node owned by g and adds it to the graph.
//
// NewNode does not check weight. Use [Graph.CreateNode] for weights that
// come from outside the program; [Graph.Validate] rejects a graph holding a
// negative or non-finite weight.
func (g *Graph) NewNode(name string, weight float64) *Node {
	g.nextNodeID++
	n := &Node{Name: name, Weight: weight, id: g.nextNodeID, graph: g}
	g.nodes.Set(n, struct{}{})
	return n
}

// CreateNode is [Graph.NewNode] for untrusted weights. It returns a
// structural error, and adds nothing, if weight is negative or not finite.
func (g *Graph) CreateNode(name string, weight float64) (*Node, error) {
	if err := checkWeight(weight, "node %q", name); err != nil {
		return nil, err
	}
	return g.NewNode(name, weight), nil
}

// Validate checks every node and edge weight of g.
func (g *Graph) Validate() error {
	for el := g.nodes.Front(); el != nil; el = el.Next() {
		n := el.Key
		if err := checkWeight(n.Weight, "node %v", n); err != nil {
			return err
		}
	}
	for _, e := range g.Edges() {
		if err := checkWeight(e.Weight, "edge %v", e); err != nil {
			return err
		}
	}
	return nil
}

// AddNode re-inserts a node owned by g, for example one removed earlier with
// [Graph.RemoveNode]. Adding a node that is already present is a no-op.
// Returns a structural error for nil nodes and for nodes created by another
// graph.
func (g *Graph) AddNode(n *Node) error {
	if n == nil {
		return errs.New(errs.ErrCodeStructural, "cannot add nil node")
	}
	if n.graph != g {
		return errs.New(errs.ErrCodeStructural, "node %v belongs to another graph", n)
	}
	g.nodes.Set(n, struct{}{})
	return nil
}

// RemoveNode removes n from the node set and reports whether it was present.
// Edges attached to n are left untouched.
func (g *Graph) RemoveNode(n *Node) bool {
	return g.nodes.Delete(n)
}

// Contains reports whether n is currently a node of g.
func (g *Graph) Contains(n *Node) bool {
	_, ok := g.nodes.Get(n)
	return ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return g.nodes.Len() }

// Nodes returns the nodes in insertion order. Clusters created by
// [Graph.Merge] are appended at the end.
func (g *Graph) Nodes() []*Node {
	return g.nodes.Keys()
}

// Inputs returns the nodes without input edges.
func (g *Graph) Inputs() []*Node {
	var out []*Node
	for el := g.nodes.Front(); el != nil; el = el.Next() {
		if len(el.Key.inputs) == 0 {
			out = append(out, el.Key)
		}
	}
	return out
}

// Outputs returns the nodes without output edges.
func (g *Graph) Outputs() []*Node {
	var out []*Node
	for el := g.nodes.Front(); el != nil; el = el.Next() {
		if len(el.Key.outputs) == 0 {
			out = append(out, el.Key)
		}
	}
	return out
}

// Edges returns every edge touching a node of g, deduplicated by identity,
// in first-seen order (inputs before outputs, node by node).
func (g *Graph) Edges() []*Edge {
	var out []*Edge
	seen := make(EdgeSet)
	add := func(list []*Edge) {
		for _, e := range list {
			if !seen.Contains(e) {
				seen.Add(e)
				out = append(out, e)
			}
		}
	}
	for el := g.nodes.Front(); el != nil; el = el.Next() {
		add(el.Key.inputs)
		add(el.Key.outputs)
	}
	return out
}

// TotalWeight returns the sum of all node weights.
func (g *Graph) TotalWeight() float64 {
	var total float64
	for el := g.nodes.Front(); el != nil; el = el.Next() {
		total += el.Key.Weight
	}
	return total
}

// Connect creates an edge from source to sinks and registers it as an output
// of source and an input of every sink. Duplicate sinks are dropped, keeping
// the first occurrence.
//
// Returns a structural error if source or any sink is nil, if sinks is
// empty, if an endpoint is not a node of g, or if weight is negative or not
// finite.
func (g *Graph) Connect(source *Node, sinks []*Node, weight float64) (*Edge, error) {
	if err := g.checkMember(source, "source"); err != nil {
		return nil, err
	}
	if len(sinks) == 0 {
		return nil, errs.New(errs.ErrCodeStructural, "edge from %v has no sinks", source)
	}
	if err := checkWeight(weight, "edge from %v", source); err != nil {
		return nil, err
	}

	g.nextEdgeID++
	e := &Edge{Weight: weight, id: g.nextEdgeID, source: source}
	for _, s := range sinks {
		if err := g.checkMember(s, "sink"); err != nil {
			return nil, err
		}
		if !slices.Contains(e.sinks, s) {
			e.sinks = append(e.sinks, s)
		}
	}

	source.outputs = append(source.outputs, e)
	for _, s := range e.sinks {
		s.inputs = append(s.inputs, e)
	}
	return e, nil
}

// RemoveSink detaches n from e's sinks and drops e from n's inputs.
// It does nothing if n is not a sink of e.
func (g *Graph) RemoveSink(e *Edge, n *Node) {
	if !e.HasSink(n) {
		return
	}
	e.sinks = slices.DeleteFunc(e.sinks, func(s *Node) bool { return s == n })
	n.inputs = slices.DeleteFunc(n.inputs, func(x *Edge) bool { return x == e })
}

// ReplaceSource makes n the driver of e, moving e from the old source's
// outputs to n's outputs.
func (g *Graph) ReplaceSource(e *Edge, n *Node) {
	if e.source == n {
		return
	}
	old := e.source
	old.outputs = slices.DeleteFunc(old.outputs, func(x *Edge) bool { return x == e })
	e.source = n
	if !slices.Contains(n.outputs, e) {
		n.outputs = append(n.outputs, e)
	}
}

// Detach removes e from its source's outputs and from every sink's inputs,
// leaving the edge with no sinks.
func (g *Graph) Detach(e *Edge) {
	for _, s := range slices.Clone(e.sinks) {
		g.RemoveSink(e, s)
	}
	e.source.outputs = slices.DeleteFunc(e.source.outputs, func(x *Edge) bool { return x == e })
}

func checkWeight(w float64, format string, args ...any) error {
	if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		return errs.New(errs.ErrCodeStructural, "%s: weight must be finite and non-negative, got %v",
			fmt.Sprintf(format, args...), w)
	}
	return nil
}

func (g *Graph) checkMember(n *Node, role string) error {
	if n == nil {
		return errs.New(errs.ErrCodeStructural, "%s node is nil", role)
	}
	if n.graph != g {
		return errs.New(errs.ErrCodeStructural, "%s node %v belongs to another graph", role, n)
	}
	if !g.Contains(n) {
		return errs.New(errs.ErrCodeStructural, "%s node %v is not in the graph", role, n)
	}
	return nil
}
