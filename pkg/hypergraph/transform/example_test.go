package transform_test

import (
	"fmt"

	"github.com/matzehuels/hyperpipe/pkg/hypergraph"
	"github.com/matzehuels/hyperpipe/pkg/hypergraph/transform"
)

func ExampleCollapseCycles() {
	g := hypergraph.New()
	src := g.NewNode("src", 1)
	a := g.NewNode("a", 1)
	b := g.NewNode("b", 1)
	sink := g.NewNode("sink", 1)
	_, _ = g.Connect(src, []*hypergraph.Node{a}, 1)
	_, _ = g.Connect(a, []*hypergraph.Node{b}, 1)
	_, _ = g.Connect(b, []*hypergraph.Node{a, sink}, 1) // feedback loop

	clusters, _ := transform.CollapseCycles(g)
	levels, _ := transform.Levelize(g, nil)

	fmt.Println("clusters:", len(clusters), "weight:", clusters[0].Weight)
	for _, n := range g.Nodes() {
		fmt.Printf("%s: %d\n", n.Name, levels[n])
	}
	// Output:
	// clusters: 1 weight: 2
	// src: 1
	// sink: 3
	// a+b: 2
}

func ExampleLevelize() {
	g := hypergraph.New()
	a := g.NewNode("a", 1)
	b := g.NewNode("b", 1)
	c := g.NewNode("c", 1)
	_, _ = g.Connect(a, []*hypergraph.Node{b, c}, 1)
	_, _ = g.Connect(b, []*hypergraph.Node{c}, 1)

	levels, _ := transform.Levelize(g, nil)
	fmt.Println(levels[a], levels[b], levels[c])
	// Output: 1 2 3
}
