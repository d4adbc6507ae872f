package io

import (
	"cmp"
	"encoding/json"
	"io"
	"os"
	"slices"

	errs "github.com/matzehuels/hyperpipe/pkg/errors"
	"github.com/matzehuels/hyperpipe/pkg/hypergraph"
)

type graph struct {
	Nodes []node `json:"nodes"`
	Edges []edge `json:"edges"`
}

type node struct {
	ID     string  `json:"id"`
	Weight float64 `json:"weight"`
}

type edge struct {
	From   string   `json:"from"`
	To     []string `json:"to"`
	Weight float64  `json:"weight"`
}

// Marshal converts g into its JSON document. Nodes are written in graph
// order and edges in creation order, so two inputs that list the same edges
// in a different order encode differently. Cluster nodes are written under
// their cluster name.
func Marshal(g *hypergraph.Graph) ([]byte, error) {
	data, err := json.Marshal(toDocument(g))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "encode graph")
	}
	return data, nil
}

// Unmarshal parses a JSON graph document, with the validation of [ReadJSON].
func Unmarshal(data []byte) (*hypergraph.Graph, error) {
	var doc graph
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode graph")
	}
	return doc.build()
}

// WriteJSON encodes g as indented JSON to w. The output can be read back
// with [ReadJSON].
func WriteJSON(g *hypergraph.Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toDocument(g)); err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "encode graph")
	}
	return nil
}

// ExportJSON writes g to a JSON file at path.
func ExportJSON(g *hypergraph.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidPath, err, "create %s", path)
	}
	defer f.Close()
	return WriteJSON(g, f)
}

func toDocument(g *hypergraph.Graph) graph {
	out := graph{Nodes: []node{}, Edges: []edge{}}
	for _, n := range g.Nodes() {
		out.Nodes = append(out.Nodes, node{ID: n.Name, Weight: n.Weight})
	}
	edges := g.Edges()
	slices.SortFunc(edges, func(a, b *hypergraph.Edge) int { return cmp.Compare(a.ID(), b.ID()) })
	for _, e := range edges {
		to := make([]string, 0, e.Fanout())
		for _, s := range e.Sinks() {
			to = append(to, s.Name)
		}
		out.Edges = append(out.Edges, edge{From: e.Source().Name, To: to, Weight: e.Weight})
	}
	return out
}
