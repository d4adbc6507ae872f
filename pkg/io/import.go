package io

import (
	"encoding/json"
	"io"
	"os"

	errs "github.com/matzehuels/hyperpipe/pkg/errors"
	"github.com/matzehuels/hyperpipe/pkg/hypergraph"
)

// ReadJSON decodes a JSON graph from r.
//
// Node ids become [hypergraph.Node.Name]. ReadJSON returns an
// INVALID_GRAPH error if an id is empty, malformed or duplicated, if a
// weight is negative or not finite, or if an edge has no sinks or references
// an unknown id. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*hypergraph.Graph, error) {
	var data graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode graph")
	}
	return data.build()
}

// ImportJSON reads the JSON graph file at path.
func ImportJSON(path string) (*hypergraph.Graph, error) {
	if err := errs.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	return ReadJSON(f)
}

func (data graph) build() (*hypergraph.Graph, error) {
	g := hypergraph.New()
	byID := make(map[string]*hypergraph.Node, len(data.Nodes))
	for i, n := range data.Nodes {
		if err := errs.ValidateNodeName(n.ID); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidGraph, err, "node %d", i)
		}
		if _, dup := byID[n.ID]; dup {
			return nil, errs.New(errs.ErrCodeInvalidGraph, "duplicate node id %q", n.ID)
		}
		if err := errs.ValidateWeight("node "+n.ID, n.Weight); err != nil {
			return nil, err
		}
		byID[n.ID] = g.NewNode(n.ID, n.Weight)
	}

	for i, e := range data.Edges {
		src, ok := byID[e.From]
		if !ok {
			return nil, errs.New(errs.ErrCodeInvalidGraph, "edge %d: unknown source %q", i, e.From)
		}
		if len(e.To) == 0 {
			return nil, errs.New(errs.ErrCodeInvalidGraph, "edge %d from %q has no sinks", i, e.From)
		}
		if err := errs.ValidateWeight("edge from "+e.From, e.Weight); err != nil {
			return nil, err
		}
		sinks := make([]*hypergraph.Node, len(e.To))
		for j, id := range e.To {
			if sinks[j], ok = byID[id]; !ok {
				return nil, errs.New(errs.ErrCodeInvalidGraph, "edge %d from %q: unknown sink %q", i, e.From, id)
			}
		}
		if _, err := g.Connect(src, sinks, e.Weight); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidGraph, err, "edge %d", i)
		}
	}
	return g, nil
}
