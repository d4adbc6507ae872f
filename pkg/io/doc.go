// Package io reads and writes hypergraphs and schedules as JSON.
//
// # Graph Format
//
// A graph document has two arrays. Nodes carry a unique id and a weight
// (compute load, defaults to 0); edges carry one source, one or more sinks
// and a weight (bandwidth, defaults to 0):
//
//	{
//	  "nodes": [
//	    {"id": "load", "weight": 1},
//	    {"id": "parse", "weight": 2},
//	    {"id": "index", "weight": 2}
//	  ],
//	  "edges": [
//	    {"from": "load", "to": ["parse", "index"], "weight": 4}
//	  ]
//	}
//
// Edges may form cycles; the pipeliner collapses them. Duplicate sinks on one
// edge are dropped.
//
// # Schedule Format
//
// [NewDocument] flattens a schedule into levels of bins. Each bin lists the
// ids of the original nodes it contains, its summed weight and the weight of
// the edges crossing its boundary:
//
//	{
//	  "levels": [
//	    {"level": 1, "bins": [{"weight": 1, "bandwidth": 4, "members": ["load"]}]},
//	    {"level": 2, "bins": [{"weight": 4, "bandwidth": 4, "members": ["parse", "index"]}]}
//	  ],
//	  "total_weight": 5
//	}
//
// Decoding errors carry the codes of package errors: INVALID_INPUT for
// malformed JSON and INVALID_GRAPH for documents that parse but do not
// describe a valid graph.
package io
