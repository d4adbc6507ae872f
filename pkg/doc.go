// Package pkg holds the hyperpipe libraries.
//
// # Overview
//
// hyperpipe turns a weighted dataflow hypergraph (kernels with a compute
// load, connected by multi-sink edges with a bandwidth) into a pipelined
// schedule: a sequence of levels, each holding clusters of kernels that can
// run as one stage under a load cap and a bandwidth cap.
//
// # Layout
//
//   - [hypergraph]: nodes, hyperedges, clusters and the merge operation
//   - [hypergraph/transform]: DFS, topological sort, levelize, SCCs and
//     cycle collapse
//   - [schedule]: the levelized schedule with merge, compress and bin packing
//   - [pipeliner]: the end-to-end clustering algorithm
//   - [io]: JSON graphs and schedule documents
//   - [pipeline]: cached execution shared by the CLI and the HTTP API
//   - [cache], [config], [observability], [errors], [buildinfo]: support
//
// # Data Flow
//
//	graph.json
//	     ↓
//	[io] ReadJSON
//	     ↓
//	[hypergraph/transform] CollapseCycles
//	     ↓
//	[schedule] New (levelize) → Merge/Compress per level → Pack
//	     ↓
//	[io] schedule document
package pkg
