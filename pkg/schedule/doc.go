// Package schedule maintains a levelized partition of an acyclic hypergraph
// and the operations that shape it into a pipelined execution plan.
//
// # Overview
//
// A [Schedule] assigns every node of its graph to a level. Level 1 holds the
// graph's sources, level 0 is reserved and stays empty, and every edge goes
// from a lower level to a strictly higher one. Each level is a set of nodes
// (or clusters) that can execute in parallel once all lower levels finish.
//
// # Operations
//
//   - [Schedule.Merge] pulls a node into one cluster with its predecessors on
//     the level directly below, subject to a weight cap and a bandwidth cap
//   - [Schedule.Compress] moves nodes down to the lowest level their inputs
//     allow
//   - [Schedule.Pack] bin-packs every level from 2 upward with [BinPack]
//   - [Schedule.Check] re-validates the level invariant and weight
//     conservation; it is a test and debugging hook, not a hot path
//
// A merge that would exceed a cap is not an error: Merge returns a nil node
// and leaves the schedule untouched, and callers move on to the next
// candidate.
//
// # Bin Packing
//
// [BinPack] sorts nodes by decreasing weight and places each into the first
// existing bin that stays within both caps, opening a new bin otherwise.
// First fit (not best fit) makes bin count and composition a deterministic
// function of the input order.
//
// # Concurrency
//
// A Schedule and its graph are mutated in place and are not safe for
// concurrent use.
package schedule
