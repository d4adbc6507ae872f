// Package pipeliner turns a weighted, possibly cyclic hypergraph into a
// pipelined [schedule.Schedule] under load and bandwidth constraints.
//
// # Algorithm
//
// [Pipeliner.Run] proceeds in four phases:
//
//  1. Strongly connected components are collapsed into clusters
//     ([transform.CollapseCycles]), leaving a DAG.
//  2. The DAG is levelized into a schedule ([schedule.New]).
//  3. Every level from the floor (default 3) to the top is clustered. Each
//     node on the level gets an attraction score, the sum over its input
//     edges of weight / (fanout - LowFanoutBias), and nodes are tried in
//     decreasing attraction order with [schedule.Schedule.Merge]. After each
//     pass the schedule is compressed from that level upward; the level is
//     clustered again as long as the previous pass merged anything.
//  4. Every level from 2 upward is bin-packed ([schedule.Schedule.Pack]).
//
// Levels below the floor are never clustered: they are the boundary layers
// feeding the pipeline.
//
// # Usage
//
//	p, err := pipeliner.New(g, pipeliner.Constraints{MaxLoad: 8, MaxBandwidth: 4})
//	if err != nil {
//	    return err
//	}
//	s, err := p.Run()
//
// A Pipeliner mutates its graph in place and runs once.
package pipeliner
