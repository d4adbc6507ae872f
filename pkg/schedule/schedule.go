package schedule

import (
	"math"

	"github.com/elliotchance/orderedmap/v2"

	errs "github.com/matzehuels/hyperpipe/pkg/errors"
	"github.com/matzehuels/hyperpipe/pkg/hypergraph"
	"github.com/matzehuels/hyperpipe/pkg/hypergraph/transform"
)

// weightTolerance is the relative error allowed when comparing summed
// float weights.
const weightTolerance = 1e-9

type levelSet = orderedmap.OrderedMap[*hypergraph.Node, struct{}]

// Schedule is a per-level partition of an acyclic hypergraph.
//
// The zero value is not usable - use [New].
type Schedule struct {
	graph  *hypergraph.Graph
	levels []*levelSet
	total  float64
}

// New levelizes g and builds the initial schedule, writing each node's
// level into [hypergraph.Node.Level].
//
// g must be acyclic; New returns the CYCLE_DETECTED error of
// [transform.Levelize] otherwise, and the structural error of
// [hypergraph.Graph.Validate] for a negative or non-finite weight. An empty
// graph yields a schedule with a single empty level.
func New(g *hypergraph.Graph) (*Schedule, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	levels, err := transform.Levelize(g, nil)
	if err != nil {
		return nil, err
	}

	s := &Schedule{graph: g, total: g.TotalWeight()}
	s.ensure(1)
	for _, n := range g.Nodes() {
		n.Level = levels[n]
		s.insert(n)
	}
	return s, nil
}

// Graph returns the scheduled graph.
func (s *Schedule) Graph() *hypergraph.Graph { return s.graph }

// Top returns the highest level index. It is at least 1.
func (s *Schedule) Top() int { return len(s.levels) - 1 }

// TotalWeight returns the node weight the schedule must conserve, captured
// when the schedule was built.
func (s *Schedule) TotalWeight() float64 { return s.total }

// NodesAtLevel returns the nodes on level i in insertion order, or nil for
// an empty or out-of-range level.
func (s *Schedule) NodesAtLevel(i int) []*hypergraph.Node {
	if i < 0 || i >= len(s.levels) || s.levels[i].Len() == 0 {
		return nil
	}
	return s.levels[i].Keys()
}

// Levels returns the nodes of every level, indexed by level (index 0 is the
// reserved empty level).
func (s *Schedule) Levels() [][]*hypergraph.Node {
	out := make([][]*hypergraph.Node, len(s.levels))
	for i := range s.levels {
		out[i] = s.NodesAtLevel(i)
	}
	return out
}

// Len returns the number of scheduled nodes across all levels.
func (s *Schedule) Len() int {
	n := 0
	for _, l := range s.levels {
		n += l.Len()
	}
	return n
}

// Contains reports whether n is scheduled at n.Level.
func (s *Schedule) Contains(n *hypergraph.Node) bool {
	if n == nil || n.Level < 0 || n.Level >= len(s.levels) {
		return false
	}
	_, ok := s.levels[n.Level].Get(n)
	return ok
}

// Check validates the schedule:
//   - level 0 is empty and every node sits in the level matching n.Level
//   - every input edge of a node on level L comes from a level below L
//   - the scheduled nodes are exactly the graph's nodes
//   - every weight is finite and the sum equals the weight captured by [New]
//
// Check is intended for tests and debugging.
func (s *Schedule) Check() error {
	if s.levels[0].Len() != 0 {
		return errs.New(errs.ErrCodeInternal, "reserved level 0 holds %d nodes", s.levels[0].Len())
	}

	count := 0
	var weight float64
	for level, set := range s.levels {
		for el := set.Front(); el != nil; el = el.Next() {
			n := el.Key
			if n.Level != level {
				return errs.New(errs.ErrCodeInternal, "node %v filed on level %d but has level %d", n, level, n.Level)
			}
			if math.IsNaN(n.Weight) || math.IsInf(n.Weight, 0) {
				return errs.New(errs.ErrCodeInternal, "node %v has non-finite weight %v", n, n.Weight)
			}
			if !s.graph.Contains(n) {
				return errs.New(errs.ErrCodeInternal, "node %v on level %d is not in the graph", n, level)
			}
			for _, e := range n.Inputs() {
				if src := e.Source(); src.Level >= level {
					return errs.New(errs.ErrCodeInternal,
						"level invariant violated: %v (level %d) feeds %v (level %d)", src, src.Level, n, level)
				}
			}
			count++
			weight += n.Weight
		}
	}

	if count != s.graph.Len() {
		return errs.New(errs.ErrCodeInternal, "schedule holds %d nodes, graph has %d", count, s.graph.Len())
	}
	if math.IsNaN(weight) || math.IsInf(weight, 0) || math.IsInf(s.total, 0) || math.IsNaN(s.total) {
		return errs.New(errs.ErrCodeInternal, "non-finite total weight: %v scheduled, %v expected", weight, s.total)
	}
	if math.Abs(weight-s.total) > weightTolerance*math.Max(1, math.Abs(s.total)) {
		return errs.New(errs.ErrCodeInternal, "weight not conserved: %v scheduled, %v expected", weight, s.total)
	}
	return nil
}

// Merge clusters n with its predecessors on level n.Level-1.
//
// The candidates are n and the distinct sources of its input edges that sit
// exactly one level below it. Merge gives up, returning a nil node and no
// error, when:
//   - n is on level 1 or has no candidate predecessor
//   - the candidates' summed weight exceeds maxWeight
//   - the weight of the edges crossing the candidate boundary exceeds
//     maxBandwidth (edges whose source and sinks are all candidates do not
//     cross it)
//
// Otherwise the candidates leave their levels and the resulting cluster is
// placed on n.Level-1. Merge returns a structural error, leaving the
// schedule untouched, if n or one of its candidate predecessors is not
// scheduled.
func (s *Schedule) Merge(n *hypergraph.Node, maxWeight, maxBandwidth float64) (*hypergraph.Node, error) {
	if !s.Contains(n) {
		return nil, errs.New(errs.ErrCodeStructural, "node %v is not scheduled at level %d", n, n.Level)
	}

	level := n.Level
	if level <= 1 {
		return nil, nil
	}
	candidates := []*hypergraph.Node{n}
	for _, p := range n.Predecessors() {
		if p.Level == level-1 {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 1 {
		return nil, nil
	}

	var weight float64
	for _, c := range candidates {
		weight += c.Weight
	}
	if !(weight <= maxWeight) {
		return nil, nil
	}
	if !(boundaryBandwidth(candidates) <= maxBandwidth) {
		return nil, nil
	}

	for _, c := range candidates[1:] {
		if !s.Contains(c) || !s.graph.Contains(c) {
			return nil, errs.New(errs.ErrCodeStructural, "predecessor %v of %v is not scheduled at level %d", c, n, c.Level)
		}
	}

	for _, c := range candidates {
		s.remove(c)
	}
	cluster, err := s.graph.MergeAll(candidates)
	if err != nil {
		// The graph may hold a partial cluster; the schedule is unusable.
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "merge %v", n)
	}
	cluster.Level = level - 1
	s.insert(cluster)
	return cluster, nil
}

// Compress moves every node on level startingLevel or above down to one
// level above its highest input, when that is at least two levels below its
// current level. It reports whether any node moved.
//
// Levels are visited in ascending order, so a single call reaches a fixed
// point: calling Compress again without an intervening merge returns false.
// Empty levels left at the top are dropped.
func (s *Schedule) Compress(startingLevel int) bool {
	changed := false
	for level := max(startingLevel, 1); level <= s.Top(); level++ {
		for _, n := range s.NodesAtLevel(level) {
			highest := 0
			for _, e := range n.Inputs() {
				highest = max(highest, e.Source().Level)
			}
			if highest <= level-2 {
				s.remove(n)
				n.Level = highest + 1
				s.insert(n)
				changed = true
			}
		}
	}
	s.trim()
	return changed
}

// Pack replaces the nodes of every level from 2 upward with the bins
// produced by [BinPack] under the same caps.
func (s *Schedule) Pack(maxWeight, maxBandwidth float64) error {
	for level := 2; level <= s.Top(); level++ {
		nodes := s.NodesAtLevel(level)
		if len(nodes) < 2 {
			continue
		}
		bins, err := BinPack(s.graph, nodes, maxWeight, maxBandwidth)
		if err != nil {
			return err
		}
		s.levels[level] = orderedmap.NewOrderedMap[*hypergraph.Node, struct{}]()
		for _, b := range bins {
			b.Level = level
			s.insert(b)
		}
	}
	return nil
}

func (s *Schedule) ensure(level int) {
	for len(s.levels) <= level {
		s.levels = append(s.levels, orderedmap.NewOrderedMap[*hypergraph.Node, struct{}]())
	}
}

func (s *Schedule) insert(n *hypergraph.Node) {
	s.ensure(n.Level)
	s.levels[n.Level].Set(n, struct{}{})
}

func (s *Schedule) remove(n *hypergraph.Node) {
	if n.Level >= 0 && n.Level < len(s.levels) {
		s.levels[n.Level].Delete(n)
	}
}

func (s *Schedule) trim() {
	for s.Top() > 1 && s.levels[s.Top()].Len() == 0 {
		s.levels = s.levels[:len(s.levels)-1]
	}
}

// boundaryBandwidth sums the weights of the distinct edges touching nodes,
// skipping edges whose source and sinks all lie inside nodes.
func boundaryBandwidth(nodes []*hypergraph.Node) float64 {
	inside := make(map[*hypergraph.Node]struct{}, len(nodes))
	for _, n := range nodes {
		inside[n] = struct{}{}
	}
	isInside := func(n *hypergraph.Node) bool {
		_, ok := inside[n]
		return ok
	}

	seen := make(hypergraph.EdgeSet)
	var total float64
	visit := func(e *hypergraph.Edge) {
		if seen.Contains(e) {
			return
		}
		seen.Add(e)
		if isInside(e.Source()) {
			internal := true
			for _, sink := range e.Sinks() {
				if !isInside(sink) {
					internal = false
					break
				}
			}
			if internal {
				return
			}
		}
		total += e.Weight
	}
	for _, n := range nodes {
		for _, e := range n.Inputs() {
			visit(e)
		}
		for _, e := range n.Outputs() {
			visit(e)
		}
	}
	return total
}
