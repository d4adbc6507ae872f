package pipeliner

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/hyperpipe/pkg/errors"
	"github.com/matzehuels/hyperpipe/pkg/hypergraph"
	"github.com/matzehuels/hyperpipe/pkg/hypergraph/transform"
	"github.com/matzehuels/hyperpipe/pkg/schedule"
)

// Pipeliner schedules one graph under fixed constraints.
type Pipeliner struct {
	graph       *hypergraph.Graph
	constraints Constraints
	floor       int
	bias        float64
	verify      bool
	logger      *log.Logger

	ran   bool
	stats Stats
}

// Stats summarizes a completed run.
type Stats struct {
	InputNodes   int           // Nodes in the graph before collapsing
	Collapsed    int           // Clusters formed from strongly connected components
	Merges       int           // Successful schedule merges
	Passes       int           // Clustering passes over all levels
	Levels       int           // Levels of the final schedule
	Units        int           // Nodes (clusters or primitives) of the final schedule
	Duration     time.Duration // Wall time of Run
	MaxUnitLoad  float64       // Largest node weight in the final schedule
	TotalWeight  float64       // Summed node weight, conserved by every step
	ClusterCount int           // Final nodes with more than one member
}

// New returns a pipeliner for g. It validates the constraints and options
// but does not touch the graph.
func New(g *hypergraph.Graph, c Constraints, opts ...Option) (*Pipeliner, error) {
	if g == nil {
		return nil, errs.New(errs.ErrCodeInvalidGraph, "graph is nil")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	p := &Pipeliner{
		graph:       g,
		constraints: c,
		floor:       DefaultFloor,
		bias:        DefaultLowFanoutBias,
		logger:      log.Default(),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Stats returns the statistics of the last Run.
func (p *Pipeliner) Stats() Stats { return p.stats }

// Run schedules the graph. The graph is rewritten in place: collapsed
// components, merged clusters and packed bins replace their members.
//
// Run may be called only once per Pipeliner.
func (p *Pipeliner) Run() (*schedule.Schedule, error) {
	if p.ran {
		return nil, errs.New(errs.ErrCodeInvalidInput, "pipeliner already ran")
	}
	p.ran = true
	start := time.Now()
	p.stats = Stats{InputNodes: p.graph.Len(), TotalWeight: p.graph.TotalWeight()}
	if err := p.graph.Validate(); err != nil {
		return nil, err
	}

	clusters, err := transform.CollapseCycles(p.graph)
	if err != nil {
		return nil, fmt.Errorf("collapse cycles: %w", err)
	}
	p.stats.Collapsed = len(clusters)
	p.logger.Debug("collapsed cycles", "clusters", len(clusters), "nodes", p.graph.Len())

	s, err := schedule.New(p.graph)
	if err != nil {
		return nil, err
	}
	if err := p.check(s, "levelize"); err != nil {
		return nil, err
	}
	p.logger.Debug("levelized", "levels", s.Top(), "nodes", s.Len())

	for level := p.floor; level <= s.Top(); level++ {
		for {
			merged, err := p.clusterLevel(s, level)
			if err != nil {
				return nil, err
			}
			p.stats.Passes++
			s.Compress(level)
			if err := p.check(s, "cluster"); err != nil {
				return nil, err
			}
			if merged == 0 {
				break
			}
			p.logger.Debug("clustered level", "level", level, "merges", merged, "top", s.Top())
		}
	}

	c := p.constraints
	if err := s.Pack(c.MaxLoad, c.MaxBandwidth); err != nil {
		return nil, err
	}
	if err := p.check(s, "pack"); err != nil {
		return nil, err
	}

	p.finish(s, start)
	p.logger.Debug("scheduled",
		"levels", p.stats.Levels,
		"units", p.stats.Units,
		"merges", p.stats.Merges,
		"duration", p.stats.Duration)
	return s, nil
}

// clusterLevel runs one merge pass over level and returns the number of
// successful merges.
func (p *Pipeliner) clusterLevel(s *schedule.Schedule, level int) (int, error) {
	nodes := s.NodesAtLevel(level)
	pq := newAttractionQueue(len(nodes))
	for _, n := range nodes {
		n.Attraction = attraction(n, p.bias)
		pq.Push(n)
	}

	merged := 0
	for pq.Len() > 0 {
		n := pq.Pop()
		if n.InCluster != nil || !s.Contains(n) {
			continue
		}
		cluster, err := s.Merge(n, p.constraints.MaxLoad, p.constraints.MaxBandwidth)
		if err != nil {
			return merged, err
		}
		if cluster != nil {
			merged++
		}
	}
	p.stats.Merges += merged
	return merged, nil
}

// attraction scores n by its inputs: heavy edges with few sinks score high.
func attraction(n *hypergraph.Node, bias float64) float64 {
	var score float64
	for _, e := range n.Inputs() {
		score += e.Weight / (float64(e.Fanout()) - bias)
	}
	return score
}

func (p *Pipeliner) check(s *schedule.Schedule, phase string) error {
	if !p.verify {
		return nil
	}
	if err := s.Check(); err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "schedule invalid after %s", phase)
	}
	return nil
}

func (p *Pipeliner) finish(s *schedule.Schedule, start time.Time) {
	p.stats.Levels = s.Top()
	for _, level := range s.Levels() {
		for _, n := range level {
			p.stats.Units++
			p.stats.MaxUnitLoad = max(p.stats.MaxUnitLoad, n.Weight)
			if n.IsCluster() {
				p.stats.ClusterCount++
			}
		}
	}
	p.stats.Duration = time.Since(start)
}
