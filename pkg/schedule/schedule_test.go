package schedule

import (
	"math"
	"math/rand"
	"slices"
	"testing"

	errs "github.com/matzehuels/hyperpipe/pkg/errors"
	"github.com/matzehuels/hyperpipe/pkg/hypergraph"
)

func connect(t *testing.T, g *hypergraph.Graph, w float64, src *hypergraph.Node, sinks ...*hypergraph.Node) *hypergraph.Edge {
	t.Helper()
	e, err := g.Connect(src, sinks, w)
	if err != nil {
		t.Fatalf("Connect(%v, %v): %v", src, sinks, err)
	}
	return e
}

func mustSchedule(t *testing.T, g *hypergraph.Graph) *Schedule {
	t.Helper()
	s, err := New(g)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Check(); err != nil {
		t.Fatalf("Check after New: %v", err)
	}
	return s
}

func levelSizes(s *Schedule) []int {
	sizes := make([]int, s.Top()+1)
	for i := range sizes {
		sizes[i] = len(s.NodesAtLevel(i))
	}
	return sizes
}

// randomDAG connects nodes only from lower to higher creation index.
func randomDAG(t *testing.T, seed int64, n, m int) *hypergraph.Graph {
	t.Helper()
	r := rand.New(rand.NewSource(seed))
	g := hypergraph.New()
	nodes := make([]*hypergraph.Node, n)
	for i := range nodes {
		nodes[i] = g.NewNode("n", float64(1+r.Intn(3)))
	}
	for i := 0; i < m; i++ {
		from := r.Intn(n - 1)
		sinks := []*hypergraph.Node{nodes[from+1+r.Intn(n-from-1)]}
		if r.Intn(2) == 0 {
			sinks = append(sinks, nodes[from+1+r.Intn(n-from-1)])
		}
		connect(t, g, float64(r.Intn(3)), nodes[from], sinks...)
	}
	return g
}

func TestNew_Levels(t *testing.T) {
	g := hypergraph.New()
	a := g.NewNode("a", 1)
	b := g.NewNode("b", 1)
	c := g.NewNode("c", 1)
	connect(t, g, 1, a, b)
	connect(t, g, 1, b, c)

	s := mustSchedule(t, g)
	if s.Top() != 3 {
		t.Fatalf("Top() = %d, want 3", s.Top())
	}
	for i, n := range []*hypergraph.Node{a, b, c} {
		if n.Level != i+1 || !slices.Equal(s.NodesAtLevel(i+1), []*hypergraph.Node{n}) {
			t.Errorf("level %d = %v, want [%v]", i+1, s.NodesAtLevel(i+1), n)
		}
	}
	if s.NodesAtLevel(0) != nil {
		t.Error("level 0 should be empty")
	}
	if s.Len() != 3 || s.TotalWeight() != 3 {
		t.Errorf("Len()=%d TotalWeight()=%v, want 3 and 3", s.Len(), s.TotalWeight())
	}
}

func TestNew_Degenerate(t *testing.T) {
	s := mustSchedule(t, hypergraph.New())
	if s.Top() != 1 || s.Len() != 0 {
		t.Errorf("empty graph: Top()=%d Len()=%d, want 1 and 0", s.Top(), s.Len())
	}
	if s.Compress(1) {
		t.Error("Compress on empty schedule reported a change")
	}
	if err := s.Pack(1, 1); err != nil {
		t.Errorf("Pack on empty schedule: %v", err)
	}

	g := hypergraph.New()
	a := g.NewNode("a", 4)
	s = mustSchedule(t, g)
	if s.Top() != 1 || a.Level != 1 {
		t.Errorf("single node: Top()=%d level=%d, want 1 and 1", s.Top(), a.Level)
	}
	if got, err := s.Merge(a, 10, 10); got != nil || err != nil {
		t.Errorf("Merge on level 1 = %v, %v, want nil, nil", got, err)
	}
}

func TestNew_RejectsCycles(t *testing.T) {
	g := hypergraph.New()
	a := g.NewNode("a", 1)
	b := g.NewNode("b", 1)
	connect(t, g, 1, a, b)
	connect(t, g, 1, b, a)

	if _, err := New(g); !errs.Is(err, errs.ErrCodeCycle) {
		t.Errorf("New() error = %v, want %s", err, errs.ErrCodeCycle)
	}
}

func TestMerge_WeightCapLeavesScheduleUnchanged(t *testing.T) {
	g := hypergraph.New()
	a := g.NewNode("a", 1)
	b := g.NewNode("b", 1)
	c := g.NewNode("c", 1)
	connect(t, g, 1, a, c)
	connect(t, g, 1, b, c)
	s := mustSchedule(t, g)
	before := s.Levels()

	got, err := s.Merge(c, 2.5, 10)
	if err != nil || got != nil {
		t.Fatalf("Merge() = %v, %v, want nil, nil", got, err)
	}
	after := s.Levels()
	for i := range before {
		if !slices.Equal(before[i], after[i]) {
			t.Errorf("level %d changed: %v -> %v", i, before[i], after[i])
		}
	}
	if g.Len() != 3 {
		t.Errorf("graph has %d nodes, want 3", g.Len())
	}
}

func TestMerge_Commits(t *testing.T) {
	g := hypergraph.New()
	a := g.NewNode("a", 1)
	b := g.NewNode("b", 1)
	c := g.NewNode("c", 1)
	d := g.NewNode("d", 1)
	connect(t, g, 1, a, c)
	connect(t, g, 1, b, c)
	connect(t, g, 1, c, d)
	s := mustSchedule(t, g)

	cluster, err := s.Merge(c, 3, 10)
	if err != nil || cluster == nil {
		t.Fatalf("Merge() = %v, %v, want cluster", cluster, err)
	}
	if cluster.Weight != 3 || cluster.Level != 1 {
		t.Errorf("cluster weight=%v level=%d, want 3 and 1", cluster.Weight, cluster.Level)
	}
	if got := s.NodesAtLevel(1); !slices.Equal(got, []*hypergraph.Node{cluster}) {
		t.Errorf("level 1 = %v, want [cluster]", got)
	}
	if s.NodesAtLevel(2) != nil {
		t.Errorf("level 2 = %v, want empty", s.NodesAtLevel(2))
	}
	if err := s.Check(); err != nil {
		t.Fatalf("Check after merge: %v", err)
	}

	if !s.Compress(2) {
		t.Fatal("Compress(2) = false, want d to move")
	}
	if d.Level != 2 || s.Top() != 2 {
		t.Errorf("d level=%d top=%d, want 2 and 2", d.Level, s.Top())
	}
	if err := s.Check(); err != nil {
		t.Fatalf("Check after compress: %v", err)
	}
}

func TestMerge_BandwidthCap(t *testing.T) {
	g := hypergraph.New()
	a := g.NewNode("a", 1)
	c := g.NewNode("c", 1)
	d := g.NewNode("d", 1)
	connect(t, g, 5, a, c) // internal once a and c merge
	connect(t, g, 1, c, d)

	s := mustSchedule(t, g)
	if got, _ := s.Merge(c, 10, 0.5); got != nil {
		t.Fatalf("Merge() under bandwidth cap 0.5 = %v, want nil", got)
	}
	got, err := s.Merge(c, 10, 1)
	if err != nil || got == nil {
		t.Fatalf("Merge() = %v, %v, want cluster (internal edge excluded)", got, err)
	}
	if err := s.Check(); err != nil {
		t.Fatalf("Check: %v", err)
	}
}

func TestMerge_NoPredecessorOnLevelBelow(t *testing.T) {
	// c is lifted to level 4 while its only input stays on level 2
	g := hypergraph.New()
	a := g.NewNode("a", 1)
	b := g.NewNode("b", 1)
	c := g.NewNode("c", 1)
	connect(t, g, 0, a, b)
	connect(t, g, 0, b, c)
	s := mustSchedule(t, g)

	s.remove(c)
	c.Level = 4
	s.insert(c)
	if err := s.Check(); err != nil {
		t.Fatalf("Check: %v", err)
	}
	if got, err := s.Merge(c, 10, 10); got != nil || err != nil {
		t.Errorf("Merge() = %v, %v, want nil, nil", got, err)
	}
}

func TestMerge_UnscheduledNode(t *testing.T) {
	g := hypergraph.New()
	g.NewNode("a", 1)
	s := mustSchedule(t, g)

	stray := g.NewNode("stray", 1)
	stray.Level = 1
	if _, err := s.Merge(stray, 10, 10); !errs.Is(err, errs.ErrCodeStructural) {
		t.Errorf("Merge(unscheduled) error = %v, want %s", err, errs.ErrCodeStructural)
	}
}

func TestCompress_MovesToLowestLegalLevel(t *testing.T) {
	// chain a1..a5 on levels 1..5; x(1) -> y -> a5, with y forced up to 4
	g := hypergraph.New()
	chain := make([]*hypergraph.Node, 5)
	for i := range chain {
		chain[i] = g.NewNode("a", 1)
		if i > 0 {
			connect(t, g, 1, chain[i-1], chain[i])
		}
	}
	x := g.NewNode("x", 1)
	y := g.NewNode("y", 1)
	connect(t, g, 1, x, y)
	connect(t, g, 1, y, chain[4])
	s := mustSchedule(t, g)

	s.remove(y)
	y.Level = 4
	s.insert(y)
	if err := s.Check(); err != nil {
		t.Fatalf("Check with y on level 4: %v", err)
	}

	if !s.Compress(4) {
		t.Fatal("Compress(4) = false, want y to move")
	}
	if y.Level != 2 {
		t.Errorf("y level = %d, want 2", y.Level)
	}
	for _, n := range s.NodesAtLevel(4) {
		highest := 0
		for _, e := range n.Inputs() {
			highest = max(highest, e.Source().Level)
		}
		if highest <= 2 {
			t.Errorf("%v on level 4 is still compressible", n)
		}
	}
	if s.Compress(4) {
		t.Error("second Compress(4) = true, want false")
	}
	if err := s.Check(); err != nil {
		t.Fatalf("Check: %v", err)
	}
}

func TestCompress_Idempotent(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		g := randomDAG(t, seed, 25, 40)
		s := mustSchedule(t, g)
		for level := s.Top(); level >= 2; level-- {
			for _, n := range s.NodesAtLevel(level) {
				if s.Contains(n) {
					if _, err := s.Merge(n, 6, 8); err != nil {
						t.Fatalf("seed %d: Merge: %v", seed, err)
					}
				}
			}
		}
		s.Compress(1)
		if s.Compress(1) {
			t.Errorf("seed %d: second Compress reported a change", seed)
		}
		if err := s.Check(); err != nil {
			t.Errorf("seed %d: Check: %v", seed, err)
		}
	}
}

func TestPack_ReducesLevels(t *testing.T) {
	// source feeds four independent consumers on level 2
	g := hypergraph.New()
	src := g.NewNode("src", 1)
	var consumers []*hypergraph.Node
	for range 4 {
		consumers = append(consumers, g.NewNode("k", 1))
	}
	connect(t, g, 1, src, consumers...)
	s := mustSchedule(t, g)

	if err := s.Pack(2, 10); err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if got := levelSizes(s); !slices.Equal(got, []int{0, 1, 2}) {
		t.Errorf("level sizes = %v, want [0 1 2]", got)
	}
	for _, bin := range s.NodesAtLevel(2) {
		if bin.Weight > 2 {
			t.Errorf("bin %v weight %v exceeds cap", bin, bin.Weight)
		}
	}
	if err := s.Check(); err != nil {
		t.Fatalf("Check: %v", err)
	}
}

func TestSchedule_RandomOperationsKeepInvariants(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		g := randomDAG(t, seed, 30, 50)
		s := mustSchedule(t, g)

		for level := 3; level <= s.Top(); level++ {
			for _, n := range s.NodesAtLevel(level) {
				if !s.Contains(n) {
					continue
				}
				if _, err := s.Merge(n, 5, 6); err != nil {
					t.Fatalf("seed %d: Merge: %v", seed, err)
				}
				if err := s.Check(); err != nil {
					t.Fatalf("seed %d: Check after merge: %v", seed, err)
				}
			}
			s.Compress(level)
			if err := s.Check(); err != nil {
				t.Fatalf("seed %d: Check after compress: %v", seed, err)
			}
		}
		if err := s.Pack(5, 6); err != nil {
			t.Fatalf("seed %d: Pack: %v", seed, err)
		}
		if err := s.Check(); err != nil {
			t.Fatalf("seed %d: Check after pack: %v", seed, err)
		}
		for _, e := range g.Edges() {
			for _, sink := range e.Sinks() {
				if e.Source().Level >= sink.Level {
					t.Errorf("seed %d: edge %v not monotonic", seed, e)
				}
			}
		}
	}
}

func TestCheck_DetectsViolations(t *testing.T) {
	g := hypergraph.New()
	a := g.NewNode("a", 1)
	b := g.NewNode("b", 1)
	connect(t, g, 1, a, b)
	s := mustSchedule(t, g)

	s.remove(b)
	b.Level = 1
	s.insert(b)
	if err := s.Check(); !errs.Is(err, errs.ErrCodeInternal) {
		t.Errorf("Check() with a->b on one level = %v, want internal error", err)
	}

	s.remove(b)
	b.Level = 2
	s.insert(b)
	b.Weight = 3
	if err := s.Check(); err == nil {
		t.Error("Check() with changed weight = nil, want error")
	}
	b.Weight = 1

	g.NewNode("orphan", 1)
	if err := s.Check(); err == nil {
		t.Error("Check() with unscheduled graph node = nil, want error")
	}
}

func TestNew_RejectsNonFiniteWeights(t *testing.T) {
	for _, w := range []float64{math.NaN(), math.Inf(1), -5} {
		g := hypergraph.New()
		a := g.NewNode("a", 100)
		b := g.NewNode("b", w)
		connect(t, g, 1, a, b)
		if _, err := New(g); !errs.Is(err, errs.ErrCodeStructural) {
			t.Errorf("New() with weight %v: error = %v, want %s", w, err, errs.ErrCodeStructural)
		}
	}
}

func TestMerge_NaNWeightNeverFitsCap(t *testing.T) {
	g := hypergraph.New()
	a := g.NewNode("a", 100)
	b := g.NewNode("b", 1)
	connect(t, g, 1, a, b)
	s := mustSchedule(t, g)

	b.Weight = math.NaN()
	cluster, err := s.Merge(b, 1, 1)
	if err != nil || cluster != nil {
		t.Errorf("Merge() = %v, %v, want no merge", cluster, err)
	}
	if err := s.Check(); !errs.Is(err, errs.ErrCodeInternal) {
		t.Errorf("Check() with NaN weight = %v, want internal error", err)
	}
}

func TestMerge_UnscheduledPredecessorLeavesScheduleUnchanged(t *testing.T) {
	g := hypergraph.New()
	a := g.NewNode("a", 1)
	b := g.NewNode("b", 1)
	connect(t, g, 1, a, b)
	s := mustSchedule(t, g)

	s.remove(a)
	if _, err := s.Merge(b, 10, 10); !errs.Is(err, errs.ErrCodeStructural) {
		t.Fatalf("Merge() error = %v, want %s", err, errs.ErrCodeStructural)
	}
	if !s.Contains(b) || !g.Contains(a) || !g.Contains(b) || b.InCluster != nil {
		t.Error("failed Merge changed the schedule or the graph")
	}
}
