package hypergraph

import (
	"math"
	"testing"

	errs "github.com/matzehuels/hyperpipe/pkg/errors"
)

func TestNewNode_InsertionOrder(t *testing.T) {
	g := New()
	a := g.NewNode("a", 1)
	b := g.NewNode("b", 2)
	c := g.NewNode("c", 3)

	nodes := g.Nodes()
	if len(nodes) != 3 || nodes[0] != a || nodes[1] != b || nodes[2] != c {
		t.Fatalf("Nodes() = %v, want [a b c]", nodes)
	}
	if g.TotalWeight() != 6 {
		t.Errorf("TotalWeight() = %v, want 6", g.TotalWeight())
	}
}

func TestIdentity_EqualValuesStayDistinct(t *testing.T) {
	g := New()
	a1 := g.NewNode("a", 1)
	a2 := g.NewNode("a", 1)

	if g.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", g.Len())
	}
	e, err := g.Connect(a1, []*Node{a2, a2}, 1)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if e.Fanout() != 1 {
		t.Errorf("Fanout() = %d, want 1 (duplicate sink suppressed)", e.Fanout())
	}
	if len(a2.Inputs()) != 1 {
		t.Errorf("len(a2.Inputs()) = %d, want 1", len(a2.Inputs()))
	}
}

func TestConnect_Registers(t *testing.T) {
	g := New()
	a := g.NewNode("a", 1)
	b := g.NewNode("b", 1)
	c := g.NewNode("c", 1)

	e, err := g.Connect(a, []*Node{b, c}, 2)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if e.Source() != a {
		t.Errorf("Source() = %v, want a", e.Source())
	}
	if len(a.Outputs()) != 1 || a.Outputs()[0] != e {
		t.Errorf("a.Outputs() = %v, want [e]", a.Outputs())
	}
	for _, n := range []*Node{b, c} {
		if len(n.Inputs()) != 1 || n.Inputs()[0] != e {
			t.Errorf("%v.Inputs() = %v, want [e]", n, n.Inputs())
		}
	}

	if got := g.Inputs(); len(got) != 1 || got[0] != a {
		t.Errorf("Inputs() = %v, want [a]", got)
	}
	if got := g.Outputs(); len(got) != 2 {
		t.Errorf("Outputs() = %v, want [b c]", got)
	}
	if got := g.Edges(); len(got) != 1 {
		t.Errorf("Edges() = %v, want 1 edge", got)
	}
}

func TestConnect_StructuralErrors(t *testing.T) {
	g := New()
	other := New()
	a := g.NewNode("a", 1)
	b := g.NewNode("b", 1)
	foreign := other.NewNode("x", 1)
	removed := g.NewNode("r", 1)
	g.RemoveNode(removed)

	tests := []struct {
		name   string
		source *Node
		sinks  []*Node
	}{
		{"nil source", nil, []*Node{b}},
		{"nil sink", a, []*Node{nil}},
		{"no sinks", a, nil},
		{"foreign sink", a, []*Node{foreign}},
		{"foreign source", foreign, []*Node{a}},
		{"removed sink", a, []*Node{removed}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.Connect(tt.source, tt.sinks, 1)
			if !errs.Is(err, errs.ErrCodeStructural) {
				t.Errorf("Connect() error = %v, want %s", err, errs.ErrCodeStructural)
			}
		})
	}
	if len(a.Outputs()) != 0 {
		t.Errorf("failed Connect left outputs on a: %v", a.Outputs())
	}
}

func TestAddRemoveNode(t *testing.T) {
	g := New()
	a := g.NewNode("a", 1)

	if !g.RemoveNode(a) {
		t.Fatal("RemoveNode(a) = false, want true")
	}
	if g.Contains(a) {
		t.Error("Contains(a) after remove = true")
	}
	if g.RemoveNode(a) {
		t.Error("second RemoveNode(a) = true, want false")
	}
	if err := g.AddNode(a); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if !g.Contains(a) {
		t.Error("Contains(a) after re-add = false")
	}
	if err := g.AddNode(nil); !errs.Is(err, errs.ErrCodeStructural) {
		t.Errorf("AddNode(nil) = %v, want structural error", err)
	}
	if err := g.AddNode(New().NewNode("x", 1)); !errs.Is(err, errs.ErrCodeStructural) {
		t.Errorf("AddNode(foreign) = %v, want structural error", err)
	}
}

func TestRemoveSinkReplaceSource(t *testing.T) {
	g := New()
	a := g.NewNode("a", 1)
	b := g.NewNode("b", 1)
	c := g.NewNode("c", 1)
	e, _ := g.Connect(a, []*Node{b, c}, 1)

	g.RemoveSink(e, b)
	if e.HasSink(b) || len(b.Inputs()) != 0 {
		t.Errorf("b still attached after RemoveSink: sinks=%v inputs=%v", e.Sinks(), b.Inputs())
	}

	g.ReplaceSource(e, b)
	if e.Source() != b || len(a.Outputs()) != 0 || len(b.Outputs()) != 1 {
		t.Errorf("ReplaceSource: source=%v a.out=%v b.out=%v", e.Source(), a.Outputs(), b.Outputs())
	}
}

func TestBandwidth_CountsDistinctEdges(t *testing.T) {
	g := New()
	a := g.NewNode("a", 1)
	b := g.NewNode("b", 1)
	c := g.NewNode("c", 1)
	_, _ = g.Connect(a, []*Node{b}, 2)
	_, _ = g.Connect(b, []*Node{c}, 3)
	_, _ = g.Connect(b, []*Node{b}, 5) // self loop counted once

	if got := b.Bandwidth(); got != 10 {
		t.Errorf("b.Bandwidth() = %v, want 10", got)
	}
	if got := a.Bandwidth(); got != 2 {
		t.Errorf("a.Bandwidth() = %v, want 2", got)
	}
}

func TestPredecessors(t *testing.T) {
	g := New()
	a := g.NewNode("a", 1)
	b := g.NewNode("b", 1)
	c := g.NewNode("c", 1)
	_, _ = g.Connect(a, []*Node{c}, 1)
	_, _ = g.Connect(a, []*Node{c}, 1)
	_, _ = g.Connect(b, []*Node{c}, 1)

	preds := c.Predecessors()
	if len(preds) != 2 || preds[0] != a || preds[1] != b {
		t.Errorf("Predecessors() = %v, want [a b]", preds)
	}
}

func TestWeights_RejectNegativeAndNonFinite(t *testing.T) {
	bad := []struct {
		name string
		w    float64
	}{
		{"negative", -5},
		{"NaN", math.NaN()},
		{"+Inf", math.Inf(1)},
		{"-Inf", math.Inf(-1)},
	}
	for _, tt := range bad {
		t.Run("node "+tt.name, func(t *testing.T) {
			g := New()
			n, err := g.CreateNode("x", tt.w)
			if !errs.Is(err, errs.ErrCodeStructural) {
				t.Errorf("CreateNode(%v) error = %v, want %s", tt.w, err, errs.ErrCodeStructural)
			}
			if n != nil || g.Len() != 0 {
				t.Errorf("CreateNode(%v) added a node", tt.w)
			}

			g.NewNode("unchecked", tt.w)
			if err := g.Validate(); !errs.Is(err, errs.ErrCodeStructural) {
				t.Errorf("Validate() error = %v, want %s", err, errs.ErrCodeStructural)
			}
		})
		t.Run("edge "+tt.name, func(t *testing.T) {
			g := New()
			a := g.NewNode("a", 1)
			b := g.NewNode("b", 1)
			if _, err := g.Connect(a, []*Node{b}, tt.w); !errs.Is(err, errs.ErrCodeStructural) {
				t.Errorf("Connect(weight %v) error = %v, want %s", tt.w, err, errs.ErrCodeStructural)
			}
			if len(a.Outputs()) != 0 || len(b.Inputs()) != 0 {
				t.Error("rejected edge was registered")
			}
		})
	}

	g := New()
	a, err := g.CreateNode("a", 0)
	if err != nil {
		t.Fatalf("CreateNode(0): %v", err)
	}
	b, _ := g.CreateNode("b", 2.5)
	if _, err := g.Connect(a, []*Node{b}, 0); err != nil {
		t.Errorf("Connect(weight 0): %v", err)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}
