package graph

import (
	"testing"

	"epigraph/internal/model"
	"epigraph/internal/secihurd"
)

func simpleNodeSim() *secihurd.Simulation {
	m := secihurd.New(1)
	m.Populations.Set(0, model.Susceptible, 1000)
	return secihurd.NewSimulation(m, 0, 0.1)
}

func uniformCoefficients(k float64) []float64 {
	coeffs := make([]float64, model.CompartmentCount)
	for i := range coeffs {
		coeffs[i] = k
	}
	return coeffs
}

func TestNodesKeepInsertionOrder(t *testing.T) {
	g := New()
	a := g.AddNode(simpleNodeSim(), 0.5)
	b := g.AddNode(simpleNodeSim(), 0.5)
	if a.ID != 0 || b.ID != 1 {
		t.Fatalf("node ids %d, %d, want 0, 1", a.ID, b.ID)
	}
	if g.NumNodes() != 2 {
		t.Fatalf("num nodes = %d, want 2", g.NumNodes())
	}
}

func TestEdgesSortedLexicographically(t *testing.T) {
	g := New()
	for i := 0; i < 3; i++ {
		g.AddNode(simpleNodeSim(), 0.5)
	}
	coeffs := uniformCoefficients(0.1)
	mustAdd := func(start, end int) {
		t.Helper()
		if _, err := g.AddEdge(start, end, coeffs); err != nil {
			t.Fatalf("add edge (%d, %d): %v", start, end, err)
		}
	}
	mustAdd(2, 0)
	mustAdd(0, 2)
	mustAdd(1, 0)
	mustAdd(0, 1)
	mustAdd(2, 1)

	want := [][2]int{{0, 1}, {0, 2}, {1, 0}, {2, 0}, {2, 1}}
	edges := g.Edges()
	if len(edges) != len(want) {
		t.Fatalf("num edges = %d, want %d", len(edges), len(want))
	}
	for i, e := range edges {
		if e.Start != want[i][0] || e.End != want[i][1] {
			t.Fatalf("edge %d = (%d, %d), want (%d, %d)", i, e.Start, e.End, want[i][0], want[i][1])
		}
	}
}

func TestAddEdgeReplacesDuplicate(t *testing.T) {
	g := New()
	g.AddNode(simpleNodeSim(), 0.5)
	g.AddNode(simpleNodeSim(), 0.5)

	if _, err := g.AddEdge(0, 1, uniformCoefficients(0.1)); err != nil {
		t.Fatalf("add edge: %v", err)
	}
	if _, err := g.AddEdge(0, 1, uniformCoefficients(0.2)); err != nil {
		t.Fatalf("replace edge: %v", err)
	}

	if len(g.Edges()) != 1 {
		t.Fatalf("num edges = %d, want 1 after replacement", len(g.Edges()))
	}
	if g.Edges()[0].Coefficients[0] != 0.2 {
		t.Fatal("replacement must keep the new coefficients")
	}
}

func TestOutEdgesRangeLookup(t *testing.T) {
	g := New()
	for i := 0; i < 4; i++ {
		g.AddNode(simpleNodeSim(), 0.5)
	}
	coeffs := uniformCoefficients(0.1)
	for _, pair := range [][2]int{{0, 1}, {1, 0}, {1, 2}, {1, 3}, {3, 0}} {
		if _, err := g.AddEdge(pair[0], pair[1], coeffs); err != nil {
			t.Fatalf("add edge: %v", err)
		}
	}

	out := g.OutEdges(1)
	if len(out) != 3 {
		t.Fatalf("out edges of 1 = %d, want 3", len(out))
	}
	for _, e := range out {
		if e.Start != 1 {
			t.Fatalf("out edge starts at %d, want 1", e.Start)
		}
	}
	if len(g.OutEdges(2)) != 0 {
		t.Fatal("node 2 has no out edges")
	}
}

func TestAddEdgeValidation(t *testing.T) {
	g := New()
	g.AddNode(simpleNodeSim(), 0.5)
	g.AddNode(simpleNodeSim(), 0.5)

	if _, err := g.AddEdge(0, 5, uniformCoefficients(0.1)); err == nil {
		t.Error("expected error for out-of-range node")
	}
	if _, err := g.AddEdge(0, 0, uniformCoefficients(0.1)); err == nil {
		t.Error("expected error for self loop")
	}
	if _, err := g.AddEdge(0, 1, []float64{0.1}); err == nil {
		t.Error("expected error for wrong coefficient count")
	}
	if _, err := g.AddEdge(0, 1, uniformCoefficients(1.5)); err == nil {
		t.Error("expected error for coefficient outside [0, 1]")
	}
}
