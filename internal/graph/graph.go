package graph

import (
	"fmt"
	"sort"

	"epigraph/internal/params"
	"epigraph/internal/secihurd"
)

// DampingEvent is a contact reduction scheduled for a node, applied by
// the graph simulation once its effective time is reached. Applying an
// event twice has no further effect.
type DampingEvent struct {
	Time    float64
	Setting int
	Value   params.Matrix

	applied bool
}

// Node owns one local simulation and the residence interval travellers
// spend at this node before returning home.
type Node struct {
	ID            int
	Sim           *secihurd.Simulation
	StayDuration  float64
	DampingEvents []DampingEvent
}

// AddDampingEvent schedules a uniform contact damping of the given
// value for contact setting 0 at time t.
func (n *Node) AddDampingEvent(value float64, t float64) {
	size := n.Sim.Model().NumGroups()
	n.DampingEvents = append(n.DampingEvents, DampingEvent{
		Time:  t,
		Value: params.NewConstantMatrix(size, value),
	})
}

// Edge connects an ordered pair of nodes. Coefficients give the
// fraction of each (age, compartment) cell migrating per tick.
type Edge struct {
	Start        int
	End          int
	Coefficients []float64

	travellers []*Traveller
}

// TravellerStatus tracks the migration state machine.
type TravellerStatus int

const (
	TravellerCreated TravellerStatus = iota
	TravellerAtDestination
	TravellerReturned
)

// Traveller is a sub-population temporarily present at a non-home node.
// Its state is kept in exact units so that returning it restores the
// origin's mass bit for bit (modulo its own dynamics at the destination).
type Traveller struct {
	Origin        int
	State         []float64
	DepartureTime float64
	Status        TravellerStatus
}

// Graph holds nodes in insertion order and edges sorted
// lexicographically by (start, end).
type Graph struct {
	nodes []*Node
	edges []*Edge
}

func New() *Graph {
	return &Graph{}
}

// AddNode appends a node and returns it. IDs are assigned in insertion
// order.
func (g *Graph) AddNode(sim *secihurd.Simulation, stayDuration float64) *Node {
	node := &Node{
		ID:           len(g.nodes),
		Sim:          sim,
		StayDuration: stayDuration,
	}
	g.nodes = append(g.nodes, node)
	return node
}

// AddEdge inserts an edge keeping the edge list sorted by (start, end).
// An edge with the same key replaces the existing one; multi-edges are
// not allowed.
func (g *Graph) AddEdge(start, end int, coefficients []float64) (*Edge, error) {
	if start < 0 || start >= len(g.nodes) || end < 0 || end >= len(g.nodes) {
		return nil, fmt.Errorf("edge (%d, %d): node index out of range", start, end)
	}
	if start == end {
		return nil, fmt.Errorf("edge (%d, %d): self loops are not allowed", start, end)
	}
	want := g.nodes[start].Sim.Result().NumElements()
	if len(coefficients) != want {
		return nil, fmt.Errorf("edge (%d, %d): %d coefficients, want %d", start, end, len(coefficients), want)
	}
	for i, k := range coefficients {
		if k < 0 || k > 1 {
			return nil, fmt.Errorf("edge (%d, %d): coefficient %d = %g outside [0, 1]", start, end, i, k)
		}
	}

	coeffs := make([]float64, len(coefficients))
	copy(coeffs, coefficients)
	edge := &Edge{Start: start, End: end, Coefficients: coeffs}

	pos := sort.Search(len(g.edges), func(i int) bool {
		e := g.edges[i]
		if e.Start != start {
			return e.Start >= start
		}
		return e.End >= end
	})
	if pos < len(g.edges) && g.edges[pos].Start == start && g.edges[pos].End == end {
		g.edges[pos] = edge
		return edge, nil
	}
	g.edges = append(g.edges, nil)
	copy(g.edges[pos+1:], g.edges[pos:])
	g.edges[pos] = edge
	return edge, nil
}

func (g *Graph) NumNodes() int {
	return len(g.nodes)
}

func (g *Graph) Node(i int) *Node {
	return g.nodes[i]
}

func (g *Graph) Nodes() []*Node {
	return g.nodes
}

func (g *Graph) Edges() []*Edge {
	return g.edges
}

// OutEdges returns the contiguous run of edges starting at the given
// node, found by binary search on the sorted edge list.
func (g *Graph) OutEdges(start int) []*Edge {
	lo := sort.Search(len(g.edges), func(i int) bool {
		return g.edges[i].Start >= start
	})
	hi := sort.Search(len(g.edges), func(i int) bool {
		return g.edges[i].Start > start
	})
	return g.edges[lo:hi]
}
