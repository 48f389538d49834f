package graph

import (
	"fmt"
	"math"

	"epigraph/internal/ode"
	"epigraph/internal/secihurd"
	"epigraph/internal/timeseries"
)

// DefaultMigrationTick is the default spacing of discrete migration
// events, in days.
const DefaultMigrationTick = 0.5

// NodeFunc advances one node's local dynamics from t to t+dt.
// EdgeFunc runs the migration of one edge after all nodes advanced.
// The defaults implement the SECIHURD migration scheme; both can be
// replaced for experiments.
type (
	NodeFunc func(t, dt float64, n *Node) error
	EdgeFunc func(t, dt float64, e *Edge, start, end *Node) error
)

// Simulation advances a graph of coupled node simulations: continuous
// dynamics inside each node, discrete migration between nodes at a
// fixed tick.
type Simulation struct {
	graph *Graph
	t     float64
	dt    float64

	advanceNode NodeFunc
	applyEdge   EdgeFunc
}

func NewSimulation(g *Graph, t0, dt float64) *Simulation {
	s := &Simulation{graph: g, t: t0, dt: dt}
	s.advanceNode = s.defaultAdvanceNode
	s.applyEdge = s.defaultApplyEdge
	return s
}

func (s *Simulation) Graph() *Graph {
	return s.graph
}

func (s *Simulation) Time() float64 {
	return s.t
}

// SetNodeFunc and SetEdgeFunc replace the per-tick behaviours.
func (s *Simulation) SetNodeFunc(f NodeFunc) { s.advanceNode = f }
func (s *Simulation) SetEdgeFunc(f EdgeFunc) { s.applyEdge = f }

// Advance runs migration ticks until tmax. Within a tick all node
// integrations complete before any departure, and all departures before
// any destination integration. Returns are made before the departures:
// travellers whose stay has elapsed by the end of the tick go home first,
// so a traveller integrated at its destination in this tick returns no
// earlier than the next tick.
func (s *Simulation) Advance(tmax float64) error {
	for s.t < tmax-1e-12 {
		tNext := math.Min(s.t+s.dt, tmax)
		dt := tNext - s.t

		for _, n := range s.graph.Nodes() {
			if err := s.advanceNode(s.t, dt, n); err != nil {
				return fmt.Errorf("node %d: %w", n.ID, err)
			}
		}

		s.returnTravellers(tNext)

		departed := make([][]*Traveller, 0, len(s.graph.Edges()))
		for _, e := range s.graph.Edges() {
			start := s.graph.Node(e.Start)
			end := s.graph.Node(e.End)
			if err := s.applyEdge(s.t, dt, e, start, end); err != nil {
				return fmt.Errorf("edge (%d, %d): %w", e.Start, e.End, err)
			}
			fresh := make([]*Traveller, 0, 1)
			for _, tr := range e.travellers {
				if tr.Status == TravellerCreated {
					fresh = append(fresh, tr)
				}
			}
			departed = append(departed, fresh)
		}

		for i, e := range s.graph.Edges() {
			end := s.graph.Node(e.End)
			for _, tr := range departed[i] {
				if err := integrateTraveller(tr, end); err != nil {
					return fmt.Errorf("edge (%d, %d) traveller: %w", e.Start, e.End, err)
				}
				tr.Status = TravellerAtDestination
			}
		}

		s.applyDampingEvents(tNext)
		s.t = tNext
	}
	return nil
}

func (s *Simulation) defaultAdvanceNode(t, dt float64, n *Node) error {
	return n.Sim.Advance(t + dt)
}

// defaultApplyEdge departs a sub-population along the edge: the edge
// coefficients pick the migrating fraction of each cell and the model's
// migration factors dampen screened compartments.
func (s *Simulation) defaultApplyEdge(t, dt float64, e *Edge, start, end *Node) error {
	state := start.Sim.CurrentState()
	factors := secihurd.GetMigrationFactors(start.Sim, t+dt, state)

	migrated := make([]float64, len(state))
	for i := range state {
		migrated[i] = e.Coefficients[i] * state[i] * factors[i]
		state[i] -= migrated[i]
	}
	start.Sim.SyncPopulations()

	e.travellers = append(e.travellers, &Traveller{
		Origin:        e.Start,
		State:         migrated,
		DepartureTime: t + dt,
		Status:        TravellerCreated,
	})
	return nil
}

// integrateTraveller steps the traveller's sub-population through the
// destination's dynamics for the node's residence interval.
func integrateTraveller(tr *Traveller, dest *Node) error {
	if dest.StayDuration <= 0 {
		return nil
	}
	ts := timeseries.New(len(tr.State))
	ts.Append(tr.DepartureTime, tr.State)
	integrator := ode.NewCashKarp()
	destIntegrator := dest.Sim.Integrator()
	integrator.AbsTolerance = destIntegrator.AbsTolerance
	integrator.RelTolerance = destIntegrator.RelTolerance
	integrator.DtMin = destIntegrator.DtMin
	integrator.DtMax = destIntegrator.DtMax

	dt := dest.StayDuration
	if err := integrator.Integrate(dest.Sim.Model().Derivatives, ts, tr.DepartureTime+dest.StayDuration, &dt); err != nil {
		return err
	}
	copy(tr.State, ts.LastValue())
	return nil
}

// returnTravellers adds every traveller whose residence interval has
// elapsed back to its origin. Returning is bookkeeping only; no
// dynamics are re-run.
func (s *Simulation) returnTravellers(now float64) {
	for _, e := range s.graph.Edges() {
		dest := s.graph.Node(e.End)
		remaining := e.travellers[:0]
		for _, tr := range e.travellers {
			if tr.Status == TravellerAtDestination && now-tr.DepartureTime >= dest.StayDuration-1e-12 {
				origin := s.graph.Node(tr.Origin)
				state := origin.Sim.CurrentState()
				for i := range state {
					state[i] += tr.State[i]
				}
				origin.Sim.SyncPopulations()
				tr.Status = TravellerReturned
				continue
			}
			remaining = append(remaining, tr)
		}
		e.travellers = remaining
	}
}

// applyDampingEvents applies all scheduled damping events with
// effective time <= now. Events already applied are skipped, so
// re-evaluation is idempotent.
func (s *Simulation) applyDampingEvents(now float64) {
	for _, n := range s.graph.Nodes() {
		for i := range n.DampingEvents {
			ev := &n.DampingEvents[i]
			if ev.applied || ev.Time > now {
				continue
			}
			patterns := n.Sim.Model().Parameters.ContactPatterns
			if ev.Setting >= 0 && ev.Setting < len(patterns) {
				patterns[ev.Setting].AddDampingMatrix(ev.Value, ev.Time)
			}
			ev.applied = true
		}
	}
}

// Travellers exposes an edge's in-flight sub-populations, mainly for
// tests and mass accounting.
func (e *Edge) Travellers() []*Traveller {
	return e.travellers
}

// TotalPopulation sums every node's state plus all in-flight
// travellers.
func (s *Simulation) TotalPopulation() float64 {
	total := 0.0
	for _, n := range s.graph.Nodes() {
		for _, v := range n.Sim.CurrentState() {
			total += v
		}
	}
	for _, e := range s.graph.Edges() {
		for _, tr := range e.travellers {
			for _, v := range tr.State {
				total += v
			}
		}
	}
	return total
}
