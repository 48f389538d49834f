package graph

import (
	"math"
	"testing"

	"epigraph/internal/model"
	"epigraph/internal/secihurd"
)

// migrationModel is a single-group epidemic with mild dynamics used by
// the round-trip tests.
func migrationModel() *secihurd.Model {
	m := secihurd.New(1)
	p := m.Parameters

	p.IncubationTime[0].Value = 5.2
	p.InfectiousTimeMild[0].Value = 6
	p.SerialInterval[0].Value = 4.2
	p.InfectiousTimeAsymptomatic[0].Value = 6.2
	p.HospitalizedToHomeTime[0].Value = 12
	p.HomeToHospitalizedTime[0].Value = 5
	p.HospitalizedToICUTime[0].Value = 2
	p.ICUToHomeTime[0].Value = 8
	p.ICUToDeathTime[0].Value = 5

	p.InfectionProbabilityFromContact[0].Value = 0.05
	p.RelativeCarrierInfectability[0].Value = 1
	p.AsymptomaticCasesPerInfectious[0].Value = 0.09
	p.RiskOfInfectionFromSymptomatic[0].Value = 0.25
	p.MaxRiskOfInfectionFromSymptomatic[0].Value = 0.25
	p.HospitalizedCasesPerInfectious[0].Value = 0.2
	p.ICUCasesPerHospitalized[0].Value = 0.25
	p.DeathsPerICU[0].Value = 0.3

	p.ContactPatterns[0].Baseline.Set(0, 0, 10)

	m.Populations.Set(0, model.Exposed, 100)
	m.Populations.Set(0, model.Carrier, 50)
	m.Populations.Set(0, model.Infected, 50)
	m.Populations.Set(0, model.Hospitalized, 20)
	m.Populations.Set(0, model.ICU, 10)
	m.Populations.Set(0, model.Recovered, 10)
	m.Populations.SetDifferenceFromTotal(0, model.Susceptible, 10000)
	return m
}

// staticModel has people but no flows at all: every derivative is zero.
func staticModel() *secihurd.Model {
	m := secihurd.New(1)
	m.Populations.Set(0, model.Susceptible, 5000)
	m.Populations.Set(0, model.Recovered, 5000)
	return m
}

func uniform(k float64) []float64 {
	coeffs := make([]float64, model.CompartmentCount)
	for i := range coeffs {
		coeffs[i] = k
	}
	return coeffs
}

func TestSymmetricMigrationRoundTrip(t *testing.T) {
	g := New()
	g.AddNode(secihurd.NewSimulation(migrationModel(), 0, 0.1), 0.5)
	g.AddNode(secihurd.NewSimulation(migrationModel(), 0, 0.1), 0.5)
	if _, err := g.AddEdge(0, 1, uniform(0.1)); err != nil {
		t.Fatalf("add edge: %v", err)
	}
	if _, err := g.AddEdge(1, 0, uniform(0.1)); err != nil {
		t.Fatalf("add edge: %v", err)
	}

	sim := NewSimulation(g, 0, 0.5)
	if err := sim.Advance(5); err != nil {
		t.Fatalf("advance: %v", err)
	}

	a := g.Node(0).Sim.CurrentState()
	b := g.Node(1).Sim.CurrentState()
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-8 {
			t.Fatalf("element %d: node 0 = %v, node 1 = %v", i, a[i], b[i])
		}
	}
}

func TestMigrationConservesMassWithStaticDynamics(t *testing.T) {
	g := New()
	g.AddNode(secihurd.NewSimulation(staticModel(), 0, 0.1), 0.5)
	g.AddNode(secihurd.NewSimulation(staticModel(), 0, 0.1), 0.5)
	if _, err := g.AddEdge(0, 1, uniform(0.2)); err != nil {
		t.Fatalf("add edge: %v", err)
	}

	sim := NewSimulation(g, 0, 0.5)
	before := sim.TotalPopulation()
	for step := 0; step < 8; step++ {
		if err := sim.Advance(sim.Time() + 0.5); err != nil {
			t.Fatalf("advance: %v", err)
		}
		if got := sim.TotalPopulation(); got != before {
			t.Fatalf("total population %v after tick %d, want exactly %v", got, step+1, before)
		}
	}
}

func TestTravellersDepartAndReturn(t *testing.T) {
	g := New()
	g.AddNode(secihurd.NewSimulation(staticModel(), 0, 0.1), 0.5)
	g.AddNode(secihurd.NewSimulation(staticModel(), 0, 0.1), 0.5)
	if _, err := g.AddEdge(0, 1, uniform(0.2)); err != nil {
		t.Fatalf("add edge: %v", err)
	}
	edge := g.Edges()[0]

	sim := NewSimulation(g, 0, 0.5)
	if err := sim.Advance(0.5); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if len(edge.Travellers()) != 1 {
		t.Fatalf("travellers after first tick = %d, want 1", len(edge.Travellers()))
	}
	tr := edge.Travellers()[0]
	if tr.Status != TravellerAtDestination {
		t.Fatalf("traveller status = %v, want at destination", tr.Status)
	}
	if tr.Origin != 0 || tr.DepartureTime != 0.5 {
		t.Fatalf("traveller origin %d at %v, want 0 at 0.5", tr.Origin, tr.DepartureTime)
	}
	// 20% of a static node's 10000 people
	sumState := 0.0
	for _, v := range tr.State {
		sumState += v
	}
	if math.Abs(sumState-2000) > 1e-12 {
		t.Fatalf("traveller carries %v, want 2000", sumState)
	}

	if err := sim.Advance(1.0); err != nil {
		t.Fatalf("advance: %v", err)
	}
	// the first traveller returned, the second tick departed a new one
	if len(edge.Travellers()) != 1 {
		t.Fatalf("travellers after second tick = %d, want 1", len(edge.Travellers()))
	}
	if edge.Travellers()[0].DepartureTime != 1.0 {
		t.Fatalf("remaining traveller departed at %v, want 1.0", edge.Travellers()[0].DepartureTime)
	}
}

func TestMigrationFactorScreensInfected(t *testing.T) {
	m := migrationModel()
	m.Parameters.MaxRiskOfInfectionFromSymptomatic[0].Value = 0.5
	g := New()
	g.AddNode(secihurd.NewSimulation(m, 0, 0.1), 0)
	g.AddNode(secihurd.NewSimulation(migrationModel(), 0, 0.1), 0)
	if _, err := g.AddEdge(0, 1, uniform(0.1)); err != nil {
		t.Fatalf("add edge: %v", err)
	}
	edge := g.Edges()[0]

	sim := NewSimulation(g, 0, 0.5)
	if err := sim.Advance(0.5); err != nil {
		t.Fatalf("advance: %v", err)
	}
	tr := edge.Travellers()[0]

	infected := model.FlatIndex(0, model.Infected)
	susceptible := model.FlatIndex(0, model.Susceptible)
	// with ample tracing capacity the factor is risk/maxRisk = 0.5, so
	// proportionally fewer infected than susceptible travel
	stateAfter := g.Node(0).Sim.CurrentState()
	infectedShare := tr.State[infected] / (tr.State[infected] + stateAfter[infected])
	susceptibleShare := tr.State[susceptible] / (tr.State[susceptible] + stateAfter[susceptible])
	if infectedShare >= susceptibleShare {
		t.Fatalf("infected share %v, susceptible share %v: screening must reduce infected travel", infectedShare, susceptibleShare)
	}
}

func TestScheduledDampingEventsApplyOnceAtTheirTime(t *testing.T) {
	m := migrationModel()
	g := New()
	node := g.AddNode(secihurd.NewSimulation(m, 0, 0.1), 0)
	node.AddDampingEvent(0.7, 2.0)

	sim := NewSimulation(g, 0, 0.5)
	if err := sim.Advance(1.0); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if len(m.Parameters.ContactPatterns[0].Dampings) != 0 {
		t.Fatal("damping must not apply before its time")
	}

	if err := sim.Advance(3.0); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if len(m.Parameters.ContactPatterns[0].Dampings) != 1 {
		t.Fatalf("dampings = %d, want exactly 1", len(m.Parameters.ContactPatterns[0].Dampings))
	}

	if err := sim.Advance(4.0); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if len(m.Parameters.ContactPatterns[0].Dampings) != 1 {
		t.Fatal("re-evaluating a damping event must be idempotent")
	}
}
