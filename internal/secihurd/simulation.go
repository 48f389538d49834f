package secihurd

import (
	"fmt"

	"epigraph/internal/ode"
	"epigraph/internal/timeseries"
)

// KeepStepFunc is the sampling policy: it decides whether an accepted
// integrator step at time t is recorded in the result. The last step of
// every Advance call is always kept.
type KeepStepFunc func(t float64) bool

// Simulation advances one SECIHURD model through time, recording a time
// series of the flattened (age x compartment) state.
type Simulation struct {
	model      *Model
	integrator *ode.CashKarp
	result     *timeseries.TimeSeries
	dt         float64
	keep       KeepStepFunc
}

// NewSimulation creates a simulation starting at t0 with initial step
// size dt. The initial state is taken from the model's populations.
func NewSimulation(m *Model, t0, dt float64) *Simulation {
	result := timeseries.New(m.Populations.NumCells())
	result.Append(t0, m.Populations.Compartments())
	return &Simulation{
		model:      m,
		integrator: ode.NewCashKarp(),
		result:     result,
		dt:         dt,
	}
}

func (s *Simulation) Model() *Model {
	return s.model
}

func (s *Simulation) Integrator() *ode.CashKarp {
	return s.integrator
}

// SetKeepStep installs the sampling policy.
func (s *Simulation) SetKeepStep(keep KeepStepFunc) {
	s.keep = keep
}

// Result returns the recorded time series.
func (s *Simulation) Result() *timeseries.TimeSeries {
	return s.result
}

// CurrentState returns the live state row at the last recorded time.
// Mutations (migration bookkeeping between steps) are written back to
// the model's populations by the caller via SyncPopulations.
func (s *Simulation) CurrentState() []float64 {
	return s.result.LastValue()
}

// SyncPopulations copies the last recorded state into the model's
// population tensor so model capabilities observe the current state.
func (s *Simulation) SyncPopulations() {
	s.model.Populations.SetCompartments(s.result.LastValue())
}

// Advance integrates until the last recorded time reaches tTarget.
func (s *Simulation) Advance(tTarget float64) error {
	if s.result.LastTime() >= tTarget {
		return nil
	}
	var scratch *timeseries.TimeSeries
	target := s.result
	if s.keep != nil {
		scratch = timeseries.New(s.result.NumElements())
		scratch.Append(s.result.LastTime(), s.result.LastValue())
		target = scratch
	}
	if err := s.integrator.Integrate(s.model.Derivatives, target, tTarget, &s.dt); err != nil {
		return fmt.Errorf("advance to t = %g: %w", tTarget, err)
	}
	if scratch != nil {
		for i := 1; i < scratch.NumTimePoints(); i++ {
			if i == scratch.NumTimePoints()-1 || s.keep(scratch.Time(i)) {
				s.result.Append(scratch.Time(i), scratch.Value(i))
			}
		}
	}
	s.SyncPopulations()
	return nil
}

// Simulate runs a model from t0 to tmax with initial step dt and returns
// the recorded time series.
func Simulate(t0, tmax, dt float64, m *Model) (*timeseries.TimeSeries, error) {
	sim := NewSimulation(m, t0, dt)
	if err := sim.Advance(tmax); err != nil {
		return nil, err
	}
	return sim.Result(), nil
}
