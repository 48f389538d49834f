package secihurd

import (
	"math"
	"math/rand"

	"epigraph/internal/model"
	"epigraph/internal/params"
)

func attachRelativeNormal(u *params.UncertainValue, sigmaRel float64) {
	mean := u.Value
	if math.IsInf(mean, 0) || mean >= math.MaxFloat64/2 {
		// unbounded capacities stay deterministic
		return
	}
	u.SetDistribution(params.NormalDistribution{
		Mean:        mean,
		StandardDev: math.Abs(mean) * sigmaRel,
		Lower:       math.Max(0, mean*(1-3*sigmaRel)),
		Upper:       mean * (1 + 3*sigmaRel),
	})
}

// SetParamsDistributionsNormal attaches a truncated normal distribution
// to every numerical parameter and every initial population cell of the
// model. The mean is the current value, the standard deviation is
// sigmaRel relative to it, and the support is [max(0, mean*(1-3*sigmaRel)),
// mean*(1+3*sigmaRel)]. Values at or above half of math.MaxFloat64 (the
// unbounded capacities) get no distribution. t0 and tmax delimit the simulated window the
// sampled parameters will be used in.
func SetParamsDistributionsNormal(m *Model, t0, tmax, sigmaRel float64) {
	_ = t0
	_ = tmax
	p := m.Parameters
	for _, field := range p.PerAgeFields() {
		for i := range field.Values {
			attachRelativeNormal(&field.Values[i], sigmaRel)
		}
	}
	for _, field := range p.GlobalFields() {
		attachRelativeNormal(field.Value, sigmaRel)
	}
	for i := range m.Populations.Cells {
		attachRelativeNormal(&m.Populations.Cells[i], sigmaRel)
	}
}

// DrawSample replaces every uncertain scalar of the model by a fresh
// draw, consuming predefined samples first. Group totals are preserved
// by re-deriving the susceptible cell, and the sampled parameters are
// clamped back into their legal ranges.
func DrawSample(m *Model, rng *rand.Rand) {
	p := m.Parameters
	for _, field := range p.PerAgeFields() {
		for i := range field.Values {
			field.Values[i].Draw(rng)
		}
	}
	for _, field := range p.GlobalFields() {
		field.Value.Draw(rng)
	}

	groupTotals := make([]float64, m.NumGroups())
	for i := range groupTotals {
		groupTotals[i] = m.Populations.GroupTotal(model.AgeGroup(i))
	}
	for i := range m.Populations.Cells {
		if model.Compartment(i%model.CompartmentCount) == model.Susceptible {
			continue
		}
		m.Populations.Cells[i].Draw(rng)
	}
	for i := range groupTotals {
		m.Populations.SetDifferenceFromGroupTotal(model.AgeGroup(i), model.Susceptible, groupTotals[i])
	}

	m.ApplyConstraints()
}
