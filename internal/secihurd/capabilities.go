package secihurd

import "epigraph/internal/model"

// GetInfectionsRelative returns the fraction of the population that is
// currently infectious and symptomatic, aggregated over age groups.
func GetInfectionsRelative(sim *Simulation, t float64, y []float64) float64 {
	m := sim.Model()
	infected := 0.0
	total := 0.0
	for i := 0; i < m.NumGroups(); i++ {
		age := model.AgeGroup(i)
		infected += y[model.FlatIndex(age, model.Infected)]
		for c := 0; c < model.CompartmentCount; c++ {
			total += y[int(age)*model.CompartmentCount+c]
		}
	}
	if total <= 0 {
		return 0
	}
	return infected / total
}

// GetMigrationFactors returns the elementwise multipliers applied to a
// migrating sub-population. All compartments migrate unchanged except
// Infected, which is scaled by the current symptomatic risk relative to
// its maximum: tracing at departure screens out fewer infected
// travellers as the capacity saturates.
func GetMigrationFactors(sim *Simulation, t float64, y []float64) []float64 {
	m := sim.Model()
	p := m.Parameters
	factors := make([]float64, len(y))
	for i := range factors {
		factors[i] = 1
	}
	required := testAndTraceRequired(p, y)
	for i := 0; i < m.NumGroups(); i++ {
		maxRisk := p.MaxRiskOfInfectionFromSymptomatic[i].Value
		if maxRisk <= 0 {
			continue
		}
		gamma := riskFromSymptomatic(p, i, required)
		factors[model.FlatIndex(model.AgeGroup(i), model.Infected)] = gamma / maxRisk
	}
	return factors
}
