package secihurd

import (
	"math"

	"epigraph/internal/model"
	"epigraph/internal/params"
	"epigraph/internal/populations"
)

// divisor floor for the carrier-to-infected transition; keeps the rate
// finite when the serial interval approaches half the incubation time
const minCarrierDivisor = 1e-10

// Model couples a SECIHURD parameter set with an age-resolved population.
type Model struct {
	Parameters  *params.SecihurdParams
	Populations *populations.Populations
}

func New(numGroups int) *Model {
	return &Model{
		Parameters:  params.NewSecihurdParams(numGroups),
		Populations: populations.New(numGroups),
	}
}

func (m *Model) NumGroups() int {
	return m.Parameters.NumGroups
}

func (m *Model) ApplyConstraints() {
	m.Parameters.ApplyConstraints()
	m.Populations.ApplyConstraints()
}

func (m *Model) CheckConstraints() error {
	return m.Parameters.CheckConstraints()
}

func (m *Model) Clone() *Model {
	return &Model{
		Parameters:  m.Parameters.Clone(),
		Populations: m.Populations.Clone(),
	}
}

// seasonality returns 1 + k*cos(2*pi*(d0+t)/365).
func (m *Model) seasonality(t float64) float64 {
	k := m.Parameters.Seasonality.Value
	return 1 + k*math.Cos(2*math.Pi*(m.Parameters.StartDay+t)/365)
}

func clamp01(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}

func carrierDivisor(p *params.SecihurdParams, i int) float64 {
	d := p.SerialInterval[i].Value - 0.5*p.IncubationTime[i].Value
	if d < minCarrierDivisor {
		d = minCarrierDivisor
	}
	return d
}

// testAndTraceRequired estimates daily new detected symptomatic cases
// from the current carriers.
func testAndTraceRequired(p *params.SecihurdParams, y []float64) float64 {
	required := 0.0
	for i := 0; i < p.NumGroups; i++ {
		alpha := clamp01(p.AsymptomaticCasesPerInfectious[i].Value)
		carriers := y[model.FlatIndex(model.AgeGroup(i), model.Carrier)]
		required += carriers * (1 - alpha) / carrierDivisor(p, i)
	}
	return required
}

// riskFromSymptomatic evaluates the test-and-trace nonlinearity for age
// group i: the risk interpolates from its base value towards the maximum
// as the required tracing exceeds the capacity.
func riskFromSymptomatic(p *params.SecihurdParams, i int, required float64) float64 {
	risk := p.RiskOfInfectionFromSymptomatic[i].Value
	maxRisk := p.MaxRiskOfInfectionFromSymptomatic[i].Value
	capacity := p.TestAndTraceCapacity.Value
	if required <= capacity || maxRisk <= risk {
		return risk
	}
	if capacity <= 0 {
		return maxRisk
	}
	gamma := risk + (maxRisk-risk)*(required-capacity)/(4*capacity)
	return math.Min(math.Max(gamma, risk), maxRisk)
}

// Derivatives computes dy/dt of the SECIHURD system at (t, y) into dydt.
// It is pure: parameters and populations are not modified.
func (m *Model) Derivatives(t float64, y []float64, dydt []float64) {
	p := m.Parameters
	numGroups := p.NumGroups
	contact := p.ContactPatterns.EffectiveAt(t)
	season := m.seasonality(t)
	required := testAndTraceRequired(p, y)

	icuOccupancy := 0.0
	for j := 0; j < numGroups; j++ {
		icuOccupancy += y[model.FlatIndex(model.AgeGroup(j), model.ICU)]
	}
	icuCap := p.ICUCapacity.Value
	// fraction of ICU inflow diverted to Dead, ramping linearly over a
	// band of a tenth of the capacity above the capacity
	icuOverflow := 0.0
	if icuOccupancy > icuCap {
		band := 0.1 * icuCap
		if band <= 0 {
			icuOverflow = 1
		} else {
			icuOverflow = clamp01((icuOccupancy - icuCap) / band)
		}
	}

	for i := 0; i < numGroups; i++ {
		age := model.AgeGroup(i)
		si := y[model.FlatIndex(age, model.Susceptible)]
		ei := y[model.FlatIndex(age, model.Exposed)]
		ci := y[model.FlatIndex(age, model.Carrier)]
		ii := y[model.FlatIndex(age, model.Infected)]
		hi := y[model.FlatIndex(age, model.Hospitalized)]
		ui := y[model.FlatIndex(age, model.ICU)]

		// force of infection over all contact partners
		lambda := 0.0
		for j := 0; j < numGroups; j++ {
			nj := 0.0
			for c := 0; c < model.CompartmentCount; c++ {
				nj += y[int(model.AgeGroup(j))*model.CompartmentCount+c]
			}
			if nj <= 0 {
				continue
			}
			cj := y[model.FlatIndex(model.AgeGroup(j), model.Carrier)]
			ij := y[model.FlatIndex(model.AgeGroup(j), model.Infected)]
			gamma := riskFromSymptomatic(p, j, required)
			lambda += contact.At(i, j) *
				(p.RelativeCarrierInfectability[j].Value*cj + gamma*ij) / nj
		}
		lambda *= p.InfectionProbabilityFromContact[i].Value * season

		tinc := p.IncubationTime[i].Value
		tser := p.SerialInterval[i].Value
		tinfmild := p.InfectiousTimeMild[i].Value
		thome2hosp := p.HomeToHospitalizedTime[i].Value
		thosp2home := p.HospitalizedToHomeTime[i].Value
		thosp2icu := p.HospitalizedToICUTime[i].Value
		ticu2home := p.ICUToHomeTime[i].Value
		ticu2death := p.ICUToDeathTime[i].Value

		alpha := clamp01(p.AsymptomaticCasesPerInfectious[i].Value)
		rho := p.HospitalizedCasesPerInfectious[i].Value
		theta := p.ICUCasesPerHospitalized[i].Value
		delta := p.DeathsPerICU[i].Value
		divisor := carrierDivisor(p, i)

		icuInflow := theta * hi / thosp2icu
		toICU := (1 - icuOverflow) * icuInflow
		toDead := icuOverflow * icuInflow

		dydt[model.FlatIndex(age, model.Susceptible)] = -lambda * si
		dydt[model.FlatIndex(age, model.Exposed)] = lambda*si - ei/tinc
		dydt[model.FlatIndex(age, model.Carrier)] = ei/tinc - ci/tser
		dydt[model.FlatIndex(age, model.Infected)] = (1-alpha)*ci/divisor -
			ii/tinfmild*(1-rho) - ii/thome2hosp*rho
		dydt[model.FlatIndex(age, model.Hospitalized)] = rho*ii/thome2hosp -
			hi/thosp2home*(1-theta) - icuInflow
		dydt[model.FlatIndex(age, model.ICU)] = toICU -
			ui/ticu2home*(1-delta) - ui/ticu2death*delta
		dydt[model.FlatIndex(age, model.Recovered)] = alpha*ci/divisor +
			(1-rho)*ii/tinfmild + (1-theta)*hi/thosp2home + (1-delta)*ui/ticu2home
		dydt[model.FlatIndex(age, model.Dead)] = delta*ui/ticu2death + toDead
	}
}
