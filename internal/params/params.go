package params

import (
	"errors"
	"fmt"
	"math"

	"epigraph/internal/logging"
)

// ErrInvalidParameter reports a constraint violation found by
// CheckConstraints.
var ErrInvalidParameter = errors.New("invalid parameter")

// SecihurdParams holds all parameters of the SECIHURD model. Per-age
// parameters are indexed by age group; the remaining fields are global.
type SecihurdParams struct {
	NumGroups int

	// stage durations in days
	IncubationTime             []UncertainValue
	InfectiousTimeMild         []UncertainValue
	SerialInterval             []UncertainValue
	InfectiousTimeAsymptomatic []UncertainValue
	HospitalizedToHomeTime     []UncertainValue
	HomeToHospitalizedTime     []UncertainValue
	HospitalizedToICUTime      []UncertainValue
	ICUToHomeTime              []UncertainValue
	ICUToDeathTime             []UncertainValue

	// probabilities
	InfectionProbabilityFromContact   []UncertainValue
	RelativeCarrierInfectability      []UncertainValue
	AsymptomaticCasesPerInfectious    []UncertainValue
	RiskOfInfectionFromSymptomatic    []UncertainValue
	MaxRiskOfInfectionFromSymptomatic []UncertainValue
	HospitalizedCasesPerInfectious    []UncertainValue
	ICUCasesPerHospitalized           []UncertainValue
	DeathsPerICU                      []UncertainValue

	// global
	ICUCapacity          UncertainValue
	TestAndTraceCapacity UncertainValue
	StartDay             float64
	Seasonality          UncertainValue

	ContactPatterns ContactMatrixGroup
}

func uniform(n int, v float64) []UncertainValue {
	out := make([]UncertainValue, n)
	for i := range out {
		out[i] = NewUncertainValue(v)
	}
	return out
}

// NewSecihurdParams creates a parameter set for numGroups age groups
// with safe defaults: all stage durations 1 day, probabilities 0, relative
// carrier infectability 1, no contact, unbounded ICU and test-and-trace
// capacity.
func NewSecihurdParams(numGroups int) *SecihurdParams {
	return &SecihurdParams{
		NumGroups:                  numGroups,
		IncubationTime:             uniform(numGroups, 1),
		InfectiousTimeMild:         uniform(numGroups, 1),
		SerialInterval:             uniform(numGroups, 1),
		InfectiousTimeAsymptomatic: uniform(numGroups, 1),
		HospitalizedToHomeTime:     uniform(numGroups, 1),
		HomeToHospitalizedTime:     uniform(numGroups, 1),
		HospitalizedToICUTime:      uniform(numGroups, 1),
		ICUToHomeTime:              uniform(numGroups, 1),
		ICUToDeathTime:             uniform(numGroups, 1),

		InfectionProbabilityFromContact:   uniform(numGroups, 0),
		RelativeCarrierInfectability:      uniform(numGroups, 1),
		AsymptomaticCasesPerInfectious:    uniform(numGroups, 0),
		RiskOfInfectionFromSymptomatic:    uniform(numGroups, 0),
		MaxRiskOfInfectionFromSymptomatic: uniform(numGroups, 0),
		HospitalizedCasesPerInfectious:    uniform(numGroups, 0),
		ICUCasesPerHospitalized:           uniform(numGroups, 0),
		DeathsPerICU:                      uniform(numGroups, 0),

		ICUCapacity:          NewUncertainValue(math.MaxFloat64),
		TestAndTraceCapacity: NewUncertainValue(math.MaxFloat64),
		Seasonality:          NewUncertainValue(0),

		ContactPatterns: NewContactMatrixGroup(1, numGroups),
	}
}

// ApplyConstraints clamps out-of-range values to safe defaults and logs
// a warning for each correction.
func (p *SecihurdParams) ApplyConstraints() {
	clampTime := func(name string, vals []UncertainValue) {
		for i := range vals {
			if !(vals[i].Value > 0) || math.IsNaN(vals[i].Value) {
				logging.Warn("constraint: %s[%d] = %g is not a positive time, resetting to 1", name, i, vals[i].Value)
				vals[i].Value = 1
			}
		}
	}
	clampProbability := func(name string, vals []UncertainValue) {
		for i := range vals {
			if vals[i].Value < 0 || vals[i].Value > 1 || math.IsNaN(vals[i].Value) {
				logging.Warn("constraint: %s[%d] = %g is not a probability, resetting to 0", name, i, vals[i].Value)
				vals[i].Value = 0
			}
		}
	}

	clampTime("IncubationTime", p.IncubationTime)
	clampTime("InfectiousTimeMild", p.InfectiousTimeMild)
	clampTime("SerialInterval", p.SerialInterval)
	clampTime("InfectiousTimeAsymptomatic", p.InfectiousTimeAsymptomatic)
	clampTime("HospitalizedToHomeTime", p.HospitalizedToHomeTime)
	clampTime("HomeToHospitalizedTime", p.HomeToHospitalizedTime)
	clampTime("HospitalizedToICUTime", p.HospitalizedToICUTime)
	clampTime("ICUToHomeTime", p.ICUToHomeTime)
	clampTime("ICUToDeathTime", p.ICUToDeathTime)

	// the serial interval must stay strictly between half the incubation
	// time and the incubation time, otherwise the carrier-to-infected
	// rate degenerates
	for i := range p.SerialInterval {
		tinc := p.IncubationTime[i].Value
		lower := 0.5*tinc + 1.0
		upper := tinc - 0.5
		if upper < lower {
			upper = lower
		}
		if p.SerialInterval[i].Value < lower {
			logging.Warn("constraint: SerialInterval[%d] = %g below %g, clamping", i, p.SerialInterval[i].Value, lower)
			p.SerialInterval[i].Value = lower
		} else if p.SerialInterval[i].Value > upper {
			logging.Warn("constraint: SerialInterval[%d] = %g above %g, clamping", i, p.SerialInterval[i].Value, upper)
			p.SerialInterval[i].Value = upper
		}
	}

	clampProbability("InfectionProbabilityFromContact", p.InfectionProbabilityFromContact)
	clampProbability("RelativeCarrierInfectability", p.RelativeCarrierInfectability)
	clampProbability("AsymptomaticCasesPerInfectious", p.AsymptomaticCasesPerInfectious)
	clampProbability("RiskOfInfectionFromSymptomatic", p.RiskOfInfectionFromSymptomatic)
	clampProbability("MaxRiskOfInfectionFromSymptomatic", p.MaxRiskOfInfectionFromSymptomatic)
	clampProbability("HospitalizedCasesPerInfectious", p.HospitalizedCasesPerInfectious)
	clampProbability("ICUCasesPerHospitalized", p.ICUCasesPerHospitalized)
	clampProbability("DeathsPerICU", p.DeathsPerICU)

	for i := range p.MaxRiskOfInfectionFromSymptomatic {
		if p.MaxRiskOfInfectionFromSymptomatic[i].Value < p.RiskOfInfectionFromSymptomatic[i].Value {
			logging.Warn("constraint: MaxRiskOfInfectionFromSymptomatic[%d] below RiskOfInfectionFromSymptomatic, raising", i)
			p.MaxRiskOfInfectionFromSymptomatic[i].Value = p.RiskOfInfectionFromSymptomatic[i].Value
		}
	}

	if p.ICUCapacity.Value < 0 || math.IsNaN(p.ICUCapacity.Value) {
		logging.Warn("constraint: ICUCapacity = %g negative, resetting to unbounded", p.ICUCapacity.Value)
		p.ICUCapacity.Value = math.MaxFloat64
	}
	if p.TestAndTraceCapacity.Value < 0 || math.IsNaN(p.TestAndTraceCapacity.Value) {
		logging.Warn("constraint: TestAndTraceCapacity = %g negative, resetting to unbounded", p.TestAndTraceCapacity.Value)
		p.TestAndTraceCapacity.Value = math.MaxFloat64
	}
	if p.Seasonality.Value < 0 {
		logging.Warn("constraint: Seasonality = %g below 0, clamping", p.Seasonality.Value)
		p.Seasonality.Value = 0
	} else if p.Seasonality.Value > 0.5 {
		logging.Warn("constraint: Seasonality = %g above 0.5, clamping", p.Seasonality.Value)
		p.Seasonality.Value = 0.5
	}
}

// CheckConstraints reports all constraint violations without modifying
// the parameter set. The returned error wraps ErrInvalidParameter.
func (p *SecihurdParams) CheckConstraints() error {
	var problems []string
	checkTime := func(name string, vals []UncertainValue) {
		for i := range vals {
			if !(vals[i].Value > 0) || math.IsNaN(vals[i].Value) {
				problems = append(problems, fmt.Sprintf("%s[%d] = %g must be > 0", name, i, vals[i].Value))
			}
		}
	}
	checkProbability := func(name string, vals []UncertainValue) {
		for i := range vals {
			if vals[i].Value < 0 || vals[i].Value > 1 || math.IsNaN(vals[i].Value) {
				problems = append(problems, fmt.Sprintf("%s[%d] = %g must be in [0, 1]", name, i, vals[i].Value))
			}
		}
	}

	checkTime("IncubationTime", p.IncubationTime)
	checkTime("InfectiousTimeMild", p.InfectiousTimeMild)
	checkTime("SerialInterval", p.SerialInterval)
	checkTime("InfectiousTimeAsymptomatic", p.InfectiousTimeAsymptomatic)
	checkTime("HospitalizedToHomeTime", p.HospitalizedToHomeTime)
	checkTime("HomeToHospitalizedTime", p.HomeToHospitalizedTime)
	checkTime("HospitalizedToICUTime", p.HospitalizedToICUTime)
	checkTime("ICUToHomeTime", p.ICUToHomeTime)
	checkTime("ICUToDeathTime", p.ICUToDeathTime)

	for i := range p.SerialInterval {
		tinc := p.IncubationTime[i].Value
		tser := p.SerialInterval[i].Value
		if !(tser > 0.5*tinc) || !(tser < tinc) {
			problems = append(problems, fmt.Sprintf("SerialInterval[%d] = %g must be in (%g, %g)", i, tser, 0.5*tinc, tinc))
		}
		if tser-0.5*tinc <= 0 {
			problems = append(problems, fmt.Sprintf("SerialInterval[%d] - IncubationTime[%d]/2 = %g must be positive", i, i, tser-0.5*tinc))
		}
	}

	checkProbability("InfectionProbabilityFromContact", p.InfectionProbabilityFromContact)
	checkProbability("RelativeCarrierInfectability", p.RelativeCarrierInfectability)
	checkProbability("AsymptomaticCasesPerInfectious", p.AsymptomaticCasesPerInfectious)
	checkProbability("RiskOfInfectionFromSymptomatic", p.RiskOfInfectionFromSymptomatic)
	checkProbability("MaxRiskOfInfectionFromSymptomatic", p.MaxRiskOfInfectionFromSymptomatic)
	checkProbability("HospitalizedCasesPerInfectious", p.HospitalizedCasesPerInfectious)
	checkProbability("ICUCasesPerHospitalized", p.ICUCasesPerHospitalized)
	checkProbability("DeathsPerICU", p.DeathsPerICU)

	for i := range p.MaxRiskOfInfectionFromSymptomatic {
		if p.MaxRiskOfInfectionFromSymptomatic[i].Value < p.RiskOfInfectionFromSymptomatic[i].Value {
			problems = append(problems, fmt.Sprintf("MaxRiskOfInfectionFromSymptomatic[%d] must be >= RiskOfInfectionFromSymptomatic[%d]", i, i))
		}
	}

	if p.ICUCapacity.Value < 0 {
		problems = append(problems, fmt.Sprintf("ICUCapacity = %g must be >= 0", p.ICUCapacity.Value))
	}
	if p.TestAndTraceCapacity.Value < 0 {
		problems = append(problems, fmt.Sprintf("TestAndTraceCapacity = %g must be >= 0", p.TestAndTraceCapacity.Value))
	}
	if p.Seasonality.Value < 0 || p.Seasonality.Value > 0.5 {
		problems = append(problems, fmt.Sprintf("Seasonality = %g must be in [0, 0.5]", p.Seasonality.Value))
	}

	for mi, cm := range p.ContactPatterns {
		for di, d := range cm.Dampings {
			for _, v := range d.Value.Data {
				if v < 0 || v > 1 {
					problems = append(problems, fmt.Sprintf("ContactPatterns[%d].Dampings[%d] value %g must be in [0, 1]", mi, di, v))
					break
				}
			}
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d violation(s), first: %s", ErrInvalidParameter, len(problems), problems[0])
}

// PerAgeFields returns named references to every per-age parameter
// slice, in a stable order. Shared by sampling and serialization.
func (p *SecihurdParams) PerAgeFields() []struct {
	Name   string
	Values []UncertainValue
} {
	return []struct {
		Name   string
		Values []UncertainValue
	}{
		{"IncubationTime", p.IncubationTime},
		{"InfectiousTimeMild", p.InfectiousTimeMild},
		{"SerialInterval", p.SerialInterval},
		{"InfectiousTimeAsymptomatic", p.InfectiousTimeAsymptomatic},
		{"HospitalizedToHomeTime", p.HospitalizedToHomeTime},
		{"HomeToHospitalizedTime", p.HomeToHospitalizedTime},
		{"HospitalizedToICUTime", p.HospitalizedToICUTime},
		{"ICUToHomeTime", p.ICUToHomeTime},
		{"ICUToDeathTime", p.ICUToDeathTime},
		{"InfectionProbabilityFromContact", p.InfectionProbabilityFromContact},
		{"RelativeCarrierInfectability", p.RelativeCarrierInfectability},
		{"AsymptomaticCasesPerInfectious", p.AsymptomaticCasesPerInfectious},
		{"RiskOfInfectionFromSymptomatic", p.RiskOfInfectionFromSymptomatic},
		{"MaxRiskOfInfectionFromSymptomatic", p.MaxRiskOfInfectionFromSymptomatic},
		{"HospitalizedCasesPerInfectious", p.HospitalizedCasesPerInfectious},
		{"ICUCasesPerHospitalized", p.ICUCasesPerHospitalized},
		{"DeathsPerICU", p.DeathsPerICU},
	}
}

// GlobalFields returns named references to the global uncertain values.
func (p *SecihurdParams) GlobalFields() []struct {
	Name  string
	Value *UncertainValue
} {
	return []struct {
		Name  string
		Value *UncertainValue
	}{
		{"ICUCapacity", &p.ICUCapacity},
		{"TestAndTraceCapacity", &p.TestAndTraceCapacity},
		{"Seasonality", &p.Seasonality},
	}
}

// Clone deep-copies the parameter set.
func (p *SecihurdParams) Clone() *SecihurdParams {
	cloneSlice := func(vals []UncertainValue) []UncertainValue {
		out := make([]UncertainValue, len(vals))
		for i := range vals {
			out[i] = vals[i].Clone()
		}
		return out
	}
	return &SecihurdParams{
		NumGroups:                  p.NumGroups,
		IncubationTime:             cloneSlice(p.IncubationTime),
		InfectiousTimeMild:         cloneSlice(p.InfectiousTimeMild),
		SerialInterval:             cloneSlice(p.SerialInterval),
		InfectiousTimeAsymptomatic: cloneSlice(p.InfectiousTimeAsymptomatic),
		HospitalizedToHomeTime:     cloneSlice(p.HospitalizedToHomeTime),
		HomeToHospitalizedTime:     cloneSlice(p.HomeToHospitalizedTime),
		HospitalizedToICUTime:      cloneSlice(p.HospitalizedToICUTime),
		ICUToHomeTime:              cloneSlice(p.ICUToHomeTime),
		ICUToDeathTime:             cloneSlice(p.ICUToDeathTime),

		InfectionProbabilityFromContact:   cloneSlice(p.InfectionProbabilityFromContact),
		RelativeCarrierInfectability:      cloneSlice(p.RelativeCarrierInfectability),
		AsymptomaticCasesPerInfectious:    cloneSlice(p.AsymptomaticCasesPerInfectious),
		RiskOfInfectionFromSymptomatic:    cloneSlice(p.RiskOfInfectionFromSymptomatic),
		MaxRiskOfInfectionFromSymptomatic: cloneSlice(p.MaxRiskOfInfectionFromSymptomatic),
		HospitalizedCasesPerInfectious:    cloneSlice(p.HospitalizedCasesPerInfectious),
		ICUCasesPerHospitalized:           cloneSlice(p.ICUCasesPerHospitalized),
		DeathsPerICU:                      cloneSlice(p.DeathsPerICU),

		ICUCapacity:          p.ICUCapacity.Clone(),
		TestAndTraceCapacity: p.TestAndTraceCapacity.Clone(),
		StartDay:             p.StartDay,
		Seasonality:          p.Seasonality.Clone(),

		ContactPatterns: p.ContactPatterns.Clone(),
	}
}
