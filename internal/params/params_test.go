package params

import (
	"errors"
	"math"
	"testing"

	"epigraph/internal/logging"
)

func silence(t *testing.T) {
	t.Helper()
	prev := logging.SetLevel(logging.LevelOff)
	t.Cleanup(func() { logging.SetLevel(prev) })
}

func TestApplyConstraintsClampsSerialInterval(t *testing.T) {
	silence(t)
	p := NewSecihurdParams(1)
	p.IncubationTime[0].Value = 5.1
	p.InfectiousTimeMild[0].Value = 5.86642
	p.SerialInterval[0].Value = 5.08993
	p.AsymptomaticCasesPerInfectious[0].Value = 2.124921

	p.ApplyConstraints()

	if got := p.SerialInterval[0].Value; math.Abs(got-4.6) > 1e-14 {
		t.Errorf("serial interval = %v, want 4.6", got)
	}
	if got := p.AsymptomaticCasesPerInfectious[0].Value; got != 0 {
		t.Errorf("asymptomatic fraction = %v, want reset to 0", got)
	}
}

func TestApplyConstraintsResetsNonPositiveTimes(t *testing.T) {
	silence(t)
	p := NewSecihurdParams(1)
	p.IncubationTime[0].Value = -3
	p.ICUToDeathTime[0].Value = 0

	p.ApplyConstraints()

	if p.IncubationTime[0].Value != 1 || p.ICUToDeathTime[0].Value != 1 {
		t.Fatal("non-positive times must reset to the default")
	}
}

func TestApplyConstraintsRaisesMaxRisk(t *testing.T) {
	silence(t)
	p := NewSecihurdParams(1)
	p.RiskOfInfectionFromSymptomatic[0].Value = 0.4
	p.MaxRiskOfInfectionFromSymptomatic[0].Value = 0.1

	p.ApplyConstraints()

	if p.MaxRiskOfInfectionFromSymptomatic[0].Value != 0.4 {
		t.Fatalf("max risk = %v, want raised to 0.4", p.MaxRiskOfInfectionFromSymptomatic[0].Value)
	}
}

func TestApplyConstraintsClampsSeasonality(t *testing.T) {
	silence(t)
	p := NewSecihurdParams(1)
	p.Seasonality.Value = 0.9
	p.ApplyConstraints()
	if p.Seasonality.Value != 0.5 {
		t.Fatalf("seasonality = %v, want 0.5", p.Seasonality.Value)
	}
}

func TestCheckConstraintsReadOnly(t *testing.T) {
	p := NewSecihurdParams(1)
	p.IncubationTime[0].Value = 5.2
	p.SerialInterval[0].Value = 4.2
	p.AsymptomaticCasesPerInfectious[0].Value = 2.1

	err := p.CheckConstraints()
	if err == nil {
		t.Fatal("expected constraint violation")
	}
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("error = %v, want ErrInvalidParameter", err)
	}
	if p.AsymptomaticCasesPerInfectious[0].Value != 2.1 {
		t.Fatal("check must not modify values")
	}
}

func TestCheckConstraintsAcceptsValidSet(t *testing.T) {
	p := NewSecihurdParams(1)
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
	p.AsymptomaticCasesPerInfectious[0].Value = 0.09
	p.RiskOfInfectionFromSymptomatic[0].Value = 0.25
	p.MaxRiskOfInfectionFromSymptomatic[0].Value = 0.25
	p.HospitalizedCasesPerInfectious[0].Value = 0.2
	p.ICUCasesPerHospitalized[0].Value = 0.25
	p.DeathsPerICU[0].Value = 0.3

	if err := p.CheckConstraints(); err != nil {
		t.Fatalf("unexpected constraint violation: %v", err)
	}
}

func TestCheckConstraintsRejectsDegenerateDivisor(t *testing.T) {
	p := NewSecihurdParams(1)
	p.IncubationTime[0].Value = 10
	p.SerialInterval[0].Value = 5 // exactly half the incubation time
	err := p.CheckConstraints()
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("error = %v, want ErrInvalidParameter", err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	p := NewSecihurdParams(2)
	p.IncubationTime[1].Value = 5.2
	p.ContactPatterns[0].Baseline.Set(0, 0, 10)

	clone := p.Clone()
	clone.IncubationTime[1].Value = 99
	clone.ContactPatterns[0].Baseline.Set(0, 0, 99)

	if p.IncubationTime[1].Value != 5.2 {
		t.Fatal("clone must not share per-age slices")
	}
	if p.ContactPatterns[0].Baseline.At(0, 0) != 10 {
		t.Fatal("clone must not share contact matrices")
	}
}
