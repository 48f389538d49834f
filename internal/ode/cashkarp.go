package ode

import (
	"errors"
	"fmt"
	"math"

	"epigraph/internal/logging"
	"epigraph/internal/timeseries"
)

// ErrIntegratorStall reports that the adaptive step control cannot make
// progress: the error estimate degenerated or the step budget ran out.
var ErrIntegratorStall = errors.New("integrator stall")

// DerivFunc evaluates dy/dt at (t, y) into dydt. Implementations must be
// pure: no mutation of y and deterministic given (t, y).
type DerivFunc func(t float64, y []float64, dydt []float64)

// Cash-Karp 5(4) tableau. b5 is the 5th order solution, b4 the embedded
// 4th order estimate sharing the same six stages.
var (
	ckC = [6]float64{0, 1.0 / 5.0, 3.0 / 10.0, 3.0 / 5.0, 1, 7.0 / 8.0}
	ckA = [6][5]float64{
		{},
		{1.0 / 5.0},
		{3.0 / 40.0, 9.0 / 40.0},
		{3.0 / 10.0, -9.0 / 10.0, 6.0 / 5.0},
		{-11.0 / 54.0, 5.0 / 2.0, -70.0 / 27.0, 35.0 / 27.0},
		{1631.0 / 55296.0, 175.0 / 512.0, 575.0 / 13824.0, 44275.0 / 110592.0, 253.0 / 4096.0},
	}
	ckB5 = [6]float64{37.0 / 378.0, 0, 250.0 / 621.0, 125.0 / 594.0, 0, 512.0 / 1771.0}
	ckB4 = [6]float64{2825.0 / 27648.0, 0, 18575.0 / 48384.0, 13525.0 / 55296.0, 277.0 / 14336.0, 1.0 / 4.0}
)

const (
	safety    = 0.9
	minShrink = 0.2
	maxGrow   = 5.0
)

// CashKarp is an embedded Runge-Kutta 5(4) integrator with adaptive step
// control. The zero value is not usable; construct with NewCashKarp and
// override tolerances as needed.
type CashKarp struct {
	AbsTolerance float64
	RelTolerance float64
	DtMin        float64
	DtMax        float64
	// StepLimit bounds the number of attempted steps per Integrate call.
	StepLimit int
}

func NewCashKarp() *CashKarp {
	return &CashKarp{
		AbsTolerance: 1e-10,
		RelTolerance: 1e-5,
		DtMin:        math.SmallestNonzeroFloat64,
		DtMax:        math.MaxFloat64,
		StepLimit:    10_000_000,
	}
}

// Integrate advances the state in ts from its last recorded time to
// tStop, appending one time point per accepted step. dt carries the
// current step size across calls and holds the suggested next step on
// return. The integrator never overshoots tStop.
func (c *CashKarp) Integrate(f DerivFunc, ts *timeseries.TimeSeries, tStop float64, dt *float64) error {
	n := ts.NumElements()
	t := ts.LastTime()
	y := make([]float64, n)
	copy(y, ts.LastValue())

	k := make([][]float64, 6)
	for i := range k {
		k[i] = make([]float64, n)
	}
	yStage := make([]float64, n)
	y5 := make([]float64, n)
	y4 := make([]float64, n)

	h := *dt
	steps := 0
	for t < tStop {
		steps++
		if steps > c.StepLimit {
			return fmt.Errorf("%w: step limit %d exceeded at t = %g", ErrIntegratorStall, c.StepLimit, t)
		}

		if h < c.DtMin {
			h = c.DtMin
		}
		if h > c.DtMax {
			h = c.DtMax
		}
		atMinimum := h <= c.DtMin
		final := false
		if t+h > tStop {
			// the truncated final step may be smaller than DtMin
			h = tStop - t
			final = true
			if h <= c.DtMin {
				atMinimum = true
			}
		}

		f(t, y, k[0])
		for s := 1; s < 6; s++ {
			for i := 0; i < n; i++ {
				acc := y[i]
				for j := 0; j < s; j++ {
					acc += h * ckA[s][j] * k[j][i]
				}
				yStage[i] = acc
			}
			f(t+ckC[s]*h, yStage, k[s])
		}

		for i := 0; i < n; i++ {
			acc5, acc4 := y[i], y[i]
			for s := 0; s < 6; s++ {
				acc5 += h * ckB5[s] * k[s][i]
				acc4 += h * ckB4[s] * k[s][i]
			}
			y5[i] = acc5
			y4[i] = acc4
		}

		// scaled max-norm error estimate
		e := 0.0
		for i := 0; i < n; i++ {
			scale := c.AbsTolerance + c.RelTolerance*math.Max(math.Abs(y[i]), math.Abs(y5[i]))
			ei := math.Abs(y5[i]-y4[i]) / scale
			if ei > e || math.IsNaN(ei) {
				e = ei
			}
		}
		if math.IsNaN(e) || math.IsInf(e, 0) {
			return fmt.Errorf("%w: non-finite error estimate at t = %g", ErrIntegratorStall, t)
		}

		factor := maxGrow
		if e > 0 {
			factor = math.Min(math.Max(safety*math.Pow(e, -0.2), minShrink), maxGrow)
		}
		hNext := h * factor

		if e <= 1 || atMinimum {
			if e > 1 {
				logging.Warn("ode: accepting step at minimal step size %g with error %g at t = %g", h, e, t)
			}
			if final {
				t = tStop
			} else {
				t += h
			}
			copy(y, y5)
			ts.Append(t, y)
			h = hNext
		} else {
			h = hNext
		}
	}

	*dt = math.Min(math.Max(h, c.DtMin), c.DtMax)
	return nil
}
