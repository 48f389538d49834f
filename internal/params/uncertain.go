package params

import (
	"math"
	"math/rand"
)

// Distribution describes how an uncertain scalar is sampled.
type Distribution interface {
	// Sample draws one value using the provided RNG.
	Sample(rng *rand.Rand) float64
	// Kind identifies the distribution for serialization.
	Kind() string
}

// NormalDistribution is a normal distribution truncated to [Lower, Upper].
type NormalDistribution struct {
	Mean        float64 `json:"Mean"`
	StandardDev float64 `json:"StandardDev"`
	Lower       float64 `json:"Lower"`
	Upper       float64 `json:"Upper"`
}

func (d NormalDistribution) Kind() string {
	return "Normal"
}

func (d NormalDistribution) Sample(rng *rand.Rand) float64 {
	if d.Upper <= d.Lower {
		return d.Lower
	}
	// rejection sampling with a bounded number of attempts; beyond that
	// the mean, clamped into the support, is returned
	for i := 0; i < 50; i++ {
		v := rng.NormFloat64()*d.StandardDev + d.Mean
		if v >= d.Lower && v <= d.Upper {
			return v
		}
	}
	return math.Min(math.Max(d.Mean, d.Lower), d.Upper)
}

// UniformDistribution draws uniformly from [Lower, Upper].
type UniformDistribution struct {
	Lower float64 `json:"Lower"`
	Upper float64 `json:"Upper"`
}

func (d UniformDistribution) Kind() string {
	return "Uniform"
}

func (d UniformDistribution) Sample(rng *rand.Rand) float64 {
	return d.Lower + rng.Float64()*(d.Upper-d.Lower)
}

// UncertainValue is a scalar parameter that may carry a distribution.
// Without a distribution it behaves as a plain deterministic value.
// Predefined samples, when queued, are consumed by Draw before the
// distribution is used.
type UncertainValue struct {
	Value        float64
	Distribution Distribution
	predefined   []float64
}

func NewUncertainValue(value float64) UncertainValue {
	return UncertainValue{Value: value}
}

// SetDistribution attaches a distribution without changing the current value.
func (u *UncertainValue) SetDistribution(d Distribution) {
	u.Distribution = d
}

// QueuePredefinedSample appends a value to the FIFO consumed by Draw.
func (u *UncertainValue) QueuePredefinedSample(v float64) {
	u.predefined = append(u.predefined, v)
}

// Draw replaces the value with a predefined sample if one is queued,
// otherwise with a fresh draw from the distribution. A value without a
// distribution is left unchanged.
func (u *UncertainValue) Draw(rng *rand.Rand) float64 {
	if len(u.predefined) > 0 {
		u.Value = u.predefined[0]
		u.predefined = u.predefined[1:]
		return u.Value
	}
	if u.Distribution != nil {
		u.Value = u.Distribution.Sample(rng)
	}
	return u.Value
}

// Clone deep-copies the value including the predefined-sample queue.
func (u UncertainValue) Clone() UncertainValue {
	out := u
	if len(u.predefined) > 0 {
		out.predefined = append([]float64(nil), u.predefined...)
	}
	return out
}
