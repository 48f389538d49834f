package params

import (
	"math/rand"
	"testing"
)

func TestDrawWithoutDistributionKeepsValue(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	u := NewUncertainValue(3.5)
	if got := u.Draw(rng); got != 3.5 {
		t.Fatalf("draw = %g, want 3.5", got)
	}
}

func TestPredefinedSamplesConsumedFirst(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	u := NewUncertainValue(1)
	u.SetDistribution(UniformDistribution{Lower: 100, Upper: 200})
	u.QueuePredefinedSample(7)
	u.QueuePredefinedSample(8)

	if got := u.Draw(rng); got != 7 {
		t.Fatalf("first draw = %g, want predefined 7", got)
	}
	if got := u.Draw(rng); got != 8 {
		t.Fatalf("second draw = %g, want predefined 8", got)
	}
	got := u.Draw(rng)
	if got < 100 || got > 200 {
		t.Fatalf("third draw = %g, want a distribution sample in [100, 200]", got)
	}
}

func TestNormalDistributionRespectsBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	d := NormalDistribution{Mean: 5, StandardDev: 10, Lower: 4, Upper: 6}
	for i := 0; i < 1000; i++ {
		v := d.Sample(rng)
		if v < 4 || v > 6 {
			t.Fatalf("sample %g outside [4, 6]", v)
		}
	}
}

func TestUniformDistributionRespectsBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	d := UniformDistribution{Lower: -1, Upper: 1}
	for i := 0; i < 1000; i++ {
		v := d.Sample(rng)
		if v < -1 || v > 1 {
			t.Fatalf("sample %g outside [-1, 1]", v)
		}
	}
}

func TestCloneIndependentQueue(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	u := NewUncertainValue(1)
	u.QueuePredefinedSample(5)

	clone := u.Clone()
	u.Draw(rng)

	if got := clone.Draw(rng); got != 5 {
		t.Fatalf("clone draw = %g, want its own predefined 5", got)
	}
}
