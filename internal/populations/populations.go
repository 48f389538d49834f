package populations

import (
	"epigraph/internal/logging"
	"epigraph/internal/model"
	"epigraph/internal/params"
)

// Populations is a dense nonnegative tensor over (age group,
// compartment). Cells are uncertain values so initial populations can be
// sampled like any other parameter.
type Populations struct {
	NumGroups int
	Cells     []params.UncertainValue
}

func New(numGroups int) *Populations {
	return &Populations{
		NumGroups: numGroups,
		Cells:     make([]params.UncertainValue, numGroups*model.CompartmentCount),
	}
}

func (p *Populations) NumCells() int {
	return len(p.Cells)
}

func (p *Populations) Get(a model.AgeGroup, c model.Compartment) float64 {
	return p.Cells[model.FlatIndex(a, c)].Value
}

func (p *Populations) Set(a model.AgeGroup, c model.Compartment, v float64) {
	p.Cells[model.FlatIndex(a, c)].Value = v
}

// Cell exposes the uncertain value of one tensor cell.
func (p *Populations) Cell(a model.AgeGroup, c model.Compartment) *params.UncertainValue {
	return &p.Cells[model.FlatIndex(a, c)]
}

// Total sums all cells.
func (p *Populations) Total() float64 {
	total := 0.0
	for i := range p.Cells {
		total += p.Cells[i].Value
	}
	return total
}

// GroupTotal sums the cells of one age group.
func (p *Populations) GroupTotal(a model.AgeGroup) float64 {
	total := 0.0
	for c := 0; c < model.CompartmentCount; c++ {
		total += p.Cells[model.FlatIndex(a, model.Compartment(c))].Value
	}
	return total
}

// SetTotal rescales all cells proportionally so they sum to v. A zero
// tensor is filled uniformly.
func (p *Populations) SetTotal(v float64) {
	current := p.Total()
	if current == 0 {
		share := v / float64(len(p.Cells))
		for i := range p.Cells {
			p.Cells[i].Value = share
		}
		return
	}
	factor := v / current
	for i := range p.Cells {
		p.Cells[i].Value *= factor
	}
}

// SetGroupTotal rescales the cells of one age group so they sum to v.
func (p *Populations) SetGroupTotal(a model.AgeGroup, v float64) {
	current := p.GroupTotal(a)
	if current == 0 {
		share := v / float64(model.CompartmentCount)
		for c := 0; c < model.CompartmentCount; c++ {
			p.Cells[model.FlatIndex(a, model.Compartment(c))].Value = share
		}
		return
	}
	factor := v / current
	for c := 0; c < model.CompartmentCount; c++ {
		p.Cells[model.FlatIndex(a, model.Compartment(c))].Value *= factor
	}
}

// SetDifferenceFromTotal sets the given cell so the whole tensor sums to
// total. A negative target is clamped to zero with a warning.
func (p *Populations) SetDifferenceFromTotal(a model.AgeGroup, c model.Compartment, total float64) {
	idx := model.FlatIndex(a, c)
	rest := p.Total() - p.Cells[idx].Value
	target := total - rest
	if target < 0 {
		logging.Warn("populations: difference from total %g would set (%d, %s) to %g, clamping to 0", total, a, c, target)
		target = 0
	}
	p.Cells[idx].Value = target
}

// SetDifferenceFromGroupTotal sets the given cell so its age group sums
// to groupTotal. A negative target is clamped to zero with a warning.
func (p *Populations) SetDifferenceFromGroupTotal(a model.AgeGroup, c model.Compartment, groupTotal float64) {
	idx := model.FlatIndex(a, c)
	rest := p.GroupTotal(a) - p.Cells[idx].Value
	target := groupTotal - rest
	if target < 0 {
		logging.Warn("populations: difference from group total %g would set (%d, %s) to %g, clamping to 0", groupTotal, a, c, target)
		target = 0
	}
	p.Cells[idx].Value = target
}

// Compartments returns the flattened state vector in age-major order.
func (p *Populations) Compartments() []float64 {
	out := make([]float64, len(p.Cells))
	for i := range p.Cells {
		out[i] = p.Cells[i].Value
	}
	return out
}

// SetCompartments overwrites all cell values from a flattened vector.
func (p *Populations) SetCompartments(values []float64) {
	for i := range p.Cells {
		p.Cells[i].Value = values[i]
	}
}

// ApplyConstraints clamps negative cells to zero with a warning.
func (p *Populations) ApplyConstraints() {
	for i := range p.Cells {
		if p.Cells[i].Value < 0 {
			logging.Warn("populations: cell %d = %g negative, resetting to 0", i, p.Cells[i].Value)
			p.Cells[i].Value = 0
		}
	}
}

// Clone deep-copies the tensor including attached distributions.
func (p *Populations) Clone() *Populations {
	out := New(p.NumGroups)
	for i := range p.Cells {
		out.Cells[i] = p.Cells[i].Clone()
	}
	return out
}
