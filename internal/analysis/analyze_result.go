package analysis

import (
	"fmt"
	"math"
	"sort"

	"epigraph/internal/ensemble"
	"epigraph/internal/params"
	"epigraph/internal/secihurd"
	"epigraph/internal/timeseries"
)

// InterpolateSimulationResult resamples a time series onto integer-day
// points covering floor(t0) .. ceil(tmax) by piecewise-linear
// interpolation. Boundary values are held constant.
func InterpolateSimulationResult(result *timeseries.TimeSeries) (*timeseries.TimeSeries, error) {
	if result.NumTimePoints() == 0 {
		return nil, fmt.Errorf("time series must not be empty")
	}

	t0 := result.Time(0)
	tmax := result.LastTime()
	dayMax := int(math.Ceil(tmax))

	day := int(math.Floor(t0))
	out := timeseries.New(result.NumElements())
	out.Append(float64(day), result.Value(0))
	day++

	row := make([]float64, result.NumElements())
	for i := 0; i < result.NumTimePoints()-1; {
		// several days may fall between one pair of time points, so only
		// move to the next pair once no day was emitted
		if result.Time(i) < float64(day) && result.Time(i+1) >= float64(day) {
			weight := (float64(day) - result.Time(i)) / (result.Time(i+1) - result.Time(i))
			vi := result.Value(i)
			vj := result.Value(i + 1)
			for k := range row {
				row[k] = vi[k] + (vj[k]-vi[k])*weight
			}
			out.Append(float64(day), row)
			day++
		} else {
			i++
		}
	}

	if float64(dayMax) > tmax {
		out.Append(float64(day), result.LastValue())
	}
	return out, nil
}

// SumNodes reduces each run to a single time series holding the
// elementwise sum over all nodes.
func SumNodes(ensembleResult [][]*timeseries.TimeSeries) [][]*timeseries.TimeSeries {
	out := make([][]*timeseries.TimeSeries, len(ensembleResult))
	for run, nodes := range ensembleResult {
		if len(nodes) == 0 {
			out[run] = nil
			continue
		}
		numTimePoints := nodes[0].NumTimePoints()
		numElements := nodes[0].NumElements()
		sum := timeseries.Zero(numTimePoints, numElements)
		for t := 0; t < numTimePoints; t++ {
			sum.SetTime(t, nodes[0].Time(t))
			row := sum.Value(t)
			for _, node := range nodes {
				v := node.Value(t)
				for k := range row {
					row[k] += v[k]
				}
			}
		}
		out[run] = []*timeseries.TimeSeries{sum}
	}
	return out
}

// uniformRuns drops runs that are missing or shaped differently from
// the first complete run, so aggregation stays robust to failures.
func uniformRuns(ensembleResult [][]*timeseries.TimeSeries) [][]*timeseries.TimeSeries {
	var reference []*timeseries.TimeSeries
	for _, nodes := range ensembleResult {
		if len(nodes) > 0 {
			reference = nodes
			break
		}
	}
	if reference == nil {
		return nil
	}
	matches := func(nodes []*timeseries.TimeSeries) bool {
		if len(nodes) != len(reference) {
			return false
		}
		for i := range nodes {
			if nodes[i] == nil ||
				nodes[i].NumTimePoints() != reference[i].NumTimePoints() ||
				nodes[i].NumElements() != reference[i].NumElements() {
				return false
			}
		}
		return true
	}
	kept := make([][]*timeseries.TimeSeries, 0, len(ensembleResult))
	for _, nodes := range ensembleResult {
		if matches(nodes) {
			kept = append(kept, nodes)
		}
	}
	return kept
}

// EnsembleMean averages the ensemble per node, per time point, per
// element. Failed or ragged runs are skipped.
func EnsembleMean(ensembleResult [][]*timeseries.TimeSeries) []*timeseries.TimeSeries {
	runs := uniformRuns(ensembleResult)
	if len(runs) == 0 {
		return nil
	}
	numNodes := len(runs[0])
	numRuns := float64(len(runs))

	mean := make([]*timeseries.TimeSeries, numNodes)
	for node := 0; node < numNodes; node++ {
		ref := runs[0][node]
		mean[node] = timeseries.Zero(ref.NumTimePoints(), ref.NumElements())
		for t := 0; t < ref.NumTimePoints(); t++ {
			mean[node].SetTime(t, ref.Time(t))
			row := mean[node].Value(t)
			for _, run := range runs {
				v := run[node].Value(t)
				for k := range row {
					row[k] += v[k] / numRuns
				}
			}
		}
	}
	return mean
}

// EnsemblePercentile computes, per node, time point and element, the
// value at index floor(N*p) of the sorted per-element ensemble.
// p must be in (0, 1). Failed or ragged runs are skipped.
func EnsemblePercentile(ensembleResult [][]*timeseries.TimeSeries, p float64) ([]*timeseries.TimeSeries, error) {
	if p <= 0 || p >= 1 {
		return nil, fmt.Errorf("percentile %g outside (0, 1)", p)
	}
	runs := uniformRuns(ensembleResult)
	if len(runs) == 0 {
		return nil, fmt.Errorf("no complete runs in ensemble")
	}
	numNodes := len(runs[0])

	sample := make([]float64, len(runs))
	out := make([]*timeseries.TimeSeries, numNodes)
	for node := 0; node < numNodes; node++ {
		ref := runs[0][node]
		out[node] = timeseries.Zero(ref.NumTimePoints(), ref.NumElements())
		for t := 0; t < ref.NumTimePoints(); t++ {
			out[node].SetTime(t, ref.Time(t))
			row := out[node].Value(t)
			for k := range row {
				for r, run := range runs {
					sample[r] = run[node].Value(t)[k]
				}
				sort.Float64s(sample)
				row[k] = sample[int(float64(len(runs))*p)]
			}
		}
	}
	return out, nil
}

// EnsembleParamsPercentile assembles, for every scalar parameter and
// population leaf, the percentile across runs into models of the same
// shape. ensembleModels is indexed run first, node second.
func EnsembleParamsPercentile(ensembleModels [][]*secihurd.Model, p float64) ([]*secihurd.Model, error) {
	if p <= 0 || p >= 1 {
		return nil, fmt.Errorf("percentile %g outside (0, 1)", p)
	}
	if len(ensembleModels) == 0 || len(ensembleModels[0]) == 0 {
		return nil, fmt.Errorf("no models in ensemble")
	}
	numNodes := len(ensembleModels[0])
	for _, run := range ensembleModels {
		if len(run) != numNodes {
			return nil, fmt.Errorf("ensemble models not uniform")
		}
	}

	sample := make([]float64, len(ensembleModels))
	percentileOf := func(leafOf func(m *secihurd.Model) *params.UncertainValue, node int) float64 {
		for r, run := range ensembleModels {
			sample[r] = leafOf(run[node]).Value
		}
		sort.Float64s(sample)
		return sample[int(float64(len(sample))*p)]
	}

	out := make([]*secihurd.Model, numNodes)
	for node := 0; node < numNodes; node++ {
		m := ensembleModels[0][node].Clone()
		fields := m.Parameters.PerAgeFields()
		for fi := range fields {
			for ai := range fields[fi].Values {
				fi, ai := fi, ai
				fields[fi].Values[ai].Value = percentileOf(func(other *secihurd.Model) *params.UncertainValue {
					return &other.Parameters.PerAgeFields()[fi].Values[ai]
				}, node)
			}
		}
		globals := m.Parameters.GlobalFields()
		for gi := range globals {
			gi := gi
			globals[gi].Value.Value = percentileOf(func(other *secihurd.Model) *params.UncertainValue {
				return other.Parameters.GlobalFields()[gi].Value
			}, node)
		}
		for ci := range m.Populations.Cells {
			ci := ci
			m.Populations.Cells[ci].Value = percentileOf(func(other *secihurd.Model) *params.UncertainValue {
				return &other.Populations.Cells[ci]
			}, node)
		}
		out[node] = m
	}
	return out, nil
}

// ResultDistance2Norm is the euclidean distance between two per-node
// results over all nodes, time points and elements.
func ResultDistance2Norm(result1, result2 []*timeseries.TimeSeries) float64 {
	normSqr := 0.0
	for n := range result1 {
		for t := 0; t < result1[n].NumTimePoints(); t++ {
			v1 := result1[n].Value(t)
			v2 := result2[n].Value(t)
			for k := range v1 {
				d := v1[k] - v2[k]
				normSqr += d * d
			}
		}
	}
	return math.Sqrt(normSqr)
}

// ExtractResults pulls the per-run node series out of a study's run
// results, skipping failed runs but keeping run alignment for the
// aggregation helpers.
func ExtractResults(runs []ensemble.RunResult) [][]*timeseries.TimeSeries {
	out := make([][]*timeseries.TimeSeries, len(runs))
	for i, r := range runs {
		if r.Err == nil {
			out[i] = r.Results
		}
	}
	return out
}
