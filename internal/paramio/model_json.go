package paramio

import (
	"encoding/json"
	"fmt"
	"os"

	"epigraph/internal/params"
	"epigraph/internal/secihurd"
)

func encodeDistribution(d params.Distribution) map[string]any {
	switch dist := d.(type) {
	case params.NormalDistribution:
		return map[string]any{
			"Kind":        dist.Kind(),
			"Mean":        dist.Mean,
			"StandardDev": dist.StandardDev,
			"Lower":       dist.Lower,
			"Upper":       dist.Upper,
		}
	case params.UniformDistribution:
		return map[string]any{
			"Kind":  dist.Kind(),
			"Lower": dist.Lower,
			"Upper": dist.Upper,
		}
	default:
		return nil
	}
}

func decodeDistribution(r *record) (params.Distribution, error) {
	kind, err := r.ExpectString("Kind")
	if err != nil {
		return nil, err
	}
	switch kind {
	case "Normal":
		mean, err := r.ExpectFloat("Mean")
		if err != nil {
			return nil, err
		}
		sd, err := r.ExpectFloat("StandardDev")
		if err != nil {
			return nil, err
		}
		lower, err := r.ExpectFloat("Lower")
		if err != nil {
			return nil, err
		}
		upper, err := r.ExpectFloat("Upper")
		if err != nil {
			return nil, err
		}
		if err := r.CheckConsumed(); err != nil {
			return nil, err
		}
		if sd < 0 || upper < lower {
			return nil, pathError(r.path, fmt.Errorf("%w: degenerate normal distribution", ErrOutOfRange))
		}
		return params.NormalDistribution{Mean: mean, StandardDev: sd, Lower: lower, Upper: upper}, nil
	case "Uniform":
		lower, err := r.ExpectFloat("Lower")
		if err != nil {
			return nil, err
		}
		upper, err := r.ExpectFloat("Upper")
		if err != nil {
			return nil, err
		}
		if err := r.CheckConsumed(); err != nil {
			return nil, err
		}
		if upper < lower {
			return nil, pathError(r.path, fmt.Errorf("%w: degenerate uniform distribution", ErrOutOfRange))
		}
		return params.UniformDistribution{Lower: lower, Upper: upper}, nil
	default:
		return nil, pathError(r.childPath("Kind"), fmt.Errorf("%w: distribution kind %q", ErrOutOfRange, kind))
	}
}

func encodeUncertainValue(u params.UncertainValue) any {
	if u.Distribution == nil {
		return u.Value
	}
	return map[string]any{
		"Value":        u.Value,
		"Distribution": encodeDistribution(u.Distribution),
	}
}

func decodeUncertainValue(path string, v any) (params.UncertainValue, error) {
	if f, ok := toFloat(v); ok {
		return params.NewUncertainValue(f), nil
	}
	switch value := v.(type) {
	case map[string]any:
		r := newRecord(path, value)
		scalar, err := r.ExpectFloat("Value")
		if err != nil {
			return params.UncertainValue{}, err
		}
		u := params.NewUncertainValue(scalar)
		if r.Optional("Distribution") {
			distObj, ok := value["Distribution"].(map[string]any)
			if !ok {
				return params.UncertainValue{}, pathError(path+".Distribution", fmt.Errorf("%w: not an object", ErrOutOfRange))
			}
			dist, err := decodeDistribution(newRecord(path+".Distribution", distObj))
			if err != nil {
				return params.UncertainValue{}, err
			}
			u.SetDistribution(dist)
		}
		if err := r.CheckConsumed(); err != nil {
			return params.UncertainValue{}, err
		}
		return u, nil
	default:
		return params.UncertainValue{}, pathError(path, fmt.Errorf("%w: not a scalar or value record", ErrOutOfRange))
	}
}

func encodeUncertainSlice(vals []params.UncertainValue) []any {
	out := make([]any, len(vals))
	for i := range vals {
		out[i] = encodeUncertainValue(vals[i])
	}
	return out
}

func decodeUncertainSlice(path string, raw []any, want int) ([]params.UncertainValue, error) {
	if len(raw) != want {
		return nil, pathError(path, fmt.Errorf("%w: %d elements, want %d", ErrOutOfRange, len(raw), want))
	}
	out := make([]params.UncertainValue, len(raw))
	for i, v := range raw {
		u, err := decodeUncertainValue(fmt.Sprintf("%s[%d]", path, i), v)
		if err != nil {
			return nil, err
		}
		out[i] = u
	}
	return out, nil
}

func encodeMatrix(m params.Matrix) map[string]any {
	data := make([]any, len(m.Data))
	for i, v := range m.Data {
		data[i] = v
	}
	return map[string]any{"N": m.N, "Data": data}
}

func decodeMatrix(r *record) (params.Matrix, error) {
	n, err := r.ExpectInt("N")
	if err != nil {
		return params.Matrix{}, err
	}
	data, err := r.ExpectFloatArray("Data")
	if err != nil {
		return params.Matrix{}, err
	}
	if err := r.CheckConsumed(); err != nil {
		return params.Matrix{}, err
	}
	if n < 0 || len(data) != n*n {
		return params.Matrix{}, pathError(r.path, fmt.Errorf("%w: %d values for size %d", ErrOutOfRange, len(data), n))
	}
	return params.Matrix{N: n, Data: data}, nil
}

func encodeContactPatterns(g params.ContactMatrixGroup) []any {
	out := make([]any, len(g))
	for i, cm := range g {
		dampings := make([]any, len(cm.Dampings))
		for j, d := range cm.Dampings {
			dampings[j] = map[string]any{"Time": d.Time, "Value": encodeMatrix(d.Value)}
		}
		out[i] = map[string]any{"Baseline": encodeMatrix(cm.Baseline), "Dampings": dampings}
	}
	return out
}

func decodeContactPatterns(path string, raw []any) (params.ContactMatrixGroup, error) {
	group := make(params.ContactMatrixGroup, 0, len(raw))
	for i, v := range raw {
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, pathError(fmt.Sprintf("%s[%d]", path, i), fmt.Errorf("%w: not an object", ErrOutOfRange))
		}
		r := newRecord(fmt.Sprintf("%s[%d]", path, i), obj)
		baselineRec, err := r.ExpectObject("Baseline")
		if err != nil {
			return nil, err
		}
		baseline, err := decodeMatrix(baselineRec)
		if err != nil {
			return nil, err
		}
		cm := params.NewContactMatrix(baseline)
		dampings, err := r.ExpectArray("Dampings")
		if err != nil {
			return nil, err
		}
		for j, dv := range dampings {
			dobj, ok := dv.(map[string]any)
			if !ok {
				return nil, pathError(fmt.Sprintf("%s[%d].Dampings[%d]", path, i, j), fmt.Errorf("%w: not an object", ErrOutOfRange))
			}
			dr := newRecord(fmt.Sprintf("%s[%d].Dampings[%d]", path, i, j), dobj)
			t, err := dr.ExpectFloat("Time")
			if err != nil {
				return nil, err
			}
			valueRec, err := dr.ExpectObject("Value")
			if err != nil {
				return nil, err
			}
			value, err := decodeMatrix(valueRec)
			if err != nil {
				return nil, err
			}
			if err := dr.CheckConsumed(); err != nil {
				return nil, err
			}
			cm.AddDampingMatrix(value, t)
		}
		if err := r.CheckConsumed(); err != nil {
			return nil, err
		}
		group = append(group, cm)
	}
	return group, nil
}

// EncodeModel converts a model to its nested record representation.
func EncodeModel(m *secihurd.Model) map[string]any {
	p := m.Parameters
	out := map[string]any{
		"NumGroups":            p.NumGroups,
		"StartDay":             p.StartDay,
		"Seasonality":          encodeUncertainValue(p.Seasonality),
		"ICUCapacity":          encodeUncertainValue(p.ICUCapacity),
		"TestAndTraceCapacity": encodeUncertainValue(p.TestAndTraceCapacity),
		"ContactPatterns":      encodeContactPatterns(p.ContactPatterns),
		"Populations":          encodeUncertainSlice(m.Populations.Cells),
	}
	for _, field := range p.PerAgeFields() {
		out[field.Name] = encodeUncertainSlice(field.Values)
	}
	return out
}

// DecodeModel rebuilds a model from its record representation,
// reporting missing, unknown, and out-of-range fields with their paths.
func DecodeModel(fields map[string]any) (*secihurd.Model, error) {
	r := newRecord("", fields)
	numGroups, err := r.ExpectInt("NumGroups")
	if err != nil {
		return nil, err
	}
	if numGroups <= 0 {
		return nil, pathError("NumGroups", fmt.Errorf("%w: %d", ErrOutOfRange, numGroups))
	}

	m := secihurd.New(numGroups)
	p := m.Parameters

	if p.StartDay, err = r.ExpectFloat("StartDay"); err != nil {
		return nil, err
	}
	for _, name := range []string{"Seasonality", "ICUCapacity", "TestAndTraceCapacity"} {
		raw, err := r.lookup(name)
		if err != nil {
			return nil, err
		}
		u, err := decodeUncertainValue(name, raw)
		if err != nil {
			return nil, err
		}
		switch name {
		case "Seasonality":
			p.Seasonality = u
		case "ICUCapacity":
			p.ICUCapacity = u
		case "TestAndTraceCapacity":
			p.TestAndTraceCapacity = u
		}
	}

	for _, field := range p.PerAgeFields() {
		raw, err := r.ExpectArray(field.Name)
		if err != nil {
			return nil, err
		}
		vals, err := decodeUncertainSlice(field.Name, raw, numGroups)
		if err != nil {
			return nil, err
		}
		copy(field.Values, vals)
	}

	contactRaw, err := r.ExpectArray("ContactPatterns")
	if err != nil {
		return nil, err
	}
	if p.ContactPatterns, err = decodeContactPatterns("ContactPatterns", contactRaw); err != nil {
		return nil, err
	}
	for _, cm := range p.ContactPatterns {
		if cm.Baseline.N != numGroups {
			return nil, pathError("ContactPatterns", fmt.Errorf("%w: matrix size %d, want %d", ErrOutOfRange, cm.Baseline.N, numGroups))
		}
	}

	popRaw, err := r.ExpectArray("Populations")
	if err != nil {
		return nil, err
	}
	cells, err := decodeUncertainSlice("Populations", popRaw, len(m.Populations.Cells))
	if err != nil {
		return nil, err
	}
	copy(m.Populations.Cells, cells)

	if err := r.CheckConsumed(); err != nil {
		return nil, err
	}
	return m, nil
}

// SaveModel writes a model as an indented JSON parameter tree.
func SaveModel(path string, m *secihurd.Model) error {
	data, err := json.MarshalIndent(EncodeModel(m), "", "  ")
	if err != nil {
		return fileError(path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fileError(path, err)
	}
	return nil
}

// LoadModel reads a model from a JSON parameter tree.
func LoadModel(path string) (*secihurd.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fileError(path, err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fileError(path, err)
	}
	m, err := DecodeModel(fields)
	if err != nil {
		return nil, fileError(path, err)
	}
	return m, nil
}
