package storage

import (
	"encoding/json"
	"fmt"

	"epigraph/internal/timeseries"
)

type seriesPayload struct {
	NumElements int         `json:"num_elements"`
	Times       []float64   `json:"times"`
	Values      [][]float64 `json:"values"`
}

// EncodeResults serializes per-node time series for storage.
func EncodeResults(results []*timeseries.TimeSeries) ([]byte, error) {
	payloads := make([]seriesPayload, len(results))
	for i, ts := range results {
		p := seriesPayload{NumElements: ts.NumElements()}
		for j := 0; j < ts.NumTimePoints(); j++ {
			p.Times = append(p.Times, ts.Time(j))
			row := make([]float64, ts.NumElements())
			copy(row, ts.Value(j))
			p.Values = append(p.Values, row)
		}
		payloads[i] = p
	}
	return json.Marshal(payloads)
}

// DecodeResults rebuilds per-node time series from a stored payload.
func DecodeResults(data []byte) ([]*timeseries.TimeSeries, error) {
	var payloads []seriesPayload
	if err := json.Unmarshal(data, &payloads); err != nil {
		return nil, err
	}
	out := make([]*timeseries.TimeSeries, len(payloads))
	for i, p := range payloads {
		if len(p.Times) != len(p.Values) {
			return nil, fmt.Errorf("decode results: node %d has %d times but %d rows", i, len(p.Times), len(p.Values))
		}
		ts := timeseries.New(p.NumElements)
		for j := range p.Times {
			if len(p.Values[j]) != p.NumElements {
				return nil, fmt.Errorf("decode results: node %d row %d has %d elements, want %d", i, j, len(p.Values[j]), p.NumElements)
			}
			ts.Append(p.Times[j], p.Values[j])
		}
		out[i] = ts
	}
	return out, nil
}

func EncodeStudy(s StudyRecord) ([]byte, error) {
	return json.Marshal(s)
}

func DecodeStudy(data []byte) (StudyRecord, error) {
	var s StudyRecord
	if err := json.Unmarshal(data, &s); err != nil {
		return StudyRecord{}, err
	}
	return s, nil
}
