package storage

import (
	"testing"

	"epigraph/internal/timeseries"
)

func TestResultsCodecRoundTrip(t *testing.T) {
	node0 := timeseries.New(3)
	node0.Append(0, []float64{1, 2, 3})
	node0.Append(0.5, []float64{4, 5, 6})
	node1 := timeseries.New(3)
	node1.Append(0, []float64{7, 8, 9})

	data, err := EncodeResults([]*timeseries.TimeSeries{node0, node1})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	back, err := DecodeResults(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(back) != 2 {
		t.Fatalf("nodes = %d, want 2", len(back))
	}
	if back[0].NumTimePoints() != 2 || back[1].NumTimePoints() != 1 {
		t.Fatal("time point counts lost")
	}
	if back[0].Time(1) != 0.5 || back[0].Value(1)[2] != 6 || back[1].Value(0)[0] != 7 {
		t.Fatal("values lost in round trip")
	}
}

func TestDecodeResultsRejectsMismatchedRows(t *testing.T) {
	if _, err := DecodeResults([]byte(`[{"num_elements": 2, "times": [0], "values": [[1]]}]`)); err == nil {
		t.Fatal("expected error for row width mismatch")
	}
	if _, err := DecodeResults([]byte(`[{"num_elements": 1, "times": [0, 1], "values": [[1]]}]`)); err == nil {
		t.Fatal("expected error for times/rows mismatch")
	}
}

func TestStudyCodecRoundTrip(t *testing.T) {
	study := StudyRecord{ID: "abc", Label: "demo", Seed: 7, NumRuns: 5, T0: 0, Tmax: 50, Dt: 0.5}
	data, err := EncodeStudy(study)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	back, err := DecodeStudy(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back != study {
		t.Fatalf("study = %+v, want %+v", back, study)
	}
}
