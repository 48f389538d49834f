package paramio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"epigraph/internal/timeseries"
)

func TestTimeSeriesCSVRoundTrip(t *testing.T) {
	ts := timeseries.New(8)
	ts.Append(0, []float64{9760, 100, 50, 50, 20, 10, 10, 0})
	ts.Append(0.25, []float64{9750.5, 105.25, 51, 52, 20, 10, 11, 0.125})

	path := filepath.Join(t.TempDir(), "result.csv")
	if err := WriteTimeSeriesCSV(path, ts); err != nil {
		t.Fatalf("write: %v", err)
	}
	back, err := ReadTimeSeriesCSV(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if back.NumTimePoints() != 2 || back.NumElements() != 8 {
		t.Fatalf("shape %dx%d, want 2x8", back.NumTimePoints(), back.NumElements())
	}
	for i := 0; i < 2; i++ {
		if back.Time(i) != ts.Time(i) {
			t.Fatalf("time %d = %v, want %v", i, back.Time(i), ts.Time(i))
		}
		for k := range ts.Value(i) {
			if back.Value(i)[k] != ts.Value(i)[k] {
				t.Fatalf("value (%d, %d) = %v, want %v", i, k, back.Value(i)[k], ts.Value(i)[k])
			}
		}
	}
}

func TestResultHeaderNamesCompartments(t *testing.T) {
	ts := timeseries.New(16)
	ts.Append(0, make([]float64, 16))
	path := filepath.Join(t.TempDir(), "result.csv")
	if err := WriteTimeSeriesCSV(path, ts); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	header := strings.Split(strings.SplitN(string(data), "\n", 2)[0], ",")
	if header[0] != "time" || header[1] != "Susceptible0" || header[9] != "Susceptible1" || header[16] != "Dead1" {
		t.Fatalf("unexpected header %v", header[:3])
	}
}

func TestReadRejectsMalformedTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(path, []byte("time,S0\n1,notanumber\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := ReadTimeSeriesCSV(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSaveNodeResults(t *testing.T) {
	ts := timeseries.New(8)
	ts.Append(0, make([]float64, 8))
	dir := filepath.Join(t.TempDir(), "out")
	if err := SaveNodeResults(dir, []*timeseries.TimeSeries{ts, ts}); err != nil {
		t.Fatalf("save: %v", err)
	}
	for _, name := range []string{"result_node0.csv", "result_node1.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
}
