package paramio

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"epigraph/internal/model"
	"epigraph/internal/timeseries"
)

// resultHeader builds the column names: time followed by the flattened
// (age x compartment) values.
func resultHeader(numElements int) []string {
	header := make([]string, 0, numElements+1)
	header = append(header, "time")
	for i := 0; i < numElements; i++ {
		age := i / model.CompartmentCount
		comp := model.Compartment(i % model.CompartmentCount)
		header = append(header, fmt.Sprintf("%s%d", comp, age))
	}
	return header
}

// WriteTimeSeriesCSV writes one time series as a table with columns
// time, Susceptible0, Exposed0, ..., Dead0, Susceptible1, ...
func WriteTimeSeriesCSV(path string, ts *timeseries.TimeSeries) error {
	f, err := os.Create(path)
	if err != nil {
		return fileError(path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(resultHeader(ts.NumElements())); err != nil {
		return fileError(path, err)
	}
	row := make([]string, ts.NumElements()+1)
	for i := 0; i < ts.NumTimePoints(); i++ {
		row[0] = strconv.FormatFloat(ts.Time(i), 'g', -1, 64)
		for k, v := range ts.Value(i) {
			row[k+1] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return fileError(path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fileError(path, err)
	}
	return nil
}

// ReadTimeSeriesCSV reads a table written by WriteTimeSeriesCSV.
func ReadTimeSeriesCSV(path string) (*timeseries.TimeSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fileError(path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fileError(path, err)
	}
	if len(records) == 0 {
		return nil, fileError(path, fmt.Errorf("%w: empty result table", ErrMissingField))
	}
	numElements := len(records[0]) - 1
	if numElements <= 0 || records[0][0] != "time" {
		return nil, fileError(path, fmt.Errorf("%w: malformed result header", ErrOutOfRange))
	}
	ts := timeseries.New(numElements)
	row := make([]float64, numElements)
	for i, rec := range records[1:] {
		if len(rec) != numElements+1 {
			return nil, fileError(path, fmt.Errorf("%w: row %d has %d columns, want %d", ErrOutOfRange, i+1, len(rec), numElements+1))
		}
		t, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return nil, fileError(path, fmt.Errorf("%w: row %d time: %v", ErrOutOfRange, i+1, err))
		}
		for k := 0; k < numElements; k++ {
			v, err := strconv.ParseFloat(rec[k+1], 64)
			if err != nil {
				return nil, fileError(path, fmt.Errorf("%w: row %d column %d: %v", ErrOutOfRange, i+1, k+1, err))
			}
			row[k] = v
		}
		ts.Append(t, row)
	}
	return ts, nil
}

// SaveNodeResults writes one CSV per node into dir, named
// result_node<k>.csv.
func SaveNodeResults(dir string, results []*timeseries.TimeSeries) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fileError(dir, err)
	}
	for i, ts := range results {
		path := filepath.Join(dir, fmt.Sprintf("result_node%d.csv", i))
		if err := WriteTimeSeriesCSV(path, ts); err != nil {
			return err
		}
	}
	return nil
}
