package paramio

import (
	"encoding/json"

	"epigraph/internal/dates"
)

// EncodeDateJSON renders a date as its {Year, Month, Day} record.
func EncodeDateJSON(d dates.Date) ([]byte, error) {
	return json.Marshal(encodeDate(d))
}

// DecodeDateJSON parses a {Year, Month, Day} record with bounds
// checking.
func DecodeDateJSON(data []byte) (dates.Date, error) {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return dates.Date{}, err
	}
	return decodeDate(newRecord("Date", fields))
}
