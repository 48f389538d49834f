package regions

import (
	"epigraph/internal/dates"
)

// StateID identifies a German federal state (1-16).
type StateID int

// CountyID identifies a German county; the leading digits encode the
// state.
type CountyID int

// GetStateID maps a county to its federal state.
func GetStateID(county CountyID) StateID {
	return StateID(int(county) / 1000)
}

// HolidayPeriod is one school holiday span, both dates inclusive of the
// first day and exclusive of everyday life resuming after End.
type HolidayPeriod struct {
	Start dates.Date
	End   dates.Date
}

// GetHolidays returns all holiday periods of a state, ordered by start
// date. An unknown state yields an empty list.
func GetHolidays(state StateID) []HolidayPeriod {
	if int(state) < 1 || int(state) > 16 {
		return nil
	}
	return holidayData[int(state)]
}

// GetHolidaysInRange returns the holiday periods of a state overlapping
// [startDate, endDate].
func GetHolidaysInRange(state StateID, startDate, endDate dates.Date) []HolidayPeriod {
	all := GetHolidays(state)
	var out []HolidayPeriod
	for _, p := range all {
		if p.End.Compare(startDate) >= 0 && p.Start.Compare(endDate) <= 0 {
			out = append(out, p)
		}
	}
	return out
}
