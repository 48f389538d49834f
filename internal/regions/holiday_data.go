package regions

import "epigraph/internal/dates"

func period(y1, m1, d1, y2, m2, d2 int) HolidayPeriod {
	return HolidayPeriod{Start: dates.New(y1, m1, d1), End: dates.New(y2, m2, d2)}
}

// School holiday periods of the 2020 season per federal state, ordered
// by start date. Key is the state id.
var holidayData = map[int][]HolidayPeriod{
	1: { // Schleswig-Holstein
		period(2020, 3, 30, 2020, 4, 17),
		period(2020, 6, 29, 2020, 8, 8),
		period(2020, 10, 5, 2020, 10, 17),
		period(2020, 12, 19, 2021, 1, 6),
	},
	2: { // Hamburg
		period(2020, 3, 2, 2020, 3, 13),
		period(2020, 6, 25, 2020, 8, 5),
		period(2020, 10, 5, 2020, 10, 16),
		period(2020, 12, 21, 2021, 1, 4),
	},
	3: { // Niedersachsen
		period(2020, 3, 30, 2020, 4, 14),
		period(2020, 7, 16, 2020, 8, 26),
		period(2020, 10, 12, 2020, 10, 23),
		period(2020, 12, 23, 2021, 1, 8),
	},
	4: { // Bremen
		period(2020, 3, 28, 2020, 4, 14),
		period(2020, 7, 16, 2020, 8, 26),
		period(2020, 10, 12, 2020, 10, 24),
		period(2020, 12, 23, 2021, 1, 8),
	},
	5: { // Nordrhein-Westfalen
		period(2020, 4, 6, 2020, 4, 18),
		period(2020, 6, 29, 2020, 8, 11),
		period(2020, 10, 12, 2020, 10, 24),
		period(2020, 12, 23, 2021, 1, 6),
	},
	6: { // Hessen
		period(2020, 4, 6, 2020, 4, 18),
		period(2020, 7, 6, 2020, 8, 14),
		period(2020, 10, 5, 2020, 10, 17),
		period(2020, 12, 21, 2021, 1, 9),
	},
	7: { // Rheinland-Pfalz
		period(2020, 4, 9, 2020, 4, 17),
		period(2020, 7, 6, 2020, 8, 14),
		period(2020, 10, 12, 2020, 10, 23),
		period(2020, 12, 21, 2021, 1, 1),
	},
	8: { // Baden-Wuerttemberg
		period(2020, 4, 6, 2020, 4, 18),
		period(2020, 7, 30, 2020, 9, 12),
		period(2020, 10, 26, 2020, 10, 30),
		period(2020, 12, 23, 2021, 1, 9),
	},
	9: { // Bayern
		period(2020, 4, 6, 2020, 4, 18),
		period(2020, 6, 2, 2020, 6, 13),
		period(2020, 7, 27, 2020, 9, 7),
		period(2020, 10, 31, 2020, 11, 7),
		period(2020, 12, 23, 2021, 1, 9),
	},
	10: { // Saarland
		period(2020, 4, 14, 2020, 4, 24),
		period(2020, 7, 6, 2020, 8, 14),
		period(2020, 10, 12, 2020, 10, 23),
		period(2020, 12, 21, 2021, 1, 1),
	},
	11: { // Berlin
		period(2020, 4, 6, 2020, 4, 17),
		period(2020, 6, 25, 2020, 8, 7),
		period(2020, 10, 12, 2020, 10, 24),
		period(2020, 12, 21, 2021, 1, 2),
	},
	12: { // Brandenburg
		period(2020, 4, 6, 2020, 4, 17),
		period(2020, 6, 25, 2020, 8, 8),
		period(2020, 10, 12, 2020, 10, 24),
		period(2020, 12, 21, 2021, 1, 2),
	},
	13: { // Mecklenburg-Vorpommern
		period(2020, 4, 6, 2020, 4, 15),
		period(2020, 6, 22, 2020, 8, 1),
		period(2020, 10, 5, 2020, 10, 10),
		period(2020, 12, 21, 2021, 1, 2),
	},
	14: { // Sachsen
		period(2020, 4, 10, 2020, 4, 18),
		period(2020, 7, 20, 2020, 8, 28),
		period(2020, 10, 19, 2020, 10, 31),
		period(2020, 12, 23, 2021, 1, 2),
	},
	15: { // Sachsen-Anhalt
		period(2020, 4, 6, 2020, 4, 11),
		period(2020, 7, 16, 2020, 8, 26),
		period(2020, 10, 19, 2020, 10, 24),
		period(2020, 12, 21, 2021, 1, 5),
	},
	16: { // Thueringen
		period(2020, 4, 6, 2020, 4, 18),
		period(2020, 7, 20, 2020, 8, 29),
		period(2020, 10, 17, 2020, 10, 30),
		period(2020, 12, 23, 2021, 1, 2),
	},
}
