package domain

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrTableEmpty         = errors.New("calendar table has no years")
	ErrTableGap           = errors.New("calendar table years are not contiguous")
	ErrTableBadYearLength = errors.New("calendar table year length does not match leap list")
)

// CalendarTable holds the Bikram Sambat conversion data: the Julian Day
// Number of the table's first day (1 Baisakh of StartYear), the set of
// 366-day years, and the per-year month lengths.
//
// The table is an external data dependency. Its internal consistency
// (month sums vs. the leap list, year contiguity) is checked once at
// construction rather than trusted.
type CalendarTable struct {
	startYear      int
	endYear        int
	startJulianDay int
	leap           map[int]bool
	monthLengths   map[int][12]int
}

// NewCalendarTable builds and validates a conversion table.
// startJulianDay is the JDN of 1 Baisakh of startYear. leapYears lists
// every year whose twelve months sum to 366 days; every other year in
// the table must sum to 365.
func NewCalendarTable(startYear, startJulianDay int, leapYears []int, monthLengths map[int][12]int) (*CalendarTable, error) {
	if len(monthLengths) == 0 {
		return nil, ErrTableEmpty
	}

	years := make([]int, 0, len(monthLengths))
	for y := range monthLengths {
		years = append(years, y)
	}
	sort.Ints(years)

	if years[0] != startYear {
		return nil, fmt.Errorf("%w: table starts at %d, expected %d", ErrTableGap, years[0], startYear)
	}
	for i := 1; i < len(years); i++ {
		if years[i] != years[i-1]+1 {
			return nil, fmt.Errorf("%w: missing year %d", ErrTableGap, years[i-1]+1)
		}
	}

	leap := make(map[int]bool, len(leapYears))
	for _, y := range leapYears {
		leap[y] = true
	}

	for _, y := range years {
		sum := 0
		for _, d := range monthLengths[y] {
			sum += d
		}
		want := 365
		if leap[y] {
			want = 366
		}
		if sum != want {
			return nil, fmt.Errorf("%w: year %d sums to %d, want %d", ErrTableBadYearLength, y, sum, want)
		}
	}

	return &CalendarTable{
		startYear:      startYear,
		endYear:        years[len(years)-1],
		startJulianDay: startJulianDay,
		leap:           leap,
		monthLengths:   monthLengths,
	}, nil
}

// StartYear returns the first Bikram Sambat year covered by the table.
func (t *CalendarTable) StartYear() int { return t.startYear }

// EndYear returns the last Bikram Sambat year covered by the table.
func (t *CalendarTable) EndYear() int { return t.endYear }

// StartJulianDay returns the JDN of 1 Baisakh of StartYear.
func (t *CalendarTable) StartJulianDay() int { return t.startJulianDay }

// ContainsYear reports whether the table covers the given year.
func (t *CalendarTable) ContainsYear(year int) bool {
	return year >= t.startYear && year <= t.endYear
}

// YearLength returns the number of days in the given year.
func (t *CalendarTable) YearLength(year int) int {
	if t.leap[year] {
		return 366
	}
	return 365
}

// MonthLength returns the number of days in the given month, or 0 for
// out-of-range input.
func (t *CalendarTable) MonthLength(year, month int) int {
	if month < 1 || month > 12 {
		return 0
	}
	lengths, ok := t.monthLengths[year]
	if !ok {
		return 0
	}
	return lengths[month-1]
}

// EndJulianDay returns the JDN of the last day covered by the table.
func (t *CalendarTable) EndJulianDay() int {
	jdn := t.startJulianDay - 1
	for y := t.startYear; y <= t.endYear; y++ {
		jdn += t.YearLength(y)
	}
	return jdn
}

// deriveLeapYears returns the years whose month lengths sum to 366.
// Used by table providers that ship month lengths without a leap list.
func deriveLeapYears(monthLengths map[int][12]int) []int {
	var leap []int
	for y, lengths := range monthLengths {
		sum := 0
		for _, d := range lengths {
			sum += d
		}
		if sum == 366 {
			leap = append(leap, y)
		}
	}
	sort.Ints(leap)
	return leap
}
