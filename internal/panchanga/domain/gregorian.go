package domain

import (
	"fmt"
	"time"
)

// GregorianDate is an immutable solar calendar date.
type GregorianDate struct {
	Year  int
	Month int
	Day   int
}

// NewGregorianDate creates a Gregorian date value.
func NewGregorianDate(year, month, day int) GregorianDate {
	return GregorianDate{Year: year, Month: month, Day: day}
}

// GregorianFromTime converts a time.Time to a GregorianDate, dropping the clock.
func GregorianFromTime(t time.Time) GregorianDate {
	return GregorianDate{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// JulianDay returns the Julian Day Number of the date at noon UT.
// Uses the closed-form Fliegel-Van Flandern formula, valid for all
// dates in the proleptic Gregorian calendar.
func (g GregorianDate) JulianDay() int {
	a := (14 - g.Month) / 12
	y := g.Year + 4800 - a
	m := g.Month + 12*a - 3
	return g.Day + (153*m+2)/5 + 365*y + y/4 - y/100 + y/400 - 32045
}

// GregorianFromJulianDay inverts JulianDay.
func GregorianFromJulianDay(jdn int) GregorianDate {
	a := jdn + 32044
	b := (4*a + 3) / 146097
	c := a - 146097*b/4
	d := (4*c + 3) / 1461
	e := c - 1461*d/4
	m := (5*e + 2) / 153
	return GregorianDate{
		Day:   e - (153*m+2)/5 + 1,
		Month: m + 3 - 12*(m/10),
		Year:  100*b + d - 4800 + m/10,
	}
}

// DayOfYear returns the 1-based ordinal position of the date within its year.
func (g GregorianDate) DayOfYear() int {
	jan1 := GregorianDate{Year: g.Year, Month: 1, Day: 1}
	return g.JulianDay() - jan1.JulianDay() + 1
}

// AddDays returns the date shifted by the given number of days.
func (g GregorianDate) AddDays(days int) GregorianDate {
	return GregorianFromJulianDay(g.JulianDay() + days)
}

// Time returns the date at midnight UTC.
func (g GregorianDate) Time() time.Time {
	return time.Date(g.Year, time.Month(g.Month), g.Day, 0, 0, 0, 0, time.UTC)
}

// Before reports whether g is strictly earlier than other.
func (g GregorianDate) Before(other GregorianDate) bool {
	return g.JulianDay() < other.JulianDay()
}

// After reports whether g is strictly later than other.
func (g GregorianDate) After(other GregorianDate) bool {
	return g.JulianDay() > other.JulianDay()
}

// IsZero reports whether the date is the zero value.
func (g GregorianDate) IsZero() bool {
	return g.Year == 0 && g.Month == 0 && g.Day == 0
}

// String formats the date as YYYY-MM-DD.
func (g GregorianDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", g.Year, g.Month, g.Day)
}
