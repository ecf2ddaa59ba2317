package domain

import (
	"fmt"
	"log/slog"
)

// ConversionError reports a date outside the conversion table's range.
// Conversions never fail outright: alongside the error the caller
// always receives a usable fallback date clamped to the nearest table
// boundary, so rendering code can ignore the error safely.
type ConversionError struct {
	Input  string
	Reason string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("date conversion failed for %s: %s", e.Input, e.Reason)
}

// Converter performs table-driven Gregorian <-> Bikram Sambat
// conversion via Julian Day Number arithmetic. It is stateless after
// construction and safe for concurrent use.
type Converter struct {
	table  *CalendarTable
	logger *slog.Logger
}

// NewConverter creates a converter over a validated calendar table.
func NewConverter(table *CalendarTable, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{table: table, logger: logger}
}

// Table returns the underlying conversion table.
func (c *Converter) Table() *CalendarTable { return c.table }

// GregorianToNepali converts a Gregorian date to Bikram Sambat.
// Input outside the table range yields the clamped boundary date plus
// a *ConversionError.
func (c *Converter) GregorianToNepali(g GregorianDate) (NepaliDate, error) {
	jdn := g.JulianDay()

	if jdn < c.table.StartJulianDay() {
		return c.fallbackNepali(g.String(), "before supported range")
	}
	if jdn > c.table.EndJulianDay() {
		return c.fallbackNepaliEnd(g.String(), "after supported range")
	}

	// Walk whole years from the table start, then months, then days.
	offset := jdn - c.table.StartJulianDay()
	year := c.table.StartYear()
	for offset >= c.table.YearLength(year) {
		offset -= c.table.YearLength(year)
		year++
	}

	month := 1
	for offset >= c.table.MonthLength(year, month) {
		offset -= c.table.MonthLength(year, month)
		month++
	}

	return NepaliDate{Year: year, Month: month, Day: offset + 1}, nil
}

// NepaliToGregorian converts a Bikram Sambat date to Gregorian.
// Input outside the table range yields the clamped boundary date plus
// a *ConversionError.
func (c *Converter) NepaliToGregorian(n NepaliDate) (GregorianDate, error) {
	if n.Year < c.table.StartYear() {
		return c.fallbackGregorian(n.String(), "before supported range")
	}
	if n.Year > c.table.EndYear() {
		return c.fallbackGregorianEnd(n.String(), "after supported range")
	}
	if n.Month < 1 || n.Month > 12 || n.Day < 1 || n.Day > c.table.MonthLength(n.Year, n.Month) {
		return c.fallbackGregorian(n.String(), "invalid month or day")
	}

	jdn := c.table.StartJulianDay()
	for y := c.table.StartYear(); y < n.Year; y++ {
		jdn += c.table.YearLength(y)
	}
	for m := 1; m < n.Month; m++ {
		jdn += c.table.MonthLength(n.Year, m)
	}
	jdn += n.Day - 1

	return GregorianFromJulianDay(jdn), nil
}

func (c *Converter) fallbackNepali(input, reason string) (NepaliDate, error) {
	err := &ConversionError{Input: input, Reason: reason}
	c.logger.Warn("gregorian to nepali conversion out of range", "input", input, "reason", reason)
	return NepaliDate{Year: c.table.StartYear(), Month: 1, Day: 1}, err
}

func (c *Converter) fallbackNepaliEnd(input, reason string) (NepaliDate, error) {
	err := &ConversionError{Input: input, Reason: reason}
	c.logger.Warn("gregorian to nepali conversion out of range", "input", input, "reason", reason)
	end := c.table.EndYear()
	return NepaliDate{Year: end, Month: 12, Day: c.table.MonthLength(end, 12)}, err
}

func (c *Converter) fallbackGregorian(input, reason string) (GregorianDate, error) {
	err := &ConversionError{Input: input, Reason: reason}
	c.logger.Warn("nepali to gregorian conversion out of range", "input", input, "reason", reason)
	return GregorianFromJulianDay(c.table.StartJulianDay()), err
}

func (c *Converter) fallbackGregorianEnd(input, reason string) (GregorianDate, error) {
	err := &ConversionError{Input: input, Reason: reason}
	c.logger.Warn("nepali to gregorian conversion out of range", "input", input, "reason", reason)
	return GregorianFromJulianDay(c.table.EndJulianDay()), err
}
