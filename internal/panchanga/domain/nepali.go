package domain

import "fmt"

// NepaliDate is an immutable Bikram Sambat (lunisolar) calendar date.
// Month is 1..12 (Baisakh..Chaitra); Day is bounded by the per-year
// month length table.
type NepaliDate struct {
	Year  int
	Month int
	Day   int
}

// NewNepaliDate creates a Bikram Sambat date value.
func NewNepaliDate(year, month, day int) NepaliDate {
	return NepaliDate{Year: year, Month: month, Day: day}
}

// IsZero reports whether the date is the zero value.
func (n NepaliDate) IsZero() bool {
	return n.Year == 0 && n.Month == 0 && n.Day == 0
}

// String formats the date as YYYY-MM-DD BS.
func (n NepaliDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d BS", n.Year, n.Month, n.Day)
}

// nepaliMonthNames indexed by month number (1-based).
var nepaliMonthNames = [...]string{
	"", "Baisakh", "Jestha", "Ashadh", "Shrawan", "Bhadra", "Ashwin",
	"Kartik", "Mangsir", "Poush", "Magh", "Falgun", "Chaitra",
}

// MonthName returns the Nepali month name, or an empty string for an
// out-of-range month.
func (n NepaliDate) MonthName() string {
	if n.Month < 1 || n.Month > 12 {
		return ""
	}
	return nepaliMonthNames[n.Month]
}
