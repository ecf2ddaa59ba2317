package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGregorianDate_JulianDay(t *testing.T) {
	tests := []struct {
		date GregorianDate
		jdn  int
	}{
		{GregorianDate{2000, 1, 1}, 2451545},
		{GregorianDate{1943, 4, 14}, 2430829}, // 1 Baisakh 2000 BS
		{GregorianDate{1991, 6, 26}, 2448434},
	}

	for _, tc := range tests {
		t.Run(tc.date.String(), func(t *testing.T) {
			assert.Equal(t, tc.jdn, tc.date.JulianDay())
		})
	}
}

func TestGregorianFromJulianDay_RoundTrip(t *testing.T) {
	// Walk a full leap cycle day by day.
	start := GregorianDate{2019, 1, 1}.JulianDay()
	end := GregorianDate{2023, 1, 1}.JulianDay()

	for jdn := start; jdn <= end; jdn++ {
		g := GregorianFromJulianDay(jdn)
		require.Equal(t, jdn, g.JulianDay(), "round trip failed at %s", g)
	}
}

func TestGregorianDate_DayOfYear(t *testing.T) {
	assert.Equal(t, 1, GregorianDate{2024, 1, 1}.DayOfYear())
	assert.Equal(t, 60, GregorianDate{2024, 2, 29}.DayOfYear())
	assert.Equal(t, 366, GregorianDate{2024, 12, 31}.DayOfYear())
	assert.Equal(t, 365, GregorianDate{2023, 12, 31}.DayOfYear())
	assert.Equal(t, 177, GregorianDate{1991, 6, 26}.DayOfYear())
}

func TestGregorianDate_AddDays(t *testing.T) {
	d := GregorianDate{2023, 12, 30}
	assert.Equal(t, GregorianDate{2024, 1, 2}, d.AddDays(3))
	assert.Equal(t, GregorianDate{2023, 12, 25}, d.AddDays(-5))
}

func TestGregorianDate_Ordering(t *testing.T) {
	a := GregorianDate{2024, 5, 1}
	b := GregorianDate{2024, 5, 2}

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.False(t, a.Before(a))
	assert.False(t, a.After(a))
}
