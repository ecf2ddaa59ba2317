package domain

import "math"

// Phase is the half of the lunar month a tithi falls in.
type Phase string

const (
	// PhaseWaxing is Shukla Paksha, tithi 1-15 (new moon to full moon).
	PhaseWaxing Phase = "waxing"
	// PhaseWaning is Krishna Paksha, tithi 16-30 (full moon to new moon).
	PhaseWaning Phase = "waning"
)

// TithiInfo is one of the 30 lunar days within a synodic month.
type TithiInfo struct {
	Number int
	Phase  Phase
}

const (
	// synodicMonth is the mean period between successive new moons, in days.
	synodicMonth = 29.530588

	// referenceNewMoonJD is the Julian Date of the 2000-01-06 new moon,
	// the fixed epoch all tithi positions are measured from.
	referenceNewMoonJD = 2451550.1
)

// CalculateTithi derives the lunar day for a Gregorian date.
//
// This is a fixed-epoch mean-motion approximation: it divides the days
// elapsed since a reference new moon by the mean synodic month with no
// ephemeris correction terms, so it can be off by up to a tithi near
// the month boundaries. It is deterministic and total.
func CalculateTithi(g GregorianDate) TithiInfo {
	position := math.Mod(float64(g.JulianDay())-referenceNewMoonJD, synodicMonth)
	if position < 0 {
		position += synodicMonth
	}

	number := int(position/(synodicMonth/30)) + 1
	if number < 1 {
		number = 1
	}
	if number > 30 {
		number = 30
	}

	phase := PhaseWaxing
	if number > 15 {
		phase = PhaseWaning
	}
	return TithiInfo{Number: number, Phase: phase}
}
