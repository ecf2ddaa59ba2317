package domain

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// maxOccurrenceScanYears bounds how far NextOccurrences looks ahead.
const maxOccurrenceScanYears = 10

// TithiIndex buckets every day of one Gregorian year by its tithi
// number. Built in a single O(365) pass and immutable afterwards.
type TithiIndex struct {
	year    int
	byTithi [31][]GregorianDate
}

// BuildTithiIndex computes the tithi of every day in the given year.
func BuildTithiIndex(year int) *TithiIndex {
	ix := &TithiIndex{year: year}
	day := GregorianDate{Year: year, Month: 1, Day: 1}
	for day.Year == year {
		t := CalculateTithi(day)
		ix.byTithi[t.Number] = append(ix.byTithi[t.Number], day)
		day = day.AddDays(1)
	}
	return ix
}

// Year returns the year the index covers.
func (ix *TithiIndex) Year() int { return ix.year }

// Occurrences returns the days of the year carrying the given tithi,
// in ascending order. A lunar month is shorter than a solar month, so
// expect 12-13 entries per tithi. The slice is shared; callers must
// not mutate it.
func (ix *TithiIndex) Occurrences(tithiNumber int) []GregorianDate {
	if tithiNumber < 1 || tithiNumber > 30 {
		return nil
	}
	return ix.byTithi[tithiNumber]
}

// LunarResolver maps a (birth day-of-year, tithi number) pair to the
// single valid lunar-birthday instance per solar year. Per-year tithi
// indexes are built once and cached, keyed by year.
type LunarResolver struct {
	mu    sync.Mutex
	cache map[int]*TithiIndex
}

// NewLunarResolver creates a resolver with an empty index cache.
func NewLunarResolver() *LunarResolver {
	return &LunarResolver{cache: make(map[int]*TithiIndex)}
}

// Index returns the cached tithi index for a year, building it on demand.
func (r *LunarResolver) Index(year int) *TithiIndex {
	r.mu.Lock()
	ix, ok := r.cache[year]
	r.mu.Unlock()
	if ok {
		return ix
	}

	ix = BuildTithiIndex(year)

	r.mu.Lock()
	if cached, ok := r.cache[year]; ok {
		ix = cached
	} else {
		r.cache[year] = ix
	}
	r.mu.Unlock()
	return ix
}

// Warm builds the indexes for the given years concurrently. Year scans
// are independent, so they parallelize cleanly.
func (r *LunarResolver) Warm(ctx context.Context, years ...int) error {
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, year := range years {
		g.Go(func() error {
			r.Index(year)
			return nil
		})
	}
	return g.Wait()
}

// ResolveOccurrence picks the lunar-birthday instance for one target
// year: among the year's days carrying the target tithi, the one with
// the greatest day-of-year still strictly below originalDayOfYear
// (closest-before, not closest-overall). When no occurrence falls
// before the anniversary point the year's last occurrence is used, so
// a birthday is never silently skipped. The boolean is false only when
// the year has no occurrence of the tithi at all.
func (r *LunarResolver) ResolveOccurrence(year, tithiNumber, originalDayOfYear int) (GregorianDate, bool) {
	occurrences := r.Index(year).Occurrences(tithiNumber)
	if len(occurrences) == 0 {
		return GregorianDate{}, false
	}

	best := GregorianDate{}
	found := false
	for _, occ := range occurrences {
		if occ.DayOfYear() >= originalDayOfYear {
			break
		}
		best = occ
		found = true
	}
	if !found {
		best = occurrences[len(occurrences)-1]
	}
	return best, true
}

// NextOccurrences returns up to k future lunar-birthday instances for
// a birth date, scanning forward year by year from the given date.
// Instances at or before from are discarded. The scan is bounded, so
// fewer than k instances may come back.
func (r *LunarResolver) NextOccurrences(originalBirth GregorianDate, tithiNumber, k int, from GregorianDate) []GregorianDate {
	if k <= 0 {
		return nil
	}

	originalDayOfYear := originalBirth.DayOfYear()
	results := make([]GregorianDate, 0, k)
	for year := from.Year; year <= from.Year+maxOccurrenceScanYears && len(results) < k; year++ {
		occ, ok := r.ResolveOccurrence(year, tithiNumber, originalDayOfYear)
		if !ok {
			continue
		}
		if !occ.After(from) {
			continue
		}
		results = append(results, occ)
	}
	return results
}
