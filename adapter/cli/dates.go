package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	panchanga "github.com/patrolabs/patro/internal/panchanga/domain"
)

// parseGregorian parses a YYYY-MM-DD argument into a Gregorian date.
func parseGregorian(arg string) (panchanga.GregorianDate, error) {
	parsed, err := time.Parse("2006-01-02", arg)
	if err != nil {
		return panchanga.GregorianDate{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", arg, err)
	}
	return panchanga.GregorianFromTime(parsed), nil
}

// parseNepali parses a YYYY-MM-DD Bikram Sambat argument. Month and
// day bounds are checked later against the conversion table.
func parseNepali(arg string) (panchanga.NepaliDate, error) {
	parts := strings.Split(arg, "-")
	if len(parts) != 3 {
		return panchanga.NepaliDate{}, fmt.Errorf("invalid BS date %q (use YYYY-MM-DD)", arg)
	}

	nums := make([]int, 3)
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return panchanga.NepaliDate{}, fmt.Errorf("invalid BS date %q (use YYYY-MM-DD)", arg)
		}
		nums[i] = n
	}
	if nums[1] < 1 || nums[1] > 12 || nums[2] < 1 || nums[2] > 32 {
		return panchanga.NepaliDate{}, fmt.Errorf("invalid BS date %q: month or day out of range", arg)
	}
	return panchanga.NewNepaliDate(nums[0], nums[1], nums[2]), nil
}
