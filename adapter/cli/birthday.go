package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	panchanga "github.com/patrolabs/patro/internal/panchanga/domain"
)

var birthdayCount int

var birthdayCmd = &cobra.Command{
	Use:   "birthday [birth-date]",
	Short: "Resolve upcoming lunar birthdays for a Gregorian birth date",
	Long: `Resolve the upcoming lunar-birthday dates for someone born on the
given Gregorian date. The birth tithi is computed once from the birth
date; each listed date is the occurrence of that tithi closest before
the birth day-of-year in its solar year.

Examples:
  patro birthday 1991-06-26
  patro birthday 1991-06-26 --count 10`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		birth, err := parseGregorian(args[0])
		if err != nil {
			return err
		}

		info := panchanga.CalculateTithi(birth)
		fmt.Printf("Born %s: tithi %d (%s)\n", birth, info.Number, info.Phase)

		today := panchanga.GregorianFromTime(time.Now())
		occurrences := app.Resolver.NextOccurrences(birth, info.Number, birthdayCount, today)
		if len(occurrences) == 0 {
			fmt.Println("No upcoming occurrences found.")
			return nil
		}

		fmt.Println("Upcoming lunar birthdays:")
		for _, occ := range occurrences {
			fmt.Printf("  %s\n", occ)
		}
		return nil
	},
}

func init() {
	birthdayCmd.Flags().IntVarP(&birthdayCount, "count", "n", 5, "number of occurrences to show")
	AddCommand(birthdayCmd)
}
