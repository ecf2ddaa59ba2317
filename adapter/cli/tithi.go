package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	panchanga "github.com/patrolabs/patro/internal/panchanga/domain"
)

var tithiCmd = &cobra.Command{
	Use:   "tithi [date]",
	Short: "Show the lunar day (tithi) for a Gregorian date",
	Long: `Show the tithi, the lunar day 1..30 of the Hindu lunar month,
for a Gregorian date. Without an argument today's tithi is shown.

Examples:
  patro tithi
  patro tithi 2024-10-11`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date := panchanga.GregorianFromTime(time.Now())
		if len(args) == 1 {
			parsed, err := parseGregorian(args[0])
			if err != nil {
				return err
			}
			date = parsed
		}

		info := panchanga.CalculateTithi(date)
		fmt.Printf("%s: tithi %d (%s)\n", date, info.Number, info.Phase)
		return nil
	},
}

func init() {
	AddCommand(tithiCmd)
}
