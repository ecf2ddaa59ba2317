package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	panchanga "github.com/patrolabs/patro/internal/panchanga/domain"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert between Gregorian (AD) and Bikram Sambat (BS) dates",
}

var toBSCmd = &cobra.Command{
	Use:   "to-bs [date]",
	Short: "Convert a Gregorian date to Bikram Sambat",
	Long: `Convert a Gregorian date to Bikram Sambat. Without an argument
today's date is converted.

Examples:
  patro convert to-bs
  patro convert to-bs 1991-06-26`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		date := panchanga.GregorianFromTime(time.Now())
		if len(args) == 1 {
			parsed, err := parseGregorian(args[0])
			if err != nil {
				return err
			}
			date = parsed
		}

		nepali, err := app.Converter.GregorianToNepali(date)
		if err != nil {
			return fmt.Errorf("cannot convert %s: %w", date, err)
		}

		fmt.Printf("%s AD = %s BS (%s %d, %d)\n",
			date, nepali, nepali.MonthName(), nepali.Day, nepali.Year)
		return nil
	},
}

var toADCmd = &cobra.Command{
	Use:   "to-ad [date]",
	Short: "Convert a Bikram Sambat date to Gregorian",
	Long: `Convert a Bikram Sambat date to Gregorian.

Examples:
  patro convert to-ad 2048-03-12`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		nepali, err := parseNepali(args[0])
		if err != nil {
			return err
		}

		date, err := app.Converter.NepaliToGregorian(nepali)
		if err != nil {
			return fmt.Errorf("cannot convert %s: %w", nepali, err)
		}

		fmt.Printf("%s BS = %s AD\n", nepali, date)
		return nil
	},
}

func init() {
	convertCmd.AddCommand(toBSCmd)
	convertCmd.AddCommand(toADCmd)
	AddCommand(convertCmd)
}
