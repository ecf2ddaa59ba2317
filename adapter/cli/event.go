package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	eventsDomain "github.com/patrolabs/patro/internal/events/domain"
	panchanga "github.com/patrolabs/patro/internal/panchanga/domain"
)

var (
	eventKind        string
	eventBSDate      string
	eventADDate      string
	eventDescription string
	eventReminder    int
	eventListKind    string
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Manage logical calendar events",
}

var eventAddCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a logical event",
	Long: `Add a logical event. The date is given either in Bikram Sambat
(--bs) or Gregorian (--ad); the other calendar's date is derived.

Kinds:
  festival        a festival on a fixed BS date
  custom          a user event pinned to a BS date
  birthday_date   a birthday celebrated on the solar date
  birthday_tithi  a lunar birthday recomputed per year from the birth tithi

Examples:
  patro event add "Maghe Sankranti" --kind festival --bs 2080-10-01
  patro event add "Ram's birthday" --kind birthday_tithi --ad 1991-06-26 --reminder 60`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.EventRepo == nil {
			return fmt.Errorf("application not initialized")
		}

		kind := eventsDomain.EventKind(eventKind)
		if !kind.IsValid() {
			return fmt.Errorf("invalid kind %q", eventKind)
		}

		var (
			nepali    panchanga.NepaliDate
			gregorian panchanga.GregorianDate
			err       error
		)
		switch {
		case eventBSDate != "" && eventADDate != "":
			return fmt.Errorf("give either --bs or --ad, not both")
		case eventBSDate != "":
			nepali, err = parseNepali(eventBSDate)
			if err != nil {
				return err
			}
			gregorian, err = app.Converter.NepaliToGregorian(nepali)
			if err != nil {
				return fmt.Errorf("cannot convert %s: %w", nepali, err)
			}
		case eventADDate != "":
			gregorian, err = parseGregorian(eventADDate)
			if err != nil {
				return err
			}
			nepali, err = app.Converter.GregorianToNepali(gregorian)
			if err != nil {
				return fmt.Errorf("cannot convert %s: %w", gregorian, err)
			}
		default:
			return fmt.Errorf("a date is required (--bs or --ad)")
		}

		event, err := eventsDomain.NewLogicalEvent(args[0], kind, nepali, gregorian)
		if err != nil {
			return fmt.Errorf("failed to create event: %w", err)
		}
		if eventDescription != "" {
			event.SetDescription(eventDescription)
		}
		if eventReminder > 0 {
			if err := event.EnableReminder(eventReminder); err != nil {
				return err
			}
		}

		if err := app.EventRepo.Save(cmd.Context(), event); err != nil {
			return fmt.Errorf("failed to save event: %w", err)
		}

		fmt.Printf("Event created: %s\n", event.ID())
		fmt.Printf("  title: %s\n", event.Title())
		fmt.Printf("  kind:  %s\n", event.Kind())
		fmt.Printf("  date:  %s BS / %s AD\n", event.NepaliDate(), event.GregorianDate())
		if kind == eventsDomain.KindBirthdayTithi {
			fmt.Printf("  tithi: %d\n", event.TithiNumber())
		}
		return nil
	},
}

var eventListCmd = &cobra.Command{
	Use:   "list",
	Short: "List logical events",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.EventRepo == nil {
			return fmt.Errorf("application not initialized")
		}

		var (
			events []*eventsDomain.LogicalEvent
			err    error
		)
		if eventListKind != "" {
			kind := eventsDomain.EventKind(eventListKind)
			if !kind.IsValid() {
				return fmt.Errorf("invalid kind %q", eventListKind)
			}
			events, err = app.EventRepo.FindByKind(cmd.Context(), kind)
		} else {
			events, err = app.EventRepo.FindAll(cmd.Context())
		}
		if err != nil {
			return fmt.Errorf("failed to list events: %w", err)
		}

		if len(events) == 0 {
			fmt.Println("No events.")
			return nil
		}
		for _, event := range events {
			fmt.Printf("%s  %-14s  %s BS / %s AD  %s\n",
				event.ID(), event.Kind(), event.NepaliDate(), event.GregorianDate(), event.Title())
		}
		return nil
	},
}

var eventDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a logical event and its synced calendar entries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.EventRepo == nil {
			return fmt.Errorf("application not initialized")
		}

		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid event ID: %w", err)
		}

		ctx := cmd.Context()
		event, err := app.EventRepo.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load event: %w", err)
		}

		// Clean up external calendar entries first so their mappings
		// are not orphaned.
		if app.CalendarConfigured {
			result, err := app.Reconciler.DeleteEvent(ctx, app.SyncCfg, event)
			if err != nil {
				return fmt.Errorf("failed to delete calendar entries: %w", err)
			}
			fmt.Printf("Removed %d calendar entries\n", result.AttemptedDeletes-len(result.Errors))
			for _, msg := range result.Errors {
				fmt.Printf("  warning: %s\n", msg)
			}
		}

		if err := app.EventRepo.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete event: %w", err)
		}
		fmt.Printf("Event deleted: %s\n", id)
		return nil
	},
}

func init() {
	eventAddCmd.Flags().StringVarP(&eventKind, "kind", "k", "custom", "event kind (festival, custom, birthday_date, birthday_tithi)")
	eventAddCmd.Flags().StringVar(&eventBSDate, "bs", "", "Bikram Sambat date (YYYY-MM-DD)")
	eventAddCmd.Flags().StringVar(&eventADDate, "ad", "", "Gregorian date (YYYY-MM-DD)")
	eventAddCmd.Flags().StringVar(&eventDescription, "description", "", "event description")
	eventAddCmd.Flags().IntVar(&eventReminder, "reminder", 0, "reminder minutes before the event")

	eventListCmd.Flags().StringVarP(&eventListKind, "kind", "k", "", "filter by kind")

	eventCmd.AddCommand(eventAddCmd)
	eventCmd.AddCommand(eventListCmd)
	eventCmd.AddCommand(eventDeleteCmd)
	AddCommand(eventCmd)
}
