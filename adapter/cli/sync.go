package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync logical events to the external calendar",
	Long: `Expand every stored logical event into concrete calendar instances
and reconcile them against the configured external calendar. Instances
already synced are updated in place; new ones are created. Re-running
sync never duplicates events.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.EventRepo == nil {
			return fmt.Errorf("application not initialized")
		}
		if !app.CalendarConfigured {
			return fmt.Errorf("no calendar provider configured (set PATRO_CALENDAR_PROVIDER)")
		}

		ctx := cmd.Context()
		events, err := app.EventRepo.FindAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to load events: %w", err)
		}

		result, err := app.Reconciler.Sync(ctx, app.SyncCfg, events)
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}

		fmt.Printf("Sync complete: %d synced, %d failed, %d skipped\n",
			result.SuccessCount, result.FailureCount, result.SkippedCount)
		for _, msg := range result.Errors {
			fmt.Printf("  error: %s\n", msg)
		}
		return nil
	},
}

var unsyncCmd = &cobra.Command{
	Use:   "unsync",
	Short: "Remove every synced event from the external calendar",
	Long: `Delete every calendar entry created by sync and clear the local
mapping store. Local mapping entries are removed even when the remote
delete fails, so entries already gone on the provider side cannot
block cleanup.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}
		if !app.CalendarConfigured {
			return fmt.Errorf("no calendar provider configured (set PATRO_CALENDAR_PROVIDER)")
		}

		result, err := app.Reconciler.Unsync(cmd.Context(), app.SyncCfg)
		if err != nil {
			return fmt.Errorf("unsync failed: %w", err)
		}

		fmt.Printf("Unsync complete: %d deleted, %d failed\n",
			result.DeletedCount, result.FailureCount)
		for _, msg := range result.Errors {
			fmt.Printf("  error: %s\n", msg)
		}
		return nil
	},
}

func init() {
	AddCommand(syncCmd)
	AddCommand(unsyncCmd)
}
