package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/archibald-labs/archisync/internal/core/domain"
	"github.com/archibald-labs/archisync/internal/core/ports/driving"
)

var (
	syncForce   bool
	syncFile    string
	syncNoMatch bool
)

var syncCmd = &cobra.Command{
	Use:   "sync [entity-type]",
	Short: "Synchronise ERP exports",
	Long: `Decodes the latest PDF export and folds it into the database.
If an entity type is provided, only that export is synchronised.
Otherwise, all exports are synchronised concurrently and the matchers
run for every pair whose two sides completed.

Entity types: customers, products, prices, orders, delivery_notes, invoices.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncForce, "force", false, "decode the export even if it is unchanged")
	syncCmd.Flags().StringVar(&syncFile, "file", "", "decode this file instead of the inbox export")
	syncCmd.Flags().BoolVar(&syncNoMatch, "no-match", false, "skip matching after the sync")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	if syncOrchestrator == nil {
		return notConfigured("sync")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	opts := driving.SyncOptions{
		Trigger:      domain.TriggerManual,
		SkipMatching: syncNoMatch,
	}
	if syncForce {
		opts.Trigger = domain.TriggerForced
	}

	if len(args) == 0 {
		if syncFile != "" {
			return errors.New("--file requires an entity type")
		}
		cmd.Println("Synchronising all exports...")
		results, err := syncOrchestrator.SyncAll(ctx, opts)
		for _, r := range results {
			printSyncResult(cmd, r)
		}
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		return nil
	}

	entityType, err := parseEntityArg(args[0])
	if err != nil {
		return err
	}
	opts.Path = syncFile

	cmd.Printf("Synchronising %s...\n", entityType.Description())
	result, err := syncWithProgress(ctx, cmd, syncOrchestrator, entityType, opts)
	if result != nil {
		printSyncResult(cmd, result)
	}
	if errors.Is(err, domain.ErrSyncInProgress) {
		return fmt.Errorf("sync of %s already in progress", entityType)
	}
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	return nil
}

// syncWithProgress runs a sync and, on a terminal, redraws its progress.
func syncWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	syncOrch driving.SyncOrchestrator,
	entityType domain.EntityType,
	opts driving.SyncOptions,
) (*domain.SyncResult, error) {
	type outcome struct {
		result *domain.SyncResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		r, err := syncOrch.Sync(ctx, entityType, opts)
		done <- outcome{r, err}
	}()

	interactive := term.IsTerminal(int(os.Stdout.Fd()))

	// Poll status every 500ms
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	drawn := false
	for {
		select {
		case o := <-done:
			if drawn {
				cmd.Println()
			}
			return o.result, o.err
		case <-ticker.C:
			if !interactive {
				continue
			}
			// Best effort: a status error only skips a redraw.
			status, err := syncOrch.Status(ctx, entityType)
			if err != nil || status == nil || !status.Running {
				continue
			}
			cmd.Printf("\rPage %d/%d, %d records", status.PagesRead, status.TotalPages, status.Counts.Processed)
			drawn = true
		}
	}
}

func printSyncResult(cmd *cobra.Command, r *domain.SyncResult) {
	if r == nil {
		return
	}
	c := r.Counts
	cmd.Printf("%-15s %-9s %6d processed %5d created %5d updated %5d deleted %5d skipped %4d filtered %4d partial (%s)\n",
		r.EntityType, r.Status, c.Processed, c.Created, c.Updated, c.Deleted, c.Skipped, c.Filtered, c.Partial,
		(time.Duration(r.DurationMs) * time.Millisecond).String())
	if r.Error != "" {
		cmd.Printf("%-15s error: %s\n", "", r.Error)
	}
}
