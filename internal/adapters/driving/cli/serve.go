package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/archibald-labs/archisync/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Sync exports as they land in the inbox",
	Long: `Watches the inbox directory and synchronises an export as soon as
the export collaborator writes it. Stops on Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduler and the inbox watcher",
	Long: `Runs scheduled syncs at the configured intervals together with the
inbox watcher, until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if inboxWatcher == nil {
		return notConfigured("watch")
	}

	logger.SetTimestamps(true)
	defer logger.SetTimestamps(false)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Println("Watching inbox. Press Ctrl-C to stop.")
	if err := inboxWatcher.Run(ctx); err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	if scheduler == nil {
		return notConfigured("scheduler")
	}

	logger.SetTimestamps(true)
	defer logger.SetTimestamps(false)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := scheduler.Start(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		return scheduler.Stop()
	})
	if inboxWatcher != nil {
		g.Go(func() error {
			return inboxWatcher.Run(ctx)
		})
	}

	cmd.Println("Serving. Press Ctrl-C to stop.")
	if err := g.Wait(); err != nil {
		return fmt.Errorf("serve failed: %w", err)
	}
	return nil
}
