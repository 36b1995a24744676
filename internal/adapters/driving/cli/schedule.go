package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var scheduleRunsLimit int

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Show the periodic sync of each entity type",
	Long: `Lists the scheduled sync of every entity type: its interval, when it
last ran, and when it runs next. Scheduled syncs run under "archisync serve".`,
	Args: cobra.NoArgs,
	RunE: runScheduleShow,
}

var scheduleRunsCmd = &cobra.Command{
	Use:   "runs <entity-type>",
	Short: "List recent scheduled runs of an entity type",
	Args:  cobra.ExactArgs(1),
	RunE:  runScheduleRuns,
}

func init() {
	scheduleRunsCmd.Flags().IntVarP(&scheduleRunsLimit, "limit", "n", 10, "maximum runs to show")
	scheduleCmd.AddCommand(scheduleRunsCmd)
	rootCmd.AddCommand(scheduleCmd)
}

func runScheduleShow(cmd *cobra.Command, _ []string) error {
	if scheduler == nil {
		return notConfigured("scheduler")
	}

	tasks, err := scheduler.Tasks(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list scheduled syncs: %w", err)
	}

	for i := range tasks {
		task := &tasks[i]
		if !task.Enabled {
			cmd.Printf("%-15s off\n", task.EntityType)
			continue
		}
		cmd.Printf("%-15s every %-8s last %-19s  next %s\n",
			task.EntityType, task.Interval, formatWhen(task.LastRun), formatWhen(task.NextRun))
		if task.LastError != "" {
			cmd.Printf("%15s last error: %s\n", "", task.LastError)
		}
	}
	return nil
}

func runScheduleRuns(cmd *cobra.Command, args []string) error {
	if scheduler == nil {
		return notConfigured("scheduler")
	}

	entityType, err := parseEntityArg(args[0])
	if err != nil {
		return err
	}

	runs, err := scheduler.Runs(cmd.Context(), entityType, scheduleRunsLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		cmd.Printf("No scheduled runs of %s yet.\n", entityType)
		return nil
	}

	for i := range runs {
		r := &runs[i]
		cmd.Printf("%s  %-9s %6d processed  %-10s %s\n",
			r.StartedAt.Format(time.DateTime), r.Status, r.Processed,
			r.Duration().Round(time.Millisecond), r.SessionID)
		if r.Error != "" {
			cmd.Printf("%21s error: %s\n", "", r.Error)
		}
	}
	return nil
}

// formatWhen renders a timestamp, or "never" for the zero time.
func formatWhen(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format(time.DateTime)
}
