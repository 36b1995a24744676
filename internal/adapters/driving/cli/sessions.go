package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/archibald-labs/archisync/internal/core/domain"
)

var sessionsLimit int

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect sync history",
}

var sessionsHistoryCmd = &cobra.Command{
	Use:   "history [entity-type]",
	Short: "List recent sync sessions",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSessionsHistory,
}

var sessionsMetricsCmd = &cobra.Command{
	Use:   "metrics [entity-type]",
	Short: "Show sync health per entity type",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSessionsMetrics,
}

func init() {
	sessionsHistoryCmd.Flags().IntVarP(&sessionsLimit, "limit", "n", 20, "maximum sessions to show")
	sessionsCmd.AddCommand(sessionsHistoryCmd)
	sessionsCmd.AddCommand(sessionsMetricsCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func runSessionsHistory(cmd *cobra.Command, args []string) error {
	if sessionTracker == nil {
		return notConfigured("session")
	}

	var entityType domain.EntityType
	if len(args) == 1 {
		t, err := parseEntityArg(args[0])
		if err != nil {
			return err
		}
		entityType = t
	}

	sessions, err := sessionTracker.GetHistory(cmd.Context(), entityType, sessionsLimit)
	if err != nil {
		return fmt.Errorf("failed to get history: %w", err)
	}
	if len(sessions) == 0 {
		cmd.Println("No sync sessions recorded.")
		return nil
	}

	for i := range sessions {
		s := &sessions[i]
		cmd.Printf("%s  %-15s %-9s %-9s %6d processed %5d created %5d updated %5d deleted  %s\n",
			s.StartedAt.Format(time.DateTime), s.EntityType, s.Status, s.Trigger,
			s.Counts.Processed, s.Counts.Created, s.Counts.Updated, s.Counts.Deleted,
			s.Duration().Round(time.Millisecond))
		if s.Error != "" {
			cmd.Printf("%21s error: %s\n", "", s.Error)
		}
	}
	return nil
}

func runSessionsMetrics(cmd *cobra.Command, args []string) error {
	if sessionTracker == nil {
		return notConfigured("session")
	}

	types := domain.AllEntityTypes()
	if len(args) == 1 {
		t, err := parseEntityArg(args[0])
		if err != nil {
			return err
		}
		types = []domain.EntityType{t}
	}

	for _, t := range types {
		m, err := sessionTracker.GetMetrics(cmd.Context(), t)
		if err != nil {
			return fmt.Errorf("failed to get metrics for %s: %w", t, err)
		}

		cmd.Printf("[%s]\n", t.Description())
		if m.TotalSessions == 0 {
			cmd.Println("  No finalised sessions.")
			cmd.Println()
			continue
		}
		cmd.Printf("  Sessions: %d\n", m.TotalSessions)
		cmd.Printf("  Success rate: %.0f%%\n", m.SuccessRate*100)
		cmd.Printf("  Average duration: %s\n", time.Duration(m.AvgDurationMs)*time.Millisecond)
		cmd.Printf("  Last status: %s\n", m.LastStatus)
		if !m.LastSuccessAt.IsZero() {
			cmd.Printf("  Last success: %s\n", m.LastSuccessAt.Format(time.DateTime))
		}
		if m.ConsecutiveFailures > 0 {
			cmd.Printf("  Consecutive failures: %d\n", m.ConsecutiveFailures)
		}
		if m.LastError != "" {
			cmd.Printf("  Last error: %s\n", m.LastError)
		}
		cmd.Println()
	}
	return nil
}
