package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/archibald-labs/archisync/internal/core/domain"
)

var (
	recordsPrefix string
	recordsWhere  []string
	recordsLimit  int
	recordsOffset int
	recordsSince  string
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Query synced records",
}

var recordsGetCmd = &cobra.Command{
	Use:   "get <entity-type> <key>",
	Short: "Show one record",
	Args:  cobra.ExactArgs(2),
	RunE:  runRecordsGet,
}

var recordsListCmd = &cobra.Command{
	Use:   "list <entity-type>",
	Short: "List records, ordered by key",
	Long: `Lists records of an entity type.

Filter by key prefix with --prefix and by field value with --where,
e.g. --where id_profilo_cliente=C001. --where may be repeated.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecordsList,
}

var recordsChangesCmd = &cobra.Command{
	Use:   "changes <entity-type>",
	Short: "List records changed recently, newest first",
	Long: `Lists records whose business fields changed since a point in time.
--since accepts a duration (24h) or a date (2026-01-31).`,
	Args: cobra.ExactArgs(1),
	RunE: runRecordsChanges,
}

var recordsCountCmd = &cobra.Command{
	Use:   "count [entity-type]",
	Short: "Count stored records",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRecordsCount,
}

func init() {
	recordsListCmd.Flags().StringVar(&recordsPrefix, "prefix", "", "keep keys starting with this prefix")
	recordsListCmd.Flags().StringArrayVar(&recordsWhere, "where", nil, "keep records whose field equals a value (field=value)")
	recordsListCmd.Flags().IntVarP(&recordsLimit, "limit", "n", 50, "maximum records to show (0 for all)")
	recordsListCmd.Flags().IntVar(&recordsOffset, "offset", 0, "records to skip")
	recordsChangesCmd.Flags().StringVar(&recordsSince, "since", "24h", "duration or date")
	recordsChangesCmd.Flags().IntVarP(&recordsLimit, "limit", "n", 50, "maximum records to show (0 for all)")

	recordsCmd.AddCommand(recordsGetCmd)
	recordsCmd.AddCommand(recordsListCmd)
	recordsCmd.AddCommand(recordsChangesCmd)
	recordsCmd.AddCommand(recordsCountCmd)
	rootCmd.AddCommand(recordsCmd)
}

func runRecordsGet(cmd *cobra.Command, args []string) error {
	if recordQuery == nil {
		return notConfigured("record")
	}
	t, err := parseEntityArg(args[0])
	if err != nil {
		return err
	}

	rec, err := recordQuery.Get(cmd.Context(), t, args[1])
	if err != nil {
		return fmt.Errorf("failed to get record: %w", err)
	}

	cmd.Printf("%s %s\n", rec.Type, rec.Key)
	cmd.Printf("  created:   %s\n", rec.CreatedAt.Format(time.DateTime))
	cmd.Printf("  updated:   %s\n", rec.UpdatedAt.Format(time.DateTime))
	cmd.Printf("  last sync: %s\n", rec.LastSyncAt.Format(time.DateTime))
	for _, name := range sortedFieldNames(rec.Fields) {
		cmd.Printf("  %s: %s\n", name, rec.Fields[name])
	}
	return nil
}

func runRecordsList(cmd *cobra.Command, args []string) error {
	if recordQuery == nil {
		return notConfigured("record")
	}
	t, err := parseEntityArg(args[0])
	if err != nil {
		return err
	}

	filter := domain.RecordFilter{
		KeyPrefix: recordsPrefix,
		Limit:     recordsLimit,
		Offset:    recordsOffset,
	}
	if len(recordsWhere) > 0 {
		filter.FieldEquals = make(map[string]string, len(recordsWhere))
		for _, w := range recordsWhere {
			name, value, ok := strings.Cut(w, "=")
			if !ok || strings.TrimSpace(name) == "" {
				return fmt.Errorf("%w: --where %q, expected field=value", domain.ErrInvalidInput, w)
			}
			filter.FieldEquals[strings.TrimSpace(name)] = strings.TrimSpace(value)
		}
	}

	recs, err := recordQuery.List(cmd.Context(), t, filter)
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}
	printRecords(cmd, recs)
	return nil
}

func runRecordsChanges(cmd *cobra.Command, args []string) error {
	if recordQuery == nil {
		return notConfigured("record")
	}
	t, err := parseEntityArg(args[0])
	if err != nil {
		return err
	}
	since, err := parseSince(recordsSince, time.Now())
	if err != nil {
		return err
	}

	recs, err := recordQuery.RecentChanges(cmd.Context(), t, since, recordsLimit)
	if err != nil {
		return fmt.Errorf("failed to list changes: %w", err)
	}
	printRecords(cmd, recs)
	return nil
}

func runRecordsCount(cmd *cobra.Command, args []string) error {
	if recordQuery == nil {
		return notConfigured("record")
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
		n, err := recordQuery.Count(cmd.Context(), t)
		if err != nil {
			return fmt.Errorf("failed to count %s: %w", t, err)
		}
		cmd.Printf("%-15s %d\n", t, n)
	}
	return nil
}

// parseSince accepts a duration back from now or a YYYY-MM-DD date.
func parseSince(s string, now time.Time) (time.Time, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return now.Add(-d), nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, s, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: --since %q, expected a duration or YYYY-MM-DD", domain.ErrInvalidInput, s)
}

func printRecords(cmd *cobra.Command, recs []domain.StoredRecord) {
	if len(recs) == 0 {
		cmd.Println("No records found.")
		return
	}
	for i := range recs {
		rec := &recs[i]
		parts := make([]string, 0, len(rec.Fields))
		for _, name := range sortedFieldNames(rec.Fields) {
			if v := rec.Fields.Get(name); v != "" {
				parts = append(parts, name+"="+v)
			}
		}
		cmd.Printf("%s  %s\n", rec.Key, strings.Join(parts, " "))
	}
}

func sortedFieldNames(f domain.Fields) []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
