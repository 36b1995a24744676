package cli

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/archibald-labs/archisync/internal/core/domain"
)

var (
	policyAlwaysOverwrite bool
	policyDeleteStale     bool
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the inbox, sync, matching and schedule settings.

Settings are stored in ~/.archisync/config.toml.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsInboxCmd = &cobra.Command{
	Use:   "inbox <dir>",
	Short: "Set the export inbox directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsInbox,
}

var settingsWindowCmd = &cobra.Command{
	Use:   "window <days>",
	Short: "Set the proximity matching window",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsWindow,
}

var settingsVariantCmd = &cobra.Command{
	Use:   "variant <code> <units>",
	Short: "Map a variant selection code to package units",
	Long:  `Maps a variant code (e.g. K2) to its package units. Units of 0 remove the code.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsVariant,
}

var settingsPolicyCmd = &cobra.Command{
	Use:   "policy <entity-type>",
	Short: "Override the policy flags of an entity type",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsPolicy,
}

func init() {
	settingsPolicyCmd.Flags().BoolVar(&policyAlwaysOverwrite, "always-overwrite", false, "rewrite records even when unchanged")
	settingsPolicyCmd.Flags().BoolVar(&policyDeleteStale, "delete-stale", false, "delete records missing from a completed export")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsInboxCmd)
	settingsCmd.AddCommand(settingsWindowCmd)
	settingsCmd.AddCommand(settingsVariantCmd)
	settingsCmd.AddCommand(settingsPolicyCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Inbox]")
	cmd.Printf("  Directory: %s\n", settings.Inbox.Dir)
	for _, t := range domain.AllEntityTypes() {
		cmd.Printf("  %s: %s\n", t.Description(), settings.Inbox.Files[t])
	}
	cmd.Println()

	cmd.Println("[Sync]")
	cmd.Printf("  Stop check interval: %d records\n", settings.Sync.StopCheckInterval)
	cmd.Printf("  Detect cycle size: %s\n", yesNo(settings.Sync.DetectCycleSize))
	cmd.Printf("  Skip unchanged files: %s\n", yesNo(settings.Sync.SkipUnchangedFiles))
	cmd.Printf("  History kept: %d sessions\n", settings.Sync.HistoryKeep)
	cmd.Println()

	cmd.Println("[Match]")
	cmd.Printf("  Window: %d days\n", settings.Match.WindowDays)
	codes := make([]string, 0, len(settings.Match.VariantCodes))
	for code := range settings.Match.VariantCodes {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		cmd.Printf("  Variant %s: %d units\n", code, settings.Match.VariantCodes[code])
	}
	cmd.Println()

	cmd.Println("[Watch]")
	cmd.Printf("  Minimum interval: %s\n", settings.Watch.MinInterval)
	cmd.Println()

	cmd.Println("[Schedule]")
	cmd.Printf("  Enabled: %s\n", yesNo(settings.Schedule.Enabled))
	for _, t := range domain.AllEntityTypes() {
		interval := settings.Schedule.Intervals[t]
		if interval <= 0 {
			cmd.Printf("  %s: off\n", t.Description())
			continue
		}
		cmd.Printf("  %s: every %s\n", t.Description(), interval)
	}

	if len(settings.Entities) > 0 {
		cmd.Println()
		cmd.Println("[Policy Overrides]")
		for _, t := range domain.AllEntityTypes() {
			o, ok := settings.Entities[t]
			if !ok {
				continue
			}
			if o.AlwaysOverwrite != nil {
				cmd.Printf("  %s always overwrite: %s\n", t, yesNo(*o.AlwaysOverwrite))
			}
			if o.DeleteStale != nil {
				cmd.Printf("  %s delete stale: %s\n", t, yesNo(*o.DeleteStale))
			}
		}
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func runSettingsInbox(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}
	if err := settingsService.SetInboxDir(args[0]); err != nil {
		return fmt.Errorf("failed to set inbox: %w", err)
	}
	cmd.Printf("Inbox set to: %s\n", args[0])
	return nil
}

func runSettingsWindow(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}
	days, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("%w: days must be a number", domain.ErrInvalidInput)
	}
	if err := settingsService.SetWindowDays(days); err != nil {
		return fmt.Errorf("failed to set window: %w", err)
	}
	cmd.Printf("Matching window set to: %d days\n", days)
	return nil
}

func runSettingsVariant(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}
	units, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("%w: units must be a number", domain.ErrInvalidInput)
	}
	if err := settingsService.SetVariantCode(args[0], units); err != nil {
		return fmt.Errorf("failed to set variant code: %w", err)
	}
	if units == 0 {
		cmd.Printf("Variant %s removed.\n", args[0])
	} else {
		cmd.Printf("Variant %s set to %d units.\n", args[0], units)
	}
	return nil
}

func runSettingsPolicy(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}
	t, err := parseEntityArg(args[0])
	if err != nil {
		return err
	}

	var alwaysOverwrite, deleteStale *bool
	if cmd.Flags().Changed("always-overwrite") {
		alwaysOverwrite = &policyAlwaysOverwrite
	}
	if cmd.Flags().Changed("delete-stale") {
		deleteStale = &policyDeleteStale
	}
	if alwaysOverwrite == nil && deleteStale == nil {
		return fmt.Errorf("%w: set --always-overwrite or --delete-stale", domain.ErrInvalidInput)
	}

	if err := settingsService.SetEntityPolicy(t, alwaysOverwrite, deleteStale); err != nil {
		return fmt.Errorf("failed to set policy: %w", err)
	}
	cmd.Printf("Policy for %s updated.\n", t)
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
