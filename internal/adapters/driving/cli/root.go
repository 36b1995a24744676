// Package cli implements the archisync command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/archibald-labs/archisync/internal/core/domain"
	"github.com/archibald-labs/archisync/internal/core/ports/driven"
	"github.com/archibald-labs/archisync/internal/core/ports/driving"
	"github.com/archibald-labs/archisync/internal/logger"
)

// Runner is a long-running driving adapter such as the inbox watcher.
type Runner interface {
	Run(ctx context.Context) error
}

// Services holds the ports the commands drive.
type Services struct {
	SyncOrchestrator driving.SyncOrchestrator
	Matcher          driving.Matcher
	Sessions         driving.SessionTracker
	Records          driving.RecordQuery
	Settings         driving.SettingsService
	Scheduler        driving.Scheduler
	Watcher          Runner
	ReviewExporter   driven.ReviewExporter
}

// Options are the global flags handed to the bootstrap function.
type Options struct {
	DataDir   string
	ConfigDir string
	Verbose   bool
}

// Bootstrap builds the services once flags are parsed. The returned
// function releases them.
type Bootstrap func(opts Options) (*Services, func() error, error)

var (
	version = "dev"

	verbose   bool
	dataDir   string
	configDir string

	bootstrap Bootstrap
	cleanup   func() error

	syncOrchestrator driving.SyncOrchestrator
	matcher          driving.Matcher
	sessionTracker   driving.SessionTracker
	recordQuery      driving.RecordQuery
	settingsService  driving.SettingsService
	scheduler        driving.Scheduler
	inboxWatcher     Runner
	reviewExporter   driven.ReviewExporter
)

var rootCmd = &cobra.Command{
	Use:   "archisync",
	Short: "Synchronise ERP PDF exports into a local database",
	Long: `archisync decodes the PDF exports of the ERP (customers, products,
prices, orders, delivery notes and invoices), stores only what changed,
and links related records across exports.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "database directory (default ~/.archisync/data)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.archisync)")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetServices installs the services the commands use.
func SetServices(s *Services) {
	syncOrchestrator = s.SyncOrchestrator
	matcher = s.Matcher
	sessionTracker = s.Sessions
	recordQuery = s.Records
	settingsService = s.Settings
	scheduler = s.Scheduler
	inboxWatcher = s.Watcher
	reviewExporter = s.ReviewExporter
}

// Execute runs the root command. The bootstrap function is called after
// flag parsing, for every command except version.
func Execute(b Bootstrap) error {
	bootstrap = b
	err := rootCmd.Execute()
	if cleanup != nil {
		err = errors.Join(err, cleanup())
		cleanup = nil
	}
	return err
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if bootstrap == nil || cmd.Name() == versionCmd.Name() {
		return nil
	}

	services, release, err := bootstrap(Options{DataDir: dataDir, ConfigDir: configDir, Verbose: verbose})
	if err != nil {
		return fmt.Errorf("initialise: %w", err)
	}
	SetServices(services)
	cleanup = release
	return nil
}

// parseEntityArg converts a command argument to an entity type.
func parseEntityArg(arg string) (domain.EntityType, error) {
	t, err := domain.ParseEntityType(arg)
	if err != nil {
		return "", fmt.Errorf("%w %q (valid types: %s)", err, arg, strings.Join(entityTypeList(), ", "))
	}
	return t, nil
}

// parsePairArg converts a command argument to a match pair.
func parsePairArg(arg string) (domain.PairType, error) {
	p, err := domain.ParsePairType(arg)
	if err != nil {
		names := make([]string, 0, len(domain.AllPairTypes()))
		for _, p := range domain.AllPairTypes() {
			names = append(names, string(p))
		}
		return "", fmt.Errorf("%w %q (valid pairs: %s)", err, arg, strings.Join(names, ", "))
	}
	return p, nil
}

func entityTypeList() []string {
	names := make([]string, 0, len(domain.AllEntityTypes()))
	for _, t := range domain.AllEntityTypes() {
		names = append(names, string(t))
	}
	return names
}

var errNotConfigured = errors.New("not configured")

func notConfigured(name string) error {
	return fmt.Errorf("%s service %w", name, errNotConfigured)
}
