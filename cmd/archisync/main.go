// Command archisync synchronises ERP PDF exports into a local database.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/archibald-labs/archisync/internal/adapters/driven/config/file"
	"github.com/archibald-labs/archisync/internal/adapters/driven/inbox"
	"github.com/archibald-labs/archisync/internal/adapters/driven/pdf"
	"github.com/archibald-labs/archisync/internal/adapters/driven/report/xlsx"
	"github.com/archibald-labs/archisync/internal/adapters/driven/storage/sqlite"
	"github.com/archibald-labs/archisync/internal/adapters/driving/cli"
	"github.com/archibald-labs/archisync/internal/adapters/driving/watch"
	"github.com/archibald-labs/archisync/internal/core/services"
	"github.com/archibald-labs/archisync/internal/entities"
	"github.com/archibald-labs/archisync/internal/logger"
	"github.com/archibald-labs/archisync/internal/normalisers"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(bootstrap); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

// bootstrap wires the adapters and services for one command run.
func bootstrap(opts cli.Options) (*cli.Services, func() error, error) {
	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("settings: %w", err)
	}

	catalog, err := entities.New(settings.Entities)
	if err != nil {
		return nil, nil, fmt.Errorf("entity catalogue: %w", err)
	}

	locator, err := inbox.NewLocator(settings.Inbox)
	if err != nil {
		return nil, nil, fmt.Errorf("inbox: %w", err)
	}

	store, err := sqlite.NewStore(opts.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("database: %w", err)
	}
	logger.Debug("database: %s", store.Path())

	records := store.RecordStore()
	sessions := services.NewSessionTracker(store.SessionStore(), settings.Sync.HistoryKeep)
	matcher := services.NewMatcherService(records, store.MatchStore(), settings.Match)

	syncOrch := services.NewSyncOrchestrator(
		catalog,
		locator,
		pdf.NewOpener(),
		normalisers.New(),
		services.NewDeltaStore(records),
		sessions,
		matcher,
		settings.Sync,
	)

	scheduler := services.NewScheduler(settings.Schedule, store.SchedulerStore(), syncOrch)
	watcher := watch.NewWatcher(locator.Dir(), locator, syncOrch, settings.Watch)

	release := func() error {
		if err := store.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			return fmt.Errorf("close database: %w", err)
		}
		return nil
	}

	return &cli.Services{
		SyncOrchestrator: syncOrch,
		Matcher:          matcher,
		Sessions:         sessions,
		Records:          services.NewRecordService(records),
		Settings:         settingsService,
		Scheduler:        scheduler,
		Watcher:          watcher,
		ReviewExporter:   xlsx.NewExporter(),
	}, release, nil
}
