package domain

import "time"

// Settings holds all user-configurable behaviour.
type Settings struct {
	Inbox    InboxSettings
	Sync     SyncSettings
	Match    MatchSettings
	Watch    WatchSettings
	Schedule ScheduleSettings
	Entities map[EntityType]EntityOverrides
}

// InboxSettings locates the PDF exports.
type InboxSettings struct {
	// Dir is the directory the export collaborator drops PDFs into.
	Dir string `validate:"required"`

	// Files maps an entity type to its export file name inside Dir.
	Files map[EntityType]string
}

// SyncSettings tunes the sync pipeline.
type SyncSettings struct {
	// StopCheckInterval is how many records pass between cancellation checks.
	StopCheckInterval int `validate:"gte=1"`

	// DetectCycleSize scans the file for the cycle header before decoding.
	DetectCycleSize bool

	// SkipUnchangedFiles skips a sync when the PDF checksum equals the one
	// of the last completed session.
	SkipUnchangedFiles bool

	// HistoryKeep is the number of sessions kept per entity type.
	HistoryKeep int `validate:"gte=1"`
}

// MatchSettings tunes the cross-entity matcher.
type MatchSettings struct {
	// WindowDays bounds proximity matching. Candidates must be strictly
	// closer than this many days.
	WindowDays int `validate:"gte=1,lte=365"`

	// VariantCodes maps a variant selection code to its package units.
	VariantCodes map[string]int `validate:"dive,keys,required,endkeys,gte=1"`
}

// WatchSettings tunes the inbox watcher.
type WatchSettings struct {
	// MinInterval is the minimum gap between two syncs of one entity type.
	MinInterval time.Duration `validate:"gte=0"`
}

// ScheduleSettings drives the periodic sync of each entity type.
type ScheduleSettings struct {
	// Enabled is the master switch for scheduled syncs.
	Enabled bool

	// Intervals maps an entity type to its sync cadence. A zero interval
	// disables the scheduled sync of that type.
	Intervals map[EntityType]time.Duration `validate:"dive,gte=0"`
}

// Interval returns the cadence of an entity type, zero when its scheduled
// sync is off.
func (s ScheduleSettings) Interval(t EntityType) time.Duration {
	return s.Intervals[t]
}

// EntityOverrides overrides the built-in policy flags of one entity type.
type EntityOverrides struct {
	AlwaysOverwrite *bool
	DeleteStale     *bool
}

// Default values.
const (
	DefaultStopCheckInterval = 10
	DefaultHistoryKeep       = 100
	DefaultWindowDays        = 30
	DefaultWatchInterval     = 30 * time.Second
)

// DefaultVariantCodes returns the known variant selection codes.
func DefaultVariantCodes() map[string]int {
	return map[string]int{
		"K2": 5,
		"K3": 1,
	}
}

// DefaultExportFiles returns the default export file name per entity type.
func DefaultExportFiles() map[EntityType]string {
	return map[EntityType]string{
		EntityCustomers:     "clienti.pdf",
		EntityProducts:      "articoli.pdf",
		EntityPrices:        "prezzi.pdf",
		EntityOrders:        "ordini.pdf",
		EntityDeliveryNotes: "ddt.pdf",
		EntityInvoices:      "fatture.pdf",
	}
}

// DefaultSettings returns settings with sensible defaults.
func DefaultSettings() Settings {
	return Settings{
		Inbox: InboxSettings{
			Dir:   "~/.archisync/inbox",
			Files: DefaultExportFiles(),
		},
		Sync: SyncSettings{
			StopCheckInterval:  DefaultStopCheckInterval,
			SkipUnchangedFiles: true,
			HistoryKeep:        DefaultHistoryKeep,
		},
		Match: MatchSettings{
			WindowDays:   DefaultWindowDays,
			VariantCodes: DefaultVariantCodes(),
		},
		Watch: WatchSettings{
			MinInterval: DefaultWatchInterval,
		},
		Schedule: defaultSchedule(),
		Entities: make(map[EntityType]EntityOverrides),
	}
}

func defaultSchedule() ScheduleSettings {
	return ScheduleSettings{Enabled: true, Intervals: DefaultSyncIntervals()}
}

// Window returns the proximity window as a duration.
func (m MatchSettings) Window() time.Duration {
	return time.Duration(m.WindowDays) * 24 * time.Hour
}

// ApplyTo returns the policy with any overrides applied.
func (o EntityOverrides) ApplyTo(p EntityPolicy) EntityPolicy {
	if o.AlwaysOverwrite != nil {
		p.AlwaysOverwrite = *o.AlwaysOverwrite
	}
	if o.DeleteStale != nil {
		p.DeleteStale = *o.DeleteStale
	}
	return p
}
