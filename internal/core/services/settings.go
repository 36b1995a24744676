package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/archibald-labs/archisync/internal/core/domain"
	"github.com/archibald-labs/archisync/internal/core/ports/driven"
	"github.com/archibald-labs/archisync/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyInboxDir           = "inbox.dir"
	keyInboxFilesPrefix   = "inbox.files."
	keyStopCheckInterval  = "sync.stop_check_interval"
	keyDetectCycleSize    = "sync.detect_cycle_size"
	keySkipUnchanged      = "sync.skip_unchanged_files"
	keyHistoryKeep        = "history.keep"
	keyWindowDays         = "match.window_days"
	keyVariantCodes       = "match.variant_codes"
	keyWatchMinInterval   = "watch.min_interval_seconds"
	keySchedulerEnabled   = "scheduler.enabled"
	keySchedulerPrefix    = "scheduler."
	keyEntitiesPrefix     = "entities."
	suffixAlwaysOverwrite = ".always_overwrite"
	suffixDeleteStale     = ".delete_stale"
)

// SettingsService maps the flat config store onto domain.Settings.
type SettingsService struct {
	configStore driven.ConfigStore
	validate    *validator.Validate
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		validate:    validator.New(),
	}
}

// Get retrieves current application settings. Unset or unparsable keys
// fall back to defaults.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings()

	settings := &domain.Settings{
		Inbox: domain.InboxSettings{
			Dir:   s.getString(keyInboxDir, defaults.Inbox.Dir),
			Files: defaults.Inbox.Files,
		},
		Sync: domain.SyncSettings{
			StopCheckInterval:  s.getInt(keyStopCheckInterval, defaults.Sync.StopCheckInterval),
			DetectCycleSize:    s.getBool(keyDetectCycleSize, defaults.Sync.DetectCycleSize),
			SkipUnchangedFiles: s.getBool(keySkipUnchanged, defaults.Sync.SkipUnchangedFiles),
			HistoryKeep:        s.getInt(keyHistoryKeep, defaults.Sync.HistoryKeep),
		},
		Match: domain.MatchSettings{
			WindowDays:   s.getInt(keyWindowDays, defaults.Match.WindowDays),
			VariantCodes: s.getVariantCodes(defaults.Match.VariantCodes),
		},
		Watch: domain.WatchSettings{
			MinInterval: s.getSeconds(keyWatchMinInterval, defaults.Watch.MinInterval),
		},
		Schedule: s.getSchedule(defaults.Schedule),
		Entities: make(map[domain.EntityType]domain.EntityOverrides),
	}

	for _, t := range domain.AllEntityTypes() {
		if name := s.configStore.GetString(keyInboxFilesPrefix + string(t)); name != "" {
			settings.Inbox.Files[t] = name
		}

		var o domain.EntityOverrides
		o.AlwaysOverwrite = s.getOptionalBool(keyEntitiesPrefix + string(t) + suffixAlwaysOverwrite)
		o.DeleteStale = s.getOptionalBool(keyEntitiesPrefix + string(t) + suffixDeleteStale)
		if o.AlwaysOverwrite != nil || o.DeleteStale != nil {
			settings.Entities[t] = o
		}
	}

	return settings, nil
}

// Save validates and persists application settings.
func (s *SettingsService) Save(settings *domain.Settings) error {
	if err := s.validateSettings(settings); err != nil {
		return err
	}

	values := map[string]any{
		keyInboxDir:          settings.Inbox.Dir,
		keyStopCheckInterval: settings.Sync.StopCheckInterval,
		keyDetectCycleSize:   settings.Sync.DetectCycleSize,
		keySkipUnchanged:     settings.Sync.SkipUnchangedFiles,
		keyHistoryKeep:       settings.Sync.HistoryKeep,
		keyWindowDays:        settings.Match.WindowDays,
		keyVariantCodes:      formatVariantCodes(settings.Match.VariantCodes),
		keyWatchMinInterval:  int(settings.Watch.MinInterval / time.Second),
		keySchedulerEnabled:  settings.Schedule.Enabled,
	}
	for t, name := range settings.Inbox.Files {
		values[keyInboxFilesPrefix+string(t)] = name
	}
	for t, interval := range settings.Schedule.Intervals {
		values[keySchedulerPrefix+string(t)+".interval"] = interval.String()
	}
	for t, o := range settings.Entities {
		if o.AlwaysOverwrite != nil {
			values[keyEntitiesPrefix+string(t)+suffixAlwaysOverwrite] = *o.AlwaysOverwrite
		}
		if o.DeleteStale != nil {
			values[keyEntitiesPrefix+string(t)+suffixDeleteStale] = *o.DeleteStale
		}
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := s.configStore.Set(k, values[k]); err != nil {
			return fmt.Errorf("save %s: %w", k, err)
		}
	}
	return nil
}

// SetInboxDir updates the directory exports are read from.
func (s *SettingsService) SetInboxDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("%w: inbox directory is required", domain.ErrInvalidInput)
	}
	return s.update(func(settings *domain.Settings) {
		settings.Inbox.Dir = dir
	})
}

// SetWindowDays updates the proximity matching window.
func (s *SettingsService) SetWindowDays(days int) error {
	return s.update(func(settings *domain.Settings) {
		settings.Match.WindowDays = days
	})
}

// SetVariantCode maps a variant selection code to package units.
// A units value of zero removes the code.
func (s *SettingsService) SetVariantCode(code string, units int) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || units < 0 {
		return fmt.Errorf("%w: variant code %q=%d", domain.ErrInvalidInput, code, units)
	}
	return s.update(func(settings *domain.Settings) {
		if units == 0 {
			delete(settings.Match.VariantCodes, code)
			return
		}
		settings.Match.VariantCodes[code] = units
	})
}

// SetEntityPolicy overrides the policy flags of an entity type.
// Nil leaves a flag unchanged.
func (s *SettingsService) SetEntityPolicy(entityType domain.EntityType, alwaysOverwrite, deleteStale *bool) error {
	if !entityType.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedType, entityType)
	}
	return s.update(func(settings *domain.Settings) {
		o := settings.Entities[entityType]
		if alwaysOverwrite != nil {
			o.AlwaysOverwrite = alwaysOverwrite
		}
		if deleteStale != nil {
			o.DeleteStale = deleteStale
		}
		settings.Entities[entityType] = o
	})
}

// Validate checks the current settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.validateSettings(settings)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

func (s *SettingsService) update(apply func(*domain.Settings)) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	apply(settings)
	return s.Save(settings)
}

func (s *SettingsService) validateSettings(settings *domain.Settings) error {
	if err := s.validate.Struct(settings); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	for t := range settings.Entities {
		if !t.IsValid() {
			return fmt.Errorf("%w: entity %q", domain.ErrUnsupportedType, t)
		}
	}
	return nil
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getOptionalBool(key string) *bool {
	if _, exists := s.configStore.Get(key); !exists {
		return nil
	}
	b := s.configStore.GetBool(key)
	return &b
}

func (s *SettingsService) getSeconds(key string, defaultVal time.Duration) time.Duration {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return time.Duration(s.configStore.GetInt(key)) * time.Second
}

// getVariantCodes reads "CODE=UNITS" entries. Malformed entries are ignored.
func (s *SettingsService) getVariantCodes(defaultVal map[string]int) map[string]int {
	entries := s.configStore.GetStringSlice(keyVariantCodes)
	if entries == nil {
		return defaultVal
	}

	codes := make(map[string]int, len(entries))
	for _, entry := range entries {
		code, units, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(units))
		if err != nil || n <= 0 {
			continue
		}
		codes[strings.ToUpper(strings.TrimSpace(code))] = n
	}
	return codes
}

// getSchedule reads scheduler.enabled plus scheduler.<type>.interval
// (a duration string such as "1h") and scheduler.<type>.enabled.
func (s *SettingsService) getSchedule(defaults domain.ScheduleSettings) domain.ScheduleSettings {
	schedule := domain.ScheduleSettings{
		Enabled:   s.getBool(keySchedulerEnabled, defaults.Enabled),
		Intervals: make(map[domain.EntityType]time.Duration, len(defaults.Intervals)),
	}

	for _, t := range domain.AllEntityTypes() {
		prefix := keySchedulerPrefix + string(t)
		interval := defaults.Intervals[t]
		if str := s.configStore.GetString(prefix + ".interval"); str != "" {
			if d, err := time.ParseDuration(str); err == nil && d >= 0 {
				interval = d
			}
		}
		if !s.getBool(prefix+".enabled", true) {
			interval = 0
		}
		schedule.Intervals[t] = interval
	}
	return schedule
}

func formatVariantCodes(codes map[string]int) []string {
	out := make([]string, 0, len(codes))
	for code, units := range codes {
		out = append(out, fmt.Sprintf("%s=%d", code, units))
	}
	sort.Strings(out)
	return out
}
