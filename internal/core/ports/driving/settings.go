package driving

import "github.com/archibald-labs/archisync/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.Settings, error)

	// Save validates and persists application settings.
	Save(settings *domain.Settings) error

	// SetInboxDir updates the directory exports are read from.
	SetInboxDir(dir string) error

	// SetWindowDays updates the proximity matching window.
	SetWindowDays(days int) error

	// SetVariantCode maps a variant selection code to package units.
	SetVariantCode(code string, units int) error

	// SetEntityPolicy overrides the policy flags of an entity type.
	SetEntityPolicy(entityType domain.EntityType, alwaysOverwrite, deleteStale *bool) error

	// Validate checks the current settings.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.Settings
}
