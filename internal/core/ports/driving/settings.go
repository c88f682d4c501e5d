package driving

import "github.com/custodia-labs/docqa/internal/core/domain"

// SettingsService reads and updates application settings.
type SettingsService interface {
	// Get returns the effective settings with defaults applied.
	Get() (*domain.AppSettings, error)

	// Set validates and stores a single setting by dot-notation key.
	Set(key, value string) error

	// Path returns the configuration file path.
	Path() string
}
