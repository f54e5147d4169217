package driving

import "github.com/custodia-labs/isoguide/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current settings: defaults, overlaid with the config
	// file, overlaid with environment variables.
	Get() (*domain.Settings, error)

	// Set persists a single config key.
	Set(key, value string) error

	// Keys returns every recognised config key in display order.
	Keys() []string

	// EnvVar returns the environment variable overriding key, or "".
	EnvVar(key string) string

	// Path returns the config file path.
	Path() string
}
