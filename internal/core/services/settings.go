package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/custodia-labs/isoguide/internal/core/domain"
	"github.com/custodia-labs/isoguide/internal/core/ports/driven"
	"github.com/custodia-labs/isoguide/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindList
)

// settingKey maps a config key to its environment override.
type settingKey struct {
	name string
	env  string
	kind valueKind
}

// Config keys for settings storage, in display order.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
var settingKeys = []settingKey{
	{"document.path", "ISOGUIDE_DOCUMENT_PATH", kindString},
	{"document.name", "ISOGUIDE_DOCUMENT_NAME", kindString},
	{"collection.name", "ISOGUIDE_COLLECTION", kindString},
	{"chunking.max_chars", "ISOGUIDE_MAX_CHARS", kindInt},
	{"storage.backend", "ISOGUIDE_STORAGE_BACKEND", kindString},
	{"storage.path", "ISOGUIDE_STORAGE_PATH", kindString},
	{"storage.postgres_dsn", "DATABASE_URL", kindString},
	{"embedding.provider", "ISOGUIDE_EMBEDDING_PROVIDER", kindString},
	{"embedding.model", "ISOGUIDE_EMBEDDING_MODEL", kindString},
	{"embedding.base_url", "ISOGUIDE_EMBEDDING_BASE_URL", kindString},
	{"embedding.api_key", "OPENAI_API_KEY", kindString},
	{"embedding.dimensions", "ISOGUIDE_EMBEDDING_DIMENSIONS", kindInt},
	{"embedding.requests_per_second", "ISOGUIDE_EMBEDDING_RPS", kindFloat},
	{"server.addr", "ISOGUIDE_ADDR", kindString},
	{"server.default_top_k", "ISOGUIDE_DEFAULT_TOP_K", kindInt},
	{"server.max_top_k", "ISOGUIDE_MAX_TOP_K", kindInt},
	{"server.cors_origins", "ISOGUIDE_CORS_ORIGINS", kindList},
}

// SettingsService resolves settings from defaults, the config file and the
// environment, in increasing precedence.
type SettingsService struct {
	configStore driven.ConfigStore
	dataDir     string
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a settings service. dataDir roots the default
// document and storage paths.
func NewSettingsService(configStore driven.ConfigStore, dataDir string) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		dataDir:     dataDir,
		lookupEnv:   os.LookupEnv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.Settings, error) {
	settings := domain.DefaultSettings(s.dataDir)
	modelSet := false

	for _, k := range settingKeys {
		raw, ok := s.lookup(k)
		if !ok {
			continue
		}
		if err := apply(&settings, k, raw); err != nil {
			return nil, err
		}
		if k.name == "embedding.model" {
			modelSet = true
		}
	}

	// Switching provider without naming a model picks that provider's default.
	if !modelSet {
		if model, ok := domain.DefaultEmbeddingModels()[settings.Embedding.Provider]; ok {
			settings.Embedding.Model = model
		}
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Set validates and persists a single config key.
func (s *SettingsService) Set(key, value string) error {
	k, ok := findKey(key)
	if !ok {
		return fmt.Errorf("%w: unknown config key %q", domain.ErrInvalidInput, key)
	}

	scratch := domain.DefaultSettings(s.dataDir)
	if err := apply(&scratch, k, value); err != nil {
		return err
	}

	var typed any
	switch k.kind {
	case kindInt:
		n, _ := strconv.Atoi(strings.TrimSpace(value))
		typed = int64(n)
	case kindFloat:
		f, _ := strconv.ParseFloat(strings.TrimSpace(value), 64)
		typed = f
	case kindList:
		typed = splitList(value)
	default:
		typed = value
	}

	if err := s.configStore.Set(key, typed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns every recognised config key in display order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingKeys))
	for i, k := range settingKeys {
		keys[i] = k.name
	}
	return keys
}

// EnvVar returns the environment variable overriding key, or "".
func (s *SettingsService) EnvVar(key string) string {
	if k, ok := findKey(key); ok {
		return k.env
	}
	return ""
}

// Path returns the config file path.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

// lookup returns the raw value for k as a string, environment first.
func (s *SettingsService) lookup(k settingKey) (string, bool) {
	if v, ok := s.lookupEnv(k.env); ok && v != "" {
		return v, true
	}

	v, ok := s.configStore.Get(k.name)
	if !ok || v == nil {
		return "", false
	}

	switch val := v.(type) {
	case string:
		return val, true
	case []string:
		return strings.Join(val, ","), true
	case []any:
		parts := make([]string, len(val))
		for i := range val {
			parts[i] = fmt.Sprint(val[i])
		}
		return strings.Join(parts, ","), true
	default:
		return fmt.Sprint(val), true
	}
}

func findKey(name string) (settingKey, bool) {
	for _, k := range settingKeys {
		if k.name == name {
			return k, true
		}
	}
	return settingKey{}, false
}

// apply parses raw according to k and stores it in settings.
func apply(settings *domain.Settings, k settingKey, raw string) error {
	raw = strings.TrimSpace(raw)

	var (
		n   int
		f   float64
		err error
	)
	switch k.kind {
	case kindInt:
		n, err = strconv.Atoi(raw)
	case kindFloat:
		f, err = strconv.ParseFloat(raw, 64)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %q is not a number", domain.ErrConfigInvalid, k.name, raw)
	}

	switch k.name {
	case "document.path":
		settings.Document.Path = raw
	case "document.name":
		settings.Document.Name = raw
	case "collection.name":
		settings.Storage.Collection = raw
	case "chunking.max_chars":
		settings.Chunking.MaxChars = n
	case "storage.backend":
		backend := domain.StorageBackend(strings.ToLower(raw))
		if !backend.IsValid() {
			return fmt.Errorf("%w: storage.backend: unknown backend %q", domain.ErrConfigInvalid, raw)
		}
		settings.Storage.Backend = backend
	case "storage.path":
		settings.Storage.Path = raw
	case "storage.postgres_dsn":
		settings.Storage.PostgresDSN = raw
	case "embedding.provider":
		provider := domain.AIProvider(strings.ToLower(raw))
		if !provider.IsValid() {
			return fmt.Errorf("%w: embedding.provider: unknown provider %q", domain.ErrConfigInvalid, raw)
		}
		settings.Embedding.Provider = provider
	case "embedding.model":
		settings.Embedding.Model = raw
	case "embedding.base_url":
		settings.Embedding.BaseURL = raw
	case "embedding.api_key":
		settings.Embedding.APIKey = raw
	case "embedding.dimensions":
		settings.Embedding.Dimensions = n
	case "embedding.requests_per_second":
		settings.Embedding.RequestsPerSecond = f
	case "server.addr":
		settings.Server.Addr = raw
	case "server.default_top_k":
		settings.Server.DefaultTopK = n
	case "server.max_top_k":
		settings.Server.MaxTopK = n
	case "server.cors_origins":
		settings.Server.CORSOrigins = splitList(raw)
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
