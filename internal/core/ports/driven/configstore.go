package driven

// ConfigStore is the persisted layer of settings. Keys are dotted paths into
// the file's tables, e.g. "embedding.model". Typed getters return the zero
// value when a key is absent or holds another type.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	GetFloat(key string) float64
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set writes the value through to storage.
	Set(key string, value any) error

	Save() error
	Load() error

	// Path is the backing file, or a pseudo path for in-memory stores.
	Path() string
}
