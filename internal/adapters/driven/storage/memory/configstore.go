package memory

import (
	"maps"
	"sync"

	"github.com/custodia-labs/isoguide/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in a map. Save snapshots the current values and
// Load restores the last snapshot, which mirrors a file that was written and
// read back.
type ConfigStore struct {
	mu    sync.RWMutex
	live  map[string]any
	saved map[string]any
}

// NewConfigStore returns a store seeded with the given dotted keys.
func NewConfigStore(seed ...map[string]any) *ConfigStore {
	s := &ConfigStore{live: map[string]any{}, saved: map[string]any{}}
	for _, m := range seed {
		maps.Copy(s.live, m)
	}
	maps.Copy(s.saved, s.live)
	return s
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.live[key]
	return v, ok
}

func (s *ConfigStore) GetString(key string) string {
	v, _ := s.Get(key)
	str, _ := v.(string)
	return str
}

func (s *ConfigStore) GetInt(key string) int {
	return int(s.GetFloat(key))
}

// GetFloat accepts the numeric types a TOML decoder or a test may produce.
func (s *ConfigStore) GetFloat(key string) float64 {
	v, _ := s.Get(key)
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

func (s *ConfigStore) GetBool(key string) bool {
	v, _ := s.Get(key)
	b, _ := v.(bool)
	return b
}

// GetStringSlice drops non-string items from decoded arrays.
func (s *ConfigStore) GetStringSlice(key string) []string {
	v, _ := s.Get(key)
	if strs, ok := v.([]string); ok {
		return strs
	}
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if str, ok := item.(string); ok {
			out = append(out, str)
		}
	}
	return out
}

// Set updates the value and snapshots it, like the file store which saves on
// every Set.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.live[key] = value
	s.saved[key] = value
	return nil
}

func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = maps.Clone(s.live)
	return nil
}

func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.live = maps.Clone(s.saved)
	return nil
}

func (s *ConfigStore) Path() string {
	return ":memory:"
}
