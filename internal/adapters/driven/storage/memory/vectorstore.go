package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/isoguide/internal/adapters/driven/storage/vectormath"
	"github.com/custodia-labs/isoguide/internal/core/domain"
	"github.com/custodia-labs/isoguide/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is an in-memory implementation of driven.VectorStore.
// Nothing survives the process; it backs tests and --store memory.
type VectorStore struct {
	mu          sync.RWMutex
	collections map[string]*Collection
	now         func() time.Time
}

// NewVectorStore creates a new in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{
		collections: make(map[string]*Collection),
		now:         time.Now,
	}
}

// CreateOrGet returns the named collection, creating it if needed.
func (s *VectorStore) CreateOrGet(_ context.Context, name string, spec domain.CollectionSpec) (driven.Collection, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: collection name is required", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.collections[name]; ok {
		return c, nil
	}

	c := &Collection{
		name:      name,
		spec:      spec,
		createdAt: s.now(),
		index:     make(map[string]int),
	}
	s.collections[name] = c
	return c, nil
}

// Delete drops the named collection.
func (s *VectorStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		return fmt.Errorf("collection %s: %w", name, domain.ErrNotFound)
	}
	c.drop()
	delete(s.collections, name)
	return nil
}

// List returns every collection's summary, ordered by name.
func (s *VectorStore) List(ctx context.Context) ([]domain.CollectionInfo, error) {
	s.mu.RLock()
	cols := make([]*Collection, 0, len(s.collections))
	for _, c := range s.collections {
		cols = append(cols, c)
	}
	s.mu.RUnlock()

	infos := make([]domain.CollectionInfo, 0, len(cols))
	for _, c := range cols {
		info, err := c.Info(ctx)
		if err != nil {
			return nil, err
		}
		infos = append(infos, *info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Close releases resources (no-op for memory store).
func (s *VectorStore) Close() error {
	return nil
}

// Ensure Collection implements the interface.
var _ driven.Collection = (*Collection)(nil)

// Collection is an in-memory collection.
type Collection struct {
	mu        sync.RWMutex
	name      string
	spec      domain.CollectionSpec
	createdAt time.Time
	entries   []vectormath.Entry
	index     map[string]int
	dropped   bool
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Info summarises the collection.
func (c *Collection) Info(_ context.Context) (*domain.CollectionInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.dropped {
		return nil, fmt.Errorf("collection %s: %w", c.name, domain.ErrNotFound)
	}
	return &domain.CollectionInfo{
		Name:       c.name,
		Count:      len(c.entries),
		Dimensions: c.spec.Dimensions,
		Model:      c.spec.Model,
		CreatedAt:  c.createdAt,
	}, nil
}

// Count returns the number of stored entries.
func (c *Collection) Count(ctx context.Context) (int, error) {
	info, err := c.Info(ctx)
	if err != nil {
		return 0, err
	}
	return info.Count, nil
}

// Add stores chunks with their embeddings. Re-adding an id replaces it.
func (c *Collection) Add(_ context.Context, chunks []domain.Chunk) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dropped {
		return fmt.Errorf("collection %s: %w", c.name, domain.ErrNotFound)
	}

	dims, err := vectormath.Validate(chunks, c.spec.Dimensions)
	if err != nil {
		return err
	}
	c.spec.Dimensions = dims

	for i := range chunks {
		entry := vectormath.Entry{
			ID:       chunks[i].ID,
			Content:  chunks[i].Content,
			Metadata: copyMetadata(chunks[i].Metadata),
			Vector:   append([]float32(nil), chunks[i].Embedding...),
		}
		if pos, ok := c.index[entry.ID]; ok {
			c.entries[pos] = entry
			continue
		}
		c.index[entry.ID] = len(c.entries)
		c.entries = append(c.entries, entry)
	}
	return nil
}

// Query returns up to k entries nearest to vector.
func (c *Collection) Query(_ context.Context, vector []float32, k int) ([]domain.Match, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.dropped {
		return nil, fmt.Errorf("collection %s: %w", c.name, domain.ErrNotFound)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}
	if len(c.entries) == 0 {
		return []domain.Match{}, nil
	}
	if c.spec.Dimensions != 0 && len(vector) != c.spec.Dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, collection has %d",
			domain.ErrDimensionMismatch, len(vector), c.spec.Dimensions)
	}

	return vectormath.TopK(vector, c.entries, k)
}

func (c *Collection) drop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropped = true
	c.entries = nil
	c.index = nil
}

func copyMetadata(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
