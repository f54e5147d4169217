package domain

import (
	"fmt"
	"path/filepath"
)

const unknownDescription = "Unknown"

// AIProvider identifies an embedding service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// StorageBackend identifies a vector store implementation.
type StorageBackend string

// Available storage backends.
const (
	// StorageSQLite is the embedded on-disk store.
	StorageSQLite StorageBackend = "sqlite"

	// StoragePostgres is PostgreSQL with the pgvector extension.
	StoragePostgres StorageBackend = "postgres"

	// StorageMemory keeps vectors in process memory only.
	StorageMemory StorageBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	switch b {
	case StorageSQLite, StoragePostgres, StorageMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b StorageBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b StorageBackend) Description() string {
	switch b {
	case StorageSQLite:
		return "SQLite (embedded, on disk)"
	case StoragePostgres:
		return "PostgreSQL + pgvector"
	case StorageMemory:
		return "In-memory (not persisted)"
	default:
		return unknownDescription
	}
}

// DocumentSettings locates the source document.
type DocumentSettings struct {
	Path string
	Name string
}

// ChunkingSettings controls the chunker.
type ChunkingSettings struct {
	// MaxChars is the maximum chunk length in characters.
	MaxChars int
}

// StorageSettings selects and locates the vector store.
type StorageSettings struct {
	Backend StorageBackend

	// Path is the directory holding the SQLite database.
	Path string

	// PostgresDSN is the connection string for the postgres backend.
	PostgresDSN string

	// Collection is the collection name.
	Collection string
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint. Empty means the provider default.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions overrides the model's known dimensions. Zero means
	// look it up in EmbeddingDimensions.
	Dimensions int

	// RequestsPerSecond paces calls to the provider. Zero means unlimited.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// ResolvedDimensions returns the configured or known dimensions for the model.
func (e EmbeddingSettings) ResolvedDimensions() int {
	if e.Dimensions > 0 {
		return e.Dimensions
	}
	return EmbeddingDimensions()[e.Model]
}

// ServerSettings controls the HTTP API.
type ServerSettings struct {
	Addr        string
	DefaultTopK int
	MaxTopK     int
	CORSOrigins []string
}

// Settings holds all application settings.
type Settings struct {
	Document  DocumentSettings
	Chunking  ChunkingSettings
	Storage   StorageSettings
	Embedding EmbeddingSettings
	Server    ServerSettings
}

// Validate checks settings for values no component can work with.
func (s *Settings) Validate() error {
	if s.Chunking.MaxChars <= 0 {
		return fmt.Errorf("%w: chunking.max_chars must be positive", ErrConfigInvalid)
	}
	if !s.Storage.Backend.IsValid() {
		return fmt.Errorf("%w: unknown storage backend %q", ErrConfigInvalid, s.Storage.Backend)
	}
	if s.Storage.Backend == StoragePostgres && s.Storage.PostgresDSN == "" {
		return fmt.Errorf("%w: storage.postgres_dsn is required for the postgres backend", ErrConfigInvalid)
	}
	if s.Storage.Collection == "" {
		return fmt.Errorf("%w: collection.name must not be empty", ErrConfigInvalid)
	}
	if !s.Embedding.Provider.IsValid() {
		return fmt.Errorf("%w: unknown embedding provider %q", ErrConfigInvalid, s.Embedding.Provider)
	}
	if s.Embedding.Model == "" {
		return fmt.Errorf("%w: embedding.model must not be empty", ErrConfigInvalid)
	}
	if s.Server.DefaultTopK <= 0 {
		return fmt.Errorf("%w: server.default_top_k must be positive", ErrConfigInvalid)
	}
	if s.Server.MaxTopK > 0 && s.Server.DefaultTopK > s.Server.MaxTopK {
		return fmt.Errorf("%w: server.default_top_k exceeds server.max_top_k", ErrConfigInvalid)
	}
	return nil
}

// DefaultSettings returns settings rooted at dataDir.
// The embedding model defaults to all-minilm, Ollama's build of the
// all-MiniLM-L6-v2 sentence transformer.
func DefaultSettings(dataDir string) Settings {
	return Settings{
		Document: DocumentSettings{
			Path: filepath.Join(dataDir, "iso27001.txt"),
			Name: DefaultDocumentName,
		},
		Chunking: ChunkingSettings{
			MaxChars: 600,
		},
		Storage: StorageSettings{
			Backend:    StorageSQLite,
			Path:       filepath.Join(dataDir, "vector_db"),
			Collection: DefaultCollectionName,
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    DefaultEmbeddingModels()[AIProviderOllama],
		},
		Server: ServerSettings{
			Addr:        ":8000",
			DefaultTopK: DefaultTopK,
			MaxTopK:     100,
			CORSOrigins: []string{"*"},
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllStorageBackends returns every vector store backend.
func AllStorageBackends() []StorageBackend {
	return []StorageBackend{
		StorageSQLite,
		StoragePostgres,
		StorageMemory,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "all-minilm",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"all-minilm":        384,
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
