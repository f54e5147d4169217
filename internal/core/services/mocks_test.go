package services

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"testing"

	"github.com/custodia-labs/isoguide/internal/core/domain"
	"github.com/custodia-labs/isoguide/internal/core/ports/driven"
)

// Ensure mocks implement interfaces
var (
	_ driven.EmbeddingService   = (*hashEmbedder)(nil)
	_ driven.VectorStore        = (*untouchableStore)(nil)
	_ driven.Collection         = (*failingCollection)(nil)
	_ driven.DocumentSource     = (*mockSource)(nil)
	_ driven.NormaliserRegistry = (*passthroughRegistry)(nil)
	_ driven.Chunker            = (*paragraphChunker)(nil)
)

// hashEmbedder maps each word to a bucket, giving a deterministic bag-of-words
// vector. Identical texts embed identically and texts sharing words score
// higher than unrelated ones.
type hashEmbedder struct {
	dims       int
	err        error
	batchCalls int
	embedCalls int
}

func newHashEmbedder() *hashEmbedder {
	return &hashEmbedder{dims: 64}
}

func (e *hashEmbedder) vector(text string) []float32 {
	v := make([]float32, e.dims)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,?!")
		if word == "" {
			continue
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(word))
		v[h.Sum32()%uint32(e.dims)]++
	}
	return v
}

func (e *hashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.embedCalls++
	if e.err != nil {
		return nil, e.err
	}
	return e.vector(text), nil
}

func (e *hashEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.batchCalls++
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = e.vector(text)
	}
	return out, nil
}

func (e *hashEmbedder) Dimensions() int              { return e.dims }
func (e *hashEmbedder) ModelName() string            { return "hash-test" }
func (e *hashEmbedder) Ping(_ context.Context) error { return e.err }
func (e *hashEmbedder) Close() error                 { return nil }

// untouchableStore fails the test on any access.
type untouchableStore struct {
	t *testing.T
}

func (s *untouchableStore) CreateOrGet(context.Context, string, domain.CollectionSpec) (driven.Collection, error) {
	s.t.Fatal("vector store must not be accessed")
	return nil, nil
}

func (s *untouchableStore) Delete(context.Context, string) error {
	s.t.Fatal("vector store must not be accessed")
	return nil
}

func (s *untouchableStore) List(context.Context) ([]domain.CollectionInfo, error) {
	s.t.Fatal("vector store must not be accessed")
	return nil, nil
}

func (s *untouchableStore) Close() error { return nil }

// failingCollection returns err from every operation and counts queries.
type failingCollection struct {
	err     error
	queries int
}

func (c *failingCollection) Name() string { return "failing" }

func (c *failingCollection) Info(context.Context) (*domain.CollectionInfo, error) {
	return nil, c.err
}

func (c *failingCollection) Count(context.Context) (int, error) { return 0, c.err }

func (c *failingCollection) Add(context.Context, []domain.Chunk) error { return c.err }

func (c *failingCollection) Query(context.Context, []float32, int) ([]domain.Match, error) {
	c.queries++
	return nil, c.err
}

// mockSource serves documents from a map keyed by path.
type mockSource struct {
	files map[string]string
}

func (s *mockSource) Fetch(_ context.Context, path string) (*domain.RawDocument, error) {
	content, ok := s.files[path]
	if !ok {
		return nil, errors.Join(domain.ErrDocumentNotFound, errors.New(path))
	}
	return &domain.RawDocument{Path: path, MIMEType: "text/plain", Content: []byte(content)}, nil
}

// passthroughRegistry treats every raw document as UTF-8 text.
type passthroughRegistry struct{}

func (passthroughRegistry) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	return &domain.Document{Name: raw.Name, Content: string(raw.Content), MIMEType: raw.MIMEType}, nil
}

func (passthroughRegistry) Register(driven.Normaliser) {}

func (passthroughRegistry) SupportedMIMETypes() []string { return []string{"text/plain"} }

// paragraphChunker splits on blank lines without a size limit, so service
// tests do not depend on the chunker package.
type paragraphChunker struct{}

func (paragraphChunker) Name() string { return "paragraph" }

func (paragraphChunker) Chunk(_ context.Context, doc *domain.Document, _ int) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	for _, block := range strings.Split(doc.Content, "\n\n") {
		if block = strings.TrimSpace(block); block != "" {
			chunks = append(chunks, domain.Chunk{Content: block})
		}
	}
	return chunks, nil
}
