// Package vectormath ranks stored vectors by cosine similarity.
// It backs the stores that keep raw vectors and search them exactly
// (memory and SQLite); PostgreSQL delegates ranking to pgvector.
package vectormath

import (
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/isoguide/internal/core/domain"
)

// Cosine returns the cosine similarity of a and b in [-1, 1].
// A zero vector has similarity 0 with everything.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", domain.ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return math.Max(-1, math.Min(1, sim)), nil
}

// Normalize scales v to unit length in place. Zero vectors are left alone.
func Normalize(v []float32) {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		return
	}
	norm = math.Sqrt(norm)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
}

// Entry is a stored vector with its payload.
type Entry struct {
	ID       string
	Content  string
	Metadata map[string]string
	Vector   []float32
}

// TopK returns the k entries most similar to query, most similar first.
// Ties keep the entries' input order.
func TopK(query []float32, entries []Entry, k int) ([]domain.Match, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}

	matches := make([]domain.Match, 0, len(entries))
	for i := range entries {
		score, err := Cosine(query, entries[i].Vector)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", entries[i].ID, err)
		}
		matches = append(matches, domain.Match{
			ChunkID:  entries[i].ID,
			Content:  entries[i].Content,
			Metadata: entries[i].Metadata,
			Score:    score,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Validate checks that every chunk has an id and an embedding of dims
// dimensions. A dims of zero is taken from the first chunk. It returns
// the resolved dimensions.
func Validate(chunks []domain.Chunk, dims int) (int, error) {
	for i := range chunks {
		if chunks[i].ID == "" {
			return 0, fmt.Errorf("%w: chunk at index %d has no id", domain.ErrInvalidInput, i)
		}
		if len(chunks[i].Embedding) == 0 {
			return 0, fmt.Errorf("%w: chunk %s has no embedding", domain.ErrInvalidInput, chunks[i].ID)
		}
		if dims == 0 {
			dims = len(chunks[i].Embedding)
		}
		if len(chunks[i].Embedding) != dims {
			return 0, fmt.Errorf("%w: chunk %s has %d dimensions, collection has %d",
				domain.ErrDimensionMismatch, chunks[i].ID, len(chunks[i].Embedding), dims)
		}
	}
	return dims, nil
}
