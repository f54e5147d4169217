package domain

import "time"

// DefaultCollectionName is the fixed name of the ISO 27001 collection.
const DefaultCollectionName = "iso27001_controls"

// CollectionSpec describes the embedding space a collection is created for.
// It is recorded only when the collection is created; opening an existing
// collection keeps what was recorded then.
type CollectionSpec struct {
	// Dimensions is the embedding vector size. Zero means "take it from
	// the first Add".
	Dimensions int

	// Model is the embedding model name the vectors came from.
	Model string
}

// CollectionInfo summarises a persisted collection.
type CollectionInfo struct {
	Name       string
	Count      int
	Dimensions int
	Model      string
	CreatedAt  time.Time
}

// Match is one nearest-neighbour hit.
type Match struct {
	// ChunkID is the stored chunk identifier.
	ChunkID string

	// Content is the stored chunk text.
	Content string

	// Metadata is the stored chunk metadata.
	Metadata map[string]string

	// Score is cosine similarity; higher is closer.
	Score float64
}
