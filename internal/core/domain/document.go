package domain

import (
	"fmt"
	"time"
)

// DefaultDocumentName is the logical name of the ISO 27001 guidance document.
const DefaultDocumentName = "iso27001"

// SourceMetadataKey is the chunk metadata key holding the document name.
const SourceMetadataKey = "source"

// Document is the source text after normalisation.
// It is read once at index time and never mutated.
type Document struct {
	// Name is the logical document name, used as the chunks' source tag.
	Name string

	// Path is the file the document was read from.
	Path string

	// Content is the full text content after normalisation.
	Content string

	// MIMEType is the content type of the original file.
	MIMEType string

	// LoadedAt is when the document was read.
	LoadedAt time.Time
}

// Chunk is a contiguous piece of a Document stored and retrieved on its own.
type Chunk struct {
	// ID is unique within a collection: chunk-<position>.
	ID string

	// Content is the chunk text.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Embedding is the vector representation of Content.
	Embedding []float32

	// Metadata always carries the source tag.
	Metadata map[string]string
}

// ChunkID returns the identifier of the chunk at position i.
func ChunkID(i int) string {
	return fmt.Sprintf("chunk-%d", i)
}

// Source returns the chunk's source tag, or "" if unset.
func (c *Chunk) Source() string {
	if c.Metadata == nil {
		return ""
	}
	return c.Metadata[SourceMetadataKey]
}
