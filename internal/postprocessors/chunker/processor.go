// Package chunker splits document text into paragraph-bounded chunks.
//
// Text is split on blank lines. Each trimmed, non-empty paragraph becomes one
// chunk if it fits within the maximum size; longer paragraphs are cut into
// consecutive fixed-size slices with no overlap. Sizes count characters
// (runes), not bytes, so multi-byte text is never split inside a character.
package chunker

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/isoguide/internal/core/domain"
	"github.com/custodia-labs/isoguide/internal/core/ports/driven"
)

// DefaultMaxChars is the default maximum number of characters per chunk.
const DefaultMaxChars = 600

// paragraphSeparator marks block boundaries.
const paragraphSeparator = "\n\n"

// Ensure Processor implements the Chunker port.
var _ driven.Chunker = (*Processor)(nil)

// Processor splits document content into chunks.
type Processor struct {
	maxChars int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithMaxChars sets the maximum chunk size in characters.
// Non-positive values are ignored.
func WithMaxChars(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxChars = n
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		maxChars: DefaultMaxChars,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// MaxChars returns the configured default maximum chunk size.
func (p *Processor) MaxChars() int {
	return p.maxChars
}

// Chunk splits the document content into chunks with ids chunk-0..n-1 and
// the document name as source metadata. maxChars <= 0 uses the processor's
// configured size.
func (p *Processor) Chunk(ctx context.Context, doc *domain.Document, maxChars int) ([]domain.Chunk, error) {
	if maxChars <= 0 {
		maxChars = p.maxChars
	}

	texts := Split(doc.Content, maxChars)
	if len(texts) == 0 {
		return nil, nil
	}

	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		chunks[i] = domain.Chunk{
			ID:       domain.ChunkID(i),
			Content:  text,
			Position: i,
			Metadata: map[string]string{domain.SourceMetadataKey: doc.Name},
		}
	}

	return chunks, nil
}

// Split returns the chunk texts of content in document order.
// maxChars <= 0 uses DefaultMaxChars.
func Split(content string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	var chunks []string
	for _, block := range strings.Split(content, paragraphSeparator) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		if utf8.RuneCountInString(block) <= maxChars {
			chunks = append(chunks, block)
			continue
		}

		chunks = append(chunks, slice(block, maxChars)...)
	}

	return chunks
}

// slice cuts block into consecutive pieces of n runes; the last may be
// shorter. It walks the bytes so an invalid byte counts as one rune and is
// kept as-is.
func slice(block string, n int) []string {
	var pieces []string
	for len(block) > 0 {
		end := 0
		for count := 0; count < n && end < len(block); count++ {
			_, size := utf8.DecodeRuneInString(block[end:])
			end += size
		}
		pieces = append(pieces, block[:end])
		block = block[end:]
	}
	return pieces
}
