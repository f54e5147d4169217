// Package embedding holds helpers shared by the embedding service adapters.
package embedding

import (
	"context"

	"golang.org/x/time/rate"
)

// Pacer spaces out calls to an embedding provider.
// A nil Pacer never waits.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer returns a pacer allowing rps requests per second, or nil when
// rps is not positive.
func NewPacer(rps float64) *Pacer {
	if rps <= 0 {
		return nil
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Limit(rps), 1)}
}

// Wait blocks until the next request may be sent or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil {
		return ctx.Err()
	}
	return p.limiter.Wait(ctx)
}

// Batches splits texts into consecutive slices of at most size elements.
// A size of zero or less yields a single batch.
func Batches(texts []string, size int) [][]string {
	if len(texts) == 0 {
		return nil
	}
	if size <= 0 || size >= len(texts) {
		return [][]string{texts}
	}

	out := make([][]string, 0, (len(texts)+size-1)/size)
	for start := 0; start < len(texts); start += size {
		end := min(start+size, len(texts))
		out = append(out, texts[start:end])
	}
	return out
}
