package embedding

import (
	"fmt"
	"sync"

	"github.com/custodia-labs/isoguide/internal/core/domain"
)

// Dimensions tracks a model's vector size. A zero size is learned from
// the first vector checked; after that every vector must match.
type Dimensions struct {
	mu sync.RWMutex
	n  int
}

// NewDimensions returns a tracker starting at n, where zero means unknown.
func NewDimensions(n int) *Dimensions {
	return &Dimensions{n: n}
}

// Get returns the known size, or 0.
func (d *Dimensions) Get() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.n
}

// Check records n on first use and rejects a size that disagrees with it.
func (d *Dimensions) Check(model string, n int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.n == 0 {
		d.n = n
		return nil
	}
	if d.n != n {
		return fmt.Errorf("%w: model %s returned %d dimensions, expected %d",
			domain.ErrDimensionMismatch, model, n, d.n)
	}
	return nil
}
