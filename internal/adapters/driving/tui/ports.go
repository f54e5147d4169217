// Package tui provides the interactive chat for isoguide.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/isoguide/internal/core/domain"
	"github.com/custodia-labs/isoguide/internal/core/ports/driving"
)

// Ports aggregates the driving ports required by the TUI.
type Ports struct {
	// Ask answers questions from the collection.
	Ask driving.AskService

	// TopK is the number of passages requested per question.
	TopK int
}

// Validate ensures all required ports are set and fills defaults.
func (p *Ports) Validate() error {
	if p.Ask == nil {
		return ErrMissingAskService
	}
	if p.TopK <= 0 {
		p.TopK = domain.DefaultTopK
	}
	return nil
}
