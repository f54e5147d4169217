package mcp

import (
	"github.com/custodia-labs/isoguide/internal/core/domain"
	"github.com/custodia-labs/isoguide/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server needs.
type Ports struct {
	// Ask answers questions from the collection.
	Ask driving.AskService

	// DefaultTopK is used when a tool call gives no top_k.
	DefaultTopK int
}

// Validate ensures all required ports are set and fills defaults.
func (p *Ports) Validate() error {
	if p.Ask == nil {
		return ErrMissingAskService
	}
	if p.DefaultTopK <= 0 {
		p.DefaultTopK = domain.DefaultTopK
	}
	return nil
}
