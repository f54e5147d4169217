// Package mcp provides an MCP (Model Context Protocol) server adapter for isoguide.
// It lets AI assistants ask ISO 27001 questions against the indexed collection.
package mcp

import "errors"

// ErrMissingAskService is returned when the ask service is not provided.
var ErrMissingAskService = errors.New("mcp: ask service is required")
