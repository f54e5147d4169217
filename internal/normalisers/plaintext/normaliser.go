// Package plaintext normalises plain text documents.
package plaintext

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/isoguide/internal/core/domain"
	"github.com/custodia-labs/isoguide/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/csv",
	}
}

// Normalise converts a raw document to a normalised document.
// Line endings are unified to "\n" so paragraph breaks survive files
// written on Windows. The text is otherwise left untouched.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	text, err := Text(raw)
	if err != nil {
		return nil, err
	}

	return &domain.Document{
		Name:     raw.Name,
		Path:     raw.Path,
		Content:  text,
		MIMEType: raw.MIMEType,
	}, nil
}

// Text decodes the raw bytes as UTF-8 and cleans them.
func Text(raw *domain.RawDocument) (string, error) {
	if !utf8.Valid(raw.Content) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8", domain.ErrInvalidInput, raw.Path)
	}
	return Clean(string(raw.Content)), nil
}

// Clean strips a UTF-8 byte order mark and converts CRLF and CR line
// endings to LF.
func Clean(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
