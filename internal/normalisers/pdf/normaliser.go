// Package pdf extracts text from PDF documents.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/isoguide/internal/core/domain"
	"github.com/custodia-labs/isoguide/internal/core/ports/driven"
	"github.com/custodia-labs/isoguide/internal/logger"
	"github.com/custodia-labs/isoguide/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// ErrNoText is returned when a PDF has no extractable text layer.
var ErrNoText = errors.New("pdf has no extractable text")

// Normaliser handles PDF documents.
type Normaliser struct{}

// New creates a new PDF normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Normalise extracts the text of every page. Pages are joined by a blank
// line so each page starts a new paragraph.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	pages, err := extractPages(ctx, raw.Content)
	if err != nil {
		return nil, err
	}

	content := joinPages(pages)
	if content == "" {
		return nil, fmt.Errorf("%s: %w", raw.Path, ErrNoText)
	}

	return &domain.Document{
		Name:     raw.Name,
		Path:     raw.Path,
		Content:  content,
		MIMEType: raw.MIMEType,
	}, nil
}

// extractPages returns the plain text of each page in order.
// The pdf library panics on some malformed files; that is reported as an error.
func extractPages(ctx context.Context, content []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("read pdf: %v: %w", r, domain.ErrInvalidInput)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w: %w", err, domain.ErrInvalidInput)
	}

	total := reader.NumPage()
	logger.Debug("PDF has %d pages", total)

	pages = make([]string, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("read page %d: %w", i, err)
		}
		pages = append(pages, text)
	}

	return pages, nil
}

// joinPages cleans each page and joins the non-empty ones with a blank line.
func joinPages(pages []string) string {
	kept := make([]string, 0, len(pages))
	for _, p := range pages {
		p = strings.TrimSpace(plaintext.Clean(p))
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}
