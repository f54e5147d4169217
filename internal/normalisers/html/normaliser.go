package html

import (
	"context"
	"html"
	"regexp"
	"strings"

	"github.com/custodia-labs/isoguide/internal/core/domain"
	"github.com/custodia-labs/isoguide/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles HTML documents.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Normalise strips markup. Block elements become paragraphs separated by
// blank lines; inline markup is dropped.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	return &domain.Document{
		Name:     raw.Name,
		Path:     raw.Path,
		Content:  stripHTML(string(raw.Content)),
		MIMEType: raw.MIMEType,
	}, nil
}

// Pre-compiled regular expressions for HTML parsing performance.
var (
	dropElements  = regexp.MustCompile(`(?is)<(script|style|noscript|head|svg)\b[^>]*>.*?</(script|style|noscript|head|svg)>`)
	htmlComments  = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockElements = regexp.MustCompile(`(?i)</?(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article|ul|ol)\b[^>]*>`)
	breakTags     = regexp.MustCompile(`(?i)<(br|hr)\s*/?>`)
	allTags       = regexp.MustCompile(`<[^>]+>`)
	multiSpaces   = regexp.MustCompile(`[ \t\r]+`)
)

// stripHTML removes tags and returns one paragraph per block.
func stripHTML(content string) string {
	content = dropElements.ReplaceAllString(content, "")
	content = htmlComments.ReplaceAllString(content, "")

	content = blockElements.ReplaceAllString(content, "\n\n")
	content = breakTags.ReplaceAllString(content, "\n")
	content = allTags.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	content = multiSpaces.ReplaceAllString(content, " ")

	var paras []string
	for _, block := range strings.Split(content, "\n\n") {
		lines := strings.Split(block, "\n")
		kept := lines[:0]
		for _, line := range lines {
			if line = strings.TrimSpace(line); line != "" {
				kept = append(kept, line)
			}
		}
		if len(kept) > 0 {
			paras = append(paras, strings.Join(kept, "\n"))
		}
	}

	return strings.Join(paras, "\n\n")
}
