// Package markdown normalises markdown documents to plain text.
package markdown

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/isoguide/internal/core/domain"
	"github.com/custodia-labs/isoguide/internal/core/ports/driven"
	"github.com/custodia-labs/isoguide/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

var (
	codeBlockRe    = regexp.MustCompile("(?s)```[^`]*```")
	inlineCodeRe   = regexp.MustCompile("`[^`]+`")
	imageRe        = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	linkRe         = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headingRe      = regexp.MustCompile(`(?m)^#{1,6}[ \t]+`)
	blockquoteRe   = regexp.MustCompile(`(?m)^>[ \t]*`)
	ruleRe         = regexp.MustCompile(`(?m)^[-*_]{3,}[ \t]*$`)
	listMarkerRe   = regexp.MustCompile(`(?m)^[ \t]*[-*+][ \t]+`)
	numberedListRe = regexp.MustCompile(`(?m)^[ \t]*\d+\.[ \t]+`)
	emphasisRe     = regexp.MustCompile(`\*([^*\n]+)\*`)
	blankRunRe     = regexp.MustCompile(`\n{3,}`)
)

// Normaliser handles markdown documents.
type Normaliser struct{}

// New creates a new markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"text/markdown",
		"text/x-markdown",
	}
}

// Normalise strips markdown syntax, keeping blank lines between blocks so
// paragraphs stay intact for chunking.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	text, err := plaintext.Text(raw)
	if err != nil {
		return nil, err
	}

	return &domain.Document{
		Name:     raw.Name,
		Path:     raw.Path,
		Content:  stripMarkdown(text),
		MIMEType: raw.MIMEType,
	}, nil
}

// stripMarkdown removes common markdown formatting for plain text content.
// This is a simplified implementation that handles common cases.
func stripMarkdown(content string) string {
	content = codeBlockRe.ReplaceAllString(content, "")
	content = inlineCodeRe.ReplaceAllString(content, "")
	content = imageRe.ReplaceAllString(content, "")
	content = linkRe.ReplaceAllString(content, "$1")
	content = headingRe.ReplaceAllString(content, "")
	content = blockquoteRe.ReplaceAllString(content, "")
	content = ruleRe.ReplaceAllString(content, "")
	content = listMarkerRe.ReplaceAllString(content, "")
	content = numberedListRe.ReplaceAllString(content, "")

	// Bold first; single stars are only stripped in pairs on one line.
	content = strings.ReplaceAll(content, "**", "")
	content = strings.ReplaceAll(content, "__", "")
	content = emphasisRe.ReplaceAllString(content, "$1")

	content = blankRunRe.ReplaceAllString(content, "\n\n")

	return strings.TrimSpace(content)
}
