package markdown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/isoguide/internal/core/domain"
	"github.com/custodia-labs/isoguide/internal/core/ports/driven"
)

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.IsType(t, &Normaliser{}, normaliser)
}

func TestSupportedMIMETypes(t *testing.T) {
	normaliser := New()
	mimeTypes := normaliser.SupportedMIMETypes()

	require.NotEmpty(t, mimeTypes)
	assert.Contains(t, mimeTypes, "text/markdown")
	assert.Contains(t, mimeTypes, "text/x-markdown")
}

func TestNormalise_Success(t *testing.T) {
	normaliser := New()
	ctx := context.Background()

	raw := &domain.RawDocument{
		Name:     "iso27001",
		Path:     "/data/iso27001.md",
		MIMEType: "text/markdown",
		Content:  []byte("# A.7.7 Clear desk\r\n\r\nPapers **must** be cleared."),
	}

	doc, err := normaliser.Normalise(ctx, raw)
	require.NoError(t, err)
	require.NotNil(t, doc)

	assert.Equal(t, "iso27001", doc.Name)
	assert.Equal(t, "/data/iso27001.md", doc.Path)
	assert.Equal(t, "text/markdown", doc.MIMEType)
	assert.Equal(t, "A.7.7 Clear desk\n\nPapers must be cleared.", doc.Content)
}

func TestNormalise_NilDocument(t *testing.T) {
	normaliser := New()

	doc, err := normaliser.Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, doc)
}

func TestNormalise_InvalidUTF8(t *testing.T) {
	normaliser := New()

	doc, err := normaliser.Normalise(context.Background(), &domain.RawDocument{
		Path:     "/data/latin1.txt",
		MIMEType: "text/markdown",
		Content:  []byte("Contr\xf4le d'acc\xe8s"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, doc)
}

func TestNormalise_EmptyContent(t *testing.T) {
	normaliser := New()

	doc, err := normaliser.Normalise(context.Background(), &domain.RawDocument{MIMEType: "text/markdown"})
	require.NoError(t, err)
	assert.Empty(t, doc.Content)
}

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "headings removed",
			input:    "# Title\n## Subtitle\n### Third",
			expected: "Title\nSubtitle\nThird",
		},
		{
			name:     "bold removed",
			input:    "This is **bold** text",
			expected: "This is bold text",
		},
		{
			name:     "italic removed",
			input:    "This is *italic* text",
			expected: "This is italic text",
		},
		{
			name:     "links converted",
			input:    "Click [here](https://example.com)",
			expected: "Click here",
		},
		{
			name:     "images removed",
			input:    "See ![alt text](image.png) here",
			expected: "See  here",
		},
		{
			name:     "code blocks removed",
			input:    "Before\n```go\ncode here\n```\nAfter",
			expected: "Before\n\nAfter",
		},
		{
			name:     "inline code removed",
			input:    "Use `code` here",
			expected: "Use  here",
		},
		{
			name:     "blockquotes cleaned",
			input:    "> This is a quote",
			expected: "This is a quote",
		},
		{
			name:     "list markers removed",
			input:    "- Item 1\n- Item 2",
			expected: "Item 1\nItem 2",
		},
		{
			name:     "numbered list markers removed",
			input:    "1. First\n2. Second",
			expected: "First\nSecond",
		},
		{
			name:     "control identifiers kept",
			input:    "A.5.1 Policies for information_security",
			expected: "A.5.1 Policies for information_security",
		},
		{
			name:     "paragraph breaks kept",
			input:    "First block\n\n\n\nSecond block",
			expected: "First block\n\nSecond block",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, stripMarkdown(tc.input))
		})
	}
}

func TestNormalise_ComplexMarkdown(t *testing.T) {
	normaliser := New()

	complexMarkdown := `# Annex A

## A.5 Organizational controls

Information security policy **shall** be *defined*.

- Approved by management
- Communicated to personnel

` + "```text" + `
example only
` + "```" + `

See [ISO](https://www.iso.org) for the full text.
`

	doc, err := normaliser.Normalise(context.Background(), &domain.RawDocument{
		MIMEType: "text/markdown",
		Content:  []byte(complexMarkdown),
	})
	require.NoError(t, err)

	assert.NotContains(t, doc.Content, "**")
	assert.NotContains(t, doc.Content, "```")
	assert.NotContains(t, doc.Content, "](")
	assert.Contains(t, doc.Content, "Information security policy shall be defined.")
	assert.Contains(t, doc.Content, "Approved by management\nCommunicated to personnel")
	assert.Contains(t, doc.Content, "See ISO for the full text.")
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = (*Normaliser)(nil)
}
