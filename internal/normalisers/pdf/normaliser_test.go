package pdf

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

	assert.Contains(t, mimeTypes, "application/pdf")
	assert.Len(t, mimeTypes, 1)
}

func TestNormalise_NilDocument(t *testing.T) {
	normaliser := New()

	doc, err := normaliser.Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, doc)
}

func TestNormalise_NotAPDF(t *testing.T) {
	normaliser := New()

	doc, err := normaliser.Normalise(context.Background(), &domain.RawDocument{
		Path:     "/data/iso27001.pdf",
		MIMEType: "application/pdf",
		Content:  []byte("this is plain text pretending to be a pdf"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, doc)
}

func TestJoinPages(t *testing.T) {
	tests := []struct {
		name  string
		pages []string
		want  string
	}{
		{
			name:  "pages become paragraphs",
			pages: []string{"A.5.1 Policies", "A.7.7 Clear desk"},
			want:  "A.5.1 Policies\n\nA.7.7 Clear desk",
		},
		{
			name:  "blank pages skipped",
			pages: []string{"one", "  \n ", "two"},
			want:  "one\n\ntwo",
		},
		{
			name:  "line endings cleaned",
			pages: []string{"line one\r\nline two\r\n"},
			want:  "line one\nline two",
		},
		{
			name:  "no pages",
			pages: nil,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, joinPages(tt.pages))
		})
	}
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = (*Normaliser)(nil)
}
